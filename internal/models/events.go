package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductCreatedEvent is published after the product API accepts a new product
type ProductCreatedEvent struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Variants  []string        `json:"variants"`
	CreatedAt time.Time       `json:"created_at"`
}
