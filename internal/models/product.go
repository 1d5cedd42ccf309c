package models

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a product record as returned by the product API
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	ImageURL  string          `json:"imageUrl"`
	InStock   bool            `json:"inStock"`
	Variants  []string        `json:"variants"`
	CreatedAt time.Time       `json:"createdAt,omitzero"`
}

// UnmarshalJSON normalizes a null or missing variants array to an empty list.
func (p *Product) UnmarshalJSON(data []byte) error {
	type alias Product
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Variants == nil {
		raw.Variants = []string{}
	}
	*p = Product(raw)
	return nil
}

// HasVariants reports whether the product offers any variant choice
func (p Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// FirstVariant returns the first variant or "" when there are none
func (p Product) FirstVariant() string {
	if len(p.Variants) == 0 {
		return ""
	}
	return p.Variants[0]
}

// CreateProductRequest is the creation form as posted by the browser
type CreateProductRequest struct {
	Name     string                `form:"name"`
	Price    string                `form:"price"`
	Category string                `form:"category"`
	Variants string                `form:"variants"`
	Image    *multipart.FileHeader `form:"image"`

	// Filter is the category the listing was showing when the form was opened
	Filter string `form:"filter"`
}

// ImageUpload is an image attachment forwarded as-is to the product API
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CreateProductForm is the payload collected by the creation form
type CreateProductForm struct {
	Name     string          `validate:"required"`
	Price    decimal.Decimal `validate:"-"`
	Category string          `validate:"required,oneof=Apparel Electronics Footwear Accessories"`
	Image    *ImageUpload    `validate:"required"`
	Variants []string        `validate:"-"`
}

// ErrorResponse is the error body returned by the product API
type ErrorResponse struct {
	Error string `json:"error"`
}
