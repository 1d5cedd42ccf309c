package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

const ProductCreatedQueue = "product.created"

// Broker is the part of the message broker the publisher needs
type Broker interface {
	DeclareQueue(name string) error
	Publish(ctx context.Context, queue string, message []byte) error
}

type ProductPublisher struct {
	broker Broker
	now    func() time.Time
}

func NewProductPublisher(broker Broker) (*ProductPublisher, error) {
	if err := broker.DeclareQueue(ProductCreatedQueue); err != nil {
		return nil, err
	}

	return &ProductPublisher{broker: broker, now: time.Now}, nil
}

// PublishProductCreated publishes a product.created event
func (p *ProductPublisher) PublishProductCreated(ctx context.Context, product *models.Product) error {
	createdAt := product.CreatedAt
	if createdAt.IsZero() {
		createdAt = p.now().UTC()
	}

	event := models.ProductCreatedEvent{
		ProductID: product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Price:     product.Price,
		Variants:  product.Variants,
		CreatedAt: createdAt,
	}
	if event.Variants == nil {
		event.Variants = []string{}
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.broker.Publish(ctx, ProductCreatedQueue, data)
}

// Nop discards events; used when no broker is configured
type Nop struct{}

func (Nop) PublishProductCreated(context.Context, *models.Product) error {
	return nil
}
