package storefront

import (
	"errors"
	"fmt"
	"slices"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/imageurl"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

var (
	ErrOutOfStock     = errors.New("product is out of stock")
	ErrUnknownVariant = errors.New("unknown variant")
)

const (
	labelAddToCart  = "Add to Cart"
	labelOutOfStock = "Out of Stock"
)

// Notification is a one-off message shown to the shopper
type Notification struct {
	Message string `json:"message"`
}

// Card renders one product and tracks its selected variant.
type Card struct {
	product  models.Product
	images   *imageurl.Resolver
	selected string
}

func NewCard(p models.Product, images *imageurl.Resolver) *Card {
	if images == nil {
		images = imageurl.NewResolver(imageurl.DefaultRules()...)
	}
	return &Card{
		product:  p,
		images:   images,
		selected: p.FirstVariant(),
	}
}

func (c *Card) Product() models.Product {
	return c.product
}

func (c *Card) SelectedVariant() string {
	return c.selected
}

// SelectVariant changes the selection; the selector is disabled when the
// product is out of stock.
func (c *Card) SelectVariant(v string) error {
	if c.Disabled() {
		return ErrOutOfStock
	}
	if !slices.Contains(c.product.Variants, v) {
		return fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
	c.selected = v
	return nil
}

// Disabled reports whether the variant selector and cart control are disabled
func (c *Card) Disabled() bool {
	return !c.product.InStock
}

func (c *Card) ActionLabel() string {
	if c.Disabled() {
		return labelOutOfStock
	}
	return labelAddToCart
}

func (c *Card) ShowCartIcon() bool {
	return !c.Disabled()
}

func (c *Card) ShowOutOfStockBadge() bool {
	return c.Disabled()
}

// ReserveVariantSpace is true when there is no selector to render; the card
// keeps the space so that grid rows line up.
func (c *Card) ReserveVariantSpace() bool {
	return !c.product.HasVariants()
}

func (c *Card) ImageSrc() string {
	return c.images.Resolve(c.product.ImageURL)
}

func (c *Card) FallbackImage() string {
	return imageurl.ErrorPlaceholder
}

func (c *Card) PriceLabel() string {
	return "$" + c.product.Price.StringFixed(2)
}

// AddToCart produces the confirmation for the current selection. There is no
// cart behind it.
func (c *Card) AddToCart() (Notification, error) {
	if c.Disabled() {
		return Notification{}, ErrOutOfStock
	}
	return Notification{
		Message: fmt.Sprintf("Added %s (%s) to cart!", c.product.Name, c.selected),
	}, nil
}
