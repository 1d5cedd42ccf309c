package storefront

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

func product(id, category string) models.Product {
	return models.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.NewFromInt(10),
		Category: category,
		InStock:  true,
		Variants: []string{},
	}
}

func TestShellMountLoadsAll(t *testing.T) {
	lister := newFakeLister()
	lister.results[AllCategories] = []models.Product{product("1", "Apparel"), product("2", "Footwear")}
	shell := NewShell(lister, &fakeCreator{}, WithLogger(quietLogger()))

	assert.Equal(t, AllCategories, shell.Category())
	shell.Mount(context.Background())

	assert.Equal(t, []string{AllCategories}, lister.Calls())
	assert.Len(t, shell.Products(), 2)
	assert.False(t, shell.Loading())

	view := shell.Snapshot()
	assert.Len(t, view.Cards, 2)
	assert.False(t, view.Empty)
	assert.False(t, view.Modal.Open)
	require.Len(t, view.Categories, 6)
	assert.True(t, view.Categories[0].Selected)
}

func TestShellSelectCategory(t *testing.T) {
	lister := newFakeLister()
	lister.results["Footwear"] = []models.Product{product("2", "Footwear")}
	shell := NewShell(lister, &fakeCreator{}, WithLogger(quietLogger()))
	shell.Mount(context.Background())

	require.NoError(t, shell.SelectCategory(context.Background(), "Footwear"))
	assert.Equal(t, []string{AllCategories, "Footwear"}, lister.Calls())
	assert.Equal(t, "Footwear", shell.Products()[0].Category)

	// same selection does not refetch
	require.NoError(t, shell.SelectCategory(context.Background(), "Footwear"))
	assert.Len(t, lister.Calls(), 2)

	err := shell.SelectCategory(context.Background(), "Groceries")
	assert.True(t, errors.Is(err, ErrUnknownCategory))
	assert.Equal(t, "Footwear", shell.Category())
}

func TestShellEmptyState(t *testing.T) {
	shell := NewShell(newFakeLister(), &fakeCreator{}, WithCategory("Electronics"), WithLogger(quietLogger()))
	shell.Mount(context.Background())

	view := shell.Snapshot()
	assert.Equal(t, "Electronics", view.Category)
	assert.True(t, view.Empty)
	assert.NotNil(t, shell.Products())
}

func TestShellWithUnknownInitialCategory(t *testing.T) {
	shell := NewShell(newFakeLister(), &fakeCreator{}, WithCategory("Groceries"))
	assert.Equal(t, AllCategories, shell.Category())
}

func TestShellCreateReloadsSelectedCategoryOnce(t *testing.T) {
	lister := newFakeLister()
	publisher := &fakePublisher{}
	shell := NewShell(lister, &fakeCreator{}, WithPublisher(publisher), WithLogger(quietLogger()))
	require.NoError(t, shell.SelectCategory(context.Background(), "Apparel"))
	before := len(lister.Calls())

	shell.OpenModal()
	assert.True(t, shell.Snapshot().Modal.Open)

	lister.results["Apparel"] = []models.Product{product("new", "Apparel")}
	require.NoError(t, shell.SubmitProduct(context.Background(), validInput()))

	calls := lister.Calls()[before:]
	assert.Equal(t, []string{"Apparel"}, calls)
	assert.False(t, shell.Modal().IsOpen())
	assert.Equal(t, "new", shell.Products()[0].ID)
	assert.Len(t, publisher.published, 1)
}

func TestShellCreateFailureDoesNotReload(t *testing.T) {
	lister := newFakeLister()
	shell := NewShell(lister, &fakeCreator{err: errors.New("Failed to create product")}, WithLogger(quietLogger()))
	shell.Mount(context.Background())
	shell.OpenModal()

	err := shell.SubmitProduct(context.Background(), validInput())

	require.Error(t, err)
	assert.Len(t, lister.Calls(), 1)
	view := shell.Snapshot()
	assert.True(t, view.Modal.Open)
	assert.Equal(t, "Failed to create product", view.Modal.Error)
	assert.Equal(t, "Denim Jacket", view.Modal.Values.Name)
}

func TestShellPublishFailureStillReloads(t *testing.T) {
	lister := newFakeLister()
	shell := NewShell(lister, &fakeCreator{}, WithPublisher(&fakePublisher{err: errors.New("broker down")}), WithLogger(quietLogger()))
	shell.OpenModal()

	require.NoError(t, shell.SubmitProduct(context.Background(), validInput()))
	assert.Equal(t, []string{AllCategories}, lister.Calls())
}

func TestShellDropsStaleResponse(t *testing.T) {
	lister := newFakeLister()
	lister.started = make(chan string, 4)
	slow := make(chan struct{})
	lister.gates["Apparel"] = slow
	lister.results["Apparel"] = []models.Product{product("a", "Apparel")}
	lister.results["Footwear"] = []models.Product{product("f", "Footwear")}
	shell := NewShell(lister, &fakeCreator{}, WithLogger(quietLogger()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = shell.SelectCategory(context.Background(), "Apparel")
	}()
	require.Equal(t, "Apparel", <-lister.started)
	assert.True(t, shell.Loading())

	require.NoError(t, shell.SelectCategory(context.Background(), "Footwear"))
	require.Equal(t, "Footwear", <-lister.started)
	assert.False(t, shell.Loading())

	close(slow)
	<-done

	products := shell.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "f", products[0].ID)
	assert.False(t, shell.Loading())
}

func TestShellWithoutCreateReload(t *testing.T) {
	lister := newFakeLister()
	publisher := &fakePublisher{}
	shell := NewShell(lister, &fakeCreator{}, WithCategory("Apparel"), WithPublisher(publisher),
		WithoutCreateReload(), WithLogger(quietLogger()))
	shell.OpenModal()

	require.NoError(t, shell.SubmitProduct(context.Background(), validInput()))

	assert.Empty(t, lister.Calls())
	assert.Len(t, publisher.published, 1)
	assert.False(t, shell.Modal().IsOpen())
}

func TestShellRejectProduct(t *testing.T) {
	shell := NewShell(newFakeLister(), &fakeCreator{}, WithLogger(quietLogger()))
	shell.OpenModal()

	shell.RejectProduct(validInput(), &ValidationError{Field: "image", Message: "Image is too large"})

	view := shell.Snapshot()
	assert.True(t, view.Modal.Open)
	assert.Equal(t, "Image is too large", view.Modal.Error)
	assert.Equal(t, "Apparel", view.Modal.Values.Category)
}
