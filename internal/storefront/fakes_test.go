package storefront

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeLister struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]models.Product
	// gates block a category until the channel is closed
	gates   map[string]chan struct{}
	started chan string
}

func newFakeLister() *fakeLister {
	return &fakeLister{
		results: map[string][]models.Product{},
		gates:   map[string]chan struct{}{},
	}
}

func (f *fakeLister) FetchProducts(ctx context.Context, category string) []models.Product {
	f.mu.Lock()
	f.calls = append(f.calls, category)
	gate := f.gates[category]
	result := f.results[category]
	started := f.started
	f.mu.Unlock()

	if started != nil {
		started <- category
	}
	if gate != nil {
		<-gate
	}
	if result == nil {
		return []models.Product{}
	}
	return result
}

func (f *fakeLister) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeCreator struct {
	mu      sync.Mutex
	forms   []models.CreateProductForm
	product *models.Product
	err     error
}

func (f *fakeCreator) CreateProduct(ctx context.Context, form models.CreateProductForm) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forms = append(f.forms, form)
	if f.err != nil {
		return nil, f.err
	}
	if f.product != nil {
		return f.product, nil
	}
	return &models.Product{ID: "new", Name: form.Name, Category: form.Category, Variants: form.Variants}, nil
}

func (f *fakeCreator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.forms)
}

type fakePublisher struct {
	mu        sync.Mutex
	published []*models.Product
	err       error
}

func (f *fakePublisher) PublishProductCreated(ctx context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, p)
	return f.err
}

func validInput() FormInput {
	return FormInput{
		Name:     "Denim Jacket",
		Price:    "49.90",
		Category: "Apparel",
		Variants: "S, M,  L ,",
		Image: &models.ImageUpload{
			Filename:    "jacket.png",
			ContentType: "image/png",
			Body:        strings.NewReader("png"),
		},
	}
}
