package storefront

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/imageurl"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

// ProductLister lists products and never fails; failures come back as an
// empty list.
type ProductLister interface {
	FetchProducts(ctx context.Context, category string) []models.Product
}

// EventPublisher announces products created through the storefront
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, p *models.Product) error
}

// Shell owns the product list, the category filter and the create form.
type Shell struct {
	lister    ProductLister
	images    *imageurl.Resolver
	publisher EventPublisher
	logger    *slog.Logger
	modal     *Modal
	// reloadOnCreate refreshes the list after a successful create
	reloadOnCreate bool

	mu       sync.Mutex
	products []models.Product
	loading  bool
	category string
	// latest is the token of the most recent reload; older reloads drop their result
	latest uint64
}

type ShellOption func(*Shell)

func WithImageResolver(r *imageurl.Resolver) ShellOption {
	return func(s *Shell) { s.images = r }
}

func WithPublisher(p EventPublisher) ShellOption {
	return func(s *Shell) { s.publisher = p }
}

func WithLogger(l *slog.Logger) ShellOption {
	return func(s *Shell) { s.logger = l }
}

// WithoutCreateReload skips the list refresh after a successful create, for
// callers that discard the shell right after submitting.
func WithoutCreateReload() ShellOption {
	return func(s *Shell) { s.reloadOnCreate = false }
}

// WithCategory starts the shell on a category other than "All". Unknown
// categories are ignored.
func WithCategory(c string) ShellOption {
	return func(s *Shell) {
		if IsCategory(c) {
			s.category = c
		}
	}
}

func NewShell(lister ProductLister, creator ProductCreator, opts ...ShellOption) *Shell {
	s := &Shell{
		lister:         lister,
		logger:         slog.Default(),
		products:       []models.Product{},
		category:       AllCategories,
		reloadOnCreate: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.images == nil {
		s.images = imageurl.NewResolver(imageurl.DefaultRules()...)
	}
	s.modal = NewModal(creator, s.productCreated, s.logger)
	return s
}

// Mount performs the initial load for the selected category.
func (s *Shell) Mount(ctx context.Context) {
	s.Reload(ctx)
}

// SelectCategory switches the filter and reloads when it changed.
func (s *Shell) SelectCategory(ctx context.Context, c string) error {
	if !IsCategory(c) {
		return ErrUnknownCategory
	}

	s.mu.Lock()
	if s.category == c {
		s.mu.Unlock()
		return nil
	}
	s.category = c
	s.mu.Unlock()

	s.Reload(ctx)
	return nil
}

func (s *Shell) Category() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category
}

// Reload fetches the selected category and replaces the product list.
func (s *Shell) Reload(ctx context.Context) {
	s.mu.Lock()
	s.latest++
	token := s.latest
	category := s.category
	s.loading = true
	s.mu.Unlock()

	var products []models.Product
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if token != s.latest {
			s.logger.DebugContext(ctx, "dropping stale product list",
				slog.String("category", category),
				slog.Uint64("token", token),
			)
			return
		}
		if products != nil {
			s.products = products
		}
		s.loading = false
	}()

	products = s.lister.FetchProducts(ctx, category)
	if products == nil {
		products = []models.Product{}
	}
}

func (s *Shell) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Products returns the current product list
func (s *Shell) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products)
}

func (s *Shell) Modal() *Modal {
	return s.modal
}

func (s *Shell) OpenModal() {
	s.modal.Open()
}

func (s *Shell) CloseModal() {
	s.modal.Close()
}

// SubmitProduct submits the create form. On success the list is reloaded
// once for the selected category and the form closes.
func (s *Shell) SubmitProduct(ctx context.Context, in FormInput) error {
	return s.modal.Submit(ctx, in)
}

// RejectProduct keeps the form open with an error that never reached Submit
func (s *Shell) RejectProduct(in FormInput, err *ValidationError) {
	s.modal.Reject(in, err)
}

func (s *Shell) productCreated(ctx context.Context, p *models.Product) {
	if s.publisher != nil {
		if err := s.publisher.PublishProductCreated(ctx, p); err != nil {
			s.logger.WarnContext(ctx, "failed to publish product.created", slog.Any("error", err))
		}
	}
	if s.reloadOnCreate {
		s.Reload(ctx)
	}
}

// CategoryOption is one entry of the category filter
type CategoryOption struct {
	Name     string
	Selected bool
}

// ModalView is the render state of the create form
type ModalView struct {
	Open        bool
	Busy        bool
	Error       string
	SubmitLabel string
	Values      FormInput
	Categories  []string
}

// View is an immutable snapshot of the shell for rendering.
type View struct {
	Cards      []*Card
	Loading    bool
	Empty      bool
	Category   string
	Categories []CategoryOption
	Modal      ModalView
}

func (s *Shell) Snapshot() View {
	s.mu.Lock()
	products := slices.Clone(s.products)
	loading := s.loading
	category := s.category
	s.mu.Unlock()

	cards := make([]*Card, 0, len(products))
	for _, p := range products {
		cards = append(cards, NewCard(p, s.images))
	}

	options := make([]CategoryOption, 0, len(filterCategories))
	for _, c := range filterCategories {
		options = append(options, CategoryOption{Name: c, Selected: c == category})
	}

	state := s.modal.State()
	return View{
		Cards:      cards,
		Loading:    loading,
		Empty:      !loading && len(cards) == 0,
		Category:   category,
		Categories: options,
		Modal: ModalView{
			Open:        state != ModalClosed,
			Busy:        state == ModalSubmitting,
			Error:       s.modal.ErrorMessage(),
			SubmitLabel: s.modal.SubmitLabel(),
			Values:      s.modal.Values(),
			Categories:  FormCategories(),
		},
	}
}
