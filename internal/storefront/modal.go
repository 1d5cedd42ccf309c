package storefront

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

type ModalState int

const (
	ModalClosed ModalState = iota
	ModalOpen
	ModalSubmitting
)

func (s ModalState) String() string {
	switch s {
	case ModalOpen:
		return "open"
	case ModalSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

const (
	msgSelectImage  = "Please select an image"
	msgInvalidPrice = "Please enter a valid price"
	msgUnexpected   = "An unexpected error occurred"
)

var (
	ErrModalClosed    = errors.New("create product form is closed")
	ErrSubmitInFlight = errors.New("product creation already in progress")
)

// ValidationError is a form error detected before contacting the product API
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProductCreator creates products in the product API
type ProductCreator interface {
	CreateProduct(ctx context.Context, form models.CreateProductForm) (*models.Product, error)
}

// FormInput is the raw content of the creation form.
type FormInput struct {
	Name     string
	Price    string
	Category string
	Variants string
	Image    *models.ImageUpload
}

// Modal is the "Add Product" form:
// closed -> open -> submitting -> closed on success, open with an error on failure.
type Modal struct {
	creator   ProductCreator
	onSuccess func(ctx context.Context, p *models.Product)
	validate  *validator.Validate
	logger    *slog.Logger

	mu     sync.Mutex
	state  ModalState
	err    string
	values FormInput
}

func NewModal(creator ProductCreator, onSuccess func(ctx context.Context, p *models.Product), logger *slog.Logger) *Modal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Modal{
		creator:   creator,
		onSuccess: onSuccess,
		validate:  validator.New(),
		logger:    logger,
	}
}

func (m *Modal) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == ModalClosed {
		m.state = ModalOpen
	}
}

// Close hides the form and forgets its values and error.
func (m *Modal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = ModalClosed
	m.err = ""
	m.values = FormInput{}
}

func (m *Modal) State() ModalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Modal) IsOpen() bool {
	return m.State() != ModalClosed
}

// Busy is true while a submission is in flight; the submit control is disabled.
func (m *Modal) Busy() bool {
	return m.State() == ModalSubmitting
}

func (m *Modal) ErrorMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Values returns the last submitted field values, without the image.
func (m *Modal) Values() FormInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values
}

func (m *Modal) SubmitLabel() string {
	if m.Busy() {
		return "Creating..."
	}
	return "Create Product"
}

// Submit validates the input and creates the product. Validation failures
// never reach the product API.
func (m *Modal) Submit(ctx context.Context, in FormInput) error {
	m.mu.Lock()
	switch m.state {
	case ModalClosed:
		m.mu.Unlock()
		return ErrModalClosed
	case ModalSubmitting:
		m.mu.Unlock()
		return ErrSubmitInFlight
	}
	m.state = ModalSubmitting
	m.err = ""
	m.values = FormInput{Name: in.Name, Price: in.Price, Category: in.Category, Variants: in.Variants}
	m.mu.Unlock()

	form, err := m.buildForm(in)
	if err != nil {
		m.fail(err)
		return err
	}

	product, err := m.creator.CreateProduct(ctx, form)
	if err != nil {
		m.logger.WarnContext(ctx, "create product failed", slog.Any("error", err))
		m.fail(err)
		return err
	}

	if m.onSuccess != nil {
		m.onSuccess(ctx, product)
	}
	m.Close()
	return nil
}

// Reject shows an error found before the form could be submitted, such as an
// upload the server refused to read. The form must be open.
func (m *Modal) Reject(in FormInput, err *ValidationError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != ModalOpen {
		return
	}
	m.err = err.Message
	m.values = FormInput{Name: in.Name, Price: in.Price, Category: in.Category, Variants: in.Variants}
}

func (m *Modal) fail(err error) {
	msg := err.Error()
	if msg == "" {
		msg = msgUnexpected
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Closed while the request was in flight: nothing left to show the error in
	if m.state == ModalSubmitting {
		m.state = ModalOpen
		m.err = msg
	}
}

func (m *Modal) buildForm(in FormInput) (models.CreateProductForm, error) {
	if in.Image == nil || in.Image.Body == nil {
		return models.CreateProductForm{}, &ValidationError{Field: "image", Message: msgSelectImage}
	}

	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil {
		return models.CreateProductForm{}, &ValidationError{Field: "price", Message: msgInvalidPrice}
	}

	form := models.CreateProductForm{
		Name:     in.Name,
		Price:    price,
		Category: in.Category,
		Image:    in.Image,
		Variants: ParseVariants(in.Variants),
	}

	if err := m.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return models.CreateProductForm{}, fieldError(fieldErrs[0])
		}
		return models.CreateProductForm{}, err
	}

	return form, nil
}

func fieldError(fe validator.FieldError) *ValidationError {
	switch fe.Field() {
	case "Name":
		return &ValidationError{Field: "name", Message: "Please enter a product name"}
	case "Category":
		return &ValidationError{Field: "category", Message: "Please choose a valid category"}
	case "Image":
		return &ValidationError{Field: "image", Message: msgSelectImage}
	default:
		return &ValidationError{Field: strings.ToLower(fe.Field()), Message: fe.Error()}
	}
}
