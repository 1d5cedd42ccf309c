package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/imageurl"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/middleware"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/session"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/storefront"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/web"
)

const (
	pageTemplate     = "index.html"
	msgImageTooLarge = "Image is too large"
)

// ProductAPI is the slice of the product service the storefront talks to
type ProductAPI interface {
	storefront.ProductLister
	storefront.ProductCreator
	Ping(ctx context.Context) error
}

type StorefrontHandler struct {
	products  ProductAPI
	images    *imageurl.Resolver
	publisher storefront.EventPublisher
	sessions  session.Store
	logger    *slog.Logger
}

func NewStorefrontHandler(products ProductAPI, images *imageurl.Resolver, pub storefront.EventPublisher, sessions session.Store, logger *slog.Logger) *StorefrontHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StorefrontHandler{
		products:  products,
		images:    images,
		publisher: pub,
		sessions:  sessions,
		logger:    logger,
	}
}

// Register mounts the storefront pages
func (h *StorefrontHandler) Register(r gin.IRoutes) {
	r.GET("/", h.Index)
	r.GET("/products/new", h.NewProduct)
	r.POST("/products", h.CreateProduct)
	r.POST("/cart", h.AddToCart)
	r.GET("/health", h.HealthCheck)
}

type page struct {
	Title string
	View  storefront.View
	Flash *session.Flash
}

// Index renders the product grid for ?category=
func (h *StorefrontHandler) Index(c *gin.Context) {
	shell := h.newShell(c, c.Query("category"))
	shell.Mount(c.Request.Context())
	h.render(c, http.StatusOK, shell)
}

// NewProduct renders the grid with the create form open
func (h *StorefrontHandler) NewProduct(c *gin.Context) {
	shell := h.newShell(c, c.Query("category"))
	shell.Mount(c.Request.Context())
	shell.OpenModal()
	h.render(c, http.StatusOK, shell)
}

// CreateProduct handles the create form. Success redirects back to the
// listing the form was opened from; failure re-renders the open form.
func (h *StorefrontHandler) CreateProduct(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.CreateProductRequest
	bindErr := c.ShouldBind(&req)

	// the success path redirects, so the listing is loaded by the next GET
	shell := h.newShell(c, req.Filter, storefront.WithoutCreateReload())
	shell.OpenModal()

	in := storefront.FormInput{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		Variants: req.Variants,
	}

	if bindErr != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(bindErr, &tooLarge) {
			h.logger.WarnContext(ctx, "product form over upload limit", slog.Int64("limit", tooLarge.Limit))
			shell.RejectProduct(in, &storefront.ValidationError{Field: "image", Message: msgImageTooLarge})
			shell.Mount(ctx)
			h.render(c, http.StatusRequestEntityTooLarge, shell)
			return
		}
		h.logger.WarnContext(ctx, "failed to bind product form", slog.Any("error", bindErr))
	}

	if fh := req.Image; fh != nil && fh.Size > 0 {
		file, err := fh.Open()
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to open uploaded image", slog.Any("error", err))
		} else {
			defer file.Close()
			in.Image = imageUpload(fh, file)
		}
	}

	if err := shell.SubmitProduct(ctx, in); err != nil {
		var vErr *storefront.ValidationError
		if !errors.As(err, &vErr) {
			h.logger.WarnContext(ctx, "product creation failed",
				slog.String("request_id", middleware.GetRequestID(c)),
				slog.Any("error", err),
			)
		}
		shell.Mount(ctx)
		h.render(c, http.StatusUnprocessableEntity, shell)
		return
	}

	h.logger.InfoContext(ctx, "product created",
		slog.String("name", in.Name),
		slog.String("category", in.Category),
	)
	h.flash(c, session.Flash{Kind: session.FlashSuccess, Message: "Product created"})
	c.Redirect(http.StatusSeeOther, web.FilterURL(shell.Category()))
}

func imageUpload(fh *multipart.FileHeader, file multipart.File) *models.ImageUpload {
	return &models.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        file,
	}
}

// AddToCart confirms the selection. Nothing is stored beyond the flash.
func (h *StorefrontHandler) AddToCart(c *gin.Context) {
	category, _ := storefront.NormalizeCategory(c.PostForm("filter"))
	inStock, _ := strconv.ParseBool(c.PostForm("in_stock"))
	name := c.PostForm("name")
	variant := c.PostForm("variant")

	p := models.Product{Name: name, InStock: inStock, Variants: []string{}}
	if variant != "" {
		p.Variants = []string{variant}
	}

	card := storefront.NewCard(p, h.images)
	n, err := card.AddToCart()
	if err != nil {
		h.flash(c, session.Flash{Kind: session.FlashError, Message: name + " is out of stock"})
	} else {
		h.flash(c, session.Flash{Kind: session.FlashSuccess, Message: n.Message})
	}

	c.Redirect(http.StatusSeeOther, web.FilterURL(category))
}

func (h *StorefrontHandler) newShell(c *gin.Context, raw string, extra ...storefront.ShellOption) *storefront.Shell {
	category, ok := storefront.NormalizeCategory(raw)
	if !ok {
		h.logger.WarnContext(c.Request.Context(), "unknown category, showing all",
			slog.String("category", raw),
		)
	}
	opts := []storefront.ShellOption{
		storefront.WithCategory(category),
		storefront.WithImageResolver(h.images),
		storefront.WithPublisher(h.publisher),
		storefront.WithLogger(h.logger),
	}
	return storefront.NewShell(h.products, h.products, append(opts, extra...)...)
}

func (h *StorefrontHandler) render(c *gin.Context, status int, shell *storefront.Shell) {
	c.HTML(status, pageTemplate, page{
		Title: "Storefront",
		View:  shell.Snapshot(),
		Flash: h.popFlash(c),
	})
}

func (h *StorefrontHandler) flash(c *gin.Context, f session.Flash) {
	sid := middleware.GetSessionID(c)
	if sid == "" {
		return
	}
	if err := h.sessions.SetFlash(c.Request.Context(), sid, f); err != nil {
		h.logger.WarnContext(c.Request.Context(), "failed to store flash", slog.Any("error", err))
	}
}

func (h *StorefrontHandler) popFlash(c *gin.Context) *session.Flash {
	sid := middleware.GetSessionID(c)
	if sid == "" {
		return nil
	}
	f, err := h.sessions.PopFlash(c.Request.Context(), sid)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "failed to read flash", slog.Any("error", err))
		return nil
	}
	return f
}
