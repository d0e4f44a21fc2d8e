// Package rest provides HTTP handlers for the storefront API.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/elitestore/storefront/internal/cart"
	"github.com/elitestore/storefront/internal/catalog"
	storeerrors "github.com/elitestore/storefront/internal/errors"
	"github.com/elitestore/storefront/internal/service"
	"github.com/elitestore/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.StorefrontService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the storefront API with the provided service.
func NewHandler(service service.StorefrontService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the storefront service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", h.FindProducts)
		r.Get("/products/{id}", h.FindProductByID)
		r.Get("/categories", h.FindCategories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddItem)
			r.Put("/items/{id}", h.UpdateItemQuantity)
			r.Delete("/items/{id}", h.RemoveItem)
		})

		r.Post("/reload", h.Reload)
	})

	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", h.ReadyCheck)
}

// AddItemDto is the request body for adding a product to the cart.
type AddItemDto struct {
	ProductID int `json:"product_id" validate:"required,min=1"`
}

// QuantityDto is the request body for replacing a cart entry's quantity.
type QuantityDto struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// ProductDto is a catalog product as rendered to clients.
type ProductDto struct {
	ID           int            `json:"id"`
	Title        string         `json:"title"`
	Price        float64        `json:"price"`
	DisplayPrice string         `json:"display_price"`
	Category     string         `json:"category"`
	Image        string         `json:"image"`
	Description  string         `json:"description"`
	Rating       catalog.Rating `json:"rating"`
	Stock        int            `json:"stock"`
	InStock      bool           `json:"in_stock"`
	CanAdd       bool           `json:"can_add"`
}

// ProductListDto carries the filtered catalog view plus its size.
type ProductListDto struct {
	Count    int          `json:"count"`
	Products []ProductDto `json:"products"`
}

// CartEntryDto is a cart entry with its line total.
type CartEntryDto struct {
	Product          ProductDto `json:"product"`
	Quantity         int        `json:"quantity"`
	LineTotal        float64    `json:"line_total"`
	DisplayLineTotal string     `json:"display_line_total"`
}

// CartDto is the cart with item and price totals.
type CartDto struct {
	Items             []CartEntryDto `json:"items"`
	TotalItems        int            `json:"total_items"`
	TotalPrice        float64        `json:"total_price"`
	DisplayTotalPrice string         `json:"display_total_price"`
}

// FindProducts returns the catalog narrowed by the search/category/sort query
// parameters. An unknown sort value degrades to the default order.
func (h *Handler) FindProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	filter := filterFromQuery(r)

	mLogger.DebugContext(r.Context(), "Received request to find products",
		"search", filter.Search, "category", filter.Category, "sort", filter.SortBy)
	products, err := h.service.Products(r.Context(), filter)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to fetch products")
		return
	}
	items, err := h.service.Cart(r.Context())
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to fetch products")
		return
	}

	list := ProductListDto{
		Count:    len(products),
		Products: make([]ProductDto, len(products)),
	}
	for i, p := range products {
		list.Products[i] = toProductDto(p, items)
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", list.Count)
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindProductByID retrieves a single product, the data source for the detail view.
func (h *Handler) FindProductByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.ProductByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	items, err := h.service.Cart(r.Context())
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toProductDto(*found, items))
}

// FindCategories returns the distinct catalog categories for the filter bar.
func (h *Handler) FindCategories(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to fetch categories")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, map[string][]string{"categories": categories})
}

// GetCart returns the current cart with totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	items, err := h.service.Cart(r.Context())
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to fetch cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toCartDto(items))
}

// AddItem puts one unit of a product into the cart. Adding past the stock
// ceiling is a no-op; the response always carries the resulting cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto AddItemDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateDto(w, r, mLogger, dto) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to add product to cart", "ID", dto.ProductID)
	items, err := h.service.AddToCart(r.Context(), dto.ProductID)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to add product to cart")
		return
	}
	mLogger.InfoContext(r.Context(), "Product added to cart", "ID", dto.ProductID, "total_items", cart.TotalItems(items))
	web.RespondJSON(w, mLogger, http.StatusOK, toCartDto(items))
}

// UpdateItemQuantity replaces a cart entry's quantity. Out-of-range values
// are no-ops; the response carries the cart the client should converge on.
func (h *Handler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto QuantityDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateDto(w, r, mLogger, dto) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to update cart quantity", "ID", id, "quantity", dto.Quantity)
	items, err := h.service.SetQuantity(r.Context(), id, dto.Quantity)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to update quantity for product with ID %d", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toCartDto(items))
}

// RemoveItem drops a product from the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to remove product from cart", "ID", id)
	items, err := h.service.RemoveFromCart(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to remove product with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product removed from cart", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, toCartDto(items))
}

// Reload performs the full restart transition and re-fetches the catalog.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.InfoContext(r.Context(), "Received request to reload catalog")
	if err := h.service.Reload(r.Context()); err != nil {
		mLogger.ErrorContext(r.Context(), "Catalog reload failed", "error", err)
		web.RespondError(w, mLogger, http.StatusServiceUnavailable, "Failed to load products. Please try again later.")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]string{"state": string(h.service.State())})
}

// HealthCheck is a simple liveness endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ReadyCheck reflects the catalog state machine: 200 only in the ready state.
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	state := h.service.State()
	status := http.StatusOK
	if state != service.StateReady {
		status = http.StatusServiceUnavailable
	}
	web.RespondJSON(w, h.loggerWithReqID(r), status, map[string]string{"state": string(state)})
}

// validateDto runs struct validation and writes the error response on failure.
func (h *Handler) validateDto(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dto any) bool {
	if err := h.validate.Struct(dto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondServiceError maps service errors to HTTP statuses.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, storeerrors.ErrCatalogUnavailable):
		mLogger.WarnContext(r.Context(), "Catalog not ready", "state", h.service.State())
		web.RespondError(w, mLogger, http.StatusServiceUnavailable, "Failed to load products. Please try again later.")
	case errors.Is(err, storeerrors.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Product not found", "error", err)
		web.RespondError(w, mLogger, http.StatusNotFound, "Product not found")
	default:
		mLogger.ErrorContext(r.Context(), "Unexpected service error", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fallback)
	}
}

// filterFromQuery builds the catalog filter from query parameters, defaulting
// to all categories in the default order.
func filterFromQuery(r *http.Request) catalog.Filter {
	q := r.URL.Query()
	sortBy := q.Get("sort")
	switch sortBy {
	case catalog.SortPriceAsc, catalog.SortPriceDesc:
	default:
		sortBy = catalog.SortDefault
	}
	category := q.Get("category")
	if category == "" {
		category = catalog.CategoryAll
	}
	return catalog.Filter{
		Search:   q.Get("search"),
		Category: category,
		SortBy:   sortBy,
	}
}

// toProductDto renders a product, deriving whether one more unit could still
// be added given the current cart.
func toProductDto(p catalog.Product, items cart.Cart) ProductDto {
	canAdd := p.InStock
	if entry, ok := cart.Find(items, p.ID); ok {
		canAdd = entry.Quantity < p.Stock
	}
	return ProductDto{
		ID:           p.ID,
		Title:        p.Title,
		Price:        p.Price,
		DisplayPrice: catalog.FormatPrice(p.Price),
		Category:     p.Category,
		Image:        p.Image,
		Description:  p.Description,
		Rating:       p.Rating,
		Stock:        p.Stock,
		InStock:      p.InStock,
		CanAdd:       canAdd,
	}
}

// toCartDto renders the cart with per-entry line totals and grand totals.
func toCartDto(items cart.Cart) CartDto {
	dto := CartDto{
		Items:      make([]CartEntryDto, len(items)),
		TotalItems: cart.TotalItems(items),
		TotalPrice: cart.TotalPrice(items),
	}
	dto.DisplayTotalPrice = catalog.FormatPrice(dto.TotalPrice)
	for i, e := range items {
		lineTotal := e.Product.Price * float64(e.Quantity)
		dto.Items[i] = CartEntryDto{
			Product:          toProductDto(e.Product, items),
			Quantity:         e.Quantity,
			LineTotal:        lineTotal,
			DisplayLineTotal: catalog.FormatPrice(lineTotal),
		}
	}
	return dto
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
