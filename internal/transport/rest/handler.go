// Package rest provides HTTP handlers for the cart and favorite stores.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/attirehq/rentcart/internal/cart"
	"github.com/attirehq/rentcart/internal/catalog"
	"github.com/attirehq/rentcart/internal/favorites"
	"github.com/attirehq/rentcart/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type Handler struct {
	cart       *cart.Store
	favorites  *favorites.Store
	validate   *validator.Validate
	logger     *slog.Logger
	itemsAdded metric.Int64Counter
}

// NewHandler creates a new instance of the cart/favorites API with the provided stores.
func NewHandler(cartStore *cart.Store, favStore *favorites.Store, logger *slog.Logger) *Handler {
	meter := otel.Meter("rentcart")
	itemsAdded, err := meter.Int64Counter("cart_items_added", metric.WithDescription("Total number of items added to the cart"))
	if err != nil {
		panic(fmt.Sprintf("failed to create cart_items_added counter: %v", err))
	}
	return &Handler{
		cart:       cartStore,
		favorites:  favStore,
		validate:   validator.New(),
		logger:     logger.With("component", "rest"),
		itemsAdded: itemsAdded,
	}
}

// RegisterRoutes registers the HTTP routes for the cart and favorite stores.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)

		r.Post("/items", h.AddItem)
		r.Route("/items/{id}", func(r chi.Router) {
			r.Put("/", h.UpdateQuantity)
			r.Delete("/", h.RemoveItem)
		})

		r.Post("/minicart/{action}", h.MiniCart)
	})

	r.Route("/api/v1/favorites", func(r chi.Router) {
		r.Get("/", h.ListFavorites)
		r.Post("/", h.AddFavorite)
		r.Delete("/", h.ClearFavorites)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetFavorite)
			r.Delete("/", h.RemoveFavorite)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// AddItemDto represents the request body for adding a product to the cart.
// Quantity defaults to 1 when omitted.
type AddItemDto struct {
	Product  catalog.ProductSnapshot `json:"product" validate:"required"`
	Quantity int32                   `json:"quantity" validate:"omitempty,min=1"`
}

// QuantityDto represents the request body for an absolute quantity update.
// Zero or negative quantities remove the line.
type QuantityDto struct {
	Quantity int32 `json:"quantity"`
}

// AddFavoriteDto represents the request body for favoriting a product.
type AddFavoriteDto struct {
	Product catalog.ProductSnapshot `json:"product" validate:"required"`
}

// CartItemDto is a cart line together with its derived prices.
type CartItemDto struct {
	Product  catalog.ProductSnapshot `json:"product"`
	Quantity int32                   `json:"quantity"`
	Total    int64                   `json:"total"`
	Savings  int64                   `json:"savings"`
}

// CartViewDto is the full cart: lines, aggregates, and the mini-cart flag.
type CartViewDto struct {
	Items          []CartItemDto `json:"items"`
	Subtotal       int64         `json:"subtotal"`
	TotalItems     int32         `json:"total_items"`
	TotalSavings   int64         `json:"total_savings"`
	IsMiniCartOpen bool          `json:"is_mini_cart_open"`
}

// FavoriteDto is a favorite entry with its insertion timestamp.
type FavoriteDto struct {
	Product catalog.ProductSnapshot `json:"product"`
	AddedAt string                  `json:"added_at"`
}

// GetCart returns the current cart with derived aggregates.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	view := h.cartView()
	mLogger.DebugContext(r.Context(), "Returning cart", "items", len(view.Items), "subtotal", view.Subtotal)
	web.RespondJSON(w, mLogger, http.StatusOK, view)
}

// AddItem adds a product to the cart, merging by product id.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto AddItemDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, dto) {
		return
	}
	if !dto.Product.Valid() {
		mLogger.WarnContext(r.Context(), "Rejected cart add without product id")
		web.RespondError(w, mLogger, http.StatusBadRequest, "Product ID is required")
		return
	}
	quantity := dto.Quantity
	if quantity < 1 {
		quantity = 1
	}

	h.cart.AddItem(dto.Product, quantity)
	h.itemsAdded.Add(r.Context(), int64(quantity))
	mLogger.InfoContext(r.Context(), "Added product to cart", "ID", dto.Product.ID, "quantity", quantity)
	web.RespondJSON(w, mLogger, http.StatusCreated, h.cartView())
}

// UpdateQuantity replaces a line's quantity; zero or below removes the line.
// Unknown product ids are absorbed silently, matching the store contract.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseProductID(w, r, mLogger)
	if !ok {
		return
	}
	var dto QuantityDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.cart.UpdateQuantity(id, dto.Quantity)
	mLogger.InfoContext(r.Context(), "Updated cart quantity", "ID", id, "quantity", dto.Quantity)
	web.RespondJSON(w, mLogger, http.StatusOK, h.cartView())
}

// RemoveItem deletes a line from the cart; removing an absent line succeeds.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseProductID(w, r, mLogger)
	if !ok {
		return
	}

	h.cart.RemoveItem(id)
	mLogger.InfoContext(r.Context(), "Removed product from cart", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// ClearCart empties the cart unconditionally.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	h.cart.Clear()
	mLogger.InfoContext(r.Context(), "Cleared cart")
	w.WriteHeader(http.StatusNoContent)
}

// MiniCart drives the mini-cart panel flag: open, close, or toggle.
func (h *Handler) MiniCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	action := r.PathValue("action")
	switch action {
	case "open":
		h.cart.OpenMiniCart()
	case "close":
		h.cart.CloseMiniCart()
	case "toggle":
		h.cart.ToggleMiniCart()
	default:
		web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Unknown mini-cart action: %s", action))
		return
	}
	mLogger.DebugContext(r.Context(), "Mini-cart action applied", "action", action, "open", h.cart.MiniCartOpen())
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]bool{"is_mini_cart_open": h.cart.MiniCartOpen()})
}

// ListFavorites returns the favorite set, optionally filtered to entries
// added within the last ?days=N days.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)

	var entries []favorites.Entry
	if r.URL.Query().Has("days") {
		days, ok := web.ParseValidateGt(r, w, mLogger, "days", 0)
		if !ok {
			return
		}
		entries = h.favorites.AddedSince(time.Duration(days) * 24 * time.Hour)
	} else {
		entries = h.favorites.Entries()
	}

	dtos := make([]FavoriteDto, len(entries))
	for i, e := range entries {
		dtos[i] = toFavoriteDto(e)
	}
	mLogger.DebugContext(r.Context(), "Returning favorites", "count", len(dtos))
	web.RespondJSON(w, mLogger, http.StatusOK, dtos)
}

// AddFavorite inserts a product into the favorite set; adding a product that
// is already a member succeeds without changing the stored entry.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto AddFavoriteDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, dto) {
		return
	}
	if !dto.Product.Valid() {
		mLogger.WarnContext(r.Context(), "Rejected favorite add without product id")
		web.RespondError(w, mLogger, http.StatusBadRequest, "Product ID is required")
		return
	}

	h.favorites.Add(dto.Product)
	entry, _ := h.favorites.EntryByID(dto.Product.ID)
	mLogger.InfoContext(r.Context(), "Added product to favorites", "ID", dto.Product.ID)
	web.RespondJSON(w, mLogger, http.StatusCreated, toFavoriteDto(entry))
}

// GetFavorite returns a single favorite entry by product id.
func (h *Handler) GetFavorite(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseProductID(w, r, mLogger)
	if !ok {
		return
	}

	entry, found := h.favorites.EntryByID(id)
	if !found {
		mLogger.WarnContext(r.Context(), "Favorite not found", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s is not a favorite", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toFavoriteDto(entry))
}

// RemoveFavorite deletes an entry; removing an absent entry succeeds.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseProductID(w, r, mLogger)
	if !ok {
		return
	}

	h.favorites.Remove(id)
	mLogger.InfoContext(r.Context(), "Removed product from favorites", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// ClearFavorites empties the favorite set unconditionally.
func (h *Handler) ClearFavorites(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	h.favorites.Clear()
	mLogger.InfoContext(r.Context(), "Cleared favorites")
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// cartView assembles the cart response from the live collection.
func (h *Handler) cartView() CartViewDto {
	items := h.cart.Items()
	dtos := make([]CartItemDto, len(items))
	for i, it := range items {
		dtos[i] = CartItemDto{
			Product:  it.Product,
			Quantity: it.Quantity,
			Total:    it.Total(),
			Savings:  it.Savings(),
		}
	}
	return CartViewDto{
		Items:          dtos,
		Subtotal:       h.cart.Subtotal(),
		TotalItems:     h.cart.TotalItems(),
		TotalSavings:   h.cart.TotalSavings(),
		IsMiniCartOpen: h.cart.MiniCartOpen(),
	}
}

func toFavoriteDto(e favorites.Entry) FavoriteDto {
	return FavoriteDto{
		Product: e.Product,
		AddedAt: e.AddedAt.Format(time.RFC3339),
	}
}

// validateStruct runs the request DTO through the validator and writes the
// field-level error response on failure.
func (h *Handler) validateStruct(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dto any) bool {
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

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
