package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/repairshop-api/internal/common"
)

// Handler exposes the catalog admin endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Routes mounts locations, categories, variations and transaction intake on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/locations", h.Locations)
	r.Post("/locations", h.CreateLocation)
	r.Get("/categories", h.Categories)
	r.Post("/categories", h.CreateCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)
	r.Get("/variations", h.Variations)
	r.Post("/variations", h.CreateVariation)
	r.Put("/variations/{id}/stock/{locationId}", h.SetStock)
	r.Post("/orders", h.RecordOrder)
	r.Post("/register-sessions", h.RecordRegisterSession)
}

// Locations handles GET /locations.
func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	rows, err := h.service.ListLocations(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// CreateLocation handles POST /locations.
func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in LocationInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	loc, err := h.service.CreateLocation(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, loc)
}

// Categories handles GET /categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	rows, err := h.service.ListCategories(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// CreateCategory handles POST /categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in CategoryInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	cat, err := h.service.CreateCategory(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, cat)
}

// DeleteCategory handles DELETE /categories/{id}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Variations handles GET /variations?q=&page=&limit=.
func (h *Handler) Variations(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	params, err := h.service.ParseListParams(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	result, err := h.service.ListVariations(r.Context(), params)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(result.Total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       result.Items,
		"pagination": common.Pagination{Page: result.Page, PerPage: result.Limit, TotalItems: int(result.Total)},
	})
}

// CreateVariation handles POST /variations.
func (h *Handler) CreateVariation(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in VariationInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	v, err := h.service.CreateVariation(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, v)
}

// SetStock handles PUT /variations/{id}/stock/{locationId}.
func (h *Handler) SetStock(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in StockLevelInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	level, err := h.service.SetStockLevel(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "locationId"), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, level)
}

// RecordOrder handles POST /orders.
func (h *Handler) RecordOrder(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in OrderInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	order, err := h.service.RecordOrder(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, order)
}

// RecordRegisterSession handles POST /register-sessions.
func (h *Handler) RecordRegisterSession(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in RegisterSessionInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	session, err := h.service.RecordRegisterSession(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, session)
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return false
	}
	return true
}
