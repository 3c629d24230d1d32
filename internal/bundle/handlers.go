package bundle

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/repairshop-api/internal/common"
)

// Handler exposes the bundle admin endpoints.
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

// Routes mounts the bundle endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stock", h.RefreshStock)
	r.Post("/price-suggestion", h.SuggestPrice)
	r.Route("/{id}", func(b chi.Router) {
		b.Get("/", h.Get)
		b.Patch("/", h.Update)
		b.Delete("/", h.Delete)
		b.Get("/stock", h.Stock)
		b.Post("/variations", h.CreateVariation)
		b.Post("/components", h.AddComponents)
		b.Delete("/components/{variationId}", h.RemoveComponent)
	})
}

type componentsRequest struct {
	Components []ComponentInput `json:"components"`
}

// List handles GET /bundles.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	params, err := h.service.ParseListParams(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	result, err := h.service.ListBundles(r.Context(), params)
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

// Create handles POST /bundles.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in CreateBundleInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	created, err := h.service.CreateBundle(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, created)
}

// Get handles GET /bundles/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	b, err := h.service.GetBundle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, b)
}

// Update handles PATCH /bundles/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in UpdateBundleInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	updated, err := h.service.UpdateBundle(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, updated)
}

// Delete handles DELETE /bundles/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	if err := h.service.DeleteBundle(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stock handles GET /bundles/{id}/stock?locationId=.
func (h *Handler) Stock(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var locationID *string
	if v := r.URL.Query().Get("locationId"); v != "" {
		locationID = &v
	}
	stock, err := h.service.CalculateBundleStock(r.Context(), chi.URLParam(r, "id"), locationID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, stock)
}

// RefreshStock handles GET /bundles/stock.
func (h *Handler) RefreshStock(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	rows, err := h.service.RefreshBundleStocks(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// CreateVariation handles POST /bundles/{id}/variations.
func (h *Handler) CreateVariation(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in VariationInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	v, err := h.service.CreateBundleVariation(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, v)
}

// AddComponents handles POST /bundles/{id}/components.
func (h *Handler) AddComponents(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req componentsRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	components, err := h.service.AddBundleComponents(r.Context(), chi.URLParam(r, "id"), req.Components)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, components)
}

// RemoveComponent handles DELETE /bundles/{id}/components/{variationId}.
func (h *Handler) RemoveComponent(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	if err := h.service.RemoveBundleComponent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "variationId")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SuggestPrice handles POST /bundles/price-suggestion.
func (h *Handler) SuggestPrice(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req componentsRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	suggestion, err := h.service.SuggestPrice(r.Context(), req.Components)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, suggestion)
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "bundle service not configured", nil)
		return false
	}
	return true
}
