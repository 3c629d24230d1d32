package tax

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/repairshop-api/internal/common"
)

// Enqueuer schedules a period calculation on the job worker and returns the task id.
type Enqueuer interface {
	EnqueueTaxCalculation(ctx context.Context, periodStart, periodEnd time.Time) (string, error)
}

// Handler exposes the tax admin endpoints.
type Handler struct {
	service  *Service
	enqueuer Enqueuer
}

// HandlerConfig configures the Handler dependencies. Enqueuer enables ?async=true.
type HandlerConfig struct {
	Service  *Service
	Enqueuer Enqueuer
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, enqueuer: cfg.Enqueuer}
}

// Routes mounts the tax endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/rates", h.ListRates)
	r.Post("/rates", h.CreateRate)
	r.Get("/rates/active", h.ActiveRates)
	r.Put("/rates/{id}", h.UpdateRate)
	r.Delete("/rates/{id}", h.DeleteRate)
	r.Post("/calculate", h.Calculate)
	r.Get("/records", h.Records)
	r.Post("/records", h.CreateRecords)
	r.Post("/records/mark-paid", h.MarkPaid)
	r.Get("/summary", h.Summary)
	r.Get("/due", h.Due)
}

type calculateRequest struct {
	PeriodStart string `json:"periodStart" validate:"required"`
	PeriodEnd   string `json:"periodEnd" validate:"required"`
}

type createRecordsRequest struct {
	TaxableAmount     int64   `json:"taxableAmount" validate:"gte=0"`
	OrderID           *string `json:"orderId" validate:"omitempty,uuid"`
	RegisterSessionID *string `json:"registerSessionId" validate:"omitempty,uuid"`
	Category          *string `json:"category"`
	At                *string `json:"at"`
}

type markPaidRequest struct {
	IDs      []string `json:"ids" validate:"required,min=1,dive,uuid"`
	PaidDate *string  `json:"paidDate"`
}

// ListRates handles GET /tax/rates.
func (h *Handler) ListRates(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	rates, err := h.service.ListRates(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rates)
}

// ActiveRates handles GET /tax/rates/active.
func (h *Handler) ActiveRates(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	rates, err := h.service.GetActiveTaxRates(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rates)
}

// CreateRate handles POST /tax/rates.
func (h *Handler) CreateRate(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in RateInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	rate, err := h.service.CreateRate(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, rate)
}

// UpdateRate handles PUT /tax/rates/{id}.
func (h *Handler) UpdateRate(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in RateUpdate
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	rate, err := h.service.UpdateRate(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rate)
}

// DeleteRate handles DELETE /tax/rates/{id}.
func (h *Handler) DeleteRate(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	if err := h.service.DeleteRate(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Calculate handles POST /tax/calculate. With ?async=true the run is queued instead.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req calculateRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	start, err := h.parseTime("periodStart", req.PeriodStart)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	end, err := h.parseTime("periodEnd", req.PeriodEnd)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	async, err := common.QueryBool(r, "async")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if async != nil && *async {
		if h.enqueuer == nil {
			common.JSONError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "async tax calculation is not configured", nil)
			return
		}
		taskID, err := h.enqueuer.EnqueueTaxCalculation(r.Context(), start, end)
		if err != nil {
			common.WriteError(w, err)
			return
		}
		common.Data(w, http.StatusAccepted, map[string]string{"taskId": taskID})
		return
	}

	result, err := h.service.CalculateTaxes(r.Context(), start, end)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, result)
}

// CreateRecords handles POST /tax/records.
func (h *Handler) CreateRecords(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req createRecordsRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	opts := RecordOptions{OrderID: req.OrderID, RegisterSessionID: req.RegisterSessionID, Category: req.Category}
	if req.At != nil && strings.TrimSpace(*req.At) != "" {
		at, err := h.parseTime("at", *req.At)
		if err != nil {
			common.WriteError(w, err)
			return
		}
		opts.At = &at
	}
	result, err := h.service.CreateTaxRecords(r.Context(), req.TaxableAmount, opts)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, result)
}

// Records handles GET /tax/records?from=&to=&category=&isPaid=.
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	filters, err := h.filters(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	records, err := h.service.GetTaxRecords(r.Context(), filters)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, records)
}

// Summary handles GET /tax/summary with the same filters as Records.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	filters, err := h.filters(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	summary, err := h.service.GetTaxSummary(r.Context(), filters)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, summary)
}

// MarkPaid handles POST /tax/records/mark-paid.
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req markPaidRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	var paidDate *time.Time
	if req.PaidDate != nil && strings.TrimSpace(*req.PaidDate) != "" {
		t, err := h.parseTime("paidDate", *req.PaidDate)
		if err != nil {
			common.WriteError(w, err)
			return
		}
		paidDate = &t
	}
	n, err := h.service.MarkTaxAsPaid(r.Context(), req.IDs, paidDate)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, map[string]int64{"updated": n})
}

// Due handles GET /tax/due.
func (h *Handler) Due(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	overview, err := h.service.GetTaxDueOverview(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, overview)
}

func (h *Handler) filters(r *http.Request) (Filters, error) {
	var f Filters
	var err error
	if f.From, err = common.QueryTime(r, "from", h.service.Location()); err != nil {
		return Filters{}, err
	}
	if f.To, err = common.QueryTime(r, "to", h.service.Location()); err != nil {
		return Filters{}, err
	}
	if f.IsPaid, err = common.QueryBool(r, "isPaid"); err != nil {
		return Filters{}, err
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		f.Category = &category
	}
	return f, nil
}

func (h *Handler) parseTime(field, raw string) (time.Time, error) {
	t, err := common.ParseTime(strings.TrimSpace(raw), h.service.Location())
	if err != nil {
		return time.Time{}, common.BadRequest(field, field+" must be a date (YYYY-MM-DD) or RFC 3339 timestamp", err)
	}
	return t, nil
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "tax service not configured", nil)
		return false
	}
	return true
}
