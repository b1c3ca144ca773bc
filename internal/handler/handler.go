package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/jalai-llc/bundongsan/internal/models"
	"github.com/jalai-llc/bundongsan/internal/monitoring"
	"github.com/jalai-llc/bundongsan/internal/service"
)

// Handler serves the HTTP API on top of the service layer
type Handler struct {
	svc     *service.Service
	log     *logrus.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a handler. metrics may be nil.
func NewHandler(svc *service.Service, log *logrus.Logger, metrics *monitoring.Metrics) *Handler {
	return &Handler{svc: svc, log: log, metrics: metrics}
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type scenarioRequest struct {
	TargetPrice float64 `json:"target_price"`
	MonthlyHOA  float64 `json:"monthly_hoa"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to status codes. Unexpected errors are logged
// and reported without detail.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		h.metrics.RecordError("internal")
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: malformed request body", service.ErrInvalidInput))
		return false
	}
	return true
}

// Healthz reports liveness
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !h.decode(w, r, &req) {
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// MarketRate returns the latest stored mortgage rate
func (h *Handler) MarketRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.svc.MarketRate(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProfile(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.FinancialProfile
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.svc.UpdateProfile(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) GetLoanTerms(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetLoanTerms(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) UpdateLoanTerms(w http.ResponseWriter, r *http.Request) {
	var req models.LoanTerms
	if !h.decode(w, r, &req) {
		return
	}
	t, err := h.svc.UpdateLoanTerms(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// BuyingPower returns the max affordable price and its constraints
func (h *Handler) BuyingPower(w http.ResponseWriter, r *http.Request) {
	bp, err := h.svc.BuyingPower(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bp)
}

func (h *Handler) DownPaymentOptions(w http.ResponseWriter, r *http.Request) {
	sweep, err := h.svc.DownPaymentOptions(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sweep)
}

// BudgetScenario evaluates a target purchase price
func (h *Handler) BudgetScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if !h.decode(w, r, &req) {
		return
	}
	sc, err := h.svc.BudgetScenario(r.Context(), req.TargetPrice, req.MonthlyHOA)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// parseFilters reads the view filters from the query string.
func parseFilters(r *http.Request) (models.ViewFilters, error) {
	q := r.URL.Query()
	f := models.ViewFilters{
		Region:    q.Get("region"),
		City:      q.Get("city"),
		Query:     strings.TrimSpace(q.Get("q")),
		SortBy:    models.SortKey(q.Get("sort")),
		Direction: models.SortDirection(q.Get("dir")),
	}
	if v := q.Get("affordable"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("%w: affordable must be a boolean", service.ErrInvalidInput)
		}
		f.AffordableOnly = b
	}
	if v := q.Get("radius"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil || radius < 0 {
			return f, fmt.Errorf("%w: radius must be a non-negative number", service.ErrInvalidInput)
		}
		// A missing or unknown zip yields an empty view, not an error.
		f.Proximity = &models.ProximityFilter{Zipcode: q.Get("zip"), RadiusMiles: radius}
	}
	return f, nil
}

// ListProperties returns the ranked view of the caller's collection
func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.svc.RankedView(r.Context(), filters)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) TopPicks(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	picks, err := h.svc.TopPicks(r.Context(), filters)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, picks)
}

func (h *Handler) Facets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.svc.Facets(r.Context(), r.URL.Query().Get("region"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

func (h *Handler) AddProperty(w http.ResponseWriter, r *http.Request) {
	var req models.Property
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.svc.AddProperty(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	var req models.Property
	if !h.decode(w, r, &req) {
		return
	}
	req.ID = mux.Vars(r)["id"]
	p, err := h.svc.UpdateProperty(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProperty(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PropertyMetrics(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.svc.PropertyMetrics(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (h *Handler) PaymentSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.svc.PaymentSchedule(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// MergeSeed merges the seed catalog into the caller's collection
func (h *Handler) MergeSeed(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.MergeSeed(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ClearSeeded removes the seeded records from the caller's collection
func (h *Handler) ClearSeeded(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.ClearSeeded(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
