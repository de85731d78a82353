/*
handlers.go - HTTP API handlers for revenue targets and performance

ENDPOINTS:
  Targets:
    POST   /api/revenue-targets              Create or replace a target
    GET    /api/revenue-targets?year=YYYY    Targets visible to the caller
    DELETE /api/revenue-targets/{id}         Delete a target

  Performance:
    GET    /api/revenue-targets/performance?year&granularity&month&week&day&department_id&breakdown
    GET    /api/revenue-targets/performance/series?year&department_id

REQUEST FLOW:
  1. RequireCaller puts the caller context on the request
  2. Parse and decode input
  3. Call the engine (which scopes, validates, and computes)
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, malformed input
  - 401: Missing caller context
  - 403: Role or department out of scope
  - 404: Target not found
  - 409: Conflicting concurrent write
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - caller.go: Caller context middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/warp/revenue-engine/cases"
	"github.com/warp/revenue-engine/revenue"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine   *revenue.Engine
	Ledger   cases.PaymentLedger
	Currency string
	Logger   *slog.Logger

	// reset clears the database before a demo scenario is loaded; nil
	// disables the scenario endpoints.
	reset func(ctx context.Context) error

	currentScenario string
}

// NewHandler creates a new handler.
func NewHandler(engine *revenue.Engine, ledger cases.PaymentLedger, currency string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Engine: engine, Ledger: ledger, Currency: currency, Logger: logger}
}

// =============================================================================
// TARGET HANDLERS
// =============================================================================

// SetTarget creates or replaces the caller firm's target for (year, department).
func (h *Handler) SetTarget(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	var req SetTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var dept revenue.DepartmentID
	if req.DepartmentID != nil {
		if *req.DepartmentID == "" {
			writeError(w, http.StatusBadRequest, "department_id must be omitted or null for the firm-wide target", nil)
			return
		}
		dept = revenue.DepartmentID(*req.DepartmentID)
	}

	target, err := h.Engine.SetTarget(r.Context(), caller, revenue.SetTargetInput{
		Year:         req.Year,
		DepartmentID: dept,
		YearlyTarget: revenue.Money(req.YearlyTarget),
	})
	if err != nil {
		h.writeEngineError(w, r, "Failed to set target", err)
		return
	}

	writeJSON(w, http.StatusOK, toTargetDTO(target, h.Currency))
}

// ListTargets returns the targets of a year visible to the caller.
func (h *Handler) ListTargets(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	year, err := requiredInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	targets, err := h.Engine.ListTargets(r.Context(), caller, year)
	if err != nil {
		h.writeEngineError(w, r, "Failed to list targets", err)
		return
	}

	dtos := make([]TargetDTO, len(targets))
	for i, t := range targets {
		dtos[i] = toTargetDTO(t, h.Currency)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteTarget deletes one target of the caller's firm.
func (h *Handler) DeleteTarget(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.Engine.DeleteTarget(r.Context(), caller, revenue.TargetID(id)); err != nil {
		h.writeEngineError(w, r, "Failed to delete target", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PERFORMANCE HANDLERS
// =============================================================================

// GetPerformance evaluates one period for the requested scope.
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	q := revenue.PerformanceQuery{
		Granularity:  revenue.Granularity(r.URL.Query().Get("granularity")),
		DepartmentID: departmentParam(r),
	}
	var err error
	if q.Year, err = requiredInt(r, "year"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	for name, dst := range map[string]*int{"month": &q.Month, "week": &q.Week, "day": &q.Day} {
		if *dst, err = optionalInt(r, name); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid "+name, err)
			return
		}
	}
	if q.Granularity != "" && !q.Granularity.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid granularity", fmt.Errorf("unknown granularity %q", q.Granularity))
		return
	}
	if b := r.URL.Query().Get("breakdown"); b != "" {
		if q.Breakdown, err = strconv.ParseBool(b); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid breakdown", err)
			return
		}
	}

	results, err := h.Engine.Performance(r.Context(), caller, q)
	if err != nil {
		h.writeEngineError(w, r, "Failed to compute performance", err)
		return
	}
	writeJSON(w, http.StatusOK, h.performanceResponse(q.Year, results))
}

// GetPerformanceSeries returns the twelve monthly results of a year.
func (h *Handler) GetPerformanceSeries(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	year, err := requiredInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	results, err := h.Engine.Series(r.Context(), caller, year, departmentParam(r))
	if err != nil {
		h.writeEngineError(w, r, "Failed to compute performance series", err)
		return
	}
	writeJSON(w, http.StatusOK, h.performanceResponse(year, results))
}

func (h *Handler) performanceResponse(year int, results []revenue.PerformanceResult) PerformanceResponse {
	dtos := make([]PerformanceDTO, len(results))
	for i, res := range results {
		dtos[i] = toPerformanceDTO(res, h.Currency)
	}
	return PerformanceResponse{Year: year, Results: dtos}
}

// =============================================================================
// HELPERS
// =============================================================================

// departmentParam accepts department_id and the departmentId spelling used
// by older dashboard builds.
func departmentParam(r *http.Request) revenue.DepartmentID {
	q := r.URL.Query()
	if d := q.Get("department_id"); d != "" {
		return revenue.DepartmentID(d)
	}
	return revenue.DepartmentID(q.Get("departmentId"))
}

func requiredInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	return strconv.Atoi(raw)
}

func optionalInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, revenue.ErrValidation):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, revenue.ErrUnauthorized):
		writeError(w, http.StatusForbidden, message, err)
	case errors.Is(err, revenue.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, revenue.ErrConflict):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.Logger.ErrorContext(r.Context(), message, "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, message, nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
