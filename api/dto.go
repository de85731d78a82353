/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Every money field is an integer count of minor currency units
  (yearly_target: 120000000 is KES 1,200,000.00). Percentages are decimal
  strings ("85.00") so clients never round-trip them through floats.

DATES:
  period_start and period_end are inclusive calendar dates (YYYY-MM-DD).
*/
package api

import (
	"time"

	"github.com/warp/revenue-engine/revenue"
)

// TargetDTO represents a revenue target in API responses.
type TargetDTO struct {
	ID           string  `json:"id"`
	Year         int     `json:"year"`
	DepartmentID *string `json:"department_id"`
	YearlyTarget int64   `json:"yearly_target"`
	Currency     string  `json:"currency"`
	CreatedBy    string  `json:"created_by"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// SetTargetRequest is the request to create or replace a target.
// A missing or null department_id sets the firm-wide target.
type SetTargetRequest struct {
	Year         int     `json:"year"`
	DepartmentID *string `json:"department_id,omitempty"`
	YearlyTarget int64   `json:"yearly_target"`
}

// PerformanceDTO represents one evaluated period.
type PerformanceDTO struct {
	PeriodLabel  string  `json:"period_label"`
	Granularity  string  `json:"granularity"`
	PeriodStart  string  `json:"period_start"`
	PeriodEnd    string  `json:"period_end"`
	DepartmentID *string `json:"department_id"`
	HasTarget    bool    `json:"has_target"`
	YearlyTarget int64   `json:"yearly_target"`
	PeriodTarget int64   `json:"period_target"`
	Actual       int64   `json:"actual"`
	Percentage   string  `json:"percentage"`
	Status       string  `json:"status"`
	Delta        int64   `json:"delta"`
	Currency     string  `json:"currency"`
}

// PerformanceResponse wraps one or more results.
type PerformanceResponse struct {
	Year    int              `json:"year"`
	Results []PerformanceDTO `json:"results"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse represents an error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func departmentPtr(d revenue.DepartmentID) *string {
	if d.IsFirmWide() {
		return nil
	}
	s := string(d)
	return &s
}

func toTargetDTO(t revenue.RevenueTarget, currency string) TargetDTO {
	return TargetDTO{
		ID:           string(t.ID),
		Year:         t.Year,
		DepartmentID: departmentPtr(t.DepartmentID),
		YearlyTarget: int64(t.YearlyTarget),
		Currency:     currency,
		CreatedBy:    string(t.CreatedBy),
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    t.UpdatedAt.Format(time.RFC3339),
	}
}

func toPerformanceDTO(r revenue.PerformanceResult, currency string) PerformanceDTO {
	return PerformanceDTO{
		PeriodLabel:  r.PeriodLabel,
		Granularity:  string(r.Granularity),
		PeriodStart:  r.PeriodStart.Format("2006-01-02"),
		PeriodEnd:    r.PeriodEnd.AddDate(0, 0, -1).Format("2006-01-02"),
		DepartmentID: departmentPtr(r.DepartmentID),
		HasTarget:    r.HasTarget,
		YearlyTarget: int64(r.YearlyTarget),
		PeriodTarget: int64(r.PeriodTarget),
		Actual:       int64(r.Actual),
		Percentage:   r.Percentage.StringFixed(2),
		Status:       string(r.Status),
		Delta:        int64(r.Delta),
		Currency:     currency,
	}
}
