package dto

import (
	"time"

	"github.com/ledgerhq/ledgercore/internal/core/domain"
)

// CreatePeriodRequest defines data for opening a new accounting period.
type CreatePeriodRequest struct {
	Name      string    `json:"name" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required,gtfield=StartDate"`
}

// UpdatePeriodRequest defines data for editing an OPEN period's name and/or
// date range. Only non-nil fields are changed.
type UpdatePeriodRequest struct {
	Name      *string    `json:"name,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// TransitionPeriodRequest requests a period status transition.
type TransitionPeriodRequest struct {
	Status domain.PeriodStatus `json:"status" binding:"required,oneof=OPEN CLOSING CLOSED"`
}

// PeriodResponse defines the data returned for an accounting period.
type PeriodResponse struct {
	PeriodID      string              `json:"periodID"`
	Name          string              `json:"name"`
	StartDate     time.Time           `json:"startDate"`
	EndDate       time.Time           `json:"endDate"`
	Status        domain.PeriodStatus `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	CreatedBy     string              `json:"createdBy"`
	LastUpdatedAt time.Time           `json:"lastUpdatedAt"`
	LastUpdatedBy string              `json:"lastUpdatedBy"`
}

// ToPeriodResponse converts a domain.Period to its API representation.
func ToPeriodResponse(p *domain.Period) PeriodResponse {
	return PeriodResponse{
		PeriodID:      p.PeriodID,
		Name:          p.Name,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		CreatedBy:     p.CreatedBy,
		LastUpdatedAt: p.LastUpdatedAt,
		LastUpdatedBy: p.LastUpdatedBy,
	}
}

// ToPeriodResponses converts a slice of domain.Period to DTOs.
func ToPeriodResponses(ps []domain.Period) []PeriodResponse {
	list := make([]PeriodResponse, len(ps))
	for i := range ps {
		list[i] = ToPeriodResponse(&ps[i])
	}
	return list
}

// ListPeriodsResponse wraps a list of period responses.
type ListPeriodsResponse struct {
	Periods []PeriodResponse `json:"periods"`
}
