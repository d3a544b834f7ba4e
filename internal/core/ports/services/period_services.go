package services

import (
	"context"

	"github.com/ledgerhq/ledgercore/internal/core/domain"
	"github.com/ledgerhq/ledgercore/internal/dto"
)

// PeriodSvc manages the accounting period lifecycle: opening periods with
// non-overlapping date ranges and walking them through OPEN -> CLOSING ->
// CLOSED.
type PeriodSvc interface {
	// CreatePeriod opens a new period after checking it does not overlap
	// any existing period for the organization.
	CreatePeriod(ctx context.Context, organizationID string, req dto.CreatePeriodRequest, actorID string) (*domain.Period, error)

	// GetPeriodByID retrieves a specific period, scoped to organizationID.
	GetPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.Period, error)

	// ListPeriods retrieves all periods for an organization.
	ListPeriods(ctx context.Context, organizationID string) (*dto.ListPeriodsResponse, error)

	// TransitionPeriod moves a period to a new status if the transition is
	// legal per domain.Period.CanTransitionTo.
	TransitionPeriod(ctx context.Context, organizationID, periodID string, req dto.TransitionPeriodRequest, actorID string) (*domain.Period, error)

	// UpdatePeriod edits an OPEN period's name and/or date range, rejecting
	// the edit if the period is not OPEN or the new interval would overlap
	// another period in the organization.
	UpdatePeriod(ctx context.Context, organizationID, periodID string, req dto.UpdatePeriodRequest, actorID string) (*domain.Period, error)
}
