package repositories

import (
	"context"
	"time"

	"github.com/ledgerhq/ledgercore/internal/core/domain"
)

// PeriodReader defines read operations for accounting periods.
type PeriodReader interface {
	// FindPeriodByID retrieves a specific period, scoped to organizationID.
	FindPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.Period, error)

	// ListPeriods retrieves all periods for an organization, ordered by
	// StartDate ascending.
	ListPeriods(ctx context.Context, organizationID string) ([]domain.Period, error)

	// FindOverlappingPeriods returns periods for organizationID whose date
	// range intersects [start, end], excluding excludePeriodID if non-empty.
	FindOverlappingPeriods(ctx context.Context, organizationID string, start, end time.Time, excludePeriodID string) ([]domain.Period, error)

	// FindByDate returns the period for organizationID whose [start, end]
	// range covers d, if any. Used to resolve the reversal period from a
	// caller-supplied reversal date.
	FindByDate(ctx context.Context, organizationID string, d time.Time) (*domain.Period, error)
}

// PeriodWriter defines write operations for accounting periods.
type PeriodWriter interface {
	// CreatePeriod persists a new OPEN period.
	CreatePeriod(ctx context.Context, period domain.Period) error

	// UpdatePeriodStatus transitions a period's status, recording the actor.
	UpdatePeriodStatus(ctx context.Context, organizationID, periodID string, status domain.PeriodStatus, updatedBy string) error

	// UpdatePeriodFields overwrites an OPEN period's name and date range.
	// Callers must have already re-checked overlap via FindOverlappingPeriods.
	UpdatePeriodFields(ctx context.Context, period domain.Period) error
}

// PeriodRepositoryFacade combines all period-related repository interfaces.
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
}
