package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerhq/ledgercore/internal/apperrors"
	"github.com/ledgerhq/ledgercore/internal/core/domain"
	portsrepo "github.com/ledgerhq/ledgercore/internal/core/ports/repositories"
)

// pgxPeriodRepository implements PeriodRepositoryFacade against Postgres.
type pgxPeriodRepository struct {
	BaseRepository
}

func newPgxPeriodRepository(pool *pgxpool.Pool) *pgxPeriodRepository {
	return &pgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PeriodRepositoryFacade = (*pgxPeriodRepository)(nil)

func scanPeriod(row pgx.Row) (*domain.Period, error) {
	var p domain.Period
	err := row.Scan(
		&p.PeriodID, &p.OrganizationID, &p.Name, &p.StartDate, &p.EndDate, &p.Status,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("period not found", nil)
		}
		return nil, fmt.Errorf("failed to scan period: %w", err)
	}
	return &p, nil
}

const periodColumns = `period_id, organization_id, name, start_date, end_date, status,
	created_at, created_by, last_updated_at, last_updated_by`

func (r *pgxPeriodRepository) FindPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.Period, error) {
	row := r.DB().QueryRow(ctx, `SELECT `+periodColumns+` FROM periods WHERE organization_id = $1 AND period_id = $2`,
		organizationID, periodID)
	return scanPeriod(row)
}

func (r *pgxPeriodRepository) ListPeriods(ctx context.Context, organizationID string) ([]domain.Period, error) {
	rows, err := r.DB().Query(ctx, `SELECT `+periodColumns+` FROM periods WHERE organization_id = $1 ORDER BY start_date ASC`,
		organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	defer rows.Close()

	var periods []domain.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate periods: %w", err)
	}
	return periods, nil
}

func (r *pgxPeriodRepository) FindOverlappingPeriods(ctx context.Context, organizationID string, start, end time.Time, excludePeriodID string) ([]domain.Period, error) {
	rows, err := r.DB().Query(ctx,
		`SELECT `+periodColumns+` FROM periods
		 WHERE organization_id = $1 AND start_date <= $3 AND end_date >= $2 AND period_id != $4
		 ORDER BY start_date ASC`,
		organizationID, start, end, excludePeriodID)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping periods: %w", err)
	}
	defer rows.Close()

	var periods []domain.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overlapping periods: %w", err)
	}
	return periods, nil
}

func (r *pgxPeriodRepository) FindByDate(ctx context.Context, organizationID string, d time.Time) (*domain.Period, error) {
	row := r.DB().QueryRow(ctx,
		`SELECT `+periodColumns+` FROM periods
		 WHERE organization_id = $1 AND start_date <= $2 AND end_date >= $2
		 ORDER BY start_date ASC LIMIT 1`,
		organizationID, d)
	return scanPeriod(row)
}

func (r *pgxPeriodRepository) CreatePeriod(ctx context.Context, period domain.Period) error {
	_, err := r.DB().Exec(ctx,
		`INSERT INTO periods (period_id, organization_id, name, start_date, end_date, status,
			created_at, created_by, last_updated_at, last_updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		period.PeriodID, period.OrganizationID, period.Name, period.StartDate, period.EndDate, period.Status,
		period.CreatedAt, period.CreatedBy, period.LastUpdatedAt, period.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create period: %w", err)
	}
	return nil
}

func (r *pgxPeriodRepository) UpdatePeriodStatus(ctx context.Context, organizationID, periodID string, status domain.PeriodStatus, updatedBy string) error {
	tag, err := r.DB().Exec(ctx,
		`UPDATE periods SET status = $1, last_updated_at = $2, last_updated_by = $3
		 WHERE organization_id = $4 AND period_id = $5`,
		status, time.Now().UTC(), updatedBy, organizationID, periodID,
	)
	if err != nil {
		return fmt.Errorf("failed to update period status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("period not found", map[string]any{"periodID": periodID})
	}
	return nil
}

func (r *pgxPeriodRepository) UpdatePeriodFields(ctx context.Context, period domain.Period) error {
	tag, err := r.DB().Exec(ctx,
		`UPDATE periods SET name = $1, start_date = $2, end_date = $3, last_updated_at = $4, last_updated_by = $5
		 WHERE organization_id = $6 AND period_id = $7 AND status = 'OPEN'`,
		period.Name, period.StartDate, period.EndDate, period.LastUpdatedAt, period.LastUpdatedBy,
		period.OrganizationID, period.PeriodID,
	)
	if err != nil {
		return fmt.Errorf("failed to update period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.PeriodClosed("only an open period can be edited", map[string]any{"periodID": period.PeriodID})
	}
	return nil
}
