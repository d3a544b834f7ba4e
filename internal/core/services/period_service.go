package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerhq/ledgercore/internal/apperrors"
	"github.com/ledgerhq/ledgercore/internal/core/domain"
	portsrepo "github.com/ledgerhq/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/ledgerhq/ledgercore/internal/core/ports/services"
	"github.com/ledgerhq/ledgercore/internal/dto"
	"github.com/ledgerhq/ledgercore/internal/middleware"
)

// periodService manages accounting period creation and lifecycle transitions.
type periodService struct {
	periodRepo portsrepo.PeriodRepositoryFacade
}

// NewPeriodService creates a new PeriodSvc.
func NewPeriodService(periodRepo portsrepo.PeriodRepositoryFacade) portssvc.PeriodSvc {
	return &periodService{periodRepo: periodRepo}
}

var _ portssvc.PeriodSvc = (*periodService)(nil)

func (s *periodService) CreatePeriod(ctx context.Context, organizationID string, req dto.CreatePeriodRequest, actorID string) (*domain.Period, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.EndDate.Sub(req.StartDate) > domain.MaxPeriodDuration {
		return nil, apperrors.Validation("period spans more than the maximum allowed duration", map[string]any{
			"maxDuration": domain.MaxPeriodDuration.String(),
		})
	}

	overlapping, err := s.periodRepo.FindOverlappingPeriods(ctx, organizationID, req.StartDate, req.EndDate, "")
	if err != nil {
		logger.Error("failed to check for overlapping periods", "error", err)
		return nil, fmt.Errorf("failed to check for overlapping periods: %w", err)
	}
	if len(overlapping) > 0 {
		return nil, apperrors.BusinessRule("period date range overlaps an existing period", map[string]any{
			"conflictingPeriodID": overlapping[0].PeriodID,
		})
	}

	now := time.Now()
	period := domain.Period{
		PeriodID:       uuid.NewString(),
		OrganizationID: organizationID,
		Name:           req.Name,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         domain.PeriodOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.periodRepo.CreatePeriod(ctx, period); err != nil {
		logger.Error("failed to create period", "error", err)
		return nil, fmt.Errorf("failed to create period: %w", err)
	}

	logger.Info("period created", "periodID", period.PeriodID)
	return &period, nil
}

func (s *periodService) GetPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.Period, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	return period, nil
}

func (s *periodService) ListPeriods(ctx context.Context, organizationID string) (*dto.ListPeriodsResponse, error) {
	periods, err := s.periodRepo.ListPeriods(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	return &dto.ListPeriodsResponse{Periods: dto.ToPeriodResponses(periods)}, nil
}

func (s *periodService) TransitionPeriod(ctx context.Context, organizationID, periodID string, req dto.TransitionPeriodRequest, actorID string) (*domain.Period, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	period, err := s.periodRepo.FindPeriodByID(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	if !period.CanTransitionTo(req.Status) {
		return nil, apperrors.BusinessRule("illegal period status transition", map[string]any{
			"from": string(period.Status),
			"to":   string(req.Status),
		})
	}

	if err := s.periodRepo.UpdatePeriodStatus(ctx, organizationID, periodID, req.Status, actorID); err != nil {
		logger.Error("failed to update period status", "error", err)
		return nil, fmt.Errorf("failed to update period status: %w", err)
	}

	period.Status = req.Status
	period.LastUpdatedBy = actorID
	period.LastUpdatedAt = time.Now()

	logger.Info("period transitioned", "periodID", periodID, "status", req.Status)
	return period, nil
}

func (s *periodService) UpdatePeriod(ctx context.Context, organizationID, periodID string, req dto.UpdatePeriodRequest, actorID string) (*domain.Period, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	period, err := s.periodRepo.FindPeriodByID(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	if period.Status != domain.PeriodOpen {
		return nil, apperrors.PeriodClosed("only an open period can be edited", map[string]any{"periodID": periodID})
	}

	if req.Name != nil {
		period.Name = *req.Name
	}
	if req.StartDate != nil {
		period.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		period.EndDate = *req.EndDate
	}

	if period.EndDate.Sub(period.StartDate) > domain.MaxPeriodDuration {
		return nil, apperrors.Validation("period spans more than the maximum allowed duration", map[string]any{
			"maxDuration": domain.MaxPeriodDuration.String(),
		})
	}

	overlapping, err := s.periodRepo.FindOverlappingPeriods(ctx, organizationID, period.StartDate, period.EndDate, periodID)
	if err != nil {
		logger.Error("failed to check for overlapping periods", "error", err)
		return nil, fmt.Errorf("failed to check for overlapping periods: %w", err)
	}
	if len(overlapping) > 0 {
		return nil, apperrors.BusinessRule("period date range overlaps an existing period", map[string]any{
			"conflictingPeriodID": overlapping[0].PeriodID,
		})
	}

	period.LastUpdatedAt = time.Now().UTC()
	period.LastUpdatedBy = actorID

	if err := s.periodRepo.UpdatePeriodFields(ctx, *period); err != nil {
		logger.Error("failed to update period", "error", err)
		return nil, fmt.Errorf("failed to update period: %w", err)
	}

	logger.Info("period updated", "periodID", periodID)
	return period, nil
}
