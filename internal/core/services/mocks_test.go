package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ledgerhq/ledgercore/internal/core/domain"
)

// mockPeriodRepo implements repositories.PeriodRepositoryFacade.
type mockPeriodRepo struct {
	mock.Mock
}

func (m *mockPeriodRepo) FindPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *mockPeriodRepo) ListPeriods(ctx context.Context, organizationID string) ([]domain.Period, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Period), args.Error(1)
}

func (m *mockPeriodRepo) FindOverlappingPeriods(ctx context.Context, organizationID string, start, end time.Time, excludePeriodID string) ([]domain.Period, error) {
	args := m.Called(ctx, organizationID, start, end, excludePeriodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Period), args.Error(1)
}

func (m *mockPeriodRepo) FindByDate(ctx context.Context, organizationID string, d time.Time) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *mockPeriodRepo) CreatePeriod(ctx context.Context, period domain.Period) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *mockPeriodRepo) UpdatePeriodStatus(ctx context.Context, organizationID, periodID string, status domain.PeriodStatus, updatedBy string) error {
	args := m.Called(ctx, organizationID, periodID, status, updatedBy)
	return args.Error(0)
}

func (m *mockPeriodRepo) UpdatePeriodFields(ctx context.Context, period domain.Period) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

// mockJournalRepo implements repositories.JournalRepositoryFacade.
type mockJournalRepo struct {
	mock.Mock
}

func (m *mockJournalRepo) FindJournalByID(ctx context.Context, organizationID, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, organizationID, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *mockJournalRepo) FindJournalByNumber(ctx context.Context, organizationID, journalNumber string) (*domain.Journal, error) {
	args := m.Called(ctx, organizationID, journalNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *mockJournalRepo) ListJournalsByPeriod(ctx context.Context, organizationID, periodID string, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	args := m.Called(ctx, organizationID, periodID, limit, nextToken)
	var journals []domain.Journal
	if args.Get(0) != nil {
		journals = args.Get(0).([]domain.Journal)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return journals, token, args.Error(2)
}

func (m *mockJournalRepo) FindPostedJournalsChronological(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	args := m.Called(ctx, organizationID, limit, nextToken)
	var journals []domain.Journal
	if args.Get(0) != nil {
		journals = args.Get(0).([]domain.Journal)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return journals, token, args.Error(2)
}

func (m *mockJournalRepo) FindLatestPostedHash(ctx context.Context, organizationID string) (domain.JournalHash, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(domain.JournalHash), args.Error(1)
}

func (m *mockJournalRepo) FindByExtUID(ctx context.Context, organizationID, extUID string) (*domain.Journal, error) {
	args := m.Called(ctx, organizationID, extUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *mockJournalRepo) FindByDateRange(ctx context.Context, organizationID string, start, end time.Time, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	args := m.Called(ctx, organizationID, start, end, limit, nextToken)
	var journals []domain.Journal
	if args.Get(0) != nil {
		journals = args.Get(0).([]domain.Journal)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return journals, token, args.Error(2)
}

func (m *mockJournalRepo) CountJournalNumbersWithPrefix(ctx context.Context, organizationID, prefix string) (int, error) {
	args := m.Called(ctx, organizationID, prefix)
	return args.Int(0), args.Error(1)
}

func (m *mockJournalRepo) CreateDraftJournal(ctx context.Context, journal domain.Journal) error {
	args := m.Called(ctx, journal)
	return args.Error(0)
}

func (m *mockJournalRepo) UpdateDraftJournal(ctx context.Context, journal domain.Journal) error {
	args := m.Called(ctx, journal)
	return args.Error(0)
}

func (m *mockJournalRepo) DeleteDraftJournal(ctx context.Context, organizationID, journalID string) error {
	args := m.Called(ctx, organizationID, journalID)
	return args.Error(0)
}

func (m *mockJournalRepo) PostJournal(ctx context.Context, journal domain.Journal) error {
	args := m.Called(ctx, journal)
	return args.Error(0)
}

func (m *mockJournalRepo) ReverseJournal(ctx context.Context, originalJournalID string, reversal domain.Journal) error {
	args := m.Called(ctx, originalJournalID, reversal)
	return args.Error(0)
}
