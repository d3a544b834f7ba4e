package services_test

import (
	"testing"
	"time"

	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ledgerhq/ledgercore/internal/apperrors"
	"github.com/ledgerhq/ledgercore/internal/core/domain"
	portssvc "github.com/ledgerhq/ledgercore/internal/core/ports/services"
	"github.com/ledgerhq/ledgercore/internal/core/services"
)

type PostingServiceTestSuite struct {
	suite.Suite
	journalRepo *mockJournalRepo
	periodRepo  *mockPeriodRepo
	svc         portssvc.PostingSvc
}

func (s *PostingServiceTestSuite) SetupTest() {
	s.journalRepo = new(mockJournalRepo)
	s.periodRepo = new(mockPeriodRepo)
	s.svc = services.NewPostingService(s.journalRepo, s.periodRepo)
}

func balancedDraft(journalID, periodID, number string) domain.Journal {
	debit, _ := domain.AmountFromString("100")
	credit, _ := domain.AmountFromString("100")
	usd100, _ := domain.NewMoney(debit, "USD")
	return domain.Journal{
		JournalID:     journalID,
		PeriodID:      periodID,
		JournalNumber: number,
		Description:   "rent",
		PostingDate:   day("2026-01-15"),
		Status:        domain.JournalDraft,
		Currency:      "USD",
		Lines: []domain.JournalLine{
			{LineNumber: 1, AccountID: "acc-debit", DebitAmount: debit, CreditAmount: domain.Zero, OriginalAmount: usd100, ExchangeRate: decimal.NewFromInt(1)},
			{LineNumber: 2, AccountID: "acc-credit", DebitAmount: domain.Zero, CreditAmount: credit, OriginalAmount: usd100, ExchangeRate: decimal.NewFromInt(1)},
		},
	}
}

// S1: posting a balanced draft in an open period extends the hash chain.
func (s *PostingServiceTestSuite) TestPostJournal_Success() {
	ctx := context.Background()
	journal := balancedDraft("j-1", "p-1", "J-1")
	period := &domain.Period{PeriodID: "p-1", Status: domain.PeriodOpen}

	s.journalRepo.On("FindJournalByID", ctx, "org-1", "j-1").Return(&journal, nil).Once()
	s.journalRepo.On("FindJournalByNumber", ctx, "org-1", "J-1").Return(nil, apperrors.ErrNotFound).Once()
	s.periodRepo.On("FindPeriodByID", ctx, "org-1", "p-1").Return(period, nil).Once()
	s.journalRepo.On("FindLatestPostedHash", ctx, "org-1").Return(domain.EmptyHash, nil).Once()
	s.journalRepo.On("PostJournal", ctx, mock.AnythingOfType("domain.Journal")).Return(nil).Once().Run(func(args mock.Arguments) {
		posted := args.Get(1).(domain.Journal)
		s.Equal(domain.JournalPosted, posted.Status)
		s.NotEqual(domain.EmptyHash, posted.HashSelf)
		s.Equal(domain.EmptyHash, posted.HashPrev)
	})

	posted, err := s.svc.PostJournal(ctx, "org-1", "j-1", "actor-1")

	require.NoError(s.T(), err)
	s.Equal(domain.JournalPosted, posted.Status)
	s.Equal("actor-1", *posted.PostedBy)
	s.journalRepo.AssertExpectations(s.T())
	s.periodRepo.AssertExpectations(s.T())
}

// S2: posting a non-draft journal is rejected.
func (s *PostingServiceTestSuite) TestPostJournal_AlreadyPosted() {
	ctx := context.Background()
	journal := balancedDraft("j-1", "p-1", "J-1")
	journal.Status = domain.JournalPosted
	s.journalRepo.On("FindJournalByID", ctx, "org-1", "j-1").Return(&journal, nil).Once()

	posted, err := s.svc.PostJournal(ctx, "org-1", "j-1", "actor-1")

	s.Require().Error(err)
	s.Nil(posted)
	s.Equal(apperrors.CodeJournalAlreadyPosted, apperrors.CodeOf(err))
	s.journalRepo.AssertNotCalled(s.T(), "PostJournal", mock.Anything, mock.Anything)
}

// S3: an unbalanced draft must not post.
func (s *PostingServiceTestSuite) TestPostJournal_Unbalanced() {
	ctx := context.Background()
	journal := balancedDraft("j-1", "p-1", "J-1")
	extra, _ := domain.AmountFromString("1")
	journal.Lines[0].DebitAmount = journal.Lines[0].DebitAmount.Add(extra)
	journal.Lines[0].OriginalAmount, _ = domain.NewMoney(journal.Lines[0].DebitAmount, "USD")
	s.journalRepo.On("FindJournalByID", ctx, "org-1", "j-1").Return(&journal, nil).Once()

	posted, err := s.svc.PostJournal(ctx, "org-1", "j-1", "actor-1")

	s.Require().Error(err)
	s.Nil(posted)
	s.Equal(apperrors.CodeUnbalancedJournal, apperrors.CodeOf(err))
}

// S4: posting into a non-open period is rejected.
func (s *PostingServiceTestSuite) TestPostJournal_PeriodClosed() {
	ctx := context.Background()
	journal := balancedDraft("j-1", "p-1", "J-1")
	period := &domain.Period{PeriodID: "p-1", Status: domain.PeriodClosed}

	s.journalRepo.On("FindJournalByID", ctx, "org-1", "j-1").Return(&journal, nil).Once()
	s.journalRepo.On("FindJournalByNumber", ctx, "org-1", "J-1").Return(nil, apperrors.ErrNotFound).Once()
	s.periodRepo.On("FindPeriodByID", ctx, "org-1", "p-1").Return(period, nil).Once()

	posted, err := s.svc.PostJournal(ctx, "org-1", "j-1", "actor-1")

	s.Require().Error(err)
	s.Nil(posted)
	s.Equal(apperrors.CodePeriodClosed, apperrors.CodeOf(err))
	s.journalRepo.AssertNotCalled(s.T(), "FindLatestPostedHash", mock.Anything, mock.Anything)
}

// S5: a duplicate journal number at posting time is rejected, even if it
// slipped past draft creation (race between two concurrent drafts).
func (s *PostingServiceTestSuite) TestPostJournal_DuplicateNumber() {
	ctx := context.Background()
	journal := balancedDraft("j-1", "p-1", "J-1")
	conflicting := balancedDraft("j-2", "p-1", "J-1")

	s.journalRepo.On("FindJournalByID", ctx, "org-1", "j-1").Return(&journal, nil).Once()
	s.journalRepo.On("FindJournalByNumber", ctx, "org-1", "J-1").Return(&conflicting, nil).Once()

	posted, err := s.svc.PostJournal(ctx, "org-1", "j-1", "actor-1")

	s.Require().Error(err)
	s.Nil(posted)
	s.Equal(apperrors.CodeBusinessRuleViolation, apperrors.CodeOf(err))
}

// A duplicate ext_uid at posting time is rejected the same way a duplicate
// journal_number is, closing the gap where checkUniqueness used to only
// check the number despite its doc comment claiming otherwise.
func (s *PostingServiceTestSuite) TestPostJournal_DuplicateExtUID() {
	ctx := context.Background()
	journal := balancedDraft("j-1", "p-1", "J-1")
	extUID := "ext-123"
	journal.ExtUID = &extUID
	conflicting := balancedDraft("j-2", "p-1", "J-2")

	s.journalRepo.On("FindJournalByID", ctx, "org-1", "j-1").Return(&journal, nil).Once()
	s.journalRepo.On("FindJournalByNumber", ctx, "org-1", "J-1").Return(nil, apperrors.ErrNotFound).Once()
	s.journalRepo.On("FindByExtUID", ctx, "org-1", extUID).Return(&conflicting, nil).Once()

	posted, err := s.svc.PostJournal(ctx, "org-1", "j-1", "actor-1")

	s.Require().Error(err)
	s.Nil(posted)
	s.Equal(apperrors.CodeBusinessRuleViolation, apperrors.CodeOf(err))
}

// S6: reversing a posted journal produces a balanced mirror journal with
// swapped debit/credit sides, and marks the original REVERSED.
func (s *PostingServiceTestSuite) TestReverseJournal_Success() {
	ctx := context.Background()
	original := balancedDraft("j-1", "p-1", "J-1")
	original.Status = domain.JournalPosted
	original.HashSelf = domain.ComputeHash(original.HashPayload())
	reversalDate := day("2026-01-20")
	period := &domain.Period{PeriodID: "p-1", Status: domain.PeriodOpen}

	s.journalRepo.On("FindJournalByID", ctx, "org-1", "j-1").Return(&original, nil).Once()
	s.periodRepo.On("FindByDate", ctx, "org-1", reversalDate).Return(period, nil).Once()
	s.journalRepo.On("FindJournalByNumber", ctx, "org-1", "J-1-REV").Return(nil, apperrors.ErrNotFound).Once()
	s.journalRepo.On("FindLatestPostedHash", ctx, "org-1").Return(original.HashSelf, nil).Once()
	s.journalRepo.On("ReverseJournal", ctx, "j-1", mock.AnythingOfType("domain.Journal")).Return(nil).Once().Run(func(args mock.Arguments) {
		mirror := args.Get(2).(domain.Journal)
		s.Equal(domain.JournalPosted, mirror.Status)
		s.Equal("100.0000", mirror.TotalCredit().String(), "original debit line flips to credit")
		s.Equal("100.0000", mirror.TotalDebit().String())
		s.Equal(original.HashSelf, mirror.HashPrev)
	})

	mirror, err := s.svc.ReverseJournal(ctx, "org-1", "j-1", "actor-1", portssvc.ReverseJournalRequest{
		Description:  "reversing rent",
		ReversalDate: reversalDate,
	})

	require.NoError(s.T(), err)
	s.Equal(domain.JournalPosted, mirror.Status)
	s.Equal("j-1", *mirror.OriginalJournalID)
	s.journalRepo.AssertExpectations(s.T())
	s.periodRepo.AssertExpectations(s.T())
}

func (s *PostingServiceTestSuite) TestReverseJournal_NotPosted() {
	ctx := context.Background()
	journal := balancedDraft("j-1", "p-1", "J-1")
	s.journalRepo.On("FindJournalByID", ctx, "org-1", "j-1").Return(&journal, nil).Once()

	mirror, err := s.svc.ReverseJournal(ctx, "org-1", "j-1", "actor-1", portssvc.ReverseJournalRequest{
		Description:  "x",
		ReversalDate: day("2026-01-20"),
	})

	s.Require().Error(err)
	s.Nil(mirror)
	s.Equal(apperrors.CodeBusinessRuleViolation, apperrors.CodeOf(err))
}

func (s *PostingServiceTestSuite) TestReverseJournal_AlreadyReversed() {
	ctx := context.Background()
	journal := balancedDraft("j-1", "p-1", "J-1")
	journal.Status = domain.JournalPosted
	reversalID := "j-99"
	journal.ReversalJournalID = &reversalID
	s.journalRepo.On("FindJournalByID", ctx, "org-1", "j-1").Return(&journal, nil).Once()

	mirror, err := s.svc.ReverseJournal(ctx, "org-1", "j-1", "actor-1", portssvc.ReverseJournalRequest{
		Description:  "x",
		ReversalDate: day("2026-01-20"),
	})

	s.Require().Error(err)
	s.Nil(mirror)
	s.Equal(apperrors.CodeBusinessRuleViolation, apperrors.CodeOf(err))
}

func (s *PostingServiceTestSuite) TestReverseJournal_DateBeforePosting() {
	ctx := context.Background()
	journal := balancedDraft("j-1", "p-1", "J-1")
	journal.Status = domain.JournalPosted
	s.journalRepo.On("FindJournalByID", ctx, "org-1", "j-1").Return(&journal, nil).Once()

	mirror, err := s.svc.ReverseJournal(ctx, "org-1", "j-1", "actor-1", portssvc.ReverseJournalRequest{
		Description:  "x",
		ReversalDate: day("2025-01-01"),
	})

	s.Require().Error(err)
	s.Nil(mirror)
	s.Equal(apperrors.CodeValidationFailed, apperrors.CodeOf(err))
}

func (s *PostingServiceTestSuite) TestReverseJournal_DateTooFarAfterPosting() {
	ctx := context.Background()
	journal := balancedDraft("j-1", "p-1", "J-1")
	journal.Status = domain.JournalPosted
	s.journalRepo.On("FindJournalByID", ctx, "org-1", "j-1").Return(&journal, nil).Once()

	mirror, err := s.svc.ReverseJournal(ctx, "org-1", "j-1", "actor-1", portssvc.ReverseJournalRequest{
		Description:  "x",
		ReversalDate: journal.PostingDate.Add(400 * 24 * time.Hour),
	})

	s.Require().Error(err)
	s.Nil(mirror)
	s.Equal(apperrors.CodeValidationFailed, apperrors.CodeOf(err))
}

func TestPostingService(t *testing.T) {
	suite.Run(t, new(PostingServiceTestSuite))
}
