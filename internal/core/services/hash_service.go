package services

import (
	"context"
	"fmt"

	"github.com/ledgerhq/ledgercore/internal/core/domain"
	portsrepo "github.com/ledgerhq/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/ledgerhq/ledgercore/internal/core/ports/services"
	"github.com/ledgerhq/ledgercore/internal/middleware"
)

// chainScanBatchSize bounds how many posted journals VerifyOrganizationChain
// pulls per cursor page, so an organization's full posting history is never
// loaded into memory at once.
const chainScanBatchSize = 500

// hashService computes and verifies the per-organization SHA-256 hash
// chain that links posted journals in posting order.
type hashService struct {
	journalRepo portsrepo.JournalRepositoryFacade
}

// NewHashService creates a new HashSvc.
func NewHashService(journalRepo portsrepo.JournalRepositoryFacade) portssvc.HashSvc {
	return &hashService{journalRepo: journalRepo}
}

var _ portssvc.HashSvc = (*hashService)(nil)

// ComputeNextHash computes the hash_self a journal must carry when posted
// immediately after a journal whose hash_self is prevHash.
func ComputeNextHash(journal domain.Journal, prevHash domain.JournalHash) domain.JournalHash {
	journal.HashPrev = prevHash
	return domain.ComputeHash(journal.HashPayload())
}

func (s *hashService) VerifyJournal(ctx context.Context, organizationID, journalID string) (bool, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, organizationID, journalID)
	if err != nil {
		return false, err
	}
	if journal.Status != domain.JournalPosted && journal.Status != domain.JournalReversed {
		return false, fmt.Errorf("journal %s is not posted, nothing to verify", journalID)
	}
	recomputed := domain.ComputeHash(journal.HashPayload())
	return recomputed == journal.HashSelf, nil
}

func (s *hashService) VerifyOrganizationChain(ctx context.Context, organizationID string) (*portssvc.ChainVerificationResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	result := &portssvc.ChainVerificationResult{Valid: true}
	expectedPrev := domain.EmptyHash

	var nextToken *string
	for {
		journals, token, err := s.journalRepo.FindPostedJournalsChronological(ctx, organizationID, chainScanBatchSize, nextToken)
		if err != nil {
			return nil, fmt.Errorf("failed to scan posted journals: %w", err)
		}

		for _, journal := range journals {
			result.JournalsChecked++

			if journal.HashPrev != expectedPrev {
				result.Valid = false
				result.FirstBrokenLink = journal.JournalID
				result.FailureReason = "hash_prev does not match the previous journal's hash_self"
				logger.Warn("hash chain broken: linkage mismatch", "journalID", journal.JournalID)
				return result, nil
			}

			recomputed := domain.ComputeHash(journal.HashPayload())
			if recomputed != journal.HashSelf {
				result.Valid = false
				result.FirstBrokenLink = journal.JournalID
				result.FailureReason = "recomputed hash does not match stored hash_self"
				logger.Warn("hash chain broken: tamper detected", "journalID", journal.JournalID)
				return result, nil
			}

			expectedPrev = journal.HashSelf
		}

		if token == nil {
			break
		}
		nextToken = token
	}

	logger.Info("organization hash chain verified", "organizationID", organizationID, "journalsChecked", result.JournalsChecked)
	return result, nil
}
