package services

import (
	"context"
	"time"

	"github.com/ledgerhq/ledgercore/internal/core/domain"
)

// ReverseJournalRequest carries the caller-supplied fields of spec §4.4's
// reverse() contract that the mirror journal cannot derive from the
// original: the reversal period is resolved from ReversalDate.
type ReverseJournalRequest struct {
	Description  string
	ReversalDate time.Time
}

// PostingSvc validates, hash-chains and durably commits journals, and
// carries out the atomic reversal protocol. It is the only path by which
// a journal moves out of DRAFT.
type PostingSvc interface {
	// PostJournal validates organizationID's journal (balance, period state,
	// line invariants), extends the organization's hash chain, and commits
	// it as POSTED. Concurrent posts for the same organization are
	// serialized so the chain extends without gaps.
	PostJournal(ctx context.Context, organizationID, journalID, actorID string) (*domain.Journal, error)

	// ReverseJournal validates that journalID is POSTED and not yet
	// reversed, that req.ReversalDate is neither before its posting date
	// nor more than 365 days after it, and that the period covering
	// req.ReversalDate is open, then atomically marks it REVERSED and posts a mirror
	// journal with swapped debit/credit lines, extending the hash chain.
	ReverseJournal(ctx context.Context, organizationID, journalID, actorID string, req ReverseJournalRequest) (*domain.Journal, error)
}
