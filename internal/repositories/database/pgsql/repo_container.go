package pgsql

import (
	"log/slog"

	portsrepo "github.com/ledgerhq/ledgercore/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every Postgres-backed repository the service
// layer needs.
func NewRepositoryProvider(dbPool *pgxpool.Pool, logger *slog.Logger) portsrepo.RepositoryProvider {
	periodRepo := newPgxPeriodRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool)

	logger.Info("repositories initialized")

	return portsrepo.RepositoryProvider{
		PeriodRepo:  periodRepo,
		JournalRepo: journalRepo,
	}
}
