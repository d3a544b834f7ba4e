package services

import (
	portsrepo "github.com/ledgerhq/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/ledgerhq/ledgercore/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Period = NewPeriodService(repos.PeriodRepo)
	container.Journal = NewJournalService(repos.JournalRepo, repos.PeriodRepo)
	container.Posting = NewPostingService(repos.JournalRepo, repos.PeriodRepo)
	container.Hash = NewHashService(repos.JournalRepo)

	return container
}

// Helper to check interface implementations at compile time.
var (
	_ portssvc.PeriodSvc        = (*periodService)(nil)
	_ portssvc.JournalSvcFacade = (*journalService)(nil)
	_ portssvc.PostingSvc       = (*postingService)(nil)
	_ portssvc.HashSvc          = (*hashService)(nil)
)
