package inmem

import (
	"context"

	"github.com/yaegashi/grafanaops/config/grafanaopscfg"
	"github.com/yaegashi/grafanaops/domain"
	"github.com/yaegashi/grafanaops/internal/logging"
)

// Store provides a unified interface for all in-memory repositories.
type Store struct {
	ServiceRepo  *ServiceRepository
	ProviderRepo *ProviderRepository
	StackRepo    *StackRepository
}

// NewStore creates a new in-memory store with all repositories.
func NewStore() *Store {
	return &Store{
		ServiceRepo:  NewServiceRepository(),
		ProviderRepo: NewProviderRepository(),
		StackRepo:    NewStackRepository(),
	}
}

// Repositories returns the store as domain repositories.
func (s *Store) Repositories() *domain.Repositories {
	return &domain.Repositories{Service: s.ServiceRepo, Provider: s.ProviderRepo, Stack: s.StackRepo}
}

// LoadFromConfig loads a resolved grafanaops.yml configuration into the store.
func (s *Store) LoadFromConfig(ctx context.Context, cfg *grafanaopscfg.Root) error {
	service, provider, stack, err := cfg.ToModels()
	if err != nil {
		return err
	}

	// Dependency order: service → provider → stack
	if err := s.ServiceRepo.Create(ctx, service); err != nil {
		return err
	}
	if err := s.ProviderRepo.Create(ctx, provider); err != nil {
		return err
	}
	return s.StackRepo.Create(ctx, stack)
}

// LoadFromFile loads, defaults and validates a grafanaops.yml file into the store.
// Configuration warnings are logged.
func (s *Store) LoadFromFile(ctx context.Context, path string) error {
	cfg, err := grafanaopscfg.LoadResolved(path)
	if err != nil {
		return err
	}
	log := logging.FromContext(ctx)
	for _, w := range cfg.Warnings() {
		log.Warn(ctx, w, "path", path)
	}
	return s.LoadFromConfig(ctx, cfg)
}
