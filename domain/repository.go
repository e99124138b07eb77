package domain

import (
	"context"

	"github.com/yaegashi/grafanaops/domain/model"
)

// ServiceRepository stores and retrieves Service aggregates.
type ServiceRepository interface {
	Create(ctx context.Context, s *model.Service) error
	Get(ctx context.Context, id string) (*model.Service, error)
	List(ctx context.Context) ([]*model.Service, error)
	Update(ctx context.Context, s *model.Service) error
	Delete(ctx context.Context, id string) error
}

// ProviderRepository stores and retrieves Provider aggregates.
type ProviderRepository interface {
	Create(ctx context.Context, p *model.Provider) error
	Get(ctx context.Context, id string) (*model.Provider, error)
	List(ctx context.Context) ([]*model.Provider, error)
	Update(ctx context.Context, p *model.Provider) error
	Delete(ctx context.Context, id string) error
}

// StackRepository stores and retrieves Stack aggregates.
type StackRepository interface {
	Create(ctx context.Context, s *model.Stack) error
	Get(ctx context.Context, id string) (*model.Stack, error)
	List(ctx context.Context) ([]*model.Stack, error)
	Update(ctx context.Context, s *model.Stack) error
	Delete(ctx context.Context, id string) error
}

// Repositories groups repository interfaces.
type Repositories struct {
	Service  ServiceRepository
	Provider ProviderRepository
	Stack    StackRepository
}
