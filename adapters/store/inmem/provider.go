package inmem

import (
	"github.com/yaegashi/grafanaops/domain"
	"github.com/yaegashi/grafanaops/domain/model"
)

// ProviderRepository is a thread-safe in-memory implementation.
type ProviderRepository struct {
	*table[model.Provider, *model.Provider]
}

func NewProviderRepository() *ProviderRepository {
	return &ProviderRepository{newTable("prov", model.ErrProviderNotFound,
		func(p *model.Provider) *string { return &p.ID },
		func(p *model.Provider) string { return p.Name },
	)}
}

var _ domain.ProviderRepository = (*ProviderRepository)(nil)
