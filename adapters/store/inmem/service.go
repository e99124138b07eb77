package inmem

import (
	"github.com/yaegashi/grafanaops/domain"
	"github.com/yaegashi/grafanaops/domain/model"
)

// ServiceRepository is a thread-safe in-memory implementation.
type ServiceRepository struct {
	*table[model.Service, *model.Service]
}

func NewServiceRepository() *ServiceRepository {
	return &ServiceRepository{newTable("svc", model.ErrServiceNotFound,
		func(s *model.Service) *string { return &s.ID },
		func(s *model.Service) string { return s.Name },
	)}
}

var _ domain.ServiceRepository = (*ServiceRepository)(nil)
