package rdb

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yaegashi/grafanaops/domain"
	"github.com/yaegashi/grafanaops/domain/model"
)

// ServiceRepository is a GORM-backed implementation of domain.ServiceRepository.
type ServiceRepository struct{ db *gorm.DB }

func NewServiceRepository(db *gorm.DB) *ServiceRepository { return &ServiceRepository{db: db} }

func serviceToRecord(s *model.Service) *ServiceRecord {
	return &ServiceRecord{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt}
}

func serviceToModel(r *ServiceRecord) *model.Service {
	return &model.Service{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func (r *ServiceRepository) Create(ctx context.Context, s *model.Service) error {
	if s.ID == "" {
		s.ID = "svc-" + uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(serviceToRecord(s)).Error
}

func (r *ServiceRepository) Get(ctx context.Context, id string) (*model.Service, error) {
	var rec ServiceRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrServiceNotFound
		}
		return nil, err
	}
	return serviceToModel(&rec), nil
}

func (r *ServiceRepository) List(ctx context.Context) ([]*model.Service, error) {
	var recs []ServiceRecord
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*model.Service, 0, len(recs))
	for i := range recs {
		out = append(out, serviceToModel(&recs[i]))
	}
	return out, nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *model.Service) error {
	res := r.db.WithContext(ctx).Model(&ServiceRecord{}).Where("id = ?", s.ID).Select("*").Updates(serviceToRecord(s))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrServiceNotFound
	}
	return nil
}

func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&ServiceRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrServiceNotFound
	}
	return nil
}

var _ domain.ServiceRepository = (*ServiceRepository)(nil)
