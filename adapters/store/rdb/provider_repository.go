package rdb

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yaegashi/grafanaops/domain"
	"github.com/yaegashi/grafanaops/domain/model"
)

// ProviderRepository is a GORM-backed implementation of domain.ProviderRepository.
type ProviderRepository struct{ db *gorm.DB }

func NewProviderRepository(db *gorm.DB) *ProviderRepository { return &ProviderRepository{db: db} }

func providerToRecord(p *model.Provider) (*ProviderRecord, error) {
	settings, err := encodeJSON("settings", p.Settings)
	if err != nil {
		return nil, err
	}
	return &ProviderRecord{
		ID:        p.ID,
		Name:      p.Name,
		ServiceID: p.ServiceID,
		Driver:    p.Driver,
		Settings:  settings,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func providerToModel(r *ProviderRecord) (*model.Provider, error) {
	p := &model.Provider{
		ID:        r.ID,
		Name:      r.Name,
		ServiceID: r.ServiceID,
		Driver:    r.Driver,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if err := decodeJSON("settings", r.Settings, &p.Settings); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProviderRepository) Create(ctx context.Context, p *model.Provider) error {
	if p.ID == "" {
		p.ID = "prov-" + uuid.NewString()
	}
	rec, err := providerToRecord(p)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *ProviderRepository) Get(ctx context.Context, id string) (*model.Provider, error) {
	var rec ProviderRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrProviderNotFound
		}
		return nil, err
	}
	return providerToModel(&rec)
}

func (r *ProviderRepository) List(ctx context.Context) ([]*model.Provider, error) {
	var recs []ProviderRecord
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*model.Provider, 0, len(recs))
	for i := range recs {
		p, err := providerToModel(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProviderRepository) Update(ctx context.Context, p *model.Provider) error {
	rec, err := providerToRecord(p)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&ProviderRecord{}).Where("id = ?", rec.ID).Select("*").Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrProviderNotFound
	}
	return nil
}

func (r *ProviderRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&ProviderRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrProviderNotFound
	}
	return nil
}

var _ domain.ProviderRepository = (*ProviderRepository)(nil)
