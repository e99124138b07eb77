package rdb

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yaegashi/grafanaops/domain"
	"github.com/yaegashi/grafanaops/domain/model"
)

// StackRepository is a GORM-backed implementation of domain.StackRepository.
type StackRepository struct{ db *gorm.DB }

func NewStackRepository(db *gorm.DB) *StackRepository { return &StackRepository{db: db} }

func stackToRecord(s *model.Stack) (*StackRecord, error) {
	rec := &StackRecord{
		ID:         s.ID,
		Name:       s.Name,
		ProviderID: s.ProviderID,
		Preset:     s.Preset,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	for _, f := range []struct {
		name string
		dst  *string
		v    any
	}{
		{"network", &rec.Network, s.Network},
		{"task", &rec.Task, s.Task},
		{"container", &rec.Container, s.Container},
		{"database", &rec.Database, s.Database},
		{"loadBalancer", &rec.LoadBalancer, s.LoadBalancer},
		{"bucket", &rec.Bucket, s.Bucket},
		{"settings", &rec.Settings, s.Settings},
	} {
		enc, err := encodeJSON(f.name, f.v)
		if err != nil {
			return nil, err
		}
		*f.dst = enc
	}
	return rec, nil
}

func stackToModel(r *StackRecord) (*model.Stack, error) {
	s := &model.Stack{
		ID:         r.ID,
		Name:       r.Name,
		ProviderID: r.ProviderID,
		Preset:     r.Preset,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	for _, f := range []struct {
		name string
		src  string
		v    any
	}{
		{"network", r.Network, &s.Network},
		{"task", r.Task, &s.Task},
		{"container", r.Container, &s.Container},
		{"database", r.Database, &s.Database},
		{"loadBalancer", r.LoadBalancer, &s.LoadBalancer},
		{"bucket", r.Bucket, &s.Bucket},
		{"settings", r.Settings, &s.Settings},
	} {
		if err := decodeJSON(f.name, f.src, f.v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (r *StackRepository) Create(ctx context.Context, s *model.Stack) error {
	if s.ID == "" {
		s.ID = "stack-" + uuid.NewString()
	}
	rec, err := stackToRecord(s)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *StackRepository) Get(ctx context.Context, id string) (*model.Stack, error) {
	var rec StackRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrStackNotFound
		}
		return nil, err
	}
	return stackToModel(&rec)
}

func (r *StackRepository) List(ctx context.Context) ([]*model.Stack, error) {
	var recs []StackRecord
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*model.Stack, 0, len(recs))
	for i := range recs {
		s, err := stackToModel(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *StackRepository) Update(ctx context.Context, s *model.Stack) error {
	rec, err := stackToRecord(s)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&StackRecord{}).Where("id = ?", rec.ID).Select("*").Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrStackNotFound
	}
	return nil
}

func (r *StackRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&StackRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrStackNotFound
	}
	return nil
}

var _ domain.StackRepository = (*StackRepository)(nil)
