package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/naming"
)

// CreateInput contains data to create a service.
type CreateInput struct {
	Name string `json:"name"`
}

// CreateOutput wraps the created service.
type CreateOutput struct {
	Service *model.Service `json:"service"`
}

// Create persists a new service.
func (u *UseCase) Create(ctx context.Context, in *CreateInput) (*CreateOutput, error) {
	if in == nil {
		return nil, model.ErrServiceInvalid
	}
	if err := naming.ValidateServiceName(in.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrServiceInvalid, err)
	}
	now := time.Now().UTC()
	s := &model.Service{Name: in.Name, CreatedAt: now, UpdatedAt: now}
	if err := u.Repos.Service.Create(ctx, s); err != nil {
		return nil, err
	}
	return &CreateOutput{Service: s}, nil
}

// GetInput identifies a service.
type GetInput struct {
	ServiceID string `json:"service_id"`
}

// GetOutput wraps the service.
type GetOutput struct {
	Service *model.Service `json:"service"`
}

// Get retrieves a service by ID.
func (u *UseCase) Get(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil || in.ServiceID == "" {
		return nil, model.ErrServiceInvalid
	}
	s, err := u.Repos.Service.Get(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Service: s}, nil
}

// ListOutput holds the services.
type ListOutput struct {
	Services []*model.Service `json:"services"`
}

// List returns all services.
func (u *UseCase) List(ctx context.Context) (*ListOutput, error) {
	items, err := u.Repos.Service.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Services: items}, nil
}

// DeleteInput identifies a service to remove.
type DeleteInput struct {
	ServiceID string `json:"service_id"`
}

// Delete removes a service that no provider references.
func (u *UseCase) Delete(ctx context.Context, in *DeleteInput) error {
	if in == nil || in.ServiceID == "" {
		return model.ErrServiceInvalid
	}
	providers, err := u.Repos.Provider.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range providers {
		if p.ServiceID == in.ServiceID {
			return fmt.Errorf("service %s is referenced by provider %s: %w", in.ServiceID, p.Name, model.ErrServiceInvalid)
		}
	}
	return u.Repos.Service.Delete(ctx, in.ServiceID)
}
