package provider

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/naming"
)

// CreateInput contains data to create a provider.
type CreateInput struct {
	Name      string            `json:"name"`
	ServiceID string            `json:"service_id"`
	Driver    string            `json:"driver"`
	Settings  map[string]string `json:"settings,omitempty"`
}

// CreateOutput wraps the created provider.
type CreateOutput struct {
	Provider *model.Provider `json:"provider"`
}

// Create persists a new provider under an existing service.
func (u *UseCase) Create(ctx context.Context, in *CreateInput) (*CreateOutput, error) {
	if in == nil || in.Driver == "" {
		return nil, model.ErrProviderInvalid
	}
	if err := naming.ValidateProviderName(in.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProviderInvalid, err)
	}
	if _, err := u.Repos.Service.Get(ctx, in.ServiceID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p := &model.Provider{
		Name:      in.Name,
		ServiceID: in.ServiceID,
		Driver:    in.Driver,
		Settings:  maps.Clone(in.Settings),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Repos.Provider.Create(ctx, p); err != nil {
		return nil, err
	}
	return &CreateOutput{Provider: p}, nil
}

// GetInput identifies a provider.
type GetInput struct {
	ProviderID string `json:"provider_id"`
}

// GetOutput wraps the provider.
type GetOutput struct {
	Provider *model.Provider `json:"provider"`
}

// Get retrieves a provider by ID.
func (u *UseCase) Get(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil || in.ProviderID == "" {
		return nil, model.ErrProviderInvalid
	}
	p, err := u.Repos.Provider.Get(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Provider: p}, nil
}

// ListOutput holds the providers.
type ListOutput struct {
	Providers []*model.Provider `json:"providers"`
}

// List returns all providers.
func (u *UseCase) List(ctx context.Context) (*ListOutput, error) {
	items, err := u.Repos.Provider.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Providers: items}, nil
}

// UpdateInput carries a provider's new driver and settings.
type UpdateInput struct {
	ProviderID string            `json:"provider_id"`
	Driver     string            `json:"driver"`
	Settings   map[string]string `json:"settings,omitempty"`
}

// UpdateOutput wraps the updated provider.
type UpdateOutput struct {
	Provider *model.Provider `json:"provider"`
}

// Update replaces the driver and settings of a stored provider. Name and
// service are kept.
func (u *UseCase) Update(ctx context.Context, in *UpdateInput) (*UpdateOutput, error) {
	if in == nil || in.ProviderID == "" || in.Driver == "" {
		return nil, model.ErrProviderInvalid
	}
	p, err := u.Repos.Provider.Get(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	p.Driver = in.Driver
	p.Settings = maps.Clone(in.Settings)
	p.UpdatedAt = time.Now().UTC()
	if err := u.Repos.Provider.Update(ctx, p); err != nil {
		return nil, err
	}
	return &UpdateOutput{Provider: p}, nil
}

// DeleteInput identifies a provider to remove.
type DeleteInput struct {
	ProviderID string `json:"provider_id"`
}

// Delete removes a provider that no stack references.
func (u *UseCase) Delete(ctx context.Context, in *DeleteInput) error {
	if in == nil || in.ProviderID == "" {
		return model.ErrProviderInvalid
	}
	stacks, err := u.Repos.Stack.List(ctx)
	if err != nil {
		return err
	}
	for _, s := range stacks {
		if s.ProviderID == in.ProviderID {
			return fmt.Errorf("provider %s is referenced by stack %s: %w", in.ProviderID, s.Name, model.ErrProviderInvalid)
		}
	}
	return u.Repos.Provider.Delete(ctx, in.ProviderID)
}
