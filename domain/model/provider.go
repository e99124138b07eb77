package model

import (
	"maps"
	"time"
)

// Provider represents a cloud provider account/region binding (e.g., "aws").
type Provider struct {
	ID        string
	Name      string
	ServiceID string // references Service
	Driver    string // e.g., "aws"
	Settings  map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the provider.
func (p *Provider) Clone() *Provider {
	cp := *p
	cp.Settings = maps.Clone(p.Settings)
	return &cp
}
