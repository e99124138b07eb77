package model

import "time"

// Service represents the logical owner of providers and stacks.
type Service struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy of the service.
func (s *Service) Clone() *Service {
	cp := *s
	return &cp
}
