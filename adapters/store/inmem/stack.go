package inmem

import (
	"github.com/yaegashi/grafanaops/domain"
	"github.com/yaegashi/grafanaops/domain/model"
)

// StackRepository is a thread-safe in-memory implementation.
type StackRepository struct {
	*table[model.Stack, *model.Stack]
}

func NewStackRepository() *StackRepository {
	return &StackRepository{newTable("stack", model.ErrStackNotFound,
		func(s *model.Stack) *string { return &s.ID },
		func(s *model.Stack) string { return s.Name },
	)}
}

var _ domain.StackRepository = (*StackRepository)(nil)
