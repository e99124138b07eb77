package stack

import (
	"context"
	"time"

	"github.com/yaegashi/grafanaops/domain/model"
)

// UpdateInput carries the new stack state. ID and CreatedAt are preserved
// from the stored stack.
type UpdateInput struct {
	StackID string       `json:"stack_id"`
	Stack   *model.Stack `json:"stack"`
}

// UpdateOutput wraps the updated stack.
type UpdateOutput struct {
	Stack *model.Stack `json:"stack"`
}

// Update replaces a stored stack.
func (u *UseCase) Update(ctx context.Context, in *UpdateInput) (*UpdateOutput, error) {
	if in == nil || in.Stack == nil {
		return nil, model.ErrStackInvalid
	}
	cur, err := u.get(ctx, in.StackID)
	if err != nil {
		return nil, err
	}
	s := in.Stack.Clone()
	s.ID = cur.ID
	s.CreatedAt = cur.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	if s.ProviderID == "" {
		s.ProviderID = cur.ProviderID
	}
	if err := u.Repos.Stack.Update(ctx, s); err != nil {
		return nil, err
	}
	return &UpdateOutput{Stack: s}, nil
}
