package stack

import (
	"context"

	"github.com/yaegashi/grafanaops/domain/model"
)

// GetInput identifies a stack.
type GetInput struct {
	StackID string `json:"stack_id"`
}

// GetOutput wraps the stack.
type GetOutput struct {
	Stack *model.Stack `json:"stack"`
}

// Get returns a stack by ID.
func (u *UseCase) Get(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil {
		return nil, model.ErrStackInvalid
	}
	s, err := u.get(ctx, in.StackID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Stack: s}, nil
}
