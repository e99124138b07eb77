package stack

import (
	"context"
	"fmt"
	"time"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/naming"
)

// CreateInput contains a stack to persist. The stack is expected to be
// defaulted and validated, as produced by the configuration loader.
type CreateInput struct {
	Stack *model.Stack `json:"stack"`
}

// CreateOutput wraps the created stack.
type CreateOutput struct {
	Stack *model.Stack `json:"stack"`
}

// Create persists a new stack under an existing provider.
func (u *UseCase) Create(ctx context.Context, in *CreateInput) (*CreateOutput, error) {
	if in == nil || in.Stack == nil {
		return nil, model.ErrStackInvalid
	}
	s := in.Stack.Clone()
	if err := naming.ValidateStackName(s.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStackInvalid, err)
	}
	if _, err := u.Repos.Provider.Get(ctx, s.ProviderID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	s.ID = ""
	s.CreatedAt, s.UpdatedAt = now, now
	if err := u.Repos.Stack.Create(ctx, s); err != nil {
		return nil, err
	}
	return &CreateOutput{Stack: s}, nil
}
