package stack

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaegashi/grafanaops/domain/model"
)

// FindInput selects a stack by ID or name.
type FindInput struct {
	// Ref is a stack ID or name. Empty selects the only stack.
	Ref string `json:"ref"`
}

// FindOutput wraps the selected stack.
type FindOutput struct {
	Stack *model.Stack `json:"stack"`
}

// Find resolves a stack reference. IDs win over names.
func (u *UseCase) Find(ctx context.Context, in *FindInput) (*FindOutput, error) {
	if in == nil {
		return nil, model.ErrStackInvalid
	}
	if in.Ref != "" {
		s, err := u.Repos.Stack.Get(ctx, in.Ref)
		if err == nil {
			return &FindOutput{Stack: s}, nil
		}
		if !errors.Is(err, model.ErrStackNotFound) {
			return nil, err
		}
	}
	all, err := u.Repos.Stack.List(ctx)
	if err != nil {
		return nil, err
	}
	if in.Ref == "" {
		switch len(all) {
		case 0:
			return nil, model.ErrStackNotFound
		case 1:
			return &FindOutput{Stack: all[0]}, nil
		default:
			return nil, fmt.Errorf("%d stacks defined, select one: %w", len(all), model.ErrStackInvalid)
		}
	}
	for _, s := range all {
		if s.Name == in.Ref {
			return &FindOutput{Stack: s}, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", in.Ref, model.ErrStackNotFound)
}

// get loads a stack by ID, rejecting empty IDs.
func (u *UseCase) get(ctx context.Context, id string) (*model.Stack, error) {
	if id == "" {
		return nil, model.ErrStackInvalid
	}
	return u.Repos.Stack.Get(ctx, id)
}
