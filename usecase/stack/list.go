package stack

import (
	"context"

	"github.com/yaegashi/grafanaops/domain/model"
)

// ListInput filters stacks.
type ListInput struct {
	// ProviderID limits the result to one provider when set.
	ProviderID string `json:"provider_id,omitempty"`
}

// ListOutput holds the stacks.
type ListOutput struct {
	Stacks []*model.Stack `json:"stacks"`
}

// List returns stacks, optionally for one provider.
func (u *UseCase) List(ctx context.Context, in *ListInput) (*ListOutput, error) {
	all, err := u.Repos.Stack.List(ctx)
	if err != nil {
		return nil, err
	}
	if in == nil || in.ProviderID == "" {
		return &ListOutput{Stacks: all}, nil
	}
	out := &ListOutput{Stacks: []*model.Stack{}}
	for _, s := range all {
		if s.ProviderID == in.ProviderID {
			out.Stacks = append(out.Stacks, s)
		}
	}
	return out, nil
}
