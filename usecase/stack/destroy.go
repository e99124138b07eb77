package stack

import (
	"context"

	"github.com/yaegashi/grafanaops/domain/model"
)

// DestroyInput represents a command to destroy a stack.
type DestroyInput struct {
	StackID string `json:"stack_id"`
	NoWait  bool   `json:"no_wait,omitempty"`
}

// Destroy deletes the cloud stack. The stack record is kept.
func (u *UseCase) Destroy(ctx context.Context, in *DestroyInput) error {
	if in == nil {
		return model.ErrStackInvalid
	}
	s, err := u.get(ctx, in.StackID)
	if err != nil {
		return err
	}
	var opts []model.StackDestroyOption
	if in.NoWait {
		opts = append(opts, model.WithStackDestroyNoWait())
	}
	return u.StackPort.Destroy(ctx, s, opts...)
}
