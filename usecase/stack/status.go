package stack

import (
	"context"

	"github.com/yaegashi/grafanaops/domain/model"
)

// StatusInput represents a command to get stack status.
type StatusInput struct {
	StackID string `json:"stack_id"`
}

// StatusOutput represents the response of stack status.
type StatusOutput struct {
	model.StackStatus
	StackID string `json:"stack_id"`
	Name    string `json:"name"`
}

// Status returns the status of a stack.
func (u *UseCase) Status(ctx context.Context, in *StatusInput) (*StatusOutput, error) {
	if in == nil {
		return nil, model.ErrStackInvalid
	}
	s, err := u.get(ctx, in.StackID)
	if err != nil {
		return nil, err
	}
	st, err := u.StackPort.Status(ctx, s)
	if err != nil {
		return nil, err
	}
	return &StatusOutput{StackStatus: *st, StackID: s.ID, Name: s.Name}, nil
}
