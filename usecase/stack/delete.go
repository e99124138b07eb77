package stack

import (
	"context"

	"github.com/yaegashi/grafanaops/domain/model"
)

// DeleteInput identifies a stack record to remove. Cloud resources are not
// touched; use Destroy for that.
type DeleteInput struct {
	StackID string `json:"stack_id"`
}

// Delete removes the stack record.
func (u *UseCase) Delete(ctx context.Context, in *DeleteInput) error {
	if in == nil || in.StackID == "" {
		return model.ErrStackInvalid
	}
	return u.Repos.Stack.Delete(ctx, in.StackID)
}
