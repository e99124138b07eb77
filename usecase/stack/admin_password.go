package stack

import (
	"context"

	"github.com/yaegashi/grafanaops/domain/model"
)

// AdminPasswordInput identifies a deployed stack.
type AdminPasswordInput struct {
	StackID string `json:"stack_id"`
}

// AdminPasswordOutput holds the Grafana admin credentials.
type AdminPasswordOutput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminPassword returns the Grafana admin password kept by the stack.
func (u *UseCase) AdminPassword(ctx context.Context, in *AdminPasswordInput) (*AdminPasswordOutput, error) {
	if in == nil {
		return nil, model.ErrStackInvalid
	}
	s, err := u.get(ctx, in.StackID)
	if err != nil {
		return nil, err
	}
	pw, err := u.StackPort.AdminPassword(ctx, s)
	if err != nil {
		return nil, err
	}
	return &AdminPasswordOutput{Username: "admin", Password: pw}, nil
}
