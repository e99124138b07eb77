package stack

import (
	"context"

	"github.com/yaegashi/grafanaops/domain/model"
)

// UploadDashboardsInput identifies a deployed stack.
type UploadDashboardsInput struct {
	StackID string `json:"stack_id"`
}

// UploadDashboardsOutput reports the uploaded objects.
type UploadDashboardsOutput struct {
	Uploaded int `json:"uploaded"`
}

// UploadDashboards uploads the dashboards directory to the stack bucket.
func (u *UseCase) UploadDashboards(ctx context.Context, in *UploadDashboardsInput) (*UploadDashboardsOutput, error) {
	if in == nil {
		return nil, model.ErrStackInvalid
	}
	s, err := u.get(ctx, in.StackID)
	if err != nil {
		return nil, err
	}
	n, err := u.StackPort.UploadDashboards(ctx, s)
	if err != nil {
		return nil, err
	}
	return &UploadDashboardsOutput{Uploaded: n}, nil
}
