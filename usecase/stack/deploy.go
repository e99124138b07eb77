package stack

import (
	"context"

	"github.com/yaegashi/grafanaops/domain/model"
)

// DeployInput represents a command to deploy a stack.
type DeployInput struct {
	StackID        string `json:"stack_id"`
	DryRun         bool   `json:"dry_run,omitempty"`
	SkipDashboards bool   `json:"skip_dashboards,omitempty"`
	RecreateFailed bool   `json:"recreate_failed,omitempty"`
}

// DeployOutput is the result of a deploy.
type DeployOutput struct {
	model.StackDeployResult
	StackID string `json:"stack_id"`
}

// Deploy creates or updates the cloud stack.
func (u *UseCase) Deploy(ctx context.Context, in *DeployInput) (*DeployOutput, error) {
	if in == nil {
		return nil, model.ErrStackInvalid
	}
	s, err := u.get(ctx, in.StackID)
	if err != nil {
		return nil, err
	}
	var opts []model.StackDeployOption
	if in.DryRun {
		opts = append(opts, model.WithStackDeployDryRun())
	}
	if in.SkipDashboards {
		opts = append(opts, model.WithStackDeploySkipDashboards())
	}
	if in.RecreateFailed {
		opts = append(opts, model.WithStackDeployRecreateFailed())
	}
	res, err := u.StackPort.Deploy(ctx, s, opts...)
	if err != nil {
		return nil, err
	}
	return &DeployOutput{StackDeployResult: *res, StackID: s.ID}, nil
}
