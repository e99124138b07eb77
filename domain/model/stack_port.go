package model

import "context"

// Operation-scoped options and functional option types.
type StackDeployOptions struct {
	DryRun         bool
	SkipDashboards bool
	RecreateFailed bool
}
type StackDestroyOptions struct{ NoWait bool }

type StackDeployOption func(*StackDeployOptions)
type StackDestroyOption func(*StackDestroyOptions)

// Option helpers
func WithStackDeployDryRun() StackDeployOption {
	return func(o *StackDeployOptions) { o.DryRun = true }
}
func WithStackDeploySkipDashboards() StackDeployOption {
	return func(o *StackDeployOptions) { o.SkipDashboards = true }
}
func WithStackDeployRecreateFailed() StackDeployOption {
	return func(o *StackDeployOptions) { o.RecreateFailed = true }
}
func WithStackDestroyNoWait() StackDestroyOption {
	return func(o *StackDestroyOptions) { o.NoWait = true }
}

// StackPort is an interface (domain port) for stack operations.
type StackPort interface {
	Synth(ctx context.Context, stack *Stack) ([]byte, error)
	Deploy(ctx context.Context, stack *Stack, opts ...StackDeployOption) (*StackDeployResult, error)
	Destroy(ctx context.Context, stack *Stack, opts ...StackDestroyOption) error
	Status(ctx context.Context, stack *Stack) (*StackStatus, error)
	Outputs(ctx context.Context, stack *Stack) (map[string]string, error)
	AdminPassword(ctx context.Context, stack *Stack) (string, error)
	UploadDashboards(ctx context.Context, stack *Stack) (int, error)
}

// StackDeployResult summarizes a deploy.
type StackDeployResult struct {
	StackName  string            `json:"stackName"`
	StackID    string            `json:"stackId,omitempty"`
	Operation  string            `json:"operation"` // create, update, none, dry-run
	Outputs    map[string]string `json:"outputs,omitempty"`
	Dashboards int               `json:"dashboards,omitempty"`
}

// StackStatus represents the status of a deployed stack.
type StackStatus struct {
	StackName      string `json:"stackName"`
	Deployed       bool   `json:"deployed"`
	State          string `json:"state,omitempty"`
	Reason         string `json:"reason,omitempty"`
	URL            string `json:"url,omitempty"`
	DatabaseStatus string `json:"databaseStatus,omitempty"`
	RunningTasks   int    `json:"runningTasks"`
	DesiredTasks   int    `json:"desiredTasks"`
	Account        string `json:"account,omitempty"`
	Region         string `json:"region,omitempty"`
}
