package stack

import (
	"context"
	"fmt"

	"github.com/yaegashi/grafanaops/domain/model"
)

// OutputGrafanaURL is the stack output holding the Grafana endpoint.
const OutputGrafanaURL = "GrafanaUrl"

// OutputsInput identifies a deployed stack.
type OutputsInput struct {
	StackID string `json:"stack_id"`
}

// OutputsOutput holds the stack outputs.
type OutputsOutput struct {
	Outputs map[string]string `json:"outputs"`
}

// Outputs returns the outputs of a deployed stack.
func (u *UseCase) Outputs(ctx context.Context, in *OutputsInput) (*OutputsOutput, error) {
	if in == nil {
		return nil, model.ErrStackInvalid
	}
	s, err := u.get(ctx, in.StackID)
	if err != nil {
		return nil, err
	}
	out, err := u.StackPort.Outputs(ctx, s)
	if err != nil {
		return nil, err
	}
	return &OutputsOutput{Outputs: out}, nil
}

// URLOutput holds the Grafana endpoint.
type URLOutput struct {
	URL string `json:"url"`
}

// URL returns the Grafana endpoint of a deployed stack.
func (u *UseCase) URL(ctx context.Context, in *OutputsInput) (*URLOutput, error) {
	out, err := u.Outputs(ctx, in)
	if err != nil {
		return nil, err
	}
	url := out.Outputs[OutputGrafanaURL]
	if url == "" {
		return nil, fmt.Errorf("stack has no reachable Grafana endpoint yet")
	}
	return &URLOutput{URL: url}, nil
}
