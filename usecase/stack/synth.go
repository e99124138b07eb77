package stack

import (
	"context"

	"github.com/yaegashi/grafanaops/domain/model"
)

// SynthInput identifies the stack to render.
type SynthInput struct {
	StackID string `json:"stack_id"`
}

// SynthOutput holds the rendered provider template.
type SynthOutput struct {
	StackName string `json:"stack_name"`
	Template  []byte `json:"template"`
}

// Synth renders the provider template for a stack without deploying it.
func (u *UseCase) Synth(ctx context.Context, in *SynthInput) (*SynthOutput, error) {
	if in == nil {
		return nil, model.ErrStackInvalid
	}
	s, err := u.get(ctx, in.StackID)
	if err != nil {
		return nil, err
	}
	body, err := u.StackPort.Synth(ctx, s)
	if err != nil {
		return nil, err
	}
	return &SynthOutput{StackName: s.Name, Template: body}, nil
}
