package aws

import (
	"context"
	"errors"
	"testing"

	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/stackgen"
)

func TestStackAdminPassword(t *testing.T) {
	const arn = "arn:aws:secretsmanager:us-east-1:123456789012:secret:admin"
	tests := []struct {
		name    string
		outputs map[string]string
		value   string
		want    string
		wantErr bool
	}{
		{name: "ok", outputs: map[string]string{stackgen.OutputAdminSecretArn: arn}, value: `{"username":"admin","password":"s3cret"}`, want: "s3cret"},
		{name: "no secret output", outputs: map[string]string{}, wantErr: true},
		{name: "not json", outputs: map[string]string{stackgen.OutputAdminSecretArn: arn}, value: "plain", wantErr: true},
		{name: "no password key", outputs: map[string]string{stackgen.OutputAdminSecretArn: arn}, value: `{"username":"admin"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakes()
			d := newTestDriver(f)
			stack := presetStack(t, "sqlite-bucket")
			name, _ := d.stackName(stack)
			f.cfn.put(name, cfntypes.StackStatusCreateComplete, tt.outputs)
			if tt.value != "" {
				f.secrets.values[arn] = tt.value
			}
			got, err := d.StackAdminPassword(context.Background(), stack)
			if (err != nil) != tt.wantErr {
				t.Fatalf("StackAdminPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("StackAdminPassword() = %q, want %q", got, tt.want)
			}
		})
	}

	d := newTestDriver(newFakes())
	if _, err := d.StackAdminPassword(context.Background(), presetStack(t, "basic")); !errors.Is(err, model.ErrStackNotDeployed) {
		t.Errorf("undeployed error = %v", err)
	}
}
