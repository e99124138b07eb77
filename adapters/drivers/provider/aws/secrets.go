package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/stackgen"
)

// StackAdminPassword reads the Grafana admin password from the secret the
// stack created for it.
func (d *driver) StackAdminPassword(ctx context.Context, stack *model.Stack) (password string, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "StackAdminPassword")
	defer func() { cleanup(err) }()

	name, err := d.stackName(stack)
	if err != nil {
		return "", err
	}
	current, err := d.describeStack(ctx, name)
	if err != nil {
		return "", err
	}
	if current == nil {
		return "", fmt.Errorf("%s: %w", name, model.ErrStackNotDeployed)
	}
	arn := stackOutputs(current)[stackgen.OutputAdminSecretArn]
	if arn == "" {
		return "", fmt.Errorf("stack %s has no admin password secret", name)
	}
	out, err := d.secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(arn)})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", arn, err)
	}
	var v struct {
		Password string `json:"password"`
	}
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &v); err != nil {
		return "", fmt.Errorf("secret %s: %w", arn, err)
	}
	if v.Password == "" {
		return "", fmt.Errorf("secret %s has no password key", arn)
	}
	return v.Password, nil
}
