package aws

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/stackgen"
)

// ecrImagePrefix marks images that refer to a repository in the account's
// registry by name: "ecr:<repository>[:tag]".
const ecrImagePrefix = "ecr:"

// environment resolves the account-dependent inputs of template synthesis.
func (d *driver) environment(ctx context.Context, stack *model.Stack) (stackgen.Environment, error) {
	env := stackgen.Environment{Region: d.region}

	azs, err := d.availabilityZones(ctx)
	if err != nil {
		return env, err
	}
	if len(azs) < stack.Network.MaxAZs {
		return env, fmt.Errorf("region %s has %d availability zones, stack needs %d", d.region, len(azs), stack.Network.MaxAZs)
	}
	env.AvailabilityZones = azs[:stack.Network.MaxAZs]

	if env.Image, err = d.resolveImage(ctx, stack.Container.Image); err != nil {
		return env, err
	}
	if env.ExecutionRoleARN, err = d.roleARN(ctx, stack.Settings[SettingExecutionRoleName]); err != nil {
		return env, fmt.Errorf("execution role: %w", err)
	}
	if env.TaskRoleARN, err = d.roleARN(ctx, stack.Settings[SettingTaskRoleName]); err != nil {
		return env, fmt.Errorf("task role: %w", err)
	}
	return env, nil
}

// availabilityZones returns the available standard zones of the region, sorted.
func (d *driver) availabilityZones(ctx context.Context) ([]string, error) {
	out, err := d.ec2.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("state"), Values: []string{"available"}},
			{Name: aws.String("zone-type"), Values: []string{"availability-zone"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe availability zones: %w", err)
	}
	var zones []string
	for _, z := range out.AvailabilityZones {
		if name := aws.ToString(z.ZoneName); name != "" {
			zones = append(zones, name)
		}
	}
	sort.Strings(zones)
	return zones, nil
}

// resolveImage expands "ecr:<repository>[:tag]" to the repository URI.
// Other references are returned unchanged.
func (d *driver) resolveImage(ctx context.Context, image string) (string, error) {
	ref, ok := strings.CutPrefix(image, ecrImagePrefix)
	if !ok {
		return "", nil
	}
	repo, tag, found := strings.Cut(ref, ":")
	if !found || tag == "" {
		tag = "latest"
	}
	if repo == "" {
		return "", fmt.Errorf("image %q: missing repository name", image)
	}
	out, err := d.ecr.DescribeRepositories(ctx, &ecr.DescribeRepositoriesInput{
		RepositoryNames: []string{repo},
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe ECR repository %s: %w", repo, err)
	}
	if len(out.Repositories) == 0 || aws.ToString(out.Repositories[0].RepositoryUri) == "" {
		return "", fmt.Errorf("ECR repository %s not found", repo)
	}
	return aws.ToString(out.Repositories[0].RepositoryUri) + ":" + tag, nil
}

// roleARN looks up an existing IAM role by name. An empty name returns "".
func (d *driver) roleARN(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	out, err := d.iam.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
	if err != nil {
		return "", fmt.Errorf("failed to get IAM role %s: %w", name, err)
	}
	if out.Role == nil {
		return "", fmt.Errorf("IAM role %s not found", name)
	}
	return aws.ToString(out.Role.Arn), nil
}
