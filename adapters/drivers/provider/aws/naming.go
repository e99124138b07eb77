package aws

// Stack naming rules:
//   stack.settings.AWS_STACK_NAME || "{prefix}-{service}-{stack}-{hash.Stack}"
// prefix is provider.settings.AWS_RESOURCE_PREFIX || "grafanaops".
// Hashes come from internal/naming.NewHashes and survive truncation.

import (
	"fmt"
	"strings"

	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/naming"
)

// SettingStackName overrides the generated CloudFormation stack name.
const SettingStackName = "AWS_STACK_NAME"

// Tag keys applied to every stack.
const (
	tagManagedBy = "managed-by"
	tagStack     = "grafanaops-stack"
)

func (d *driver) stackName(stack *model.Stack) (string, error) {
	if stack == nil {
		return "", fmt.Errorf("stack nil")
	}
	if v := strings.TrimSpace(stack.Settings[SettingStackName]); v != "" {
		return v, nil
	}
	return naming.StackName(d.resourcePrefix, d.serviceName, d.providerName, stack.Name), nil
}

func (d *driver) stackTags(stack *model.Stack) []cfntypes.Tag {
	return []cfntypes.Tag{
		{Key: ptr(tagManagedBy), Value: ptr("grafanaops")},
		{Key: ptr(tagStack), Value: ptr(naming.TagValue(d.serviceName, d.providerName, stack.Name))},
	}
}

func ptr[T any](v T) *T { return &v }
