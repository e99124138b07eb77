package stackgen

import (
	"sort"
	"strings"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/cfn"
)

const policyVersion = "2012-10-17"

func assumeRolePolicy(service string) map[string]any {
	return map[string]any{
		"Version": policyVersion,
		"Statement": []any{map[string]any{
			"Effect":    "Allow",
			"Principal": map[string]any{"Service": service},
			"Action":    "sts:AssumeRole",
		}},
	}
}

func statement(actions []string, resources ...any) map[string]any {
	return map[string]any{"Effect": "Allow", "Action": actions, "Resource": resources}
}

func inlinePolicy(name string, statements ...any) map[string]any {
	return map[string]any{
		"PolicyName":     name,
		"PolicyDocument": map[string]any{"Version": policyVersion, "Statement": statements},
	}
}

// userSecretARN returns the ARN for a secret given by name or ARN.
func userSecretARN(secret string) string {
	if strings.HasPrefix(secret, "arn:") {
		return secret
	}
	return cfn.Sub("arn:${AWS::Partition}:secretsmanager:${AWS::Region}:${AWS::AccountId}:secret:" + secret)
}

// iam declares the task execution role (image pull, logs, secret reads) and
// the task role (bucket and file system access). Roles supplied by the
// environment are used as-is and must already carry these permissions.
func (b *builder) iam() {
	if b.env.ExecutionRoleARN == "" {
		props := map[string]any{
			"AssumeRolePolicyDocument": assumeRolePolicy("ecs-tasks.amazonaws.com"),
			"ManagedPolicyArns": []any{
				cfn.Sub("arn:${AWS::Partition}:iam::aws:policy/service-role/AmazonECSTaskExecutionRolePolicy"),
			},
		}
		if secrets := b.secretResources(); len(secrets) > 0 {
			props["Policies"] = []any{inlinePolicy("secrets",
				statement([]string{"secretsmanager:GetSecretValue"}, secrets...),
			)}
		}
		b.add(IDExecutionRole, "AWS::IAM::Role", props)
	}

	if b.env.TaskRoleARN == "" {
		var policies []any
		if b.s.Bucket.Enabled {
			policies = append(policies, inlinePolicy("bucket",
				statement([]string{"s3:ListBucket"}, cfn.GetAtt(IDBucket, "Arn")),
				statement([]string{"s3:GetObject"}, cfn.Sub("${"+IDBucket+".Arn}/*")),
			))
		}
		if b.efs() {
			policies = append(policies, inlinePolicy("filesystem",
				statement([]string{"elasticfilesystem:ClientMount", "elasticfilesystem:ClientWrite"}, cfn.GetAtt(IDFileSystem, "Arn")),
			))
		}
		props := map[string]any{
			"AssumeRolePolicyDocument": assumeRolePolicy("ecs-tasks.amazonaws.com"),
		}
		if len(policies) > 0 {
			props["Policies"] = policies
		}
		b.add(IDTaskRole, "AWS::IAM::Role", props)
	}
}

// secretResources lists every secret the container reads, for the execution role.
func (b *builder) secretResources() []any {
	var out []any
	if b.s.Database.Managed() {
		out = append(out, cfn.Ref(IDDatabaseSecret))
	}
	if b.hasAdminSecret() {
		out = append(out, cfn.Ref(IDAdminSecret))
	}
	names := make([]string, 0, len(b.s.Container.Secrets))
	seen := map[string]bool{}
	for _, ref := range b.s.Container.Secrets {
		if !seen[ref.Secret] {
			seen[ref.Secret] = true
			names = append(names, ref.Secret)
		}
	}
	sort.Strings(names)
	for _, n := range names {
		if strings.HasPrefix(n, "arn:") {
			out = append(out, n)
			continue
		}
		// Names resolve to ARNs with a random suffix.
		out = append(out, cfn.Sub("arn:${AWS::Partition}:secretsmanager:${AWS::Region}:${AWS::AccountId}:secret:"+n+"-*"))
	}
	return out
}

func (b *builder) executionRoleARN() any {
	if b.env.ExecutionRoleARN != "" {
		return b.env.ExecutionRoleARN
	}
	return cfn.GetAtt(IDExecutionRole, "Arn")
}

func (b *builder) taskRoleARN() any {
	if b.env.TaskRoleARN != "" {
		return b.env.TaskRoleARN
	}
	return cfn.GetAtt(IDTaskRole, "Arn")
}

func (b *builder) efs() bool {
	return b.s.Container.Volume.Type == model.VolumeTypeEFS
}
