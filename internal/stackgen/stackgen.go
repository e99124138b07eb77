// Package stackgen turns a model.Stack into a CloudFormation template.
//
// Each component (network, cluster, iam, secrets, database, storage, bucket,
// task, service, load balancer, outputs) adds its resources to a shared
// builder. Components only reference logical IDs declared by components that
// ran before them, and the finished template is validated for dangling
// references and dependency cycles before it is returned.
package stackgen

import (
	"errors"
	"fmt"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/cfn"
)

// Environment carries values resolved against the live account by the driver.
type Environment struct {
	Region            string
	AvailabilityZones []string // at least Stack.Network.MaxAZs entries
	Image             string   // resolved image URI; empty means Stack.Container.Image
	ExecutionRoleARN  string   // existing role; empty creates one
	TaskRoleARN       string   // existing role; empty creates one
}

// Logical IDs shared between components and the driver.
const (
	IDVpc                = "Vpc"
	IDInternetGateway    = "InternetGateway"
	IDGatewayAttachment  = "VpcGatewayAttachment"
	IDCluster            = "Cluster"
	IDLogGroup           = "LogGroup"
	IDExecutionRole      = "ExecutionRole"
	IDTaskRole           = "TaskRole"
	IDDatabaseSecret     = "DatabaseSecret"
	IDAdminSecret        = "AdminSecret"
	IDDatabase           = "Database"
	IDDatabaseCluster    = "DatabaseCluster"
	IDDatabaseWriter     = "DatabaseWriter"
	IDDatabaseSubnets    = "DatabaseSubnetGroup"
	IDDatabaseSG         = "DatabaseSecurityGroup"
	IDDatabaseAttachment = "DatabaseSecretAttachment"
	IDFileSystem         = "FileSystem"
	IDFileSystemSG       = "FileSystemSecurityGroup"
	IDAccessPoint        = "AccessPoint"
	IDBucket             = "Bucket"
	IDBucketPolicy       = "BucketPolicy"
	IDTaskDefinition     = "TaskDefinition"
	IDTaskSG             = "TaskSecurityGroup"
	IDService            = "Service"
	IDLoadBalancerSG     = "LoadBalancerSecurityGroup"
	IDLoadBalancer       = "LoadBalancer"
	IDTargetGroup        = "TargetGroup"
	IDListener           = "Listener"
)

// ContainerName is the name of the Grafana container in the task definition.
const ContainerName = "grafana"

// SettingContainerInsights enables CloudWatch Container Insights on the cluster
// when set to "enabled" in the stack settings.
const SettingContainerInsights = "CONTAINER_INSIGHTS"

type builder struct {
	t    *cfn.Template
	s    *model.Stack
	env  Environment
	net  *subnetLayout
	errs []error
}

// add declares a resource; errors are collected and reported by Synthesize.
func (b *builder) add(id, typ string, props map[string]any) *cfn.Resource {
	r, err := b.t.AddResource(id, typ, props)
	if err != nil {
		b.errs = append(b.errs, err)
		return &cfn.Resource{Type: typ, Properties: props}
	}
	return r
}

// nameTag returns a Name tag prefixed with the stack name.
func nameTag(suffix string) []any {
	return []any{cfn.Tag{Key: "Name", Value: cfn.Sub("${AWS::StackName}-" + suffix)}}
}

// Synthesize builds the CloudFormation template for stack.
func Synthesize(stack *model.Stack, env Environment) (*cfn.Template, error) {
	if stack == nil {
		return nil, errors.New("stack is nil")
	}
	if len(env.AvailabilityZones) < stack.Network.MaxAZs {
		return nil, fmt.Errorf("need %d availability zones, have %d", stack.Network.MaxAZs, len(env.AvailabilityZones))
	}
	layout, err := carveSubnets(stack.Network.CIDR, stack.Network.MaxAZs)
	if err != nil {
		return nil, err
	}

	b := &builder{
		t:   cfn.NewTemplate(fmt.Sprintf("Grafana stack %s", stack.Name)),
		s:   stack,
		env: env,
		net: layout,
	}
	for _, component := range []func(){
		b.network,
		b.cluster,
		b.secrets,
		b.bucket,
		b.iam,
		b.database,
		b.storage,
		b.loadBalancer,
		b.task,
		b.service,
		b.outputs,
	} {
		component()
	}
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("synthesize %s: %w", stack.Name, errors.Join(b.errs...))
	}
	if err := b.t.Validate(); err != nil {
		return nil, fmt.Errorf("synthesize %s: %w", stack.Name, err)
	}
	return b.t, nil
}

// taskSubnets returns the subnets the service places tasks in.
func (b *builder) taskSubnets() []any {
	if b.s.PublicPlacement() {
		return b.net.publicRefs()
	}
	return b.net.privateRefs()
}

func deletionPolicy(removal string) string {
	switch removal {
	case model.RemovalPolicyDestroy:
		return cfn.PolicyDelete
	case model.RemovalPolicySnapshot:
		return cfn.PolicySnapshot
	default:
		return cfn.PolicyRetain
	}
}
