package aws

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

func apiError(code, msg string) error {
	return &smithy.GenericAPIError{Code: code, Message: msg}
}

// cfnServer keeps stacks in memory. Creates and updates complete immediately
// with the configured outputs, or with finalStatus when it is set.
type cfnServer struct {
	mu          sync.Mutex
	stacks      map[string]*cfntypes.Stack
	outputs     map[string]string
	finalStatus cfntypes.StackStatus
	noUpdates   bool
	calls       []string
	lastCreate  *cloudformation.CreateStackInput
}

func newCFNServer() *cfnServer {
	return &cfnServer{stacks: map[string]*cfntypes.Stack{}, outputs: map[string]string{}}
}

func (c *cfnServer) put(name string, status cfntypes.StackStatus, outputs map[string]string) {
	s := &cfntypes.Stack{
		StackName:   aws.String(name),
		StackId:     aws.String("arn:aws:cloudformation:us-east-1:123456789012:stack/" + name + "/1"),
		StackStatus: status,
	}
	keys := make([]string, 0, len(outputs))
	for k := range outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.Outputs = append(s.Outputs, cfntypes.Output{OutputKey: aws.String(k), OutputValue: aws.String(outputs[k])})
	}
	c.stacks[name] = s
}

func (c *cfnServer) DescribeStacks(ctx context.Context, in *cloudformation.DescribeStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := aws.ToString(in.StackName)
	s, ok := c.stacks[name]
	if !ok {
		return nil, apiError("ValidationError", fmt.Sprintf("Stack with id %s does not exist", name))
	}
	return &cloudformation.DescribeStacksOutput{Stacks: []cfntypes.Stack{*s}}, nil
}

func (c *cfnServer) complete(name string, ok cfntypes.StackStatus) {
	status := ok
	if c.finalStatus != "" {
		status = c.finalStatus
	}
	c.put(name, status, c.outputs)
}

func (c *cfnServer) CreateStack(ctx context.Context, in *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := aws.ToString(in.StackName)
	c.calls = append(c.calls, "CreateStack")
	if _, ok := c.stacks[name]; ok {
		return nil, apiError("AlreadyExistsException", "Stack ["+name+"] already exists")
	}
	c.lastCreate = in
	c.complete(name, cfntypes.StackStatusCreateComplete)
	return &cloudformation.CreateStackOutput{StackId: c.stacks[name].StackId}, nil
}

func (c *cfnServer) UpdateStack(ctx context.Context, in *cloudformation.UpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := aws.ToString(in.StackName)
	c.calls = append(c.calls, "UpdateStack")
	if c.noUpdates {
		return nil, apiError("ValidationError", "No updates are to be performed.")
	}
	c.complete(name, cfntypes.StackStatusUpdateComplete)
	return &cloudformation.UpdateStackOutput{StackId: c.stacks[name].StackId}, nil
}

func (c *cfnServer) DeleteStack(ctx context.Context, in *cloudformation.DeleteStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "DeleteStack")
	delete(c.stacks, aws.ToString(in.StackName))
	return &cloudformation.DeleteStackOutput{}, nil
}

type ec2Server struct {
	zones    []string
	publicIP map[string]string // eni -> ip
}

func (e *ec2Server) DescribeAvailabilityZones(ctx context.Context, in *ec2.DescribeAvailabilityZonesInput, _ ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error) {
	out := &ec2.DescribeAvailabilityZonesOutput{}
	for _, z := range e.zones {
		out.AvailabilityZones = append(out.AvailabilityZones, ec2types.AvailabilityZone{ZoneName: aws.String(z)})
	}
	return out, nil
}

func (e *ec2Server) DescribeNetworkInterfaces(ctx context.Context, in *ec2.DescribeNetworkInterfacesInput, _ ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error) {
	out := &ec2.DescribeNetworkInterfacesOutput{}
	for _, id := range in.NetworkInterfaceIds {
		ni := ec2types.NetworkInterface{NetworkInterfaceId: aws.String(id)}
		if ip, ok := e.publicIP[id]; ok {
			ni.Association = &ec2types.NetworkInterfaceAssociation{PublicIp: aws.String(ip)}
		}
		out.NetworkInterfaces = append(out.NetworkInterfaces, ni)
	}
	return out, nil
}

type ecrServer struct {
	repos map[string]string // name -> uri
}

func (e *ecrServer) DescribeRepositories(ctx context.Context, in *ecr.DescribeRepositoriesInput, _ ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error) {
	out := &ecr.DescribeRepositoriesOutput{}
	for _, n := range in.RepositoryNames {
		uri, ok := e.repos[n]
		if !ok {
			return nil, &ecrtypes.RepositoryNotFoundException{Message: aws.String("repository " + n + " not found")}
		}
		out.Repositories = append(out.Repositories, ecrtypes.Repository{RepositoryName: aws.String(n), RepositoryUri: aws.String(uri)})
	}
	return out, nil
}

type ecsServer struct {
	running, desired int32
	taskENIs         []string
}

func (e *ecsServer) DescribeServices(ctx context.Context, in *ecs.DescribeServicesInput, _ ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error) {
	return &ecs.DescribeServicesOutput{Services: []ecstypes.Service{{
		ServiceName:  aws.String(in.Services[0]),
		RunningCount: e.running,
		DesiredCount: e.desired,
	}}}, nil
}

func (e *ecsServer) ListTasks(ctx context.Context, in *ecs.ListTasksInput, _ ...func(*ecs.Options)) (*ecs.ListTasksOutput, error) {
	out := &ecs.ListTasksOutput{}
	for i := range e.taskENIs {
		out.TaskArns = append(out.TaskArns, fmt.Sprintf("arn:aws:ecs:us-east-1:123456789012:task/%d", i))
	}
	return out, nil
}

func (e *ecsServer) DescribeTasks(ctx context.Context, in *ecs.DescribeTasksInput, _ ...func(*ecs.Options)) (*ecs.DescribeTasksOutput, error) {
	out := &ecs.DescribeTasksOutput{}
	for _, eni := range e.taskENIs {
		out.Tasks = append(out.Tasks, ecstypes.Task{Attachments: []ecstypes.Attachment{{
			Type: aws.String("ElasticNetworkInterface"),
			Details: []ecstypes.KeyValuePair{
				{Name: aws.String("subnetId"), Value: aws.String("subnet-1")},
				{Name: aws.String("networkInterfaceId"), Value: aws.String(eni)},
			},
		}}})
	}
	return out, nil
}

type iamServer struct {
	roles map[string]string // name -> arn
}

func (i *iamServer) GetRole(ctx context.Context, in *iam.GetRoleInput, _ ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	arn, ok := i.roles[aws.ToString(in.RoleName)]
	if !ok {
		return nil, &iamtypes.NoSuchEntityException{Message: aws.String("role not found")}
	}
	return &iam.GetRoleOutput{Role: &iamtypes.Role{RoleName: in.RoleName, Arn: aws.String(arn)}}, nil
}

type rdsServer struct {
	instanceStatus, clusterStatus string
}

func (r *rdsServer) DescribeDBInstances(ctx context.Context, in *rds.DescribeDBInstancesInput, _ ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	return &rds.DescribeDBInstancesOutput{DBInstances: []rdstypes.DBInstance{{
		DBInstanceIdentifier: in.DBInstanceIdentifier,
		DBInstanceStatus:     aws.String(r.instanceStatus),
	}}}, nil
}

func (r *rdsServer) DescribeDBClusters(ctx context.Context, in *rds.DescribeDBClustersInput, _ ...func(*rds.Options)) (*rds.DescribeDBClustersOutput, error) {
	return &rds.DescribeDBClustersOutput{DBClusters: []rdstypes.DBCluster{{
		DBClusterIdentifier: in.DBClusterIdentifier,
		Status:              aws.String(r.clusterStatus),
	}}}, nil
}

// s3Server stores objects per bucket and pages listings two keys at a time.
type s3Server struct {
	mu      sync.Mutex
	objects map[string]map[string][]byte
}

func newS3Server() *s3Server { return &s3Server{objects: map[string]map[string][]byte{}} }

func (s *s3Server) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := aws.ToString(in.Bucket)
	if s.objects[b] == nil {
		s.objects[b] = map[string][]byte{}
	}
	s.objects[b][aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (s *s3Server) keys(bucket string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.objects[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *s3Server) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	b := aws.ToString(in.Bucket)
	s.mu.Lock()
	_, ok := s.objects[b]
	s.mu.Unlock()
	if !ok {
		return nil, apiError("NoSuchBucket", "The specified bucket does not exist")
	}
	keys := s.keys(b)
	start := 0
	if tok := aws.ToString(in.ContinuationToken); tok != "" {
		start = sort.SearchStrings(keys, tok)
	}
	end := min(start+2, len(keys))
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[end])
	}
	return out, nil
}

func (s *s3Server) DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := aws.ToString(in.Bucket)
	for _, o := range in.Delete.Objects {
		delete(s.objects[b], aws.ToString(o.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

type secretsServer struct {
	values map[string]string
}

func (s *secretsServer) GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	v, ok := s.values[aws.ToString(in.SecretId)]
	if !ok {
		return nil, apiError("ResourceNotFoundException", "Secrets Manager can't find the specified secret.")
	}
	return &secretsmanager.GetSecretValueOutput{ARN: in.SecretId, SecretString: aws.String(v)}, nil
}

type stsServer struct{}

func (stsServer) GetCallerIdentity(ctx context.Context, in *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return &sts.GetCallerIdentityOutput{Account: aws.String("123456789012")}, nil
}

// fakes bundles the servers behind a test driver.
type fakes struct {
	cfn     *cfnServer
	ec2     *ec2Server
	ecr     *ecrServer
	ecs     *ecsServer
	iam     *iamServer
	rds     *rdsServer
	s3      *s3Server
	secrets *secretsServer
}

func newFakes() *fakes {
	return &fakes{
		cfn:     newCFNServer(),
		ec2:     &ec2Server{zones: []string{"us-east-1c", "us-east-1a", "us-east-1b"}, publicIP: map[string]string{}},
		ecr:     &ecrServer{repos: map[string]string{}},
		ecs:     &ecsServer{},
		iam:     &iamServer{roles: map[string]string{}},
		rds:     &rdsServer{},
		s3:      newS3Server(),
		secrets: &secretsServer{values: map[string]string{}},
	}
}

func (f *fakes) clients() clients {
	return clients{
		cfn:     f.cfn,
		ec2:     f.ec2,
		ecr:     f.ecr,
		ecs:     f.ecs,
		iam:     f.iam,
		rds:     f.rds,
		s3:      f.s3,
		secrets: f.secrets,
		sts:     stsServer{},
	}
}
