package model

import (
	"maps"
	"slices"
	"time"
)

// Database engines supported by a Grafana stack.
const (
	DatabaseEngineSQLite          = "sqlite3"
	DatabaseEngineMySQL           = "mysql"
	DatabaseEngineAuroraMySQLLess = "aurora-mysql-serverless"
)

// Volume types for the Grafana data directory.
const (
	VolumeTypeEphemeral = "ephemeral"
	VolumeTypeEFS       = "efs"
)

// Removal policies applied to stateful resources when the stack is destroyed.
const (
	RemovalPolicyDestroy  = "destroy"
	RemovalPolicyRetain   = "retain"
	RemovalPolicySnapshot = "snapshot"
)

// AdminPasswordGenerate asks the driver to generate the Grafana admin password
// and store it in a managed secret.
const AdminPasswordGenerate = "generate"

// Stack represents a Grafana deployment: network, container task, service and
// the optional database, bucket and load balancer around it.
type Stack struct {
	ID           string
	Name         string
	ProviderID   string // references Provider
	Preset       string
	Network      StackNetwork
	Task         StackTask
	Container    StackContainer
	Database     StackDatabase
	LoadBalancer StackLoadBalancer
	Bucket       StackBucket
	Settings     map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StackNetwork describes the virtual network.
type StackNetwork struct {
	CIDR        string
	MaxAZs      int
	NATGateways int
}

// StackTask describes the Fargate task and service.
type StackTask struct {
	Family          string
	CPU             int // CPU units
	Memory          int // MiB
	DesiredCount    int
	PlatformVersion string
	AssignPublicIP  bool
	Ingress         []StackIngressRule
}

// StackIngressRule opens a TCP port on the task (or load balancer) security group.
type StackIngressRule struct {
	Port        int
	CIDR        string
	Description string
}

// StackContainer describes the Grafana container.
type StackContainer struct {
	Image             string
	Port              int
	MemoryReservation int // MiB, 0 for none
	Plugins           []string
	Env               map[string]string
	Secrets           map[string]StackSecretRef
	AdminPassword     string // AdminPasswordGenerate, a literal, or empty for Grafana's default
	Logging           StackLogging
	Volume            StackVolume
}

// StackSecretRef references a JSON key of an existing Secrets Manager secret,
// by name or ARN.
type StackSecretRef struct {
	Secret string
	Key    string
}

// StackLogging describes container log shipping.
type StackLogging struct {
	Driver        string // "awslogs" or "none"
	StreamPrefix  string
	RetentionDays int
}

// StackVolume describes the Grafana data volume.
type StackVolume struct {
	Name string
	Path string
	Type string // VolumeTypeEphemeral, VolumeTypeEFS or empty for none
}

// StackDatabase describes the Grafana database backend.
type StackDatabase struct {
	Engine           string
	Name             string
	Username         string
	InstanceClass    string
	AllocatedStorage int // GiB
	EngineVersion    string
	Port             int
	Path             string  // sqlite database file path
	MinCapacity      float64 // aurora serverless v2 ACUs
	MaxCapacity      float64
	RemovalPolicy    string
}

// Managed reports whether the database is a managed AWS database.
func (d StackDatabase) Managed() bool {
	return d.Engine == DatabaseEngineMySQL || d.Engine == DatabaseEngineAuroraMySQLLess
}

// StackLoadBalancer describes the application load balancer in front of the service.
type StackLoadBalancer struct {
	Enabled      bool
	Public       bool
	ListenerPort int
	Open         bool
	Ingress      []StackIngressRule
}

// StackBucket describes the object-storage bucket for dashboards.
type StackBucket struct {
	Enabled       bool
	Dashboards    string // local directory uploaded after deploy
	Prefix        string
	RemovalPolicy string
}

// PublicPlacement reports whether tasks run in public subnets with a public IP.
// Tasks behind a load balancer stay private unless AssignPublicIP is set.
func (s *Stack) PublicPlacement() bool {
	return s.Task.AssignPublicIP || !s.LoadBalancer.Enabled
}

// Clone returns a deep copy of the stack.
func (s *Stack) Clone() *Stack {
	cp := *s
	cp.Task.Ingress = slices.Clone(s.Task.Ingress)
	cp.Container.Plugins = slices.Clone(s.Container.Plugins)
	cp.Container.Env = maps.Clone(s.Container.Env)
	cp.Container.Secrets = maps.Clone(s.Container.Secrets)
	cp.LoadBalancer.Ingress = slices.Clone(s.LoadBalancer.Ingress)
	cp.Settings = maps.Clone(s.Settings)
	return &cp
}
