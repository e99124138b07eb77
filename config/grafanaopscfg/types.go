// Package grafanaopscfg defines the configuration schema (structs) for grafanaops.yml,
// together with loading, defaults, presets, validation and conversion to domain models.
package grafanaopscfg

// Root is the root structure of grafanaops.yml.
type Root struct {
	Version  string   `yaml:"version"`
	Service  Service  `yaml:"service"`
	Provider Provider `yaml:"provider"`
	Stack    Stack    `yaml:"stack"`

	// baseDir is the directory of the loaded file; relative paths resolve against it.
	baseDir string
}

// Service represents global service settings.
type Service struct {
	Name string `yaml:"name"` // RFC1123-compliant DNS label
}

// Provider represents cloud provider configuration.
type Provider struct {
	Name     string            `yaml:"name"`
	Driver   string            `yaml:"driver"`             // e.g., "aws"
	Settings map[string]string `yaml:"settings,omitempty"` // provider-specific settings
}

// Stack represents one Grafana deployment.
type Stack struct {
	Name         string            `yaml:"name"`
	Preset       string            `yaml:"preset,omitempty"`
	Network      Network           `yaml:"network,omitempty"`
	Grafana      Grafana           `yaml:"grafana,omitempty"`
	Database     Database          `yaml:"database,omitempty"`
	LoadBalancer LoadBalancer      `yaml:"loadBalancer,omitempty"`
	Bucket       Bucket            `yaml:"bucket,omitempty"`
	Settings     map[string]string `yaml:"settings,omitempty"`
}

// Network is the virtual network layout.
type Network struct {
	CIDR        string `yaml:"cidr,omitempty"`
	MaxAZs      int    `yaml:"maxAzs,omitempty"`
	NATGateways *int   `yaml:"natGateways,omitempty"`
}

// Grafana describes the container task and service.
type Grafana struct {
	Image             string               `yaml:"image,omitempty"`
	Family            string               `yaml:"family,omitempty"`
	CPU               int                  `yaml:"cpu,omitempty"`
	Memory            int                  `yaml:"memory,omitempty"`
	MemoryReservation int                  `yaml:"memoryReservation,omitempty"`
	DesiredCount      *int                 `yaml:"desiredCount,omitempty"`
	PlatformVersion   string               `yaml:"platformVersion,omitempty"`
	Port              int                  `yaml:"port,omitempty"`
	Plugins           []string             `yaml:"plugins,omitempty"`
	Env               map[string]string    `yaml:"env,omitempty"`
	Secrets           map[string]SecretRef `yaml:"secrets,omitempty"`
	AdminPassword     string               `yaml:"adminPassword,omitempty"`
	Logging           Logging              `yaml:"logging,omitempty"`
	Volume            Volume               `yaml:"volume,omitempty"`
	AssignPublicIP    bool                 `yaml:"assignPublicIp,omitempty"`
	Ingress           []IngressRule        `yaml:"ingress,omitempty"`
}

// SecretRef points a container secret at a JSON key of a Secrets Manager secret.
type SecretRef struct {
	Secret string `yaml:"secret"` // name or ARN
	Key    string `yaml:"key"`
}

// Logging configures container log shipping.
type Logging struct {
	Driver        string `yaml:"driver,omitempty"` // "awslogs" or "none"
	StreamPrefix  string `yaml:"streamPrefix,omitempty"`
	RetentionDays int    `yaml:"retentionDays,omitempty"`
}

// Volume configures the Grafana data volume.
type Volume struct {
	Name string `yaml:"name,omitempty"`
	Path string `yaml:"path,omitempty"`
	Type string `yaml:"type,omitempty"` // "ephemeral" or "efs"
}

// IngressRule opens a TCP port from a CIDR.
type IngressRule struct {
	Port        int    `yaml:"port"`
	CIDR        string `yaml:"cidr,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Database selects and sizes the Grafana database.
type Database struct {
	Engine           string  `yaml:"engine,omitempty"` // "sqlite3", "mysql", "aurora-mysql-serverless"
	Name             string  `yaml:"name,omitempty"`
	Username         string  `yaml:"username,omitempty"`
	InstanceClass    string  `yaml:"instanceClass,omitempty"`
	AllocatedStorage int     `yaml:"allocatedStorage,omitempty"`
	EngineVersion    string  `yaml:"engineVersion,omitempty"`
	Port             int     `yaml:"port,omitempty"`
	Path             string  `yaml:"path,omitempty"`
	MinCapacity      float64 `yaml:"minCapacity,omitempty"` // Aurora Serverless v2 ACUs
	MaxCapacity      float64 `yaml:"maxCapacity,omitempty"`
	RemovalPolicy    string  `yaml:"removalPolicy,omitempty"`
}

// LoadBalancer configures the application load balancer.
type LoadBalancer struct {
	Enabled      *bool         `yaml:"enabled,omitempty"`
	Public       *bool         `yaml:"public,omitempty"`
	ListenerPort int           `yaml:"listenerPort,omitempty"`
	Open         *bool         `yaml:"open,omitempty"`
	Ingress      []IngressRule `yaml:"ingress,omitempty"`
}

// Bucket configures the dashboard bucket.
type Bucket struct {
	Enabled       bool   `yaml:"enabled,omitempty"`
	Dashboards    string `yaml:"dashboards,omitempty"`
	Prefix        string `yaml:"prefix,omitempty"`
	RemovalPolicy string `yaml:"removalPolicy,omitempty"`
}
