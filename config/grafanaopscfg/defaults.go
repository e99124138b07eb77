package grafanaopscfg

import (
	"fmt"

	"dario.cat/mergo"

	"github.com/yaegashi/grafanaops/domain/model"
)

// CurrentVersion is the schema version written by Preset and accepted by Validate.
const CurrentVersion = "v1"

// Default values applied to unset fields.
const (
	DefaultCIDR             = "10.0.0.0/16"
	DefaultMaxAZs           = 2
	DefaultNATGateways      = 1
	DefaultImage            = "grafana/grafana:latest"
	DefaultCPU              = 256
	DefaultMemory           = 512
	DefaultDesiredCount     = 1
	DefaultPlatformVersion  = "1.4.0"
	DefaultGrafanaPort      = 3000
	DefaultLogDriver        = "awslogs"
	DefaultStreamPrefix     = "grafana"
	DefaultLogRetentionDays = 30
	DefaultVolumeName       = "grafana-data"
	DefaultVolumePath       = "/var/lib/grafana"
	DefaultSQLitePath       = "/var/lib/grafana/grafana.db"
	DefaultDatabaseName     = "grafana"
	DefaultDatabaseUser     = "admin"
	DefaultInstanceClass    = "db.t3.small"
	DefaultStorageGiB       = 10
	DefaultMySQLPort        = 3306
	DefaultMySQLVersion     = "8.0"
	DefaultAuroraVersion    = "8.0.mysql_aurora.3.08.0"
	DefaultAuroraMinACU     = 0.5
	DefaultAuroraMaxACU     = 2
	DefaultListenerPort     = 80
	DefaultBucketPrefix     = "dashboards/"
	DefaultIngressCIDR      = "0.0.0.0/0"
)

// ApplyDefaults fills unset fields. When stack.preset is set the preset is
// merged first, so explicit values in the file always win over the preset and
// the preset wins over the built-in defaults. Pointer fields keep explicit
// zero values; plain booleans set by a preset cannot be switched off.
func (r *Root) ApplyDefaults() error {
	if r.Version == "" {
		r.Version = CurrentVersion
	}
	if r.Stack.Preset != "" {
		p, err := PresetStack(r.Stack.Preset)
		if err != nil {
			return fmt.Errorf("stack.preset: %w", err)
		}
		if err := mergo.Merge(&r.Stack, p, mergo.WithoutDereference); err != nil {
			return fmt.Errorf("merge preset %s: %w", r.Stack.Preset, err)
		}
	}
	if err := mergo.Merge(&r.Stack, baseDefaults(r.Stack), mergo.WithoutDereference); err != nil {
		return fmt.Errorf("merge defaults: %w", err)
	}
	r.Stack.Bucket.Dashboards = r.resolvePath(r.Stack.Bucket.Dashboards)
	for i := range r.Stack.Grafana.Ingress {
		if r.Stack.Grafana.Ingress[i].CIDR == "" {
			r.Stack.Grafana.Ingress[i].CIDR = DefaultIngressCIDR
		}
	}
	for i := range r.Stack.LoadBalancer.Ingress {
		if r.Stack.LoadBalancer.Ingress[i].CIDR == "" {
			r.Stack.LoadBalancer.Ingress[i].CIDR = DefaultIngressCIDR
		}
	}
	return nil
}

// baseDefaults returns the built-in defaults. Some depend on values already
// chosen (engine, volume type), so the partially filled stack is consulted.
func baseDefaults(s Stack) Stack {
	d := Stack{
		Network: Network{
			CIDR:        DefaultCIDR,
			MaxAZs:      DefaultMaxAZs,
			NATGateways: intPtr(DefaultNATGateways),
		},
		Grafana: Grafana{
			Image:           DefaultImage,
			Family:          s.Name,
			CPU:             DefaultCPU,
			Memory:          DefaultMemory,
			DesiredCount:    intPtr(DefaultDesiredCount),
			PlatformVersion: DefaultPlatformVersion,
			Port:            DefaultGrafanaPort,
			Logging: Logging{
				Driver:        DefaultLogDriver,
				StreamPrefix:  DefaultStreamPrefix,
				RetentionDays: DefaultLogRetentionDays,
			},
		},
		Database: Database{
			Engine: model.DatabaseEngineSQLite,
		},
		LoadBalancer: LoadBalancer{
			Enabled:      boolPtr(false),
			Public:       boolPtr(true),
			ListenerPort: DefaultListenerPort,
			Open:         boolPtr(true),
		},
	}

	if s.Grafana.Volume.Type != "" {
		d.Grafana.Volume = Volume{Name: DefaultVolumeName, Path: DefaultVolumePath}
	}

	engine := s.Database.Engine
	if engine == "" {
		engine = model.DatabaseEngineSQLite
	}
	switch engine {
	case model.DatabaseEngineSQLite:
		d.Database.Path = DefaultSQLitePath
	case model.DatabaseEngineMySQL:
		d.Database = Database{
			Engine:           engine,
			Name:             DefaultDatabaseName,
			Username:         DefaultDatabaseUser,
			InstanceClass:    DefaultInstanceClass,
			AllocatedStorage: DefaultStorageGiB,
			EngineVersion:    DefaultMySQLVersion,
			Port:             DefaultMySQLPort,
			RemovalPolicy:    model.RemovalPolicySnapshot,
		}
	case model.DatabaseEngineAuroraMySQLLess:
		d.Database = Database{
			Engine:        engine,
			Name:          DefaultDatabaseName,
			Username:      DefaultDatabaseUser,
			EngineVersion: DefaultAuroraVersion,
			Port:          DefaultMySQLPort,
			MinCapacity:   DefaultAuroraMinACU,
			MaxCapacity:   DefaultAuroraMaxACU,
			RemovalPolicy: model.RemovalPolicySnapshot,
		}
	}

	if s.Bucket.Enabled {
		d.Bucket = Bucket{Prefix: DefaultBucketPrefix, RemovalPolicy: model.RemovalPolicyRetain}
	}
	return d
}
