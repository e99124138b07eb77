package grafanaopscfg

import (
	"fmt"
	"sort"

	"github.com/yaegashi/grafanaops/domain/model"
)

// Preset names.
const (
	PresetBasic        = "basic"
	PresetMySQL        = "mysql"
	PresetAurora       = "aurora"
	PresetSQLite       = "sqlite"
	PresetSQLiteBucket = "sqlite-bucket"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

// presets returns fresh copies each call; ApplyDefaults stores pointers from them.
var presets = map[string]func() Stack{
	// Public ALB in front of a single Fargate task, Grafana on its embedded SQLite.
	PresetBasic: func() Stack {
		return Stack{
			Network: Network{MaxAZs: 2, NATGateways: intPtr(1)},
			Grafana: Grafana{
				Image:           "grafana/grafana:latest",
				CPU:             256,
				Memory:          512,
				DesiredCount:    intPtr(1),
				PlatformVersion: "1.4.0",
				Plugins:         []string{"grafana-piechart-panel", "grafana-clock-panel"},
			},
			Database:     Database{Engine: model.DatabaseEngineSQLite},
			LoadBalancer: LoadBalancer{Enabled: boolPtr(true), Public: boolPtr(true), ListenerPort: 80, Open: boolPtr(true)},
		}
	},
	// RDS MySQL instance with generated credentials behind a public ALB.
	PresetMySQL: func() Stack {
		return Stack{
			Network: Network{MaxAZs: 2, NATGateways: intPtr(2)},
			Grafana: Grafana{Image: "grafana/grafana:latest"},
			Database: Database{
				Engine:           model.DatabaseEngineMySQL,
				Name:             "grafana",
				Username:         "admin",
				InstanceClass:    "db.t3.small",
				AllocatedStorage: 10,
				RemovalPolicy:    model.RemovalPolicyDestroy,
			},
			LoadBalancer: LoadBalancer{Enabled: boolPtr(true), Public: boolPtr(true)},
		}
	},
	// Aurora Serverless MySQL reachable only from the task security group.
	PresetAurora: func() Stack {
		return Stack{
			Network: Network{MaxAZs: 2, NATGateways: intPtr(2)},
			Grafana: Grafana{
				Image:   "grafana/grafana",
				Plugins: []string{"grafana-clock-panel"},
				Ingress: []IngressRule{{Port: 3000, CIDR: "0.0.0.0/0", Description: "Allow Grafana traffic"}},
			},
			Database: Database{
				Engine:   model.DatabaseEngineAuroraMySQLLess,
				Name:     "grafana",
				Username: "admin",
				Port:     3306,
			},
			LoadBalancer: LoadBalancer{Enabled: boolPtr(true), Public: boolPtr(true)},
		}
	},
	// SQLite on a persistent data volume with CloudWatch logs.
	PresetSQLite: func() Stack {
		return Stack{
			Network: Network{MaxAZs: 2, NATGateways: intPtr(1)},
			Grafana: Grafana{
				Image:        "grafana/grafana",
				Family:       "grafana",
				CPU:          256,
				Memory:       512,
				DesiredCount: intPtr(1),
				Logging:      Logging{Driver: "awslogs", StreamPrefix: "grafana"},
				Volume:       Volume{Name: "grafana-data", Path: "/var/lib/grafana", Type: model.VolumeTypeEFS},
			},
			Database: Database{Engine: model.DatabaseEngineSQLite, Path: "/var/lib/grafana/grafana.db"},
			LoadBalancer: LoadBalancer{
				Enabled: boolPtr(true),
				Public:  boolPtr(true),
				Open:    boolPtr(false),
				Ingress: []IngressRule{
					{Port: 80, CIDR: "0.0.0.0/0", Description: "Allow HTTP traffic"},
					{Port: 443, CIDR: "0.0.0.0/0", Description: "Allow HTTPS traffic"},
				},
			},
		}
	},
	// SQLite with a dashboard bucket, direct public task access on the Grafana port.
	PresetSQLiteBucket: func() Stack {
		return Stack{
			Network: Network{MaxAZs: 2, NATGateways: intPtr(0)},
			Grafana: Grafana{
				Image:             "grafana/grafana:latest",
				CPU:               512,
				Memory:            1024,
				MemoryReservation: 512,
				Plugins:           []string{"grafana-sqlite-datasource"},
				Env: map[string]string{
					"GF_USERS_ALLOW_SIGN_UP": "false",
					"GF_USERS_DEFAULT_THEME": "light",
				},
				AdminPassword:  model.AdminPasswordGenerate,
				Logging:        Logging{Driver: "awslogs", StreamPrefix: "grafana"},
				AssignPublicIP: true,
				Ingress:        []IngressRule{{Port: 3000, CIDR: "0.0.0.0/0"}},
			},
			Database:     Database{Engine: model.DatabaseEngineSQLite, Path: "/var/lib/grafana/grafana.db"},
			LoadBalancer: LoadBalancer{Enabled: boolPtr(false)},
			Bucket:       Bucket{Enabled: true, Dashboards: "dashboard"},
		}
	},
}

// PresetNames returns the known preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PresetStack returns the stack settings for a preset.
func PresetStack(name string) (Stack, error) {
	f, ok := presets[name]
	if !ok {
		return Stack{}, fmt.Errorf("unknown preset %q (known: %v)", name, PresetNames())
	}
	return f(), nil
}

// Preset returns a complete configuration for a preset, suitable for writing
// out as a starting grafanaops.yml.
func Preset(name, service, stack, region string) (*Root, error) {
	s, err := PresetStack(name)
	if err != nil {
		return nil, err
	}
	s.Name = stack
	s.Preset = name
	return &Root{
		Version: CurrentVersion,
		Service: Service{Name: service},
		Provider: Provider{
			Name:   "aws",
			Driver: "aws",
			Settings: map[string]string{
				"AWS_REGION":      region,
				"AWS_AUTH_METHOD": "default",
			},
		},
		Stack: s,
	}, nil
}
