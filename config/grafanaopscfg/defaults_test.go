package grafanaopscfg

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yaegashi/grafanaops/domain/model"
)

func TestApplyDefaults_ExplicitValuesWinOverPreset(t *testing.T) {
	r := resolvedRoot(t, func(r *Root) {
		r.Stack.Preset = PresetMySQL
		r.Stack.Grafana.Image = "grafana/grafana:10.4.2"
		r.Stack.Network.NATGateways = intPtr(1)
		r.Stack.Database.InstanceClass = "db.t3.medium"
	})

	s := r.Stack
	if s.Grafana.Image != "grafana/grafana:10.4.2" {
		t.Errorf("image = %q", s.Grafana.Image)
	}
	if got := derefInt(s.Network.NATGateways); got != 1 {
		t.Errorf("natGateways = %d, want 1", got)
	}
	want := Database{
		Engine:           model.DatabaseEngineMySQL,
		Name:             "grafana",
		Username:         "admin",
		InstanceClass:    "db.t3.medium",
		AllocatedStorage: 10,
		EngineVersion:    DefaultMySQLVersion,
		Port:             DefaultMySQLPort,
		RemovalPolicy:    model.RemovalPolicyDestroy,
	}
	if diff := cmp.Diff(want, s.Database); diff != "" {
		t.Errorf("database mismatch (-want +got):\n%s", diff)
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestApplyDefaults_EngineSpecific(t *testing.T) {
	tests := []struct {
		engine string
		want   Database
	}{
		{
			engine: "",
			want:   Database{Engine: model.DatabaseEngineSQLite, Path: DefaultSQLitePath},
		},
		{
			engine: model.DatabaseEngineAuroraMySQLLess,
			want: Database{
				Engine:        model.DatabaseEngineAuroraMySQLLess,
				Name:          DefaultDatabaseName,
				Username:      DefaultDatabaseUser,
				EngineVersion: DefaultAuroraVersion,
				Port:          DefaultMySQLPort,
				MinCapacity:   DefaultAuroraMinACU,
				MaxCapacity:   DefaultAuroraMaxACU,
				RemovalPolicy: model.RemovalPolicySnapshot,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			r := resolvedRoot(t, func(r *Root) { r.Stack.Database.Engine = tt.engine })
			if diff := cmp.Diff(tt.want, r.Stack.Database); diff != "" {
				t.Errorf("database mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyDefaults_PresetMapsMerge(t *testing.T) {
	r := resolvedRoot(t, func(r *Root) {
		r.Stack.Preset = PresetSQLiteBucket
		r.Stack.Grafana.Env = map[string]string{"GF_USERS_DEFAULT_THEME": "dark", "GF_LOG_LEVEL": "debug"}
	})
	want := map[string]string{
		"GF_USERS_ALLOW_SIGN_UP": "false",
		"GF_USERS_DEFAULT_THEME": "dark",
		"GF_LOG_LEVEL":           "debug",
	}
	if diff := cmp.Diff(want, r.Stack.Grafana.Env); diff != "" {
		t.Errorf("env mismatch (-want +got):\n%s", diff)
	}
	if r.Stack.Grafana.Logging.RetentionDays != DefaultLogRetentionDays {
		t.Errorf("retentionDays = %d, want %d", r.Stack.Grafana.Logging.RetentionDays, DefaultLogRetentionDays)
	}
}

func TestApplyDefaults_UnknownPreset(t *testing.T) {
	r := &Root{Stack: Stack{Name: "g", Preset: "nope"}}
	if err := r.ApplyDefaults(); err == nil {
		t.Fatal("expected unknown preset error")
	}
}

func TestApplyDefaults_VolumeOnlyWhenTyped(t *testing.T) {
	r := resolvedRoot(t, nil)
	if r.Stack.Grafana.Volume != (Volume{}) {
		t.Errorf("untyped volume should stay empty, got %+v", r.Stack.Grafana.Volume)
	}
	r = resolvedRoot(t, func(r *Root) { r.Stack.Grafana.Volume.Type = model.VolumeTypeEphemeral })
	want := Volume{Name: DefaultVolumeName, Path: DefaultVolumePath, Type: model.VolumeTypeEphemeral}
	if r.Stack.Grafana.Volume != want {
		t.Errorf("volume = %+v, want %+v", r.Stack.Grafana.Volume, want)
	}
}

func TestApplyDefaults_ExplicitZeroPointers(t *testing.T) {
	r := resolvedRoot(t, func(r *Root) {
		r.Stack.Preset = PresetBasic
		r.Stack.Network.NATGateways = intPtr(0)
		r.Stack.Grafana.DesiredCount = intPtr(0)
		r.Stack.LoadBalancer.Enabled = boolPtr(false)
	})
	if got := derefInt(r.Stack.Network.NATGateways); got != 0 {
		t.Errorf("natGateways = %d, want explicit 0", got)
	}
	if got := derefInt(r.Stack.Grafana.DesiredCount); got != 0 {
		t.Errorf("desiredCount = %d, want explicit 0", got)
	}
	if derefBool(r.Stack.LoadBalancer.Enabled) {
		t.Error("loadBalancer.enabled: explicit false overridden by preset")
	}
}
