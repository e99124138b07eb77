package aws

import (
	"context"
	"strings"
	"testing"

	"github.com/yaegashi/grafanaops/domain/model"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]string
		wantErr  string
	}{
		{name: "missing region", settings: map[string]string{}, wantErr: SettingRegion},
		{name: "profile without name", settings: map[string]string{SettingRegion: "us-east-1", SettingAuthMethod: "profile"}, wantErr: SettingProfile},
		{name: "static without keys", settings: map[string]string{SettingRegion: "us-east-1", SettingAuthMethod: "static"}, wantErr: SettingAccessKeyID},
		{name: "unknown method", settings: map[string]string{SettingRegion: "us-east-1", SettingAuthMethod: "sso"}, wantErr: "unsupported"},
		{name: "static", settings: map[string]string{
			SettingRegion:          "eu-west-1",
			SettingAuthMethod:      "static",
			SettingAccessKeyID:     "AKIDEXAMPLE",
			SettingSecretAccessKey: "secret",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(context.Background(), tt.settings)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("loadConfig() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadConfig() error = %v", err)
			}
			if cfg.Region != "eu-west-1" {
				t.Errorf("region = %q", cfg.Region)
			}
			creds, err := cfg.Credentials.Retrieve(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if creds.AccessKeyID != "AKIDEXAMPLE" {
				t.Errorf("access key = %q", creds.AccessKeyID)
			}
		})
	}
}

func TestNewDriverDefaults(t *testing.T) {
	d := newDriver(&model.Service{Name: "ops"}, &model.Provider{Name: "aws", Settings: map[string]string{}}, "us-east-1", clients{})
	if d.ID() != DriverName {
		t.Errorf("ID() = %q", d.ID())
	}
	if d.resourcePrefix != defaultResourcePrefix {
		t.Errorf("resourcePrefix = %q", d.resourcePrefix)
	}
}

func TestStackName(t *testing.T) {
	d := newTestDriver(newFakes())
	s := &model.Stack{Name: "grafana"}
	name, err := d.stackName(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(name, "grafanaops-ops-grafana-") || len(name) != len("grafanaops-ops-grafana-")+6 {
		t.Errorf("stackName() = %q", name)
	}
	s.Settings = map[string]string{SettingStackName: "custom"}
	if name, _ := d.stackName(s); name != "custom" {
		t.Errorf("override stackName() = %q", name)
	}
	if _, err := d.stackName(nil); err == nil {
		t.Error("stackName(nil) succeeded")
	}
}
