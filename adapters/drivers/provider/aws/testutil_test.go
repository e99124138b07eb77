package aws

import (
	"testing"

	"github.com/yaegashi/grafanaops/config/grafanaopscfg"
	"github.com/yaegashi/grafanaops/domain/model"
)

func presetStack(t *testing.T, preset string) *model.Stack {
	t.Helper()
	root, err := grafanaopscfg.Preset(preset, "ops", "grafana", "us-east-1")
	if err != nil {
		t.Fatal(err)
	}
	// Dashboards are exercised separately with a real directory.
	root.Stack.Bucket.Dashboards = ""
	if err := root.ApplyDefaults(); err != nil {
		t.Fatal(err)
	}
	_, _, stack, err := root.ToModels()
	if err != nil {
		t.Fatal(err)
	}
	return stack
}

func newTestDriver(f *fakes) *driver {
	d := newDriver(
		&model.Service{Name: "ops"},
		&model.Provider{Name: "aws", Driver: DriverName, Settings: map[string]string{SettingRegion: "us-east-1"}},
		"us-east-1",
		f.clients(),
	)
	d.waitMinDelay = 1
	return d
}
