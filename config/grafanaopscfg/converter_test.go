package grafanaopscfg

import (
	"testing"

	"github.com/yaegashi/grafanaops/domain/model"
)

func TestToModels(t *testing.T) {
	r := resolvedRoot(t, func(r *Root) {
		r.Provider.Settings = map[string]string{"AWS_REGION": "eu-west-1"}
		r.Stack.Preset = PresetSQLite
		r.Stack.Grafana.Secrets = map[string]SecretRef{"GF_SMTP_PASSWORD": {Secret: "smtp", Key: "password"}}
	})

	svc, prv, stk, err := r.ToModels()
	if err != nil {
		t.Fatalf("ToModels() error = %v", err)
	}
	if svc.ID == "" || prv.ID == "" || stk.ID == "" {
		t.Fatalf("IDs must be generated: %q %q %q", svc.ID, prv.ID, stk.ID)
	}
	if prv.ServiceID != svc.ID || stk.ProviderID != prv.ID {
		t.Errorf("references not wired: provider.ServiceID=%s stack.ProviderID=%s", prv.ServiceID, stk.ProviderID)
	}
	if prv.Settings["AWS_REGION"] != "eu-west-1" {
		t.Errorf("provider settings lost: %v", prv.Settings)
	}
	if stk.Container.Volume.Type != model.VolumeTypeEFS || stk.Container.Volume.Path != "/var/lib/grafana" {
		t.Errorf("volume = %+v", stk.Container.Volume)
	}
	if !stk.LoadBalancer.Enabled || stk.LoadBalancer.Open || len(stk.LoadBalancer.Ingress) != 2 {
		t.Errorf("load balancer = %+v", stk.LoadBalancer)
	}
	if stk.Network.NATGateways != 1 || stk.Task.DesiredCount != 1 {
		t.Errorf("pointer fields not dereferenced: nat=%d desired=%d", stk.Network.NATGateways, stk.Task.DesiredCount)
	}
	if ref := stk.Container.Secrets["GF_SMTP_PASSWORD"]; ref.Secret != "smtp" || ref.Key != "password" {
		t.Errorf("secret = %+v", ref)
	}
	if stk.Task.Family != "grafana" || stk.Database.Path != DefaultSQLitePath {
		t.Errorf("task family %q, database path %q", stk.Task.Family, stk.Database.Path)
	}

	// Mutating the model must not leak back into the config.
	prv.Settings["AWS_REGION"] = "changed"
	if r.Provider.Settings["AWS_REGION"] != "eu-west-1" {
		t.Error("provider settings share storage with config")
	}
}
