package inmem

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaegashi/grafanaops/config/grafanaopscfg"
	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/logging"
)

func TestStackRepositoryIsolation(t *testing.T) {
	ctx := context.Background()
	r := NewStackRepository()
	s := &model.Stack{Name: "grafana", Settings: map[string]string{"A": "1"}}
	if err := r.Create(ctx, s); err != nil {
		t.Fatal(err)
	}
	s.Settings["A"] = "changed"

	got, err := r.Get(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Settings["A"] != "1" {
		t.Errorf("stored stack shares caller map: %v", got.Settings)
	}
	got.Settings["A"] = "again"
	if again, _ := r.Get(ctx, s.ID); again.Settings["A"] != "1" {
		t.Errorf("returned stack shares store map: %v", again.Settings)
	}
	if err := r.Create(ctx, s); err == nil {
		t.Error("duplicate Create() succeeded")
	}
}

func TestRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"service get", func() error { _, err := s.ServiceRepo.Get(ctx, "x"); return err }(), model.ErrServiceNotFound},
		{"provider update", s.ProviderRepo.Update(ctx, &model.Provider{ID: "x"}), model.ErrProviderNotFound},
		{"stack delete", s.StackRepo.Delete(ctx, "x"), model.ErrStackNotFound},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, tt.want)
		}
	}
}

func TestListSortedByName(t *testing.T) {
	ctx := context.Background()
	r := NewStackRepository()
	for _, n := range []string{"c", "a", "b"} {
		if err := r.Create(ctx, &model.Stack{Name: n}); err != nil {
			t.Fatal(err)
		}
	}
	list, _ := r.List(ctx)
	var names []string
	for _, s := range list {
		names = append(names, s.Name)
	}
	if len(names) != 3 || names[0] != "a" || names[2] != "c" {
		t.Errorf("List() names = %v", names)
	}
}

func TestLoadFromFile(t *testing.T) {
	ctx := context.Background()
	root, err := grafanaopscfg.Preset(grafanaopscfg.PresetMySQL, "ops", "grafana", "us-east-1")
	if err != nil {
		t.Fatal(err)
	}
	data, err := grafanaopscfg.Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "grafanaops.yml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore()
	if err := s.LoadFromFile(ctx, path); err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	stacks, _ := s.StackRepo.List(ctx)
	if len(stacks) != 1 {
		t.Fatalf("stacks = %d", len(stacks))
	}
	st := stacks[0]
	p, err := s.ProviderRepo.Get(ctx, st.ProviderID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ServiceRepo.Get(ctx, p.ServiceID); err != nil {
		t.Fatal(err)
	}
	if st.Database.Engine != model.DatabaseEngineMySQL || st.Database.Port != 3306 {
		t.Errorf("defaults not applied: %+v", st.Database)
	}

	if err := NewStore().LoadFromFile(ctx, filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestLoadFromFileWarnings(t *testing.T) {
	root, err := grafanaopscfg.Preset(grafanaopscfg.PresetBasic, "ops", "grafana", "us-east-1")
	if err != nil {
		t.Fatal(err)
	}
	root.Stack.Grafana.Volume.Type = model.VolumeTypeEphemeral
	data, err := grafanaopscfg.Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "grafanaops.yml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger, err := logging.NewWithWriter("json", slog.LevelInfo, &buf)
	if err != nil {
		t.Fatal(err)
	}
	ctx := logging.WithLogger(context.Background(), logger)
	if err := NewStore().LoadFromFile(ctx, path); err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"level":"WARN"`) || !strings.Contains(buf.String(), "ephemeral volume") {
		t.Errorf("expected an ephemeral volume warning, got %q", buf.String())
	}
}
