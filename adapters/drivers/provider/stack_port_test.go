package providerdrv

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yaegashi/grafanaops/adapters/store/inmem"
	"github.com/yaegashi/grafanaops/domain/model"
)

// recordingDriver records the options it receives.
type recordingDriver struct {
	deploy  model.StackDeployOptions
	destroy model.StackDestroyOptions
}

func (d *recordingDriver) ID() string { return "test" }
func (d *recordingDriver) StackSynth(context.Context, *model.Stack) ([]byte, error) {
	return []byte("{}"), nil
}
func (d *recordingDriver) StackDeploy(_ context.Context, s *model.Stack, o model.StackDeployOptions) (*model.StackDeployResult, error) {
	d.deploy = o
	return &model.StackDeployResult{StackName: s.Name, Operation: "create"}, nil
}
func (d *recordingDriver) StackDestroy(_ context.Context, _ *model.Stack, o model.StackDestroyOptions) error {
	d.destroy = o
	return nil
}
func (d *recordingDriver) StackStatus(_ context.Context, s *model.Stack) (*model.StackStatus, error) {
	return &model.StackStatus{StackName: s.Name}, nil
}
func (d *recordingDriver) StackOutputs(context.Context, *model.Stack) (map[string]string, error) {
	return map[string]string{"k": "v"}, nil
}
func (d *recordingDriver) StackAdminPassword(context.Context, *model.Stack) (string, error) {
	return "pw", nil
}
func (d *recordingDriver) StackUploadDashboards(context.Context, *model.Stack) (int, error) {
	return 2, nil
}

func setupPort(t *testing.T, driverName string) (model.StackPort, *model.Stack, *recordingDriver) {
	t.Helper()
	ctx := context.Background()
	rec := &recordingDriver{}
	Register("test", func(service *model.Service, provider *model.Provider) (Driver, error) {
		if service.Name != "ops" {
			t.Errorf("factory got service %q", service.Name)
		}
		return rec, nil
	})
	Register("broken", func(*model.Service, *model.Provider) (Driver, error) {
		return nil, errors.New("no credentials")
	})

	store := inmem.NewStore()
	svc := &model.Service{Name: "ops"}
	if err := store.ServiceRepo.Create(ctx, svc); err != nil {
		t.Fatal(err)
	}
	prov := &model.Provider{Name: "p", ServiceID: svc.ID, Driver: driverName}
	if err := store.ProviderRepo.Create(ctx, prov); err != nil {
		t.Fatal(err)
	}
	stack := &model.Stack{Name: "grafana", ProviderID: prov.ID}
	return GetStackPort(store.ServiceRepo, store.ProviderRepo), stack, rec
}

func TestStackPortDelegates(t *testing.T) {
	ctx := context.Background()
	port, stack, rec := setupPort(t, "test")

	if _, err := port.Deploy(ctx, stack, model.WithStackDeployDryRun(), model.WithStackDeploySkipDashboards()); err != nil {
		t.Fatal(err)
	}
	if !rec.deploy.DryRun || !rec.deploy.SkipDashboards || rec.deploy.RecreateFailed {
		t.Errorf("deploy options = %+v", rec.deploy)
	}
	if err := port.Destroy(ctx, stack, model.WithStackDestroyNoWait()); err != nil {
		t.Fatal(err)
	}
	if !rec.destroy.NoWait {
		t.Errorf("destroy options = %+v", rec.destroy)
	}
	if pw, _ := port.AdminPassword(ctx, stack); pw != "pw" {
		t.Errorf("AdminPassword() = %q", pw)
	}
	if n, _ := port.UploadDashboards(ctx, stack); n != 2 {
		t.Errorf("UploadDashboards() = %d", n)
	}
	if out, _ := port.Outputs(ctx, stack); out["k"] != "v" {
		t.Errorf("Outputs() = %v", out)
	}
}

func TestStackPortErrors(t *testing.T) {
	ctx := context.Background()

	port, stack, _ := setupPort(t, "missing")
	if _, err := port.Synth(ctx, stack); err == nil || !strings.Contains(err.Error(), "unknown provider driver") {
		t.Errorf("unknown driver error = %v", err)
	}

	port, stack, _ = setupPort(t, "broken")
	if _, err := port.Status(ctx, stack); err == nil || !strings.Contains(err.Error(), "no credentials") {
		t.Errorf("factory error = %v", err)
	}

	stack.ProviderID = "nope"
	if _, err := port.Status(ctx, stack); !errors.Is(err, model.ErrProviderNotFound) {
		t.Errorf("missing provider error = %v", err)
	}
	if _, err := port.Synth(ctx, nil); err == nil {
		t.Error("nil stack accepted")
	}
}
