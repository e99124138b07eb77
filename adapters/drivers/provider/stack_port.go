package providerdrv

import (
	"context"
	"fmt"

	"github.com/yaegashi/grafanaops/domain"
	"github.com/yaegashi/grafanaops/domain/model"
)

// stackPortAdapter implements model.StackPort backed by provider drivers.
type stackPortAdapter struct {
	services  domain.ServiceRepository
	providers domain.ProviderRepository
}

// driver resolves the provider and service of the stack and builds its driver.
func (a *stackPortAdapter) driver(ctx context.Context, stack *model.Stack) (Driver, error) {
	if stack == nil {
		return nil, fmt.Errorf("stack is nil")
	}

	provider, err := a.providers.Get(ctx, stack.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get provider %s: %w", stack.ProviderID, err)
	}

	service, err := a.services.Get(ctx, provider.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get service %s: %w", provider.ServiceID, err)
	}

	factory, exists := GetDriverFactory(provider.Driver)
	if !exists {
		return nil, fmt.Errorf("unknown provider driver: %s (known: %v)", provider.Driver, Names())
	}

	driver, err := factory(service, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver %s: %w", provider.Driver, err)
	}
	return driver, nil
}

func (a *stackPortAdapter) Synth(ctx context.Context, stack *model.Stack) ([]byte, error) {
	d, err := a.driver(ctx, stack)
	if err != nil {
		return nil, err
	}
	return d.StackSynth(ctx, stack)
}

func (a *stackPortAdapter) Deploy(ctx context.Context, stack *model.Stack, opts ...model.StackDeployOption) (*model.StackDeployResult, error) {
	d, err := a.driver(ctx, stack)
	if err != nil {
		return nil, err
	}
	var o model.StackDeployOptions
	for _, opt := range opts {
		opt(&o)
	}
	return d.StackDeploy(ctx, stack, o)
}

func (a *stackPortAdapter) Destroy(ctx context.Context, stack *model.Stack, opts ...model.StackDestroyOption) error {
	d, err := a.driver(ctx, stack)
	if err != nil {
		return err
	}
	var o model.StackDestroyOptions
	for _, opt := range opts {
		opt(&o)
	}
	return d.StackDestroy(ctx, stack, o)
}

func (a *stackPortAdapter) Status(ctx context.Context, stack *model.Stack) (*model.StackStatus, error) {
	d, err := a.driver(ctx, stack)
	if err != nil {
		return nil, err
	}
	return d.StackStatus(ctx, stack)
}

func (a *stackPortAdapter) Outputs(ctx context.Context, stack *model.Stack) (map[string]string, error) {
	d, err := a.driver(ctx, stack)
	if err != nil {
		return nil, err
	}
	return d.StackOutputs(ctx, stack)
}

func (a *stackPortAdapter) AdminPassword(ctx context.Context, stack *model.Stack) (string, error) {
	d, err := a.driver(ctx, stack)
	if err != nil {
		return "", err
	}
	return d.StackAdminPassword(ctx, stack)
}

func (a *stackPortAdapter) UploadDashboards(ctx context.Context, stack *model.Stack) (int, error) {
	d, err := a.driver(ctx, stack)
	if err != nil {
		return 0, err
	}
	return d.StackUploadDashboards(ctx, stack)
}

// GetStackPort returns a model.StackPort implemented via provider drivers.
func GetStackPort(services domain.ServiceRepository, providers domain.ProviderRepository) model.StackPort {
	return &stackPortAdapter{services: services, providers: providers}
}
