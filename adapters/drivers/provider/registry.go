package providerdrv

import (
	"context"
	"sort"

	"github.com/yaegashi/grafanaops/domain/model"
)

// Driver abstracts provider-specific behavior (identifier, stack lifecycle).
// Implementations live under adapters/drivers/provider/<name> and should return a
// provider identifier such as "aws" via ID().
type Driver interface {
	// ID returns the provider identifier (e.g., "aws").
	ID() string

	// StackSynth renders the provider template for the stack without deploying it.
	StackSynth(ctx context.Context, stack *model.Stack) ([]byte, error)

	// StackDeploy creates or updates the stack and waits for completion.
	StackDeploy(ctx context.Context, stack *model.Stack, opts model.StackDeployOptions) (*model.StackDeployResult, error)

	// StackDestroy deletes the stack. A stack that does not exist is not an error.
	StackDestroy(ctx context.Context, stack *model.Stack, opts model.StackDestroyOptions) error

	// StackStatus returns the deployment status of the stack.
	StackStatus(ctx context.Context, stack *model.Stack) (*model.StackStatus, error)

	// StackOutputs returns the outputs of a deployed stack.
	StackOutputs(ctx context.Context, stack *model.Stack) (map[string]string, error)

	// StackAdminPassword returns the Grafana admin password kept by the stack.
	StackAdminPassword(ctx context.Context, stack *model.Stack) (string, error)

	// StackUploadDashboards uploads dashboard files to the stack bucket and
	// returns the number of objects written.
	StackUploadDashboards(ctx context.Context, stack *model.Stack) (int, error)
}

// driverFactory is a constructor function for a provider driver.
type driverFactory func(service *model.Service, provider *model.Provider) (Driver, error)

// registry holds registered drivers by name.
var registry = map[string]driverFactory{}

// Register makes a driver available by the given name. Drivers should call
// this from their init() function.
func Register(name string, factory driverFactory) {
	registry[name] = factory
}

// GetDriverFactory returns the driver factory function for the given name.
func GetDriverFactory(name string) (driverFactory, bool) {
	factory, exists := registry[name]
	return factory, exists
}

// Names returns the registered driver names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
