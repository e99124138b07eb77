package provider

import "github.com/yaegashi/grafanaops/domain"

// Repos holds repositories needed for provider use cases.
type Repos struct {
	Service  domain.ServiceRepository
	Provider domain.ProviderRepository
	Stack    domain.StackRepository
}

// UseCase wires repositories needed for provider use cases.
type UseCase struct {
	Repos *Repos
}
