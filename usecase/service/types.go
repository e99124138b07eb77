package service

import "github.com/yaegashi/grafanaops/domain"

// Repos holds repositories needed for service use cases.
type Repos struct {
	Service  domain.ServiceRepository
	Provider domain.ProviderRepository
}

// UseCase wires repositories needed for service use cases.
type UseCase struct {
	Repos *Repos
}
