package stack

import (
	"github.com/yaegashi/grafanaops/domain"
	"github.com/yaegashi/grafanaops/domain/model"
)

// Repos holds repositories needed for stack use cases.
type Repos struct {
	Provider domain.ProviderRepository
	Stack    domain.StackRepository
}

// UseCase wires repositories and ports needed for stack use cases.
type UseCase struct {
	Repos     *Repos
	StackPort model.StackPort
}
