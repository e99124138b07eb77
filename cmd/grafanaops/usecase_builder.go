package main

import (
	"github.com/spf13/cobra"

	providerdrv "github.com/yaegashi/grafanaops/adapters/drivers/provider"
	"github.com/yaegashi/grafanaops/usecase/provider"
	"github.com/yaegashi/grafanaops/usecase/service"
	"github.com/yaegashi/grafanaops/usecase/stack"
)

// buildStackUseCase creates stack use case with required repositories and ports.
func buildStackUseCase(cmd *cobra.Command) (*stack.UseCase, error) {
	all, repos, err := buildStackRepos(cmd)
	if err != nil {
		return nil, err
	}
	return &stack.UseCase{
		Repos:     repos,
		StackPort: providerdrv.GetStackPort(all.Service, all.Provider),
	}, nil
}

// buildProviderUseCase creates provider use case with required repositories.
func buildProviderUseCase(cmd *cobra.Command) (*provider.UseCase, error) {
	repos, err := buildProviderRepos(cmd)
	if err != nil {
		return nil, err
	}
	return &provider.UseCase{Repos: repos}, nil
}

// buildServiceUseCase creates service use case with required repositories.
func buildServiceUseCase(cmd *cobra.Command) (*service.UseCase, error) {
	repos, err := buildServiceRepos(cmd)
	if err != nil {
		return nil, err
	}
	return &service.UseCase{Repos: repos}, nil
}
