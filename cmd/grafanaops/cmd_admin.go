package main

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaegashi/grafanaops/config/grafanaopscfg"
	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/usecase/provider"
	"github.com/yaegashi/grafanaops/usecase/service"
	"github.com/yaegashi/grafanaops/usecase/stack"
)

// adminTimeout bounds store operations.
const adminTimeout = 30 * time.Second

// newCmdAdmin returns the parent command for admin operations.
func newCmdAdmin() *cobra.Command {
	c := &cobra.Command{
		Use:   "admin",
		Short: "Administrative commands (direct CRUD on the store)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.AddCommand(newCmdAdminImport())
	c.AddCommand(newCmdAdminService())
	c.AddCommand(newCmdAdminProvider())
	c.AddCommand(newCmdAdminStack())
	return c
}

// importResult reports the records written by admin import.
type importResult struct {
	Service  *model.Service  `json:"service"`
	Provider *model.Provider `json:"provider"`
	Stack    *model.Stack    `json:"stack"`
	Updated  bool            `json:"updated"`
}

func newCmdAdminImport() *cobra.Command {
	var file string
	c := &cobra.Command{
		Use:   "import",
		Short: "Import a grafanaops.yml into the store",
		Long: `Import a grafanaops.yml into the store selected by --db-url.

Service and provider records are reused by name. A stack with the same name
under the provider is updated in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := grafanaopscfg.LoadResolved(file)
			if err != nil {
				return err
			}
			repos, err := buildRepos(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
			defer cancel()

			res, err := importConfig(ctx,
				&service.UseCase{Repos: &service.Repos{Service: repos.Service, Provider: repos.Provider}},
				&provider.UseCase{Repos: &provider.Repos{Service: repos.Service, Provider: repos.Provider, Stack: repos.Stack}},
				&stack.UseCase{Repos: &stack.Repos{Provider: repos.Provider, Stack: repos.Stack}},
				cfg)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	c.Flags().StringVarP(&file, "file", "f", "", "Path to grafanaops.yml")
	_ = c.MarkFlagRequired("file")
	return c
}

func importConfig(ctx context.Context, svcUC *service.UseCase, prvUC *provider.UseCase, stkUC *stack.UseCase, cfg *grafanaopscfg.Root) (*importResult, error) {
	svcModel, prvModel, stkModel, err := cfg.ToModels()
	if err != nil {
		return nil, err
	}
	res := &importResult{}

	services, err := svcUC.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range services.Services {
		if s.Name == svcModel.Name {
			res.Service = s
		}
	}
	if res.Service == nil {
		out, err := svcUC.Create(ctx, &service.CreateInput{Name: svcModel.Name})
		if err != nil {
			return nil, fmt.Errorf("create service: %w", err)
		}
		res.Service = out.Service
	}

	providers, err := prvUC.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range providers.Providers {
		if p.Name == prvModel.Name && p.ServiceID == res.Service.ID {
			res.Provider = p
		}
	}
	switch {
	case res.Provider != nil && (res.Provider.Driver != prvModel.Driver || !maps.Equal(res.Provider.Settings, prvModel.Settings)):
		out, err := prvUC.Update(ctx, &provider.UpdateInput{
			ProviderID: res.Provider.ID,
			Driver:     prvModel.Driver,
			Settings:   prvModel.Settings,
		})
		if err != nil {
			return nil, fmt.Errorf("update provider: %w", err)
		}
		res.Provider = out.Provider
	case res.Provider == nil:
		out, err := prvUC.Create(ctx, &provider.CreateInput{
			Name:      prvModel.Name,
			ServiceID: res.Service.ID,
			Driver:    prvModel.Driver,
			Settings:  prvModel.Settings,
		})
		if err != nil {
			return nil, fmt.Errorf("create provider: %w", err)
		}
		res.Provider = out.Provider
	}

	stkModel.ProviderID = res.Provider.ID
	stacks, err := stkUC.List(ctx, &stack.ListInput{ProviderID: res.Provider.ID})
	if err != nil {
		return nil, err
	}
	for _, s := range stacks.Stacks {
		if s.Name != stkModel.Name {
			continue
		}
		out, err := stkUC.Update(ctx, &stack.UpdateInput{StackID: s.ID, Stack: stkModel})
		if err != nil {
			return nil, fmt.Errorf("update stack: %w", err)
		}
		res.Stack, res.Updated = out.Stack, true
		return res, nil
	}
	out, err := stkUC.Create(ctx, &stack.CreateInput{Stack: stkModel})
	if err != nil {
		return nil, fmt.Errorf("create stack: %w", err)
	}
	res.Stack = out.Stack
	return res, nil
}
