package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaegashi/grafanaops/usecase/provider"
)

func newCmdAdminProvider() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "provider",
		Short:         "Manage Provider resources",
		RunE:          func(cmd *cobra.Command, args []string) error { return cmd.Help() },
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newCmdAdminProviderList())
	cmd.AddCommand(newCmdAdminProviderGet())
	cmd.AddCommand(newCmdAdminProviderDelete())
	return cmd
}

func newCmdAdminProviderList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := buildProviderUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
			defer cancel()
			out, err := uc.List(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, it := range out.Providers {
				if err := enc.Encode(it); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newCmdAdminProviderGet() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := buildProviderUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
			defer cancel()
			out, err := uc.Get(ctx, &provider.GetInput{ProviderID: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd, out.Provider)
		},
	}
}

func newCmdAdminProviderDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := buildProviderUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
			defer cancel()
			if err := uc.Delete(ctx, &provider.DeleteInput{ProviderID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
