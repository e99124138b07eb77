package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaegashi/grafanaops/usecase/service"
)

func newCmdAdminService() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "service",
		Short:         "Manage Service resources",
		RunE:          func(cmd *cobra.Command, args []string) error { return cmd.Help() },
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newCmdAdminServiceList())
	cmd.AddCommand(newCmdAdminServiceGet())
	cmd.AddCommand(newCmdAdminServiceDelete())
	return cmd
}

func newCmdAdminServiceList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := buildServiceUseCase(cmd)
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
			for _, it := range out.Services {
				if err := enc.Encode(it); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newCmdAdminServiceGet() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := buildServiceUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
			defer cancel()
			out, err := uc.Get(ctx, &service.GetInput{ServiceID: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd, out.Service)
		},
	}
}

func newCmdAdminServiceDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := buildServiceUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
			defer cancel()
			if err := uc.Delete(ctx, &service.DeleteInput{ServiceID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
