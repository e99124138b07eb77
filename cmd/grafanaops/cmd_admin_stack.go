package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaegashi/grafanaops/usecase/stack"
)

func newCmdAdminStack() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stack",
		Short:         "Manage Stack records",
		RunE:          func(cmd *cobra.Command, args []string) error { return cmd.Help() },
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newCmdAdminStackList())
	cmd.AddCommand(newCmdAdminStackGet())
	cmd.AddCommand(newCmdAdminStackDelete())
	return cmd
}

func newCmdAdminStackList() *cobra.Command {
	var providerID string
	c := &cobra.Command{
		Use:   "list",
		Short: "List stacks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := buildStackUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
			defer cancel()
			out, err := uc.List(ctx, &stack.ListInput{ProviderID: providerID})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, it := range out.Stacks {
				if err := enc.Encode(it); err != nil {
					return err
				}
			}
			return nil
		},
	}
	c.Flags().StringVar(&providerID, "provider-id", "", "Only list stacks of this provider")
	return c
}

func newCmdAdminStackGet() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id|name>",
		Short: "Get a stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := buildStackUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
			defer cancel()
			out, err := uc.Find(ctx, &stack.FindInput{Ref: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd, out.Stack)
		},
	}
}

func newCmdAdminStackDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stack record (cloud resources are left alone)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := buildStackUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
			defer cancel()
			if err := uc.Delete(ctx, &stack.DeleteInput{StackID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
