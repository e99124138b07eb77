package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaegashi/grafanaops/internal/terminal"
	"github.com/yaegashi/grafanaops/usecase/stack"
)

// queryTimeout bounds read-only calls against the provider.
const queryTimeout = 2 * time.Minute

func newCmdStack() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "stack",
		Aliases:            []string{"st"},
		Short:              "Manage the Grafana stack",
		Long:               "Synthesize, deploy, inspect and destroy the Grafana stack.",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringP("stack", "S", "", "Stack ID or name (default: the only stack)")
	cmd.AddCommand(
		newCmdStackSynth(),
		newCmdStackDeploy(),
		newCmdStackDestroy(),
		newCmdStackStatus(),
		newCmdStackOutputs(),
		newCmdStackURL(),
		newCmdStackAdminPassword(),
		newCmdStackDashboards(),
	)
	return cmd
}

// resolveStackID finds the stack selected by the --stack flag.
func resolveStackID(ctx context.Context, cmd *cobra.Command, u *stack.UseCase) (string, error) {
	ref := ""
	if f := findFlag(cmd, "stack"); f != nil {
		ref = f.Value.String()
	}
	out, err := u.Find(ctx, &stack.FindInput{Ref: ref})
	if err != nil {
		return "", err
	}
	return out.Stack.ID, nil
}

// prepareStackCmd builds the stack use case and resolves the selected stack.
func prepareStackCmd(cmd *cobra.Command) (*stack.UseCase, string, error) {
	u, err := buildStackUseCase(cmd)
	if err != nil {
		return nil, "", err
	}
	id, err := resolveStackID(cmd.Context(), cmd, u)
	if err != nil {
		return nil, "", err
	}
	return u, id, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCmdStackSynth() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Render the CloudFormation template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, id, err := prepareStackCmd(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
			defer cancel()
			ctx, cleanup := withCmdRunLogger(ctx, "stack.synth", id)
			defer func() { cleanup(err) }()

			out, err := u.Synth(ctx, &stack.SynthInput{StackID: id})
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(append(out.Template, '\n'))
				return err
			}
			return os.WriteFile(output, append(out.Template, '\n'), 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Write the template to a file instead of stdout")
	return cmd
}

func newCmdStackDeploy() *cobra.Command {
	var in stack.DeployInput
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Create or update the stack and wait for completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, id, err := prepareStackCmd(cmd)
			if err != nil {
				return err
			}
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "stack.deploy", id)
			defer func() { cleanup(err) }()

			in.StackID = id
			out, err := u.Deploy(ctx, &in)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&in.DryRun, "dry-run", false, "Synthesize and check the stack state without changing it")
	f.BoolVar(&in.SkipDashboards, "skip-dashboards", false, "Do not upload dashboards after deploying")
	f.BoolVar(&in.RecreateFailed, "recreate-failed", false, "Delete and recreate a stack stuck in a failed state")
	return cmd
}

func newCmdStackDestroy() *cobra.Command {
	var (
		in  stack.DestroyInput
		yes bool
	)
	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the stack resources",
		Long:  "Delete the stack resources. Resources with a retain removal policy are left in place.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, id, err := prepareStackCmd(cmd)
			if err != nil {
				return err
			}
			if !yes {
				f, isFile := cmd.InOrStdin().(*os.File)
				if !isFile || !terminal.IsTerminal(f) {
					return fmt.Errorf("refusing to destroy stack %s without --yes", id)
				}
				ok, err := terminal.Confirm(f, cmd.ErrOrStderr(), fmt.Sprintf("Destroy stack %s?", id))
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("destroy of stack %s aborted", id)
				}
			}
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "stack.destroy", id)
			defer func() { cleanup(err) }()

			in.StackID = id
			if err := u.Destroy(ctx, &in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "destroyed %s\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&in.NoWait, "no-wait", false, "Return once deletion has started")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newCmdStackStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stack status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, id, err := prepareStackCmd(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
			defer cancel()
			ctx, cleanup := withCmdRunLogger(ctx, "stack.status", id)
			defer func() { cleanup(err) }()

			out, err := u.Status(ctx, &stack.StatusInput{StackID: id})
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
}

func newCmdStackOutputs() *cobra.Command {
	return &cobra.Command{
		Use:   "outputs",
		Short: "Show the stack outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, id, err := prepareStackCmd(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
			defer cancel()
			ctx, cleanup := withCmdRunLogger(ctx, "stack.outputs", id)
			defer func() { cleanup(err) }()

			out, err := u.Outputs(ctx, &stack.OutputsInput{StackID: id})
			if err != nil {
				return err
			}
			return printJSON(cmd, out.Outputs)
		},
	}
}

func newCmdStackURL() *cobra.Command {
	return &cobra.Command{
		Use:   "url",
		Short: "Print the Grafana URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, id, err := prepareStackCmd(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
			defer cancel()
			ctx, cleanup := withCmdRunLogger(ctx, "stack.url", id)
			defer func() { cleanup(err) }()

			out, err := u.URL(ctx, &stack.OutputsInput{StackID: id})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.URL)
			return nil
		},
	}
}

func newCmdStackAdminPassword() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "admin-password",
		Short: "Print the Grafana admin password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, id, err := prepareStackCmd(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
			defer cancel()
			ctx, cleanup := withCmdRunLogger(ctx, "stack.admin-password", id)
			defer func() { cleanup(err) }()

			out, err := u.AdminPassword(ctx, &stack.AdminPasswordInput{StackID: id})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Password)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print username and password as JSON")
	return cmd
}

func newCmdStackDashboards() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboards",
		Short: "Manage dashboards in the stack bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "upload",
		Short: "Upload the dashboards directory to the stack bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, id, err := prepareStackCmd(cmd)
			if err != nil {
				return err
			}
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "stack.dashboards.upload", id)
			defer func() { cleanup(err) }()

			out, err := u.UploadDashboards(ctx, &stack.UploadDashboardsInput{StackID: id})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d dashboards\n", out.Uploaded)
			return nil
		},
	})
	return cmd
}
