package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/yaegashi/grafanaops/adapters/drivers/provider/aws"
	"github.com/yaegashi/grafanaops/internal/logging"
)

// logFile is closed after the command finishes.
var logFile *logging.LogFile

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "grafanaops",
		Short:   "GrafanaOps CLI",
		Long:    "GrafanaOps CLI provisions containerized Grafana on AWS through CloudFormation.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help by default when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.String("db-url", envOr("GRAFANAOPS_DB_URL", "file:grafanaops.yml"), "Database URL (env GRAFANAOPS_DB_URL) (file:/path/to/grafanaops.yml | sqlite:/path/to.db)")
	pf.String("log-format", "human", "Log format (human|text|json) (env GRAFANAOPS_LOG_FORMAT)")
	pf.String("log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR) (env GRAFANAOPS_LOG_LEVEL)")
	pf.String("log-output", "-", "Log output (- for stderr, auto, none, or a file path)")
	pf.String("log-dir", ".grafanaops/logs", "Directory for auto and relative log outputs")
	pf.Int("log-retention", 7, "Days to keep generated log files (0 keeps everything)")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		f := c.Flags()
		cfg := &logging.LogConfig{}
		cfg.Format, _ = f.GetString("log-format")
		cfg.Level, _ = f.GetString("log-level")
		cfg.Output, _ = f.GetString("log-output")
		cfg.Dir, _ = f.GetString("log-dir")
		cfg.RetentionDays, _ = f.GetInt("log-retention")
		// env overrides flag
		cfg.Format = envOr("GRAFANAOPS_LOG_FORMAT", cfg.Format)
		cfg.Level = envOr("GRAFANAOPS_LOG_LEVEL", cfg.Level)

		l, lf, err := logging.NewFromConfig(cfg)
		if err != nil {
			return err
		}
		logFile = lf
		c.SetContext(logging.WithLogger(c.Context(), l))
		return nil
	}
	cmd.PersistentPostRunE = func(c *cobra.Command, _ []string) error {
		if logFile == nil {
			return nil
		}
		err := logFile.Close()
		logFile = nil
		return err
	}

	cmd.AddCommand(newCmdVersion())
	cmd.AddCommand(newCmdInit())
	cmd.AddCommand(newCmdConfig())
	cmd.AddCommand(newCmdStack())
	cmd.AddCommand(newCmdAdmin())
	return cmd
}

func main() {
	root := newRootCmd()
	root.SetContext(context.Background())
	executed, err := root.ExecuteC()
	if err != nil {
		ctx := root.Context()
		if executed != nil {
			ctx = executed.Context()
		}
		logging.FromContext(ctx).Errorf(ctx, "Failed: %s", err)
		if logFile != nil {
			_ = logFile.Close()
		}
		os.Exit(1)
	}
}
