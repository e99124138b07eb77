package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaegashi/grafanaops/config/grafanaopscfg"
	"github.com/yaegashi/grafanaops/internal/logging"
)

// newCmdConfig returns a command that reads and validates the configuration.
func newCmdConfig() *cobra.Command {
	var (
		file     string
		resolved bool
	)
	c := &cobra.Command{
		Use:   "config",
		Short: "Read and validate configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				dbURL := getDBURL(cmd)
				if !strings.HasPrefix(dbURL, "file:") {
					return fmt.Errorf("config needs a file: db-url or --file, got %s", dbURL)
				}
				file = strings.TrimPrefix(dbURL, "file:")
			}
			cfg, err := grafanaopscfg.LoadResolved(file)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			log := logging.FromContext(ctx)
			for _, w := range cfg.Warnings() {
				log.Warn(ctx, w, "path", file)
			}
			if resolved {
				data, err := grafanaopscfg.Marshal(cfg)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			s := cfg.Stack
			db := s.Database.Engine
			lb := "none"
			if s.LoadBalancer.Enabled != nil && *s.LoadBalancer.Enabled {
				lb = fmt.Sprintf("port %d", s.LoadBalancer.ListenerPort)
			}
			// Print a concise summary to stdout
			fmt.Fprintf(cmd.OutOrStdout(), "version=%s service=%s provider=%s driver=%s stack=%s preset=%s database=%s loadBalancer=%s bucket=%t\n",
				cfg.Version, cfg.Service.Name, cfg.Provider.Name, cfg.Provider.Driver, s.Name, s.Preset, db, lb, s.Bucket.Enabled)
			return nil
		},
	}
	c.Flags().StringVarP(&file, "file", "f", "", "Path to grafanaops.yml (default: the file: db-url path)")
	c.Flags().BoolVar(&resolved, "resolved", false, "Print the configuration with presets and defaults applied")
	return c
}
