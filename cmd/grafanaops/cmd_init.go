package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaegashi/grafanaops/config/grafanaopscfg"
	"github.com/yaegashi/grafanaops/internal/compose"
	"github.com/yaegashi/grafanaops/internal/naming"
)

type initOptions struct {
	file    string
	preset  string
	service string
	stack   string
	region  string
	force   bool

	fromCompose    string
	composeService string
}

func newCmdInit() *cobra.Command {
	var o initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starting grafanaops.yml from a preset",
		Long: `Write a starting grafanaops.yml from a preset.

Presets: ` + strings.Join(grafanaopscfg.PresetNames(), ", ") + `

When the preset uploads dashboards, the dashboards directory is created next
to the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.file == "" {
				o.file = strings.TrimPrefix(getDBURL(cmd), "file:")
			}
			return runInit(cmd, &o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "Path to write (default: the file: db-url path)")
	f.StringVarP(&o.preset, "preset", "p", grafanaopscfg.PresetBasic, "Preset name")
	f.StringVar(&o.service, "service", "grafanaops", "Service name")
	f.StringVar(&o.stack, "stack", "grafana", "Stack name")
	f.StringVar(&o.region, "region", envOr("AWS_REGION", "us-east-1"), "AWS region (env AWS_REGION)")
	f.BoolVar(&o.force, "force", false, "Overwrite an existing file")
	f.StringVar(&o.fromCompose, "from-compose", "", "Take the Grafana image, port, env and plugins from a Docker Compose file")
	f.StringVar(&o.composeService, "compose-service", "", "Compose service to read (default: the one running a grafana image)")
	return cmd
}

func runInit(cmd *cobra.Command, o *initOptions) error {
	if strings.Contains(o.file, ":") && !filepath.IsAbs(o.file) {
		return fmt.Errorf("init writes a file; got %q", o.file)
	}
	if err := naming.ValidateServiceName(o.service); err != nil {
		return fmt.Errorf("--service: %w", err)
	}
	if err := naming.ValidateStackName(o.stack); err != nil {
		return fmt.Errorf("--stack: %w", err)
	}
	if o.region == "" {
		return errors.New("--region: must not be empty")
	}
	if !o.force {
		if _, err := os.Stat(o.file); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", o.file)
		}
	}

	cfg, err := grafanaopscfg.Preset(o.preset, o.service, o.stack, o.region)
	if err != nil {
		return err
	}
	if o.fromCompose != "" {
		if err := applyCompose(cmd, cfg, o.fromCompose, o.composeService); err != nil {
			return err
		}
	}
	data, err := grafanaopscfg.Marshal(cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(o.file)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if d := cfg.Stack.Bucket.Dashboards; d != "" {
		if !filepath.IsAbs(d) {
			d = filepath.Join(dir, d)
		}
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating dashboards directory %s: %w", d, err)
		}
	}
	if err := os.WriteFile(o.file, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", o.file, err)
	}

	// The written file must load cleanly.
	if _, err := grafanaopscfg.LoadResolved(o.file); err != nil {
		return fmt.Errorf("generated %s does not validate: %w", o.file, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (preset %s, stack %s, region %s)\n", o.file, o.preset, o.stack, o.region)
	return nil
}

// applyCompose copies the Grafana container settings of a compose service
// into the generated configuration.
func applyCompose(cmd *cobra.Command, cfg *grafanaopscfg.Root, file, service string) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	g, err := compose.ExtractGrafana(ctx, string(content), service)
	if err != nil {
		return err
	}
	gf := &cfg.Stack.Grafana
	gf.Image = g.Image
	if g.Port != 0 {
		gf.Port = g.Port
	}
	if len(g.Env) > 0 {
		gf.Env = g.Env
	}
	if len(g.Plugins) > 0 {
		gf.Plugins = g.Plugins
	}
	if g.AdminPassword != "" {
		gf.AdminPassword = g.AdminPassword
	}
	return nil
}
