// Package compose lifts Grafana container settings out of a Docker Compose file.
package compose

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"

	"github.com/yaegashi/grafanaops/internal/logging"
)

// envPlugins is the Grafana image variable listing plugins to install.
const envPlugins = "GF_INSTALL_PLUGINS"

// envAdminPassword is the Grafana admin password variable.
const envAdminPassword = "GF_SECURITY_ADMIN_PASSWORD"

// Grafana holds the container settings found in a compose service.
type Grafana struct {
	Service       string
	Image         string
	Port          int
	Env           map[string]string
	Plugins       []string
	AdminPassword string
}

// NewProject parses compose file content into a project.
func NewProject(ctx context.Context, composeContent string) (*types.Project, error) {
	logger := logging.FromContext(ctx)

	cdm := types.ConfigDetails{
		WorkingDir: ".",
		ConfigFiles: []types.ConfigFile{
			{Filename: "compose.yml", Content: []byte(composeContent)},
		},
		Environment: map[string]string{},
	}

	model, err := loader.LoadModelWithContext(ctx, cdm, func(o *loader.Options) {
		o.SetProjectName("grafanaops", false)
		o.SkipInclude = true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load compose model: %w", err)
	}

	if _, ok := model["version"]; ok {
		logger.Warn(ctx, "compose: `version` is obsolete")
	}

	var proj *types.Project
	if err := loader.Transform(model, &proj); err != nil {
		return nil, fmt.Errorf("failed to transform compose model to project: %w", err)
	}
	return proj, nil
}

// selectService picks the named service, or the single service whose image
// mentions grafana when name is empty.
func selectService(proj *types.Project, name string) (types.ServiceConfig, error) {
	if name != "" {
		svc, ok := proj.Services[name]
		if !ok {
			return types.ServiceConfig{}, fmt.Errorf("compose: service %q not found", name)
		}
		return svc, nil
	}
	var found []string
	for n, svc := range proj.Services {
		if strings.Contains(svc.Image, "grafana") {
			found = append(found, n)
		}
	}
	sort.Strings(found)
	switch len(found) {
	case 0:
		return types.ServiceConfig{}, fmt.Errorf("compose: no service runs a grafana image")
	case 1:
		return proj.Services[found[0]], nil
	default:
		return types.ServiceConfig{}, fmt.Errorf("compose: several grafana services %v, select one", found)
	}
}

// ExtractGrafana reads the Grafana service from compose content. Variables
// without a value are dropped. Plugins and the admin password move out of
// the environment into their own fields.
func ExtractGrafana(ctx context.Context, composeContent, service string) (*Grafana, error) {
	proj, err := NewProject(ctx, composeContent)
	if err != nil {
		return nil, err
	}
	svc, err := selectService(proj, service)
	if err != nil {
		return nil, err
	}
	if svc.Image == "" {
		return nil, fmt.Errorf("compose: service %q has no image", svc.Name)
	}

	g := &Grafana{Service: svc.Name, Image: svc.Image, Env: map[string]string{}}
	if len(svc.Ports) > 0 {
		g.Port = int(svc.Ports[0].Target)
	}
	for k, v := range svc.Environment {
		if v == nil {
			continue
		}
		switch k {
		case envPlugins:
			for _, p := range strings.Split(*v, ",") {
				if p = strings.TrimSpace(p); p != "" {
					g.Plugins = append(g.Plugins, p)
				}
			}
		case envAdminPassword:
			g.AdminPassword = *v
		default:
			if strings.HasPrefix(k, "GF_DATABASE_") {
				logging.FromContext(ctx).Warnf(ctx, "compose: dropping %s, the stack manages the database", k)
				continue
			}
			g.Env[k] = *v
		}
	}
	return g, nil
}
