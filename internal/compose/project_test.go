package compose

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractGrafana(t *testing.T) {
	tests := []struct {
		name    string
		content string
		service string
		want    *Grafana
		wantErr string
	}{
		{
			name: "single_grafana",
			content: `
services:
  grafana:
    image: grafana/grafana-oss:11.2.0
    ports:
      - "3001:3000"
    environment:
      GF_SERVER_ROOT_URL: https://grafana.example.com
      GF_INSTALL_PLUGINS: "grafana-clock-panel, grafana-piechart-panel"
      GF_SECURITY_ADMIN_PASSWORD: changeme
      GF_DATABASE_TYPE: mysql
  prometheus:
    image: prom/prometheus
`,
			want: &Grafana{
				Service:       "grafana",
				Image:         "grafana/grafana-oss:11.2.0",
				Port:          3000,
				Env:           map[string]string{"GF_SERVER_ROOT_URL": "https://grafana.example.com"},
				Plugins:       []string{"grafana-clock-panel", "grafana-piechart-panel"},
				AdminPassword: "changeme",
			},
		},
		{
			name: "named_service",
			content: `
services:
  dash:
    image: example.com/custom-dash:1
    environment:
      - GF_AUTH_ANONYMOUS_ENABLED=true
`,
			service: "dash",
			want: &Grafana{
				Service: "dash",
				Image:   "example.com/custom-dash:1",
				Env:     map[string]string{"GF_AUTH_ANONYMOUS_ENABLED": "true"},
			},
		},
		{
			name: "missing_named_service",
			content: `
services:
  grafana:
    image: grafana/grafana
`,
			service: "nope",
			wantErr: "not found",
		},
		{
			name: "no_grafana",
			content: `
services:
  web:
    image: nginx
`,
			wantErr: "no service runs a grafana image",
		},
		{
			name: "ambiguous",
			content: `
services:
  a:
    image: grafana/grafana
  b:
    image: grafana/grafana-oss
`,
			wantErr: "several grafana services",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractGrafana(context.Background(), tt.content, tt.service)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractGrafana mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
