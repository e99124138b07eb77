package grafanaopscfg

import (
	"errors"
	"fmt"
	"math"
	"net/netip"
	"os"
	"slices"
	"strings"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/naming"
)

// fargateMemory lists the memory sizes (MiB) Fargate accepts per CPU size.
var fargateMemory = map[int][]int{
	256:   {512, 1024, 2048},
	512:   memRange(1024, 4096, 1024),
	1024:  memRange(2048, 8192, 1024),
	2048:  memRange(4096, 16384, 1024),
	4096:  memRange(8192, 30720, 1024),
	8192:  memRange(16384, 61440, 4096),
	16384: memRange(32768, 122880, 8192),
}

func memRange(lo, hi, step int) []int {
	var out []int
	for m := lo; m <= hi; m += step {
		out = append(out, m)
	}
	return out
}

// Aurora Serverless v2 capacity bounds.
const (
	minAuroraACU = 0.5
	maxAuroraACU = 256
)

// reservedEnvPrefixes are environment variables the stack wires itself.
var reservedEnvPrefixes = []string{"GF_DATABASE_"}

// logRetentionDays are the retention periods CloudWatch Logs accepts.
var logRetentionDays = []int{1, 3, 5, 7, 14, 30, 60, 90, 120, 150, 180, 365, 400, 545, 731, 1096, 1827, 2192, 2557, 2922, 3288, 3653}

var (
	logDrivers      = []string{"awslogs", "none"}
	volumeTypes     = []string{"", model.VolumeTypeEphemeral, model.VolumeTypeEFS}
	removalPolicies = []string{"", model.RemovalPolicyDestroy, model.RemovalPolicyRetain, model.RemovalPolicySnapshot}
	engines         = []string{model.DatabaseEngineSQLite, model.DatabaseEngineMySQL, model.DatabaseEngineAuroraMySQLLess}
)

// Validate performs semantic validation on the configuration tree.
// It expects ApplyDefaults to have run.
func (r *Root) Validate() error {
	if r.Version != CurrentVersion {
		return fmt.Errorf("version: unsupported %q, want %q", r.Version, CurrentVersion)
	}
	if err := naming.ValidateServiceName(r.Service.Name); err != nil {
		return fmt.Errorf("service.name: %w", err)
	}
	if err := naming.ValidateProviderName(r.Provider.Name); err != nil {
		return fmt.Errorf("provider.name: %w", err)
	}
	if r.Provider.Driver == "" {
		return errors.New("provider.driver: must not be empty")
	}
	if err := r.Stack.validate(); err != nil {
		return fmt.Errorf("stack: %w", err)
	}
	return nil
}

func (s *Stack) validate() error {
	if err := naming.ValidateStackName(s.Name); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	if err := s.validateNetwork(); err != nil {
		return err
	}
	if err := s.validateGrafana(); err != nil {
		return err
	}
	if err := s.validateDatabase(); err != nil {
		return err
	}
	if err := s.validateLoadBalancer(); err != nil {
		return err
	}
	return s.validateBucket()
}

func (s *Stack) validateNetwork() error {
	n := s.Network
	prefix, err := netip.ParsePrefix(n.CIDR)
	if err != nil {
		return fmt.Errorf("network.cidr: %w", err)
	}
	if !prefix.Addr().Is4() {
		return fmt.Errorf("network.cidr: %s is not an IPv4 prefix", n.CIDR)
	}
	if prefix.Masked() != prefix {
		return fmt.Errorf("network.cidr: %s has host bits set", n.CIDR)
	}
	if prefix.Bits() < 16 || prefix.Bits() > 24 {
		return fmt.Errorf("network.cidr: prefix length /%d out of range /16../24", prefix.Bits())
	}
	if n.MaxAZs < 1 || n.MaxAZs > 6 {
		return fmt.Errorf("network.maxAzs: %d out of range 1..6", n.MaxAZs)
	}
	nat := derefInt(n.NATGateways)
	if nat < 0 || nat > n.MaxAZs {
		return fmt.Errorf("network.natGateways: %d out of range 0..%d", nat, n.MaxAZs)
	}
	if nat == 0 && !s.publicPlacement() {
		return errors.New("network.natGateways: 0 requires public task placement (grafana.assignPublicIp or no load balancer) so the task can pull its image")
	}
	return nil
}

func (s *Stack) validateGrafana() error {
	g := s.Grafana
	if g.Image == "" {
		return errors.New("grafana.image: must not be empty")
	}
	mems, ok := fargateMemory[g.CPU]
	if !ok {
		return fmt.Errorf("grafana.cpu: %d is not a Fargate CPU size", g.CPU)
	}
	if !slices.Contains(mems, g.Memory) {
		return fmt.Errorf("grafana.memory: %d MiB is not valid with cpu %d (allowed %v)", g.Memory, g.CPU, mems)
	}
	if g.MemoryReservation < 0 || g.MemoryReservation > g.Memory {
		return fmt.Errorf("grafana.memoryReservation: %d must be within 0..%d", g.MemoryReservation, g.Memory)
	}
	if d := derefInt(g.DesiredCount); d < 0 {
		return fmt.Errorf("grafana.desiredCount: %d must not be negative", d)
	}
	if g.Port < 1 || g.Port > 65535 {
		return fmt.Errorf("grafana.port: %d out of range", g.Port)
	}
	if !slices.Contains(logDrivers, g.Logging.Driver) {
		return fmt.Errorf("grafana.logging.driver: %q must be one of %v", g.Logging.Driver, logDrivers)
	}
	if g.Logging.RetentionDays != 0 && !slices.Contains(logRetentionDays, g.Logging.RetentionDays) {
		return fmt.Errorf("grafana.logging.retentionDays: %d must be one of %v", g.Logging.RetentionDays, logRetentionDays)
	}
	if !slices.Contains(volumeTypes, g.Volume.Type) {
		return fmt.Errorf("grafana.volume.type: %q must be %q or %q", g.Volume.Type, model.VolumeTypeEphemeral, model.VolumeTypeEFS)
	}
	if g.Volume.Type != "" && !strings.HasPrefix(g.Volume.Path, "/") {
		return fmt.Errorf("grafana.volume.path: %q must be absolute", g.Volume.Path)
	}
	for name := range g.Env {
		if err := naming.ValidateEnvName(name); err != nil {
			return fmt.Errorf("grafana.env: %w", err)
		}
		for _, p := range reservedEnvPrefixes {
			if strings.HasPrefix(name, p) {
				return fmt.Errorf("grafana.env: %s is managed by the stack", name)
			}
		}
		if _, dup := g.Secrets[name]; dup {
			return fmt.Errorf("grafana.env: %s is also defined in grafana.secrets", name)
		}
	}
	for name, ref := range g.Secrets {
		if err := naming.ValidateEnvName(name); err != nil {
			return fmt.Errorf("grafana.secrets: %w", err)
		}
		if ref.Secret == "" {
			return fmt.Errorf("grafana.secrets.%s.secret: must not be empty", name)
		}
	}
	if g.AdminPassword != "" {
		if _, dup := g.Env["GF_SECURITY_ADMIN_PASSWORD"]; dup {
			return errors.New("grafana.env: GF_SECURITY_ADMIN_PASSWORD conflicts with grafana.adminPassword")
		}
		if _, dup := g.Secrets["GF_SECURITY_ADMIN_PASSWORD"]; dup {
			return errors.New("grafana.secrets: GF_SECURITY_ADMIN_PASSWORD conflicts with grafana.adminPassword")
		}
	}
	return validateIngress("grafana.ingress", g.Ingress)
}

func (s *Stack) validateDatabase() error {
	d := s.Database
	if !slices.Contains(engines, d.Engine) {
		return fmt.Errorf("database.engine: %q must be one of %v", d.Engine, engines)
	}
	if !slices.Contains(removalPolicies, d.RemovalPolicy) {
		return fmt.Errorf("database.removalPolicy: %q is not supported", d.RemovalPolicy)
	}
	switch d.Engine {
	case model.DatabaseEngineSQLite:
		if !strings.HasPrefix(d.Path, "/") {
			return fmt.Errorf("database.path: %q must be absolute", d.Path)
		}
		return nil
	case model.DatabaseEngineMySQL:
		if d.AllocatedStorage < 5 || d.AllocatedStorage > 65536 {
			return fmt.Errorf("database.allocatedStorage: %d GiB out of range 5..65536", d.AllocatedStorage)
		}
		if d.InstanceClass == "" || !strings.HasPrefix(d.InstanceClass, "db.") {
			return fmt.Errorf("database.instanceClass: %q must start with db.", d.InstanceClass)
		}
	case model.DatabaseEngineAuroraMySQLLess:
		if d.MinCapacity < minAuroraACU || d.MaxCapacity < d.MinCapacity || d.MaxCapacity > maxAuroraACU {
			return fmt.Errorf("database: capacity range %g..%g is invalid (%g..%g ACUs)", d.MinCapacity, d.MaxCapacity, minAuroraACU, float64(maxAuroraACU))
		}
		for _, c := range []float64{d.MinCapacity, d.MaxCapacity} {
			if c*2 != math.Trunc(c*2) {
				return fmt.Errorf("database: capacity %g must be a multiple of 0.5", c)
			}
		}
	}
	if d.Name == "" || d.Username == "" {
		return errors.New("database: name and username are required for managed engines")
	}
	if d.Port < 1 || d.Port > 65535 {
		return fmt.Errorf("database.port: %d out of range", d.Port)
	}
	if s.Network.MaxAZs < 2 {
		return fmt.Errorf("database: %s requires network.maxAzs >= 2 for its subnet group", d.Engine)
	}
	return nil
}

func (s *Stack) validateLoadBalancer() error {
	lb := s.LoadBalancer
	if !derefBool(lb.Enabled) {
		if len(lb.Ingress) > 0 {
			return errors.New("loadBalancer.ingress: requires loadBalancer.enabled")
		}
		return nil
	}
	if lb.ListenerPort < 1 || lb.ListenerPort > 65535 {
		return fmt.Errorf("loadBalancer.listenerPort: %d out of range", lb.ListenerPort)
	}
	if derefBool(lb.Public) && s.Network.MaxAZs < 2 {
		return errors.New("loadBalancer: an application load balancer requires network.maxAzs >= 2")
	}
	return validateIngress("loadBalancer.ingress", lb.Ingress)
}

func (s *Stack) validateBucket() error {
	b := s.Bucket
	if !b.Enabled {
		if b.Dashboards != "" {
			return errors.New("bucket.dashboards: requires bucket.enabled")
		}
		return nil
	}
	if !slices.Contains(removalPolicies, b.RemovalPolicy) || b.RemovalPolicy == model.RemovalPolicySnapshot {
		return fmt.Errorf("bucket.removalPolicy: %q is not supported", b.RemovalPolicy)
	}
	if b.Dashboards != "" {
		fi, err := os.Stat(b.Dashboards)
		if err != nil {
			return fmt.Errorf("bucket.dashboards: %w", err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("bucket.dashboards: %s is not a directory", b.Dashboards)
		}
	}
	return nil
}

func validateIngress(field string, rules []IngressRule) error {
	seen := map[int]bool{}
	for i, r := range rules {
		if r.Port < 1 || r.Port > 65535 {
			return fmt.Errorf("%s[%d].port: %d out of range", field, i, r.Port)
		}
		if _, err := netip.ParsePrefix(r.CIDR); err != nil {
			return fmt.Errorf("%s[%d].cidr: %w", field, i, err)
		}
		if seen[r.Port] {
			return fmt.Errorf("%s[%d]: duplicate rule for port %d", field, i, r.Port)
		}
		seen[r.Port] = true
	}
	return nil
}

// Warnings returns the non-fatal findings for a validated configuration.
func (r *Root) Warnings() []string {
	var out []string
	if r.Stack.Database.Engine == model.DatabaseEngineSQLite && r.Stack.Grafana.Volume.Type == model.VolumeTypeEphemeral {
		out = append(out, fmt.Sprintf("stack %s: sqlite3 database at %s is on an ephemeral volume and is lost when the task is replaced", r.Stack.Name, r.Stack.Database.Path))
	}
	return out
}

// publicPlacement reports whether tasks run in public subnets.
func (s *Stack) publicPlacement() bool {
	return s.Grafana.AssignPublicIP || !derefBool(s.LoadBalancer.Enabled)
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefBool(p *bool) bool {
	return p != nil && *p
}
