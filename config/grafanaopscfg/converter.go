package grafanaopscfg

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/yaegashi/grafanaops/domain/model"
)

// ToModels converts the configuration to domain models with proper references.
// Returns models in the order: service, provider, stack.
// ApplyDefaults and Validate are expected to have run.
func (r *Root) ToModels() (*model.Service, *model.Provider, *model.Stack, error) {
	now := time.Now()

	service := &model.Service{
		ID:        uuid.NewString(),
		Name:      r.Service.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	provider := &model.Provider{
		ID:        uuid.NewString(),
		Name:      r.Provider.Name,
		ServiceID: service.ID,
		Driver:    r.Provider.Driver,
		Settings:  maps.Clone(r.Provider.Settings),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s := r.Stack
	stack := &model.Stack{
		ID:         uuid.NewString(),
		Name:       s.Name,
		ProviderID: provider.ID,
		Preset:     s.Preset,
		Network: model.StackNetwork{
			CIDR:        s.Network.CIDR,
			MaxAZs:      s.Network.MaxAZs,
			NATGateways: derefInt(s.Network.NATGateways),
		},
		Task: model.StackTask{
			Family:          s.Grafana.Family,
			CPU:             s.Grafana.CPU,
			Memory:          s.Grafana.Memory,
			DesiredCount:    derefInt(s.Grafana.DesiredCount),
			PlatformVersion: s.Grafana.PlatformVersion,
			AssignPublicIP:  s.Grafana.AssignPublicIP,
			Ingress:         toModelIngress(s.Grafana.Ingress),
		},
		Container: model.StackContainer{
			Image:             s.Grafana.Image,
			Port:              s.Grafana.Port,
			MemoryReservation: s.Grafana.MemoryReservation,
			Plugins:           append([]string(nil), s.Grafana.Plugins...),
			Env:               maps.Clone(s.Grafana.Env),
			Secrets:           toModelSecrets(s.Grafana.Secrets),
			AdminPassword:     s.Grafana.AdminPassword,
			Logging: model.StackLogging{
				Driver:        s.Grafana.Logging.Driver,
				StreamPrefix:  s.Grafana.Logging.StreamPrefix,
				RetentionDays: s.Grafana.Logging.RetentionDays,
			},
			Volume: model.StackVolume{
				Name: s.Grafana.Volume.Name,
				Path: s.Grafana.Volume.Path,
				Type: s.Grafana.Volume.Type,
			},
		},
		Database: model.StackDatabase{
			Engine:           s.Database.Engine,
			Name:             s.Database.Name,
			Username:         s.Database.Username,
			InstanceClass:    s.Database.InstanceClass,
			AllocatedStorage: s.Database.AllocatedStorage,
			EngineVersion:    s.Database.EngineVersion,
			Port:             s.Database.Port,
			Path:             s.Database.Path,
			MinCapacity:      s.Database.MinCapacity,
			MaxCapacity:      s.Database.MaxCapacity,
			RemovalPolicy:    s.Database.RemovalPolicy,
		},
		LoadBalancer: model.StackLoadBalancer{
			Enabled:      derefBool(s.LoadBalancer.Enabled),
			Public:       derefBool(s.LoadBalancer.Public),
			ListenerPort: s.LoadBalancer.ListenerPort,
			Open:         derefBool(s.LoadBalancer.Open),
			Ingress:      toModelIngress(s.LoadBalancer.Ingress),
		},
		Bucket: model.StackBucket{
			Enabled:       s.Bucket.Enabled,
			Dashboards:    s.Bucket.Dashboards,
			Prefix:        s.Bucket.Prefix,
			RemovalPolicy: s.Bucket.RemovalPolicy,
		},
		Settings:  maps.Clone(s.Settings),
		CreatedAt: now,
		UpdatedAt: now,
	}

	return service, provider, stack, nil
}

// toModelIngress converts config slice to domain slice.
func toModelIngress(rules []IngressRule) []model.StackIngressRule {
	if len(rules) == 0 {
		return nil
	}
	out := make([]model.StackIngressRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, model.StackIngressRule{Port: r.Port, CIDR: r.CIDR, Description: r.Description})
	}
	return out
}

func toModelSecrets(in map[string]SecretRef) map[string]model.StackSecretRef {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]model.StackSecretRef, len(in))
	for k, v := range in {
		out[k] = model.StackSecretRef{Secret: v.Secret, Key: v.Key}
	}
	return out
}
