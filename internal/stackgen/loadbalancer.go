package stackgen

import (
	"github.com/yaegashi/grafanaops/internal/cfn"
)

// HealthCheckPath is Grafana's unauthenticated health endpoint.
const HealthCheckPath = "/api/health"

// loadBalancer declares the application load balancer, its security group,
// an IP target group on the container port, and an HTTP listener.
func (b *builder) loadBalancer() {
	lb := b.s.LoadBalancer
	if !lb.Enabled {
		return
	}

	var ingress []any
	if lb.Open {
		ingress = append(ingress, tcpIngress(lb.ListenerPort, "0.0.0.0/0", "Listener"))
	}
	for _, r := range lb.Ingress {
		if lb.Open && r.Port == lb.ListenerPort && r.CIDR == "0.0.0.0/0" {
			continue
		}
		ingress = append(ingress, tcpIngress(r.Port, r.CIDR, r.Description))
	}
	sg := map[string]any{
		"GroupDescription": "Grafana load balancer",
		"VpcId":            cfn.Ref(IDVpc),
		"Tags":             nameTag("alb"),
	}
	if len(ingress) > 0 {
		sg["SecurityGroupIngress"] = ingress
	}
	b.add(IDLoadBalancerSG, "AWS::EC2::SecurityGroup", sg)

	scheme, subnets := "internal", b.net.privateRefs()
	if lb.Public {
		scheme, subnets = "internet-facing", b.net.publicRefs()
	}
	r := b.add(IDLoadBalancer, "AWS::ElasticLoadBalancingV2::LoadBalancer", map[string]any{
		"Type":           "application",
		"Scheme":         scheme,
		"Subnets":        subnets,
		"SecurityGroups": []any{cfn.GetAtt(IDLoadBalancerSG, "GroupId")},
	})
	if lb.Public {
		r.DependsOn = []string{IDGatewayAttachment}
	}

	b.add(IDTargetGroup, "AWS::ElasticLoadBalancingV2::TargetGroup", map[string]any{
		"Port":                       b.s.Container.Port,
		"Protocol":                   "HTTP",
		"TargetType":                 "ip",
		"VpcId":                      cfn.Ref(IDVpc),
		"HealthCheckPath":            HealthCheckPath,
		"HealthCheckIntervalSeconds": 30,
		"HealthyThresholdCount":      2,
		"Matcher":                    map[string]any{"HttpCode": "200"},
		"TargetGroupAttributes": []any{
			map[string]any{"Key": "deregistration_delay.timeout_seconds", "Value": "30"},
		},
	})
	b.add(IDListener, "AWS::ElasticLoadBalancingV2::Listener", map[string]any{
		"LoadBalancerArn": cfn.Ref(IDLoadBalancer),
		"Port":            lb.ListenerPort,
		"Protocol":        "HTTP",
		"DefaultActions": []any{map[string]any{
			"Type":           "forward",
			"TargetGroupArn": cfn.Ref(IDTargetGroup),
		}},
	})
}

func tcpIngress(port int, cidr, description string) map[string]any {
	r := map[string]any{
		"IpProtocol": "tcp",
		"FromPort":   port,
		"ToPort":     port,
		"CidrIp":     cidr,
	}
	if description != "" {
		r["Description"] = description
	}
	return r
}
