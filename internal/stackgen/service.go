package stackgen

import (
	"github.com/yaegashi/grafanaops/internal/cfn"
)

// service declares the task security group and the Fargate service.
func (b *builder) service() {
	s := b.s

	var ingress []any
	for _, r := range s.Task.Ingress {
		ingress = append(ingress, tcpIngress(r.Port, r.CIDR, r.Description))
	}
	if s.LoadBalancer.Enabled {
		ingress = append(ingress, map[string]any{
			"IpProtocol":            "tcp",
			"FromPort":              s.Container.Port,
			"ToPort":                s.Container.Port,
			"SourceSecurityGroupId": cfn.GetAtt(IDLoadBalancerSG, "GroupId"),
			"Description":           "Load balancer",
		})
	}
	sg := map[string]any{
		"GroupDescription": "Grafana tasks",
		"VpcId":            cfn.Ref(IDVpc),
		"Tags":             nameTag("tasks"),
	}
	if len(ingress) > 0 {
		sg["SecurityGroupIngress"] = ingress
	}
	b.add(IDTaskSG, "AWS::EC2::SecurityGroup", sg)

	assign := "DISABLED"
	if s.PublicPlacement() {
		assign = "ENABLED"
	}
	props := map[string]any{
		"Cluster":         cfn.Ref(IDCluster),
		"TaskDefinition":  cfn.Ref(IDTaskDefinition),
		"DesiredCount":    s.Task.DesiredCount,
		"LaunchType":      "FARGATE",
		"PlatformVersion": s.Task.PlatformVersion,
		"NetworkConfiguration": map[string]any{
			"AwsvpcConfiguration": map[string]any{
				"AssignPublicIp": assign,
				"SecurityGroups": []any{cfn.GetAtt(IDTaskSG, "GroupId")},
				"Subnets":        b.taskSubnets(),
			},
		},
		"DeploymentConfiguration": map[string]any{
			"DeploymentCircuitBreaker": map[string]any{"Enable": true, "Rollback": true},
		},
	}

	var deps []string
	if s.LoadBalancer.Enabled {
		props["LoadBalancers"] = []any{map[string]any{
			"ContainerName":  ContainerName,
			"ContainerPort":  s.Container.Port,
			"TargetGroupArn": cfn.Ref(IDTargetGroup),
		}}
		props["HealthCheckGracePeriodSeconds"] = 60
		// The target group must be attached to the load balancer first.
		deps = append(deps, IDListener)
	}
	if s.PublicPlacement() {
		deps = append(deps, "PublicDefaultRoute")
	} else {
		deps = append(deps, b.privateRouteIDs()...)
	}
	deps = append(deps, b.mountTargetIDs()...)
	if s.Database.Managed() {
		deps = append(deps, IDDatabaseAttachment)
	}

	r := b.add(IDService, "AWS::ECS::Service", props)
	r.DependsOn = deps
}
