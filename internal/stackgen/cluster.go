package stackgen

import (
	"github.com/yaegashi/grafanaops/internal/cfn"
)

func (b *builder) cluster() {
	insights := "disabled"
	if b.s.Settings[SettingContainerInsights] == "enabled" {
		insights = "enabled"
	}
	b.add(IDCluster, "AWS::ECS::Cluster", map[string]any{
		"ClusterSettings": []any{map[string]any{"Name": "containerInsights", "Value": insights}},
	})

	if !b.awslogs() {
		return
	}
	props := map[string]any{
		"LogGroupName": cfn.Sub("/ecs/${AWS::StackName}"),
	}
	if days := b.s.Container.Logging.RetentionDays; days > 0 {
		props["RetentionInDays"] = days
	}
	b.add(IDLogGroup, "AWS::Logs::LogGroup", props)
}

func (b *builder) awslogs() bool {
	return b.s.Container.Logging.Driver == "awslogs"
}
