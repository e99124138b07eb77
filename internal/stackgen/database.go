package stackgen

import (
	"strconv"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/cfn"
)

// database declares the managed database, its subnet group and a security
// group that only admits the task security group on the database port.
// SQLite needs nothing here; its file lives on the task volume.
func (b *builder) database() {
	d := b.s.Database
	if !d.Managed() {
		return
	}

	b.add(IDDatabaseSubnets, "AWS::RDS::DBSubnetGroup", map[string]any{
		"DBSubnetGroupDescription": cfn.Sub("Grafana database subnets for ${AWS::StackName}"),
		"SubnetIds":                b.net.privateRefs(),
	})
	b.add(IDDatabaseSG, "AWS::EC2::SecurityGroup", map[string]any{
		"GroupDescription": "Grafana database",
		"VpcId":            cfn.Ref(IDVpc),
		"SecurityGroupIngress": []any{map[string]any{
			"IpProtocol":            "tcp",
			"FromPort":              d.Port,
			"ToPort":                d.Port,
			"SourceSecurityGroupId": cfn.GetAtt(IDTaskSG, "GroupId"),
			"Description":           "Grafana tasks",
		}},
		"Tags": nameTag("database"),
	})

	username := cfn.DynamicSecret(IDDatabaseSecret, "username")
	password := cfn.DynamicSecret(IDDatabaseSecret, "password")
	policy := deletionPolicy(d.RemovalPolicy)

	var target, targetType string
	switch d.Engine {
	case model.DatabaseEngineMySQL:
		target, targetType = IDDatabase, "AWS::RDS::DBInstance"
		r := b.add(IDDatabase, targetType, map[string]any{
			"Engine":             "mysql",
			"EngineVersion":      d.EngineVersion,
			"DBInstanceClass":    d.InstanceClass,
			"AllocatedStorage":   strconv.Itoa(d.AllocatedStorage),
			"DBName":             d.Name,
			"MasterUsername":     username,
			"MasterUserPassword": password,
			"Port":               strconv.Itoa(d.Port),
			"DBSubnetGroupName":  cfn.Ref(IDDatabaseSubnets),
			"VPCSecurityGroups":  []any{cfn.GetAtt(IDDatabaseSG, "GroupId")},
			"PubliclyAccessible": false,
			"StorageEncrypted":   true,
		})
		r.DeletionPolicy, r.UpdateReplacePolicy = policy, policy
	case model.DatabaseEngineAuroraMySQLLess:
		target, targetType = IDDatabaseCluster, "AWS::RDS::DBCluster"
		r := b.add(IDDatabaseCluster, targetType, map[string]any{
			"Engine":              "aurora-mysql",
			"EngineMode":          "provisioned",
			"EngineVersion":       d.EngineVersion,
			"DatabaseName":        d.Name,
			"MasterUsername":      username,
			"MasterUserPassword":  password,
			"Port":                d.Port,
			"DBSubnetGroupName":   cfn.Ref(IDDatabaseSubnets),
			"VpcSecurityGroupIds": []any{cfn.GetAtt(IDDatabaseSG, "GroupId")},
			"StorageEncrypted":    true,
			"ServerlessV2ScalingConfiguration": map[string]any{
				"MinCapacity": d.MinCapacity,
				"MaxCapacity": d.MaxCapacity,
			},
		})
		r.DeletionPolicy, r.UpdateReplacePolicy = policy, policy
		// Serverless v2 capacity is served by db.serverless instances in the cluster.
		b.add(IDDatabaseWriter, "AWS::RDS::DBInstance", map[string]any{
			"Engine":              "aurora-mysql",
			"DBClusterIdentifier": cfn.Ref(IDDatabaseCluster),
			"DBInstanceClass":     "db.serverless",
			"PubliclyAccessible":  false,
		})
	}

	b.add(IDDatabaseAttachment, "AWS::SecretsManager::SecretTargetAttachment", map[string]any{
		"SecretId":   cfn.Ref(IDDatabaseSecret),
		"TargetId":   cfn.Ref(target),
		"TargetType": targetType,
	})
}

// databaseEndpoint returns the endpoint address of the managed database.
func (b *builder) databaseEndpoint() string {
	if b.s.Database.Engine == model.DatabaseEngineAuroraMySQLLess {
		return cfn.GetAtt(IDDatabaseCluster, "Endpoint.Address")
	}
	return cfn.GetAtt(IDDatabase, "Endpoint.Address")
}

// databaseID returns the logical ID of the database resource.
func (b *builder) databaseID() string {
	if b.s.Database.Engine == model.DatabaseEngineAuroraMySQLLess {
		return IDDatabaseCluster
	}
	return IDDatabase
}
