package stackgen

import (
	"fmt"

	"github.com/yaegashi/grafanaops/internal/cfn"
)

// Output keys read back by the driver.
const (
	OutputGrafanaURL         = "GrafanaUrl"
	OutputClusterName        = "ClusterName"
	OutputServiceName        = "ServiceName"
	OutputVpcID              = "VpcId"
	OutputDatabaseEndpoint   = "DatabaseEndpoint"
	OutputDatabaseIdentifier = "DatabaseIdentifier"
	OutputDatabaseSecretArn  = "DatabaseSecretArn"
	OutputAdminSecretArn     = "AdminSecretArn"
	OutputBucketName         = "BucketName"
	OutputLogGroupName       = "LogGroupName"
	OutputFileSystemID       = "FileSystemId"
)

func (b *builder) outputs() {
	s := b.s
	if s.LoadBalancer.Enabled {
		url := "http://${" + IDLoadBalancer + ".DNSName}"
		if p := s.LoadBalancer.ListenerPort; p != 80 {
			url += fmt.Sprintf(":%d", p)
		}
		b.t.AddOutput(OutputGrafanaURL, "Grafana URL", cfn.Sub(url))
	}
	b.t.AddOutput(OutputClusterName, "ECS cluster", cfn.Ref(IDCluster))
	b.t.AddOutput(OutputServiceName, "ECS service", cfn.GetAtt(IDService, "Name"))
	b.t.AddOutput(OutputVpcID, "VPC", cfn.Ref(IDVpc))
	if s.Database.Managed() {
		b.t.AddOutput(OutputDatabaseEndpoint, "Database endpoint address", b.databaseEndpoint())
		b.t.AddOutput(OutputDatabaseIdentifier, "Database identifier", cfn.Ref(b.databaseID()))
		b.t.AddOutput(OutputDatabaseSecretArn, "Database credentials secret", cfn.Ref(IDDatabaseSecret))
	}
	if b.hasAdminSecret() {
		b.t.AddOutput(OutputAdminSecretArn, "Grafana admin password secret", cfn.Ref(IDAdminSecret))
	}
	if s.Bucket.Enabled {
		b.t.AddOutput(OutputBucketName, "Dashboard bucket", cfn.Ref(IDBucket))
	}
	if b.awslogs() {
		b.t.AddOutput(OutputLogGroupName, "Container log group", cfn.Ref(IDLogGroup))
	}
	if b.efs() {
		b.t.AddOutput(OutputFileSystemID, "Grafana data file system", cfn.Ref(IDFileSystem))
	}
}
