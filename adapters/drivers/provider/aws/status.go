package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/logging"
	"github.com/yaegashi/grafanaops/internal/stackgen"
)

// StackStatus reports the CloudFormation state plus service, database and
// account details gathered from the deployed resources.
func (d *driver) StackStatus(ctx context.Context, stack *model.Stack) (st *model.StackStatus, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "StackStatus")
	defer func() { cleanup(err) }()
	log := logging.FromContext(ctx)

	name, err := d.stackName(stack)
	if err != nil {
		return nil, err
	}
	st = &model.StackStatus{StackName: name, Region: d.region}

	if id, err := d.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{}); err != nil {
		log.Warn(ctx, "caller identity unavailable", "err", err)
	} else {
		st.Account = aws.ToString(id.Account)
	}

	current, err := d.describeStack(ctx, name)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return st, nil
	}
	st.Deployed = true
	st.State = string(current.StackStatus)
	st.Reason = aws.ToString(current.StackStatusReason)

	outputs := stackOutputs(current)
	cluster, service := outputs[stackgen.OutputClusterName], outputs[stackgen.OutputServiceName]
	if cluster != "" && service != "" {
		running, desired, err := d.serviceCounts(ctx, cluster, service)
		if err != nil {
			log.Warn(ctx, "service status unavailable", "err", err)
		}
		st.RunningTasks, st.DesiredTasks = running, desired
	}

	st.URL = outputs[stackgen.OutputGrafanaURL]
	if st.URL == "" && cluster != "" && service != "" {
		ip, err := d.taskPublicIP(ctx, cluster, service)
		if err != nil {
			log.Warn(ctx, "task address unavailable", "err", err)
		} else if ip != "" {
			st.URL = taskURL(ip, stack.Container.Port)
		}
	}

	if id := outputs[stackgen.OutputDatabaseIdentifier]; id != "" {
		dbStatus, err := d.databaseStatus(ctx, stack.Database.Engine, id)
		if err != nil {
			log.Warn(ctx, "database status unavailable", "err", err)
		}
		st.DatabaseStatus = dbStatus
	}
	return st, nil
}

// StackOutputs returns the outputs of the deployed stack. When the template
// has no URL output, the public address of a running task fills it in.
func (d *driver) StackOutputs(ctx context.Context, stack *model.Stack) (out map[string]string, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "StackOutputs")
	defer func() { cleanup(err) }()

	name, err := d.stackName(stack)
	if err != nil {
		return nil, err
	}
	current, err := d.describeStack(ctx, name)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%s: %w", name, model.ErrStackNotDeployed)
	}
	out = stackOutputs(current)
	cluster, service := out[stackgen.OutputClusterName], out[stackgen.OutputServiceName]
	if out[stackgen.OutputGrafanaURL] == "" && cluster != "" && service != "" {
		ip, err := d.taskPublicIP(ctx, cluster, service)
		if err != nil {
			logging.FromContext(ctx).Warn(ctx, "task address unavailable", "err", err)
		} else if ip != "" {
			out[stackgen.OutputGrafanaURL] = taskURL(ip, stack.Container.Port)
		}
	}
	return out, nil
}

func (d *driver) serviceCounts(ctx context.Context, cluster, service string) (running, desired int, err error) {
	out, err := d.ecs.DescribeServices(ctx, &ecs.DescribeServicesInput{
		Cluster:  aws.String(cluster),
		Services: []string{service},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to describe ECS service %s: %w", service, err)
	}
	if len(out.Services) == 0 {
		return 0, 0, fmt.Errorf("ECS service %s not found", service)
	}
	s := out.Services[0]
	return int(s.RunningCount), int(s.DesiredCount), nil
}

// taskPublicIP returns the public IP of the first running task of the service,
// or "" when no task has one.
func (d *driver) taskPublicIP(ctx context.Context, cluster, service string) (string, error) {
	tasks, err := d.ecs.ListTasks(ctx, &ecs.ListTasksInput{
		Cluster:       aws.String(cluster),
		ServiceName:   aws.String(service),
		DesiredStatus: ecstypes.DesiredStatusRunning,
	})
	if err != nil {
		return "", fmt.Errorf("failed to list tasks of %s: %w", service, err)
	}
	if len(tasks.TaskArns) == 0 {
		return "", nil
	}
	desc, err := d.ecs.DescribeTasks(ctx, &ecs.DescribeTasksInput{
		Cluster: aws.String(cluster),
		Tasks:   tasks.TaskArns,
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe tasks of %s: %w", service, err)
	}
	var enis []string
	for _, t := range desc.Tasks {
		for _, a := range t.Attachments {
			for _, kv := range a.Details {
				if aws.ToString(kv.Name) == "networkInterfaceId" && aws.ToString(kv.Value) != "" {
					enis = append(enis, aws.ToString(kv.Value))
				}
			}
		}
	}
	if len(enis) == 0 {
		return "", nil
	}
	ni, err := d.ec2.DescribeNetworkInterfaces(ctx, &ec2.DescribeNetworkInterfacesInput{NetworkInterfaceIds: enis})
	if err != nil {
		return "", fmt.Errorf("failed to describe task network interfaces: %w", err)
	}
	for _, n := range ni.NetworkInterfaces {
		if n.Association != nil && aws.ToString(n.Association.PublicIp) != "" {
			return aws.ToString(n.Association.PublicIp), nil
		}
	}
	return "", nil
}

func taskURL(ip string, port int) string {
	if port == 0 || port == 80 {
		return "http://" + ip
	}
	return fmt.Sprintf("http://%s:%d", ip, port)
}

// databaseStatus returns the RDS status of the instance or cluster id.
func (d *driver) databaseStatus(ctx context.Context, engine, id string) (string, error) {
	switch engine {
	case model.DatabaseEngineMySQL:
		out, err := d.rds.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{DBInstanceIdentifier: aws.String(id)})
		if err != nil {
			return "", fmt.Errorf("failed to describe DB instance %s: %w", id, err)
		}
		if len(out.DBInstances) == 0 {
			return "", fmt.Errorf("DB instance %s not found", id)
		}
		return aws.ToString(out.DBInstances[0].DBInstanceStatus), nil
	case model.DatabaseEngineAuroraMySQLLess:
		out, err := d.rds.DescribeDBClusters(ctx, &rds.DescribeDBClustersInput{DBClusterIdentifier: aws.String(id)})
		if err != nil {
			return "", fmt.Errorf("failed to describe DB cluster %s: %w", id, err)
		}
		if len(out.DBClusters) == 0 {
			return "", fmt.Errorf("DB cluster %s not found", id)
		}
		return aws.ToString(out.DBClusters[0].Status), nil
	}
	return "", nil
}
