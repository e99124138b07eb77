// Package aws implements the "aws" provider driver. Stacks are synthesized
// into CloudFormation templates and deployed as CloudFormation stacks.
package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	providerdrv "github.com/yaegashi/grafanaops/adapters/drivers/provider"
	"github.com/yaegashi/grafanaops/domain/model"
)

// DriverName is the provider driver identifier.
const DriverName = "aws"

// Provider settings.
const (
	SettingRegion          = "AWS_REGION"
	SettingAuthMethod      = "AWS_AUTH_METHOD"
	SettingProfile         = "AWS_PROFILE"
	SettingAccessKeyID     = "AWS_ACCESS_KEY_ID"
	SettingSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	SettingSessionToken    = "AWS_SESSION_TOKEN"
	SettingTemplateBucket  = "AWS_TEMPLATE_BUCKET"
	SettingResourcePrefix  = "AWS_RESOURCE_PREFIX"
)

// Stack settings.
const (
	SettingExecutionRoleName = "EXECUTION_ROLE_NAME"
	SettingTaskRoleName      = "TASK_ROLE_NAME"
)

const defaultResourcePrefix = "grafanaops"

// clients groups the AWS API clients the driver talks to.
type clients struct {
	cfn     cfnAPI
	ec2     ec2API
	ecr     ecrAPI
	ecs     ecsAPI
	iam     iamAPI
	rds     rdsAPI
	s3      s3API
	secrets secretsAPI
	sts     stsAPI
}

// driver implements the AWS provider driver.
type driver struct {
	serviceName    string
	providerName   string
	region         string
	templateBucket string
	resourcePrefix string
	waitMinDelay   time.Duration // 0 keeps the SDK waiter defaults
	clients
}

// ID returns the provider identifier.
func (d *driver) ID() string { return DriverName }

// init registers the AWS driver.
func init() {
	providerdrv.Register(DriverName, func(service *model.Service, provider *model.Provider) (providerdrv.Driver, error) {
		cfg, err := loadConfig(context.Background(), provider.Settings)
		if err != nil {
			return nil, err
		}
		return newDriver(service, provider, cfg.Region, newClients(cfg)), nil
	})
}

func newDriver(service *model.Service, provider *model.Provider, region string, c clients) *driver {
	get := func(k string) string { return strings.TrimSpace(provider.Settings[k]) }
	prefix := get(SettingResourcePrefix)
	if prefix == "" {
		prefix = defaultResourcePrefix
	}
	serviceName := ""
	if service != nil {
		serviceName = service.Name
	}
	return &driver{
		serviceName:    serviceName,
		providerName:   provider.Name,
		region:         region,
		templateBucket: get(SettingTemplateBucket),
		resourcePrefix: prefix,
		clients:        c,
	}
}

// loadConfig builds an aws.Config from provider settings.
func loadConfig(ctx context.Context, settings map[string]string) (aws.Config, error) {
	get := func(k string) string {
		if settings == nil {
			return ""
		}
		return strings.TrimSpace(settings[k])
	}

	region := get(SettingRegion)
	if region == "" {
		return aws.Config{}, fmt.Errorf("missing required AWS settings: %s", SettingRegion)
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}

	switch method := get(SettingAuthMethod); method {
	case "", "default":
	case "profile":
		profile := get(SettingProfile)
		if profile == "" {
			return aws.Config{}, fmt.Errorf("profile auth requires %s", SettingProfile)
		}
		opts = append(opts, config.WithSharedConfigProfile(profile))
	case "static":
		id, secret := get(SettingAccessKeyID), get(SettingSecretAccessKey)
		if id == "" || secret == "" {
			return aws.Config{}, fmt.Errorf("static auth requires %s and %s", SettingAccessKeyID, SettingSecretAccessKey)
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(id, secret, get(SettingSessionToken)),
		))
	default:
		return aws.Config{}, fmt.Errorf("unsupported %s: %s", SettingAuthMethod, method)
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return cfg, nil
}

func newClients(cfg aws.Config) clients {
	return clients{
		cfn:     cloudformation.NewFromConfig(cfg),
		ec2:     ec2.NewFromConfig(cfg),
		ecr:     ecr.NewFromConfig(cfg),
		ecs:     ecs.NewFromConfig(cfg),
		iam:     iam.NewFromConfig(cfg),
		rds:     rds.NewFromConfig(cfg),
		s3:      s3.NewFromConfig(cfg),
		secrets: secretsmanager.NewFromConfig(cfg),
		sts:     sts.NewFromConfig(cfg),
	}
}
