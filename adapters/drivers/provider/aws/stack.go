package aws

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/cfn"
	"github.com/yaegashi/grafanaops/internal/logging"
	"github.com/yaegashi/grafanaops/internal/stackgen"
)

// stackWaitTimeout bounds every create, update and delete wait.
const stackWaitTimeout = 60 * time.Minute

// Deploy operations reported in model.StackDeployResult.
const (
	opCreate = "create"
	opUpdate = "update"
	opNone   = "none"
	opDryRun = "dry-run"
)

var capabilities = []cfntypes.Capability{
	cfntypes.CapabilityCapabilityIam,
	cfntypes.CapabilityCapabilityNamedIam,
}

// synth resolves the environment and builds the template.
func (d *driver) synth(ctx context.Context, stack *model.Stack) (*cfn.Template, error) {
	env, err := d.environment(ctx, stack)
	if err != nil {
		return nil, err
	}
	return stackgen.Synthesize(stack, env)
}

// StackSynth renders the CloudFormation template for the stack.
func (d *driver) StackSynth(ctx context.Context, stack *model.Stack) (body []byte, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "StackSynth")
	defer func() { cleanup(err) }()
	t, err := d.synth(ctx, stack)
	if err != nil {
		return nil, err
	}
	return t.JSON()
}

// StackDeploy creates or updates the CloudFormation stack and waits for it.
func (d *driver) StackDeploy(ctx context.Context, stack *model.Stack, opts model.StackDeployOptions) (res *model.StackDeployResult, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "StackDeploy")
	defer func() { cleanup(err) }()
	log := logging.FromContext(ctx)

	name, err := d.stackName(stack)
	if err != nil {
		return nil, err
	}
	t, err := d.synth(ctx, stack)
	if err != nil {
		return nil, err
	}
	body, err := t.Compact()
	if err != nil {
		return nil, err
	}
	res = &model.StackDeployResult{StackName: name}

	current, err := d.describeStack(ctx, name)
	if err != nil {
		return nil, err
	}
	if current != nil {
		res.StackID = aws.ToString(current.StackId)
		status := current.StackStatus
		switch {
		case strings.HasSuffix(string(status), "_IN_PROGRESS"):
			return nil, fmt.Errorf("stack %s is busy (%s)", name, status)
		case status == cfntypes.StackStatusRollbackComplete,
			opts.RecreateFailed && (status == cfntypes.StackStatusRollbackFailed || status == cfntypes.StackStatusDeleteFailed):
			if opts.DryRun {
				log.Info(ctx, "failed stack would be deleted before create", "stack", name, "status", string(status))
				break
			}
			log.Info(ctx, "deleting failed stack before create", "stack", name, "status", string(status))
			if err := d.deleteAndWait(ctx, name); err != nil {
				return nil, err
			}
			current = nil
			res.StackID = ""
		case status == cfntypes.StackStatusRollbackFailed, status == cfntypes.StackStatusDeleteFailed:
			return nil, fmt.Errorf("stack %s is in %s; delete it or deploy with recreate", name, status)
		}
	}
	if opts.DryRun {
		res.Operation = opDryRun
		return res, nil
	}

	tmpl, err := d.templateSource(ctx, name, body)
	if err != nil {
		return nil, err
	}

	if current == nil {
		res.Operation = opCreate
		out, err := d.cfn.CreateStack(ctx, &cloudformation.CreateStackInput{
			StackName:          aws.String(name),
			TemplateBody:       tmpl.body,
			TemplateURL:        tmpl.url,
			Capabilities:       capabilities,
			Tags:               d.stackTags(stack),
			ClientRequestToken: aws.String(uuid.NewString()),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stack %s: %w", name, err)
		}
		res.StackID = aws.ToString(out.StackId)
		log.Info(ctx, "waiting for stack create", "stack", name)
		w := cloudformation.NewStackCreateCompleteWaiter(d.cfn, d.createWaitOptions)
		if err := w.Wait(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String(name)}, stackWaitTimeout); err != nil {
			return nil, d.waitError(ctx, name, "create", err)
		}
	} else {
		res.Operation = opUpdate
		_, err := d.cfn.UpdateStack(ctx, &cloudformation.UpdateStackInput{
			StackName:          aws.String(name),
			TemplateBody:       tmpl.body,
			TemplateURL:        tmpl.url,
			Capabilities:       capabilities,
			Tags:               d.stackTags(stack),
			ClientRequestToken: aws.String(uuid.NewString()),
		})
		switch {
		case isNoUpdates(err):
			res.Operation = opNone
		case err != nil:
			return nil, fmt.Errorf("failed to update stack %s: %w", name, err)
		default:
			log.Info(ctx, "waiting for stack update", "stack", name)
			w := cloudformation.NewStackUpdateCompleteWaiter(d.cfn, d.updateWaitOptions)
			if err := w.Wait(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String(name)}, stackWaitTimeout); err != nil {
				return nil, d.waitError(ctx, name, "update", err)
			}
		}
	}

	deployed, err := d.describeStack(ctx, name)
	if err != nil {
		return nil, err
	}
	if deployed == nil {
		return nil, fmt.Errorf("stack %s vanished after deploy", name)
	}
	res.Outputs = stackOutputs(deployed)

	if stack.Bucket.Enabled && stack.Bucket.Dashboards != "" && !opts.SkipDashboards {
		n, err := d.uploadDashboards(ctx, stack, res.Outputs)
		if err != nil {
			return res, err
		}
		res.Dashboards = n
	}
	return res, nil
}

// StackDestroy deletes the CloudFormation stack. A bucket with the destroy
// removal policy is emptied first so CloudFormation can delete it.
func (d *driver) StackDestroy(ctx context.Context, stack *model.Stack, opts model.StackDestroyOptions) (err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "StackDestroy")
	defer func() { cleanup(err) }()

	name, err := d.stackName(stack)
	if err != nil {
		return err
	}
	current, err := d.describeStack(ctx, name)
	if err != nil {
		return err
	}
	if current == nil {
		logging.FromContext(ctx).Info(ctx, "stack not deployed", "stack", name)
		return nil
	}
	if stack.Bucket.Enabled && stack.Bucket.RemovalPolicy == model.RemovalPolicyDestroy {
		if bucket := stackOutputs(current)[stackgen.OutputBucketName]; bucket != "" {
			if err := d.emptyBucket(ctx, bucket); err != nil {
				return err
			}
		}
	}
	if opts.NoWait {
		return d.deleteStack(ctx, name)
	}
	return d.deleteAndWait(ctx, name)
}

func (d *driver) deleteStack(ctx context.Context, name string) error {
	_, err := d.cfn.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName:          aws.String(name),
		ClientRequestToken: aws.String(uuid.NewString()),
	})
	if err != nil && !isStackMissing(err) {
		return fmt.Errorf("failed to delete stack %s: %w", name, err)
	}
	return nil
}

func (d *driver) deleteAndWait(ctx context.Context, name string) error {
	if err := d.deleteStack(ctx, name); err != nil {
		return err
	}
	logging.FromContext(ctx).Info(ctx, "waiting for stack delete", "stack", name)
	w := cloudformation.NewStackDeleteCompleteWaiter(d.cfn, d.deleteWaitOptions)
	if err := w.Wait(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String(name)}, stackWaitTimeout); err != nil {
		return d.waitError(ctx, name, "delete", err)
	}
	return nil
}

// describeStack returns the stack or nil when it does not exist.
// DELETE_COMPLETE stacks count as missing.
func (d *driver) describeStack(ctx context.Context, name string) (*cfntypes.Stack, error) {
	out, err := d.cfn.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String(name)})
	if err != nil {
		if isStackMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to describe stack %s: %w", name, err)
	}
	for i := range out.Stacks {
		s := &out.Stacks[i]
		if s.StackStatus != cfntypes.StackStatusDeleteComplete {
			return s, nil
		}
	}
	return nil, nil
}

// waitError decorates a waiter failure with the stack status reason.
func (d *driver) waitError(ctx context.Context, name, op string, err error) error {
	s, derr := d.describeStack(ctx, name)
	if derr == nil && s != nil {
		return fmt.Errorf("stack %s %s did not complete: %s %s: %w", name, op, s.StackStatus, aws.ToString(s.StackStatusReason), err)
	}
	return fmt.Errorf("stack %s %s did not complete: %w", name, op, err)
}

func (d *driver) createWaitOptions(o *cloudformation.StackCreateCompleteWaiterOptions) {
	if d.waitMinDelay > 0 {
		o.MinDelay, o.MaxDelay = d.waitMinDelay, d.waitMinDelay
	}
}

func (d *driver) updateWaitOptions(o *cloudformation.StackUpdateCompleteWaiterOptions) {
	if d.waitMinDelay > 0 {
		o.MinDelay, o.MaxDelay = d.waitMinDelay, d.waitMinDelay
	}
}

func (d *driver) deleteWaitOptions(o *cloudformation.StackDeleteCompleteWaiterOptions) {
	if d.waitMinDelay > 0 {
		o.MinDelay, o.MaxDelay = d.waitMinDelay, d.waitMinDelay
	}
}

// templateSource is either an inline body or an S3 URL.
type templateSource struct {
	body *string
	url  *string
}

// templateSource returns the template inline, or uploads it to the template
// bucket when it exceeds the inline limit.
func (d *driver) templateSource(ctx context.Context, name string, body []byte) (templateSource, error) {
	if len(body) <= cfn.MaxTemplateBodySize {
		return templateSource{body: aws.String(string(body))}, nil
	}
	if d.templateBucket == "" {
		return templateSource{}, fmt.Errorf("template is %d bytes, over the %d byte inline limit; set %s", len(body), cfn.MaxTemplateBodySize, SettingTemplateBucket)
	}
	key := fmt.Sprintf("%s/%s.json", name, uuid.NewString())
	_, err := d.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.templateBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return templateSource{}, fmt.Errorf("failed to upload template to s3://%s/%s: %w", d.templateBucket, key, err)
	}
	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", d.templateBucket, d.region, key)
	return templateSource{url: aws.String(url)}, nil
}

func stackOutputs(s *cfntypes.Stack) map[string]string {
	out := make(map[string]string, len(s.Outputs))
	for _, o := range s.Outputs {
		out[aws.ToString(o.OutputKey)] = aws.ToString(o.OutputValue)
	}
	return out
}
