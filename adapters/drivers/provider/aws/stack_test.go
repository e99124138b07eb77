package aws

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/google/go-cmp/cmp"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/cfn"
	"github.com/yaegashi/grafanaops/internal/stackgen"
)

func TestStackSynth(t *testing.T) {
	d := newTestDriver(newFakes())
	body, err := d.StackSynth(context.Background(), presetStack(t, "mysql"))
	if err != nil {
		t.Fatalf("StackSynth() error = %v", err)
	}
	for _, want := range []string{`"AWSTemplateFormatVersion"`, `"AWS::RDS::DBInstance"`, `"us-east-1a"`} {
		if !bytes.Contains(body, []byte(want)) {
			t.Errorf("template missing %s", want)
		}
	}
}

func TestStackDeploy(t *testing.T) {
	outputs := map[string]string{stackgen.OutputGrafanaURL: "http://lb.example"}
	tests := []struct {
		name      string
		existing  cfntypes.StackStatus // "" for none
		noUpdates bool
		final     cfntypes.StackStatus
		opts      model.StackDeployOptions
		wantOp    string
		wantCalls []string
		wantErr   string
	}{
		{name: "create", wantOp: opCreate, wantCalls: []string{"CreateStack"}},
		{name: "update", existing: cfntypes.StackStatusCreateComplete, wantOp: opUpdate, wantCalls: []string{"UpdateStack"}},
		{name: "no updates", existing: cfntypes.StackStatusUpdateComplete, noUpdates: true, wantOp: opNone, wantCalls: []string{"UpdateStack"}},
		{name: "rollback complete is recreated", existing: cfntypes.StackStatusRollbackComplete, wantOp: opCreate, wantCalls: []string{"DeleteStack", "CreateStack"}},
		{name: "rollback failed needs recreate", existing: cfntypes.StackStatusRollbackFailed, wantErr: "recreate"},
		{name: "rollback failed recreated", existing: cfntypes.StackStatusRollbackFailed, opts: model.StackDeployOptions{RecreateFailed: true}, wantOp: opCreate, wantCalls: []string{"DeleteStack", "CreateStack"}},
		{name: "busy", existing: cfntypes.StackStatusUpdateInProgress, wantErr: "busy"},
		{name: "create rolls back", final: cfntypes.StackStatusRollbackComplete, wantErr: "did not complete"},
		{name: "dry run", opts: model.StackDeployOptions{DryRun: true}, wantOp: opDryRun},
		{name: "dry run existing", existing: cfntypes.StackStatusCreateComplete, opts: model.StackDeployOptions{DryRun: true}, wantOp: opDryRun},
		{name: "dry run busy", existing: cfntypes.StackStatusUpdateInProgress, opts: model.StackDeployOptions{DryRun: true}, wantErr: "busy"},
		{name: "dry run rollback failed", existing: cfntypes.StackStatusRollbackFailed, opts: model.StackDeployOptions{DryRun: true}, wantErr: "recreate"},
		{name: "dry run keeps failed stack", existing: cfntypes.StackStatusRollbackFailed, opts: model.StackDeployOptions{DryRun: true, RecreateFailed: true}, wantOp: opDryRun},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakes()
			f.cfn.outputs = outputs
			f.cfn.noUpdates = tt.noUpdates
			f.cfn.finalStatus = tt.final
			d := newTestDriver(f)
			stack := presetStack(t, "basic")
			name, _ := d.stackName(stack)
			if tt.existing != "" {
				f.cfn.put(name, tt.existing, outputs)
			}

			res, err := d.StackDeploy(context.Background(), stack, tt.opts)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("StackDeploy() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("StackDeploy() error = %v", err)
			}
			if res.Operation != tt.wantOp || res.StackName != name {
				t.Errorf("result = %+v", res)
			}
			if diff := cmp.Diff(tt.wantCalls, f.cfn.calls); diff != "" {
				t.Errorf("calls (-want +got):\n%s", diff)
			}
			if tt.wantOp == opDryRun && tt.existing != "" {
				if res.StackID == "" {
					t.Error("dry run of an existing stack should report its StackID")
				}
				if got := f.cfn.stacks[name].StackStatus; got != tt.existing {
					t.Errorf("stack status = %s, want untouched %s", got, tt.existing)
				}
			}
			if tt.wantOp != opDryRun {
				if diff := cmp.Diff(outputs, res.Outputs); diff != "" {
					t.Errorf("outputs (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestStackDeployCreateInput(t *testing.T) {
	f := newFakes()
	d := newTestDriver(f)
	if _, err := d.StackDeploy(context.Background(), presetStack(t, "basic"), model.StackDeployOptions{}); err != nil {
		t.Fatal(err)
	}
	in := f.cfn.lastCreate
	if in == nil {
		t.Fatal("CreateStack not called")
	}
	if !slices.Contains(in.Capabilities, cfntypes.CapabilityCapabilityNamedIam) || !slices.Contains(in.Capabilities, cfntypes.CapabilityCapabilityIam) {
		t.Errorf("capabilities = %v", in.Capabilities)
	}
	if aws.ToString(in.ClientRequestToken) == "" {
		t.Error("missing client request token")
	}
	if aws.ToString(in.TemplateBody) == "" || in.TemplateURL != nil {
		t.Error("want inline template body")
	}
	tags := map[string]string{}
	for _, tag := range in.Tags {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	if diff := cmp.Diff(map[string]string{tagManagedBy: "grafanaops", tagStack: "ops/aws/grafana"}, tags); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}
}

func TestStackDeployDashboards(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "home.json"), []byte(`{"title":"Home"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	f := newFakes()
	f.cfn.outputs = map[string]string{stackgen.OutputBucketName: "dash-bucket"}
	d := newTestDriver(f)
	stack := presetStack(t, "sqlite-bucket")
	stack.Bucket.Dashboards = dir

	res, err := d.StackDeploy(context.Background(), stack, model.StackDeployOptions{})
	if err != nil {
		t.Fatalf("StackDeploy() error = %v", err)
	}
	if res.Dashboards != 1 {
		t.Errorf("dashboards = %d", res.Dashboards)
	}
	if diff := cmp.Diff([]string{"dashboards/home.json"}, f.s3.keys("dash-bucket")); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}

	f2 := newFakes()
	f2.cfn.outputs = f.cfn.outputs
	res, err = newTestDriver(f2).StackDeploy(context.Background(), stack, model.StackDeployOptions{SkipDashboards: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Dashboards != 0 || len(f2.s3.keys("dash-bucket")) != 0 {
		t.Error("dashboards uploaded despite SkipDashboards")
	}
}

func TestTemplateSource(t *testing.T) {
	f := newFakes()
	d := newTestDriver(f)
	small := []byte(`{}`)
	large := bytes.Repeat([]byte("x"), cfn.MaxTemplateBodySize+1)

	src, err := d.templateSource(context.Background(), "s", small)
	if err != nil || src.body == nil || src.url != nil {
		t.Fatalf("small template = %+v, %v", src, err)
	}
	if _, err := d.templateSource(context.Background(), "s", large); err == nil || !strings.Contains(err.Error(), SettingTemplateBucket) {
		t.Fatalf("large template without bucket: %v", err)
	}
	d.templateBucket = "templates"
	src, err = d.templateSource(context.Background(), "s", large)
	if err != nil {
		t.Fatal(err)
	}
	if src.body != nil || !strings.HasPrefix(aws.ToString(src.url), "https://templates.s3.us-east-1.amazonaws.com/s/") {
		t.Errorf("large template = %+v", src)
	}
	if keys := f.s3.keys("templates"); len(keys) != 1 {
		t.Errorf("uploaded keys = %v", keys)
	}
}

func TestStackDestroy(t *testing.T) {
	t.Run("missing stack", func(t *testing.T) {
		f := newFakes()
		if err := newTestDriver(f).StackDestroy(context.Background(), presetStack(t, "basic"), model.StackDestroyOptions{}); err != nil {
			t.Fatalf("StackDestroy() error = %v", err)
		}
		if len(f.cfn.calls) != 0 {
			t.Errorf("calls = %v", f.cfn.calls)
		}
	})

	t.Run("empties destroyable bucket", func(t *testing.T) {
		f := newFakes()
		d := newTestDriver(f)
		stack := presetStack(t, "sqlite-bucket")
		stack.Bucket.RemovalPolicy = model.RemovalPolicyDestroy
		name, _ := d.stackName(stack)
		f.cfn.put(name, cfntypes.StackStatusCreateComplete, map[string]string{stackgen.OutputBucketName: "b"})
		for _, k := range []string{"a.json", "b.json", "c.json", "d.json", "e.json"} {
			if f.s3.objects["b"] == nil {
				f.s3.objects["b"] = map[string][]byte{}
			}
			f.s3.objects["b"][k] = []byte("{}")
		}
		if err := d.StackDestroy(context.Background(), stack, model.StackDestroyOptions{}); err != nil {
			t.Fatalf("StackDestroy() error = %v", err)
		}
		if keys := f.s3.keys("b"); len(keys) != 0 {
			t.Errorf("bucket not emptied: %v", keys)
		}
		if _, ok := f.cfn.stacks[name]; ok {
			t.Error("stack still present")
		}
	})

	t.Run("retained bucket untouched", func(t *testing.T) {
		f := newFakes()
		d := newTestDriver(f)
		stack := presetStack(t, "sqlite-bucket")
		stack.Bucket.RemovalPolicy = model.RemovalPolicyRetain
		name, _ := d.stackName(stack)
		f.cfn.put(name, cfntypes.StackStatusCreateComplete, map[string]string{stackgen.OutputBucketName: "b"})
		f.s3.objects["b"] = map[string][]byte{"keep.json": []byte("{}")}
		if err := d.StackDestroy(context.Background(), stack, model.StackDestroyOptions{NoWait: true}); err != nil {
			t.Fatal(err)
		}
		if keys := f.s3.keys("b"); len(keys) != 1 {
			t.Errorf("keys = %v", keys)
		}
		if diff := cmp.Diff([]string{"DeleteStack"}, f.cfn.calls); diff != "" {
			t.Errorf("calls (-want +got):\n%s", diff)
		}
	})
}

func TestEmptyBucketMissing(t *testing.T) {
	d := newTestDriver(newFakes())
	if err := d.emptyBucket(context.Background(), "gone"); err != nil {
		t.Fatalf("emptyBucket() error = %v", err)
	}
}

func TestErrorClassification(t *testing.T) {
	missing := apiError("ValidationError", "Stack with id x does not exist")
	noop := apiError("ValidationError", "No updates are to be performed.")
	other := errors.New("boom")
	if !isStackMissing(missing) || isStackMissing(noop) || isStackMissing(other) {
		t.Error("isStackMissing misclassified")
	}
	if !isNoUpdates(noop) || isNoUpdates(missing) || isNoUpdates(other) {
		t.Error("isNoUpdates misclassified")
	}
	if errorCode(missing) != "ValidationError" || errorCode(other) != "" {
		t.Error("errorCode misclassified")
	}
}
