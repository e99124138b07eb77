package aws

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/logging"
	"github.com/yaegashi/grafanaops/internal/stackgen"
)

// StackUploadDashboards uploads the dashboards directory to the stack bucket.
func (d *driver) StackUploadDashboards(ctx context.Context, stack *model.Stack) (n int, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "StackUploadDashboards")
	defer func() { cleanup(err) }()

	if !stack.Bucket.Enabled {
		return 0, fmt.Errorf("stack %s has no bucket", stack.Name)
	}
	if stack.Bucket.Dashboards == "" {
		return 0, fmt.Errorf("stack %s has no dashboards directory", stack.Name)
	}
	name, err := d.stackName(stack)
	if err != nil {
		return 0, err
	}
	current, err := d.describeStack(ctx, name)
	if err != nil {
		return 0, err
	}
	if current == nil {
		return 0, fmt.Errorf("%s: %w", name, model.ErrStackNotDeployed)
	}
	return d.uploadDashboards(ctx, stack, stackOutputs(current))
}

// dashboardFile is a local dashboard and its object key.
type dashboardFile struct {
	path string
	key  string
}

// dashboardFiles lists *.json files under dir, keyed by prefix + relative path.
func dashboardFiles(dir, prefix string) ([]dashboardFile, error) {
	var files []dashboardFile
	err := filepath.WalkDir(dir, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() || !strings.EqualFold(filepath.Ext(p), ".json") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, dashboardFile{path: p, key: path.Join(prefix, filepath.ToSlash(rel))})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan dashboards %s: %w", dir, err)
	}
	return files, nil
}

func (d *driver) uploadDashboards(ctx context.Context, stack *model.Stack, outputs map[string]string) (int, error) {
	bucket := outputs[stackgen.OutputBucketName]
	if bucket == "" {
		return 0, fmt.Errorf("stack %s has no %s output", stack.Name, stackgen.OutputBucketName)
	}
	files, err := dashboardFiles(stack.Bucket.Dashboards, stack.Bucket.Prefix)
	if err != nil {
		return 0, err
	}
	log := logging.FromContext(ctx)
	for i, f := range files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			return i, fmt.Errorf("failed to read dashboard: %w", err)
		}
		if !json.Valid(data) {
			return i, fmt.Errorf("dashboard %s is not valid JSON", f.path)
		}
		_, err = d.s3.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(f.key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return i, fmt.Errorf("failed to upload s3://%s/%s: %w", bucket, f.key, err)
		}
		log.Info(ctx, "uploaded dashboard", "bucket", bucket, "key", f.key)
	}
	return len(files), nil
}

// emptyBucket deletes every object in bucket. A missing bucket is ignored.
func (d *driver) emptyBucket(ctx context.Context, bucket string) error {
	p := s3.NewListObjectsV2Paginator(d.s3, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)})
	deleted := 0
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			if errorCode(err) == "NoSuchBucket" {
				return nil
			}
			return fmt.Errorf("failed to list s3://%s: %w", bucket, err)
		}
		if len(page.Contents) == 0 {
			continue
		}
		ids := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, o := range page.Contents {
			ids = append(ids, s3types.ObjectIdentifier{Key: o.Key})
		}
		out, err := d.s3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &s3types.Delete{Objects: ids},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects in s3://%s: %w", bucket, err)
		}
		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return fmt.Errorf("failed to delete s3://%s/%s: %s", bucket, aws.ToString(e.Key), aws.ToString(e.Message))
		}
		deleted += len(ids)
	}
	logging.FromContext(ctx).Info(ctx, "emptied bucket", "bucket", bucket, "objects", deleted)
	return nil
}
