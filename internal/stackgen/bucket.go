package stackgen

import (
	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/cfn"
)

// bucket declares the private, encrypted dashboard bucket. Read access for
// the task role is granted in iam.
func (b *builder) bucket() {
	if !b.s.Bucket.Enabled {
		return
	}
	policy := cfn.PolicyRetain
	if b.s.Bucket.RemovalPolicy == model.RemovalPolicyDestroy {
		policy = cfn.PolicyDelete
	}
	r := b.add(IDBucket, "AWS::S3::Bucket", map[string]any{
		"PublicAccessBlockConfiguration": map[string]any{
			"BlockPublicAcls":       true,
			"BlockPublicPolicy":     true,
			"IgnorePublicAcls":      true,
			"RestrictPublicBuckets": true,
		},
		"BucketEncryption": map[string]any{
			"ServerSideEncryptionConfiguration": []any{map[string]any{
				"ServerSideEncryptionByDefault": map[string]any{"SSEAlgorithm": "AES256"},
			}},
		},
		"OwnershipControls": map[string]any{
			"Rules": []any{map[string]any{"ObjectOwnership": "BucketOwnerEnforced"}},
		},
	})
	r.DeletionPolicy, r.UpdateReplacePolicy = policy, policy

	b.add(IDBucketPolicy, "AWS::S3::BucketPolicy", map[string]any{
		"Bucket": cfn.Ref(IDBucket),
		"PolicyDocument": map[string]any{
			"Version": policyVersion,
			"Statement": []any{map[string]any{
				"Sid":       "DenyInsecureTransport",
				"Effect":    "Deny",
				"Principal": "*",
				"Action":    "s3:*",
				"Resource": []any{
					cfn.GetAtt(IDBucket, "Arn"),
					cfn.Sub("${" + IDBucket + ".Arn}/*"),
				},
				"Condition": map[string]any{"Bool": map[string]any{"aws:SecureTransport": "false"}},
			}},
		},
	})
}
