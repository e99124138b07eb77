package cfn

import "github.com/awslabs/goformation/v7/cloudformation"

// Pseudo parameters.
const (
	AccountID = "AWS::AccountId"
	NoValue   = "AWS::NoValue"
	Partition = "AWS::Partition"
	Region    = "AWS::Region"
	StackID   = "AWS::StackId"
	StackName = "AWS::StackName"
	URLSuffix = "AWS::URLSuffix"
)

var pseudoParameters = map[string]bool{
	AccountID: true, NoValue: true, Partition: true, Region: true,
	StackID: true, StackName: true, URLSuffix: true,
	"AWS::NotificationARNs": true,
}

// The functions below return goformation's encoded form. They can be nested
// in each other and in property maps, and expand when the template renders.

// Ref references a resource or pseudo parameter.
func Ref(name string) string {
	return cloudformation.Ref(name)
}

// GetAtt reads an attribute of a resource.
func GetAtt(resource, attribute string) string {
	return cloudformation.GetAtt(resource, attribute)
}

// Sub substitutes ${Name} and ${Name.Attr} references in s.
func Sub(s string) string {
	return cloudformation.Sub(s)
}

// Join concatenates parts with sep.
func Join(sep string, parts ...string) string {
	return cloudformation.Join(sep, parts)
}

// Tag is a CloudFormation resource tag.
type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// DynamicSecret returns a Secrets Manager dynamic reference for a JSON key of
// the secret identified by the logical ID secretRef.
func DynamicSecret(secretRef, jsonKey string) string {
	return Join("", "{{resolve:secretsmanager:", Ref(secretRef), ":SecretString:"+jsonKey+"}}")
}
