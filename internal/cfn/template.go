// Package cfn builds AWS CloudFormation templates on goformation.
//
// Resources keep untyped property maps so any resource type can be declared
// with one builder idiom. Rendering goes through goformation, which expands
// its encoded intrinsic functions. Validation walks the rendered document.
package cfn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/awslabs/goformation/v7/cloudformation"
)

// MaxTemplateBodySize is the CloudFormation limit for inline template bodies.
// Larger templates must be uploaded to S3 and passed by URL.
const MaxTemplateBodySize = 51200

// Deletion / update-replace policies.
const (
	PolicyDelete   = "Delete"
	PolicyRetain   = "Retain"
	PolicySnapshot = "Snapshot"
)

// Template is a CloudFormation template under construction.
type Template struct {
	Description string
	Resources   map[string]*Resource
	Outputs     map[string]*Output
}

// Resource is a single resource declaration. It satisfies
// cloudformation.Resource so it can be placed in a goformation template.
type Resource struct {
	Type                string         `json:"Type"`
	Properties          map[string]any `json:"Properties,omitempty"`
	DependsOn           []string       `json:"DependsOn,omitempty"`
	DeletionPolicy      string         `json:"DeletionPolicy,omitempty"`
	UpdateReplacePolicy string         `json:"UpdateReplacePolicy,omitempty"`
}

// AWSCloudFormationType returns the resource type.
func (r *Resource) AWSCloudFormationType() string { return r.Type }

// Output is a template output.
type Output struct {
	Description string
	Value       any
}

// NewTemplate returns an empty template.
func NewTemplate(description string) *Template {
	return &Template{
		Description: description,
		Resources:   map[string]*Resource{},
		Outputs:     map[string]*Output{},
	}
}

// AddResource declares a resource under logicalID. Declaring the same logical
// ID twice is an error.
func (t *Template) AddResource(logicalID, typ string, props map[string]any) (*Resource, error) {
	if logicalID == "" {
		return nil, fmt.Errorf("resource %s: empty logical ID", typ)
	}
	if _, exists := t.Resources[logicalID]; exists {
		return nil, fmt.Errorf("duplicate resource logical ID %q", logicalID)
	}
	r := &Resource{Type: typ, Properties: props}
	t.Resources[logicalID] = r
	return r, nil
}

// AddOutput declares an output.
func (t *Template) AddOutput(key, description string, value any) {
	t.Outputs[key] = &Output{Description: description, Value: value}
}

// ResourcesOfType returns the logical IDs of all resources of typ, sorted.
func (t *Template) ResourcesOfType(typ string) []string {
	var ids []string
	for id, r := range t.Resources {
		if r.Type == typ {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// document converts the template into its goformation form.
func (t *Template) document() *cloudformation.Template {
	doc := cloudformation.NewTemplate()
	doc.Description = t.Description
	for id, r := range t.Resources {
		doc.Resources[id] = r
	}
	for key, o := range t.Outputs {
		doc.Outputs[key] = cloudformation.Output{Value: o.Value, Description: cloudformation.String(o.Description)}
	}
	return doc
}

// JSON renders the indented template. Map keys are emitted in sorted order,
// so the output is stable for identical inputs.
func (t *Template) JSON() ([]byte, error) {
	b, err := t.document().JSON()
	if err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	return b, nil
}

// Compact renders the template without insignificant whitespace. The driver
// sends this form to CloudFormation.
func (t *Template) Compact() ([]byte, error) {
	b, err := t.JSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return nil, fmt.Errorf("compact template: %w", err)
	}
	return buf.Bytes(), nil
}
