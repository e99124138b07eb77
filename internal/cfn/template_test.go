package cfn

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddResourceDuplicate(t *testing.T) {
	tpl := NewTemplate("test")
	if _, err := tpl.AddResource("Vpc", "AWS::EC2::VPC", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := tpl.AddResource("Vpc", "AWS::EC2::VPC", nil); err == nil {
		t.Fatal("expected duplicate logical ID error")
	}
	if _, err := tpl.AddResource("", "AWS::EC2::VPC", nil); err == nil {
		t.Fatal("expected empty logical ID error")
	}
}

func TestIntrinsicsRendered(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"ref", Ref("Vpc"), `{"Ref":"Vpc"}`},
		{"getatt", GetAtt("Lb", "DNSName"), `{"Fn::GetAtt":["Lb","DNSName"]}`},
		{"sub", Sub("http://${Lb.DNSName}"), `{"Fn::Sub":"http://${Lb.DNSName}"}`},
		{"join", Join(",", "a", Ref("Vpc")), `{"Fn::Join":[",",["a",{"Ref":"Vpc"}]]}`},
		{"nested in list", []any{Ref("Vpc")}, `[{"Ref":"Vpc"}]`},
		{"tag", Tag{Key: "Name", Value: Sub("${AWS::StackName}-x")}, `{"Key":"Name","Value":{"Fn::Sub":"${AWS::StackName}-x"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := NewTemplate(tt.name)
			tpl.AddResource("Vpc", "AWS::EC2::VPC", nil)
			tpl.AddResource("Lb", "AWS::ElasticLoadBalancingV2::LoadBalancer", map[string]any{"Value": tt.v})
			doc, err := tpl.generic()
			if err != nil {
				t.Fatal(err)
			}
			got := doc["Resources"].(map[string]any)["Lb"].(map[string]any)["Properties"].(map[string]any)["Value"]
			b, err := json.Marshal(got)
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != tt.want {
				t.Errorf("got %s, want %s", b, tt.want)
			}
		})
	}
}

func TestJSONStable(t *testing.T) {
	build := func() *Template {
		tpl := NewTemplate("stable")
		tpl.AddResource("B", "AWS::S3::Bucket", map[string]any{"Z": 1, "A": 2})
		tpl.AddResource("A", "AWS::S3::Bucket", nil)
		tpl.AddOutput("Name", "bucket", Ref("B"))
		return tpl
	}
	a, err := build().JSON()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := build().JSON()
	if diff := cmp.Diff(string(a), string(b)); diff != "" {
		t.Fatalf("template JSON not stable (-a +b):\n%s", diff)
	}
	if strings.Index(string(a), `"A"`) > strings.Index(string(a), `"B"`) {
		t.Errorf("resources not emitted in sorted order:\n%s", a)
	}
	for _, want := range []string{`"AWSTemplateFormatVersion"`, `"2010-09-09"`, `"Description"`, `"stable"`} {
		if !strings.Contains(string(a), want) {
			t.Errorf("template missing %s:\n%s", want, a)
		}
	}

	c, err := build().Compact()
	if err != nil {
		t.Fatal(err)
	}
	if len(c) >= len(a) || bytes.Contains(c, []byte("\n")) {
		t.Errorf("compact output (%d) should be a single line smaller than indented (%d)", len(c), len(a))
	}
	var ca, cc any
	if err := json.Unmarshal(a, &ca); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(c, &cc); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(ca, cc); diff != "" {
		t.Errorf("compact and indented documents differ (-indented +compact):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		build   func(*Template)
		wantErr string
	}{
		{
			name: "valid graph",
			build: func(tpl *Template) {
				tpl.AddResource("Vpc", "AWS::EC2::VPC", map[string]any{"CidrBlock": "10.0.0.0/16"})
				tpl.AddResource("Subnet", "AWS::EC2::Subnet", map[string]any{
					"VpcId":            Ref("Vpc"),
					"AvailabilityZone": "us-east-1a",
					"Tags":             []any{Tag{Key: "Name", Value: "x"}},
				})
				tpl.AddResource("Lb", "AWS::ElasticLoadBalancingV2::LoadBalancer", map[string]any{"Subnets": []any{Ref("Subnet")}})
				tpl.AddOutput("Url", "", Sub("http://${Lb.DNSName}/${AWS::Region}/${!Literal}"))
			},
		},
		{
			name:    "empty",
			build:   func(*Template) {},
			wantErr: "no resources",
		},
		{
			name: "dangling ref",
			build: func(tpl *Template) {
				tpl.AddResource("Subnet", "AWS::EC2::Subnet", map[string]any{"VpcId": Ref("Missing")})
			},
			wantErr: `reference to undefined "Missing"`,
		},
		{
			name: "dangling ref inside join",
			build: func(tpl *Template) {
				tpl.AddResource("Task", "AWS::ECS::TaskDefinition", map[string]any{"Host": Join(":", GetAtt("Db", "Endpoint.Address"), "3306")})
			},
			wantErr: `reference to undefined "Db"`,
		},
		{
			name: "dangling getatt in output",
			build: func(tpl *Template) {
				tpl.AddResource("Vpc", "AWS::EC2::VPC", nil)
				tpl.AddOutput("Dns", "", GetAtt("Lb", "DNSName"))
			},
			wantErr: `output Dns: reference to undefined "Lb"`,
		},
		{
			name: "dangling sub",
			build: func(tpl *Template) {
				tpl.AddResource("Vpc", "AWS::EC2::VPC", map[string]any{"Name": Sub("${Nope}-vpc")})
			},
			wantErr: `undefined "Nope"`,
		},
		{
			name: "sub with local vars",
			build: func(tpl *Template) {
				tpl.AddResource("Vpc", "AWS::EC2::VPC", map[string]any{"Name": map[string]any{"Fn::Sub": []any{"${Local}-vpc", map[string]any{"Local": "x"}}}})
			},
		},
		{
			name: "unknown depends on",
			build: func(tpl *Template) {
				r, _ := tpl.AddResource("Vpc", "AWS::EC2::VPC", nil)
				r.DependsOn = []string{"Gateway"}
			},
			wantErr: `DependsOn unknown resource "Gateway"`,
		},
		{
			name: "cycle",
			build: func(tpl *Template) {
				tpl.AddResource("A", "AWS::EC2::SecurityGroup", map[string]any{"X": Ref("B")})
				r, _ := tpl.AddResource("B", "AWS::EC2::SecurityGroup", nil)
				r.DependsOn = []string{"A"}
			},
			wantErr: "dependency cycle: A -> B -> A",
		},
		{
			name: "pseudo parameter ref",
			build: func(tpl *Template) {
				tpl.AddResource("Logs", "AWS::Logs::LogGroup", map[string]any{"Region": Ref(Region)})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := NewTemplate(tt.name)
			tt.build(tpl)
			err := tpl.Validate()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Fatalf("Validate() error = %v, want nil", err)
			case tt.wantErr != "" && err == nil:
				t.Fatalf("Validate() error = nil, want contains %q", tt.wantErr)
			case tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr):
				t.Fatalf("Validate() error = %v, want contains %q", err, tt.wantErr)
			}
		})
	}
}

func TestDependencies(t *testing.T) {
	tpl := NewTemplate("deps")
	tpl.AddResource("Vpc", "AWS::EC2::VPC", nil)
	tpl.AddResource("Igw", "AWS::EC2::InternetGateway", nil)
	r, _ := tpl.AddResource("Route", "AWS::EC2::Route", map[string]any{"GatewayId": Ref("Igw"), "Note": Sub("${Vpc}")})
	r.DependsOn = []string{"Igw"}

	deps, err := tpl.Dependencies()
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]string{"Vpc": {}, "Igw": {}, "Route": {"Igw", "Vpc"}}
	if diff := cmp.Diff(want, deps); diff != "" {
		t.Fatalf("Dependencies() mismatch (-want +got):\n%s", diff)
	}
	if got := tpl.ResourcesOfType("AWS::EC2::VPC"); len(got) != 1 || got[0] != "Vpc" {
		t.Fatalf("ResourcesOfType() = %v", got)
	}
}
