package stackgen

import (
	"fmt"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/cfn"
)

// grafanaUID is the user the official Grafana image runs as.
const grafanaUID = "472"

// storage declares the EFS file system backing the Grafana data volume, with
// one mount target per private subnet and an access point owned by Grafana.
// Ephemeral volumes are declared on the task definition only.
func (b *builder) storage() {
	if !b.efs() {
		return
	}
	policy := cfn.PolicyRetain
	if b.s.Database.RemovalPolicy == model.RemovalPolicyDestroy {
		policy = cfn.PolicyDelete
	}

	b.add(IDFileSystemSG, "AWS::EC2::SecurityGroup", map[string]any{
		"GroupDescription": "Grafana data file system",
		"VpcId":            cfn.Ref(IDVpc),
		"SecurityGroupIngress": []any{map[string]any{
			"IpProtocol":            "tcp",
			"FromPort":              2049,
			"ToPort":                2049,
			"SourceSecurityGroupId": cfn.GetAtt(IDTaskSG, "GroupId"),
			"Description":           "Grafana tasks",
		}},
		"Tags": nameTag("efs"),
	})
	fs := b.add(IDFileSystem, "AWS::EFS::FileSystem", map[string]any{
		"Encrypted":       true,
		"PerformanceMode": "generalPurpose",
		"FileSystemTags":  nameTag("data"),
	})
	fs.DeletionPolicy, fs.UpdateReplacePolicy = policy, policy

	for i := range b.net.Private {
		b.add(mountTargetID(i), "AWS::EFS::MountTarget", map[string]any{
			"FileSystemId":   cfn.Ref(IDFileSystem),
			"SubnetId":       cfn.Ref(privateSubnetID(i)),
			"SecurityGroups": []any{cfn.GetAtt(IDFileSystemSG, "GroupId")},
		})
	}
	b.add(IDAccessPoint, "AWS::EFS::AccessPoint", map[string]any{
		"FileSystemId": cfn.Ref(IDFileSystem),
		"PosixUser":    map[string]any{"Uid": grafanaUID, "Gid": "0"},
		"RootDirectory": map[string]any{
			"Path": "/grafana",
			"CreationInfo": map[string]any{
				"OwnerUid":    grafanaUID,
				"OwnerGid":    "0",
				"Permissions": "755",
			},
		},
	})
}

func mountTargetID(i int) string { return fmt.Sprintf("MountTarget%d", i+1) }

func (b *builder) mountTargetIDs() []string {
	if !b.efs() {
		return nil
	}
	ids := make([]string, len(b.net.Private))
	for i := range ids {
		ids[i] = mountTargetID(i)
	}
	return ids
}

// taskVolumes returns the task definition volume declarations.
func (b *builder) taskVolumes() []any {
	v := b.s.Container.Volume
	switch v.Type {
	case model.VolumeTypeEphemeral:
		return []any{map[string]any{"Name": v.Name}}
	case model.VolumeTypeEFS:
		return []any{map[string]any{
			"Name": v.Name,
			"EFSVolumeConfiguration": map[string]any{
				"FilesystemId":      cfn.Ref(IDFileSystem),
				"TransitEncryption": "ENABLED",
				"AuthorizationConfig": map[string]any{
					"AccessPointId": cfn.Ref(IDAccessPoint),
					"IAM":           "ENABLED",
				},
			},
		}}
	}
	return nil
}
