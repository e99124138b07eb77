package stackgen

import (
	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/cfn"
)

// Characters RDS rejects in master passwords.
const rdsExcludedChars = "\"@/\\ '"

// secrets declares the generated database credentials and the Grafana admin
// password secret.
func (b *builder) secrets() {
	if b.s.Database.Managed() {
		gen := map[string]any{
			"SecretStringTemplate": mustJSON(map[string]string{"username": b.s.Database.Username}),
			"GenerateStringKey":    "password",
			"PasswordLength":       30,
		}
		if b.s.Database.Engine == model.DatabaseEngineAuroraMySQLLess {
			gen["ExcludePunctuation"] = true
		} else {
			gen["ExcludeCharacters"] = rdsExcludedChars
		}
		b.add(IDDatabaseSecret, "AWS::SecretsManager::Secret", map[string]any{
			"Description":          cfn.Sub("Grafana database credentials for ${AWS::StackName}"),
			"GenerateSecretString": gen,
		})
	}

	switch pw := b.s.Container.AdminPassword; pw {
	case "":
	case model.AdminPasswordGenerate:
		b.add(IDAdminSecret, "AWS::SecretsManager::Secret", map[string]any{
			"Description": cfn.Sub("Grafana admin password for ${AWS::StackName}"),
			"GenerateSecretString": map[string]any{
				"SecretStringTemplate": `{"username":"admin"}`,
				"GenerateStringKey":    "password",
				"PasswordLength":       24,
				"ExcludePunctuation":   true,
			},
		})
	default:
		b.add(IDAdminSecret, "AWS::SecretsManager::Secret", map[string]any{
			"Description":  cfn.Sub("Grafana admin password for ${AWS::StackName}"),
			"SecretString": mustJSON(map[string]string{"username": "admin", "password": pw}),
		})
	}
}

func (b *builder) hasAdminSecret() bool {
	return b.s.Container.AdminPassword != ""
}
