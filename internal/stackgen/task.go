package stackgen

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/yaegashi/grafanaops/domain/model"
	"github.com/yaegashi/grafanaops/internal/cfn"
)

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// task declares the Fargate task definition with the single Grafana container.
func (b *builder) task() {
	s := b.s
	image := b.env.Image
	if image == "" {
		image = s.Container.Image
	}

	container := map[string]any{
		"Name":      ContainerName,
		"Image":     image,
		"Essential": true,
		"PortMappings": []any{map[string]any{
			"ContainerPort": s.Container.Port,
			"Protocol":      "tcp",
		}},
		"Environment": b.containerEnvironment(),
	}
	if secrets := b.containerSecrets(); len(secrets) > 0 {
		container["Secrets"] = secrets
	}
	if s.Container.MemoryReservation > 0 {
		container["MemoryReservation"] = s.Container.MemoryReservation
	}
	if b.awslogs() {
		container["LogConfiguration"] = map[string]any{
			"LogDriver": "awslogs",
			"Options": map[string]any{
				"awslogs-group":         cfn.Ref(IDLogGroup),
				"awslogs-region":        cfn.Ref(cfn.Region),
				"awslogs-stream-prefix": s.Container.Logging.StreamPrefix,
			},
		}
	}
	if v := s.Container.Volume; v.Type != "" {
		container["MountPoints"] = []any{map[string]any{
			"SourceVolume":  v.Name,
			"ContainerPath": v.Path,
			"ReadOnly":      false,
		}}
	}

	props := map[string]any{
		"Family":                  s.Task.Family,
		"Cpu":                     strconv.Itoa(s.Task.CPU),
		"Memory":                  strconv.Itoa(s.Task.Memory),
		"NetworkMode":             "awsvpc",
		"RequiresCompatibilities": []any{"FARGATE"},
		"ExecutionRoleArn":        b.executionRoleARN(),
		"TaskRoleArn":             b.taskRoleARN(),
		"ContainerDefinitions":    []any{container},
	}
	if vols := b.taskVolumes(); len(vols) > 0 {
		props["Volumes"] = vols
	}
	b.add(IDTaskDefinition, "AWS::ECS::TaskDefinition", props)
}

type nameValue struct {
	name  string
	value any
}

// containerEnvironment merges user variables with the variables the stack
// owns: server port, plugins, database wiring and bucket location.
func (b *builder) containerEnvironment() []any {
	s := b.s
	env := map[string]any{}
	for k, v := range s.Container.Env {
		env[k] = v
	}
	env["GF_SERVER_HTTP_PORT"] = strconv.Itoa(s.Container.Port)
	if len(s.Container.Plugins) > 0 {
		env["GF_INSTALL_PLUGINS"] = strings.Join(s.Container.Plugins, ",")
	}

	d := s.Database
	switch d.Engine {
	case model.DatabaseEngineSQLite:
		env["GF_DATABASE_TYPE"] = "sqlite3"
		env["GF_DATABASE_PATH"] = d.Path
	case model.DatabaseEngineMySQL, model.DatabaseEngineAuroraMySQLLess:
		env["GF_DATABASE_TYPE"] = "mysql"
		env["GF_DATABASE_HOST"] = cfn.Join(":", b.databaseEndpoint(), strconv.Itoa(d.Port))
		env["GF_DATABASE_NAME"] = d.Name
	}

	if s.Bucket.Enabled {
		env["DASHBOARD_BUCKET"] = cfn.Ref(IDBucket)
		env["DASHBOARD_PREFIX"] = s.Bucket.Prefix
	}
	return sortedPairs(env, "Value")
}

// containerSecrets maps secret-backed variables to Secrets Manager JSON keys.
func (b *builder) containerSecrets() []any {
	s := b.s
	secrets := map[string]any{}
	for name, ref := range s.Container.Secrets {
		secrets[name] = cfn.Join("", userSecretARN(ref.Secret), ":"+ref.Key+"::")
	}
	if s.Database.Managed() {
		secrets["GF_DATABASE_USER"] = cfn.Sub("${" + IDDatabaseSecret + "}:username::")
		secrets["GF_DATABASE_PASSWORD"] = cfn.Sub("${" + IDDatabaseSecret + "}:password::")
	}
	if b.hasAdminSecret() {
		secrets["GF_SECURITY_ADMIN_PASSWORD"] = cfn.Sub("${" + IDAdminSecret + "}:password::")
	}
	return sortedPairs(secrets, "ValueFrom")
}

func sortedPairs(m map[string]any, valueKey string) []any {
	pairs := make([]nameValue, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, nameValue{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })
	out := make([]any, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, map[string]any{"Name": p.name, valueKey: p.value})
	}
	return out
}
