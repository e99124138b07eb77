package naming

import (
	"fmt"
	"strings"

	utilvalidation "k8s.io/apimachinery/pkg/util/validation"
)

const (
	serviceNameMaxLength  = 32
	providerNameMaxLength = 32
	stackNameMaxLength    = 40
)

func validateDNS1123Label(name string, maximum int, labelKind string) error {
	if name == "" {
		return fmt.Errorf("%s name must not be empty", labelKind)
	}
	if len(name) > maximum {
		return fmt.Errorf("%s name exceeds %d characters", labelKind, maximum)
	}
	if errs := utilvalidation.IsDNS1123Label(name); len(errs) > 0 {
		return fmt.Errorf("invalid %s name: %s", labelKind, strings.Join(errs, ", "))
	}
	return nil
}

func ValidateServiceName(name string) error {
	return validateDNS1123Label(name, serviceNameMaxLength, "service")
}

func ValidateProviderName(name string) error {
	return validateDNS1123Label(name, providerNameMaxLength, "provider")
}

func ValidateStackName(name string) error {
	return validateDNS1123Label(name, stackNameMaxLength, "stack")
}

// ValidateEnvName checks that name is usable as a container environment
// variable name.
func ValidateEnvName(name string) error {
	if errs := utilvalidation.IsEnvVarName(name); len(errs) > 0 {
		return fmt.Errorf("invalid environment variable name %q: %s", name, strings.Join(errs, ", "))
	}
	return nil
}
