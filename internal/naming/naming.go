// Package naming provides deterministic short hashes and name builders used
// for CloudFormation stack names, AWS resource names and tags.
package naming

import (
	"crypto/sha1"
	"fmt"
	"strings"
)

// Hashes groups hierarchical short hashes derived from service, provider and
// stack identifiers.
//
//	service                 -> Service
//	service/provider        -> Provider
//	service/provider/stack  -> Stack
type Hashes struct {
	Service  string
	Provider string
	Stack    string
}

// defaultLength defines the hex length of hashes (bits ~ length * 4).
const defaultLength = 6

// maxStackName is the CloudFormation stack name limit.
const maxStackName = 128

// ShortHash returns the hex SHA1 prefix of length n (clamped to digest size).
func ShortHash(s string, n int) string {
	sum := sha1.Sum([]byte(s))
	h := fmt.Sprintf("%x", sum)
	if n > len(h) {
		n = len(h)
	}
	return h[:n]
}

// NewHashes computes hierarchical hashes for the given identifiers.
func NewHashes(service, provider, stack string) Hashes {
	return Hashes{
		Service:  ShortHash(service, defaultLength),
		Provider: ShortHash(fmt.Sprintf("%s:%s", service, provider), defaultLength),
		Stack:    ShortHash(fmt.Sprintf("%s:%s:%s", service, provider, stack), defaultLength),
	}
}

// StackName returns the CloudFormation stack name:
//
//	<prefix>-<service>-<stack>-<hash.Stack>
//
// The base is truncated so the hash suffix always survives the 128 char limit.
func StackName(prefix, service, provider, stack string) string {
	h := NewHashes(service, provider, stack)
	base := fmt.Sprintf("%s-%s-%s", prefix, service, stack)
	maxBase := maxStackName - len(h.Stack) - 1
	if len(base) > maxBase {
		base = base[:maxBase]
	}
	return strings.TrimRight(base, "-") + "-" + h.Stack
}

// TagValue returns the ownership tag value "<service>/<provider>/<stack>".
func TagValue(service, provider, stack string) string {
	return fmt.Sprintf("%s/%s/%s", service, provider, stack)
}

// LogicalID converts an arbitrary name into a CloudFormation logical ID
// (ASCII alphanumerics only). Separators start a new upper-case word:
// "grafana-data" -> "GrafanaData".
func LogicalID(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		upper := true
		for _, r := range p {
			switch {
			case r >= 'a' && r <= 'z':
				if upper {
					r -= 'a' - 'A'
				}
				b.WriteRune(r)
				upper = false
			case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
				b.WriteRune(r)
				upper = false
			default:
				upper = true
			}
		}
	}
	return b.String()
}
