package cfn

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var subVarPattern = regexp.MustCompile(`\$\{([^!}][^}]*)\}`)

// Dependencies returns, for each resource, the sorted set of other resources
// it references through Ref, Fn::GetAtt, Fn::Sub or DependsOn.
func (t *Template) Dependencies() (map[string][]string, error) {
	generic, err := t.generic()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(t.Resources))
	for id, r := range t.Resources {
		set := map[string]bool{}
		for _, d := range r.DependsOn {
			set[d] = true
		}
		res, _ := generic["Resources"].(map[string]any)
		collectRefs(res[id], func(target string) { set[target] = true })
		deps := make([]string, 0, len(set))
		for d := range set {
			if d == id {
				continue
			}
			if _, ok := t.Resources[d]; ok {
				deps = append(deps, d)
			}
		}
		sort.Strings(deps)
		out[id] = deps
	}
	return out, nil
}

// Validate checks the template for dangling references, unknown DependsOn
// targets, and dependency cycles. It returns all problems joined together.
func (t *Template) Validate() error {
	if len(t.Resources) == 0 {
		return errors.New("template declares no resources")
	}
	generic, err := t.generic()
	if err != nil {
		return err
	}

	var errs []error
	known := func(name string) bool {
		if pseudoParameters[name] {
			return true
		}
		_, ok := t.Resources[name]
		return ok
	}

	ids := make([]string, 0, len(t.Resources))
	for id := range t.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	res, _ := generic["Resources"].(map[string]any)
	for _, id := range ids {
		r := t.Resources[id]
		if r.Type == "" {
			errs = append(errs, fmt.Errorf("resource %s: missing Type", id))
		}
		for _, d := range r.DependsOn {
			if _, ok := t.Resources[d]; !ok {
				errs = append(errs, fmt.Errorf("resource %s: DependsOn unknown resource %q", id, d))
			}
		}
		collectRefs(res[id], func(target string) {
			if !known(target) {
				errs = append(errs, fmt.Errorf("resource %s: reference to undefined %q", id, target))
			}
		})
	}

	outs, _ := generic["Outputs"].(map[string]any)
	outKeys := make([]string, 0, len(outs))
	for k := range outs {
		outKeys = append(outKeys, k)
	}
	sort.Strings(outKeys)
	for _, k := range outKeys {
		collectRefs(outs[k], func(target string) {
			if !known(target) {
				errs = append(errs, fmt.Errorf("output %s: reference to undefined %q", k, target))
			}
		})
	}

	if len(errs) == 0 {
		if cycle := t.findCycle(); cycle != nil {
			errs = append(errs, fmt.Errorf("dependency cycle: %s", strings.Join(cycle, " -> ")))
		}
	}
	return errors.Join(errs...)
}

func (t *Template) findCycle() []string {
	deps, err := t.Dependencies()
	if err != nil {
		return nil
	}
	const (
		white = iota
		grey
		black
	)
	color := map[string]int{}
	var stack []string
	var cycle []string

	var visit func(string) bool
	visit = func(n string) bool {
		color[n] = grey
		stack = append(stack, n)
		for _, m := range deps[n] {
			switch color[m] {
			case grey:
				for i, s := range stack {
					if s == m {
						cycle = append(append([]string{}, stack[i:]...), m)
						break
					}
				}
				return true
			case white:
				if visit(m) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
		return false
	}

	ids := make([]string, 0, len(deps))
	for id := range deps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if color[id] == white && visit(id) {
			return cycle
		}
	}
	return nil
}

// generic returns the rendered template as a JSON-decoded value tree, with
// every intrinsic function in its expanded object form.
func (t *Template) generic() (map[string]any, error) {
	b, err := t.JSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	return m, nil
}

// collectRefs walks v and reports every logical name referenced through an
// intrinsic function.
func collectRefs(v any, report func(string)) {
	switch x := v.(type) {
	case map[string]any:
		if len(x) == 1 {
			if ref, ok := x["Ref"].(string); ok {
				report(ref)
				return
			}
			if ga, ok := x["Fn::GetAtt"].([]any); ok && len(ga) > 0 {
				if name, ok := ga[0].(string); ok {
					report(name)
				}
				return
			}
			if sub, ok := x["Fn::Sub"]; ok {
				collectSubRefs(sub, report)
				return
			}
		}
		for _, e := range x {
			collectRefs(e, report)
		}
	case []any:
		for _, e := range x {
			collectRefs(e, report)
		}
	}
}

func collectSubRefs(sub any, report func(string)) {
	var body string
	vars := map[string]any{}
	switch s := sub.(type) {
	case string:
		body = s
	case []any:
		if len(s) > 0 {
			body, _ = s[0].(string)
		}
		if len(s) > 1 {
			if m, ok := s[1].(map[string]any); ok {
				vars = m
				for _, e := range m {
					collectRefs(e, report)
				}
			}
		}
	}
	for _, m := range subVarPattern.FindAllStringSubmatch(body, -1) {
		name := m[1]
		if i := strings.Index(name, "."); i >= 0 {
			name = name[:i]
		}
		if _, ok := vars[name]; ok {
			continue
		}
		report(name)
	}
}
