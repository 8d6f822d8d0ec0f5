// Package path provides a typed accessor for the dotted paths used by
// workflow configuration ("state.finance.grandTotal", "input.items").
// Strings are parsed once at the configuration-ingestion boundary; the
// resulting Path value is what gets evaluated at run time.
package path

import (
	"errors"
	"fmt"
	"strings"

	"github.com/credentis/credentis/pkg/models"
)

var ErrEmptyPath = errors.New("path must not be empty")

// Path is a parsed dotted lookup path.
type Path struct {
	raw      string
	segments []string
}

func Parse(raw string) (Path, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Path{}, ErrEmptyPath
	}

	segments := strings.Split(trimmed, ".")
	for _, segment := range segments {
		if segment == "" {
			return Path{}, fmt.Errorf("invalid path %q: empty segment", raw)
		}
	}

	return Path{raw: trimmed, segments: segments}, nil
}

// MustParse panics on an invalid path. Intended for fixed paths in code,
// not for configuration input.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}

	return p
}

func (p Path) String() string {
	return p.raw
}

// Get resolves the path against an action context. The first segment selects
// the root: "state", "input", "workflowId" or "tenantId". Paths without a
// recognized root are resolved against state, which keeps short workflow
// configs like "finance.grandTotal" working.
func (p Path) Get(ec *models.ActionContext) (any, bool) {
	if ec == nil || len(p.segments) == 0 {
		return nil, false
	}

	switch p.segments[0] {
	case "state":
		return lookup(ec.State, p.segments[1:])
	case "input":
		return lookup(ec.Input, p.segments[1:])
	case "workflowId":
		return terminal(ec.WorkflowID, p.segments[1:])
	case "tenantId":
		return terminal(ec.TenantID, p.segments[1:])
	default:
		return lookup(ec.State, p.segments)
	}
}

// Lookup resolves the path against a plain payload map.
func (p Path) Lookup(data map[string]any) (any, bool) {
	return lookup(data, p.segments)
}

func terminal(value any, rest []string) (any, bool) {
	if len(rest) != 0 {
		return nil, false
	}

	return value, true
}

func lookup(data map[string]any, segments []string) (any, bool) {
	if len(segments) == 0 {
		return data, true
	}

	var current any = data

	for _, segment := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// Mapping is a projection from payload paths to output keys, parsed from a
// raw configuration map of outputKey -> dotted path.
type Mapping map[string]Path

func ParseMapping(raw map[string]any) (Mapping, error) {
	mapping := make(Mapping, len(raw))

	for key, value := range raw {
		pathStr, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("mapping for %q must be a string path, got %T", key, value)
		}

		p, err := Parse(pathStr)
		if err != nil {
			return nil, fmt.Errorf("mapping for %q: %w", key, err)
		}

		mapping[key] = p
	}

	return mapping, nil
}

// Project applies the mapping to a payload, keeping only keys whose source
// path resolves. Missing sources are skipped, not errors: webhook payloads
// are external input and partial projections are expected.
func (m Mapping) Project(data map[string]any) map[string]any {
	out := make(map[string]any, len(m))

	for key, p := range m {
		if value, ok := p.Lookup(data); ok {
			out[key] = value
		}
	}

	return out
}
