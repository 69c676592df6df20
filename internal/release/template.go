package release

import (
	"fmt"
	"regexp"
	"strings"
)

// UnresolvedPathError is returned when a {{path}} placeholder has no value
// in the execution context. It is an execution-time condition local to the
// step that referenced the path: availability can depend on prior steps'
// outputs, so it never fails the whole pipeline at plan time.
type UnresolvedPathError struct {
	Path string
}

func (e *UnresolvedPathError) Error() string {
	return fmt.Sprintf("unresolved template path %q", e.Path)
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// Resolve substitutes every {{path}} or {{path.to.value}} placeholder in s
// with its value from vars, looked up by dotted path. Resolve is a pure
// function: no side effects, one fixed vars map in, one string out.
//
// An unresolved path returns an [UnresolvedPathError]; there is never a
// silent empty substitution.
func Resolve(s string, vars map[string]any) (string, error) {
	var unresolved *UnresolvedPathError
	out := placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		path := placeholderRe.FindStringSubmatch(match)[1]
		v, ok := lookupPath(path, vars)
		if !ok {
			if unresolved == nil {
				unresolved = &UnresolvedPathError{Path: path}
			}
			return match
		}
		return fmt.Sprintf("%v", v)
	})
	if unresolved != nil {
		return "", unresolved
	}
	return out, nil
}

// ResolveValue resolves placeholders inside an arbitrary configuration
// value. Strings are resolved with [Resolve]; maps and slices are walked
// recursively; other values pass through. A string that is exactly one
// placeholder resolves to the underlying value, preserving its type.
func ResolveValue(v any, vars map[string]any) (any, error) {
	switch tv := v.(type) {
	case string:
		if m := placeholderRe.FindStringSubmatch(tv); m != nil && m[0] == strings.TrimSpace(tv) {
			val, ok := lookupPath(m[1], vars)
			if !ok {
				return nil, &UnresolvedPathError{Path: m[1]}
			}
			return val, nil
		}
		return Resolve(tv, vars)
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			resolved, err := ResolveValue(item, vars)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			resolved, err := ResolveValue(item, vars)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

// ResolveConfig resolves every string placeholder in a step config map.
func ResolveConfig(cfg map[string]any, vars map[string]any) (map[string]any, error) {
	if cfg == nil {
		return nil, nil
	}
	resolved, err := ResolveValue(cfg, vars)
	if err != nil {
		return nil, err
	}
	return resolved.(map[string]any), nil
}

// lookupPath walks vars by dotted path segments. Intermediate values must
// be string-keyed maps; the leaf may be anything non-nil.
func lookupPath(path string, vars map[string]any) (any, bool) {
	var current any = vars
	for _, seg := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}
