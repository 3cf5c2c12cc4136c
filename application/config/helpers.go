// Package config provides typed accessors and validation for engine options
// and render locals.
package config

import (
	"fmt"
	"strings"

	"github.com/reglet-dev/tmplkit/domain/entities"
)

// Config is the key-value map engines receive as options or locals.
type Config = entities.Locals

// PathSeparator splits the segments of a key path such as "site.title".
const PathSeparator = "."

// Lookup returns the value at path, walking nested maps one segment at a
// time. Both Locals and map[string]any count as nested maps.
func Lookup(cfg Config, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = cfg
	for _, key := range strings.Split(path, PathSeparator) {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// GetString returns the string at path, reporting whether one was found.
func GetString(cfg Config, path string) (string, bool) {
	v, ok := Lookup(cfg, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetStringDefault returns the string at path or defaultValue.
func GetStringDefault(cfg Config, path, defaultValue string) string {
	if s, ok := GetString(cfg, path); ok {
		return s
	}
	return defaultValue
}

// Set stores value at path, creating the intermediate maps it needs. An
// existing intermediate value that is not a map is not overwritten.
func Set(cfg Config, path string, value any) error {
	if cfg == nil {
		return fmt.Errorf("set %q: nil map", path)
	}
	keys := strings.Split(path, PathSeparator)
	for _, key := range keys {
		if key == "" {
			return fmt.Errorf("set %q: empty key segment", path)
		}
	}

	m := map[string]any(cfg)
	for i, key := range keys[:len(keys)-1] {
		next, exists := m[key]
		if !exists {
			child := map[string]any{}
			m[key] = child
			m = child
			continue
		}
		child, ok := asMap(next)
		if !ok {
			return fmt.Errorf("set %q: %s is a %T, not a map",
				path, strings.Join(keys[:i+1], PathSeparator), next)
		}
		m = child
	}
	m[keys[len(keys)-1]] = value
	return nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case entities.Locals:
		return m, m != nil
	case map[string]any:
		return m, m != nil
	default:
		return nil, false
	}
}
