package upstream

import (
	"encoding/json"
	"strings"
)

// String returns the first non-empty string found under the candidate keys.
// Keys may be dot paths into nested objects.
func String(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v := getPath(m, k); v != nil {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

// Number returns the first numeric value under the candidate keys.
func Number(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch t := getPath(m, k).(type) {
		case json.Number:
			if f, err := t.Float64(); err == nil {
				return f, true
			}
		case float64:
			return t, true
		}
	}
	return 0, false
}

// Bool reports whether key holds true. Services that send 1/0 are accepted.
func Bool(m map[string]any, key string) bool {
	switch t := getPath(m, key).(type) {
	case bool:
		return t
	case json.Number:
		return t.String() == "1"
	}
	return false
}

func getPath(m map[string]any, path string) any {
	var cur any = m
	for _, p := range strings.Split(path, ".") {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := mm[p]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}
