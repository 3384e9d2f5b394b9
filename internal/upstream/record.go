package upstream

import (
	"fmt"
	"strings"
)

// Record is a raw, loosely-typed upstream payload. The engine never assumes
// a fixed shape beyond "has an identifier"; these helpers coalesce the
// snake_case/camelCase variants the API mixes freely.
type Record map[string]interface{}

// Str returns the first non-empty value among keys, stringified. Numbers are
// formatted without an exponent so identifiers survive JSON decoding into
// float64.
func (r Record) Str(keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if strings.TrimSpace(t) != "" {
				return t
			}
		case float64:
			if t == float64(int64(t)) {
				return fmt.Sprintf("%d", int64(t))
			}
			return fmt.Sprintf("%v", t)
		case int:
			return fmt.Sprintf("%d", t)
		case int64:
			return fmt.Sprintf("%d", t)
		case bool:
			return fmt.Sprintf("%t", t)
		}
	}
	return ""
}

// ID returns the record identifier under its common spellings.
func (r Record) ID() string {
	return r.Str("id", "task_id", "taskId")
}

// Sub returns a nested record, or nil when the key is absent or not a map.
func (r Record) Sub(keys ...string) Record {
	for _, k := range keys {
		if m, ok := r[k].(map[string]interface{}); ok {
			return Record(m)
		}
	}
	return nil
}

// List returns a nested slice of records under the first matching key.
func (r Record) List(keys ...string) []Record {
	for _, k := range keys {
		raw, ok := r[k].([]interface{})
		if !ok {
			continue
		}
		out := make([]Record, 0, len(raw))
		for _, item := range raw {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, Record(m))
			}
		}
		return out
	}
	return nil
}

// Strings returns a nested value as a string slice, tolerating scalar input.
func (r Record) Strings(keys ...string) []string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case []interface{}:
			out := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			return out
		case string:
			if v != "" {
				return []string{v}
			}
		}
	}
	return nil
}
