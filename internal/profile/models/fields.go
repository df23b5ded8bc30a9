package models

import (
	"maps"
	"strings"
)

// FieldValueMap maps field keys to values. An absent key models null.
type FieldValueMap map[string]string

// Value returns the trimmed value for key, "" when absent.
func (m FieldValueMap) Value(key string) string {
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[key])
}

// Blank reports whether key is absent or empty after trimming.
func (m FieldValueMap) Blank(key string) bool {
	return m.Value(key) == ""
}

func (m FieldValueMap) Clone() FieldValueMap {
	out := make(FieldValueMap, len(m))
	maps.Copy(out, m)
	return out
}

// Merge returns a copy of m overlaid with the non-blank values of other.
func (m FieldValueMap) Merge(other FieldValueMap) FieldValueMap {
	out := m.Clone()
	for k, v := range other {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	return out
}

// Extended keeps only keys stored in the metafield namespace.
func (m FieldValueMap) Extended() FieldValueMap {
	out := make(FieldValueMap, len(m))
	for k, v := range m {
		if spec, ok := Lookup(k); ok && spec.Storage == StorageExtended {
			out[k] = v
		}
	}
	return out
}
