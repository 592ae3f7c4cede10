// Package transform is the Asset Transformer (spec §4.6): a pure function
// pipeline applied to each raw asset record — namespace key normalization,
// geometry extraction/reprojection, and derivation of toestand, naampad,
// and short foreign-key fields. None of it performs I/O of its own; lookups
// are injected as cache.Lookup values so the functions stay easy to test.
package transform

import "strings"

// NormalizeKeys rewrites a raw record's namespaced keys into the bucketed
// shape spec §4.6 describes: at the top level, "ns:Group.field" becomes
// result[ns][Group_field]; below the top level, the "ns:" prefix is
// stripped and "." becomes "_" in place, with no bucket created. The
// transform is idempotent — re-applying it to its own output is a no-op,
// since normalized keys never contain ":" or "." at any depth.
func NormalizeKeys(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		if strings.HasPrefix(key, "@") {
			out[key] = normalizeNested(value)
			continue
		}
		ns, rest, ok := splitNamespace(key)
		if !ok {
			out[sanitizeField(key)] = normalizeNested(value)
			continue
		}
		bucket, _ := out[ns].(map[string]interface{})
		if bucket == nil {
			bucket = make(map[string]interface{})
			out[ns] = bucket
		}
		bucket[sanitizeField(rest)] = normalizeNested(value)
	}
	return out
}

// normalizeNested strips any leading "ns:" and replaces "." with "_" on
// every key at depth > 0, recursing through nested maps and slices. No
// namespace buckets are created below the top level.
func normalizeNested(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, nested := range v {
			newKey := key
			if _, rest, ok := splitNamespace(key); ok {
				newKey = rest
			}
			out[sanitizeField(newKey)] = normalizeNested(nested)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = normalizeNested(item)
		}
		return out
	default:
		return value
	}
}

func splitNamespace(key string) (ns, rest string, ok bool) {
	idx := strings.IndexByte(key, ':')
	if idx < 0 {
		return "", key, false
	}
	return key[:idx], key[idx+1:], true
}

func sanitizeField(field string) string {
	return strings.ReplaceAll(field, ".", "_")
}
