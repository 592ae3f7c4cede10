package transform

import "strings"

// FlattenKeys rewrites every namespaced key in raw — at any depth — into a
// single underscore-joined token (":"  and "." both become "_"), with no
// namespace bucketing. This is the "direct field selection" shape spec §4.5
// calls for on reference entities and relation edges, as opposed to the
// asset-specific top-level bucketing NormalizeKeys performs.
func FlattenKeys(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		out[flattenField(key)] = flattenNested(value)
	}
	return out
}

func flattenNested(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, nested := range v {
			out[flattenField(key)] = flattenNested(nested)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = flattenNested(item)
		}
		return out
	default:
		return value
	}
}

func flattenField(key string) string {
	if strings.HasPrefix(key, "@") {
		return key
	}
	key = strings.ReplaceAll(key, ":", "_")
	return strings.ReplaceAll(key, ".", "_")
}
