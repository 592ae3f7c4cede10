package transform

import "strings"

// TerminalSegment returns the portion of a slash- or hash-delimited URI
// after its last separator, used for toestand, bestek-coupling status, and
// betrokkene role derivation (spec §4.5, §4.6).
func TerminalSegment(uri string) string {
	if uri == "" {
		return ""
	}
	idx := strings.LastIndexAny(uri, "/#")
	if idx < 0 {
		return uri
	}
	return uri[idx+1:]
}

// DeriveNaampad splits a "/"-delimited name-path into its parts and parent
// (spec §4.6 scenario 3: a single-segment path has no parent).
func DeriveNaampad(naampad string) (parts []string, parent string, hasParent bool) {
	if naampad == "" {
		return nil, "", false
	}
	parts = strings.Split(naampad, "/")
	if len(parts) < 2 {
		return parts, "", false
	}
	return parts, strings.Join(parts[:len(parts)-1], "/"), true
}

// Bucket reads a namespace bucket (e.g. "tz", "loc", "geo") from a
// normalized record, returning nil if absent or of the wrong shape.
func Bucket(obj map[string]interface{}, ns string) map[string]interface{} {
	bucket, _ := obj[ns].(map[string]interface{})
	return bucket
}

// StringField reads a string field from a bucket, tolerating absence.
func StringField(bucket map[string]interface{}, field string) (string, bool) {
	if bucket == nil {
		return "", false
	}
	v, ok := bucket[field].(string)
	return v, ok && v != ""
}
