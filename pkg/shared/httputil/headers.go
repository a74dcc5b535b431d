package httputil

import "maps"

// MergeHeaders merges override headers into base, returning a new map.
// Empty override values are skipped so optional credentials can be passed unconditionally.
func MergeHeaders(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := maps.Clone(base)
	if out == nil {
		out = make(map[string]string)
	}
	for k, v := range override {
		if v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// BearerHeader returns an Authorization header map, or nil when token is empty.
func BearerHeader(token string) map[string]string {
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}
