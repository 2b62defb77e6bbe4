package parsers

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// VersionHash computes the SHA-1 hex digest of the canonical JSON encoding
// of spec (keys sorted, no whitespace), used as ServiceDefinition.Version
// (spec.md §4.2, testable property in spec.md §8: parse(s).version ==
// sha1(canonicalJson(s))).
func VersionHash(spec map[string]any) string {
	canon := canonicalize(spec)
	data, _ := json.Marshal(canon)
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// canonicalize rebuilds v with map keys emitted in sorted order by using
// an ordered structure json.Marshal already produces deterministically for
// map[string]any since Go 1.12 (maps are sorted by key on encode) - this
// function exists to make that guarantee explicit and to recurse through
// slices, which json.Marshal does not reorder on its own.
func canonicalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out[k] = canonicalize(t[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonicalize(e)
		}
		return out
	default:
		return v
	}
}
