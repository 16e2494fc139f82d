package util

import "strings"

// StorageKey scopes a caller key by namespace ("<ns>:<key>"). Empty ns leaves key as is.
func StorageKey(ns, key string) string {
	if ns == "" {
		return key
	}
	return ns + ":" + key
}

// GlobEscape quotes the Redis glob metacharacters in s so that
// GlobEscape(p)+"*" matches exactly the keys starting with the literal p.
func GlobEscape(s string) string {
	if !strings.ContainsAny(s, `*?[]\^`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '*', '?', '[', ']', '\\', '^':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// MatchingKeys returns the keys that start with the literal prefix.
func MatchingKeys(keys []string, prefix string) []string {
	var out []string
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}
