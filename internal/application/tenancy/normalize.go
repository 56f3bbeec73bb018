package tenancy

import "strings"

// MaxHostLength is the longest host name accepted as a cache/lookup key.
const MaxHostLength = 253

// Normalize canonicalizes a raw host (Host header, URL or user input) into a lookup key.
// It strips scheme, path, port, a trailing dot and leading "www." labels, trims and lower-cases.
// Normalize never fails; garbage in simply produces a key that matches nothing.
func Normalize(raw string) string {
	s := raw
	for {
		next := normalizeOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func normalizeOnce(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "https://") {
		s = s[len("https://"):]
	} else if strings.HasPrefix(s, "http://") {
		s = s[len("http://"):]
	}
	s = strings.TrimSuffix(s, "/")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, ':'); i >= 0 && isDigits(s[i+1:]) {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, ".")
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSpace(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidKey reports whether a normalized key looks like a host name:
// letters, digits, '-' and '.', no empty labels.
func ValidKey(key string) bool {
	if key == "" || len(key) > MaxHostLength {
		return false
	}
	labelLen := 0
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c == '.':
			if labelLen == 0 {
				return false
			}
			labelLen = 0
			continue
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
		labelLen++
	}
	return labelLen > 0
}
