package media

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var prefixPattern = regexp.MustCompile(`^([a-zA-Z_]+|\d{4})`)

// PrefixKey derives the grouping prefix of a clip name: the leading run of
// letters and underscores (trailing underscores dropped) or four leading
// digits. Names that match neither fall back to their first three
// characters, or four when those are digits; such a name shorter than three
// characters has no key.
func PrefixKey(name string) string {
	if m := prefixPattern.FindStringSubmatch(name); m != nil {
		if key := strings.TrimRight(m[1], "_"); key != "" {
			return key
		}
	}
	r := []rune(name)
	if len(r) < 3 {
		return ""
	}
	head := string(r[:3])
	if allDigits(head) && len(r) >= 4 {
		return string(r[:4])
	}
	return head
}

// MinPrefixNameLen is the shortest name Prefixes lists a key for.
const MinPrefixNameLen = 3

// Prefixes returns the distinct non-empty prefix keys of names in sorted
// order. Names shorter than MinPrefixNameLen are skipped.
func Prefixes(names []string) []string {
	seen := make(map[string]struct{})
	for _, n := range names {
		if len([]rune(n)) < MinPrefixNameLen {
			continue
		}
		if k := PrefixKey(n); k != "" {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// WildcardPattern compiles a shell-style pattern (* and ?) into a
// case-insensitive regexp anchored at the start of the name only.
func WildcardPattern(wildcard string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?i)^")
	for _, r := range wildcard {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return regexp.Compile(b.String())
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
