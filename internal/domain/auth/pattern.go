package auth

import (
	"path"
	"strings"
)

// MatchPath reports whether urlPath matches an Ant-style pattern: "*"
// matches within one segment, "**" matches zero or more whole segments.
func MatchPath(pattern, urlPath string) bool {
	return matchSegments(segments(pattern), segments(urlPath))
}

func MatchMethod(resourceMethod, method string) bool {
	return resourceMethod == "*" || strings.EqualFold(resourceMethod, method)
}

func segments(value string) []string {
	value = strings.Trim(value, "/")
	if value == "" {
		return nil
	}
	return strings.Split(value, "/")
}

func matchSegments(pattern, parts []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(parts); i++ {
				if matchSegments(rest, parts[i:]) {
					return true
				}
			}
			return false
		}
		if len(parts) == 0 {
			return false
		}
		ok, err := path.Match(pattern[0], parts[0])
		if err != nil || !ok {
			return false
		}
		pattern, parts = pattern[1:], parts[1:]
	}
	return len(parts) == 0
}
