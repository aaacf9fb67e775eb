package strutil

import (
	"fmt"
	"strings"
)

// ParseKeyValues converts ["KEY=value", "FLAG"] to {"KEY": "value", "FLAG": ""}.
// Later entries override earlier ones. An empty key is an error.
func ParseKeyValues(values []string) (map[string]string, error) {
	result := make(map[string]string, len(values))

	for _, value := range values {
		key, val, _ := strings.Cut(value, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid key/value pair %q: empty key", value)
		}

		result[key] = val
	}

	return result, nil
}

// Dedupe returns the non-empty strings of in, without duplicates, in first-seen order.
func Dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	res := make([]string, 0, len(in))

	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}

		seen[s] = struct{}{}
		res = append(res, s)
	}

	return res
}

// TrimPrefixes strips prefix from every element of in that starts with it.
func TrimPrefixes(in []string, prefix string) []string {
	res := make([]string, 0, len(in))
	for _, s := range in {
		res = append(res, strings.TrimPrefix(s, prefix))
	}

	return res
}
