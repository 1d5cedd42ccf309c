package storefront

import "strings"

// ParseVariants splits a comma separated list, trimming whitespace and
// dropping empty tokens. The result is never nil.
func ParseVariants(s string) []string {
	variants := []string{}
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			variants = append(variants, v)
		}
	}
	return variants
}
