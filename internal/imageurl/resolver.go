// Package imageurl rewrites product image URLs so that they can be loaded from
// the storefront's own origin.
package imageurl

import "strings"

const (
	// NoImagePlaceholder stands in for products without an image URL
	NoImagePlaceholder = "https://placehold.co/400x400?text=No+Image"

	// ErrorPlaceholder replaces an image that fails to load in the browser
	ErrorPlaceholder = "https://placehold.co/400x400?text=Error"

	// ProxyPrefix is the same-origin path served by the image proxy
	ProxyPrefix = "/api"

	insecureUpstream = "http://3.124.216.226:3000"
)

// Rule replaces the From origin with the same-origin To path
type Rule struct {
	From string
	To   string
}

// DefaultRules returns the built-in rewrite for the plaintext product API host.
func DefaultRules() []Rule {
	return []Rule{{From: insecureUpstream, To: ProxyPrefix}}
}

// Resolver applies rewrite rules in order; the first matching rule wins.
type Resolver struct {
	rules []Rule
}

func NewResolver(rules ...Rule) *Resolver {
	cleaned := make([]Rule, 0, len(rules))
	for _, r := range rules {
		from := strings.TrimRight(r.From, "/")
		if from == "" {
			continue
		}
		cleaned = append(cleaned, Rule{From: from, To: strings.TrimRight(r.To, "/")})
	}
	return &Resolver{rules: cleaned}
}

// Rules returns a copy of the configured rules
func (r *Resolver) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Resolve returns the image reference to place in the page.
func (r *Resolver) Resolve(url string) string {
	if url == "" {
		return NoImagePlaceholder
	}

	for _, rule := range r.rules {
		rest, ok := strings.CutPrefix(url, rule.From)
		if !ok {
			continue
		}
		// Only match whole origins: "http://host:3000" must not match "http://host:30001"
		if rest != "" && !strings.HasPrefix(rest, "/") && !strings.HasPrefix(rest, "?") {
			continue
		}
		return rule.To + rest
	}

	return url
}
