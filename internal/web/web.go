// Package web holds the storefront's HTML templates, embedded in the binary.
package web

import (
	"embed"
	"html/template"
	"net/url"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/storefront"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses every page and partial.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"filterURL": FilterURL,
		"newURL":    NewProductURL,
		"cardData":  func(c *storefront.Card, filter string) CardData { return CardData{Card: c, Filter: filter} },
	}).ParseFS(templateFS, "templates/*.html")
}

// FilterURL is the listing URL for a category filter.
func FilterURL(category string) string {
	if category == "" || category == "All" {
		return "/"
	}
	return "/?category=" + url.QueryEscape(category)
}

// NewProductURL opens the create form over the given filter.
func NewProductURL(category string) string {
	if category == "" || category == "All" {
		return "/products/new"
	}
	return "/products/new?category=" + url.QueryEscape(category)
}

// CardData is what the card partial renders: the card plus the active filter
// so that add-to-cart can return to the same listing.
type CardData struct {
	Card   *storefront.Card
	Filter string
}
