package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)
	for _, name := range []string{"index.html", "card", "modal"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestFilterURL(t *testing.T) {
	assert.Equal(t, "/", FilterURL(""))
	assert.Equal(t, "/", FilterURL("All"))
	assert.Equal(t, "/?category=Footwear", FilterURL("Footwear"))
	assert.Equal(t, "/?category=Home+%26+Kitchen", FilterURL("Home & Kitchen"))
	assert.Equal(t, "/products/new?category=Apparel", NewProductURL("Apparel"))
	assert.Equal(t, "/products/new", NewProductURL("All"))
}
