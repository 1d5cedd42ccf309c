package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("IMAGE_PROXY_RULES", "")

	cfg := Load()

	assert.Equal(t, "http://localhost:3000", cfg.APIURL)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Empty(t, cfg.ImageProxyRules)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_URL", "https://api.example.com/")
	t.Setenv("PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("MAX_UPLOAD_SIZE", "not-a-number")
	t.Setenv("IMAGE_PROXY_RULES", "http://10.0.0.5:3000=>/img")
	t.Setenv("SECURE_COOKIES", "true")

	cfg := Load()

	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(defaultMaxUploadSize), cfg.MaxUploadSize)
	assert.Equal(t, []ProxyRule{{Origin: "http://10.0.0.5:3000", Path: "/img"}}, cfg.ImageProxyRules)
	assert.True(t, cfg.SecureCookies)
}

func TestParseProxyRules(t *testing.T) {
	rules, err := ParseProxyRules(" http://a:1/ => /a/ , http://b:2=>/b ,")
	require.NoError(t, err)
	assert.Equal(t, []ProxyRule{
		{Origin: "http://a:1", Path: "/a"},
		{Origin: "http://b:2", Path: "/b"},
	}, rules)

	_, err = ParseProxyRules("http://a:1=>a")
	assert.Error(t, err)

	_, err = ParseProxyRules("http://a:1")
	assert.Error(t, err)
}
