package proxy

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/imageurl"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// get drives the router through a real server; ReverseProxy needs a
// ResponseWriter that supports CloseNotify, which a recorder does not.
func get(t *testing.T, router http.Handler, path string) (*http.Response, string) {
	t.Helper()
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestProxyStripsPrefix(t *testing.T) {
	var gotPath, gotQuery, gotHost string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHost = r.Host
		w.Header().Set("Content-Type", "image/png")
		io.WriteString(w, "png-bytes")
	}))
	defer upstream.Close()

	router := gin.New()
	require.NoError(t, Register(router, []imageurl.Rule{{From: upstream.URL, To: "/api"}}, quietLogger()))

	resp, body := get(t, router, "/api/uploads/shoes.png?w=400")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "png-bytes", body)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "/uploads/shoes.png", gotPath)
	assert.Equal(t, "w=400", gotQuery)
	assert.Equal(t, upstream.Listener.Addr().String(), gotHost)
}

func TestProxyUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	origin := upstream.URL
	upstream.Close()

	router := gin.New()
	require.NoError(t, Register(router, []imageurl.Rule{{From: origin, To: "/api"}}, quietLogger()))

	resp, body := get(t, router, "/api/a.png")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.JSONEq(t, `{"error": "service unavailable"}`, body)
}

func TestProxyOnlyServesReads(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call: %s", r.Method)
	}))
	defer upstream.Close()

	router := gin.New()
	require.NoError(t, Register(router, []imageurl.Rule{{From: upstream.URL, To: "/api"}}, quietLogger()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewHandlerRejectsBadOrigin(t *testing.T) {
	_, err := NewHandler(imageurl.Rule{From: "not a url", To: "/api"}, quietLogger())
	assert.Error(t, err)
}
