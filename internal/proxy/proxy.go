// Package proxy serves the same-origin paths that image URLs are rewritten to.
package proxy

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/imageurl"
)

// NewHandler proxies requests under rule.To to the rule.From origin with the
// prefix stripped.
func NewHandler(rule imageurl.Rule, logger *slog.Logger) (gin.HandlerFunc, error) {
	target, err := url.Parse(rule.From)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy origin %q: %w", rule.From, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid proxy origin %q", rule.From)
	}
	prefix := strings.TrimRight(rule.To, "/")

	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		path := strings.TrimPrefix(req.URL.Path, prefix)
		if path == "" {
			path = "/"
		}
		req.URL.Path = path
		req.URL.RawPath = ""

		director(req)
		req.Host = target.Host
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.ErrorContext(r.Context(), "proxy error",
			slog.String("upstream", rule.From),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"error": "service unavailable"}`)
	}

	return func(c *gin.Context) {
		proxy.ServeHTTP(c.Writer, c.Request)
	}, nil
}

// Register mounts GET and HEAD proxies for every rule.
func Register(router gin.IRoutes, rules []imageurl.Rule, logger *slog.Logger) error {
	for _, rule := range rules {
		handler, err := NewHandler(rule, logger)
		if err != nil {
			return err
		}

		route := strings.TrimRight(rule.To, "/") + "/*path"
		router.GET(route, handler)
		router.HEAD(route, handler)
		logger.Info("proxy route", slog.String("route", route), slog.String("upstream", rule.From))
	}
	return nil
}
