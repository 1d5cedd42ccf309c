package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL        = "http://localhost:3000"
	defaultPort          = "8080"
	defaultMaxUploadSize = 10 * 1024 * 1024
)

type Config struct {
	Port string

	// APIURL is the product API base URL, used when Consul has no healthy
	// product-service instance.
	APIURL          string
	RequestTimeout  time.Duration
	MaxUploadSize   int64
	ImageProxyRules []ProxyRule

	RedisAddr     string
	SessionTTL    time.Duration
	SecureCookies bool

	ConsulAddr    string
	AdvertiseHost string

	RabbitMQURL string

	ShutdownTimeout time.Duration
	GinMode         string
}

// ProxyRule maps an insecure upstream origin onto a same-origin path prefix
type ProxyRule struct {
	Origin string
	Path   string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	// Missing .env is fine, deployments use real env vars
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", defaultPort),
		APIURL:          strings.TrimRight(getEnv("API_URL", defaultAPIURL), "/"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		MaxUploadSize:   getEnvInt64("MAX_UPLOAD_SIZE", defaultMaxUploadSize),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		SessionTTL:      getEnvDuration("SESSION_TTL", 10*time.Minute),
		SecureCookies:   getEnvBool("SECURE_COOKIES", false),
		ConsulAddr:      os.Getenv("CONSUL_ADDR"),
		AdvertiseHost:   os.Getenv("ADVERTISE_HOST"),
		RabbitMQURL:     os.Getenv("RABBITMQ_URL"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		GinMode:         getEnv("GIN_MODE", "release"),
	}

	rules, err := ParseProxyRules(os.Getenv("IMAGE_PROXY_RULES"))
	if err != nil {
		log.Printf("⚠️ Ignoring IMAGE_PROXY_RULES: %v", err)
	}
	cfg.ImageProxyRules = rules

	return cfg
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

// ParseProxyRules parses "origin=>/path,origin2=>/path2".
func ParseProxyRules(s string) ([]ProxyRule, error) {
	var rules []ProxyRule
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		origin, path, ok := strings.Cut(entry, "=>")
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		path = strings.TrimRight(strings.TrimSpace(path), "/")
		if !ok || origin == "" || !strings.HasPrefix(path, "/") {
			return nil, fmt.Errorf("invalid proxy rule %q", entry)
		}

		rules = append(rules, ProxyRule{Origin: origin, Path: path})
	}
	return rules, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
		log.Printf("⚠️ Invalid int value for %s: %s, using default: %d", key, value, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("⚠️ Invalid duration for %s: %s, using default: %s", key, value, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("⚠️ Invalid bool value for %s: %s, using default: %t", key, value, fallback)
	}
	return fallback
}
