package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/client"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/config"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/discovery"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/handlers"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/imageurl"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/messaging"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/middleware"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/proxy"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/publisher"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/session"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/storefront"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/web"
)

const serviceName = "storefront"

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)

	shutdown := map[string]gfshutdown.Operation{}

	// Product API: Consul when available, API_URL otherwise
	apiURL := cfg.APIURL
	if cfg.ConsulAddr != "" {
		consul, err := discovery.NewConsulClient(cfg.ConsulAddr, logger)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Consul, using %s: %v", cfg.APIURL, err)
		} else {
			apiURL = consul.ResolveBaseURL(discovery.ProductServiceName, cfg.APIURL)

			port, _ := strconv.Atoi(cfg.Port)
			serviceID := serviceName + "-" + uuid.NewString()[:8]
			if err := consul.Register(discovery.ServiceConfig{
				Name:    serviceName,
				ID:      serviceID,
				Address: cfg.AdvertiseHost,
				Port:    port,
				Tags:    []string{"web", "storefront"},
			}); err != nil {
				log.Printf("⚠️ Failed to register with Consul: %v", err)
			} else {
				shutdown["consul"] = func(ctx context.Context) error {
					return consul.Deregister(serviceID)
				}
			}
		}
	}

	products := client.NewProductClient(apiURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger),
	)

	// Flash messages: Redis when configured, in-process otherwise
	var store session.Store = session.NewMemoryStore(cfg.SessionTTL)
	if cfg.RedisAddr != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisAddr, cfg.SessionTTL, logger)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis, using in-memory sessions: %v", err)
		} else {
			store = redisStore
		}
	}
	shutdown["sessions"] = func(ctx context.Context) error {
		return store.Close()
	}

	var events storefront.EventPublisher = publisher.Nop{}
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitMQURL, logger)
		if err != nil {
			log.Printf("⚠️ Failed to connect to RabbitMQ, events disabled: %v", err)
		} else if pub, err := publisher.NewProductPublisher(rabbitMQ); err != nil {
			log.Printf("⚠️ Failed to declare %s queue, events disabled: %v", publisher.ProductCreatedQueue, err)
			rabbitMQ.Close()
		} else {
			events = pub
			shutdown["rabbitmq"] = func(ctx context.Context) error {
				return rabbitMQ.Close()
			}
		}
	}

	rules := imageurl.DefaultRules()
	for _, r := range cfg.ImageProxyRules {
		rules = append(rules, imageurl.Rule{From: r.Origin, To: r.Path})
	}
	images := imageurl.NewResolver(rules...)

	tmpl, err := web.Templates()
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadSize
	router.SetHTMLTemplate(tmpl)
	router.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.Session(cfg.SecureCookies),
	)

	if err := proxy.Register(router, images.Rules(), logger); err != nil {
		log.Fatalf("Failed to set up image proxy: %v", err)
	}

	handler := handlers.NewStorefrontHandler(products, images, events, store, logger)
	handler.Register(router)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: http.MaxBytesHandler(router, cfg.MaxUploadSize+1<<20),
	}
	shutdown["http"] = func(ctx context.Context) error {
		return srv.Shutdown(ctx)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("🚀 Storefront starting on http://0.0.0.0%s", cfg.Addr())
	log.Printf("📦 Product API: %s", apiURL)

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout, shutdown)
	exitCode := <-wait
	log.Printf("👋 Storefront stopped with code %d", exitCode)
	os.Exit(exitCode)
}
