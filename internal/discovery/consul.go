package discovery

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/hashicorp/consul/api"
)

// ProductServiceName is the Consul name of the remote product API
const ProductServiceName = "product-service"

type ConsulClient struct {
	client *api.Client
	logger *slog.Logger
}

type ServiceConfig struct {
	Name string
	ID   string
	// Address advertised to Consul; the outbound IP when empty
	Address string
	Port    int
	Tags    []string
}

func NewConsulClient(addr string, logger *slog.Logger) (*ConsulClient, error) {
	config := api.DefaultConfig()
	config.Address = addr

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	// Test connection
	if _, err := client.Agent().Self(); err != nil {
		return nil, fmt.Errorf("failed to connect to Consul: %w", err)
	}

	logger.Info("connected to Consul", slog.String("addr", addr))

	return &ConsulClient{client: client, logger: logger}, nil
}

// getOutboundIP gets the preferred outbound IP of this machine
func getOutboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String()
}

// Register registers a service with an HTTP /health check
func (c *ConsulClient) Register(cfg ServiceConfig) error {
	host := cfg.Address
	if host == "" {
		host = getOutboundIP()
	}

	registration := &api.AgentServiceRegistration{
		ID:      cfg.ID,
		Name:    cfg.Name,
		Port:    cfg.Port,
		Address: host,
		Tags:    cfg.Tags,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s/health", net.JoinHostPort(host, fmt.Sprint(cfg.Port))),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}

	if err := c.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	c.logger.Info("registered service",
		slog.String("name", cfg.Name),
		slog.String("id", cfg.ID),
		slog.String("address", host),
		slog.Int("port", cfg.Port),
	)
	return nil
}

// Deregister removes a service from Consul
func (c *ConsulClient) Deregister(serviceID string) error {
	if err := c.client.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}

	c.logger.Info("deregistered service", slog.String("id", serviceID))
	return nil
}

// GetService returns the address of the first healthy instance of a service
func (c *ConsulClient) GetService(serviceName string) (string, int, error) {
	services, _, err := c.client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get service: %w", err)
	}

	if len(services) == 0 {
		return "", 0, fmt.Errorf("no healthy instances of %s found", serviceName)
	}

	entry := services[0]
	address := entry.Service.Address
	if address == "" && entry.Node != nil {
		address = entry.Node.Address
	}
	if address == "" {
		address = "localhost"
	}

	return address, entry.Service.Port, nil
}

// GetServiceURL returns the base URL for a service
func (c *ConsulClient) GetServiceURL(serviceName string) (string, error) {
	address, port, err := c.GetService(serviceName)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("http://%s", net.JoinHostPort(address, fmt.Sprint(port))), nil
}

// ResolveBaseURL looks a service up once and falls back to the configured URL.
func (c *ConsulClient) ResolveBaseURL(serviceName, fallback string) string {
	url, err := c.GetServiceURL(serviceName)
	if err != nil {
		c.logger.Warn("service not found in Consul, using configured URL",
			slog.String("service", serviceName),
			slog.String("url", fallback),
			slog.Any("error", err),
		)
		return fallback
	}

	c.logger.Info("resolved service", slog.String("service", serviceName), slog.String("url", url))
	return url
}
