package discovery

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/consul/api"

	"mocktest-service/internal/config"
	"mocktest-service/internal/logger"
)

type ServiceRegistry struct {
	client *api.Client
	config *config.Config
	log    *logger.Logger
}

// NewServiceRegistry returns nil when no Consul address is configured.
func NewServiceRegistry(cfg *config.Config, log *logger.Logger) (*ServiceRegistry, error) {
	if cfg.ConsulAddress == "" {
		log.Warn("Consul address is empty, service registration is disabled")
		return nil, nil
	}
	consulConfig := api.DefaultConfig()
	consulConfig.Address = cfg.ConsulAddress

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}
	return &ServiceRegistry{client: client, config: cfg, log: log}, nil
}

// Registration describes this instance with an HTTP check on /health.
func Registration(cfg *config.Config) (*api.AgentServiceRegistration, error) {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", cfg.Port, err)
	}
	return &api.AgentServiceRegistration{
		ID:      cfg.ServiceID,
		Name:    cfg.ServiceName,
		Port:    port,
		Address: cfg.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s:%s/health", cfg.ServiceAddress, cfg.Port),
			Interval: "10s",
			Timeout:  "5s",
		},
		Tags: []string{"mocktest", "llm"},
		Meta: map[string]string{"version": cfg.ServiceVersion},
	}, nil
}

func (sr *ServiceRegistry) Register() error {
	if sr == nil {
		return nil
	}
	registration, err := Registration(sr.config)
	if err != nil {
		return err
	}
	if err := sr.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register service with Consul: %w", err)
	}
	sr.log.Info("Successfully registered service with Consul", "service_id", sr.config.ServiceID)
	return nil
}

// Deregister removes the service from Consul
func (sr *ServiceRegistry) Deregister() error {
	if sr == nil {
		return nil
	}
	return sr.client.Agent().ServiceDeregister(sr.config.ServiceID)
}
