package consul

import (
	"fmt"
	"strconv"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"

	"incident-service/config"
)

type ConsulConn struct {
	logger    *zap.SugaredLogger
	cfg       *config.Config
	client    *consulapi.Client
	serviceID string
}

func NewConsulConn(logger *zap.SugaredLogger, cfg *config.Config) *ConsulConn {
	return &ConsulConn{
		logger:    logger,
		cfg:       cfg,
		serviceID: fmt.Sprintf("%s-%s-%s", cfg.ServiceName, cfg.ServiceHost, cfg.Port),
	}
}

// Connect creates the consul client and registers this instance with an
// HTTP health check. Registration failure is logged, not fatal: the service
// still works without the registry.
func (c *ConsulConn) Connect() *consulapi.Client {
	consulCfg := consulapi.DefaultConfig()
	consulCfg.Address = c.cfg.ConsulAddress

	client, err := consulapi.NewClient(consulCfg)
	if err != nil {
		c.logger.Errorf("Failed to create consul client: %v", err)
		return nil
	}
	c.client = client

	port, err := strconv.Atoi(c.cfg.Port)
	if err != nil {
		c.logger.Errorf("Invalid service port %q: %v", c.cfg.Port, err)
		return client
	}

	registration := &consulapi.AgentServiceRegistration{
		ID:      c.serviceID,
		Name:    c.cfg.ServiceName,
		Address: c.cfg.ServiceHost,
		Port:    port,
		Check: &consulapi.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%s/health", c.cfg.ServiceHost, c.cfg.Port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		c.logger.Errorf("Failed to register with consul: %v", err)
		return client
	}

	c.logger.Infof("Registered %s with consul at %s", c.serviceID, c.cfg.ConsulAddress)
	return client
}

func (c *ConsulConn) Deregister() {
	if c.client == nil {
		return
	}
	if err := c.client.Agent().ServiceDeregister(c.serviceID); err != nil {
		c.logger.Errorf("Failed to deregister from consul: %v", err)
		return
	}
	c.logger.Infof("Deregistered %s from consul", c.serviceID)
}
