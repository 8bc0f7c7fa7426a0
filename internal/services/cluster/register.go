package cluster

import (
	"fmt"
	"os"

	consul "github.com/hashicorp/consul/api"
	log "github.com/sirupsen/logrus"
)

// RegisterServiceInConsul announces this instance to Consul with an HTTP
// health check on /health. The agent fills in the container's own address,
// so only the ports travel in the registration.
func RegisterServiceInConsul(serviceName string, servicePort, healthPort int, consulAddr string) error {
	config := consul.DefaultConfig()
	config.Address = consulAddr

	consulClient, err := consul.NewClient(config)
	if err != nil {
		return fmt.Errorf("creating consul client: %w", err)
	}

	// O hostname é perfeito para criar um ID de serviço único.
	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	serviceID := fmt.Sprintf("%s-%s", serviceName, hostname)

	registration := &consul.AgentServiceRegistration{
		ID:   serviceID,
		Name: serviceName,
		Port: servicePort,

		Check: &consul.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s:%d/health", hostname, healthPort),
			Timeout:  "5s",
			Interval: "10s",
			// Desregistra automaticamente o serviço se ele ficar em
			// estado crítico por mais de 1 minuto.
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := consulClient.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("registering service in consul: %w", err)
	}

	log.Infof("[Cluster] Service '%s' registered in Consul with ID: %s", serviceName, serviceID)
	return nil
}
