package main

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"

	"cardgolf/internal/game/card"
	"cardgolf/internal/network"
	"cardgolf/internal/services/cluster"
	"cardgolf/internal/services/events"
	"cardgolf/internal/session"

	log "github.com/sirupsen/logrus"
)

// ============================================================================
// Constantes de Configuração Padrão
// ============================================================================
const (
	defaultServiceName = "cardgolf-session"
	defaultServicePort = 7500
	defaultHealthPort  = 7500 // Por padrão, a mesma porta do serviço
)

// ============================================================================
// Lógica de Configuração
// ============================================================================

// Config armazena todas as configurações da aplicação.
type Config struct {
	ServiceName string
	ServicePort int
	HealthPort  int
	ConsulAddr  string // vazio desabilita o registro no Consul
	NatsURL     string // vazio desabilita a publicação de eventos
}

// loadConfig carrega a configuração a partir de variáveis de ambiente.
func loadConfig() (*Config, error) {
	serviceName := os.Getenv("GOLF_SERVICE_NAME")
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	servicePortStr := os.Getenv("GOLF_SERVICE_PORT")
	if servicePortStr == "" {
		servicePortStr = fmt.Sprintf("%d", defaultServicePort)
	}
	servicePort, err := strconv.Atoi(servicePortStr)
	if err != nil {
		return nil, fmt.Errorf("formato de GOLF_SERVICE_PORT inválido: %w", err)
	}

	healthPortStr := os.Getenv("HEALTH_CHECK_PORT")
	if healthPortStr == "" {
		healthPortStr = fmt.Sprintf("%d", defaultHealthPort)
	}
	healthPort, err := strconv.Atoi(healthPortStr)
	if err != nil {
		return nil, fmt.Errorf("formato de HEALTH_CHECK_PORT inválido: %w", err)
	}

	return &Config{
		ServiceName: serviceName,
		ServicePort: servicePort,
		HealthPort:  healthPort,
		ConsulAddr:  os.Getenv("CONSUL_HTTP_ADDR"),
		NatsURL:     os.Getenv("NATS_URL"),
	}, nil
}

// ============================================================================
// Função Main
// ============================================================================
func main() {
	// 1. CARREGA A CONFIGURAÇÃO
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Fatal: Falha ao carregar configuração: %v", err)
	}
	log.Infof("[Main] Configuração carregada: ServiceName=%s, Port=%d, HealthPort=%d",
		cfg.ServiceName, cfg.ServicePort, cfg.HealthPort)

	// 2. INICIA A LÓGICA DO JOGO
	if err := card.InitGlobalCatalog(); err != nil {
		log.Fatalf("Falha fatal ao inicializar o catálogo de cartas: %v", err)
	}
	log.Info("[Main] Catálogo de cartas inicializado com sucesso.")

	var publisher *events.Publisher
	if cfg.NatsURL != "" {
		publisher, err = events.Connect(cfg.NatsURL)
		if err != nil {
			log.Fatalf("Fatal: Falha ao conectar ao NATS em %s: %v", cfg.NatsURL, err)
		}
		defer publisher.Close()
		log.Infof("[Main] Publicador de eventos conectado ao NATS em %s.", cfg.NatsURL)
	}

	// GOLF_RAND_SEED fixa o embaralhamento para reproduzir partidas em testes
	// de integração.
	seed1, seed2 := rand.Uint64(), rand.Uint64()
	if seedStr := os.Getenv("GOLF_RAND_SEED"); seedStr != "" {
		seed, err := strconv.ParseUint(seedStr, 10, 64)
		if err != nil {
			log.Fatalf("Fatal: formato de GOLF_RAND_SEED inválido: %v", err)
		}
		seed1, seed2 = seed, seed
	}
	rng := rand.New(rand.NewPCG(seed1, seed2))
	gameHandler := session.NewGameHandler(rng, publisher)
	log.Info("[Main] GameHandler criado.")

	server := network.NewServer(gameHandler)
	log.Info("[Main] Servidor de rede criado.")

	// 3. CONFIGURA OS HANDLERS HTTP
	// Registra o health check para o Consul.
	http.HandleFunc("/health", cluster.NewBasicHealthHandler())

	// 4. REGISTRA O SERVIÇO NO CONSUL (opcional)
	if cfg.ConsulAddr != "" {
		log.Infof("[Main] Registrando serviço '%s' no Consul...", cfg.ServiceName)
		err = cluster.RegisterServiceInConsul(cfg.ServiceName, cfg.ServicePort, cfg.HealthPort, cfg.ConsulAddr)
		if err != nil {
			log.Fatalf("Fatal: Falha ao registrar serviço no Consul: %v", err)
		}
	}

	// 5. INICIA O SERVIDOR PRINCIPAL
	// A chamada server.Listen é bloqueante e serve as conexões WebSocket (/ws)
	// e o health check (/health).
	address := fmt.Sprintf("0.0.0.0:%d", cfg.ServicePort)
	log.Infof("[Main] Servidor principal (WebSocket & HTTP) iniciado em %s.", address)

	if err := server.Listen(address); err != nil {
		log.Fatalf("Falha fatal ao iniciar o servidor de rede: %v", err)
	}
}
