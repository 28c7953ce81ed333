package config

import (
	"strings"

	"github.com/caarlos0/env/v6"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"Europe/Moscow"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Backend struct {
		URL      string `env:"HMS_BACKEND_URL"`
		Username string `env:"HMS_BACKEND_USERNAME"`
		Password string `env:"HMS_BACKEND_PASSWORD"`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"availability_resolver:availability_resolver"`
		BasicClients       []ConfigBasicClient
	}

	RabbitMq struct {
		Enabled     bool   `env:"RABBITMQ_ENABLED"`
		AmqpUri     string `env:"RABBITMQ_URL"`
		QueueConfig struct {
			AvailabilityQueueName     string `env:"RABBITMQ_AVAILABILITY_QUEUE" envDefault:"hms.availability-resolver.availability"`
			AvailabilityQueueExchange string `env:"RABBITMQ_AVAILABILITY_EXCHANGE" envDefault:"hms"`
			AvailabilityQueueBind     string `env:"RABBITMQ_AVAILABILITY_BIND" envDefault:"hms.availability-resolver.availability.#"`
			AllQueueName              string `env:"RABBITMQ_ALL_QUEUE" envDefault:"hms.availability-resolver._all_"`
			AllQueueExchange          string `env:"RABBITMQ_ALL_EXCHANGE" envDefault:"hms"`
			AllQueueBind              string `env:"RABBITMQ_ALL_BIND" envDefault:"hms.availability-resolver._all_.#"`
		}
	}

	Cache struct {
		Enabled   bool `env:"CACHE_ENABLED"`
		SlotsSize int  `env:"CACHE_SLOTS_SIZE" envDefault:"1000"`
	}

	Calendar struct {
		WindowDays int `env:"CALENDAR_WINDOW_DAYS" envDefault:"30"`
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))

	// Разделение basic-клиентов
	if cfg.Auth.BasicClients == nil {
		cfg.Auth.BasicClients = []ConfigBasicClient{}
	}
	clientPairs := strings.Split(cfg.Auth.BasicClientsString, ",")
	for _, pair := range clientPairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			cfg.Auth.BasicClients = append(cfg.Auth.BasicClients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}

	return cfg, nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
