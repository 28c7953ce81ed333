package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/hms-availability-resolver/internal/adapters/in/http"
	"github.com/suchimauz/hms-availability-resolver/internal/adapters/in/rabbitmq"
	"github.com/suchimauz/hms-availability-resolver/internal/adapters/out/backend"
	"github.com/suchimauz/hms-availability-resolver/internal/adapters/out/cache"
	"github.com/suchimauz/hms-availability-resolver/internal/adapters/out/logger"
	"github.com/suchimauz/hms-availability-resolver/internal/config"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/out"
	"github.com/suchimauz/hms-availability-resolver/internal/core/services"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера с таймзоной
	mainLogger, err := logger.NewConsoleLogger(cfg.App.Timezone)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := mainLogger.WithModule("Main")

	logger.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"rabbitmqEnabled": cfg.RabbitMq.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
		"calendarWindow":  cfg.Calendar.WindowDays,
	})

	// Настройка Gin в зависимости от окружения
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Инициализация адаптеров
	backendAdapter := backend.NewBackendAdapter(cfg, logger.WithModule("BackendAdapter"))

	var cacheAdapter out.CachePort
	if cfg.Cache.Enabled {
		adapter, err := cache.NewCacheAdapter(cfg, logger.WithModule("CacheAdapter"))
		if err != nil {
			logger.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		cacheAdapter = adapter
	}

	// Инициализация сервиса
	availabilityService := services.NewAvailabilityService(
		backendAdapter,
		cacheAdapter,
		cfg,
		logger.WithModule("AvailabilityService"),
	)

	// Настройка HTTP сервера
	router := gin.Default()
	controller := http.NewAvailabilityController(availabilityService, cfg)
	controller.RegisterRoutes(router)

	// Настройка RabbitMQ слушателя только если он включен
	if cfg.RabbitMq.Enabled {
		listener, err := rabbitmq.NewCacheHitListener(
			availabilityService,
			cfg,
			logger.WithModule("RabbitMQListener"),
		)
		if err != nil {
			logger.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := listener.Start(ctx); err != nil {
			logger.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		defer func() {
			if err := listener.Stop(); err != nil {
				logger.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			logger.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	logger.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})
}
