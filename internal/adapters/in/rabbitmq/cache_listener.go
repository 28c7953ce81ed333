package rabbitmq

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/hms-availability-resolver/internal/config"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/in"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/out"
)

// CacheHitListener слушает события изменения доступности от бэкенда
// и инвалидирует кэш слотов. Это явный канал сообщений вместо
// само-обновления по таймеру или сигналов из UI.
type CacheHitListener struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	useCase in.AvailabilityUseCase
	cfg     *config.Config
	logger  out.LoggerPort

	consumerWg      sync.WaitGroup
	consumerCancels []chan struct{}
	cancelsMu       sync.Mutex
}

type (
	CacheHitType         string
	CacheHitResourceType string
)

type CacheMessageRoutingKey struct {
	Source       string
	Receiver     string
	ResourceType CacheHitResourceType
	CacheHitType CacheHitType
}

const (
	CacheHitResourceTypeAll          CacheHitResourceType = "_all_"
	CacheHitResourceTypeAvailability CacheHitResourceType = "availability"
)

const (
	CacheHitTypeStore      CacheHitType = "store"
	CacheHitTypeInvalidate CacheHitType = "invalidate"
)

func NewCacheHitListener(useCase in.AvailabilityUseCase, cfg *config.Config, logger out.LoggerPort) (*CacheHitListener, error) {
	if !cfg.RabbitMq.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, listener will not be started",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMq.AmqpUri)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMq.AmqpUri,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	return &CacheHitListener{
		conn:    conn,
		channel: channel,
		useCase: useCase,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (l *CacheHitListener) Start(ctx context.Context) error {
	if err := l.startAvailabilityQueue(ctx); err != nil {
		return err
	}
	l.logger.Info("availability.queue.started", out.LogFields{
		"queue": l.cfg.RabbitMq.QueueConfig.AvailabilityQueueName,
	})

	if err := l.startAllQueue(ctx); err != nil {
		return err
	}
	l.logger.Info("_all_.queue.started", out.LogFields{
		"queue": l.cfg.RabbitMq.QueueConfig.AllQueueName,
	})

	return nil
}

func (l *CacheHitListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	l.cancelsMu.Lock()
	for _, cancel := range l.consumerCancels {
		close(cancel)
	}
	l.consumerCancels = nil
	l.cancelsMu.Unlock()

	l.consumerWg.Wait()

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}

func (l *CacheHitListener) addConsumerCancel(cancel chan struct{}) {
	l.cancelsMu.Lock()
	l.consumerCancels = append(l.consumerCancels, cancel)
	l.cancelsMu.Unlock()
}

func (l *CacheHitListener) closeConnection(reason string) {
	l.logger.Error("rabbitmq.connection.closing", out.LogFields{
		"reason": reason,
	})

	if l.channel != nil {
		l.channel.Close()
	}
	if l.conn != nil {
		l.conn.Close()
	}
}

type queueSetup struct {
	Exchange string
	Queue    string
	Bind     string
}

// setupQueue объявляет обменник и очередь с привязкой, с тремя попытками на шаг
func (l *CacheHitListener) setupQueue(setup queueSetup) (<-chan amqp.Delivery, string, error) {
	if err := l.withRetries("exchange_declare", setup.Exchange, func() error {
		return l.channel.ExchangeDeclare(
			setup.Exchange,
			"topic",
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,
		)
	}); err != nil {
		return nil, "", err
	}

	if err := l.withRetries("queue_declare", setup.Queue, func() error {
		_, err := l.channel.QueueDeclare(
			setup.Queue,
			true,  // durable
			true,  // delete when unused
			false, // exclusive
			false, // no-wait
			nil,
		)
		return err
	}); err != nil {
		return nil, "", err
	}

	if err := l.withRetries("queue_bind", setup.Queue, func() error {
		return l.channel.QueueBind(setup.Queue, setup.Bind, setup.Exchange, false, nil)
	}); err != nil {
		return nil, "", err
	}

	consumerID := fmt.Sprintf("consumer-%s-%d", setup.Queue, time.Now().UnixNano())

	var msgs <-chan amqp.Delivery
	if err := l.withRetries("consume", setup.Queue, func() error {
		var err error
		msgs, err = l.channel.Consume(
			setup.Queue,
			consumerID,
			false, // auto-ack отключен, подтверждаем вручную после обработки
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		return err
	}); err != nil {
		return nil, "", err
	}

	l.logger.Info("rabbitmq.queue.ready", out.LogFields{
		"queue":    setup.Queue,
		"binding":  setup.Bind,
		"exchange": setup.Exchange,
	})

	return msgs, consumerID, nil
}

func (l *CacheHitListener) withRetries(step, target string, fn func() error) error {
	var err error
	for attempts := 0; attempts < 3; attempts++ {
		if err = fn(); err == nil {
			return nil
		}

		l.logger.Warn("rabbitmq."+step+".retry", out.LogFields{
			"target":  target,
			"attempt": attempts + 1,
			"error":   err.Error(),
		})

		time.Sleep(500 * time.Millisecond)
	}

	l.closeConnection(fmt.Sprintf("failed %s for %s: %s", step, target, err.Error()))
	return fmt.Errorf("failed %s for %s: %w", step, target, err)
}

// consumeLoop крутит обработку сообщений очереди до отмены
func (l *CacheHitListener) consumeLoop(
	ctx context.Context,
	queue string,
	consumerID string,
	msgs <-chan amqp.Delivery,
	process func(context.Context, amqp.Delivery) error,
) {
	consumerCancel := make(chan struct{})
	l.addConsumerCancel(consumerCancel)

	l.consumerWg.Add(1)
	go func() {
		defer l.consumerWg.Done()
		l.logger.Info("rabbitmq.consumer.started", out.LogFields{
			"queue":      queue,
			"consumerID": consumerID,
		})

		for {
			select {
			case <-ctx.Done():
				l.logger.Info("rabbitmq.consumer.stopping_by_context", out.LogFields{
					"queue": queue,
				})
				return
			case <-consumerCancel:
				l.logger.Info("rabbitmq.consumer.stopping_by_cancel", out.LogFields{
					"queue": queue,
				})
				return
			case msg, ok := <-msgs:
				if !ok {
					l.logger.Warn("rabbitmq.consumer.channel_closed", out.LogFields{
						"queue": queue,
					})
					l.closeConnection(fmt.Sprintf("consumer channel closed for queue %s", queue))
					return
				}

				l.logger.Debug("rabbitmq.message.received", out.LogFields{
					"queue":      queue,
					"routingKey": msg.RoutingKey,
					"messageId":  msg.MessageId,
				})

				if err := process(ctx, msg); err != nil {
					l.logger.Error("rabbitmq.process_message.failed", out.LogFields{
						"queue":      queue,
						"routingKey": msg.RoutingKey,
						"error":      err.Error(),
					})

					// Отклоняем сообщение при ошибке, но не возвращаем в очередь
					if err := msg.Nack(false, false); err != nil {
						l.logger.Error("rabbitmq.message.nack_failed", out.LogFields{
							"error": err.Error(),
						})
					}
					continue
				}

				if err := msg.Ack(false); err != nil {
					l.logger.Error("rabbitmq.message.ack_failed", out.LogFields{
						"error": err.Error(),
					})
				}
			}
		}
	}()
}

// Пример routingKey:
// hms.availability-resolver.availability.v1.invalidate
// hms.availability-resolver.availability.v1.store
// hms.availability-resolver._all_.v1.invalidate
func (l *CacheHitListener) parseCacheMessageRoutingKey(msg amqp.Delivery) (CacheMessageRoutingKey, error) {
	routingKey := msg.RoutingKey
	parts := strings.Split(routingKey, ".")

	if len(parts) < 5 {
		return CacheMessageRoutingKey{}, fmt.Errorf("invalid routing key: %s", routingKey)
	}

	return CacheMessageRoutingKey{
		Source:       parts[0],
		Receiver:     parts[1],
		ResourceType: CacheHitResourceType(parts[2]),
		CacheHitType: CacheHitType(parts[4]),
	}, nil
}
