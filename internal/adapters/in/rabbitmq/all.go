package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/out"
)

func (l *CacheHitListener) startAllQueue(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msgs, consumerID, err := l.setupQueue(queueSetup{
		Exchange: l.cfg.RabbitMq.QueueConfig.AllQueueExchange,
		Queue:    l.cfg.RabbitMq.QueueConfig.AllQueueName,
		Bind:     l.cfg.RabbitMq.QueueConfig.AllQueueBind,
	})
	if err != nil {
		return err
	}

	l.consumeLoop(ctx, l.cfg.RabbitMq.QueueConfig.AllQueueName, consumerID, msgs, l.processAllMessage)

	return nil
}

// Полный сброс кэша, используется при массовых изменениях расписаний на бэкенде
func (l *CacheHitListener) processAllMessage(ctx context.Context, msg amqp.Delivery) error {
	routingKey, err := l.parseCacheMessageRoutingKey(msg)
	if err != nil {
		return fmt.Errorf("failed to parse routing key: %w", err)
	}

	if routingKey.ResourceType != CacheHitResourceTypeAll {
		l.logger.Debug("rabbitmq.message.skipped", out.LogFields{
			"expected": string(CacheHitResourceTypeAll),
			"actual":   string(routingKey.ResourceType),
		})
		return nil
	}

	if routingKey.CacheHitType != CacheHitTypeInvalidate {
		return nil
	}

	invalidateCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := l.useCase.InvalidateAllSlotsCache(invalidateCtx); err != nil {
		l.logger.Error("_all_.invalidate_cache.failed", out.LogFields{
			"error": err.Error(),
		})
		return err
	}

	l.logger.Info("_all_.cache.invalidated", nil)

	return nil
}
