package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/out"
)

type CacheAvailabilityMessage struct {
	ID           string `json:"id"`
	DoctorID     string `json:"doctor_id"`
	ResourceType string `json:"resourceType"`
}

func (l *CacheHitListener) startAvailabilityQueue(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msgs, consumerID, err := l.setupQueue(queueSetup{
		Exchange: l.cfg.RabbitMq.QueueConfig.AvailabilityQueueExchange,
		Queue:    l.cfg.RabbitMq.QueueConfig.AvailabilityQueueName,
		Bind:     l.cfg.RabbitMq.QueueConfig.AvailabilityQueueBind,
	})
	if err != nil {
		return err
	}

	l.consumeLoop(ctx, l.cfg.RabbitMq.QueueConfig.AvailabilityQueueName, consumerID, msgs, l.processAvailabilityMessage)

	return nil
}

func (l *CacheHitListener) processAvailabilityMessage(ctx context.Context, msg amqp.Delivery) error {
	routingKey, err := l.parseCacheMessageRoutingKey(msg)
	if err != nil {
		return fmt.Errorf("failed to parse routing key: %w", err)
	}

	if routingKey.ResourceType != CacheHitResourceTypeAvailability {
		l.logger.Debug("rabbitmq.message.skipped", out.LogFields{
			"expected": string(CacheHitResourceTypeAvailability),
			"actual":   string(routingKey.ResourceType),
		})
		return nil
	}

	var msgJson CacheAvailabilityMessage
	if err := json.Unmarshal(msg.Body, &msgJson); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	l.logger.Info("availability.message.received", out.LogFields{
		"id":           msgJson.ID,
		"doctorId":     msgJson.DoctorID,
		"cacheHitType": string(routingKey.CacheHitType),
	})

	// И store, и invalidate означают, что расписание врача поменялось
	// на стороне бэкенда: закэшированные слоты этого врача больше не актуальны
	invalidateCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := l.useCase.InvalidateDoctorCache(invalidateCtx, msgJson.DoctorID); err != nil {
		l.logger.Error("availability.invalidate_doctor_cache.failed", out.LogFields{
			"doctorId": msgJson.DoctorID,
			"error":    err.Error(),
		})
		return err
	}

	l.logger.Info("availability.message.invalidated", out.LogFields{
		"doctorId": msgJson.DoctorID,
	})

	return nil
}
