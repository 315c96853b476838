package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"valuation-service/internal/constants"
	"valuation-service/internal/contextkeys"
	"valuation-service/internal/contracts"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
)

const publishTimeout = 10 * time.Second

// messagePublisher - то, что нужно адаптеру от rabbitmq_producer.Publisher
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// ValuationResultPublisherAdapter публикует итоги оценки в обменник оценки
type ValuationResultPublisherAdapter struct {
	producer messagePublisher
	now      func() time.Time
}

func NewValuationResultPublisherAdapter(producer messagePublisher) (*ValuationResultPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &ValuationResultPublisherAdapter{producer: producer, now: time.Now}, nil
}

func (a *ValuationResultPublisherAdapter) ReportCompleted(ctx context.Context, requestID string, result domain.ValuationResult, report string) error {
	event := contracts.NewValuationCompletedEvent(requestID, result, report)
	return a.publish(ctx, requestID, constants.RoutingKeyValuationCompleted, constants.EventValuationCompleted, event)
}

func (a *ValuationResultPublisherAdapter) ReportFailed(ctx context.Context, requestID string, cause error) error {
	event := contracts.NewValuationFailedEvent(requestID, cause, a.now().UTC())
	return a.publish(ctx, requestID, constants.RoutingKeyValuationFailed, constants.EventValuationFailed, event)
}

func (a *ValuationResultPublisherAdapter) publish(ctx context.Context, requestID, routingKey, eventType string, event interface{}) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "ValuationResultPublisherAdapter",
		"routing_key": routingKey,
		"request_id":  requestID,
		"event_type":  eventType,
	})

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal %s: %w", eventType, err)
	}
	// Исходящее событие проверяется той же схемой, что и у потребителей
	if err := contracts.ValidateEvent(eventType, constants.ContractVersion, body); err != nil {
		logger.Error("Outgoing event failed schema validation", err, nil)
		return fmt.Errorf("rabbitmq adapter: %s does not match its schema: %w", eventType, err)
	}

	msg := amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     a.now(),
		CorrelationId: requestID,
		Headers: amqp.Table{
			constants.HeaderEventType:    eventType,
			constants.HeaderEventVersion: constants.ContractVersion,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	logger.Info("Publishing valuation result", nil)
	if err := a.producer.Publish(publishCtx, routingKey, msg); err != nil {
		logger.Error("Failed to publish valuation result", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish %s for request %s: %w", eventType, requestID, err)
	}

	logger.Info("Successfully published valuation result", nil)
	return nil
}
