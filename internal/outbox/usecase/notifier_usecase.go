// Package usecase implements delivery of outbox events to downstream collaborators.
package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/database"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/outbox/domain"
)

// Config holds notifier configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// EventRepository defines outbox event repository operations
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
}

// EventProcessor defines the interface for delivering events to collaborators
type EventProcessor interface {
	Process(ctx context.Context, event *domain.Event) error
}

// NotifierUseCase defines the interface for the outbox notifier
type NotifierUseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// Notifier polls the outbox and delivers pending events. A delivery failure
// leaves the event pending, so downstream delivery is at-least-once.
type Notifier struct {
	config         Config
	txManager      database.TxManager
	eventRepo      EventRepository
	eventProcessor EventProcessor
	logger         *slog.Logger
}

// NewNotifier creates a new Notifier
func NewNotifier(
	config Config,
	txManager database.TxManager,
	eventRepo EventRepository,
	eventProcessor EventProcessor,
	logger *slog.Logger,
) *Notifier {
	return &Notifier{
		config:         config,
		txManager:      txManager,
		eventRepo:      eventRepo,
		eventProcessor: eventProcessor,
		logger:         logger,
	}
}

// Start starts the outbox delivery loop
func (n *Notifier) Start(ctx context.Context) error {
	if n.logger != nil {
		n.logger.Info("starting outbox notifier",
			slog.Duration("interval", n.config.Interval),
			slog.Int("batch_size", n.config.BatchSize),
		)
	}

	ticker := time.NewTicker(n.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if n.logger != nil {
				n.logger.Info("stopping outbox notifier")
			}
			return ctx.Err()
		case <-ticker.C:
			if err := n.ProcessEvents(ctx); err != nil {
				if n.logger != nil {
					n.logger.Error("failed to process events", slog.Any("error", err))
				}
			}
		}
	}
}

// ProcessEvents retrieves and delivers pending events from the outbox in a transaction
func (n *Notifier) ProcessEvents(ctx context.Context) error {
	return n.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := n.eventRepo.GetPendingEvents(ctx, n.config.BatchSize)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		if n.logger != nil {
			n.logger.Info("delivering events", slog.Int("count", len(events)))
		}

		for _, event := range events {
			if err := n.deliverEvent(ctx, event); err != nil {
				if n.logger != nil {
					n.logger.Error("failed to deliver event",
						slog.String("event_id", event.ID.String()),
						slog.String("event_type", event.EventType),
						slog.Any("error", err),
					)
				}

				event.Retries++
				errorMsg := err.Error()
				event.LastError = &errorMsg

				if event.Retries >= n.config.MaxRetries {
					event.Status = domain.EventStatusFailed
				}

				if err := n.eventRepo.Update(ctx, event); err != nil {
					return err
				}
				continue
			}

			now := time.Now()
			event.Status = domain.EventStatusProcessed
			event.ProcessedAt = &now

			if err := n.eventRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		return nil
	})
}

func (n *Notifier) deliverEvent(ctx context.Context, event *domain.Event) error {
	if n.logger != nil {
		n.logger.Info("delivering event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
		)
	}

	return n.eventProcessor.Process(ctx, event)
}

// LoggingEventProcessor delivers events by logging them. It stands in for the
// kitchen-display and cash-reconciliation collaborators in single-node deployments.
type LoggingEventProcessor struct {
	logger *slog.Logger
}

// NewLoggingEventProcessor creates a new LoggingEventProcessor
func NewLoggingEventProcessor(logger *slog.Logger) *LoggingEventProcessor {
	return &LoggingEventProcessor{
		logger: logger,
	}
}

// Process handles event delivery with structured logging
func (p *LoggingEventProcessor) Process(ctx context.Context, event *domain.Event) error {
	switch event.EventType {
	case domain.EventTypePaymentConfirmed:
		var payload domain.PaymentConfirmedPayload
		if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
			return err
		}

		if p.logger != nil {
			p.logger.Info("payment confirmed",
				slog.String("order_id", payload.OrderID.String()),
				slog.String("payment_method", payload.PaymentMethod),
				slog.Float64("amount", payload.Amount),
				slog.String("confirmed_by", payload.ConfirmedBy),
			)
		}
	default:
		if p.logger != nil {
			p.logger.Warn("unknown event type", slog.String("event_type", event.EventType))
		}
	}

	return nil
}
