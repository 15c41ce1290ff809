// Package publisher drains the checkout outbox into kafka so downstream
// services (fulfilment, licensing email) hear about completed orders even
// when the storefront crashed mid-checkout.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/repository"
)

const Topic = "storefront-orders"

// messageWriter is the slice of *kafka.Writer the poller uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type OutboxPoller struct {
	eventTick    time.Duration
	recoveryTick time.Duration
	repo         repository.RepoInterface
	writer       messageWriter
	logger       *zap.Logger
}

func NewOutboxPoller(repo repository.RepoInterface, logger *zap.Logger, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{
		eventTick:    time.Second,
		recoveryTick: 5 * time.Second,
		repo:         repo,
		writer:       w,
		logger:       logger,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	recoveryTicker := time.NewTicker(p.recoveryTick)
	defer eventTicker.Stop()
	defer recoveryTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-recoveryTicker.C:
			p.recoverStuckSessions(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, 100)
	if err != nil {
		p.logger.Error("fetch outbox events", zap.Error(err))
		return
	}

	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.logger.Error("publish outbox event",
				zap.Int64("event_id", event.ID), zap.Error(err))
			continue
		}
		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.logger.Error("mark outbox event processed",
				zap.Int64("event_id", event.ID), zap.Error(err))
		}
	}
}

// recoverStuckSessions finishes sessions whose payment was verified but whose
// outbox event never got enqueued. Completing them re-runs the transactional
// enqueue, so the next event tick picks the event up.
func (p *OutboxPoller) recoverStuckSessions(ctx context.Context) {
	sessions, err := p.repo.GetStuckSessions(ctx)
	if err != nil {
		p.logger.Error("get stuck sessions", zap.Error(err))
		return
	}
	for _, session := range sessions {
		p.logger.Info("recovering stuck checkout", zap.String("checkout_id", session.ID))

		payload, err := json.Marshal(map[string]any{
			"checkout_id":  session.ID,
			"user_id":      session.UserID,
			"order_id":     session.OrderID.String,
			"total_amount": session.TotalAmount,
			"completed_at": session.UpdatedAt,
		})
		if err != nil {
			p.logger.Error("marshal recovery payload",
				zap.String("checkout_id", session.ID), zap.Error(err))
			continue
		}

		if err := p.repo.CompleteSession(ctx, session.ID, payload); err != nil {
			p.logger.Error("complete stuck checkout",
				zap.String("checkout_id", session.ID), zap.Error(err))
			continue
		}
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *repository.OutboxEvent) error {
	msg := kafka.Message{
		// checkout_id keys the partition so one order's events stay ordered
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
