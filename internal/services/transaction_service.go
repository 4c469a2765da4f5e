package services

import (
	"context"
	"fmt"
	"log/slog"

	"mitcash/internal/amqp"
	"mitcash/internal/core"
	"mitcash/internal/store"
)

// TransactionService orchestrates transaction writes across the store and
// the change-event queue.
type TransactionService struct {
	store      store.Store
	amqpClient *amqp.Client
}

func NewTransactionService(s store.Store, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		store:      s,
		amqpClient: amqpClient,
	}
}

// Create validates and saves a transaction, then publishes a change event.
// The event is best-effort: a publish failure never fails the write.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	id, err := s.store.Create(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	s.publishEvent(ctx, tx.Kind, id, amqp.ActionCreated)
	return id, nil
}

// Update replaces a transaction's mutable fields. ID and kind never change.
func (s *TransactionService) Update(ctx context.Context, kind core.Kind, id string, tx core.Transaction) error {
	tx.Kind = kind
	if err := tx.Validate(); err != nil {
		return err
	}

	if err := s.store.Update(ctx, kind, id, tx); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	s.publishEvent(ctx, kind, id, amqp.ActionUpdated)
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, kind core.Kind, id string) error {
	if err := s.store.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publishEvent(ctx, kind, id, amqp.ActionDeleted)
	return nil
}

func (s *TransactionService) publishEvent(ctx context.Context, kind core.Kind, id string, action amqp.Action) {
	if s.amqpClient == nil {
		return
	}

	msg := amqp.NewTransactionEventMessage(kind, id, action)
	if err := s.amqpClient.PublishTransactionEvent(ctx, msg); err != nil {
		// The write already succeeded locally.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"kind", kind, "id", id, "action", action, "error", err)
	}
}

func (s *TransactionService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close amqp client: %w", err)
		}
	}
	return nil
}
