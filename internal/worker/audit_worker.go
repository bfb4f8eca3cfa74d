// Package worker appends consumed ledger events to the audit journal.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"sunduq/internal/amqp"
	"sunduq/internal/storage"
)

// AuditWorker turns ledger mutation events into audit journal rows. The
// journal is append-only and lives next to the ledger so one backup covers
// both.
type AuditWorker struct {
	store storage.Store
}

func NewAuditWorker(store storage.Store) *AuditWorker {
	return &AuditWorker{store: store}
}

// HandleEvent processes a single ledger event. Returning an error requeues
// the delivery, so only transient store failures should propagate.
func (w *AuditWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	if event.Entity == "" || event.Action == "" {
		slog.WarnContext(ctx, "Dropping event without entity or action",
			"entity", event.Entity, "action", event.Action)
		return nil
	}

	entry := storage.AuditEntry{
		Entity:   event.Entity,
		Action:   event.Action,
		RecordID: event.RecordID,
		Detail:   event.Detail,
		At:       event.Timestamp,
	}
	if err := w.store.AppendAudit(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	slog.InfoContext(ctx, "Recorded audit entry",
		"entity", event.Entity,
		"action", event.Action,
		"record_id", event.RecordID)
	return nil
}
