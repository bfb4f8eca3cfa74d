// Package backup implements the portable backup document: a single JSON
// file carrying every ledger collection plus settings, exported for
// safekeeping and accepted back for a full restore.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sunduq/internal/core"
	"sunduq/internal/storage"
)

// CurrentVersion is written into every exported document.
const CurrentVersion = 1

// ErrInvalidBackup marks a document that must not be restored. This is the
// one hard failure the accounting flow surfaces to the user.
var ErrInvalidBackup = errors.New("invalid backup file")

// Document is the backup file shape.
type Document struct {
	Version   int                    `json:"version"`
	Timestamp string                 `json:"timestamp"`
	Settings  *core.Settings         `json:"settings"`
	Orders    []core.Order           `json:"orders"`
	Expenses  []core.Expense         `json:"expenses"`
	Funds     []core.FundTransaction `json:"funds"`
}

// Export renders the full persisted state as an indented JSON document.
func Export(snap storage.Snapshot, now time.Time) ([]byte, error) {
	settings := snap.Settings
	doc := Document{
		Version:   CurrentVersion,
		Timestamp: now.UTC().Format(time.RFC3339),
		Settings:  &settings,
		Orders:    emptyIfNil(snap.Orders),
		Expenses:  emptyIfNil(snap.Expenses),
		Funds:     emptyIfNil(snap.Funds),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}
	return data, nil
}

// Parse decodes and validates an uploaded backup. Anything unparsable or
// missing the required collections is rejected before any state changes.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate requires at least non-null expenses and funds. Empty collections
// are acceptable; absent or null ones are not.
func (d *Document) Validate() error {
	if d.Expenses == nil || d.Funds == nil {
		return fmt.Errorf("%w: missing expenses or funds", ErrInvalidBackup)
	}
	return nil
}

// Snapshot converts the document into the store's restore shape, falling
// back to default settings when the file carries none.
func (d *Document) Snapshot() storage.Snapshot {
	settings := core.DefaultSettings()
	if d.Settings != nil {
		settings = *d.Settings
	}
	return storage.Snapshot{
		Settings: settings,
		Orders:   d.Orders,
		Expenses: d.Expenses,
		Funds:    d.Funds,
	}
}

// Filename embeds the export date.
func Filename(now time.Time) string {
	return "backup_brigade_fund_" + now.UTC().Format("2006-01-02") + ".json"
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
