// Package receipt extracts expense suggestions from photographed receipts.
package receipt

import (
	"context"
	"errors"

	"sunduq/internal/core"
)

// ErrDisabled is returned when no analyzer backend is configured.
var ErrDisabled = errors.New("receipt analysis is not configured")

// Suggestion carries the fields recognized on a receipt image. Every field is
// optional; the caller pre-fills a form with whatever was recognized and the
// user corrects the rest.
type Suggestion struct {
	Amount      *core.Money   `json:"amount,omitempty"`
	Currency    core.Currency `json:"currency,omitempty"`
	Beneficiary string        `json:"beneficiary,omitempty"`
	Date        core.Date     `json:"date,omitempty"`
	Category    core.Category `json:"category,omitempty"`
	Notes       string        `json:"notes,omitempty"`
}

// Analyzer recognizes receipt contents from an image.
type Analyzer interface {
	AnalyzeReceipt(ctx context.Context, image []byte, mimeType string) (*Suggestion, error)
}

// Disabled is the analyzer used when no API key is configured.
type Disabled struct{}

func (Disabled) AnalyzeReceipt(ctx context.Context, image []byte, mimeType string) (*Suggestion, error) {
	return nil, ErrDisabled
}
