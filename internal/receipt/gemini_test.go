package receipt

import (
	"context"
	"testing"

	"sunduq/internal/core"
)

func TestParseSuggestion(t *testing.T) {
	text := `{"amount": "4800.50", "currency": "yer", "beneficiary": "محطة الوقود", "date": "2024-01-05", "category": "FUEL", "notes": "ديزل"}`

	s, err := parseSuggestion(text)
	if err != nil {
		t.Fatal(err)
	}
	if s.Amount == nil || s.Amount.Cents != 4800_50 {
		t.Errorf("amount = %+v", s.Amount)
	}
	if s.Currency != core.CurrencyYER {
		t.Errorf("currency = %q", s.Currency)
	}
	if s.Beneficiary != "محطة الوقود" || s.Notes != "ديزل" {
		t.Errorf("suggestion = %+v", s)
	}
	if s.Date != "2024-01-05" || s.Category != core.CategoryFuel {
		t.Errorf("suggestion = %+v", s)
	}
}

func TestParseSuggestionDropsUnusableValues(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unknown currency", `{"currency": "USD"}`},
		{"unknown category", `{"category": "TRAVEL"}`},
		{"malformed date", `{"date": "05/01/2024"}`},
		{"negative amount", `{"amount": "-10"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := parseSuggestion(tt.text)
			if err != nil {
				t.Fatal(err)
			}
			if s.Amount != nil || s.Currency != "" || s.Date != "" || s.Category != "" {
				t.Errorf("unusable value survived: %+v", s)
			}
		})
	}
}

func TestParseSuggestionHandlesCodeFence(t *testing.T) {
	text := "```json\n{\"currency\": \"SAR\"}\n```"
	s, err := parseSuggestion(text)
	if err != nil {
		t.Fatal(err)
	}
	if s.Currency != core.CurrencySAR {
		t.Errorf("currency = %q", s.Currency)
	}
}

func TestParseSuggestionRejectsGarbage(t *testing.T) {
	if _, err := parseSuggestion("sorry, I cannot read this"); err == nil {
		t.Error("expected error")
	}
}

func TestDisabledAnalyzer(t *testing.T) {
	_, err := Disabled{}.AnalyzeReceipt(context.Background(), []byte{1}, "image/png")
	if err != ErrDisabled {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}
