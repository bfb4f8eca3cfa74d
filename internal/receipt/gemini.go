package receipt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sunduq/internal/core"

	genlang "google.golang.org/api/generativelanguage/v1beta"
	goption "google.golang.org/api/option"
)

const geminiModel = "models/gemini-2.5-flash"

const analysisPrompt = `Extract the following fields from this receipt image and answer with a single JSON object:
{"amount": "total amount as a decimal string", "currency": "YER or SAR", "beneficiary": "vendor or payee name", "date": "YYYY-MM-DD", "category": "FUEL, CATERING, MAINTENANCE, OFFICE or OPERATIONAL", "notes": "short description of the purchase"}
Omit any field you cannot read from the image. The receipt may be in Arabic.`

// GeminiAnalyzer recognizes receipts through the Gemini generative language API.
type GeminiAnalyzer struct {
	svc *genlang.Service
}

var _ Analyzer = (*GeminiAnalyzer)(nil)

func NewGeminiAnalyzer(ctx context.Context, apiKey string) (*GeminiAnalyzer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing Gemini API key")
	}
	svc, err := genlang.NewService(ctx, goption.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create generative language service: %w", err)
	}
	return &GeminiAnalyzer{svc: svc}, nil
}

// AnalyzeReceipt sends the image with an extraction prompt and maps the model's
// JSON reply onto a Suggestion. Fields the model could not read, or filled with
// values outside the closed sets, come back empty rather than failing the call.
func (g *GeminiAnalyzer) AnalyzeReceipt(ctx context.Context, image []byte, mimeType string) (*Suggestion, error) {
	req := &genlang.GenerateContentRequest{
		Contents: []*genlang.Content{{
			Parts: []*genlang.Part{
				{InlineData: &genlang.Blob{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
				{Text: analysisPrompt},
			},
		}},
		GenerationConfig: &genlang.GenerationConfig{
			ResponseMimeType: "application/json",
		},
	}

	resp, err := g.svc.Models.GenerateContent(geminiModel, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text := firstText(resp)
	if text == "" {
		return nil, errors.New("empty model response")
	}

	suggestion, err := parseSuggestion(text)
	if err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	slog.InfoContext(ctx, "Analyzed receipt",
		"has_amount", suggestion.Amount != nil,
		"currency", suggestion.Currency,
		"category", suggestion.Category)
	return suggestion, nil
}

func firstText(resp *genlang.GenerateContentResponse) string {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

// parseSuggestion decodes the model's JSON and keeps only values the ledger
// can actually use.
func parseSuggestion(text string) (*Suggestion, error) {
	text = trimCodeFence(text)

	// The model is asked for a string amount but occasionally answers with a
	// bare number, so the field is decoded raw and unquoted by hand.
	var raw struct {
		Amount      json.RawMessage `json:"amount"`
		Currency    string          `json:"currency"`
		Beneficiary string          `json:"beneficiary"`
		Date        string          `json:"date"`
		Category    string          `json:"category"`
		Notes       string          `json:"notes"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}

	s := &Suggestion{
		Beneficiary: strings.TrimSpace(raw.Beneficiary),
		Notes:       strings.TrimSpace(raw.Notes),
	}

	if value := strings.Trim(strings.TrimSpace(string(raw.Amount)), `"`); value != "" && value != "null" {
		if cents, err := core.ParseDecimal(value); err == nil && cents > 0 {
			s.Amount = &core.Money{Cents: cents}
		}
	}
	if currency := core.Currency(strings.ToUpper(strings.TrimSpace(raw.Currency))); currency.Known() {
		s.Currency = currency
	}
	if date := core.Date(strings.TrimSpace(raw.Date)); !date.IsZero() && date.Validate() == nil {
		s.Date = date
	}
	if category := core.Category(strings.ToUpper(strings.TrimSpace(raw.Category))); category.Known() {
		s.Category = category
	}
	return s, nil
}

// trimCodeFence strips a markdown fence the model sometimes wraps around its
// JSON despite the response MIME type.
func trimCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
