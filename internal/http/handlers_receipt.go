package http

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"sunduq/internal/receipt"
)

type analyzeRequest struct {
	// Image is base64, optionally as a data URL.
	Image    string `json:"image"`
	MimeType string `json:"mimeType"`
}

func (s *Server) handleAnalyzeReceipt(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	image, mimeType, err := decodeImage(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	suggestion, err := s.analyzer.AnalyzeReceipt(r.Context(), image, mimeType)
	if err != nil {
		if errors.Is(err, receipt.ErrDisabled) {
			writeError(w, http.StatusServiceUnavailable, "receipt analysis is not configured")
			return
		}
		// Analysis is best-effort; the form works without a suggestion.
		slog.WarnContext(r.Context(), "Receipt analysis failed", "error", err)
		writeJSON(w, http.StatusOK, receipt.Suggestion{})
		return
	}

	writeJSON(w, http.StatusOK, suggestion)
}

func decodeImage(req analyzeRequest) ([]byte, string, error) {
	data := req.Image
	mimeType := req.MimeType

	// Data URL form: data:image/png;base64,....
	if strings.HasPrefix(data, "data:") {
		header, rest, ok := strings.Cut(data, ",")
		if !ok {
			return nil, "", errors.New("malformed data URL")
		}
		data = rest
		if mimeType == "" {
			mimeType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	image, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", errors.New("image must be base64 encoded")
	}
	if len(image) == 0 {
		return nil, "", errors.New("empty image")
	}
	return image, mimeType, nil
}
