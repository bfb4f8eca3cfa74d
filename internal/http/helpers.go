package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"sunduq/internal/backup"
	"sunduq/internal/core"
	"sunduq/internal/log"
	"sunduq/internal/storage"
)

// maxBodyBytes caps uploads; receipt images and backup files dominate.
const maxBodyBytes = 16 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service failures onto HTTP statuses: validation
// problems are the client's fault, a missing record is 404, a bad backup is
// 400, anything else is a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, backup.ErrInvalidBackup):
		writeError(w, http.StatusBadRequest, err.Error())
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrInvalidType,
		core.ErrEmptySource,
		core.ErrEmptyBeneficiary,
		core.ErrAmountMismatch,
		core.ErrNegativeAmount,
		core.ErrInvalidSubCat,
		core.ErrInvalidStatus,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// readJSON decodes a request body into v, rejecting unknown fields and
// oversized payloads.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// queryFromRequest builds the archive query from URL parameters. All
// parameters are optional and combine with AND.
func queryFromRequest(r *http.Request) core.Query {
	params := r.URL.Query()
	return core.Query{
		Search:   params.Get("search"),
		Type:     core.TypeFilter(params.Get("type")),
		Currency: core.Currency(params.Get("currency")),
		Start:    core.Date(params.Get("start")),
		End:      core.Date(params.Get("end")),
	}
}

// queryCacheKey flattens a query into a cache key. The encoded form is
// stable for equal queries.
func queryCacheKey(q core.Query) string {
	return q.Search + "\x00" + string(q.Type) + "\x00" + string(q.Currency) +
		"\x00" + string(q.Start) + "\x00" + string(q.End)
}
