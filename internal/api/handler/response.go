package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/maraichr/gdcgraph/pkg/apierr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeRawJSON passes a document fetched from upstream through unchanged.
func writeRawJSON(w http.ResponseWriter, status int, doc json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(doc)
}

// writeAPIError writes a structured error response and logs 5xx errors.
func writeAPIError(w http.ResponseWriter, logger *slog.Logger, e *apierr.Error) {
	if e.Status() >= 500 && logger != nil {
		logger.Error(e.Message(), slog.String("code", string(e.Code())), slog.String("error", e.Error()))
	}
	writeJSON(w, e.Status(), e.Response())
}

// writeError classifies err, falling back to INTERNAL_ERROR.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if e, ok := apierr.As(err); ok {
		writeAPIError(w, logger, e)
		return
	}
	writeAPIError(w, logger, apierr.InternalError(err))
}
