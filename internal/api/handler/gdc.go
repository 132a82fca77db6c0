package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GDCLookup resolves GDC case and file documents.
type GDCLookup interface {
	GetCase(ctx context.Context, id string) (json.RawMessage, error)
	GetFile(ctx context.Context, id string) (json.RawMessage, error)
}

// GDCHandler proxies case and file lookups to the GDC API.
type GDCHandler struct {
	logger *slog.Logger
	gdc    GDCLookup
}

func NewGDCHandler(logger *slog.Logger, gdc GDCLookup) *GDCHandler {
	return &GDCHandler{logger: logger, gdc: gdc}
}

// Case handles GET /api/v1/cases/{caseID}
func (h *GDCHandler) Case(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "caseID")
	if e := validateGDCID("case", id); e != nil {
		writeAPIError(w, h.logger, e)
		return
	}
	doc, err := h.gdc.GetCase(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeRawJSON(w, http.StatusOK, doc)
}

// File handles GET /api/v1/files/{fileID}
func (h *GDCHandler) File(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fileID")
	if e := validateGDCID("file", id); e != nil {
		writeAPIError(w, h.logger, e)
		return
	}
	doc, err := h.gdc.GetFile(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeRawJSON(w, http.StatusOK, doc)
}
