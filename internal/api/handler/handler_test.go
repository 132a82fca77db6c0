package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/maraichr/gdcgraph/internal/text2cypher"
	"github.com/maraichr/gdcgraph/pkg/apierr"
)

type fakeAsker struct {
	ans text2cypher.Answer
	err error
	got string
}

func (f *fakeAsker) Ask(_ context.Context, q string) (text2cypher.Answer, error) {
	f.got = q
	return f.ans, f.err
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierr.ErrorResponse {
	t.Helper()
	var resp apierr.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestAskHandler_Ask(t *testing.T) {
	asker := &fakeAsker{ans: text2cypher.Answer{Question: "q", Cypher: "MATCH (g:Gene) RETURN g.id", Answer: "G1"}}
	h := NewAskHandler(nil, asker)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader([]byte(`{"question":"  which genes?  "}`)))
	w := httptest.NewRecorder()

	h.Ask(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if asker.got != "which genes?" {
		t.Errorf("question passed = %q", asker.got)
	}
	var ans text2cypher.Answer
	if err := json.NewDecoder(w.Body).Decode(&ans); err != nil {
		t.Fatal(err)
	}
	if ans.Cypher != "MATCH (g:Gene) RETURN g.id" || ans.Answer != "G1" {
		t.Errorf("answer = %+v", ans)
	}
}

func TestAskHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		asker  Asker
		status int
		code   apierr.Code
	}{
		{"invalid body", "invalid", &fakeAsker{}, http.StatusBadRequest, apierr.CodeInvalidRequestBody},
		{"blank question", `{"question":" "}`, &fakeAsker{}, http.StatusBadRequest, apierr.CodeQuestionRequired},
		{"no llm", `{"question":"q"}`, nil, http.StatusServiceUnavailable, apierr.CodeLLMUnavailable},
		{"rejected query", `{"question":"q"}`, &fakeAsker{err: apierr.InvalidQuery("unknown relationship type X")}, http.StatusUnprocessableEntity, apierr.CodeInvalidQuery},
		{"unclassified", `{"question":"q"}`, &fakeAsker{err: errors.New("boom")}, http.StatusInternalServerError, apierr.CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAskHandler(nil, tt.asker)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()

			h.Ask(w, req)

			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
			if resp := decodeError(t, w); resp.Error.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, resp.Error.Code)
			}
		})
	}
}

type fakeGDC struct {
	doc json.RawMessage
	err error
}

func (f *fakeGDC) GetCase(_ context.Context, _ string) (json.RawMessage, error) { return f.doc, f.err }
func (f *fakeGDC) GetFile(_ context.Context, _ string) (json.RawMessage, error) { return f.doc, f.err }

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGDCHandler_Case(t *testing.T) {
	const id = "ea48b158-b34e-5c61-a37e-ed9c5440061e"
	h := NewGDCHandler(nil, &fakeGDC{doc: json.RawMessage(`{"data":{"case_id":"` + id + `"}}`)})
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/cases/"+id, nil), "caseID", id)
	w := httptest.NewRecorder()

	h.Case(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(id)) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGDCHandler_Errors(t *testing.T) {
	const id = "ea48b158-b34e-5c61-a37e-ed9c5440061e"
	tests := []struct {
		name   string
		id     string
		gdc    *fakeGDC
		status int
		code   apierr.Code
	}{
		{"bad id", "not-a-uuid", &fakeGDC{}, http.StatusBadRequest, apierr.CodeInvalidID},
		{"upstream", id, &fakeGDC{err: apierr.RemoteAPI("https://api.gdc.cancer.gov/cases/"+id, 404, "")}, http.StatusBadGateway, apierr.CodeRemoteAPI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewGDCHandler(nil, tt.gdc)
			req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/files/"+tt.id, nil), "fileID", tt.id)
			w := httptest.NewRecorder()

			h.File(w, req)

			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
			if resp := decodeError(t, w); resp.Error.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, resp.Error.Code)
			}
		})
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Verify(context.Context) error { return p.err }

func TestHealthHandler_Readyz(t *testing.T) {
	tests := []struct {
		name   string
		graph  Pinger
		status int
	}{
		{"ready", fakePinger{}, http.StatusOK},
		{"unreachable", fakePinger{err: errors.New("refused")}, http.StatusServiceUnavailable},
		{"not configured", nil, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHealthHandler(tt.graph).Readyz(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

type fakeCounter struct{}

func (fakeCounter) CountNodes(context.Context) (map[string]int64, error) {
	return map[string]int64{"Gene": 3}, nil
}

func TestGraphHandler_Stats(t *testing.T) {
	w := httptest.NewRecorder()
	NewGraphHandler(nil, fakeCounter{}).Stats(w, httptest.NewRequest(http.MethodGet, "/api/v1/graph/stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Nodes map[string]int64 `json:"nodes"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Nodes["Gene"] != 3 {
		t.Errorf("nodes = %v", body.Nodes)
	}
}

func TestValidateQuestion_CountsCharacters(t *testing.T) {
	// "é" is two bytes in UTF-8.
	atLimit := strings.Repeat("é", maxQuestionLen)
	if err := validateQuestion(atLimit); err != nil {
		t.Errorf("%d characters rejected: %v", maxQuestionLen, err)
	}
	if err := validateQuestion(atLimit + "é"); err == nil || err.Code() != apierr.CodeInvalidRequestBody {
		t.Errorf("%d characters: err = %v, want INVALID_REQUEST_BODY", maxQuestionLen+1, err)
	}
	if err := validateQuestion(""); err == nil || err.Code() != apierr.CodeQuestionRequired {
		t.Errorf("empty question: err = %v", err)
	}
}
