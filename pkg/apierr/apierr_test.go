package apierr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"
)

func TestIsCode_ThroughWrapping(t *testing.T) {
	base := MissingFile("meta.tsv", os.ErrNotExist)
	err := fmt.Errorf("load metadata: %w", base)

	if !IsMissingFile(err) {
		t.Fatal("expected wrapped error to be MISSING_FILE")
	}
	if IsStoreWrite(err) {
		t.Error("MISSING_FILE must not match STORE_WRITE")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("cause should stay reachable through errors.Is")
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{Parse("g.tsv", 7, "expected 7 columns, got 3"), "PARSE: g.tsv:7: expected 7 columns, got 3"},
		{RemoteAPI("https://x/files", 500, ""), "REMOTE_API: GDC request https://x/files failed with status 500"},
		{StoreWrite("Gene", errors.New("boom")), "STORE_WRITE: Failed to write Gene: boom"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestStatus(t *testing.T) {
	if s := QuestionRequired().Status(); s != http.StatusBadRequest {
		t.Errorf("QuestionRequired status = %d", s)
	}
	if s := RemoteAPI("u", 404, "nope").Status(); s != http.StatusBadGateway {
		t.Errorf("RemoteAPI status = %d", s)
	}
}

func TestAs_NotAPIError(t *testing.T) {
	if _, ok := As(errors.New("plain")); ok {
		t.Error("plain error should not convert")
	}
	if IsCode(nil, CodeParse) {
		t.Error("nil error should not match")
	}
}

func TestAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := fmt.Errorf("load: %w", StoreWrite("Gene{id: G1}", errors.New("timeout")))
	logger.Error("failed", Attr(err))

	var line struct {
		Error struct {
			Text   string `json:"text"`
			Detail struct {
				Code  string `json:"code"`
				Cause string `json:"cause"`
			} `json:"detail"`
		} `json:"error"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal %s: %v", buf.String(), err)
	}
	if line.Error.Detail.Code != string(CodeStoreWrite) || line.Error.Detail.Cause != "timeout" {
		t.Errorf("logged %s", buf.String())
	}
	if !strings.HasPrefix(line.Error.Text, "load: ") {
		t.Errorf("text = %q", line.Error.Text)
	}

	buf.Reset()
	logger.Error("failed", Attr(errors.New("plain")))
	if !strings.Contains(buf.String(), `"error":"plain"`) {
		t.Errorf("plain error logged as %s", buf.String())
	}
}
