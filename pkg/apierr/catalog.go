package apierr

import (
	"fmt"
	"net/http"
)

// --- Common ---

func InvalidRequestBody() *Error {
	return New(CodeInvalidRequestBody, http.StatusBadRequest, "Invalid request body")
}

func InvalidID(entity string) *Error {
	return New(CodeInvalidID, http.StatusBadRequest, "Invalid "+entity+" ID")
}

func InternalError(cause error) *Error {
	return Wrap(CodeInternalError, http.StatusInternalServerError, "Internal server error", cause)
}

func GraphNotReady(cause error) *Error {
	return Wrap(CodeNotReady, http.StatusServiceUnavailable, "Graph database not ready", cause)
}

func Unauthorized() *Error {
	return New(CodeUnauthorized, http.StatusUnauthorized, "Authentication required")
}

func Forbidden() *Error {
	return New(CodeForbidden, http.StatusForbidden, "Insufficient scope")
}

// --- Ingestion ---

// MissingFile reports a declared metadata or data file that is absent.
func MissingFile(path string, cause error) *Error {
	return Wrap(CodeMissingFile, http.StatusNotFound, fmt.Sprintf("File %s not found", path), cause)
}

// Parse reports a malformed row or a missing expected column.
func Parse(file string, line int, msg string) *Error {
	return New(CodeParse, http.StatusUnprocessableEntity, fmt.Sprintf("%s:%d: %s", file, line, msg))
}

// StoreWrite reports a failed node or relationship upsert.
func StoreWrite(target string, cause error) *Error {
	return Wrap(CodeStoreWrite, http.StatusInternalServerError, "Failed to write "+target, cause)
}

// --- Remote API ---

// RemoteAPI reports a non-2xx or malformed response from the data repository.
func RemoteAPI(url string, status int, detail string) *Error {
	msg := fmt.Sprintf("GDC request %s failed", url)
	if status > 0 {
		msg = fmt.Sprintf("GDC request %s failed with status %d", url, status)
	}
	if detail != "" {
		msg += ": " + detail
	}
	return New(CodeRemoteAPI, http.StatusBadGateway, msg)
}

// RemoteAPIWrap is RemoteAPI for transport or decoding failures.
func RemoteAPIWrap(url string, cause error) *Error {
	return Wrap(CodeRemoteAPI, http.StatusBadGateway, fmt.Sprintf("GDC request %s failed", url), cause)
}

// --- Query translation ---

func QuestionRequired() *Error {
	return New(CodeQuestionRequired, http.StatusBadRequest, "Question is required")
}

func InvalidQuery(reason string) *Error {
	return New(CodeInvalidQuery, http.StatusUnprocessableEntity, "Generated query rejected: "+reason)
}

func QueryFailed(cause error) *Error {
	return Wrap(CodeQueryFailed, http.StatusInternalServerError, "Graph query failed", cause)
}

func LLMUnavailable() *Error {
	return New(CodeLLMUnavailable, http.StatusServiceUnavailable, "No language model provider configured")
}
