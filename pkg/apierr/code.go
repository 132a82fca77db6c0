package apierr

// Code is a machine-readable error code.
type Code string

// Common errors.
const (
	CodeInvalidRequestBody Code = "INVALID_REQUEST_BODY"
	CodeInvalidID          Code = "INVALID_ID"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeNotReady           Code = "NOT_READY"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
)

// Ingestion errors.
const (
	CodeMissingFile Code = "MISSING_FILE"
	CodeParse       Code = "PARSE"
	CodeStoreWrite  Code = "STORE_WRITE"
)

// Remote data repository errors.
const (
	CodeRemoteAPI Code = "REMOTE_API"
)

// Query translation errors.
const (
	CodeQuestionRequired Code = "QUESTION_REQUIRED"
	CodeInvalidQuery     Code = "INVALID_QUERY"
	CodeQueryFailed      Code = "QUERY_FAILED"
	CodeLLMUnavailable   Code = "LLM_UNAVAILABLE"
)
