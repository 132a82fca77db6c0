package apierr

import (
	"errors"
	"log/slog"
)

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether err's chain holds an *Error with the given code.
func IsCode(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.code == code
}

func IsMissingFile(err error) bool { return IsCode(err, CodeMissingFile) }
func IsParse(err error) bool       { return IsCode(err, CodeParse) }
func IsStoreWrite(err error) bool  { return IsCode(err, CodeStoreWrite) }
func IsRemoteAPI(err error) bool   { return IsCode(err, CodeRemoteAPI) }

// Attr is the "error" log attribute for err. Classified errors log as a
// code/message/cause group along with the full wrapped text.
func Attr(err error) slog.Attr {
	if e, ok := As(err); ok {
		return slog.Group("error", slog.String("text", err.Error()), slog.Any("detail", e))
	}
	return slog.String("error", err.Error())
}
