package handler

import (
	"net/http"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/maraichr/gdcgraph/pkg/apierr"
)

// GDC case and file ids are UUIDs.
func validateGDCID(entity, id string) *apierr.Error {
	if _, err := uuid.Parse(id); err != nil {
		return apierr.InvalidID(entity)
	}
	return nil
}

const maxQuestionLen = 2000

func validateQuestion(q string) *apierr.Error {
	if q == "" {
		return apierr.QuestionRequired()
	}
	if utf8.RuneCountInString(q) > maxQuestionLen {
		return apierr.New(apierr.CodeInvalidRequestBody, http.StatusBadRequest, "Question is too long")
	}
	return nil
}
