package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sahaya/pkg/domain-errors"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		code dErrors.Code
		want int
	}{
		{dErrors.CodeBadRequest, http.StatusBadRequest},
		{dErrors.CodeInvalidInput, http.StatusBadRequest},
		{dErrors.CodeUnknownCategory, http.StatusBadRequest},
		{dErrors.CodeUnknownStatus, http.StatusBadRequest},
		{dErrors.CodeNotFound, http.StatusNotFound},
		{dErrors.CodeConflict, http.StatusConflict},
		{dErrors.CodeInvariantViolation, http.StatusConflict},
		{dErrors.CodeStageCompleted, http.StatusConflict},
		{dErrors.CodeInvalidTransition, http.StatusUnprocessableEntity},
		{dErrors.CodeStageIncomplete, http.StatusUnprocessableEntity},
		{dErrors.CodeDocumentNotPending, http.StatusUnprocessableEntity},
		{dErrors.CodeUnauthorized, http.StatusUnauthorized},
		{dErrors.CodeForbidden, http.StatusForbidden},
		{dErrors.CodeTimeout, http.StatusGatewayTimeout},
		{dErrors.CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, dErrors.New(tc.code, "boom"))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestWriteErrorBody(t *testing.T) {
	t.Run("carries code, description, and details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, dErrors.New(dErrors.CodeInvalidTransition,
			"cannot move to RESOLVED from NEW").WithDetails("TRIAGED", "ASSIGNED"))

		var body ErrorBody
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "invalid_transition", body.Error)
		assert.Equal(t, "cannot move to RESOLVED from NEW", body.ErrorDescription)
		assert.Equal(t, []string{"TRIAGED", "ASSIGNED"}, body.Details)
	})

	t.Run("internal errors leak no description", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.New("pq: connection refused"))

		var body ErrorBody
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal_error", body.Error)
		assert.Empty(t, body.ErrorDescription)
		assert.Empty(t, body.Details)
	})
}
