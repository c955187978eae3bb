package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("passes through domain errors", func(t *testing.T) {
		err := NewValidationError("bad input", map[string]any{"field": "title"})
		mapped := ToDomainError(err)
		assert.Equal(t, CodeValidationFailed, mapped.Code)
		assert.Equal(t, http.StatusBadRequest, mapped.HTTPStatus)
	})

	t.Run("unwraps wrapped domain errors", func(t *testing.T) {
		err := fmt.Errorf("loading ticket: %w", NewUnauthorized("no token"))
		mapped := ToDomainError(err)
		assert.Equal(t, CodeUnauthorized, mapped.Code)
	})

	t.Run("maps missing rows to not found", func(t *testing.T) {
		mapped := ToDomainError(fmt.Errorf("query: %w", pgx.ErrNoRows))
		assert.Equal(t, CodeNotFound, mapped.Code)
		assert.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
	})

	t.Run("unknown errors become internal", func(t *testing.T) {
		mapped := ToDomainError(errors.New("boom"))
		assert.Equal(t, "INTERNAL_ERROR", mapped.Code)
		assert.Equal(t, http.StatusInternalServerError, mapped.HTTPStatus)
	})
}

func TestConflictConstructors(t *testing.T) {
	var domainErr *DomainError

	err := NewAlreadyAssigned("t-1")
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, CodeAlreadyAssigned, domainErr.Code)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)
	assert.Equal(t, "t-1", domainErr.Details["ticket_id"])

	err = NewNotAssignee("t-2")
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, CodeNotAssignee, domainErr.Code)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)
}

func TestPermissionDeniedCarriesReason(t *testing.T) {
	var domainErr *DomainError
	err := NewPermissionDenied("no access", "REQUIRES_APPROVAL")
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "REQUIRES_APPROVAL", domainErr.Details["reason"])
	assert.Equal(t, http.StatusForbidden, domainErr.HTTPStatus)
}
