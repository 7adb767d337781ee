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

func TestToDomainError_NoRowsBecomesNotFound(t *testing.T) {
	de := ToDomainError(fmt.Errorf("lookup: %w", pgx.ErrNoRows))
	require.NotNil(t, de)
	assert.Equal(t, CodeNotFound, de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
}

func TestToDomainError_UnknownBecomesInternal(t *testing.T) {
	cause := errors.New("boom")
	de := ToDomainError(cause)
	assert.Equal(t, CodeInternal, de.Code)
	assert.ErrorIs(t, de, cause)
}

func TestToDomainError_PreservesWrappedDomainError(t *testing.T) {
	err := fmt.Errorf("create job: %w", NewFieldValidationError("title", "title is required"))
	de := ToDomainError(err)
	assert.Equal(t, CodeValidation, de.Code)
	assert.Equal(t, "title", de.Details["field"])
}

func TestMapError_Nil(t *testing.T) {
	assert.NoError(t, MapError(nil))
	assert.Nil(t, ToDomainError(nil))
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewAuthError("user-not-found", "no account"), CodeAuth))
	assert.False(t, HasCode(errors.New("plain"), CodeAuth))
	assert.True(t, HasCode(NewAssetError("upload failed", nil), CodeAsset))
	assert.True(t, HasCode(NewStoreError(errors.New("down")), CodeStore))
}
