package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("loading mentor: %w", WithMessage(ErrNotFound, "mentor not found"))

	got := FromError(wrapped)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "mentor not found", got.Message)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Contains(t, got.Error(), "boom")
	assert.Nil(t, FromError(nil))
}

func TestWrapUsesBaseMessageWhenEmpty(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(cause, ErrCollaboratorUnavailable, "")

	assert.Equal(t, ErrCollaboratorUnavailable.Message, err.Message)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrCollaboratorUnavailable)
}
