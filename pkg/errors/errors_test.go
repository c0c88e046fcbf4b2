package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestCloneKeepsCodeForIs(t *testing.T) {
	cloned := Clone(ErrValidation, "reason is required")
	assert.Equal(t, "reason is required", cloned.Message)
	assert.True(t, stderrors.Is(cloned, ErrValidation))
	assert.False(t, stderrors.Is(cloned, ErrConflict))

	wrapped := fmt.Errorf("outer: %w", cloned)
	assert.True(t, stderrors.Is(wrapped, ErrValidation))
}
