package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	cfgErr := fmt.Errorf("%w: ki=5 must be smaller than 5 reference objects", ErrInvalidConfig)
	assert.True(t, IsConfig(cfgErr))
	assert.False(t, IsValidation(cfgErr))

	valErr := fmt.Errorf("%w: position 7 outside [0, 4)", ErrInvalidPosition)
	assert.True(t, IsValidation(valErr))
	assert.False(t, IsConfig(valErr))

	assert.True(t, IsConfig(ErrNoReferenceObjects))
	assert.True(t, IsValidation(ErrDuplicateEvidence))
	assert.False(t, IsConfig(errors.New("other")))
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrCollectionNotFound, http.StatusNotFound},
		{fmt.Errorf("get: %w", ErrDocumentNotFound), http.StatusNotFound},
		{ErrCollectionExists, http.StatusConflict},
		{ErrIndexAlreadyBuilt, http.StatusConflict},
		{fmt.Errorf("%w: ks", ErrInvalidConfig), http.StatusBadRequest},
		{ErrInvalidN, http.StatusBadRequest},
		{ErrInvalidDimension, http.StatusBadRequest},
		{ErrInvalidPosition, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err), "error: %v", tt.err)
	}
}
