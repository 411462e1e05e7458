package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinels_MatchThroughWrapping(t *testing.T) {
	sentinels := []error{
		ErrorNotFound,
		ErrorAlreadyExists,
		ErrorInternal,
		ErrorUnauthorized,
		ErrorPermissionDenied,
		ErrorInvalidInput,
		ErrInvalidToken,
		ErrTokenExpired,
	}

	for _, s := range sentinels {
		wrapped := fmt.Errorf("stage: %w", s)
		assert.True(t, errors.Is(wrapped, s), "errors.Is must see %v through wrapping", s)
	}
}

func TestSentinels_AreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrInvalidToken, ErrTokenExpired))
	assert.False(t, errors.Is(ErrorPermissionDenied, ErrorUnauthorized))
	assert.False(t, errors.Is(ErrorInvalidInput, ErrorNotFound))
}
