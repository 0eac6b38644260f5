package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapError(t *testing.T) {
	cause := errors.New("disk on fire")
	err := WrapError("section read failed", cause)

	require.Error(t, err)
	assert.Equal(t, "section read failed: disk on fire", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestWrapErrorNilCause(t *testing.T) {
	assert.NoError(t, WrapError("anything", nil))
}

func TestWrapErrorKeepsSentinelKind(t *testing.T) {
	// Context wrapping must not hide the taxonomy kind from errors.Is.
	inner := fmt.Errorf("%w: string offset 12 out of range", ErrMalformedELF)
	err := WrapError("name lookup failed", inner)

	assert.True(t, errors.Is(err, ErrMalformedELF))
	assert.False(t, errors.Is(err, ErrDebugLine))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrIO, ErrNotELF, ErrUnsupportedClass,
		ErrMalformedELF, ErrMalformedNote, ErrDebugLine,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v matches %v", a, b)
		}
	}
}
