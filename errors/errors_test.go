package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.class.String())
		})
	}
}

func TestWrap(t *testing.T) {
	base := fmt.Errorf("boom")
	err := Wrap(base, "Channel", "Push", "enqueue")
	require.Error(t, err)
	assert.Equal(t, "Channel.Push: enqueue failed: boom", err.Error())
	assert.ErrorIs(t, err, base)

	assert.NoError(t, Wrap(nil, "Channel", "Push", "enqueue"))
}

func TestWrapClassification(t *testing.T) {
	tests := []struct {
		name  string
		wrap  func(error, string, string, string) error
		class ErrorClass
	}{
		{"transient", WrapTransient, ErrorTransient},
		{"invalid", WrapInvalid, ErrorInvalid},
		{"fatal", WrapFatal, ErrorFatal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.wrap(fmt.Errorf("boom"), "Network", "Start", "wiring")
			require.Error(t, err)

			var ce *ClassifiedError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, test.class, ce.Class)
			assert.Equal(t, "Network", ce.Component)
			assert.Equal(t, test.class, Classify(err))
		})
	}
}

func TestIsProtocol(t *testing.T) {
	assert.True(t, IsProtocol(ErrProtocol))
	assert.True(t, IsProtocol(ErrAlreadyAttached))
	assert.True(t, IsProtocol(ErrBracketMismatch))
	assert.True(t, IsProtocol(Wrap(ErrProtocol, "Channel", "Close", "bracket check")))
	assert.False(t, IsProtocol(ErrBackpressure))
	assert.False(t, IsProtocol(nil))
}

func TestIsBackpressure(t *testing.T) {
	assert.True(t, IsBackpressure(ErrBackpressure))
	assert.True(t, IsBackpressure(Wrap(ErrBackpressure, "Channel", "Push", "capacity check")))
	assert.False(t, IsBackpressure(ErrProtocol))
}

func TestIsNetworkState(t *testing.T) {
	assert.True(t, IsNetworkState(ErrNetworkState))
	assert.True(t, IsNetworkState(Wrap(ErrNetworkState, "Network", "Start", "status check")))
	assert.False(t, IsNetworkState(ErrChannelClosed))
}

func TestClassifySentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"nil", nil, ErrorTransient},
		{"protocol", ErrProtocol, ErrorInvalid},
		{"component not found", ErrComponentNotFound, ErrorInvalid},
		{"activation failed", ErrActivationFailed, ErrorFatal},
		{"backpressure", ErrBackpressure, ErrorTransient},
		{"unknown", fmt.Errorf("something odd"), ErrorTransient},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Classify(test.err))
		})
	}
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	inner := WrapFatal(ErrActivationFailed, "Component", "Activate", "process")
	outer := fmt.Errorf("network: %w", inner)

	assert.True(t, IsFatal(outer))
	assert.ErrorIs(t, outer, ErrActivationFailed)
}
