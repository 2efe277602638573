package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateInit, "init"},
		{StateActivatable, "activatable"},
		{StateActivated, "activated"},
		{StateDeactivated, "deactivated"},
		{StateEnded, "ended"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestState_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{"init to activatable", StateInit, StateActivatable, true},
		{"init to ended", StateInit, StateEnded, true},
		{"init skips to activated", StateInit, StateActivated, false},
		{"activatable to activated", StateActivatable, StateActivated, true},
		{"activated to deactivated", StateActivated, StateDeactivated, true},
		{"activated back to activatable", StateActivated, StateActivatable, false},
		{"deactivated to activatable", StateDeactivated, StateActivatable, true},
		{"deactivated to ended", StateDeactivated, StateEnded, true},
		{"ended is terminal", StateEnded, StateActivatable, false},
		{"self transition rejected", StateActivated, StateActivated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}
