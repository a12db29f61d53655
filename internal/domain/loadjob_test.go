package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from JobStatus
		to   JobStatus
		want bool
	}{
		{"submitted to in_progress", StatusSubmitted, StatusInProgress, true},
		{"in_progress to finished", StatusInProgress, StatusFinished, true},
		{"in_progress to failed", StatusInProgress, StatusFailed, true},
		{"failed retriable via submitted", StatusFailed, StatusSubmitted, true},
		{"failed retriable via in_progress", StatusFailed, StatusInProgress, true},
		{"finished is terminal", StatusFinished, StatusInProgress, false},
		{"finished to submitted rejected", StatusFinished, StatusSubmitted, false},
		{"unknown to in_progress", StatusUnknown, StatusInProgress, true},
		{"submitted to finished directly rejected", StatusSubmitted, StatusFinished, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusFinished.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusSubmitted.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.False(t, StatusUnknown.IsTerminal())
}
