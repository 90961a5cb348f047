package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_Table(t *testing.T) {
	cases := []struct {
		name string
		from IncidentStatus
		to   IncidentStatus
		mode IncidentMode
		want bool
	}{
		{"pending to confirmed", IncidentPending, IncidentConfirmed, ModeAuto, true},
		{"pending to canceled", IncidentPending, IncidentCanceled, ModeAuto, true},
		{"pending to assigned manual", IncidentPending, IncidentAssigned, ModeManual, true},
		{"pending to assigned auto forbidden", IncidentPending, IncidentAssigned, ModeAuto, false},
		{"confirmed to assigned", IncidentConfirmed, IncidentAssigned, ModeAuto, true},
		{"confirmed to canceled forbidden", IncidentConfirmed, IncidentCanceled, ModeAuto, false},
		{"assigned to in_progress", IncidentAssigned, IncidentInProgress, ModeAuto, true},
		{"assigned to completed forbidden", IncidentAssigned, IncidentCompleted, ModeAuto, false},
		{"in_progress to completed", IncidentInProgress, IncidentCompleted, ModeAuto, true},
		{"canceled is terminal", IncidentCanceled, IncidentConfirmed, ModeAuto, false},
		{"completed is terminal", IncidentCompleted, IncidentInProgress, ModeAuto, false},
		{"self transition forbidden", IncidentPending, IncidentPending, ModeAuto, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to, tc.mode))
		})
	}
}

func TestApplyTransition_Timestamps(t *testing.T) {
	now := time.Now().UTC()
	incident := &Incident{Status: IncidentPending}

	incident.ApplyTransition(IncidentConfirmed, now)
	require.NotNil(t, incident.ConfirmedAt)
	assert.Equal(t, now, *incident.ConfirmedAt)
	assert.Equal(t, IncidentConfirmed, incident.Status)
	assert.Nil(t, incident.ResolvedAt)

	later := now.Add(time.Minute)
	incident.ApplyTransition(IncidentAssigned, later)
	incident.ApplyTransition(IncidentInProgress, later)
	incident.ApplyTransition(IncidentCompleted, later)
	require.NotNil(t, incident.ResolvedAt)
	assert.Equal(t, later, *incident.ResolvedAt)
	assert.Equal(t, later, incident.UpdatedAt)
}

func TestApplyTransition_CancelSetsResolvedAt(t *testing.T) {
	now := time.Now().UTC()
	incident := &Incident{Status: IncidentPending}

	incident.ApplyTransition(IncidentCanceled, now)
	require.NotNil(t, incident.ResolvedAt)
	assert.True(t, incident.IsTerminal())
	assert.False(t, incident.IsOpen())
}
