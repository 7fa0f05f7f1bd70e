package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapTransitions(t *testing.T) {
	all := []SwapStatus{SwapPending, SwapAccepted, SwapRejected, SwapCompleted, SwapCancelled}
	legal := map[[2]SwapStatus]bool{
		{SwapPending, SwapAccepted}:   true,
		{SwapPending, SwapRejected}:   true,
		{SwapPending, SwapCancelled}:  true,
		{SwapAccepted, SwapCompleted}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[[2]SwapStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.True(t, SwapRejected.IsTerminal())
	assert.True(t, SwapCompleted.IsTerminal())
	assert.True(t, SwapCancelled.IsTerminal())
	assert.False(t, SwapPending.IsTerminal())
	assert.False(t, SwapAccepted.IsTerminal())
}

func TestTransitionToLeavesSwapUnchangedOnIllegalMove(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	swap := &Swap{Status: SwapPending, UpdatedAt: created}

	err := swap.TransitionTo(SwapCompleted, created.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, SwapPending, swap.Status)
	assert.Equal(t, created, swap.UpdatedAt)
	assert.Nil(t, swap.CompletedAt)

	at := created.Add(2 * time.Hour)
	require.NoError(t, swap.TransitionTo(SwapAccepted, at))
	require.NotNil(t, swap.AcceptedAt)
	assert.Equal(t, at, *swap.AcceptedAt)

	assert.ErrorIs(t, swap.TransitionTo(SwapRejected, at), ErrInvalidTransition)
	assert.Equal(t, SwapAccepted, swap.Status)
}

func TestRateOncePerParticipant(t *testing.T) {
	swap := &Swap{RequesterID: "req", OwnerID: "own", Status: SwapCompleted}
	now := time.Now()

	role, err := swap.Rate("req", 5, "great", now)
	require.NoError(t, err)
	assert.Equal(t, RoleRequester, role)

	_, err = swap.Rate("req", 1, "changed my mind", now)
	assert.ErrorIs(t, err, ErrAlreadyRated)
	assert.Equal(t, 5, swap.Rating.FromRequester.Rating)

	role, err = swap.Rate("own", 4, "", now)
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, role)

	_, err = swap.Rate("stranger", 3, "", now)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestCounterparty(t *testing.T) {
	swap := &Swap{RequesterID: "req", OwnerID: "own"}
	assert.Equal(t, "own", swap.Counterparty("req"))
	assert.Equal(t, "req", swap.Counterparty("own"))
	assert.False(t, swap.IsParticipant(""))
}
