package services_test

import (
	"testing"
	"time"

	"github.com/leaguehq/auction-backend/internal/models"
	"github.com/leaguehq/auction-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRoundSetsCategoryPointer(t *testing.T) {
	f := newFixture(t)
	round := f.openRound(t, "MID", 2)

	cat, err := f.catRepo.FindByName(f.ctx, "MID")
	require.NoError(t, err)
	require.NotNil(t, cat.OpenRoundID)
	assert.Equal(t, round.ID, *cat.OpenRoundID)

	assert.Equal(t, models.RoundStatusOpen, round.Status)
	assert.Equal(t, 2, round.MaxBidsPerTeam)
}

func TestOpenRoundAutoClosesPrior(t *testing.T) {
	f := newFixture(t)
	team := f.team(t, "alpha")
	player := f.player(t, "Kane", "MID", 100)
	first := f.openRound(t, "MID", 1)
	f.mustBid(t, player, first, team, 300)

	second := f.openRound(t, "MID", 1)

	prior, err := f.roundRepo.FindByID(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusFinalized, prior.Status)

	// The earlier round's bids were allocated on the way out
	assert.Equal(t, testBudget-300, f.remaining(t, team))

	cat, err := f.catRepo.FindByName(f.ctx, "MID")
	require.NoError(t, err)
	require.NotNil(t, cat.OpenRoundID)
	assert.Equal(t, second.ID, *cat.OpenRoundID)
}

func TestOpenRoundIndependentCategories(t *testing.T) {
	f := newFixture(t)
	mid := f.openRound(t, "MID", 1)
	fwd := f.openRound(t, "FWD", 1)

	got, err := f.roundRepo.FindByID(f.ctx, mid.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusOpen, got.Status)
	got, err = f.roundRepo.FindByID(f.ctx, fwd.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusOpen, got.Status)
}

func TestExtendRound(t *testing.T) {
	f := newFixture(t)
	round := f.openRound(t, "MID", 1)

	_, err := f.rounds.ExtendRound(f.ctx, round.ID, round.ClosesAt.Add(-time.Minute))
	assert.ErrorIs(t, err, services.ErrExtensionTooShort)

	later := round.ClosesAt.Add(time.Hour)
	extended, err := f.rounds.ExtendRound(f.ctx, round.ID, later)
	require.NoError(t, err)
	assert.True(t, extended.ClosesAt.Equal(later))

	require.NoError(t, f.rounds.CloseRound(f.ctx, round.ID))
	_, err = f.rounds.ExtendRound(f.ctx, round.ID, later.Add(time.Hour))
	assert.ErrorIs(t, err, services.ErrRoundNotOpen)
}

func TestCancelRound(t *testing.T) {
	f := newFixture(t)
	team := f.team(t, "alpha")
	player := f.player(t, "Kane", "MID", 100)
	round := f.openRound(t, "MID", 1)
	f.mustBid(t, player, round, team, 300)

	require.NoError(t, f.rounds.CancelRound(f.ctx, round.ID))
	require.NoError(t, f.rounds.CancelRound(f.ctx, round.ID)) // idempotent

	got, err := f.roundRepo.FindByID(f.ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusCancelled, got.Status)

	// Nothing was allocated or charged
	assert.Equal(t, testBudget, f.remaining(t, team))
	allocs, err := f.allocRepo.FindByRound(f.ctx, round.ID)
	require.NoError(t, err)
	assert.Empty(t, allocs)

	// The category is free for a new round
	cat, err := f.catRepo.FindByName(f.ctx, "MID")
	require.NoError(t, err)
	assert.Nil(t, cat.OpenRoundID)
	f.openRound(t, "MID", 1)

	// A cancelled round cannot be closed into a finalized one
	require.NoError(t, f.rounds.CloseRound(f.ctx, round.ID))
	got, err = f.roundRepo.FindByID(f.ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusCancelled, got.Status)
}

func TestCancelFinalizedRoundRejected(t *testing.T) {
	f := newFixture(t)
	round := f.openRound(t, "MID", 1)
	require.NoError(t, f.rounds.CloseRound(f.ctx, round.ID))

	err := f.rounds.CancelRound(f.ctx, round.ID)
	assert.ErrorIs(t, err, services.ErrRoundNotOpen)
}

func TestCloseDueRounds(t *testing.T) {
	f := newFixture(t)
	team := f.team(t, "alpha")
	player := f.player(t, "Kane", "MID", 100)
	round := f.openRound(t, "MID", 1)
	f.mustBid(t, player, round, team, 300)

	// Not due yet: the sweep leaves it open
	require.NoError(t, f.rounds.CloseDueRounds(f.ctx))
	got, err := f.roundRepo.FindByID(f.ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusOpen, got.Status)

	got.ClosesAt = time.Now().Add(-time.Minute)
	require.NoError(t, f.roundRepo.Update(f.ctx, got))

	require.NoError(t, f.rounds.CloseDueRounds(f.ctx))
	got, err = f.roundRepo.FindByID(f.ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusFinalized, got.Status)
	assert.Equal(t, testBudget-300, f.remaining(t, team))
}
