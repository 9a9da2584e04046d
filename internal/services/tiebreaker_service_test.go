package services_test

import (
	"testing"

	"github.com/leaguehq/auction-backend/internal/models"
	"github.com/leaguehq/auction-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tiedFixture closes a round with two teams tied at 400 on one player and
// returns the spawned tiebreaker
func tiedFixture(t *testing.T) (*fixture, *models.Team, *models.Team, *models.Player, *models.Tiebreaker) {
	t.Helper()
	f := newFixture(t)
	teamA := f.team(t, "alpha")
	teamB := f.team(t, "beta")
	player := f.player(t, "Kane", "MID", 100)
	round := f.openRound(t, "MID", 1)
	f.mustBid(t, player, round, teamA, 400)
	f.mustBid(t, player, round, teamB, 400)
	require.NoError(t, f.rounds.CloseRound(f.ctx, round.ID))
	return f, teamA, teamB, player, f.activeTiebreaker(t, round)
}

func TestTiebreakerRaiseAndConcede(t *testing.T) {
	f, teamA, teamB, player, tb := tiedFixture(t)

	_, err := f.tiebreaks.SubmitRaise(f.ctx, tb.ID, teamA.ID, 450)
	require.NoError(t, err)

	// One raise in, one participant still to act: nothing resolves yet
	got, err := f.tbRepo.FindByID(f.ctx, tb.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TiebreakerStatusActive, got.Status)

	_, err = f.tiebreaks.Concede(f.ctx, tb.ID, teamB.ID)
	require.NoError(t, err)

	got, err = f.tbRepo.FindByID(f.ctx, tb.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TiebreakerStatusResolved, got.Status)
	require.NotNil(t, got.WinnerTeamID)
	assert.Equal(t, teamA.ID, *got.WinnerTeamID)
	require.NotNil(t, got.WinningAmount)
	assert.Equal(t, int64(450), *got.WinningAmount)

	p := f.reloadPlayer(t, player)
	assert.Equal(t, models.PlayerStatusAllocated, p.Status)
	require.NotNil(t, p.FinalPrice)
	assert.Equal(t, int64(450), *p.FinalPrice)

	assert.Equal(t, testBudget-450, f.remaining(t, teamA))
	assert.Equal(t, testBudget, f.remaining(t, teamB))

	allocs, err := f.allocRepo.FindByRound(f.ctx, tb.RoundID)
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, models.AllocationPhaseTiebreaker, allocs[0].Phase)

	// No bid on the player is left unsettled
	active, err := f.bidRepo.FindActiveByPlayerAndRound(f.ctx, player.ID, tb.RoundID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestTiebreakerLastStandingWinsAtTiedAmount(t *testing.T) {
	f, teamA, teamB, player, tb := tiedFixture(t)

	_, err := f.tiebreaks.Concede(f.ctx, tb.ID, teamB.ID)
	require.NoError(t, err)

	got, err := f.tbRepo.FindByID(f.ctx, tb.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TiebreakerStatusResolved, got.Status)
	require.NotNil(t, got.WinnerTeamID)
	assert.Equal(t, teamA.ID, *got.WinnerTeamID)
	require.NotNil(t, got.WinningAmount)
	assert.Equal(t, tb.TiedAmount, *got.WinningAmount)

	assert.Equal(t, testBudget-tb.TiedAmount, f.remaining(t, teamA))
	assert.Equal(t, models.PlayerStatusAllocated, f.reloadPlayer(t, player).Status)
}

func TestTiebreakerAllConcede(t *testing.T) {
	f, teamA, teamB, player, tb := tiedFixture(t)

	// Recovery shape: teamA's concession was already persisted (say a crash
	// between the update and the resolve sweep), so teamB's concession is
	// the one that empties the field
	p := tb.Participant(teamA.ID)
	p.Conceded = true
	require.NoError(t, f.tbRepo.Update(f.ctx, tb))

	_, err := f.tiebreaks.Concede(f.ctx, tb.ID, teamB.ID)
	require.NoError(t, err)

	got, err := f.tbRepo.FindByID(f.ctx, tb.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TiebreakerStatusCancelled, got.Status)
	assert.Nil(t, got.WinnerTeamID)

	// Player returns to the pool, bids settle as lost, nobody is charged
	r := f.reloadPlayer(t, player)
	assert.Equal(t, models.PlayerStatusAvailable, r.Status)
	active, err := f.bidRepo.FindActiveByPlayerAndRound(f.ctx, player.ID, tb.RoundID)
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Equal(t, testBudget, f.remaining(t, teamA))
	assert.Equal(t, testBudget, f.remaining(t, teamB))
}

func TestTiebreakerBothRaisesTiedSpawnsSuccessor(t *testing.T) {
	f, teamA, teamB, player, tb := tiedFixture(t)

	_, err := f.tiebreaks.SubmitRaise(f.ctx, tb.ID, teamA.ID, 500)
	require.NoError(t, err)
	_, err = f.tiebreaks.SubmitRaise(f.ctx, tb.ID, teamB.ID, 500)
	require.NoError(t, err)

	got, err := f.tbRepo.FindByID(f.ctx, tb.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TiebreakerStatusCancelled, got.Status)
	require.NotNil(t, got.SuccessorID)

	succ, err := f.tbRepo.FindByID(f.ctx, *got.SuccessorID)
	require.NoError(t, err)
	assert.Equal(t, models.TiebreakerStatusActive, succ.Status)
	assert.Equal(t, int64(500), succ.TiedAmount)
	assert.Len(t, succ.Participants, 2)
	assert.Equal(t, models.PlayerStatusPendingAllocation, f.reloadPlayer(t, player).Status)

	// The successor resolves like any other tiebreaker
	_, err = f.tiebreaks.SubmitRaise(f.ctx, succ.ID, teamA.ID, 600)
	require.NoError(t, err)
	_, err = f.tiebreaks.Concede(f.ctx, succ.ID, teamB.ID)
	require.NoError(t, err)

	p := f.reloadPlayer(t, player)
	assert.Equal(t, models.PlayerStatusAllocated, p.Status)
	require.NotNil(t, p.FinalPrice)
	assert.Equal(t, int64(600), *p.FinalPrice)
	assert.Equal(t, testBudget-600, f.remaining(t, teamA))
}

func TestTiebreakerValidation(t *testing.T) {
	f, teamA, teamB, _, tb := tiedFixture(t)
	outsider := f.team(t, "gamma")

	_, err := f.tiebreaks.SubmitRaise(f.ctx, tb.ID, outsider.ID, 500)
	assert.ErrorIs(t, err, services.ErrNotParticipant)
	_, err = f.tiebreaks.Concede(f.ctx, tb.ID, outsider.ID)
	assert.ErrorIs(t, err, services.ErrNotParticipant)

	// A raise must strictly exceed the tied amount and fit the budget
	_, err = f.tiebreaks.SubmitRaise(f.ctx, tb.ID, teamA.ID, tb.TiedAmount)
	assert.ErrorIs(t, err, services.ErrRaiseTooLow)
	_, err = f.tiebreaks.SubmitRaise(f.ctx, tb.ID, teamA.ID, testBudget+1)
	assert.ErrorIs(t, err, services.ErrInsufficientBudget)

	_, err = f.tiebreaks.SubmitRaise(f.ctx, tb.ID, teamA.ID, 500)
	require.NoError(t, err)

	// One action per participant
	_, err = f.tiebreaks.SubmitRaise(f.ctx, tb.ID, teamA.ID, 600)
	assert.ErrorIs(t, err, services.ErrAlreadyRaised)
	_, err = f.tiebreaks.Concede(f.ctx, tb.ID, teamA.ID)
	assert.ErrorIs(t, err, services.ErrAlreadyRaised)

	// Concession is idempotent: the resolve happens once, repeats no-op
	_, err = f.tiebreaks.Concede(f.ctx, tb.ID, teamB.ID)
	require.NoError(t, err)
	_, err = f.tiebreaks.SubmitRaise(f.ctx, tb.ID, teamB.ID, 700)
	assert.ErrorIs(t, err, services.ErrTiebreakerNotActive)
}

func TestTeamActiveTiebreakers(t *testing.T) {
	f, teamA, _, _, tb := tiedFixture(t)

	mine, err := f.tiebreaks.TeamActiveTiebreakers(f.ctx, teamA.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, tb.ID, mine[0].ID)
}
