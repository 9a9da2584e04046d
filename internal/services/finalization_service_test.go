package services_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/leaguehq/auction-backend/internal/config"
	"github.com/leaguehq/auction-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseRoundAllocatesHighestBid(t *testing.T) {
	f := newFixture(t)
	teamA := f.team(t, "alpha")
	teamB := f.team(t, "beta")
	player := f.player(t, "Kane", "MID", 100)
	round := f.openRound(t, "MID", 1)

	winning := f.mustBid(t, player, round, teamA, 500)
	losing := f.mustBid(t, player, round, teamB, 300)

	require.NoError(t, f.rounds.CloseRound(f.ctx, round.ID))

	got, err := f.roundRepo.FindByID(f.ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusFinalized, got.Status)
	assert.NotEmpty(t, got.ExecutionLog)

	p := f.reloadPlayer(t, player)
	assert.Equal(t, models.PlayerStatusAllocated, p.Status)
	require.NotNil(t, p.WinningTeamID)
	assert.Equal(t, teamA.ID, *p.WinningTeamID)
	require.NotNil(t, p.FinalPrice)
	assert.Equal(t, int64(500), *p.FinalPrice)

	assert.Equal(t, testBudget-500, f.remaining(t, teamA))
	assert.Equal(t, testBudget, f.remaining(t, teamB))

	assert.Equal(t, models.BidStatusWon, f.reloadBid(t, winning).Status)
	assert.Equal(t, models.BidStatusLost, f.reloadBid(t, losing).Status)

	allocs, err := f.allocRepo.FindByRound(f.ctx, round.ID)
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, models.AllocationPhaseRegular, allocs[0].Phase)
	assert.Equal(t, winning.ID, allocs[0].BidID)
}

func TestCloseRoundOneWinPerTeamAndShortfall(t *testing.T) {
	f := newFixture(t)
	teamA := f.team(t, "alpha")
	teamB := f.team(t, "beta")
	p1 := f.player(t, "Kane", "MID", 100)
	p2 := f.player(t, "Bruno", "MID", 100)
	round := f.openRound(t, "MID", 2)

	f.mustBid(t, p1, round, teamA, 500)
	f.mustBid(t, p2, round, teamA, 400)
	bBid := f.mustBid(t, p2, round, teamB, 300)

	require.NoError(t, f.rounds.CloseRound(f.ctx, round.ID))

	// A wins its most expensive bid only
	r1 := f.reloadPlayer(t, p1)
	require.NotNil(t, r1.WinningTeamID)
	assert.Equal(t, teamA.ID, *r1.WinningTeamID)
	assert.Equal(t, testBudget-500, f.remaining(t, teamA))

	// B bid on fewer players than allowed and won nothing in the sweep, so
	// the shortfall pass hands it p2 at the round's average winning price
	r2 := f.reloadPlayer(t, p2)
	require.NotNil(t, r2.WinningTeamID)
	assert.Equal(t, teamB.ID, *r2.WinningTeamID)
	require.NotNil(t, r2.FinalPrice)
	assert.Equal(t, int64(500), *r2.FinalPrice)
	assert.Equal(t, testBudget-500, f.remaining(t, teamB))
	assert.Equal(t, models.BidStatusWon, f.reloadBid(t, bBid).Status)

	allocs, err := f.allocRepo.FindByRound(f.ctx, round.ID)
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	phases := map[models.AllocationPhase]int{}
	for _, a := range allocs {
		phases[a.Phase]++
	}
	assert.Equal(t, 1, phases[models.AllocationPhaseRegular])
	assert.Equal(t, 1, phases[models.AllocationPhaseShortfall])
}

func TestCloseRoundShortfallSkipsUnaffordableAverage(t *testing.T) {
	f := newFixture(t)
	teamA := f.team(t, "alpha")
	teamB := f.team(t, "beta")
	p1 := f.player(t, "Kane", "MID", 100)
	p2 := f.player(t, "Bruno", "MID", 100)
	round := f.openRound(t, "MID", 2)

	f.mustBid(t, p1, round, teamA, 900)
	f.mustBid(t, p2, round, teamA, 400)
	bBid := f.mustBid(t, p2, round, teamB, 300)

	// Budget drained after bidding; B can no longer pay the round average
	require.NoError(t, f.budget.Debit(f.ctx, teamB.ID, 950))

	require.NoError(t, f.rounds.CloseRound(f.ctx, round.ID))

	// A wins p1, setting the average at 900. B's shortfall award is simply
	// skipped: no debit attempt, no review flag, player stays in the pool
	p := f.reloadPlayer(t, p2)
	assert.Equal(t, models.PlayerStatusAvailable, p.Status)
	assert.False(t, p.NeedsReview)
	assert.Nil(t, p.WinningTeamID)
	assert.Equal(t, int64(50), f.remaining(t, teamB))
	assert.Equal(t, models.BidStatusLost, f.reloadBid(t, bBid).Status)

	allocs, err := f.allocRepo.FindByRound(f.ctx, round.ID)
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, models.AllocationPhaseRegular, allocs[0].Phase)

	got, err := f.roundRepo.FindByID(f.ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusFinalized, got.Status)
	skipped := false
	for _, entry := range got.ExecutionLog {
		if strings.Contains(entry, "Shortfall skipped") {
			skipped = true
		}
	}
	assert.True(t, skipped)
}

func TestCloseRoundShortfallDisabled(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Auction.ShortfallAllocation = false
	})

	teamA := f.team(t, "alpha")
	teamB := f.team(t, "beta")
	p1 := f.player(t, "Kane", "MID", 100)
	p2 := f.player(t, "Bruno", "MID", 100)
	round := f.openRound(t, "MID", 2)

	f.mustBid(t, p1, round, teamA, 500)
	f.mustBid(t, p2, round, teamA, 400)
	f.mustBid(t, p2, round, teamB, 300)

	require.NoError(t, f.rounds.CloseRound(f.ctx, round.ID))

	// Without the shortfall pass p2 simply returns to the pool
	r2 := f.reloadPlayer(t, p2)
	assert.Equal(t, models.PlayerStatusAvailable, r2.Status)
	assert.Nil(t, r2.WinningTeamID)
	assert.Equal(t, testBudget, f.remaining(t, teamB))
}

func TestCloseRoundIdempotent(t *testing.T) {
	f := newFixture(t)
	team := f.team(t, "alpha")
	player := f.player(t, "Kane", "MID", 100)
	round := f.openRound(t, "MID", 1)
	f.mustBid(t, player, round, team, 400)

	require.NoError(t, f.rounds.CloseRound(f.ctx, round.ID))
	require.NoError(t, f.rounds.CloseRound(f.ctx, round.ID))

	assert.Equal(t, testBudget-400, f.remaining(t, team))
	allocs, err := f.allocRepo.FindByRound(f.ctx, round.ID)
	require.NoError(t, err)
	assert.Len(t, allocs, 1)
}

func TestCloseRoundTieSpawnsTiebreaker(t *testing.T) {
	f := newFixture(t)
	teamA := f.team(t, "alpha")
	teamB := f.team(t, "beta")
	player := f.player(t, "Kane", "MID", 100)
	round := f.openRound(t, "MID", 1)

	a := f.mustBid(t, player, round, teamA, 400)
	b := f.mustBid(t, player, round, teamB, 400)

	require.NoError(t, f.rounds.CloseRound(f.ctx, round.ID))

	tb := f.activeTiebreaker(t, round)
	assert.Equal(t, player.ID, tb.PlayerID)
	assert.Equal(t, int64(400), tb.TiedAmount)
	assert.Len(t, tb.Participants, 2)

	// The player is parked, the tied bids stay live until resolution, and
	// nobody has been charged
	assert.Equal(t, models.PlayerStatusPendingAllocation, f.reloadPlayer(t, player).Status)
	assert.Equal(t, models.BidStatusActive, f.reloadBid(t, a).Status)
	assert.Equal(t, models.BidStatusActive, f.reloadBid(t, b).Status)
	assert.Equal(t, testBudget, f.remaining(t, teamA))
	assert.Equal(t, testBudget, f.remaining(t, teamB))

	got, err := f.roundRepo.FindByID(f.ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusFinalized, got.Status)
}

func TestCloseRoundTiebreakerReservesTeams(t *testing.T) {
	f := newFixture(t)
	teamA := f.team(t, "alpha")
	teamB := f.team(t, "beta")
	p1 := f.player(t, "Kane", "MID", 100)
	p2 := f.player(t, "Bruno", "MID", 100)
	round := f.openRound(t, "MID", 2)

	f.mustBid(t, p1, round, teamA, 400)
	f.mustBid(t, p1, round, teamB, 400)
	// B is also the sole top bidder on p2, but it is reserved by the
	// tiebreaker on p1 and cannot take a second player
	f.mustBid(t, p2, round, teamB, 350)

	require.NoError(t, f.rounds.CloseRound(f.ctx, round.ID))

	r2 := f.reloadPlayer(t, p2)
	assert.Equal(t, models.PlayerStatusAvailable, r2.Status)
	assert.Nil(t, r2.WinningTeamID)
}

func TestCloseRoundFinalizationConflict(t *testing.T) {
	f := newFixture(t)
	team := f.team(t, "alpha")
	player := f.player(t, "Kane", "MID", 100)
	round := f.openRound(t, "MID", 1)
	bid := f.mustBid(t, player, round, team, 800)

	// Budget drained between bid placement and finalization
	require.NoError(t, f.budget.Debit(f.ctx, team.ID, 900))

	require.NoError(t, f.rounds.CloseRound(f.ctx, round.ID))

	// The assignment is rejected, the player goes back to the pool flagged
	// for review, and the round still finalizes
	p := f.reloadPlayer(t, player)
	assert.Equal(t, models.PlayerStatusAvailable, p.Status)
	assert.True(t, p.NeedsReview)
	assert.Nil(t, p.WinningTeamID)

	allocs, err := f.allocRepo.FindByRound(f.ctx, round.ID)
	require.NoError(t, err)
	assert.Empty(t, allocs)
	assert.Equal(t, int64(100), f.remaining(t, team))
	assert.Equal(t, models.BidStatusLost, f.reloadBid(t, bid).Status)

	got, err := f.roundRepo.FindByID(f.ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusFinalized, got.Status)
}

func TestConcurrentPlaceBidAndClose(t *testing.T) {
	f := newFixture(t)
	player := f.player(t, "Kane", "MID", 1)
	round := f.openRound(t, "MID", 1)

	const bidders = 16
	teams := make([]*models.Team, bidders)
	for i := range teams {
		teams[i] = f.team(t, "team"+string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	for i := range teams {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Either accepted before the close or rejected after; both are
			// valid outcomes
			_, _ = f.bids.PlaceBid(f.ctx, player.ID, round.ID, teams[i].ID, int64(10+i))
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, f.rounds.CloseRound(f.ctx, round.ID))
	}()
	wg.Wait()

	// After the dust settles no bid may still be active: every accepted bid
	// was settled by finalization
	active, err := f.bidRepo.FindActiveByRound(f.ctx, round.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	got, err := f.roundRepo.FindByID(f.ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusFinalized, got.Status)
}
