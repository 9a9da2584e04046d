package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/leaguehq/auction-backend/internal/config"
	"github.com/leaguehq/auction-backend/internal/models"
	"github.com/leaguehq/auction-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// FinalizationService converts a closing round's active bids into
// allocations. The pipeline is deterministic and idempotent: it re-derives
// everything from persisted bids, allocations are keyed by (round, player),
// and re-running it for a round still in CLOSING never double-commits.
//
// FinalizeRound must be called with the round's write lock held (CloseRound
// owns that); CommitTiebreakerWin acquires the lock itself.
type FinalizationService struct {
	roundRepo  repositories.RoundRepository
	playerRepo repositories.PlayerRepository
	bidRepo    repositories.BidRepository
	tbRepo     repositories.TiebreakerRepository
	allocRepo  repositories.AllocationRepository
	budget     BudgetService
	locks      *RoundLocks
	cfg        config.AuctionConfig
}

// NewFinalizationService creates a new FinalizationService
func NewFinalizationService(
	roundRepo repositories.RoundRepository,
	playerRepo repositories.PlayerRepository,
	bidRepo repositories.BidRepository,
	tbRepo repositories.TiebreakerRepository,
	allocRepo repositories.AllocationRepository,
	budget BudgetService,
	locks *RoundLocks,
	cfg config.AuctionConfig,
) *FinalizationService {
	return &FinalizationService{
		roundRepo:  roundRepo,
		playerRepo: playerRepo,
		bidRepo:    bidRepo,
		tbRepo:     tbRepo,
		allocRepo:  allocRepo,
		budget:     budget,
		locks:      locks,
		cfg:        cfg,
	}
}

// candidate is one player's top active bid: the amount and every distinct
// team bidding it
type candidate struct {
	player *models.Player
	order  int // player creation order, the documented cross-item tie-break
	amount int64
	teams  []primitive.ObjectID
	bids   map[primitive.ObjectID]*models.Bid // teamID -> that team's top bid
}

// FinalizeRound runs the allocation pipeline for a round in CLOSING state.
func (s *FinalizationService) FinalizeRound(ctx context.Context, round *models.Round) error {
	trail := []string{stamp("Starting finalization")}

	bids, err := s.bidRepo.FindActiveByRound(ctx, round.ID)
	if err != nil {
		return fmt.Errorf("failed to load active bids: %w", err)
	}
	players, err := s.playerRepo.FindByCategory(ctx, round.Category)
	if err != nil {
		return fmt.Errorf("failed to load players: %w", err)
	}
	playerByID := make(map[primitive.ObjectID]*models.Player, len(players))
	orderOf := make(map[primitive.ObjectID]int, len(players))
	for i, p := range players {
		playerByID[p.ID] = p
		orderOf[p.ID] = i
	}

	// Prior state, for idempotent re-runs: committed allocations and
	// already-spawned tiebreakers
	priorAllocs, err := s.allocRepo.FindByRound(ctx, round.ID)
	if err != nil {
		return fmt.Errorf("failed to load allocations: %w", err)
	}
	tiebreakers, err := s.tbRepo.FindByRound(ctx, round.ID)
	if err != nil {
		return fmt.Errorf("failed to load tiebreakers: %w", err)
	}

	settledPlayers := make(map[primitive.ObjectID]bool)
	assignedTeams := make(map[primitive.ObjectID]bool)
	for _, a := range priorAllocs {
		settledPlayers[a.PlayerID] = true
		assignedTeams[a.TeamID] = true
	}
	for _, tb := range tiebreakers {
		settledPlayers[tb.PlayerID] = true
		// Tiebreaker participants are reserved: they can no longer win a
		// cheaper player in the sweep, so resolving the tiebreaker cannot
		// hand anyone a second win this round
		for _, p := range tb.Participants {
			assignedTeams[p.TeamID] = true
		}
	}

	candidates := s.collectTopBids(bids, playerByID, orderOf)
	trail = append(trail, stamp(fmt.Sprintf("Collected %d bids across %d contested players", len(bids), len(candidates))))

	// Sweep: highest amount first, creation order between players on equal
	// amounts. One win per team per round.
	var pending []candidate
	for _, c := range candidates {
		if settledPlayers[c.player.ID] {
			continue
		}
		var eligible []primitive.ObjectID
		for _, teamID := range c.teams {
			if !assignedTeams[teamID] {
				eligible = append(eligible, teamID)
			}
		}
		switch {
		case len(eligible) == 0:
			trail = append(trail, stamp(fmt.Sprintf("Player %s unallocated: every top bidder already won", c.player.Name)))
		case len(eligible) == 1:
			winner := eligible[0]
			assignedTeams[winner] = true
			settledPlayers[c.player.ID] = true
			pending = append(pending, candidate{
				player: c.player,
				amount: c.amount,
				teams:  []primitive.ObjectID{winner},
				bids:   c.bids,
			})
		default:
			// Distinct teams tied on the top amount: hold the player and
			// spawn a tiebreaker instead of allocating
			if err := s.spawnTiebreaker(ctx, round, c, eligible, &trail); err != nil {
				return err
			}
			settledPlayers[c.player.ID] = true
			for _, teamID := range eligible {
				assignedTeams[teamID] = true
			}
		}
	}

	// Commit the non-tied assignments
	for _, c := range pending {
		winner := c.teams[0]
		if err := s.commitAllocation(ctx, round, c.player, winner, c.bids[winner], c.amount, models.AllocationPhaseRegular, &trail); err != nil {
			return err
		}
	}

	if s.cfg.ShortfallAllocation {
		if err := s.allocateShortfalls(ctx, round, bids, playerByID, assignedTeams, settledPlayers, &trail); err != nil {
			return err
		}
	}

	if err := s.settleLosingBids(ctx, round, settledPlayers); err != nil {
		return err
	}

	trail = append(trail, stamp("Finalization complete"))
	if err := s.roundRepo.AppendExecutionLog(ctx, round.ID, trail); err != nil {
		slog.Error("Failed to append execution log", "error", err, "roundId", round.ID.Hex())
	}
	return nil
}

// collectTopBids reduces the active bids to one candidate per contested
// player, sorted by amount descending then player creation order.
func (s *FinalizationService) collectTopBids(
	bids []*models.Bid,
	playerByID map[primitive.ObjectID]*models.Player,
	orderOf map[primitive.ObjectID]int,
) []candidate {
	// A team may transiently hold two active rows on one player; keep the
	// newest amount per team
	topPerTeam := make(map[primitive.ObjectID]map[primitive.ObjectID]*models.Bid)
	for _, b := range bids {
		if _, ok := playerByID[b.PlayerID]; !ok {
			continue
		}
		perTeam, ok := topPerTeam[b.PlayerID]
		if !ok {
			perTeam = make(map[primitive.ObjectID]*models.Bid)
			topPerTeam[b.PlayerID] = perTeam
		}
		perTeam[b.TeamID] = b
	}

	var out []candidate
	for playerID, perTeam := range topPerTeam {
		c := candidate{
			player: playerByID[playerID],
			order:  orderOf[playerID],
			bids:   make(map[primitive.ObjectID]*models.Bid),
		}
		for _, b := range perTeam {
			if b.Amount > c.amount {
				c.amount = b.Amount
			}
		}
		for teamID, b := range perTeam {
			if b.Amount == c.amount {
				c.teams = append(c.teams, teamID)
				c.bids[teamID] = b
			}
		}
		// Deterministic participant order
		sort.Slice(c.teams, func(i, j int) bool {
			return c.teams[i].Hex() < c.teams[j].Hex()
		})
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].amount != out[j].amount {
			return out[i].amount > out[j].amount
		}
		return out[i].order < out[j].order
	})
	return out
}

// spawnTiebreaker opens a sub-auction for the tied teams and parks the
// player as pending allocation
func (s *FinalizationService) spawnTiebreaker(ctx context.Context, round *models.Round, c candidate, tied []primitive.ObjectID, trail *[]string) error {
	participants := make([]models.TiebreakerParticipant, len(tied))
	for i, teamID := range tied {
		participants[i] = models.TiebreakerParticipant{TeamID: teamID}
	}
	tb := &models.Tiebreaker{
		RoundID:      round.ID,
		PlayerID:     c.player.ID,
		TiedAmount:   c.amount,
		Participants: participants,
		Status:       models.TiebreakerStatusActive,
	}
	if err := s.tbRepo.Create(ctx, tb); err != nil {
		return fmt.Errorf("failed to create tiebreaker: %w", err)
	}
	c.player.Status = models.PlayerStatusPendingAllocation
	if err := s.playerRepo.Update(ctx, c.player); err != nil {
		return fmt.Errorf("failed to park tied player: %w", err)
	}
	*trail = append(*trail, stamp(fmt.Sprintf("Tie at %d on player %s: tiebreaker %s opened with %d teams",
		c.amount, c.player.Name, tb.ID.Hex(), len(tied))))
	slog.Info("Tiebreaker opened", "tiebreakerId", tb.ID.Hex(), "roundId", round.ID.Hex(),
		"playerId", c.player.ID.Hex(), "tiedAmount", c.amount, "participants", len(tied))
	return nil
}

// commitAllocation applies one assignment: debit, mark the player, record
// the allocation, settle the winning bid. An overdraft at debit is a
// finalization conflict: the player rolls back to available and is flagged
// for manual review, never silently dropped.
func (s *FinalizationService) commitAllocation(
	ctx context.Context,
	round *models.Round,
	player *models.Player,
	teamID primitive.ObjectID,
	bid *models.Bid,
	amount int64,
	phase models.AllocationPhase,
	trail *[]string,
) error {
	if _, err := s.allocRepo.FindByRoundAndPlayer(ctx, round.ID, player.ID); err == nil {
		return nil // already committed by a prior run
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check existing allocation: %w", err)
	}

	if err := s.budget.Debit(ctx, teamID, amount); err != nil {
		if errors.Is(err, ErrOverdraft) {
			// FinalizationConflict: reject the assignment, return the
			// player to the pool, flag for review
			player.Status = models.PlayerStatusAvailable
			player.NeedsReview = true
			player.WinningTeamID = nil
			player.FinalPrice = nil
			if uerr := s.playerRepo.Update(ctx, player); uerr != nil {
				return fmt.Errorf("failed to roll back player after conflict: %w", uerr)
			}
			*trail = append(*trail, stamp(fmt.Sprintf("FinalizationConflict: debit of %d for team %s on player %s overdrew; player returned to pool",
				amount, teamID.Hex(), player.Name)))
			slog.Error("FinalizationConflict: assignment rejected", "roundId", round.ID.Hex(),
				"playerId", player.ID.Hex(), "teamId", teamID.Hex(), "amount", amount)
			return nil
		}
		return err
	}

	price := amount
	player.Status = models.PlayerStatusAllocated
	player.WinningTeamID = &teamID
	player.FinalPrice = &price
	player.NeedsReview = false
	if err := s.playerRepo.Update(ctx, player); err != nil {
		// Undo the debit so the budget invariant survives a storage failure
		if cerr := s.budget.Credit(ctx, teamID, amount); cerr != nil {
			slog.Error("Failed to reverse debit after player update failure", "error", cerr,
				"teamId", teamID.Hex(), "amount", amount)
		}
		return fmt.Errorf("failed to mark player allocated: %w", err)
	}

	alloc := &models.Allocation{
		RoundID:  round.ID,
		PlayerID: player.ID,
		TeamID:   teamID,
		Amount:   amount,
		Phase:    phase,
	}
	if bid != nil {
		alloc.BidID = bid.ID
	}
	if err := s.allocRepo.Create(ctx, alloc); err != nil {
		return fmt.Errorf("failed to record allocation: %w", err)
	}

	if bid != nil {
		bid.Status = models.BidStatusWon
		if err := s.bidRepo.Update(ctx, bid); err != nil {
			return fmt.Errorf("failed to settle winning bid: %w", err)
		}
	}

	*trail = append(*trail, stamp(fmt.Sprintf("Allocated player %s to team %s at %d (%s)",
		player.Name, teamID.Hex(), amount, phase)))
	slog.Info("Player allocated", "roundId", round.ID.Hex(), "playerId", player.ID.Hex(),
		"teamId", teamID.Hex(), "amount", amount, "phase", phase)
	return nil
}

// allocateShortfalls awards teams that bid on fewer players than required
// and won nothing their highest remaining bid, priced at the rounded
// average of this round's winning amounts. A team that cannot afford the
// average is skipped; this is a normal outcome, not a conflict.
func (s *FinalizationService) allocateShortfalls(
	ctx context.Context,
	round *models.Round,
	bids []*models.Bid,
	playerByID map[primitive.ObjectID]*models.Player,
	assignedTeams map[primitive.ObjectID]bool,
	settledPlayers map[primitive.ObjectID]bool,
	trail *[]string,
) error {
	allocs, err := s.allocRepo.FindByRound(ctx, round.ID)
	if err != nil {
		return fmt.Errorf("failed to load allocations: %w", err)
	}
	if len(allocs) == 0 {
		return nil // nothing to average against
	}
	var total int64
	for _, a := range allocs {
		total += a.Amount
	}
	average := (total + int64(len(allocs))/2) / int64(len(allocs))

	bidsByTeam := make(map[primitive.ObjectID][]*models.Bid)
	for _, b := range bids {
		bidsByTeam[b.TeamID] = append(bidsByTeam[b.TeamID], b)
	}
	// Deterministic team order
	var teamIDs []primitive.ObjectID
	for teamID := range bidsByTeam {
		teamIDs = append(teamIDs, teamID)
	}
	sort.Slice(teamIDs, func(i, j int) bool { return teamIDs[i].Hex() < teamIDs[j].Hex() })

	for _, teamID := range teamIDs {
		teamBids := bidsByTeam[teamID]
		if assignedTeams[teamID] || len(teamBids) >= round.MaxBidsPerTeam {
			continue
		}
		// Highest bid on a player that is still on the table
		var best *models.Bid
		for _, b := range teamBids {
			if settledPlayers[b.PlayerID] {
				continue
			}
			if best == nil || b.Amount > best.Amount {
				best = b
			}
		}
		if best == nil {
			continue
		}
		remaining, err := s.budget.Remaining(ctx, teamID)
		if err != nil {
			return fmt.Errorf("failed to load team budget: %w", err)
		}
		if remaining < average {
			*trail = append(*trail, stamp(fmt.Sprintf("Shortfall skipped: team %s cannot afford the average %d",
				teamID.Hex(), average)))
			continue
		}
		player := playerByID[best.PlayerID]
		*trail = append(*trail, stamp(fmt.Sprintf("Shortfall: team %s gets player %s at average %d",
			teamID.Hex(), player.Name, average)))
		if err := s.commitAllocation(ctx, round, player, teamID, best, average, models.AllocationPhaseShortfall, trail); err != nil {
			return err
		}
		assignedTeams[teamID] = true
		settledPlayers[player.ID] = true
	}
	return nil
}

// settleLosingBids marks every remaining active bid as lost, except bids on
// players still held by an active tiebreaker
func (s *FinalizationService) settleLosingBids(ctx context.Context, round *models.Round, settled map[primitive.ObjectID]bool) error {
	tiebreakers, err := s.tbRepo.FindByRound(ctx, round.ID)
	if err != nil {
		return fmt.Errorf("failed to load tiebreakers: %w", err)
	}
	contested := make(map[primitive.ObjectID]bool)
	for _, tb := range tiebreakers {
		if tb.Status == models.TiebreakerStatusActive {
			contested[tb.PlayerID] = true
		}
	}

	bids, err := s.bidRepo.FindActiveByRound(ctx, round.ID)
	if err != nil {
		return fmt.Errorf("failed to reload bids: %w", err)
	}
	for _, b := range bids {
		if contested[b.PlayerID] {
			continue
		}
		b.Status = models.BidStatusLost
		if err := s.bidRepo.Update(ctx, b); err != nil {
			return fmt.Errorf("failed to settle losing bid: %w", err)
		}
	}
	return nil
}

// CommitTiebreakerWin re-enters the commit step for the single player a
// resolved tiebreaker decided. It takes the round's write lock itself.
func (s *FinalizationService) CommitTiebreakerWin(ctx context.Context, tb *models.Tiebreaker, winnerTeamID primitive.ObjectID, amount int64) error {
	mu := s.locks.Get(tb.RoundID)
	mu.Lock()
	defer mu.Unlock()

	round, err := s.roundRepo.FindByID(ctx, tb.RoundID)
	if err != nil {
		return fmt.Errorf("failed to load round: %w", err)
	}
	player, err := s.playerRepo.FindByID(ctx, tb.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to load player: %w", err)
	}

	winningBid, err := s.bidRepo.FindActiveByPlayerRoundTeam(ctx, tb.PlayerID, tb.RoundID, winnerTeamID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to load winning bid: %w", err)
	}

	trail := []string{stamp(fmt.Sprintf("Tiebreaker %s resolved: team %s at %d", tb.ID.Hex(), winnerTeamID.Hex(), amount))}
	if err := s.commitAllocation(ctx, round, player, winnerTeamID, winningBid, amount, models.AllocationPhaseTiebreaker, &trail); err != nil {
		return err
	}

	// The losers' bids on this player are settled now
	remaining, err := s.bidRepo.FindActiveByPlayerAndRound(ctx, tb.PlayerID, tb.RoundID)
	if err != nil {
		return fmt.Errorf("failed to reload bids: %w", err)
	}
	for _, b := range remaining {
		b.Status = models.BidStatusLost
		if err := s.bidRepo.Update(ctx, b); err != nil {
			return fmt.Errorf("failed to settle losing bid: %w", err)
		}
	}

	if err := s.roundRepo.AppendExecutionLog(ctx, round.ID, trail); err != nil {
		slog.Error("Failed to append execution log", "error", err, "roundId", round.ID.Hex())
	}
	return nil
}

// ReleaseTiebreakerPlayer returns a player to the pool when a tiebreaker
// ends without a winner (every participant conceded).
func (s *FinalizationService) ReleaseTiebreakerPlayer(ctx context.Context, tb *models.Tiebreaker) error {
	mu := s.locks.Get(tb.RoundID)
	mu.Lock()
	defer mu.Unlock()

	player, err := s.playerRepo.FindByID(ctx, tb.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to load player: %w", err)
	}
	player.Status = models.PlayerStatusAvailable
	if err := s.playerRepo.Update(ctx, player); err != nil {
		return fmt.Errorf("failed to release player: %w", err)
	}

	bids, err := s.bidRepo.FindActiveByPlayerAndRound(ctx, tb.PlayerID, tb.RoundID)
	if err != nil {
		return fmt.Errorf("failed to reload bids: %w", err)
	}
	for _, b := range bids {
		b.Status = models.BidStatusLost
		if err := s.bidRepo.Update(ctx, b); err != nil {
			return fmt.Errorf("failed to settle bid: %w", err)
		}
	}

	entry := stamp(fmt.Sprintf("Tiebreaker %s cancelled: player %s returned to pool", tb.ID.Hex(), player.Name))
	if err := s.roundRepo.AppendExecutionLog(ctx, tb.RoundID, []string{entry}); err != nil {
		slog.Error("Failed to append execution log", "error", err, "roundId", tb.RoundID.Hex())
	}
	slog.Info("Tiebreaker player released", "tiebreakerId", tb.ID.Hex(), "playerId", tb.PlayerID.Hex())
	return nil
}

func stamp(msg string) string {
	return time.Now().Format(time.RFC3339) + ": " + msg
}
