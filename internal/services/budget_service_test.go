package services_test

import (
	"testing"

	"github.com/leaguehq/auction-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetDebitAndCredit(t *testing.T) {
	f := newFixture(t)
	team := f.team(t, "alpha")

	require.NoError(t, f.budget.Debit(f.ctx, team.ID, 400))
	assert.Equal(t, testBudget-400, f.remaining(t, team))

	// Overdrafts are rejected and leave the balance untouched
	err := f.budget.Debit(f.ctx, team.ID, testBudget)
	assert.ErrorIs(t, err, services.ErrOverdraft)
	assert.Equal(t, testBudget-400, f.remaining(t, team))

	// Credits reverse debits but never lift the balance above the initial
	require.NoError(t, f.budget.Credit(f.ctx, team.ID, 600))
	assert.Equal(t, testBudget, f.remaining(t, team))
	require.NoError(t, f.budget.Credit(f.ctx, team.ID, 100))
	assert.Equal(t, testBudget, f.remaining(t, team))

	err = f.budget.Debit(f.ctx, team.ID, -1)
	assert.ErrorIs(t, err, services.ErrBadAmount)
}

func TestBudgetDebitToZero(t *testing.T) {
	f := newFixture(t)
	team := f.team(t, "alpha")

	require.NoError(t, f.budget.Debit(f.ctx, team.ID, testBudget))
	assert.Equal(t, int64(0), f.remaining(t, team))

	err := f.budget.Debit(f.ctx, team.ID, 1)
	assert.ErrorIs(t, err, services.ErrOverdraft)
}
