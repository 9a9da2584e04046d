package services_test

import (
	"testing"

	"github.com/leaguehq/auction-backend/internal/models"
	"github.com/leaguehq/auction-backend/internal/services"
	"github.com/leaguehq/auction-backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	auth := services.NewAuthService(f.teamRepo, f.cfg)

	team, err := auth.Register(f.ctx, &models.RegisterRequest{
		Name:     "alpha",
		Email:    "alpha@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeam, team.Role)
	assert.Equal(t, testBudget, team.BudgetInitial)
	assert.Equal(t, testBudget, team.BudgetRemaining)
	assert.NotEqual(t, "secret1", team.Password)

	_, err = auth.Register(f.ctx, &models.RegisterRequest{
		Name:     "alpha2",
		Email:    "alpha@example.com",
		Password: "secret2",
	})
	assert.ErrorIs(t, err, services.ErrEmailTaken)

	resp, err := auth.Login(f.ctx, &models.LoginRequest{
		Email:    "alpha@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, team.ID, resp.Team.ID)

	claims, err := utils.ValidateJWT(resp.Token, f.cfg)
	require.NoError(t, err)
	assert.Equal(t, team.ID.Hex(), claims["team_id"])
	assert.Equal(t, models.RoleTeam, claims["role"])

	_, err = auth.Login(f.ctx, &models.LoginRequest{
		Email:    "alpha@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = auth.Login(f.ctx, &models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "secret1",
	})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}
