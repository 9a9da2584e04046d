package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/leaguehq/auction-backend/internal/config"
	"github.com/leaguehq/auction-backend/internal/handlers"
	"github.com/leaguehq/auction-backend/internal/middleware"
)

// HandlerDependencies carries the handlers the router wires up
type HandlerDependencies struct {
	AuthHandler       *handlers.AuthHandler
	BidHandler        *handlers.BidHandler
	RoundHandler      *handlers.RoundHandler
	TiebreakerHandler *handlers.TiebreakerHandler
	TeamHandler       *handlers.TeamHandler
	PlayerHandler     *handlers.PlayerHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
		}
	}

	// Team routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		bids := protected.Group("/bids")
		{
			bids.POST("", deps.BidHandler.PlaceBid)
			bids.DELETE("/:playerId", deps.BidHandler.WithdrawBid)
			bids.GET("/mine", deps.BidHandler.MyBids)
		}

		players := protected.Group("/players")
		{
			players.GET("", deps.PlayerHandler.ListPlayers)
			players.GET("/:id", deps.PlayerHandler.GetPlayer)
			players.GET("/:id/highest", deps.BidHandler.CurrentHighest)
		}

		tiebreakers := protected.Group("/tiebreakers")
		{
			tiebreakers.GET("/mine", deps.TiebreakerHandler.MyTiebreakers)
			tiebreakers.POST("/:id/raise", deps.TiebreakerHandler.SubmitRaise)
			tiebreakers.POST("/:id/concede", deps.TiebreakerHandler.Concede)
		}

		protected.GET("/teams/me/budget", deps.TeamHandler.MyBudget)
	}

	// Admin routes
	admin := router.Group("/api/v1")
	admin.Use(middleware.JWTAuthMiddleware(cfg), middleware.AdminOnly())
	{
		rounds := admin.Group("/rounds")
		{
			rounds.POST("", deps.RoundHandler.OpenRound)
			rounds.GET("", deps.RoundHandler.ListRounds)
			rounds.GET("/:id", deps.RoundHandler.GetRound)
			rounds.GET("/:id/allocations", deps.RoundHandler.RoundAllocations)
			rounds.POST("/:id/extend", deps.RoundHandler.ExtendRound)
			rounds.POST("/:id/close", deps.RoundHandler.CloseRound)
			rounds.POST("/:id/cancel", deps.RoundHandler.CancelRound)
		}

		admin.POST("/players", deps.PlayerHandler.CreatePlayer)
	}

	return router
}
