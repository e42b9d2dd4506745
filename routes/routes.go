package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"partyhub/handlers"
	"partyhub/middleware"
	"partyhub/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	charadesHandler *handlers.CharadesHandler,
	vennHandler *handlers.VennHandler,
	adminHandler *handlers.AdminHandler,
	hub *services.Hub,
	sessions services.SessionStore,
) {
	api := router.Group("/api")
	{
		charades := api.Group("/charades")
		{
			charades.POST("/games", charadesHandler.CreateGame)
			charades.GET("/games", charadesHandler.ListGames)
			charades.GET("/games/:id", charadesHandler.GetGame)
			charades.POST("/games/:id/join", charadesHandler.JoinGame)
			charades.POST("/games/:id/start", charadesHandler.StartGame)

			actions := charades.Group("/actions")
			actions.Use(middleware.RequireSession(sessions))
			{
				actions.POST("/score", charadesHandler.ScorePoints)
				actions.POST("/end-turn", charadesHandler.EndTurn)
				// ready-turn and start-turn are the same acknowledgment; both
				// require the caller to hold the turn.
				actions.POST("/ready-turn", charadesHandler.ReadyTurn)
				actions.POST("/start-turn", charadesHandler.ReadyTurn)
			}
		}

		venn := api.Group("/venn")
		{
			venn.POST("/games", vennHandler.CreateGame)
			venn.GET("/games", vennHandler.ListGames)
			venn.GET("/games/:id", vennHandler.GetGame)
			venn.POST("/games/:id/join", vennHandler.JoinGame)
			venn.POST("/games/:id/start", vennHandler.StartGame)

			actions := venn.Group("/actions")
			actions.Use(middleware.RequireSession(sessions))
			{
				actions.POST("/submit", vennHandler.SubmitPhrase)
				actions.GET("/submissions", vennHandler.GetSubmissions)
				actions.POST("/vote", vennHandler.Vote)
				actions.POST("/next-round", vennHandler.StartNextRound)
			}
		}

		// Explicitly unauthenticated; see DESIGN.md.
		admin := api.Group("/admin")
		{
			admin.POST("/phrases/reset", adminHandler.ResetPhrases)
			admin.POST("/phrases/import", adminHandler.ImportPhrases)
			admin.POST("/words/import", adminHandler.ImportWords)
			admin.POST("/games/delete-all", adminHandler.DeleteAllGames)
		}
	}

	// WebSocket endpoint for game-state push updates.
	router.GET("/ws/:kind/:gameID", func(c *gin.Context) {
		kind := c.Param("kind")
		gameID := c.Param("gameID")

		if kind != "charades" && kind != "venn" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown game kind"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Str("game_id", gameID).Msg("ws upgrade failed")
			return
		}

		hub.RegisterClient(conn, kind, gameID)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
