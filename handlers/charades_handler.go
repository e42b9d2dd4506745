package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partyhub/middleware"
	"partyhub/models"
	"partyhub/services"
)

type CharadesHandler struct {
	charades *services.CharadesService
	hub      *services.Hub
}

func NewCharadesHandler(charades *services.CharadesService, hub *services.Hub) *CharadesHandler {
	return &CharadesHandler{charades: charades, hub: hub}
}

type charadesJoinRequest struct {
	PlayerName string      `json:"player_name" binding:"required"`
	Team       models.Team `json:"team" binding:"required"`
}

type scoreRequest struct {
	Points int         `json:"points" binding:"required"`
	Team   models.Team `json:"team" binding:"required"`
}

func (h *CharadesHandler) CreateGame(c *gin.Context) {
	game, err := h.charades.Create(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"game_id": game.ID})
}

func (h *CharadesHandler) JoinGame(c *gin.Context) {
	gameID := c.Param("id")
	var req charadesJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.charades.Join(c.Request.Context(), gameID, req.PlayerName, req.Team)
	if err != nil {
		fail(c, err)
		return
	}

	h.broadcast(c, gameID)
	c.JSON(http.StatusOK, result)
}

func (h *CharadesHandler) ListGames(c *gin.Context) {
	games, err := h.charades.ListWaiting(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (h *CharadesHandler) StartGame(c *gin.Context) {
	gameID := c.Param("id")
	game, err := h.charades.Start(c.Request.Context(), gameID)
	if err != nil {
		fail(c, err)
		return
	}

	h.hub.BroadcastToGame("charades", gameID, "game_update", game)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *CharadesHandler) GetGame(c *gin.Context) {
	game, err := h.charades.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (h *CharadesHandler) ScorePoints(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := middleware.SessionFrom(c)
	result, err := h.charades.ScorePoints(c.Request.Context(), sess, req.Points, req.Team)
	if err != nil {
		fail(c, err)
		return
	}

	h.broadcast(c, sess.GameID)
	c.JSON(http.StatusOK, result)
}

func (h *CharadesHandler) EndTurn(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	handoff, err := h.charades.EndTurn(c.Request.Context(), sess)
	if err != nil {
		fail(c, err)
		return
	}

	h.broadcast(c, sess.GameID)
	c.JSON(http.StatusOK, handoff)
}

func (h *CharadesHandler) ReadyTurn(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	start, err := h.charades.ReadyTurn(c.Request.Context(), sess)
	if err != nil {
		fail(c, err)
		return
	}

	h.broadcast(c, sess.GameID)
	c.JSON(http.StatusOK, start)
}

// broadcast pushes the fresh game document to websocket clients after a
// mutation. Best effort; failures only log.
func (h *CharadesHandler) broadcast(c *gin.Context, gameID string) {
	if h.hub == nil {
		return
	}
	game, err := h.charades.Get(c.Request.Context(), gameID)
	if err != nil {
		return
	}
	h.hub.BroadcastToGame("charades", gameID, "game_update", game)
}
