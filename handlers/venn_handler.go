package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partyhub/middleware"
	"partyhub/services"
)

type VennHandler struct {
	venn *services.VennService
	hub  *services.Hub
}

func NewVennHandler(venn *services.VennService, hub *services.Hub) *VennHandler {
	return &VennHandler{venn: venn, hub: hub}
}

type vennJoinRequest struct {
	PlayerName string `json:"player_name" binding:"required"`
}

type submitRequest struct {
	TargetPlayerID string `json:"target_player_id" binding:"required"`
	Phrase         string `json:"phrase" binding:"required"`
}

type voteRequest struct {
	SubmissionID string `json:"submission_id" binding:"required"`
}

func (h *VennHandler) CreateGame(c *gin.Context) {
	game, err := h.venn.Create(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"game_id": game.ID})
}

func (h *VennHandler) JoinGame(c *gin.Context) {
	gameID := c.Param("id")
	var req vennJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.venn.Join(c.Request.Context(), gameID, req.PlayerName)
	if err != nil {
		fail(c, err)
		return
	}

	h.broadcast(c, gameID)
	c.JSON(http.StatusOK, result)
}

func (h *VennHandler) ListGames(c *gin.Context) {
	games, err := h.venn.ListWaiting(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (h *VennHandler) StartGame(c *gin.Context) {
	gameID := c.Param("id")
	game, err := h.venn.Start(c.Request.Context(), gameID)
	if err != nil {
		fail(c, err)
		return
	}

	h.hub.BroadcastToGame("venn", gameID, "game_update", game)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *VennHandler) GetGame(c *gin.Context) {
	game, err := h.venn.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (h *VennHandler) SubmitPhrase(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := middleware.SessionFrom(c)
	game, err := h.venn.Submit(c.Request.Context(), sess, req.TargetPlayerID, req.Phrase)
	if err != nil {
		fail(c, err)
		return
	}

	h.hub.BroadcastToGame("venn", sess.GameID, "game_update", game)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *VennHandler) GetSubmissions(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	submissions, err := h.venn.SubmissionsFor(c.Request.Context(), sess)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

func (h *VennHandler) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := middleware.SessionFrom(c)
	game, err := h.venn.Vote(c.Request.Context(), sess, req.SubmissionID)
	if err != nil {
		fail(c, err)
		return
	}

	h.hub.BroadcastToGame("venn", sess.GameID, "game_update", game)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *VennHandler) StartNextRound(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	game, err := h.venn.StartNextRound(c.Request.Context(), sess)
	if err != nil {
		fail(c, err)
		return
	}

	h.hub.BroadcastToGame("venn", sess.GameID, "game_update", game)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *VennHandler) broadcast(c *gin.Context, gameID string) {
	if h.hub == nil {
		return
	}
	game, err := h.venn.Get(c.Request.Context(), gameID)
	if err != nil {
		return
	}
	h.hub.BroadcastToGame("venn", gameID, "game_update", game)
}
