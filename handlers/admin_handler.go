package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partyhub/services"
)

// AdminHandler exposes the out-of-band maintenance surface: content pool
// resets and imports, and hard deletion of all games. It carries no
// authorization beyond reachability.
type AdminHandler struct {
	phrases  *services.PhraseService
	words    *services.WordService
	charades *services.CharadesService
	venn     *services.VennService
}

func NewAdminHandler(phrases *services.PhraseService, words *services.WordService, charades *services.CharadesService, venn *services.VennService) *AdminHandler {
	return &AdminHandler{phrases: phrases, words: words, charades: charades, venn: venn}
}

func (h *AdminHandler) ResetPhrases(c *gin.Context) {
	reset, err := h.phrases.ResetAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "reset": reset})
}

func (h *AdminHandler) ImportPhrases(c *gin.Context) {
	var entries []services.PhraseImport
	if err := c.ShouldBindJSON(&entries); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imported, err := h.phrases.Import(c.Request.Context(), entries)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "imported": imported})
}

func (h *AdminHandler) ImportWords(c *gin.Context) {
	var words []string
	if err := c.ShouldBindJSON(&words); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imported, err := h.words.Import(c.Request.Context(), words)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "imported": imported})
}

func (h *AdminHandler) DeleteAllGames(c *gin.Context) {
	charades, err := h.charades.DeleteAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	venn, err := h.venn.DeleteAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": charades + venn})
}
