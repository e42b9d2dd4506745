package handlers

import (
	"github.com/gin-gonic/gin"

	"partyhub/apperr"
)

// fail maps a service error onto its HTTP status and a JSON error body.
func fail(c *gin.Context, err error) {
	c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
}
