package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminStats returns the visit counters as JSON.
func AdminStats(store VisitStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := store.Stats(c.Request.Context(), time.Now())
		if err != nil {
			logger.Error("loading visit stats failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
