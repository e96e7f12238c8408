package middleware

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/secfolio/portfolio/analytics"
	"github.com/secfolio/portfolio/logging"
)

// VisitRecorder stores page views
type VisitRecorder interface {
	Record(ctx context.Context, v analytics.Visit) error
}

var untrackedPrefixes = []string{
	"/static/",
	"/admin/",
	"/api/",
	"/health",
	"/favicon",
}

const recordTimeout = 5 * time.Second

// VisitTracker records page views with hashed client IPs. Asset, API and
// admin paths are skipped, and so is anyone sending "DNT: 1".
type VisitTracker struct {
	recorder VisitRecorder
	hasher   *analytics.Hasher
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewVisitTracker creates a tracker writing to recorder.
func NewVisitTracker(recorder VisitRecorder, hasher *analytics.Hasher, logger *zap.Logger) *VisitTracker {
	return &VisitTracker{
		recorder: recorder,
		hasher:   hasher,
		logger:   logging.OrNop(logger),
	}
}

// Handler is the gin middleware.
func (t *VisitTracker) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != "GET" || c.GetHeader("DNT") == "1" || untracked(path) {
			c.Next()
			return
		}

		visit := analytics.Visit{
			HashedIP:  t.hasher.Hash(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			Timestamp: time.Now(),
		}

		// Recording must not hold up the response.
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			if err := t.recorder.Record(ctx, visit); err != nil {
				t.logger.Warn("recording visit failed", zap.Error(err))
			}
		}()

		c.Next()
	}
}

// Wait blocks until every visit handed off so far has been written. Call it
// after the server has stopped accepting requests and before closing the store.
func (t *VisitTracker) Wait() {
	t.wg.Wait()
}

func untracked(path string) bool {
	for _, prefix := range untrackedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
