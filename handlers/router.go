package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/secfolio/portfolio/analytics"
	"github.com/secfolio/portfolio/contact"
	"github.com/secfolio/portfolio/content"
	"github.com/secfolio/portfolio/feed"
	"github.com/secfolio/portfolio/logging"
	"github.com/secfolio/portfolio/middleware"
	"github.com/secfolio/portfolio/web"
)

// ProjectFeed resolves one activation of the projects section.
type ProjectFeed interface {
	Resolve(ctx context.Context) feed.State
}

// VisitStore is the analytics backend: page views go in, stats come out.
type VisitStore interface {
	middleware.VisitRecorder
	Stats(ctx context.Context, now time.Time) (*analytics.Stats, error)
}

// Deps is everything the router needs. Feed and Sessions are required.
// Tracker enables visit counting; Analytics with AdminToken enables the
// stats endpoint.
type Deps struct {
	Feed       ProjectFeed
	Sessions   *contact.Sessions
	ResetDelay time.Duration
	Links      content.Links
	Logger     *zap.Logger

	Tracker    *middleware.VisitTracker
	Analytics  VisitStore
	AdminToken string
}

// SetupRouter builds the gin engine with every route registered.
func SetupRouter(deps Deps) (*gin.Engine, error) {
	if deps.Feed == nil {
		return nil, errors.New("handlers: project feed is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("handlers: contact sessions are required")
	}
	if deps.ResetDelay <= 0 {
		deps.ResetDelay = contact.DefaultResetDelay
	}
	logger := logging.OrNop(deps.Logger)

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(logger), middleware.Recovery(logger))
	if deps.Tracker != nil {
		r.Use(deps.Tracker.Handler())
	}

	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(web.Static()))

	r.GET("/", Index(deps))
	r.GET("/projects", ProjectsFragment(deps.Feed))
	r.GET("/contact-form", ContactForm(deps.Sessions, deps.ResetDelay))
	r.POST("/contact", SubmitContact(deps.Sessions, deps.ResetDelay))

	r.GET("/api/projects", ListProjects(deps.Feed))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.Analytics != nil && deps.AdminToken != "" {
		admin := r.Group("/admin", middleware.AdminAuth(deps.AdminToken))
		admin.GET("/api/stats", AdminStats(deps.Analytics, logger))
	}

	return r, nil
}
