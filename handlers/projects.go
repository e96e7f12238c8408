package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/secfolio/portfolio/models"
)

// ProjectsFragment renders the settled projects grid. A failed fetch renders
// an empty grid.
func ProjectsFragment(f ProjectFeed) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := f.Resolve(c.Request.Context())
		c.HTML(http.StatusOK, "projects.html", gin.H{
			"Projects": state.Projects,
		})
	}
}

// ListProjects is the JSON rendition of the projects section.
func ListProjects(f ProjectFeed) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := f.Resolve(c.Request.Context())
		c.JSON(http.StatusOK, models.ProjectsResponse{
			Projects: state.Projects,
			Total:    len(state.Projects),
		})
	}
}
