package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/secfolio/portfolio/contact"
	"github.com/secfolio/portfolio/content"
)

// skeletonCards is how many placeholder cards the projects section shows
// while loading.
const skeletonCards = 3

type pageData struct {
	Title        string
	HeroTitle    string
	HeroTagline  string
	About        []string
	Highlights   []content.Highlight
	Skills       []string
	Links        content.Links
	Skeletons    []struct{}
	ContactIntro string
	Contact      contactView
	Footer       string
}

// Index renders the whole page. The projects section starts out pending and
// loads itself from /projects.
func Index(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", newPageData(deps.Links, formView(c, deps.Sessions, deps.ResetDelay)))
	}
}

func newPageData(links content.Links, form contactView) pageData {
	return pageData{
		Title:        content.SiteTitle,
		HeroTitle:    content.HeroTitle,
		HeroTagline:  content.HeroTagline,
		About:        content.AboutMe,
		Highlights:   content.Highlights,
		Skills:       content.Skills,
		Links:        links,
		Skeletons:    make([]struct{}, skeletonCards),
		ContactIntro: content.ContactIntro,
		Contact:      form,
		Footer:       content.Footer,
	}
}

type contactView struct {
	Fields       contact.Fields
	Sending      bool
	Success      bool
	Error        bool
	Message      string
	ResetAfterMS int64
	Problem      string
}

func newContactView(ctl *contact.Controller, resetDelay time.Duration) contactView {
	status := ctl.Status()
	return contactView{
		Fields:       ctl.Fields(),
		Sending:      status == contact.StatusSending,
		Success:      status == contact.StatusSuccess,
		Error:        status == contact.StatusError,
		Message:      status.Message(),
		ResetAfterMS: resetDelay.Milliseconds(),
	}
}
