package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/secfolio/portfolio/contact"
)

const sessionCookie = "contact_session"

const (
	problemIncomplete = "Please fill in your name, email and message."
	problemInFlight   = "Your message is still being sent."
)

// controllerFor returns the visitor's form controller, starting a session
// when the request carries none.
func controllerFor(c *gin.Context, sessions *contact.Sessions) *contact.Controller {
	id, _ := c.Cookie(sessionCookie)
	ctl, assigned := sessions.Get(id)
	if assigned != id {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, assigned, 0, "/", "", false, true)
	}
	return ctl
}

// formView renders the visitor's form without starting a session. Visitors
// that never posted see an idle, empty form.
func formView(c *gin.Context, sessions *contact.Sessions, resetDelay time.Duration) contactView {
	id, _ := c.Cookie(sessionCookie)
	if ctl, ok := sessions.Lookup(id); ok {
		return newContactView(ctl, resetDelay)
	}
	return contactView{ResetAfterMS: resetDelay.Milliseconds()}
}

// ContactForm renders the form in the visitor's current state.
func ContactForm(sessions *contact.Sessions, resetDelay time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact.html", formView(c, sessions, resetDelay))
	}
}

// SubmitContact takes the posted fields and submits them. The response is
// written once the delivery has resolved. Rejected posts leave the stored
// form untouched; an incomplete one is echoed back so nothing typed is lost.
func SubmitContact(sessions *contact.Sessions, resetDelay time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctl := controllerFor(c, sessions)

		var fields contact.Fields
		if err := c.ShouldBind(&fields); err != nil {
			renderProblem(c, http.StatusBadRequest, echoFields(ctl, resetDelay, fields), problemIncomplete)
			return
		}

		err := ctl.SubmitFields(c.Request.Context(), fields)
		switch {
		case errors.Is(err, contact.ErrIncompleteFields):
			renderProblem(c, http.StatusBadRequest, echoFields(ctl, resetDelay, fields), problemIncomplete)
		case errors.Is(err, contact.ErrSubmissionInFlight):
			renderProblem(c, http.StatusConflict, newContactView(ctl, resetDelay), problemInFlight)
		default:
			// Delivery failures are a form state, not a request error.
			c.HTML(http.StatusOK, "contact.html", newContactView(ctl, resetDelay))
		}
	}
}

func echoFields(ctl *contact.Controller, resetDelay time.Duration, fields contact.Fields) contactView {
	view := newContactView(ctl, resetDelay)
	view.Fields = fields
	return view
}

func renderProblem(c *gin.Context, code int, view contactView, problem string) {
	view.Problem = problem
	c.HTML(code, "contact.html", view)
}
