package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/secfolio/portfolio/contact"
	"github.com/secfolio/portfolio/feed"
)

// Messages
type projectsLoadedMsg feed.State
type statusMsg contact.Status
type submitDoneMsg struct{ err error }

// Commands
func loadProjects(f ProjectFeed) tea.Cmd {
	return func() tea.Msg {
		return projectsLoadedMsg(f.Resolve(context.Background()))
	}
}

// waitForStatus delivers the next status change from the form controller.
// The model re-arms it after every statusMsg.
func waitForStatus(ch <-chan contact.Status) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return statusMsg(s)
	}
}

// submit hands the typed fields to the controller. The controller keeps its
// stored fields unless it accepts them.
func submit(ctl *contact.Controller, f contact.Fields) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{err: ctl.SubmitFields(context.Background(), f)}
	}
}
