// Package tui is the terminal rendition of the portfolio.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/secfolio/portfolio/contact"
	"github.com/secfolio/portfolio/content"
	"github.com/secfolio/portfolio/feed"
)

// ProjectFeed resolves one activation of the projects section.
type ProjectFeed interface {
	Resolve(ctx context.Context) feed.State
}

const (
	focusName = iota
	focusEmail
	focusMessage
	focusCount
)

// formHeight is the number of rows below the viewport: form, status and help.
const formHeight = 17

// Model is the whole terminal page.
type Model struct {
	Viewport viewport.Model
	Spinner  spinner.Model
	Name     textinput.Model
	Email    textinput.Model
	Message  textarea.Model

	Projects feed.State
	Status   contact.Status
	Problem  string

	focus    int
	feed     ProjectFeed
	form     *contact.Controller
	statusCh <-chan contact.Status
	links    content.Links

	Width  int
	Height int
	Ready  bool
}

// NewFormController builds a contact controller whose status changes are
// forwarded on the returned channel for the model to consume.
func NewFormController(delivery contact.Delivery, resetDelay time.Duration, logger *zap.Logger) (*contact.Controller, <-chan contact.Status) {
	ch := make(chan contact.Status, 8)
	ctl := contact.NewController(delivery,
		contact.WithResetDelay(resetDelay),
		contact.WithLogger(logger),
		contact.WithObserver(func(s contact.Status) { ch <- s }))
	return ctl, ch
}

// NewModel creates the model with the projects section pending.
func NewModel(f ProjectFeed, links content.Links, ctl *contact.Controller, statusCh <-chan contact.Status) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accent)

	name := textinput.New()
	name.Placeholder = "Your name"
	name.Prompt = ""
	name.Focus()

	email := textinput.New()
	email.Placeholder = "your.email@example.com"
	email.Prompt = ""

	msg := textarea.New()
	msg.Placeholder = "Tell me about your project or inquiry..."
	msg.ShowLineNumbers = false
	msg.SetHeight(4)

	return Model{
		Spinner:  s,
		Name:     name,
		Email:    email,
		Message:  msg,
		Projects: feed.Pending(),
		Status:   ctl.Status(),
		feed:     f,
		form:     ctl,
		statusCh: statusCh,
		links:    links,
	}
}

// Init starts the projects activation and begins listening for form status.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.Spinner.Tick,
		textinput.Blink,
		loadProjects(m.feed),
		waitForStatus(m.statusCh),
	)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			return m, m.setFocus((m.focus + 1) % focusCount)
		case "shift+tab":
			return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
		case "ctrl+s":
			if m.Status == contact.StatusSending {
				return m, nil
			}
			m.Problem = ""
			return m, submit(m.form, m.fields())
		case "ctrl+r":
			if m.Projects.Loading {
				return m, nil
			}
			m.Projects = feed.Pending()
			m.refreshBody()
			return m, tea.Batch(m.Spinner.Tick, loadProjects(m.feed))
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		bodyHeight := max(msg.Height-formHeight, 3)

		if !m.Ready {
			m.Viewport = viewport.New(msg.Width, bodyHeight)
			m.Viewport.KeyMap = viewport.KeyMap{
				PageDown: key.NewBinding(key.WithKeys("pgdown")),
				PageUp:   key.NewBinding(key.WithKeys("pgup")),
			}
			m.Ready = true
		} else {
			m.Viewport.Width = msg.Width
			m.Viewport.Height = bodyHeight
		}
		m.Name.Width = max(msg.Width-4, 10)
		m.Email.Width = max(msg.Width-4, 10)
		m.Message.SetWidth(max(msg.Width-2, 10))
		m.refreshBody()
		return m, nil

	case spinner.TickMsg:
		if !m.Projects.Loading && m.Status != contact.StatusSending {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		m.refreshBody()
		return m, cmd

	case projectsLoadedMsg:
		m.Projects = feed.State(msg)
		m.refreshBody()
		return m, nil

	case statusMsg:
		m.Status = contact.Status(msg)
		if m.Status == contact.StatusSuccess {
			m.Name.Reset()
			m.Email.Reset()
			m.Message.Reset()
		}
		cmds = append(cmds, waitForStatus(m.statusCh))
		if m.Status == contact.StatusSending {
			cmds = append(cmds, m.Spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case submitDoneMsg:
		switch {
		case errors.Is(msg.err, contact.ErrIncompleteFields):
			m.Problem = "Please fill in your name, email and message."
		case errors.Is(msg.err, contact.ErrSubmissionInFlight):
			m.Problem = "Your message is still being sent."
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		m.Name, cmd = m.Name.Update(msg)
	case focusEmail:
		m.Email, cmd = m.Email.Update(msg)
	case focusMessage:
		m.Message, cmd = m.Message.Update(msg)
	}
	cmds = append(cmds, cmd)

	if m.Ready {
		var viewportCmd tea.Cmd
		m.Viewport, viewportCmd = m.Viewport.Update(msg)
		cmds = append(cmds, viewportCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = i
	m.Name.Blur()
	m.Email.Blur()
	m.Message.Blur()
	switch i {
	case focusName:
		return m.Name.Focus()
	case focusEmail:
		return m.Email.Focus()
	default:
		return m.Message.Focus()
	}
}

func (m Model) fields() contact.Fields {
	return contact.Fields{
		Name:    m.Name.Value(),
		Email:   m.Email.Value(),
		Message: m.Message.Value(),
	}
}

func (m *Model) refreshBody() {
	if !m.Ready {
		return
	}
	m.Viewport.SetContent(renderBody(m.Projects, m.Spinner.View(), m.links, m.Width))
}

// View renders the UI
func (m Model) View() string {
	if !m.Ready {
		return "Initializing..."
	}

	title := titleStyle.Render("🛡  " + content.SiteTitle)
	help := helpStyle.Render("tab: next field • ctrl+s: send • pgup/pgdn: scroll • ctrl+r: reload projects • esc: quit")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		m.Viewport.View(),
		m.renderForm(),
		help,
	)
}

func (m Model) renderForm() string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("Get In Touch"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(content.ContactIntro))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s\n%s\n", label("Name", m.focus == focusName), m.Name.View())
	fmt.Fprintf(&b, "%s\n%s\n", label("Email", m.focus == focusEmail), m.Email.View())
	fmt.Fprintf(&b, "%s\n%s\n\n", label("Message", m.focus == focusMessage), m.Message.View())

	if m.Status == contact.StatusSending {
		b.WriteString(disabledButtonStyle.Render(m.Spinner.View() + " " + contact.StatusSending.Message()))
	} else {
		b.WriteString(buttonStyle.Render("Send Message"))
	}
	b.WriteString("\n")

	switch {
	case m.Problem != "":
		b.WriteString(errorStyle.Render(m.Problem))
	case m.Status == contact.StatusSuccess:
		b.WriteString(successStyle.Render(m.Status.Message()))
	case m.Status == contact.StatusError:
		b.WriteString(errorStyle.Render(m.Status.Message()))
	}

	return b.String()
}

func label(text string, focused bool) string {
	if focused {
		return headingStyle.UnsetMarginTop().Render("› " + text)
	}
	return mutedStyle.Render("  " + text)
}
