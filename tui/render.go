package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/secfolio/portfolio/content"
	"github.com/secfolio/portfolio/feed"
	"github.com/secfolio/portfolio/models"
)

// renderBody lays out everything above the contact form.
func renderBody(state feed.State, spin string, links content.Links, width int) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render(content.HeroTitle))
	b.WriteString("\n")
	b.WriteString(content.HeroTagline)
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("About Me"))
	b.WriteString("\n")
	for _, p := range content.AboutMe {
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	for _, h := range content.Highlights {
		fmt.Fprintf(&b, "• %s: %s\n", lipgloss.NewStyle().Bold(true).Render(h.Title), h.Body)
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("GitHub %s  LinkedIn %s  Email %s", links.GitHub, links.LinkedIn, links.Email)))
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Core Skills"))
	b.WriteString("\n")
	b.WriteString(strings.Join(content.Skills, " · "))
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Featured Projects"))
	b.WriteString("\n")
	b.WriteString(renderProjects(state, spin, width))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(content.Footer))

	return b.String()
}

func renderProjects(state feed.State, spin string, width int) string {
	if state.Loading {
		return spin + " Loading projects..."
	}
	if state.Empty() {
		return mutedStyle.Render("No projects available.")
	}

	cardWidth := max(width-4, 20)
	cards := make([]string, 0, len(state.Projects))
	for _, p := range state.Projects {
		cards = append(cards, renderCard(p, cardWidth))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func renderCard(p models.ProjectSummary, width int) string {
	meta := badgeStyle.Render(p.Language)
	if p.ShowStars() {
		meta += "  " + mutedStyle.Render(p.StarBadge())
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render(p.Name),
		mutedStyle.Render(p.Description),
		meta,
		lipgloss.NewStyle().Foreground(accent).Render(p.URL),
	)
	return cardStyle.Width(width).Render(body)
}
