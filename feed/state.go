package feed

import "github.com/secfolio/portfolio/models"

// State is what the display layer renders for the projects section.
// While Loading is true it shows a skeleton.
type State struct {
	Loading  bool
	Projects []models.ProjectSummary
}

// Pending is the state from activation until the request settles.
func Pending() State {
	return State{Loading: true}
}

// Empty reports a settled feed with nothing to show.
func (s State) Empty() bool {
	return !s.Loading && len(s.Projects) == 0
}
