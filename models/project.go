package models

import "fmt"

// ProjectSummary is the display-ready shape of one upstream repository.
// It is derived on every feed activation and never persisted.
type ProjectSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Language    string `json:"language"`
	Stars       int    `json:"stars"`
}

// ShowStars reports whether the popularity badge is rendered.
// A zero count is hidden rather than shown as "⭐ 0".
func (p ProjectSummary) ShowStars() bool {
	return p.Stars > 0
}

// StarBadge is the popularity badge text.
func (p ProjectSummary) StarBadge() string {
	return fmt.Sprintf("⭐ %d", p.Stars)
}

// RepoRecord is the subset of an upstream repository record the feed reads.
// Pointer fields distinguish absent/null from zero values; everything else
// in the record is ignored.
type RepoRecord struct {
	ID              *int64  `json:"id"`
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	HTMLURL         *string `json:"html_url"`
	Language        *string `json:"language"`
	StargazersCount *int    `json:"stargazers_count"`
}

// ProjectsResponse is the JSON shape of /api/projects.
type ProjectsResponse struct {
	Projects []ProjectSummary `json:"projects"`
	Total    int              `json:"total"`
}
