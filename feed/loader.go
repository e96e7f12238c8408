package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/secfolio/portfolio/github"
	"github.com/secfolio/portfolio/logging"
	"github.com/secfolio/portfolio/models"
)

const (
	DefaultPerPage = 6
	SortByStars    = "stars"

	NoDescription = "No description provided"
	NoLanguage    = "N/A"
)

// Source lists an account's repositories as raw records
type Source interface {
	ListUserRepos(ctx context.Context, user string, opts github.ListOptions) ([]json.RawMessage, error)
}

// Config selects what the feed asks for
type Config struct {
	Account string
	PerPage int
	Sort    string
}

// MalformedRecordError marks an upstream record that could not be summarised.
type MalformedRecordError struct {
	Index int
	Err   error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed repository record at index %d: %v", e.Index, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Loader retrieves and shapes the project list. It holds no state between
// activations; every Load is a fresh request.
type Loader struct {
	source Source
	cfg    Config
	logger *zap.Logger
}

// NewLoader creates a Loader. Zero PerPage and empty Sort fall back to the defaults.
func NewLoader(source Source, cfg Config, logger *zap.Logger) *Loader {
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.Sort == "" {
		cfg.Sort = SortByStars
	}
	return &Loader{source: source, cfg: cfg, logger: logging.OrNop(logger)}
}

// Load performs one activation: a single request, then the mapping. Failures
// are logged and yield an empty list; the result is never nil.
func (l *Loader) Load(ctx context.Context) []models.ProjectSummary {
	start := time.Now()

	records, err := l.source.ListUserRepos(ctx, l.cfg.Account, github.ListOptions{
		Sort:    l.cfg.Sort,
		PerPage: l.cfg.PerPage,
	})
	if err != nil {
		l.logger.Error("fetching projects failed",
			zap.String("account", l.cfg.Account),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return []models.ProjectSummary{}
	}

	projects := make([]models.ProjectSummary, 0, len(records))
	for i, raw := range records {
		project, err := Summarize(raw)
		if err != nil {
			l.logger.Warn("skipping repository record",
				zap.Error(&MalformedRecordError{Index: i, Err: err}))
			continue
		}
		projects = append(projects, project)
	}

	l.logger.Debug("projects loaded",
		zap.String("account", l.cfg.Account),
		zap.Int("records", len(records)),
		zap.Int("projects", len(projects)),
		zap.Duration("duration", time.Since(start)))

	return projects
}

// Resolve runs one activation and returns the settled state.
func (l *Loader) Resolve(ctx context.Context) State {
	return State{Projects: l.Load(ctx)}
}

// Summarize maps one upstream record to its display shape.
func Summarize(raw json.RawMessage) (models.ProjectSummary, error) {
	var rec models.RepoRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.ProjectSummary{}, fmt.Errorf("decode: %w", err)
	}

	switch {
	case rec.ID == nil:
		return models.ProjectSummary{}, fmt.Errorf("missing id")
	case rec.Name == nil:
		return models.ProjectSummary{}, fmt.Errorf("missing name")
	case rec.HTMLURL == nil:
		return models.ProjectSummary{}, fmt.Errorf("missing html_url")
	case rec.StargazersCount == nil:
		return models.ProjectSummary{}, fmt.Errorf("missing stargazers_count")
	case *rec.StargazersCount < 0:
		return models.ProjectSummary{}, fmt.Errorf("negative stargazers_count %d", *rec.StargazersCount)
	}

	return models.ProjectSummary{
		ID:          *rec.ID,
		Name:        *rec.Name,
		Description: orPlaceholder(rec.Description, NoDescription),
		URL:         *rec.HTMLURL,
		Language:    orPlaceholder(rec.Language, NoLanguage),
		Stars:       *rec.StargazersCount,
	}, nil
}

// orPlaceholder treats null, absent and empty the same way.
func orPlaceholder(v *string, placeholder string) string {
	if v == nil || *v == "" {
		return placeholder
	}
	return *v
}
