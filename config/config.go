package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/secfolio/portfolio/content"
)

// Config holds all application configuration
type Config struct {
	Addr    string
	GinMode string

	LogLevel string

	GitHub    GitHubConfig
	Contact   ContactConfig
	Links     content.Links
	Analytics AnalyticsConfig

	// AdminToken guards /admin/api/*. Empty disables the admin API.
	AdminToken string
}

// GitHubConfig controls the project feed query
type GitHubConfig struct {
	Username string
	APIURL   string
	Token    string
	Timeout  time.Duration
	PerPage  int
}

// ContactConfig controls the contact form timings
type ContactConfig struct {
	SubmitDelay    time.Duration
	SuccessDisplay time.Duration
	SessionTTL     time.Duration
}

// AnalyticsConfig controls visit counting. An empty DBPath disables it.
type AnalyticsConfig struct {
	DBPath    string
	Retention time.Duration
}

// Load reads .env (if present) and the process environment
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:       getEnv("ADDR", ":"+getEnv("PORT", "8080")),
		GinMode:    os.Getenv("GIN_MODE"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		AdminToken: os.Getenv("ADMIN_TOKEN"),
		GitHub: GitHubConfig{
			Username: getEnv("GITHUB_USERNAME", "your-github-username"),
			APIURL:   getEnv("GITHUB_API_URL", "https://api.github.com"),
			Token:    os.Getenv("GITHUB_TOKEN"),
		},
		Links: content.Links{
			GitHub:   getEnv("GITHUB_PROFILE_URL", "https://github.com"),
			LinkedIn: getEnv("LINKEDIN_URL", "https://linkedin.com"),
			Email:    getEnv("CONTACT_EMAIL", "your.email@example.com"),
		},
		Analytics: AnalyticsConfig{
			DBPath: os.Getenv("ANALYTICS_DB"),
		},
	}

	var err error
	if cfg.GitHub.Timeout, err = getDuration("GITHUB_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.GitHub.PerPage, err = getInt("PROJECTS_PER_PAGE", 6); err != nil {
		return nil, err
	}
	if cfg.GitHub.PerPage <= 0 {
		return nil, fmt.Errorf("PROJECTS_PER_PAGE must be positive, got %d", cfg.GitHub.PerPage)
	}
	if cfg.Contact.SubmitDelay, err = getDuration("CONTACT_SUBMIT_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.Contact.SuccessDisplay, err = getDuration("CONTACT_SUCCESS_DISPLAY", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.Contact.SessionTTL, err = getDuration("CONTACT_SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Analytics.Retention, err = getDuration("ANALYTICS_RETENTION", 365*24*time.Hour); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: negative duration %s", key, v)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
