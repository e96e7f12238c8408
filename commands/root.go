package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/secfolio/portfolio/config"
	"github.com/secfolio/portfolio/feed"
	"github.com/secfolio/portfolio/github"
	"github.com/secfolio/portfolio/logging"
)

var (
	globalConfig *config.Config
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "DevSecOps portfolio - web server, project feed and terminal view",
	Long: `portfolio serves a single-page DevSecOps portfolio. The featured projects
are read from the GitHub repository listing of the configured account, and the
contact form walks through idle, sending and success with a simulated delivery.`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

// Execute runs the root command
func Execute(cfg *config.Config) error {
	globalConfig = cfg
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(tuiCmd)
}

// level is the effective log level: the flag wins over the environment.
func level() string {
	if logLevel != "" {
		return logLevel
	}
	return globalConfig.LogLevel
}

func newLoader(logger *zap.Logger) *feed.Loader {
	gh := globalConfig.GitHub
	client := github.NewClient(gh.APIURL, gh.Token, gh.Timeout)
	return feed.NewLoader(client, feed.Config{
		Account: gh.Username,
		PerPage: gh.PerPage,
		Sort:    feed.SortByStars,
	}, logger)
}

func newCLILogger() (*zap.Logger, error) {
	return logging.New(level(), false)
}
