package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/secfolio/portfolio/contact"
	"github.com/secfolio/portfolio/logging"
	"github.com/secfolio/portfolio/tui"
)

var tuiLogFile string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the portfolio in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := zap.NewNop()
		if tuiLogFile != "" {
			var err error
			logger, err = logging.NewFile(level(), tuiLogFile)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
		}

		cfg := globalConfig.Contact
		form, statuses := tui.NewFormController(contact.Simulated{Delay: cfg.SubmitDelay}, cfg.SuccessDisplay, logger)
		model := tui.NewModel(newLoader(logger), globalConfig.Links, form, statuses)

		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running terminal UI: %w", err)
		}
		return nil
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiLogFile, "log-file", "", "write logs to this file (logging is off otherwise)")
}
