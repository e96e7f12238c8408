package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/secfolio/portfolio/feed"
	"github.com/secfolio/portfolio/models"
)

var projectsJSON bool

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Fetch and list the featured projects",
	Long: `Fetch the configured account's repositories once, sorted by stars, and print
them the way the projects section shows them. A failed fetch prints an empty list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newCLILogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		state := newLoader(logger).Resolve(cmd.Context())
		if projectsJSON {
			return writeProjectsJSON(cmd.OutOrStdout(), state)
		}
		printProjects(cmd.OutOrStdout(), state)
		return nil
	},
}

func init() {
	projectsCmd.Flags().BoolVar(&projectsJSON, "json", false, "print the list as JSON")
}

func printProjects(w io.Writer, state feed.State) {
	if state.Empty() {
		color.New(color.FgYellow).Fprintln(w, "No projects available.")
		return
	}

	name := color.New(color.FgHiWhite, color.Bold)
	lang := color.New(color.FgCyan)
	link := color.New(color.FgHiBlack)

	for i, p := range state.Projects {
		name.Fprintf(w, "%d. %s", i+1, p.Name)
		if p.ShowStars() {
			color.New(color.FgYellow).Fprintf(w, "  %s", p.StarBadge())
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "   %s\n", p.Description)
		fmt.Fprintf(w, "   %s  %s\n", lang.Sprint(p.Language), link.Sprint(p.URL))
	}
}

func writeProjectsJSON(w io.Writer, state feed.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(models.ProjectsResponse{
		Projects: state.Projects,
		Total:    len(state.Projects),
	})
}
