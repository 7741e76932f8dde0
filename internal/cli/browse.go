package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// browseCommand creates the interactive search command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "browse",
		Aliases: []string{"ui"},
		Short:   "Search npm packages interactively",
		Long: `Open an interactive search box. Suggestions are fetched from npms.io once
typing pauses, and the npm link of the package selected with enter is
printed after the browser closes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdin) {
				return fmt.Errorf("browse needs an interactive terminal; use %q instead", appName+" search")
			}

			ctx := cmd.Context()
			searcher := c.newSearcher()
			model := NewBrowseModel(ctx, searcher, c.cfg.Debounce.Duration, c.cfg.Theme)

			final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			searcher.Stop()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				return fmt.Errorf("run browser: %w", err)
			}

			if m, ok := final.(BrowseModel); ok && m.Selected != nil {
				out := cmd.OutOrStdout()
				p := m.Selected.Package
				printSuccess(out, "%s %s", p.Name, StyleDim.Render(p.Version))
				printLink(out, p.Links.Npm)
			}
			return nil
		},
	}
}
