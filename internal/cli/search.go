package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	gerrors "github.com/matzehuels/gremlin/pkg/errors"
	"github.com/matzehuels/gremlin/pkg/integrations/npms"
)

// ErrReported marks a failure that has already been shown to the user.
// main exits non-zero without printing it again.
var ErrReported = errors.New("error already reported")

const tableDescWidth = 60

// searchOpts holds the command-line flags for the search command.
type searchOpts struct {
	json bool
}

// searchCommand creates the one-shot search command.
func (c *CLI) searchCommand() *cobra.Command {
	var opts searchOpts

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search npm packages and print the suggestions",
		Example: `  gremlin search react
  gremlin search --size 5 http client
  gremlin search --json lodash`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print results as JSON")

	return cmd
}

// runSearch performs a single search, showing a spinner on errw while it is
// in flight, and writes the results to out.
func (c *CLI) runSearch(ctx context.Context, out, errw io.Writer, query string, opts searchOpts) error {
	logger := loggerFromContext(ctx)
	searcher := c.newSearcher()

	prog := newProgress(logger)
	if err := searcher.Search(ctx, query); err != nil {
		return err
	}

	spin := newSpinner(ctx, errw, fmt.Sprintf("Searching npm for %q...", strings.TrimSpace(query)))
	spin.Start()
	searcher.Wait()

	if ctx.Err() != nil {
		spin.Stop()
		return ctx.Err()
	}

	state := searcher.State()
	if state.Failed() {
		logger.Debug("Search failed", "code", gerrors.GetCode(state.Err))
		spin.StopWithError(state.Message())
		return ErrReported
	}
	spin.Stop()
	prog.done(fmt.Sprintf("Found %d packages", len(state.Data)))

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(state.Data)
	}

	if len(state.Data) == 0 {
		printInfo(out, "No packages found for %q", strings.TrimSpace(query))
		return nil
	}
	fmt.Fprintln(out, resultsTable(state.Data))
	printDetail(out, "%d packages from %s", len(state.Data), c.cfg.BaseURL)
	return nil
}

// resultsTable renders suggestions as a bordered table.
func resultsTable(results []npms.PackageResult) string {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{
			r.Package.Name,
			r.Package.Version,
			fmt.Sprintf("%.2f", r.Score.Final),
			ansi.Truncate(r.Package.Description, tableDescWidth, "…"),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Package", "Version", "Score", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return styleHeader.Padding(0, 1)
			case col == 0:
				return base.Foreground(colorCyan).Bold(true)
			case col == 2:
				return base.Foreground(colorGreen)
			default:
				return base.Foreground(colorGray)
			}
		}).
		Render()
}
