// Package cli implements the gremlin command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gremlin/internal/config"
	"github.com/matzehuels/gremlin/pkg/buildinfo"
	"github.com/matzehuels/gremlin/pkg/integrations"
	"github.com/matzehuels/gremlin/pkg/integrations/npms"
	"github.com/matzehuels/gremlin/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "gremlin"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	flags   rootFlags
	cfg     *config.Config
	cfgPath string // file the config was read from, empty if none
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// InstallHooks routes fetch and HTTP lifecycle events to the CLI logger.
// They are logged at debug level and so only show with --verbose.
func (c *CLI) InstallHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetFetchHooks(h)
	observability.SetHTTPHooks(h)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Gremlin searches the npm registry",
		Long:         `Gremlin is a terminal client for npms.io. It searches npm packages as you type and shows ranked suggestions with their links.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	c.flags.register(root)

	// Register all subcommands
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Searcher Factory
// =============================================================================

// newSearcher creates an npms searcher from the effective configuration.
func (c *CLI) newSearcher() *npms.Searcher {
	return npms.NewSearcher(
		npms.WithBaseURL(c.cfg.BaseURL),
		npms.WithPageSize(c.cfg.PageSize),
		npms.WithDoer(integrations.NewHTTPClient(c.cfg.Timeout.Duration, c.cfg.UserAgent)),
		npms.WithLogger(c.Logger),
	)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
