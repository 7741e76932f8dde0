package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gremlin/internal/config"
)

// configCommand creates the configuration inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	var asTOML bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if asTOML {
				return c.cfg.Encode(out)
			}

			source := "defaults"
			if c.cfgPath != "" {
				source = c.cfgPath
			}
			printKeyValue(out, "source", source)
			printKeyValue(out, "base_url", c.cfg.BaseURL)
			printKeyValue(out, "page_size", fmt.Sprint(c.cfg.PageSize))
			printKeyValue(out, "debounce", c.cfg.Debounce.String())
			printKeyValue(out, "timeout", c.cfg.Timeout.String())
			printKeyValue(out, "theme", c.cfg.Theme)
			if c.cfg.UserAgent != "" {
				printKeyValue(out, "user_agent", c.cfg.UserAgent)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asTOML, "toml", false, "print as TOML, suitable for a config file")

	return cmd
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.flags.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
