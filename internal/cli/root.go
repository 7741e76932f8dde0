package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gremlin/internal/config"
)

// rootFlags holds persistent flags shared by every command.
// Flags that were set explicitly override the config file and environment.
type rootFlags struct {
	configPath string
	baseURL    string
	pageSize   int
	timeout    string
	theme      string
}

func (f *rootFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.StringVar(&f.baseURL, "base-url", "", "npms API base URL")
	pf.IntVarP(&f.pageSize, "size", "n", 0, "number of suggestions per search")
	pf.StringVar(&f.timeout, "timeout", "", "request timeout (e.g. 5s)")
	pf.StringVar(&f.theme, "theme", "", "color theme: dark or light")
}

// loadConfig resolves the effective configuration for cmd:
// flags > environment > config file > defaults.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	cfg, used, err := config.Load(c.flags.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = c.flags.baseURL
	}
	if flags.Changed("size") {
		cfg.PageSize = c.flags.pageSize
	}
	if flags.Changed("timeout") {
		if err := cfg.Timeout.UnmarshalText([]byte(c.flags.timeout)); err != nil {
			return fmt.Errorf("invalid --timeout %q: %w", c.flags.timeout, err)
		}
	}
	if flags.Changed("theme") {
		cfg.Theme = c.flags.theme
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg = cfg
	c.cfgPath = used
	c.Logger.Debug("Config loaded", "file", used, "base_url", cfg.BaseURL, "page_size", cfg.PageSize)
	return nil
}
