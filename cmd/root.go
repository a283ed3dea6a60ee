package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/lepinkainen/kindlecovers/internal/cache"
	"github.com/lepinkainen/kindlecovers/internal/config"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. KINDLECOVERS_AMAZON_ENABLED.
const envPrefix = "KINDLECOVERS"

var (
	stdout    io.Writer = os.Stdout
	newSource           = buildSource
)

// CLI represents the complete command structure for the kindlecovers application
type CLI struct {
	// Global flags
	Config  string `help:"Path to a YAML config file (default ./config.yaml when present)" type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging"`
	Timeout string `help:"Timeout for a single page fetch (e.g., 30s)"`
	Backend string `help:"Page fetcher backend (http or chrome)"`

	ShowBrowser bool `help:"Show the browser window when using the chrome backend"`

	// Cache flags
	CacheDB string `help:"Path to the page cache SQLite database"`
	NoCache bool   `help:"Disable the page cache"`

	Resolve ResolveCmd `cmd:"" default:"withargs" help:"Resolve hi-res Kindle cover URLs for a book"`
	Cache   cache.Cmd  `cmd:"" help:"Manage the page cache"`
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("kindlecovers"),
		kong.Description("Find high resolution cover images for Kindle editions of books."),
		kong.UsageOnError(),
	)

	initLogging(cli.Verbose)

	cfg, err := initConfig(viper.GetViper(), &cli)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := ctx.Run(cfg); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// initConfig layers defaults, the config file, environment variables and
// command line flags, in increasing precedence.
func initConfig(v *viper.Viper, cli *CLI) (*config.Config, error) {
	config.SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cli.Config != "" {
		v.SetConfigFile(cli.Config)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cli.Config != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("Config file not found, using defaults")
	} else {
		slog.Debug("Loaded config file", "path", v.ConfigFileUsed())
	}

	applyFlags(v, cli)

	return config.Load(v)
}

// applyFlags overrides config keys for the global flags that were given.
func applyFlags(v *viper.Viper, cli *CLI) {
	if cli.Timeout != "" {
		v.Set("timeout", cli.Timeout)
	}
	if cli.Backend != "" {
		v.Set("backend", cli.Backend)
	}
	if cli.ShowBrowser {
		v.Set("headless", false)
	}
	if cli.CacheDB != "" {
		v.Set("cache.dbfile", cli.CacheDB)
	}
	if cli.NoCache {
		v.Set("cache.enabled", false)
	}
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	// Results go to stdout, so logs stay on stderr
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
