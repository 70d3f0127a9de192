package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"matchctl/internal/config"
)

type globalOptions struct {
	configPath string
	envFile    string
	feedURL    string
	logFile    string
	logLevel   string
}

func Run(args []string) error {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "matchctl",
		Short: "create matches on a live CS:GO match feed",
		Long: "matchctl: terminal console for the match feed\n\n" +
			"Quick Start:\n" +
			"  matchctl config init\n" +
			"  matchctl demo-feed            # local feed for trying things out\n" +
			"  matchctl create               # interactive create-match form\n" +
			"  matchctl create --prompt      # line-by-line prompts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", config.DefaultConfigPath, "config file path")
	pf.StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "dotenv file layered over the config file")
	pf.StringVar(&opts.feedURL, "feed-url", "", "feed websocket URL (overrides config)")
	pf.StringVar(&opts.logFile, "log-file", "", "log file path (overrides config)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		newCreateCmd(opts),
		newDemoFeedCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// loadConfig applies the command-line overrides on top of the layered file
// and environment configuration.
func (o *globalOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{Path: o.configPath, EnvFile: o.envFile})
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(o.feedURL); v != "" {
		cfg.FeedURL = v
	}
	if v := strings.TrimSpace(o.logFile); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(o.logLevel); v != "" {
		cfg.LogLevel = v
	}
	return config.Normalize(cfg)
}
