package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"matchctl/internal/config"
)

func newConfigCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "show or initialize the configuration",
	}
	cmd.AddCommand(newConfigShowCmd(g), newConfigInitCmd(g))
	return cmd
}

func newConfigShowCmd(g *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), g.configPath, cfg, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")
	return cmd
}

func printConfig(w io.Writer, path string, cfg config.Config, jsonOut bool) error {
	if jsonOut {
		return printJSON(w, cfg)
	}
	source := path
	if !config.Exists(path) {
		source = path + " (not found, defaults)"
	}
	fmt.Fprintln(w, kv("config", source))
	fmt.Fprintln(w, kv("app_name", cfg.AppName))
	fmt.Fprintln(w, kv("env", cfg.Env))
	fmt.Fprintln(w, kv("feed_url", cfg.FeedURL))
	fmt.Fprintln(w, kv("connect_timeout", cfg.ConnectTimeout.String()))
	fmt.Fprintln(w, kv("log_file", defaultIfEmpty(cfg.LogFile, "(disabled)")))
	fmt.Fprintln(w, kv("log_level", cfg.LogLevel))
	fmt.Fprintln(w, kv("listen_addr", cfg.ListenAddr))
	return nil
}

func newConfigInitCmd(g *globalOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "write a config file with the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if config.Exists(g.configPath) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", g.configPath)
			}
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if err := config.Save(g.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", g.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
