package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/tgienger/erii/internal/app"
	"github.com/tgienger/erii/internal/config"
	"github.com/tgienger/erii/internal/console"
	"github.com/tgienger/erii/internal/logging"
	"github.com/tgienger/erii/internal/storage"
	"github.com/tgienger/erii/internal/ui"
	"golang.org/x/term"
)

// cli holds what the persistent flags and config resolve to.
type cli struct {
	overrides config.Overrides
	cfg       *config.Config
	logger    *log.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "erii",
		Short: "Erii - a personal task tracker",
		Long: `Erii keeps a prioritized list of todos, deadlines and events.

Run without a subcommand to open the interactive menu, or the full-screen
view when ui.mode is "tui" in erii.toml and stdin is a terminal.`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.UI.Mode == config.UITUI && term.IsTerminal(int(os.Stdin.Fd())) {
				return c.runTUI(cmd)
			}
			return c.runConsole(cmd)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&c.overrides.DataDir, "data-dir", "", "directory holding the task data")
	flags.StringVar(&c.overrides.Backend, "backend", "", "storage backend (sqlite, text)")
	flags.StringVar(&c.overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		c.listCmd(),
		c.addCmd(),
		c.doneCmd(),
		c.deleteCmd(),
		c.findCmd(),
		c.onCmd(),
		c.sortCmd(),
		c.priorityCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.tuiCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) load() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}
	if err := cfg.Override(c.overrides); err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logging.FromConfig(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	c.logger.Debug("loaded config", "backend", cfg.Storage.Backend, "data_dir", cfg.Storage.DataDir)
	return nil
}

// withService opens the configured store, runs fn and closes the store.
func (c *cli) withService(cmd *cobra.Command, fn func(svc *app.Service) error) error {
	store, err := storage.Open(c.cfg.Storage.Backend, c.cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	svc, err := app.New(cmd.Context(), store, app.Options{Logger: c.logger})
	if err != nil {
		store.Close()
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			c.logger.Error("close store", "err", err)
		}
	}()
	return fn(svc)
}

func (c *cli) runConsole(cmd *cobra.Command) error {
	return c.withService(cmd, func(svc *app.Service) error {
		return console.New(svc, cmd.InOrStdin(), cmd.OutOrStdout(), c.logger).Run(cmd.Context())
	})
}

func (c *cli) runTUI(cmd *cobra.Command) error {
	return c.withService(cmd, func(svc *app.Service) error {
		return ui.Run(cmd.Context(), svc)
	})
}

func (c *cli) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen task view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("tui needs an interactive terminal")
			}
			return c.runTUI(cmd)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// No config is needed to print the version.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}
