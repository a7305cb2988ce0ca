package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"blah/internal/app"
)

var (
	configPath string
	home       string
	database   string
	passphrase string
	verbose    bool

	wire *app.Wire
)

// Execute runs the CLI with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "blah",
		Short:        "Sign, verify and apply chat envelopes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Load(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("home") {
				cfg.Home = home
			}
			if flags.Changed("database") {
				cfg.Database = database
			}
			if flags.Changed("passphrase") {
				cfg.Passphrase = passphrase
			}
			if verbose {
				cfg.LogLevel = "debug"
			}
			level, err := cfg.Level()
			if err != nil {
				return err
			}
			wire, err = app.NewWire(cfg, newLogger(level))
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if wire == nil {
				return nil
			}
			return wire.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file (default $BLAH_CONFIG)")
	pf.StringVar(&home, "home", "", "key directory (default ~/.blah)")
	pf.StringVar(&database, "database", "", "room database (default <home>/blah.db)")
	pf.StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the signing key")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		keygenCmd(),
		whoamiCmd(),
		signCmd(),
		verifyCmd(),
		applyCmd(),
		grantCmd(),
		roomsCmd(),
		serveCmd(),
		pushCmd(),
	)
	return root
}

// newLogger writes text logs to stderr when it is a terminal and JSON
// otherwise.
func newLogger(level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stderr, options))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, options))
}

// resolvePassphrase returns the configured passphrase or prompts for one.
func resolvePassphrase() (string, error) {
	if wire.Config.Passphrase != "" {
		return wire.Config.Passphrase, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("passphrase required (-p or BLAH_PASSPHRASE)")
	}
	fmt.Fprint(os.Stderr, "Passphrase: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}
