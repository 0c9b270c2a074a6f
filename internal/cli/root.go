// Package cli implements the hbnb command-line interface. The root command
// runs the interactive console; init and version are subcommands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zytronium/atlas-airbnb-clone/internal/console"
	"github.com/Zytronium/atlas-airbnb-clone/internal/registry"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	logLevel  string
}

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return exitUserError
}

// NewRootCmd creates the top-level "hbnb" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:   "hbnb",
		Short: "Console for the hbnb object store",
		Long: "hbnb keeps users, places, cities, states, amenities and reviews in a JSON\n" +
			"data file and lets you create, inspect, change and delete them from a console.",
		Args: cobra.NoArgs,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, f)
		},
	}

	root.PersistentFlags().StringVar(&f.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/hbnb)")
	root.PersistentFlags().StringVar(&f.dataDir, "data-dir", "", "directory holding the data file (default: working directory)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error (default: warn)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(f))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hbnb:", err)
		os.Exit(exitCode(err))
	}
}

// runConsole loads settings, reloads the registry from the data file and
// hands it to the console until the session ends.
func runConsole(cmd *cobra.Command, f *rootFlags) error {
	cfg, err := loadSettings(f)
	if err != nil {
		return userError(err)
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create data directory: %w", err))
	}

	reg := registry.New(cfg.DataPath(), registry.WithLogger(logger))
	if err := reg.Reload(); err != nil {
		return sysError(fmt.Errorf("loading %s: %w", reg.Path(), err))
	}
	logger.Info("registry loaded", "path", reg.Path(), "records", reg.All().Len())

	c := console.New(reg,
		console.WithInput(cmd.InOrStdin()),
		console.WithOutput(cmd.OutOrStdout()),
		console.WithLogger(logger),
		console.WithInteractive(isTerminal(cmd.InOrStdin())),
	)
	defer c.Close()

	if err := c.Run(cmd.Context()); err != nil {
		return sysError(err)
	}
	return nil
}

// isTerminal reports whether r is a terminal file.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && console.IsTerminal(f)
}
