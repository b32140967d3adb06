// Package cli implements the wawi command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/wawi/internal/config"
	"github.com/mesh-intelligence/wawi/internal/controller"
	"github.com/mesh-intelligence/wawi/internal/logging"
	"github.com/mesh-intelligence/wawi/internal/paths"
	"github.com/mesh-intelligence/wawi/internal/store"
	"github.com/mesh-intelligence/wawi/pkg/types"
	"github.com/mesh-intelligence/wawi/pkg/wawi"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app carries global flag values and the resources built from them for one
// invocation.
type app struct {
	configDir string
	dataDir   string
	logLevel  string
	logFormat string
	logFile   string
	jsonMode  bool

	log      *logging.Logger
	clog     zerolog.Logger
	settings *config.Store
	dbPath   string
	ctrl     *controller.Controller
}

// NewRootCmd creates the top-level "wawi" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	root, _ := newRoot()
	return root
}

func newRoot() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "wawi",
		Short: "Manage products and customers",
		Long:  wawi.About,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", "", "configuration directory (env "+paths.EnvConfigDir+")")
	pf.StringVar(&a.dataDir, "data-dir", "", "directory of the embedded database (env "+paths.EnvDataDir+")")
	pf.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "text", "log format: text or json")
	pf.StringVar(&a.logFile, "log-file", "", "also append JSON log lines to this file")
	pf.BoolVar(&a.jsonMode, "json", false, "output in JSON format")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	root.AddCommand(newVersionCmd())
	root.AddCommand(newProductCmd(a))
	root.AddCommand(newCustomerCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newSeedCmd(a))

	return root, a
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root, a := newRoot()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.teardown(); err == nil {
		err = cerr
	}
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "wawi:", err)
	return exitCode(err)
}

// usageError marks bad command-line input.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// exitCode maps an error to exitUserError for bad input and exitSysError
// for storage or environment failures.
func exitCode(err error) int {
	var usage usageError
	var pathErr *fs.PathError
	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &usage), controller.IsUserError(err):
		return exitUserError
	case errors.Is(err, types.ErrConnection), errors.Is(err, types.ErrQuery),
		errors.Is(err, types.ErrSchema), errors.Is(err, types.ErrClosed),
		errors.As(err, &pathErr):
		return exitSysError
	case errors.Is(err, types.ErrConfig):
		return exitUserError
	default:
		// Unknown commands and argument count errors come from cobra.
		return exitUserError
	}
}

// setup builds the logger and the settings store, writing the default
// document on first run.
func (a *app) setup(cmd *cobra.Command) error {
	log, err := logging.New(logging.Options{
		Level:  a.logLevel,
		Format: a.logFormat,
		File:   a.logFile,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.log = log
	a.clog = log.Component("cli")

	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	a.dbPath, err = paths.DatabasePath(a.dataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	a.settings = config.NewStore(configDir, a.dbPath, log.Logger)
	if err := a.settings.EnsureDefault(); err != nil {
		a.clog.Warn().Err(err).Msg("cannot write default settings")
	} else if _, err := a.settings.Load(); err != nil {
		a.clog.Warn().Err(err).Str("file", a.settings.File()).Msg("using default settings")
	}
	return nil
}

// controller opens storage on first use.
func (a *app) controller(ctx context.Context) (*controller.Controller, error) {
	if a.ctrl != nil {
		return a.ctrl, nil
	}
	factory := store.NewFactory(a.dbPath, a.log.Logger)
	ctrl, err := controller.New(ctx, a.settings, factory, a.log.Logger)
	if err != nil {
		return nil, err
	}
	a.ctrl = ctrl
	return ctrl, nil
}

func (a *app) teardown() error {
	var err error
	if a.ctrl != nil {
		err = a.ctrl.Close()
		a.ctrl = nil
	}
	if a.log != nil {
		a.log.Close()
	}
	return err
}
