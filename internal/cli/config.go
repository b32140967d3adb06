package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/wawi/pkg/types"
)

const maskedSecret = "********"

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show, change or test the storage settings",
	}
	cmd.AddCommand(newConfigShowCmd(a), newConfigSetCmd(a), newConfigTestCmd(a))
	return cmd
}

// configFlags binds one flag per configuration key.
type configFlags struct {
	cfg types.Config
}

func (f *configFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.cfg.Backend, "backend", "", "backend: embedded or client_server")
	fl.StringVar(&f.cfg.Path, "path", "", "embedded database file")
	fl.StringVar(&f.cfg.Host, "host", "", "database server host")
	fl.IntVar(&f.cfg.Port, "port", 0, "database server port")
	fl.StringVar(&f.cfg.User, "user", "", "database user")
	fl.StringVar(&f.cfg.Secret, "secret", "", "database password")
	fl.StringVar(&f.cfg.Database, "database", "", "database name")
}

// apply copies the flags that were given onto base.
func (f *configFlags) apply(cmd *cobra.Command, base types.Config) types.Config {
	changed := cmd.Flags().Changed
	if changed("backend") {
		base.Backend = f.cfg.Backend
	}
	if changed("path") {
		base.Path = f.cfg.Path
	}
	if changed("host") {
		base.Host = f.cfg.Host
	}
	if changed("port") {
		base.Port = f.cfg.Port
	}
	if changed("user") {
		base.User = f.cfg.User
	}
	if changed("secret") {
		base.Secret = f.cfg.Secret
	}
	if changed("database") {
		base.Database = f.cfg.Database
	}
	return base
}

// current loads the saved settings. Without a usable document the defaults
// are returned.
func (a *app) current() types.Config {
	cfg, err := a.settings.Load()
	if err != nil {
		a.clog.Info().Err(err).Msg("no usable settings, using defaults")
	}
	return cfg
}

func (a *app) printConfig(cmd *cobra.Command, cfg types.Config) error {
	if cfg.Secret != "" {
		cfg.Secret = maskedSecret
	}
	w := cmd.OutOrStdout()
	if a.jsonMode {
		return printJSON(w, map[string]any{
			"file":     a.settings.File(),
			"backend":  cfg.Backend,
			"path":     cfg.Path,
			"host":     cfg.Host,
			"port":     cfg.Port,
			"user":     cfg.User,
			"secret":   cfg.Secret,
			"database": cfg.Database,
		})
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "file\t%s\n", a.settings.File())
	fmt.Fprintf(tw, "backend\t%s\n", cfg.Backend)
	fmt.Fprintf(tw, "path\t%s\n", cfg.Path)
	fmt.Fprintf(tw, "host\t%s\n", cfg.Host)
	fmt.Fprintf(tw, "port\t%d\n", cfg.Port)
	fmt.Fprintf(tw, "user\t%s\n", cfg.User)
	fmt.Fprintf(tw, "secret\t%s\n", cfg.Secret)
	fmt.Fprintf(tw, "database\t%s\n", cfg.Database)
	return tw.Flush()
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printConfig(cmd, a.current())
		},
	}
}

func newConfigSetCmd(a *app) *cobra.Command {
	var f configFlags
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change and save settings",
		Long: `Set merges the given flags into the saved settings and writes them back.

Example:
  wawi config set --backend client_server --host db.local --user shop --secret s3cret
  wawi config set --backend embedded --path /srv/wawi/wawi.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := f.apply(cmd, a.current())
			if err := a.settings.Save(cfg); err != nil {
				return err
			}
			return a.printConfig(cmd, cfg)
		},
	}
	f.bind(cmd)
	return cmd
}

func newConfigTestCmd(a *app) *cobra.Command {
	var f configFlags
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Check that the settings reach a working database",
		Long: `Test opens the configured backend, runs a round-trip query and closes it.
Flags override the saved settings for this check only. There is no fallback
to the embedded backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := f.apply(cmd, a.current())
			ok := a.settings.Test(cmd.Context(), cfg)
			if a.jsonMode {
				if err := printJSON(cmd.OutOrStdout(), map[string]any{"ok": ok, "backend": cfg.Backend}); err != nil {
					return err
				}
			} else if ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Connection OK (%s)\n", cfg)
			}
			if !ok {
				return fmt.Errorf("%w: cannot connect with %s", types.ErrConnection, cfg)
			}
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}
