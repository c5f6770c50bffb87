// Package cli implements inventoryctl, the command-line client of the inventory files.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/abgdnv/inventory/internal/app"
	"github.com/abgdnv/inventory/internal/auth"
	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/inventory"
	"github.com/abgdnv/inventory/internal/service"
	"github.com/abgdnv/inventory/pkg/bootstrap"
	"github.com/abgdnv/inventory/pkg/config/configloader"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

const (
	envUser     = "INVENTORY_USER"
	envPassword = "INVENTORY_PASSWORD"
)

// options are the persistent flags shared by every command.
type options struct {
	cfgFile  string
	dataDir  string
	user     string
	password string
	jsonOut  bool
}

// session is an opened data directory plus the authenticated caller.
type session struct {
	directory *auth.Directory
	svc       *service.Service
	role      auth.Role
}

// NewRootCmd builds the inventoryctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "inventoryctl",
		Short: "Manage the raw material and product inventories",
		Long: `inventoryctl reads and changes the inventory files used by the inventory service.

Every command except version needs credentials from the admin or employee file.
Admins may add, edit and delete records and manage users; employees may list
records, print reports and change quantities.

Configuration (in order of priority):
  1. Command-line flags (--data-dir, --user, --password)
  2. Environment variables (INVENTORY_USER, INVENTORY_PASSWORD, INVENTORY_STORE_DATADIR, ...)
  3. .env file, then the config file (config.yaml or --config)

Examples:
  inventoryctl display raw_material --user admin --password admin123
  inventoryctl edit product 3 --quantity 140
  inventoryctl report product`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory holding the inventory files")
	rootCmd.PersistentFlags().StringVarP(&opts.user, "user", "u", "", "username (or "+envUser+")")
	rootCmd.PersistentFlags().StringVarP(&opts.password, "password", "p", "", "password (or "+envPassword+")")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "output in JSON format")

	rootCmd.AddCommand(
		newVersionCmd(),
		newDisplayCmd(opts),
		newReportCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newDeleteCmd(opts),
		newUsersCmd(opts),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "inventoryctl version %s\n", Version)
		},
	}
}

// open loads the configuration, opens the data directory and authenticates the caller.
func (o *options) open(cmd *cobra.Command) (*session, error) {
	overrides := map[string]any{}
	if o.dataDir != "" {
		overrides["store.datadir"] = o.dataDir
	}
	cfg, err := configloader.Load[*config.CLIConfig](config.EnvPrefix,
		configloader.WithFile(o.cfgFile),
		configloader.WithDefaults(config.CLIDefaults()),
		configloader.WithOverrides(overrides))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := bootstrap.NewLoggerTo(cmd.ErrOrStderr(), cfg.Log.Level)
	directory, err := app.OpenDirectory(cfg.Auth, logger)
	if err != nil {
		return nil, err
	}
	role, err := directory.CheckCredentials(o.credentials())
	if err != nil {
		return nil, err
	}
	inv, err := inventory.Open(cfg.Store.DataDir, cfg.Store.Seed, logger)
	if err != nil {
		return nil, err
	}

	return &session{
		directory: directory,
		svc:       service.NewService(inv, nil, logger),
		role:      role,
	}, nil
}

func (o *options) credentials() (string, string) {
	user, password := o.user, o.password
	if user == "" {
		user = os.Getenv(envUser)
	}
	if password == "" {
		password = os.Getenv(envPassword)
	}
	return user, password
}

func parseKindArg(s string) (inventory.Kind, error) {
	kind, err := inventory.ParseKind(s)
	if err != nil {
		return "", fmt.Errorf("%w (use raw_material or product)", err)
	}
	return kind, nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
