package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smallbiz-dev/smallbiz/internal/buildinfo"
	"github.com/smallbiz-dev/smallbiz/internal/config"
	"github.com/smallbiz-dev/smallbiz/internal/logger"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	dataDir  string
	logLevel string
	envFile  string

	cfg *config.Config // resolved in PersistentPreRunE
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "smallbiz",
		Short:   "Bookkeeping, quotes and invoices for a small business on flat files",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dataDir, "data-dir", "", "business directory (default $"+config.EnvDataDir+" or .)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.envFile, "env-file", "", "load environment variables from this file instead of ./.env")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newClientCommand(opts),
		newQuoteCommand(opts),
		newJobCommand(opts),
		newInvoiceCommand(opts),
		newTxnCommand(opts),
		newImportCommand(opts),
		newBankFormatCommand(opts),
		newClassifyCommand(opts),
		newReportCommand(opts),
	)

	return rootCmd
}

// setup loads .env, resolves the data directory and its config, and puts a
// logger in the command context.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return err
	}

	dir := o.dataDir
	if dir == "" {
		dir = config.DataDir(".")
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	o.dataDir = absDir

	cfg, err := config.ForDataDir(absDir)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	o.cfg = cfg

	log, err := logger.NewWithOutput(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return nil
}
