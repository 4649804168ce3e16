// Package cmd provides the quotectl commands.
package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/config"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/db"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/logging"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/migrations"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/services"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/store"
)

// Version is set at build time.
var Version = "0.1.0"

type options struct {
	dbPath    string
	rulesFile string
	offline   bool
	verbose   bool
	months    int
}

// env is what a command needs to price forms.
type env struct {
	catalog  *services.Catalog
	resolver *rates.Resolver
	db       *sql.DB
	logger   *zap.Logger
}

func (e *env) Close() {
	if e.db != nil {
		e.db.Close()
	}
	_ = e.logger.Sync()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &options{
		dbPath:    cfg.DBPath,
		rulesFile: cfg.RulesFile,
		months:    cfg.GlobalContractMonths,
	}

	root := &cobra.Command{
		Use:   "quotectl",
		Short: "Price cleaning-service agreements",
		Long: `quotectl prices service forms and assembles agreement proposals.

Rates come from the active service configs in the database; services without
one are priced from static defaults and reported as such.

Examples:
  quotectl quote form.json
  quotectl proposal --months 24 agreement.json
  quotectl export -o proposal.xlsx agreement.json
  quotectl config show saniclean`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			decimal.MarshalJSONWithoutQuotes = true
		},
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", opts.dbPath, "SQLite database path")
	root.PersistentFlags().StringVar(&opts.rulesFile, "rules", opts.rulesFile, "HCL file overriding service descriptors")
	root.PersistentFlags().BoolVar(&opts.offline, "offline", false, "price from static defaults without opening the database")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newQuoteCmd(opts))
	root.AddCommand(newProposalCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "quotectl version %s\n", Version)
		},
	})
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *options) open(ctx context.Context) (*env, error) {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return nil, err
	}

	catalog := services.Default()
	if o.rulesFile != "" {
		rf, err := services.LoadRules(o.rulesFile)
		if err != nil {
			return nil, err
		}
		if err := catalog.Apply(rf); err != nil {
			return nil, err
		}
	}

	e := &env{catalog: catalog, logger: logger}
	if o.offline {
		e.resolver = rates.NewResolver(nil, logger)
		return e, nil
	}

	database, err := db.Open(o.dbPath)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(database); err != nil {
		database.Close()
		return nil, err
	}
	e.db = database
	e.resolver = rates.NewResolver(store.NewConfigStore(database), logger)
	return e, nil
}

func readJSON(path string, dst any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
