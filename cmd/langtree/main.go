package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/jward/langtree/internal/config"
)

var (
	flagDB       string
	flagFormat   string
	flagConfig   string
	flagLogLevel string
)

// defaultDBPath is used when neither --db nor the config names a database.
const defaultDBPath = "langtree.db"

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			for _, h := range errors.GetAllHints(err) {
				fmt.Fprintf(os.Stderr, "Hint: %s\n", h)
			}
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "langtree",
	Short:         "Resolve a language taxonomy from overlapping sources",
	Long:          "langtree merges language tables, Lua data modules, JSON lists and override scripts into one registry of names, etymology bases and ancestor chains, stored in SQLite for queries.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: store.path from config, else "+defaultDBPath+")")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text|yaml")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file (LANGTREE_* variables override it)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(exportCmd)
}

// loadConfig reads the config file and environment, then applies the
// persistent flags that override them.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}

// resolveDBPath returns the database path from --db, the config, or the
// default, in that order.
func resolveDBPath(cfg *config.Config) string {
	if flagDB != "" {
		return flagDB
	}
	if cfg != nil && cfg.Store.Path != "" {
		return cfg.Store.Path
	}
	return defaultDBPath
}
