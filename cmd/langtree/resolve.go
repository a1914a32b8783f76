package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/jward/langtree"
	"github.com/jward/langtree/internal/config"
	"github.com/jward/langtree/internal/logging"
)

var (
	flagEtyCSV        []string
	flagCSV           []string
	flagLua           []string
	flagEtyLua        []string
	flagFamiliesLua   []string
	flagScripts       []string
	flagLanguagesJSON []string
	flagFamiliesJSON  []string
	flagScriptsDir    string
	flagDelimiter     string
	flagOut           string
	flagNoParallel    bool
	flagNoDB          bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [file...]",
	Short: "Resolve sources into a registry",
	Long: `Parses every source, merges them in precedence order and writes the
resolved registry to the database and, with --out, to a JSON file.

Sources apply lowest precedence first: etymology-only CSV, language CSV,
language Lua modules, etymology Lua modules, family Lua modules, override
scripts, languages JSON, families JSON. Positional files are sorted into
these kinds by extension and name ("etym", "famil").`,
	RunE: runResolve,
}

func init() {
	f := resolveCmd.Flags()
	f.StringSliceVar(&flagEtyCSV, "ety-csv", nil, "etymology-only language CSV")
	f.StringSliceVar(&flagCSV, "csv", nil, "language CSV")
	f.StringSliceVar(&flagLua, "lua", nil, "language Lua data module")
	f.StringSliceVar(&flagEtyLua, "ety-lua", nil, "etymology-only language Lua data module")
	f.StringSliceVar(&flagFamiliesLua, "families-lua", nil, "family Lua data module")
	f.StringSliceVar(&flagScripts, "script", nil, "Risor override script")
	f.StringSliceVar(&flagLanguagesJSON, "languages-json", nil, "JSON language list (refines earlier sources)")
	f.StringSliceVar(&flagFamiliesJSON, "families-json", nil, "JSON family list (refines earlier sources)")
	f.StringVar(&flagScriptsDir, "scripts-dir", "", "directory for relative script paths and imports")
	f.StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter (default from config, ';')")
	f.StringVar(&flagOut, "out", "", "write the exported registry as JSON to this file ('-' for stdout)")
	f.BoolVar(&flagNoParallel, "no-parallel", false, "parse sources one at a time")
	f.BoolVar(&flagNoDB, "no-db", false, "skip writing the database")
}

func runResolve(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyResolveFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "flags")
	}

	logger, err := logging.New(cfg.Log.Level, logging.Format(cfg.Log.Format))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	paths := sourcePaths(cfg)
	for _, a := range args {
		if err := paths.AddFile(a); err != nil {
			return err
		}
	}
	if paths.Empty() {
		return errors.WithHint(langtree.ErrNoSources,
			"pass source files as arguments, use --csv/--lua/... flags, or list them in a config file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sources := paths.Sources(logger)
	r := langtree.New(
		langtree.WithLogger(logger),
		langtree.WithParallel(cfg.Parallel),
	)
	reg, err := r.ResolveSources(ctx, sources)
	if err != nil {
		return errors.Wrap(err, "resolving")
	}

	var dbPath string
	if !flagNoDB {
		dbPath = resolveDBPath(cfg)
		if err := saveRegistry(reg, dbPath); err != nil {
			return err
		}
	}
	if cfg.Store.JSONPath != "" {
		if err := writeExportJSON(reg.Export(), cfg.Store.JSONPath); err != nil {
			return err
		}
	}

	d := reg.Diagnostics()
	fmt.Fprintf(os.Stderr, "Resolved %d languages, %d families from %d sources in %s\n",
		reg.Languages(), reg.Families(), len(sources), time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "Anomalies: %d malformed, %d name conflicts, %d unresolvable parents, %d cycles\n",
		d.Malformed, d.NameConflicts, d.UnresolvableParents, d.Cycles)
	if dbPath != "" {
		fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	}
	if cfg.Store.JSONPath != "" && cfg.Store.JSONPath != "-" {
		fmt.Fprintf(os.Stderr, "JSON: %s\n", cfg.Store.JSONPath)
	}
	return nil
}

// applyResolveFlags appends flag-given sources to the configured ones and
// lets flags override scalar settings.
func applyResolveFlags(cfg *config.Config) {
	s := &cfg.Sources
	s.EtymologyCSV = append(s.EtymologyCSV, flagEtyCSV...)
	s.LanguagesCSV = append(s.LanguagesCSV, flagCSV...)
	s.LanguageModules = append(s.LanguageModules, flagLua...)
	s.EtymologyModules = append(s.EtymologyModules, flagEtyLua...)
	s.FamilyModules = append(s.FamilyModules, flagFamiliesLua...)
	s.Scripts = append(s.Scripts, flagScripts...)
	s.LanguagesJSON = append(s.LanguagesJSON, flagLanguagesJSON...)
	s.FamiliesJSON = append(s.FamiliesJSON, flagFamiliesJSON...)
	if flagScriptsDir != "" {
		s.ScriptsDir = flagScriptsDir
	}
	if flagDelimiter != "" {
		cfg.CSV.Delimiter = flagDelimiter
	}
	if flagOut != "" {
		cfg.Store.JSONPath = flagOut
	}
	if flagNoParallel {
		cfg.Parallel = false
	}
}

func sourcePaths(cfg *config.Config) langtree.SourcePaths {
	s := cfg.Sources
	return langtree.SourcePaths{
		EtymologyCSV:     s.EtymologyCSV,
		LanguagesCSV:     s.LanguagesCSV,
		LanguageModules:  s.LanguageModules,
		EtymologyModules: s.EtymologyModules,
		FamilyModules:    s.FamilyModules,
		Scripts:          s.Scripts,
		LanguagesJSON:    s.LanguagesJSON,
		FamiliesJSON:     s.FamiliesJSON,
		CSVDelimiter:     cfg.CSV.DelimiterRune(),
		ScriptsDir:       s.ScriptsDir,
	}
}

func saveRegistry(reg *langtree.Registry, dbPath string) error {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	s, err := langtree.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	return reg.Save(s)
}

// writeExportJSON writes e to path, or to stdout when path is "-".
func writeExportJSON(e *langtree.Export, path string) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding export")
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
