package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jward/langtree"
	"github.com/jward/langtree/internal/source"
	"github.com/jward/langtree/internal/store"
)

var (
	flagLimit  int
	flagFamily bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a resolved registry",
	Long:  "Look up names, codes, etymology bases and ancestor chains in a database written by 'langtree resolve'.",
}

func init() {
	searchCmd.Flags().IntVar(&flagLimit, "limit", 50, "maximum number of matches (0 for all)")
	ancestorsCmd.Flags().BoolVar(&flagFamily, "family", false, "treat the code as a family code")

	queryCmd.AddCommand(nameCmd)
	queryCmd.AddCommand(codeCmd)
	queryCmd.AddCommand(etyCmd)
	queryCmd.AddCommand(ancestorsCmd)
	queryCmd.AddCommand(languageCmd)
	queryCmd.AddCommand(reconstructedCmd)
	queryCmd.AddCommand(searchCmd)
	queryCmd.AddCommand(infoCmd)
}

// --- Helpers ---

// openStore opens the database from --db or the config. The database must
// already exist.
func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	dbPath := resolveDBPath(cfg)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, errors.WithHint(errors.Newf("database not found: %s", dbPath), "run 'langtree resolve' first")
	}
	return store.NewStore(dbPath)
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	switch flagFormat {
	case "text":
		return outputResultText(os.Stdout, result)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat != "json" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// withStore opens the store, runs fn, and reports failures in the CLIResult
// envelope for command.
func withStore(command string, fn func(s *store.Store) (any, error)) error {
	s, err := openStore()
	if err != nil {
		return outputError(command, err)
	}
	defer s.Close()

	results, err := fn(s)
	if err != nil {
		return outputError(command, err)
	}
	return outputResult(CLIResult{Command: command, Results: results})
}

// --- Commands ---

var nameCmd = &cobra.Command{
	Use:   "name <code>",
	Short: "Canonical name of a language or family code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore("name", func(s *store.Store) (any, error) {
			name, ok, err := s.NameByCode(args[0])
			return CLILookup{Query: args[0], Result: name, Found: ok}, err
		})
	},
}

var codeCmd = &cobra.Command{
	Use:   "code <name...>",
	Short: "Code for a canonical name, other name or alias",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := source.NormalizeName(strings.Join(args, " "))
		return withStore("code", func(s *store.Store) (any, error) {
			code, ok, err := s.CodeByName(name)
			return CLILookup{Query: name, Result: code, Found: ok}, err
		})
	},
}

var etyCmd = &cobra.Command{
	Use:   "ety <code>",
	Short: "Base language of an etymology-only code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore("ety", func(s *store.Store) (any, error) {
			base, err := s.EtyBase(args[0])
			return CLILookup{Query: args[0], Result: base, Found: base != args[0]}, err
		})
	},
}

var ancestorsCmd = &cobra.Command{
	Use:   "ancestors <code>",
	Short: "Ancestor chain of a language, nearest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore("ancestors", func(s *store.Store) (any, error) {
			if flagFamily {
				return s.FamilyAncestors(args[0])
			}
			return s.Ancestors(args[0])
		})
	},
}

var languageCmd = &cobra.Command{
	Use:   "language <code>",
	Short: "Full resolved record of a language",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore("language", func(s *store.Store) (any, error) {
			entry, err := s.LanguageByCode(args[0])
			if err != nil {
				return nil, err
			}
			if entry == nil {
				return nil, errors.Newf("language %q not found", args[0])
			}
			return *entry, nil
		})
	},
}

var reconstructedCmd = &cobra.Command{
	Use:   "reconstructed",
	Short: "Every reconstructed language code",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore("reconstructed", func(s *store.Store) (any, error) {
			codes, err := s.Reconstructed()
			if codes == nil {
				codes = []string{}
			}
			return codes, err
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <prefix...>",
	Short: "Names starting with a prefix, in registry order",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := source.NormalizeName(strings.Join(args, " "))
		s, err := openStore()
		if err != nil {
			return outputError("search", err)
		}
		defer s.Close()

		matches, err := s.SearchNames(prefix, flagLimit)
		if err != nil {
			return outputError("search", err)
		}
		if matches == nil {
			matches = []store.NameMatch{}
		}
		total, err := s.CountNames(prefix)
		if err != nil {
			return outputError("search", err)
		}
		return outputResult(CLIResult{Command: "search", Results: matches, TotalCount: &total})
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "When and what the database was last resolved from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore("info", func(s *store.Store) (any, error) {
			info := make(map[string]string)
			for _, key := range []string{langtree.MetaResolvedAt, langtree.MetaLanguages, langtree.MetaFamilies, langtree.MetaDigest} {
				v, ok, err := s.Metadata(key)
				if err != nil {
					return nil, err
				}
				if ok {
					info[key] = v
				}
			}
			return info, nil
		})
	},
}
