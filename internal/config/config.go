// Package config loads resolver settings from a YAML file and LANGTREE_*
// environment variables.
package config

import (
	"os"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap/zapcore"
)

// Config holds every setting the CLI reads. Priority: ENV > YAML > defaults.
type Config struct {
	Sources  SourcesConfig `yaml:"sources"`
	CSV      CSVConfig     `yaml:"csv"`
	Store    StoreConfig   `yaml:"store"`
	Log      LogConfig     `yaml:"log"`
	Parallel bool          `yaml:"parallel" env:"LANGTREE_PARALLEL" env-default:"true"`
}

// SourcesConfig lists input files per kind. The resolver applies the kinds
// in a fixed precedence order regardless of how they are listed here.
type SourcesConfig struct {
	EtymologyCSV     []string `yaml:"etymology_csv"     env:"LANGTREE_ETYMOLOGY_CSV"     env-separator:","`
	LanguagesCSV     []string `yaml:"languages_csv"     env:"LANGTREE_LANGUAGES_CSV"     env-separator:","`
	LanguageModules  []string `yaml:"language_modules"  env:"LANGTREE_LANGUAGE_MODULES"  env-separator:","`
	EtymologyModules []string `yaml:"etymology_modules" env:"LANGTREE_ETYMOLOGY_MODULES" env-separator:","`
	FamilyModules    []string `yaml:"family_modules"    env:"LANGTREE_FAMILY_MODULES"    env-separator:","`
	Scripts          []string `yaml:"scripts"           env:"LANGTREE_SCRIPTS"           env-separator:","`
	LanguagesJSON    []string `yaml:"languages_json"    env:"LANGTREE_LANGUAGES_JSON"    env-separator:","`
	FamiliesJSON     []string `yaml:"families_json"     env:"LANGTREE_FAMILIES_JSON"     env-separator:","`
	ScriptsDir       string   `yaml:"scripts_dir"       env:"LANGTREE_SCRIPTS_DIR"`
}

// Empty reports whether no source of any kind is configured.
func (s SourcesConfig) Empty() bool {
	return len(s.EtymologyCSV)+len(s.LanguagesCSV)+len(s.LanguageModules)+len(s.EtymologyModules)+
		len(s.FamilyModules)+len(s.Scripts)+len(s.LanguagesJSON)+len(s.FamiliesJSON) == 0
}

type CSVConfig struct {
	Delimiter string `yaml:"delimiter" env:"LANGTREE_CSV_DELIMITER" env-default:";"`
}

// DelimiterRune returns the configured delimiter as a rune.
func (c CSVConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

type StoreConfig struct {
	Path string `yaml:"path" env:"LANGTREE_DB"`
	// JSONPath, when set, receives the exported registry as JSON.
	JSONPath string `yaml:"json_path" env:"LANGTREE_JSON_OUT"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LANGTREE_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LANGTREE_LOG_FORMAT" env-default:"console"`
}

// Load reads configuration from path and the environment. An empty path
// loads from the environment and defaults only; a path that does not exist
// is an error.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, "config: file %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, errors.Wrapf(err, "config: read %s", path)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: read env")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config: validate")
	}
	return &cfg, nil
}

// Validate checks values cleanenv cannot check through tags.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.CSV.Delimiter) != 1 {
		return errors.Newf("csv delimiter %q must be a single character", c.CSV.Delimiter)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(err, "log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errors.Newf("log format %q must be console or json", c.Log.Format)
	}
	return nil
}
