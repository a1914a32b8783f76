package langtree

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/jward/langtree/internal/runtime"
	"github.com/jward/langtree/internal/source"
)

// SourcePaths lists input files by kind. Sources turns them into a source
// list in fixed precedence order, lowest first:
//
//	etymology-only CSV, language CSV, language Lua modules,
//	etymology Lua modules, family Lua modules, override scripts,
//	languages JSON, families JSON
//
// Within a kind, files keep the order they were listed in.
type SourcePaths struct {
	EtymologyCSV     []string
	LanguagesCSV     []string
	LanguageModules  []string
	EtymologyModules []string
	FamilyModules    []string
	Scripts          []string
	LanguagesJSON    []string
	FamiliesJSON     []string

	// CSVDelimiter defaults to ';'.
	CSVDelimiter rune
	// ScriptsDir resolves relative script paths and script imports.
	ScriptsDir string
}

// Empty reports whether no input file is listed.
func (p SourcePaths) Empty() bool {
	return len(p.EtymologyCSV)+len(p.LanguagesCSV)+len(p.LanguageModules)+
		len(p.EtymologyModules)+len(p.FamilyModules)+len(p.Scripts)+
		len(p.LanguagesJSON)+len(p.FamiliesJSON) == 0
}

// AddFile files path under its kind, guessed from the extension and the
// base name: "etym" marks etymology-only tables and modules, "famil" marks
// family modules and lists.
func (p *SourcePaths) AddFile(path string) error {
	format, ok := source.FormatForFile(path)
	if !ok {
		return errors.Mark(errors.Newf("langtree: no format for %s", path), source.ErrUnsupportedFormat)
	}
	base := strings.ToLower(filepath.Base(path))
	switch format {
	case source.FormatCSV:
		if strings.Contains(base, "etym") {
			p.EtymologyCSV = append(p.EtymologyCSV, path)
		} else {
			p.LanguagesCSV = append(p.LanguagesCSV, path)
		}
	case source.FormatLua:
		switch {
		case strings.Contains(base, "etym"):
			p.EtymologyModules = append(p.EtymologyModules, path)
		case strings.Contains(base, "famil"):
			p.FamilyModules = append(p.FamilyModules, path)
		default:
			p.LanguageModules = append(p.LanguageModules, path)
		}
	case source.FormatScript:
		p.Scripts = append(p.Scripts, path)
	case source.FormatLanguagesJSON:
		p.LanguagesJSON = append(p.LanguagesJSON, path)
	case source.FormatFamiliesJSON:
		p.FamiliesJSON = append(p.FamiliesJSON, path)
	}
	return nil
}

// Sources builds the ordered source list. Scripts log through logger.
func (p SourcePaths) Sources(logger *zap.Logger) []Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	var out []Source
	for _, path := range p.EtymologyCSV {
		out = append(out, source.CSVFile(path, source.CSVOptions{Delimiter: p.CSVDelimiter, EtymologyOnly: true}))
	}
	for _, path := range p.LanguagesCSV {
		out = append(out, source.CSVFile(path, source.CSVOptions{Delimiter: p.CSVDelimiter}))
	}
	for _, path := range p.LanguageModules {
		out = append(out, source.LuaFile(path, source.LuaLanguages))
	}
	for _, path := range p.EtymologyModules {
		out = append(out, source.LuaFile(path, source.LuaEtymologyLanguages))
	}
	for _, path := range p.FamilyModules {
		out = append(out, source.LuaFile(path, source.LuaFamilies))
	}
	if len(p.Scripts) > 0 {
		rt := runtime.NewRuntime(p.ScriptsDir, runtime.WithLogger(logger))
		for _, path := range p.Scripts {
			out = append(out, runtime.NewScriptSource(rt, path, nil))
		}
	}
	for _, path := range p.LanguagesJSON {
		out = append(out, source.LanguagesJSONFile(path))
	}
	for _, path := range p.FamiliesJSON {
		out = append(out, source.FamiliesJSONFile(path))
	}
	return out
}
