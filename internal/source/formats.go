package source

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"
)

// Format identifies the parser used for a source file.
type Format string

const (
	FormatCSV           Format = "csv"
	FormatLua           Format = "lua"
	FormatLanguagesJSON Format = "languages-json"
	FormatFamiliesJSON  Format = "families-json"
	FormatScript        Format = "risor"
)

// extToFormat maps file extensions to formats. JSON files need a hint to
// tell the language list from the family list, see FormatForFile.
var extToFormat = map[string]Format{
	".csv":   FormatCSV,
	".tsv":   FormatCSV,
	".lua":   FormatLua,
	".json":  FormatLanguagesJSON,
	".risor": FormatScript,
	".rsr":   FormatScript,
}

// FormatForFile guesses the format of path from its extension. A JSON file
// whose base name mentions "famil" is read as a family list.
// Returns ("", false) if the extension is not recognized.
func FormatForFile(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := extToFormat[ext]
	if ok && f == FormatLanguagesJSON && strings.Contains(strings.ToLower(filepath.Base(path)), "famil") {
		return FormatFamiliesJSON, true
	}
	return f, ok
}

// The Lua grammar is built lazily on first use.
var (
	luaGrammar  *sitter.Language
	grammarOnce sync.Once
)

// LuaGrammar returns the tree-sitter grammar used for data modules.
func LuaGrammar() *sitter.Language {
	grammarOnce.Do(func() {
		luaGrammar = lua.GetLanguage()
	})
	return luaGrammar
}
