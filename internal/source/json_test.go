package source

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguagesJSON(t *testing.T) {
	t.Parallel()
	src := `[
		{"code": "en", "name": "English", "other_names": ["Modern English"], "aliases": ["Anglo-Saxon English"], "url": "https://en.wiktionary.org/wiki/Category:English_language"},
		{"code": "", "name": "Nameless"},
		{"code": "zz", "name": ""}
	]`
	batch, err := ParseLanguagesJSON("languages.json", strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, ModeRefine, batch.Mode)
	require.Len(t, batch.Languages, 1)
	en := batch.Languages[0]
	assert.Equal(t, "English", en.CanonicalName)
	assert.Equal(t, []string{"Anglo-Saxon English"}, en.Aliases)
	assert.Contains(t, en.URL, "English_language")
	assert.Empty(t, en.FamilyCode)

	require.Len(t, batch.Malformed, 2)
	assert.Equal(t, "missing code", batch.Malformed[0].Reason)
	assert.Equal(t, "zz", batch.Malformed[1].Key)
}

func TestParseLanguagesJSON_LanguageURL(t *testing.T) {
	t.Parallel()
	src := `[
		{"code": "en", "name": "English", "language_url": "https://en.wiktionary.org/wiki/English", "url": "https://example.org/old"},
		{"code": "fr", "name": "French", "url": "https://en.wiktionary.org/wiki/French"}
	]`
	batch, err := ParseLanguagesJSON("languages.json", strings.NewReader(src))
	require.NoError(t, err)

	require.Len(t, batch.Languages, 2)
	assert.Equal(t, "https://en.wiktionary.org/wiki/English", batch.Languages[0].URL)
	assert.Equal(t, "https://en.wiktionary.org/wiki/French", batch.Languages[1].URL)
}

func TestParseFamiliesJSON(t *testing.T) {
	t.Parallel()
	src := `[{"code": "gmw", "name": "West Germanic", "parent_code": "gem"}]`
	batch, err := ParseFamiliesJSON("families.json", strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, ModeRefine, batch.Mode)
	require.Len(t, batch.Families, 1)
	assert.Equal(t, "gem", batch.Families[0].ParentCode)
}

func TestParseLanguagesJSON_NotAnArray(t *testing.T) {
	t.Parallel()
	_, err := ParseLanguagesJSON("bad.json", strings.NewReader(`{"code": "en"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

// --- File sources ---

func TestFileSource_ParseFromFS(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"data/languages.csv":  {Data: []byte("code;canonical name\nen;English\n")},
		"data/families.json":  {Data: []byte(`[{"code": "gmw", "name": "West Germanic"}]`)},
		"data/etymology.lua":  {Data: []byte(`local m = {} m["LL."] = {canonicalName = "Late Latin", parent = "la"} return m`)},
		"data/languages.json": {Data: []byte(`[{"code": "en", "name": "English"}]`)},
	}

	tests := []struct {
		src       *FileSource
		name      string
		languages int
		families  int
		mode      Mode
	}{
		{CSVFile("data/languages.csv", CSVOptions{}), "csv:data/languages.csv", 1, 0, ModeReplace},
		{FamiliesJSONFile("data/families.json"), "families-json:data/families.json", 0, 1, ModeRefine},
		{LuaFile("data/etymology.lua", LuaEtymologyLanguages), "lua-etymology-languages:data/etymology.lua", 1, 0, ModeReplace},
		{LanguagesJSONFile("data/languages.json"), "languages-json:data/languages.json", 1, 0, ModeRefine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.src.FS = fsys
			batch, err := tt.src.Parse(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.name, batch.Name)
			assert.Len(t, batch.Languages, tt.languages)
			assert.Len(t, batch.Families, tt.families)
			assert.Equal(t, tt.mode, batch.Mode)
		})
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	t.Parallel()
	src := CSVFile("does/not/exist.csv", CSVOptions{})
	src.FS = fstest.MapFS{}
	_, err := src.Parse(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv:does/not/exist.csv")
}

func TestFileSource_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CSVFile("x.csv", CSVOptions{}).Parse(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatForFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"list_of_languages.csv", FormatCSV, true},
		{"Module/languages.LUA", FormatLua, true},
		{"wiktextract_languages.json", FormatLanguagesJSON, true},
		{"wiktextract_language_families.json", FormatFamiliesJSON, true},
		{"overrides.risor", FormatScript, true},
		{"README.md", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, ok := FormatForFile(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitList(t *testing.T) {
	t.Parallel()
	assert.Nil(t, SplitList("  "))
	assert.Equal(t, []string{"a", "b"}, SplitList(` a , "b",, `))
	assert.Equal(t, []string{"nan"}, SplitList("nan"))
}

func TestModeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "replace", ModeReplace.String())
	assert.Equal(t, "refine", ModeRefine.String())
}
