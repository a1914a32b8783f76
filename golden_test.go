package langtree

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden test format. Every section is optional and lists a subset of the
// expected registry; codes not mentioned are not checked.
type goldenFile struct {
	CodeToName      map[string]string   `json:"code_to_name,omitempty"`
	NameToCode      map[string]string   `json:"name_to_code,omitempty"`
	EtyBases        map[string]string   `json:"ety_bases,omitempty"`
	Ancestors       map[string][]string `json:"ancestors,omitempty"`
	FamilyAncestors map[string][]string `json:"family_ancestors,omitempty"`
	Families        map[string]string   `json:"families,omitempty"`
	Reconstructed   []string            `json:"reconstructed,omitempty"`
	Diagnostics     *Diagnostics        `json:"diagnostics,omitempty"`
}

// TestGolden walks testdata/{group}/{case}/ directories. Each case holds a
// src/ directory of source files and a golden.json of expectations.
func TestGolden(t *testing.T) {
	groups, err := os.ReadDir("testdata")
	if err != nil {
		t.Skip("no testdata directory found")
	}

	for _, group := range groups {
		if !group.IsDir() {
			continue
		}
		groupRoot := filepath.Join("testdata", group.Name())
		cases, err := os.ReadDir(groupRoot)
		if err != nil {
			continue
		}

		for _, c := range cases {
			if !c.IsDir() {
				continue
			}
			testDir := filepath.Join(groupRoot, c.Name())
			goldenPath := filepath.Join(testDir, "golden.json")
			srcDir := filepath.Join(testDir, "src")

			if _, err := os.Stat(goldenPath); err != nil {
				continue
			}
			if _, err := os.Stat(srcDir); err != nil {
				continue
			}

			t.Run(group.Name()+"/"+c.Name(), func(t *testing.T) {
				runGoldenTest(t, srcDir, goldenPath)
			})
		}
	}
}

func runGoldenTest(t *testing.T, srcDir, goldenPath string) {
	t.Helper()

	goldenData, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	var golden goldenFile
	require.NoError(t, json.Unmarshal(goldenData, &golden))

	// File every source in src/ under its kind; precedence comes from the
	// kind, not the directory listing.
	entries, err := os.ReadDir(srcDir)
	require.NoError(t, err)
	var paths SourcePaths
	for _, e := range entries {
		if !e.IsDir() {
			require.NoError(t, paths.AddFile(filepath.Join(srcDir, e.Name())))
		}
	}
	require.False(t, paths.Empty())

	reg, err := New().ResolveSources(context.Background(), paths.Sources(nil))
	require.NoError(t, err)

	t.Run("registry", func(t *testing.T) {
		verifyRegistry(t, reg, &golden)
	})

	// The same answers must come back from a saved store.
	s, err := OpenStore(filepath.Join(t.TempDir(), "golden.db"))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, reg.Save(s))

	t.Run("store", func(t *testing.T) {
		verifyStore(t, s, &golden)
	})
}

func verifyRegistry(t *testing.T, reg *Registry, golden *goldenFile) {
	t.Helper()

	for code, want := range golden.CodeToName {
		got, ok := reg.CodeToName(code)
		assert.True(t, ok, "code_to_name missing %s", code)
		assert.Equal(t, want, got, "code_to_name[%s]", code)
	}
	for name, want := range golden.NameToCode {
		got, ok := reg.NameToCode(name)
		assert.True(t, ok, "name_to_code missing %q", name)
		assert.Equal(t, want, got, "name_to_code[%q]", name)
	}
	for code, want := range golden.EtyBases {
		assert.Equal(t, want, reg.EtyBase(code), "ety base of %s", code)
	}
	for code, want := range golden.Ancestors {
		assertChain(t, want, reg.Ancestors(code), "ancestors of %s", code)
	}
	for code, want := range golden.FamilyAncestors {
		assertChain(t, want, reg.FamilyAncestors(code), "family ancestors of %s", code)
	}
	for code, want := range golden.Families {
		rec, ok := reg.Language(code)
		if assert.True(t, ok, "language %s", code) {
			assert.Equal(t, want, rec.FamilyCode, "family of %s", code)
		}
	}
	if golden.Reconstructed != nil {
		assert.Equal(t, golden.Reconstructed, reg.Export().ReconstructedCodes())
	}
	if golden.Diagnostics != nil {
		assert.Equal(t, *golden.Diagnostics, reg.Diagnostics())
	}
}

func verifyStore(t *testing.T, s *Store, golden *goldenFile) {
	t.Helper()

	for code, want := range golden.CodeToName {
		got, ok, err := s.NameByCode(code)
		require.NoError(t, err)
		assert.True(t, ok, "code_to_name missing %s", code)
		assert.Equal(t, want, got, "code_to_name[%s]", code)
	}
	for name, want := range golden.NameToCode {
		got, ok, err := s.CodeByName(name)
		require.NoError(t, err)
		assert.True(t, ok, "name_to_code missing %q", name)
		assert.Equal(t, want, got, "name_to_code[%q]", name)
	}
	for code, want := range golden.EtyBases {
		got, err := s.EtyBase(code)
		require.NoError(t, err)
		assert.Equal(t, want, got, "ety base of %s", code)
	}
	for code, want := range golden.Ancestors {
		got, err := s.Ancestors(code)
		require.NoError(t, err)
		assertChain(t, want, got, "ancestors of %s", code)
	}
	for code, want := range golden.FamilyAncestors {
		got, err := s.FamilyAncestors(code)
		require.NoError(t, err)
		assertChain(t, want, got, "family ancestors of %s", code)
	}
	for code, want := range golden.Families {
		entry, err := s.LanguageByCode(code)
		require.NoError(t, err)
		if assert.NotNil(t, entry, "language %s", code) {
			assert.Equal(t, want, entry.Family, "family of %s", code)
		}
	}
	if golden.Reconstructed != nil {
		got, err := s.Reconstructed()
		require.NoError(t, err)
		assert.Equal(t, golden.Reconstructed, got)
	}
}

// assertChain compares ordered code lists, treating nil and empty alike.
func assertChain(t *testing.T, want, got []string, msgAndArgs ...any) {
	t.Helper()
	if len(want) == 0 {
		assert.Empty(t, got, msgAndArgs...)
		return
	}
	assert.Equal(t, want, got, msgAndArgs...)
}
