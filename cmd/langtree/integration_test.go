package main_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// buildBinary compiles the langtree binary into t.TempDir().
func buildBinary(t *testing.T) string {
	t.Helper()
	binName := "langtree"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	bin := filepath.Join(t.TempDir(), binName)
	cmd := exec.Command("go", "build", "-o", bin, ".")
	cmd.Dir = filepath.Join(projectRoot(t), "cmd", "langtree")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=1")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "build failed: %s", string(out))
	return bin
}

// projectRoot walks up from this file's directory to the one holding go.mod.
func projectRoot(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed")
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, parent, dir, "could not find project root")
		dir = parent
	}
}

// sourceFiles lists the merged fixture's source files.
func sourceFiles(t *testing.T) []string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "testdata", "wiktionary", "merged", "src")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var files []string
	for _, e := range entries {
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files
}

// resolveFixture builds the binary and resolves the merged fixture into a
// fresh database.
func resolveFixture(t *testing.T) (bin, dbPath string) {
	t.Helper()
	bin = buildBinary(t)
	dbPath = filepath.Join(t.TempDir(), "data", "langtree.db")

	args := append([]string{"resolve", "--db", dbPath}, sourceFiles(t)...)
	out, err := run(bin, args...).CombinedOutput()
	require.NoError(t, err, "resolve failed: %s", string(out))
	require.FileExists(t, dbPath)
	assert.Contains(t, string(out), "Anomalies: 1 malformed, 1 name conflicts, 0 unresolvable parents, 6 cycles")
	return bin, dbPath
}

func run(bin string, args ...string) *exec.Cmd {
	cmd := exec.Command(bin, args...)
	cmd.Env = append(os.Environ(), "LANGTREE_LOG_LEVEL=error")
	return cmd
}

// runQuery executes a query command and parses the JSON envelope.
func runQuery(t *testing.T, bin, dbPath string, args ...string) map[string]any {
	t.Helper()
	fullArgs := append([]string{"query", "--db", dbPath}, args...)
	stdout, err := run(bin, fullArgs...).Output()
	// Errors still print a JSON envelope on stdout.
	if err != nil && len(stdout) == 0 {
		t.Fatalf("query command failed with no output: %v", err)
	}

	var result map[string]any
	require.NoError(t, json.Unmarshal(stdout, &result), "invalid JSON output: %s", string(stdout))
	return result
}

func lookup(t *testing.T, result map[string]any) map[string]any {
	t.Helper()
	r, ok := result["results"].(map[string]any)
	require.True(t, ok, "results should be a lookup object: %v", result)
	return r
}

func stringList(t *testing.T, v any) []string {
	t.Helper()
	items, ok := v.([]any)
	require.True(t, ok, "expected a list, got %T", v)
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.(string)
	}
	return out
}

func TestResolve_NoSources(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)

	out, err := run(bin, "resolve", "--db", filepath.Join(t.TempDir(), "x.db")).CombinedOutput()
	require.Error(t, err)
	assert.Contains(t, string(out), "no sources")
	assert.Contains(t, string(out), "Hint:")
}

func TestResolve_WritesJSON(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	jsonPath := filepath.Join(t.TempDir(), "registry.json")

	args := append([]string{"resolve", "--no-db", "--no-parallel", "--out", jsonPath}, sourceFiles(t)...)
	out, err := run(bin, args...).CombinedOutput()
	require.NoError(t, err, "resolve failed: %s", string(out))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "code_to_name")
	assert.Contains(t, doc, "name_to_code")
	assert.Contains(t, doc, "ety_code_to_code")
}

func TestQuery_NameAndCode(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin, dbPath := resolveFixture(t)

	result := runQuery(t, bin, dbPath, "name", "LL.")
	assert.Equal(t, "name", result["command"])
	assert.Equal(t, "Late Latin", lookup(t, result)["result"])
	assert.Equal(t, true, lookup(t, result)["found"])

	result = runQuery(t, bin, dbPath, "code", "Old", "Khmer", "language")
	assert.Equal(t, "okz", lookup(t, result)["result"])

	result = runQuery(t, bin, dbPath, "code", "Hokkien")
	assert.Equal(t, "nan", lookup(t, result)["result"])

	result = runQuery(t, bin, dbPath, "name", "zzz")
	assert.Equal(t, false, lookup(t, result)["found"])
	assert.Empty(t, result["error"])
}

func TestQuery_Ety(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin, dbPath := resolveFixture(t)

	result := runQuery(t, bin, dbPath, "ety", "NL.")
	assert.Equal(t, "la", lookup(t, result)["result"])
	assert.Equal(t, true, lookup(t, result)["found"])

	result = runQuery(t, bin, dbPath, "ety", "en")
	assert.Equal(t, "en", lookup(t, result)["result"])
	assert.Equal(t, false, lookup(t, result)["found"])
}

func TestQuery_Ancestors(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin, dbPath := resolveFixture(t)

	result := runQuery(t, bin, dbPath, "ancestors", "en")
	assert.Equal(t, []string{"enm", "ang", "gmw-pro", "gem-pro", "ine-pro"}, stringList(t, result["results"]))

	result = runQuery(t, bin, dbPath, "ancestors", "--family", "gmw")
	assert.Equal(t, []string{"gem", "ine"}, stringList(t, result["results"]))
}

func TestQuery_LanguageAndReconstructed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin, dbPath := resolveFixture(t)

	result := runQuery(t, bin, dbPath, "language", "LL.")
	entry, ok := result["results"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Late Latin", entry["name"])
	assert.Equal(t, "itc", entry["family"])

	result = runQuery(t, bin, dbPath, "language", "zzz")
	assert.Contains(t, result["error"], "not found")

	result = runQuery(t, bin, dbPath, "reconstructed")
	assert.Equal(t, []string{"gem-pro", "gmw-pro", "ine-pro", "itc-pro"}, stringList(t, result["results"]))
}

func TestQuery_SearchPaginates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin, dbPath := resolveFixture(t)

	result := runQuery(t, bin, dbPath, "search", "--limit", "1", "Old")
	matches, ok := result["results"].([]any)
	require.True(t, ok)
	assert.Len(t, matches, 1)
	total, ok := result["total_count"].(float64)
	require.True(t, ok)
	assert.Greater(t, total, float64(1))
}

func TestQuery_Info(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin, dbPath := resolveFixture(t)

	result := runQuery(t, bin, dbPath, "info")
	info, ok := result["results"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, info["resolved_at"])
	assert.Len(t, info["digest"], 64)
}

func TestQuery_MissingDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)

	result := runQuery(t, bin, filepath.Join(t.TempDir(), "missing.db"), "name", "en")
	assert.Contains(t, result["error"], "database not found")
}

func TestExport_YAML(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin, dbPath := resolveFixture(t)

	out, err := run(bin, "export", "--db", dbPath, "--format", "yaml").Output()
	require.NoError(t, err)

	var doc struct {
		CodeToName    map[string]string `yaml:"code_to_name"`
		Reconstructed []string          `yaml:"reconstructed"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "New Latin", doc.CodeToName["NL."])
	assert.Equal(t, []string{"gem-pro", "gmw-pro", "ine-pro", "itc-pro"}, doc.Reconstructed)
}
