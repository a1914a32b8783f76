// Package runtime runs Risor scripts that contribute language and family
// records. A script is one source: everything it emits becomes one batch.
package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
	"go.uber.org/zap"

	"github.com/jward/langtree/internal/source"
)

// Runtime embeds a Risor VM and exposes record-emitting host functions.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     *zap.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. Import statements resolve against the same FS.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithLogger sets the logger behind the scripts' log global.
func WithLogger(l *zap.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a Runtime that resolves relative script paths and
// imports against scriptsDir.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScript loads and executes a Risor script and returns the batch it
// emitted. extraGlobals are exposed alongside the standard host functions.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, extraGlobals map[string]any) (*source.Batch, error) {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return nil, err
	}
	return r.eval(ctx, src, scriptPath, extraGlobals)
}

// RunSource executes Risor source code directly. Useful for testing
// without script files.
func (r *Runtime) RunSource(ctx context.Context, src string, extraGlobals map[string]any) (*source.Batch, error) {
	return r.eval(ctx, src, "<inline>", extraGlobals)
}

func (r *Runtime) eval(ctx context.Context, src, label string, extraGlobals map[string]any) (*source.Batch, error) {
	c := newCollector(label)
	globals := r.buildGlobals(c, label, extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	if _, err := risor.Eval(ctx, src, opts...); err != nil {
		return nil, errors.Wrapf(err, "runtime: script %s", label)
	}
	return c.result(), nil
}

// buildImporter returns a Risor importer configured for the Runtime's
// script source, or nil if neither an fs.FS nor a scriptsDir is set.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", errors.Wrapf(err, "runtime: loading script %s from fs", fsPath)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) && r.scriptsDir != "" {
		fullPath = filepath.Join(r.scriptsDir, path)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", errors.Wrapf(err, "runtime: loading script %s", fullPath)
	}
	return string(data), nil
}

// buildGlobals constructs the full set of globals exposed to a script.
func (r *Runtime) buildGlobals(c *collector, label string, extra map[string]any) map[string]any {
	globals := map[string]any{
		"language": makeLanguageFn(c),
		"family":   makeFamilyFn(c),
		"mode":     makeModeFn(c),
		"log":      mustProxy(&logObject{logger: r.logger.With(zap.String("script", label))}),
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}

// ScriptSource adapts a script to the source.Source interface.
type ScriptSource struct {
	rt     *Runtime
	path   string
	extras map[string]any
}

// NewScriptSource returns a source that runs path on rt when parsed.
func NewScriptSource(rt *Runtime, path string, extras map[string]any) *ScriptSource {
	return &ScriptSource{rt: rt, path: path, extras: extras}
}

func (s *ScriptSource) Name() string {
	return "risor:" + s.path
}

func (s *ScriptSource) Parse(ctx context.Context) (*source.Batch, error) {
	batch, err := s.rt.RunScript(ctx, s.path, s.extras)
	if err != nil {
		return nil, err
	}
	batch.Name = s.Name()
	return batch, nil
}
