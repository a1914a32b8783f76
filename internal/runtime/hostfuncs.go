package runtime

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/risor-io/risor/object"
	"go.uber.org/zap"

	"github.com/jward/langtree/internal/source"
)

// collector accumulates the records a script emits. Host functions may be
// called from goroutines the script spawns.
type collector struct {
	mu    sync.Mutex
	batch source.Batch
	calls int
}

func newCollector(label string) *collector {
	return &collector{batch: source.Batch{Name: label, Mode: source.ModeReplace}}
}

func (c *collector) addLanguage(rec source.LanguageRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.batch.Languages = append(c.batch.Languages, rec)
}

func (c *collector) addFamily(rec source.FamilyRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.batch.AddFamily(rec)
}

func (c *collector) malformed(key, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	// Scripts have no record lines; the call number stands in.
	c.batch.Malformed = append(c.batch.Malformed, source.MalformedRecord{Key: key, Line: c.calls, Reason: reason})
}

func (c *collector) setMode(m source.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batch.Mode = m
}

func (c *collector) result() *source.Batch {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.batch
	return &b
}

// makeLanguageFn creates "language": emits one language record from a map
// with keys code, name, other_names, aliases, family, parent, parents,
// type, etymology_only, url and wikidata.
func makeLanguageFn(c *collector) *object.Builtin {
	return object.NewBuiltin("language", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("language", 1, len(args))
		}
		m, err := extractMap(args[0])
		if err != nil {
			return object.Errorf("language: %v", err)
		}
		code := strings.TrimSpace(getString(m, "code"))
		if code == "" {
			return object.Errorf("language: code is required")
		}

		rec := source.LanguageRecord{
			Code:          code,
			CanonicalName: source.NormalizeName(getString(m, "name")),
			OtherNames:    normalized(getList(m, "other_names")),
			Aliases:       normalized(getList(m, "aliases")),
			FamilyCode:    getString(m, "family"),
			ParentCode:    getString(m, "parent"),
			EtymologyOnly: getBool(m, "etymology_only"),
			Type:          source.LanguageType(getString(m, "type")),
			URL:           getString(m, "url"),
			WikidataItem:  getString(m, "wikidata"),
		}
		if parents := getList(m, "parents"); rec.ParentCode == "" {
			switch {
			case len(parents) == 1:
				rec.ParentCode = parents[0]
			case len(parents) > 1:
				rec.MixtureParents = parents
			}
		}
		if rec.EtymologyOnly && rec.Type == "" {
			rec.Type = source.TypeEtymologyOnly
		}
		if rec.CanonicalName == "" {
			c.malformed(code, "missing canonical name")
			return object.False
		}
		c.addLanguage(rec)
		return object.True
	})
}

// makeFamilyFn creates "family": emits one family record from a map with
// keys code, name, parent, other_names and url.
func makeFamilyFn(c *collector) *object.Builtin {
	return object.NewBuiltin("family", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("family", 1, len(args))
		}
		m, err := extractMap(args[0])
		if err != nil {
			return object.Errorf("family: %v", err)
		}
		code := strings.TrimSpace(getString(m, "code"))
		if code == "" {
			return object.Errorf("family: code is required")
		}
		rec := source.FamilyRecord{
			Code:       code,
			Name:       source.NormalizeName(getString(m, "name")),
			ParentCode: getString(m, "parent"),
			OtherNames: normalized(getList(m, "other_names")),
			URL:        getString(m, "url"),
		}
		if rec.Name == "" {
			c.malformed(code, "missing canonical name")
			return object.False
		}
		c.addFamily(rec)
		return object.True
	})
}

// makeModeFn creates "mode": mode("refine") or mode("replace") sets how
// the script's batch merges over earlier sources.
func makeModeFn(c *collector) *object.Builtin {
	return object.NewBuiltin("mode", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("mode", 1, len(args))
		}
		s, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("mode: expected string, got %s", args[0].Type())
		}
		switch s.Value() {
		case "replace":
			c.setMode(source.ModeReplace)
		case "refine":
			c.setMode(source.ModeRefine)
		default:
			return object.Errorf("mode: %q must be replace or refine", s.Value())
		}
		return object.Nil
	})
}

// logObject is exposed to scripts as "log".
type logObject struct {
	logger *zap.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg)
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg)
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg)
}

func extractMap(obj object.Object) (map[string]object.Object, error) {
	m, ok := obj.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("expected map, got %s", obj.Type())
	}
	return m.Value(), nil
}

func getString(m map[string]object.Object, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	if s, ok := v.(*object.String); ok {
		return strings.TrimSpace(s.Value())
	}
	return ""
}

func getBool(m map[string]object.Object, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	if b, ok := v.(*object.Bool); ok {
		return b.Value()
	}
	return false
}

// getList accepts either a list of strings or one comma-separated string.
func getList(m map[string]object.Object, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch v := v.(type) {
	case *object.String:
		return source.SplitList(v.Value())
	case *object.List:
		var out []string
		for _, item := range v.Value() {
			if s, ok := item.(*object.String); ok && strings.TrimSpace(s.Value()) != "" {
				out = append(out, strings.TrimSpace(s.Value()))
			}
		}
		return out
	}
	return nil
}

func normalized(names []string) []string {
	for i, n := range names {
		names[i] = source.NormalizeName(n)
	}
	return names
}
