package langtree

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// protoSuffix names the reconstructed proto-language of a family:
// the proto-language of family "gem" is "gem-pro".
const protoSuffix = "-pro"

// Resolver merges source batches into a Registry and derives etymology
// bases and ancestor chains.
type Resolver struct {
	logger *zap.Logger

	// useParallel parses sources on a worker pool. Merging is always
	// serial and in source order.
	useParallel bool
	workers     int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger for anomalies and progress. Defaults to a
// no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithParallel controls parallel source parsing. When true (default),
// ResolveSources parses every source concurrently. The result is identical
// either way.
func WithParallel(parallel bool) Option {
	return func(r *Resolver) {
		r.useParallel = parallel
	}
}

// WithWorkers caps the number of sources parsed at once. Defaults to
// the number of CPUs.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		logger:      zap.NewNop(),
		useParallel: true,
		workers:     runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveSources parses every source and resolves the batches in the order
// the sources were given. A source that cannot be read fails the whole
// resolution; malformed records inside a source do not.
func (r *Resolver) ResolveSources(ctx context.Context, sources []Source) (*Registry, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	start := time.Now()

	var batches []*Batch
	var err error
	if r.useParallel && len(sources) > 1 {
		batches, err = r.parseParallel(ctx, sources)
	} else {
		batches, err = r.parseSerial(ctx, sources)
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("sources parsed", zap.Int("sources", len(sources)), zap.Duration("elapsed", time.Since(start)))

	return r.Resolve(batches)
}

// Resolve merges batches in order, later batches taking precedence, then
// resolves etymology-only chains, precomputes family ancestors and traces
// every language's ancestry. Nil batches are skipped.
func (r *Resolver) Resolve(batches []*Batch) (*Registry, error) {
	if len(batches) == 0 {
		return nil, ErrNoSources
	}
	start := time.Now()

	reg := newRegistry()
	m := &merger{reg: reg, logger: r.logger}
	for _, b := range batches {
		if b != nil {
			m.apply(b)
		}
	}

	r.resolveEtymology(reg)
	r.computeFamilyAncestors(reg)
	r.traceAncestry(reg)

	d := reg.diagnostics
	r.logger.Info("registry resolved",
		zap.Int("batches", len(batches)),
		zap.Int("languages", reg.languages.Len()),
		zap.Int("families", reg.families.Len()),
		zap.Int("names", reg.nameToCode.Len()),
		zap.Int("etymology_bases", reg.etyCodeToCode.Len()),
		zap.Int("malformed", d.Malformed),
		zap.Int("name_conflicts", d.NameConflicts),
		zap.Int("unresolvable_parents", d.UnresolvableParents),
		zap.Int("cycles", d.Cycles),
		zap.Duration("elapsed", time.Since(start)),
	)
	return reg, nil
}
