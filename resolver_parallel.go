package langtree

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jward/langtree/internal/logging"
)

// parseParallel parses sources on a bounded worker pool. Each result lands
// in the slot of its source, so merge order never depends on scheduling.
// The first failure cancels the remaining parses.
func (r *Resolver) parseParallel(ctx context.Context, sources []Source) ([]*Batch, error) {
	batches := make([]*Batch, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(r.workers, len(sources))))
	for i, src := range sources {
		g.Go(func() error {
			b, err := r.parseOne(gctx, src)
			if err != nil {
				return err
			}
			batches[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *Resolver) parseSerial(ctx context.Context, sources []Source) ([]*Batch, error) {
	batches := make([]*Batch, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := r.parseOne(ctx, src)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

func (r *Resolver) parseOne(ctx context.Context, src Source) (*Batch, error) {
	start := time.Now()
	b, err := src.Parse(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "langtree: parse %s", src.Name())
	}
	if b == nil {
		b = &Batch{}
	}
	if b.Name == "" {
		b.Name = src.Name()
	}
	r.logger.Debug("source parsed",
		zap.String(logging.FieldSource, b.Name),
		zap.Stringer("mode", b.Mode),
		zap.Int("languages", len(b.Languages)),
		zap.Int("families", len(b.Families)),
		zap.Int("malformed", len(b.Malformed)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return b, nil
}
