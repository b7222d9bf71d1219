package concurrent

import (
	"context"

	"github.com/zeusync/pitchsim/pkg/sequence"
	"golang.org/x/sync/errgroup"
)

// MapContext applies mapFn to every element on at most workers goroutines.
// The first error cancels the shared context and is returned once every started call has finished.
// Results keep the input order.
func MapContext[T any, R any](ctx context.Context, i *sequence.Iterator[T], workers int, mapFn func(context.Context, T) (R, error)) ([]R, error) {
	in := i.Collect()
	out := make([]R, len(in))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for idx, val := range in {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r, err := mapFn(gctx, val)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
