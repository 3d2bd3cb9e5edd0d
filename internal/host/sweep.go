package host

import (
	"context"
	"fmt"
	"maps"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/fmukit/internal/abi"
)

// Sweep runs base once per variant, merging each variant's values over the
// base values. At most workers runs execute at once; zero means one per
// CPU. Results are returned in variant order. The first failure cancels the
// remaining runs.
func Sweep(ctx context.Context, table *abi.Table, base Options, variants []map[string]string, workers int) ([]*Result, error) {
	if err := base.validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*Result, len(variants))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, variant := range variants {
		i := i // per-iteration copy; go.mod targets go1.21 loop semantics
		opts := base
		opts.Values = make(map[string]string, len(base.Values)+len(variant))
		maps.Copy(opts.Values, base.Values)
		maps.Copy(opts.Values, variant)
		opts.InstanceName = fmt.Sprintf("%s#%d", instanceBase(table, base), i)

		g.Go(func() error {
			res, err := Simulate(ctx, table, opts)
			if err != nil {
				return fmt.Errorf("variant %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func instanceBase(table *abi.Table, o Options) string {
	if o.InstanceName != "" {
		return o.InstanceName
	}
	return table.Info().ModelIdentifier
}
