package synth

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/scenecheck/internal/extract"
)

// Batch runs n episodes concurrently, each with its own generator from
// newGen. Episode i uses seed cfg.Seed+i and id "<cfg.ID>-<i>".
func Batch(ctx context.Context, newGen func() *Generator, cfg Config, n int) ([]*extract.Episode, error) {
	episodes := make([]*extract.Episode, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = cfg.Seed + int64(idx)
			cfgCopy.ID = fmt.Sprintf("%s-%03d", cfg.ID, idx)

			episodes[idx], errs[idx] = newGen().Run(ctx, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return episodes, nil
}
