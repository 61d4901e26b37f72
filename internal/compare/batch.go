package compare

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/san-kum/scenecheck/internal/scenario"
)

// BatchReport holds one report per episode key. Keys whose records failed the
// sanity check have an entry in Errors instead.
type BatchReport struct {
	Keys    []string
	Reports map[string]*Report
	Errors  map[string]error
}

func (b *BatchReport) OK() bool {
	if len(b.Errors) > 0 {
		return false
	}
	for _, r := range b.Reports {
		if !r.OK() {
			return false
		}
	}
	return true
}

// Failed returns the sorted keys whose comparison errored or found mismatches.
func (b *BatchReport) Failed() []string {
	var out []string
	for _, k := range b.Keys {
		if b.Errors[k] != nil || (b.Reports[k] != nil && !b.Reports[k].OK()) {
			out = append(out, k)
		}
	}
	return out
}

// CompareSets compares two sets of episodes keyed by episode id. The key sets
// must match exactly; each pair is then compared on its own goroutine.
func CompareSets(a, b map[string]*scenario.Record, mode Mode, tol Tolerance) (*BatchReport, error) {
	ka := slices.Sorted(maps.Keys(a))
	kb := slices.Sorted(maps.Keys(b))
	if !slices.Equal(ka, kb) {
		c := &comparer{rep: &Report{}}
		c.keys("episodes", ka, kb)
		return nil, &MismatchError{Mismatches: c.rep.Mismatches}
	}

	reports := make([]*Report, len(ka))
	errs := make([]error, len(ka))

	var wg sync.WaitGroup
	for i, key := range ka {
		wg.Add(1)
		go func(idx int, key string) {
			defer wg.Done()
			reports[idx], errs[idx] = Compare(a[key], b[key], mode, tol)
		}(i, key)
	}

	wg.Wait()

	out := &BatchReport{
		Keys:    ka,
		Reports: make(map[string]*Report, len(ka)),
		Errors:  make(map[string]error),
	}
	for i, key := range ka {
		if errs[i] != nil {
			out.Errors[key] = fmt.Errorf("episode %s: %w", key, errs[i])
			continue
		}
		out.Reports[key] = reports[i]
	}

	slog.Debug("batch compared", "episodes", len(ka), "failed", len(out.Failed()), "mode", mode)
	return out, nil
}
