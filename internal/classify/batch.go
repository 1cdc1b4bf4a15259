package classify

import (
	"sync"

	cmap "github.com/orcaman/concurrent-map"

	"github.com/roach88/arpp/internal/group"
	"github.com/roach88/arpp/internal/rule"
)

type itemOutcome struct {
	groups []group.Group
	err    error
}

// ClassifyEach classifies the same rules once per item of interest, one
// goroutine per item. Rules are only read, so the passes share them.
//
// If any pass fails, the error of the first failing item in items order is
// returned along with no results.
func ClassifyEach(items []string, rules []*rule.Rule, cfg Config) (map[string][]group.Group, error) {
	outcomes := cmap.New()

	var wg sync.WaitGroup
	for _, item := range items {
		if outcomes.Has(item) {
			continue
		}
		outcomes.Set(item, itemOutcome{})

		wg.Add(1)
		go func(item string) {
			defer wg.Done()
			groups, err := Classify(item, rules, cfg)
			outcomes.Set(item, itemOutcome{groups: groups, err: err})
		}(item)
	}
	wg.Wait()

	results := make(map[string][]group.Group, len(items))
	for _, item := range items {
		v, _ := outcomes.Get(item)
		outcome := v.(itemOutcome)
		if outcome.err != nil {
			return nil, outcome.err
		}
		results[item] = outcome.groups
	}
	return results, nil
}
