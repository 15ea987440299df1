// Package dedup filters duplicate input URLs with a bloom filter before the
// pipeline runs, so re-running against overlapping input files does not
// re-fetch sites already covered in the same batch.
package dedup

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/juditrz/host-checker/pkg/model"
)

// Filter wraps a bloom filter
type Filter struct {
	filter *bloom.BloomFilter
	mu     sync.Mutex
}

// NewFilter creates filter sized for n expected URLs at the given false
// positive rate.
func NewFilter(n uint, fp float64) *Filter {
	return &Filter{filter: bloom.NewWithEstimates(n, fp)}
}

// TestAndAdd reports whether data was likely seen before, adding it either
// way.
func (f *Filter) TestAndAdd(data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter.TestAndAdd(data)
}

// Links drops links whose URL was already seen. Order of the survivors is
// preserved. A bloom false positive drops a fresh URL; with the default
// sizing that is rare enough for a reporting tool.
func (f *Filter) Links(links []model.InputLink) []model.InputLink {
	var kept []model.InputLink
	for _, link := range links {
		if !f.TestAndAdd([]byte(link.URL)) {
			kept = append(kept, link)
		}
	}
	return kept
}
