package layout

import (
	"sort"
)

// Reconcile maps a page index from one paging onto another so the reader
// stays anchored to the same content when typography or viewport changes.
// The anchor is the first block of the old page: the result is the page of
// the new paging that starts at or before that block. Out-of-range input
// falls back to the first page rather than failing.
func Reconcile(old *Paging, oldPage int, next *Paging) int {
	if old == nil || next == nil || len(next.Pages) == 0 {
		return 0
	}
	if oldPage < 0 || oldPage >= len(old.Pages) {
		return 0
	}
	return PageForBlock(next, old.Pages[oldPage].Start)
}

// PageForBlock returns the index of the last page starting at or before the
// given block, 0 if no page does.
func PageForBlock(p *Paging, block int) int {
	// first page starting strictly after the anchor
	i := sort.Search(len(p.Pages), func(i int) bool {
		return p.Pages[i].Start > block
	})
	if i == 0 {
		return 0
	}
	return i - 1
}
