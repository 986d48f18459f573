package layout

import (
	"testing"
)

func pagingFromStarts(starts []int, total int) *Paging {
	p := &Paging{}
	for i, s := range starts {
		end := total
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		p.Pages = append(p.Pages, Page{Start: s, End: end})
	}
	return p
}

func TestReconcile_AnchorsToFirstBlock(t *testing.T) {
	old := pagingFromStarts([]int{0, 4, 8, 12, 16}, 20)
	next := pagingFromStarts([]int{0, 5, 10, 15, 20}, 25)

	// anchor is block 12, the last new page starting at or before it is page 2
	if got := Reconcile(old, 3, next); got != 2 {
		t.Errorf("Reconcile() = %d, want 2", got)
	}
}

func TestReconcile_ExactStartMatch(t *testing.T) {
	old := pagingFromStarts([]int{0, 5, 10}, 15)
	next := pagingFromStarts([]int{0, 5, 10}, 15)

	for page := range old.Pages {
		if got := Reconcile(old, page, next); got != page {
			t.Errorf("identical paging moved page %d to %d", page, got)
		}
	}
}

func TestReconcile_ShrinksToFewerPages(t *testing.T) {
	old := pagingFromStarts([]int{0, 2, 4, 6}, 8)
	next := pagingFromStarts([]int{0}, 8)

	if got := Reconcile(old, 3, next); got != 0 {
		t.Errorf("Reconcile() = %d, want 0", got)
	}
}

func TestReconcile_GrowsToMorePages(t *testing.T) {
	old := pagingFromStarts([]int{0, 10}, 20)
	next := pagingFromStarts([]int{0, 3, 6, 9, 12, 15, 18}, 20)

	// block 10 now lives on the page starting at 9
	if got := Reconcile(old, 1, next); got != 3 {
		t.Errorf("Reconcile() = %d, want 3", got)
	}
}

func TestReconcile_OutOfRangeFallsToFirstPage(t *testing.T) {
	old := pagingFromStarts([]int{0, 5}, 10)
	next := pagingFromStarts([]int{0, 5}, 10)

	for _, page := range []int{-1, 2, 99} {
		if got := Reconcile(old, page, next); got != 0 {
			t.Errorf("Reconcile(page=%d) = %d, want 0", page, got)
		}
	}
	if got := Reconcile(nil, 0, next); got != 0 {
		t.Errorf("Reconcile(nil old) = %d, want 0", got)
	}
	if got := Reconcile(old, 0, nil); got != 0 {
		t.Errorf("Reconcile(nil next) = %d, want 0", got)
	}
}

func TestPageForBlock(t *testing.T) {
	p := pagingFromStarts([]int{0, 5, 10, 15}, 20)

	cases := []struct{ block, want int }{
		{0, 0}, {4, 0}, {5, 1}, {12, 2}, {15, 3}, {19, 3}, {100, 3},
	}
	for _, tc := range cases {
		if got := PageForBlock(p, tc.block); got != tc.want {
			t.Errorf("PageForBlock(%d) = %d, want %d", tc.block, got, tc.want)
		}
	}
}
