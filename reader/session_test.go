package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"leaf/content"
	"leaf/layout"
	"leaf/store"
)

// flatHost measures every block at a fixed height, so pages hold exactly
// viewportHeight/blockHeight blocks and tests can reason about page counts.
type flatHost struct {
	mu     sync.Mutex
	height float64
	opens  int
}

func (h *flatHost) OpenSurface(width float64, typo layout.Typography) (layout.Surface, error) {
	h.mu.Lock()
	h.opens++
	h.mu.Unlock()
	return flatSurface{height: h.height}, nil
}

func (h *flatHost) openCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.opens
}

type flatSurface struct {
	height float64
}

func (s flatSurface) BlockHeight(content.Block) (float64, error) { return s.height, nil }
func (s flatSurface) Close() error                               { return nil }

type fakeProgress struct {
	mu      sync.Mutex
	seed    *store.Progress
	loadErr error
	saved   []store.Progress
}

func (f *fakeProgress) LoadProgress(ctx context.Context, storyID string) (*store.Progress, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.seed, nil
}

func (f *fakeProgress) SaveProgress(ctx context.Context, p store.Progress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, p)
	return nil
}

func (f *fakeProgress) last() (store.Progress, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return store.Progress{}, false
	}
	return f.saved[len(f.saved)-1], true
}

type fakeFlags struct {
	mu   sync.Mutex
	read map[string]bool
}

func (f *fakeFlags) MarkRead(ctx context.Context, id string, read bool, when time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.read == nil {
		f.read = make(map[string]bool)
	}
	f.read[id] = read
	return nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func storyWithParagraphs(n int) *store.Story {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "<p>Paragraph number %d of the story.</p>\n", i)
	}
	return &store.Story{ID: "test-story", Title: "Test Story", Content: sb.String()}
}

// newTestSession builds a session with synchronous re-pagination, a fixed
// 100-unit block height and a controllable clock.
func newTestSession(t *testing.T, blocks int, progress *fakeProgress, flags *fakeFlags) (*Session, *flatHost, *fakeClock) {
	t.Helper()
	log := zaptest.NewLogger(t)
	host := &flatHost{height: 100}

	var p ProgressStore
	if progress != nil {
		p = progress
	}
	var f FlagStore
	if flags != nil {
		f = flags
	}
	s, err := NewSession(context.Background(), Params{
		Story:       storyWithParagraphs(blocks),
		Segmenter:   content.NewSegmenter(nil, 0, log),
		Host:        host,
		Progress:    p,
		Flags:       f,
		Typography:  layout.Typography{Size: 18, LineHeight: 1.6},
		SettleDelay: -1,
		Log:         log,
	})
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s.now = clock.now
	t.Cleanup(func() { _ = s.Close() })
	return s, host, clock
}

func TestSession_LoadingUntilMeasurable(t *testing.T) {
	s, host, _ := newTestSession(t, 10, nil, nil)

	if s.State() != StateLoading {
		t.Fatalf("fresh session state = %s, want loading", s.State())
	}
	if s.NextPage() {
		t.Error("navigation allowed before first pagination")
	}

	s.SetViewport(layout.Viewport{Width: 400, Height: 80})
	if s.State() != StateLoading {
		t.Error("unmeasurable viewport paginated anyway")
	}
	if host.openCount() != 0 {
		t.Error("opened a surface against an unmeasurable viewport")
	}

	s.SetViewport(layout.Viewport{Width: 400, Height: 250})
	if s.State() != StateReady {
		t.Fatalf("state = %s after measurable viewport, want ready", s.State())
	}
	// 10 blocks of height 100 on 250-unit pages: 2 per page, 5 pages
	if s.PageCount() != 5 {
		t.Errorf("page count = %d, want 5", s.PageCount())
	}
	if got := len(s.PageBlocks()); got != 2 {
		t.Errorf("current page holds %d blocks, want 2", got)
	}
}

func TestSession_SeedsFromSavedProgress(t *testing.T) {
	progress := &fakeProgress{seed: &store.Progress{StoryID: "test-story", Page: 3, PageCount: 5, ScrollPosition: 0.7}}
	s, _, _ := newTestSession(t, 10, progress, nil)

	s.SetViewport(layout.Viewport{Width: 400, Height: 250})
	if s.Page() != 3 {
		t.Errorf("seeded page = %d, want 3", s.Page())
	}
	if p, ok := progress.last(); !ok || p.ScrollPosition != 0.7 {
		t.Errorf("scroll position not carried through: %+v", p)
	}
}

func TestSession_BrokenProgressStoreStillOpens(t *testing.T) {
	progress := &fakeProgress{loadErr: errors.New("store offline")}
	s, _, _ := newTestSession(t, 10, progress, nil)

	// a failed position read falls back to the first page
	s.SetViewport(layout.Viewport{Width: 400, Height: 250})
	if s.State() != StateReady {
		t.Fatalf("state = %s, want ready", s.State())
	}
	if s.Page() != 0 {
		t.Errorf("page = %d, want 0", s.Page())
	}

	// saving is unaffected by the earlier read failure
	if !s.NextPage() {
		t.Fatal("NextPage() rejected")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if p, ok := progress.last(); !ok || p.Page != 1 {
		t.Errorf("final progress = %+v, want page 1", p)
	}
}

func TestSession_StaleProgressFallsToFirstPage(t *testing.T) {
	progress := &fakeProgress{seed: &store.Progress{StoryID: "test-story", Page: 42, PageCount: 50}}
	s, _, _ := newTestSession(t, 10, progress, nil)

	s.SetViewport(layout.Viewport{Width: 400, Height: 250})
	if s.Page() != 0 {
		t.Errorf("stale saved page accepted: page = %d, want 0", s.Page())
	}
}

func TestSession_Navigation(t *testing.T) {
	s, _, clock := newTestSession(t, 10, nil, nil)
	s.SetViewport(layout.Viewport{Width: 400, Height: 250})

	if s.PrevPage() {
		t.Error("PrevPage() succeeded on the first page")
	}
	if !s.NextPage() {
		t.Fatal("NextPage() rejected")
	}
	if s.Transition() != DirForward {
		t.Errorf("transition = %s right after a turn, want forward", s.Transition())
	}
	// the marker never gates further turns
	if !s.NextPage() {
		t.Error("NextPage() rejected while the marker was still visible")
	}
	if s.Page() != 2 {
		t.Errorf("page = %d after two turns, want 2", s.Page())
	}

	clock.advance(DefaultTransition + time.Millisecond)
	if s.Transition() != DirNone {
		t.Errorf("transition = %s after expiry, want none", s.Transition())
	}

	for s.NextPage() {
	}
	if s.Page() != s.PageCount()-1 {
		t.Fatalf("stuck at page %d of %d", s.Page(), s.PageCount())
	}
	if s.NextPage() {
		t.Error("NextPage() succeeded on the last page")
	}

	if !s.PrevPage() {
		t.Error("PrevPage() rejected off the last page")
	}
	if s.Transition() != DirBackward {
		t.Errorf("transition = %s, want backward", s.Transition())
	}
}

func TestSession_SettingsBlockNavigation(t *testing.T) {
	s, _, _ := newTestSession(t, 10, nil, nil)
	s.SetViewport(layout.Viewport{Width: 400, Height: 250})

	s.OpenSettings()
	if s.NextPage() {
		t.Error("NextPage() succeeded with settings open")
	}
	if !s.SettingsOpen() {
		t.Error("settings reported closed")
	}
	s.CloseSettings()
	if !s.NextPage() {
		t.Error("NextPage() rejected after settings closed")
	}
}

func TestSession_RepackKeepsAnchorBlock(t *testing.T) {
	s, _, clock := newTestSession(t, 10, nil, nil)
	s.SetViewport(layout.Viewport{Width: 400, Height: 250})

	// two blocks per page; move to page 2, anchored at block 4
	for i := 0; i < 2; i++ {
		if !s.NextPage() {
			t.Fatalf("NextPage() %d rejected", i)
		}
		clock.advance(DefaultTransition + time.Millisecond)
	}

	// four blocks per page now: block 4 lands on page 1
	s.SetViewport(layout.Viewport{Width: 400, Height: 450})
	if s.PageCount() != 3 {
		t.Fatalf("page count = %d, want 3", s.PageCount())
	}
	if s.Page() != 1 {
		t.Errorf("reconciled page = %d, want 1", s.Page())
	}
	if blocks := s.PageBlocks(); len(blocks) == 0 || blocks[0].Index != 4 {
		t.Errorf("anchor block lost: page starts with %+v", blocks)
	}
}

func TestSession_TypographyChangeRepaginates(t *testing.T) {
	s, host, _ := newTestSession(t, 10, nil, nil)
	s.SetViewport(layout.Viewport{Width: 400, Height: 250})

	before := host.openCount()
	s.SetTypography(layout.Typography{Size: 24, LineHeight: 2.0})
	if host.openCount() != before+1 {
		t.Error("typography change did not repaginate")
	}

	// same values again must not repaginate
	s.SetTypography(layout.Typography{Size: 24, LineHeight: 2.0})
	if host.openCount() != before+1 {
		t.Error("unchanged typography repaginated")
	}
}

func TestSession_SettleCoalescesBursts(t *testing.T) {
	log := zaptest.NewLogger(t)
	host := &flatHost{height: 100}
	s, err := NewSession(context.Background(), Params{
		Story:       storyWithParagraphs(10),
		Segmenter:   content.NewSegmenter(nil, 0, log),
		Host:        host,
		Typography:  layout.Typography{Size: 18, LineHeight: 1.6},
		SettleDelay: 20 * time.Millisecond,
		Log:         log,
	})
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	defer s.Close()

	for i := 0; i < 5; i++ {
		s.SetViewport(layout.Viewport{Width: 400, Height: float64(250 + i)})
		time.Sleep(2 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for host.openCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	if got := host.openCount(); got != 1 {
		t.Errorf("burst of changes ran %d paginations, want 1", got)
	}
	// the final pagination must reflect the last viewport of the burst
	if s.PageCount() != 5 {
		t.Errorf("page count = %d, want 5", s.PageCount())
	}
}

func TestSession_SavesLatestPositionOnClose(t *testing.T) {
	progress := &fakeProgress{}
	s, _, clock := newTestSession(t, 10, progress, nil)
	s.SetViewport(layout.Viewport{Width: 400, Height: 250})

	for i := 0; i < 3; i++ {
		if !s.NextPage() {
			t.Fatalf("NextPage() %d rejected", i)
		}
		clock.advance(DefaultTransition + time.Millisecond)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	p, ok := progress.last()
	if !ok {
		t.Fatal("no progress saved")
	}
	if p.Page != 3 || p.PageCount != 5 || p.StoryID != "test-story" {
		t.Errorf("final progress = %+v, want page 3 of 5", p)
	}

	// closed sessions reject everything quietly
	if s.NextPage() {
		t.Error("NextPage() succeeded after Close()")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}

func TestSession_ToggleReadOnlyAtEnd(t *testing.T) {
	flags := &fakeFlags{}
	s, _, clock := newTestSession(t, 4, nil, flags)
	s.SetViewport(layout.Viewport{Width: 400, Height: 250}) // 2 pages

	if _, err := s.ToggleRead(context.Background()); err != ErrNotAtEnd {
		t.Errorf("ToggleRead() off the last page = %v, want ErrNotAtEnd", err)
	}
	if !s.NextPage() {
		t.Fatal("NextPage() rejected")
	}
	clock.advance(DefaultTransition + time.Millisecond)

	read, err := s.ToggleRead(context.Background())
	if err != nil {
		t.Fatalf("ToggleRead() on the last page failed: %v", err)
	}
	if !read || !flags.read["test-story"] {
		t.Errorf("read = %v, flags = %v; want story marked read", read, flags.read)
	}

	read, err = s.ToggleRead(context.Background())
	if err != nil {
		t.Fatalf("second ToggleRead() failed: %v", err)
	}
	if read || flags.read["test-story"] {
		t.Errorf("read = %v, flags = %v; want read flag cleared", read, flags.read)
	}
}
