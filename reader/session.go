// Package reader drives one open story: it owns the current pagination, the
// reading position, navigation and the settings modal, and persists progress
// in the background.
package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"leaf/content"
	"leaf/layout"
	"leaf/store"
)

// ErrNotAtEnd is returned when a story is marked read away from its last page.
var ErrNotAtEnd = errors.New("story is not at its last page")

const (
	// DefaultSettleDelay coalesces bursts of viewport and typography changes
	// into one re-pagination.
	DefaultSettleDelay = 150 * time.Millisecond
	// DefaultTransition is how long a page turn stays marked as in flight.
	DefaultTransition = 250 * time.Millisecond

	saveQueueDepth = 16
)

// State of a session. A session starts Loading and becomes Ready after the
// first successful pagination; it never goes back.
type State int

const (
	StateLoading State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "loading"
}

// Direction of the last page turn, kept while the turn is still in flight.
type Direction int

const (
	DirNone Direction = iota
	DirForward
	DirBackward
)

func (d Direction) String() string {
	switch d {
	case DirForward:
		return "forward"
	case DirBackward:
		return "backward"
	}
	return "none"
}

// ProgressStore persists reading positions.
type ProgressStore interface {
	SaveProgress(ctx context.Context, p store.Progress) error
	LoadProgress(ctx context.Context, storyID string) (*store.Progress, error)
}

// FlagStore records completion.
type FlagStore interface {
	MarkRead(ctx context.Context, id string, read bool, when time.Time) error
}

// Params configures a session. Zero durations get the package defaults; a
// negative SettleDelay makes re-pagination synchronous.
type Params struct {
	Story      *store.Story
	Segmenter  *content.Segmenter
	Host       layout.Host
	Progress   ProgressStore
	Flags      FlagStore
	Typography layout.Typography

	SettleDelay time.Duration
	Transition  time.Duration
	// MinViewportHeight is the height below which pagination waits, in the
	// same units the Host measures in. Zero picks the point-based default;
	// hosts measuring in coarser units (terminal rows) pass their own floor.
	MinViewportHeight float64
	Log               *zap.Logger
}

// Session is the reading state of one open story. All methods are safe for
// concurrent use. Content is segmented once at open and never changes.
type Session struct {
	mu sync.Mutex

	story    *store.Story
	blocks   []content.Block
	host     layout.Host
	progress ProgressStore
	flags    FlagStore
	log      *zap.Logger

	state        State
	typo         layout.Typography
	view         layout.Viewport
	paging       *layout.Paging
	page         int
	scrollPos    float64 // carried from persisted progress, saved back verbatim
	seed         *store.Progress
	settingsOpen bool
	closed       bool

	transition      Direction
	transitionUntil time.Time
	transitionFor   time.Duration

	minHeight   float64
	settle      time.Duration
	settleTimer *time.Timer

	saves     chan store.Progress
	saverDone chan struct{}

	now func() time.Time
}

// NewSession segments the story and prepares an idle session. Pagination
// waits for the first measurable viewport.
func NewSession(ctx context.Context, p Params) (*Session, error) {
	if p.Story == nil {
		return nil, errors.New("session needs a story")
	}
	if p.Segmenter == nil || p.Host == nil {
		return nil, errors.New("session needs a segmenter and a measurement host")
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	if p.SettleDelay == 0 {
		p.SettleDelay = DefaultSettleDelay
	}
	if p.Transition == 0 {
		p.Transition = DefaultTransition
	}
	if p.MinViewportHeight == 0 {
		p.MinViewportHeight = layout.MinMeasurableHeight
	}

	s := &Session{
		story:         p.Story,
		blocks:        p.Segmenter.Segment(p.Story.Content),
		host:          p.Host,
		progress:      p.Progress,
		flags:         p.Flags,
		log:           log.With(zap.String("story", p.Story.ID)),
		typo:          p.Typography.Normalize(),
		minHeight:     p.MinViewportHeight,
		transitionFor: p.Transition,
		settle:        p.SettleDelay,
		saves:         make(chan store.Progress, saveQueueDepth),
		saverDone:     make(chan struct{}),
		now:           time.Now,
	}

	if s.progress != nil {
		// a failed read degrades to the first page, it never blocks reading
		seed, err := s.progress.LoadProgress(ctx, s.story.ID)
		if err != nil {
			s.log.Warn("Unable to load reading position, starting from the first page", zap.Error(err))
		} else {
			s.seed = seed
			if seed != nil {
				s.scrollPos = seed.ScrollPosition
			}
		}
	}

	go s.saver()

	s.log.Debug("Session opened", zap.Int("blocks", len(s.blocks)))
	return s, nil
}

// SetViewport records the new page area and schedules re-pagination.
func (s *Session) SetViewport(view layout.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || view == s.view {
		return
	}
	s.view = view
	s.scheduleRepack()
}

// SetTypography records new typography and schedules re-pagination. Values
// are clamped into supported bounds.
func (s *Session) SetTypography(typo layout.Typography) {
	s.mu.Lock()
	defer s.mu.Unlock()
	typo = typo.Normalize()
	if s.closed || typo == s.typo {
		return
	}
	s.typo = typo
	s.scheduleRepack()
}

// scheduleRepack starts or extends the settle window. The repack that
// eventually fires reads whatever viewport and typography are current then,
// so a burst of changes costs one pagination.
func (s *Session) scheduleRepack() {
	if s.settle < 0 {
		s.repack()
		return
	}
	if s.settleTimer != nil {
		s.settleTimer.Reset(s.settle)
		return
	}
	s.settleTimer = time.AfterFunc(s.settle, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.settleTimer = nil
		if s.closed {
			return
		}
		s.repack()
	})
}

// repack runs under the lock. The viewport may still be unmeasurable while
// the display is settling, in which case the previous pagination stays.
func (s *Session) repack() {
	if s.view.Width <= 0 || s.view.Height <= s.minHeight {
		s.log.Debug("Viewport not measurable yet, keeping pagination",
			zap.Float64("width", s.view.Width), zap.Float64("height", s.view.Height))
		return
	}

	paging, err := layout.Pack(s.host, s.blocks, s.typo, s.view, s.log)
	if err != nil {
		s.log.Error("Pagination failed, keeping previous pages", zap.Error(err))
		return
	}

	if s.paging == nil {
		s.page = 0
		if s.seed != nil && s.seed.Page >= 0 && s.seed.Page < paging.PageCount() {
			s.page = s.seed.Page
		}
		s.seed = nil
		s.state = StateReady
	} else {
		s.page = layout.Reconcile(s.paging, s.page, paging)
	}
	s.paging = paging
	s.queueSave()

	s.log.Debug("Repaginated", zap.Int("pages", paging.PageCount()), zap.Int("page", s.page))
}

// NextPage advances one page. It reports false when the turn is rejected:
// not ready yet, settings open, or already at the last page.
func (s *Session) NextPage() bool {
	return s.turn(DirForward)
}

// PrevPage goes back one page under the same rules as NextPage.
func (s *Session) PrevPage() bool {
	return s.turn(DirBackward)
}

// turn moves the page synchronously. The transition marker is presentation
// only: it tags the latest direction for a short window and never gates the
// page change itself.
func (s *Session) turn(dir Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != StateReady || s.settingsOpen {
		return false
	}
	switch dir {
	case DirForward:
		if s.page >= s.paging.PageCount()-1 {
			return false
		}
		s.page++
	case DirBackward:
		if s.page <= 0 {
			return false
		}
		s.page--
	default:
		return false
	}
	s.transition = dir
	s.transitionUntil = s.now().Add(s.transitionFor)
	s.queueSave()
	return true
}

// transitioning runs under the lock and lazily clears an expired marker.
func (s *Session) transitioning() bool {
	if s.transition == DirNone {
		return false
	}
	if s.now().Before(s.transitionUntil) {
		return true
	}
	s.transition = DirNone
	return false
}

// Transition returns the direction of the page turn still in flight, or
// DirNone.
func (s *Session) Transition() Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transitioning() {
		return s.transition
	}
	return DirNone
}

// OpenSettings opens the settings modal. Navigation is rejected until it
// closes; typography changes keep applying.
func (s *Session) OpenSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settingsOpen = true
}

func (s *Session) CloseSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settingsOpen = false
}

func (s *Session) SettingsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingsOpen
}

// ToggleRead flips the story's read flag and returns the new state. The flag
// is orthogonal to pagination but only the last page may change it.
func (s *Session) ToggleRead(ctx context.Context) (bool, error) {
	s.mu.Lock()
	atEnd := s.state == StateReady && s.page == s.paging.PageCount()-1
	read := !s.story.IsRead()
	when := s.now()
	s.mu.Unlock()

	if !atEnd {
		return !read, ErrNotAtEnd
	}
	if s.flags != nil {
		if err := s.flags.MarkRead(ctx, s.story.ID, read, when); err != nil {
			return !read, err
		}
	}
	s.mu.Lock()
	if read {
		s.story.ReadAt = when
	} else {
		s.story.ReadAt = time.Time{}
	}
	s.mu.Unlock()
	return read, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Story() *store.Story {
	return s.story
}

func (s *Session) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *Session) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paging == nil {
		return 0
	}
	return s.paging.PageCount()
}

func (s *Session) Typography() layout.Typography {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typo
}

// PageBlocks returns the blocks of the current page in order. Nil until the
// session is ready.
func (s *Session) PageBlocks() []content.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paging == nil {
		return nil
	}
	pg := s.paging.Pages[s.page]
	return s.blocks[pg.Start:pg.End]
}

// queueSave runs under the lock. Saves are fire and forget: a full queue
// drops the oldest pending snapshot, the latest position always wins.
func (s *Session) queueSave() {
	if s.progress == nil || s.paging == nil {
		return
	}
	p := store.Progress{
		StoryID:        s.story.ID,
		Page:           s.page,
		PageCount:      s.paging.PageCount(),
		ScrollPosition: s.scrollPos,
		UpdatedAt:      s.now(),
	}
	for {
		select {
		case s.saves <- p:
			return
		default:
		}
		select {
		case <-s.saves:
		default:
		}
	}
}

// saver is the single consumer of the save queue, which keeps persisted
// positions in the order they were committed.
func (s *Session) saver() {
	defer close(s.saverDone)
	for p := range s.saves {
		if err := s.progress.SaveProgress(context.Background(), p); err != nil {
			s.log.Warn("Unable to save reading position", zap.Error(err))
		}
	}
}

// Close stops background work and writes the final position synchronously.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
	var final *store.Progress
	if s.progress != nil && s.paging != nil {
		final = &store.Progress{
			StoryID:        s.story.ID,
			Page:           s.page,
			PageCount:      s.paging.PageCount(),
			ScrollPosition: s.scrollPos,
			UpdatedAt:      s.now(),
		}
	}
	s.mu.Unlock()

	close(s.saves)
	<-s.saverDone

	if final != nil {
		if err := s.progress.SaveProgress(context.Background(), *final); err != nil {
			return fmt.Errorf("unable to save final reading position: %w", err)
		}
	}
	return nil
}
