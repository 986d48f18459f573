package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"leaf/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "library.db"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_StoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	in := &Story{
		ID:      "the-lighthouse-0042",
		Title:   "The Lighthouse",
		Author:  "A. Keeper",
		Lang:    "en",
		Content: "<p>It was a dark and stormy night.</p>",
	}
	if err := s.PutStory(ctx, in); err != nil {
		t.Fatalf("PutStory() failed: %v", err)
	}

	out, err := s.GetStory(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetStory() failed: %v", err)
	}
	if out.Title != in.Title || out.Author != in.Author || out.Lang != in.Lang || out.Content != in.Content {
		t.Errorf("story round trip mismatch: %+v", out)
	}
	if out.AddedAt.IsZero() {
		t.Error("AddedAt not stamped")
	}
	if out.IsRead() {
		t.Error("fresh story reported read")
	}

	if _, err := s.GetStory(ctx, "no-such-story"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetStory(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListStoriesNaturalOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, title := range []string{"Chapter 10", "Chapter 2", "Chapter 1"} {
		if err := s.PutStory(ctx, &Story{ID: title, Title: title, Content: "x"}); err != nil {
			t.Fatalf("PutStory(%s) failed: %v", title, err)
		}
	}
	stories, err := s.ListStories(ctx)
	if err != nil {
		t.Fatalf("ListStories() failed: %v", err)
	}
	want := []string{"Chapter 1", "Chapter 2", "Chapter 10"}
	for i, story := range stories {
		if story.Title != want[i] {
			t.Errorf("position %d: %s, want %s", i, story.Title, want[i])
		}
		if story.Content != "" {
			t.Errorf("listing leaked content for %s", story.Title)
		}
	}
}

func TestStore_DeleteStoryWithProgress(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.PutStory(ctx, &Story{ID: "gone", Title: "Gone", Content: "x"}); err != nil {
		t.Fatalf("PutStory() failed: %v", err)
	}
	if err := s.SaveProgress(ctx, Progress{StoryID: "gone", Page: 3, PageCount: 9}); err != nil {
		t.Fatalf("SaveProgress() failed: %v", err)
	}

	if err := s.DeleteStory(ctx, "gone"); err != nil {
		t.Fatalf("DeleteStory() failed: %v", err)
	}
	if _, err := s.GetStory(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("story survived deletion: %v", err)
	}
	p, err := s.LoadProgress(ctx, "gone")
	if err != nil {
		t.Fatalf("LoadProgress() failed: %v", err)
	}
	if p != nil {
		t.Errorf("progress survived story deletion: %+v", p)
	}

	if err := s.DeleteStory(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteStory(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_MarkRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.PutStory(ctx, &Story{ID: "done", Title: "Done", Content: "x"}); err != nil {
		t.Fatalf("PutStory() failed: %v", err)
	}
	when := time.Now().Truncate(time.Second)
	if err := s.MarkRead(ctx, "done", true, when); err != nil {
		t.Fatalf("MarkRead() failed: %v", err)
	}
	out, err := s.GetStory(ctx, "done")
	if err != nil {
		t.Fatalf("GetStory() failed: %v", err)
	}
	if !out.IsRead() || !out.ReadAt.Equal(when) {
		t.Errorf("ReadAt = %v, want %v", out.ReadAt, when)
	}

	if err := s.MarkRead(ctx, "done", false, when); err != nil {
		t.Fatalf("MarkRead(unread) failed: %v", err)
	}
	out, err = s.GetStory(ctx, "done")
	if err != nil {
		t.Fatalf("GetStory() failed: %v", err)
	}
	if out.IsRead() {
		t.Errorf("read flag survived clearing: %v", out.ReadAt)
	}

	if err := s.MarkRead(ctx, "missing", true, when); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkRead(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_ProgressLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if p, err := s.LoadProgress(ctx, "fresh"); err != nil || p != nil {
		t.Fatalf("LoadProgress(fresh) = %+v, %v; want nil, nil", p, err)
	}

	for page := 0; page < 5; page++ {
		if err := s.SaveProgress(ctx, Progress{StoryID: "fresh", Page: page, PageCount: 12, ScrollPosition: 0.25}); err != nil {
			t.Fatalf("SaveProgress(page=%d) failed: %v", page, err)
		}
	}
	p, err := s.LoadProgress(ctx, "fresh")
	if err != nil {
		t.Fatalf("LoadProgress() failed: %v", err)
	}
	if p.Page != 4 || p.PageCount != 12 {
		t.Errorf("progress = %+v, want last written page 4 of 12", p)
	}
	if p.ScrollPosition != 0.25 {
		t.Errorf("scroll position not preserved verbatim: %v", p.ScrollPosition)
	}
}

func TestStore_SettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	defaults := &config.TypographyConfig{
		FontFamily: config.FontFamilyDefault,
		FontSize:   18,
		LineHeight: 1.6,
		Margin:     config.MarginSizeNormal,
		Theme:      config.ThemeLight,
	}

	if tc, err := s.LoadSettings(ctx, defaults); err != nil || tc != nil {
		t.Fatalf("LoadSettings(empty) = %+v, %v; want nil, nil", tc, err)
	}

	saved := &config.TypographyConfig{
		FontFamily: config.FontFamilyMono,
		FontSize:   22,
		LineHeight: 2.0,
		Margin:     config.MarginSizeWide,
		Theme:      config.ThemeSepia,
	}
	if err := s.SaveSettings(ctx, saved); err != nil {
		t.Fatalf("SaveSettings() failed: %v", err)
	}
	out, err := s.LoadSettings(ctx, defaults)
	if err != nil {
		t.Fatalf("LoadSettings() failed: %v", err)
	}
	if *out != *saved {
		t.Errorf("settings round trip mismatch: %+v, want %+v", out, saved)
	}
}
