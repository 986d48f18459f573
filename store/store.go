// Package store persists the story library, per-story reading progress and
// the reader's typography settings in a single SQLite database.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"leaf/config"
)

// ErrNotFound is returned when the requested story does not exist.
var ErrNotFound = errors.New("story not found")

const schema = `
CREATE TABLE IF NOT EXISTS stories (
	id       TEXT PRIMARY KEY,
	title    TEXT NOT NULL,
	author   TEXT NOT NULL DEFAULT '',
	lang     TEXT NOT NULL DEFAULT '',
	content  TEXT NOT NULL,
	added_at INTEGER NOT NULL,
	read_at  INTEGER
);

CREATE TABLE IF NOT EXISTS progress (
	story_id        TEXT PRIMARY KEY REFERENCES stories(id),
	page            INTEGER NOT NULL,
	page_count      INTEGER NOT NULL,
	scroll_position REAL NOT NULL DEFAULT 0,
	updated_at      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	font_family TEXT NOT NULL,
	font_size   INTEGER NOT NULL,
	line_height REAL NOT NULL,
	margin      TEXT NOT NULL,
	theme       TEXT NOT NULL
);
`

// Story is one library entry. Content is the imported markup, immutable
// after import.
type Story struct {
	ID      string
	Title   string
	Author  string
	Lang    string
	Content string
	AddedAt time.Time
	ReadAt  time.Time // zero until the story is marked read
}

func (s *Story) IsRead() bool {
	return !s.ReadAt.IsZero()
}

// Progress is the persisted reading position of one story. ScrollPosition
// is kept verbatim for the display layer, pagination itself never reads it.
type Progress struct {
	StoryID        string
	Page           int
	PageCount      int
	ScrollPosition float64
	UpdatedAt      time.Time
}

// Store wraps a SQLite connection pool. Safe for concurrent use.
type Store struct {
	pool *sqlitex.Pool
	log  *zap.Logger
}

// Open opens or creates the library database and applies the schema.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		Flags:    sqlite.OpenReadWrite | sqlite.OpenCreate | sqlite.OpenWAL,
		PoolSize: 4,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open library database %s: %w", path, err)
	}

	s := &Store{pool: pool, log: log}
	conn, err := pool.Take(ctx)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}
	defer pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("unable to prepare library schema: %w", err)
	}
	log.Debug("Library database ready", zap.String("path", path))
	return s, nil
}

func (s *Store) Close() error {
	return s.pool.Close()
}

// PutStory inserts or replaces a story.
func (s *Store) PutStory(ctx context.Context, story *Story) error {
	if story.AddedAt.IsZero() {
		story.AddedAt = time.Now()
	}
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	var readAt any
	if story.IsRead() {
		readAt = story.ReadAt.Unix()
	}
	return sqlitex.Execute(conn,
		`INSERT OR REPLACE INTO stories (id, title, author, lang, content, added_at, read_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{story.ID, story.Title, story.Author, story.Lang, story.Content, story.AddedAt.Unix(), readAt},
		})
}

// GetStory returns a story with its content, or ErrNotFound.
func (s *Store) GetStory(ctx context.Context, id string) (*Story, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var story *Story
	err = sqlitex.Execute(conn,
		`SELECT id, title, author, lang, content, added_at, read_at FROM stories WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				story = storyFromRow(stmt, true)
				return nil
			},
		})
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return story, nil
}

// ListStories returns all stories without content, in natural title order so
// "Chapter 2" sorts before "Chapter 10".
func (s *Store) ListStories(ctx context.Context) ([]Story, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var stories []Story
	err = sqlitex.Execute(conn,
		`SELECT id, title, author, lang, '', added_at, read_at FROM stories`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				stories = append(stories, *storyFromRow(stmt, false))
				return nil
			},
		})
	if err != nil {
		return nil, err
	}
	sort.Slice(stories, func(i, j int) bool {
		if stories[i].Title != stories[j].Title {
			return natural.Less(stories[i].Title, stories[j].Title)
		}
		return stories[i].ID < stories[j].ID
	})
	return stories, nil
}

// DeleteStory removes a story and its progress in one transaction.
func (s *Store) DeleteStory(ctx context.Context, id string) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	defer sqlitex.Transaction(conn)(&err)

	if err = sqlitex.Execute(conn, `DELETE FROM progress WHERE story_id = ?`,
		&sqlitex.ExecOptions{Args: []any{id}}); err != nil {
		return err
	}
	if err = sqlitex.Execute(conn, `DELETE FROM stories WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{id}}); err != nil {
		return err
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// MarkRead sets or clears the read flag of a story. Marking an already-read
// story read refreshes the timestamp.
func (s *Store) MarkRead(ctx context.Context, id string, read bool, when time.Time) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	var readAt any
	if read {
		readAt = when.Unix()
	}
	if err := sqlitex.Execute(conn, `UPDATE stories SET read_at = ? WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{readAt, id}}); err != nil {
		return err
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// SaveProgress upserts the reading position of a story.
func (s *Store) SaveProgress(ctx context.Context, p Progress) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	return sqlitex.Execute(conn,
		`INSERT OR REPLACE INTO progress (story_id, page, page_count, scroll_position, updated_at) VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{p.StoryID, p.Page, p.PageCount, p.ScrollPosition, p.UpdatedAt.Unix()},
		})
}

// LoadProgress returns the saved position of a story, or nil when the story
// has never been opened.
func (s *Store) LoadProgress(ctx context.Context, storyID string) (*Progress, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var p *Progress
	err = sqlitex.Execute(conn,
		`SELECT page, page_count, scroll_position, updated_at FROM progress WHERE story_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{storyID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				p = &Progress{
					StoryID:        storyID,
					Page:           int(stmt.ColumnInt64(0)),
					PageCount:      int(stmt.ColumnInt64(1)),
					ScrollPosition: stmt.ColumnFloat(2),
					UpdatedAt:      time.Unix(stmt.ColumnInt64(3), 0),
				}
				return nil
			},
		})
	return p, err
}

// SaveSettings persists the reader typography as the single settings row.
func (s *Store) SaveSettings(ctx context.Context, tc *config.TypographyConfig) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	return sqlitex.Execute(conn,
		`INSERT OR REPLACE INTO settings (id, font_family, font_size, line_height, margin, theme) VALUES (1, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{tc.FontFamily.String(), tc.FontSize, tc.LineHeight, tc.Margin.String(), tc.Theme.String()},
		})
}

// LoadSettings returns the persisted typography, or nil when settings were
// never saved. Values that no longer parse fall back to configured defaults
// field by field.
func (s *Store) LoadSettings(ctx context.Context, defaults *config.TypographyConfig) (*config.TypographyConfig, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var tc *config.TypographyConfig
	err = sqlitex.Execute(conn,
		`SELECT font_family, font_size, line_height, margin, theme FROM settings WHERE id = 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				out := *defaults
				if v, err := config.ParseFontFamily(stmt.ColumnText(0)); err == nil {
					out.FontFamily = v
				} else {
					s.log.Warn("Ignoring unknown persisted font family", zap.String("value", stmt.ColumnText(0)))
				}
				out.FontSize = int(stmt.ColumnInt64(1))
				out.LineHeight = stmt.ColumnFloat(2)
				if v, err := config.ParseMarginSize(stmt.ColumnText(3)); err == nil {
					out.Margin = v
				} else {
					s.log.Warn("Ignoring unknown persisted margin", zap.String("value", stmt.ColumnText(3)))
				}
				if v, err := config.ParseTheme(stmt.ColumnText(4)); err == nil {
					out.Theme = v
				} else {
					s.log.Warn("Ignoring unknown persisted theme", zap.String("value", stmt.ColumnText(4)))
				}
				tc = &out
				return nil
			},
		})
	return tc, err
}

func storyFromRow(stmt *sqlite.Stmt, withContent bool) *Story {
	story := &Story{
		ID:      stmt.ColumnText(0),
		Title:   stmt.ColumnText(1),
		Author:  stmt.ColumnText(2),
		Lang:    stmt.ColumnText(3),
		AddedAt: time.Unix(stmt.ColumnInt64(5), 0),
	}
	if withContent {
		story.Content = stmt.ColumnText(4)
	}
	if stmt.ColumnType(6) != sqlite.TypeNull {
		story.ReadAt = time.Unix(stmt.ColumnInt64(6), 0)
	}
	return story
}
