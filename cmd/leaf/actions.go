package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"leaf/config"
	"leaf/content"
	"leaf/content/text"
	"leaf/css"
	"leaf/layout"
	"leaf/reader"
	"leaf/state"
	"leaf/store"
	"leaf/story"
	"leaf/viewer"
)

func openLibrary(ctx context.Context, env *state.LocalEnv) (*store.Store, error) {
	path, err := env.DatabasePath()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, path, env.Log)
}

func runImport(ctx context.Context, cmd *cli.Command) (err error) {
	if cmd.Args().Len() == 0 {
		return errors.New("nothing to import, expecting at least one file")
	}
	env := state.EnvFromContext(ctx)

	lib, err := openLibrary(ctx, env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, lib.Close())
	}()

	for _, path := range cmd.Args().Slice() {
		st, er := story.Import(path, env.Log)
		if er != nil {
			err = multierr.Append(err, er)
			continue
		}
		if er := lib.PutStory(ctx, st); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to store '%s': %w", path, er))
			continue
		}
		fmt.Printf("%s\t%s\n", st.ID, st.Title)
	}
	return
}

func runList(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	lib, err := openLibrary(ctx, env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, lib.Close())
	}()

	stories, err := lib.ListStories(ctx)
	if err != nil {
		return err
	}
	if len(stories) == 0 {
		fmt.Println("library is empty")
		return nil
	}
	for _, st := range stories {
		mark := " "
		if st.IsRead() {
			mark = "✓"
		}
		author := st.Author
		if author == "" {
			author = "-"
		}
		fmt.Printf("%s %-40s  %-24s  %s\n", mark, st.ID, author, st.Title)
	}
	return nil
}

func runRead(ctx context.Context, cmd *cli.Command) (err error) {
	id := cmd.Args().Get(0)
	if id == "" {
		return errors.New("expecting story ID, see 'list'")
	}
	env := state.EnvFromContext(ctx)

	lib, err := openLibrary(ctx, env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, lib.Close())
	}()

	st, err := lib.GetStory(ctx, id)
	if err != nil {
		return err
	}

	settings, err := lib.LoadSettings(ctx, &env.Cfg.Reader.Typography)
	if err != nil {
		return err
	}
	if settings == nil {
		tc := env.Cfg.Reader.Typography
		settings = &tc
	}

	rules := css.Default(env.Log)
	session, err := reader.NewSession(ctx, reader.Params{
		Story:      st,
		Segmenter:  content.NewSegmenter(splitterFor(st.Lang, env.Log), env.Cfg.Reader.FallbackChunkSize, env.Log),
		Host:       viewer.NewCellHost(rules),
		Progress:   lib,
		Flags:      lib,
		Typography: layout.FromConfig(settings),
		// the terminal loop polls size and rerenders per key, no settling needed
		SettleDelay: -1,
		// the cell host measures in rows, not points
		MinViewportHeight: viewer.MinContentRows,
		Transition:        time.Duration(env.Cfg.Reader.TransitionMs) * time.Millisecond,
		Log:               env.Log,
	})
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, session.Close())
	}()

	v := viewer.New(session, rules, *settings, func(tc *config.TypographyConfig) error {
		return lib.SaveSettings(ctx, tc)
	}, env.Log)
	if er := v.Run(ctx); er != nil && !errors.Is(er, context.Canceled) {
		return er
	}
	return nil
}

func runMark(ctx context.Context, cmd *cli.Command) (err error) {
	id := cmd.Args().Get(0)
	if id == "" {
		return errors.New("expecting story ID, see 'list'")
	}
	env := state.EnvFromContext(ctx)

	lib, err := openLibrary(ctx, env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, lib.Close())
	}()

	read := !cmd.Bool("unread")
	if err := lib.MarkRead(ctx, id, read, time.Now()); err != nil {
		return err
	}
	env.Log.Info("Changed story read flag", zap.String("id", id), zap.Bool("read", read))
	return nil
}

func runDelete(ctx context.Context, cmd *cli.Command) (err error) {
	id := cmd.Args().Get(0)
	if id == "" {
		return errors.New("expecting story ID, see 'list'")
	}
	env := state.EnvFromContext(ctx)

	lib, err := openLibrary(ctx, env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, lib.Close())
	}()

	if err := lib.DeleteStory(ctx, id); err != nil {
		return err
	}
	env.Log.Info("Deleted story", zap.String("id", id))
	return nil
}

func runExport(ctx context.Context, cmd *cli.Command) (err error) {
	id := cmd.Args().Get(0)
	if id == "" {
		return errors.New("expecting story ID, see 'list'")
	}
	dir := cmd.Args().Get(1)
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return err
		}
	}
	env := state.EnvFromContext(ctx)

	lib, err := openLibrary(ctx, env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, lib.Close())
	}()

	st, err := lib.GetStory(ctx, id)
	if err != nil {
		return err
	}
	blocks := content.NewSegmenter(splitterFor(st.Lang, env.Log), env.Cfg.Reader.FallbackChunkSize, env.Log).Segment(st.Content)

	path, err := story.Export(st, blocks, dir, env.Cfg.Export.NameTemplate, env.Log)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func splitterFor(lang string, log *zap.Logger) *text.Splitter {
	tag := language.Und
	if lang != "" {
		if parsed, err := language.Parse(lang); err == nil {
			tag = parsed
		} else {
			log.Debug("Unable to parse story language", zap.String("lang", lang), zap.Error(err))
		}
	}
	return text.NewSplitter(tag, log)
}
