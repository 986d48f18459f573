package viewer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
	"golang.org/x/term"

	"leaf/config"
	"leaf/css"
	"leaf/layout"
	"leaf/reader"
)

// chrome rows reserved above and below the page: header and status line.
const chromeRows = 2

// Viewer runs one story session in the terminal until the user quits.
type Viewer struct {
	session  *reader.Session
	rules    *css.Rules
	settings config.TypographyConfig
	persist  func(*config.TypographyConfig) error
	log      *zap.Logger

	input       *os.File
	outputFile  *os.File
	output      io.Writer
	reader      *bufio.Reader
	writer      *bufio.Writer
	restoreTerm *term.State
	width       int
	height      int
	notice      string
}

// New wires a session to the terminal. persist, when not nil, is called with
// the typography after the settings modal closes.
func New(session *reader.Session, rules *css.Rules, settings config.TypographyConfig, persist func(*config.TypographyConfig) error, log *zap.Logger) *Viewer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Viewer{
		session:  session,
		rules:    rules,
		settings: settings,
		persist:  persist,
		log:      log,
	}
}

// Run drives the read/render loop until quit or terminal error. Keys arrive
// through a goroutine so the loop also wakes up on window size changes.
func (v *Viewer) Run(ctx context.Context) error {
	if err := v.initTerminal(); err != nil {
		return err
	}
	defer v.cleanupTerminal()

	keys := make(chan keyEvent)
	readErr := make(chan error, 1)
	go func() {
		// cleanupTerminal closes the tty, which unblocks the final read
		for {
			ev, err := v.readKeyEvent()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case keys <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	resize, stopResize := notifyResize()
	defer stopResize()

	for {
		v.updateSize()
		v.session.SetViewport(layout.Viewport{
			Width:  float64(v.width),
			Height: float64(v.height - chromeRows),
		})
		if err := v.render(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case <-resize:
			// loop around to re-measure and redraw
		case ev := <-keys:
			if done := v.handleKey(ctx, ev); done {
				return nil
			}
		}
	}
}

func (v *Viewer) initTerminal() error {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		if runtime.GOOS != "windows" {
			return err
		}
		v.input = os.Stdin
		v.output = os.Stdout
		v.outputFile = os.Stdout
	} else {
		v.input = tty
		v.output = tty
		v.outputFile = tty
	}
	if v.input == nil {
		return errors.New("no tty available")
	}

	v.reader = bufio.NewReader(v.input)
	v.writer = bufio.NewWriter(v.output)

	rawState, err := term.MakeRaw(int(v.input.Fd()))
	if err != nil {
		return err
	}
	v.restoreTerm = rawState
	return nil
}

func (v *Viewer) cleanupTerminal() {
	if v.input != nil && v.restoreTerm != nil {
		_ = term.Restore(int(v.input.Fd()), v.restoreTerm)
	}
	v.writeString("\x1b[?25h")
	v.writeString("\x1b[2J\x1b[H")
	if v.writer != nil {
		_ = v.writer.Flush()
	}
	if v.input != nil && v.input.Name() == "/dev/tty" {
		_ = v.input.Close()
	}
}

func (v *Viewer) writeString(s string) {
	if v.writer != nil {
		_, _ = v.writer.WriteString(s)
	}
}

func (v *Viewer) printf(format string, args ...any) {
	if v.writer != nil {
		_, _ = fmt.Fprintf(v.writer, format, args...)
	}
}

func (v *Viewer) updateSize() {
	for _, f := range []*os.File{v.input, v.outputFile} {
		if f == nil {
			continue
		}
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 && height > 0 {
			v.width = width
			v.height = height
			return
		}
	}
	if v.width <= 0 {
		v.width = 80
	}
	if v.height <= 0 {
		v.height = 24
	}
}

func (v *Viewer) render() error {
	v.writeString("\x1b[?25l")
	v.writeString("\x1b[2J\x1b[H")

	st := v.session.Story()
	header := st.Title
	if st.Author != "" {
		header += " — " + st.Author
	}
	v.drawRow(1, truncate(header, v.width), true)

	switch {
	case v.session.SettingsOpen():
		v.drawSettings()
	case v.session.State() != reader.StateReady:
		v.drawRow(v.height/2, center("preparing pages…", v.width), false)
	default:
		v.drawPage()
	}

	v.drawStatus()
	return v.writer.Flush()
}

func (v *Viewer) drawPage() {
	typo := v.session.Typography()
	contentWidth := int(typo.UsableWidth(float64(v.width)))
	leftPad := (v.width - contentWidth) / 2

	row := 2
	for _, b := range v.session.PageBlocks() {
		for _, line := range renderBlock(b, contentWidth, v.rules, typo.LineHeight) {
			if row > v.height-1 {
				return
			}
			v.drawRow(row, pad(leftPad)+line, false)
			row++
		}
	}
}

func (v *Viewer) drawSettings() {
	typo := v.settings
	lines := []string{
		"Reader settings",
		"",
		fmt.Sprintf("  font family  [f]  %s", typo.FontFamily),
		fmt.Sprintf("  font size    [-/+]  %d", typo.FontSize),
		fmt.Sprintf("  line height  [l]  %.1f", typo.LineHeight),
		fmt.Sprintf("  margins      [m]  %s", typo.Margin),
		fmt.Sprintf("  theme        [t]  %s", typo.Theme),
		"",
		"  s or esc closes",
	}
	row := v.height/2 - len(lines)/2
	if row < 2 {
		row = 2
	}
	for i, line := range lines {
		v.drawRow(row+i, center(line, v.width), i == 0)
	}
}

func (v *Viewer) drawRow(row int, text string, bold bool) {
	if row < 1 || row > v.height {
		return
	}
	v.printf("\x1b[%d;1H", row)
	v.writeString("\x1b[2K")
	if bold {
		v.writeString("\x1b[1m")
	}
	v.writeString(truncate(text, v.width))
	if bold {
		v.writeString("\x1b[22m")
	}
}

func (v *Viewer) drawStatus() {
	marker := " "
	switch v.session.Transition() {
	case reader.DirForward:
		marker = "›"
	case reader.DirBackward:
		marker = "‹"
	}

	var status string
	if count := v.session.PageCount(); count > 0 {
		page := v.session.Page() + 1
		status = fmt.Sprintf("%s %d/%d (%d%%)  ←→ turn  s settings  r mark read  q quit",
			marker, page, count, page*100/count)
	} else {
		status = "q quit"
	}
	if v.notice != "" {
		status += "  " + v.notice
		v.notice = ""
	}

	v.printf("\x1b[%d;1H", v.height)
	v.writeString("\x1b[2K")
	v.printf("\x1b[7m %s \x1b[0m", truncate(status, v.width-2))
}

func (v *Viewer) handleKey(ctx context.Context, ev keyEvent) bool {
	if v.session.SettingsOpen() {
		v.handleSettingsKey(ev)
		return false
	}

	switch ev.kind {
	case keyQuit, keyEscape, keyCtrlC:
		return true
	case keyNext:
		v.session.NextPage()
	case keyPrev:
		v.session.PrevPage()
	case keySettings:
		v.session.OpenSettings()
	case keyMarkRead:
		read, err := v.session.ToggleRead(ctx)
		switch {
		case errors.Is(err, reader.ErrNotAtEnd):
			v.notice = "finish the story first"
		case err != nil:
			v.log.Warn("Unable to change read flag", zap.Error(err))
			v.notice = "unable to change read flag"
		case read:
			v.notice = "marked read"
		default:
			v.notice = "marked unread"
		}
	}
	return false
}

func (v *Viewer) handleSettingsKey(ev keyEvent) {
	switch ev.kind {
	case keyQuit, keyEscape, keySettings:
		v.session.CloseSettings()
		if v.persist != nil {
			if err := v.persist(&v.settings); err != nil {
				v.log.Warn("Unable to persist reader settings", zap.Error(err))
			}
		}
		return
	case keySizeUp:
		v.settings.FontSize++
	case keySizeDown:
		v.settings.FontSize--
	case keyFamily:
		v.settings.FontFamily = nextEnum(v.settings.FontFamily, config.FontFamilyNames(), config.ParseFontFamily)
	case keyMargin:
		v.settings.Margin = nextEnum(v.settings.Margin, config.MarginSizeNames(), config.ParseMarginSize)
	case keyLineHeight:
		v.settings.LineHeight += 0.2
		if v.settings.LineHeight > layout.MaxLineHeight+0.01 {
			v.settings.LineHeight = layout.MinLineHeight
		}
	case keyTheme:
		v.settings.Theme = nextEnum(v.settings.Theme, config.ThemeNames(), config.ParseTheme)
	default:
		return
	}

	typo := layout.FromConfig(&v.settings)
	v.settings.FontSize = typo.Size
	v.settings.LineHeight = typo.LineHeight
	v.session.SetTypography(typo)
}

// nextEnum cycles a text-marshaled enum through its declared values.
func nextEnum[T fmt.Stringer](cur T, names []string, parse func(string) (T, error)) T {
	for i, name := range names {
		if name == cur.String() {
			next, err := parse(names[(i+1)%len(names)])
			if err == nil {
				return next
			}
		}
	}
	return cur
}

func center(text string, width int) string {
	free := width - runewidth.StringWidth(text)
	if free <= 1 {
		return text
	}
	return pad(free/2) + text
}
