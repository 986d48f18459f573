package layout

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"leaf/config"
	"leaf/content"
	"leaf/css"
)

// FontHost measures blocks with real glyph metrics of bundled Go fonts.
// Layout units are points at 72 DPI, so one unit is one pixel on a nominal
// display, and height math stays comparable to viewport sizes.
type FontHost struct {
	rules *css.Rules
	fonts map[config.FontFamily]*sfnt.Font
	log   *zap.Logger
}

func NewFontHost(rules *css.Rules, log *zap.Logger) (*FontHost, error) {
	if log == nil {
		log = zap.NewNop()
	}
	h := &FontHost{
		rules: rules,
		fonts: make(map[config.FontFamily]*sfnt.Font, 3),
		log:   log,
	}
	for family, ttf := range map[config.FontFamily][]byte{
		config.FontFamilyDefault:   goregular.TTF,
		config.FontFamilyMono:      gomono.TTF,
		config.FontFamilySmallcaps: gosmallcaps.TTF,
	} {
		fnt, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("unable to parse bundled font %s: %w", family, err)
		}
		h.fonts[family] = fnt
	}
	return h, nil
}

// OpenSurface prepares a measurement surface for one width and typography.
// Faces are instantiated lazily per type scale and cached for the surface's
// lifetime.
func (h *FontHost) OpenSurface(width float64, typo Typography) (Surface, error) {
	typo = typo.Normalize()
	fnt, ok := h.fonts[typo.Family]
	if !ok {
		fnt = h.fonts[config.FontFamilyDefault]
	}
	return &fontSurface{
		host:  h,
		fnt:   fnt,
		width: width,
		typo:  typo,
		faces: make(map[float64]font.Face),
	}, nil
}

type fontSurface struct {
	host  *FontHost
	fnt   *sfnt.Font
	width float64
	typo  Typography
	faces map[float64]font.Face
}

func (s *fontSurface) BlockHeight(b content.Block) (float64, error) {
	style := s.host.rules.Style(b.Tag)
	em := float64(s.typo.Size)

	if style.FixedHeight > 0 {
		return style.FixedHeight*em + style.VerticalMargins()*em, nil
	}

	size := em * style.FontScale
	contentWidth := s.width - (style.InsetLeft+style.InsetRight)*em
	if contentWidth < size {
		contentWidth = size // pathological insets still fit one glyph per line
	}

	face, err := s.face(size)
	if err != nil {
		return 0, err
	}
	lines := wrapLines(face, b.Text, contentWidth, style.Indent*em)
	if lines < 1 {
		lines = 1
	}
	return float64(lines)*size*s.typo.LineHeight + style.VerticalMargins()*em, nil
}

func (s *fontSurface) face(size float64) (font.Face, error) {
	if f, ok := s.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(s.fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create %.1fpt face: %w", size, err)
	}
	s.faces[size] = f
	return f, nil
}

func (s *fontSurface) Close() (err error) {
	for _, f := range s.faces {
		err = multierr.Append(err, f.Close())
	}
	s.faces = nil
	return
}

// wrapLines counts greedy word-wrapped lines: words join a line while the
// joined run still fits, a word that does not fit opens the next line, and
// a word wider than the line stands alone. Returns the number of lines.
func wrapLines(face font.Face, text string, maxWidth, indent float64) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	var (
		lines   int
		current string
		lineMax = maxWidth - indent // first line is shortened by the indent
	)
	for _, word := range words {
		candidate := current
		if candidate != "" {
			candidate += " "
		}
		candidate += word

		if advance(face, candidate) <= lineMax {
			current = candidate
			continue
		}
		if current == "" {
			// oversized word occupies the whole line by itself
			lines++
			lineMax = maxWidth
			continue
		}
		lines++
		lineMax = maxWidth
		current = word
	}
	if current != "" {
		lines++
	}
	return lines
}

func advance(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}
