package layout

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"leaf/config"
	"leaf/content"
	"leaf/css"
)

func newTestSurface(t *testing.T, width float64, typo Typography) Surface {
	t.Helper()
	log := zaptest.NewLogger(t)
	host, err := NewFontHost(css.Default(log), log)
	if err != nil {
		t.Fatalf("NewFontHost() failed: %v", err)
	}
	surface, err := host.OpenSurface(width, typo)
	if err != nil {
		t.Fatalf("OpenSurface() failed: %v", err)
	}
	t.Cleanup(func() { _ = surface.Close() })
	return surface
}

func para(text string) content.Block {
	return content.Block{Kind: content.KindParagraph, Tag: "p", Text: text}
}

func TestFontSurface_LongerTextIsTaller(t *testing.T) {
	s := newTestSurface(t, 400, testTypo())

	short, err := s.BlockHeight(para("One line only."))
	if err != nil {
		t.Fatalf("BlockHeight() failed: %v", err)
	}
	long, err := s.BlockHeight(para(strings.Repeat("many words make many lines ", 20)))
	if err != nil {
		t.Fatalf("BlockHeight() failed: %v", err)
	}
	if long <= short {
		t.Errorf("long block (%.1f) not taller than short block (%.1f)", long, short)
	}
}

func TestFontSurface_NarrowerSurfaceIsTaller(t *testing.T) {
	text := strings.Repeat("wrap me around please ", 10)

	wide := newTestSurface(t, 600, testTypo())
	narrow := newTestSurface(t, 200, testTypo())

	hw, err := wide.BlockHeight(para(text))
	if err != nil {
		t.Fatalf("BlockHeight() failed: %v", err)
	}
	hn, err := narrow.BlockHeight(para(text))
	if err != nil {
		t.Fatalf("BlockHeight() failed: %v", err)
	}
	if hn <= hw {
		t.Errorf("narrow surface (%.1f) not taller than wide one (%.1f)", hn, hw)
	}
}

func TestFontSurface_HeadingTallerThanParagraph(t *testing.T) {
	s := newTestSurface(t, 400, testTypo())

	p, err := s.BlockHeight(para("Same words here."))
	if err != nil {
		t.Fatalf("BlockHeight() failed: %v", err)
	}
	h, err := s.BlockHeight(content.Block{Kind: content.KindHeading, Tag: "h1", Level: 1, Text: "Same words here."})
	if err != nil {
		t.Fatalf("BlockHeight() failed: %v", err)
	}
	if h <= p {
		t.Errorf("heading (%.1f) not taller than paragraph (%.1f)", h, p)
	}
}

func TestFontSurface_RuleHasFixedHeight(t *testing.T) {
	s := newTestSurface(t, 400, testTypo())

	h, err := s.BlockHeight(content.Block{Kind: content.KindRule, Tag: "hr"})
	if err != nil {
		t.Fatalf("BlockHeight() failed: %v", err)
	}
	if h <= 0 {
		t.Errorf("rule height = %.1f, want positive", h)
	}
}

func TestFontSurface_Deterministic(t *testing.T) {
	s := newTestSurface(t, 333, testTypo())
	b := para(strings.Repeat("exactly the same text every time ", 7))

	first, err := s.BlockHeight(b)
	if err != nil {
		t.Fatalf("BlockHeight() failed: %v", err)
	}
	second, err := s.BlockHeight(b)
	if err != nil {
		t.Fatalf("BlockHeight() failed: %v", err)
	}
	if first != second {
		t.Errorf("repeated measurement differs: %.3f vs %.3f", first, second)
	}
}

func TestFontSurface_AllFamilies(t *testing.T) {
	for _, family := range config.FontFamilyNames() {
		fam, err := config.ParseFontFamily(family)
		if err != nil {
			t.Fatalf("ParseFontFamily(%s) failed: %v", family, err)
		}
		typo := Typography{Family: fam, Size: 18, LineHeight: 1.6}.Normalize()
		s := newTestSurface(t, 400, typo)
		if h, err := s.BlockHeight(para("Every family measures.")); err != nil || h <= 0 {
			t.Errorf("family %s: height %.1f, err %v", family, h, err)
		}
	}
}

func TestTypography_Normalize(t *testing.T) {
	got := Typography{Size: 99, LineHeight: 0.1}.Normalize()
	if got.Size != MaxFontSize {
		t.Errorf("size clamped to %d, want %d", got.Size, MaxFontSize)
	}
	if got.LineHeight != MinLineHeight {
		t.Errorf("line height clamped to %v, want %v", got.LineHeight, MinLineHeight)
	}
	if got.Family != config.FontFamilyDefault || got.Margin != config.MarginSizeNormal {
		t.Errorf("zero enums not defaulted: %+v", got)
	}
}

func TestTypography_UsableWidth(t *testing.T) {
	cases := []struct {
		margin config.MarginSize
		want   float64
	}{
		{config.MarginSizeCompact, 920},
		{config.MarginSizeNormal, 800},
		{config.MarginSizeWide, 650},
	}
	for _, tc := range cases {
		typo := Typography{Size: 18, LineHeight: 1.6, Margin: tc.margin}
		if got := typo.UsableWidth(1000); got != tc.want {
			t.Errorf("UsableWidth(%s) = %v, want %v", tc.margin, got, tc.want)
		}
	}
}

func TestViewport_Measurable(t *testing.T) {
	if (Viewport{Width: 400, Height: 50}).Measurable() {
		t.Error("tiny viewport reported measurable")
	}
	if (Viewport{Width: 0, Height: 500}).Measurable() {
		t.Error("zero width viewport reported measurable")
	}
	if !(Viewport{Width: 400, Height: 500}).Measurable() {
		t.Error("normal viewport reported unmeasurable")
	}
}
