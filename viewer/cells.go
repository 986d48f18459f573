package viewer

import (
	"leaf/content"
	"leaf/css"
	"leaf/layout"
)

// MinContentRows is the smallest page height worth paginating against, in
// terminal rows. Below it the session keeps waiting for a real size.
const MinContentRows = 4

// cellHost measures blocks in terminal rows by running the renderer and
// counting what comes out. Measured height and displayed height cannot
// disagree because they are the same computation.
type cellHost struct {
	rules *css.Rules
}

// NewCellHost returns a measurement host for terminal display.
func NewCellHost(rules *css.Rules) layout.Host {
	return &cellHost{rules: rules}
}

func (h *cellHost) OpenSurface(width float64, typo layout.Typography) (layout.Surface, error) {
	w := int(width)
	if w < 1 {
		w = 1
	}
	return &cellSurface{rules: h.rules, width: w, lineHeight: typo.LineHeight}, nil
}

type cellSurface struct {
	rules      *css.Rules
	width      int
	lineHeight float64
}

func (s *cellSurface) BlockHeight(b content.Block) (float64, error) {
	return float64(len(renderBlock(b, s.width, s.rules, s.lineHeight))), nil
}

func (s *cellSurface) Close() error { return nil }
