package layout

import (
	"fmt"

	"go.uber.org/zap"

	"leaf/content"
)

// Page is a half-open run of block indexes [Start, End).
type Page struct {
	Start, End int
}

// Paging is the result of packing one block sequence against one viewport
// and typography. Pages cover every block exactly once, in order.
type Paging struct {
	Pages []Page
	Typo  Typography
	View  Viewport
}

// PageCount is never zero for a valid paging.
func (p *Paging) PageCount() int {
	return len(p.Pages)
}

// StartIndexes returns the first block index of every page. The slice is
// strictly increasing and always begins with 0.
func (p *Paging) StartIndexes() []int {
	starts := make([]int, len(p.Pages))
	for i, pg := range p.Pages {
		starts[i] = pg.Start
	}
	return starts
}

// Pack splits blocks into pages by greedy fill: blocks keep their order, a
// page closes when the next block would overflow it, and a block taller than
// the page stands alone and overflows visibly. Blocks are never split.
//
// Identical inputs always produce identical pagings, and every call yields
// at least one page so the reader always has something to show.
func Pack(host Host, blocks []content.Block, typo Typography, view Viewport, log *zap.Logger) (*Paging, error) {
	if log == nil {
		log = zap.NewNop()
	}
	typo = typo.Normalize()

	paging := &Paging{Typo: typo, View: view}
	if len(blocks) == 0 {
		paging.Pages = []Page{{Start: 0, End: 0}}
		return paging, nil
	}

	surface, err := host.OpenSurface(typo.UsableWidth(view.Width), typo)
	if err != nil {
		return nil, fmt.Errorf("unable to open measurement surface: %w", err)
	}
	defer surface.Close()

	var (
		usable  = view.Height
		start   = 0
		curH    float64
		curLen  int
		flush   = func(end int) {
			paging.Pages = append(paging.Pages, Page{Start: start, End: end})
			start = end
			curH = 0
			curLen = 0
		}
	)
	for i, b := range blocks {
		h, err := surface.BlockHeight(b)
		if err != nil {
			// a block we cannot measure still has to land on some page
			h = float64(typo.Size) * typo.LineHeight
			log.Warn("Unable to measure block, assuming single line",
				zap.Int("block", b.Index), zap.String("kind", b.Kind.String()), zap.Error(err))
		}
		if curLen > 0 && curH+h > usable {
			flush(i)
		}
		curH += h
		curLen++
	}
	if curLen > 0 {
		flush(len(blocks))
	}

	if len(paging.Pages) == 0 {
		paging.Pages = []Page{{Start: 0, End: len(blocks)}}
	}

	log.Debug("Packed blocks into pages",
		zap.Int("blocks", len(blocks)), zap.Int("pages", len(paging.Pages)),
		zap.Float64("width", view.Width), zap.Float64("height", view.Height))
	return paging, nil
}
