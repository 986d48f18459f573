package layout

import (
	"leaf/content"
)

// Surface measures blocks under one fixed combination of width and
// typography. A surface is cheap to query once open; opening it may load
// fonts or other measurement state, so Pack opens exactly one per run.
type Surface interface {
	// BlockHeight returns the full vertical extent of the block, margins
	// included, in the surface's layout units.
	BlockHeight(b content.Block) (float64, error)
	Close() error
}

// Host opens measurement surfaces. Implementations must measure with the
// exact same rules the display uses, otherwise pages overflow or underfill.
type Host interface {
	OpenSurface(width float64, typo Typography) (Surface, error)
}
