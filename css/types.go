// Package css provides the block spacing rules shared by the measurement
// surface and the visible rendering, so that measured and displayed layout
// can never drift apart. Rules come from a small stylesheet; lengths are in
// em so they scale with the reader's font size.
package css

// BlockStyle describes vertical spacing and type scale of one block kind.
// All lengths are em fractions of the base font size.
type BlockStyle struct {
	FontScale    float64 // multiplier over the base font size
	MarginTop    float64
	MarginBottom float64
	Indent       float64 // first line indent
	InsetLeft    float64 // horizontal inset (blockquote, lists)
	InsetRight   float64
	FixedHeight  float64 // content-independent height (rules); 0 means content-driven
}

// VerticalMargins returns the total vertical margin in em.
func (s BlockStyle) VerticalMargins() float64 {
	return s.MarginTop + s.MarginBottom
}

// Rules maps element names to their block styles.
type Rules struct {
	styles map[string]BlockStyle
}

var defaultStyle = BlockStyle{FontScale: 1}

// Style returns the style for the given element name. Unknown elements get
// plain paragraph-like treatment without indent.
func (r *Rules) Style(tag string) BlockStyle {
	if r != nil {
		if s, ok := r.styles[tag]; ok {
			return s
		}
	}
	return defaultStyle
}

// Known reports whether the stylesheet mentions the element explicitly.
func (r *Rules) Known(tag string) bool {
	if r == nil {
		return false
	}
	_, ok := r.styles[tag]
	return ok
}
