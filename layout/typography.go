// Package layout measures story blocks under concrete typography and packs
// them into pages. Pagination is greedy and deterministic: the same blocks,
// typography and viewport always produce the same pages.
package layout

import (
	"leaf/config"
)

// Typography bounds. Values outside are clamped, never rejected, so stale
// persisted settings cannot break pagination.
const (
	MinFontSize   = 14
	MaxFontSize   = 28
	MinLineHeight = 1.4
	MaxLineHeight = 2.4
)

// Typography is the complete set of knobs that affect block measurement.
// Two equal Typography values measure every block identically.
type Typography struct {
	Family     config.FontFamily
	Size       int // base font size in layout units
	LineHeight float64
	Margin     config.MarginSize
}

// FromConfig builds typography from configured values.
func FromConfig(tc *config.TypographyConfig) Typography {
	return Typography{
		Family:     tc.FontFamily,
		Size:       tc.FontSize,
		LineHeight: tc.LineHeight,
		Margin:     tc.Margin,
	}.Normalize()
}

// Normalize clamps all values into supported bounds and returns the result.
func (t Typography) Normalize() Typography {
	if !t.Family.IsValid() {
		t.Family = config.FontFamilyDefault
	}
	if t.Size < MinFontSize {
		t.Size = MinFontSize
	}
	if t.Size > MaxFontSize {
		t.Size = MaxFontSize
	}
	if t.LineHeight < MinLineHeight {
		t.LineHeight = MinLineHeight
	}
	if t.LineHeight > MaxLineHeight {
		t.LineHeight = MaxLineHeight
	}
	if !t.Margin.IsValid() {
		t.Margin = config.MarginSizeNormal
	}
	return t
}

// UsableWidth returns the width available to block content for the given
// viewport width, after horizontal page margins.
func (t Typography) UsableWidth(viewportWidth float64) float64 {
	frac := 0.8
	switch t.Margin {
	case config.MarginSizeCompact:
		frac = 0.92
	case config.MarginSizeWide:
		frac = 0.65
	}
	return viewportWidth * frac
}

// Viewport is the page area in the same units the measurement surface uses.
type Viewport struct {
	Width  float64
	Height float64
}

// MinMeasurableHeight is the viewport height below which pagination is
// pointless: transient layout states report near-zero sizes and packing
// against them would produce one block per page.
const MinMeasurableHeight = 100

// Measurable reports whether the viewport is large enough to paginate against.
func (v Viewport) Measurable() bool {
	return v.Width > 0 && v.Height > MinMeasurableHeight
}
