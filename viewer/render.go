// Package viewer is the terminal front end: it renders the current page and
// feeds keys and resizes into the reading session. Block heights are
// measured by the exact same code that draws them, so a packed page always
// fits the screen.
package viewer

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"leaf/content"
	"leaf/css"
)

// emCells approximates one em in terminal cells. Horizontal style lengths
// are em fractions and scale with this.
const emCells = 2

// renderBlock returns every row a block occupies on screen: top margin
// blanks, wrapped text and bottom margin blanks. The cell measurement
// surface counts these same rows, which is what keeps pagination honest.
func renderBlock(b content.Block, width int, rules *css.Rules, lineHeight float64) []string {
	style := rules.Style(b.Tag)

	insetLeft := cells(style.InsetLeft)
	insetRight := cells(style.InsetRight)
	contentWidth := width - insetLeft - insetRight
	if contentWidth < 1 {
		contentWidth = 1
	}

	var rows []string
	for i := 0; i < rowsFor(style.MarginTop); i++ {
		rows = append(rows, "")
	}

	switch {
	case style.FixedHeight > 0 && b.Kind == content.KindRule:
		rule := strings.Repeat("─", contentWidth/2)
		rows = append(rows, pad(insetLeft+contentWidth/4)+rule)
		for i := 1; i < rowsFor(style.FixedHeight); i++ {
			rows = append(rows, "")
		}
	case style.FixedHeight > 0:
		label := truncate("["+b.Kind.String()+"]", contentWidth)
		rows = append(rows, pad(insetLeft)+label)
		for i := 1; i < rowsFor(style.FixedHeight); i++ {
			rows = append(rows, "")
		}
	default:
		rows = append(rows, textRows(b, style, insetLeft, contentWidth, lineHeight)...)
	}

	for i := 0; i < rowsFor(style.MarginBottom); i++ {
		rows = append(rows, "")
	}
	return rows
}

func textRows(b content.Block, style css.BlockStyle, insetLeft, contentWidth int, lineHeight float64) []string {
	prefix := ""
	if b.Kind == content.KindQuote {
		prefix = "> "
	}
	indent := cells(style.Indent)
	avail := contentWidth - runewidth.StringWidth(prefix)
	if avail < 1 {
		avail = 1
	}

	lines := wrapCells(b.Text, avail, indent)
	if len(lines) == 0 {
		lines = []string{""}
	}

	rows := make([]string, 0, len(lines)*2)
	for i, line := range lines {
		row := pad(insetLeft) + prefix
		if i == 0 && indent > 0 && b.Kind != content.KindHeading {
			row += pad(indent)
		}
		if b.Kind == content.KindHeading {
			// headings are centered instead of indented
			free := avail - runewidth.StringWidth(line)
			if free > 1 {
				row += pad(free / 2)
			}
		}
		rows = append(rows, row+line)
		// generous line spacing gets a real blank row on terminals
		if lineHeight >= 1.8 && i < len(lines)-1 {
			rows = append(rows, "")
		}
	}
	return rows
}

// wrapCells is the terminal counterpart of glyph-metric wrapping: greedy by
// word, widths in display cells, the first line shortened by the indent.
func wrapCells(text string, maxWidth, indent int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var (
		lines   []string
		current string
		lineMax = maxWidth - indent
	)
	if lineMax < 1 {
		lineMax = 1
	}
	for _, word := range words {
		candidate := current
		if candidate != "" {
			candidate += " "
		}
		candidate += word

		if runewidth.StringWidth(candidate) <= lineMax {
			current = candidate
			continue
		}
		if current == "" {
			lines = append(lines, truncate(word, lineMax))
			lineMax = maxWidth
			continue
		}
		lines = append(lines, current)
		lineMax = maxWidth
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func cells(em float64) int {
	return int(em*emCells + 0.5)
}

func rowsFor(em float64) int {
	return int(em + 0.5)
}

func pad(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

func truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	var sb strings.Builder
	used := 0
	for _, ru := range text {
		w := runewidth.RuneWidth(ru)
		if w <= 0 {
			w = 1
		}
		if used+w > width-1 {
			break
		}
		sb.WriteRune(ru)
		used += w
	}
	sb.WriteString("…")
	return sb.String()
}
