// Package content turns marked-up story text into an ordered sequence of
// self-contained blocks - the unit the pagination engine works with.
package content

// BlockKind classifies a block for spacing and rendering purposes.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
	KindQuote
	KindRule
	KindList
	KindPre
	KindFigure
	KindOther
)

func (k BlockKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindQuote:
		return "quote"
	case KindRule:
		return "rule"
	case KindList:
		return "list"
	case KindPre:
		return "pre"
	case KindFigure:
		return "figure"
	default:
		return "other"
	}
}

// Block is one semantic unit of story content. Blocks are immutable once
// segmented; the sequence is computed once per story open and never patched.
type Block struct {
	Index    int
	Kind     BlockKind
	Tag      string // source element name, drives spacing rules
	Level    int    // heading level 1-6, 0 otherwise
	Fragment string // complete markup of the block, tag and all
	Text     string // flattened text content
}

func kindFor(tag string) BlockKind {
	switch tag {
	case "p":
		return KindParagraph
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return KindHeading
	case "blockquote", "q", "cite":
		return KindQuote
	case "hr":
		return KindRule
	case "ul", "ol", "dl":
		return KindList
	case "pre", "code":
		return KindPre
	case "figure", "img":
		return KindFigure
	default:
		return KindOther
	}
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}
