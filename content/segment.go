package content

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"leaf/content/text"
)

// DefaultChunkSize is the target length of a fallback chunk when story
// content carries no recognizable block structure.
const DefaultChunkSize = 500

// Segmenter splits story markup into blocks. Segmentation runs once per
// story open - typography and viewport changes never re-run it.
type Segmenter struct {
	split     *text.Splitter
	chunkSize int
	log       *zap.Logger
}

func NewSegmenter(split *text.Splitter, chunkSize int, log *zap.Logger) *Segmenter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Segmenter{split: split, chunkSize: chunkSize, log: log}
}

// Segment walks the markup tree's immediate children collecting atomic
// blocks, recursing through non-semantic wrapper containers introduced by
// upstream extraction. Text sitting directly between block elements, and
// content with no block structure at all, is chunked into
// paragraph-equivalent blocks by sentence. The result is never empty for
// input with non-whitespace text.
func (s *Segmenter) Segment(markup string) []Block {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		s.log.Warn("Unable to parse story markup, chunking as plain text", zap.Error(err))
		return s.chunk(markup)
	}

	body := findBody(doc)
	if body == nil {
		return s.chunk(markup)
	}

	var blocks []Block
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				// bare narration between block elements is content too
				for _, b := range s.chunk(c.Data) {
					b.Index = len(blocks)
					blocks = append(blocks, b)
				}
				continue
			}
			if c.Type != html.ElementNode {
				continue
			}
			if skippable(c.Data) {
				continue
			}
			if wrapper(c.Data) && hasElementChild(c) {
				// flatten extraction artifacts, keep collecting from children
				collect(c)
				continue
			}
			b := blockFromNode(c, len(blocks))
			if len(strings.TrimSpace(b.Text)) == 0 && b.Kind != KindRule && b.Kind != KindFigure {
				continue
			}
			blocks = append(blocks, b)
		}
	}
	collect(body)

	if len(blocks) > 0 {
		s.log.Debug("Segmented story content", zap.Int("blocks", len(blocks)))
		return blocks
	}
	return s.chunk(textContent(body))
}

// chunk is the fallback for degenerate or text-only content: split into
// sentences, then greedily accumulate sentences into chunks not exceeding
// the target size. A single sentence is never cut.
func (s *Segmenter) chunk(raw string) []Block {
	flat := strings.Join(strings.Fields(raw), " ")
	if len(flat) == 0 {
		return nil
	}

	var sents []string
	if s.split != nil {
		sents = s.split.Split(flat)
	} else {
		sents = splitOnPunctuation(flat)
	}

	var (
		blocks []Block
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		txt := strings.TrimSpace(cur.String())
		if len(txt) > 0 {
			blocks = append(blocks, Block{
				Index:    len(blocks),
				Kind:     KindParagraph,
				Tag:      "p",
				Fragment: "<p>" + html.EscapeString(txt) + "</p>",
				Text:     txt,
			})
		}
		cur.Reset()
		curLen = 0
	}
	for _, sent := range sents {
		n := utf8.RuneCountInString(sent)
		if curLen > 0 && curLen+n > s.chunkSize {
			flush()
		}
		cur.WriteString(sent)
		curLen += n
	}
	flush()

	s.log.Debug("Chunked unstructured story content", zap.Int("sentences", len(sents)), zap.Int("blocks", len(blocks)))
	return blocks
}

// splitOnPunctuation is used when no tokenizer model is available: cut after
// sentence-ending punctuation followed by whitespace, keeping the whitespace
// with the sentence it ends.
func splitOnPunctuation(in string) []string {
	var (
		sents []string
		rs    = []rune(in)
		start = 0
	)
	for i := 0; i < len(rs)-1; i++ {
		if !sentenceEnd(rs[i]) || !unicode.IsSpace(rs[i+1]) {
			continue
		}
		j := i + 1
		for j < len(rs) && unicode.IsSpace(rs[j]) {
			j++
		}
		sents = append(sents, string(rs[start:j]))
		start = j
		i = j - 1
	}
	if start < len(rs) {
		sents = append(sents, string(rs[start:]))
	}
	return sents
}

func sentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

func wrapper(tag string) bool {
	switch tag {
	case "div", "section", "article", "main", "span", "center":
		return true
	}
	return false
}

func skippable(tag string) bool {
	switch tag {
	case "script", "style", "head", "meta", "link", "title", "template", "noscript":
		return true
	}
	return false
}

func hasElementChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return body
}

func blockFromNode(n *html.Node, index int) Block {
	var sb strings.Builder
	// Render cannot fail on a strings.Builder
	_ = html.Render(&sb, n)
	return Block{
		Index:    index,
		Kind:     kindFor(n.Data),
		Tag:      n.Data,
		Level:    headingLevel(n.Data),
		Fragment: sb.String(),
		Text:     textContent(n),
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
