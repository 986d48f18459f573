// Package story brings outside files into the library and writes library
// entries back out. Import normalizes every supported source into the markup
// the segmenter consumes.
package story

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"leaf/store"
)

// Import reads a story file and returns a library entry ready to persist.
// Supported sources are EPUB, HTML and plain text; anything else is treated
// as text.
func Import(path string, log *zap.Logger) (*store.Story, error) {
	if log == nil {
		log = zap.NewNop()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read story file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("story file %s is empty", path)
	}

	var st *store.Story
	switch {
	case filetype.Is(data, "zip") || filetype.Is(data, "epub"):
		st, err = importEPUB(path, log)
	case looksLikeHTML(data):
		st, err = importHTML(data, path, log)
	default:
		st = importText(data, path)
	}
	if err != nil {
		return nil, err
	}

	if st.Title == "" {
		st.Title = titleFromPath(path)
	}
	st.ID = makeID(st.Title)
	log.Info("Imported story",
		zap.String("id", st.ID), zap.String("title", st.Title), zap.String("source", path))
	return st, nil
}

// makeID derives a stable-looking, unique library ID: a slug of the title
// plus a short time-ordered suffix so re-importing never collides.
func makeID(title string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	suffix := strings.ReplaceAll(id.String(), "-", "")
	return slug.Make(title) + "-" + suffix[len(suffix)-8:]
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func looksLikeHTML(data []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(data))
	if len(head) > 512 {
		head = head[:512]
	}
	for _, marker := range [][]byte{[]byte("<!doctype html"), []byte("<html"), []byte("<body"), []byte("<p")} {
		if bytes.Contains(head, marker) {
			return true
		}
	}
	return false
}

func importHTML(data []byte, path string, log *zap.Logger) (*store.Story, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", path, err)
	}

	st := &store.Story{
		Title: findTitle(doc),
		Lang:  findLang(doc),
	}
	if body := findElement(doc, "body"); body != nil {
		st.Content = renderChildren(body)
	} else {
		st.Content = string(data)
	}
	if len(strings.TrimSpace(st.Content)) == 0 {
		return nil, fmt.Errorf("%s has no readable content", path)
	}
	log.Debug("Imported HTML story", zap.String("title", st.Title), zap.String("lang", st.Lang))
	return st, nil
}

// importText turns plain text into paragraph markup, splitting on blank
// lines. Single newlines inside a paragraph are soft wraps and collapse.
func importText(data []byte, path string) *store.Story {
	normalized := strings.ReplaceAll(string(data), "\r\n", "\n")

	var sb strings.Builder
	for _, para := range strings.Split(normalized, "\n\n") {
		para = strings.Join(strings.Fields(para), " ")
		if para == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(para))
		sb.WriteString("</p>\n")
	}
	return &store.Story{
		Title:   titleFromPath(path),
		Content: sb.String(),
	}
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

func findTitle(doc *html.Node) string {
	if t := findElement(doc, "title"); t != nil && t.FirstChild != nil {
		return strings.TrimSpace(t.FirstChild.Data)
	}
	if h := findElement(doc, "h1"); h != nil {
		return strings.Join(strings.Fields(nodeText(h)), " ")
	}
	return ""
}

func findLang(doc *html.Node) string {
	root := findElement(doc, "html")
	if root == nil {
		return ""
	}
	for _, a := range root.Attr {
		if a.Key == "lang" {
			return a.Val
		}
	}
	return ""
}

func renderChildren(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		// rendering into a strings.Builder cannot fail
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

func nodeText(n *html.Node) string {
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
	return sb.String()
}
