package story

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"leaf/store"
)

const containerPath = "META-INF/container.xml"

// importEPUB flattens an EPUB into one markup stream: spine documents in
// reading order, each reduced to its body content.
func importEPUB(name string, log *zap.Logger) (*store.Story, error) {
	r, err := fixzip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("unable to open EPUB %s: %w", name, err)
	}
	defer r.Close()

	files := make(map[string]*fixzip.File, len(r.File))
	for _, f := range r.File {
		files[f.Name] = f
	}

	opfPath, err := rootfilePath(files)
	if err != nil {
		return nil, err
	}
	opfData, err := readZipFile(files, opfPath)
	if err != nil {
		return nil, err
	}

	st := &store.Story{}
	hrefs, err := parseOPF(opfData, st)
	if err != nil {
		return nil, fmt.Errorf("unable to parse package document %s: %w", opfPath, err)
	}

	opfDir := path.Dir(opfPath)
	var sb strings.Builder
	for _, href := range hrefs {
		full := href
		if opfDir != "." {
			full = path.Join(opfDir, href)
		}
		data, err := readZipFile(files, full)
		if err != nil {
			log.Warn("Skipping unreadable spine document", zap.String("href", full), zap.Error(err))
			continue
		}
		doc, err := html.Parse(bytes.NewReader(data))
		if err != nil {
			log.Warn("Skipping unparsable spine document", zap.String("href", full), zap.Error(err))
			continue
		}
		if body := findElement(doc, "body"); body != nil {
			sb.WriteString(renderChildren(body))
			sb.WriteString("\n")
		}
	}
	st.Content = sb.String()
	if len(strings.TrimSpace(st.Content)) == 0 {
		return nil, fmt.Errorf("EPUB %s has no readable content", name)
	}
	log.Debug("Imported EPUB story",
		zap.String("title", st.Title), zap.Int("documents", len(hrefs)))
	return st, nil
}

func rootfilePath(files map[string]*fixzip.File) (string, error) {
	data, err := readZipFile(files, containerPath)
	if err != nil {
		return "", err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", fmt.Errorf("unable to parse %s: %w", containerPath, err)
	}
	rootfile := doc.FindElement("//rootfile")
	if rootfile == nil {
		return "", fmt.Errorf("%s names no rootfile", containerPath)
	}
	full := rootfile.SelectAttrValue("full-path", "")
	if full == "" {
		return "", fmt.Errorf("%s rootfile has no full-path", containerPath)
	}
	return full, nil
}

// parseOPF fills in story metadata and returns the spine document hrefs in
// reading order.
func parseOPF(data []byte, st *store.Story) ([]string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}

	if e := doc.FindElement("//metadata/title"); e != nil {
		st.Title = strings.TrimSpace(e.Text())
	}
	if e := doc.FindElement("//metadata/creator"); e != nil {
		st.Author = strings.TrimSpace(e.Text())
	}
	if e := doc.FindElement("//metadata/language"); e != nil {
		st.Lang = strings.TrimSpace(e.Text())
	}

	manifest := make(map[string]string)
	for _, item := range doc.FindElements("//manifest/item") {
		id := item.SelectAttrValue("id", "")
		href := item.SelectAttrValue("href", "")
		if id != "" && href != "" {
			manifest[id] = href
		}
	}

	var hrefs []string
	for _, ref := range doc.FindElements("//spine/itemref") {
		idref := ref.SelectAttrValue("idref", "")
		if href, ok := manifest[idref]; ok {
			hrefs = append(hrefs, href)
		}
	}
	if len(hrefs) == 0 {
		return nil, fmt.Errorf("spine references no manifest items")
	}
	return hrefs, nil
}

func readZipFile(files map[string]*fixzip.File, name string) ([]byte, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("archive has no %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", name, err)
	}
	return data, nil
}
