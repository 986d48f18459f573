package story

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"leaf/config"
	"leaf/content"
	"leaf/store"
)

// exportValues is what the output name template sees.
type exportValues struct {
	ID     string
	Title  string
	Author string
	Lang   string
}

// Export writes a story as plain text into dir and returns the written path.
// The file name comes from the configured template; an unusable template
// falls back to a slug of the title.
func Export(st *store.Story, blocks []content.Block, dir, nameTemplate string, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	name := expandNameTemplate(st, nameTemplate, log)
	if name == "" {
		name = slug.Make(st.Title) + ".txt"
	}
	name = config.CleanFileName(name)

	out := filepath.Join(dir, name)
	if err := os.WriteFile(out, []byte(renderText(st, blocks)), 0644); err != nil {
		return "", fmt.Errorf("unable to write export file: %w", err)
	}
	log.Info("Exported story", zap.String("id", st.ID), zap.String("path", out))
	return out, nil
}

func expandNameTemplate(st *store.Story, field string, log *zap.Logger) string {
	if field == "" {
		return ""
	}
	tmpl, err := template.New(string(config.ExportNameTemplateFieldName)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		log.Warn("Unable to parse export name template", zap.Error(err))
		return ""
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, exportValues{
		ID:     st.ID,
		Title:  st.Title,
		Author: st.Author,
		Lang:   st.Lang,
	}); err != nil {
		log.Warn("Unable to expand export name template", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(buf.String())
}

// renderText flattens blocks back into readable text: one paragraph per
// block separated by blank lines, a divider for rules.
func renderText(st *store.Story, blocks []content.Block) string {
	var sb strings.Builder
	if st.Title != "" {
		sb.WriteString(st.Title)
		sb.WriteString("\n\n")
	}
	for _, b := range blocks {
		switch b.Kind {
		case content.KindRule:
			sb.WriteString("* * *")
		default:
			sb.WriteString(b.Text)
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}
