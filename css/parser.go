package css

import (
	"bytes"
	_ "embed"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

//go:embed styles.css
var defaultSheet []byte

// Default returns the rules of the embedded reader stylesheet.
func Default(log *zap.Logger) *Rules {
	rules, err := Parse(defaultSheet, log)
	if err != nil {
		// the embedded sheet is fixed at build time
		panic("unable to parse embedded stylesheet: " + err.Error())
	}
	return rules
}

// Parse parses a stylesheet into block spacing rules. Only element-name
// selectors and spacing properties are recognized, everything else is
// skipped with a debug note - the reader has no use for full CSS.
func Parse(data []byte, log *zap.Logger) (*Rules, error) {
	if log == nil {
		log = zap.NewNop()
	}
	rules := &Rules{styles: make(map[string]BlockStyle)}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	var pending []string

	for {
		gt, _, tok := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				log.Debug("Stylesheet parse error", zap.Error(err))
			}
			return rules, nil

		case css.QualifiedRuleGrammar:
			pending = append(pending, selectorNames(tok, parser.Values())...)

		case css.BeginRulesetGrammar:
			pending = append(pending, selectorNames(tok, parser.Values())...)
			decls := collectDeclarations(parser)
			for _, sel := range pending {
				style, ok := rules.styles[sel]
				if !ok {
					style = defaultStyle
				}
				for _, d := range decls {
					applyDeclaration(&style, d, log)
				}
				rules.styles[sel] = style
			}
			pending = nil

		case css.BeginAtRuleGrammar:
			skipBlock(parser)
			log.Debug("Skipping @-rule in reader stylesheet", zap.String("rule", string(tok)))
		}
	}
}

type declaration struct {
	property string
	values   []float64 // lengths in em (bare numbers kept as is)
}

func collectDeclarations(parser *css.Parser) []declaration {
	var decls []declaration
	for {
		gt, _, tok := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls
		case css.DeclarationGrammar:
			d := declaration{property: strings.ToLower(string(tok))}
			for _, v := range parser.Values() {
				switch v.TokenType {
				case css.NumberToken, css.DimensionToken, css.PercentageToken:
					if f, ok := lengthEm(string(v.Data)); ok {
						d.values = append(d.values, f)
					}
				}
			}
			decls = append(decls, d)
		}
	}
}

func skipBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

func selectorNames(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	var names []string
	for _, part := range strings.Split(sb.String(), ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if len(part) > 0 {
			names = append(names, part)
		}
	}
	return names
}

// lengthEm converts a CSS length to em. Bare numbers pass through (used by
// font-scale), px assumes the conventional 16px em.
func lengthEm(raw string) (float64, bool) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	div := 1.0
	switch {
	case strings.HasSuffix(raw, "rem"):
		raw = strings.TrimSuffix(raw, "rem")
	case strings.HasSuffix(raw, "em"):
		raw = strings.TrimSuffix(raw, "em")
	case strings.HasSuffix(raw, "px"):
		raw = strings.TrimSuffix(raw, "px")
		div = 16
	case strings.HasSuffix(raw, "%"):
		raw = strings.TrimSuffix(raw, "%")
		div = 100
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f / div, true
}

func applyDeclaration(style *BlockStyle, d declaration, log *zap.Logger) {
	v := d.values
	switch d.property {
	case "margin":
		switch len(v) {
		case 1:
			style.MarginTop, style.MarginBottom = v[0], v[0]
			style.InsetLeft, style.InsetRight = v[0], v[0]
		case 2:
			style.MarginTop, style.MarginBottom = v[0], v[0]
			style.InsetLeft, style.InsetRight = v[1], v[1]
		case 3:
			style.MarginTop = v[0]
			style.InsetLeft, style.InsetRight = v[1], v[1]
			style.MarginBottom = v[2]
		case 4:
			style.MarginTop, style.InsetRight = v[0], v[1]
			style.MarginBottom, style.InsetLeft = v[2], v[3]
		}
	case "margin-top":
		if len(v) == 1 {
			style.MarginTop = v[0]
		}
	case "margin-bottom":
		if len(v) == 1 {
			style.MarginBottom = v[0]
		}
	case "margin-left":
		if len(v) == 1 {
			style.InsetLeft = v[0]
		}
	case "margin-right":
		if len(v) == 1 {
			style.InsetRight = v[0]
		}
	case "text-indent":
		if len(v) == 1 {
			style.Indent = v[0]
		}
	case "font-scale":
		if len(v) == 1 && v[0] > 0 {
			style.FontScale = v[0]
		}
	case "height":
		if len(v) == 1 {
			style.FixedHeight = v[0]
		}
	default:
		log.Debug("Ignoring property in reader stylesheet", zap.String("property", d.property))
	}
}
