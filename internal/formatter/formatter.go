package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/mcncl/textjson/internal/models"
)

// TokenClass is the presentation class of a highlighted JSON token
type TokenClass string

const (
	ClassKey     TokenClass = "key"
	ClassString  TokenClass = "string"
	ClassNumber  TokenClass = "number"
	ClassBoolean TokenClass = "boolean"
	ClassNull    TokenClass = "null"
)

// Highlight modes
const (
	HighlightNone = "none"
	HighlightANSI = "ansi"
	HighlightHTML = "html"
)

// tokenRegex matches keys (a string followed by a colon), string values,
// the true/false/null literals and numbers.
var tokenRegex = regexp.MustCompile(`("(\\u[a-zA-Z0-9]{4}|\\[^u]|[^\\"])*"(\s*:)?|\b(true|false|null)\b|-?\d+(?:\.\d*)?(?:[eE][+\-]?\d+)?)`)

// Token is a classified span of serialized JSON
type Token struct {
	Class TokenClass
	Text  string
	Start int
	End   int
}

// Formatter serializes conversion results and decorates them for display
type Formatter struct {
	Indent string
	ansi   map[TokenClass]*color.Color
}

// NewFormatter creates a new Formatter instance with two-space indentation.
// The colours are fixed at construction, so ANSI is safe for concurrent use.
func NewFormatter() *Formatter {
	ansi := map[TokenClass]*color.Color{
		ClassKey:     color.New(color.FgBlue, color.Bold),
		ClassString:  color.New(color.FgGreen),
		ClassNumber:  color.New(color.FgYellow),
		ClassBoolean: color.New(color.FgMagenta),
		ClassNull:    color.New(color.FgRed),
	}
	for _, c := range ansi {
		c.EnableColor()
	}
	return &Formatter{Indent: "  ", ansi: ansi}
}

// Serialize renders value as JSON, indented when pretty is set and compact
// otherwise. HTML characters are written as-is.
func (f *Formatter) Serialize(value models.JSONValue, pretty bool) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", f.Indent)
	}
	if err := enc.Encode(value); err != nil {
		return "", fmt.Errorf("failed to serialize JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Tokenize classifies every highlightable token in serialized JSON
func Tokenize(serialized string) []Token {
	matches := tokenRegex.FindAllStringIndex(serialized, -1)
	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		text := serialized[m[0]:m[1]]
		tokens = append(tokens, Token{
			Class: classify(text),
			Text:  text,
			Start: m[0],
			End:   m[1],
		})
	}
	return tokens
}

func classify(match string) TokenClass {
	switch {
	case strings.HasPrefix(match, `"`):
		if strings.HasSuffix(match, ":") {
			return ClassKey
		}
		return ClassString
	case match == "true" || match == "false":
		return ClassBoolean
	case match == "null":
		return ClassNull
	default:
		return ClassNumber
	}
}

// Highlight decorates serialized JSON for the given mode. Unknown modes and
// "none" return the input untouched.
func (f *Formatter) Highlight(serialized, mode string) string {
	switch mode {
	case HighlightHTML:
		return f.HTML(serialized)
	case HighlightANSI:
		return f.ANSI(serialized)
	default:
		return serialized
	}
}

// HTML escapes the text for embedding and wraps each token in a span whose
// class names the token type.
func (f *Formatter) HTML(serialized string) string {
	escaped := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(serialized)
	return tokenRegex.ReplaceAllStringFunc(escaped, func(match string) string {
		return fmt.Sprintf(`<span class="%s">%s</span>`, classify(match), match)
	})
}

// ANSI colours each token for terminal output
func (f *Formatter) ANSI(serialized string) string {
	return tokenRegex.ReplaceAllStringFunc(serialized, func(match string) string {
		c, ok := f.ansi[classify(match)]
		if !ok {
			return match
		}
		return c.Sprint(match)
	})
}

// StripHTML recovers the plain text from HTML produced by (*Formatter).HTML
func StripHTML(highlighted string) string {
	return html.UnescapeString(spanRegex.ReplaceAllString(highlighted, ""))
}

var spanRegex = regexp.MustCompile(`</?span[^>]*>`)
