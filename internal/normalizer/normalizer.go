// Package normalizer rewrites loosely structured, Python-repr-like text into
// something a JSON parser can read.
package normalizer

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// whitespace after a label includes Unicode spaces and the byte order mark
	labelOnlyRegex   = regexp.MustCompile(`(?i)^(data|datos?):[\s\p{Zs}\x{FEFF}]*$`)
	labelPrefixRegex = regexp.MustCompile(`(?i)^(data|datos?):[\s\p{Zs}\x{FEFF}]*`)

	// literalReplacer applies the substitutions in order. Occurrences inside
	// quoted strings are replaced too.
	literalReplacer = []struct{ old, new string }{
		{"'", `"`},
		{"None", "null"},
		{"False", "false"},
		{"True", "true"},
	}
)

// Trim removes leading and trailing whitespace, counting a byte order mark
// as whitespace so files saved with one convert like any other.
func Trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// Normalize strips blank lines and "Data:"/"Datos:" labels, then rewrites
// single quotes and the None/False/True literals into their JSON spelling.
func Normalize(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		line = Trim(line)
		if line == "" || labelOnlyRegex.MatchString(line) {
			continue
		}
		kept = append(kept, labelPrefixRegex.ReplaceAllString(line, ""))
	}

	text := strings.Join(kept, "\n")
	for _, r := range literalReplacer {
		text = strings.ReplaceAll(text, r.old, r.new)
	}
	return text
}
