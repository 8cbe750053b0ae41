// Package stats derives the display metrics shown next to a conversion.
package stats

import (
	"fmt"
	"unicode/utf8"
)

// ByteSize is the UTF-8 length of the serialized output
func ByteSize(serialized string) int {
	return len(serialized)
}

// FormatKB renders a byte size as kilobytes with two decimals
func FormatKB(size int) string {
	return fmt.Sprintf("%.2f KB", float64(size)/1024)
}

// CharacterCount counts the characters of the raw input
func CharacterCount(raw string) int {
	return utf8.RuneCountInString(raw)
}

// Plural picks the singular form only when count is exactly one
func Plural(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// ConvertedMessage is the success notification text
func ConvertedMessage(count int) string {
	return fmt.Sprintf("Success! %d %s converted", count, Plural(count, "element", "elements"))
}

// ProcessedSummary is the stats line shown under the output
func ProcessedSummary(count int) string {
	return fmt.Sprintf("%d %s processed", count, Plural(count, "element", "elements"))
}

// CharactersLabel is the live input counter
func CharactersLabel(raw string) string {
	n := CharacterCount(raw)
	return fmt.Sprintf("%d %s", n, Plural(n, "character", "characters"))
}
