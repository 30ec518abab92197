package analysis

import (
	"regexp"
	"strings"
)

var (
	// privateTagRegex matches <private>...</private> blocks
	privateTagRegex = regexp.MustCompile(`(?s)<private>.*?</private>`)

	// markupTagRegex matches any remaining opening or closing markup tag
	markupTagRegex = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9:-]*(\s[^<>]*)?/?>`)

	// urlRegex matches http(s) URLs cited in free text
	urlRegex = regexp.MustCompile(`https?://[^\s<>"'()\[\]]+`)
)

// StripPrivateTags removes all <private>...</private> content from text.
func StripPrivateTags(text string) string {
	return privateTagRegex.ReplaceAllString(text, "")
}

// StripMarkup removes markup tags but keeps the text between them.
func StripMarkup(text string) string {
	return markupTagRegex.ReplaceAllString(text, "")
}

// Clean strips private blocks and markup, then collapses whitespace.
func Clean(text string) string {
	text = StripPrivateTags(text)
	text = StripMarkup(text)
	return strings.Join(strings.Fields(text), " ")
}

// CitedURLs returns the URLs mentioned in text, without trailing punctuation.
func CitedURLs(text string) []string {
	matches := urlRegex.FindAllString(text, -1)
	for i, m := range matches {
		matches[i] = strings.TrimRight(m, ".,;:!?")
	}
	return matches
}
