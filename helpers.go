package lantern

import "regexp"

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes markup tags from a fragment, leaving the text content.
// Good enough for excerpts and search matching; not an HTML parser.
func StripHTML(s string) string {
	return htmlTagPattern.ReplaceAllString(s, "")
}
