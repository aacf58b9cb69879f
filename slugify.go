package lantern

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// Slugify derives a URL-safe slug from a post title: lowercased, with runs
// of non-alphanumeric characters collapsed into single hyphens and leading/
// trailing hyphens trimmed.
func Slugify(title string) string {
	return slug.Make(strings.TrimSpace(title))
}

// slugCandidate returns the slug to try for the given title and attempt
// number. Attempt 0 is the bare slug; later attempts append a numeric
// suffix, so a second "hello-world" becomes "hello-world-2".
func slugCandidate(title string, attempt int) string {
	base := Slugify(title)
	if attempt == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, attempt+1)
}
