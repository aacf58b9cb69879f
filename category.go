package lantern

import "regexp"

// Category is a named grouping posts are filed under. The ID is the stable
// machine token stored on posts; Name is the display label.
type Category struct {
	ID   string `json:"id" toml:"id" yaml:"id"`
	Name string `json:"name" toml:"name" yaml:"name"`
}

// Categories is the configured category set.
type Categories []Category

// Has reports whether id names a configured category.
func (c Categories) Has(id string) bool {
	for _, cat := range c {
		if cat.ID == id {
			return true
		}
	}
	return false
}

// IDs returns the category identifiers in configured order.
func (c Categories) IDs() []string {
	ids := make([]string, 0, len(c))
	for _, cat := range c {
		ids = append(ids, cat.ID)
	}
	return ids
}

var categoryIDPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// IsValidCategoryID reports whether id has the shape of a category token:
// lowercase letters, digits, and hyphens.
func IsValidCategoryID(id string) bool {
	return categoryIDPattern.MatchString(id)
}
