package lantern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"punctuation", "Hello, World!", "hello-world"},
		{"numbers", "Hello World! 2024", "hello-world-2024"},
		{"surrounding whitespace", "  Spaced Out  ", "spaced-out"},
		{"repeated separators", "a -- b", "a-b"},
		{"uppercase", "SHOUTING TITLE", "shouting-title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestSlugCandidate(t *testing.T) {
	assert.Equal(t, "hello-world", slugCandidate("Hello World", 0))
	assert.Equal(t, "hello-world-2", slugCandidate("Hello World", 1))
	assert.Equal(t, "hello-world-3", slugCandidate("Hello World", 2))
}
