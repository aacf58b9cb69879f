package lantern

import (
	"bytes"
	"fmt"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"go.abhg.dev/goldmark/frontmatter"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		&frontmatter.Extender{},
	),
)

// importMeta is the frontmatter block of a markdown source file.
type importMeta struct {
	Title    string    `yaml:"title" toml:"title"`
	Category string    `yaml:"category" toml:"category"`
	Image    string    `yaml:"image" toml:"image"`
	Created  time.Time `yaml:"created" toml:"created"`
	Updated  time.Time `yaml:"updated" toml:"updated"`
}

// renderMarkdown converts a markdown source, frontmatter included, into a
// draft post. The caller still runs it through CreatePost for validation,
// sanitization, and slug assignment.
func renderMarkdown(source []byte) (*Post, error) {
	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := markdown.Convert(source, &buf, parser.WithContext(pctx)); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	var meta importMeta
	if fm := frontmatter.Get(pctx); fm != nil {
		if err := fm.Decode(&meta); err != nil {
			return nil, fmt.Errorf("decoding frontmatter: %w", err)
		}
	}

	return &Post{
		Title:      meta.Title,
		Content:    buf.String(),
		CategoryID: meta.Category,
		ImageURL:   meta.Image,
		CreatedAt:  meta.Created,
		UpdatedAt:  meta.Updated,
	}, nil
}
