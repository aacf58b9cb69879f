package lantern

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ImportDir walks dir for .md files and publishes each one as a post. Files
// that fail to parse or validate are logged and skipped; the import carries
// on so one bad file cannot sink a batch. Returns how many posts were
// published.
func (b *Blog) ImportDir(ctx context.Context, dir string) (int, error) {
	imported := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}

		draft, err := renderMarkdown(source)
		if err != nil {
			b.logger.Warn("skipping markdown file", "path", path, "error", err.Error())
			return nil
		}

		if _, err := b.CreatePost(ctx, draft); err != nil {
			b.logger.Warn("skipping markdown file", "path", path, "error", err.Error())
			return nil
		}

		imported++
		return nil
	})
	if err != nil {
		return imported, fmt.Errorf("importing %q: %w", dir, err)
	}

	b.logger.Info("markdown import finished", "dir", dir, "imported", imported)
	return imported, nil
}

// exportMeta mirrors importMeta for the write direction.
type exportMeta struct {
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
	Image    string `yaml:"image,omitempty"`
	Created  string `yaml:"created"`
	Updated  string `yaml:"updated"`
}

// ExportDir writes every post into dir as a markdown file with YAML
// frontmatter, named by slug. The content goes out as stored HTML; the
// export is a backup format, not a round-trip.
func (b *Blog) ExportDir(ctx context.Context, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating export dir: %w", err)
	}

	exported := 0
	var after *Cursor
	for {
		page := b.FetchPage(ctx, b.cfg.Query.PageSize, after)
		for _, post := range page.Posts {
			if err := b.exportPost(dir, post); err != nil {
				return exported, err
			}
			exported++
		}
		if page.Cursor == nil {
			break
		}
		after = page.Cursor
	}

	b.logger.Info("markdown export finished", "dir", dir, "exported", exported)
	return exported, nil
}

func (b *Blog) exportPost(dir string, post *Post) error {
	meta, err := yaml.Marshal(exportMeta{
		Title:    post.Title,
		Category: post.CategoryID,
		Image:    post.ImageURL,
		Created:  post.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Updated:  post.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
	if err != nil {
		return fmt.Errorf("marshaling frontmatter for %q: %w", post.ID, err)
	}

	name := post.Slug
	if name == "" {
		name = post.ID
	}

	var out strings.Builder
	out.WriteString("---\n")
	out.Write(meta)
	out.WriteString("---\n\n")
	out.WriteString(post.Content)
	out.WriteString("\n")

	target := filepath.Join(dir, name+".md")
	if err := os.WriteFile(target, []byte(out.String()), 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", target, err)
	}
	return nil
}
