package lantern

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AssetHost stores uploaded files and returns the public URL they are served
// under. The upload endpoint stores cover images through it.
type AssetHost interface {
	Store(name string, r io.Reader) (string, error)
}

// LocalAssetHost writes uploads into a directory on disk. Files get
// randomized names so uploads can never collide or overwrite each other.
type LocalAssetHost struct {
	dir     string
	baseURL string
}

// NewLocalAssetHost creates an AssetHost rooted at dir, serving under
// baseURL.
func NewLocalAssetHost(dir, baseURL string) *LocalAssetHost {
	return &LocalAssetHost{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (h *LocalAssetHost) Store(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating asset dir: %w", err)
	}

	stored := uuid.NewString() + strings.ToLower(filepath.Ext(name))
	target := filepath.Join(h.dir, stored)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("creating asset file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("writing asset file: %w", err)
	}
	return path.Join(h.baseURL, stored), nil
}
