// ABOUTME: Atomic writer for JSON Feed documents
// ABOUTME: Renders indented JSON and replaces files via temp-file rename

package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/feedmill/internal/models"
)

// pathUnsafe maps characters that break filenames. Recipe names otherwise
// pass through, spaces included.
var pathUnsafe = strings.NewReplacer("/", "-", "\\", "-", ":", "-", "\x00", "")

// Filename returns the on-disk name for a recipe's document.
func Filename(name string) string {
	return pathUnsafe.Replace(name) + ".json"
}

// Write renders doc as indented JSON and atomically replaces the recipe's
// file under dir. A crash mid-write leaves the previous document intact.
// Returns the path written.
func Write(dir, name string, doc *models.Document) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, Filename(name))
	tmp, err := os.CreateTemp(dir, ".feedmill-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("replace %s: %w", path, err)
	}
	return path, nil
}
