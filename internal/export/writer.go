// Package export writes wall sets to files, the clipboard and stdout.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/climbr/internal/model"
)

// DefaultPrefix starts every export filename.
const DefaultPrefix = "wall-set"

// maxAttempts bounds the -N suffix search.
const maxAttempts = 1000

// Writer saves export documents as <prefix>-<unix millis>.json in Dir.
type Writer struct {
	Now    func() time.Time
	Dir    string
	Prefix string
}

// NewWriter creates a Writer for dir using the default prefix.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, Prefix: DefaultPrefix, Now: time.Now}
}

// Write saves doc and returns the path written. An existing file is never
// overwritten; a -N suffix is added until the name is free.
func (w *Writer) Write(doc model.ExportDocument) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal wall set: %w", err)
	}
	data = append(data, '\n')

	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	base := w.baseName()
	for attempt := 0; attempt < maxAttempts; attempt++ {
		name := base + ".json"
		if attempt > 0 {
			name = fmt.Sprintf("%s-%d.json", base, attempt)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create export file: %w", err)
		}

		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("failed to write export file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close export file: %w", err)
		}

		slog.Info("Exported wall set", "path", path, "routes", len(doc.WallSet))
		return path, nil
	}

	return "", fmt.Errorf("no free export filename for %s in %s", base, dir)
}

func (w *Writer) baseName() string {
	prefix := w.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	return fmt.Sprintf("%s-%d", prefix, now().UnixMilli())
}
