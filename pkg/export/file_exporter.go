// Package export writes prompt documents to text files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

const timestampLayout = "20060102_150405"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// File is an exported document
type File struct {
	Filename string
	Path     string
	Content  []byte
}

type FileExporter struct {
	dir string
	now func() time.Time
}

func NewFileExporter(dir string) *FileExporter {
	if dir == "" {
		dir = "exports"
	}
	return &FileExporter{dir: dir, now: time.Now}
}

// Filename is prompt_{userID}_{YYYYMMDD_HHMMSS}.txt
func Filename(userID string, at time.Time) string {
	return fmt.Sprintf("prompt_%s_%s.txt", unsafeFilenameChars.ReplaceAllString(userID, "_"), at.Format(timestampLayout))
}

// Export writes content as UTF-8 text under the export directory
func (e *FileExporter) Export(userID, content string) (*File, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	name := Filename(userID, e.now())
	path := filepath.Join(e.dir, name)
	data := []byte(content)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write export file: %w", err)
	}

	return &File{Filename: name, Path: path, Content: data}, nil
}
