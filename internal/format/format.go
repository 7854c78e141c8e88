// Package format converts between serialized bookmark files and
// bookmarks.Folder trees.
package format

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/bookmarkd/internal/bookmarks"
)

var ErrUnsupported = errors.New("unsupported format")

// Parser converts raw bookmark file bytes into a tree rooted at a folder.
type Parser interface {
	Parse(r io.Reader, filename string) (*bookmarks.Folder, error)
}

// Writer serializes a tree.
type Writer interface {
	Write(w io.Writer, root *bookmarks.Folder) error
	ContentType() string
}

// SupportedExtensions lists file extensions this service can import.
var SupportedExtensions = map[string]bool{
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
	".json":     true,
	".csv":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".html", ".htm":
		return &NetscapeParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".json":
		return &ChromiumParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	default:
		return nil, fmt.Errorf("file extension %q: %w", ext, ErrUnsupported)
	}
}

// WriterFor returns the writer for a format name or file extension.
func WriterFor(name string) (Writer, error) {
	switch strings.TrimPrefix(strings.ToLower(name), ".") {
	case "html", "htm", "netscape":
		return &NetscapeWriter{}, nil
	case "md", "markdown":
		return &MarkdownWriter{}, nil
	case "json", "chromium":
		return &ChromiumWriter{}, nil
	case "csv":
		return &CSVWriter{}, nil
	default:
		return nil, fmt.Errorf("output format %q: %w", name, ErrUnsupported)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
