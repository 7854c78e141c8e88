package format

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dgallion1/bookmarkd/internal/bookmarks"
)

var csvHeader = []string{"title", "url", "folder", "added"}

// CSVParser handles flat title,url,folder[,added] exports. The folder column
// is a PathSeparator-joined path below the root; missing folders are created
// in first-seen order.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*bookmarks.Folder, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	root := bookmarks.NewFolder(stem(filename))
	if len(records) == 0 {
		return root, nil
	}

	// First row is headers.
	col := map[string]int{}
	for i, h := range records[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	urlCol, ok := col["url"]
	if !ok {
		return nil, fmt.Errorf("parse csv: missing url column")
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	folders := map[string]*bookmarks.Folder{"": root}
	var folderFor func(path string) *bookmarks.Folder
	folderFor = func(path string) *bookmarks.Folder {
		if f, ok := folders[path]; ok {
			return f
		}
		parent, title := "", path
		if i := strings.LastIndex(path, bookmarks.PathSeparator); i >= 0 {
			parent, title = path[:i], path[i+1:]
		}
		f := bookmarks.NewFolder(title)
		folderFor(parent).Add(f)
		folders[path] = f
		return f
	}

	for n, row := range records[1:] {
		if urlCol >= len(row) {
			return nil, fmt.Errorf("parse csv: row %d: missing url", n+2)
		}
		l := bookmarks.NewLink(field(row, "title"), strings.TrimSpace(row[urlCol]))
		if added := field(row, "added"); added != "" {
			if t, err := time.Parse(time.RFC3339, added); err == nil {
				l.Added = &t
			}
		}
		path := strings.Trim(field(row, "folder"), bookmarks.PathSeparator)
		folderFor(path).Add(l)
	}

	return root, nil
}

// CSVWriter emits one row per link with its assigned path. Run AssignPaths
// first; links without a path get an empty folder column.
type CSVWriter struct{}

func (w *CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

func (w *CSVWriter) Write(out io.Writer, root *bookmarks.Folder) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for l := range root.AllLinks() {
		path, _ := l.Path()
		added := ""
		if l.Added != nil {
			added = l.Added.Format(time.RFC3339)
		}
		if err := cw.Write([]string{l.Title, l.URL, path, added}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
