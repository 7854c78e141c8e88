package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dgallion1/bookmarkd/internal/bookmarks"
)

// webkitEpochOffset is the number of seconds between 1601-01-01 and the
// unix epoch. Chromium stores times as microseconds since 1601.
const webkitEpochOffset = 11644473600

type chromiumFile struct {
	Checksum string                   `json:"checksum,omitempty"`
	Roots    map[string]*chromiumNode `json:"roots"`
	Version  int                      `json:"version"`
}

type chromiumNode struct {
	Children     []*chromiumNode `json:"children,omitempty"`
	DateAdded    string          `json:"date_added,omitempty"`
	DateModified string          `json:"date_modified,omitempty"`
	GUID         string          `json:"guid,omitempty"`
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	URL          string          `json:"url,omitempty"`
}

// chromiumRoots lists the top-level folders in the order the browser shows
// them.
var chromiumRoots = []string{"bookmark_bar", "other", "synced"}

// ChromiumParser handles the JSON Bookmarks file kept in a Chrome, Edge or
// Brave profile directory.
type ChromiumParser struct{}

func (p *ChromiumParser) Parse(r io.Reader, filename string) (*bookmarks.Folder, error) {
	var file chromiumFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if file.Roots == nil {
		return nil, fmt.Errorf("parse json: missing roots object")
	}

	root := bookmarks.NewFolder(DefaultRootTitle)
	for _, key := range chromiumRoots {
		n, ok := file.Roots[key]
		if !ok || n == nil {
			continue
		}
		if n.Type == "" {
			n.Type = "folder"
		}
		root.Add(fromChromium(n))
	}
	return root, nil
}

func fromChromium(n *chromiumNode) bookmarks.Item {
	var it bookmarks.Item
	if n.Type == "url" {
		it = bookmarks.NewLink(n.Name, n.URL)
	} else {
		f := bookmarks.NewFolder(n.Name)
		for _, c := range n.Children {
			f.Add(fromChromium(c))
		}
		it = f
	}

	m := it.Info()
	m.Added = parseWebkitTime(n.DateAdded)
	m.LastModified = parseWebkitTime(n.DateModified)
	if n.GUID != "" {
		m.SetAttribute("guid", n.GUID)
	}
	if n.ID != "" {
		m.SetAttribute("id", n.ID)
	}
	return it
}

func parseWebkitTime(s string) *time.Time {
	us, err := strconv.ParseInt(s, 10, 64)
	if err != nil || us <= 0 {
		return nil
	}
	t := time.Unix(us/1e6-webkitEpochOffset, (us%1e6)*1e3).UTC()
	return &t
}

func formatWebkitTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	us := (t.Unix()+webkitEpochOffset)*1e6 + int64(t.Nanosecond()/1e3)
	return strconv.FormatInt(us, 10)
}

// ChromiumWriter emits a Chromium Bookmarks file with the whole tree under
// the bookmark bar.
type ChromiumWriter struct{}

func (w *ChromiumWriter) ContentType() string { return "application/json" }

func (w *ChromiumWriter) Write(out io.Writer, root *bookmarks.Folder) error {
	bar := toChromium(root)
	bar.Name = root.Title
	file := chromiumFile{
		Roots: map[string]*chromiumNode{
			"bookmark_bar": bar,
			"other":        {Name: "Other bookmarks", Type: "folder", Children: []*chromiumNode{}},
			"synced":       {Name: "Mobile bookmarks", Type: "folder", Children: []*chromiumNode{}},
		},
		Version: 1,
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "   ")
	return enc.Encode(file)
}

func toChromium(it bookmarks.Item) *chromiumNode {
	m := it.Info()
	n := &chromiumNode{
		Name:         m.Title,
		DateAdded:    formatWebkitTime(m.Added),
		DateModified: formatWebkitTime(m.LastModified),
	}
	n.GUID, _ = m.Attribute("guid")
	n.ID, _ = m.Attribute("id")

	switch v := it.(type) {
	case *bookmarks.Link:
		n.Type = "url"
		n.URL = v.URL
	case *bookmarks.Folder:
		n.Type = "folder"
		n.Children = []*chromiumNode{}
		for _, c := range v.Children() {
			if bookmarks.KindOf(c) == bookmarks.KindOther {
				continue
			}
			n.Children = append(n.Children, toChromium(c))
		}
	}
	return n
}
