package format

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/bookmarkd/internal/bookmarks"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultRootTitle names the root folder when the file carries no title.
const DefaultRootTitle = "Bookmarks"

// NetscapeParser handles the NETSCAPE-Bookmark-file-1 HTML exported by
// every major browser.
type NetscapeParser struct{}

func (p *NetscapeParser) Parse(r io.Reader, filename string) (*bookmarks.Folder, error) {
	root := bookmarks.NewFolder("")
	var docTitle string

	// Each <DL> pushes the folder whose <H3> preceded it, or the current
	// folder again for a stray list, so </DL> always pops one entry.
	stack := []*bookmarks.Folder{root}
	var pending *bookmarks.Folder
	var last bookmarks.Item

	// capture receives text until the matching end tag.
	var capture *strings.Builder
	var captureEnd atom.Atom
	var onCaptured func(string)

	startCapture := func(end atom.Atom, done func(string)) {
		capture = &strings.Builder{}
		captureEnd = end
		onCaptured = done
	}
	finishCapture := func() {
		if capture == nil {
			return
		}
		onCaptured(strings.TrimSpace(capture.String()))
		capture = nil
		onCaptured = nil
	}

	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("parse html: %w", err)
			}
			finishCapture()
			if root.Title == "" {
				root.Title = docTitle
			}
			if root.Title == "" {
				root.Title = DefaultRootTitle
			}
			return root, nil

		case html.TextToken:
			if capture != nil {
				capture.Write(z.Text())
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			// <DD> text runs until the next tag.
			if capture != nil && captureEnd == atom.Dd {
				finishCapture()
			}
			top := stack[len(stack)-1]

			switch tok.DataAtom {
			case atom.Dl:
				if pending != nil {
					stack = append(stack, pending)
					pending = nil
				} else {
					stack = append(stack, top)
				}
			case atom.H3:
				f := bookmarks.NewFolder("")
				applyAttrs(&f.Meta, tok.Attr, nil)
				top.Add(f)
				pending, last = f, f
				startCapture(atom.H3, func(s string) { f.Title = s })
			case atom.A:
				l := bookmarks.NewLink("", "")
				applyAttrs(&l.Meta, tok.Attr, func(key, val string) bool {
					if key == "href" {
						l.URL = val
						return true
					}
					return false
				})
				top.Add(l)
				last = l
				startCapture(atom.A, func(s string) { l.Title = s })
			case atom.Dd:
				if last != nil {
					it := last
					startCapture(atom.Dd, func(s string) {
						if s != "" {
							it.Info().SetAttribute("description", s)
						}
					})
				}
			case atom.H1:
				startCapture(atom.H1, func(s string) { root.Title = s })
			case atom.Title:
				startCapture(atom.Title, func(s string) { docTitle = s })
			}

		case html.EndTagToken:
			tok := z.Token()
			if capture != nil && (tok.DataAtom == captureEnd || captureEnd == atom.Dd) {
				finishCapture()
			}
			if tok.DataAtom == atom.Dl {
				pending = nil
				if len(stack) > 1 {
					stack = stack[:len(stack)-1]
				}
			}
		}
	}
}

// applyAttrs maps tag attributes onto item metadata. Attribute names arrive
// lower-cased from the tokenizer. claim handles variant-specific keys.
func applyAttrs(m *bookmarks.Meta, attrs []html.Attribute, claim func(key, val string) bool) {
	for _, a := range attrs {
		if claim != nil && claim(a.Key, a.Val) {
			continue
		}
		switch a.Key {
		case "add_date":
			if t, ok := parseEpoch(a.Val); ok {
				m.Added = &t
				continue
			}
		case "last_modified":
			if t, ok := parseEpoch(a.Val); ok {
				m.LastModified = &t
				continue
			}
		}
		m.SetAttribute(a.Key, a.Val)
	}
}

// parseEpoch reads a unix timestamp. Some exporters write milliseconds or
// microseconds instead of seconds.
func parseEpoch(s string) (time.Time, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return time.Time{}, false
	}
	switch {
	case n > 1e14:
		return time.UnixMicro(n).UTC(), true
	case n > 1e11:
		return time.UnixMilli(n).UTC(), true
	default:
		return time.Unix(n, 0).UTC(), true
	}
}

// NetscapeWriter emits a NETSCAPE-Bookmark-file-1 document.
type NetscapeWriter struct{}

func (w *NetscapeWriter) ContentType() string { return "text/html; charset=utf-8" }

func (w *NetscapeWriter) Write(out io.Writer, root *bookmarks.Folder) error {
	var b strings.Builder
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<!-- This is an automatically generated file.\n     It will be read and overwritten.\n     DO NOT EDIT! -->\n")
	b.WriteString(`<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">` + "\n")
	b.WriteString("<TITLE>" + html.EscapeString(root.Title) + "</TITLE>\n")
	b.WriteString("<H1>" + html.EscapeString(root.Title) + "</H1>\n")
	writeNetscapeList(&b, root, 0)

	_, err := io.WriteString(out, b.String())
	return err
}

func writeNetscapeList(b *strings.Builder, f *bookmarks.Folder, depth int) {
	indent := strings.Repeat("    ", depth)
	b.WriteString(indent + "<DL><p>\n")
	for _, it := range f.Children() {
		switch v := it.(type) {
		case *bookmarks.Folder:
			b.WriteString(indent + "    <DT><H3" + netscapeAttrs(&v.Meta) + ">" + html.EscapeString(v.Title) + "</H3>\n")
			writeDescription(b, indent, &v.Meta)
			writeNetscapeList(b, v, depth+1)
		case *bookmarks.Link:
			b.WriteString(indent + `    <DT><A HREF="` + html.EscapeString(v.URL) + `"` + netscapeAttrs(&v.Meta) + ">" + html.EscapeString(v.Title) + "</A>\n")
			writeDescription(b, indent, &v.Meta)
		}
	}
	b.WriteString(indent + "</DL><p>\n")
}

func writeDescription(b *strings.Builder, indent string, m *bookmarks.Meta) {
	if d, ok := m.Attribute("description"); ok {
		b.WriteString(indent + "    <DD>" + html.EscapeString(d) + "\n")
	}
}

func netscapeAttrs(m *bookmarks.Meta) string {
	var b strings.Builder
	if m.Added != nil {
		fmt.Fprintf(&b, ` ADD_DATE="%d"`, m.Added.Unix())
	}
	if m.LastModified != nil {
		fmt.Fprintf(&b, ` LAST_MODIFIED="%d"`, m.LastModified.Unix())
	}
	if m.HasAttributes() {
		for _, k := range slices.Sorted(maps.Keys(m.Attributes())) {
			if k == "description" || k == "href" {
				continue
			}
			fmt.Fprintf(&b, ` %s="%s"`, strings.ToUpper(k), html.EscapeString(m.Attributes()[k]))
		}
	}
	return b.String()
}
