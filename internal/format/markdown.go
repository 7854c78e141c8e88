package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/bookmarkd/internal/bookmarks"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser reads bookmark lists written as Markdown: headings open
// folders nested by level and every link below a heading becomes a link in
// that folder. Bare URLs count as links titled by the URL itself.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*bookmarks.Folder, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Linkify))
	doc := md.Parser().Parse(text.NewReader(src))

	root := bookmarks.NewFolder(stem(filename))

	// Root is level 0, so every heading nests under it.
	type stackEntry struct {
		folder *bookmarks.Folder
		level  int
	}
	stack := []stackEntry{{folder: root, level: 0}}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			f := bookmarks.NewFolder(inlineText(h, src))
			for len(stack) > 1 && stack[len(stack)-1].level >= h.Level {
				stack = stack[:len(stack)-1]
			}
			stack[len(stack)-1].folder.Add(f)
			stack = append(stack, stackEntry{folder: f, level: h.Level})
			continue
		}

		top := stack[len(stack)-1].folder
		err := ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			switch l := c.(type) {
			case *ast.Link:
				link := bookmarks.NewLink(inlineText(l, src), string(l.Destination))
				if len(l.Title) > 0 {
					link.SetAttribute("description", string(l.Title))
				}
				top.Add(link)
				return ast.WalkSkipChildren, nil
			case *ast.AutoLink:
				u := string(l.URL(src))
				top.Add(bookmarks.NewLink(u, u))
				return ast.WalkSkipChildren, nil
			}
			return ast.WalkContinue, nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk markdown: %w", err)
		}
	}

	return root, nil
}

// inlineText concatenates the text segments below n.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}

// maxHeadingLevel is the deepest Markdown heading.
const maxHeadingLevel = 6

// ErrTooDeep reports a tree whose folders nest deeper than Markdown
// headings can express.
var ErrTooDeep = errors.New("folder nesting exceeds markdown heading depth")

// MarkdownWriter emits one heading per folder and a bullet per link. Within
// a folder, links are written before subfolders so they read back into the
// same folder. Trees nested deeper than six levels, root included, are
// rejected with ErrTooDeep.
type MarkdownWriter struct{}

func (w *MarkdownWriter) ContentType() string { return "text/markdown; charset=utf-8" }

func (w *MarkdownWriter) Write(out io.Writer, root *bookmarks.Folder) error {
	var b strings.Builder
	if err := writeMarkdownFolder(&b, root, 1); err != nil {
		return err
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func writeMarkdownFolder(b *strings.Builder, f *bookmarks.Folder, level int) error {
	if level > maxHeadingLevel {
		return fmt.Errorf("folder %q at level %d: %w", f.Title, level, ErrTooDeep)
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat("#", level) + " " + f.Title + "\n")

	var subs []*bookmarks.Folder
	wroteLink := false
	for _, it := range f.Children() {
		switch v := it.(type) {
		case *bookmarks.Folder:
			subs = append(subs, v)
		case *bookmarks.Link:
			if !wroteLink {
				b.WriteByte('\n')
				wroteLink = true
			}
			b.WriteString("- [" + escapeMarkdownText(v.Title) + "](<" + v.URL + ">)\n")
		}
	}
	for _, sub := range subs {
		if err := writeMarkdownFolder(b, sub, level+1); err != nil {
			return err
		}
	}
	return nil
}

var markdownEscaper = strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`, "*", `\*`, "_", `\_`, "`", "\\`")

func escapeMarkdownText(s string) string {
	return markdownEscaper.Replace(s)
}
