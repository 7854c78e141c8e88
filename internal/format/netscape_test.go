package format

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/bookmarkd/internal/bookmarks"
)

const firefoxExport = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<!-- This is an automatically generated file.
     It will be read and overwritten.
     DO NOT EDIT! -->
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<meta http-equiv="Content-Security-Policy" content="default-src 'self'">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks Menu</H1>

<DL><p>
    <DT><H3 ADD_DATE="1700000000" LAST_MODIFIED="1700000100" PERSONAL_TOOLBAR_FOLDER="true">Toolbar</H3>
    <DL><p>
        <DT><A HREF="https://go.dev/" ADD_DATE="1700000200" ICON="data:image/png;base64,AAA" TAGS="go,lang">Go &amp; Friends</A>
        <DD>The Go homepage
        <DT><H3>Empty</H3>
        <DL><p>
        </DL><p>
    </DL><p>
    <DT><A HREF="https://example.com/">Example</A>
</DL>
`

func TestNetscapeParser_FirefoxExport(t *testing.T) {
	p := &NetscapeParser{}
	root, err := p.Parse(strings.NewReader(firefoxExport), "bookmarks.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if root.Title != "Bookmarks Menu" {
		t.Errorf("expected root title %q, got %q", "Bookmarks Menu", root.Title)
	}
	if root.Len() != 2 {
		t.Fatalf("expected 2 top-level children, got %d", root.Len())
	}

	toolbar, ok := root.At(0).(*bookmarks.Folder)
	if !ok {
		t.Fatalf("expected first child to be a folder, got %T", root.At(0))
	}
	if toolbar.Title != "Toolbar" {
		t.Errorf("expected folder title %q, got %q", "Toolbar", toolbar.Title)
	}
	if toolbar.Added == nil || !toolbar.Added.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("expected ADD_DATE to be parsed, got %v", toolbar.Added)
	}
	if toolbar.LastModified == nil || !toolbar.LastModified.Equal(time.Unix(1700000100, 0)) {
		t.Errorf("expected LAST_MODIFIED to be parsed, got %v", toolbar.LastModified)
	}
	if v, _ := toolbar.Attribute("personal_toolbar_folder"); v != "true" {
		t.Errorf("expected toolbar attribute, got %q", v)
	}
	if toolbar.Len() != 2 {
		t.Fatalf("expected 2 children in toolbar, got %d", toolbar.Len())
	}

	golink, ok := toolbar.At(0).(*bookmarks.Link)
	if !ok {
		t.Fatalf("expected link, got %T", toolbar.At(0))
	}
	if golink.Title != "Go & Friends" {
		t.Errorf("expected unescaped title, got %q", golink.Title)
	}
	if golink.URL != "https://go.dev/" {
		t.Errorf("expected url %q, got %q", "https://go.dev/", golink.URL)
	}
	if v, _ := golink.Attribute("tags"); v != "go,lang" {
		t.Errorf("expected tags attribute, got %q", v)
	}
	if v, _ := golink.Attribute("description"); v != "The Go homepage" {
		t.Errorf("expected description, got %q", v)
	}
	if _, ok := golink.Attribute("href"); ok {
		t.Error("href must not be stored as an attribute")
	}

	empty := toolbar.At(1).(*bookmarks.Folder)
	if empty.Len() != 0 {
		t.Errorf("expected empty folder, got %d children", empty.Len())
	}

	example := root.At(1).(*bookmarks.Link)
	if example.Title != "Example" {
		t.Errorf("expected top-level link after nested list, got %q", example.Title)
	}
	if example.HasAttributes() {
		t.Error("link without extra attributes should not allocate an attribute map")
	}
}

func TestNetscapeParser_DefaultTitle(t *testing.T) {
	p := &NetscapeParser{}
	root, err := p.Parse(strings.NewReader(`<DL><p><DT><A HREF="https://a.example">A</A></DL>`), "x.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.Title != DefaultRootTitle {
		t.Errorf("expected default title %q, got %q", DefaultRootTitle, root.Title)
	}
	if root.Len() != 1 {
		t.Fatalf("expected 1 child, got %d", root.Len())
	}
}

func TestNetscapeParser_EmptyInput(t *testing.T) {
	p := &NetscapeParser{}
	root, err := p.Parse(strings.NewReader(""), "empty.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.Len() != 0 {
		t.Errorf("expected 0 children for empty input, got %d", root.Len())
	}
}

func TestParseEpoch_Units(t *testing.T) {
	want := time.Unix(1700000000, 0)
	for _, in := range []string{"1700000000", "1700000000000", "1700000000000000"} {
		got, ok := parseEpoch(in)
		if !ok || !got.Equal(want) {
			t.Errorf("parseEpoch(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := parseEpoch("soon"); ok {
		t.Error("expected non-numeric timestamp to be rejected")
	}
}

func TestNetscapeWriter_RoundTrip(t *testing.T) {
	p := &NetscapeParser{}
	orig, err := p.Parse(strings.NewReader(firefoxExport), "bookmarks.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := (&NetscapeWriter{}).Write(&buf, orig); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "<!DOCTYPE NETSCAPE-Bookmark-file-1>") {
		t.Errorf("expected netscape doctype, got %q", buf.String()[:40])
	}

	again, err := p.Parse(&buf, "bookmarks.html")
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if again.Title != orig.Title {
		t.Errorf("expected title %q, got %q", orig.Title, again.Title)
	}

	summary := func(f *bookmarks.Folder) []string {
		var out []string
		for it := range f.AllItems() {
			s := it.Info().Title
			if l, ok := it.(*bookmarks.Link); ok {
				s += " " + l.URL
				if d, ok := l.Attribute("description"); ok {
					s += " " + d
				}
			}
			out = append(out, s)
		}
		return out
	}
	if a, b := summary(orig), summary(again); !slices.Equal(a, b) {
		t.Errorf("round trip mismatch:\n%v\n%v", a, b)
	}

	link := again.At(0).(*bookmarks.Folder).At(0).(*bookmarks.Link)
	if link.Added == nil || link.Added.Unix() != 1700000200 {
		t.Errorf("expected ADD_DATE to survive, got %v", link.Added)
	}
}
