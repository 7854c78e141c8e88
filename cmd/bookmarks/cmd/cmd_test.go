package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3>Work</H3>
    <DL><p>
        <DT><A HREF="https://mail.example">Mail</A>
    </DL><p>
    <DT><A HREF="https://home.example">Home</A>
</DL><p>
`

func writeExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookmarks.html")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o644))
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	rootPath, inputFormat, outputFormat, asJSON, verbose = "", "", "", false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestLinksCommand(t *testing.T) {
	file := writeExport(t)

	out := run(t, "links", file)
	assert.Equal(t, "Bookmarks/Work\tMail\thttps://mail.example\nBookmarks\tHome\thttps://home.example\n", out)

	out = run(t, "links", "--root-path", "Imported", file)
	assert.True(t, strings.HasPrefix(out, "Imported/Bookmarks/Work\tMail"), out)
}

func TestLinksCommand_EmptyURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.html")
	doc := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="">Empty</A>
</DL><p>
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	out := run(t, "links", path)
	assert.Equal(t, "Bookmarks\tEmpty\t\n", out)
}

func TestLinksCommand_JSON(t *testing.T) {
	file := writeExport(t)
	out := run(t, "links", "--json", file)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var e listEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &e))
	assert.Equal(t, listEntry{Kind: "link", Title: "Mail", URL: "https://mail.example", Path: "Bookmarks/Work"}, e)
}

func TestFoldersCommand(t *testing.T) {
	out := run(t, "folders", writeExport(t))
	assert.Equal(t, "Bookmarks/Work\n", out)
}

func TestTreeCommand(t *testing.T) {
	out := run(t, "tree", writeExport(t))
	want := "Bookmarks/\n├── Work/\n│   └── Mail\n└── Home\n"
	assert.Equal(t, want, out)
}

func TestConvertCommand(t *testing.T) {
	file := writeExport(t)
	dst := filepath.Join(t.TempDir(), "out.csv")
	run(t, "convert", file, dst)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Mail,https://mail.example,Bookmarks/Work")

	out := run(t, "convert", "--to", "md", file, "-")
	assert.Contains(t, out, "## Work")
}

func TestConvertCommand_UnknownFormat(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"convert", "--to", "yaml", writeExport(t), "-"})
	assert.Error(t, rootCmd.Execute())
}
