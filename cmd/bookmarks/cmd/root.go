package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookmarkd/internal/bookmarks"
	"github.com/dgallion1/bookmarkd/internal/format"
)

var (
	rootPath string
	verbose  bool
	log      *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "Inspect and convert browser bookmark exports",
	Long: `bookmarks reads Netscape HTML, Chromium JSON, Markdown and CSV
bookmark files, flattens their folder hierarchy and converts between formats.

Every command assigns folder paths before printing, rooted at --root-path.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootPath, "root-path", "r", "", "path prefix for the root folder")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log parsing details to stderr")
}

// load parses a bookmark file and assigns paths. "-" reads stdin and takes
// the format from --format.
func load(path, formatHint string) (*bookmarks.Folder, error) {
	var r io.Reader
	name := path
	if path == "-" {
		if formatHint == "" {
			return nil, fmt.Errorf("--format is required when reading stdin")
		}
		r = os.Stdin
		name = "stdin." + formatHint
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %q: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	p, err := format.ForFile(name)
	if err != nil {
		return nil, err
	}
	root, err := p.Parse(r, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := root.CheckAcyclic(); err != nil {
		return nil, err
	}
	root.AssignPaths(rootPath)

	if log != nil {
		log.Debug("loaded bookmarks", "file", path, "folders", root.Count(bookmarks.KindFolder), "links", root.Count(bookmarks.KindLink))
	}
	return root, nil
}
