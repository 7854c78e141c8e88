package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookmarkd/internal/bookmarks"
)

var (
	inputFormat string
	asJSON      bool
)

var linksCmd = &cobra.Command{
	Use:   "links FILE",
	Short: "List every link with its folder path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.OutOrStdout(), args[0], bookmarks.KindLink)
	},
}

var foldersCmd = &cobra.Command{
	Use:   "folders FILE",
	Short: "List every folder path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.OutOrStdout(), args[0], bookmarks.KindFolder)
	},
}

func init() {
	for _, c := range []*cobra.Command{linksCmd, foldersCmd} {
		c.Flags().StringVarP(&inputFormat, "format", "f", "", "input format when reading stdin (html, md, json, csv)")
		c.Flags().BoolVar(&asJSON, "json", false, "print JSON lines")
		rootCmd.AddCommand(c)
	}
}

type listEntry struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	Path  string `json:"path"`
}

func runList(w io.Writer, file string, mask bookmarks.Kind) error {
	root, err := load(file, inputFormat)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for it := range root.Walk(mask) {
		e := listEntry{Kind: bookmarks.KindOf(it).String(), Title: it.Info().Title}
		e.Path, _ = it.Info().Path()
		if l, ok := it.(*bookmarks.Link); ok {
			e.URL = l.URL
		}

		if asJSON {
			if err := enc.Encode(e); err != nil {
				return err
			}
			continue
		}
		if bookmarks.KindOf(it) == bookmarks.KindLink {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Path, e.Title, e.URL)
		} else {
			fmt.Fprintln(w, e.Path)
		}
	}
	return nil
}
