package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookmarkd/internal/bookmarks"
)

var treeCmd = &cobra.Command{
	Use:   "tree FILE",
	Short: "Print the folder hierarchy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := load(args[0], inputFormat)
		if err != nil {
			return err
		}
		printTree(cmd.OutOrStdout(), root, "")
		return nil
	},
}

func init() {
	treeCmd.Flags().StringVarP(&inputFormat, "format", "f", "", "input format when reading stdin (html, md, json, csv)")
	rootCmd.AddCommand(treeCmd)
}

func printTree(w io.Writer, f *bookmarks.Folder, prefix string) {
	if prefix == "" {
		fmt.Fprintln(w, f.Title+"/")
	}
	n := f.Len()
	for i, it := range f.Children() {
		branch, next := "├── ", "│   "
		if i == n-1 {
			branch, next = "└── ", "    "
		}
		switch v := it.(type) {
		case *bookmarks.Folder:
			fmt.Fprintln(w, prefix+branch+v.Title+"/")
			printTree(w, v, prefix+next)
		case *bookmarks.Link:
			fmt.Fprintln(w, prefix+branch+v.Title)
		default:
			fmt.Fprintln(w, prefix+branch+strings.TrimSpace(it.Info().Title))
		}
	}
}
