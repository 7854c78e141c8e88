package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookmarkd/internal/format"
)

var outputFormat string

var convertCmd = &cobra.Command{
	Use:   "convert IN OUT",
	Short: "Convert a bookmark file to another format",
	Long: `Convert reads IN and writes OUT in the format named by --to, or by
OUT's extension when --to is empty. OUT may be "-" for stdout.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, out := args[0], args[1]

		name := outputFormat
		if name == "" {
			name = filepath.Ext(out)
		}
		wr, err := format.WriterFor(name)
		if err != nil {
			return err
		}

		root, err := load(in, inputFormat)
		if err != nil {
			return err
		}

		if out == "-" {
			return wr.Write(cmd.OutOrStdout(), root)
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %q: %w", out, err)
		}
		if err := wr.Write(f, root); err != nil {
			f.Close()
			return fmt.Errorf("write %q: %w", out, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Info("converted bookmarks", "in", in, "out", out)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&inputFormat, "format", "f", "", "input format when reading stdin (html, md, json, csv)")
	convertCmd.Flags().StringVarP(&outputFormat, "to", "t", "", "output format (html, md, json, csv)")
	rootCmd.AddCommand(convertCmd)
}
