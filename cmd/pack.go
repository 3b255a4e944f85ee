package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/noveld/internal/book"
	"github.com/brogergvhs/noveld/internal/epub"
	"github.com/brogergvhs/noveld/internal/output"
	"github.com/brogergvhs/noveld/internal/providers"

	"github.com/spf13/cobra"
)

var (
	packOut      string
	packTitle    string
	packAuthor   string
	packLanguage string
)

func init() {
	packCmd := &cobra.Command{
		Use:   "pack <transcript.txt>",
		Short: "Build an EPUB from an existing TXT transcript",
		Args:  cobra.ExactArgs(1),
		RunE:  runPack,
	}

	packCmd.Flags().StringVarP(&packOut, "out", "o", "", "EPUB path (defaults to the transcript path with .epub)")
	packCmd.Flags().StringVar(&packTitle, "title", "", "override the title read from the transcript")
	packCmd.Flags().StringVar(&packAuthor, "author", "", "override the author read from the transcript")
	packCmd.Flags().StringVarP(&packLanguage, "language", "l", "", "book language: vietnamese (vi) or chinese (zh)")

	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	src := args[0]

	lang, err := providers.ParseLanguage(packLanguage)
	if err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	b, err := book.ParseTranscript(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}

	if packTitle != "" {
		b.Title = packTitle
	}
	if b.Title == "" {
		b.Title = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	if packAuthor != "" {
		b.Author = packAuthor
	}
	b.Language = string(lang)

	dst := packOut
	if dst == "" {
		dst = strings.TrimSuffix(src, filepath.Ext(src)) + ".epub"
	}

	w, err := output.New(filepath.Dir(dst), epub.NewPackager())
	if err != nil {
		return err
	}

	path, err := w.SaveEPUBAs(b, dst)
	if err != nil {
		return err
	}

	fmt.Printf("Packed %d chapters of %q into %s\n", len(b.Chapters), b.Title, path)
	return nil
}
