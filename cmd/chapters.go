package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/providers/sangtacviet"
	"github.com/brogergvhs/noveld/internal/ui"

	"github.com/spf13/cobra"
)

var chFlags siteFlags

func init() {
	chaptersCmd := &cobra.Command{
		Use:   "chapters [url]",
		Short: "List the chapter index of a novel without downloading",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.LoadMerged(chFlags.options())
			if err != nil {
				return err
			}

			rawURL, err := novelURL(args, cfg)
			if err != nil {
				return err
			}

			return listChapters(cmd, cfg, rawURL, chFlags.selection(cfg))
		},
	}

	chFlags.register(chaptersCmd)
	rootCmd.AddCommand(chaptersCmd)
}

func listChapters(cmd *cobra.Command, cfg *config.Config, rawURL string, sel chapters.Selection) error {
	loc, err := sangtacviet.ResolveURL(rawURL)
	if err != nil {
		return err
	}

	log := ui.NewLogger(cfg.Debug)
	client, err := newSiteClient(cfg, rawURL, log, nil)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	index, err := client.ChapterIndex(ctx, loc)
	if err != nil {
		return err
	}
	if len(index) == 0 {
		return fmt.Errorf("no chapters found for %s", loc)
	}

	selected := chapters.Filter(index, sel)
	fmt.Printf("Found %d chapters, %d selected.\n\n", len(index), len(selected))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tID\tTITLE\tVIP")
	restricted := 0
	for _, ch := range selected {
		vip := ""
		if ch.Restricted {
			vip = "yes"
			restricted++
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", ch.Ordinal, ch.ID, ch.Title, vip)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if restricted > 0 {
		fmt.Printf("\n%d selected chapters are VIP and need a logged-in cookie.\n", restricted)
	}
	return nil
}
