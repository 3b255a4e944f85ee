package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/brogergvhs/noveld/internal/book"
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/downloader"
	"github.com/brogergvhs/noveld/internal/epub"
	"github.com/brogergvhs/noveld/internal/output"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"

	"github.com/spf13/cobra"
)

var (
	dlFlags        siteFlags
	flagOutput     string
	flagAuthor     string
	flagPause      float64
	flagDryRunList bool
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download [url]",
		Short: "Download a novel into a TXT transcript and an EPUB. Uses the defaults from the selected config, overwritten by CLI flags",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDownload,
	}

	dlFlags.register(downloadCmd)
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder; each novel gets its own subfolder")
	downloadCmd.Flags().StringVar(&flagAuthor, "author", "", "author written into the EPUB metadata")
	downloadCmd.Flags().Float64Var(&flagPause, "rate-limit-pause", 0, "seconds to pause after the site reports rate limiting")
	downloadCmd.Flags().BoolVar(&flagDryRunList, "dry-run", false, "list the selected chapters, don't download")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	opts := dlFlags.options()
	opts.Output = flagOutput
	opts.Author = flagAuthor
	opts.RateLimitPause = flagPause

	cfg, usedPath, err := config.LoadMerged(opts)
	if err != nil {
		return err
	}

	rawURL, err := novelURL(args, cfg)
	if err != nil {
		return err
	}

	if flagDryRunList {
		return listChapters(cmd, cfg, rawURL, dlFlags.selection(cfg))
	}

	log := ui.NewLogger(cfg.Debug)
	fmt.Printf("Config file: %s\n", usedPath)
	fmt.Println("Full config:")
	cfg.Print(os.Stdout)
	fmt.Println()

	creds, err := util.LoadCredentials(cfg.Cookies, cfg.CookieFile)
	if err != nil {
		return err
	}
	if len(creds) == 0 {
		log.Warnf("No cookies configured; chapters that need a login will fail\n")
	} else {
		log.Infof("Rotating %d account cookie(s)\n", len(creds))
	}

	w, err := output.New(cfg.Output, epub.NewPackager())
	if err != nil {
		return err
	}

	pm := ui.NewProgressManager(os.Stdout)
	handle := pm.Register("novel")
	log.SetOutput(pm.Writer())

	stats := &ui.Stats{}
	client, err := newSiteClient(cfg, rawURL, log, func(n int64) {
		stats.AddBytes(n)
		handle.AddBytes(n)
	})
	if err != nil {
		handle.MarkDone()
		pm.Close()
		return err
	}

	ctx, cancel := util.SetupInterruptHandler(cmd.Context(), cfg.Output)
	defer cancel()

	dl := downloader.New(client, w, log, downloader.Options{
		Language:       cfg.Lang(),
		Credentials:    creds,
		RateLimitPause: cfg.RateLimitPauseDuration(),
		Selection:      dlFlags.selection(cfg),
		Author:         cfg.Author,
		Progress:       handle,
	})

	res, runErr := dl.Run(ctx, rawURL)

	handle.MarkDone()
	pm.Close()
	log.SetOutput(os.Stdout)

	if res != nil {
		stats.TotalChapters.Store(int64(len(res.Book.Chapters)))
		stats.TotalFailed.Store(int64(len(res.Book.Failures)))
		stats.TotalChars.Store(book.Chars(res.Book.Chapters))
		printSummary(res, stats)
	}

	if runErr != nil {
		return runErr
	}

	switch {
	case res.Cancelled:
		fmt.Println("\nStopped early; partial output saved.")
	case len(res.Book.Failures) > 0:
		fmt.Printf("\nCompleted with %d failed chapters.\n", len(res.Book.Failures))
	default:
		fmt.Println("\nAll done.")
	}

	return nil
}

func printSummary(res *downloader.Result, stats *ui.Stats) {
	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Printf("Title:    %s\n", res.Book.Title)
	fmt.Printf("Chapters: %d/%d", stats.TotalChapters.Load(), res.Selected)
	if n := stats.TotalFailed.Load(); n > 0 {
		fmt.Printf(" (%d failed)", n)
	}
	fmt.Println()
	fmt.Printf("Text:     %s characters\n", util.Thousands(stats.TotalChars.Load()))
	fmt.Printf("Data:     %s\n", util.Human(stats.TotalBytes.Load()))
	fmt.Printf("Time:     %s\n", res.Elapsed.Round(time.Second))

	if res.TranscriptPath != "" {
		fmt.Printf("TXT:      %s\n", res.TranscriptPath)
	}
	if res.EPUBPath != "" {
		fmt.Printf("EPUB:     %s\n", res.EPUBPath)
	}
	if res.ReportPath != "" {
		fmt.Printf("Failures: %s\n", res.ReportPath)
	}
}
