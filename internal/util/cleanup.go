package util

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// SetupInterruptHandler returns a context that is cancelled by the first
// interrupt, letting the run stop at the next chapter boundary and save what
// it has. A second interrupt removes unfinished files and exits.
func SetupInterruptHandler(parent context.Context, outputDir string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sig:
		case <-ctx.Done():
			signal.Stop(sig)
			return
		}

		fmt.Println("\nInterrupt received. Finishing the current chapter and saving progress...")
		fmt.Println("Press Ctrl+C again to quit immediately.")
		cancel()

		<-sig
		fmt.Println("\nSecond interrupt. Cleaning up...")
		CleanupUnfinishedTempFiles(outputDir)
		RemoveIfEmpty(outputDir)
		fmt.Println("\nExiting due to interrupt.")

		os.Exit(1)
	}()

	return ctx, func() {
		signal.Stop(sig)
		cancel()
	}
}

// CleanupUnfinishedTempFiles removes *.tmp files left by interrupted
// writes anywhere below outputDir.
func CleanupUnfinishedTempFiles(outputDir string) {
	_ = filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), tmpSuffix) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			fmt.Printf("Error cleaning up %s: %v\n", path, err)
		} else {
			fmt.Printf("Removed %s\n", path)
		}

		return nil
	})
}

func RemoveIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	if len(entries) == 0 {
		if err := os.Remove(dir); err == nil {
			fmt.Printf("Removed empty output folder: %s\n", dir)
		}
	}
}
