package util

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

const tmpSuffix = ".tmp"

var reUnsafeName = regexp.MustCompile(`[<>:"/\\|?*]`)

// SafeName strips characters that are invalid in file names on common
// filesystems. An empty result becomes fallback.
func SafeName(s, fallback string) string {
	s = reUnsafeName.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(strings.Trim(s, ". "))

	if s == "" {
		return fallback
	}
	if r := []rune(s); len(r) > 120 {
		s = strings.TrimSpace(string(r[:120]))
	}

	return s
}

// WriteFileAtomic writes through a sibling temp file and renames it into
// place once write (and verify, when given) succeed. On any error the temp
// file is removed, so path never holds a partial file.
func WriteFileAtomic(path string, write func(w *bufio.Writer) error, verify func(tmpPath string) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + tmpSuffix
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	w := bufio.NewWriter(f)
	if err = write(w); err != nil {
		_ = f.Close()
		return err
	}
	if err = w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}

	if verify != nil {
		if err = verify(tmp); err != nil {
			return fmt.Errorf("verify %s: %w", filepath.Base(path), err)
		}
	}

	return os.Rename(tmp, path)
}
