package downloader

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL       = errors.New("invalid novel URL")
	ErrIndexUnavailable = errors.New("chapter index unavailable")
	ErrNoChapters       = errors.New("no chapters downloaded")
	ErrEmptyChapter     = errors.New("chapter has no text")
)

// PackagingError reports that chapters were downloaded but one of the
// output artifacts could not be written.
type PackagingError struct {
	Artifact string
	Err      error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("packaging %s: %v", e.Artifact, e.Err)
}

func (e *PackagingError) Unwrap() error {
	return e.Err
}
