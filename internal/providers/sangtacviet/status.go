package sangtacviet

import (
	"errors"
	"fmt"

	"github.com/brogergvhs/noveld/internal/providers"
)

const codeOK = "0"

var (
	ErrInvalidParams     = errors.New("invalid parameters")
	ErrBookNotFound      = errors.New("book not found")
	ErrChapterNotFound   = errors.New("chapter not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrServerBusy        = errors.New("server busy")
	ErrRateLimited       = providers.ErrRateLimited
	ErrAuthRequired      = errors.New("authentication required")
	ErrIPBlocked         = errors.New("ip blocked")
	ErrMaintenance       = errors.New("maintenance mode")
	ErrContentRemoved    = errors.New("content removed")
	ErrUnknownStatus     = errors.New("unknown status")
	ErrMalformedResponse = errors.New("malformed response")
)

var statusTable = map[string]error{
	"1":  ErrInvalidParams,
	"2":  ErrBookNotFound,
	"3":  ErrChapterNotFound,
	"4":  ErrAccessDenied,
	"5":  ErrServerBusy,
	"6":  ErrRateLimited,
	"7":  ErrAuthRequired,
	"8":  ErrIPBlocked,
	"9":  ErrMaintenance,
	"10": ErrContentRemoved,
}

// StatusError is a non-success code returned inside a chapter response, or
// an HTTP status the site uses for the same purpose.
type StatusError struct {
	Code string
	Kind error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api status %s: %v", e.Code, e.Kind)
}

func (e *StatusError) Unwrap() error {
	return e.Kind
}

// classify maps a response code to nil (success) or a *StatusError.
func classify(code string) error {
	if code == codeOK {
		return nil
	}

	kind, ok := statusTable[code]
	if !ok {
		kind = ErrUnknownStatus
	}

	return &StatusError{Code: code, Kind: kind}
}

// IsRateLimited reports whether err asks the caller to cool down.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
