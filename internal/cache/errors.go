package cache

import (
	"errors"
	"fmt"

	"github.com/roach88/stationcache/internal/slice"
)

// Code categorizes cache errors.
type Code string

const (
	// CodeOpenFailed indicates the record store could not be opened.
	CodeOpenFailed Code = "OPEN_FAILED"

	// CodeUpgradeFailed indicates the schema upgrade (default seeding) failed.
	CodeUpgradeFailed Code = "UPGRADE_FAILED"

	// CodeReadFailed indicates the full cache read failed.
	CodeReadFailed Code = "READ_FAILED"

	// CodeDecodeFailed indicates a cached record could not be decoded.
	CodeDecodeFailed Code = "DECODE_FAILED"

	// CodeWriteFailed indicates a replace-write failed.
	CodeWriteFailed Code = "WRITE_FAILED"
)

var (
	// ErrAlreadyAttached is returned by a second call to Attach.
	ErrAlreadyAttached = errors.New("cache already attached")

	// ErrClosed is returned by operations on a closed Cache.
	ErrClosed = errors.New("cache is closed")
)

// Error is a cache failure with its category and, when known, the slice.
type Error struct {
	Code    Code
	Slice   slice.Name
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Slice != "" {
		return fmt.Sprintf("%s: %s (slice=%s)", e.Code, msg, e.Slice)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// IsFatal reports whether err prevents the cache from being used: open,
// upgrade and the initial full read.
// Uses errors.As to handle wrapped errors.
func IsFatal(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		switch ce.Code {
		case CodeOpenFailed, CodeUpgradeFailed, CodeReadFailed:
			return true
		}
	}
	return false
}

// IsWriteError reports whether err is a failed replace-write.
func IsWriteError(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == CodeWriteFailed
	}
	return false
}
