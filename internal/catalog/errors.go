package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no cataloged name matches.
	ErrNotFound = errors.New("file not found")
	// ErrDeleteFailed matches every *DeleteError.
	ErrDeleteFailed = errors.New("filesystem delete failed")
)

// DeleteError reports a removal that failed after the record was matched.
// Unlinked tells whether the record was dropped from the catalog anyway.
type DeleteError struct {
	Record   Record
	Path     string
	Unlinked bool
	Err      error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Path, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

func (e *DeleteError) Is(target error) bool { return target == ErrDeleteFailed }
