package model

import "errors"

var (
	ErrNotFound     = errors.New("book not found")
	ErrFileNotFound = &kindError{msg: "file not found", kind: ErrNotFound}

	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidFileType = &kindError{msg: "invalid file type", kind: ErrInvalidInput}

	ErrPersistence      = errors.New("failed to update metadata")
	ErrStoreUnavailable = &kindError{msg: "metadata store unavailable", kind: ErrPersistence}

	ErrIO = errors.New("file operation failed")
)

// kindError is a distinct error that still classifies as its kind with errors.Is.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() error {
	return e.kind
}
