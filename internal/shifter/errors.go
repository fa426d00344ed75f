package shifter

import "errors"

var (
	// ErrInvalidInput marks a source that could not be opened or is not a regular file.
	ErrInvalidInput = errors.New("invalid input file")
	// ErrUnknownMode is returned by ParseMode for an unrecognized mode name.
	ErrUnknownMode = errors.New("unknown mode")
)
