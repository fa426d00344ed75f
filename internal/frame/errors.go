package frame

import "errors"

var (
	// ErrInvalidHeader is wrapped by every error returned from ReadHeader.
	ErrInvalidHeader = errors.New("invalid header")
	// ErrBadMagic is returned when the leading bytes are not the magic marker.
	ErrBadMagic = errors.New("magic marker mismatch")
	// ErrTruncated is returned when the input ends inside the header.
	ErrTruncated = errors.New("truncated header")
	// ErrEmptyName is returned for a zero-length name.
	ErrEmptyName = errors.New("empty file name")
	// ErrZeroShift is returned for a shift value of 0.
	ErrZeroShift = errors.New("zero shift value")
	// ErrNameTooLong is returned when a name does not fit the one-byte length field.
	ErrNameTooLong = errors.New("file name exceeds 255 bytes")
	// ErrUnsafeName is returned when a decoded name cannot be used as a single path component.
	ErrUnsafeName = errors.New("unsafe file name")
)
