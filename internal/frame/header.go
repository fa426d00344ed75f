package frame

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

const (
	// Magic identifies a shifted file.
	Magic = "SHIFTED"
	// Extension is appended to the base name of every shifted file.
	Extension = ".shift"

	// prefixSize covers the magic and the shift byte, read as one unit.
	prefixSize = len(Magic) + 1

	// MaxNameLen is the largest name the length field can describe.
	MaxNameLen = math.MaxUint8
	// MaxHeaderSize is the size of a header carrying a maximum-length name.
	MaxHeaderSize = prefixSize + 1 + MaxNameLen
)

// Header is the decoded prefix of a shifted file.
type Header struct {
	// Shift is the value added to every payload byte.
	Shift byte
	// Name is the base name of the original file.
	Name string
}

// Size returns the encoded length of the header.
func (h Header) Size() int {
	return prefixSize + 1 + len(h.Name)
}

// EncodeHeader builds the header for a file called name, shifted by shift.
// Names longer than MaxNameLen bytes are rejected, never truncated.
func EncodeHeader(name string, shift byte) ([]byte, error) {
	switch {
	case shift == 0:
		return nil, ErrZeroShift
	case name == "":
		return nil, ErrEmptyName
	case len(name) > MaxNameLen:
		return nil, fmt.Errorf("%w: %d bytes", ErrNameTooLong, len(name))
	}

	header := make([]byte, 0, prefixSize+1+len(name))
	header = append(header, Magic...)
	header = append(header, shift, byte(len(name)))
	header = append(header, name...)

	return header, nil
}

// ReadHeader consumes a header from r, leaving r positioned at the payload.
// All returned errors wrap ErrInvalidHeader.
func ReadHeader(r io.Reader) (Header, error) {
	prefix := make([]byte, prefixSize)
	if err := readFull(r, prefix); err != nil {
		return Header{}, invalid(fmt.Errorf("reading prefix: %w", err))
	}

	if !bytes.Equal(prefix[:len(Magic)], []byte(Magic)) {
		return Header{}, invalid(ErrBadMagic)
	}

	var length [1]byte
	if err := readFull(r, length[:]); err != nil {
		return Header{}, invalid(fmt.Errorf("reading name length: %w", err))
	}

	if length[0] == 0 {
		return Header{}, invalid(ErrEmptyName)
	}

	name := make([]byte, length[0])
	if err := readFull(r, name); err != nil {
		return Header{}, invalid(fmt.Errorf("reading name: %w", err))
	}

	// Checked last: the shift byte only matters once the rest of the header is known good.
	shift := prefix[len(Magic)]
	if shift == 0 {
		return Header{}, invalid(ErrZeroShift)
	}

	return Header{Shift: shift, Name: DecodeName(name)}, nil
}

// DecodeName interprets raw as UTF-8. Each ill-formed sequence becomes U+FFFD,
// so decoding never fails and the result is always valid UTF-8.
func DecodeName(raw []byte) string {
	decoded, _ := unicode.UTF8.NewDecoder().Bytes(raw)

	return string(decoded)
}

// ValidateName reports whether name can be joined to a directory as a single,
// non-escaping path component.
func ValidateName(name string) error {
	switch {
	case name == "":
		return ErrEmptyName
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrUnsafeName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrUnsafeName, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrUnsafeName, name)
	}

	return nil
}

// readFull is io.ReadFull with any short read reported as ErrTruncated.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncated
		}

		return err
	}

	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidHeader, err)
}
