package frame

import (
	"crypto/rand"
	"fmt"
	"io"
	mrand "math/rand/v2"
)

// ShiftSource yields per-file shift values in [1,255].
type ShiftSource interface {
	Shift() (byte, error)
}

// RandomSource draws shift values from a cryptographically secure reader.
type RandomSource struct {
	reader io.Reader
}

// NewRandomSource returns a source backed by crypto/rand.
func NewRandomSource() *RandomSource {
	return &RandomSource{reader: rand.Reader}
}

// Shift returns a uniformly distributed value in [1,255].
// Zero draws are rejected and redrawn.
func (s *RandomSource) Shift() (byte, error) {
	var b [1]byte

	for {
		if _, err := io.ReadFull(s.reader, b[:]); err != nil {
			return 0, fmt.Errorf("drawing shift value: %w", err)
		}

		if b[0] != 0 {
			return b[0], nil
		}
	}
}

// SeededSource is a reproducible source: equal seeds yield equal sequences.
type SeededSource struct {
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic source for the given seed.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))} //nolint:gosec // not used for secrecy
}

// Shift returns the next value in [1,255]. It never fails.
func (s *SeededSource) Shift() (byte, error) {
	return byte(1 + s.rng.IntN(255)), nil //nolint:gosec // IntN(255)+1 is within byte range
}
