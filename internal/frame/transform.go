package frame

// Direction selects whether Transform obfuscates or restores.
type Direction int

const (
	// Encode adds the shift to every byte.
	Encode Direction = iota
	// Decode subtracts the shift from every byte.
	Decode
)

// String returns the lowercase name of the direction.
func (d Direction) String() string {
	switch d {
	case Encode:
		return "encode"
	case Decode:
		return "decode"
	default:
		return "unknown"
	}
}

// Transform shifts every byte of buf in place, wrapping modulo 256.
func Transform(buf []byte, shift byte, dir Direction) {
	if dir == Decode {
		shift = -shift
	}

	for i := range buf {
		buf[i] += shift
	}
}
