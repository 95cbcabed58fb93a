// Package simd provides byte scanning primitives used by start-position
// pre-filters.
//
// The scanners work on eight bytes at a time with ordinary uint64
// arithmetic (SWAR, SIMD Within A Register), so they run unchanged on every
// architecture Go supports. Words are loaded in native byte order; the
// byte order reported by golang.org/x/sys/cpu decides how a match bit is
// mapped back to a byte index.
package simd

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/sys/cpu"
)

const (
	lo8 = uint64(0x0101010101010101)
	hi8 = uint64(0x8080808080808080)
	lo7 = uint64(0x7f7f7f7f7f7f7f7f)
)

// bigEndian is fixed at init; the scanners branch on it once per word.
var bigEndian = cpu.IsBigEndian

// load reads eight bytes starting at b[i] in native byte order.
func load(b []byte, i int) uint64 {
	return binary.NativeEndian.Uint64(b[i:])
}

// broadcast replicates b into every byte of a word.
func broadcast(b byte) uint64 {
	return uint64(b) * lo8
}

// zeroBytes returns a word with the high bit set in every byte of v that
// is zero. The result is exact: no bit is set for a non-zero byte, which
// matters on big-endian machines where the cheaper borrow-based formula
// can flag bytes that precede a real zero in memory order.
func zeroBytes(v uint64) uint64 {
	return ^(((v & lo7) + lo7) | v | lo7)
}

// firstIndex maps the lowest-addressed flagged byte of a mask produced by
// zeroBytes to its offset inside the word.
func firstIndex(mask uint64) int {
	if bigEndian {
		return bits.LeadingZeros64(mask) / 8
	}
	return bits.TrailingZeros64(mask) / 8
}
