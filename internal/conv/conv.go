// Package conv provides checked integer narrowing.
//
// The compiler stores group and callout numbers in small fields. The parser
// already bounds them, so an out-of-range value is a programming error and
// the helpers panic rather than truncate.
package conv

import "math"

// IntToUint16 converts n to uint16, panicking if it does not fit.
func IntToUint16(n int) uint16 {
	if n < 0 || n > math.MaxUint16 {
		panic("conv: int value out of uint16 range")
	}
	return uint16(n)
}

// IntToUint8 converts n to uint8, panicking if it does not fit.
func IntToUint8(n int) uint8 {
	if n < 0 || n > math.MaxUint8 {
		panic("conv: int value out of uint8 range")
	}
	return uint8(n)
}
