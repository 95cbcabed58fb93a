package simd

import "bytes"

// Memmem returns the index of the first instance of needle in haystack,
// or -1 if needle is not present. An empty needle matches at 0.
//
// Candidates are located by scanning for the needle's rarest byte (see
// ByteRank) and then verified in full.
//
// Example:
//
//	pos := simd.Memmem([]byte("aaaaaabaaaa"), []byte("aab"))
//	// pos == 5
func Memmem(haystack, needle []byte) int {
	m := len(needle)
	switch {
	case m == 0:
		return 0
	case m > len(haystack):
		return -1
	case m == 1:
		return Memchr(haystack, needle[0])
	}

	rare, at := RareByte(needle)
	last := len(haystack) - m
	for from := at; from <= last+at; {
		j := Memchr(haystack[from:last+at+1], rare)
		if j < 0 {
			return -1
		}
		start := from + j - at
		if bytes.Equal(haystack[start:start+m], needle) {
			return start
		}
		from += j + 1
	}
	return -1
}
