package simd

// Memchr returns the index of the first instance of needle in haystack,
// or -1 if needle is not present.
//
// Example:
//
//	pos := simd.Memchr([]byte("hello world"), 'o')
//	// pos == 4
func Memchr(haystack []byte, needle byte) int {
	n := len(haystack)
	if n < 8 {
		for i := 0; i < n; i++ {
			if haystack[i] == needle {
				return i
			}
		}
		return -1
	}

	mask := broadcast(needle)
	i := 0
	for ; i+8 <= n; i += 8 {
		if z := zeroBytes(load(haystack, i) ^ mask); z != 0 {
			return i + firstIndex(z)
		}
	}
	for ; i < n; i++ {
		if haystack[i] == needle {
			return i
		}
	}
	return -1
}

// Memchr2 returns the index of the first byte equal to needle1 or needle2,
// or -1 if neither is present. It is the scanner behind caseless
// first-character searches.
func Memchr2(haystack []byte, needle1, needle2 byte) int {
	n := len(haystack)
	if n < 8 {
		for i := 0; i < n; i++ {
			if b := haystack[i]; b == needle1 || b == needle2 {
				return i
			}
		}
		return -1
	}

	m1, m2 := broadcast(needle1), broadcast(needle2)
	i := 0
	for ; i+8 <= n; i += 8 {
		w := load(haystack, i)
		if z := zeroBytes(w^m1) | zeroBytes(w^m2); z != 0 {
			return i + firstIndex(z)
		}
	}
	for ; i < n; i++ {
		if b := haystack[i]; b == needle1 || b == needle2 {
			return i
		}
	}
	return -1
}

// Memchr3 returns the index of the first byte equal to any of the three
// needles, or -1 if none is present.
func Memchr3(haystack []byte, needle1, needle2, needle3 byte) int {
	n := len(haystack)
	if n < 8 {
		for i := 0; i < n; i++ {
			if b := haystack[i]; b == needle1 || b == needle2 || b == needle3 {
				return i
			}
		}
		return -1
	}

	m1, m2, m3 := broadcast(needle1), broadcast(needle2), broadcast(needle3)
	i := 0
	for ; i+8 <= n; i += 8 {
		w := load(haystack, i)
		if z := zeroBytes(w^m1) | zeroBytes(w^m2) | zeroBytes(w^m3); z != 0 {
			return i + firstIndex(z)
		}
	}
	for ; i < n; i++ {
		if b := haystack[i]; b == needle1 || b == needle2 || b == needle3 {
			return i
		}
	}
	return -1
}

// MemchrInTable returns the index of the first byte b with table[b] set,
// or -1 if there is none.
func MemchrInTable(haystack []byte, table *[256]bool) int {
	n := len(haystack)
	i := 0
	for ; i+4 <= n; i += 4 {
		if table[haystack[i]] {
			return i
		}
		if table[haystack[i+1]] {
			return i + 1
		}
		if table[haystack[i+2]] {
			return i + 2
		}
		if table[haystack[i+3]] {
			return i + 3
		}
	}
	for ; i < n; i++ {
		if table[haystack[i]] {
			return i
		}
	}
	return -1
}

// FirstNonASCII returns the index of the first byte with the high bit set,
// or -1 if data is pure ASCII.
func FirstNonASCII(data []byte) int {
	n := len(data)
	i := 0
	for ; i+8 <= n; i += 8 {
		if load(data, i)&hi8 != 0 {
			break
		}
	}
	for ; i < n; i++ {
		if data[i] >= 0x80 {
			return i
		}
	}
	return -1
}
