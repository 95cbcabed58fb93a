package simd

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemchr(t *testing.T) {
	tests := []struct {
		name     string
		haystack string
		needle   byte
		want     int
	}{
		{"empty", "", 'a', -1},
		{"short hit", "abc", 'c', 2},
		{"short miss", "abc", 'd', -1},
		{"word boundary", "0123456789", '8', 8},
		{"first word", "xxxxxxxaxxxxxxxx", 'a', 7},
		{"tail", strings.Repeat("x", 17) + "y", 'y', 17},
		{"high byte", "aaaaaaaaaa\xff", 0xff, 10},
		{"zero byte", "aaaaaaaaa\x00a", 0, 9},
		{"first of many", "..a.a.a.a.a.a.a.a", 'a', 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Memchr([]byte(tt.haystack), tt.needle); got != tt.want {
				t.Errorf("Memchr(%q, %q) = %d, want %d", tt.haystack, tt.needle, got, tt.want)
			}
		})
	}
}

func TestMemchrMatchesIndexByte(t *testing.T) {
	hay := []byte("the quick brown fox jumps over the lazy dog 0123456789 \x80\x81\xfe")
	for c := 0; c < 256; c++ {
		for start := 0; start < 16; start++ {
			want := bytes.IndexByte(hay[start:], byte(c))
			if got := Memchr(hay[start:], byte(c)); got != want {
				t.Fatalf("Memchr(hay[%d:], %#x) = %d, want %d", start, c, got, want)
			}
		}
	}
}

func TestMemchr2(t *testing.T) {
	hay := []byte("zzzzzzzzzzzzzzzzzzAzzzzazzz")
	if got := Memchr2(hay, 'a', 'A'); got != 18 {
		t.Errorf("Memchr2 = %d, want 18", got)
	}
	if got := Memchr2(hay, 'q', 'Q'); got != -1 {
		t.Errorf("Memchr2 = %d, want -1", got)
	}
	if got := Memchr2([]byte("xb"), 'a', 'b'); got != 1 {
		t.Errorf("Memchr2 short = %d, want 1", got)
	}
}

func TestMemchr3(t *testing.T) {
	hay := []byte("..........\r.....\n")
	if got := Memchr3(hay, '\n', '\r', 0x85); got != 10 {
		t.Errorf("Memchr3 = %d, want 10", got)
	}
	if got := Memchr3([]byte("abc"), 'x', 'y', 'z'); got != -1 {
		t.Errorf("Memchr3 = %d, want -1", got)
	}
}

func TestMemchrInTable(t *testing.T) {
	var table [256]bool
	table['7'] = true
	table['q'] = true
	tests := []struct {
		haystack string
		want     int
	}{
		{"", -1},
		{"abc", -1},
		{"ab7", 2},
		{"abcdefgq", 7},
		{"abcdefghijk7", 11},
	}
	for _, tt := range tests {
		if got := MemchrInTable([]byte(tt.haystack), &table); got != tt.want {
			t.Errorf("MemchrInTable(%q) = %d, want %d", tt.haystack, got, tt.want)
		}
	}
}

func TestMemmem(t *testing.T) {
	tests := []struct {
		haystack, needle string
	}{
		{"hello world", "world"},
		{"hello world", "xyz"},
		{"aaaaaabaaaa", "aab"},
		{"abc", ""},
		{"", "a"},
		{"ab", "abc"},
		{"abababababababababx", "abx"},
		{"QzQzQzQzQzQ@Q", "Q@"},
		{strings.Repeat("ab", 40) + "Zab", "bZa"},
	}
	for _, tt := range tests {
		want := strings.Index(tt.haystack, tt.needle)
		if got := Memmem([]byte(tt.haystack), []byte(tt.needle)); got != want {
			t.Errorf("Memmem(%q, %q) = %d, want %d", tt.haystack, tt.needle, got, want)
		}
	}
}

func TestRareByte(t *testing.T) {
	b, i := RareByte([]byte("eeZe"))
	if b != 'Z' || i != 2 {
		t.Errorf("RareByte = (%q, %d), want ('Z', 2)", b, i)
	}
	if _, i := RareByte(nil); i != -1 {
		t.Errorf("RareByte(nil) index = %d, want -1", i)
	}
}

func TestFirstNonASCII(t *testing.T) {
	tests := []struct {
		data string
		want int
	}{
		{"", -1},
		{"plain ascii text here", -1},
		{"abc\xc3\xa9", 3},
		{"0123456789abcdef\xe2\x82\xac", 16},
	}
	for _, tt := range tests {
		if got := FirstNonASCII([]byte(tt.data)); got != tt.want {
			t.Errorf("FirstNonASCII(%q) = %d, want %d", tt.data, got, tt.want)
		}
	}
}

func BenchmarkMemchr(b *testing.B) {
	hay := bytes.Repeat([]byte("abcdefghijklmnop"), 4096)
	hay = append(hay, 'Z')
	b.SetBytes(int64(len(hay)))
	for i := 0; i < b.N; i++ {
		Memchr(hay, 'Z')
	}
}

func BenchmarkMemmem(b *testing.B) {
	hay := bytes.Repeat([]byte("the quick brown fox "), 2048)
	hay = append(hay, "jumps@over"...)
	needle := []byte("@over")
	b.SetBytes(int64(len(hay)))
	for i := 0; i < b.N; i++ {
		Memmem(hay, needle)
	}
}
