// Package chartables provides the per-locale byte tables used by the
// matcher for case folding and character-type tests on code points below
// 256.
//
// A Tables value is read-only once built and may be shared by any number
// of compiled programs and concurrent matches.
package chartables

import (
	"sync"
	"unicode"
)

// Character type flags stored in Tables.CTypes.
const (
	Space  uint8 = 0x01
	Letter uint8 = 0x02
	Digit  uint8 = 0x04
	XDigit uint8 = 0x08
	Word   uint8 = 0x10
	Meta   uint8 = 0x80 // regex metacharacter
)

// Offsets of the 32-byte class bitmaps inside Tables.CBits.
const (
	CBitSpace  = 0
	CBitXDigit = 32
	CBitDigit  = 64
	CBitUpper  = 96
	CBitLower  = 128
	CBitWord   = 160
	CBitGraph  = 192
	CBitPrint  = 224
	CBitPunct  = 256
	CBitCntrl  = 288
	CBitLength = 320
)

// Tables is a complete set of character tables for one locale.
type Tables struct {
	// LCC maps each byte to its lower-case form.
	LCC [256]byte
	// FCC maps each byte to its other case (identity when there is none).
	FCC [256]byte
	// CBits holds ten 256-bit class bitmaps at the CBit* offsets.
	CBits [CBitLength]byte
	// CTypes holds the type flags of each byte.
	CTypes [256]uint8
}

// Locale classifies bytes the way a C library locale does.
type Locale interface {
	IsUpper(c byte) bool
	IsLower(c byte) bool
	IsDigit(c byte) bool
	IsXDigit(c byte) bool
	IsSpace(c byte) bool
	IsAlnum(c byte) bool
	IsGraph(c byte) bool
	IsPrint(c byte) bool
	IsPunct(c byte) bool
	IsCntrl(c byte) bool
	ToLower(c byte) byte
	ToUpper(c byte) byte
}

// Make builds tables from a locale classifier.
func Make(l Locale) *Tables {
	t := &Tables{}
	for i := 0; i < 256; i++ {
		c := byte(i)
		t.LCC[i] = l.ToLower(c)
		switch {
		case l.IsLower(c):
			t.FCC[i] = l.ToUpper(c)
		case l.IsUpper(c):
			t.FCC[i] = l.ToLower(c)
		default:
			t.FCC[i] = c
		}

		if l.IsDigit(c) {
			t.setBit(CBitDigit, c)
			t.setBit(CBitWord, c)
		}
		if l.IsUpper(c) {
			t.setBit(CBitUpper, c)
			t.setBit(CBitWord, c)
		}
		if l.IsLower(c) {
			t.setBit(CBitLower, c)
			t.setBit(CBitWord, c)
		}
		if c == '_' {
			t.setBit(CBitWord, c)
		}
		if l.IsSpace(c) {
			t.setBit(CBitSpace, c)
		}
		if l.IsXDigit(c) {
			t.setBit(CBitXDigit, c)
		}
		if l.IsGraph(c) {
			t.setBit(CBitGraph, c)
		}
		if l.IsPrint(c) {
			t.setBit(CBitPrint, c)
		}
		if l.IsPunct(c) {
			t.setBit(CBitPunct, c)
		}
		if l.IsCntrl(c) {
			t.setBit(CBitCntrl, c)
		}

		var x uint8
		if l.IsSpace(c) {
			x |= Space
		}
		if l.IsUpper(c) || l.IsLower(c) {
			x |= Letter
		}
		if l.IsDigit(c) {
			x |= Digit
		}
		if l.IsXDigit(c) {
			x |= XDigit
		}
		if l.IsAlnum(c) || c == '_' {
			x |= Word
		}
		if isMeta(c) {
			x |= Meta
		}
		t.CTypes[i] = x
	}
	return t
}

func isMeta(c byte) bool {
	switch c {
	case '\\', '*', '+', '?', '{', '^', '.', '$', '|', '(', ')', '[':
		return true
	}
	return false
}

func (t *Tables) setBit(offset int, c byte) {
	t.CBits[offset+int(c)/8] |= 1 << (c % 8)
}

// Is reports whether byte c carries all of the given type flags.
func (t *Tables) Is(c byte, flags uint8) bool {
	return t.CTypes[c]&flags == flags
}

// InClass reports whether c is set in the class bitmap at offset.
func (t *Tables) InClass(offset int, c byte) bool {
	return t.CBits[offset+int(c)/8]&(1<<(c%8)) != 0
}

// Lower returns the lower-case form of c.
func (t *Tables) Lower(c byte) byte { return t.LCC[c] }

// Flip returns the other case of c, or c itself.
func (t *Tables) Flip(c byte) byte { return t.FCC[c] }

var (
	defaultOnce   sync.Once
	defaultTables *Tables
	latin1Once    sync.Once
	latin1Tables  *Tables
)

// Default returns the shared C-locale tables.
func Default() *Tables {
	defaultOnce.Do(func() { defaultTables = Make(CLocale{}) })
	return defaultTables
}

// Latin1 returns the shared ISO-8859-1 tables.
func Latin1() *Tables {
	latin1Once.Do(func() { latin1Tables = Make(Latin1Locale{}) })
	return latin1Tables
}

// CLocale classifies bytes as the "C" locale does: only ASCII has
// letters, digits and spaces.
type CLocale struct{}

func (CLocale) IsUpper(c byte) bool  { return c >= 'A' && c <= 'Z' }
func (CLocale) IsLower(c byte) bool  { return c >= 'a' && c <= 'z' }
func (CLocale) IsDigit(c byte) bool  { return c >= '0' && c <= '9' }
func (CLocale) IsSpace(c byte) bool  { return c == ' ' || (c >= '\t' && c <= '\r') }
func (CLocale) IsCntrl(c byte) bool  { return c < 0x20 || c == 0x7f }
func (CLocale) IsGraph(c byte) bool  { return c > 0x20 && c < 0x7f }
func (CLocale) IsPrint(c byte) bool  { return c >= 0x20 && c < 0x7f }
func (l CLocale) IsAlnum(c byte) bool { return l.IsUpper(c) || l.IsLower(c) || l.IsDigit(c) }
func (l CLocale) IsPunct(c byte) bool { return l.IsGraph(c) && !l.IsAlnum(c) }

func (l CLocale) IsXDigit(c byte) bool {
	return l.IsDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (l CLocale) ToLower(c byte) byte {
	if l.IsUpper(c) {
		return c + 'a' - 'A'
	}
	return c
}

func (l CLocale) ToUpper(c byte) byte {
	if l.IsLower(c) {
		return c - ('a' - 'A')
	}
	return c
}

// Latin1Locale classifies bytes as ISO-8859-1 code points.
type Latin1Locale struct{}

func (Latin1Locale) IsUpper(c byte) bool { return unicode.IsUpper(rune(c)) }
func (Latin1Locale) IsLower(c byte) bool { return unicode.IsLower(rune(c)) }
func (Latin1Locale) IsDigit(c byte) bool { return c >= '0' && c <= '9' }
func (Latin1Locale) IsSpace(c byte) bool {
	return c == ' ' || (c >= '\t' && c <= '\r') || c == 0x85 || c == 0xa0
}
func (Latin1Locale) IsCntrl(c byte) bool { return unicode.IsControl(rune(c)) }
func (Latin1Locale) IsGraph(c byte) bool { return unicode.IsGraphic(rune(c)) && c != ' ' && c != 0xa0 }
func (Latin1Locale) IsPrint(c byte) bool { return unicode.IsPrint(rune(c)) || c == 0xa0 }
func (Latin1Locale) IsPunct(c byte) bool {
	r := rune(c)
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
func (l Latin1Locale) IsAlnum(c byte) bool {
	return unicode.IsLetter(rune(c)) || l.IsDigit(c)
}
func (l Latin1Locale) IsXDigit(c byte) bool { return CLocale{}.IsXDigit(c) }

func (Latin1Locale) ToLower(c byte) byte {
	if r := unicode.ToLower(rune(c)); r < 256 {
		return byte(r)
	}
	return c
}

func (Latin1Locale) ToUpper(c byte) byte {
	if r := unicode.ToUpper(rune(c)); r < 256 {
		return byte(r)
	}
	return c
}
