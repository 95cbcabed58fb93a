// Package ucd answers the Unicode questions a matcher asks about a single
// code point: property membership, case-fold equivalents, horizontal and
// vertical white space, and extended grapheme cluster extent.
package ucd

import (
	"sort"
	"unicode"

	"github.com/clipperhouse/uax29/v2/graphemes"
)

// PropKind identifies how a Prop is evaluated.
type PropKind uint8

const (
	// PropAny matches every code point.
	PropAny PropKind = iota
	// PropLAmp is L&: upper, lower or title case letters.
	PropLAmp
	// PropTable tests membership in a category or script table.
	PropTable
	// PropAlnum is Xan: letters and numbers.
	PropAlnum
	// PropSpace is Xsp and Xps: separators plus the ASCII space controls.
	PropSpace
	// PropWord is Xwd: letters, numbers and underscore.
	PropWord
	// PropUCN is Xuc: characters expressible as universal character names.
	PropUCN
)

// Prop is a resolved \p{...} property test.
type Prop struct {
	Kind    PropKind
	Table   *unicode.RangeTable
	Negated bool
	Name    string
}

// Match reports whether r has the property, honoring Negated.
func (p Prop) Match(r rune) bool {
	return p.has(r) != p.Negated
}

func (p Prop) has(r rune) bool {
	switch p.Kind {
	case PropAny:
		return true
	case PropLAmp:
		return unicode.In(r, unicode.Lu, unicode.Ll, unicode.Lt)
	case PropTable:
		return unicode.Is(p.Table, r)
	case PropAlnum:
		return unicode.IsLetter(r) || unicode.IsNumber(r)
	case PropSpace:
		return IsSpace(r)
	case PropWord:
		return IsWord(r)
	case PropUCN:
		return r == '$' || r == '@' || r == '`' ||
			(r >= 0xa0 && r <= 0xd7ff) || r >= 0xe000
	}
	return false
}

// Lookup resolves a property name as written inside \p{...}. Names are
// case sensitive: general categories ("L", "Lu"), "L&", scripts ("Greek"),
// "Any", and the specials Xan, Xps, Xsp, Xwd and Xuc.
func Lookup(name string) (Prop, bool) {
	switch name {
	case "Any":
		return Prop{Kind: PropAny, Name: name}, true
	case "L&", "LC":
		return Prop{Kind: PropLAmp, Name: name}, true
	case "Xan":
		return Prop{Kind: PropAlnum, Name: name}, true
	case "Xps", "Xsp":
		return Prop{Kind: PropSpace, Name: name}, true
	case "Xwd":
		return Prop{Kind: PropWord, Name: name}, true
	case "Xuc":
		return Prop{Kind: PropUCN, Name: name}, true
	}
	if t, ok := unicode.Categories[name]; ok {
		return Prop{Kind: PropTable, Table: t, Name: name}, true
	}
	if t, ok := unicode.Scripts[name]; ok {
		return Prop{Kind: PropTable, Table: t, Name: name}, true
	}
	return Prop{}, false
}

// IsWord reports whether r is a word character in Unicode mode.
func IsWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// IsSpace reports whether r is white space in Unicode mode.
func IsSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return unicode.In(r, unicode.Z)
}

// IsDigit reports whether r is a decimal digit in Unicode mode.
func IsDigit(r rune) bool {
	return unicode.Is(unicode.Nd, r)
}

var hspace = []rune{
	0x09, 0x20, 0xa0, 0x1680, 0x180e,
	0x2000, 0x2001, 0x2002, 0x2003, 0x2004, 0x2005, 0x2006,
	0x2007, 0x2008, 0x2009, 0x200a, 0x202f, 0x205f, 0x3000,
}

// HSpace lists the horizontal white space code points in ascending order.
func HSpace() []rune { return hspace }

// IsHSpace reports whether r is horizontal white space (\h).
func IsHSpace(r rune) bool {
	i := sort.Search(len(hspace), func(i int) bool { return hspace[i] >= r })
	return i < len(hspace) && hspace[i] == r
}

// IsVSpace reports whether r is vertical white space (\v).
func IsVSpace(r rune) bool {
	return (r >= 0x0a && r <= 0x0d) || r == 0x85 || r == 0x2028 || r == 0x2029
}

// Fold returns the other members of r's simple case-fold orbit, or nil
// when r has no other case.
func Fold(r rune) []rune {
	var out []rune
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		out = append(out, f)
	}
	return out
}

// EqualFold reports whether a and b belong to the same case-fold orbit.
func EqualFold(a, b rune) bool {
	if a == b {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}

// GraphemeLen returns the byte length of the extended grapheme cluster at
// the start of b, or 0 when b is empty.
func GraphemeLen(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	n, _, err := graphemes.SplitFunc(b, true)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
