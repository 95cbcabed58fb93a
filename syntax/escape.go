package syntax

import (
	"strings"
	"unicode/utf8"

	"github.com/coregx/pcrex/ucd"
)

var escapeTypes = map[byte]Type{
	'd': TypeDigit, 'D': TypeNotDigit,
	's': TypeSpace, 'S': TypeNotSpace,
	'w': TypeWord, 'W': TypeNotWord,
	'h': TypeHSpace, 'H': TypeNotHSpace,
	'v': TypeVSpace, 'V': TypeNotVSpace,
	'R': TypeNewlineSeq, 'X': TypeCluster,
	'N': TypeNotNewline, 'C': TypeAnyByte,
}

var escapeAnchors = map[byte]Anchor{
	'A': AnchorStart, 'G': AnchorMatchStart, 'K': AnchorKeep,
	'b': AnchorWordBoundary, 'B': AnchorNotWordBoundary,
	'z': AnchorEnd, 'Z': AnchorEndOptNewline,
}

// parseEscape parses a backslash sequence outside a class.
//
//nolint:gocyclo,cyclop // one case per escape letter
func (p *parser) parseEscape() (*Node, error) {
	start := p.pos
	p.pos++
	if p.pos >= len(p.src) {
		return nil, p.errorAt(ErrTrailingBackslash, start)
	}
	c := p.src[p.pos]
	switch {
	case c == 'Q':
		p.pos++
		p.quoting = true
		return nil, nil
	case c == 'E':
		p.pos++
		return nil, nil
	case c == 'N' && strings.HasPrefix(p.src[p.pos+1:], "{"):
		return nil, p.errorAt(ErrUnsupportedEscape, start)
	case c == 'p' || c == 'P':
		prop, err := p.parseProp()
		if err != nil {
			return nil, err
		}
		return &Node{Op: OpProp, Prop: prop, Flags: p.flags, Pos: start}, nil
	case c == 'g':
		return p.parseG(start)
	case c == 'k':
		p.pos++
		if p.pos >= len(p.src) {
			return nil, p.errorAt(ErrBadKReference, start)
		}
		term, ok := closing(p.src[p.pos])
		if !ok {
			return nil, p.errorAt(ErrBadKReference, start)
		}
		p.pos++
		name, err := p.readName(term)
		if err != nil {
			return nil, err
		}
		return p.backrefByName(name, start), nil
	case c >= '1' && c <= '9':
		end := p.pos
		for end < len(p.src) && p.src[end] >= '0' && p.src[end] <= '9' {
			end++
		}
		n := atoiClamp(p.src[p.pos:end])
		if n < 10 || n <= p.prescan {
			p.pos = end
			return p.backref(n, start), nil
		}
		if c >= '8' {
			p.pos++
			return p.literal(rune(c), start), nil
		}
		return p.literal(p.readOctal(3), start), nil
	}
	if t, ok := escapeTypes[c]; ok {
		p.pos++
		return &Node{Op: OpType, Type: t, Flags: p.flags, Pos: start}, nil
	}
	if a, ok := escapeAnchors[c]; ok {
		p.pos++
		return &Node{Op: OpAnchor, Anchor: a, Flags: p.flags, Pos: start}, nil
	}
	r, err := p.parseCharEscape(start)
	if err != nil {
		return nil, err
	}
	return p.literal(r, start), nil
}

func closing(open byte) (byte, bool) {
	switch open {
	case '<':
		return '>', true
	case '\'':
		return '\'', true
	case '{':
		return '}', true
	}
	return 0, false
}

// parseG parses \g back references and \g<...> subroutine calls.
func (p *parser) parseG(start int) (*Node, error) {
	p.pos++
	if p.pos >= len(p.src) {
		return nil, p.errorAt(ErrBadGReference, start)
	}
	switch open := p.src[p.pos]; open {
	case '<', '\'':
		term, _ := closing(open)
		p.pos++
		if n, sign, ok := p.readNumber(); ok {
			idx, err := p.relative(n, sign, start)
			if err != nil {
				return nil, err
			}
			if err := p.expect(term, ErrBadGReference, start); err != nil {
				return nil, err
			}
			return p.recurse(idx, start), nil
		}
		name, err := p.readName(term)
		if err != nil {
			return nil, err
		}
		return p.recurseByName(name, start), nil
	case '{':
		p.pos++
		if n, sign, ok := p.readNumber(); ok {
			if sign == '+' {
				return nil, p.errorAt(ErrBadGReference, start)
			}
			idx, err := p.relative(n, sign, start)
			if err != nil {
				return nil, err
			}
			if idx == 0 {
				return nil, p.errorAt(ErrBadReference, start)
			}
			if err := p.expect('}', ErrBadGReference, start); err != nil {
				return nil, err
			}
			return p.backref(idx, start), nil
		}
		name, err := p.readName('}')
		if err != nil {
			return nil, err
		}
		return p.backrefByName(name, start), nil
	}
	n, sign, ok := p.readNumber()
	if !ok || sign == '+' {
		return nil, p.errorAt(ErrBadGReference, start)
	}
	idx, err := p.relative(n, sign, start)
	if err != nil {
		return nil, err
	}
	if idx == 0 {
		return nil, p.errorAt(ErrBadReference, start)
	}
	return p.backref(idx, start), nil
}

// parseProp parses \p or \P with p.pos at the letter.
func (p *parser) parseProp() (ucd.Prop, error) {
	start := p.pos - 1
	negated := p.src[p.pos] == 'P'
	p.pos++
	if p.pos >= len(p.src) {
		return ucd.Prop{}, p.errorAt(ErrBadProperty, start)
	}
	var name string
	if p.src[p.pos] == '{' {
		end := strings.IndexByte(p.src[p.pos:], '}')
		if end < 0 {
			return ucd.Prop{}, p.errorAt(ErrBadProperty, start)
		}
		name = p.src[p.pos+1 : p.pos+end]
		p.pos += end + 1
		if strings.HasPrefix(name, "^") {
			negated = !negated
			name = name[1:]
		}
	} else {
		name = p.src[p.pos : p.pos+1]
		p.pos++
	}
	prop, ok := ucd.Lookup(name)
	if !ok {
		return ucd.Prop{}, p.errorAt(ErrUnknownProperty, start)
	}
	prop.Negated = negated
	return prop, nil
}

// readOctal reads up to max octal digits.
func (p *parser) readOctal(max int) rune {
	var r rune
	for i := 0; i < max && p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '7'; i++ {
		r = r*8 + rune(p.src[p.pos]-'0')
		p.pos++
	}
	return r
}

func hexValue(c byte) (rune, bool) {
	switch {
	case c >= '0' && c <= '9':
		return rune(c - '0'), true
	case c >= 'a' && c <= 'f':
		return rune(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return rune(c-'A') + 10, true
	}
	return 0, false
}

// parseCharEscape parses an escape that stands for a single character,
// with p.pos at the character after the backslash.
//
//nolint:gocyclo,cyclop // one case per escape letter
func (p *parser) parseCharEscape(start int) (rune, error) {
	c := p.src[p.pos]
	p.pos++
	var r rune
	switch c {
	case 'a':
		r = 7
	case 'e':
		r = 0x1b
	case 'f':
		r = '\f'
	case 'n':
		r = '\n'
	case 'r':
		r = '\r'
	case 't':
		r = '\t'
	case '0':
		r = p.readOctal(2)
	case 'o':
		if p.pos >= len(p.src) || p.src[p.pos] != '{' {
			return 0, p.errorAt(ErrBadEscape, start)
		}
		p.pos++
		digits := p.pos
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '7' {
			r = r*8 + rune(p.src[p.pos]-'0')
			if r > utf8.MaxRune {
				return 0, p.errorAt(ErrCodePointTooBig, start)
			}
			p.pos++
		}
		if p.pos == digits || p.pos >= len(p.src) || p.src[p.pos] != '}' {
			return 0, p.errorAt(ErrBadEscape, start)
		}
		p.pos++
	case 'x':
		if p.pos < len(p.src) && p.src[p.pos] == '{' {
			end := strings.IndexByte(p.src[p.pos:], '}')
			if end > 1 && allHex(p.src[p.pos+1:p.pos+end]) {
				for i := p.pos + 1; i < p.pos+end; i++ {
					v, _ := hexValue(p.src[i])
					r = r*16 + v
					if r > utf8.MaxRune {
						return 0, p.errorAt(ErrCodePointTooBig, start)
					}
				}
				p.pos += end + 1
				break
			}
			// Not a braced value: \x is a NUL and { is literal.
			break
		}
		for i := 0; i < 2 && p.pos < len(p.src); i++ {
			v, ok := hexValue(p.src[p.pos])
			if !ok {
				break
			}
			r = r*16 + v
			p.pos++
		}
	case 'c':
		if p.pos >= len(p.src) || p.src[p.pos] >= 0x80 {
			return 0, p.errorAt(ErrBadControl, start)
		}
		x := p.src[p.pos]
		if x >= 'a' && x <= 'z' {
			x -= 'a' - 'A'
		}
		r = rune(x ^ 0x40)
		p.pos++
	case 'L', 'l', 'U', 'u':
		return 0, p.errorAt(ErrUnsupportedEscape, start)
	default:
		p.pos--
		r = p.nextRune()
	}
	if p.flags&UTF == 0 && r > 0xff {
		return 0, p.errorAt(ErrNonUTFCodePoint, start)
	}
	if r >= 0xd800 && r <= 0xdfff && p.flags&UTF != 0 {
		return 0, p.errorAt(ErrCodePointTooBig, start)
	}
	return r, nil
}

func allHex(s string) bool {
	for i := 0; i < len(s); i++ {
		if _, ok := hexValue(s[i]); !ok {
			return false
		}
	}
	return true
}

var posixNames = map[string]bool{
	"alpha": true, "lower": true, "upper": true, "alnum": true,
	"ascii": true, "blank": true, "cntrl": true, "digit": true,
	"graph": true, "print": true, "punct": true, "space": true,
	"word": true, "xdigit": true,
}

// posixAt reports whether a [:name:] item starts at p.pos and returns
// its length.
func (p *parser) posixAt() (Posix, int, bool) {
	s := p.src[p.pos:]
	if len(s) < 4 || s[0] != '[' || (s[1] != ':' && s[1] != '.' && s[1] != '=') {
		return Posix{}, 0, false
	}
	term := s[1]
	end := strings.Index(s[2:], string(term)+"]")
	if end < 0 || strings.IndexByte(s[2:2+end], ']') >= 0 {
		return Posix{}, 0, false
	}
	name := s[2 : 2+end]
	px := Posix{Name: name}
	if term == ':' && strings.HasPrefix(name, "^") {
		px.Negated = true
		px.Name = name[1:]
	}
	return px, end + 4, true
}

// classItem is one member of a bracket expression before ranges are formed.
type classItem struct {
	isChar bool
	r      rune
	typ    Type
	isType bool
	prop   ucd.Prop
	isProp bool
}

func (p *parser) parseClass() (*Node, error) {
	start := p.pos
	if _, _, ok := p.posixAt(); ok {
		return nil, p.errorAt(ErrPosixOutsideClass, start)
	}
	p.pos++
	cls := &Class{}
	if p.pos < len(p.src) && p.src[p.pos] == '^' {
		cls.Negated = true
		p.pos++
	}
	first := true
	for {
		if p.pos >= len(p.src) {
			return nil, p.errorAt(ErrMissingBracket, start)
		}
		if p.quoting {
			if strings.HasPrefix(p.src[p.pos:], `\E`) {
				p.pos += 2
				p.quoting = false
				continue
			}
		} else {
			if p.src[p.pos] == ']' && !first {
				p.pos++
				break
			}
			if strings.HasPrefix(p.src[p.pos:], `\Q`) {
				p.pos += 2
				p.quoting = true
				continue
			}
			if strings.HasPrefix(p.src[p.pos:], `\E`) {
				p.pos += 2
				continue
			}
			if px, n, ok := p.posixAt(); ok {
				if px.Name == "" || !posixNames[px.Name] || p.src[p.pos+1] != ':' {
					return nil, p.errorAt(ErrBadPosix, p.pos)
				}
				cls.Posix = append(cls.Posix, px)
				p.pos += n
				first = false
				continue
			}
		}
		first = false

		lo, err := p.classAtom()
		if err != nil {
			return nil, err
		}
		if !lo.isChar {
			addClassItem(cls, lo)
			continue
		}
		hasRange := p.pos+1 < len(p.src) && p.src[p.pos] == '-' && p.src[p.pos+1] != ']'
		if !hasRange {
			addClassItem(cls, lo)
			continue
		}
		save := p.pos
		p.pos++
		if _, _, ok := p.posixAt(); ok {
			p.pos = save
			addClassItem(cls, lo)
			continue
		}
		hi, err := p.classAtom()
		if err != nil {
			return nil, err
		}
		if !hi.isChar {
			addClassItem(cls, lo)
			addClassItem(cls, classItem{isChar: true, r: '-'})
			addClassItem(cls, hi)
			continue
		}
		if hi.r < lo.r {
			return nil, p.errorAt(ErrBadRange, save)
		}
		cls.Ranges = append(cls.Ranges, RuneRange{lo.r, hi.r})
	}
	return &Node{Op: OpClass, Class: cls, Flags: p.flags, Pos: start}, nil
}

func addClassItem(cls *Class, it classItem) {
	switch {
	case it.isChar:
		cls.Ranges = append(cls.Ranges, RuneRange{it.r, it.r})
	case it.isType:
		cls.Types = append(cls.Types, it.typ)
	case it.isProp:
		cls.Props = append(cls.Props, it.prop)
	}
}

// classAtom parses one character, type escape or property inside a class.
func (p *parser) classAtom() (classItem, error) {
	if p.quoting || p.src[p.pos] != '\\' {
		return classItem{isChar: true, r: p.nextRune()}, nil
	}
	start := p.pos
	p.pos++
	if p.pos >= len(p.src) {
		return classItem{}, p.errorAt(ErrTrailingBackslash, start)
	}
	c := p.src[p.pos]
	switch c {
	case 'd', 'D', 's', 'S', 'w', 'W', 'h', 'H', 'v', 'V':
		p.pos++
		return classItem{isType: true, typ: escapeTypes[c]}, nil
	case 'p', 'P':
		prop, err := p.parseProp()
		if err != nil {
			return classItem{}, err
		}
		return classItem{isProp: true, prop: prop}, nil
	case 'b':
		p.pos++
		return classItem{isChar: true, r: '\b'}, nil
	case 'A', 'B', 'G', 'K', 'N', 'R', 'X', 'Z', 'z', 'g', 'k', 'C':
		return classItem{}, p.errorAt(ErrBadClassEscape, start)
	case '1', '2', '3', '4', '5', '6', '7':
		return classItem{isChar: true, r: p.readOctal(3)}, nil
	case '8', '9':
		p.pos++
		return classItem{isChar: true, r: rune(c)}, nil
	}
	r, err := p.parseCharEscape(start)
	if err != nil {
		return classItem{}, err
	}
	return classItem{isChar: true, r: r}, nil
}
