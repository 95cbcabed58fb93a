package backtrack

import (
	"github.com/coregx/pcrex/chartables"
	"github.com/coregx/pcrex/prog"
	"github.com/coregx/pcrex/syntax"
	"github.com/coregx/pcrex/ucd"
)

type itemState uint8

const (
	itemNoMatch itemState = iota
	itemMatch
	itemAbort // hard partial match
)

// one matches it at p < end and returns the position after the match.
func (m *matcher) one(it *prog.Item, p int) (int, itemState) {
	c, n := m.char(p)
	next := p + n
	switch it.Kind {
	case prog.ItemChar:
		if c == it.Char || hasRune(it.Folds, c) {
			return next, itemMatch
		}
	case prog.ItemNot:
		if c != it.Char && !hasRune(it.Folds, c) {
			return next, itemMatch
		}
	case prog.ItemClass:
		if m.classHas(it.Class, c) {
			return next, itemMatch
		}
	case prog.ItemProp:
		if it.Prop.Match(c) {
			return next, itemMatch
		}
	case prog.ItemType:
		return m.oneType(it.Type, p, c, next)
	}
	return p, itemNoMatch
}

func hasRune(rs []rune, c rune) bool {
	for _, r := range rs {
		if r == c {
			return true
		}
	}
	return false
}

func (m *matcher) classHas(cls *prog.Class, c rune) bool {
	if c < 256 {
		return cls.HasByte(byte(c))
	}
	hit := false
	for _, r := range cls.Ranges {
		if c >= r.Lo && c <= r.Hi {
			hit = true
			break
		}
	}
	for _, t := range cls.Types {
		if hit {
			break
		}
		hit = m.typeHas(t, c)
	}
	for _, p := range cls.Props {
		if hit {
			break
		}
		hit = p.Match(c)
	}
	return hit != cls.Negated
}

// typeHas reports whether the class-compatible type t contains c.
func (m *matcher) typeHas(t prog.CharType, c rune) bool {
	ctype := func(flag uint8) bool {
		return c < 256 && m.tables.CTypes[c]&flag != 0
	}
	switch t {
	case prog.TypeDigit:
		return ctype(chartables.Digit)
	case prog.TypeNotDigit:
		return !ctype(chartables.Digit)
	case prog.TypeSpace:
		return ctype(chartables.Space)
	case prog.TypeNotSpace:
		return !ctype(chartables.Space)
	case prog.TypeWord:
		return ctype(chartables.Word)
	case prog.TypeNotWord:
		return !ctype(chartables.Word)
	case prog.TypeHSpace:
		return ucd.IsHSpace(c)
	case prog.TypeNotHSpace:
		return !ucd.IsHSpace(c)
	case prog.TypeVSpace:
		return ucd.IsVSpace(c)
	case prog.TypeNotVSpace:
		return !ucd.IsVSpace(c)
	case prog.TypeAllAny, prog.TypeAny:
		return true
	}
	return false
}

func (m *matcher) oneType(t prog.CharType, p int, c rune, next int) (int, itemState) {
	switch t {
	case prog.TypeAny:
		if _, ok := m.newlineAt(p); ok {
			return p, itemNoMatch
		}
		if m.crlfPartial(p) && m.setHit() {
			return p, itemAbort
		}
		return next, itemMatch
	case prog.TypeAllAny:
		return next, itemMatch
	case prog.TypeAnyByte:
		return p + 1, itemMatch
	case prog.TypeAnyNL:
		return m.anyNewline(p, c, next)
	case prog.TypeExtUni:
		next = p + m.clusterLen(p)
		if m.check(next) {
			return p, itemAbort
		}
		return next, itemMatch
	}
	if m.typeHas(t, c) {
		return next, itemMatch
	}
	return p, itemNoMatch
}

// anyNewline matches \R.
func (m *matcher) anyNewline(p int, c rune, next int) (int, itemState) {
	switch c {
	case '\n':
		return next, itemMatch
	case '\r':
		if next >= m.end {
			if m.scheck(next) {
				return p, itemAbort
			}
		} else if m.subject[next] == '\n' {
			next++
		}
		return next, itemMatch
	case '\v', '\f', 0x85, 0x2028, 0x2029:
		if m.bsr == syntax.BSRAnyCRLF {
			return p, itemNoMatch
		}
		return next, itemMatch
	}
	return p, itemNoMatch
}

// clusterLen returns the length of the extended grapheme cluster at p.
func (m *matcher) clusterLen(p int) int {
	if m.utf {
		return max(ucd.GraphemeLen(m.subject[p:m.end]), 1)
	}
	if m.subject[p] == '\r' && p+1 < m.end && m.subject[p+1] == '\n' {
		return 2
	}
	return 1
}

// isWord reports whether c is a word character for \b and \B.
func (m *matcher) isWord(c rune) bool {
	if m.ucp {
		return ucd.IsWord(c)
	}
	return c < 256 && m.tables.CTypes[c]&chartables.Word != 0
}
