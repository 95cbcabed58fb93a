package backtrack

import (
	"unicode/utf8"

	"github.com/coregx/pcrex/simd"
	"github.com/coregx/pcrex/syntax"
)

// char decodes the character at p.
func (m *matcher) char(p int) (rune, int) {
	b := m.subject[p]
	if b < utf8.RuneSelf || !m.utf {
		return rune(b), 1
	}
	return utf8.DecodeRune(m.subject[p:m.end])
}

// back returns the start of the character before p.
func (m *matcher) back(p int) int {
	p--
	if m.utf {
		for p > 0 && m.subject[p]&0xc0 == 0x80 {
			p--
		}
	}
	return p
}

// forward returns the start of the character after p.
func (m *matcher) forward(p int) int {
	p++
	if m.utf {
		for p < m.end && m.subject[p]&0xc0 == 0x80 {
			p++
		}
	}
	return p
}

// newlineAt reports whether a newline starts at p and its length.
func (m *matcher) newlineAt(p int) (int, bool) {
	if p >= m.end {
		return 0, false
	}
	s := m.subject
	c := s[p]
	switch m.newline {
	case syntax.NewlineLF:
		return 1, c == '\n'
	case syntax.NewlineCR:
		return 1, c == '\r'
	case syntax.NewlineCRLF:
		return 2, c == '\r' && p+1 < m.end && s[p+1] == '\n'
	}
	switch c {
	case '\n':
		return 1, true
	case '\r':
		if p+1 < m.end && s[p+1] == '\n' {
			return 2, true
		}
		return 1, true
	}
	if m.newline == syntax.NewlineAnyCRLF {
		return 0, false
	}
	return m.unicodeNewlineAt(p)
}

// unicodeNewlineAt recognises VT, FF, NEL, LS and PS at p.
func (m *matcher) unicodeNewlineAt(p int) (int, bool) {
	s := m.subject
	switch c := s[p]; {
	case c == '\v' || c == '\f':
		return 1, true
	case !m.utf:
		return 1, c == 0x85
	case c == 0xc2:
		return 2, p+1 < m.end && s[p+1] == 0x85
	case c == 0xe2:
		return 3, p+2 < m.end && s[p+1] == 0x80 && (s[p+2] == 0xa8 || s[p+2] == 0xa9)
	}
	return 0, false
}

// wasNewline reports whether a newline ends just before p.
func (m *matcher) wasNewline(p int) bool {
	if p <= 0 {
		return false
	}
	s := m.subject
	c := s[p-1]
	switch m.newline {
	case syntax.NewlineLF:
		return c == '\n'
	case syntax.NewlineCR:
		return c == '\r'
	case syntax.NewlineCRLF:
		return c == '\n' && p >= 2 && s[p-2] == '\r'
	}
	if c == '\n' || c == '\r' {
		return true
	}
	if m.newline == syntax.NewlineAnyCRLF {
		return false
	}
	switch {
	case c == '\v' || c == '\f':
		return true
	case !m.utf:
		return c == 0x85
	case c == 0x85:
		return p >= 2 && s[p-2] == 0xc2
	case c == 0xa8 || c == 0xa9:
		return p >= 3 && s[p-3] == 0xe2 && s[p-2] == 0x80
	}
	return false
}

// lineEnd returns the position of the first newline at or after p, or the
// end of the subject.
func (m *matcher) lineEnd(p int) int {
	for p < m.end {
		q := m.newlineCandidate(p)
		if q < 0 {
			break
		}
		if _, ok := m.newlineAt(q); ok {
			return q
		}
		p = q + 1
	}
	return m.end
}

// newlineCandidate returns the first position at or after p that can start
// a newline, or -1.
func (m *matcher) newlineCandidate(p int) int {
	var i int
	switch hay := m.subject[p:m.end]; m.newline {
	case syntax.NewlineLF:
		i = simd.Memchr(hay, '\n')
	case syntax.NewlineCR, syntax.NewlineCRLF:
		i = simd.Memchr(hay, '\r')
	case syntax.NewlineAnyCRLF:
		i = simd.Memchr2(hay, '\r', '\n')
	default:
		return p
	}
	if i < 0 {
		return -1
	}
	return p + i
}

// setHit records that the subject end was reached and reports whether the
// match must be abandoned with a hard partial result.
func (m *matcher) setHit() bool {
	m.hitEnd = true
	return m.partial == partialHard
}

// scheck is called at the end of the subject: in partial mode, reaching it
// after inspecting some character is a partial match.
func (m *matcher) scheck(p int) bool {
	return m.partial != partialNone && p > m.startUsed && m.setHit()
}

// check is scheck for a position that may be before the end.
func (m *matcher) check(p int) bool {
	return p >= m.end && m.scheck(p)
}

// crlfPartial handles a CR as the last character when the newline is
// CRLF: the LF that would complete it may follow.
func (m *matcher) crlfPartial(p int) bool {
	return m.partial != partialNone && m.newline == syntax.NewlineCRLF &&
		p < m.end && p+1 >= m.end && m.subject[p] == '\r'
}

// abortPartial ends the current attempt with a hard partial result.
func (m *matcher) abortPartial(f *frame) action {
	return f.done(m.failWith(ErrPartial))
}
