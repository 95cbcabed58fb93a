package backtrack

import (
	"github.com/coregx/pcrex/prog"
	"github.com/coregx/pcrex/syntax"
	"github.com/coregx/pcrex/ucd"
)

// Results of matchRef besides a length.
const (
	refUnset   = -1 // the group is unset, or the text differs
	refPartial = -2 // the subject ended inside the reference
)

// refGroup returns the start and length of the text captured by the group
// a back reference names. The length is -1 for an unset group, or 0 in
// JavaScript compatibility mode.
func (m *matcher) refGroup(f *frame, in *prog.Inst) (start, length int) {
	length = refUnset
	if m.prog.Flags&syntax.JavaScriptCompat != 0 {
		length = 0
	}
	if in.Op == prog.OpRef {
		o := 2 * int(in.Group)
		if o < f.offsetTop && m.ovec[o] >= 0 {
			return m.ovec[o], m.ovec[o+1] - m.ovec[o]
		}
		return 0, length
	}
	for _, g := range in.Groups {
		if o := 2 * g; o < f.offsetTop && m.ovec[o] >= 0 {
			return m.ovec[o], m.ovec[o+1] - m.ovec[o]
		}
	}
	return 0, length
}

// matchRef compares the length bytes of captured text at ref with the
// subject at p. It returns the number of subject bytes matched, refUnset
// on a mismatch or unset group, or refPartial when the subject ran out.
func (m *matcher) matchRef(ref, p, length int, caseless bool) int {
	if length < 0 {
		return refUnset
	}
	s := m.subject
	start := p
	switch {
	case caseless && m.utf:
		end := ref + length
		for ref < end {
			if p >= m.end {
				return refPartial
			}
			c, n := m.char(p)
			d, dn := m.char(ref)
			if c != d && !ucd.EqualFold(c, d) {
				return refUnset
			}
			p += n
			ref += dn
		}
	case caseless:
		lcc := &m.tables.LCC
		for ; length > 0; length-- {
			if p >= m.end {
				return refPartial
			}
			if lcc[s[ref]] != lcc[s[p]] {
				return refUnset
			}
			ref++
			p++
		}
	default:
		for ; length > 0; length-- {
			if p >= m.end {
				return refPartial
			}
			if s[ref] != s[p] {
				return refUnset
			}
			ref++
			p++
		}
	}
	return p - start
}

// refFail handles a failed back reference match.
func (m *matcher) refFail(f *frame, n int) action {
	if n == refPartial {
		f.eptr = m.end
	}
	if m.check(f.eptr) {
		return m.abortPartial(f)
	}
	return f.fail()
}

// backref executes Ref and DNRef together with their repeat.
func (m *matcher) backref(f *frame, in *prog.Inst) action {
	f.ref, f.length = m.refGroup(f, in)
	if in.Min == 1 && in.Max == 1 {
		n := m.matchRef(f.ref, f.eptr, f.length, in.Caseless)
		if n < 0 {
			return m.refFail(f, n)
		}
		f.eptr += n
		f.pc++
		return actContinue
	}
	if f.length == 0 || (f.length < 0 && in.Min == 0) {
		f.pc++
		return actContinue
	}
	for range in.Min {
		n := m.matchRef(f.ref, f.eptr, f.length, in.Caseless)
		if n < 0 {
			return m.refFail(f, n)
		}
		f.eptr += n
	}
	if in.Min == in.Max {
		f.pc++
		return actContinue
	}
	if in.Mode == syntax.Lazy {
		f.fi = in.Min
		return m.descend(f, resRefLazy, f.eptr, f.pc+1)
	}
	f.pp = f.eptr
	for i := in.Min; in.Max == prog.Unlimited || i < in.Max; i++ {
		n := m.matchRef(f.ref, f.eptr, f.length, in.Caseless)
		if n < 0 {
			if n == refPartial && m.partial != partialNone && m.end > m.startUsed && m.setHit() {
				return m.abortPartial(f)
			}
			break
		}
		f.eptr += n
	}
	if in.Mode == syntax.Possessive {
		f.pc++
		return actContinue
	}
	return m.refBackoff(f)
}

func (m *matcher) refBackoff(f *frame) action {
	if f.eptr < f.pp {
		return f.fail()
	}
	return m.descend(f, resRefGreedy, f.eptr, f.pc+1)
}

func (m *matcher) resumeRef(f *frame, at resumePoint, rv result) action {
	if rv.sig != sigNoMatch {
		return f.done(rv)
	}
	in := &m.insts[f.pc]
	if at == resRefGreedy {
		f.eptr -= f.length
		return m.refBackoff(f)
	}
	if in.Max != prog.Unlimited && f.fi >= in.Max {
		return f.fail()
	}
	n := m.matchRef(f.ref, f.eptr, f.length, in.Caseless)
	if n < 0 {
		return m.refFail(f, n)
	}
	f.eptr += n
	f.fi++
	return m.descend(f, resRefLazy, f.eptr, f.pc+1)
}
