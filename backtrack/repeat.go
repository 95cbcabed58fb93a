package backtrack

import (
	"github.com/coregx/pcrex/prog"
	"github.com/coregx/pcrex/syntax"
)

// single matches one occurrence of the item of in at f.eptr, handling the
// end of the subject. ok is false when the frame must stop with a.
func (m *matcher) single(f *frame, it *prog.Item) (a action, ok bool) {
	if f.eptr >= m.end {
		if m.scheck(f.eptr) {
			return m.abortPartial(f), false
		}
		return f.fail(), false
	}
	next, st := m.one(it, f.eptr)
	switch st {
	case itemAbort:
		return m.abortPartial(f), false
	case itemNoMatch:
		return f.fail(), false
	}
	f.eptr = next
	return actContinue, true
}

// repeat executes a single-character repeat.
func (m *matcher) repeat(f *frame, in *prog.Inst) action {
	for range in.Min {
		if a, ok := m.single(f, &in.Item); !ok {
			return a
		}
	}
	if in.Min == in.Max {
		f.pc++
		return actContinue
	}
	if in.Mode == syntax.Lazy {
		f.fi = in.Min
		return m.descend(f, resRepLazy, f.eptr, f.pc+1)
	}
	f.pp = f.eptr
	for i := in.Min; in.Max == prog.Unlimited || i < in.Max; i++ {
		if f.eptr >= m.end {
			if m.scheck(f.eptr) {
				return m.abortPartial(f)
			}
			break
		}
		next, st := m.one(&in.Item, f.eptr)
		if st == itemAbort {
			return m.abortPartial(f)
		}
		if st == itemNoMatch {
			break
		}
		f.eptr = next
	}
	if in.Mode == syntax.Possessive {
		f.pc++
		return actContinue
	}
	return m.backoff(f)
}

// backoff tries the rest of the pattern after a greedy repeat, giving up
// one character at a time. The last try, at the minimum, is made in this
// frame.
func (m *matcher) backoff(f *frame) action {
	if f.eptr <= f.pp {
		f.pc++
		return actContinue
	}
	return m.descend(f, resRepGreedy, f.eptr, f.pc+1)
}

// stepBack returns the position one repetition before p, which is after
// the minimum pp.
func (m *matcher) stepBack(it *prog.Item, pp, p int) int {
	if it.Kind == prog.ItemType {
		switch it.Type {
		case prog.TypeAnyByte:
			return p - 1
		case prog.TypeExtUni:
			last := pp
			for q := pp; q < p; q += m.clusterLen(q) {
				last = q
			}
			return last
		case prog.TypeAnyNL:
			q := m.back(p)
			if q > pp && m.subject[q] == '\n' && m.subject[q-1] == '\r' {
				q--
			}
			return q
		}
	}
	return m.back(p)
}

func (m *matcher) resumeRepeat(f *frame, at resumePoint, rv result) action {
	if rv.sig != sigNoMatch {
		return f.done(rv)
	}
	in := &m.insts[f.pc]
	if at == resRepGreedy {
		f.eptr = m.stepBack(&in.Item, f.pp, f.eptr)
		return m.backoff(f)
	}
	if in.Max != prog.Unlimited && f.fi >= in.Max {
		return f.fail()
	}
	if a, ok := m.single(f, &in.Item); !ok {
		return a
	}
	f.fi++
	return m.descend(f, resRepLazy, f.eptr, f.pc+1)
}
