package backtrack

import (
	"github.com/coregx/pcrex/prog"
)

// ketOf returns the index of the Ket closing the bracket at pc.
func (m *matcher) ketOf(pc int) int {
	k := m.insts[pc].Link
	for m.insts[k].Op == prog.OpAlt {
		k = m.insts[k].Link
	}
	return k
}

// pushes reports whether entering the bracket in pushes a checkpoint that
// its ket pops.
func pushes(in *prog.Inst) bool {
	return in.Op == prog.OpOnce || (in.CheckEmpty && in.Op != prog.OpOnceNC)
}

// thenScope turns a (*THEN) raised inside the branch at branch of a group
// with more than one alternative into an ordinary failure of that branch.
func (m *matcher) thenScope(r result, branch int) result {
	if r.sig != sigThen {
		return r
	}
	br := &m.insts[branch]
	if r.at < br.Link && (br.Op == prog.OpAlt || m.insts[br.Link].Op == prog.OpAlt) {
		return noMatch
	}
	return r
}

// exec dispatches the instruction at f.pc.
//
//nolint:gocyclo,cyclop,funlen // one case per opcode family
func (m *matcher) exec(f *frame) action {
	in := &m.insts[f.pc]
	switch in.Op {
	case prog.OpEnd, prog.OpAccept, prog.OpAssertAccept:
		if f.eptr == f.mstart && in.Op != prog.OpAssertAccept && m.recursive == nil &&
			(m.notEmpty || (m.notEmptyAtStart && f.mstart == m.startOffset)) {
			return f.fail()
		}
		m.endMatch, m.endOffsetTop, m.startMatch = f.eptr, f.offsetTop, f.mstart
		if in.Op == prog.OpEnd {
			return f.done(result{sig: sigMatch})
		}
		return f.done(result{sig: sigAccept})

	case prog.OpItem:
		if a, ok := m.single(f, &in.Item); !ok {
			return a
		}
	case prog.OpRepeat:
		return m.repeat(f, in)
	case prog.OpRef, prog.OpDNRef:
		return m.backref(f, in)

	case prog.OpSOD:
		if f.eptr != 0 {
			return f.fail()
		}
	case prog.OpSOM:
		if f.eptr != m.startOffset {
			return f.fail()
		}
	case prog.OpSetSOM:
		f.mstart = f.eptr
	case prog.OpCirc:
		if f.eptr != 0 || m.notBOL {
			return f.fail()
		}
	case prog.OpCircM:
		if f.eptr == 0 {
			if m.notBOL {
				return f.fail()
			}
		} else if f.eptr == m.end || !m.wasNewline(f.eptr) {
			return f.fail()
		}
	case prog.OpDollM:
		if f.eptr < m.end {
			if _, ok := m.newlineAt(f.eptr); !ok {
				return m.crlfFail(f)
			}
		} else {
			if m.notEOL {
				return f.fail()
			}
			if m.scheck(f.eptr) {
				return m.abortPartial(f)
			}
		}
	case prog.OpDoll:
		if m.notEOL {
			return f.fail()
		}
		if m.endOnly {
			return m.endOfSubject(f)
		}
		return m.endOrFinalNewline(f)
	case prog.OpEOD:
		return m.endOfSubject(f)
	case prog.OpEODN:
		return m.endOrFinalNewline(f)
	case prog.OpWordBoundary, prog.OpNotWordBoundary:
		prevWord, curWord := false, false
		if f.eptr > 0 {
			q := m.back(f.eptr)
			if q < m.startUsed {
				m.startUsed = q
			}
			c, _ := m.char(q)
			prevWord = m.isWord(c)
		}
		if f.eptr >= m.end {
			if m.scheck(f.eptr) {
				return m.abortPartial(f)
			}
		} else {
			c, _ := m.char(f.eptr)
			curWord = m.isWord(c)
		}
		if (in.Op == prog.OpWordBoundary) == (curWord == prevWord) {
			return f.fail()
		}

	case prog.OpReverse:
		if m.utf {
			for range in.Count {
				if f.eptr <= 0 {
					return f.fail()
				}
				f.eptr = m.back(f.eptr)
			}
		} else {
			f.eptr -= in.Count
			if f.eptr < 0 {
				return f.fail()
			}
		}
		if f.eptr < m.startUsed {
			m.startUsed = f.eptr
		}

	case prog.OpClose:
		n := int(in.Group)
		o := 2 * n
		m.captureLast = n
		m.ovec[o], m.ovec[o+1] = m.work[n], f.eptr
		if o >= f.offsetTop {
			for i := f.offsetTop; i < o; i++ {
				m.ovec[i] = -1
			}
			f.offsetTop = o + 2
		}

	case prog.OpCallout:
		if m.calloutFn != nil {
			switch rc := m.callout(f, in); {
			case rc > 0:
				return f.fail()
			case rc < 0:
				return f.done(m.failWith(&CalloutError{Code: rc}))
			}
		}

	case prog.OpBra, prog.OpOnce:
		f.group, f.branch = f.pc, f.pc
		return m.braBranch(f)
	case prog.OpCBra:
		return m.cbraStart(f, in)
	case prog.OpOnceNC:
		f.group, f.branch = f.pc, f.pc
		f.savedEptr, f.saveMark = f.eptr, m.mark
		return m.descend(f, resOnceNC, f.eptr, f.branch+1)
	case prog.OpBraPos, prog.OpCBraPos:
		f.allowZero = false
		return m.posStart(f)
	case prog.OpBraPosZero:
		f.pc++
		f.allowZero = true
		return m.posStart(f)
	case prog.OpCond:
		return m.cond(f)
	case prog.OpAssert, prog.OpAssertBack, prog.OpAssertNot, prog.OpAssertBackNot:
		f.group, f.branch = f.pc, f.pc
		f.saveMark = m.mark
		f.condAssert = f.flags&condAssert != 0
		f.flags &^= condAssert
		return m.assertBranch(f)
	case prog.OpRecurse:
		return m.recurse(f, in)

	case prog.OpAlt:
		f.pc = m.ketOf(f.pc)
		return actContinue
	case prog.OpKet, prog.OpKetRMax, prog.OpKetRMin, prog.OpKetRPos:
		return m.ket(f, in)

	case prog.OpBraZero:
		return m.descend(f, resBraZero, f.eptr, f.pc+1)
	case prog.OpBraMinZero:
		return m.descend(f, resBraMinZero, f.eptr, m.ketOf(f.pc+1)+1)
	case prog.OpSkipZero:
		f.pc = m.ketOf(f.pc+1) + 1
		return actContinue

	case prog.OpMark, prog.OpPruneArg, prog.OpThenArg:
		m.nomatchMark, m.mark = f.pc, -1
		return m.descend(f, resMark, f.eptr, f.pc+1)
	case prog.OpSkipArg:
		m.skipArgCount++
		if m.skipArgCount <= m.ignoreSkipArg {
			break
		}
		return m.descend(f, resVerb, f.eptr, f.pc+1)
	case prog.OpCommit, prog.OpPrune, prog.OpSkip, prog.OpThen:
		return m.descend(f, resVerb, f.eptr, f.pc+1)
	case prog.OpFail:
		return f.fail()

	default:
		return f.done(m.failWith(ErrInternal))
	}
	f.pc++
	return actContinue
}

// crlfFail fails at a position that is not a newline, noting a CR at the
// end of the subject as a possible partial CRLF.
func (m *matcher) crlfFail(f *frame) action {
	if m.crlfPartial(f.eptr) && m.setHit() {
		return m.abortPartial(f)
	}
	return f.fail()
}

// endOfSubject matches \z.
func (m *matcher) endOfSubject(f *frame) action {
	if f.eptr < m.end {
		return f.fail()
	}
	if m.scheck(f.eptr) {
		return m.abortPartial(f)
	}
	f.pc++
	return actContinue
}

// endOrFinalNewline matches \Z: the end of the subject or a newline that
// ends it.
func (m *matcher) endOrFinalNewline(f *frame) action {
	if f.eptr < m.end {
		if n, ok := m.newlineAt(f.eptr); !ok || f.eptr+n != m.end {
			return m.crlfFail(f)
		}
	}
	if m.scheck(f.eptr) {
		return m.abortPartial(f)
	}
	f.pc++
	return actContinue
}

// resume continues f after the nested call at at returned rv.
//
//nolint:gocyclo,cyclop // one case per call site
func (m *matcher) resume(f *frame, at resumePoint, rv result) action {
	switch at {
	case resBra:
		return m.braNext(f, rv)
	case resCBra:
		return m.cbraNext(f, rv)
	case resOnceNC:
		return m.onceNext(f, rv)
	case resOnceNCMin:
		if rv.sig != sigNoMatch {
			return f.done(rv)
		}
		f.pc = f.group
		return actContinue
	case resOnceNCMax:
		if rv.sig != sigNoMatch {
			return f.done(rv)
		}
		f.pc = f.prev + 1
		return actContinue
	case resBraPos:
		return m.posNext(f, rv)
	case resCondAssert:
		switch rv.sig {
		case sigMatch:
			f.offsetTop = max(f.offsetTop, m.endOffsetTop)
			return m.condBranch(f, true, m.ketOf(f.group+1)+1)
		case sigNoMatch, sigThen:
			return m.condBranch(f, false, 0)
		}
		return f.done(rv)
	case resCondBody:
		return f.done(rv)
	case resAssert:
		return m.assertNext(f, rv)
	case resAssertNot:
		return m.assertNotNext(f, rv)
	case resRecurse:
		return m.recurseNext(f, rv)
	case resKetOnce, resKetRMin, resKetRMinGroup, resKetRMax:
		return m.ketNext(f, at, rv)
	case resBraZero:
		if rv.sig != sigNoMatch {
			return f.done(rv)
		}
		f.pc = m.ketOf(f.pc+1) + 1
		return actContinue
	case resBraMinZero:
		if rv.sig != sigNoMatch {
			return f.done(rv)
		}
		f.pc++
		return actContinue
	case resMark:
		return m.markNext(f, rv)
	case resVerb:
		return m.verbNext(f, rv)
	case resRefLazy, resRefGreedy:
		return m.resumeRef(f, at, rv)
	case resRepLazy, resRepGreedy:
		return m.resumeRepeat(f, at, rv)
	}
	return f.done(m.failWith(ErrInternal))
}

// braBranch runs the branch at f.branch of a Bra or Once group. A branch
// that cannot be backtracked into is run in this frame.
func (m *matcher) braBranch(f *frame) action {
	g := &m.insts[f.group]
	flags := callFlags(0)
	if g.Op == prog.OpOnce || g.CheckEmpty {
		flags = cbeGroup
	} else if !m.prog.HasThen && m.insts[m.insts[f.branch].Link].Op != prog.OpAlt {
		f.pc = f.branch + 1
		return actContinue
	}
	f.saveMark, f.saveCapLast = m.mark, m.captureLast
	return m.call(f, resBra, f.eptr, f.branch+1, f.eptrb, flags)
}

func (m *matcher) braNext(f *frame, rv result) action {
	rv = m.thenScope(rv, f.branch)
	if rv.sig != sigNoMatch {
		if rv.sig == sigOnce && m.onceTarget == f.group {
			rv = noMatch
		}
		return f.done(rv)
	}
	f.branch = m.insts[f.branch].Link
	m.mark = f.saveMark
	if m.insts[f.branch].Op != prog.OpAlt {
		return f.fail()
	}
	m.captureLast = f.saveCapLast
	return m.braBranch(f)
}

func (m *matcher) cbraStart(f *frame, in *prog.Inst) action {
	n := int(in.Group)
	f.group, f.branch, f.number = f.pc, f.pc, n
	f.saves = [3]int{m.ovec[2*n], m.ovec[2*n+1], m.work[n]}
	f.saveCapLast, f.saveMark = m.captureLast, m.mark
	m.work[n] = f.eptr
	return m.cbraBranch(f)
}

func (m *matcher) cbraBranch(f *frame) action {
	m.captureLast = f.saveCapLast
	flags := callFlags(0)
	if m.insts[f.group].CheckEmpty {
		flags = cbeGroup
	}
	return m.call(f, resCBra, f.eptr, f.branch+1, f.eptrb, flags)
}

func (m *matcher) cbraNext(f *frame, rv result) action {
	if rv.sig != sigOnce {
		rv = m.thenScope(rv, f.branch)
		if rv.sig != sigNoMatch {
			return f.done(rv)
		}
		m.captureLast = f.saveCapLast
		f.branch = m.insts[f.branch].Link
		m.mark = f.saveMark
		if m.insts[f.branch].Op == prog.OpAlt {
			return m.cbraBranch(f)
		}
	}
	n := f.number
	m.ovec[2*n], m.ovec[2*n+1], m.work[n] = f.saves[0], f.saves[1], f.saves[2]
	return f.done(rv)
}

// onceNext handles the result of a branch of an atomic group without
// captures. Once a branch matched, the group is never backtracked into.
func (m *matcher) onceNext(f *frame, rv result) action {
	if rv.sig == sigMatch {
		f.mstart = m.startMatch
		ket := m.ketOf(f.group)
		f.offsetTop = m.endOffsetTop
		f.eptr = m.endMatch
		op := m.insts[ket].Op
		if op == prog.OpKet || f.eptr == f.savedEptr {
			f.pc = ket + 1
			return actContinue
		}
		f.prev = ket
		if op == prog.OpKetRMin {
			return m.descend(f, resOnceNCMin, f.eptr, ket+1)
		}
		return m.descend(f, resOnceNCMax, f.eptr, f.group)
	}
	rv = m.thenScope(rv, f.branch)
	if rv.sig != sigNoMatch {
		return f.done(rv)
	}
	f.branch = m.insts[f.branch].Link
	m.mark = f.saveMark
	if m.insts[f.branch].Op != prog.OpAlt {
		return f.fail()
	}
	return m.descend(f, resOnceNC, f.eptr, f.branch+1)
}

// posStart enters a possessive group repeated without limit.
func (m *matcher) posStart(f *frame) action {
	in := &m.insts[f.pc]
	f.group, f.branch = f.pc, f.pc
	f.matchedOnce = false
	f.number = -1
	if in.Op == prog.OpCBraPos {
		n := int(in.Group)
		f.number = n
		f.saves = [3]int{m.ovec[2*n], m.ovec[2*n+1], m.work[n]}
	}
	f.saveCapLast = m.captureLast
	return m.posBranch(f)
}

func (m *matcher) posBranch(f *frame) action {
	if f.number >= 0 {
		m.work[f.number] = f.eptr
	}
	flags := callFlags(0)
	if m.insts[f.group].CheckEmpty {
		flags = cbeGroup
	}
	return m.call(f, resBraPos, f.eptr, f.branch+1, f.eptrb, flags)
}

func (m *matcher) posNext(f *frame, rv result) action {
	capturing := f.number >= 0
	if rv.sig == sigKetRPos {
		f.offsetTop = m.endOffsetTop
		f.branch = f.group
		if capturing {
			f.saveCapLast = m.captureLast
		}
		f.matchedOnce = true
		f.mstart = m.startMatch
		if f.eptr == m.endMatch {
			return m.posDone(f)
		}
		f.eptr = m.endMatch
		return m.posBranch(f)
	}
	rv = m.thenScope(rv, f.branch)
	if rv.sig != sigNoMatch {
		return f.done(rv)
	}
	if capturing {
		m.captureLast = f.saveCapLast
	}
	f.branch = m.insts[f.branch].Link
	if m.insts[f.branch].Op != prog.OpAlt {
		return m.posDone(f)
	}
	if !capturing {
		m.captureLast = f.saveCapLast
	}
	return m.posBranch(f)
}

func (m *matcher) posDone(f *frame) action {
	if f.number >= 0 && !f.matchedOnce {
		n := f.number
		m.ovec[2*n], m.ovec[2*n+1], m.work[n] = f.saves[0], f.saves[1], f.saves[2]
	}
	if !f.matchedOnce && !f.allowZero {
		return f.fail()
	}
	f.pc = m.ketOf(f.group) + 1
	return actContinue
}

// cond evaluates the condition of a conditional group.
func (m *matcher) cond(f *frame) action {
	f.group = f.pc
	c := &m.insts[f.pc+1]
	var ok bool
	switch c.Op {
	case prog.OpRRef:
		ok = m.recursive != nil && (c.Group == prog.RRefAny || int(c.Group) == m.recursive.group)
	case prog.OpDNRRef:
		if m.recursive != nil {
			for _, g := range c.Groups {
				if g == m.recursive.group {
					ok = true
					break
				}
			}
		}
	case prog.OpCRef:
		o := 2 * int(c.Group)
		ok = o < f.offsetTop && m.ovec[o] >= 0
	case prog.OpDNCRef:
		for _, g := range c.Groups {
			if o := 2 * g; o < f.offsetTop && m.ovec[o] >= 0 {
				ok = true
				break
			}
		}
	case prog.OpDef:
	default:
		return m.call(f, resCondAssert, f.eptr, f.pc+1, nil, condAssert)
	}
	return m.condBranch(f, ok, f.pc+2)
}

// condBranch continues with the yes branch at yes or with the no branch.
// A group that may match the empty string inside an unlimited repeat runs
// its branch in a nested call so that its ket can pop the checkpoint.
func (m *matcher) condBranch(f *frame, ok bool, yes int) action {
	g := &m.insts[f.group]
	target := g.Link + 1
	if ok {
		target = yes
	}
	if g.CheckEmpty && (ok || m.insts[g.Link].Op == prog.OpAlt) {
		return m.call(f, resCondBody, f.eptr, target, f.eptrb, cbeGroup)
	}
	f.pc = target
	return actContinue
}

func (m *matcher) assertBranch(f *frame) action {
	at := resAssert
	if op := m.insts[f.group].Op; op == prog.OpAssertNot || op == prog.OpAssertBackNot {
		at = resAssertNot
	}
	return m.call(f, at, f.eptr, f.branch+1, nil, 0)
}

// assertNext handles a branch of a positive assertion. A backtracking verb
// escaping a branch makes the assertion false.
func (m *matcher) assertNext(f *frame, rv result) action {
	if rv.sig == sigMatch || rv.sig == sigAccept {
		f.mstart = m.startMatch
		if f.condAssert {
			return f.done(result{sig: sigMatch})
		}
		f.pc = m.ketOf(f.group) + 1
		f.offsetTop = m.endOffsetTop
		return actContinue
	}
	m.mark = f.saveMark
	rv = m.thenScope(rv, f.branch)
	if rv.isVerb() {
		return f.fail()
	}
	if rv.sig != sigNoMatch {
		return f.done(rv)
	}
	f.branch = m.insts[f.branch].Link
	if m.insts[f.branch].Op != prog.OpAlt {
		return f.fail()
	}
	return m.assertBranch(f)
}

// assertNotNext handles a branch of a negative assertion. A backtracking
// verb escaping a branch makes the assertion true.
func (m *matcher) assertNotNext(f *frame, rv result) action {
	m.mark = f.saveMark
	switch {
	case rv.sig == sigMatch || rv.sig == sigAccept:
		return f.fail()
	case rv.sig == sigNoMatch || m.thenScope(rv, f.branch).sig == sigNoMatch:
		f.branch = m.insts[f.branch].Link
		if m.insts[f.branch].Op == prog.OpAlt {
			return m.assertBranch(f)
		}
	case !rv.isVerb():
		return f.done(rv)
	}
	if f.condAssert {
		m.endOffsetTop = f.offsetTop
		return f.done(result{sig: sigMatch})
	}
	f.pc = m.ketOf(f.group) + 1
	return actContinue
}

// recurse starts a subroutine call. The capture vector is saved and
// restored around the call, so only the position reached survives it.
func (m *matcher) recurse(f *frame, in *prog.Inst) action {
	group := int(in.Group)
	for r := m.recursive; r != nil; r = r.prev {
		if r.group == group && r.pos == f.eptr {
			return f.done(m.failWith(ErrRecurseLoop))
		}
	}
	saved := m.alloc.Alloc(len(m.caps))
	if len(saved) < len(m.caps) {
		return f.done(m.failWith(ErrNoMemory))
	}
	copy(saved, m.caps)
	f.rec = recursion{
		group:        group,
		savedCapLast: m.captureLast,
		pos:          f.eptr,
		saved:        saved,
		prev:         m.recursive,
	}
	m.recursive = &f.rec
	f.group, f.branch = in.Link, in.Link
	return m.recurseBranch(f)
}

func (m *matcher) recurseBranch(f *frame) action {
	flags := callFlags(0)
	if pushes(&m.insts[f.group]) {
		flags = cbeGroup
	}
	return m.call(f, resRecurse, f.eptr, f.branch+1, f.eptrb, flags)
}

func (m *matcher) recurseNext(f *frame, rv result) action {
	copy(m.caps, f.rec.saved)
	m.captureLast = f.rec.savedCapLast
	m.recursive = f.rec.prev
	switch {
	case rv.sig == sigMatch || rv.sig == sigAccept:
		m.freeRecursion(f)
		f.eptr = m.endMatch
		f.mstart = m.startMatch
		f.pc++
		return actContinue
	case rv.isVerb():
		m.freeRecursion(f)
		return f.fail()
	case rv.sig != sigNoMatch:
		m.freeRecursion(f)
		return f.done(rv)
	}
	f.branch = m.insts[f.branch].Link
	if m.insts[f.branch].Op != prog.OpAlt {
		m.freeRecursion(f)
		return f.fail()
	}
	m.recursive = &f.rec
	return m.recurseBranch(f)
}

func (m *matcher) freeRecursion(f *frame) {
	m.alloc.Free(f.rec.saved)
	f.rec = recursion{}
}

// ket closes a bracket.
//
//nolint:gocyclo,cyclop // every bracket kind ends here
func (m *matcher) ket(f *frame, in *prog.Inst) action {
	f.prev = in.Link
	p := &m.insts[f.prev]
	f.savedEptr = -1
	if pushes(p) {
		f.savedEptr = f.eptrb.saved
		f.eptrb = f.eptrb.prev
	}
	if p.Op.IsAssert() || p.Op == prog.OpOnceNC {
		m.endMatch, m.endOffsetTop, m.startMatch = f.eptr, f.offsetTop, f.mstart
		return f.done(result{sig: sigMatch})
	}
	if p.Op == prog.OpCBra || p.Op == prog.OpCBraPos {
		n := int(p.Group)
		if m.recursive != nil && m.recursive.group == n {
			m.endMatch, m.startMatch = f.eptr, f.mstart
			return f.done(result{sig: sigMatch})
		}
		m.captureLast = n
		o := 2 * n
		for i := f.offsetTop; i < o; i++ {
			m.ovec[i] = -1
		}
		m.ovec[o], m.ovec[o+1] = m.work[n], f.eptr
		if f.offsetTop <= o {
			f.offsetTop = o + 2
		}
	}
	if in.Op == prog.OpKetRPos {
		m.startMatch, m.endMatch, m.endOffsetTop = f.mstart, f.eptr, f.offsetTop
		return f.done(result{sig: sigKetRPos})
	}
	if in.Op == prog.OpKet || f.eptr == f.savedEptr {
		if p.Op == prog.OpOnce {
			return m.descend(f, resKetOnce, f.eptr, f.pc+1)
		}
		f.pc++
		return actContinue
	}
	if in.Op == prog.OpKetRMin {
		return m.descend(f, resKetRMin, f.eptr, f.pc+1)
	}
	return m.descend(f, resKetRMax, f.eptr, f.prev)
}

func (m *matcher) ketNext(f *frame, at resumePoint, rv result) action {
	p := &m.insts[f.prev]
	switch at {
	case resKetOnce:
		if rv.sig != sigNoMatch {
			return f.done(rv)
		}
		m.onceTarget = f.prev
		return f.done(result{sig: sigOnce})
	case resKetRMin:
		if rv.sig != sigNoMatch {
			return f.done(rv)
		}
		switch {
		case p.Op == prog.OpOnce:
			return m.descend(f, resKetOnce, f.eptr, f.prev)
		case pushes(p):
			return m.descend(f, resKetRMinGroup, f.eptr, f.prev)
		}
		f.pc = f.prev
		return actContinue
	case resKetRMinGroup:
		return f.done(rv)
	}
	if rv.sig == sigOnce && m.onceTarget == f.prev {
		rv = noMatch
	}
	if rv.sig != sigNoMatch {
		return f.done(rv)
	}
	if p.Op == prog.OpOnce {
		return m.descend(f, resKetOnce, f.eptr, f.pc+1)
	}
	f.pc++
	return actContinue
}

func (m *matcher) markNext(f *frame, rv result) action {
	in := &m.insts[f.pc]
	if (rv.sig == sigMatch || rv.sig == sigAccept) && m.mark < 0 {
		m.mark = f.pc
	} else if in.Op == prog.OpMark && rv.sig == sigSkipArg && m.insts[rv.at].Name == in.Name {
		return f.done(result{sig: sigSkip, at: f.eptr})
	}
	if rv.sig != sigNoMatch {
		return f.done(rv)
	}
	switch in.Op {
	case prog.OpPruneArg:
		return f.done(result{sig: sigPrune})
	case prog.OpThenArg:
		return f.done(result{sig: sigThen, at: f.pc})
	}
	return f.fail()
}

func (m *matcher) verbNext(f *frame, rv result) action {
	if rv.sig != sigNoMatch {
		return f.done(rv)
	}
	switch m.insts[f.pc].Op {
	case prog.OpCommit:
		return f.done(result{sig: sigCommit})
	case prog.OpPrune:
		return f.done(result{sig: sigPrune})
	case prog.OpSkip:
		return f.done(result{sig: sigSkip, at: f.eptr})
	case prog.OpSkipArg:
		return f.done(result{sig: sigSkipArg, at: f.pc})
	}
	return f.done(result{sig: sigThen, at: f.pc})
}
