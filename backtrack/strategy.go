package backtrack

// enter performs the checks made on every matcher call and pushes the
// empty-iteration checkpoint when the caller asked for one.
func (m *matcher) enter(f *frame) (result, bool) {
	if m.callCount >= m.matchLimit {
		return m.failWith(ErrMatchLimit), false
	}
	m.callCount++
	if f.depth >= m.depthLimit {
		return m.failWith(ErrRecursionLimit), false
	}
	if !m.stack.hold(f) {
		return m.failWith(ErrNoMemory), false
	}
	if f.flags&cbeGroup != 0 {
		f.cp = checkpoint{saved: f.eptr, prev: f.eptrb}
		f.eptrb = &f.cp
		f.flags &^= cbeGroup
	}
	return result{}, true
}

func (m *matcher) failWith(err error) result {
	m.err = err
	return result{sig: sigError}
}

// call suspends f at the resume point at and asks the driver to run a
// nested call. The callee inherits the match start and the capture high
// water mark of f.
func (m *matcher) call(f *frame, at resumePoint, eptr, pc int, eptrb *checkpoint, flags callFlags) action {
	f.resume = at
	m.next = callArgs{
		eptr:      eptr,
		pc:        pc,
		mstart:    f.mstart,
		offsetTop: f.offsetTop,
		eptrb:     eptrb,
		flags:     flags,
	}
	return actCall
}

// descend is call with the checkpoint chain of f and no flags.
func (m *matcher) descend(f *frame, at resumePoint, eptr, pc int) action {
	return m.call(f, at, eptr, pc, f.eptrb, 0)
}

// step advances f until it needs a nested call or finishes. rv is the
// result of the nested call f was waiting for, if any.
func (m *matcher) step(f *frame, rv result) action {
	a := actContinue
	if at := f.resume; at != resNone {
		f.resume = resNone
		a = m.resume(f, at, rv)
	}
	for a == actContinue {
		a = m.exec(f)
	}
	return a
}

// runNative executes f with one Go call per nested matcher call.
func (m *matcher) runNative(f *frame) result {
	if r, ok := m.enter(f); !ok {
		return r
	}
	var rv result
	for m.step(f, rv) == actCall {
		child := m.stack.push(&m.next, f.depth+1)
		rv = m.runNative(child)
		m.stack.pop()
	}
	return f.ret
}

// runFrames executes root in a single loop, keeping the frames of nested
// calls on the frame stack.
func (m *matcher) runFrames(root *frame) result {
	if r, ok := m.enter(root); !ok {
		return r
	}
	f := root
	var rv result
	for {
		if m.step(f, rv) == actCall {
			child := m.stack.push(&m.next, f.depth+1)
			if r, ok := m.enter(child); !ok {
				m.stack.pop()
				rv = r
				continue
			}
			f, rv = child, result{}
			continue
		}
		if f == root {
			return f.ret
		}
		rv = f.ret
		m.stack.pop()
		f = m.stack.top()
	}
}

// match runs one attempt starting at start.
func (m *matcher) match(start int) result {
	root := m.stack.push(&callArgs{eptr: start, mstart: start, offsetTop: 2}, 0)
	defer m.stack.pop()
	if m.strategy == StrategyNative {
		return m.runNative(root)
	}
	return m.runFrames(root)
}
