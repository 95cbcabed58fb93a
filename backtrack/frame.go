package backtrack

// signal is the outcome class of a matcher call.
type signal uint8

const (
	sigNoMatch signal = iota
	sigMatch
	sigAccept
	sigKetRPos // one iteration of a possessive group matched
	sigOnce    // backtrack to the start of an atomic group; see onceTarget
	// Backtracking verbs, in the order the driver and assertions test them.
	sigCommit
	sigPrune
	sigSkip    // at: subject position to resume from
	sigSkipArg // at: index of the (*SKIP:NAME)
	sigThen    // at: index of the (*THEN)
	sigError   // matcher.err holds the error
)

// result is returned by every matcher call.
type result struct {
	sig signal
	at  int
}

var noMatch = result{}

func (r result) isVerb() bool { return r.sig >= sigCommit && r.sig <= sigThen }

// checkpoint records where an unlimited group that may match the empty
// string started, so its ket can stop after an empty iteration.
type checkpoint struct {
	saved int
	prev  *checkpoint
}

// recursion is one active subroutine call.
type recursion struct {
	group        int
	savedCapLast int
	pos          int
	saved        []int // capture vector at the call
	prev         *recursion
}

// callFlags modify how a callee frame starts.
type callFlags uint8

const (
	cbeGroup   callFlags = 1 << iota // push a checkpoint for the bracket at pc
	condAssert                       // the assertion at pc is a condition
)

// callArgs are the arguments of a nested matcher call.
type callArgs struct {
	eptr, pc  int
	mstart    int
	offsetTop int
	eptrb     *checkpoint
	flags     callFlags
}

// resumePoint identifies the call site a frame returns to after a nested
// call completes.
type resumePoint uint8

const (
	resNone resumePoint = iota
	resBra
	resCBra
	resOnceNC
	resOnceNCMin
	resOnceNCMax
	resBraPos
	resCondAssert
	resCondBody
	resAssert
	resAssertNot
	resRecurse
	resKetOnce
	resKetRMin
	resKetRMinGroup
	resKetRMax
	resBraZero
	resBraMinZero
	resMark
	resVerb
	resRefLazy
	resRefGreedy
	resRepLazy
	resRepGreedy
)

// frame is the state of one matcher call: its arguments, the resume point
// of the nested call it is waiting for, and every local that must survive
// that call.
type frame struct {
	eptr      int
	pc        int
	mstart    int
	offsetTop int
	eptrb     *checkpoint
	flags     callFlags
	depth     int
	held      bool // counted by a FrameAllocator

	cp     checkpoint
	resume resumePoint
	ret    result

	group, branch int
	number        int
	saves         [3]int
	saveMark      int
	saveCapLast   int
	savedEptr     int
	prev          int
	matchedOnce   bool
	allowZero     bool
	condAssert    bool

	fi, pp int
	ref    int // start of the referenced capture
	length int // length of the referenced capture
	rec    recursion
}

// action tells the frame driver what exec or resume wants next.
type action uint8

const (
	actContinue action = iota // dispatch the instruction at f.pc
	actCall                   // run matcher.next, then resume this frame
	actReturn                 // the frame is finished; f.ret holds its result
)

func (f *frame) done(r result) action {
	f.ret = r
	return actReturn
}

func (f *frame) fail() action { return f.done(noMatch) }

// frameStack is an arena of frames indexed by nesting depth. Frames are
// reused across calls and across Exec invocations of one matcher.
type frameStack struct {
	frames []*frame
	n      int
	high   int // frames used since the last release
	hook   FrameAllocator
}

// maxRetainedFrames bounds the frames kept by a pooled matcher.
const maxRetainedFrames = 1024

func (s *frameStack) push(a *callArgs, depth int) *frame {
	if s.n == len(s.frames) {
		s.frames = append(s.frames, new(frame))
	}
	f := s.frames[s.n]
	s.n++
	s.high = max(s.high, s.n)
	*f = frame{
		eptr:      a.eptr,
		pc:        a.pc,
		mstart:    a.mstart,
		offsetTop: a.offsetTop,
		eptrb:     a.eptrb,
		flags:     a.flags,
		depth:     depth,
	}
	return f
}

func (s *frameStack) pop() {
	s.n--
	if f := s.frames[s.n]; f.held {
		f.held = false
		s.hook.FreeFrame()
	}
}

// hold charges f to the frame hook, if any.
func (s *frameStack) hold(f *frame) bool {
	if s.hook == nil {
		return true
	}
	if !s.hook.AllocFrame() {
		return false
	}
	f.held = true
	return true
}

func (s *frameStack) top() *frame { return s.frames[s.n-1] }

// release drops every frame and trims the arena.
func (s *frameStack) release() {
	if len(s.frames) > maxRetainedFrames {
		clear(s.frames[maxRetainedFrames:])
		s.frames = s.frames[:maxRetainedFrames]
	}
	for _, f := range s.frames[:min(len(s.frames), s.high)] {
		*f = frame{}
	}
	s.n, s.high = 0, 0
	s.hook = nil
}
