// Package backtrack executes compiled programs with a depth-first
// backtracking matcher that follows Perl semantics: leftmost-first
// alternation, greedy, lazy and possessive repeats, atomic groups,
// lookaround, back references, subroutine calls, conditional groups,
// backtracking control verbs, callouts and partial matching.
//
// An Engine wraps one program and is safe for concurrent use. Each Exec
// borrows a matcher from a pool; the matcher owns the frame stack and the
// working capture vector for the duration of the call.
package backtrack

import (
	"errors"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/coregx/pcrex/chartables"
	"github.com/coregx/pcrex/prefilter"
	"github.com/coregx/pcrex/prog"
	"github.com/coregx/pcrex/simd"
	"github.com/coregx/pcrex/syntax"
)

// reqScanMax bounds the subject length left after the start position for
// which the required code unit is searched before an attempt.
const reqScanMax = 1000

// Engine executes one compiled program.
type Engine struct {
	prog   *prog.Prog
	config Config
	alloc  Allocator

	start    prefilter.Prefilter
	required prefilter.Prefilter
	prefix   prefilter.Prefilter

	pool  sync.Pool
	stats Stats
}

// New creates an engine for p. Zero limits in config select the defaults;
// limits set inside the pattern can only lower them.
func New(p *prog.Prog, config Config) *Engine {
	if config.MatchLimit <= 0 {
		config.MatchLimit = DefaultMatchLimit
	}
	if config.RecursionLimit <= 0 {
		config.RecursionLimit = DefaultRecursionLimit
	}
	if p.MatchLimit > 0 {
		config.MatchLimit = min(config.MatchLimit, p.MatchLimit)
	}
	if p.RecursionLimit > 0 {
		config.RecursionLimit = min(config.RecursionLimit, p.RecursionLimit)
	}
	e := &Engine{prog: p, config: config, alloc: config.Allocator}
	if e.alloc == nil {
		e.alloc = defaultAllocator
	}
	b := prefilter.NewBuilder(&p.Hints)
	e.start = b.Start()
	e.required = b.Required()
	if config.Prefilter {
		e.prefix = b.Prefix()
	}
	e.pool.New = func() any { return &matcher{} }
	return e
}

// Prog returns the program the engine executes.
func (e *Engine) Prog() *prog.Prog { return e.prog }

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.config }

// matcher is the mutable state of one Exec.
type matcher struct {
	prog   *prog.Prog
	insts  []prog.Inst
	tables *chartables.Tables

	subject     []byte
	end         int
	startOffset int

	utf, ucp        bool
	endOnly         bool
	newline         syntax.Newline
	bsr             syntax.BSR
	notBOL, notEOL  bool
	notEmpty        bool
	notEmptyAtStart bool
	partial         partialMode
	strategy        Strategy

	// caps holds the capture vector followed by one start slot per group.
	caps []int
	ovec []int
	work []int

	captureLast  int
	recursive    *recursion
	mark         int // instruction index of the verb naming the mark, or -1
	nomatchMark  int
	onceTarget   int
	skipArgCount int

	ignoreSkipArg int
	hitEnd        bool
	startUsed     int

	startMatch, endMatch int
	endOffsetTop         int

	callCount, matchLimit int
	depthLimit            int

	calloutFn   CalloutFunc
	calloutData any
	block       CalloutBlock

	alloc Allocator
	err   error
	stack frameStack
	next  callArgs
}

func (e *Engine) getMatcher() *matcher {
	return e.pool.Get().(*matcher)
}

func (e *Engine) putMatcher(m *matcher) {
	m.stack.release()
	m.subject, m.caps, m.ovec, m.work = nil, nil, nil, nil
	m.recursive, m.err = nil, nil
	m.calloutFn, m.calloutData = nil, nil
	m.block = CalloutBlock{}
	e.pool.Put(m)
}

// Exec searches subject for a match starting at or after start.
//
// On success it fills ovector with capture pairs, as many as fit: pair 0
// is the whole match and unset groups are -1. When no match exists it
// returns ErrNoMatch, with Result.Mark set from the last failing path.
// With partial matching, ErrPartial reports a partial match and the first
// three entries of ovector hold the earliest inspected position, the end
// of the subject and the start of the attempt.
func (e *Engine) Exec(subject []byte, start int, ovector []int, req Request) (Result, error) {
	p := e.prog
	if req.Flags&^flagsMask != 0 {
		return Result{}, ErrBadOption
	}
	nl, bsr, err := e.conventions(req)
	if err != nil {
		return Result{}, err
	}
	if start < 0 || start > len(subject) {
		return Result{}, ErrBadOffset
	}
	if p.UTF() && req.Flags&NoUTFCheck == 0 {
		if err := checkUTF(subject, req.Flags&PartialHard != 0); err != nil {
			return Result{}, err
		}
		if start < len(subject) && !utf8.RuneStart(subject[start]) {
			return Result{}, ErrBadUTFOffset
		}
	}
	atomic.AddUint64(&e.stats.Execs, 1)

	m := e.getMatcher()
	defer e.putMatcher(m)
	e.setup(m, subject, start, req, nl, bsr)

	ncap := 3 * (p.Captures + 1)
	m.caps = m.alloc.Alloc(ncap)
	if len(m.caps) < ncap {
		return Result{}, ErrNoMemory
	}
	defer m.alloc.Free(m.caps)
	m.caps = m.caps[:ncap]
	for i := range m.caps {
		m.caps[i] = -1
	}
	m.ovec = m.caps[:2*(p.Captures+1)]
	m.work = m.caps[2*(p.Captures+1):]

	return e.search(m, start, req.Flags, ovector)
}

func (e *Engine) conventions(req Request) (syntax.Newline, syntax.BSR, error) {
	nl, bsr := req.Newline, req.BSR
	if nl > syntax.NewlineAnyCRLF || bsr > syntax.BSRAnyCRLF {
		return 0, 0, ErrBadNewline
	}
	if nl == syntax.NewlineDefault {
		nl = e.prog.Newline
	}
	if nl == syntax.NewlineDefault {
		nl = syntax.NewlineLF
	}
	if bsr == syntax.BSRDefault {
		bsr = e.prog.BSR
	}
	if bsr == syntax.BSRDefault {
		bsr = syntax.BSRUnicode
	}
	return nl, bsr, nil
}

func (e *Engine) setup(m *matcher, subject []byte, start int, req Request, nl syntax.Newline, bsr syntax.BSR) {
	p := e.prog
	m.prog, m.insts = p, p.Insts
	m.tables = p.Tables
	if m.tables == nil {
		m.tables = chartables.Default()
	}
	m.subject, m.end, m.startOffset = subject, len(subject), start
	m.utf, m.ucp = p.UTF(), p.UCP()
	m.endOnly = p.Flags&syntax.DollarEndOnly != 0
	m.newline, m.bsr = nl, bsr
	f := req.Flags
	m.notBOL, m.notEOL = f&NotBOL != 0, f&NotEOL != 0
	m.notEmpty, m.notEmptyAtStart = f&NotEmpty != 0, f&NotEmptyAtStart != 0
	switch {
	case f&PartialHard != 0:
		m.partial = partialHard
	case f&PartialSoft != 0:
		m.partial = partialSoft
	default:
		m.partial = partialNone
	}
	m.strategy = e.config.Strategy
	m.matchLimit = e.config.MatchLimit
	m.depthLimit = e.config.RecursionLimit
	if m.strategy == StrategyNative {
		m.depthLimit = min(m.depthLimit, nativeDepthLimit)
	}
	m.alloc = e.alloc
	m.stack.hook, _ = e.alloc.(FrameAllocator)
	m.calloutFn, m.calloutData = req.Callout, req.CalloutData
	m.captureLast, m.recursive = 0, nil
	m.mark, m.nomatchMark, m.onceTarget = -1, -1, -1
	m.ignoreSkipArg, m.hitEnd = 0, false
	m.err = nil
}

// search runs match attempts at successive start positions.
//
//nolint:gocyclo,cyclop,funlen // the bumpalong loop is one algorithm
func (e *Engine) search(m *matcher, start int, flags Flags, ovector []int) (Result, error) {
	p := e.prog
	h := &p.Hints
	anchored := h.Anchored || flags&Anchored != 0
	startOpt := flags&NoStartOptimize == 0 && p.Flags&syntax.NoStartOptimize == 0
	firstLine := p.Flags&syntax.FirstLine != 0
	reqPos := start - 1
	startPartial, matchPartial := -1, -1
	var attempts, frames, skips uint64
	defer func() {
		atomic.AddUint64(&e.stats.Attempts, attempts)
		atomic.AddUint64(&e.stats.Frames, frames)
		atomic.AddUint64(&e.stats.PrefilterSkips, skips)
	}()

	rv := noMatch
	at := start
	for {
		if startOpt && !anchored {
			from := at
			if e.prefix != nil && m.partial == partialNone && !firstLine {
				pos := e.prefix.Find(m.subject, at)
				if pos < 0 {
					break
				}
				at = pos
			}
			at = m.scanStart(e, h, at, start, firstLine)
			if at > from {
				skips++
			}
		}
		if startOpt && m.partial == partialNone {
			if m.end-at < h.MinLength {
				break
			}
			if e.required != nil && m.end-at < reqScanMax {
				from := at
				if h.HasFirst {
					from++
				}
				if from > reqPos {
					pos := e.required.Find(m.subject, from)
					if pos < 0 {
						break
					}
					reqPos = pos
				}
			}
		}

		m.startUsed = at
		m.callCount = 0
		m.endOffsetTop = 0
		m.skipArgCount = 0
		attempts++
		rv = m.match(at)
		frames += uint64(m.callCount)
		if m.hitEnd && startPartial < 0 {
			startPartial, matchPartial = m.startUsed, at
		}

		var next int
		switch rv.sig {
		case sigSkipArg:
			next = at
			m.ignoreSkipArg = m.skipArgCount
		case sigSkip:
			if rv.at > at {
				next = rv.at
				break
			}
			m.ignoreSkipArg = 0
			next = m.forward(at)
		case sigNoMatch, sigPrune, sigThen:
			m.ignoreSkipArg = 0
			next = m.forward(at)
		case sigCommit:
			rv = noMatch
			next = -1
		default:
			next = -1
		}
		if next < 0 {
			break
		}
		rv = noMatch

		if firstLine {
			if _, ok := m.newlineAt(at); ok {
				break
			}
		}
		at = next
		if anchored || at > m.end {
			break
		}
		if at > start && m.subject[at-1] == '\r' && at < m.end && m.subject[at] == '\n' &&
			!p.HasCRorLF && (m.newline == syntax.NewlineAny ||
			m.newline == syntax.NewlineAnyCRLF || m.newline == syntax.NewlineCRLF) {
			at++
		}
		m.mark = -1
	}

	switch {
	case rv.sig == sigMatch || rv.sig == sigAccept:
		return Result{Count: m.fill(ovector), Mark: m.markName(m.mark)}, nil
	case rv.sig == sigError && !errors.Is(m.err, ErrPartial):
		return Result{}, m.err
	case startPartial >= 0:
		if len(ovector) > 1 {
			ovector[0], ovector[1] = startPartial, m.end
			if len(ovector) > 2 {
				ovector[2] = matchPartial
			}
		}
		return Result{}, ErrPartial
	}
	return Result{Mark: m.markName(m.nomatchMark)}, ErrNoMatch
}

// scanStart moves at forward to the next position where the first code
// unit of a match can occur. With firstLine set the scan stops at the first
// newline.
func (m *matcher) scanStart(e *Engine, h *prog.Hints, at, start int, firstLine bool) int {
	scanEnd := m.end
	if firstLine {
		scanEnd = m.lineEnd(at)
	}
	switch {
	case h.HasFirst:
		if pos := e.start.Find(m.subject[:scanEnd], at); pos >= 0 {
			return pos
		}
		return scanEnd
	case h.StartLine:
		if at > start {
			for at < scanEnd && !m.wasNewline(at) {
				at = m.forward(at)
			}
			if at < scanEnd && m.subject[at-1] == '\r' && m.subject[at] == '\n' &&
				(m.newline == syntax.NewlineAny || m.newline == syntax.NewlineAnyCRLF) {
				at++
			}
		}
		return at
	case e.start != nil:
		if pos := e.start.Find(m.subject[:scanEnd], at); pos >= 0 {
			return pos
		}
		return scanEnd
	}
	return at
}

// fill copies the captures of a successful match into ovector and returns
// the number of pairs set. A vector without room for one pair is left
// untouched.
func (m *matcher) fill(ovector []int) int {
	if len(ovector) < 2 {
		return 0
	}
	top := m.endOffsetTop
	count := top / 2
	if top > len(ovector)&^1 {
		count = 0
	}
	n := min(len(ovector), len(m.ovec))
	copy(ovector[:n], m.ovec[:n])
	for i := max(top, 2); i < n; i++ {
		ovector[i] = -1
	}
	ovector[0], ovector[1] = m.startMatch, m.endMatch
	return count
}

// checkUTF validates subject as UTF-8.
func checkUTF(subject []byte, hard bool) error {
	i := simd.FirstNonASCII(subject)
	if i < 0 {
		return nil
	}
	for i < len(subject) {
		if subject[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, n := utf8.DecodeRune(subject[i:])
		if r != utf8.RuneError || n > 1 {
			i += n
			continue
		}
		if !utf8.FullRune(subject[i:]) {
			return &UTFError{Offset: i, Reason: "truncated sequence", Short: hard}
		}
		return &UTFError{Offset: i, Reason: utfReason(subject[i:])}
	}
	return nil
}

func utfReason(b []byte) string {
	c := b[0]
	switch {
	case c&0xc0 == 0x80:
		return "unexpected continuation byte"
	case c == 0xc0 || c == 0xc1:
		return "overlong encoding"
	case c >= 0xf5:
		return "invalid lead byte"
	case c == 0xe0 && len(b) > 1 && b[1] < 0xa0, c == 0xf0 && len(b) > 1 && b[1] < 0x90:
		return "overlong encoding"
	case c == 0xed && len(b) > 1 && b[1] >= 0xa0:
		return "surrogate code point"
	case c == 0xf4 && len(b) > 1 && b[1] >= 0x90:
		return "code point above U+10FFFF"
	}
	return "missing continuation byte"
}
