package backtrack

import "github.com/coregx/pcrex/prog"

// CalloutBlock describes the state of the match at a callout point. The
// block and its Ovector are only valid during the call.
type CalloutBlock struct {
	// Number is the callout number from (?Cn); 255 for automatic callouts.
	Number int
	// Ovector is the working capture vector. Pairs at or above
	// 2*CaptureTop are stale.
	Ovector []int
	Subject []byte
	// StartMatch is the start of the current match attempt, as moved by \K.
	StartMatch int
	// CurrentPosition is the subject position of the matcher.
	CurrentPosition int
	// PatternPosition and NextItemLength locate the next pattern item.
	PatternPosition int
	NextItemLength  int
	// CaptureTop is one more than the highest group set so far.
	CaptureTop int
	// CaptureLast is the most recently closed group, or -1.
	CaptureLast int
	// Data is Request.CalloutData.
	Data any
	// Mark is the most recent (*MARK) name, if any.
	Mark string
}

// CalloutFunc is called at each callout point. Returning zero continues
// the match, a positive value fails at this point and backtracks, and a
// negative value abandons the match with a CalloutError.
type CalloutFunc func(*CalloutBlock) int

func (m *matcher) callout(f *frame, in *prog.Inst) int {
	b := &m.block
	*b = CalloutBlock{
		Number:          int(in.Group),
		Ovector:         m.ovec,
		Subject:         m.subject,
		StartMatch:      f.mstart,
		CurrentPosition: f.eptr,
		PatternPosition: in.PatternPos,
		NextItemLength:  in.NextLen,
		CaptureTop:      f.offsetTop / 2,
		CaptureLast:     m.captureLast,
		Data:            m.calloutData,
		Mark:            m.markName(m.nomatchMark),
	}
	if b.CaptureLast == 0 {
		b.CaptureLast = -1
	}
	return m.calloutFn(b)
}

// markName returns the verb argument at instruction pc, or "" for -1.
func (m *matcher) markName(pc int) string {
	if pc < 0 {
		return ""
	}
	return m.insts[pc].Name
}
