package pcrex

import (
	"errors"

	"github.com/coregx/pcrex/backtrack"
	"github.com/coregx/pcrex/syntax"
)

// Outcomes and failures of Exec. Compare with errors.Is.
var (
	ErrNoMatch        = backtrack.ErrNoMatch
	ErrPartial        = backtrack.ErrPartial
	ErrMatchLimit     = backtrack.ErrMatchLimit
	ErrRecursionLimit = backtrack.ErrRecursionLimit
	ErrRecurseLoop    = backtrack.ErrRecurseLoop
	ErrBadOffset      = backtrack.ErrBadOffset
	ErrBadUTFOffset   = backtrack.ErrBadUTFOffset
	ErrNoMemory       = backtrack.ErrNoMemory
	ErrBadNewline     = backtrack.ErrBadNewline
	ErrBadOption      = backtrack.ErrBadOption
	ErrInternal       = backtrack.ErrInternal
)

// Error types. Extract them with errors.As.
type (
	// SyntaxError reports a malformed pattern and the offset of the
	// problem.
	SyntaxError = syntax.Error
	// UTFError reports invalid UTF-8 in a subject matched in UTF mode.
	UTFError = backtrack.UTFError
	// CalloutError reports a callout that abandoned the match.
	CalloutError = backtrack.CalloutError
)

// ErrorCode returns the classic negative PCRE status number for an error
// returned by Exec, or 0 for nil. Unknown errors map to -14 (internal).
func ErrorCode(err error) int {
	if err == nil {
		return 0
	}
	var uerr *UTFError
	if errors.As(err, &uerr) {
		if uerr.Short {
			return -25
		}
		return -10
	}
	var cerr *CalloutError
	if errors.As(err, &cerr) {
		return -9
	}
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return -14
}

var errorCodes = []struct {
	err  error
	code int
}{
	{ErrNoMatch, -1},
	{ErrBadOption, -3},
	{ErrNoMemory, -6},
	{ErrMatchLimit, -8},
	{ErrBadUTFOffset, -11},
	{ErrPartial, -12},
	{ErrInternal, -14},
	{ErrRecursionLimit, -21},
	{ErrBadNewline, -23},
	{ErrBadOffset, -24},
	{ErrRecurseLoop, -26},
}
