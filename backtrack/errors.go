package backtrack

import (
	"errors"
	"fmt"
)

// Outcomes and failures of Exec.
var (
	// ErrNoMatch is returned when no match exists. It is an outcome rather
	// than a failure; callers compare with errors.Is.
	ErrNoMatch = errors.New("no match")

	// ErrPartial is returned when partial matching is enabled and the
	// subject ended inside a possible match.
	ErrPartial = errors.New("partial match")

	// ErrMatchLimit indicates the matcher was entered more often than the
	// match limit allows within one attempt.
	ErrMatchLimit = errors.New("match limit exceeded")

	// ErrRecursionLimit indicates the nesting of matcher calls exceeded the
	// recursion limit.
	ErrRecursionLimit = errors.New("recursion limit exceeded")

	// ErrRecurseLoop indicates a subroutine call re-entered itself at the
	// same subject position without consuming anything.
	ErrRecurseLoop = errors.New("recursive call could loop indefinitely")

	// ErrBadOffset indicates a start offset outside the subject.
	ErrBadOffset = errors.New("bad start offset")

	// ErrBadUTFOffset indicates a start offset inside a UTF-8 sequence.
	ErrBadUTFOffset = errors.New("start offset is not at a UTF-8 character boundary")

	// ErrNoMemory indicates the allocator could not supply a buffer.
	ErrNoMemory = errors.New("allocator returned no memory")

	// ErrBadNewline indicates an unknown newline or \R convention.
	ErrBadNewline = errors.New("bad newline setting")

	// ErrBadOption indicates unknown option bits.
	ErrBadOption = errors.New("bad option")

	// ErrInternal indicates an inconsistent program.
	ErrInternal = errors.New("internal error: unexpected opcode")
)

// UTFError reports invalid UTF-8 in a subject matched in UTF mode.
type UTFError struct {
	// Offset is the byte offset of the first bad sequence.
	Offset int
	// Reason describes what is wrong with it.
	Reason string
	// Short is set when the subject ends inside an otherwise valid
	// sequence and hard partial matching was requested.
	Short bool
}

// Error implements the error interface.
func (e *UTFError) Error() string {
	if e.Short {
		return fmt.Sprintf("truncated UTF-8 sequence at offset %d", e.Offset)
	}
	return fmt.Sprintf("invalid UTF-8 at offset %d: %s", e.Offset, e.Reason)
}

// CalloutError is returned when a callout function asked for the match to
// be abandoned by returning a negative value.
type CalloutError struct {
	Code int
}

// Error implements the error interface.
func (e *CalloutError) Error() string {
	return fmt.Sprintf("callout abandoned the match with code %d", e.Code)
}
