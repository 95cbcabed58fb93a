package syntax

import "fmt"

// ErrorCode describes a failure to parse a pattern.
type ErrorCode string

const (
	ErrTrailingBackslash  ErrorCode = `\ at end of pattern`
	ErrMissingParen       ErrorCode = "missing )"
	ErrUnmatchedParen     ErrorCode = "unmatched )"
	ErrNothingToRepeat    ErrorCode = "nothing to repeat"
	ErrMissingBracket     ErrorCode = "missing terminating ] for character class"
	ErrBadRange           ErrorCode = "range out of order in character class"
	ErrRepeatTooBig       ErrorCode = "number too big in {} quantifier"
	ErrRepeatOrder        ErrorCode = "numbers out of order in {} quantifier"
	ErrUnsupportedEscape  ErrorCode = `PCRE does not support \L, \l, \N{name}, \U, or \u`
	ErrBadClassEscape     ErrorCode = "invalid escape sequence in character class"
	ErrBadEscape          ErrorCode = "malformed escape sequence"
	ErrBadControl         ErrorCode = `\c must be followed by an ASCII character`
	ErrUnknownGroup       ErrorCode = "reference to non-existent subpattern"
	ErrUnknownName        ErrorCode = "reference to non-existent named subpattern"
	ErrLookbehind         ErrorCode = "lookbehind assertion is not fixed length"
	ErrBadName            ErrorCode = "syntax error in subpattern name"
	ErrDupName            ErrorCode = "two named subpatterns have the same name"
	ErrUnknownProperty    ErrorCode = `unknown property name after \P or \p`
	ErrBadProperty        ErrorCode = `malformed \P or \p sequence`
	ErrBadVerb            ErrorCode = "(*VERB) not recognized or malformed"
	ErrVerbArgRequired    ErrorCode = "(*MARK) must have an argument"
	ErrVerbArgNotAllowed  ErrorCode = "an argument is not allowed for (*ACCEPT), (*FAIL), or (*COMMIT)"
	ErrBadCondition       ErrorCode = "malformed number or name after (?("
	ErrTooManyBranches    ErrorCode = "conditional group contains more than two branches"
	ErrDefineBranches     ErrorCode = "DEFINE group contains more than one branch"
	ErrAssertionExpected  ErrorCode = "assertion expected after (?("
	ErrBadPosix           ErrorCode = "unknown POSIX class name"
	ErrPosixOutsideClass  ErrorCode = "POSIX named classes are supported only within a class"
	ErrCodePointTooBig    ErrorCode = `character value in \x{} or \o{} is too large`
	ErrInvalidUTF8        ErrorCode = "invalid UTF-8 string"
	ErrBadOption          ErrorCode = "unrecognized character after (? or (?-"
	ErrBadCallout         ErrorCode = "number after (?C is > 255"
	ErrMissingCalloutEnd  ErrorCode = "closing ) for (?C expected"
	ErrBadReference       ErrorCode = `a numbered reference must not be zero`
	ErrBadGReference      ErrorCode = `\g is not followed by a braced, angle-bracketed, or quoted name/number or by a plain number`
	ErrBadKReference      ErrorCode = `\k is not followed by a braced, angle-bracketed, or quoted name`
	ErrBadLimit           ErrorCode = "malformed (*LIMIT_...) setting"
	ErrTooManyGroups      ErrorCode = "too many capturing parentheses"
	ErrNestingTooDeep     ErrorCode = "parentheses are too deeply nested"
	ErrKeepInLookaround   ErrorCode = `\K is not allowed in lookarounds`
	ErrNonUTFCodePoint    ErrorCode = "character value > 255 requires UTF mode"
	ErrRepeatedVerb       ErrorCode = "quantifier does not follow a repeatable item"
	ErrMissingCommentEnd  ErrorCode = "missing ) at end of comment"
	ErrMissingQuoteEnd    ErrorCode = "missing terminating delimiter for name"
	ErrBadRecursionNumber ErrorCode = "invalid recursion number"
)

func (e ErrorCode) String() string {
	return string(e)
}

// Error describes a failure to parse a pattern and gives the offset at
// which the problem was detected.
type Error struct {
	Code    ErrorCode
	Offset  int
	Pattern string
}

func (e *Error) Error() string {
	return fmt.Sprintf("error parsing regexp at offset %d: %s", e.Offset, e.Code)
}
