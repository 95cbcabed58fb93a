package backtrack

import (
	"fmt"

	"github.com/coregx/pcrex/syntax"
)

// Flags are the per-call options of Exec.
type Flags uint32

const (
	// Anchored restricts the match to start at the start offset.
	Anchored Flags = 1 << iota
	// NotBOL: the start of the subject is not the beginning of a line.
	NotBOL
	// NotEOL: the end of the subject is not the end of a line.
	NotEOL
	// NotEmpty rejects empty matches.
	NotEmpty
	// NotEmptyAtStart rejects an empty match at the start offset only.
	NotEmptyAtStart
	// PartialSoft reports a partial match when no complete match exists.
	PartialSoft
	// PartialHard reports a partial match as soon as one is found.
	PartialHard
	// NoStartOptimize disables the start-up scans.
	NoStartOptimize
	// NoUTFCheck skips validation of the subject in UTF mode.
	NoUTFCheck

	flagsMask = Anchored | NotBOL | NotEOL | NotEmpty | NotEmptyAtStart |
		PartialSoft | PartialHard | NoStartOptimize | NoUTFCheck
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{Anchored, "Anchored"}, {NotBOL, "NotBOL"}, {NotEOL, "NotEOL"},
	{NotEmpty, "NotEmpty"}, {NotEmptyAtStart, "NotEmptyAtStart"},
	{PartialSoft, "PartialSoft"}, {PartialHard, "PartialHard"},
	{NoStartOptimize, "NoStartOptimize"}, {NoUTFCheck, "NoUTFCheck"},
}

func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	s := ""
	for _, n := range flagNames {
		if f&n.f != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
			f &^= n.f
		}
	}
	if f != 0 {
		if s != "" {
			s += "|"
		}
		s += fmt.Sprintf("%#x", uint32(f))
	}
	return s
}

type partialMode uint8

const (
	partialNone partialMode = iota
	partialSoft
	partialHard
)

// Request carries the settings of one Exec call.
type Request struct {
	Flags Flags
	// Newline and BSR override the conventions compiled into the pattern
	// unless they are the Default values.
	Newline syntax.Newline
	BSR     syntax.BSR
	// Callout is called at every callout point when set.
	Callout CalloutFunc
	// CalloutData is passed through to Callout unchanged.
	CalloutData any
}

// Result describes a successful Exec.
type Result struct {
	// Count is the number of capture pairs filled in, counting the whole
	// match; it is zero when the vector was too small for every set pair.
	Count int
	// Mark is the name of the last (*MARK) passed on the matching path,
	// or on the last failing path when Exec returns ErrNoMatch.
	Mark string
}

// Strategy selects how nested matcher calls are executed. Both strategies
// produce identical results.
type Strategy uint8

const (
	// StrategyFrames keeps matcher frames on an explicit heap stack.
	StrategyFrames Strategy = iota
	// StrategyNative uses Go recursion for nested calls.
	StrategyNative
)

func (s Strategy) String() string {
	switch s {
	case StrategyFrames:
		return "frames"
	case StrategyNative:
		return "native"
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

// Defaults for Config.
const (
	DefaultMatchLimit     = 10000000
	DefaultRecursionLimit = 10000000

	// nativeDepthLimit caps the nesting depth of StrategyNative so that the
	// goroutine stack stays far below the runtime maximum.
	nativeDepthLimit = 200000
)

// Config tunes an Engine.
type Config struct {
	Strategy Strategy
	// MatchLimit bounds the number of matcher calls per match attempt;
	// zero selects DefaultMatchLimit.
	MatchLimit int
	// RecursionLimit bounds the nesting of matcher calls; zero selects
	// DefaultRecursionLimit.
	RecursionLimit int
	// Allocator supplies the working capture vector and the snapshots
	// taken by subroutine calls. Nil selects a PoolAllocator.
	Allocator Allocator
	// Prefilter enables the literal-prefix scan before each attempt.
	Prefilter bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:       StrategyFrames,
		MatchLimit:     DefaultMatchLimit,
		RecursionLimit: DefaultRecursionLimit,
		Prefilter:      true,
	}
}
