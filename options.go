package pcrex

import (
	"strings"

	"github.com/coregx/pcrex/backtrack"
	"github.com/coregx/pcrex/syntax"
)

// Option is a compile option, set in Config.Options.
type Option = syntax.Flags

// Compile options. Most can also be set inside the pattern.
const (
	Caseless         = syntax.Caseless         // (?i)
	Multiline        = syntax.Multiline        // (?m)
	DotAll           = syntax.DotAll           // (?s)
	Extended         = syntax.Extended         // (?x)
	DollarEndOnly    = syntax.DollarEndOnly    // $ matches only at the very end
	Ungreedy         = syntax.Ungreedy         // (?U)
	NoAutoCapture    = syntax.NoAutoCapture    // plain groups do not capture
	DupNames         = syntax.DupNames         // (?J)
	UTF              = syntax.UTF              // (*UTF8)
	UCP              = syntax.UCP              // (*UCP)
	FirstLine        = syntax.FirstLine        // the match must start on the first line
	JavaScriptCompat = syntax.JavaScriptCompat // unset back references match empty
	AutoCallout      = syntax.AutoCallout      // callout 255 before every item

	// CompileAnchored anchors every match of the pattern at the start
	// offset, like the Anchored exec flag on every call.
	CompileAnchored = syntax.Anchored
	// CompileNoStartOptimize is (*NO_START_OPT).
	CompileNoStartOptimize = syntax.NoStartOptimize

	optionMask = Caseless | Multiline | DotAll | Extended | DollarEndOnly | Ungreedy |
		NoAutoCapture | DupNames | UTF | UCP | FirstLine | JavaScriptCompat | AutoCallout |
		CompileAnchored | CompileNoStartOptimize
)

// ExecFlag is a per-call option of Exec. The low bits are matching
// options; a newline or \R convention can be selected in addition.
type ExecFlag uint32

// Matching options.
const (
	Anchored        = ExecFlag(backtrack.Anchored)
	NotBOL          = ExecFlag(backtrack.NotBOL)
	NotEOL          = ExecFlag(backtrack.NotEOL)
	NotEmpty        = ExecFlag(backtrack.NotEmpty)
	NotEmptyAtStart = ExecFlag(backtrack.NotEmptyAtStart)
	PartialSoft     = ExecFlag(backtrack.PartialSoft)
	PartialHard     = ExecFlag(backtrack.PartialHard)
	NoStartOptimize = ExecFlag(backtrack.NoStartOptimize)
	NoUTFCheck      = ExecFlag(backtrack.NoUTFCheck)

	// Partial is PartialSoft.
	Partial = PartialSoft
)

const (
	newlineShift = 16
	newlineBits  = 0xf << newlineShift
	bsrShift     = 20
	bsrBits      = 0x3 << bsrShift
	matchBits    = ExecFlag(1<<newlineShift - 1)
)

// Newline and \R overrides for one call.
const (
	NewlineCR      = ExecFlag(syntax.NewlineCR) << newlineShift
	NewlineLF      = ExecFlag(syntax.NewlineLF) << newlineShift
	NewlineCRLF    = ExecFlag(syntax.NewlineCRLF) << newlineShift
	NewlineAny     = ExecFlag(syntax.NewlineAny) << newlineShift
	NewlineAnyCRLF = ExecFlag(syntax.NewlineAnyCRLF) << newlineShift

	BSRUnicode = ExecFlag(syntax.BSRUnicode) << bsrShift
	BSRAnyCRLF = ExecFlag(syntax.BSRAnyCRLF) << bsrShift
)

// request converts flags into a backtrack request. ok is false when f has
// bits outside the matching options and the conventions.
func (f ExecFlag) request() (req backtrack.Request, ok bool) {
	if f&^(matchBits|newlineBits|bsrBits) != 0 {
		return backtrack.Request{}, false
	}
	return backtrack.Request{
		Flags:   backtrack.Flags(f & matchBits),
		Newline: syntax.Newline((f & newlineBits) >> newlineShift),
		BSR:     syntax.BSR((f & bsrBits) >> bsrShift),
	}, true
}

func (f ExecFlag) String() string {
	var parts []string
	if m := f &^ (newlineBits | bsrBits); m != 0 {
		parts = append(parts, backtrack.Flags(m).String())
	}
	if nl := syntax.Newline((f & newlineBits) >> newlineShift); nl != syntax.NewlineDefault {
		parts = append(parts, "Newline"+nl.String())
	}
	switch syntax.BSR((f & bsrBits) >> bsrShift) {
	case syntax.BSRUnicode:
		parts = append(parts, "BSRUnicode")
	case syntax.BSRAnyCRLF:
		parts = append(parts, "BSRAnyCRLF")
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, "|")
}

// Strategy selects how nested matcher calls are executed.
type Strategy = backtrack.Strategy

// Execution strategies.
const (
	StrategyFrames = backtrack.StrategyFrames
	StrategyNative = backtrack.StrategyNative
)
