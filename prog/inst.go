// Package prog defines the opcode stream executed by the backtracking
// matcher, the compiler that lowers a syntax tree into it, and the static
// analysis that derives start-up hints from the tree.
//
// A program is a flat slice of instructions. Brackets, alternatives and
// kets are linked by instruction index: a bracket links to its first Alt or
// to its Ket, each Alt links to the next Alt or the Ket, and a Ket links
// back to its opening bracket. The whole pattern is compiled as
//
//	Bra <body> Ket End
//
// so that recursion into group 0 re-enters the top bracket.
package prog

import (
	"github.com/coregx/pcrex/chartables"
	"github.com/coregx/pcrex/syntax"
	"github.com/coregx/pcrex/ucd"
)

// Op is an instruction opcode.
type Op uint8

const (
	OpEnd Op = iota // end of pattern: the match succeeds

	// Zero-width assertions.
	OpSOD             // \A
	OpSOM             // \G
	OpSetSOM          // \K
	OpNotWordBoundary // \B
	OpWordBoundary    // \b
	OpEODN            // \Z
	OpEOD             // \z
	OpDoll            // $ outside multiline mode
	OpDollM           // $ in multiline mode
	OpCirc            // ^ outside multiline mode
	OpCircM           // ^ in multiline mode

	OpItem   // one character matched by Item
	OpRepeat // Item repeated Min..Max times in Mode

	OpRef     // back reference to Group, repeated Min..Max times
	OpDNRef   // back reference to the first set group of Groups
	OpRecurse // subroutine call of the bracket at Link
	OpCallout // callout Group with PatternPos and NextLen

	OpAlt     // start of an alternative
	OpKet     // end of a bracket
	OpKetRMax // end of a greedy unlimited repeat
	OpKetRMin // end of a lazy unlimited repeat
	OpKetRPos // end of a possessive unlimited repeat

	OpReverse // move back Count characters in a lookbehind branch

	// Bracket openers. Every opener links to its first Alt or its Ket.
	OpAssert        // (?=
	OpAssertNot     // (?!
	OpAssertBack    // (?<=
	OpAssertBackNot // (?<!
	OpOnce          // atomic group containing captures
	OpOnceNC        // atomic group without captures
	OpBra           // non-capturing group
	OpBraPos        // possessive unlimited non-capturing group
	OpCBra          // capturing group Group
	OpCBraPos       // possessive unlimited capturing group Group
	OpCond          // conditional group; the condition follows

	// Conditions. They appear only directly after OpCond.
	OpCRef   // group Group is set
	OpDNCRef // any of Groups is set
	OpRRef   // recursion into Group (RRefAny for any) is active
	OpDNRRef // recursion into any of Groups is active
	OpDef    // (?(DEFINE) is always false

	// Prefixes of an optional bracket.
	OpBraZero    // greedy: try the bracket, then skip it
	OpBraMinZero // lazy: skip the bracket, then try it
	OpBraPosZero // possessive: the following BraPos may match zero times
	OpSkipZero   // the bracket is never matched ({0})

	// Backtracking control verbs.
	OpMark
	OpPrune
	OpPruneArg
	OpSkip
	OpSkipArg
	OpThen
	OpThenArg
	OpCommit
	OpFail
	OpAccept
	OpAssertAccept // (*ACCEPT) inside an assertion
	OpClose        // close capture Group before (*ACCEPT)
)

var opNames = [...]string{
	OpEnd: "End", OpSOD: "\\A", OpSOM: "\\G", OpSetSOM: "\\K",
	OpNotWordBoundary: "\\B", OpWordBoundary: "\\b", OpEODN: "\\Z",
	OpEOD: "\\z", OpDoll: "$", OpDollM: "/m $", OpCirc: "^", OpCircM: "/m ^",
	OpItem: "Item", OpRepeat: "Repeat", OpRef: "Ref", OpDNRef: "DNRef",
	OpRecurse: "Recurse", OpCallout: "Callout", OpAlt: "Alt", OpKet: "Ket",
	OpKetRMax: "KetRmax", OpKetRMin: "KetRmin", OpKetRPos: "KetRpos",
	OpReverse: "Reverse", OpAssert: "Assert", OpAssertNot: "Assert not",
	OpAssertBack: "AssertB", OpAssertBackNot: "AssertB not", OpOnce: "Once",
	OpOnceNC: "Once_NC", OpBra: "Bra", OpBraPos: "BraPos", OpCBra: "CBra",
	OpCBraPos: "CBraPos", OpCond: "Cond", OpCRef: "Cond ref",
	OpDNCRef: "Cond dnref", OpRRef: "Cond recurse", OpDNRRef: "Cond dnrecurse",
	OpDef: "Cond def", OpBraZero: "Brazero", OpBraMinZero: "Braminzero",
	OpBraPosZero: "Braposzero", OpSkipZero: "Skipzero", OpMark: "*MARK",
	OpPrune: "*PRUNE", OpPruneArg: "*PRUNE", OpSkip: "*SKIP",
	OpSkipArg: "*SKIP", OpThen: "*THEN", OpThenArg: "*THEN",
	OpCommit: "*COMMIT", OpFail: "*FAIL", OpAccept: "*ACCEPT",
	OpAssertAccept: "*ASSERT_ACCEPT", OpClose: "Close",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "Op(?)"
}

// IsBracket reports whether op opens a group.
func (op Op) IsBracket() bool {
	return op >= OpAssert && op <= OpCond
}

// IsAssert reports whether op opens a lookaround assertion.
func (op Op) IsAssert() bool {
	return op >= OpAssert && op <= OpAssertBackNot
}

// IsKet reports whether op closes a group.
func (op Op) IsKet() bool {
	return op >= OpKet && op <= OpKetRPos
}

// Unlimited is the Max of an open-ended repeat.
const Unlimited = syntax.Unlimited

// RRefAny is the Group of an OpRRef that tests for any recursion.
const RRefAny = 0xffff

// CharType is a character type such as \d or dot.
type CharType uint8

const (
	TypeAny       CharType = iota // any character except a newline
	TypeAllAny                    // any character
	TypeAnyByte                   // any single code unit (\C)
	TypeDigit                     // \d
	TypeNotDigit                  // \D
	TypeSpace                     // \s
	TypeNotSpace                  // \S
	TypeWord                      // \w
	TypeNotWord                   // \W
	TypeHSpace                    // \h
	TypeNotHSpace                 // \H
	TypeVSpace                    // \v
	TypeNotVSpace                 // \V
	TypeAnyNL                     // \R
	TypeExtUni                    // \X
)

var typeNames = [...]string{
	TypeAny: "Any", TypeAllAny: "AllAny", TypeAnyByte: "AnyByte",
	TypeDigit: "\\d", TypeNotDigit: "\\D", TypeSpace: "\\s",
	TypeNotSpace: "\\S", TypeWord: "\\w", TypeNotWord: "\\W",
	TypeHSpace: "\\h", TypeNotHSpace: "\\H", TypeVSpace: "\\v",
	TypeNotVSpace: "\\V", TypeAnyNL: "\\R", TypeExtUni: "\\X",
}

func (t CharType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Type(?)"
}

// ItemKind selects which field of an Item applies.
type ItemKind uint8

const (
	ItemChar  ItemKind = iota // Char or one of Folds
	ItemNot                   // anything but Char and Folds
	ItemType                  // Type
	ItemClass                 // Class
	ItemProp                  // Prop
)

// Item is a single-character matcher.
type Item struct {
	Kind ItemKind
	Char rune
	// Folds lists the other case forms of Char when matching caselessly.
	Folds []rune
	Type  CharType
	Class *Class
	Prop  ucd.Prop
}

// Class is a compiled character class.
type Class struct {
	// Bits answers membership for characters below 256, with negation
	// already applied.
	Bits [4]uint64
	// The fields below describe membership for characters of 256 and
	// above. Negated inverts the combined result.
	Ranges  []syntax.RuneRange
	Types   []CharType
	Props   []ucd.Prop
	Negated bool
}

// HasByte reports whether the class matches the character c < 256.
func (c *Class) HasByte(b byte) bool {
	return c.Bits[b>>6]&(1<<(b&63)) != 0
}

func (c *Class) setByte(b byte) {
	c.Bits[b>>6] |= 1 << (b & 63)
}

// HasHigh reports whether any character of 256 or above can match.
func (c *Class) HasHigh() bool {
	return c.Negated || len(c.Ranges) > 0 || len(c.Types) > 0 || len(c.Props) > 0
}

// Inst is one instruction. Which fields are meaningful depends on Op.
type Inst struct {
	Op Op
	// Link is an instruction index; see the package documentation.
	Link int
	// Group is a capture number for CBra, CBraPos, Ref, CRef, RRef and
	// Close, or the callout number for Callout.
	Group uint16
	// Groups lists every group sharing a duplicated name.
	Groups []int
	// CheckEmpty marks a bracket repeated without limit whose body can
	// match the empty string; the repeat stops after an empty iteration.
	CheckEmpty bool
	// Caseless applies to Ref and DNRef.
	Caseless bool

	Item     Item
	Min, Max int
	Mode     syntax.RepeatMode
	// Count is the number of characters an OpReverse steps back.
	Count int
	// Name is the argument of a verb.
	Name string
	// PatternPos and NextLen describe the pattern text at a callout.
	PatternPos, NextLen int
}

// Hints are start-up optimisations derived at compile time. A zero Hints
// value disables them all.
type Hints struct {
	// Anchored is set when every match must start at the start offset.
	Anchored bool
	// StartLine is set when every match must start at the beginning of
	// the subject or just after a newline.
	StartLine bool

	// FirstChar is the code unit every match starts with. FirstCaseless
	// adds FirstOther as an alternative.
	HasFirst      bool
	FirstChar     byte
	FirstOther    byte
	FirstCaseless bool

	// ReqChar is a code unit that must occur in every match, after the
	// first one when HasFirst is set.
	HasReq      bool
	ReqChar     byte
	ReqOther    byte
	ReqCaseless bool

	// StartBits lists the code units a match can start with.
	StartBits *[256]bool
	// MinLength is a lower bound on the length of a match.
	MinLength int
	// Prefixes is a set of equal-length literal prefixes, one of which
	// starts every match.
	Prefixes [][]byte
}

// Prog is a compiled pattern. It is immutable and may be shared.
type Prog struct {
	Pattern   string
	Insts     []Inst
	Captures  int
	Names     []string
	NameIndex map[string][]int
	// Flags are the compile options after start-of-pattern items.
	Flags   syntax.Flags
	Newline syntax.Newline
	BSR     syntax.BSR
	Tables  *chartables.Tables
	// TopBackref is the highest group number referenced by a back
	// reference.
	TopBackref int
	// HasCRorLF is set when the pattern contains an explicit CR or LF.
	HasCRorLF bool
	// HasThen is set when the pattern contains (*THEN).
	HasThen bool
	Hints   Hints
	// MatchLimit and RecursionLimit come from the pattern; zero is unset.
	MatchLimit     int
	RecursionLimit int
}

// UTF reports whether the program was compiled in UTF mode.
func (p *Prog) UTF() bool { return p.Flags&syntax.UTF != 0 }

// UCP reports whether \d, \s, \w and \b use Unicode properties.
func (p *Prog) UCP() bool { return p.Flags&syntax.UCP != 0 }

// GroupStart returns the index of the first bracket that opens capture n,
// or -1.
func (p *Prog) GroupStart(n int) int {
	for i := range p.Insts {
		in := &p.Insts[i]
		if (in.Op == OpCBra || in.Op == OpCBraPos) && int(in.Group) == n {
			return i
		}
	}
	return -1
}
