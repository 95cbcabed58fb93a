package syntax

import "github.com/coregx/pcrex/ucd"

// Op is the kind of a syntax tree node.
type Op uint8

const (
	OpEmpty       Op = iota // matches the empty string
	OpLiteral               // Rune
	OpClass                 // Class
	OpType                  // Type
	OpProp                  // Prop
	OpAnchor                // Anchor
	OpConcat                // Sub...
	OpAlternate             // Sub...
	OpRepeat                // Sub[0]{Min,Max} in Mode
	OpCapture               // Index, Name, Sub[0]
	OpGroup                 // non-capturing Sub[0]
	OpAtomic                // (?>Sub[0])
	OpLookahead             // (?=Sub[0]) or (?!Sub[0]) when Negate
	OpLookbehind            // (?<=Sub[0]) or (?<!Sub[0]) when Negate
	OpBackref               // Index, or Indices for a duplicate name
	OpRecurse               // Index (0 = whole pattern)
	OpConditional           // Cond; Sub[0] yes branch, optional Sub[1] no branch
	OpVerb                  // Verb with optional Name
	OpCallout               // Index = callout number
)

// Type is a character type escape or dot.
type Type uint8

const (
	TypeAny        Type = iota // . (DotAll in Flags makes it match newlines)
	TypeNotNewline             // \N
	TypeAnyByte                // \C
	TypeDigit                  // \d
	TypeNotDigit               // \D
	TypeSpace                  // \s
	TypeNotSpace               // \S
	TypeWord                   // \w
	TypeNotWord                // \W
	TypeHSpace                 // \h
	TypeNotHSpace              // \H
	TypeVSpace                 // \v
	TypeNotVSpace              // \V
	TypeNewlineSeq             // \R
	TypeCluster                // \X
)

// Anchor is a zero-width assertion that is not a group.
type Anchor uint8

const (
	AnchorStart           Anchor = iota // \A
	AnchorMatchStart                    // \G
	AnchorKeep                          // \K
	AnchorWordBoundary                  // \b
	AnchorNotWordBoundary               // \B
	AnchorLineStart                     // ^
	AnchorLineEnd                       // $
	AnchorEnd                           // \z
	AnchorEndOptNewline                 // \Z
)

// RepeatMode selects how a quantifier backtracks.
type RepeatMode uint8

const (
	Greedy RepeatMode = iota
	Lazy
	Possessive
)

// Unlimited is the Max of an open-ended quantifier.
const Unlimited = -1

// MaxRepeat bounds the numbers allowed in {n,m}.
const MaxRepeat = 65535

// Verb is a backtracking control verb.
type Verb uint8

const (
	VerbAccept Verb = iota
	VerbFail
	VerbCommit
	VerbPrune
	VerbSkip
	VerbThen
	VerbMark
)

// CondKind is the kind of test in a conditional group.
type CondKind uint8

const (
	CondGroup     CondKind = iota // (?(1)...) group has been set
	CondRecursion                 // (?(R)...) or (?(R1)...)
	CondDefine                    // (?(DEFINE)...)
	CondAssert                    // (?(?=...)...)
)

// Condition is the test of an OpConditional node.
type Condition struct {
	Kind CondKind
	// Index is the group number; for CondRecursion, -1 means any recursion.
	Index int
	// Indices lists every group sharing the name when a duplicate name
	// is referenced.
	Indices []int
	Name    string
	// Assert is the lookaround node for CondAssert.
	Assert *Node
}

// Posix is a [:name:] item inside a class.
type Posix struct {
	Name    string
	Negated bool
}

// RuneRange is an inclusive range of code points.
type RuneRange struct {
	Lo, Hi rune
}

// Class is a parsed bracket expression. Case folding is applied by the
// compiler from the Flags of the enclosing node.
type Class struct {
	Negated bool
	Ranges  []RuneRange
	Types   []Type
	Posix   []Posix
	Props   []ucd.Prop
}

// Node is a syntax tree node.
type Node struct {
	Op    Op
	Flags Flags // option bits in effect where the node was parsed

	Rune   rune
	Class  *Class
	Type   Type
	Prop   ucd.Prop
	Anchor Anchor

	Sub      []*Node
	Min, Max int
	Mode     RepeatMode

	Index   int
	Indices []int
	Name    string
	Negate  bool
	Cond    *Condition
	Verb    Verb

	// Pos is the byte offset of the node in the pattern; Len is the
	// length of the item that follows a callout.
	Pos, Len int
}

// Regexp is a parsed pattern.
type Regexp struct {
	Pattern string
	Root    *Node
	// Flags holds the compile options after start-of-pattern items such
	// as (*UTF8) were applied.
	Flags Flags
	// Captures is the number of capturing groups.
	Captures int
	// Names maps group numbers to names ("" when unnamed).
	Names []string
	// NameIndex maps each name to the groups that carry it.
	NameIndex map[string][]int
	Newline   Newline
	BSR       BSR
	// MatchLimit and RecursionLimit come from (*LIMIT_MATCH=n) and
	// (*LIMIT_RECURSION=n); zero means unset.
	MatchLimit     int
	RecursionLimit int
}

// CanBeEmpty reports whether n can match the empty string. Back
// references, recursion and conditionals are assumed to be able to.
func (n *Node) CanBeEmpty() bool {
	switch n.Op {
	case OpLiteral, OpClass, OpType, OpProp:
		return false
	case OpConcat:
		for _, s := range n.Sub {
			if !s.CanBeEmpty() {
				return false
			}
		}
		return true
	case OpAlternate:
		for _, s := range n.Sub {
			if s.CanBeEmpty() {
				return true
			}
		}
		return false
	case OpRepeat:
		return n.Min == 0 || n.Sub[0].CanBeEmpty()
	case OpCapture, OpGroup, OpAtomic:
		return n.Sub[0].CanBeEmpty()
	case OpVerb:
		return n.Verb != VerbFail
	}
	return true
}
