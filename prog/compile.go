package prog

import (
	"fmt"
	"sort"

	"github.com/coregx/pcrex/chartables"
	"github.com/coregx/pcrex/internal/conv"
	"github.com/coregx/pcrex/internal/sparse"
	"github.com/coregx/pcrex/syntax"
	"github.com/coregx/pcrex/ucd"
)

// CompileError reports a pattern that parsed but could not be lowered to
// a program.
type CompileError struct {
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("prog: compiling %q: %v", e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// maxFoldRange bounds the size of a class range whose case folds are
// expanded one character at a time.
const maxFoldRange = 0x10000

type compiler struct {
	re     *syntax.Regexp
	prog   *Prog
	tables *chartables.Tables
	utf    bool

	// groups maps capture numbers to their nodes, for lookbehind lengths
	// through subroutine calls.
	groups map[int]*syntax.Node
	// calls holds OpRecurse instructions whose target is resolved last.
	calls []int
	// open lists the capture groups enclosing the current point.
	open    []int
	asserts int
	accept  bool
}

// Compile lowers a parsed pattern into a program. A nil tables selects
// chartables.Default().
func Compile(re *syntax.Regexp, tables *chartables.Tables) (*Prog, error) {
	if tables == nil {
		tables = chartables.Default()
	}
	c := &compiler{
		re:     re,
		tables: tables,
		utf:    re.Flags&syntax.UTF != 0,
		groups: make(map[int]*syntax.Node),
		prog: &Prog{
			Pattern:        re.Pattern,
			Captures:       re.Captures,
			Names:          re.Names,
			NameIndex:      re.NameIndex,
			Flags:          re.Flags,
			Newline:        re.Newline,
			BSR:            re.BSR,
			Tables:         tables,
			MatchLimit:     re.MatchLimit,
			RecursionLimit: re.RecursionLimit,
		},
	}
	c.scan(re.Root)

	top := c.emit(Inst{Op: OpBra})
	if err := c.branches(top, alternatives(re.Root), nil); err != nil {
		return nil, &CompileError{Pattern: re.Pattern, Err: err}
	}
	c.emit(Inst{Op: OpKet, Link: top})
	c.emit(Inst{Op: OpEnd})

	for _, i := range c.calls {
		in := &c.prog.Insts[i]
		if in.Group == 0 {
			in.Link = 0
			continue
		}
		target := c.prog.GroupStart(int(in.Group))
		if target < 0 {
			return nil, &CompileError{Pattern: re.Pattern,
				Err: &syntax.Error{Code: syntax.ErrUnknownGroup, Pattern: re.Pattern}}
		}
		in.Link = target
	}
	c.prog.Hints = c.analyze(c.accept)
	return c.prog, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(re *syntax.Regexp) *Prog {
	p, err := Compile(re, nil)
	if err != nil {
		panic(err)
	}
	return p
}

// scan records capture nodes and pattern-wide facts before lowering.
func (c *compiler) scan(n *syntax.Node) {
	switch n.Op {
	case syntax.OpCapture:
		if _, ok := c.groups[n.Index]; !ok {
			c.groups[n.Index] = n
		}
	case syntax.OpBackref:
		top := n.Index
		for _, g := range n.Indices {
			top = max(top, g)
		}
		c.prog.TopBackref = max(c.prog.TopBackref, top)
	case syntax.OpVerb:
		if n.Verb == syntax.VerbThen {
			c.prog.HasThen = true
		}
	case syntax.OpConditional:
		if n.Cond.Kind == syntax.CondAssert {
			c.scan(n.Cond.Assert)
		}
	}
	for _, s := range n.Sub {
		c.scan(s)
	}
}

func (c *compiler) emit(in Inst) int {
	c.prog.Insts = append(c.prog.Insts, in)
	return len(c.prog.Insts) - 1
}

func (c *compiler) link(from, to int) {
	c.prog.Insts[from].Link = to
}

func alternatives(n *syntax.Node) []*syntax.Node {
	if n.Op == syntax.OpAlternate {
		return n.Sub
	}
	return []*syntax.Node{n}
}

// branches emits the alternatives of the bracket at start, chaining the
// bracket and every Alt. The caller emits the Ket. behind is the enclosing
// lookbehind, whose branches must have a fixed length.
func (c *compiler) branches(start int, alts []*syntax.Node, behind *syntax.Node) error {
	last := start
	for i, br := range alts {
		if i > 0 {
			a := c.emit(Inst{Op: OpAlt})
			c.link(last, a)
			last = a
		}
		if behind != nil {
			n, ok := c.fixedLength(br, sparse.NewSet(c.re.Captures+1))
			if !ok {
				return &syntax.Error{Code: syntax.ErrLookbehind, Offset: behind.Pos, Pattern: c.re.Pattern}
			}
			c.emit(Inst{Op: OpReverse, Count: n})
		}
		if err := c.node(br); err != nil {
			return err
		}
	}
	// Leave the last Alt (or the bracket) pointing at the Ket that the
	// caller is about to emit.
	c.prog.Insts[last].Link = len(c.prog.Insts)
	return nil
}

//nolint:gocyclo,cyclop // one case per node kind
func (c *compiler) node(n *syntax.Node) error {
	switch n.Op {
	case syntax.OpEmpty:
	case syntax.OpLiteral:
		if n.Rune == '\r' || n.Rune == '\n' {
			c.prog.HasCRorLF = true
		}
		c.emit(Inst{Op: OpItem, Item: c.charItem(ItemChar, n.Rune, n.Flags&syntax.Caseless != 0)})
	case syntax.OpClass, syntax.OpType, syntax.OpProp:
		c.emit(Inst{Op: OpItem, Item: c.item(n)})
	case syntax.OpAnchor:
		c.emit(Inst{Op: anchorOp(n)})
	case syntax.OpConcat:
		for _, s := range n.Sub {
			if err := c.node(s); err != nil {
				return err
			}
		}
	case syntax.OpAlternate:
		return c.group(&syntax.Node{Op: syntax.OpGroup, Sub: []*syntax.Node{n}, Flags: n.Flags}, OpKet, false, false)
	case syntax.OpRepeat:
		return c.repeat(n)
	case syntax.OpCapture, syntax.OpGroup, syntax.OpAtomic, syntax.OpLookahead,
		syntax.OpLookbehind, syntax.OpConditional:
		return c.group(n, OpKet, false, false)
	case syntax.OpBackref:
		c.emit(c.ref(n, 1, 1, syntax.Greedy))
	case syntax.OpRecurse:
		c.recurse(n)
	case syntax.OpVerb:
		c.verb(n)
	case syntax.OpCallout:
		c.emit(Inst{
			Op:         OpCallout,
			Group:      uint16(conv.IntToUint8(n.Index)), // callout numbers are 0 to 255
			PatternPos: n.Pos,
			NextLen:    n.Len,
		})
	default:
		return fmt.Errorf("unexpected node %d", n.Op)
	}
	return nil
}

func anchorOp(n *syntax.Node) Op {
	multiline := n.Flags&syntax.Multiline != 0
	switch n.Anchor {
	case syntax.AnchorStart:
		return OpSOD
	case syntax.AnchorMatchStart:
		return OpSOM
	case syntax.AnchorKeep:
		return OpSetSOM
	case syntax.AnchorWordBoundary:
		return OpWordBoundary
	case syntax.AnchorNotWordBoundary:
		return OpNotWordBoundary
	case syntax.AnchorLineStart:
		if multiline {
			return OpCircM
		}
		return OpCirc
	case syntax.AnchorLineEnd:
		if multiline {
			return OpDollM
		}
		return OpDoll
	case syntax.AnchorEnd:
		return OpEOD
	}
	return OpEODN
}

func (c *compiler) recurse(n *syntax.Node) {
	i := c.emit(Inst{Op: OpRecurse, Group: conv.IntToUint16(n.Index)})
	c.calls = append(c.calls, i)
}

func (c *compiler) ref(n *syntax.Node, lo, hi int, mode syntax.RepeatMode) Inst {
	in := Inst{
		Op:       OpRef,
		Group:    conv.IntToUint16(n.Index),
		Caseless: n.Flags&syntax.Caseless != 0,
		Min:      lo,
		Max:      hi,
		Mode:     mode,
	}
	if len(n.Indices) > 1 {
		in.Op = OpDNRef
		in.Groups = n.Indices
	}
	return in
}

func (c *compiler) verb(n *syntax.Node) {
	switch n.Verb {
	case syntax.VerbAccept:
		c.accept = true
		for i := len(c.open) - 1; i >= 0; i-- {
			c.emit(Inst{Op: OpClose, Group: conv.IntToUint16(c.open[i])})
		}
		op := OpAccept
		if c.asserts > 0 {
			op = OpAssertAccept
		}
		c.emit(Inst{Op: op})
	case syntax.VerbFail:
		c.emit(Inst{Op: OpFail})
	case syntax.VerbCommit:
		c.emit(Inst{Op: OpCommit})
	case syntax.VerbMark:
		c.emit(Inst{Op: OpMark, Name: n.Name})
	case syntax.VerbPrune:
		c.emit(Inst{Op: withArg(OpPrune, OpPruneArg, n.Name), Name: n.Name})
	case syntax.VerbSkip:
		c.emit(Inst{Op: withArg(OpSkip, OpSkipArg, n.Name), Name: n.Name})
	case syntax.VerbThen:
		c.emit(Inst{Op: withArg(OpThen, OpThenArg, n.Name), Name: n.Name})
	}
}

func withArg(plain, arg Op, name string) Op {
	if name != "" {
		return arg
	}
	return plain
}

func containsCapture(n *syntax.Node) bool {
	if n.Op == syntax.OpCapture {
		return true
	}
	if n.Op == syntax.OpConditional && n.Cond.Kind == syntax.CondAssert && containsCapture(n.Cond.Assert) {
		return true
	}
	for _, s := range n.Sub {
		if containsCapture(s) {
			return true
		}
	}
	return false
}

// group emits a bracket for n closed by ket. pos selects the possessive
// bracket forms; checkEmpty marks an unlimited repeat of a body that can
// match the empty string.
func (c *compiler) group(n *syntax.Node, ket Op, pos, checkEmpty bool) error {
	in := Inst{CheckEmpty: checkEmpty}
	var alts []*syntax.Node
	var behind *syntax.Node
	switch n.Op {
	case syntax.OpCapture:
		in.Op, in.Group = OpCBra, conv.IntToUint16(n.Index)
		if pos {
			in.Op = OpCBraPos
		}
		c.open = append(c.open, n.Index)
		defer func() { c.open = c.open[:len(c.open)-1] }()
	case syntax.OpGroup:
		in.Op = OpBra
		if pos {
			in.Op = OpBraPos
		}
	case syntax.OpRecurse:
		in.Op = OpBra
		if pos {
			in.Op = OpBraPos
		}
		alts = []*syntax.Node{n}
	case syntax.OpAtomic:
		in.Op = OpOnceNC
		if containsCapture(n) {
			in.Op = OpOnce
		}
	case syntax.OpLookahead, syntax.OpLookbehind:
		if n.Op == syntax.OpLookbehind {
			behind = n
		}
		switch {
		case behind != nil && n.Negate:
			in.Op = OpAssertBackNot
		case behind != nil:
			in.Op = OpAssertBack
		case n.Negate:
			in.Op = OpAssertNot
		default:
			in.Op = OpAssert
		}
		c.asserts++
		defer func() { c.asserts-- }()
	case syntax.OpConditional:
		in.Op = OpCond
		alts = n.Sub
	default:
		return fmt.Errorf("node %d is not a group", n.Op)
	}
	if alts == nil {
		alts = alternatives(n.Sub[0])
	}

	start := c.emit(in)
	if n.Op == syntax.OpConditional {
		if err := c.condition(n.Cond); err != nil {
			return err
		}
		// The first branch of a conditional runs straight on from the
		// condition, so only the second one is linked.
		last := start
		for i, br := range alts {
			if i > 0 {
				a := c.emit(Inst{Op: OpAlt})
				c.link(last, a)
				last = a
			}
			if err := c.node(br); err != nil {
				return err
			}
		}
		k := c.emit(Inst{Op: ket, Link: start})
		c.link(last, k)
		return nil
	}
	if err := c.branches(start, alts, behind); err != nil {
		return err
	}
	c.emit(Inst{Op: ket, Link: start})
	return nil
}

func (c *compiler) condition(cond *syntax.Condition) error {
	switch cond.Kind {
	case syntax.CondGroup:
		if len(cond.Indices) > 1 {
			c.emit(Inst{Op: OpDNCRef, Groups: cond.Indices})
			return nil
		}
		c.emit(Inst{Op: OpCRef, Group: conv.IntToUint16(cond.Index)})
	case syntax.CondRecursion:
		g := cond.Index
		if g < 0 {
			g = RRefAny
		}
		c.emit(Inst{Op: OpRRef, Group: conv.IntToUint16(g)})
	case syntax.CondDefine:
		c.emit(Inst{Op: OpDef})
	case syntax.CondAssert:
		return c.group(cond.Assert, OpKet, false, false)
	}
	return nil
}

func isGroup(n *syntax.Node) bool {
	switch n.Op {
	case syntax.OpCapture, syntax.OpGroup, syntax.OpAtomic, syntax.OpConditional, syntax.OpRecurse:
		return true
	}
	return false
}

func (c *compiler) repeat(n *syntax.Node) error {
	sub := n.Sub[0]
	lo, hi, mode := n.Min, n.Max, n.Mode
	switch sub.Op {
	case syntax.OpLiteral, syntax.OpClass, syntax.OpType, syntax.OpProp:
		if hi == 0 {
			return nil
		}
		if sub.Op == syntax.OpLiteral && (sub.Rune == '\r' || sub.Rune == '\n') {
			c.prog.HasCRorLF = true
		}
		it := c.item(sub)
		if lo == 1 && hi == 1 {
			c.emit(Inst{Op: OpItem, Item: it})
			return nil
		}
		c.emit(Inst{Op: OpRepeat, Item: it, Min: lo, Max: hi, Mode: mode})
		return nil
	case syntax.OpBackref:
		if hi == 0 {
			return nil
		}
		if mode != syntax.Possessive || lo == hi {
			c.emit(c.ref(sub, lo, hi, mode))
			return nil
		}
		b := c.emit(Inst{Op: OpOnceNC})
		c.emit(c.ref(sub, lo, hi, syntax.Greedy))
		k := c.emit(Inst{Op: OpKet, Link: b})
		c.link(b, k)
		return nil
	case syntax.OpLookahead, syntax.OpLookbehind:
		if lo > 0 {
			return c.group(sub, OpKet, false, false)
		}
		return c.optional(sub, 1, mode)
	case syntax.OpConditional:
		if sub.Cond.Kind == syntax.CondDefine {
			return c.group(sub, OpKet, false, false)
		}
	}
	if !isGroup(sub) {
		return c.node(n.Sub[0])
	}
	return c.repeatGroup(sub, lo, hi, mode)
}

func (c *compiler) repeatGroup(sub *syntax.Node, lo, hi int, mode syntax.RepeatMode) error {
	canEmpty := sub.CanBeEmpty()
	if hi == 0 {
		c.emit(Inst{Op: OpSkipZero})
		return c.group(sub, OpKet, false, false)
	}
	if mode == syntax.Possessive {
		plain := sub.Op == syntax.OpCapture || sub.Op == syntax.OpGroup || sub.Op == syntax.OpRecurse
		if hi == Unlimited && lo <= 1 && plain {
			if lo == 0 {
				c.emit(Inst{Op: OpBraPosZero})
			}
			return c.group(sub, OpKetRPos, true, canEmpty)
		}
		return c.once(sub, func() error { return c.repeatGroup(sub, lo, hi, syntax.Greedy) })
	}
	if hi == Unlimited {
		for i := 1; i < lo; i++ {
			if err := c.group(sub, OpKet, false, false); err != nil {
				return err
			}
		}
		ket := OpKetRMax
		if mode == syntax.Lazy {
			ket = OpKetRMin
		}
		if lo == 0 {
			c.emit(Inst{Op: zeroOp(mode)})
		}
		return c.group(sub, ket, false, canEmpty)
	}
	for i := 0; i < lo; i++ {
		if err := c.group(sub, OpKet, false, false); err != nil {
			return err
		}
	}
	return c.optional(sub, hi-lo, mode)
}

func zeroOp(mode syntax.RepeatMode) Op {
	if mode == syntax.Lazy {
		return OpBraMinZero
	}
	return OpBraZero
}

// optional emits k nested optional copies of sub: (?:X(?:X)?)?.
func (c *compiler) optional(sub *syntax.Node, k int, mode syntax.RepeatMode) error {
	if k == 0 {
		return nil
	}
	c.emit(Inst{Op: zeroOp(mode)})
	if k == 1 {
		return c.group(sub, OpKet, false, false)
	}
	b := c.emit(Inst{Op: OpBra})
	if err := c.group(sub, OpKet, false, false); err != nil {
		return err
	}
	if err := c.optional(sub, k-1, mode); err != nil {
		return err
	}
	k2 := c.emit(Inst{Op: OpKet, Link: b})
	c.link(b, k2)
	return nil
}

// once wraps whatever body emits in an atomic bracket.
func (c *compiler) once(sub *syntax.Node, body func() error) error {
	op := OpOnceNC
	if containsCapture(sub) {
		op = OpOnce
	}
	b := c.emit(Inst{Op: op})
	if err := body(); err != nil {
		return err
	}
	k := c.emit(Inst{Op: OpKet, Link: b})
	c.link(b, k)
	return nil
}

// fixedLength returns the number of characters n always matches.
// seen holds the groups being expanded through subroutine calls.
//
//nolint:gocyclo,cyclop // one case per node kind
func (c *compiler) fixedLength(n *syntax.Node, seen *sparse.Set) (int, bool) {
	switch n.Op {
	case syntax.OpEmpty, syntax.OpAnchor, syntax.OpLookahead, syntax.OpLookbehind,
		syntax.OpCallout, syntax.OpVerb:
		return 0, true
	case syntax.OpLiteral, syntax.OpClass, syntax.OpProp:
		return 1, true
	case syntax.OpType:
		switch n.Type {
		case syntax.TypeNewlineSeq, syntax.TypeCluster:
			return 0, false
		case syntax.TypeAnyByte:
			return 1, !c.utf
		}
		return 1, true
	case syntax.OpConcat:
		total := 0
		for _, s := range n.Sub {
			l, ok := c.fixedLength(s, seen)
			if !ok {
				return 0, false
			}
			total += l
		}
		return total, true
	case syntax.OpAlternate:
		return c.sameLength(n.Sub, seen)
	case syntax.OpRepeat:
		if n.Min != n.Max {
			return 0, false
		}
		l, ok := c.fixedLength(n.Sub[0], seen)
		return l * n.Min, ok
	case syntax.OpCapture, syntax.OpGroup, syntax.OpAtomic:
		return c.fixedLength(n.Sub[0], seen)
	case syntax.OpConditional:
		if n.Cond.Kind == syntax.CondDefine {
			return 0, true
		}
		subs := n.Sub
		if len(subs) == 1 {
			subs = append([]*syntax.Node{subs[0]}, &syntax.Node{Op: syntax.OpEmpty})
		}
		return c.sameLength(subs, seen)
	case syntax.OpRecurse:
		target := c.re.Root
		if n.Index > 0 {
			g, ok := c.groups[n.Index]
			if !ok {
				return 0, false
			}
			target = g
		}
		v := uint32(n.Index)
		if seen.Contains(v) {
			return 0, false
		}
		seen.Insert(v)
		l, ok := c.fixedLength(target, seen)
		seen.Remove(v)
		return l, ok
	}
	return 0, false
}

func (c *compiler) sameLength(subs []*syntax.Node, seen *sparse.Set) (int, bool) {
	want := -1
	for _, s := range subs {
		l, ok := c.fixedLength(s, seen)
		if !ok || (want >= 0 && l != want) {
			return 0, false
		}
		want = l
	}
	return max(want, 0), true
}

// folds returns the other case forms of r. In UTF mode the whole Unicode
// case set is used, so k also folds to U+212A KELVIN SIGN.
func (c *compiler) folds(r rune) []rune {
	if c.utf {
		return ucd.Fold(r)
	}
	if r < 256 {
		if o := c.tables.FCC[r]; rune(o) != r {
			return []rune{rune(o)}
		}
	}
	return nil
}

func (c *compiler) charItem(kind ItemKind, r rune, caseless bool) Item {
	it := Item{Kind: kind, Char: r}
	if caseless {
		it.Folds = c.folds(r)
	}
	return it
}

func (c *compiler) item(n *syntax.Node) Item {
	switch n.Op {
	case syntax.OpLiteral:
		return c.charItem(ItemChar, n.Rune, n.Flags&syntax.Caseless != 0)
	case syntax.OpClass:
		return c.classItem(n)
	case syntax.OpProp:
		return Item{Kind: ItemProp, Prop: n.Prop}
	}
	return c.typeItem(n.Type, n.Flags)
}

// ucpProps maps the escapes that become properties under UCP.
var ucpProps = map[syntax.Type]struct {
	name    string
	negated bool
}{
	syntax.TypeDigit: {"Nd", false}, syntax.TypeNotDigit: {"Nd", true},
	syntax.TypeSpace: {"Xps", false}, syntax.TypeNotSpace: {"Xps", true},
	syntax.TypeWord: {"Xwd", false}, syntax.TypeNotWord: {"Xwd", true},
}

func ucpProp(t syntax.Type) (ucd.Prop, bool) {
	m, ok := ucpProps[t]
	if !ok {
		return ucd.Prop{}, false
	}
	p, _ := ucd.Lookup(m.name)
	p.Negated = m.negated
	return p, true
}

var simpleTypes = map[syntax.Type]CharType{
	syntax.TypeNotNewline: TypeAny, syntax.TypeAnyByte: TypeAnyByte,
	syntax.TypeDigit: TypeDigit, syntax.TypeNotDigit: TypeNotDigit,
	syntax.TypeSpace: TypeSpace, syntax.TypeNotSpace: TypeNotSpace,
	syntax.TypeWord: TypeWord, syntax.TypeNotWord: TypeNotWord,
	syntax.TypeHSpace: TypeHSpace, syntax.TypeNotHSpace: TypeNotHSpace,
	syntax.TypeVSpace: TypeVSpace, syntax.TypeNotVSpace: TypeNotVSpace,
	syntax.TypeNewlineSeq: TypeAnyNL, syntax.TypeCluster: TypeExtUni,
}

func (c *compiler) typeItem(t syntax.Type, flags syntax.Flags) Item {
	if flags&syntax.UCP != 0 || c.re.Flags&syntax.UCP != 0 {
		if p, ok := ucpProp(t); ok {
			return Item{Kind: ItemProp, Prop: p}
		}
	}
	if t == syntax.TypeAny {
		if flags&syntax.DotAll != 0 {
			return Item{Kind: ItemType, Type: TypeAllAny}
		}
		return Item{Kind: ItemType, Type: TypeAny}
	}
	return Item{Kind: ItemType, Type: simpleTypes[t]}
}

// typeHasByte reports whether a class-compatible type matches c < 256
// outside UCP mode.
func (c *compiler) typeHasByte(t CharType, b byte) bool {
	tb := c.tables
	switch t {
	case TypeDigit:
		return tb.InClass(chartables.CBitDigit, b)
	case TypeNotDigit:
		return !tb.InClass(chartables.CBitDigit, b)
	case TypeSpace:
		return tb.InClass(chartables.CBitSpace, b)
	case TypeNotSpace:
		return !tb.InClass(chartables.CBitSpace, b)
	case TypeWord:
		return tb.InClass(chartables.CBitWord, b)
	case TypeNotWord:
		return !tb.InClass(chartables.CBitWord, b)
	case TypeHSpace:
		return ucd.IsHSpace(rune(b))
	case TypeNotHSpace:
		return !ucd.IsHSpace(rune(b))
	case TypeVSpace:
		return ucd.IsVSpace(rune(b))
	case TypeNotVSpace:
		return !ucd.IsVSpace(rune(b))
	case TypeAllAny:
		return true
	}
	return false
}

// posixUCP maps POSIX class names to properties under UCP.
var posixUCP = map[string]string{
	"alnum": "Xan", "alpha": "L", "digit": "Nd", "lower": "Ll",
	"upper": "Lu", "space": "Xps", "word": "Xwd",
}

func (c *compiler) posixHasByte(name string, b byte) bool {
	tb := c.tables
	in := tb.InClass
	switch name {
	case "alpha":
		return in(chartables.CBitUpper, b) || in(chartables.CBitLower, b)
	case "lower":
		return in(chartables.CBitLower, b)
	case "upper":
		return in(chartables.CBitUpper, b)
	case "alnum":
		return in(chartables.CBitUpper, b) || in(chartables.CBitLower, b) || in(chartables.CBitDigit, b)
	case "ascii":
		return b < 128
	case "blank":
		return b == ' ' || b == '\t'
	case "cntrl":
		return in(chartables.CBitCntrl, b)
	case "digit":
		return in(chartables.CBitDigit, b)
	case "graph":
		return in(chartables.CBitGraph, b)
	case "print":
		return in(chartables.CBitPrint, b)
	case "punct":
		return in(chartables.CBitPunct, b)
	case "space":
		return in(chartables.CBitSpace, b)
	case "word":
		return in(chartables.CBitWord, b)
	case "xdigit":
		return in(chartables.CBitXDigit, b)
	}
	return false
}

//nolint:gocyclo,cyclop // each kind of class member is folded in turn
func (c *compiler) classItem(n *syntax.Node) Item {
	src := n.Class
	caseless := n.Flags&syntax.Caseless != 0
	ucp := n.Flags&syntax.UCP != 0 || c.re.Flags&syntax.UCP != 0
	cls := &Class{Negated: src.Negated}
	var member [256]bool

	addHigh := func(lo, hi rune) {
		if c.utf {
			cls.Ranges = append(cls.Ranges, syntax.RuneRange{Lo: lo, Hi: hi})
		}
	}
	addChar := func(r rune) {
		if r < 256 {
			member[r] = true
		} else {
			addHigh(r, r)
		}
	}
	for _, rr := range src.Ranges {
		if rr.Lo <= '\r' && rr.Hi >= '\n' {
			c.prog.HasCRorLF = true
		}
		for r := rr.Lo; r <= min(rr.Hi, 255); r++ {
			member[r] = true
		}
		if rr.Hi >= 256 {
			addHigh(max(rr.Lo, 256), rr.Hi)
		}
		if caseless && rr.Hi-rr.Lo < maxFoldRange {
			for r := rr.Lo; r <= rr.Hi; r++ {
				for _, f := range c.folds(r) {
					addChar(f)
				}
			}
		}
	}
	for _, t := range src.Types {
		if ucp {
			if p, ok := ucpProp(t); ok {
				for b := 0; b < 256; b++ {
					member[b] = member[b] || p.Match(rune(b))
				}
				cls.Props = append(cls.Props, p)
				continue
			}
		}
		ct := simpleTypes[t]
		for b := 0; b < 256; b++ {
			member[b] = member[b] || c.typeHasByte(ct, byte(b))
		}
		cls.Types = append(cls.Types, ct)
	}
	for _, px := range src.Posix {
		name := px.Name
		if caseless && (name == "upper" || name == "lower") {
			name = "alpha"
		}
		if ucp {
			if pn, ok := posixUCP[name]; ok {
				p, _ := ucd.Lookup(pn)
				p.Negated = px.Negated
				for b := 0; b < 256; b++ {
					member[b] = member[b] || p.Match(rune(b))
				}
				cls.Props = append(cls.Props, p)
				continue
			}
		}
		for b := 0; b < 256; b++ {
			member[b] = member[b] || c.posixHasByte(name, byte(b)) != px.Negated
		}
		if px.Negated {
			// Characters above 255 are in no POSIX class outside UCP mode.
			cls.Types = append(cls.Types, TypeAllAny)
		}
	}
	for _, p := range src.Props {
		for b := 0; b < 256; b++ {
			member[b] = member[b] || p.Match(rune(b))
		}
		cls.Props = append(cls.Props, p)
	}

	for b := 0; b < 256; b++ {
		if member[b] != src.Negated {
			cls.setByte(byte(b))
		}
	}
	if !c.utf {
		cls.Ranges, cls.Types, cls.Props = nil, nil, nil
	}
	sort.Slice(cls.Ranges, func(i, j int) bool { return cls.Ranges[i].Lo < cls.Ranges[j].Lo })
	return Item{Kind: ItemClass, Class: cls}
}
