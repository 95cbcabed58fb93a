package prog

import (
	"bytes"
	"unicode/utf8"

	"github.com/coregx/pcrex/syntax"
)

// minPrefix is the shortest literal prefix worth a substring search; a
// single leading byte is already covered by the first-character scan.
const minPrefix = 2

// analyze derives start-up hints from the syntax tree. Anchoring is always
// computed. The other hints assume that a match attempt at a position that
// cannot start a match has no observable effect, which verbs, callouts,
// back references, recursion and conditionals break, so their presence
// leaves the hints empty.
func (c *compiler) analyze(accept bool) Hints {
	root := c.re.Root
	h := Hints{
		Anchored:  c.re.Flags&syntax.Anchored != 0 || anchored(root, false),
		StartLine: anchored(root, true),
	}
	if c.re.Flags&syntax.AutoCallout != 0 || hasSideEffects(root) {
		return h
	}
	if r, caseless, ok := firstLiteral(root); ok {
		h.FirstChar, h.FirstOther, h.FirstCaseless, h.HasFirst = c.unitOf(r, caseless, true)
	}
	if req := requiredLiterals(root); len(req) > 0 && (!h.HasFirst || len(req) >= 2) {
		last := req[len(req)-1]
		h.ReqChar, h.ReqOther, h.ReqCaseless, h.HasReq = c.unitOf(last.r, last.caseless, false)
	}
	if !h.HasFirst && !h.StartLine {
		if set, empty, ok := c.firstSet(root); ok && !empty && !full(set) {
			h.StartBits = set
		}
	}
	if !accept {
		h.MinLength = minLength(root)
	}
	if !h.Anchored {
		h.Prefixes = c.prefixes(root)
	}
	return h
}

// hasSideEffects reports whether n contains an item whose outcome depends
// on more than the characters at the current position.
func hasSideEffects(n *syntax.Node) bool {
	switch n.Op {
	case syntax.OpVerb, syntax.OpCallout, syntax.OpBackref, syntax.OpRecurse, syntax.OpConditional:
		return true
	}
	for _, s := range n.Sub {
		if hasSideEffects(s) {
			return true
		}
	}
	return false
}

// anchored reports whether every branch of n starts with an anchor: \A,
// \G or a non-multiline ^ when startLine is false, a multiline ^ when it
// is true.
func anchored(n *syntax.Node, startLine bool) bool {
	switch n.Op {
	case syntax.OpAnchor:
		multiline := n.Flags&syntax.Multiline != 0
		if startLine {
			return n.Anchor == syntax.AnchorLineStart && multiline
		}
		return n.Anchor == syntax.AnchorStart || n.Anchor == syntax.AnchorMatchStart ||
			(n.Anchor == syntax.AnchorLineStart && !multiline)
	case syntax.OpConcat:
		return len(n.Sub) > 0 && anchored(n.Sub[0], startLine)
	case syntax.OpAlternate:
		for _, s := range n.Sub {
			if !anchored(s, startLine) {
				return false
			}
		}
		return true
	case syntax.OpCapture, syntax.OpGroup, syntax.OpAtomic:
		return anchored(n.Sub[0], startLine)
	case syntax.OpLookahead:
		return !n.Negate && anchored(n.Sub[0], startLine)
	case syntax.OpRepeat:
		return n.Min > 0 && anchored(n.Sub[0], startLine)
	}
	return false
}

func zeroWidth(n *syntax.Node) bool {
	switch n.Op {
	case syntax.OpAnchor, syntax.OpLookahead, syntax.OpLookbehind, syntax.OpEmpty:
		return true
	}
	return false
}

// firstLiteral returns the literal every match of n starts with.
func firstLiteral(n *syntax.Node) (rune, bool, bool) {
	switch n.Op {
	case syntax.OpLiteral:
		return n.Rune, n.Flags&syntax.Caseless != 0, true
	case syntax.OpConcat:
		for _, s := range n.Sub {
			if zeroWidth(s) {
				continue
			}
			return firstLiteral(s)
		}
	case syntax.OpAlternate:
		var r rune
		var caseless bool
		for i, s := range n.Sub {
			sr, sc, ok := firstLiteral(s)
			if !ok || (i > 0 && (sr != r || sc != caseless)) {
				return 0, false, false
			}
			r, caseless = sr, sc
		}
		return r, caseless, len(n.Sub) > 0
	case syntax.OpCapture, syntax.OpGroup, syntax.OpAtomic:
		return firstLiteral(n.Sub[0])
	case syntax.OpRepeat:
		if n.Min > 0 {
			return firstLiteral(n.Sub[0])
		}
	}
	return 0, false, false
}

type reqLit struct {
	r        rune
	caseless bool
}

// requiredLiterals lists literals that occur, in order, in every match.
func requiredLiterals(n *syntax.Node) []reqLit {
	switch n.Op {
	case syntax.OpLiteral:
		return []reqLit{{n.Rune, n.Flags&syntax.Caseless != 0}}
	case syntax.OpConcat:
		var out []reqLit
		for _, s := range n.Sub {
			out = append(out, requiredLiterals(s)...)
		}
		return out
	case syntax.OpAlternate:
		var last reqLit
		for i, s := range n.Sub {
			req := requiredLiterals(s)
			if len(req) == 0 || (i > 0 && req[len(req)-1] != last) {
				return nil
			}
			last = req[len(req)-1]
		}
		return []reqLit{last}
	case syntax.OpCapture, syntax.OpGroup, syntax.OpAtomic:
		return requiredLiterals(n.Sub[0])
	case syntax.OpRepeat:
		if n.Min > 0 {
			return requiredLiterals(n.Sub[0])
		}
	}
	return nil
}

// unitOf converts a literal into the code unit the start-up scans look
// for. first selects the leading byte of a UTF-8 encoding, otherwise the
// trailing one.
func (c *compiler) unitOf(r rune, caseless, first bool) (unit, other byte, folded, ok bool) {
	if !c.utf || r < utf8.RuneSelf {
		if r > 255 {
			return 0, 0, false, false
		}
		b := byte(r)
		if caseless {
			if c.utf && len(c.folds(r)) > 1 {
				return 0, 0, false, false
			}
			if o := c.tables.FCC[b]; o != b {
				if c.utf && o >= utf8.RuneSelf {
					return 0, 0, false, false
				}
				return b, o, true, true
			}
		}
		return b, b, false, true
	}
	if caseless && len(c.folds(r)) > 0 {
		return 0, 0, false, false
	}
	enc := utf8.AppendRune(nil, r)
	if first {
		return enc[0], enc[0], false, true
	}
	return enc[len(enc)-1], enc[len(enc)-1], false, true
}

func full(set *[256]bool) bool {
	for _, v := range set {
		if !v {
			return false
		}
	}
	return true
}

// addHighLeads marks every byte that can lead a multi-byte UTF-8 sequence.
func addHighLeads(set *[256]bool) {
	for b := 0xc0; b < 0x100; b++ {
		set[b] = true
	}
}

// itemBytes adds the code units that can start a match of it.
func (c *compiler) itemBytes(it Item, set *[256]bool) bool {
	switch it.Kind {
	case ItemChar:
		for _, r := range append([]rune{it.Char}, it.Folds...) {
			if c.utf && r >= utf8.RuneSelf {
				set[utf8.AppendRune(nil, r)[0]] = true
			} else if r < 256 {
				set[r] = true
			}
		}
		return true
	case ItemClass:
		limit := 256
		if c.utf {
			limit = utf8.RuneSelf
			addHighLeads(set)
		}
		for b := 0; b < limit; b++ {
			if it.Class.HasByte(byte(b)) {
				set[b] = true
			}
		}
		return true
	case ItemProp:
		limit := 256
		if c.utf {
			limit = utf8.RuneSelf
			addHighLeads(set)
		}
		for b := 0; b < limit; b++ {
			if it.Prop.Match(rune(b)) {
				set[b] = true
			}
		}
		return true
	case ItemType:
		switch it.Type {
		case TypeAny, TypeAllAny, TypeAnyByte, TypeExtUni:
			return false
		case TypeAnyNL:
			for _, b := range []byte{'\n', '\v', '\f', '\r'} {
				set[b] = true
			}
			if c.utf {
				set[0xc2], set[0xe2] = true, true
			} else {
				set[0x85] = true
			}
			return true
		}
		limit := 256
		if c.utf {
			limit = utf8.RuneSelf
			addHighLeads(set)
		}
		for b := 0; b < limit; b++ {
			if c.typeHasByte(it.Type, byte(b)) {
				set[b] = true
			}
		}
		return true
	}
	return false
}

// firstSet returns the code units a match of n can start with and whether
// n can match the empty string.
func (c *compiler) firstSet(n *syntax.Node) (*[256]bool, bool, bool) {
	set := new([256]bool)
	empty, ok := c.addFirst(n, set)
	return set, empty, ok
}

func (c *compiler) addFirst(n *syntax.Node, set *[256]bool) (empty, ok bool) {
	switch n.Op {
	case syntax.OpEmpty, syntax.OpAnchor, syntax.OpLookahead, syntax.OpLookbehind:
		return true, true
	case syntax.OpLiteral, syntax.OpClass, syntax.OpType, syntax.OpProp:
		return false, c.itemBytes(c.item(n), set)
	case syntax.OpConcat:
		for _, s := range n.Sub {
			e, ok := c.addFirst(s, set)
			if !ok {
				return false, false
			}
			if !e {
				return false, true
			}
		}
		return true, true
	case syntax.OpAlternate:
		for _, s := range n.Sub {
			e, ok := c.addFirst(s, set)
			if !ok {
				return false, false
			}
			empty = empty || e
		}
		return empty, true
	case syntax.OpRepeat:
		if n.Max == 0 {
			return true, true
		}
		e, ok := c.addFirst(n.Sub[0], set)
		return e || n.Min == 0, ok
	case syntax.OpCapture, syntax.OpGroup, syntax.OpAtomic:
		return c.addFirst(n.Sub[0], set)
	}
	return false, false
}

// minLength returns a lower bound on the characters a match of n consumes.
func minLength(n *syntax.Node) int {
	switch n.Op {
	case syntax.OpLiteral, syntax.OpClass, syntax.OpType, syntax.OpProp:
		return 1
	case syntax.OpConcat:
		total := 0
		for _, s := range n.Sub {
			total += minLength(s)
		}
		return total
	case syntax.OpAlternate:
		least := -1
		for _, s := range n.Sub {
			if l := minLength(s); least < 0 || l < least {
				least = l
			}
		}
		return max(least, 0)
	case syntax.OpRepeat:
		return n.Min * minLength(n.Sub[0])
	case syntax.OpCapture, syntax.OpGroup, syntax.OpAtomic:
		return minLength(n.Sub[0])
	}
	return 0
}

// prefixes returns the equal-length case-sensitive literal prefixes of
// the top-level branches, or nil when some branch has none.
func (c *compiler) prefixes(root *syntax.Node) [][]byte {
	var out [][]byte
	shortest := -1
	for _, br := range alternatives(root) {
		p, _ := c.literalPrefix(br, nil)
		if len(p) < minPrefix {
			return nil
		}
		if shortest < 0 || len(p) < shortest {
			shortest = len(p)
		}
		out = append(out, p)
	}
	var uniq [][]byte
outer:
	for _, p := range out {
		p = p[:shortest]
		for _, u := range uniq {
			if bytes.Equal(u, p) {
				continue outer
			}
		}
		uniq = append(uniq, p)
	}
	return uniq
}

// literalPrefix appends the leading literals of n to buf and reports
// whether all of n was consumed.
func (c *compiler) literalPrefix(n *syntax.Node, buf []byte) ([]byte, bool) {
	if zeroWidth(n) {
		return buf, true
	}
	switch n.Op {
	case syntax.OpLiteral:
		if n.Flags&syntax.Caseless != 0 && len(c.folds(n.Rune)) > 0 {
			return buf, false
		}
		if c.utf {
			return utf8.AppendRune(buf, n.Rune), true
		}
		return append(buf, byte(n.Rune)), true
	case syntax.OpConcat:
		for _, s := range n.Sub {
			var done bool
			if buf, done = c.literalPrefix(s, buf); !done {
				return buf, false
			}
		}
		return buf, true
	case syntax.OpCapture, syntax.OpGroup, syntax.OpAtomic:
		return c.literalPrefix(n.Sub[0], buf)
	}
	return buf, false
}
