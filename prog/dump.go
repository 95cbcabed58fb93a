package prog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coregx/pcrex/syntax"
)

func (it Item) String() string {
	switch it.Kind {
	case ItemChar, ItemNot:
		s := strconv.QuoteRune(it.Char)
		if len(it.Folds) > 0 {
			s = "/i " + s
		}
		if it.Kind == ItemNot {
			s = "[^" + s + "]"
		}
		return s
	case ItemType:
		return it.Type.String()
	case ItemClass:
		return it.Class.String()
	case ItemProp:
		if it.Prop.Negated {
			return `\P{` + it.Prop.Name + `}`
		}
		return `\p{` + it.Prop.Name + `}`
	}
	return "?"
}

// String renders the class as its members below 256 followed by a count of
// the extra tests for wider characters.
func (c *Class) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for lo := 0; lo < 256; {
		if !c.HasByte(byte(lo)) {
			lo++
			continue
		}
		hi := lo
		for hi+1 < 256 && c.HasByte(byte(hi+1)) {
			hi++
		}
		b.WriteString(classByte(lo))
		if hi > lo {
			b.WriteByte('-')
			b.WriteString(classByte(hi))
		}
		lo = hi + 1
	}
	if n := len(c.Ranges) + len(c.Types) + len(c.Props); n > 0 || c.Negated {
		neg := ""
		if c.Negated {
			neg = "^"
		}
		fmt.Fprintf(&b, " %swide:%d", neg, n)
	}
	b.WriteByte(']')
	return b.String()
}

func classByte(c int) string {
	if c > ' ' && c < 0x7f && c != ']' && c != '-' && c != '\\' {
		return string(rune(c))
	}
	return fmt.Sprintf(`\x%02x`, c)
}

func repeatSuffix(lo, hi int, mode syntax.RepeatMode) string {
	var s string
	switch {
	case lo == 0 && hi == Unlimited:
		s = "*"
	case lo == 1 && hi == Unlimited:
		s = "+"
	case lo == 0 && hi == 1:
		s = "?"
	case hi == Unlimited:
		s = fmt.Sprintf("{%d,}", lo)
	case lo == hi:
		s = fmt.Sprintf("{%d}", lo)
	default:
		s = fmt.Sprintf("{%d,%d}", lo, hi)
	}
	switch mode {
	case syntax.Lazy:
		s += "?"
	case syntax.Possessive:
		s += "+"
	}
	return s
}

func (in *Inst) String() string {
	op := in.Op.String()
	switch in.Op {
	case OpItem:
		return in.Item.String()
	case OpRepeat:
		return in.Item.String() + repeatSuffix(in.Min, in.Max, in.Mode)
	case OpRef, OpDNRef:
		s := fmt.Sprintf(`\%d`, in.Group)
		if in.Op == OpDNRef {
			s = fmt.Sprintf(`\k%v`, in.Groups)
		}
		if in.Caseless {
			s = "/i " + s
		}
		if in.Min != 1 || in.Max != 1 {
			s += repeatSuffix(in.Min, in.Max, in.Mode)
		}
		return s
	case OpRecurse:
		return fmt.Sprintf("%s %d -> %d", op, in.Group, in.Link)
	case OpCallout:
		return fmt.Sprintf("%s %d %d %d", op, in.Group, in.PatternPos, in.NextLen)
	case OpCBra, OpCBraPos, OpCRef, OpClose:
		return fmt.Sprintf("%s %d -> %d", op, in.Group, in.Link)
	case OpRRef:
		if in.Group == RRefAny {
			return op
		}
		return fmt.Sprintf("%s %d", op, in.Group)
	case OpDNCRef, OpDNRRef:
		return fmt.Sprintf("%s %v", op, in.Groups)
	case OpReverse:
		return fmt.Sprintf("%s %d", op, in.Count)
	case OpMark, OpPruneArg, OpSkipArg, OpThenArg:
		return fmt.Sprintf("%s:%s", op, in.Name)
	}
	if in.Op.IsBracket() || in.Op.IsKet() || in.Op == OpAlt {
		s := fmt.Sprintf("%s -> %d", op, in.Link)
		if in.CheckEmpty {
			s += " (empty check)"
		}
		return s
	}
	return op
}

// String disassembles the program, one instruction per line.
func (p *Prog) String() string {
	var b strings.Builder
	depth := 0
	for i := range p.Insts {
		in := &p.Insts[i]
		if in.Op.IsKet() || in.Op == OpAlt {
			depth--
		}
		fmt.Fprintf(&b, "%4d  %s%s\n", i, strings.Repeat("  ", max(depth, 0)), in)
		if in.Op.IsBracket() || in.Op == OpAlt {
			depth++
		}
	}
	return b.String()
}
