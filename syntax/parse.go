// Package syntax parses Perl-compatible regular expressions into syntax
// trees. The trees are lowered to opcode programs by package prog.
package syntax

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxCaptures = 65535
	maxDepth    = 250
	maxNameLen  = 32
)

type parser struct {
	src   string
	pos   int
	flags Flags
	depth int

	ncap      int
	prescan   int
	names     []string
	nameIndex map[string][]int

	// byName holds references whose group is looked up by name once the
	// whole pattern has been read; numbered holds numeric references whose
	// group may be defined later in the pattern.
	byName   []*Node
	numbered []*Node

	quoting bool
	re      *Regexp
}

// Parse parses pattern under the given flags.
//
// Start-of-pattern items such as (*UTF8), (*UCP), (*CRLF) or
// (*LIMIT_MATCH=n) are consumed first and recorded in the returned Regexp.
func Parse(pattern string, flags Flags) (*Regexp, error) {
	p := &parser{
		src:       pattern,
		flags:     flags,
		nameIndex: make(map[string][]int),
		names:     []string{""},
		re:        &Regexp{Pattern: pattern},
	}
	if err := p.startItems(); err != nil {
		return nil, err
	}
	if p.flags&UTF != 0 && !utf8.ValidString(pattern) {
		return nil, &Error{Code: ErrInvalidUTF8, Offset: firstInvalid(pattern), Pattern: pattern}
	}
	global := p.flags
	p.prescan = countGroups(pattern[p.pos:], p.flags&NoAutoCapture != 0)

	root, err := p.parseAlternation(false)
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.src) {
		return nil, p.errorAt(ErrUnmatchedParen, p.pos)
	}
	if global&AutoCallout != 0 {
		end := &Node{Op: OpCallout, Index: 255, Pos: len(p.src)}
		root = &Node{Op: OpConcat, Sub: []*Node{root, end}}
	}

	p.re.Captures = p.ncap
	for len(p.names) <= p.ncap {
		p.names = append(p.names, "")
	}
	p.re.Names = p.names
	p.re.NameIndex = p.nameIndex
	if err := p.resolve(); err != nil {
		return nil, err
	}
	p.re.Root = root
	p.re.Flags = global
	return p.re, nil
}

// MustParse is like Parse but panics on error.
func MustParse(pattern string, flags Flags) *Regexp {
	re, err := Parse(pattern, flags)
	if err != nil {
		panic(`syntax: Parse(` + strconv.Quote(pattern) + `): ` + err.Error())
	}
	return re
}

func (p *parser) errorAt(code ErrorCode, offset int) error {
	return &Error{Code: code, Offset: offset, Pattern: p.src}
}

func firstInvalid(s string) int {
	for i := 0; i < len(s); {
		r, n := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && n <= 1 {
			return i
		}
		i += n
	}
	return len(s)
}

func (p *parser) startItems() error {
	for strings.HasPrefix(p.src[p.pos:], "(*") {
		end := strings.IndexByte(p.src[p.pos:], ')')
		if end < 0 {
			return nil
		}
		item := p.src[p.pos+2 : p.pos+end]
		switch item {
		case "UTF8", "UTF":
			p.flags |= UTF
		case "UCP":
			p.flags |= UCP
		case "CR":
			p.re.Newline = NewlineCR
		case "LF":
			p.re.Newline = NewlineLF
		case "CRLF":
			p.re.Newline = NewlineCRLF
		case "ANY":
			p.re.Newline = NewlineAny
		case "ANYCRLF":
			p.re.Newline = NewlineAnyCRLF
		case "BSR_ANYCRLF":
			p.re.BSR = BSRAnyCRLF
		case "BSR_UNICODE":
			p.re.BSR = BSRUnicode
		case "NO_START_OPT":
			p.flags |= NoStartOptimize
		case "NO_AUTO_POSSESS":
		default:
			var dst *int
			var digits string
			switch {
			case strings.HasPrefix(item, "LIMIT_MATCH="):
				dst, digits = &p.re.MatchLimit, item[len("LIMIT_MATCH="):]
			case strings.HasPrefix(item, "LIMIT_RECURSION="):
				dst, digits = &p.re.RecursionLimit, item[len("LIMIT_RECURSION="):]
			default:
				return nil
			}
			n, err := strconv.Atoi(digits)
			if err != nil || n < 0 || !isDigits(digits) {
				return p.errorAt(ErrBadLimit, p.pos)
			}
			if *dst == 0 || n < *dst {
				*dst = n
			}
		}
		p.pos += end + 1
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// countGroups estimates the number of capturing groups so that \10 can be
// told apart from an octal escape before the group is seen.
func countGroups(s string, noAuto bool) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if strings.HasPrefix(s[i:], `\Q`) {
				end := strings.Index(s[i+2:], `\E`)
				if end < 0 {
					return n
				}
				i += end + 3
				continue
			}
			i++
		case '[':
			i++
			if i < len(s) && s[i] == '^' {
				i++
			}
			if i < len(s) && s[i] == ']' {
				i++
			}
			for i < len(s) && s[i] != ']' {
				if s[i] == '\\' {
					i++
				}
				i++
			}
		case '(':
			rest := s[i+1:]
			switch {
			case strings.HasPrefix(rest, "?<=") || strings.HasPrefix(rest, "?<!"):
			case strings.HasPrefix(rest, "?<") || strings.HasPrefix(rest, "?'") ||
				strings.HasPrefix(rest, "?P<"):
				n++
			case strings.HasPrefix(rest, "?") || strings.HasPrefix(rest, "*"):
			default:
				if !noAuto {
					n++
				}
			}
		}
	}
	return n
}

func (p *parser) nextRune() rune {
	if p.flags&UTF != 0 {
		r, n := utf8.DecodeRuneInString(p.src[p.pos:])
		p.pos += n
		return r
	}
	r := rune(p.src[p.pos])
	p.pos++
	return r
}

func (p *parser) skipExtended() {
	if p.flags&Extended == 0 || p.quoting {
		return
	}
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || (c >= '\t' && c <= '\r'):
			p.pos++
		case c == '#':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *parser) parseAlternation(reset bool) (*Node, error) {
	base, top := p.ncap, p.ncap
	var branches []*Node
	for {
		b, err := p.parseBranch()
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
		if p.ncap > top {
			top = p.ncap
		}
		if p.pos < len(p.src) && p.src[p.pos] == '|' && !p.quoting {
			p.pos++
			if reset {
				p.ncap = base
			}
			continue
		}
		break
	}
	p.ncap = top
	if len(branches) == 1 {
		return branches[0], nil
	}
	return &Node{Op: OpAlternate, Sub: branches, Flags: p.flags}, nil
}

func (p *parser) parseBranch() (*Node, error) {
	var items []*Node
	var callout *Node
	for {
		p.skipExtended()
		if p.pos >= len(p.src) {
			break
		}
		if c := p.src[p.pos]; !p.quoting && (c == '|' || c == ')') {
			break
		}
		start := p.pos
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		if atom == nil {
			continue
		}
		if atom, err = p.parseQuantifier(atom); err != nil {
			return nil, err
		}
		if callout != nil {
			callout.Len = p.pos - start
			callout = nil
		}
		if atom.Op == OpCallout {
			callout = atom
		} else if p.flags&AutoCallout != 0 {
			items = append(items, &Node{Op: OpCallout, Index: 255, Pos: start, Len: p.pos - start})
		}
		items = append(items, atom)
	}
	switch len(items) {
	case 0:
		return &Node{Op: OpEmpty, Flags: p.flags, Pos: p.pos}, nil
	case 1:
		return items[0], nil
	}
	return &Node{Op: OpConcat, Sub: items, Flags: p.flags}, nil
}

func (p *parser) literal(r rune, pos int) *Node {
	return &Node{Op: OpLiteral, Rune: r, Flags: p.flags, Pos: pos}
}

func (p *parser) parseAtom() (*Node, error) {
	start := p.pos
	if p.quoting {
		if strings.HasPrefix(p.src[p.pos:], `\E`) {
			p.pos += 2
			p.quoting = false
			return nil, nil
		}
		return p.literal(p.nextRune(), start), nil
	}
	switch p.src[p.pos] {
	case '(':
		return p.parseGroup()
	case '[':
		return p.parseClass()
	case '.':
		p.pos++
		return &Node{Op: OpType, Type: TypeAny, Flags: p.flags, Pos: start}, nil
	case '^':
		p.pos++
		return &Node{Op: OpAnchor, Anchor: AnchorLineStart, Flags: p.flags, Pos: start}, nil
	case '$':
		p.pos++
		return &Node{Op: OpAnchor, Anchor: AnchorLineEnd, Flags: p.flags, Pos: start}, nil
	case '\\':
		return p.parseEscape()
	case '*', '+', '?':
		return nil, p.errorAt(ErrNothingToRepeat, start)
	case '{':
		if _, _, n, err := p.parseBraces(); err == nil && n > 0 {
			return nil, p.errorAt(ErrNothingToRepeat, start)
		}
	}
	return p.literal(p.nextRune(), start), nil
}

// parseBraces reads a {n}, {n,} or {n,m} quantifier at p.pos without
// consuming it. n is 0 when the text is not a quantifier.
func (p *parser) parseBraces() (lo, hi, n int, err error) {
	s := p.src[p.pos:]
	i := 1
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 1 || i >= len(s) {
		return 0, 0, 0, nil
	}
	lo, hi = atoiClamp(s[1:i]), 0
	switch s[i] {
	case '}':
		hi = lo
	case ',':
		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j >= len(s) || s[j] != '}' {
			return 0, 0, 0, nil
		}
		if j == i+1 {
			hi = Unlimited
		} else {
			hi = atoiClamp(s[i+1 : j])
		}
		i = j
	default:
		return 0, 0, 0, nil
	}
	if lo > MaxRepeat || hi > MaxRepeat {
		return 0, 0, 0, p.errorAt(ErrRepeatTooBig, p.pos)
	}
	if hi != Unlimited && hi < lo {
		return 0, 0, 0, p.errorAt(ErrRepeatOrder, p.pos)
	}
	return lo, hi, i + 1, nil
}

func atoiClamp(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
		if n > MaxRepeat {
			return MaxRepeat + 1
		}
	}
	return n
}

func repeatable(n *Node) bool {
	switch n.Op {
	case OpAnchor, OpVerb, OpCallout:
		return false
	}
	return true
}

func (p *parser) parseQuantifier(atom *Node) (*Node, error) {
	if p.quoting {
		if !strings.HasPrefix(p.src[p.pos:], `\E`) {
			return atom, nil
		}
		p.pos += 2
		p.quoting = false
	}
	p.skipExtended()
	if p.pos >= len(p.src) {
		return atom, nil
	}
	start := p.pos
	var lo, hi int
	switch p.src[p.pos] {
	case '*':
		lo, hi = 0, Unlimited
		p.pos++
	case '+':
		lo, hi = 1, Unlimited
		p.pos++
	case '?':
		lo, hi = 0, 1
		p.pos++
	case '{':
		l, h, n, err := p.parseBraces()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return atom, nil
		}
		lo, hi = l, h
		p.pos += n
	default:
		return atom, nil
	}
	if !repeatable(atom) {
		return nil, p.errorAt(ErrNothingToRepeat, start)
	}
	mode := Greedy
	if p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '?':
			mode = Lazy
			p.pos++
		case '+':
			mode = Possessive
			p.pos++
		}
	}
	if p.flags&Ungreedy != 0 {
		switch mode {
		case Greedy:
			mode = Lazy
		case Lazy:
			mode = Greedy
		}
	}
	return &Node{Op: OpRepeat, Sub: []*Node{atom}, Min: lo, Max: hi, Mode: mode, Flags: p.flags, Pos: atom.Pos}, nil
}

func (p *parser) parseGroup() (*Node, error) {
	start := p.pos
	p.pos++
	rest := p.src[p.pos:]
	switch {
	case strings.HasPrefix(rest, "*"):
		return p.parseVerb(start)
	case strings.HasPrefix(rest, "?#"):
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return nil, p.errorAt(ErrMissingCommentEnd, start)
		}
		p.pos += end + 1
		return nil, nil
	case strings.HasPrefix(rest, "?"):
		p.pos++
		return p.parseExtGroup(start)
	}
	if p.flags&NoAutoCapture != 0 {
		return p.groupBody(&Node{Op: OpGroup, Pos: start}, false, p.flags)
	}
	n, err := p.newCapture(start, "")
	if err != nil {
		return nil, err
	}
	return p.groupBody(n, false, p.flags)
}

// groupBody parses the alternatives of a group whose opening text has been
// consumed, under inner flags, and restores the outer flags afterwards.
func (p *parser) groupBody(n *Node, reset bool, inner Flags) (*Node, error) {
	p.depth++
	if p.depth > maxDepth {
		return nil, p.errorAt(ErrNestingTooDeep, n.Pos)
	}
	outer := p.flags
	n.Flags = outer
	p.flags = inner
	body, err := p.parseAlternation(reset)
	p.flags = outer
	p.depth--
	if err != nil {
		return nil, err
	}
	if p.pos >= len(p.src) || p.src[p.pos] != ')' {
		return nil, p.errorAt(ErrMissingParen, n.Pos)
	}
	p.pos++
	n.Sub = []*Node{body}
	return n, nil
}

func (p *parser) newCapture(pos int, name string) (*Node, error) {
	p.ncap++
	if p.ncap > maxCaptures {
		return nil, p.errorAt(ErrTooManyGroups, pos)
	}
	for len(p.names) <= p.ncap {
		p.names = append(p.names, "")
	}
	if name != "" {
		groups := p.nameIndex[name]
		for _, g := range groups {
			if g == p.ncap {
				return &Node{Op: OpCapture, Index: p.ncap, Name: name, Pos: pos}, nil
			}
		}
		if len(groups) > 0 && p.flags&DupNames == 0 {
			return nil, p.errorAt(ErrDupName, pos)
		}
		p.nameIndex[name] = append(groups, p.ncap)
		p.names[p.ncap] = name
	}
	return &Node{Op: OpCapture, Index: p.ncap, Name: name, Pos: pos}, nil
}

// readName reads a group name terminated by term.
func (p *parser) readName(term byte) (string, error) {
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" || len(name) > maxNameLen || (name[0] >= '0' && name[0] <= '9') {
		return "", p.errorAt(ErrBadName, start)
	}
	if p.pos >= len(p.src) || p.src[p.pos] != term {
		return "", p.errorAt(ErrBadName, p.pos)
	}
	p.pos++
	return name, nil
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// readNumber reads an optionally signed decimal number. sign is '+', '-'
// or 0.
func (p *parser) readNumber() (n int, sign byte, ok bool) {
	start := p.pos
	if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
		sign = p.src[p.pos]
		p.pos++
	}
	digits := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		n = n*10 + int(p.src[p.pos]-'0')
		if n > maxCaptures {
			n = maxCaptures + 1
		}
		p.pos++
	}
	if p.pos == digits {
		p.pos = start
		return 0, 0, false
	}
	return n, sign, true
}

// relative converts a signed group number into an absolute one.
func (p *parser) relative(n int, sign byte, pos int) (int, error) {
	switch sign {
	case '-':
		if n == 0 || n > p.ncap {
			return 0, p.errorAt(ErrUnknownGroup, pos)
		}
		return p.ncap - n + 1, nil
	case '+':
		if n == 0 {
			return 0, p.errorAt(ErrBadRecursionNumber, pos)
		}
		return p.ncap + n, nil
	}
	return n, nil
}

func (p *parser) expect(c byte, code ErrorCode, pos int) error {
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return p.errorAt(code, pos)
	}
	p.pos++
	return nil
}

func (p *parser) recurse(index int, pos int) *Node {
	n := &Node{Op: OpRecurse, Index: index, Flags: p.flags, Pos: pos}
	p.numbered = append(p.numbered, n)
	return n
}

func (p *parser) recurseByName(name string, pos int) *Node {
	n := &Node{Op: OpRecurse, Name: name, Flags: p.flags, Pos: pos}
	p.byName = append(p.byName, n)
	return n
}

func (p *parser) backref(index int, pos int) *Node {
	n := &Node{Op: OpBackref, Index: index, Flags: p.flags, Pos: pos}
	p.numbered = append(p.numbered, n)
	return n
}

func (p *parser) backrefByName(name string, pos int) *Node {
	n := &Node{Op: OpBackref, Name: name, Flags: p.flags, Pos: pos}
	p.byName = append(p.byName, n)
	return n
}

//nolint:gocyclo,cyclop // one case per group form
func (p *parser) parseExtGroup(start int) (*Node, error) {
	if p.pos >= len(p.src) {
		return nil, p.errorAt(ErrMissingParen, start)
	}
	c := p.src[p.pos]
	next := byte(0)
	if p.pos+1 < len(p.src) {
		next = p.src[p.pos+1]
	}
	switch {
	case c == ':':
		p.pos++
		return p.groupBody(&Node{Op: OpGroup, Pos: start}, false, p.flags)
	case c == '|':
		p.pos++
		return p.groupBody(&Node{Op: OpGroup, Pos: start}, true, p.flags)
	case c == '>':
		p.pos++
		return p.groupBody(&Node{Op: OpAtomic, Pos: start}, false, p.flags)
	case c == '=' || c == '!':
		p.pos++
		return p.groupBody(&Node{Op: OpLookahead, Negate: c == '!', Pos: start}, false, p.flags)
	case c == '<' && (next == '=' || next == '!'):
		p.pos += 2
		return p.groupBody(&Node{Op: OpLookbehind, Negate: next == '!', Pos: start}, false, p.flags)
	case c == '<' || c == '\'' || (c == 'P' && next == '<'):
		term := byte('>')
		if c == '\'' {
			term = '\''
		}
		if c == 'P' {
			p.pos++
		}
		p.pos++
		name, err := p.readName(term)
		if err != nil {
			return nil, err
		}
		n, err := p.newCapture(start, name)
		if err != nil {
			return nil, err
		}
		return p.groupBody(n, false, p.flags)
	case c == 'P' && next == '=':
		p.pos += 2
		name, err := p.readName(')')
		if err != nil {
			return nil, err
		}
		return p.backrefByName(name, start), nil
	case c == 'P' && next == '>' || c == '&':
		if c == 'P' {
			p.pos++
		}
		p.pos++
		name, err := p.readName(')')
		if err != nil {
			return nil, err
		}
		return p.recurseByName(name, start), nil
	case c == 'R' && next == ')':
		p.pos += 2
		return p.recurse(0, start), nil
	case c >= '0' && c <= '9' || (c == '+' || c == '-') && next >= '0' && next <= '9':
		n, sign, _ := p.readNumber()
		idx, err := p.relative(n, sign, start)
		if err != nil {
			return nil, err
		}
		if err := p.expect(')', ErrBadRecursionNumber, start); err != nil {
			return nil, err
		}
		return p.recurse(idx, start), nil
	case c == 'C':
		return p.parseCallout(start)
	case c == '(':
		return p.parseConditional(start)
	}
	return p.parseOptions(start)
}

func (p *parser) parseCallout(start int) (*Node, error) {
	p.pos++
	n := 0
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		n = n*10 + int(p.src[p.pos]-'0')
		if n > 255 {
			return nil, p.errorAt(ErrBadCallout, start)
		}
		p.pos++
	}
	if err := p.expect(')', ErrMissingCalloutEnd, start); err != nil {
		return nil, err
	}
	return &Node{Op: OpCallout, Index: n, Pos: p.pos, Flags: p.flags}, nil
}

func (p *parser) parseOptions(start int) (*Node, error) {
	flags := p.flags
	on := true
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++
		var f Flags
		switch c {
		case 'i':
			f = Caseless
		case 'm':
			f = Multiline
		case 's':
			f = DotAll
		case 'x':
			f = Extended
		case 'J':
			f = DupNames
		case 'U':
			f = Ungreedy
		case 'X':
		case '-':
			if !on {
				return nil, p.errorAt(ErrBadOption, p.pos-1)
			}
			on = false
			continue
		case ')':
			p.flags = flags
			return nil, nil
		case ':':
			return p.groupBody(&Node{Op: OpGroup, Pos: start}, false, flags)
		default:
			return nil, p.errorAt(ErrBadOption, p.pos-1)
		}
		if on {
			flags |= f
		} else {
			flags &^= f
		}
	}
	return nil, p.errorAt(ErrMissingParen, start)
}

func (p *parser) parseVerb(start int) (*Node, error) {
	p.pos++
	end := strings.IndexByte(p.src[p.pos:], ')')
	if end < 0 {
		return nil, p.errorAt(ErrBadVerb, start)
	}
	name, arg, hasArg := strings.Cut(p.src[p.pos:p.pos+end], ":")
	var v Verb
	switch name {
	case "ACCEPT":
		v = VerbAccept
	case "FAIL", "F":
		v = VerbFail
	case "COMMIT":
		v = VerbCommit
	case "PRUNE":
		v = VerbPrune
	case "SKIP":
		v = VerbSkip
	case "THEN":
		v = VerbThen
	case "MARK", "":
		v = VerbMark
	default:
		return nil, p.errorAt(ErrBadVerb, start)
	}
	switch v {
	case VerbMark:
		if arg == "" {
			return nil, p.errorAt(ErrVerbArgRequired, start)
		}
	case VerbAccept, VerbFail, VerbCommit:
		if hasArg {
			return nil, p.errorAt(ErrVerbArgNotAllowed, start)
		}
	}
	p.pos += end + 1
	return &Node{Op: OpVerb, Verb: v, Name: arg, Pos: start, Flags: p.flags}, nil
}

//nolint:gocyclo,cyclop // one case per condition form
func (p *parser) parseConditional(start int) (*Node, error) {
	p.pos++
	cond := &Condition{Kind: CondGroup}
	node := &Node{Op: OpConditional, Cond: cond, Pos: start}
	rest := p.src[p.pos:]
	switch {
	case strings.HasPrefix(rest, "?=") || strings.HasPrefix(rest, "?!") ||
		strings.HasPrefix(rest, "?<=") || strings.HasPrefix(rest, "?<!"):
		p.pos--
		a, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		cond.Kind, cond.Assert = CondAssert, a
	case strings.HasPrefix(rest, "?"):
		return nil, p.errorAt(ErrAssertionExpected, p.pos)
	case strings.HasPrefix(rest, "R&"):
		p.pos += 2
		name, err := p.readName(')')
		if err != nil {
			return nil, err
		}
		cond.Kind, cond.Name = CondRecursion, name
		p.byName = append(p.byName, node)
	case strings.HasPrefix(rest, "R)"):
		p.pos += 2
		cond.Kind, cond.Index = CondRecursion, -1
	case len(rest) > 1 && rest[0] == 'R' && rest[1] >= '0' && rest[1] <= '9':
		p.pos++
		n, _, _ := p.readNumber()
		if err := p.expect(')', ErrBadCondition, start); err != nil {
			return nil, err
		}
		cond.Kind, cond.Index = CondRecursion, n
	case strings.HasPrefix(rest, "DEFINE)"):
		p.pos += len("DEFINE)")
		cond.Kind = CondDefine
	case len(rest) > 0 && (rest[0] == '<' || rest[0] == '\''):
		term := byte('>')
		if rest[0] == '\'' {
			term = '\''
		}
		p.pos++
		name, err := p.readName(term)
		if err != nil {
			return nil, err
		}
		if err := p.expect(')', ErrBadCondition, start); err != nil {
			return nil, err
		}
		cond.Name = name
		p.byName = append(p.byName, node)
	default:
		if n, sign, ok := p.readNumber(); ok {
			idx, err := p.relative(n, sign, start)
			if err != nil {
				return nil, err
			}
			if idx == 0 {
				return nil, p.errorAt(ErrBadReference, start)
			}
			if err := p.expect(')', ErrBadCondition, start); err != nil {
				return nil, err
			}
			cond.Index = idx
			p.numbered = append(p.numbered, node)
			break
		}
		name, err := p.readName(')')
		if err != nil {
			return nil, p.errorAt(ErrBadCondition, start)
		}
		cond.Name = name
		p.byName = append(p.byName, node)
	}

	n, err := p.groupBody(node, false, p.flags)
	if err != nil {
		return nil, err
	}
	body := n.Sub[0]
	if body.Op == OpAlternate {
		if len(body.Sub) > 2 {
			return nil, p.errorAt(ErrTooManyBranches, start)
		}
		n.Sub = body.Sub
	}
	if cond.Kind == CondDefine && len(n.Sub) > 1 {
		return nil, p.errorAt(ErrDefineBranches, start)
	}
	return n, nil
}

// resolve binds references by name and checks numbered references now
// that every group is known.
func (p *parser) resolve() error {
	for _, n := range p.byName {
		name := n.Name
		if n.Op == OpConditional {
			name = n.Cond.Name
		}
		groups, ok := p.nameIndex[name]
		if !ok {
			return p.errorAt(ErrUnknownName, n.Pos)
		}
		switch n.Op {
		case OpBackref:
			n.Index = groups[0]
			if len(groups) > 1 {
				n.Indices = groups
			}
		case OpRecurse:
			n.Index = groups[0]
		case OpConditional:
			n.Cond.Index = groups[0]
			if n.Cond.Kind == CondGroup && len(groups) > 1 {
				n.Cond.Indices = groups
			}
		}
	}
	for _, n := range p.numbered {
		idx := n.Index
		if n.Op == OpConditional {
			idx = n.Cond.Index
		}
		if idx > p.re.Captures {
			return p.errorAt(ErrUnknownGroup, n.Pos)
		}
	}
	return nil
}
