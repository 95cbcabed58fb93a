// Package prefilter provides fast candidate filtering for the backtracking
// matcher using the start-up hints computed when a pattern is compiled.
//
// A prefilter quickly skips positions in the subject at which no match can
// start, so the matcher is only entered at candidates. The package selects
// a strategy from the hints:
//   - First code unit → memchr (memchr2 when caseless)
//   - Start bitmap → memchr, memchr2 or memchr3 for up to three bytes,
//     otherwise a table scan
//   - One literal prefix → memmem
//   - Several literal prefixes → Aho-Corasick automaton
//
// Example usage:
//
//	p, _ := prog.Compile(syntax.MustParse("hello|world", 0), nil)
//	pf := prefilter.NewBuilder(&p.Hints).Prefix()
//	pos := pf.Find([]byte("say hello"), 0)
//	// pos == 4
package prefilter

import (
	"github.com/coregx/ahocorasick"

	"github.com/coregx/pcrex/prog"
	"github.com/coregx/pcrex/simd"
)

// Prefilter finds candidate match positions before the matcher runs.
//
// A candidate is a position where a match may start. It does NOT guarantee
// a match; the caller always verifies with the matcher.
type Prefilter interface {
	// Find returns the first candidate at or after start, or -1 if no
	// candidate exists. start must be >= 0.
	Find(haystack []byte, start int) int

	// HeapBytes returns the heap memory used by the prefilter.
	HeapBytes() int
}

// Builder constructs prefilters from compile-time hints.
type Builder struct {
	hints *prog.Hints
}

// NewBuilder creates a builder for hints. A nil hints value builds no
// prefilters.
func NewBuilder(hints *prog.Hints) *Builder {
	return &Builder{hints: hints}
}

// Start returns a prefilter for the first code unit of a match, or nil
// when the hints do not restrict it.
func (b *Builder) Start() Prefilter {
	h := b.hints
	switch {
	case h == nil || h.Anchored:
		return nil
	case h.HasFirst:
		return newUnitPrefilter(h.FirstChar, h.FirstOther)
	case h.StartLine:
		return nil
	case h.StartBits != nil:
		return newTablePrefilter(h.StartBits)
	}
	return nil
}

// newTablePrefilter searches for the bytes of a start bitmap, with a
// memchr variant when there are at most three of them.
func newTablePrefilter(table *[256]bool) Prefilter {
	var set []byte
	for c := range table {
		if table[c] {
			if set = append(set, byte(c)); len(set) > 3 {
				return &tablePrefilter{table: table}
			}
		}
	}
	switch len(set) {
	case 0:
		return nil
	case 1:
		return &memchrPrefilter{needle: set[0]}
	case 2:
		return &memchr2Prefilter{n1: set[0], n2: set[1]}
	}
	return &memchr3Prefilter{n1: set[0], n2: set[1], n3: set[2]}
}

// Required returns a prefilter for the code unit every match contains, or
// nil when there is none.
func (b *Builder) Required() Prefilter {
	if h := b.hints; h != nil && h.HasReq {
		return newUnitPrefilter(h.ReqChar, h.ReqOther)
	}
	return nil
}

// Prefix returns a prefilter for the literal prefixes of the pattern, or
// nil when it has none. A single prefix is searched with memmem, several
// with an Aho-Corasick automaton.
func (b *Builder) Prefix() Prefilter {
	h := b.hints
	if h == nil || h.Anchored || len(h.Prefixes) == 0 {
		return nil
	}
	if len(h.Prefixes) == 1 {
		return newMemmemPrefilter(h.Prefixes[0])
	}
	return newLiteralSetPrefilter(h.Prefixes)
}

func newUnitPrefilter(c, other byte) Prefilter {
	if c == other {
		return &memchrPrefilter{needle: c}
	}
	return &memchr2Prefilter{n1: c, n2: other}
}

// memchrPrefilter wraps simd.Memchr as a Prefilter.
//
// Example patterns:
//
//	/a.*/         → search for 'a'
//	/\bfoo/       → search for 'f'
type memchrPrefilter struct {
	needle byte
}

// Find implements Prefilter.Find using simd.Memchr.
func (p *memchrPrefilter) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		return -1
	}
	idx := simd.Memchr(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *memchrPrefilter) HeapBytes() int {
	return 0
}

// memchr2Prefilter searches for either case of a caselessly matched byte.
type memchr2Prefilter struct {
	n1, n2 byte
}

// Find implements Prefilter.Find using simd.Memchr2.
func (p *memchr2Prefilter) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		return -1
	}
	idx := simd.Memchr2(haystack[start:], p.n1, p.n2)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *memchr2Prefilter) HeapBytes() int {
	return 0
}

// memchr3Prefilter searches for any of three start bytes.
type memchr3Prefilter struct {
	n1, n2, n3 byte
}

// Find implements Prefilter.Find using simd.Memchr3.
func (p *memchr3Prefilter) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		return -1
	}
	idx := simd.Memchr3(haystack[start:], p.n1, p.n2, p.n3)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *memchr3Prefilter) HeapBytes() int {
	return 0
}

// tablePrefilter searches for any byte of a start bitmap.
type tablePrefilter struct {
	table *[256]bool
}

// Find implements Prefilter.Find using simd.MemchrInTable.
func (p *tablePrefilter) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		return -1
	}
	idx := simd.MemchrInTable(haystack[start:], p.table)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *tablePrefilter) HeapBytes() int {
	return len(p.table)
}

// memmemPrefilter wraps simd.Memmem as a Prefilter.
//
// Example patterns:
//
//	/hello/       → search for "hello"
//	/prefix.*/    → search for "prefix"
type memmemPrefilter struct {
	needle []byte
}

// newMemmemPrefilter copies needle to prevent aliasing.
func newMemmemPrefilter(needle []byte) Prefilter {
	return &memmemPrefilter{needle: append([]byte(nil), needle...)}
}

// Find implements Prefilter.Find using simd.Memmem.
func (p *memmemPrefilter) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		return -1
	}
	idx := simd.Memmem(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *memmemPrefilter) HeapBytes() int {
	return len(p.needle)
}

// literalSetPrefilter finds the leftmost occurrence of any of several
// literal prefixes with an Aho-Corasick automaton.
//
// Example patterns:
//
//	/foo\d|bar\d|baz\d/ → search for "foo", "bar" or "baz"
type literalSetPrefilter struct {
	auto  *ahocorasick.Automaton
	bytes int
}

// newLiteralSetPrefilter returns nil if the automaton cannot be built.
func newLiteralSetPrefilter(lits [][]byte) Prefilter {
	builder := ahocorasick.NewBuilder()
	size := 0
	for _, lit := range lits {
		builder.AddPattern(lit)
		size += len(lit)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &literalSetPrefilter{auto: auto, bytes: size}
}

// Find implements Prefilter.Find using the automaton.
func (p *literalSetPrefilter) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		return -1
	}
	m := p.auto.Find(haystack, start)
	if m == nil {
		return -1
	}
	return m.Start
}

// HeapBytes implements Prefilter.HeapBytes. It counts the pattern bytes;
// the automaton's own tables are not visible.
func (p *literalSetPrefilter) HeapBytes() int {
	return p.bytes
}
