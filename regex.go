// Package pcrex provides a Perl-compatible backtracking regex engine for Go.
//
// pcrex follows the matching semantics of PCRE 8.x: leftmost-first
// alternation, greedy, lazy and possessive quantifiers, atomic groups,
// lookahead and lookbehind, back references, recursion and subroutine
// calls, conditional groups, backtracking control verbs, callouts and
// partial matching. Each Exec fills a caller-supplied capture vector of
// start/end offset pairs, the way PCRE does.
//
// Basic usage:
//
//	re, err := pcrex.Compile(`(?<year>\d{4})-(\d\d)`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ovector := make([]int, 2*(re.NumSubexp()+1))
//	n, err := re.Exec([]byte("on 2024-05"), 0, 0, ovector)
//	// n == 3, ovector == [3 10 3 7 8 10]
//
// Advanced usage:
//
//	config := pcrex.DefaultConfig()
//	config.Options = pcrex.UTF | pcrex.Caseless
//	config.MatchLimit = 100000
//	re, err := pcrex.CompileWithConfig(`(\w+)\s+\1`, config)
//
// Errors:
//   - ErrNoMatch and ErrPartial are outcomes, compared with errors.Is
//   - ErrMatchLimit and ErrRecursionLimit stop runaway backtracking
//   - *SyntaxError describes a malformed pattern
//
// Performance characteristics:
//   - First-character, start-bitmap and literal-prefix scans skip start
//     positions before the matcher is entered
//   - Worst case is exponential, bounded by the match limit
package pcrex

import (
	"errors"

	"github.com/coregx/pcrex/backtrack"
	"github.com/coregx/pcrex/prog"
	"github.com/coregx/pcrex/syntax"
)

// Regex represents a compiled regular expression.
//
// A Regex is safe to use concurrently from multiple goroutines, except for
// ResetStats.
//
// Example:
//
//	re := pcrex.MustCompile(`hello`)
//	if re.Match([]byte("hello world")) {
//	    println("matched!")
//	}
type Regex struct {
	engine  *backtrack.Engine
	prog    *prog.Prog
	pattern string
	newline syntax.Newline
}

// Regexp is an alias for Regex, for code written against stdlib regexp.
type Regexp = Regex

// Type aliases for the collaborators of Exec.
type (
	// Allocator supplies the integer buffers of the matcher.
	Allocator = backtrack.Allocator
	// FrameAllocator is an Allocator that also accounts for frames.
	FrameAllocator = backtrack.FrameAllocator
	// PoolAllocator is the default Allocator.
	PoolAllocator = backtrack.PoolAllocator
	// CalloutBlock describes the state of the match at a callout.
	CalloutBlock = backtrack.CalloutBlock
	// CalloutFunc is called at every callout point.
	CalloutFunc = backtrack.CalloutFunc
	// Stats are execution statistics.
	Stats = backtrack.Stats
)

// Compile compiles a regular expression pattern with the default
// configuration.
//
// Example:
//
//	re, err := pcrex.Compile(`\d{3}-\d{4}`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// MustCompile compiles a regular expression pattern and panics if it fails.
//
// Example:
//
//	var word = pcrex.MustCompile(`\b\w+\b`)
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("pcrex: Compile(`" + pattern + "`): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles a pattern with a custom configuration.
//
// Example:
//
//	config := pcrex.DefaultConfig()
//	config.Options = pcrex.Multiline
//	config.Newline = syntax.NewlineCRLF
//	re, err := pcrex.CompileWithConfig(`^\w+$`, config)
func CompileWithConfig(pattern string, config Config) (*Regex, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	re, err := syntax.Parse(pattern, config.Options)
	if err != nil {
		return nil, err
	}
	if re.Newline == syntax.NewlineDefault {
		re.Newline = config.Newline
	}
	if re.BSR == syntax.BSRDefault {
		re.BSR = config.BSR
	}
	p, err := prog.Compile(re, config.Tables)
	if err != nil {
		return nil, err
	}
	engine := backtrack.New(p, backtrack.Config{
		Strategy:       config.Strategy,
		MatchLimit:     config.MatchLimit,
		RecursionLimit: config.RecursionLimit,
		Allocator:      config.Allocator,
		Prefilter:      config.EnablePrefilter,
	})
	nl := p.Newline
	if nl == syntax.NewlineDefault {
		nl = syntax.NewlineLF
	}
	return &Regex{engine: engine, prog: p, pattern: pattern, newline: nl}, nil
}

// QuoteMeta returns a string that escapes all regular expression
// metacharacters inside the argument text; the returned string is a
// pattern matching the literal text, also in Extended mode.
//
// Example:
//
//	escaped := pcrex.QuoteMeta("1+1 = 2")
//	// escaped = `1\+1\ =\ 2`
func QuoteMeta(s string) string {
	const special = `\.+*?()|[]{}^$# ` + "\t\n\v\f\r"

	n := 0
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, len(s)+n)
	j := 0
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			buf[j] = '\\'
			j++
		}
		buf[j] = s[i]
		j++
	}
	return string(buf)
}

func isSpecial(c byte, special string) bool {
	for i := 0; i < len(special); i++ {
		if c == special[i] {
			return true
		}
	}
	return false
}

// String returns the source text used to compile the regular expression.
func (r *Regex) String() string {
	return r.pattern
}

// NumSubexp returns the number of capturing groups.
func (r *Regex) NumSubexp() int {
	return r.prog.Captures
}

// SubexpNames returns the names of the capturing groups. names[0] is
// always "", as is the name of every unnamed group. With duplicate names
// allowed, several groups may share a name.
//
// Example:
//
//	re := pcrex.MustCompile(`(?<year>\d{4})-(?<month>\d{2})`)
//	names := re.SubexpNames()
//	// names = ["", "year", "month"]
func (r *Regex) SubexpNames() []string {
	names := make([]string, r.prog.Captures+1)
	copy(names, r.prog.Names)
	return names
}

// SubexpIndex returns the number of the first group with the given name,
// or -1 if there is none.
func (r *Regex) SubexpIndex(name string) int {
	if groups := r.prog.NameIndex[name]; len(groups) > 0 {
		return groups[0]
	}
	return -1
}

// Dump returns a disassembly of the compiled program.
func (r *Regex) Dump() string {
	return r.prog.String()
}

// Exec searches subject for a match starting at or after start and fills
// ovector with capture pairs: pair 0 is the whole match, unset groups are
// -1. It returns the number of pairs set, or 0 when ovector is too small to
// hold them all; the pairs that fit are still filled in.
//
// When no match exists, Exec returns ErrNoMatch. With PartialSoft or
// PartialHard it may return ErrPartial; ovector[0:2] then bounds the
// partial match and ovector[2] holds the start of the attempt that found it.
//
// Example:
//
//	re := pcrex.MustCompile(`(a)|(b)`)
//	ovector := make([]int, 6)
//	n, _ := re.Exec([]byte("xb"), 0, 0, ovector)
//	// n == 3, ovector == [1 2 -1 -1 1 2]
func (r *Regex) Exec(subject []byte, start int, flags ExecFlag, ovector []int) (int, error) {
	res, err := r.exec(subject, start, flags, ovector, nil, nil)
	return res.Count, err
}

// ExecMark is Exec that also returns the name of the last (*MARK) passed:
// on the matching path when a match is found, on the last failing path
// when Exec returns ErrNoMatch.
//
// Example:
//
//	re := pcrex.MustCompile(`a(*:first)x|b(*:second)y`)
//	_, mark, err := re.ExecMark([]byte("bz"), 0, 0, nil)
//	// mark == "second", errors.Is(err, pcrex.ErrNoMatch)
func (r *Regex) ExecMark(subject []byte, start int, flags ExecFlag, ovector []int) (int, string, error) {
	res, err := r.exec(subject, start, flags, ovector, nil, nil)
	return res.Count, res.Mark, err
}

// ExecWithCallout is ExecMark with a callout function, which is called at
// every (?Cn) in the pattern and, with AutoCallout, before every item.
// data is passed to callout in CalloutBlock.Data.
func (r *Regex) ExecWithCallout(subject []byte, start int, flags ExecFlag, ovector []int,
	callout CalloutFunc, data any) (int, string, error) {
	res, err := r.exec(subject, start, flags, ovector, callout, data)
	return res.Count, res.Mark, err
}

func (r *Regex) exec(subject []byte, start int, flags ExecFlag, ovector []int,
	callout CalloutFunc, data any) (backtrack.Result, error) {
	req, ok := flags.request()
	if !ok {
		return backtrack.Result{}, ErrBadOption
	}
	req.Callout, req.CalloutData = callout, data
	return r.engine.Exec(subject, start, ovector, req)
}

// Stats returns a snapshot of the execution statistics.
func (r *Regex) Stats() Stats {
	return r.engine.Stats()
}

// ResetStats resets the execution statistics to zero.
func (r *Regex) ResetStats() {
	r.engine.ResetStats()
}

// Match reports whether the byte slice b contains any match of the pattern.
// Errors such as ErrMatchLimit count as no match.
//
// Example:
//
//	re := pcrex.MustCompile(`\d+`)
//	if re.Match([]byte("hello 123")) {
//	    println("contains digits")
//	}
func (r *Regex) Match(b []byte) bool {
	_, err := r.exec(b, 0, 0, nil, nil, nil)
	return err == nil
}

// MatchString reports whether the string s contains any match of the pattern.
func (r *Regex) MatchString(s string) bool {
	return r.Match([]byte(s))
}

// Find returns a slice holding the text of the leftmost match in b.
// Returns nil if no match is found.
//
// Example:
//
//	re := pcrex.MustCompile(`\d+`)
//	match := re.Find([]byte("age: 42"))
//	println(string(match)) // "42"
func (r *Regex) Find(b []byte) []byte {
	loc := r.FindIndex(b)
	if loc == nil {
		return nil
	}
	return b[loc[0]:loc[1]:loc[1]]
}

// FindString returns a string holding the text of the leftmost match in s.
// Returns empty string if no match is found.
func (r *Regex) FindString(s string) string {
	loc := r.FindStringIndex(s)
	if loc == nil {
		return ""
	}
	return s[loc[0]:loc[1]]
}

// FindIndex returns a two-element slice of integers defining the location of
// the leftmost match in b. The match is at b[loc[0]:loc[1]].
// Returns nil if no match is found.
//
// Example:
//
//	re := pcrex.MustCompile(`\d+`)
//	loc := re.FindIndex([]byte("age: 42"))
//	println(loc[0], loc[1]) // 5, 7
func (r *Regex) FindIndex(b []byte) []int {
	loc := make([]int, 2)
	if _, err := r.exec(b, 0, 0, loc, nil, nil); err != nil {
		return nil
	}
	return loc
}

// FindStringIndex returns a two-element slice of integers defining the location
// of the leftmost match in s. The match is at s[loc[0]:loc[1]].
func (r *Regex) FindStringIndex(s string) []int {
	return r.FindIndex([]byte(s))
}

// FindSubmatchIndex returns a slice holding the index pairs identifying the
// leftmost match of the pattern in b and its capture groups. Unset groups
// are -1. Returns nil if no match is found.
//
// Example:
//
//	re := pcrex.MustCompile(`(\w+)@(\w+)`)
//	loc := re.FindSubmatchIndex([]byte("mail bob@example"))
//	// loc = [5 16 5 8 9 16]
func (r *Regex) FindSubmatchIndex(b []byte) []int {
	ovector := make([]int, 2*(r.prog.Captures+1))
	if _, err := r.exec(b, 0, 0, ovector, nil, nil); err != nil {
		return nil
	}
	return ovector
}

// FindStringSubmatchIndex is FindSubmatchIndex for a string.
func (r *Regex) FindStringSubmatchIndex(s string) []int {
	return r.FindSubmatchIndex([]byte(s))
}

// FindSubmatch returns a slice of slices holding the text of the leftmost
// match of the pattern in b and the matches of its groups. Unset groups
// are nil. Returns nil if no match is found.
func (r *Regex) FindSubmatch(b []byte) [][]byte {
	loc := r.FindSubmatchIndex(b)
	if loc == nil {
		return nil
	}
	out := make([][]byte, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = b[loc[2*i]:loc[2*i+1]:loc[2*i+1]]
		}
	}
	return out
}

// FindStringSubmatch is FindSubmatch for a string. Unset groups are "".
func (r *Regex) FindStringSubmatch(s string) []string {
	loc := r.FindStringSubmatchIndex(s)
	if loc == nil {
		return nil
	}
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

// allMatches calls deliver for each successive match in b, at most n times
// when n >= 0. After an empty match the search is retried at the same
// position as an anchored, non-empty match before moving one character on,
// as Perl's /g does.
func (r *Regex) allMatches(b []byte, n, pairs int, deliver func(ovector []int)) {
	start, count := 0, 0
	var flags ExecFlag
	for n < 0 || count < n {
		ovector := make([]int, 2*pairs)
		if _, err := r.exec(b, start, flags, ovector, nil, nil); err != nil {
			if flags == 0 || !errors.Is(err, ErrNoMatch) || start >= len(b) {
				return
			}
			start, flags = r.Advance(b, start), 0
			continue
		}
		deliver(ovector)
		count++
		flags = 0
		if ovector[0] == ovector[1] {
			flags = NotEmptyAtStart | Anchored
		}
		start = ovector[1]
	}
}

// Advance returns the position one character after start, treating CRLF
// as one character under the newline conventions that recognise it and
// skipping whole UTF-8 sequences in UTF mode. It is the step taken by the
// FindAll family after an empty match cannot be extended. At or past the
// end of b it returns start+1.
func (r *Regex) Advance(b []byte, start int) int {
	if start >= len(b) {
		return start + 1
	}
	if b[start] == '\r' && start+1 < len(b) && b[start+1] == '\n' {
		switch r.newline {
		case syntax.NewlineCRLF, syntax.NewlineAny, syntax.NewlineAnyCRLF:
			return start + 2
		}
	}
	start++
	if r.prog.UTF() {
		for start < len(b) && b[start]&0xc0 == 0x80 {
			start++
		}
	}
	return start
}

// FindAllIndex returns the locations of all successive matches of the
// pattern in b. If n >= 0, it returns at most n matches.
//
// Example:
//
//	re := pcrex.MustCompile(`a*`)
//	locs := re.FindAllIndex([]byte("baa"), -1)
//	// locs = [[0 0] [1 3] [3 3]]
func (r *Regex) FindAllIndex(b []byte, n int) [][]int {
	var out [][]int
	r.allMatches(b, n, 1, func(ovector []int) {
		out = append(out, ovector)
	})
	return out
}

// FindAllStringIndex is FindAllIndex for a string.
func (r *Regex) FindAllStringIndex(s string, n int) [][]int {
	return r.FindAllIndex([]byte(s), n)
}

// FindAllSubmatchIndex is FindAllIndex with the locations of the capture
// groups of each match.
func (r *Regex) FindAllSubmatchIndex(b []byte, n int) [][]int {
	var out [][]int
	r.allMatches(b, n, r.prog.Captures+1, func(ovector []int) {
		out = append(out, ovector)
	})
	return out
}

// FindAll returns a slice of all successive matches of the pattern in b.
// If n >= 0, it returns at most n matches.
func (r *Regex) FindAll(b []byte, n int) [][]byte {
	var out [][]byte
	r.allMatches(b, n, 1, func(ovector []int) {
		out = append(out, b[ovector[0]:ovector[1]:ovector[1]])
	})
	return out
}

// FindAllString is FindAll for a string.
//
// Example:
//
//	re := pcrex.MustCompile(`\d+`)
//	matches := re.FindAllString("1 22 333", -1)
//	// matches = ["1", "22", "333"]
func (r *Regex) FindAllString(s string, n int) []string {
	var out []string
	r.allMatches([]byte(s), n, 1, func(ovector []int) {
		out = append(out, s[ovector[0]:ovector[1]])
	})
	return out
}

// Count returns the number of successive matches of the pattern in b.
// If n >= 0, it counts at most n matches.
func (r *Regex) Count(b []byte, n int) int {
	count := 0
	r.allMatches(b, n, 1, func([]int) { count++ })
	return count
}

// CountString is Count for a string.
func (r *Regex) CountString(s string, n int) int {
	return r.Count([]byte(s), n)
}

// FindAllStringSubmatch returns the text of all successive matches of the
// pattern in s and of their capture groups. Unset groups are "".
//
// Example:
//
//	re := pcrex.MustCompile(`(\w)(\d)?`)
//	m := re.FindAllStringSubmatch("a1 b", -1)
//	// m = [["a1" "a" "1"] ["b" "b" ""]]
func (r *Regex) FindAllStringSubmatch(s string, n int) [][]string {
	var out [][]string
	r.allMatches([]byte(s), n, r.prog.Captures+1, func(ovector []int) {
		m := make([]string, len(ovector)/2)
		for i := range m {
			if ovector[2*i] >= 0 {
				m[i] = s[ovector[2*i]:ovector[2*i+1]]
			}
		}
		out = append(out, m)
	})
	return out
}
