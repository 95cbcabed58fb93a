package backtrack

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/pcrex/prog"
	"github.com/coregx/pcrex/syntax"
)

// Flag sets used throughout the tables.
const (
	ma   = syntax.Multiline
	mua  = syntax.Multiline | syntax.UTF
	cma  = syntax.Caseless | syntax.Multiline
	cmua = syntax.Caseless | syntax.Multiline | syntax.UTF
)

var strategies = []Strategy{StrategyFrames, StrategyNative}

func compileProg(t testing.TB, pattern string, flags syntax.Flags) *prog.Prog {
	t.Helper()
	re, err := syntax.Parse(pattern, flags)
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	p, err := prog.Compile(re, nil)
	if err != nil {
		t.Fatalf("Compile(%q): %v", pattern, err)
	}
	return p
}

func newEngine(t testing.TB, pattern string, flags syntax.Flags, strategy Strategy) *Engine {
	t.Helper()
	config := DefaultConfig()
	config.Strategy = strategy
	return New(compileProg(t, pattern, flags), config)
}

// run executes e and returns a capture vector sized for every group.
func run(e *Engine, subject string, start int, req Request) ([]int, Result, error) {
	ovector := make([]int, 2*(e.Prog().Captures+1))
	res, err := e.Exec([]byte(subject), start, ovector, req)
	return ovector, res, err
}

type execCase struct {
	pattern string
	flags   syntax.Flags
	nl      syntax.Newline
	exec    Flags
	start   int
	subject string
	want    []int // nil for no match
}

func (c execCase) name() string {
	return fmt.Sprintf("%q/%q@%d", c.pattern, c.subject, c.start)
}

func checkCase(t *testing.T, c execCase, strategy Strategy) {
	t.Helper()
	e := newEngine(t, c.pattern, c.flags, strategy)
	got, _, err := run(e, c.subject, c.start, Request{Flags: c.exec, Newline: c.nl})
	if c.want == nil {
		if !errors.Is(err, ErrNoMatch) {
			t.Fatalf("Exec = %v, %v; want ErrNoMatch", got, err)
		}
		return
	}
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if diff := cmp.Diff(c.want, got); diff != "" {
		t.Errorf("ovector mismatch (-want +got):\n%s", diff)
	}
}

var matchCases = []execCase{
	// Literals and classes.
	{pattern: `AbC`, flags: mua, nl: syntax.NewlineAnyCRLF, subject: "AbAbC", want: []int{2, 5}},
	{pattern: `ACCEPT`, flags: mua, subject: "AACACCACCEACCEPACCEPTACCEPTT", want: []int{15, 21}},
	{pattern: `[^a]`, flags: ma, subject: "aAbB", want: []int{1, 2}},
	{pattern: `a[^b][^#]`, flags: ma, subject: "abacd", want: []int{2, 5}},
	{pattern: `A[^B][^E]`, flags: cma, subject: "abacd", want: []int{2, 5}},
	{pattern: `[^a]`, flags: mua, subject: "aaa\xc3\xa1#Ab", want: []int{3, 5}},
	{pattern: "[^\xc3\xa9]", flags: cmua, subject: "\xc3\xa9\xc3\x89.", want: []int{4, 5}},
	{pattern: "[^\xc3\xa9]", flags: mua, subject: "\xc3\xa9\xc3\x89.", want: []int{2, 4}},
	{pattern: `\x{e9}+`, flags: cmua, subject: "#\xf0\x90\x90\xa8\xc3\xa8\xc3\xa9\xc3\x89\xc3\x88", want: []int{7, 11}},
	{pattern: `1a2b3c4`, flags: cma, subject: "1a2B3c51A2B3C4", want: []int{7, 14}},
	{pattern: `a1`, flags: syntax.Caseless, subject: "Aa1", want: []int{1, 3}},
	{pattern: `\Ca`, flags: ma, subject: "cda", want: []int{1, 3}},
	{pattern: `\Cx`, flags: ma, subject: "cda"},
	{pattern: `[3-57-9]`, flags: ma, subject: "5", want: []int{0, 1}},

	// Unicode case sets: k K U+212A and s S U+017F fold together in UTF mode.
	{pattern: `k`, flags: cmua, subject: "x\u212a", want: []int{1, 4}},
	{pattern: `\x{212a}`, flags: cmua, subject: "xk", want: []int{1, 2}},
	{pattern: `s`, flags: cmua, subject: "\u017f", want: []int{0, 2}},
	{pattern: `S`, flags: cmua, subject: "\u017f", want: []int{0, 2}},
	{pattern: `xk`, flags: cmua, subject: "X\u212a", want: []int{0, 4}},
	{pattern: `[k]`, flags: cmua, subject: "\u212a", want: []int{0, 3}},
	{pattern: `[a-z]`, flags: cmua, subject: "#\u212a", want: []int{1, 4}},
	{pattern: `[r-t]+`, flags: cmua, subject: "\u017fS", want: []int{0, 3}},
	{pattern: `[^k]`, flags: cmua, subject: "\u212aK.", want: []int{4, 5}},
	{pattern: `(k)\1`, flags: cmua, subject: "k\u212a", want: []int{0, 4, 0, 1}},
	{pattern: `k`, flags: cma, subject: "\u212a"},

	// Anchors and newline conventions.
	{pattern: `^ab`, subject: "ab", want: []int{0, 2}},
	{pattern: `^ab`, subject: "aab"},
	{pattern: `ab$`, subject: "ab", want: []int{0, 2}},
	{pattern: `ab$`, subject: "abab\n\n"},
	{pattern: `ab$`, flags: syntax.DollarEndOnly, subject: "abab\r\n"},
	{pattern: `^a`, flags: syntax.Multiline, nl: syntax.NewlineCRLF, subject: "\r\raa\n\naa\r\naa", want: []int{10, 11}},
	{pattern: `a$`, flags: syntax.Multiline, nl: syntax.NewlineCRLF, subject: "\r\raa\n\naa\r\naa", want: []int{7, 8}},
	{pattern: `a$`, flags: syntax.Multiline, nl: syntax.NewlineAny, subject: "aaa", want: []int{2, 3}},
	{pattern: `^a`, nl: syntax.NewlineAny, exec: NotBOL, subject: "aa\naa"},
	{pattern: `^a`, flags: syntax.Multiline, nl: syntax.NewlineAny, exec: NotBOL, subject: "aa\naa", want: []int{3, 4}},
	{pattern: `a$`, nl: syntax.NewlineAny, exec: NotEOL, subject: "aa\naa"},
	{pattern: `a$`, nl: syntax.NewlineAny, exec: NotEOL, subject: "aa\r\n"},
	{pattern: `a$`, flags: syntax.Multiline, nl: syntax.NewlineAny, exec: NotEOL, subject: "aa\naa", want: []int{1, 2}},
	{pattern: `.\Z`, nl: syntax.NewlineCR, subject: "aaa", want: []int{2, 3}},
	{pattern: `.\Z`, nl: syntax.NewlineCR, subject: "aaa\n", want: []int{3, 4}},
	{pattern: `.\Z`, nl: syntax.NewlineCRLF, subject: "aaa\r", want: []int{3, 4}},
	{pattern: `.\Z`, nl: syntax.NewlineCRLF, subject: "aaa\r\n", want: []int{2, 3}},
	{pattern: `.\Z`, flags: syntax.UTF, nl: syntax.NewlineAnyCRLF, subject: "aaa\r\n", want: []int{2, 3}},
	{pattern: `.\Z`, flags: syntax.UTF, nl: syntax.NewlineAnyCRLF, subject: "aaa\xe2\x80\xa8", want: []int{3, 6}},
	{pattern: `.\Z`, flags: syntax.UTF, nl: syntax.NewlineAny, subject: "aaa\xc2\x85", want: []int{2, 3}},
	{pattern: `\Aa`, flags: ma, subject: "aaa", want: []int{0, 1}},
	{pattern: `\Aa`, flags: ma, start: 1, subject: "aaa"},
	{pattern: `\Ga`, flags: ma, start: 1, subject: "aaa", want: []int{1, 2}},
	{pattern: `\Ga`, flags: ma, start: 1, subject: "aba"},
	{pattern: `a\z`, flags: ma, subject: "aaa", want: []int{2, 3}},
	{pattern: `a\z`, flags: ma, subject: "aab"},
	{pattern: `^`, flags: ma, nl: syntax.NewlineAnyCRLF, start: 1, subject: "\n"},
	{pattern: `\R^`, flags: ma, nl: syntax.NewlineAnyCRLF, subject: "\n"},
	{pattern: `^`, flags: mua, nl: syntax.NewlineAnyCRLF, start: 1, subject: "\r\n", want: []int{1, 1}},
	{pattern: `^`, flags: syntax.Multiline, nl: syntax.NewlineCRLF, start: 1, subject: "\r\n"},
	{pattern: `^`, flags: syntax.Multiline, nl: syntax.NewlineCRLF, start: 1, subject: "\r\na", want: []int{2, 2}},
	{pattern: `.`, nl: syntax.NewlineCRLF, subject: "\r", want: []int{0, 1}},
	{pattern: `(.)(.)`, nl: syntax.NewlineAny, subject: "#\x85#\r#\n#\r\n#\x84", want: []int{9, 11, 9, 10, 10, 11}},
	{pattern: `\R`, subject: "ab\r\nc", want: []int{2, 4}},
	{pattern: `\R+`, flags: mua, subject: "ab\r\n\r", want: []int{2, 5}},
	{pattern: `\R*`, flags: mua, subject: "ab\r\n\r", want: []int{0, 0}},
	{pattern: `\R+`, flags: mua, subject: "ab"},
	{pattern: `\R{2,4}`, flags: mua, subject: "\r\nab\r\r", want: []int{4, 6}},
	{pattern: `\R+\R\R`, flags: mua, subject: "\r\r\r", want: []int{0, 3}},

	// Groups, alternation and repeats.
	{pattern: `(ab|bb|cd)`, flags: mua, subject: "bacde", want: []int{2, 4, 2, 4}},
	{pattern: `(?:ab|a)(bc|c)`, flags: mua, subject: "ababc", want: []int{2, 5, 4, 5}},
	{pattern: `(a)?a`, flags: mua, subject: "manm", want: []int{1, 2, -1, -1}},
	{pattern: `(a)??a`, flags: mua, subject: "aab", want: []int{0, 1, -1, -1}},
	{pattern: `(aa)+aa`, flags: mua, subject: "aaaaaaa", want: []int{0, 6, 2, 4}},
	{pattern: `(aa)+?aa`, flags: mua, subject: "aaaaaaa", want: []int{0, 4, 0, 2}},
	{pattern: `(?:AA)*AB`, flags: cmua, subject: "aaaaaaamaaaaaaab", want: []int{8, 16}},
	{pattern: `(?:aa)*?ab`, flags: mua, subject: "aaaaaaamaaaaaaab", want: []int{8, 16}},
	{pattern: `(aa|ab)*ab`, flags: mua, subject: "aaabaaab", want: []int{0, 8, 4, 6}},
	{pattern: `(a|b)*(?:a)*(?:b)*m`, flags: mua, subject: "abbbaaababanabbbaaababamm", want: []int{12, 24, 22, 23}},
	{pattern: `a+a`, subject: "aaa", want: []int{0, 3}},
	{pattern: `a{2,4}`, subject: "a"},
	{pattern: `a{2,4}?`, subject: "aaaa", want: []int{0, 2}},

	// Atomic groups and possessive repeats.
	{pattern: `(?>ab)ab`, flags: mua, subject: "bab"},
	{pattern: `(?>(ab))ab`, flags: mua, subject: "bab"},
	{pattern: `(?>a+)a`, subject: "aaa"},
	{pattern: `a++a`, subject: "aaa"},
	{pattern: `(?>a+)b`, subject: "aaab", want: []int{0, 4}},
	{pattern: `(?:a|b)++m`, flags: mua, subject: "mababbaaxababbaam", want: []int{9, 17}},
	{pattern: `(?:a|b)*+m`, flags: mua, subject: "mababbaaxababbaam", want: []int{0, 1}},
	{pattern: `(?:a|b)*+m`, flags: mua, subject: "ababbaaxababbaam", want: []int{8, 16}},
	{pattern: `(a|b)++m`, flags: mua, subject: "mababbaaxababbaam", want: []int{9, 17, 15, 16}},
	{pattern: `(a|b(*ACCEPT))++m`, flags: mua, subject: "maaxab", want: []int{4, 6, 5, 6}},
	{pattern: `(b*)++m`, flags: mua, subject: "bxbbxbbbxm", want: []int{9, 10, 9, 9}},

	// Back references.
	{pattern: `(aa|bb)(\1*)(ll|)(\3*)bbbbbbc`, flags: mua, subject: "aaaaaabbbbbbbbc",
		want: []int{6, 15, 6, 8, 8, 8, 8, 8, 8, 8}},
	{pattern: `(a{2,4})\1`, flags: cma, subject: "AaAaaAaA", want: []int{0, 8, 0, 4}},
	{pattern: `(\w+)b(\1+)c`, flags: mua, subject: "GabGaGaDbGaDGaDc", want: []int{5, 16, 5, 8, 9, 15}},
	{pattern: `(?:(aa)|b)\1?b`, flags: mua, subject: "bb", want: []int{0, 2, -1, -1}},
	{pattern: `(a)|\1`, subject: "x"},
	{pattern: `(a)|\1`, flags: syntax.JavaScriptCompat, subject: "x", want: []int{0, 0, -1, -1}},
	{pattern: `(?i)(abc)\1`, flags: syntax.UTF, subject: "abcABC", want: []int{0, 6, 0, 3}},
	{pattern: "(\xc3\xa9)\\1", flags: cmua, subject: "\xc3\xa9\xc3\x89", want: []int{0, 4, 0, 2}},

	// Assertions.
	{pattern: `(?=xx|yy|zz)\w{4}`, flags: mua, subject: "abczzdefg", want: []int{3, 7}},
	{pattern: `(?!ab|bc|cd)[a-z]{2}`, flags: mua, subject: "Xabcdef", want: []int{4, 6}},
	{pattern: `(?<=aaa|aa|a)a`, flags: mua, subject: "aaa", want: []int{1, 2}},
	{pattern: `(?<=aaa|aa|a)a`, flags: ma, start: 2, subject: "aaa", want: []int{2, 3}},
	{pattern: `(?<!c)b`, subject: "cbab", want: []int{3, 4}},
	{pattern: `(?=ab(*ACCEPT)b)a`, flags: mua, subject: "ab", want: []int{0, 1}},
	{pattern: `(?=(a(b(*ACCEPT)b)))a`, flags: mua, subject: "ab", want: []int{0, 1, 0, 2, 1, 2}},
	{pattern: `\b\w+\B`, flags: mua, subject: "x,a_cd", want: []int{2, 5}},
	{pattern: `\b\W`, flags: ma, subject: "\n*"},

	// Empty matches, ACCEPT and FAIL.
	{pattern: `a*`, flags: mua, exec: NotEmpty, subject: "bcx"},
	{pattern: `a*`, flags: mua, exec: NotEmpty, subject: "bcaad", want: []int{2, 4}},
	{pattern: `a*?`, flags: mua, exec: NotEmpty, subject: "bcaad", want: []int{2, 3}},
	{pattern: `a*`, flags: mua, exec: NotEmptyAtStart, subject: "bcaad", want: []int{1, 1}},
	{pattern: `a(*ACCEPT)b`, flags: mua, subject: "ab", want: []int{0, 1}},
	{pattern: `((a(*ACCEPT)b))`, flags: mua, subject: "ab", want: []int{0, 1, 0, 1, 0, 1}},
	{pattern: `(a(*FAIL)a|a)`, flags: mua, subject: "aaa", want: []int{0, 1, 0, 1}},
	{pattern: `a\K(*ACCEPT)b`, flags: mua, exec: NotEmpty, subject: "aa"},
	{pattern: `a\K(*ACCEPT)b`, flags: mua, exec: NotEmptyAtStart, subject: "aa", want: []int{1, 1}},
	{pattern: `ab\Kcd`, subject: "abcd", want: []int{2, 4}},

	// Conditional groups.
	{pattern: `(c)??(?(1)a|b)`, flags: mua, subject: "cdcaa", want: []int{2, 4, 2, 3}},
	{pattern: `(c)??(?(1)a|b)`, flags: mua, subject: "cbb", want: []int{1, 2, -1, -1}},
	{pattern: `(?(?=a)ab)`, flags: mua, subject: "a", want: []int{1, 1}},
	{pattern: `(?(DEFINE)a(b))`, flags: mua, subject: "a", want: []int{0, 0, -1, -1}},
	{pattern: `(?(?!)a|b)`, flags: mua, subject: "ab", want: []int{1, 2}},
	{pattern: `(?(?!)a)`, flags: mua, subject: "ab", want: []int{0, 0}},
	{pattern: `(?(?!)a|b)`, flags: mua, subject: "ac"},
	{pattern: `((?:a|aa)(?(1)aaa))x`, flags: mua, subject: "aax", want: []int{0, 3, 0, 2}},
	{pattern: `(?<n>x)?(?(<n>)y|z)`, subject: "xy", want: []int{0, 2, 0, 1}},

	// Subroutine calls.
	{pattern: `(a)(?1)`, flags: mua, subject: "aa", want: []int{0, 2, 0, 1}},
	{pattern: `(b|a)(?1)`, flags: mua, subject: "aa", want: []int{0, 2, 0, 1}},
	{pattern: `((a)(b)(?:a*))(?1)`, flags: mua, subject: "aba"},
	{pattern: `((a)(b)(?:a*))(?1)`, flags: mua, subject: "abab", want: []int{0, 4, 0, 2, 0, 1, 1, 2}},
	{pattern: `b|<(?R)*>`, flags: mua, subject: "<<b>", want: []int{1, 4}},
	{pattern: `(a)((?(R)a|b))(?2)`, flags: mua, subject: "aabbabaa", want: []int{4, 7, 4, 5, 5, 6}},
	{pattern: `(a)((?(R1)a|b))(?2)`, flags: mua, subject: "ababba", want: []int{2, 5, 2, 3, 3, 4}},
	{pattern: `\((?:[^()]|(?R))*\)`, subject: "x(a(b)c)y", want: []int{1, 8}},

	// Start offsets.
	{pattern: `(\w\W\w)+`, flags: mua, start: 4, subject: "ab#d"},
	{pattern: `(\w\W\w)+`, flags: mua, start: 2, subject: "ab#d"},
	{pattern: `(\w\W\w)+`, flags: mua, start: 1, subject: "ab#d", want: []int{1, 4, 1, 4}},
	{pattern: `abc`, exec: Anchored, subject: "xabc"},
	{pattern: `abc`, exec: Anchored, start: 1, subject: "xabc", want: []int{1, 4}},

	// First line.
	{pattern: `a`, flags: mua | syntax.FirstLine, subject: "\na"},
	{pattern: `[abc]`, flags: mua | syntax.FirstLine, subject: "\na"},
	{pattern: `\p{Any}a`, flags: mua | syntax.FirstLine, subject: "bb\naaa", want: []int{2, 4}},
	{pattern: `b`, flags: syntax.FirstLine, subject: "ab\nb", want: []int{1, 2}},
}

func TestExecMatches(t *testing.T) {
	for _, strategy := range strategies {
		for _, c := range matchCases {
			t.Run(strategy.String()+"/"+c.name(), func(t *testing.T) {
				checkCase(t, c, strategy)
			})
		}
	}
}

// A possessive repeat is shorthand for an atomic group around the plain
// repeat, so each pair must give identical results on every subject.
func TestPossessiveMatchesAtomic(t *testing.T) {
	pairs := [][2]string{
		{`a++b`, `(?>a+)b`},
		{`a*+a`, `(?>a*)a`},
		{`(?:ab|a)++b`, `(?>(?:ab|a)+)b`},
		{`[ab]?+b`, `(?>[ab]?)b`},
		{`a{1,3}+a`, `(?>a{1,3})a`},
	}
	subjects := []string{"", "a", "b", "ab", "aab", "aaab", "ba", "abab",
		"xaaaby", "aaa", "aaaa", "abb", "bbb", "a\nab"}
	for _, strategy := range strategies {
		for _, pair := range pairs {
			possessive := newEngine(t, pair[0], 0, strategy)
			atomic := newEngine(t, pair[1], 0, strategy)
			for _, subject := range subjects {
				want := execOutcome(atomic, subject, Request{})
				got := execOutcome(possessive, subject, Request{})
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("%s: %q and %q differ on %q (-atomic +possessive):\n%s",
						strategy, pair[0], pair[1], subject, diff)
				}
			}
		}
	}
}

func TestExecStartOptimizationsOff(t *testing.T) {
	for _, c := range matchCases {
		if c.exec&NoStartOptimize != 0 {
			continue
		}
		c.exec |= NoStartOptimize
		t.Run(c.name(), func(t *testing.T) {
			checkCase(t, c, StrategyFrames)
		})
	}
}

func TestExecIdempotent(t *testing.T) {
	e := newEngine(t, `(\w+)@(\w+)\.com`, 0, StrategyFrames)
	first, _, err := run(e, "mail bob@example.com now", 0, Request{})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	for range 3 {
		again, _, err := run(e, "mail bob@example.com now", 0, Request{})
		if err != nil {
			t.Fatalf("Exec: %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("repeated Exec differs (-first +again):\n%s", diff)
		}
	}
}

func TestExecShortOvector(t *testing.T) {
	e := newEngine(t, `(a)(b)(c)`, 0, StrategyFrames)

	ovector := make([]int, 4)
	res, err := e.Exec([]byte("abc"), 0, ovector, Request{})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if res.Count != 0 {
		t.Errorf("Count = %d, want 0 when the vector is too small", res.Count)
	}
	if diff := cmp.Diff([]int{0, 3, 0, 1}, ovector); diff != "" {
		t.Errorf("ovector mismatch (-want +got):\n%s", diff)
	}

	ovector = make([]int, 8)
	res, err = e.Exec([]byte("abc"), 0, ovector, Request{})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if res.Count != 4 {
		t.Errorf("Count = %d, want 4", res.Count)
	}

	if _, err := e.Exec([]byte("abc"), 0, nil, Request{}); err != nil {
		t.Errorf("Exec with nil vector: %v", err)
	}

	odd := []int{7}
	res, err = e.Exec([]byte("abc"), 0, odd, Request{})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if res.Count != 0 || odd[0] != 7 {
		t.Errorf("one-element vector: Count = %d, ovector = %v; want 0, [7]", res.Count, odd)
	}
}

func TestExecUnsetTrailingGroups(t *testing.T) {
	e := newEngine(t, `(a)|(b)|(c)`, 0, StrategyFrames)
	ovector := []int{9, 9, 9, 9, 9, 9, 9, 9}
	res, err := e.Exec([]byte("b"), 0, ovector, Request{})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if res.Count != 3 {
		t.Errorf("Count = %d, want 3", res.Count)
	}
	if diff := cmp.Diff([]int{0, 1, -1, -1, 0, 1, -1, -1}, ovector); diff != "" {
		t.Errorf("ovector mismatch (-want +got):\n%s", diff)
	}
}

func TestExecErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		flags   syntax.Flags
		subject string
		start   int
		req     Request
		want    error
	}{
		{"offset past end", `a`, 0, "abc", 4, Request{}, ErrBadOffset},
		{"negative offset", `a`, 0, "abc", -1, Request{}, ErrBadOffset},
		{"unknown option", `a`, 0, "abc", 0, Request{Flags: 1 << 30}, ErrBadOption},
		{"bad newline", `a`, 0, "abc", 0, Request{Newline: 42}, ErrBadNewline},
		{"bad bsr", `a`, 0, "abc", 0, Request{BSR: 42}, ErrBadNewline},
		{"offset inside character", `.`, syntax.UTF, "\xc3\xa9", 1, Request{}, ErrBadUTFOffset},
		{"recursion loop", `(?1)(a|(?1)b)`, 0, "xyz", 0, Request{}, ErrRecurseLoop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, tt.pattern, tt.flags, StrategyFrames)
			_, _, err := run(e, tt.subject, tt.start, tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Exec error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExecUTFErrors(t *testing.T) {
	tests := []struct {
		subject string
		flags   Flags
		offset  int
		reason  string
		short   bool
	}{
		{"ab\xffcd", 0, 2, "invalid lead byte", false},
		{"a\x80", 0, 1, "unexpected continuation byte", false},
		{"\xc0\xaf", 0, 0, "overlong encoding", false},
		{"ab\xed\xa0\x80", 0, 2, "surrogate code point", false},
		{"a\xe2\x28\xa1", 0, 1, "missing continuation byte", false},
		{"abc\xe2\x82", 0, 3, "truncated sequence", false},
		{"abc\xe2\x82", PartialHard, 3, "truncated sequence", true},
	}
	e := newEngine(t, `c`, syntax.UTF, StrategyFrames)
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.subject), func(t *testing.T) {
			_, _, err := run(e, tt.subject, 0, Request{Flags: tt.flags})
			var ue *UTFError
			if !errors.As(err, &ue) {
				t.Fatalf("Exec error = %v, want *UTFError", err)
			}
			want := UTFError{Offset: tt.offset, Reason: tt.reason, Short: tt.short}
			if diff := cmp.Diff(want, *ue); diff != "" {
				t.Errorf("UTFError mismatch (-want +got):\n%s", diff)
			}
		})
	}

	// The check is skipped on request.
	got, _, err := run(e, "abc\xff", 0, Request{Flags: NoUTFCheck})
	if err != nil {
		t.Fatalf("Exec with NoUTFCheck: %v", err)
	}
	if diff := cmp.Diff([]int{2, 3}, got); diff != "" {
		t.Errorf("ovector mismatch (-want +got):\n%s", diff)
	}
}

func TestExecPatternNewline(t *testing.T) {
	e := newEngine(t, `(*CR)a$`, syntax.Multiline, StrategyFrames)
	got, _, err := run(e, "a\rb", 0, Request{})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if diff := cmp.Diff([]int{0, 1}, got); diff != "" {
		t.Errorf("ovector mismatch (-want +got):\n%s", diff)
	}

	// A per-call convention overrides the compiled one.
	_, _, err = run(e, "a\rb", 0, Request{Newline: syntax.NewlineLF})
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("Exec with LF newline = %v, want ErrNoMatch", err)
	}
}

func TestExecCRLFBumpalong(t *testing.T) {
	// After a failure at a CR, the next attempt skips the LF of a CRLF.
	e := newEngine(t, `(?m)^|x`, 0, StrategyFrames)
	got, _, err := run(e, "\r\nb", 1, Request{Newline: syntax.NewlineAnyCRLF})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if diff := cmp.Diff([]int{1, 1}, got); diff != "" {
		t.Errorf("ovector mismatch (-want +got):\n%s", diff)
	}

	e = newEngine(t, `\n|b`, 0, StrategyFrames)
	got, _, err = run(e, "x\r\nb", 2, Request{Newline: syntax.NewlineCRLF})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if diff := cmp.Diff([]int{2, 3}, got); diff != "" {
		t.Errorf("pattern with explicit LF must not skip it (-want +got):\n%s", diff)
	}
}

func TestStats(t *testing.T) {
	e := newEngine(t, `needle`, 0, StrategyFrames)
	if _, _, err := run(e, "haystack with a needle", 0, Request{}); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	s := e.Stats()
	if s.Execs != 1 {
		t.Errorf("Execs = %d, want 1", s.Execs)
	}
	if s.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1 after the prefix scan", s.Attempts)
	}
	if s.Frames == 0 {
		t.Error("Frames = 0, want > 0")
	}
	if s.PrefilterSkips != 1 {
		t.Errorf("PrefilterSkips = %d, want 1", s.PrefilterSkips)
	}

	_, _, _ = run(e, "abc", 5, Request{})
	if got := e.Stats().Execs; got != 1 {
		t.Errorf("Execs after a rejected call = %d, want 1", got)
	}

	e.ResetStats()
	if diff := cmp.Diff(Stats{}, e.Stats()); diff != "" {
		t.Errorf("ResetStats left counters (-want +got):\n%s", diff)
	}
}

func TestFlagsString(t *testing.T) {
	tests := []struct {
		f    Flags
		want string
	}{
		{0, "0"},
		{Anchored, "Anchored"},
		{NotBOL | NotEOL, "NotBOL|NotEOL"},
		{PartialHard | 1<<20, "PartialHard|0x100000"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("Flags(%#x).String() = %q, want %q", uint32(tt.f), got, tt.want)
		}
	}
}

func TestStrategyString(t *testing.T) {
	if got := StrategyFrames.String(); got != "frames" {
		t.Errorf("StrategyFrames.String() = %q", got)
	}
	if got := StrategyNative.String(); got != "native" {
		t.Errorf("StrategyNative.String() = %q", got)
	}
	if got := Strategy(9).String(); got != "Strategy(9)" {
		t.Errorf("Strategy(9).String() = %q", got)
	}
}
