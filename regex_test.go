package pcrex

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestCompile tests basic compilation
func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"simple literal", "hello", false},
		{"digit", `\d`, false},
		{"backref", `(a)\1`, false},
		{"recursion", `\((?:[^()]|(?R))*\)`, false},
		{"verbs", `a(*PRUNE)b(*SKIP)c(*THEN)d`, false},
		{"unclosed group", "(", true},
		{"unclosed class", "[a", true},
		{"nothing to repeat", "*a", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := Compile(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Compile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var serr *SyntaxError
				if !errors.As(err, &serr) {
					t.Errorf("error %T is not a *SyntaxError", err)
				}
				return
			}
			if re.String() != tt.pattern {
				t.Errorf("String() = %q, want %q", re.String(), tt.pattern)
			}
		})
	}
}

// TestMustCompile tests panic on invalid pattern
func TestMustCompile(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustCompile() did not panic on invalid pattern")
		}
	}()

	MustCompile("(")
}

func TestCompileWithConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"options", func(c *Config) { c.Options = 1 << 31 }, "Options"},
		{"newline", func(c *Config) { c.Newline = 99 }, "Newline"},
		{"bsr", func(c *Config) { c.BSR = 9 }, "BSR"},
		{"match limit", func(c *Config) { c.MatchLimit = 0 }, "MatchLimit"},
		{"recursion limit", func(c *Config) { c.RecursionLimit = -1 }, "RecursionLimit"},
		{"strategy", func(c *Config) { c.Strategy = 7 }, "Strategy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.edit(&config)
			_, err := CompileWithConfig("a", config)
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("error = %v, want *ConfigError", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cerr.Field, tt.field)
			}
		})
	}
}

// TestExec runs whole-match scenarios and checks the capture vector.
func TestExec(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		subject string
		want    []int // nil means no match
	}{
		{"case-sensitive literal", `AbC`, "AbAbC", []int{2, 5}},
		{"negated class", `[^a]`, "aAbB", []int{1, 2}},
		{"atomic group", `(?>ab)ab`, "bab", nil},
		{"backrefs", `(aa|bb)(\1*)(ll|)(\3*)bbbbbbc`, "aaaaaabbbbbbbbc",
			[]int{6, 15, 6, 8, 8, 8, 8, 8, 8, 8}},
		{"possessive group", `(?:a|b)++m`, "mababbaaxababbaam", []int{9, 17}},
		{"unset middle group", `(a)|(b)`, "xb", []int{1, 2, -1, -1, 1, 2}},
		{"caseless", `(?i)hello`, "say HeLLo", []int{4, 9}},
		{"lookbehind", `(?<=\$)\d+`, "cost $42", []int{6, 8}},
		{"recursion", `\((?:[^()]|(?R))*\)`, "x(a(b)c)", []int{1, 8}},
		{"named group", `(?<y>\d{4})-(\d\d)`, "on 2024-05", []int{3, 10, 3, 7, 8, 10}},
		{"utf", `(*UTF8)é+`, "caféé!", []int{3, 7}},
		{"keep out", `foo\Kbar`, "foobar", []int{3, 6}},
		{"accept", `a(*ACCEPT)b`, "ac", []int{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			ovector := make([]int, 2*(re.NumSubexp()+1))
			n, err := re.Exec([]byte(tt.subject), 0, 0, ovector)
			if tt.want == nil {
				if !errors.Is(err, ErrNoMatch) {
					t.Fatalf("Exec() = %d, %v; want ErrNoMatch", n, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Exec() error: %v", err)
			}
			if n < 1 {
				t.Errorf("Exec() = %d, want a positive count", n)
			}
			if diff := cmp.Diff(tt.want, ovector); diff != "" {
				t.Errorf("ovector mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExec_Count(t *testing.T) {
	re := MustCompile(`(a)|(b)`)

	ovector := make([]int, 6)
	if n, _ := re.Exec([]byte("b"), 0, 0, ovector); n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
	// Group 2 does not fit: the count is 0 but the whole match is set.
	small := make([]int, 4)
	n, err := re.Exec([]byte("b"), 0, 0, small)
	if err != nil || n != 0 {
		t.Fatalf("Exec() = %d, %v; want 0, nil", n, err)
	}
	if small[0] != 0 || small[1] != 1 {
		t.Errorf("small ovector = %v, want whole match [0 1]", small)
	}
}

func TestExec_Flags(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		subject string
		start   int
		flags   ExecFlag
		want    []int
		wantErr error
	}{
		{"start offset", `a`, "aba", 1, 0, []int{2, 3}, nil},
		{"anchored", `b`, "ab", 0, Anchored, nil, ErrNoMatch},
		{"anchored at start offset", `b`, "ab", 1, Anchored, []int{1, 2}, nil},
		{"notbol", `^a`, "a", 0, NotBOL, nil, ErrNoMatch},
		{"noteol", `a$`, "a", 0, NotEOL, nil, ErrNoMatch},
		{"notempty", `a*`, "ba", 0, NotEmpty, []int{1, 2}, nil},
		{"notempty at start", `a*`, "bb", 0, NotEmptyAtStart, []int{1, 1}, nil},
		{"newline override", `(?m)^b`, "a\rb", 0, NewlineCR, []int{2, 3}, nil},
		{"default newline", `(?m)^b`, "a\rb", 0, 0, nil, ErrNoMatch},
		{"partial", `abc`, "xab", 0, PartialSoft, []int{1, 3}, ErrPartial},
		{"bad offset", `a`, "a", 2, 0, nil, ErrBadOffset},
		{"unknown flag", `a`, "a", 0, ExecFlag(1 << 30), nil, ErrBadOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			ovector := make([]int, 3)
			_, err := re.Exec([]byte(tt.subject), tt.start, tt.flags, ovector)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Exec() error = %v, want %v", err, tt.wantErr)
			}
			if tt.want != nil {
				if diff := cmp.Diff(tt.want, ovector[:2]); diff != "" {
					t.Errorf("ovector mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestExecMark(t *testing.T) {
	re := MustCompile(`a(*:first)x|b(*:second)y`)

	_, mark, err := re.ExecMark([]byte("by"), 0, 0, nil)
	if err != nil || mark != "second" {
		t.Errorf("match: mark = %q, err = %v; want \"second\", nil", mark, err)
	}
	_, mark, err = re.ExecMark([]byte("bz"), 0, 0, nil)
	if !errors.Is(err, ErrNoMatch) || mark != "second" {
		t.Errorf("no match: mark = %q, err = %v; want \"second\", ErrNoMatch", mark, err)
	}
}

func TestExecWithCallout(t *testing.T) {
	re := MustCompile(`(\d)(?C1)x`)

	var seen []int
	callout := func(cb *CalloutBlock) int {
		seen = append(seen, cb.CurrentPosition)
		if cb.Data != "tag" {
			t.Errorf("Data = %v, want tag", cb.Data)
		}
		return 0
	}
	ovector := make([]int, 4)
	n, _, err := re.ExecWithCallout([]byte("1 2x"), 0, 0, ovector, callout, "tag")
	if err != nil || n != 2 {
		t.Fatalf("ExecWithCallout() = %d, %v", n, err)
	}
	if diff := cmp.Diff([]int{1, 3}, seen); diff != "" {
		t.Errorf("callout positions (-want +got):\n%s", diff)
	}
}

func TestExec_Limits(t *testing.T) {
	config := DefaultConfig()
	config.MatchLimit = 1000
	re, err := CompileWithConfig(`(?:a+)+b`, config)
	if err != nil {
		t.Fatal(err)
	}
	subject := []byte(strings.Repeat("a", 20) + " b")
	if _, err := re.Exec(subject, 0, 0, nil); !errors.Is(err, ErrMatchLimit) {
		t.Errorf("error = %v, want ErrMatchLimit", err)
	}
	if re.Match(subject) {
		t.Error("Match() = true for a limit failure")
	}
}

func TestStrategies(t *testing.T) {
	for _, strategy := range []Strategy{StrategyFrames, StrategyNative} {
		config := DefaultConfig()
		config.Strategy = strategy
		re, err := CompileWithConfig(`^(\w+)\s+\1$`, config)
		if err != nil {
			t.Fatal(err)
		}
		got := re.FindStringSubmatch("hey hey")
		if diff := cmp.Diff([]string{"hey hey", "hey"}, got); diff != "" {
			t.Errorf("strategy %v (-want +got):\n%s", strategy, diff)
		}
	}
}

// TestMatch tests Match and MatchString
func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"hello", "hello world", true},
		{"hello", "goodbye world", false},
		{`\d`, "age 42", true},
		{`^$`, "", true},
		{`(?i)WORLD`, "hello world", true},
		{`\bcat\b`, "concatenate", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			if got := re.Match([]byte(tt.input)); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
			if got := re.MatchString(tt.input); got != tt.want {
				t.Errorf("MatchString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFind(t *testing.T) {
	re := MustCompile(`\d+`)
	if got := string(re.Find([]byte("age: 42"))); got != "42" {
		t.Errorf("Find() = %q, want 42", got)
	}
	if got := re.Find([]byte("none")); got != nil {
		t.Errorf("Find() = %q, want nil", got)
	}
	if got := re.FindString("none"); got != "" {
		t.Errorf("FindString() = %q, want empty", got)
	}
	if diff := cmp.Diff([]int{5, 7}, re.FindStringIndex("age: 42")); diff != "" {
		t.Errorf("FindStringIndex() (-want +got):\n%s", diff)
	}
}

func TestFindSubmatch(t *testing.T) {
	re := MustCompile(`(\w+)@(\w+)(\.com)?`)

	if diff := cmp.Diff([]int{5, 16, 5, 8, 9, 16, -1, -1}, re.FindSubmatchIndex([]byte("mail bob@example"))); diff != "" {
		t.Errorf("FindSubmatchIndex() (-want +got):\n%s", diff)
	}
	got := re.FindSubmatch([]byte("bob@example"))
	if len(got) != 4 || string(got[1]) != "bob" || got[3] != nil {
		t.Errorf("FindSubmatch() = %q", got)
	}
	if diff := cmp.Diff([]string{"bob@ex.com", "bob", "ex", ".com"}, re.FindStringSubmatch("bob@ex.com")); diff != "" {
		t.Errorf("FindStringSubmatch() (-want +got):\n%s", diff)
	}
	if re.FindStringSubmatch("nothing") != nil {
		t.Error("FindStringSubmatch() should be nil without a match")
	}
}

func TestFindAll(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		n       int
		want    [][]int
	}{
		{"digits", `\d+`, "1 22 333", -1, [][]int{{0, 1}, {2, 4}, {5, 8}}},
		{"limit", `\d+`, "1 22 333", 2, [][]int{{0, 1}, {2, 4}}},
		{"empty matches", `a*`, "baa", -1, [][]int{{0, 0}, {1, 3}, {3, 3}}},
		{"empty subject", `x*`, "", -1, [][]int{{0, 0}}},
		{"utf step", `(*UTF8)x*`, "é", -1, [][]int{{0, 0}, {2, 2}}},
		{"byte step", `x*`, "é", -1, [][]int{{0, 0}, {1, 1}, {2, 2}}},
		{"crlf step", `(*CRLF)x*`, "\r\n", -1, [][]int{{0, 0}, {2, 2}}},
		{"lf step", `x*`, "\r\n", -1, [][]int{{0, 0}, {1, 1}, {2, 2}}},
		{"no match", `z`, "abc", -1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			got := re.FindAllIndex([]byte(tt.input), tt.n)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FindAllIndex() (-want +got):\n%s", diff)
			}
			if c := re.Count([]byte(tt.input), tt.n); c != len(tt.want) {
				t.Errorf("Count() = %d, want %d", c, len(tt.want))
			}
		})
	}
}

func TestFindAllString(t *testing.T) {
	re := MustCompile(`(\w)(\d)?`)
	if diff := cmp.Diff([]string{"a1", "b"}, re.FindAllString("a1 b", -1)); diff != "" {
		t.Errorf("FindAllString() (-want +got):\n%s", diff)
	}
	want := [][]string{{"a1", "a", "1"}, {"b", "b", ""}}
	if diff := cmp.Diff(want, re.FindAllStringSubmatch("a1 b", -1)); diff != "" {
		t.Errorf("FindAllStringSubmatch() (-want +got):\n%s", diff)
	}
	wantIdx := [][]int{{0, 2, 0, 1, 1, 2}, {3, 4, 3, 4, -1, -1}}
	if diff := cmp.Diff(wantIdx, re.FindAllSubmatchIndex([]byte("a1 b"), -1)); diff != "" {
		t.Errorf("FindAllSubmatchIndex() (-want +got):\n%s", diff)
	}
}

func TestAdvance(t *testing.T) {
	crlf := MustCompile(`(*CRLF)a`)
	lf := MustCompile(`a`)
	utf := MustCompile(`(*UTF8)a`)
	tests := []struct {
		name  string
		re    *Regex
		input string
		start int
		want  int
	}{
		{"crlf pair", crlf, "x\r\na", 1, 3},
		{"lone cr", crlf, "x\ra", 1, 2},
		{"lf convention", lf, "x\r\na", 1, 2},
		{"utf sequence", utf, "é!", 0, 2},
		{"bytes", lf, "é!", 0, 1},
		{"at end", lf, "ab", 2, 3},
		{"past end", crlf, "", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.re.Advance([]byte(tt.input), tt.start); got != tt.want {
				t.Errorf("Advance(%q, %d) = %d, want %d", tt.input, tt.start, got, tt.want)
			}
		})
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		src     string
		repl    string
		want    string
	}{
		{"numbered", `(\w+)@(\w+)\.(\w+)`, "user@example.com", "$1 at $2 dot $3", "user at example dot com"},
		{"named", `(?<user>\w+)@(\w+)`, "bob@host", "${user}/${2}", "bob/host"},
		{"whole match", `\d+`, "a1b22", "<$0>", "a<1>b<22>"},
		{"dollar", `x`, "axb", "$$", "a$b"},
		{"unset group", `(a)|(b)`, "ab", "[$2]", "[][b]"},
		{"unknown name", `(a)`, "a", "${nope}", ""},
		{"trailing dollar", `a`, "a", "x$", "x$"},
		{"empty matches", `a*`, "baa", "-", "-b--"},
		{"no match", `z`, "abc", "$0", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			if got := re.ReplaceAllString(tt.src, tt.repl); got != tt.want {
				t.Errorf("ReplaceAllString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplace_DupNames(t *testing.T) {
	re := MustCompile(`(?J)(?<n>a)|(?<n>b)`)
	if got := re.ReplaceAllString("ab", "<${n}>"); got != "<a><b>" {
		t.Errorf("ReplaceAllString() = %q, want <a><b>", got)
	}
	if got := re.SubexpIndex("n"); got != 1 {
		t.Errorf("SubexpIndex(n) = %d, want 1", got)
	}
}

func TestReplaceAllLiteralAndFunc(t *testing.T) {
	re := MustCompile(`\d+`)
	if got := re.ReplaceAllLiteralString("a1b2", "$1"); got != "a$1b$1" {
		t.Errorf("ReplaceAllLiteralString() = %q", got)
	}
	got := re.ReplaceAllStringFunc("1 22", func(s string) string {
		return strings.Repeat("#", len(s))
	})
	if got != "# ##" {
		t.Errorf("ReplaceAllStringFunc() = %q", got)
	}
	gotb := re.ReplaceAllFunc([]byte("x9"), func(b []byte) []byte { return append(b, b...) })
	if string(gotb) != "x99" {
		t.Errorf("ReplaceAllFunc() = %q", gotb)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		pattern string
		s       string
		n       int
		want    []string
	}{
		{`,`, "a,b,c", -1, []string{"a", "b", "c"}},
		{`,`, "a,b,c", 2, []string{"a", "b,c"}},
		{`,`, "a,b,c", 0, nil},
		{`,`, "abc", -1, []string{"abc"}},
		{`,`, "", -1, []string{""}},
		{`x*`, "abc", -1, []string{"a", "b", "c"}},
		{`\s*,\s*`, "a , b,c", -1, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.s, func(t *testing.T) {
			got := MustCompile(tt.pattern).Split(tt.s, tt.n)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Split(%q, %d) (-want +got):\n%s", tt.s, tt.n, diff)
			}
		})
	}
}

func TestSubexpNames(t *testing.T) {
	re := MustCompile(`(?<year>\d{4})-(\d\d)-(?P<day>\d\d)`)
	if diff := cmp.Diff([]string{"", "year", "", "day"}, re.SubexpNames()); diff != "" {
		t.Errorf("SubexpNames() (-want +got):\n%s", diff)
	}
	re.SubexpNames()[1] = "changed"
	if re.SubexpNames()[1] != "year" {
		t.Error("SubexpNames() exposes internal state")
	}
	if re.NumSubexp() != 3 {
		t.Errorf("NumSubexp() = %d, want 3", re.NumSubexp())
	}
	if re.SubexpIndex("day") != 3 || re.SubexpIndex("nope") != -1 {
		t.Error("SubexpIndex() mismatch")
	}
}

func TestQuoteMeta(t *testing.T) {
	if got := QuoteMeta("1+1 = 2"); got != `1\+1\ =\ 2` {
		t.Errorf("QuoteMeta() = %q", got)
	}
	if got := QuoteMeta("plain"); got != "plain" {
		t.Errorf("QuoteMeta(plain) = %q", got)
	}
	for _, s := range []string{`a.b*c`, `[x](y){2}`, `^$|\?`, "tab\there", "# not a comment"} {
		re := MustCompile(`^` + QuoteMeta(s) + `$`)
		if !re.MatchString(s) {
			t.Errorf("QuoteMeta(%q) does not match itself", s)
		}
		config := DefaultConfig()
		config.Options = Extended
		rx, err := CompileWithConfig(`^`+QuoteMeta(s)+`$`, config)
		if err != nil {
			t.Fatal(err)
		}
		if !rx.MatchString(s) {
			t.Errorf("QuoteMeta(%q) does not match itself in extended mode", s)
		}
	}
}

func TestStats(t *testing.T) {
	re := MustCompile(`a`)
	re.MatchString("a")
	re.MatchString("b")
	if got := re.Stats().Execs; got != 2 {
		t.Errorf("Execs = %d, want 2", got)
	}
	re.ResetStats()
	if got := re.Stats().Execs; got != 0 {
		t.Errorf("Execs after reset = %d, want 0", got)
	}
}

func TestExecFlag_String(t *testing.T) {
	if got := ExecFlag(0).String(); got != "0" {
		t.Errorf("String() = %q, want 0", got)
	}
	if got := (NewlineCRLF | BSRAnyCRLF).String(); got != "NewlineCRLF|BSRAnyCRLF" {
		t.Errorf("String() = %q", got)
	}
}

func TestDump(t *testing.T) {
	if MustCompile(`a(b)`).Dump() == "" {
		t.Error("Dump() is empty")
	}
}

func BenchmarkMatch(b *testing.B) {
	re := MustCompile(`(\w+)@(\w+)\.com`)
	input := []byte(strings.Repeat("filler text ", 20) + "bob@example.com")
	b.SetBytes(int64(len(input)))
	for b.Loop() {
		re.Match(input)
	}
}

func BenchmarkFindAll(b *testing.B) {
	re := MustCompile(`\d+`)
	input := []byte(strings.Repeat("ab 12 cd 345 ", 50))
	b.SetBytes(int64(len(input)))
	for b.Loop() {
		re.FindAllIndex(input, -1)
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{ErrNoMatch, -1},
		{ErrPartial, -12},
		{ErrMatchLimit, -8},
		{ErrRecursionLimit, -21},
		{&UTFError{Offset: 1, Short: true}, -25},
		{&UTFError{Offset: 1}, -10},
		{&CalloutError{Code: -3}, -9},
		{errors.New("other"), -14},
	}
	for _, tt := range tests {
		if got := ErrorCode(tt.err); got != tt.want {
			t.Errorf("ErrorCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
