package backtrack

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/pcrex/syntax"
)

func TestPartial(t *testing.T) {
	tests := []struct {
		pattern string
		flags   syntax.Flags
		nl      syntax.Newline
		exec    Flags
		subject string
		want    []int
		err     error
	}{
		{pattern: `ab`, exec: PartialSoft, subject: "a", want: []int{0, 1}, err: ErrPartial},
		{pattern: `ab`, exec: PartialHard, subject: "a", want: []int{0, 1}, err: ErrPartial},
		{pattern: `ab`, exec: PartialSoft, subject: "xa", want: []int{1, 2}, err: ErrPartial},
		{pattern: `ab`, exec: PartialSoft, subject: "ab", want: []int{0, 2}},
		{pattern: `ab`, exec: PartialSoft, subject: "x", err: ErrNoMatch},

		// A complete match wins over a partial one only with the soft mode.
		{pattern: `ab|a`, exec: PartialSoft, subject: "a", want: []int{0, 1}},
		{pattern: `ab|a`, exec: PartialHard, subject: "a", want: []int{0, 1}, err: ErrPartial},

		// Lookbehinds and word boundaries count the characters they inspect.
		{pattern: `\b#`, exec: PartialSoft, subject: "a", want: []int{0, 1}, err: ErrPartial},
		{pattern: `(?<=a)b`, exec: PartialSoft, subject: "a", want: []int{0, 1}, err: ErrPartial},
		{pattern: `a\B`, exec: PartialSoft, subject: "a", want: []int{0, 1}, err: ErrPartial},
		{pattern: `a\b`, exec: PartialSoft, subject: "a", want: []int{0, 1}},
		{pattern: `a\b`, exec: PartialHard, subject: "a", want: []int{0, 1}, err: ErrPartial},

		// An empty subject inspects nothing.
		{pattern: `a`, exec: PartialSoft, subject: "", err: ErrNoMatch},

		// Repeats stop at the end.
		{pattern: `a+b`, exec: PartialSoft, subject: "xaaa", want: []int{1, 4}, err: ErrPartial},
		{pattern: `a+`, exec: PartialHard, subject: "aa", want: []int{0, 2}, err: ErrPartial},
		{pattern: `a+`, exec: PartialSoft, subject: "aa", want: []int{0, 2}},
		{pattern: `a+?`, exec: PartialHard, subject: "aa", want: []int{0, 1}},

		// End of subject assertions.
		{pattern: `a$`, exec: PartialHard, subject: "a", want: []int{0, 1}, err: ErrPartial},
		{pattern: `a\z`, exec: PartialSoft, subject: "a", want: []int{0, 1}},
		{pattern: `a$`, flags: syntax.Multiline, nl: syntax.NewlineCRLF, exec: PartialHard,
			subject: "a\r", want: []int{0, 2}, err: ErrPartial},
	}
	for _, strategy := range strategies {
		for _, tt := range tests {
			t.Run(strategy.String()+"/"+tt.pattern+"/"+tt.exec.String(), func(t *testing.T) {
				e := newEngine(t, tt.pattern, tt.flags, strategy)
				got, _, err := run(e, tt.subject, 0, Request{Flags: tt.exec, Newline: tt.nl})
				if !errors.Is(err, tt.err) {
					t.Fatalf("Exec error = %v, want %v", err, tt.err)
				}
				if tt.want == nil {
					return
				}
				if diff := cmp.Diff(tt.want, got[:2]); diff != "" {
					t.Errorf("ovector mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestPartialTruncatedUTF(t *testing.T) {
	e := newEngine(t, `\x{e9}`, syntax.UTF, StrategyFrames)
	subject := "x\xc3"

	_, _, err := run(e, subject, 0, Request{Flags: PartialHard})
	var utfErr *UTFError
	if !errors.As(err, &utfErr) {
		t.Fatalf("Exec error = %v, want *UTFError", err)
	}
	if !utfErr.Short || utfErr.Offset != 1 {
		t.Errorf("UTFError = %+v, want Short at offset 1", *utfErr)
	}

	_, _, err = run(e, subject, 0, Request{Flags: PartialSoft})
	if !errors.As(err, &utfErr) || utfErr.Short {
		t.Errorf("soft partial Exec error = %v, want a UTFError that is not Short", err)
	}
}
