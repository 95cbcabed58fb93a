package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coregx/pcrex"
	"github.com/coregx/pcrex/syntax"
)

type options struct {
	caseless, multiline, dotAll, extended bool
	utf, ucp, ungreedy, dupNames          bool
	firstLine, anchored, noStartOpt       bool
	notBOL, notEOL, notEmpty              bool
	partial, newline, strategy            string
	matchLimit, recursionLimit            int
	dump, all                             bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "pcrextest [flags] PATTERN [SUBJECT...]",
		Short: "pcrextest matches subjects against a Perl-compatible regular expression.",
		Long: "`pcrextest` compiles PATTERN and matches each SUBJECT against it, printing the\n" +
			"captured substrings the way pcretest does.\n\n" +
			"Subjects are read one per line from standard input when none are given.\n" +
			"The escapes \\n, \\r, \\t, \\\\ and \\xhh are recognised in subjects.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, args)
		},
	}

	o.register(cmd.Flags())
	return cmd
}

func (o *options) register(f *pflag.FlagSet) {
	f.BoolVarP(&o.caseless, "caseless", "i", false, "Match letters case-insensitively.")
	f.BoolVarP(&o.multiline, "multiline", "m", false, "^ and $ also match at internal newlines.")
	f.BoolVarP(&o.dotAll, "dotall", "s", false, "Dot also matches newlines.")
	f.BoolVarP(&o.extended, "extended", "x", false, "Ignore white space and # comments in the pattern.")
	f.BoolVar(&o.utf, "utf", false, "Treat pattern and subjects as UTF-8.")
	f.BoolVar(&o.ucp, "ucp", false, "Use Unicode properties for \\d, \\s, \\w and POSIX classes.")
	f.BoolVar(&o.ungreedy, "ungreedy", false, "Invert the greediness of quantifiers.")
	f.BoolVar(&o.dupNames, "dupnames", false, "Allow duplicate group names.")
	f.BoolVar(&o.firstLine, "firstline", false, "A match must start on the first line of the subject.")
	f.BoolVar(&o.anchored, "anchored", false, "Match only at the start of each subject.")
	f.BoolVar(&o.notBOL, "notbol", false, "The subject start is not the beginning of a line.")
	f.BoolVar(&o.notEOL, "noteol", false, "The subject end is not the end of a line.")
	f.BoolVar(&o.notEmpty, "notempty", false, "An empty string is not a valid match.")
	f.StringVar(&o.partial, "partial", "", "Partial matching: soft or hard.")
	f.StringVar(&o.newline, "newline", "lf", "Newline convention: lf, cr, crlf, any or anycrlf.")
	f.StringVar(&o.strategy, "strategy", "frames", "Execution strategy: frames or native.")
	f.IntVar(&o.matchLimit, "match-limit", pcrex.DefaultConfig().MatchLimit, "Maximum matcher calls per attempt.")
	f.IntVar(&o.recursionLimit, "recursion-limit", pcrex.DefaultConfig().RecursionLimit, "Maximum matcher nesting depth.")
	f.BoolVar(&o.noStartOpt, "no-start-opt", false, "Disable start-of-match optimisations.")
	f.BoolVar(&o.dump, "dump", false, "Print the compiled program before matching.")
	f.BoolVar(&o.all, "all", false, "Find all matches in each subject, like pcretest /g.")
}

func (o *options) config() (pcrex.Config, error) {
	config := pcrex.DefaultConfig()
	set := func(on bool, opt pcrex.Option) {
		if on {
			config.Options |= opt
		}
	}
	set(o.caseless, pcrex.Caseless)
	set(o.multiline, pcrex.Multiline)
	set(o.dotAll, pcrex.DotAll)
	set(o.extended, pcrex.Extended)
	set(o.utf, pcrex.UTF)
	set(o.ucp, pcrex.UCP)
	set(o.ungreedy, pcrex.Ungreedy)
	set(o.dupNames, pcrex.DupNames)
	set(o.firstLine, pcrex.FirstLine)
	set(o.noStartOpt, pcrex.CompileNoStartOptimize)

	switch strings.ToLower(o.newline) {
	case "lf":
		config.Newline = syntax.NewlineLF
	case "cr":
		config.Newline = syntax.NewlineCR
	case "crlf":
		config.Newline = syntax.NewlineCRLF
	case "any":
		config.Newline = syntax.NewlineAny
	case "anycrlf":
		config.Newline = syntax.NewlineAnyCRLF
	default:
		return config, fmt.Errorf("unknown newline convention %q", o.newline)
	}
	switch strings.ToLower(o.strategy) {
	case "frames":
		config.Strategy = pcrex.StrategyFrames
	case "native":
		config.Strategy = pcrex.StrategyNative
	default:
		return config, fmt.Errorf("unknown strategy %q", o.strategy)
	}
	config.MatchLimit = o.matchLimit
	config.RecursionLimit = o.recursionLimit
	return config, nil
}

func (o *options) execFlags() (pcrex.ExecFlag, error) {
	var flags pcrex.ExecFlag
	set := func(on bool, f pcrex.ExecFlag) {
		if on {
			flags |= f
		}
	}
	set(o.anchored, pcrex.Anchored)
	set(o.notBOL, pcrex.NotBOL)
	set(o.notEOL, pcrex.NotEOL)
	set(o.notEmpty, pcrex.NotEmpty)
	switch strings.ToLower(o.partial) {
	case "":
	case "soft":
		flags |= pcrex.PartialSoft
	case "hard":
		flags |= pcrex.PartialHard
	default:
		return 0, fmt.Errorf("unknown partial mode %q", o.partial)
	}
	return flags, nil
}

func run(cmd *cobra.Command, o *options, args []string) error {
	config, err := o.config()
	if err != nil {
		return err
	}
	flags, err := o.execFlags()
	if err != nil {
		return err
	}
	re, err := pcrex.CompileWithConfig(args[0], config)
	if err != nil {
		return fmt.Errorf("failed to compile pattern: %w", err)
	}
	glog.V(1).Infof("compiled %q: %d groups, flags %v", args[0], re.NumSubexp(), flags)

	out := cmd.OutOrStdout()
	if o.dump {
		fmt.Fprint(out, re.Dump())
	}

	subjects := args[1:]
	if len(subjects) == 0 {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			subjects = append(subjects, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read subjects: %w", err)
		}
	}
	t := &tester{re: re, out: out, flags: flags, all: o.all}
	for _, s := range subjects {
		subject, err := unescape(s)
		if err != nil {
			return err
		}
		t.match(subject)
	}
	glog.V(1).Infof("stats: %+v", re.Stats())
	return nil
}

type tester struct {
	re    *pcrex.Regex
	out   io.Writer
	flags pcrex.ExecFlag
	all   bool
}

// match prints the result of matching one subject. With all set it keeps
// matching after each success, retrying an empty match as a non-empty
// anchored one before moving on.
func (t *tester) match(subject []byte) {
	ovector := make([]int, 2*(t.re.NumSubexp()+1))
	start := 0
	var extra pcrex.ExecFlag
	for matched := false; ; matched = true {
		n, mark, err := t.re.ExecMark(subject, start, t.flags|extra, ovector)
		switch {
		case err == nil:
		case errors.Is(err, pcrex.ErrNoMatch) && extra != 0:
			if start >= len(subject) {
				return
			}
			start, extra = t.re.Advance(subject, start), 0
			continue
		case errors.Is(err, pcrex.ErrNoMatch):
			if !matched {
				if mark != "" {
					fmt.Fprintf(t.out, "No match, mark = %s\n", mark)
				} else {
					fmt.Fprintln(t.out, "No match")
				}
			}
			return
		case errors.Is(err, pcrex.ErrPartial):
			fmt.Fprintf(t.out, "Partial match: %s\n", printable(subject[ovector[0]:ovector[1]]))
			return
		default:
			glog.Errorf("exec %q: %v", subject, err)
			fmt.Fprintf(t.out, "Error %d: %v\n", pcrex.ErrorCode(err), err)
			return
		}

		for i := 0; i < n; i++ {
			if ovector[2*i] < 0 {
				fmt.Fprintf(t.out, "%2d: <unset>\n", i)
				continue
			}
			fmt.Fprintf(t.out, "%2d: %s\n", i, printable(subject[ovector[2*i]:ovector[2*i+1]]))
		}
		if mark != "" {
			fmt.Fprintf(t.out, "MK: %s\n", mark)
		}
		if !t.all {
			return
		}
		extra = 0
		if ovector[0] == ovector[1] {
			extra = pcrex.NotEmptyAtStart | pcrex.Anchored
		}
		start = ovector[1]
	}
}

// printable renders s with control characters and non-ASCII bytes as \xhh.
func printable(s []byte) string {
	var b strings.Builder
	for _, c := range s {
		if c >= 0x20 && c < 0x7f {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, `\x%02x`, c)
	}
	return b.String()
}

// unescape decodes the subject escapes \n, \r, \t, \\ and \xhh.
func unescape(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			out = append(out, s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case '\\':
			out = append(out, '\\')
		case 'x':
			if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
				return nil, fmt.Errorf("bad \\x escape in subject %q", s)
			}
			out = append(out, hexVal(s[i+1])<<4|hexVal(s[i+2]))
			i += 2
		default:
			out = append(out, '\\', s[i])
		}
	}
	return out, nil
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hexVal(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}
