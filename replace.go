package pcrex

// ReplaceAllLiteral returns a copy of src, replacing matches of the pattern
// with the replacement bytes repl.
// The replacement is substituted directly, without expanding $ variables.
//
// Example:
//
//	re := pcrex.MustCompile(`\d+`)
//	result := re.ReplaceAllLiteral([]byte("age: 42"), []byte("XX"))
//	// result = []byte("age: XX")
func (r *Regex) ReplaceAllLiteral(src, repl []byte) []byte {
	return r.replaceAll(src, 1, func(dst []byte, _ []int) []byte {
		return append(dst, repl...)
	})
}

// ReplaceAllLiteralString is ReplaceAllLiteral for strings.
func (r *Regex) ReplaceAllLiteralString(src, repl string) string {
	return string(r.ReplaceAllLiteral([]byte(src), []byte(repl)))
}

// ReplaceAll returns a copy of src, replacing matches of the pattern
// with the replacement bytes repl.
// Inside repl, $n and ${n} are the text of group n ($0 is the entire
// match), ${name} is the text of a named group and $$ is a literal $.
// Unset and unknown groups expand to nothing.
//
// Example:
//
//	re := pcrex.MustCompile(`(?<user>\w+)@(\w+)\.(\w+)`)
//	result := re.ReplaceAll([]byte("user@example.com"), []byte("${user} at $2 dot $3"))
//	// result = []byte("user at example dot com")
func (r *Regex) ReplaceAll(src, repl []byte) []byte {
	hasDollar := false
	for _, b := range repl {
		if b == '$' {
			hasDollar = true
			break
		}
	}
	if !hasDollar {
		return r.ReplaceAllLiteral(src, repl)
	}
	return r.replaceAll(src, r.prog.Captures+1, func(dst []byte, match []int) []byte {
		return r.expand(dst, repl, src, match)
	})
}

// ReplaceAllString is ReplaceAll for strings.
func (r *Regex) ReplaceAllString(src, repl string) string {
	return string(r.ReplaceAll([]byte(src), []byte(repl)))
}

// ReplaceAllFunc returns a copy of src in which all matches of the pattern
// have been replaced by the return value of function repl applied to the matched
// byte slice. The replacement returned by repl is substituted directly.
//
// Example:
//
//	re := pcrex.MustCompile(`\d+`)
//	result := re.ReplaceAllFunc([]byte("1 2 3"), func(s []byte) []byte {
//	    n, _ := strconv.Atoi(string(s))
//	    return []byte(strconv.Itoa(n * 2))
//	})
//	// result = []byte("2 4 6")
func (r *Regex) ReplaceAllFunc(src []byte, repl func([]byte) []byte) []byte {
	return r.replaceAll(src, 1, func(dst []byte, match []int) []byte {
		return append(dst, repl(src[match[0]:match[1]:match[1]])...)
	})
}

// ReplaceAllStringFunc is ReplaceAllFunc for strings.
func (r *Regex) ReplaceAllStringFunc(src string, repl func(string) string) string {
	return string(r.replaceAll([]byte(src), 1, func(dst []byte, match []int) []byte {
		return append(dst, repl(src[match[0]:match[1]])...)
	}))
}

func (r *Regex) replaceAll(src []byte, pairs int, repl func(dst []byte, match []int) []byte) []byte {
	result := make([]byte, 0, len(src))
	lastEnd := 0
	r.allMatches(src, -1, pairs, func(match []int) {
		result = append(result, src[lastEnd:match[0]]...)
		result = repl(result, match)
		lastEnd = match[1]
	})
	return append(result, src[lastEnd:]...)
}

// expand appends template to dst, replacing group references with the
// corresponding text of src.
func (r *Regex) expand(dst, template, src []byte, match []int) []byte {
	group := func(n int) {
		if 2*n+1 < len(match) && match[2*n] >= 0 {
			dst = append(dst, src[match[2*n]:match[2*n+1]]...)
		}
	}
	i := 0
	for i < len(template) {
		if template[i] != '$' || i+1 >= len(template) {
			dst = append(dst, template[i])
			i++
			continue
		}
		next := template[i+1]
		switch {
		case next == '$':
			dst = append(dst, '$')
			i += 2
		case isDigit(next):
			n, j := 0, i+1
			for j < len(template) && isDigit(template[j]) && n <= r.prog.Captures {
				n = n*10 + int(template[j]-'0')
				j++
			}
			group(n)
			i = j
		case next == '{':
			end := i + 2
			for end < len(template) && template[end] != '}' {
				end++
			}
			if end == len(template) {
				dst = append(dst, '$')
				i++
				continue
			}
			ref := string(template[i+2 : end])
			if n, ok := parseGroupNumber(ref); ok {
				group(n)
			} else {
				// With duplicate names the first set group wins.
				for _, n := range r.prog.NameIndex[ref] {
					if 2*n < len(match) && match[2*n] >= 0 {
						group(n)
						break
					}
				}
			}
			i = end + 1
		default:
			dst = append(dst, '$')
			i++
		}
	}
	return dst
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func parseGroupNumber(s string) (int, bool) {
	if s == "" || len(s) > 5 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

// Split slices s into substrings separated by the expression and returns a slice
// of the substrings between those expression matches. An empty match at
// the start of s does not produce an empty first substring.
//
// The count determines the number of substrings to return:
//
//	n > 0: at most n substrings; the last substring will be the unsplit remainder.
//	n == 0: the result is nil (zero substrings)
//	n < 0: all substrings
//
// Example:
//
//	re := pcrex.MustCompile(`,`)
//	parts := re.Split("a,b,c", -1)
//	// parts = ["a", "b", "c"]
//
//	parts = re.Split("a,b,c", 2)
//	// parts = ["a", "b,c"]
func (r *Regex) Split(s string, n int) []string {
	if n == 0 {
		return nil
	}
	if s == "" {
		return []string{""}
	}

	var result []string
	beg, end := 0, 0
	done := false
	r.allMatches([]byte(s), -1, 1, func(match []int) {
		if done {
			return
		}
		if n > 0 && len(result) == n-1 {
			done = true
			return
		}
		end = match[0]
		if match[1] != 0 {
			result = append(result, s[beg:end])
		}
		beg = match[1]
	})
	if end != len(s) || done {
		result = append(result, s[beg:])
	}
	return result
}
