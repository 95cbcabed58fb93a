package syntax

// Flags control how a pattern is parsed and compiled. Several of them can
// also be switched inside the pattern with (?imsxJU) settings.
type Flags uint32

const (
	Caseless         Flags = 1 << iota // (?i)
	Multiline                          // (?m): ^ and $ match at internal newlines
	DotAll                             // (?s): . matches newline
	Extended                           // (?x): ignore white space and # comments
	Anchored                           // match only at the start offset
	DollarEndOnly                      // $ matches only at the very end
	Ungreedy                           // (?U): swap greedy and lazy quantifiers
	NoAutoCapture                      // plain ( ) groups do not capture
	DupNames                           // (?J): allow duplicate group names
	UTF                                // (*UTF8): pattern and subject are UTF-8
	UCP                                // (*UCP): \d \s \w and POSIX classes use Unicode properties
	FirstLine                          // a match must start on the first line
	JavaScriptCompat                   // unset back references match the empty string
	AutoCallout                        // insert callout 255 before every item
	NoStartOptimize                    // (*NO_START_OPT): disable start-up optimisations
)

// Newline selects the character sequences recognised as a newline.
type Newline uint8

const (
	NewlineDefault Newline = iota // use the configured default (LF)
	NewlineCR
	NewlineLF
	NewlineCRLF
	NewlineAny     // any Unicode newline sequence
	NewlineAnyCRLF // CR, LF or CRLF
)

// BSR selects what \R matches.
type BSR uint8

const (
	BSRDefault BSR = iota
	BSRUnicode     // any Unicode newline sequence
	BSRAnyCRLF     // CR, LF or CRLF only
)

func (n Newline) String() string {
	switch n {
	case NewlineCR:
		return "CR"
	case NewlineLF:
		return "LF"
	case NewlineCRLF:
		return "CRLF"
	case NewlineAny:
		return "ANY"
	case NewlineAnyCRLF:
		return "ANYCRLF"
	}
	return "default"
}
