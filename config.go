package pcrex

import (
	"fmt"

	"github.com/coregx/pcrex/backtrack"
	"github.com/coregx/pcrex/chartables"
	"github.com/coregx/pcrex/syntax"
)

// Config controls how a pattern is compiled and executed.
//
// Example:
//
//	config := pcrex.DefaultConfig()
//	config.Options = pcrex.Caseless | pcrex.UTF
//	config.MatchLimit = 100000
//	re, err := pcrex.CompileWithConfig(`(\w+)\s+\1`, config)
type Config struct {
	// Options are the compile options. Settings inside the pattern, such
	// as (?i) or (*UTF8), are applied on top of them.
	Options Option

	// Newline is the newline convention used unless the pattern starts
	// with (*CR), (*LF), (*CRLF), (*ANY) or (*ANYCRLF). It can be
	// overridden again per call with the Newline exec flags.
	// Default: NewlineDefault (LF)
	Newline syntax.Newline

	// BSR selects what \R matches unless the pattern starts with
	// (*BSR_ANYCRLF) or (*BSR_UNICODE).
	// Default: BSRDefault (any Unicode newline)
	BSR syntax.BSR

	// Tables are the character tables used to classify and case-fold
	// code points below 256. Nil selects the C locale tables.
	Tables *chartables.Tables

	// MatchLimit bounds the number of internal matcher calls per match
	// attempt. (*LIMIT_MATCH=n) in the pattern can only lower it.
	// Default: 10,000,000
	MatchLimit int

	// RecursionLimit bounds the nesting depth of internal matcher calls.
	// (*LIMIT_RECURSION=n) in the pattern can only lower it.
	// Default: 10,000,000
	RecursionLimit int

	// Strategy selects how nested matcher calls are executed. Both
	// strategies give identical results; StrategyNative uses the goroutine
	// stack and is capped at a fixed depth.
	// Default: StrategyFrames
	Strategy Strategy

	// EnablePrefilter enables the literal prefix scan that skips start
	// positions before each match attempt.
	// Default: true
	EnablePrefilter bool

	// Allocator supplies the working capture vectors. An Allocator that
	// is also a FrameAllocator is charged for every backtracking frame.
	// Nil selects a shared pool.
	Allocator Allocator
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Newline:         syntax.NewlineDefault,
		BSR:             syntax.BSRDefault,
		MatchLimit:      backtrack.DefaultMatchLimit,
		RecursionLimit:  backtrack.DefaultRecursionLimit,
		Strategy:        StrategyFrames,
		EnablePrefilter: true,
	}
}

// Validate checks the configuration and returns a *ConfigError describing
// the first invalid field.
func (c Config) Validate() error {
	if c.Options&^optionMask != 0 {
		return &ConfigError{
			Field:   "Options",
			Message: fmt.Sprintf("unknown option bits %#x", uint32(c.Options&^optionMask)),
		}
	}
	if c.Newline > syntax.NewlineAnyCRLF {
		return &ConfigError{
			Field:   "Newline",
			Message: "must be one of the syntax.Newline constants",
		}
	}
	if c.BSR > syntax.BSRAnyCRLF {
		return &ConfigError{
			Field:   "BSR",
			Message: "must be one of the syntax.BSR constants",
		}
	}
	if c.MatchLimit < 1 {
		return &ConfigError{
			Field:   "MatchLimit",
			Message: "must be at least 1",
		}
	}
	if c.RecursionLimit < 1 {
		return &ConfigError{
			Field:   "RecursionLimit",
			Message: "must be at least 1",
		}
	}
	if c.Strategy != StrategyFrames && c.Strategy != StrategyNative {
		return &ConfigError{
			Field:   "Strategy",
			Message: "must be StrategyFrames or StrategyNative",
		}
	}
	return nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "pcrex: invalid config: " + e.Field + ": " + e.Message
}
