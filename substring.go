// Package substring finds common substrings of exactly k characters between
// two text sequences.
//
// Windows advance one Unicode character at a time over the underlying bytes,
// candidate windows are compared by hash first and then by content, and the
// search strategy decides which substring is reported when several exist.
package substring

import (
	"fmt"

	"github.com/klinvill/substring-search/pkg/hash"
	"github.com/klinvill/substring-search/pkg/match"
)

// Match is a common substring together with where it was found.
type Match = match.Match

var (
	firstEngine = mustEngine(&match.Config{Strategy: match.StrategyShorterFirst, Hash: hash.KindFx})
	anyEngine   = mustEngine(&match.Config{Strategy: match.StrategyAlternating, Hash: hash.KindFx})
)

func mustEngine(c *match.Config) *match.Engine {
	e, err := match.NewEngine(c)
	if err != nil {
		panic(err)
	}
	return e
}

// FirstCommonSubstring returns the first window of the scanned sequence that
// also occurs in the indexed sequence. The sequence with fewer characters is
// indexed (s1 on a tie) and the other one is scanned from the left, so which
// substring is reported depends on the relative lengths of the inputs.
//
// k = 0 always matches the empty string. A negative k never matches.
func FirstCommonSubstring(s1, s2 string, k int) (string, bool) {
	m, ok := firstEngine.Find(s1, s2, k)
	return m.Text, ok
}

// AnyCommonSubstring returns some common substring of k characters, found by
// indexing both sequences in lockstep. It stops at the first hit and makes no
// promise about which common substring that is.
func AnyCommonSubstring(s1, s2 string, k int) (string, bool) {
	m, ok := anyEngine.Find(s1, s2, k)
	return m.Text, ok
}

// HasCommonSubstring reports whether s1 and s2 share a substring of k characters.
func HasCommonSubstring(s1, s2 string, k int) bool {
	_, ok := FirstCommonSubstring(s1, s2, k)
	return ok
}

// ============================================================================
// Options Pattern
// ============================================================================

// Option modifies the engine configuration used by Find.
type Option func(c *match.Config) error

// WithStrategy sets the search strategy by name
// ("ordered", "shorter-first" or "alternating").
func WithStrategy(name string) Option {
	return func(c *match.Config) error {
		s, err := match.ParseStrategy(name)
		if err != nil {
			return err
		}
		c.Strategy = s
		return nil
	}
}

// WithHash sets the window hash by name (see hash.Kinds).
func WithHash(name string) Option {
	return func(c *match.Config) error {
		k, err := hash.ParseKind(name)
		if err != nil {
			return err
		}
		c.Hash = k
		return nil
	}
}

// WithSalt fixes the polynomial hash salt. Zero samples a new salt per call.
// A non-zero salt combined with any other hash makes Find fail with
// match.ErrUnusedSalt.
func WithSalt(salt uint64) Option {
	return func(c *match.Config) error {
		if salt == 1 {
			return fmt.Errorf("%w: %d", match.ErrInvalidSalt, salt)
		}
		c.Salt = salt
		return nil
	}
}

// WithSipKey sets the SipHash key.
func WithSipKey(k0, k1 uint64) Option {
	return func(c *match.Config) error {
		c.SipKey0, c.SipKey1 = k0, k1
		return nil
	}
}

// Find runs a single search with the given options applied on top of the
// default configuration (shorter-first, Fx hash).
func Find(s1, s2 string, k int, opts ...Option) (Match, bool, error) {
	cfg := match.DefaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Match{}, false, err
		}
	}

	e, err := match.NewEngine(cfg)
	if err != nil {
		return Match{}, false, err
	}

	m, ok := e.Find(s1, s2, k)
	return m, ok, nil
}
