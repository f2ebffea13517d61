package performance

import (
	"strings"
	"testing"

	"github.com/klinvill/substring-search/pkg/hash"
)

func TestAnalyzeCollisions(t *testing.T) {
	stats, err := AnalyzeCollisions("abcabcabc", 3, nil, hash.Params{})
	if err != nil {
		t.Fatalf("AnalyzeCollisions() error = %v", err)
	}

	// builtin 被跳过
	if len(stats) != len(hash.Kinds())-1 {
		t.Fatalf("got %d stats, want %d", len(stats), len(hash.Kinds())-1)
	}

	byKind := make(map[hash.Kind]CollisionStats)
	for _, s := range stats {
		if s.Windows != 7 || s.DistinctTexts != 3 {
			t.Errorf("%s: Windows = %d, DistinctTexts = %d, want 7, 3", s.Kind, s.Windows, s.DistinctTexts)
		}
		if s.DistinctHashes > s.DistinctTexts {
			t.Errorf("%s: more hashes than texts", s.Kind)
		}
		byKind[s.Kind] = s
	}

	// "bca" 与 "cab" 的字节和与加权和都相同
	if got := byKind[hash.KindAdler32]; got.DistinctHashes != 2 || got.Collisions() != 1 {
		t.Errorf("adler32 = %+v, want 2 distinct hashes", got)
	}
	if got := byKind[hash.KindXXHash]; got.Collisions() != 0 {
		t.Errorf("xxhash collisions = %d, want 0", got.Collisions())
	}
	if got := byKind[hash.KindPolynomial]; got.Salt < hash.MinSalt {
		t.Errorf("polynomial salt = %d, want sampled salt", got.Salt)
	}
}

func TestAnalyzeCollisionsSelectedKinds(t *testing.T) {
	stats, err := AnalyzeCollisions("›It costs €10", 2, []hash.Kind{hash.KindPolynomial, hash.KindBuiltin}, hash.Params{Salt: 31})
	if err != nil {
		t.Fatalf("AnalyzeCollisions() error = %v", err)
	}
	if len(stats) != 1 || stats[0].Kind != hash.KindPolynomial || stats[0].Salt != 31 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats[0].Windows != 12 {
		t.Errorf("Windows = %d, want 12", stats[0].Windows)
	}

	if _, err := AnalyzeCollisions("abc", 0, nil, hash.Params{}); err == nil {
		t.Error("k = 0 should be rejected")
	}

	empty, err := AnalyzeCollisions("ab", 3, []hash.Kind{hash.KindFx}, hash.Params{})
	if err != nil || len(empty) != 1 || empty[0].Windows != 0 || empty[0].Rate() != 0 {
		t.Errorf("short text = %+v, %v", empty, err)
	}
}

func TestFormatCollisions(t *testing.T) {
	out := FormatCollisions([]CollisionStats{
		{Kind: hash.KindAdler32, Windows: 7, DistinctTexts: 3, DistinctHashes: 2},
		{Kind: hash.KindPolynomial, Salt: 31, Windows: 7, DistinctTexts: 3, DistinctHashes: 3},
	})
	if !strings.Contains(out, "adler32") || !strings.Contains(out, "polynomial(31)") {
		t.Errorf("FormatCollisions() = %q", out)
	}
}
