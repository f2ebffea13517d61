package performance

import (
	"context"
	"strings"
	"testing"

	"github.com/klinvill/substring-search/pkg/hash"
	"github.com/klinvill/substring-search/pkg/match"
)

func TestAllVariants(t *testing.T) {
	variants := AllVariants()
	if len(variants) != len(match.Strategies())*len(hash.Kinds()) {
		t.Errorf("got %d variants", len(variants))
	}
	if variants[0].String() != "ordered/builtin" {
		t.Errorf("first variant = %s", variants[0])
	}
}

func TestBenchmarkSuite(t *testing.T) {
	tmpDir := t.TempDir()
	writeCorpus(t, tmpDir, map[string][]byte{
		"books/a.txt": []byte("It was the best of times"),
		"books/b.txt": []byte("it was the worst of times"),
		"dna/x.txt":   []byte("ACGTACGTTT"),
		"dna/y.txt":   []byte("GGGGCCCC"),
		"lone.txt":    []byte("no partner"),
	})

	suite := NewBenchmarkSuite(tmpDir, &BenchmarkConfig{
		K:          4,
		Iterations: 2,
		Variants: []Variant{
			{Strategy: match.StrategyOrdered, Hash: hash.KindAdler32},
			{Strategy: match.StrategyAlternating, Hash: hash.KindPolynomial},
		},
	}, nil)

	if err := suite.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	results := suite.GetResults()
	// 两个类别各一对，每对两个变体；根目录只有一个文件
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	for _, r := range results {
		if !r.Success {
			t.Errorf("%s [%s] failed: %s", r.TestName, r.Variant, r.ErrorMessage)
		}
		if r.Iterations != 2 || r.Bytes == 0 {
			t.Errorf("%s: Iterations = %d, Bytes = %d", r.TestName, r.Iterations, r.Bytes)
		}
		switch r.Category {
		case "books":
			if !r.Found {
				t.Errorf("books pair should share a 4-character substring")
			}
		case "dna":
			if r.Found {
				t.Errorf("dna pair should not match")
			}
		default:
			t.Errorf("unexpected category %q", r.Category)
		}
	}

	report := suite.GenerateReport()
	for _, want := range []string{"类别: books", "类别: dna", "ordered/adler32", "alternating/polynomial", "成功 ✅", "缓存统计"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestBenchmarkSuiteCancelled(t *testing.T) {
	tmpDir := t.TempDir()
	writeCorpus(t, tmpDir, map[string][]byte{
		"c/a.txt": []byte("abcdef"),
		"c/b.txt": []byte("defghi"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	suite := NewBenchmarkSuite(tmpDir, nil, nil)
	if err := suite.Run(ctx); err == nil {
		t.Error("Run() with a cancelled context should fail")
	}
}
