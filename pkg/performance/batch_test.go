package performance

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klinvill/substring-search/pkg/compression"
	"github.com/klinvill/substring-search/pkg/input"
	"github.com/klinvill/substring-search/pkg/match"
)

func writeCorpus(t *testing.T, dir string, files map[string][]byte) {
	t.Helper()
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
}

func newBatchCorpus(t *testing.T) []input.CorpusFile {
	t.Helper()
	tmpDir := t.TempDir()

	cm := compression.NewCompressionManager()
	gz, err := cm.Compress([]byte("qqqqqqqqqq"), compression.CompressionGzip, compression.LevelDefault)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	writeCorpus(t, tmpDir, map[string][]byte{
		"a.txt":    []byte("hello world test"),
		"b.txt":    []byte("another test here"),
		"bad.txt":  {0xff, 0xfe, 'x'},
		"c.txt.gz": gz,
	})

	files, err := input.WalkCorpus(tmpDir, nil)
	if err != nil {
		t.Fatalf("WalkCorpus() error = %v", err)
	}
	return files
}

func TestBatchMatcherRun(t *testing.T) {
	files := newBatchCorpus(t)

	engine, err := match.NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	bm := NewBatchMatcher(engine, &BatchConfig{Workers: 3, CacheEntries: 8}, nil)

	var (
		mu   sync.Mutex
		last int
	)
	bm.SetProgress(func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if total != 6 {
			t.Errorf("total = %d, want 6", total)
		}
		if done > last {
			last = done
		}
	})

	report, err := bm.Run(context.Background(), files, 5)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Files != 4 || report.Pairs != 6 {
		t.Errorf("Files = %d, Pairs = %d, want 4, 6", report.Files, report.Pairs)
	}
	if report.Matched != 1 || report.Failed != 3 {
		t.Errorf("Matched = %d, Failed = %d, want 1, 3", report.Matched, report.Failed)
	}
	if report.Strategy != "shorter-first" || report.Hash != "fx" {
		t.Errorf("Strategy = %s, Hash = %s", report.Strategy, report.Hash)
	}
	if last != 6 {
		t.Errorf("progress reached %d, want 6", last)
	}

	first := report.Results[0]
	if first.First != "a.txt" || first.Second != "b.txt" {
		t.Fatalf("first pair = %s, %s", first.First, first.Second)
	}
	if !first.Found || len([]rune(first.Text)) != 5 {
		t.Errorf("a/b result = %+v", first)
	}
	if !strings.Contains("hello world test", first.Text) || !strings.Contains("another test here", first.Text) {
		t.Errorf("%q is not common to both files", first.Text)
	}

	for _, r := range report.Results {
		if (r.First == "bad.txt" || r.Second == "bad.txt") && r.Err == "" {
			t.Errorf("%s/%s should report the UTF-8 error", r.First, r.Second)
		}
	}
}

func TestBatchMatcherCancelled(t *testing.T) {
	files := newBatchCorpus(t)
	engine, _ := match.NewEngine(nil)
	bm := NewBatchMatcher(engine, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := bm.Run(ctx, files, 5); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestWriteReadReport(t *testing.T) {
	tmpDir := t.TempDir()
	cm := compression.NewCompressionManager()

	report := &BatchReport{
		K:       5,
		Pairs:   1,
		Matched: 1,
		Results: []PairResult{{First: "a", Second: "b", Found: true, Text: "€10 n", Seq: 2, Start: 3, End: 10}},
	}

	for _, name := range []string{"report.json", "report.json.gz", "report.json.zst", "report.json.lz4", "report.json.xz"} {
		path := filepath.Join(tmpDir, name)
		if err := WriteReport(path, report, cm); err != nil {
			t.Fatalf("WriteReport(%s) error = %v", name, err)
		}

		got, err := ReadReport(path, cm)
		if err != nil {
			t.Fatalf("ReadReport(%s) error = %v", name, err)
		}
		if got.K != 5 || len(got.Results) != 1 || got.Results[0] != report.Results[0] {
			t.Errorf("%s: round trip = %+v", name, got)
		}
	}

	raw, err := os.ReadFile(filepath.Join(tmpDir, "report.json.gz"))
	if err != nil {
		t.Fatal(err)
	}
	if cm.Detect(raw) != compression.CompressionGzip {
		t.Error("report.json.gz should be gzip compressed")
	}
}
