package input

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWalkCorpus(t *testing.T) {
	tmpDir := t.TempDir()

	// 创建测试文件
	files := map[string]string{
		"Tolstoy/war_and_peace.txt":  "content1",
		"Tolstoy/anna_karenina.txt":  "content2",
		"genomes/monkeypox.txt":      "ACGT",
		"readme.md":                  "root",
		"genomes/.cache/ignored.txt": "x",
	}
	for path, content := range files {
		writeFile(t, tmpDir, path, []byte(content))
	}

	entries, err := WalkCorpus(tmpDir, nil)
	if err != nil {
		t.Fatalf("WalkCorpus() error = %v", err)
	}

	want := []string{
		"Tolstoy/anna_karenina.txt",
		"Tolstoy/war_and_peace.txt",
		"genomes/monkeypox.txt",
		"readme.md",
	}
	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.RelativePath != want[i] {
			t.Errorf("entry %d = %s, want %s", i, e.RelativePath, want[i])
		}
	}

	groups := Categories(entries)
	names := CategoryNames(groups)
	if len(names) != 3 || names[0] != "" || names[1] != "Tolstoy" || names[2] != "genomes" {
		t.Errorf("CategoryNames() = %q", names)
	}
	if len(groups["Tolstoy"]) != 2 {
		t.Errorf("Tolstoy has %d files, want 2", len(groups["Tolstoy"]))
	}
	if entries[2].Size != 4 {
		t.Errorf("Size = %d, want 4", entries[2].Size)
	}
}

func TestWalkCorpusNonRecursive(t *testing.T) {
	tmpDir := t.TempDir()

	os.WriteFile(filepath.Join(tmpDir, "file1.txt"), []byte("content1"), 0644)
	os.MkdirAll(filepath.Join(tmpDir, "subdir"), 0755)
	os.WriteFile(filepath.Join(tmpDir, "subdir/file2.txt"), []byte("content2"), 0644)

	entries, err := WalkCorpus(tmpDir, &WalkConfig{Recursive: false})
	if err != nil {
		t.Fatalf("WalkCorpus() error = %v", err)
	}

	// 只应该包含根目录文件
	if len(entries) != 1 || entries[0].RelativePath != "file1.txt" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestWalkCorpusIgnorePatterns(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{"a.txt", "b.txt.gz", "skip/c.txt", "keep/d.txt"} {
		writeFile(t, tmpDir, name, []byte("x"))
	}

	entries, err := WalkCorpus(tmpDir, &WalkConfig{
		Recursive:      true,
		IgnorePatterns: []string{"*.gz", "skip"},
	})
	if err != nil {
		t.Fatalf("WalkCorpus() error = %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].RelativePath != "a.txt" || entries[1].RelativePath != "keep/d.txt" {
		t.Errorf("entries = %s, %s", entries[0].RelativePath, entries[1].RelativePath)
	}
}

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		expected bool
	}{
		{"file.txt", []string{".git"}, false},
		{".git", []string{".git"}, true},
		{"sub/file.txt", []string{"sub"}, true},
		{"other/file.txt", []string{"sub"}, false},
		{"data/genome.fa.xz", []string{"*.xz"}, true},
		{"data/genome.fa", []string{"*.xz"}, false},
		{"x.txt", []string{""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := shouldIgnore(tt.path, tt.patterns)
			if result != tt.expected {
				t.Errorf("shouldIgnore(%v, %v) = %v, want %v", tt.path, tt.patterns, result, tt.expected)
			}
		})
	}
}

func TestPairs(t *testing.T) {
	files := []CorpusFile{{RelativePath: "a"}, {RelativePath: "b"}, {RelativePath: "c"}}
	pairs := Pairs(files)
	want := [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(pairs), len(want))
	}
	for i, p := range pairs {
		if p.First.RelativePath != want[i][0] || p.Second.RelativePath != want[i][1] {
			t.Errorf("pair %d = (%s, %s)", i, p.First.RelativePath, p.Second.RelativePath)
		}
	}
	if len(Pairs(files[:1])) != 0 {
		t.Error("a single file has no pairs")
	}
}
