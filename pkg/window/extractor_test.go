package window

import (
	"testing"
	"unicode/utf8"

	"pgregory.net/rapid"
)

func collect(src string, k int) []Window {
	var out []Window
	e := NewExtractor(src, k)
	for {
		w, ok := e.Next()
		if !ok {
			return out
		}
		out = append(out, w)
	}
}

// reporter testing.T 与 rapid.T 的公共子集
type reporter interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// checkWindows 检查窗口是否沿字符边界对齐并逐字符前进
func checkWindows(t reporter, src string, k int, windows []Window) {
	t.Helper()

	n := utf8.RuneCountInString(src)
	if len(windows) != Count(n, k) {
		t.Fatalf("got %d windows, want %d", len(windows), Count(n, k))
	}
	if len(windows) == 0 {
		return
	}

	if windows[0].Start != 0 {
		t.Errorf("first window starts at %d, want 0", windows[0].Start)
	}
	if last := windows[len(windows)-1]; last.End != len(src) {
		t.Errorf("last window ends at %d, want %d", last.End, len(src))
	}

	for i, w := range windows {
		if src[w.Start:w.End] != w.Text {
			t.Errorf("window %d text %q does not match range [%d, %d)", i, w.Text, w.Start, w.End)
		}
		if !utf8.ValidString(w.Text) {
			t.Errorf("window %d %q splits a character", i, w.Text)
		}
		if c := utf8.RuneCountInString(w.Text); c != k {
			t.Errorf("window %d %q has %d characters, want %d", i, w.Text, c, k)
		}
		if i > 0 {
			_, size := utf8.DecodeRuneInString(src[windows[i-1].Start:])
			if w.Start != windows[i-1].Start+size {
				t.Errorf("window %d starts at %d, want %d", i, w.Start, windows[i-1].Start+size)
			}
		}
	}
}

func TestExtractorASCII(t *testing.T) {
	windows := collect("abcdef", 3)
	want := []string{"abc", "bcd", "cde", "def"}
	if len(windows) != len(want) {
		t.Fatalf("got %d windows, want %d", len(windows), len(want))
	}
	for i, w := range windows {
		if w.Text != want[i] {
			t.Errorf("window %d = %q, want %q", i, w.Text, want[i])
		}
		if w.Start != i || w.End != i+3 {
			t.Errorf("window %d range = [%d, %d), want [%d, %d)", i, w.Start, w.End, i, i+3)
		}
	}
}

func TestExtractorMultibyte(t *testing.T) {
	src := "›It costs €10 for this item…"
	windows := collect(src, 5)
	checkWindows(t, src, 5, windows)

	if windows[0].Text != "›It c" {
		t.Errorf("first window = %q, want %q", windows[0].Text, "›It c")
	}
	if windows[0].Len() != 7 {
		t.Errorf("first window byte length = %d, want 7", windows[0].Len())
	}
	if last := windows[len(windows)-1]; last.Text != "item…" {
		t.Errorf("last window = %q, want %q", last.Text, "item…")
	}
}

func TestExtractorEdges(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		k     int
		count int
	}{
		{"empty", "", 3, 0},
		{"shorter than k", "ab", 3, 0},
		{"exactly k", "abc", 3, 1},
		{"k one", "héllo", 1, 5},
		{"k zero", "abc", 0, 0},
		{"negative k", "abc", -2, 0},
		{"whole multibyte", "€€€", 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(tt.src, tt.k)
			var n int
			for {
				if _, ok := e.Next(); !ok {
					break
				}
				n++
			}
			if n != tt.count {
				t.Errorf("got %d windows, want %d", n, tt.count)
			}
			if e.Emitted() != tt.count {
				t.Errorf("Emitted() = %d, want %d", e.Emitted(), tt.count)
			}
			if !e.Exhausted() {
				t.Error("extractor should be exhausted")
			}
			if _, ok := e.Next(); ok {
				t.Error("Next() after exhaustion should return false")
			}
		})
	}
}

func TestExtractorProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		src := rapid.StringOfN(rapid.RuneFrom([]rune("ab€…›é日 ")), 0, 60, -1).Draw(t, "src")
		k := rapid.IntRange(1, 10).Draw(t, "k")
		checkWindows(t, src, k, collect(src, k))
	})
}
