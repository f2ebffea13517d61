package hash

import (
	stdadler32 "hash/adler32"
	"math/rand/v2"
	"testing"

	"github.com/chmduquesne/rollinghash/adler32"
	"pgregory.net/rapid"
)

// rollAll 对 data 上每个长度为 n 的窗口计算滚动哈希
func rollAll(r Roller, data []byte, n int) []uint64 {
	if n > len(data) {
		return nil
	}
	hashes := make([]uint64, 0, len(data)-n+1)
	r.Init(data[:n])
	hashes = append(hashes, r.Hash())
	for i := n; i < len(data); i++ {
		r.Remove(n, data[i-n])
		r.Update(data[i])
		hashes = append(hashes, r.Hash())
	}
	return hashes
}

// freshAll 对每个窗口从头计算哈希
func freshAll(r Roller, data []byte, n int) []uint64 {
	var hashes []uint64
	for i := 0; i+n <= len(data); i++ {
		r.Init(data[i : i+n])
		hashes = append(hashes, r.Hash())
	}
	return hashes
}

func TestRollingLaw(t *testing.T) {
	data := []byte("This is a test string. - Normal Person ›It costs €10 for this item…")

	rollers := map[string]func() Roller{
		"adler32":    func() Roller { return NewAdler32() },
		"polynomial": func() Roller { return NewPolynomialWithSalt(131) },
	}

	for name, newRoller := range rollers {
		for _, n := range []int{1, 2, 5, 16, len(data)} {
			rolled := rollAll(newRoller(), data, n)
			fresh := freshAll(newRoller(), data, n)
			if len(rolled) != len(fresh) {
				t.Fatalf("%s n=%d: got %d rolled hashes, want %d", name, n, len(rolled), len(fresh))
			}
			for i := range rolled {
				if rolled[i] != fresh[i] {
					t.Errorf("%s n=%d window %d: rolled %#x, fresh %#x", name, n, i, rolled[i], fresh[i])
				}
			}
		}
	}
}

func TestRollingLawProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 1, 300).Draw(t, "data")
		n := rapid.IntRange(1, len(data)).Draw(t, "n")
		salt := rapid.Uint64Range(MinSalt, 1<<20).Draw(t, "salt")

		for _, pair := range [][2]Roller{
			{NewAdler32(), NewAdler32()},
			{NewPolynomialWithSalt(salt), NewPolynomialWithSalt(salt)},
		} {
			rolled := rollAll(pair[0], data, n)
			fresh := freshAll(pair[1], data, n)
			for i := range rolled {
				if rolled[i] != fresh[i] {
					t.Fatalf("window %d: rolled %#x, fresh %#x", i, rolled[i], fresh[i])
				}
			}
		}
	})
}

func TestAdler32MatchesChecksum(t *testing.T) {
	data := make([]byte, 4096)
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range data {
		data[i] = byte(rng.UintN(256))
	}

	const n = 64
	hashes := rollAll(NewAdler32(), data, n)
	for i, h := range hashes {
		want := uint64(stdadler32.Checksum(data[i : i+n]))
		if h != want {
			t.Fatalf("window %d: got %#x, want %#x", i, h, want)
		}
	}
}

func TestAdler32MatchesReferenceRoller(t *testing.T) {
	data := []byte("Here be another test string. Yaargh. - Pirate, with some more bytes to roll over")
	const n = 12

	ref := adler32.New()
	ref.Write(data[:n])

	ours := NewAdler32()
	ours.Init(data[:n])

	if got, want := ours.Hash(), uint64(ref.Sum32()); got != want {
		t.Fatalf("initial window: got %#x, want %#x", got, want)
	}

	for i := n; i < len(data); i++ {
		ref.Roll(data[i])
		ours.Remove(n, data[i-n])
		ours.Update(data[i])
		if got, want := ours.Hash(), uint64(ref.Sum32()); got != want {
			t.Fatalf("window ending at %d: got %#x, want %#x", i, got, want)
		}
	}
}

func TestAdler32LongWindow(t *testing.T) {
	// 窗口长度超过模数时 Remove 仍需正确
	data := make([]byte, adlerMod+50)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}
	n := adlerMod + 10

	r := NewAdler32()
	r.Init(data[:n])
	for i := n; i < len(data); i++ {
		r.Remove(n, data[i-n])
		r.Update(data[i])
		want := uint64(stdadler32.Checksum(data[i-n+1 : i+1]))
		if r.Hash() != want {
			t.Fatalf("window ending at %d: got %#x, want %#x", i, r.Hash(), want)
		}
	}
}

func TestPolynomialSalt(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	for i := 0; i < 1000; i++ {
		p := NewPolynomial(rng)
		if p.Salt() < MinSalt || p.Salt() >= maxRandomSalt {
			t.Fatalf("salt %d out of range [%d, %d)", p.Salt(), MinSalt, maxRandomSalt)
		}
	}

	if s := RandomSalt(nil); s < MinSalt {
		t.Errorf("RandomSalt(nil) = %d, want > 1", s)
	}
}

func TestPolynomialDeterministic(t *testing.T) {
	data := []byte("deterministic")
	a := NewPolynomialWithSalt(31)
	b := NewPolynomialWithSalt(31)
	a.Init(data)
	b.Init(data)
	if a.Hash() != b.Hash() {
		t.Errorf("same salt produced different hashes: %#x vs %#x", a.Hash(), b.Hash())
	}

	// "ab" = 'a'*31 + 'b'
	c := NewPolynomialWithSalt(31)
	c.Init([]byte("ab"))
	if want := uint64('a')*31 + uint64('b'); c.Hash() != want {
		t.Errorf("Hash() = %d, want %d", c.Hash(), want)
	}
}

func TestPolynomialRejectsDegenerateSalt(t *testing.T) {
	for _, salt := range []uint64{0, 1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NewPolynomialWithSalt(%d) did not panic", salt)
				}
			}()
			NewPolynomialWithSalt(salt)
		}()
	}
}
