// Package match 实现两个序列之间长度为 k 的公共子串查找
package match

import (
	"unicode/utf8"

	"github.com/klinvill/substring-search/pkg/hash"
	"github.com/klinvill/substring-search/pkg/table"
	"github.com/klinvill/substring-search/pkg/window"
)

// Engine 公共子串匹配引擎
//
// 引擎本身不可变，可被多个 goroutine 并发使用；每次 Find 都使用独立的哈希状态和表。
type Engine struct {
	config Config
}

// NewEngine 创建新的匹配引擎
func NewEngine(config *Config) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		config: *config,
	}, nil
}

// Config 返回引擎配置的副本
func (e *Engine) Config() Config {
	return e.config
}

// sequence 参与匹配的输入序列
type sequence struct {
	text  string
	id    int
	runes int
}

func (s sequence) windows(k int) int {
	return window.Count(s.runes, k)
}

// Find 查找 s1 与 s2 之间长度为 k 个字符的公共子串
//
// k 为 0 时总是匹配空串；k 为负或任一序列不足 k 个字符时不匹配。
func (e *Engine) Find(s1, s2 string, k int) (Match, bool) {
	if k < 0 {
		return Match{}, false
	}
	if k == 0 {
		return Match{Seq: 1}, true
	}

	a := sequence{text: s1, id: 1, runes: utf8.RuneCountInString(s1)}
	b := sequence{text: s2, id: 2, runes: utf8.RuneCountInString(s2)}
	if a.runes < k || b.runes < k {
		return Match{}, false
	}

	params := e.params()

	switch e.config.Strategy {
	case StrategyShorterFirst:
		if b.runes < a.runes {
			return e.indexThenScan(b, a, k, params)
		}
		return e.indexThenScan(a, b, k, params)
	case StrategyAlternating:
		return e.alternate(a, b, k, params)
	default:
		return e.indexThenScan(a, b, k, params)
	}
}

// params 解析哈希参数，两个序列必须共用同一组参数
func (e *Engine) params() hash.Params {
	p := hash.Params{
		Kind:    e.config.Hash,
		Salt:    e.config.Salt,
		SipKey0: e.config.SipKey0,
		SipKey1: e.config.SipKey1,
	}
	if p.Kind == hash.KindPolynomial && p.Salt == 0 {
		p.Salt = hash.RandomSalt(nil)
	}
	return p
}

func (e *Engine) newSet(capacity int) table.Set {
	if e.config.Hash == hash.KindBuiltin {
		return table.NewMapSet(capacity)
	}
	return table.New(capacity)
}

func newCursor(s sequence, k int, params hash.Params) *window.Cursor {
	c, err := window.NewCursor(s.text, k, params)
	if err != nil {
		// 配置已在 NewEngine 中校验
		panic(err)
	}
	return c
}

// indexThenScan 索引 indexed 的全部窗口，按顺序扫描 scanned，返回第一个命中的窗口
func (e *Engine) indexThenScan(indexed, scanned sequence, k int, params hash.Params) (Match, bool) {
	want := indexed.windows(k)
	set := e.newSet(want)

	ic := newCursor(indexed, k, params)
	for {
		w, h, ok := ic.Next()
		if !ok {
			break
		}
		set.Insert(h, w.Text)
	}
	drained(ic, indexed.id, want)

	sc := newCursor(scanned, k, params)
	for {
		w, h, ok := sc.Next()
		if !ok {
			break
		}
		if set.Contains(h, w.Text) {
			return found(w, scanned.id), true
		}
	}
	drained(sc, scanned.id, scanned.windows(k))

	return Match{}, false
}

// alternate 双表交替索引
//
// 第 i 步先把两侧的第 i 个窗口分别插入各自的表，再交叉检查，
// 因此在同一步出现的公共子串也能被发现。较短序列耗尽后，
// 较长序列的剩余窗口只需与较短序列已完整的表比较。
func (e *Engine) alternate(a, b sequence, k int, params hash.Params) (Match, bool) {
	na, nb := a.windows(k), b.windows(k)
	ta, tb := e.newSet(na), e.newSet(nb)
	ca, cb := newCursor(a, k, params), newCursor(b, k, params)

	steps := min(na, nb)
	for i := 0; i < steps; i++ {
		wa, ha, ok := ca.Next()
		if !ok {
			invariant(a.id, na, ca.Emitted(), "window stream ended early")
		}
		wb, hb, ok := cb.Next()
		if !ok {
			invariant(b.id, nb, cb.Emitted(), "window stream ended early")
		}

		ta.Insert(ha, wa.Text)
		tb.Insert(hb, wb.Text)

		if tb.Contains(ha, wa.Text) {
			return found(wa, a.id), true
		}
		if ta.Contains(hb, wb.Text) {
			return found(wb, b.id), true
		}
	}

	rest, restSeq, other := ca, a, tb
	if nb > na {
		rest, restSeq, other = cb, b, ta
	}
	for {
		w, h, ok := rest.Next()
		if !ok {
			break
		}
		if other.Contains(h, w.Text) {
			return found(w, restSeq.id), true
		}
	}

	drained(ca, a.id, na)
	drained(cb, b.id, nb)
	return Match{}, false
}

// drained 断言游标恰好产生了 want 个窗口且已耗尽
func drained(c *window.Cursor, seq, want int) {
	if c.Emitted() != want {
		invariant(seq, want, c.Emitted(), "window count mismatch")
	}
	if _, _, ok := c.Next(); ok {
		invariant(seq, want, c.Emitted(), "window stream not exhausted")
	}
}

func found(w window.Window, seq int) Match {
	return Match{Text: w.Text, Seq: seq, Start: w.Start, End: w.End}
}
