// Package window 提供按字符（而非字节）滑动的 k 字符窗口提取
package window

import "unicode/utf8"

// Window 序列中连续 k 个字符对应的半开字节区间 [Start, End)
type Window struct {
	Text  string
	Start int
	End   int
}

// Len 窗口字节长度
func (w Window) Len() int {
	return w.End - w.Start
}

// Extractor 窗口提取器
//
// 维护最近 k+1 个字符起始偏移的环形队列，每步只解码一个字符。
// 字符流耗尽时以 len(src) 作为最后一个窗口的结束偏移。
// 提取器只能遍历一次。
type Extractor struct {
	src     string
	ring    []int
	head    int
	size    int
	pos     int // 下一个待解码字符的字节偏移
	done    bool
	emitted int
}

// NewExtractor 创建窗口提取器
//
// k 必须为正，且调用方应保证 src 至少含 k 个字符；否则提取器不产生任何窗口。
func NewExtractor(src string, k int) *Extractor {
	e := &Extractor{src: src}
	if k < 1 {
		e.done = true
		return e
	}

	e.ring = make([]int, k+1)
	for i := 0; i < k; i++ {
		if e.pos >= len(src) {
			e.done = true
			return e
		}
		e.push(e.pos)
		e.advance()
	}
	return e
}

// Next 返回下一个窗口，提取完毕时返回 false
func (e *Extractor) Next() (Window, bool) {
	if e.done {
		return Window{}, false
	}

	end := len(e.src)
	if e.pos < len(e.src) {
		end = e.pos
		e.push(e.pos)
		e.advance()
	} else {
		e.done = true
	}

	start := e.pop()
	e.emitted++
	return Window{Text: e.src[start:end], Start: start, End: end}, true
}

// Emitted 已产生的窗口数
func (e *Extractor) Emitted() int {
	return e.emitted
}

// Exhausted 是否已无更多窗口
func (e *Extractor) Exhausted() bool {
	return e.done
}

func (e *Extractor) advance() {
	_, size := utf8.DecodeRuneInString(e.src[e.pos:])
	e.pos += size
}

func (e *Extractor) push(off int) {
	e.ring[(e.head+e.size)%len(e.ring)] = off
	e.size++
}

func (e *Extractor) pop() int {
	off := e.ring[e.head]
	e.head = (e.head + 1) % len(e.ring)
	e.size--
	return off
}

// Count 返回长度为 runeCount 的序列上 k 字符窗口的数量
func Count(runeCount, k int) int {
	if k < 1 || runeCount < k {
		return 0
	}
	return runeCount - k + 1
}
