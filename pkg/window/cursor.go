package window

import (
	"github.com/klinvill/substring-search/pkg/hash"
)

// Cursor 带哈希的窗口游标，每次前进返回窗口及其哈希值
//
// 滚动哈希在窗口滑动时先按字节移除离开的字符（传入移除时的窗口字节长度），
// 再吸收进入的字符；非滚动哈希对每个窗口重新计算。
// 内置哈希（由 map 自行哈希）下哈希值恒为 0。
type Cursor struct {
	ext    *Extractor
	src    string
	roller hash.Roller
	hasher hash.Hasher
	prev   Window
	rolled bool
}

// NewCursor 创建游标
func NewCursor(src string, k int, params hash.Params) (*Cursor, error) {
	c := &Cursor{
		ext: NewExtractor(src, k),
		src: src,
	}

	var err error
	if params.Kind.IsRolling() {
		c.roller, err = params.NewRoller()
	} else {
		c.hasher, err = params.NewHasher()
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Next 返回下一个窗口及其哈希
func (c *Cursor) Next() (Window, uint64, bool) {
	w, ok := c.ext.Next()
	if !ok {
		return Window{}, 0, false
	}

	switch {
	case c.roller != nil:
		c.roll(w)
		return w, c.roller.Hash(), true
	case c.hasher != nil:
		return w, c.hasher.Sum64String(w.Text), true
	default:
		return w, 0, true
	}
}

func (c *Cursor) roll(w Window) {
	if !c.rolled {
		c.roller.Init([]byte(w.Text))
		c.prev, c.rolled = w, true
		return
	}

	n := c.prev.Len()
	for i := c.prev.Start; i < w.Start; i++ {
		c.roller.Remove(n, c.src[i])
		n--
	}
	for i := c.prev.End; i < w.End; i++ {
		c.roller.Update(c.src[i])
	}
	c.prev = w
}

// Emitted 已产生的窗口数
func (c *Cursor) Emitted() int {
	return c.ext.Emitted()
}

// Exhausted 是否已无更多窗口
func (c *Cursor) Exhausted() bool {
	return c.ext.Exhausted()
}
