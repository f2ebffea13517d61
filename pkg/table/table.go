// Package table 实现以外部哈希为键、以内容校验冲突的窗口集合
package table

import "math/bits"

const (
	minSlots = 8
	// 负载上限 7/8
	loadNum = 7
	loadDen = 8
	// 64位黄金比例乘数，用于把哈希值分散到槽位
	fibMul = 0x9e3779b97f4a7c15
)

// Set 窗口集合接口
type Set interface {
	// Insert 插入窗口文本，文本已存在时返回 false
	Insert(h uint64, text string) bool
	// Contains 检查是否存在哈希相同且文本相同的条目
	Contains(h uint64, text string) bool
	Len() int
}

type slot struct {
	hash uint64
	text string
	used bool
}

// Table 开放寻址哈希表（线性探测，槽位数为2的幂）
//
// 哈希由调用方提供，表本身从不根据文本重新计算哈希。
// 相同哈希、不同文本的条目共存；查找先比较完整哈希，再比较文本。
type Table struct {
	slots []slot
	shift uint
	count int
	limit int // 触发扩容的条目数
}

// New 创建可容纳 capacity 个条目而无需扩容的哈希表
func New(capacity int) *Table {
	t := &Table{}
	t.init(slotsFor(capacity))
	return t
}

func slotsFor(capacity int) int {
	if capacity < 0 {
		capacity = 0
	}
	n := capacity*loadDen/loadNum + 1
	if n < minSlots {
		n = minSlots
	}
	return 1 << bits.Len(uint(n-1))
}

func (t *Table) init(n int) {
	t.slots = make([]slot, n)
	t.shift = uint(64 - bits.TrailingZeros(uint(n)))
	t.limit = n * loadNum / loadDen
	t.count = 0
}

func (t *Table) index(h uint64) int {
	return int((h * fibMul) >> t.shift)
}

// Find 按外部哈希探测，返回第一个满足 eq 的条目文本
func (t *Table) Find(h uint64, eq func(string) bool) (string, bool) {
	mask := len(t.slots) - 1
	for i := t.index(h); ; i = (i + 1) & mask {
		s := &t.slots[i]
		if !s.used {
			return "", false
		}
		if s.hash == h && eq(s.text) {
			return s.text, true
		}
	}
}

// Contains 检查是否存在哈希与文本都相同的条目
func (t *Table) Contains(h uint64, text string) bool {
	_, ok := t.Find(h, func(s string) bool { return s == text })
	return ok
}

// Insert 插入条目，相同文本已存在时不重复插入
func (t *Table) Insert(h uint64, text string) bool {
	mask := len(t.slots) - 1
	i := t.index(h)
	for ; t.slots[i].used; i = (i + 1) & mask {
		if t.slots[i].hash == h && t.slots[i].text == text {
			return false
		}
	}

	if t.count >= t.limit {
		t.grow()
		t.place(h, text)
	} else {
		t.slots[i] = slot{hash: h, text: text, used: true}
	}
	t.count++
	return true
}

// grow 槽位翻倍，按已存储的哈希重新放置
func (t *Table) grow() {
	old := t.slots
	t.init(len(old) * 2)
	for _, s := range old {
		if s.used {
			t.place(s.hash, s.text)
			t.count++
		}
	}
}

func (t *Table) place(h uint64, text string) {
	mask := len(t.slots) - 1
	i := t.index(h)
	for t.slots[i].used {
		i = (i + 1) & mask
	}
	t.slots[i] = slot{hash: h, text: text, used: true}
}

// Len 条目数
func (t *Table) Len() int {
	return t.count
}

// Cap 槽位数
func (t *Table) Cap() int {
	return len(t.slots)
}
