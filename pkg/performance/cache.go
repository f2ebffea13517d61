// Package performance 提供语料批量匹配、基准测试与哈希冲突分析
package performance

import (
	"container/list"
	"errors"
	"fmt"
	"sync"

	"github.com/klinvill/substring-search/pkg/input"
)

// SequenceCache 已加载序列的LRU缓存，同时限制条目数与总字节数
type SequenceCache struct {
	maxEntries int
	maxBytes   int64
	entries    map[string]*list.Element
	lruList    *list.List
	mutex      sync.Mutex
	stats      CacheStats
	loading    map[string]*loadCall
}

// CacheStats 缓存统计
type CacheStats struct {
	Hits       int64 // 命中次数
	Misses     int64 // 未命中次数
	Evictions  int64 // 驱逐次数
	TotalSize  int64 // 总大小
	EntryCount int   // 条目数量
}

type cacheEntry struct {
	key string
	seq *input.Sequence
}

var errLoadPanicked = errors.New("sequence load panicked")

// loadCall 同一路径的并发加载只执行一次
type loadCall struct {
	done chan struct{}
	seq  *input.Sequence
	err  error
}

// NewSequenceCache 创建序列缓存，maxBytes 为 0 表示不限制字节数
func NewSequenceCache(maxEntries int, maxBytes int64) *SequenceCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &SequenceCache{
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
		entries:    make(map[string]*list.Element),
		lruList:    list.New(),
		loading:    make(map[string]*loadCall),
	}
}

// Get 获取缓存的序列
func (c *SequenceCache) Get(key string) (*input.Sequence, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if elem, found := c.entries[key]; found {
		c.lruList.MoveToFront(elem)
		c.stats.Hits++
		return elem.Value.(*cacheEntry).seq, true
	}

	c.stats.Misses++
	return nil, false
}

// Put 放入序列
func (c *SequenceCache) Put(key string, seq *input.Sequence) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.putLocked(key, seq)
}

func (c *SequenceCache) putLocked(key string, seq *input.Sequence) {
	if elem, found := c.entries[key]; found {
		c.lruList.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		c.stats.TotalSize += int64(len(seq.Text)) - int64(len(entry.seq.Text))
		entry.seq = seq
	} else {
		elem := c.lruList.PushFront(&cacheEntry{key: key, seq: seq})
		c.entries[key] = elem
		c.stats.TotalSize += int64(len(seq.Text))
		c.stats.EntryCount++
	}

	// 至少保留刚放入的条目
	for c.lruList.Len() > 1 &&
		(c.lruList.Len() > c.maxEntries || (c.maxBytes > 0 && c.stats.TotalSize > c.maxBytes)) {
		c.evictOldest()
	}
}

// evictOldest 驱逐最旧的条目
func (c *SequenceCache) evictOldest() {
	elem := c.lruList.Back()
	if elem == nil {
		return
	}
	c.lruList.Remove(elem)
	entry := elem.Value.(*cacheEntry)
	delete(c.entries, entry.key)

	c.stats.Evictions++
	c.stats.TotalSize -= int64(len(entry.seq.Text))
	c.stats.EntryCount--
}

// GetOrLoad 返回缓存的序列，不存在时调用 load 加载并缓存
func (c *SequenceCache) GetOrLoad(key string, load func() (*input.Sequence, error)) (*input.Sequence, error) {
	c.mutex.Lock()
	if elem, found := c.entries[key]; found {
		c.lruList.MoveToFront(elem)
		c.stats.Hits++
		c.mutex.Unlock()
		return elem.Value.(*cacheEntry).seq, nil
	}
	c.stats.Misses++

	if call, ok := c.loading[key]; ok {
		c.mutex.Unlock()
		<-call.done
		return call.seq, call.err
	}

	// load 发生 panic 时等待者收到 errLoadPanicked
	call := &loadCall{done: make(chan struct{}), err: errLoadPanicked}
	c.loading[key] = call
	c.mutex.Unlock()

	defer func() {
		c.mutex.Lock()
		delete(c.loading, key)
		if call.err == nil {
			c.putLocked(key, call.seq)
		}
		c.mutex.Unlock()
		close(call.done)
	}()

	call.seq, call.err = load()
	return call.seq, call.err
}

// Len 条目数量
func (c *SequenceCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.lruList.Len()
}

// GetStats 获取缓存统计
func (c *SequenceCache) GetStats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.stats
}

// HitRate 缓存命中率
func (cs CacheStats) HitRate() float64 {
	total := cs.Hits + cs.Misses
	if total == 0 {
		return 0
	}
	return float64(cs.Hits) / float64(total)
}

// String 返回缓存统计的字符串表示
func (cs CacheStats) String() string {
	return fmt.Sprintf(`缓存统计:
  命中次数: %d
  未命中次数: %d
  驱逐次数: %d
  命中率: %.2f%%
  条目数量: %d
  总大小: %d 字节`,
		cs.Hits,
		cs.Misses,
		cs.Evictions,
		cs.HitRate()*100,
		cs.EntryCount,
		cs.TotalSize)
}
