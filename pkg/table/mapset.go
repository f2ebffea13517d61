package table

// MapSet 基于 Go map 的集合，使用运行时自带的哈希，忽略传入的哈希值
type MapSet struct {
	m map[string]struct{}
}

// NewMapSet 创建预分配容量的集合
func NewMapSet(capacity int) *MapSet {
	if capacity < 0 {
		capacity = 0
	}
	return &MapSet{m: make(map[string]struct{}, capacity)}
}

// Insert 插入文本
func (s *MapSet) Insert(_ uint64, text string) bool {
	if _, ok := s.m[text]; ok {
		return false
	}
	s.m[text] = struct{}{}
	return true
}

// Contains 检查文本是否存在
func (s *MapSet) Contains(_ uint64, text string) bool {
	_, ok := s.m[text]
	return ok
}

// Len 条目数
func (s *MapSet) Len() int {
	return len(s.m)
}
