package performance

import (
	"fmt"
	"strings"

	"github.com/klinvill/substring-search/pkg/hash"
	"github.com/klinvill/substring-search/pkg/window"
)

// CollisionStats 单个哈希算法在一个序列上的冲突统计
type CollisionStats struct {
	Kind           hash.Kind
	Salt           uint64 // 多项式哈希实际使用的盐值
	Windows        int    // 窗口总数
	DistinctTexts  int    // 不同窗口文本数
	DistinctHashes int    // 不同哈希值数
}

// Collisions 哈希值相同但文本不同而损失的窗口数
func (cs CollisionStats) Collisions() int {
	return cs.DistinctTexts - cs.DistinctHashes
}

// Rate 冲突率
func (cs CollisionStats) Rate() float64 {
	if cs.DistinctTexts == 0 {
		return 0
	}
	return float64(cs.Collisions()) / float64(cs.DistinctTexts)
}

// AnalyzeCollisions 统计 text 的所有 k 字符窗口在各哈希算法下的不同哈希值数量
//
// builtin 的哈希值不可观测，会被跳过；kinds 为空时分析全部其他算法。
// params.Salt 为 0 时多项式哈希随机采样盐值。
func AnalyzeCollisions(text string, k int, kinds []hash.Kind, params hash.Params) ([]CollisionStats, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if len(kinds) == 0 {
		kinds = hash.Kinds()
	}

	texts := make(map[string]struct{})
	ex := window.NewExtractor(text, k)
	for w, ok := ex.Next(); ok; w, ok = ex.Next() {
		texts[w.Text] = struct{}{}
	}

	var stats []CollisionStats
	for _, kind := range kinds {
		if kind == hash.KindBuiltin {
			continue
		}

		p := params
		p.Kind = kind
		if kind == hash.KindPolynomial && p.Salt == 0 {
			p.Salt = hash.RandomSalt(nil)
		}

		c, err := window.NewCursor(text, k, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}

		hashes := make(map[uint64]struct{}, len(texts))
		for _, h, ok := c.Next(); ok; _, h, ok = c.Next() {
			hashes[h] = struct{}{}
		}

		s := CollisionStats{
			Kind:           kind,
			Windows:        c.Emitted(),
			DistinctTexts:  len(texts),
			DistinctHashes: len(hashes),
		}
		if kind == hash.KindPolynomial {
			s.Salt = p.Salt
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// FormatCollisions 生成冲突统计表
func FormatCollisions(stats []CollisionStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %10s %12s %12s %10s %9s\n", "哈希", "窗口数", "不同文本", "不同哈希", "冲突", "冲突率")
	for _, s := range stats {
		name := s.Kind.String()
		if s.Salt != 0 {
			name = fmt.Sprintf("%s(%d)", name, s.Salt)
		}
		fmt.Fprintf(&b, "%-12s %10d %12d %12d %10d %8.4f%%\n",
			name, s.Windows, s.DistinctTexts, s.DistinctHashes, s.Collisions(), s.Rate()*100)
	}
	return b.String()
}
