package match

import (
	"fmt"
	"strings"

	"github.com/klinvill/substring-search/pkg/hash"
)

// Strategy 匹配策略
type Strategy int

const (
	// StrategyOrdered 总是索引序列1，按顺序扫描序列2
	StrategyOrdered Strategy = iota
	// StrategyShorterFirst 索引字符数较少的序列（相等时索引序列1），扫描另一个
	StrategyShorterFirst
	// StrategyAlternating 双表交替索引，任一侧先发现即返回
	StrategyAlternating
)

var strategyNames = [...]string{
	StrategyOrdered:      "ordered",
	StrategyShorterFirst: "shorter-first",
	StrategyAlternating:  "alternating",
}

// String 返回策略名称
func (s Strategy) String() string {
	if s >= 0 && int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Unknown(%d)", int(s))
}

// Valid 检查策略是否已定义
func (s Strategy) Valid() bool {
	return s >= 0 && int(s) < len(strategyNames)
}

// Strategies 返回全部策略
func Strategies() []Strategy {
	return []Strategy{StrategyOrdered, StrategyShorterFirst, StrategyAlternating}
}

// ParseStrategy 解析策略名称
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range strategyNames {
		if n == name {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStrategy, name)
}

// Config 匹配引擎配置
type Config struct {
	Strategy Strategy  // 匹配策略
	Hash     hash.Kind // 窗口哈希算法
	Salt     uint64    // 多项式哈希盐值，0 表示每次匹配随机采样；其他哈希必须为 0
	SipKey0  uint64    // SipHash 密钥
	SipKey1  uint64
}

// DefaultConfig 默认配置：短序列优先索引 + Fx 哈希
func DefaultConfig() *Config {
	return &Config{
		Strategy: StrategyShorterFirst,
		Hash:     hash.KindFx,
	}
}

// Validate 验证配置参数
func (c *Config) Validate() error {
	if !c.Strategy.Valid() {
		return ErrInvalidStrategy
	}
	if !c.Hash.Valid() {
		return ErrInvalidHashKind
	}
	if c.Salt == 1 {
		return ErrInvalidSalt
	}
	if c.Salt != 0 && c.Hash != hash.KindPolynomial {
		return fmt.Errorf("%w: hash %s", ErrUnusedSalt, c.Hash)
	}
	return nil
}

// String 返回 "策略/哈希" 形式的变体名称
func (c *Config) String() string {
	return c.Strategy.String() + "/" + c.Hash.String()
}

// Match 匹配结果
//
// Text 借用自 Seq 指定的输入序列（1 或 2），[Start, End) 为其在该序列中的字节区间。
type Match struct {
	Text  string
	Seq   int
	Start int
	End   int
}
