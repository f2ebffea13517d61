package performance

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/klinvill/substring-search/pkg/hash"
	"github.com/klinvill/substring-search/pkg/input"
	"github.com/klinvill/substring-search/pkg/match"
)

// Variant 引擎变体：策略 + 哈希
type Variant struct {
	Strategy match.Strategy
	Hash     hash.Kind
}

// String 返回 "策略/哈希" 形式的名称
func (v Variant) String() string {
	return v.Strategy.String() + "/" + v.Hash.String()
}

// AllVariants 返回全部策略与哈希的组合
func AllVariants() []Variant {
	var variants []Variant
	for _, s := range match.Strategies() {
		for _, k := range hash.Kinds() {
			variants = append(variants, Variant{Strategy: s, Hash: k})
		}
	}
	return variants
}

// BenchmarkConfig 基准测试配置
type BenchmarkConfig struct {
	K          int                // 子串长度
	Iterations int                // 每个组合的迭代次数
	Variants   []Variant          // 参与测试的引擎变体，为空表示全部
	Salt       uint64             // 多项式哈希盐值，0 表示每次随机
	Walk       *input.WalkConfig  // 语料遍历配置
	Load       *input.LoadOptions // 序列加载选项
}

// DefaultBenchmarkConfig 默认基准测试配置
func DefaultBenchmarkConfig() *BenchmarkConfig {
	return &BenchmarkConfig{
		K:          20,
		Iterations: 10,
		Walk:       input.DefaultWalkConfig(),
		Load:       input.DefaultLoadOptions(),
	}
}

// BenchmarkSuite 性能基准测试套件
type BenchmarkSuite struct {
	corpusDir string
	config    BenchmarkConfig
	files     []input.CorpusFile
	results   []BenchmarkResult
	cache     *SequenceCache
	logger    Logger
}

// BenchmarkResult 基准测试结果
type BenchmarkResult struct {
	TestName     string        // 测试名称
	Category     string        // 语料类别
	Variant      string        // 引擎变体
	Bytes        int64         // 两个序列的总字节数
	Iterations   int           // 迭代次数
	Duration     time.Duration // 总执行时间
	Average      time.Duration // 平均每次执行时间
	Throughput   float64       // 吞吐量 (MB/s)
	MemoryUsage  int64         // 内存分配量
	Found        bool          // 是否找到公共子串
	Success      bool          // 是否成功
	ErrorMessage string        // 错误信息
}

// NewBenchmarkSuite 创建基准测试套件
func NewBenchmarkSuite(corpusDir string, config *BenchmarkConfig, logger Logger) *BenchmarkSuite {
	if config == nil {
		config = DefaultBenchmarkConfig()
	}
	if logger == nil {
		logger = nopLogger{}
	}
	cfg := *config
	if len(cfg.Variants) == 0 {
		cfg.Variants = AllVariants()
	}
	if cfg.Iterations < 1 {
		cfg.Iterations = 1
	}

	return &BenchmarkSuite{
		corpusDir: corpusDir,
		config:    cfg,
		results:   make([]BenchmarkResult, 0),
		cache:     NewSequenceCache(256, 0),
		logger:    logger,
	}
}

// PrepareCorpus 扫描语料目录
func (bs *BenchmarkSuite) PrepareCorpus() error {
	files, err := input.WalkCorpus(bs.corpusDir, bs.config.Walk)
	if err != nil {
		return fmt.Errorf("扫描语料目录失败: %w", err)
	}
	bs.files = files
	bs.logger.Info("语料目录 %s: %d 个文件", bs.corpusDir, len(files))
	return nil
}

// Run 对每个类别内的每个文件对运行全部引擎变体
func (bs *BenchmarkSuite) Run(ctx context.Context) error {
	if bs.files == nil {
		if err := bs.PrepareCorpus(); err != nil {
			return err
		}
	}

	groups := input.Categories(bs.files)
	for _, category := range input.CategoryNames(groups) {
		pairs := input.Pairs(groups[category])
		bs.logger.Info("类别 %q: %d 对, %d 个变体", category, len(pairs), len(bs.config.Variants))

		for _, p := range pairs {
			for _, v := range bs.config.Variants {
				if err := ctx.Err(); err != nil {
					return err
				}
				bs.results = append(bs.results, bs.benchmarkPair(category, p, v))
			}
		}
	}
	return nil
}

// benchmarkPair 对一个文件对运行一个引擎变体
func (bs *BenchmarkSuite) benchmarkPair(category string, p input.Pair, v Variant) BenchmarkResult {
	result := BenchmarkResult{
		TestName:   fmt.Sprintf("%s <-> %s", p.First.RelativePath, p.Second.RelativePath),
		Category:   category,
		Variant:    v.String(),
		Iterations: bs.config.Iterations,
	}

	mc := &match.Config{Strategy: v.Strategy, Hash: v.Hash}
	if v.Hash == hash.KindPolynomial {
		mc.Salt = bs.config.Salt
	}
	engine, err := match.NewEngine(mc)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}

	s1, err := bs.load(p.First)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}
	s2, err := bs.load(p.Second)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}
	result.Bytes = int64(len(s1.Text) + len(s2.Text))

	var memBefore, memAfter runtime.MemStats
	runtime.ReadMemStats(&memBefore)
	start := time.Now()

	for range bs.config.Iterations {
		_, result.Found = engine.Find(s1.Text, s2.Text, bs.config.K)
	}

	result.Duration = time.Since(start)
	runtime.ReadMemStats(&memAfter)

	result.Average = result.Duration / time.Duration(bs.config.Iterations)
	result.MemoryUsage = int64(memAfter.TotalAlloc - memBefore.TotalAlloc)
	if secs := result.Duration.Seconds(); secs > 0 {
		result.Throughput = float64(result.Bytes) * float64(bs.config.Iterations) / (1024 * 1024) / secs
	}
	result.Success = true

	bs.logger.Debug("%s [%s]: %v/次", result.TestName, result.Variant, result.Average)
	return result
}

func (bs *BenchmarkSuite) load(f input.CorpusFile) (*input.Sequence, error) {
	return bs.cache.GetOrLoad(f.Path, func() (*input.Sequence, error) {
		return input.LoadFile(f.Path, bs.config.Load)
	})
}

// GetResults 获取测试结果
func (bs *BenchmarkSuite) GetResults() []BenchmarkResult {
	return bs.results
}

// GenerateReport 生成性能报告
func (bs *BenchmarkSuite) GenerateReport() string {
	var report strings.Builder
	report.WriteString("公共子串匹配性能基准测试报告\n")
	report.WriteString("================================\n\n")
	report.WriteString(fmt.Sprintf("k = %d, 每组迭代 %d 次\n\n", bs.config.K, bs.config.Iterations))

	// 按类别分组
	byCategory := make(map[string][]BenchmarkResult)
	var order []string
	for _, result := range bs.results {
		if _, ok := byCategory[result.Category]; !ok {
			order = append(order, result.Category)
		}
		byCategory[result.Category] = append(byCategory[result.Category], result)
	}

	for _, category := range order {
		name := category
		if name == "" {
			name = "(根目录)"
		}
		report.WriteString(fmt.Sprintf("类别: %s\n", name))
		report.WriteString("----------------\n")
		for _, result := range byCategory[category] {
			report.WriteString(fmt.Sprintf("测试: %s [%s]\n", result.TestName, result.Variant))
			report.WriteString(fmt.Sprintf("  序列大小: %.2f MB\n", float64(result.Bytes)/(1024*1024)))
			report.WriteString(fmt.Sprintf("  平均时间: %v\n", result.Average))
			report.WriteString(fmt.Sprintf("  吞吐量: %.2f MB/s\n", result.Throughput))
			report.WriteString(fmt.Sprintf("  内存分配: %.2f MB\n", float64(result.MemoryUsage)/(1024*1024)))
			report.WriteString(fmt.Sprintf("  找到公共子串: %v\n", result.Found))
			if !result.Success {
				report.WriteString(fmt.Sprintf("  错误: %s\n", result.ErrorMessage))
			}
			report.WriteString(fmt.Sprintf("  状态: %s\n\n", getStatusString(result.Success)))
		}
	}

	report.WriteString(bs.cache.GetStats().String())
	report.WriteString("\n")
	return report.String()
}

// getStatusString 获取状态字符串
func getStatusString(success bool) string {
	if success {
		return "成功 ✅"
	}
	return "失败 ❌"
}
