package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/klinvill/substring-search/pkg/compression"
	"github.com/klinvill/substring-search/pkg/hash"
	"github.com/klinvill/substring-search/pkg/input"
	"github.com/klinvill/substring-search/pkg/match"
	"github.com/klinvill/substring-search/pkg/performance"
	"github.com/klinvill/substring-search/pkg/text"
)

// Engine 命令使用的匹配引擎接口
type Engine interface {
	Match(cfg *Config, req MatchRequest) (*MatchResult, error)
	Normalize(cfg *Config, src io.Reader, dst io.Writer, outType compression.CompressionType) (*NormalizeResult, error)
	Collisions(cfg *Config, seq *input.Sequence, k int, kinds []hash.Kind) ([]performance.CollisionStats, error)
	Batch(ctx context.Context, cfg *Config, dir string, k int, walk *input.WalkConfig, logger performance.Logger, progress ProgressReporter) (*performance.BatchReport, error)
	Benchmark(ctx context.Context, dir string, bench *performance.BenchmarkConfig, logger performance.Logger) (*performance.BenchmarkSuite, error)
	WriteReport(path string, report *performance.BatchReport, cType compression.CompressionType) (string, error)
}

// MatchRequest 单次匹配请求
type MatchRequest struct {
	First  *input.Sequence
	Second *input.Sequence
	K      int
}

// MatchResult 单次匹配结果
type MatchResult struct {
	First    string        `json:"first"`
	Second   string        `json:"second"`
	K        int           `json:"k"`
	Strategy string        `json:"strategy"`
	Hash     string        `json:"hash"`
	Found    bool          `json:"found"`
	Text     string        `json:"text,omitempty"`
	Seq      int           `json:"seq,omitempty"`
	Start    int           `json:"start,omitempty"`
	End      int           `json:"end,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// NormalizeResult 规范化统计
type NormalizeResult struct {
	InputBytes  int64                       `json:"input_bytes"`
	OutputBytes int64                       `json:"output_bytes"`
	Compression compression.CompressionType `json:"-"`
}

// EngineAdapter CLI引擎适配器
type EngineAdapter struct {
	manager *compression.CompressionManager
}

// NewEngineAdapter 创建引擎适配器
func NewEngineAdapter() *EngineAdapter {
	return &EngineAdapter{
		manager: compression.NewCompressionManager(),
	}
}

// newEngine 按配置创建匹配引擎
func (ea *EngineAdapter) newEngine(cfg *Config) (*match.Engine, error) {
	mc, err := cfg.MatchConfig()
	if err != nil {
		return nil, err
	}
	engine, err := match.NewEngine(mc)
	if err != nil {
		return nil, fmt.Errorf("创建匹配引擎失败: %w", err)
	}
	return engine, nil
}

// Match 查找两个序列的公共子串
func (ea *EngineAdapter) Match(cfg *Config, req MatchRequest) (*MatchResult, error) {
	engine, err := ea.newEngine(cfg)
	if err != nil {
		return nil, err
	}

	result := &MatchResult{
		First:    req.First.Path,
		Second:   req.Second.Path,
		K:        req.K,
		Strategy: cfg.Strategy,
		Hash:     cfg.Hash,
	}

	start := time.Now()
	m, ok := engine.Find(req.First.Text, req.Second.Text, req.K)
	result.Duration = time.Since(start)

	if ok {
		result.Found = true
		result.Text = m.Text
		result.Seq = m.Seq
		result.Start = m.Start
		result.End = m.End
	}
	return result, nil
}

// Normalize 读取 src（自动解压），去除换行并压缩空格后写入 dst
func (ea *EngineAdapter) Normalize(cfg *Config, src io.Reader, dst io.Writer, outType compression.CompressionType) (*NormalizeResult, error) {
	seq, err := input.LoadReader(src, &input.LoadOptions{Manager: ea.manager})
	if err != nil {
		return nil, err
	}

	w, err := ea.manager.NewWriter(dst, outType, compression.LevelDefault)
	if err != nil {
		return nil, err
	}
	out := text.Normalize(seq.Text)
	n, err := io.WriteString(w, out)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return &NormalizeResult{
		InputBytes:  seq.Size,
		OutputBytes: int64(n),
		Compression: seq.Compression,
	}, nil
}

// Collisions 统计序列在各哈希算法下的冲突
func (ea *EngineAdapter) Collisions(cfg *Config, seq *input.Sequence, k int, kinds []hash.Kind) ([]performance.CollisionStats, error) {
	return performance.AnalyzeCollisions(seq.Text, k, kinds, hash.Params{Salt: cfg.Salt})
}

// Batch 对目录下所有文件两两匹配
func (ea *EngineAdapter) Batch(ctx context.Context, cfg *Config, dir string, k int, walk *input.WalkConfig, logger performance.Logger, progress ProgressReporter) (*performance.BatchReport, error) {
	engine, err := ea.newEngine(cfg)
	if err != nil {
		return nil, err
	}

	files, err := input.WalkCorpus(dir, walk)
	if err != nil {
		return nil, err
	}
	if len(files) < 2 {
		return nil, fmt.Errorf("%s: %w", dir, input.ErrEmptyCorpus)
	}

	bc := cfg.BatchConfig()
	bc.Load.Manager = ea.manager
	bm := performance.NewBatchMatcher(engine, bc, logger)

	pairs := len(files) * (len(files) - 1) / 2
	progress.SetTotal(int64(pairs))
	bm.SetProgress(func(done, total int) {
		progress.SetCurrent(int64(done))
	})

	return bm.Run(ctx, files, k)
}

// Benchmark 在语料目录上运行基准测试套件
func (ea *EngineAdapter) Benchmark(ctx context.Context, dir string, bench *performance.BenchmarkConfig, logger performance.Logger) (*performance.BenchmarkSuite, error) {
	if bench.Load != nil && bench.Load.Manager == nil {
		bench.Load.Manager = ea.manager
	}
	suite := performance.NewBenchmarkSuite(dir, bench, logger)
	if err := suite.PrepareCorpus(); err != nil {
		return nil, err
	}
	if err := suite.Run(ctx); err != nil {
		return nil, err
	}
	return suite, nil
}

// WriteReport 写出批量匹配报告，返回实际写入的路径
//
// 路径没有压缩扩展名且 cType 不是 none 时追加对应扩展名。
func (ea *EngineAdapter) WriteReport(path string, report *performance.BatchReport, cType compression.CompressionType) (string, error) {
	if cType != compression.CompressionNone && compression.TypeFromPath(path) == compression.CompressionNone {
		path += cType.Extension()
	}
	return path, performance.WriteReport(path, report, ea.manager)
}
