package performance

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/klinvill/substring-search/pkg/compression"
	"github.com/klinvill/substring-search/pkg/input"
	"github.com/klinvill/substring-search/pkg/match"
)

// Logger 批量匹配与基准测试使用的日志接口
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}

// BatchConfig 批量匹配配置
type BatchConfig struct {
	Workers      int                // 工作协程数，0 表示 CPU 核心数
	CacheEntries int                // 序列缓存条目上限
	CacheBytes   int64              // 序列缓存字节上限，0 表示不限制
	Load         *input.LoadOptions // 序列加载选项
}

// DefaultBatchConfig 默认批量匹配配置
func DefaultBatchConfig() *BatchConfig {
	return &BatchConfig{
		CacheEntries: 64,
		CacheBytes:   512 * 1024 * 1024,
		Load:         input.DefaultLoadOptions(),
	}
}

// PairResult 单个文件对的匹配结果
type PairResult struct {
	First    string        `json:"first"`
	Second   string        `json:"second"`
	Found    bool          `json:"found"`
	Text     string        `json:"text,omitempty"`
	Seq      int           `json:"seq,omitempty"`
	Start    int           `json:"start,omitempty"`
	End      int           `json:"end,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	Err      string        `json:"error,omitempty"`
}

// BatchReport 批量匹配报告
type BatchReport struct {
	GeneratedAt time.Time     `json:"generated_at"`
	K           int           `json:"k"`
	Strategy    string        `json:"strategy"`
	Hash        string        `json:"hash"`
	Files       int           `json:"files"`
	Pairs       int           `json:"pairs"`
	Matched     int           `json:"matched"`
	Failed      int           `json:"failed"`
	Duration    time.Duration `json:"duration_ns"`
	Cache       CacheStats    `json:"cache"`
	Results     []PairResult  `json:"results"`
}

// BatchMatcher 在工作协程池上对语料文件两两匹配
type BatchMatcher struct {
	engine   *match.Engine
	config   BatchConfig
	cache    *SequenceCache
	logger   Logger
	progress func(done, total int)
}

// NewBatchMatcher 创建批量匹配器
func NewBatchMatcher(engine *match.Engine, config *BatchConfig, logger Logger) *BatchMatcher {
	if config == nil {
		config = DefaultBatchConfig()
	}
	if logger == nil {
		logger = nopLogger{}
	}
	cfg := *config
	if cfg.Load == nil {
		cfg.Load = input.DefaultLoadOptions()
	}

	return &BatchMatcher{
		engine: engine,
		config: cfg,
		cache:  NewSequenceCache(cfg.CacheEntries, cfg.CacheBytes),
		logger: logger,
	}
}

// SetProgress 设置进度回调，回调可能在多个 goroutine 中被调用
func (bm *BatchMatcher) SetProgress(fn func(done, total int)) {
	bm.progress = fn
}

// Cache 返回序列缓存
func (bm *BatchMatcher) Cache() *SequenceCache {
	return bm.cache
}

// Run 对 files 中所有无序文件对查找长度为 k 的公共子串
//
// 单个文件加载失败只记录在对应结果中；ctx 取消时返回 ctx 的错误。
func (bm *BatchMatcher) Run(ctx context.Context, files []input.CorpusFile, k int) (*BatchReport, error) {
	pairs := input.Pairs(files)
	cfg := bm.engine.Config()
	report := &BatchReport{
		GeneratedAt: time.Now(),
		K:           k,
		Strategy:    cfg.Strategy.String(),
		Hash:        cfg.Hash.String(),
		Files:       len(files),
		Pairs:       len(pairs),
		Results:     make([]PairResult, len(pairs)),
	}

	bm.logger.Info("批量匹配: %d 个文件, %d 对, k=%d, %s", len(files), len(pairs), k, cfg.String())

	start := time.Now()
	pool := NewWorkerPool(ctx, bm.config.Workers)
	var done atomic.Int64

	for i, p := range pairs {
		if !pool.Submit(func() {
			report.Results[i] = bm.matchPair(p, k)
			n := done.Add(1)
			if bm.progress != nil {
				bm.progress(int(n), len(pairs))
			}
		}) {
			break
		}
	}
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch interrupted after %d of %d pairs: %w", done.Load(), len(pairs), err)
	}

	report.Duration = time.Since(start)
	for _, r := range report.Results {
		switch {
		case r.Err != "":
			report.Failed++
		case r.Found:
			report.Matched++
		}
	}
	report.Cache = bm.cache.GetStats()

	bm.logger.Debug("%s", report.Cache.String())
	bm.logger.Info("批量匹配完成: %d 对匹配, %d 对失败, 耗时 %v", report.Matched, report.Failed, report.Duration)
	return report, nil
}

// matchPair 加载并匹配一个文件对
func (bm *BatchMatcher) matchPair(p input.Pair, k int) PairResult {
	result := PairResult{
		First:  p.First.RelativePath,
		Second: p.Second.RelativePath,
	}

	s1, err := bm.load(p.First)
	if err != nil {
		result.Err = err.Error()
		return result
	}
	s2, err := bm.load(p.Second)
	if err != nil {
		result.Err = err.Error()
		return result
	}

	start := time.Now()
	m, ok := bm.engine.Find(s1.Text, s2.Text, k)
	result.Duration = time.Since(start)

	if ok {
		result.Found = true
		result.Text = m.Text
		result.Seq = m.Seq
		result.Start = m.Start
		result.End = m.End
	}
	bm.logger.Debug("%s <-> %s: found=%v (%v)", result.First, result.Second, ok, result.Duration)
	return result
}

func (bm *BatchMatcher) load(f input.CorpusFile) (*input.Sequence, error) {
	seq, err := bm.cache.GetOrLoad(f.Path, func() (*input.Sequence, error) {
		return input.LoadFile(f.Path, bm.config.Load)
	})
	if err != nil {
		bm.logger.Warn("加载 %s 失败: %v", f.RelativePath, err)
	}
	return seq, err
}

// WriteReport 将报告以 JSON 写入 path，按扩展名选择压缩格式
func WriteReport(path string, report *BatchReport, cm *compression.CompressionManager) error {
	if cm == nil {
		cm = compression.NewCompressionManager()
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化报告失败: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建报告文件失败: %w", err)
	}
	defer file.Close()

	w, err := cm.NewWriter(file, compression.TypeFromPath(path), compression.LevelDefault)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("写入报告失败: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("写入报告失败: %w", err)
	}
	return file.Sync()
}

// ReadReport 读取 WriteReport 写出的报告，压缩格式按魔数识别
func ReadReport(path string, cm *compression.CompressionManager) (*BatchReport, error) {
	if cm == nil {
		cm = compression.NewCompressionManager()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r, _, err := cm.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var report BatchReport
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("解析报告失败: %w", err)
	}
	return &report, nil
}
