package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/klinvill/substring-search/pkg/compression"
	"github.com/klinvill/substring-search/pkg/hash"
	"github.com/klinvill/substring-search/pkg/input"
	"github.com/klinvill/substring-search/pkg/match"
	"github.com/klinvill/substring-search/pkg/performance"
)

// Command 命令接口
type Command interface {
	Name() string
	Description() string
	Usage() string
	Execute(args []string) error
	SetFlags(fs *flag.FlagSet)
}

// CommandRegistry 命令注册器
type CommandRegistry struct {
	commands map[string]Command
	app      *App
}

// NewCommandRegistry 创建命令注册器
func NewCommandRegistry(app *App) *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]Command),
		app:      app,
	}
}

// Register 注册命令
func (cr *CommandRegistry) Register(cmd Command) {
	cr.commands[cmd.Name()] = cmd
}

// Get 获取命令
func (cr *CommandRegistry) Get(name string) (Command, bool) {
	cmd, exists := cr.commands[name]
	return cmd, exists
}

// List 按名称列出所有命令
func (cr *CommandRegistry) List() []Command {
	commands := make([]Command, 0, len(cr.commands))
	for _, cmd := range cr.commands {
		commands = append(commands, cmd)
	}
	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name() < commands[j].Name()
	})
	return commands
}

// engineFlags 匹配类命令共用的引擎参数，零值表示沿用配置
type engineFlags struct {
	k        int
	strategy string
	hash     string
	salt     int64
	format   string
}

func (ef *engineFlags) set(fs *flag.FlagSet) {
	fs.IntVar(&ef.k, "k", -1, "子串长度（字符数），默认取配置值")
	fs.StringVar(&ef.strategy, "strategy", "", "匹配策略 ("+strings.Join(strategyNames(), ", ")+")")
	fs.StringVar(&ef.hash, "hash", "", "窗口哈希算法 ("+strings.Join(hashNames(), ", ")+")")
	fs.Int64Var(&ef.salt, "salt", -1, "多项式哈希盐值，0 表示随机，默认取配置值")
	fs.StringVar(&ef.format, "format", "", "输出格式 (text, json)")
}

// apply 返回覆盖后的配置副本
func (ef *engineFlags) apply(base *Config) (*Config, error) {
	cfg := *base
	if ef.k >= 0 {
		cfg.K = ef.k
	}
	if ef.strategy != "" {
		cfg.Strategy = ef.strategy
	}
	if ef.hash != "" {
		cfg.Hash = ef.hash
		// 配置中的盐值只属于多项式哈希
		if cfg.Hash != hash.KindPolynomial.String() {
			cfg.Salt = 0
		}
	}
	switch {
	case ef.salt == 0:
		cfg.Salt = 0
	case ef.salt > 0:
		cfg.Salt = uint64(ef.salt)
	case ef.salt < -1:
		return nil, ErrInvalidArgumentf("盐值不能为负数: %d", ef.salt)
	}
	if ef.format != "" {
		cfg.OutputFormat = ef.format
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapError(ErrInvalidArgument, "参数无效", err)
	}
	return &cfg, nil
}

func strategyNames() []string {
	var names []string
	for _, s := range match.Strategies() {
		names = append(names, s.String())
	}
	return names
}

func hashNames() []string {
	var names []string
	for _, k := range hash.Kinds() {
		names = append(names, k.String())
	}
	return names
}

// splitList 拆分逗号分隔的列表
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadSequence 加载序列文件，"-" 表示标准输入
func (app *App) loadSequence(path string, cfg *Config) (*input.Sequence, error) {
	var (
		seq *input.Sequence
		err error
	)
	if path == "-" {
		seq, err = input.LoadReader(app.stdin, cfg.LoadOptions())
		if seq != nil {
			seq.Path = "<stdin>"
		}
	} else {
		seq, err = input.LoadFile(path, cfg.LoadOptions())
	}
	if err != nil {
		return nil, WrapError(ErrFileRead, "加载序列失败", err).WithContext("path", path)
	}

	app.logger.Debug("已加载 %s: %s, 压缩=%s, 内存映射=%v", seq.Path, formatBytes(seq.Size), seq.Compression, seq.Mapped)
	return seq, nil
}

// writeJSON 以缩进 JSON 输出结果
func (app *App) writeJSON(v interface{}) error {
	enc := json.NewEncoder(app.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return WrapError(ErrFileWrite, "输出结果失败", err)
	}
	return nil
}

// MatchCommand 公共子串匹配命令
type MatchCommand struct {
	app   *App
	flags engineFlags
	raw   bool
}

// NewMatchCommand 创建匹配命令
func NewMatchCommand(app *App) *MatchCommand {
	return &MatchCommand{app: app}
}

func (c *MatchCommand) Name() string {
	return "match"
}

func (c *MatchCommand) Description() string {
	return "查找两个序列之间长度为 k 的公共子串"
}

func (c *MatchCommand) Usage() string {
	return c.app.name + " match [options] <file1> <file2>"
}

func (c *MatchCommand) SetFlags(fs *flag.FlagSet) {
	c.flags.set(fs)
	fs.BoolVar(&c.raw, "raw", false, "保留换行与连续空格")
}

func (c *MatchCommand) Execute(args []string) error {
	if len(args) != 2 {
		return ErrInvalidArgumentf("需要两个文件参数: <file1> <file2>")
	}
	if args[0] == "-" && args[1] == "-" {
		return ErrInvalidArgumentf("只有一个序列可以来自标准输入")
	}

	cfg, err := c.flags.apply(c.app.config)
	if err != nil {
		return err
	}
	if c.raw {
		cfg.Normalize = false
	}

	first, err := c.app.loadSequence(args[0], cfg)
	if err != nil {
		return err
	}
	second, err := c.app.loadSequence(args[1], cfg)
	if err != nil {
		return err
	}

	c.app.logger.Info("匹配 %s 与 %s: k=%d, %s/%s", first.Path, second.Path, cfg.K, cfg.Strategy, cfg.Hash)

	result, err := c.app.engine.Match(cfg, MatchRequest{First: first, Second: second, K: cfg.K})
	if err != nil {
		return WrapError(ErrUnknown, "匹配失败", err)
	}
	c.app.logger.Debug("匹配耗时: %v", result.Duration)

	if cfg.OutputFormat == "json" {
		return c.app.writeJSON(result)
	}

	if !result.Found {
		fmt.Fprintf(c.app.stdout, "未找到长度为 %d 的公共子串\n", result.K)
		return nil
	}
	source := result.First
	if result.Seq == 2 {
		source = result.Second
	}
	fmt.Fprintf(c.app.stdout, "%q\n", result.Text)
	fmt.Fprintf(c.app.stdout, "位置: 序列%d (%s) 字节 %d-%d\n", result.Seq, source, result.Start, result.End)
	return nil
}

// NormalizeCommand 文本规范化命令
type NormalizeCommand struct {
	app        *App
	outputFile string
	compress   string
}

// NewNormalizeCommand 创建规范化命令
func NewNormalizeCommand(app *App) *NormalizeCommand {
	return &NormalizeCommand{app: app}
}

func (c *NormalizeCommand) Name() string {
	return "normalize"
}

func (c *NormalizeCommand) Description() string {
	return "去除换行并压缩连续空格"
}

func (c *NormalizeCommand) Usage() string {
	return c.app.name + " normalize [options] [input-file|-]"
}

func (c *NormalizeCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.outputFile, "o", "", "输出文件路径，默认标准输出")
	fs.StringVar(&c.outputFile, "output", "", "输出文件路径，默认标准输出")
	fs.StringVar(&c.compress, "compress", "", "输出压缩格式 (none, gzip, lz4, zstd, xz)，默认按扩展名")
}

func (c *NormalizeCommand) Execute(args []string) error {
	if len(args) > 1 {
		return ErrInvalidArgumentf("最多一个输入文件")
	}

	src := c.app.stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return WrapError(ErrFileRead, "打开输入文件失败", err)
		}
		defer f.Close()
		src = f
	}

	outType := compression.TypeFromPath(c.outputFile)
	if c.compress != "" {
		t, err := compression.ParseCompressionType(c.compress)
		if err != nil {
			return WrapError(ErrInvalidArgument, "无效的压缩格式", err)
		}
		outType = t
	}

	dst := c.app.stdout
	if c.outputFile != "" {
		f, err := os.Create(c.outputFile)
		if err != nil {
			return WrapError(ErrFileWrite, "创建输出文件失败", err)
		}
		defer f.Close()
		dst = f
	}

	result, err := c.app.engine.Normalize(c.app.config, src, dst, outType)
	if err != nil {
		return WrapError(ErrUnknown, "规范化失败", err)
	}

	c.app.logger.Info("规范化完成: %s -> %s", formatBytes(result.InputBytes), formatBytes(result.OutputBytes))
	return nil
}

// CollisionsCommand 哈希冲突分析命令
type CollisionsCommand struct {
	app    *App
	flags  engineFlags
	salt   uint64
	hashes string
}

// NewCollisionsCommand 创建冲突分析命令
func NewCollisionsCommand(app *App) *CollisionsCommand {
	return &CollisionsCommand{app: app}
}

func (c *CollisionsCommand) Name() string {
	return "collisions"
}

func (c *CollisionsCommand) Description() string {
	return "统计序列所有窗口在各哈希算法下的冲突"
}

func (c *CollisionsCommand) Usage() string {
	return c.app.name + " collisions [options] <file>"
}

func (c *CollisionsCommand) SetFlags(fs *flag.FlagSet) {
	c.flags.salt = -1
	fs.IntVar(&c.flags.k, "k", -1, "子串长度（字符数），默认取配置值")
	fs.Uint64Var(&c.salt, "salt", 0, "多项式哈希盐值，0 表示取配置值或随机")
	fs.StringVar(&c.flags.format, "format", "", "输出格式 (text, json)")
	fs.StringVar(&c.hashes, "hashes", "", "逗号分隔的哈希算法，默认全部")
}

func (c *CollisionsCommand) Execute(args []string) error {
	if len(args) != 1 {
		return ErrInvalidArgumentf("需要一个文件参数: <file>")
	}

	cfg, err := c.flags.apply(c.app.config)
	if err != nil {
		return err
	}

	var kinds []hash.Kind
	for _, name := range splitList(c.hashes) {
		kind, err := hash.ParseKind(name)
		if err != nil {
			return WrapError(ErrInvalidArgument, "无效的哈希算法", err)
		}
		kinds = append(kinds, kind)
	}

	if c.salt == 1 {
		return WrapError(ErrInvalidArgument, "参数无效", match.ErrInvalidSalt)
	}
	if c.salt != 0 {
		cfg.Salt = c.salt
	}

	seq, err := c.app.loadSequence(args[0], cfg)
	if err != nil {
		return err
	}

	stats, err := c.app.engine.Collisions(cfg, seq, cfg.K, kinds)
	if err != nil {
		return WrapError(ErrInvalidArgument, "冲突分析失败", err)
	}

	if cfg.OutputFormat == "json" {
		type row struct {
			Hash           string `json:"hash"`
			Salt           uint64 `json:"salt,omitempty"`
			Windows        int    `json:"windows"`
			DistinctTexts  int    `json:"distinct_texts"`
			DistinctHashes int    `json:"distinct_hashes"`
			Collisions     int    `json:"collisions"`
		}
		rows := make([]row, 0, len(stats))
		for _, s := range stats {
			rows = append(rows, row{s.Kind.String(), s.Salt, s.Windows, s.DistinctTexts, s.DistinctHashes, s.Collisions()})
		}
		return c.app.writeJSON(rows)
	}

	fmt.Fprint(c.app.stdout, performance.FormatCollisions(stats))
	return nil
}

// BatchCommand 语料批量匹配命令
type BatchCommand struct {
	app        *App
	flags      engineFlags
	outputFile string
	compress   string
	workers    int
	recursive  bool
	hidden     bool
	ignore     string
}

// NewBatchCommand 创建批量匹配命令
func NewBatchCommand(app *App) *BatchCommand {
	return &BatchCommand{app: app}
}

func (c *BatchCommand) Name() string {
	return "batch"
}

func (c *BatchCommand) Description() string {
	return "对目录下所有文件两两查找公共子串"
}

func (c *BatchCommand) Usage() string {
	return c.app.name + " batch [options] <corpus-dir>"
}

func (c *BatchCommand) SetFlags(fs *flag.FlagSet) {
	c.flags.set(fs)
	fs.StringVar(&c.outputFile, "o", "", "JSON 报告输出路径")
	fs.StringVar(&c.outputFile, "output", "", "JSON 报告输出路径")
	fs.StringVar(&c.compress, "compress", "", "报告压缩格式，默认取配置值")
	fs.IntVar(&c.workers, "workers", 0, "工作协程数，默认取配置值")
	fs.BoolVar(&c.recursive, "recursive", true, "递归子目录")
	fs.BoolVar(&c.hidden, "hidden", false, "包含隐藏文件")
	fs.StringVar(&c.ignore, "ignore", "", "逗号分隔的忽略模式")
}

func (c *BatchCommand) Execute(args []string) error {
	if len(args) != 1 {
		return ErrInvalidArgumentf("需要一个目录参数: <corpus-dir>")
	}

	cfg, err := c.flags.apply(c.app.config)
	if err != nil {
		return err
	}
	if c.workers > 0 {
		cfg.WorkerCount = c.workers
	}
	if c.compress != "" {
		cfg.ReportCompression = c.compress
	}
	cType, err := compression.ParseCompressionType(cfg.ReportCompression)
	if err != nil {
		return WrapError(ErrInvalidArgument, "无效的压缩格式", err)
	}

	walk := &input.WalkConfig{
		Recursive:      c.recursive,
		IgnoreHidden:   !c.hidden,
		IgnorePatterns: splitList(c.ignore),
	}

	progress := c.app.progress.NewTask("批量匹配", 0, UnitItems)
	report, err := c.app.engine.Batch(c.app.ctx, cfg, args[0], cfg.K, walk, c.app.logger, progress)
	progress.Finish()
	if err != nil {
		return WrapError(ErrBatchFailed, "批量匹配失败", err).
			WithContext("corpus", args[0]).
			WithContext("k", cfg.K)
	}

	if c.outputFile != "" {
		path, err := c.app.engine.WriteReport(c.outputFile, report, cType)
		if err != nil {
			return WrapError(ErrFileWrite, "写入报告失败", err)
		}
		c.app.logger.Success("报告已写入: %s", path)
	}

	if cfg.OutputFormat == "json" {
		if c.outputFile != "" {
			return nil
		}
		return c.app.writeJSON(report)
	}

	for _, r := range report.Results {
		switch {
		case r.Err != "":
			fmt.Fprintf(c.app.stdout, "%s\t%s\t错误: %s\n", r.First, r.Second, r.Err)
		case r.Found:
			fmt.Fprintf(c.app.stdout, "%s\t%s\t%q\n", r.First, r.Second, r.Text)
		}
	}
	fmt.Fprintf(c.app.stdout, "%d 个文件, %d 对, %d 对匹配, %d 对失败, 耗时 %v\n",
		report.Files, report.Pairs, report.Matched, report.Failed, report.Duration)
	return nil
}

// BenchCommand 性能基准测试命令
type BenchCommand struct {
	app        *App
	k          int
	iterations int
	strategies string
	hashes     string
	outputFile string
}

// NewBenchCommand 创建基准测试命令
func NewBenchCommand(app *App) *BenchCommand {
	return &BenchCommand{app: app}
}

func (c *BenchCommand) Name() string {
	return "bench"
}

func (c *BenchCommand) Description() string {
	return "在语料目录上比较各策略与哈希算法的性能"
}

func (c *BenchCommand) Usage() string {
	return c.app.name + " bench [options] <corpus-dir>"
}

func (c *BenchCommand) SetFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.k, "k", -1, "子串长度（字符数），默认取配置值")
	fs.IntVar(&c.iterations, "n", 10, "每个组合的迭代次数")
	fs.StringVar(&c.strategies, "strategies", "", "逗号分隔的策略，默认全部")
	fs.StringVar(&c.hashes, "hashes", "", "逗号分隔的哈希算法，默认全部")
	fs.StringVar(&c.outputFile, "o", "", "报告输出路径，默认标准输出")
	fs.StringVar(&c.outputFile, "output", "", "报告输出路径，默认标准输出")
}

// variants 由命令行列表组合引擎变体
func (c *BenchCommand) variants() ([]performance.Variant, error) {
	strategies := match.Strategies()
	if names := splitList(c.strategies); len(names) > 0 {
		strategies = strategies[:0:0]
		for _, name := range names {
			s, err := match.ParseStrategy(name)
			if err != nil {
				return nil, err
			}
			strategies = append(strategies, s)
		}
	}

	kinds := hash.Kinds()
	if names := splitList(c.hashes); len(names) > 0 {
		kinds = kinds[:0:0]
		for _, name := range names {
			k, err := hash.ParseKind(name)
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, k)
		}
	}

	var variants []performance.Variant
	for _, s := range strategies {
		for _, k := range kinds {
			variants = append(variants, performance.Variant{Strategy: s, Hash: k})
		}
	}
	return variants, nil
}

func (c *BenchCommand) Execute(args []string) error {
	if len(args) != 1 {
		return ErrInvalidArgumentf("需要一个目录参数: <corpus-dir>")
	}
	if c.iterations < 1 {
		return ErrInvalidArgumentf("迭代次数必须大于0: %d", c.iterations)
	}

	variants, err := c.variants()
	if err != nil {
		return WrapError(ErrInvalidArgument, "参数无效", err)
	}

	k := c.app.config.K
	if c.k >= 0 {
		k = c.k
	}

	bench := performance.DefaultBenchmarkConfig()
	bench.K = k
	bench.Iterations = c.iterations
	bench.Variants = variants
	bench.Salt = c.app.config.Salt
	bench.Load = c.app.config.LoadOptions()

	c.app.logger.Info("开始性能基准测试: %s, k=%d, %d 个变体", args[0], k, len(variants))

	spinner := NewSpinner("基准测试运行中...")
	if c.app.config.ShowProgress {
		spinner.Start()
	}
	suite, err := c.app.engine.Benchmark(c.app.ctx, args[0], bench, c.app.logger)
	spinner.Stop()
	if err != nil {
		return WrapError(ErrBenchmarkFailed, "基准测试失败", err)
	}

	report := suite.GenerateReport()
	if c.outputFile != "" {
		if err := os.WriteFile(c.outputFile, []byte(report), 0644); err != nil {
			return WrapError(ErrFileWrite, "写入报告失败", err)
		}
		c.app.logger.Success("报告已写入: %s", c.outputFile)
		return nil
	}

	fmt.Fprint(c.app.stdout, report)
	return nil
}
