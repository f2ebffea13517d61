package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klinvill/substring-search/pkg/compression"
	"github.com/klinvill/substring-search/pkg/hash"
	"github.com/klinvill/substring-search/pkg/input"
	"github.com/klinvill/substring-search/pkg/match"
	"github.com/klinvill/substring-search/pkg/performance"
)

// Config 应用程序配置
type Config struct {
	// 日志配置
	LogLevel     string `json:"log_level"`     // 日志级别
	LogFile      string `json:"log_file"`      // 日志文件路径
	ShowProgress bool   `json:"show_progress"` // 是否显示进度条

	// 匹配配置
	K         int    `json:"k"`         // 子串长度（字符数）
	Strategy  string `json:"strategy"`  // 匹配策略
	Hash      string `json:"hash"`      // 窗口哈希算法
	Salt      uint64 `json:"salt"`      // 多项式哈希盐值，0 表示随机
	Normalize bool   `json:"normalize"` // 去除换行并压缩空格

	// 性能配置
	WorkerCount   int   `json:"worker_count"`   // 工作协程数
	CacheEntries  int   `json:"cache_entries"`  // 序列缓存条目数
	EnableMmap    bool  `json:"enable_mmap"`    // 是否启用内存映射
	MmapThreshold int64 `json:"mmap_threshold"` // 内存映射阈值（字节）

	// 输出配置
	OutputFormat      string `json:"output_format"`      // 输出格式 (text, json)
	ReportCompression string `json:"report_compression"` // 报告默认压缩算法
	Quiet             bool   `json:"quiet"`              // 静默模式
	Verbose           bool   `json:"verbose"`            // 详细模式
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		// 日志配置
		LogLevel:     "info",
		LogFile:      "",
		ShowProgress: true,

		// 匹配配置
		K:         20,
		Strategy:  match.StrategyShorterFirst.String(),
		Hash:      hash.KindFx.String(),
		Salt:      0,
		Normalize: true,

		// 性能配置
		WorkerCount:   4,
		CacheEntries:  64,
		EnableMmap:    true,
		MmapThreshold: input.DefaultMmapThreshold,

		// 输出配置
		OutputFormat:      "text",
		ReportCompression: "none",
		Quiet:             false,
		Verbose:           false,
	}
}

// LoadFromFile 从文件加载配置
func (c *Config) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}

	return c.Validate()
}

// SaveToFile 保存配置到文件
func (c *Config) SaveToFile(filename string) error {
	// 确保目录存在
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	// 验证日志级别
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("无效的日志级别: %s", c.LogLevel)
	}

	// 验证数值范围
	if c.K < 0 {
		return fmt.Errorf("子串长度不能为负数: %d", c.K)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("工作协程数必须大于0: %d", c.WorkerCount)
	}
	if c.CacheEntries <= 0 {
		return fmt.Errorf("缓存条目数必须大于0: %d", c.CacheEntries)
	}
	if c.MmapThreshold < 0 {
		return fmt.Errorf("内存映射阈值不能为负数: %d", c.MmapThreshold)
	}

	// 验证引擎配置
	if _, err := c.MatchConfig(); err != nil {
		return err
	}

	// 验证压缩算法
	if _, err := compression.ParseCompressionType(c.ReportCompression); err != nil {
		return fmt.Errorf("无效的压缩算法: %s", c.ReportCompression)
	}

	// 验证输出格式
	validFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validFormats[c.OutputFormat] {
		return fmt.Errorf("无效的输出格式: %s", c.OutputFormat)
	}

	return nil
}

// MatchConfig 转换为匹配引擎配置
func (c *Config) MatchConfig() (*match.Config, error) {
	strategy, err := match.ParseStrategy(c.Strategy)
	if err != nil {
		return nil, fmt.Errorf("无效的匹配策略: %s", c.Strategy)
	}
	kind, err := hash.ParseKind(c.Hash)
	if err != nil {
		return nil, fmt.Errorf("无效的哈希算法: %s", c.Hash)
	}

	mc := &match.Config{
		Strategy: strategy,
		Hash:     kind,
		Salt:     c.Salt,
	}
	if err := mc.Validate(); err != nil {
		return nil, fmt.Errorf("无效的引擎配置: %w", err)
	}
	return mc, nil
}

// LoadOptions 转换为序列加载选项
func (c *Config) LoadOptions() *input.LoadOptions {
	return &input.LoadOptions{
		Normalize:     c.Normalize,
		UseMmap:       c.EnableMmap,
		MmapThreshold: c.MmapThreshold,
	}
}

// BatchConfig 转换为批量匹配配置
func (c *Config) BatchConfig() *performance.BatchConfig {
	bc := performance.DefaultBatchConfig()
	bc.Workers = c.WorkerCount
	bc.CacheEntries = c.CacheEntries
	bc.Load = c.LoadOptions()
	return bc
}

// GetConfigPath 获取默认配置文件路径
func GetConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".substring.json"
	}
	return filepath.Join(homeDir, ".substring", "config.json")
}

// LoadDefaultConfig 加载默认配置
func LoadDefaultConfig() *Config {
	config := NewConfig()

	// 尝试从默认位置加载配置
	configPath := GetConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		if err := config.LoadFromFile(configPath); err != nil {
			// 配置文件存在但加载失败，使用默认配置
			fmt.Fprintf(os.Stderr, "警告: 加载配置文件失败，使用默认配置: %v\n", err)
			config = NewConfig()
		}
	}

	return config
}

// CreateDefaultConfigFile 创建默认配置文件
func CreateDefaultConfigFile(configPath string) error {
	config := NewConfig()

	// 检查文件是否已存在
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("配置文件已存在: %s", configPath)
	}

	return config.SaveToFile(configPath)
}
