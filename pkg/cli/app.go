package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kr/pretty"
)

// App 应用程序主结构
type App struct {
	name        string
	version     string
	description string
	config      *Config
	configPath  string
	logger      *Logger
	progress    *ProgressManager
	engine      Engine
	registry    *CommandRegistry
	ctx         context.Context
	stdout      io.Writer
	stdin       io.Reader
}

// NewApp 创建新的应用程序实例
func NewApp(name, version, description string, engine Engine) *App {
	app := &App{
		name:        name,
		version:     version,
		description: description,
		engine:      engine,
		ctx:         context.Background(),
		stdout:      os.Stdout,
		stdin:       os.Stdin,
	}

	// 初始化组件
	app.config = NewConfig()
	app.configPath = GetConfigPath()
	app.logger = NewLogger(app.config.LogLevel, app.config.LogFile)
	app.progress = NewProgressManager(app.config.ShowProgress)
	app.registry = NewCommandRegistry(app)

	// 注册默认命令
	app.registerDefaultCommands()

	return app
}

// registerDefaultCommands 注册默认命令
func (app *App) registerDefaultCommands() {
	app.registry.Register(NewMatchCommand(app))
	app.registry.Register(NewNormalizeCommand(app))
	app.registry.Register(NewCollisionsCommand(app))
	app.registry.Register(NewBatchCommand(app))
	app.registry.Register(NewBenchCommand(app))
	app.registry.Register(NewConfigCommand(app))
	app.registry.Register(NewHelpCommand(app))
	app.registry.Register(NewVersionCommand(app))
}

// SetOutput 设置结果输出流
func (app *App) SetOutput(w io.Writer) {
	app.stdout = w
}

// SetInput 设置标准输入（文件参数为 "-" 时读取）
func (app *App) SetInput(r io.Reader) {
	app.stdin = r
}

// SetConfigPath 设置默认配置文件路径
func (app *App) SetConfigPath(path string) {
	app.configPath = path
}

// Run 运行应用程序
func (app *App) Run(args []string) error {
	return app.RunContext(context.Background(), args)
}

// RunContext 运行应用程序，ctx 取消时中止批量匹配与基准测试
func (app *App) RunContext(ctx context.Context, args []string) error {
	app.ctx = ctx

	// 解析全局参数
	rest, err := app.parseGlobalFlags(args)
	if err != nil {
		return err
	}

	// 如果没有参数，显示帮助
	if len(rest) == 0 {
		return app.showHelp()
	}

	// 获取命令名称
	cmdName := rest[0]
	cmdArgs := rest[1:]

	// 处理特殊命令
	switch cmdName {
	case "-h", "--help":
		return app.showHelp()
	case "-v", "--version":
		return app.showVersion()
	}

	// 查找并执行命令
	cmd, exists := app.registry.Get(cmdName)
	if !exists {
		return ErrInvalidArgumentf("未知命令: %s\n\n使用 '%s help' 查看可用命令", cmdName, app.name)
	}

	// 解析命令参数
	fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "用法: %s\n\n", cmd.Usage())
		fmt.Fprintf(fs.Output(), "%s\n\n", cmd.Description())
		fmt.Fprintf(fs.Output(), "选项:\n")
		fs.PrintDefaults()
	}

	// 设置命令标志
	cmd.SetFlags(fs)

	// 解析参数
	if err := fs.Parse(cmdArgs); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return WrapError(ErrInvalidArgument, "参数解析错误", err)
	}

	// 执行命令
	app.logger.Debug("执行命令: %s", cmdName)
	startTime := time.Now()

	err = cmd.Execute(fs.Args())

	duration := time.Since(startTime)
	if err != nil {
		app.logger.Debug("命令执行失败 (耗时: %v)", duration)
		return err
	}

	app.logger.Debug("命令执行完成，耗时: %v", duration)
	return nil
}

// parseGlobalFlags 解析全局标志，返回命令及其参数
func (app *App) parseGlobalFlags(args []string) ([]string, error) {
	// 创建全局标志集
	fs := flag.NewFlagSet("global", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFile = fs.String("config", "", "配置文件路径")
		logLevel   = fs.String("log-level", "", "日志级别 (debug, info, warn, error)")
		logFile    = fs.String("log-file", "", "日志文件路径")
		noProgress = fs.Bool("no-progress", false, "禁用进度显示")
		quiet      = fs.Bool("quiet", false, "静默模式")
		verbose    = fs.Bool("verbose", false, "详细模式")
	)

	var rest []string
	if len(args) > 1 {
		if err := fs.Parse(args[1:]); err != nil && !errors.Is(err, flag.ErrHelp) {
			return nil, WrapError(ErrInvalidArgument, "全局参数解析错误", err)
		}
		rest = fs.Args()
	}

	// 加载配置文件
	if *configFile != "" {
		app.configPath = *configFile
		if err := app.config.LoadFromFile(*configFile); err != nil {
			return nil, WrapError(ErrConfigInvalid, "加载配置文件失败", err)
		}
	} else if _, err := os.Stat(app.configPath); err == nil {
		if err := app.config.LoadFromFile(app.configPath); err != nil {
			fmt.Fprintf(os.Stderr, "警告: 加载配置文件失败，使用默认配置: %v\n", err)
			app.config = NewConfig()
		}
	}

	// 应用命令行参数覆盖
	if *logLevel != "" {
		app.config.LogLevel = *logLevel
	}
	if *logFile != "" {
		app.config.LogFile = *logFile
	}
	if *noProgress {
		app.config.ShowProgress = false
	}
	if *quiet {
		app.config.Quiet = true
	}
	if *verbose {
		app.config.Verbose = true
	}
	if app.config.Quiet {
		app.config.LogLevel = "error"
		app.config.ShowProgress = false
	}
	if app.config.Verbose {
		app.config.LogLevel = "debug"
	}

	// 重新初始化日志器和进度管理器
	app.logger = NewLogger(app.config.LogLevel, app.config.LogFile)
	app.progress = NewProgressManager(app.config.ShowProgress)

	return rest, nil
}

// showHelp 显示帮助信息
func (app *App) showHelp() error {
	w := app.stdout
	fmt.Fprintf(w, "%s - %s\n\n", app.name, app.description)
	fmt.Fprintf(w, "版本: %s\n\n", app.version)

	fmt.Fprintf(w, "用法:\n")
	fmt.Fprintf(w, "  %s [全局选项] <命令> [命令选项] [参数...]\n\n", app.name)

	fmt.Fprintf(w, "全局选项:\n")
	fmt.Fprintf(w, "  --config <file>     配置文件路径\n")
	fmt.Fprintf(w, "  --log-level <level> 日志级别 (debug, info, warn, error)\n")
	fmt.Fprintf(w, "  --log-file <file>   日志文件路径\n")
	fmt.Fprintf(w, "  --no-progress       禁用进度显示\n")
	fmt.Fprintf(w, "  --quiet             静默模式\n")
	fmt.Fprintf(w, "  --verbose           详细模式\n")
	fmt.Fprintf(w, "  --help              显示帮助信息\n")
	fmt.Fprintf(w, "  --version           显示版本信息\n\n")

	fmt.Fprintf(w, "可用命令:\n")
	for _, cmd := range app.registry.List() {
		fmt.Fprintf(w, "  %-12s %s\n", cmd.Name(), cmd.Description())
	}

	fmt.Fprintf(w, "\n使用 '%s <命令> --help' 查看具体命令的帮助信息\n", app.name)

	return nil
}

// showVersion 显示版本信息
func (app *App) showVersion() error {
	fmt.Fprintf(app.stdout, "%s version %s\n", app.name, app.version)
	return nil
}

// Close 关闭日志文件
func (app *App) Close() error {
	return app.logger.Close()
}

// GetName 获取应用程序名称
func (app *App) GetName() string {
	return app.name
}

// GetLogger 获取日志器
func (app *App) GetLogger() *Logger {
	return app.logger
}

// GetConfig 获取配置
func (app *App) GetConfig() *Config {
	return app.config
}

// HelpCommand 帮助命令
type HelpCommand struct {
	app *App
}

// NewHelpCommand 创建帮助命令
func NewHelpCommand(app *App) *HelpCommand {
	return &HelpCommand{app: app}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "显示帮助信息"
}

func (c *HelpCommand) Usage() string {
	return c.app.name + " help [command]"
}

func (c *HelpCommand) SetFlags(fs *flag.FlagSet) {
	// 帮助命令不需要额外标志
}

func (c *HelpCommand) Execute(args []string) error {
	if len(args) == 0 {
		return c.app.showHelp()
	}

	// 显示特定命令的帮助
	cmdName := args[0]
	cmd, exists := c.app.registry.Get(cmdName)
	if !exists {
		return ErrInvalidArgumentf("未知命令: %s", cmdName)
	}

	w := c.app.stdout
	fmt.Fprintf(w, "命令: %s\n\n", cmd.Name())
	fmt.Fprintf(w, "描述: %s\n\n", cmd.Description())
	fmt.Fprintf(w, "用法: %s\n\n", cmd.Usage())

	// 创建临时标志集来显示选项
	fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)
	fs.SetOutput(w)
	cmd.SetFlags(fs)

	fmt.Fprintf(w, "选项:\n")
	fs.PrintDefaults()

	return nil
}

// VersionCommand 版本命令
type VersionCommand struct {
	app *App
}

// NewVersionCommand 创建版本命令
func NewVersionCommand(app *App) *VersionCommand {
	return &VersionCommand{app: app}
}

func (c *VersionCommand) Name() string {
	return "version"
}

func (c *VersionCommand) Description() string {
	return "显示版本信息"
}

func (c *VersionCommand) Usage() string {
	return c.app.name + " version"
}

func (c *VersionCommand) SetFlags(fs *flag.FlagSet) {
	// 版本命令不需要额外标志
}

func (c *VersionCommand) Execute(args []string) error {
	return c.app.showVersion()
}

// ConfigCommand 配置管理命令
type ConfigCommand struct {
	app *App
}

// NewConfigCommand 创建配置管理命令
func NewConfigCommand(app *App) *ConfigCommand {
	return &ConfigCommand{
		app: app,
	}
}

func (c *ConfigCommand) Name() string {
	return "config"
}

func (c *ConfigCommand) Description() string {
	return "管理配置文件"
}

func (c *ConfigCommand) Usage() string {
	return c.app.name + " config <init|get|set|list|path> [key] [value]"
}

func (c *ConfigCommand) SetFlags(fs *flag.FlagSet) {
	// 配置命令通过位置参数处理
}

func (c *ConfigCommand) Execute(args []string) error {
	if len(args) < 1 {
		return ErrInvalidArgumentf("缺少操作参数 (init, get, set, list, path)")
	}

	action := args[0]

	switch action {
	case "init":
		return c.initConfig()
	case "get":
		if len(args) < 2 {
			return ErrInvalidArgumentf("缺少配置键名")
		}
		return c.getConfig(args[1])
	case "set":
		if len(args) < 3 {
			return ErrInvalidArgumentf("缺少配置键名或值")
		}
		return c.setConfig(args[1], args[2])
	case "list":
		return c.listConfig()
	case "path":
		fmt.Fprintln(c.app.stdout, c.app.configPath)
		return nil
	default:
		return ErrInvalidArgumentf("未知操作: %s", action)
	}
}

func (c *ConfigCommand) initConfig() error {
	if err := CreateDefaultConfigFile(c.app.configPath); err != nil {
		return WrapError(ErrConfigInvalid, "创建配置文件失败", err)
	}

	c.app.logger.Success("配置文件已创建: %s", c.app.configPath)
	return nil
}

// configMap 以 JSON 键名展开当前配置
func (c *ConfigCommand) configMap() (map[string]json.RawMessage, error) {
	data, err := json.Marshal(c.app.config)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *ConfigCommand) getConfig(key string) error {
	m, err := c.configMap()
	if err != nil {
		return WrapError(ErrConfigInvalid, "读取配置失败", err)
	}
	value, ok := m[key]
	if !ok {
		return ErrInvalidArgumentf("未知配置项: %s", key)
	}
	fmt.Fprintln(c.app.stdout, string(value))
	return nil
}

func (c *ConfigCommand) setConfig(key, value string) error {
	m, err := c.configMap()
	if err != nil {
		return WrapError(ErrConfigInvalid, "读取配置失败", err)
	}
	if _, ok := m[key]; !ok {
		return ErrInvalidArgumentf("未知配置项: %s", key)
	}

	// 值不是合法 JSON 时按字符串处理
	raw := json.RawMessage(value)
	if !json.Valid(raw) {
		quoted, _ := json.Marshal(value)
		raw = quoted
	}
	m[key] = raw

	data, err := json.Marshal(m)
	if err != nil {
		return WrapError(ErrConfigInvalid, "序列化配置失败", err)
	}
	updated := NewConfig()
	if err := json.Unmarshal(data, updated); err != nil {
		return WrapError(ErrConfigInvalid, fmt.Sprintf("配置项 %s 的值无效", key), err)
	}
	if err := updated.Validate(); err != nil {
		return WrapError(ErrConfigInvalid, "配置验证失败", err)
	}

	if err := updated.SaveToFile(c.app.configPath); err != nil {
		return WrapError(ErrConfigPermission, "保存配置失败", err)
	}
	c.app.config = updated

	c.app.logger.Success("设置配置: %s = %s", key, string(raw))
	return nil
}

func (c *ConfigCommand) listConfig() error {
	if c.app.config.OutputFormat == "json" {
		data, err := json.MarshalIndent(c.app.config, "", "  ")
		if err != nil {
			return WrapError(ErrConfigInvalid, "序列化配置失败", err)
		}
		fmt.Fprintln(c.app.stdout, string(data))
		return nil
	}

	fmt.Fprintf(c.app.stdout, "配置文件: %s\n", c.app.configPath)
	fmt.Fprintln(c.app.stdout, strings.TrimSpace(pretty.Sprint(*c.app.config)))
	return nil
}
