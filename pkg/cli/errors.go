package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/klinvill/substring-search/pkg/compression"
	"github.com/klinvill/substring-search/pkg/input"
	"github.com/klinvill/substring-search/pkg/match"
)

// ErrorCode 错误代码
type ErrorCode int

const (
	// 通用错误
	ErrUnknown ErrorCode = iota
	ErrInvalidArgument
	ErrFileNotFound
	ErrPermissionDenied
	ErrInterrupted

	// 文件操作错误
	ErrFileRead
	ErrFileWrite

	// 输入错误
	ErrInvalidEncoding
	ErrDecompression
	ErrEmptyCorpus

	// 匹配相关错误
	ErrEngineConfig
	ErrBatchFailed
	ErrBenchmarkFailed

	// 配置错误
	ErrConfigInvalid
	ErrConfigNotFound
	ErrConfigPermission
)

var errorCodeNames = map[ErrorCode]string{
	ErrUnknown:          "UNKNOWN",
	ErrInvalidArgument:  "INVALID_ARGUMENT",
	ErrFileNotFound:     "FILE_NOT_FOUND",
	ErrPermissionDenied: "PERMISSION_DENIED",
	ErrInterrupted:      "INTERRUPTED",
	ErrFileRead:         "FILE_READ",
	ErrFileWrite:        "FILE_WRITE",
	ErrInvalidEncoding:  "INVALID_ENCODING",
	ErrDecompression:    "DECOMPRESSION",
	ErrEmptyCorpus:      "EMPTY_CORPUS",
	ErrEngineConfig:     "ENGINE_CONFIG",
	ErrBatchFailed:      "BATCH_FAILED",
	ErrBenchmarkFailed:  "BENCHMARK_FAILED",
	ErrConfigInvalid:    "CONFIG_INVALID",
	ErrConfigNotFound:   "CONFIG_NOT_FOUND",
	ErrConfigPermission: "CONFIG_PERMISSION",
}

// CLIError CLI错误类型
type CLIError struct {
	Code      ErrorCode
	Message   string
	Cause     error
	Context   map[string]interface{}
	Stack     []string
	Timestamp string
}

// NewCLIError 创建新的CLI错误
func NewCLIError(code ErrorCode, message string) *CLIError {
	return &CLIError{
		Code:      code,
		Message:   message,
		Context:   make(map[string]interface{}),
		Stack:     captureStack(),
		Timestamp: getCurrentTimestamp(),
	}
}

// NewCLIErrorWithCause 创建带原因的CLI错误
func NewCLIErrorWithCause(code ErrorCode, message string, cause error) *CLIError {
	return &CLIError{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Context:   make(map[string]interface{}),
		Stack:     captureStack(),
		Timestamp: getCurrentTimestamp(),
	}
}

// Error 实现error接口
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap 返回原始错误
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// WithContext 添加上下文信息
func (e *CLIError) WithContext(key string, value interface{}) *CLIError {
	e.Context[key] = value
	return e
}

// String 返回详细的错误信息
func (e *CLIError) String() string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("错误代码: %s\n", e.Code.String()))
	builder.WriteString(fmt.Sprintf("错误消息: %s\n", e.Message))
	builder.WriteString(fmt.Sprintf("发生时间: %s\n", e.Timestamp))

	if e.Cause != nil {
		builder.WriteString(fmt.Sprintf("原始错误: %v\n", e.Cause))
	}

	if len(e.Context) > 0 {
		builder.WriteString("上下文信息:\n")
		for key, value := range e.Context {
			builder.WriteString(fmt.Sprintf("  %s: %v\n", key, value))
		}
	}

	if len(e.Stack) > 0 {
		builder.WriteString("调用栈:\n")
		for _, frame := range e.Stack {
			builder.WriteString(fmt.Sprintf("  %s\n", frame))
		}
	}

	return builder.String()
}

// String 返回错误代码的字符串表示
func (code ErrorCode) String() string {
	if name, ok := errorCodeNames[code]; ok {
		return name
	}
	return "UNKNOWN"
}

// ErrorHandler 错误处理器
type ErrorHandler struct {
	logger   *Logger
	verbose  bool
	exitCode map[ErrorCode]int
}

// NewErrorHandler 创建错误处理器
func NewErrorHandler(logger *Logger, verbose bool) *ErrorHandler {
	handler := &ErrorHandler{
		logger:   logger,
		verbose:  verbose,
		exitCode: make(map[ErrorCode]int),
	}

	// 设置默认退出代码
	handler.setDefaultExitCodes()

	return handler
}

// setDefaultExitCodes 设置默认退出代码
func (eh *ErrorHandler) setDefaultExitCodes() {
	eh.exitCode[ErrUnknown] = 1
	eh.exitCode[ErrInvalidArgument] = 2
	eh.exitCode[ErrFileNotFound] = 3
	eh.exitCode[ErrPermissionDenied] = 4
	eh.exitCode[ErrInterrupted] = 130
	eh.exitCode[ErrFileRead] = 10
	eh.exitCode[ErrFileWrite] = 11
	eh.exitCode[ErrInvalidEncoding] = 20
	eh.exitCode[ErrDecompression] = 21
	eh.exitCode[ErrEmptyCorpus] = 22
	eh.exitCode[ErrEngineConfig] = 30
	eh.exitCode[ErrBatchFailed] = 31
	eh.exitCode[ErrBenchmarkFailed] = 32
	eh.exitCode[ErrConfigInvalid] = 50
	eh.exitCode[ErrConfigNotFound] = 51
	eh.exitCode[ErrConfigPermission] = 52
}

// Handle 处理错误
func (eh *ErrorHandler) Handle(err error) int {
	if err == nil {
		return 0
	}

	// 检查是否为CLI错误
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return eh.handleCLIError(cliErr)
	}

	// 处理普通错误
	eh.logger.Error("发生错误: %v", err)
	return 1
}

// handleCLIError 处理CLI错误
func (eh *ErrorHandler) handleCLIError(err *CLIError) int {
	// 输出用户友好的错误消息
	eh.logger.Error("%s", err.Error())

	// 如果启用详细模式，输出更多信息
	if eh.verbose {
		if len(err.Context) > 0 {
			eh.logger.Debug("上下文信息:")
			for key, value := range err.Context {
				eh.logger.Debug("  %s: %v", key, value)
			}
		}

		if len(err.Stack) > 0 {
			eh.logger.Debug("调用栈:")
			for _, frame := range err.Stack {
				eh.logger.Debug("  %s", frame)
			}
		}
	}

	return eh.GetExitCode(err.Code)
}

// GetExitCode 获取错误代码对应的退出代码
func (eh *ErrorHandler) GetExitCode(errCode ErrorCode) int {
	if code, exists := eh.exitCode[errCode]; exists {
		return code
	}
	return 1
}

// classify 根据底层错误推断错误代码
func classify(err error) ErrorCode {
	var compErr *compression.CompressionError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrInterrupted
	case errors.Is(err, os.ErrNotExist):
		return ErrFileNotFound
	case errors.Is(err, os.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, input.ErrInvalidUTF8):
		return ErrInvalidEncoding
	case errors.Is(err, input.ErrEmptyCorpus):
		return ErrEmptyCorpus
	case errors.As(err, &compErr):
		return ErrDecompression
	case errors.Is(err, match.ErrInvalidStrategy),
		errors.Is(err, match.ErrInvalidHashKind),
		errors.Is(err, match.ErrInvalidSalt),
		errors.Is(err, match.ErrUnusedSalt):
		return ErrEngineConfig
	default:
		return ErrUnknown
	}
}

// 辅助函数

// captureStack 捕获调用栈
func captureStack() []string {
	var stack []string

	// 跳过当前函数和NewCLIError函数
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		// 只保留相关的调用栈信息
		funcName := fn.Name()
		if strings.Contains(funcName, "runtime.") {
			continue
		}

		frame := fmt.Sprintf("%s:%d %s", file, line, funcName)
		stack = append(stack, frame)

		// 限制调用栈深度
		if len(stack) >= 10 {
			break
		}
	}

	return stack
}

// getCurrentTimestamp 获取当前时间戳
func getCurrentTimestamp() string {
	return time.Now().Format(time.RFC3339)
}

// 预定义的错误创建函数

// ErrInvalidArgumentf 创建无效参数错误
func ErrInvalidArgumentf(format string, args ...interface{}) *CLIError {
	return NewCLIError(ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// WrapError 包装普通错误为CLI错误，能从原始错误推断出具体代码时优先使用推断结果
func WrapError(code ErrorCode, message string, cause error) *CLIError {
	if inferred := classify(cause); inferred != ErrUnknown {
		code = inferred
	}
	return NewCLIErrorWithCause(code, message, cause)
}
