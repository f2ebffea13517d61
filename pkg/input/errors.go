// Package input 负责序列文件的读取、解压、校验与语料目录遍历
package input

import "errors"

// 输入相关错误
var (
	ErrInvalidUTF8    = errors.New("input is not valid UTF-8")
	ErrNotRegularFile = errors.New("not a regular file")
	ErrEmptyCorpus    = errors.New("corpus has fewer than two files")
)

// InputError 输入错误类型
type InputError struct {
	Op   string // 操作名称
	Path string // 文件路径
	Err  error  // 原始错误
}

// Error 实现error接口
func (e *InputError) Error() string {
	if e.Path != "" {
		return e.Op + " " + e.Path + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap 返回原始错误
func (e *InputError) Unwrap() error {
	return e.Err
}

// NewInputError 创建新的输入错误
func NewInputError(op, path string, err error) *InputError {
	return &InputError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}
