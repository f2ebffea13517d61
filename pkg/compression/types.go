// Package compression 负责压缩格式的识别与编解码，用于读取压缩的序列文件和写出压缩报告
package compression

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// CompressionType 压缩类型
type CompressionType uint8

const (
	CompressionNone CompressionType = iota // 无压缩
	CompressionGzip                        // Gzip压缩
	CompressionLZ4                         // LZ4压缩
	CompressionZstd                        // Zstandard压缩
	CompressionXZ                          // XZ压缩
)

var typeNames = [...]string{
	CompressionNone: "none",
	CompressionGzip: "gzip",
	CompressionLZ4:  "lz4",
	CompressionZstd: "zstd",
	CompressionXZ:   "xz",
}

var typeExtensions = map[string]CompressionType{
	".gz":   CompressionGzip,
	".gzip": CompressionGzip,
	".lz4":  CompressionLZ4,
	".zst":  CompressionZstd,
	".zstd": CompressionZstd,
	".xz":   CompressionXZ,
}

// ErrUnsupported 不支持的压缩类型
var ErrUnsupported = errors.New("unsupported compression type")

// String 返回压缩类型的字符串表示
func (ct CompressionType) String() string {
	if int(ct) < len(typeNames) {
		return typeNames[ct]
	}
	return fmt.Sprintf("Unknown(%d)", ct)
}

// Extension 返回压缩类型对应的文件扩展名
func (ct CompressionType) Extension() string {
	switch ct {
	case CompressionGzip:
		return ".gz"
	case CompressionLZ4:
		return ".lz4"
	case CompressionZstd:
		return ".zst"
	case CompressionXZ:
		return ".xz"
	default:
		return ""
	}
}

// ParseCompressionType 解析压缩类型名称
func ParseCompressionType(name string) (CompressionType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return CompressionNone, nil
	}
	for i, n := range typeNames {
		if n == name {
			return CompressionType(i), nil
		}
	}
	return CompressionNone, fmt.Errorf("%w: %q", ErrUnsupported, name)
}

// TypeFromPath 根据文件扩展名推断压缩类型
func TypeFromPath(path string) CompressionType {
	if ct, ok := typeExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return CompressionNone
}

// CompressionLevel 压缩级别
type CompressionLevel int

const (
	LevelFastest CompressionLevel = 1  // 最快压缩
	LevelFast    CompressionLevel = 3  // 快速压缩
	LevelDefault CompressionLevel = 6  // 默认压缩
	LevelBest    CompressionLevel = 9  // 最佳压缩
	LevelMax     CompressionLevel = 11 // 最大压缩
)

// Codec 压缩编解码器
type Codec interface {
	// GetType 获取压缩类型
	GetType() CompressionType

	// Magic 数据流开头的魔数
	Magic() []byte

	// NewReader 创建解压读取器
	NewReader(r io.Reader) (io.ReadCloser, error)

	// NewWriter 创建压缩写入器，关闭写入器才会刷新全部数据
	NewWriter(w io.Writer, level CompressionLevel) (io.WriteCloser, error)
}

// CompressionError 压缩错误
type CompressionError struct {
	Type    CompressionType
	Message string
	Cause   error
}

func (e *CompressionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("compression error (%s): %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("compression error (%s): %s", e.Type, e.Message)
}

// Unwrap 返回原始错误
func (e *CompressionError) Unwrap() error {
	return e.Cause
}

// NewCompressionError 创建压缩错误
func NewCompressionError(cType CompressionType, message string, cause error) *CompressionError {
	return &CompressionError{
		Type:    cType,
		Message: message,
		Cause:   cause,
	}
}
