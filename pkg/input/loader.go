package input

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/klinvill/substring-search/pkg/compression"
	"github.com/klinvill/substring-search/pkg/text"
)

// DefaultMmapThreshold 默认内存映射阈值
const DefaultMmapThreshold = 16 * 1024 * 1024 // 16MB

// LoadOptions 序列加载选项
type LoadOptions struct {
	Normalize     bool  // 去除换行并压缩空格
	UseMmap       bool  // 大文件使用内存映射
	MmapThreshold int64 // 内存映射阈值（字节）
	Manager       *compression.CompressionManager
}

// DefaultLoadOptions 默认加载选项
func DefaultLoadOptions() *LoadOptions {
	return &LoadOptions{
		Normalize:     true,
		UseMmap:       true,
		MmapThreshold: DefaultMmapThreshold,
	}
}

// Sequence 已加载的序列
type Sequence struct {
	Path        string                      // 文件路径
	Text        string                      // 序列文本
	Size        int64                       // 文件大小
	Compression compression.CompressionType // 检测到的压缩格式
	Mapped      bool                        // 是否经由内存映射读取
}

// LoadFile 读取序列文件
//
// 压缩格式优先按魔数识别，其次按扩展名；解压后的内容必须是合法 UTF-8。
func LoadFile(path string, opts *LoadOptions) (*Sequence, error) {
	if opts == nil {
		opts = DefaultLoadOptions()
	}
	cm := opts.Manager
	if cm == nil {
		cm = compression.NewCompressionManager()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, NewInputError("stat", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, NewInputError("load", path, ErrNotRegularFile)
	}

	seq := &Sequence{Path: path, Size: info.Size()}

	var raw []byte
	if opts.UseMmap && info.Size() >= opts.MmapThreshold {
		mf, err := OpenMapped(path)
		if err != nil {
			return nil, NewInputError("mmap", path, err)
		}
		defer mf.Close()
		raw = mf.Data()
		seq.Mapped = mf.Mapped()
	} else {
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, NewInputError("read", path, err)
		}
	}

	cType := cm.Detect(raw)
	if cType == compression.CompressionNone {
		cType = compression.TypeFromPath(path)
	}
	seq.Compression = cType

	data := raw
	if cType != compression.CompressionNone {
		data, err = decode(cm, cType, raw)
		if err != nil {
			return nil, NewInputError("decompress", path, err)
		}
	}

	s, err := toText(data, opts.Normalize)
	if err != nil {
		return nil, NewInputError("decode", path, err)
	}
	seq.Text = s
	return seq, nil
}

// LoadReader 从 r 读取序列（例如标准输入）
func LoadReader(r io.Reader, opts *LoadOptions) (*Sequence, error) {
	if opts == nil {
		opts = DefaultLoadOptions()
	}
	cm := opts.Manager
	if cm == nil {
		cm = compression.NewCompressionManager()
	}

	reader, cType, err := cm.NewReader(r)
	if err != nil {
		return nil, NewInputError("open stream", "", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, NewInputError("read stream", "", err)
	}

	s, err := toText(data, opts.Normalize)
	if err != nil {
		return nil, NewInputError("decode", "", err)
	}
	return &Sequence{Text: s, Size: int64(len(data)), Compression: cType}, nil
}

func decode(cm *compression.CompressionManager, cType compression.CompressionType, raw []byte) ([]byte, error) {
	codec, err := cm.GetCodec(cType)
	if err != nil {
		return nil, err
	}
	reader, err := codec.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, compression.NewCompressionError(cType, "decompress", err)
	}
	return data, nil
}

// toText 校验 UTF-8 并转换为字符串，data 可能指向映射内存，返回值总是独立副本
func toText(data []byte, normalize bool) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: first invalid byte at offset %d", ErrInvalidUTF8, firstInvalid(data))
	}
	if normalize {
		return text.NormalizeBytes(data), nil
	}
	return string(data), nil
}

func firstInvalid(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
