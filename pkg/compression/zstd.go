package compression

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// ZstdCodec Zstd编解码器
type ZstdCodec struct {
	MaxMemory uint64 // 解码最大内存，0 使用默认值
}

// GetType 获取压缩类型
func (ZstdCodec) GetType() CompressionType {
	return CompressionZstd
}

// Magic zstd 帧魔数
func (ZstdCodec) Magic() []byte {
	return []byte{0x28, 0xb5, 0x2f, 0xfd}
}

// NewReader 创建解压读取器
func (zc ZstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	maxMemory := zc.MaxMemory
	if maxMemory == 0 {
		maxMemory = 1 << 30 // 1GB
	}

	decoder, err := zstd.NewReader(r,
		zstd.WithDecoderMaxMemory(maxMemory),
		zstd.WithDecoderConcurrency(1),
	)
	if err != nil {
		return nil, NewCompressionError(CompressionZstd, "create zstd decoder", err)
	}
	return decoder.IOReadCloser(), nil
}

// NewWriter 创建压缩写入器
func (ZstdCodec) NewWriter(w io.Writer, level CompressionLevel) (io.WriteCloser, error) {
	var speed zstd.EncoderLevel
	switch {
	case level <= LevelFastest:
		speed = zstd.SpeedFastest
	case level <= LevelDefault:
		speed = zstd.SpeedDefault
	case level <= LevelBest:
		speed = zstd.SpeedBetterCompression
	default:
		speed = zstd.SpeedBestCompression
	}

	encoder, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(speed),
		zstd.WithEncoderCRC(true),
	)
	if err != nil {
		return nil, NewCompressionError(CompressionZstd, "create zstd encoder", err)
	}
	return encoder, nil
}
