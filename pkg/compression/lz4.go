package compression

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4Codec LZ4帧格式编解码器
type LZ4Codec struct{}

// GetType 获取压缩类型
func (LZ4Codec) GetType() CompressionType {
	return CompressionLZ4
}

// Magic LZ4 帧魔数
func (LZ4Codec) Magic() []byte {
	return []byte{0x04, 0x22, 0x4d, 0x18}
}

// NewReader 创建解压读取器
func (LZ4Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

// NewWriter 创建压缩写入器
func (LZ4Codec) NewWriter(w io.Writer, level CompressionLevel) (io.WriteCloser, error) {
	writer := lz4.NewWriter(w)

	var l lz4.CompressionLevel
	switch {
	case level <= LevelFastest:
		l = lz4.Fast
	case level <= LevelFast:
		l = lz4.Level3
	case level <= LevelDefault:
		l = lz4.Level6
	default:
		l = lz4.Level9
	}

	if err := writer.Apply(lz4.CompressionLevelOption(l)); err != nil {
		return nil, NewCompressionError(CompressionLZ4, "configure lz4 writer", err)
	}
	return writer, nil
}
