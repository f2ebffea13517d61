package compression

import (
	"io"

	"github.com/ulikunitz/xz"
)

// XZCodec XZ编解码器，压缩级别被忽略
type XZCodec struct{}

// GetType 获取压缩类型
func (XZCodec) GetType() CompressionType {
	return CompressionXZ
}

// Magic xz 流头魔数
func (XZCodec) Magic() []byte {
	return []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
}

// NewReader 创建解压读取器
func (XZCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	reader, err := xz.NewReader(r)
	if err != nil {
		return nil, NewCompressionError(CompressionXZ, "create xz reader", err)
	}
	return io.NopCloser(reader), nil
}

// NewWriter 创建压缩写入器
func (XZCodec) NewWriter(w io.Writer, _ CompressionLevel) (io.WriteCloser, error) {
	writer, err := xz.NewWriter(w)
	if err != nil {
		return nil, NewCompressionError(CompressionXZ, "create xz writer", err)
	}
	return writer, nil
}
