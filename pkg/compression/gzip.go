package compression

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// GzipCodec Gzip编解码器
type GzipCodec struct{}

// GetType 获取压缩类型
func (GzipCodec) GetType() CompressionType {
	return CompressionGzip
}

// Magic gzip 魔数
func (GzipCodec) Magic() []byte {
	return []byte{0x1f, 0x8b}
}

// NewReader 创建解压读取器
func (GzipCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	reader, err := gzip.NewReader(r)
	if err != nil {
		return nil, NewCompressionError(CompressionGzip, "create gzip reader", err)
	}
	return reader, nil
}

// NewWriter 创建压缩写入器
func (GzipCodec) NewWriter(w io.Writer, level CompressionLevel) (io.WriteCloser, error) {
	l := int(level)
	if l > gzip.BestCompression {
		l = gzip.BestCompression
	}
	if l < gzip.BestSpeed {
		l = gzip.DefaultCompression
	}

	writer, err := gzip.NewWriterLevel(w, l)
	if err != nil {
		return nil, NewCompressionError(CompressionGzip, "create gzip writer", err)
	}
	return writer, nil
}
