package compression

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sync"
)

// CompressionManager 压缩管理器
type CompressionManager struct {
	codecs map[CompressionType]Codec
	mutex  sync.RWMutex
}

// NewCompressionManager 创建注册了全部内置编解码器的压缩管理器
func NewCompressionManager() *CompressionManager {
	cm := &CompressionManager{
		codecs: make(map[CompressionType]Codec),
	}

	cm.Register(GzipCodec{})
	cm.Register(LZ4Codec{})
	cm.Register(ZstdCodec{})
	cm.Register(XZCodec{})

	return cm
}

// Register 注册编解码器
func (cm *CompressionManager) Register(codec Codec) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	cm.codecs[codec.GetType()] = codec
}

// GetCodec 获取编解码器
func (cm *CompressionManager) GetCodec(cType CompressionType) (Codec, error) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	codec, exists := cm.codecs[cType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, cType)
	}
	return codec, nil
}

// Detect 根据数据开头的魔数识别压缩类型
func (cm *CompressionManager) Detect(header []byte) CompressionType {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	for t, codec := range cm.codecs {
		if bytes.HasPrefix(header, codec.Magic()) {
			return t
		}
	}
	return CompressionNone
}

// maxMagicLen 魔数最大长度
const maxMagicLen = 8

// NewReader 识别 r 的压缩格式并返回解压后的读取器
func (cm *CompressionManager) NewReader(r io.Reader) (io.ReadCloser, CompressionType, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(maxMagicLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, CompressionNone, err
	}

	cType := cm.Detect(header)
	if cType == CompressionNone {
		return io.NopCloser(br), CompressionNone, nil
	}

	codec, err := cm.GetCodec(cType)
	if err != nil {
		return nil, cType, err
	}
	reader, err := codec.NewReader(br)
	if err != nil {
		return nil, cType, err
	}
	return reader, cType, nil
}

// NewWriter 创建指定类型的压缩写入器，CompressionNone 时直接写入 w
func (cm *CompressionManager) NewWriter(w io.Writer, cType CompressionType, level CompressionLevel) (io.WriteCloser, error) {
	if cType == CompressionNone {
		return nopWriteCloser{w}, nil
	}

	codec, err := cm.GetCodec(cType)
	if err != nil {
		return nil, err
	}
	return codec.NewWriter(w, level)
}

// Decompress 自动识别格式并解压数据
func (cm *CompressionManager) Decompress(data []byte) ([]byte, CompressionType, error) {
	reader, cType, err := cm.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, cType, err
	}
	defer reader.Close()

	if cType == CompressionNone {
		return data, cType, nil
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, cType, NewCompressionError(cType, "decompress", err)
	}
	return buf.Bytes(), cType, nil
}

// Compress 压缩数据
func (cm *CompressionManager) Compress(data []byte, cType CompressionType, level CompressionLevel) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := cm.NewWriter(&buf, cType, level)
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, NewCompressionError(cType, "write", err)
	}
	if err := writer.Close(); err != nil {
		return nil, NewCompressionError(cType, "close writer", err)
	}
	return buf.Bytes(), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
