//go:build !unix

package input

import (
	"fmt"
	"os"
)

// MappedFile 不支持内存映射的平台上退化为整体读取
type MappedFile struct {
	data []byte
}

// OpenMapped 读取整个文件
func OpenMapped(filePath string) (*MappedFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return &MappedFile{data: data}, nil
}

// Data 获取文件数据
func (mf *MappedFile) Data() []byte {
	return mf.data
}

// Mapped 始终为 false
func (mf *MappedFile) Mapped() bool {
	return false
}

// Close 释放数据
func (mf *MappedFile) Close() error {
	mf.data = nil
	return nil
}
