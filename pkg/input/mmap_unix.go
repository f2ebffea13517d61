//go:build unix

package input

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MappedFile 只读内存映射文件
type MappedFile struct {
	file   *os.File
	data   []byte
	mapped bool
}

// OpenMapped 以只读方式映射文件，空文件不映射
func OpenMapped(filePath string) (*MappedFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	size := info.Size()
	if size == 0 {
		return &MappedFile{file: file}, nil
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("mmap file: %w", err)
	}

	return &MappedFile{
		file:   file,
		data:   data,
		mapped: true,
	}, nil
}

// Data 获取映射的数据，Close 之后不可再访问
func (mf *MappedFile) Data() []byte {
	return mf.data
}

// Mapped 是否真正进行了内存映射
func (mf *MappedFile) Mapped() bool {
	return mf.mapped
}

// Close 解除映射并关闭文件
func (mf *MappedFile) Close() error {
	var err error

	if mf.mapped && mf.data != nil {
		if unmapErr := unix.Munmap(mf.data); unmapErr != nil {
			err = fmt.Errorf("munmap: %w", unmapErr)
		}
		mf.data = nil
		mf.mapped = false
	}

	if mf.file != nil {
		if closeErr := mf.file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close file: %w", closeErr)
		}
		mf.file = nil
	}

	return err
}
