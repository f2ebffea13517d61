package input

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// WalkConfig 语料目录遍历配置
type WalkConfig struct {
	Recursive      bool     // 递归子目录
	IgnoreHidden   bool     // 忽略隐藏文件与目录
	IgnorePatterns []string // 忽略模式（通配符或路径前缀）
	FollowSymlinks bool     // 跟随符号链接
}

// DefaultWalkConfig 默认遍历配置
func DefaultWalkConfig() *WalkConfig {
	return &WalkConfig{
		Recursive:    true,
		IgnoreHidden: true,
	}
}

// CorpusFile 语料文件
type CorpusFile struct {
	Path         string // 绝对路径
	RelativePath string // 相对语料根目录的路径（使用 / 分隔）
	Category     string // 第一级子目录名，根目录下的文件为空
	Size         int64  // 文件大小
}

// WalkCorpus 遍历语料目录，按相对路径排序返回文件列表
func WalkCorpus(dirPath string, config *WalkConfig) ([]CorpusFile, error) {
	if config == nil {
		config = DefaultWalkConfig()
	}

	absDir, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, NewInputError("abs path", dirPath, err)
	}

	var files []CorpusFile
	err = filepath.Walk(absDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(absDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if config.IgnoreHidden && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if shouldIgnore(relPath, config.IgnorePatterns) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if !config.Recursive {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			if !config.FollowSymlinks {
				return nil
			}
			target, err := os.Stat(path)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
			info = target
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		category := ""
		if i := strings.IndexByte(relPath, '/'); i >= 0 {
			category = relPath[:i]
		}

		files = append(files, CorpusFile{
			Path:         path,
			RelativePath: relPath,
			Category:     category,
			Size:         info.Size(),
		})
		return nil
	})

	if err != nil {
		return nil, NewInputError("walk directory", dirPath, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})
	return files, nil
}

// shouldIgnore 检查路径是否应该被忽略
//
// 模式可以是作用于文件名的通配符（如 "*.gz"），也可以是文件名或路径前缀。
func shouldIgnore(path string, patterns []string) bool {
	base := filepath.Base(path)

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if base == pattern || path == pattern || strings.HasPrefix(path, pattern+"/") {
			return true
		}
	}

	return false
}

// Categories 按类别分组语料文件
func Categories(files []CorpusFile) map[string][]CorpusFile {
	groups := make(map[string][]CorpusFile)
	for _, f := range files {
		groups[f.Category] = append(groups[f.Category], f)
	}
	return groups
}

// CategoryNames 返回排序后的类别名
func CategoryNames(groups map[string][]CorpusFile) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pair 一对语料文件
type Pair struct {
	First  CorpusFile
	Second CorpusFile
}

// Pairs 返回 files 中所有无序文件对，顺序稳定
func Pairs(files []CorpusFile) []Pair {
	var pairs []Pair
	for i := 0; i < len(files); i++ {
		for j := i + 1; j < len(files); j++ {
			pairs = append(pairs, Pair{First: files[i], Second: files[j]})
		}
	}
	return pairs
}
