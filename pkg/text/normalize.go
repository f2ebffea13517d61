// Package text 提供匹配前的文本预处理
package text

import "strings"

// Normalize 去除全部 \r 与 \n，并把连续空格压缩为一个空格
//
// 先去除换行再压缩空格，因此 " \r " 也会变成 " "。
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	prevSpace := false
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == '\r' || b == '\n' {
			continue
		}
		if b == ' ' && prevSpace {
			continue
		}
		prevSpace = b == ' '
		sb.WriteByte(b)
	}
	return sb.String()
}

// NormalizeBytes 对字节切片进行同样的预处理
func NormalizeBytes(p []byte) string {
	return Normalize(string(p))
}
