package match

import (
	"errors"
	"fmt"
)

// 配置相关错误
var (
	ErrInvalidStrategy = errors.New("invalid match strategy")
	ErrInvalidHashKind = errors.New("invalid hash kind")
	ErrInvalidSalt     = errors.New("invalid salt: must be 0 (random) or greater than 1")
	ErrUnusedSalt      = errors.New("salt is only used by the polynomial hash")
)

// InvariantError 内部一致性错误
//
// 只有提取器或引擎自身存在缺陷时才会出现，以 panic 抛出，不属于返回的错误类型。
type InvariantError struct {
	Seq    int    // 序列编号
	Want   int    // 期望窗口数
	Got    int    // 实际窗口数
	Reason string // 违反的约束
}

// Error 实现error接口
func (e *InvariantError) Error() string {
	return fmt.Sprintf("match invariant violated on sequence %d: %s (want %d windows, got %d)",
		e.Seq, e.Reason, e.Want, e.Got)
}

func invariant(seq, want, got int, reason string) {
	panic(&InvariantError{Seq: seq, Want: want, Got: got, Reason: reason})
}
