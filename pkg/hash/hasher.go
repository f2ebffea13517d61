package hash

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"github.com/dchest/siphash"
	"github.com/spaolacci/murmur3"
)

// ErrUnknownKind 未知的哈希算法
var ErrUnknownKind = errors.New("unknown hash kind")

// Kind 哈希算法类型
type Kind uint8

const (
	KindBuiltin    Kind = iota // Go 运行时 map 自带的哈希
	KindFx                     // Fx 快速非加密哈希
	KindXXHash                 // xxHash64
	KindMurmur3                // MurmurHash3 64位
	KindSip                    // SipHash-2-4
	KindAdler32                // Adler-32 滚动哈希
	KindPolynomial             // 多项式滚动哈希
)

var kindNames = [...]string{
	KindBuiltin:    "builtin",
	KindFx:         "fx",
	KindXXHash:     "xxhash",
	KindMurmur3:    "murmur3",
	KindSip:        "sip",
	KindAdler32:    "adler32",
	KindPolynomial: "polynomial",
}

// String 返回哈希类型的字符串表示
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Unknown(%d)", k)
}

// Valid 检查哈希类型是否已定义
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// IsRolling 是否为滚动哈希
func (k Kind) IsRolling() bool {
	return k == KindAdler32 || k == KindPolynomial
}

// Kinds 返回全部哈希类型
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

// ParseKind 解析哈希类型名称
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Hasher 非滚动哈希接口，每个窗口重新计算
//
// Sum64String 与 Sum64 对相同字节返回相同值，且不复制窗口文本。
type Hasher interface {
	Sum64(p []byte) uint64
	Sum64String(s string) uint64
}

// funcHasher 由字节版与字符串版函数组成的 Hasher
type funcHasher struct {
	bytes func([]byte) uint64
	str   func(string) uint64
}

func (h funcHasher) Sum64(p []byte) uint64 {
	return h.bytes(p)
}

func (h funcHasher) Sum64String(s string) uint64 {
	return h.str(s)
}

// bytesHasher 只有字节版实现的哈希，字符串经只读视图传入
func bytesHasher(f func([]byte) uint64) Hasher {
	return funcHasher{
		bytes: f,
		str: func(s string) uint64 {
			return f(unsafe.Slice(unsafe.StringData(s), len(s)))
		},
	}
}

// fxSeed rustc Fx 哈希的乘数
const fxSeed = 0x517cc1b727220a95

func fxAdd(h, w uint64) uint64 {
	return (bits.RotateLeft64(h, 5) ^ w) * fxSeed
}

// FxHash 计算 Fx 哈希：按 8/4/2/1 字节分组折叠
func FxHash(p []byte) uint64 {
	return fxHash(p)
}

// FxHashString 对字符串计算 Fx 哈希，结果与 FxHash([]byte(s)) 相同
func FxHashString(s string) uint64 {
	return fxHash(s)
}

func fxHash[T string | []byte](p T) uint64 {
	var h uint64
	for len(p) >= 8 {
		h = fxAdd(h, le64(p))
		p = p[8:]
	}
	if len(p) >= 4 {
		h = fxAdd(h, le64(p[:4]))
		p = p[4:]
	}
	if len(p) >= 2 {
		h = fxAdd(h, le64(p[:2]))
		p = p[2:]
	}
	if len(p) >= 1 {
		h = fxAdd(h, uint64(p[0]))
	}
	return h
}

// le64 按小端序读取至多 8 个字节
func le64[T string | []byte](p T) uint64 {
	var v uint64
	for i := len(p) - 1; i >= 0; i-- {
		v = v<<8 | uint64(p[i])
	}
	return v
}

// Params 哈希参数
type Params struct {
	Kind    Kind
	Salt    uint64 // 多项式哈希盐值，必须大于1
	SipKey0 uint64 // SipHash 密钥
	SipKey1 uint64
}

// NewHasher 创建非滚动哈希器，KindBuiltin 返回 nil（由 map 自行哈希）
func (p Params) NewHasher() (Hasher, error) {
	switch p.Kind {
	case KindBuiltin:
		return nil, nil
	case KindFx:
		return funcHasher{bytes: FxHash, str: FxHashString}, nil
	case KindXXHash:
		return funcHasher{bytes: xxhash.Sum64, str: xxhash.Sum64String}, nil
	case KindMurmur3:
		return bytesHasher(murmur3.Sum64), nil
	case KindSip:
		k0, k1 := p.SipKey0, p.SipKey1
		return bytesHasher(func(b []byte) uint64 {
			return siphash.Hash(k0, k1, b)
		}), nil
	case KindAdler32, KindPolynomial:
		return nil, fmt.Errorf("hash kind %s is rolling", p.Kind)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, p.Kind)
	}
}

// NewRoller 创建滚动哈希器
func (p Params) NewRoller() (Roller, error) {
	switch p.Kind {
	case KindAdler32:
		return NewAdler32(), nil
	case KindPolynomial:
		if p.Salt < MinSalt {
			return nil, fmt.Errorf("polynomial salt must be greater than 1, got %d", p.Salt)
		}
		return NewPolynomialWithSalt(p.Salt), nil
	default:
		if !p.Kind.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownKind, p.Kind)
		}
		return nil, fmt.Errorf("hash kind %s is not rolling", p.Kind)
	}
}
