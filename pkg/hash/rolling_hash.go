package hash

import (
	"math/rand/v2"
)

const (
	// adlerMod Adler-32 的模数（小于 2^16 的最大素数）
	adlerMod = 65521

	// MinSalt 多项式哈希允许的最小盐值
	MinSalt = 2
	// maxRandomSalt 随机盐值上界（不含）。盐值作为幂的底数，取单字节范围即可
	maxRandomSalt = 256
)

// Roller 滚动哈希接口
//
// Init 以初始窗口的字节重新开始计算；Update 吸收一个新进入窗口的字节；
// Remove 撤销窗口最前端字节 b 的贡献，windowLen 为移除时当前窗口的字节长度
// （b 位于窗口开头）。调用方必须按字节数而不是字符数传递窗口长度。
type Roller interface {
	Init(p []byte)
	Update(b byte)
	Remove(windowLen int, b byte)
	Hash() uint64
}

// Adler32 校验和式滚动哈希
//
// 两个累加器 a（字节和）与 b（加权和）均对 65521 取模，Hash 返回 b<<16|a，
// 与标准 Adler-32 校验和一致。
type Adler32 struct {
	a, b uint32
}

// NewAdler32 创建Adler-32滚动哈希
func NewAdler32() *Adler32 {
	return &Adler32{a: 1}
}

// Init 以给定缓冲区重置哈希
func (ah *Adler32) Init(p []byte) {
	ah.a, ah.b = 1, 0
	for _, x := range p {
		ah.Update(x)
	}
}

// Update 添加字节到窗口末尾
func (ah *Adler32) Update(x byte) {
	ah.a = (ah.a + uint32(x)) % adlerMod
	ah.b = (ah.b + ah.a) % adlerMod
}

// Remove 从窗口开头移除字节
//
// 该字节对 b 的贡献是 windowLen*x（外加初始 a 值带来的 1），
// windowLen 必须是移除时的窗口长度，而不是它被加入时的长度。
func (ah *Adler32) Remove(windowLen int, x byte) {
	v := uint32(x)
	n := uint32(windowLen % adlerMod)
	ah.a = (ah.a + adlerMod - v) % adlerMod
	ah.b = (ah.b + adlerMod - 1 + ((adlerMod-n)*v)%adlerMod) % adlerMod
}

// Hash 获取Adler-32哈希值
func (ah *Adler32) Hash() uint64 {
	return uint64(ah.b)<<16 | uint64(ah.a)
}

// Polynomial 多项式滚动哈希
//
// hash = b1*salt^(l-1) + b2*salt^(l-2) + ... + bl，运算按 uint64 回绕，
// 即隐式对 2^64 取模。
type Polynomial struct {
	hash uint64
	salt uint64
	pows []uint64 // pows[i] = salt^i
}

// NewPolynomialWithSalt 使用指定盐值创建多项式滚动哈希
func NewPolynomialWithSalt(salt uint64) *Polynomial {
	if salt < MinSalt {
		panic("hash: polynomial salt must be greater than 1")
	}
	return &Polynomial{
		salt: salt,
		pows: []uint64{1},
	}
}

// NewPolynomial 从随机源采样盐值创建多项式滚动哈希，r 为 nil 时使用全局随机源
func NewPolynomial(r *rand.Rand) *Polynomial {
	return NewPolynomialWithSalt(RandomSalt(r))
}

// RandomSalt 采样 [2, 256) 范围内的盐值，0 和 1 会让哈希退化
func RandomSalt(r *rand.Rand) uint64 {
	if r == nil {
		return MinSalt + rand.Uint64N(maxRandomSalt-MinSalt)
	}
	return MinSalt + r.Uint64N(maxRandomSalt-MinSalt)
}

// Init 以给定缓冲区重置哈希
func (p *Polynomial) Init(buf []byte) {
	p.hash = 0
	for _, b := range buf {
		p.Update(b)
	}
}

// Update 添加字节到窗口末尾
func (p *Polynomial) Update(b byte) {
	p.hash = p.hash*p.salt + uint64(b)
}

// Remove 从窗口开头移除字节
func (p *Polynomial) Remove(windowLen int, b byte) {
	if windowLen < 1 {
		panic("hash: window length must be positive")
	}
	p.hash -= uint64(b) * p.pow(windowLen-1)
}

// Hash 获取当前哈希值
func (p *Polynomial) Hash() uint64 {
	return p.hash
}

// Salt 返回盐值
func (p *Polynomial) Salt() uint64 {
	return p.salt
}

// pow 返回 salt^e，按需扩展缓存使得每次移除摊还 O(1)
func (p *Polynomial) pow(e int) uint64 {
	for len(p.pows) <= e {
		p.pows = append(p.pows, p.pows[len(p.pows)-1]*p.salt)
	}
	return p.pows[e]
}
