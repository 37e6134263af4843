package randutil

import (
	"fmt"
	"math/rand/v2"
)

// Source 提供 [lo, hi) 范围内均匀分布的随机整数
type Source interface {
	IntN(lo, hi int) int
}

// Uniform 是基于 PCG 的随机源，同一个 (seed, stream) 总是得到同一串结果
// 不是并发安全的，每个 goroutine 各用一个
type Uniform struct {
	rng *rand.Rand
}

// NewUniform 创建随机源，stream 用来区分同一个种子下的不同序列（比如试验编号）
func NewUniform(seed, stream uint64) *Uniform {
	return &Uniform{rng: rand.New(rand.NewPCG(seed, stream))}
}

// IntN 返回 [lo, hi) 范围内的随机整数，hi <= lo 属于调用错误
func (u *Uniform) IntN(lo, hi int) int {
	if hi <= lo {
		panic(fmt.Sprintf("randutil: 区间 [%d, %d) 为空", lo, hi))
	}
	return lo + u.rng.IntN(hi-lo)
}

// NewSeed 从运行时的随机源取一个新种子
func NewSeed() uint64 {
	return rand.Uint64()
}
