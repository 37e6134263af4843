package stats

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Number 是可以参与统计的数值类型
type Number interface {
	constraints.Integer | constraints.Float
}

// Sum 累加全部样本，结果统一用 float64 表示
func Sum[T Number](sample []T) float64 {
	var sum float64
	for _, v := range sample {
		sum += float64(v)
	}
	return sum
}

// Mean 算术平均值，空样本返回 NaN
func Mean[T Number](sample []T) float64 {
	if len(sample) == 0 {
		return math.NaN()
	}
	return Sum(sample) / float64(len(sample))
}

// Variance 样本方差（除以 n-1），样本数小于 2 时没有定义，返回 NaN
func Variance[T Number](sample []T) float64 {
	if len(sample) < 2 {
		return math.NaN()
	}
	mean := Mean(sample)
	var sq float64
	for _, v := range sample {
		d := float64(v) - mean
		sq += d * d
	}
	return sq / float64(len(sample)-1)
}

// SampleStdDev 样本标准差，样本数小于 2 时返回 NaN
func SampleStdDev[T Number](sample []T) float64 {
	return math.Sqrt(Variance(sample))
}
