package stats

import (
	"math"

	"github.com/google/btree"
)

// 同值的样本靠插入序号区分，保证重复值都能留在树里
type entry struct {
	value float64
	seq   int
}

func entryLess(a, b entry) bool {
	if a.value != b.value {
		return a.value < b.value
	}
	return a.seq < b.seq
}

// Ordered 是按值排序的样本集合，用于取最小值、最大值和分位数
type Ordered struct {
	tree *btree.BTreeG[entry]
	seq  int
}

// NewOrdered 用已有样本构造
func NewOrdered(sample []float64) *Ordered {
	o := &Ordered{tree: btree.NewG(16, entryLess)}
	for _, v := range sample {
		o.Add(v)
	}
	return o
}

// Add 插入一个样本
func (o *Ordered) Add(v float64) {
	o.tree.ReplaceOrInsert(entry{value: v, seq: o.seq})
	o.seq++
}

// Len 样本数
func (o *Ordered) Len() int {
	return o.tree.Len()
}

// Min 最小值，空集合返回 NaN
func (o *Ordered) Min() float64 {
	e, ok := o.tree.Min()
	if !ok {
		return math.NaN()
	}
	return e.value
}

// Max 最大值，空集合返回 NaN
func (o *Ordered) Max() float64 {
	e, ok := o.tree.Max()
	if !ok {
		return math.NaN()
	}
	return e.value
}

// Quantile 最近秩法分位数，q 超出 [0, 1] 或集合为空时返回 NaN
func (o *Ordered) Quantile(q float64) float64 {
	n := o.tree.Len()
	if n == 0 || q < 0 || q > 1 || math.IsNaN(q) {
		return math.NaN()
	}
	rank := int(math.Ceil(q * float64(n)))
	if rank < 1 {
		rank = 1
	}

	var (
		result float64
		i      int
	)
	o.tree.Ascend(func(e entry) bool {
		i++
		if i == rank {
			result = e.value
			return false
		}
		return true
	})
	return result
}

// Median 中位数（最近秩法）
func (o *Ordered) Median() float64 {
	return o.Quantile(0.5)
}
