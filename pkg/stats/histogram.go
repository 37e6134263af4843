package stats

import (
	"fmt"
	"math"

	rbt "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
)

// Bucket 是直方图中的一个区间 [Low, High)，最后一个区间包含右端点
type Bucket struct {
	Low   float64
	High  float64
	Count int
}

// Histogram 在 [0, 1] 上按等宽分桶计数，只记录非空的桶
// 桶编号作为红黑树的键，遍历天然有序
type Histogram struct {
	buckets int
	tree    *rbt.Tree
	total   int
	dropped int
}

// NewHistogram 创建 buckets 个等宽桶
func NewHistogram(buckets int) (*Histogram, error) {
	if buckets <= 0 {
		return nil, fmt.Errorf("stats: 桶数必须为正数, 实际为 %d", buckets)
	}
	return &Histogram{buckets: buckets, tree: rbt.NewWith(utils.IntComparator)}, nil
}

// Add 记录一个样本，[0, 1] 以外的值和 NaN 只计入 Dropped
func (h *Histogram) Add(v float64) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		h.dropped++
		return
	}
	idx := int(v * float64(h.buckets))
	if idx == h.buckets {
		idx--
	}
	count := 0
	if old, found := h.tree.Get(idx); found {
		count = old.(int)
	}
	h.tree.Put(idx, count+1)
	h.total++
}

// Total 已计入桶的样本数
func (h *Histogram) Total() int {
	return h.total
}

// Dropped 被丢弃的样本数
func (h *Histogram) Dropped() int {
	return h.dropped
}

// Buckets 按区间升序返回非空的桶
func (h *Histogram) Buckets() []Bucket {
	width := 1 / float64(h.buckets)
	out := make([]Bucket, 0, h.tree.Size())
	it := h.tree.Iterator()
	for it.Next() {
		idx := it.Key().(int)
		out = append(out, Bucket{
			Low:   float64(idx) * width,
			High:  float64(idx+1) * width,
			Count: it.Value().(int),
		})
	}
	return out
}
