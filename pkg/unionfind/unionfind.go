package unionfind

import "fmt"

// UnionFind 是并查集结构，支持路径压缩和按秩合并
// 元素范围固定为 [0, n)，构造之后不能扩容
type UnionFind struct {
	parent []int
	rank   []int
	size   []int // 每个集合的大小，只在根节点上有效
	count  int   // 当前不相交集合的数量
}

// NewUnionFind 初始化并查集，元素范围为 [0, n)
// n 为 0 时得到一个空的并查集，负数直接 panic
func NewUnionFind(n int) *UnionFind {
	if n < 0 {
		panic(fmt.Sprintf("unionfind: 元素个数不能为负数: %d", n))
	}
	parent := make([]int, n)
	rank := make([]int, n)
	size := make([]int, n)
	for i := range parent {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{parent: parent, rank: rank, size: size, count: n}
}

// 越界属于调用方的编程错误，直接 panic 并带上范围信息
func (uf *UnionFind) validate(x int) {
	if x < 0 || x >= len(uf.parent) {
		panic(fmt.Sprintf("unionfind: 元素 %d 不在 [0, %d) 范围内", x, len(uf.parent)))
	}
}

// Find 查找元素所在集合的根节点（带路径压缩）
// 用迭代代替递归，避免大网格下链条过长时栈太深
func (uf *UnionFind) Find(x int) int {
	uf.validate(x)
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	// 第二遍把路径上的节点都直接挂到根上
	for uf.parent[x] != root {
		next := uf.parent[x]
		uf.parent[x] = root
		x = next
	}
	return root
}

// Union 合并两个集合（按秩优化）
// 已经在同一个集合时返回 false，重复调用没有副作用
func (uf *UnionFind) Union(x, y int) bool {
	rootX := uf.Find(x)
	rootY := uf.Find(y)
	if rootX == rootY {
		return false
	}

	switch {
	case uf.rank[rootX] < uf.rank[rootY]:
		uf.parent[rootX] = rootY
		uf.size[rootY] += uf.size[rootX]
	case uf.rank[rootX] > uf.rank[rootY]:
		uf.parent[rootY] = rootX
		uf.size[rootX] += uf.size[rootY]
	default:
		uf.parent[rootY] = rootX
		uf.rank[rootX]++
		uf.size[rootX] += uf.size[rootY]
	}
	uf.count--
	return true
}

// Connected 判断两个元素是否在同一个集合
func (uf *UnionFind) Connected(x, y int) bool {
	return uf.Find(x) == uf.Find(y)
}

// Size 返回某个集合的大小
func (uf *UnionFind) Size(x int) int {
	return uf.size[uf.Find(x)]
}

// Count 返回当前不相交集合的数量
func (uf *UnionFind) Count() int {
	return uf.count
}

// Len 返回元素总数
func (uf *UnionFind) Len() int {
	return len(uf.parent)
}
