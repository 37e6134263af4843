package percolation

import (
	"fmt"

	"percolation_tool/pkg/unionfind"

	"github.com/mohae/deepcopy"
)

// DisjointSet 是模型依赖的并查集能力，只需要合并和连通查询
// 任何带路径压缩的加权并查集都可以替换进来
type DisjointSet interface {
	Union(x, y int) bool
	Connected(x, y int) bool
}

// DisjointSetFactory 按元素个数创建一个并查集
type DisjointSetFactory func(size int) DisjointSet

// DefaultDisjointSet 使用 pkg/unionfind 的实现
func DefaultDisjointSet(size int) DisjointSet {
	return unionfind.NewUnionFind(size)
}

// SiteState 描述一个格点在快照中的状态
type SiteState int

const (
	Blocked SiteState = iota // 0 未打开
	Open                     // 1 已打开但没有连到顶部
	Full                     // 2 已打开且连到顶部
)

func (s SiteState) String() string {
	switch s {
	case Blocked:
		return "blocked"
	case Open:
		return "open"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("SiteState(%d)", int(s))
	}
}

// Option 用于定制模型
type Option func(*options)

type options struct {
	newSet DisjointSetFactory
}

// WithDisjointSet 替换默认的并查集实现
func WithDisjointSet(factory DisjointSetFactory) Option {
	return func(o *options) {
		if factory != nil {
			o.newSet = factory
		}
	}
}

// Model 是 N×N 的渗透模型
//
// 格点 (row, col) 在并查集里的编号是 row*N + col，两个虚拟节点排在所有格点之后：
// virtualTop = N²，virtualBottom = N²+1。
//
// fullUnion 同时挂了虚拟顶和虚拟底，只用来回答 Percolates；
// topUnion 只有虚拟顶，用来回答 IsFull。底部格点在 topUnion 里不会经由虚拟底互相连通，
// 所以不会出现“回流”（backwash）误判。
//
// Model 不是并发安全的，每次试验各自创建一个实例。
type Model struct {
	n         int
	grid      [][]bool
	openSites int

	fullUnion DisjointSet // N²+2 个元素
	topUnion  DisjointSet // N²+1 个元素，没有虚拟底

	virtualTop    int
	virtualBottom int
}

// New 创建一个全部封闭的 N×N 网格，n <= 0 时返回 ErrInvalidArgument
func New(n int, opts ...Option) (*Model, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: 网格边长必须为正数, 实际为 %d", ErrInvalidArgument, n)
	}

	o := options{newSet: DefaultDisjointSet}
	for _, opt := range opts {
		opt(&o)
	}

	grid := make([][]bool, n)
	for i := range grid {
		grid[i] = make([]bool, n)
	}

	sites := n * n
	return &Model{
		n:             n,
		grid:          grid,
		fullUnion:     o.newSet(sites + 2),
		topUnion:      o.newSet(sites + 1),
		virtualTop:    sites,
		virtualBottom: sites + 1,
	}, nil
}

// 越界检查放在所有操作的最前面，失败时不会改动任何状态
func (m *Model) checkBounds(row, col int) error {
	if row < 0 || row >= m.n {
		return fmt.Errorf("%w: 行 %d 必须在 [0, %d) 范围内", ErrOutOfRange, row, m.n)
	}
	if col < 0 || col >= m.n {
		return fmt.Errorf("%w: 列 %d 必须在 [0, %d) 范围内", ErrOutOfRange, col, m.n)
	}
	return nil
}

// Index 把二维坐标换算成并查集编号（行优先）
func (m *Model) Index(row, col int) int {
	return row*m.n + col
}

// Open 打开格点 (row, col)，已经打开的格点重复调用什么也不做
func (m *Model) Open(row, col int) error {
	if err := m.checkBounds(row, col); err != nil {
		return err
	}
	if m.grid[row][col] {
		return nil
	}

	m.grid[row][col] = true
	m.openSites++

	site := m.Index(row, col)

	// 顶行两个结构都挂虚拟顶；底行只在 fullUnion 里挂虚拟底
	if row == 0 {
		m.union(site, m.virtualTop)
	}
	if row == m.n-1 {
		m.fullUnion.Union(site, m.virtualBottom)
	}

	// 上下左右四个邻居，只和已经打开的合并
	neighbors := [4][2]int{{row - 1, col}, {row + 1, col}, {row, col - 1}, {row, col + 1}}
	for _, nb := range neighbors {
		r, c := nb[0], nb[1]
		if r < 0 || r >= m.n || c < 0 || c >= m.n || !m.grid[r][c] {
			continue
		}
		m.union(site, m.Index(r, c))
	}
	return nil
}

// 两个结构同步合并
func (m *Model) union(a, b int) {
	m.fullUnion.Union(a, b)
	m.topUnion.Union(a, b)
}

// IsOpen 查询格点是否打开
func (m *Model) IsOpen(row, col int) (bool, error) {
	if err := m.checkBounds(row, col); err != nil {
		return false, err
	}
	return m.grid[row][col], nil
}

// IsFull 查询格点是否通过打开的格点连到顶行
// 封闭的格点从来没有参与过合并，所以天然返回 false
func (m *Model) IsFull(row, col int) (bool, error) {
	if err := m.checkBounds(row, col); err != nil {
		return false, err
	}
	return m.topUnion.Connected(m.Index(row, col), m.virtualTop), nil
}

// Percolates 判断顶行和底行是否已经连通，一旦为 true 之后一直为 true
func (m *Model) Percolates() bool {
	return m.fullUnion.Connected(m.virtualTop, m.virtualBottom)
}

// NumberOfOpenSites 返回已打开的格点数
func (m *Model) NumberOfOpenSites() int {
	return m.openSites
}

// Size 返回网格边长 N
func (m *Model) Size() int {
	return m.n
}

// OpenFlags 返回打开标记的深拷贝，调用方随便改都不会影响模型
func (m *Model) OpenFlags() [][]bool {
	return deepcopy.Copy(m.grid).([][]bool)
}

// Snapshot 返回当前网格每个格点的状态
func (m *Model) Snapshot() [][]SiteState {
	openFlags := m.OpenFlags()

	snap := make([][]SiteState, m.n)
	for row := range openFlags {
		snap[row] = make([]SiteState, m.n)
		for col, isOpen := range openFlags[row] {
			switch {
			case !isOpen:
				snap[row][col] = Blocked
			case m.topUnion.Connected(m.Index(row, col), m.virtualTop):
				snap[row][col] = Full
			default:
				snap[row][col] = Open
			}
		}
	}
	return snap
}
