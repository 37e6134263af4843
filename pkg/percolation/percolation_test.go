package percolation_test

import (
	"testing"

	"percolation_tool/internal/testutils"
	"percolation_tool/pkg/percolation"
	"percolation_tool/pkg/unionfind"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Site = testutils.Site

func newModel(t *testing.T, n int) *percolation.Model {
	t.Helper()
	m, err := percolation.New(n)
	require.NoError(t, err)
	return m
}

func TestNewInvalidSize(t *testing.T) {
	for _, n := range []int{0, -1, -5} {
		m, err := percolation.New(n)
		assert.Nil(t, m)
		assert.ErrorIs(t, err, percolation.ErrInvalidArgument, "n=%d", n)
	}
}

func TestFreshModel(t *testing.T) {
	for _, n := range []int{1, 2, 5, 20} {
		m := newModel(t, n)
		assert.Equal(t, 0, m.NumberOfOpenSites())
		assert.False(t, m.Percolates(), "n=%d 新建网格不应渗透", n)
		assert.Equal(t, n, m.Size())

		for row := 0; row < n; row++ {
			for col := 0; col < n; col++ {
				open, err := m.IsOpen(row, col)
				require.NoError(t, err)
				assert.False(t, open)
				full, err := m.IsFull(row, col)
				require.NoError(t, err)
				assert.False(t, full)
			}
		}
	}
}

func TestOpenIdempotent(t *testing.T) {
	m := newModel(t, 4)

	require.NoError(t, m.Open(1, 2))
	open, err := m.IsOpen(1, 2)
	require.NoError(t, err)
	assert.True(t, open)
	assert.Equal(t, 1, m.NumberOfOpenSites())

	// 重复打开不改变计数
	require.NoError(t, m.Open(1, 2))
	open, _ = m.IsOpen(1, 2)
	assert.True(t, open)
	assert.Equal(t, 1, m.NumberOfOpenSites())
}

func TestOutOfRange(t *testing.T) {
	for _, n := range []int{1, 3, 10} {
		m := newModel(t, n)

		tests := []struct {
			name string
			call func() error
		}{
			{"open row -1", func() error { return m.Open(-1, 0) }},
			{"open row N", func() error { return m.Open(n, 0) }},
			{"open col N", func() error { return m.Open(0, n) }},
			{"isOpen col -1", func() error { _, err := m.IsOpen(0, -1); return err }},
			{"isOpen col N", func() error { _, err := m.IsOpen(0, n); return err }},
			{"isFull row N", func() error { _, err := m.IsFull(n, 0); return err }},
			{"isFull col -1", func() error { _, err := m.IsFull(0, -1); return err }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.ErrorIs(t, tt.call(), percolation.ErrOutOfRange)
			})
		}

		// 失败的调用不应改动任何状态
		assert.Equal(t, 0, m.NumberOfOpenSites())
		assert.False(t, m.Percolates())
	}
}

func TestSingleSiteGrid(t *testing.T) {
	m := newModel(t, 1)
	require.NoError(t, m.Open(0, 0))

	// 唯一的格点既是顶行也是底行
	assert.True(t, m.Percolates())
	full, err := m.IsFull(0, 0)
	require.NoError(t, err)
	assert.True(t, full)
	assert.Equal(t, 1, m.NumberOfOpenSites())
}

func TestFullSaturationPercolates(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 16} {
		m := newModel(t, n)
		testutils.OpenAll(t, m)
		assert.True(t, m.Percolates(), "n=%d", n)
		assert.Equal(t, n*n, m.NumberOfOpenSites())
	}
}

func TestVerticalPath(t *testing.T) {
	m := newModel(t, 3)

	testutils.OpenSites(t, m, Site{Row: 0, Col: 1}, Site{Row: 1, Col: 1})
	assert.False(t, m.Percolates())
	full, _ := m.IsFull(1, 1)
	assert.True(t, full)

	testutils.OpenSites(t, m, Site{Row: 2, Col: 1})
	assert.True(t, m.Percolates())
}

func TestZigZagPath(t *testing.T) {
	m := newModel(t, 4)

	// 左右相邻的合并也要生效
	testutils.OpenSites(t, m,
		Site{Row: 0, Col: 0}, Site{Row: 1, Col: 0}, Site{Row: 1, Col: 1}, Site{Row: 1, Col: 2},
		Site{Row: 2, Col: 2}, Site{Row: 2, Col: 3})
	assert.False(t, m.Percolates())

	testutils.OpenSites(t, m, Site{Row: 3, Col: 3})
	assert.True(t, m.Percolates())

	for _, s := range []Site{{Row: 0, Col: 0}, {Row: 1, Col: 2}, {Row: 2, Col: 3}, {Row: 3, Col: 3}} {
		full, err := m.IsFull(s.Row, s.Col)
		require.NoError(t, err)
		assert.True(t, full, "(%d, %d) 应该是 full", s.Row, s.Col)
	}
}

func TestBottomOnlyDoesNotPercolate(t *testing.T) {
	m := newModel(t, 3)
	testutils.OpenSites(t, m, Site{Row: 2, Col: 0}, Site{Row: 2, Col: 1}, Site{Row: 2, Col: 2})

	assert.False(t, m.Percolates())
	for col := 0; col < 3; col++ {
		full, _ := m.IsFull(2, col)
		assert.False(t, full)
	}
}

func TestBackwash(t *testing.T) {
	m := newModel(t, 3)

	// 左列打通形成渗透路径
	testutils.OpenSites(t, m, Site{Row: 0, Col: 0}, Site{Row: 1, Col: 0}, Site{Row: 2, Col: 0})
	// 右下角是底行上一个孤立的打开格点
	testutils.OpenSites(t, m, Site{Row: 2, Col: 2})

	require.True(t, m.Percolates())

	full, err := m.IsFull(2, 2)
	require.NoError(t, err)
	assert.False(t, full, "孤立的底行格点不能经由虚拟底节点回流成 full")

	// 它上方再打开一格同样不能变 full
	testutils.OpenSites(t, m, Site{Row: 1, Col: 2})
	full, _ = m.IsFull(1, 2)
	assert.False(t, full)

	// 接上中间格点后才真正连到顶部
	testutils.OpenSites(t, m, Site{Row: 1, Col: 1})
	full, _ = m.IsFull(2, 2)
	assert.True(t, full)
}

func TestFullImpliesOpen(t *testing.T) {
	m := newModel(t, 5)
	testutils.OpenSites(t, m,
		Site{Row: 0, Col: 2}, Site{Row: 1, Col: 2}, Site{Row: 2, Col: 2}, Site{Row: 2, Col: 3}, Site{Row: 4, Col: 4}, Site{Row: 4, Col: 0}, Site{Row: 3, Col: 0})

	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			full, _ := m.IsFull(row, col)
			open, _ := m.IsOpen(row, col)
			if full {
				assert.True(t, open, "(%d, %d) full 但未打开", row, col)
			}
		}
	}
}

func TestPercolatesMonotonic(t *testing.T) {
	m := newModel(t, 2)
	testutils.OpenSites(t, m, Site{Row: 0, Col: 1}, Site{Row: 1, Col: 1})
	require.True(t, m.Percolates())

	testutils.OpenSites(t, m, Site{Row: 0, Col: 0}, Site{Row: 1, Col: 0})
	assert.True(t, m.Percolates())
}

func TestSnapshot(t *testing.T) {
	m := newModel(t, 3)
	testutils.OpenSites(t, m, Site{Row: 0, Col: 0}, Site{Row: 1, Col: 0}, Site{Row: 2, Col: 2})

	snap := m.Snapshot()
	want := [][]percolation.SiteState{
		{percolation.Full, percolation.Blocked, percolation.Blocked},
		{percolation.Full, percolation.Blocked, percolation.Blocked},
		{percolation.Blocked, percolation.Blocked, percolation.Open},
	}
	assert.Equal(t, want, snap)

	// 修改副本不影响模型
	flags := m.OpenFlags()
	flags[1][1] = true
	open, _ := m.IsOpen(1, 1)
	assert.False(t, open)
	assert.Equal(t, "full", percolation.Full.String())
}

// 记录并查集的大小和合并的元素，确认虚拟底只进入 fullUnion
type recordingSet struct {
	*unionfind.UnionFind
	size   int
	merged map[int]bool
}

func (r *recordingSet) Union(x, y int) bool {
	r.merged[x] = true
	r.merged[y] = true
	return r.UnionFind.Union(x, y)
}

func TestInjectedDisjointSet(t *testing.T) {
	var sets []*recordingSet
	factory := func(size int) percolation.DisjointSet {
		s := &recordingSet{UnionFind: unionfind.NewUnionFind(size), size: size, merged: map[int]bool{}}
		sets = append(sets, s)
		return s
	}

	const n = 3
	m, err := percolation.New(n, percolation.WithDisjointSet(factory))
	require.NoError(t, err)
	require.Len(t, sets, 2)

	full, top := sets[0], sets[1]
	assert.Equal(t, n*n+2, full.size)
	assert.Equal(t, n*n+1, top.size)

	testutils.OpenSites(t, m, Site{Row: 0, Col: 0}, Site{Row: 1, Col: 0}, Site{Row: 2, Col: 0})
	assert.True(t, m.Percolates())

	virtualBottom := n*n + 1
	assert.True(t, full.merged[virtualBottom])
	assert.False(t, top.merged[virtualBottom])
}

func TestIndexRowMajor(t *testing.T) {
	m := newModel(t, 4)
	assert.Equal(t, 0, m.Index(0, 0))
	assert.Equal(t, 3, m.Index(0, 3))
	assert.Equal(t, 4, m.Index(1, 0))
	assert.Equal(t, 15, m.Index(3, 3))
}
