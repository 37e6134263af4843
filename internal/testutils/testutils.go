package testutils

import (
	"bytes"
	"testing"

	"percolation_tool/pkg/percolation"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

// Site 是测试里用的坐标对
type Site struct {
	Row, Col int
}

// SeqSource 按给定顺序依次吐出坐标，用来构造确定性的试验
// 每个坐标会被拆成两次 IntN 调用（先行后列），用完之后从头循环
type SeqSource struct {
	values []int
	pos    int
}

// NewSeqSource 用一串坐标构造随机源
func NewSeqSource(sites ...Site) *SeqSource {
	values := make([]int, 0, len(sites)*2)
	for _, s := range sites {
		values = append(values, s.Row, s.Col)
	}
	return &SeqSource{values: values}
}

// IntN 忽略区间，直接返回下一个预设值
func (s *SeqSource) IntN(lo, hi int) int {
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

// Calls 返回被调用的次数
func (s *SeqSource) Calls() int {
	return s.pos
}

// OpenSites 依次打开格点，任何一个失败都直接结束用例
func OpenSites(t testing.TB, m *percolation.Model, sites ...Site) {
	t.Helper()
	for _, s := range sites {
		if err := m.Open(s.Row, s.Col); err != nil {
			t.Fatalf("打开格点 (%d, %d) 失败: %v", s.Row, s.Col, err)
		}
	}
}

// OpenAll 把整个网格全部打开
func OpenAll(t testing.TB, m *percolation.Model) {
	t.Helper()
	n := m.Size()
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			OpenSites(t, m, Site{row, col})
		}
	}
}

// RunCommand 执行一个 cobra 命令并收集标准输出，错误原样返回给用例判断
func RunCommand(t testing.TB, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

// JSONField 从 JSON 输出里取一个字段，字段不存在时结束用例
func JSONField(t testing.TB, raw string, path string) gjson.Result {
	t.Helper()
	if !gjson.Valid(raw) {
		t.Fatalf("输出不是合法 JSON:\n%s", raw)
	}
	res := gjson.Get(raw, path)
	if !res.Exists() {
		t.Fatalf("JSON 中不存在字段 %s:\n%s", path, raw)
	}
	return res
}
