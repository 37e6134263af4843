package gridview

import (
	"fmt"
	"strings"

	"percolation_tool/pkg/percolation"
	"percolation_tool/pkg/unionfind"

	"github.com/awalterschulze/gographviz"
)

// Style 控制格点使用的字符集
type Style int

const (
	StyleASCII   Style = iota // 0 = ascii
	StyleUnicode              // 1 = unicode
)

// ParseStyle 解析命令行传进来的风格名
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(name) {
	case "ascii", "":
		return StyleASCII, nil
	case "unicode":
		return StyleUnicode, nil
	default:
		return StyleASCII, fmt.Errorf("无效的显示风格: %s (可选 ascii/unicode)", name)
	}
}

// 下标和 percolation.SiteState 一一对应：blocked, open, full
var glyphs = map[Style][3]string{
	StyleASCII:   {"#", ".", "~"},
	StyleUnicode: {"█", "░", "▓"},
}

// Render 把快照画成字符网格，每行一个网格行
func Render(snap [][]percolation.SiteState, style Style) string {
	g, ok := glyphs[style]
	if !ok {
		g = glyphs[StyleASCII]
	}

	var b strings.Builder
	for _, row := range snap {
		for _, s := range row {
			if int(s) < len(g) {
				b.WriteString(g[s])
			} else {
				b.WriteString("?")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Clusters 统计打开格点组成的连通块个数
func Clusters(m *percolation.Model) int {
	open := m.OpenFlags()
	n := m.Size()
	uf := unionfind.NewUnionFind(n * n)

	blocked := 0
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if !open[row][col] {
				blocked++
				continue
			}
			// 只看右边和下边，每条边处理一次
			if col+1 < n && open[row][col+1] {
				uf.Union(m.Index(row, col), m.Index(row, col+1))
			}
			if row+1 < n && open[row+1][col] {
				uf.Union(m.Index(row, col), m.Index(row+1, col))
			}
		}
	}
	// 每个封闭格点自成一个集合，减掉之后就是打开格点的连通块数
	return uf.Count() - blocked
}

const (
	graphName  = "percolation"
	topNode    = "top"
	bottomNode = "bottom"
)

func siteNode(row, col int) string {
	return fmt.Sprintf("s%d_%d", row, col)
}

// ToDOT 把打开格点之间的邻接关系导出为 Graphviz 无向图
// full 的格点填充颜色，虚拟顶/底节点用方框表示
func ToDOT(m *percolation.Model) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", err
	}
	if err := g.SetDir(false); err != nil {
		return "", err
	}

	boxAttrs := map[string]string{"shape": "box"}
	if err := g.AddNode(graphName, topNode, boxAttrs); err != nil {
		return "", err
	}
	if err := g.AddNode(graphName, bottomNode, boxAttrs); err != nil {
		return "", err
	}

	snap := m.Snapshot()
	n := m.Size()
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			state := snap[row][col]
			if state == percolation.Blocked {
				continue
			}
			attrs := map[string]string{"label": fmt.Sprintf("\"%d,%d\"", row, col)}
			if state == percolation.Full {
				attrs["style"] = "filled"
				attrs["fillcolor"] = "lightblue"
			}
			if err := g.AddNode(graphName, siteNode(row, col), attrs); err != nil {
				return "", fmt.Errorf("添加节点 (%d, %d) 失败: %w", row, col, err)
			}
		}
	}

	addEdge := func(src, dst string) error {
		return g.AddEdge(src, dst, false, nil)
	}
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if snap[row][col] == percolation.Blocked {
				continue
			}
			self := siteNode(row, col)
			if row == 0 {
				if err := addEdge(topNode, self); err != nil {
					return "", err
				}
			}
			if row == n-1 {
				if err := addEdge(self, bottomNode); err != nil {
					return "", err
				}
			}
			if col+1 < n && snap[row][col+1] != percolation.Blocked {
				if err := addEdge(self, siteNode(row, col+1)); err != nil {
					return "", err
				}
			}
			if row+1 < n && snap[row+1][col] != percolation.Blocked {
				if err := addEdge(self, siteNode(row+1, col)); err != nil {
					return "", err
				}
			}
		}
	}
	return g.String(), nil
}
