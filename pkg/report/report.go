package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"percolation_tool/pkg/sh"
	"percolation_tool/pkg/stats"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Result 是需要输出的全部统计结果，和估计器解耦，方便单独测试格式
type Result struct {
	GridSize       int
	Trials         int
	Seed           uint64
	Mean           float64
	StdDev         float64
	ConfidenceLow  float64
	ConfidenceHigh float64
	Min            float64
	Median         float64
	Max            float64
	Elapsed        time.Duration
	Histogram      []stats.Bucket
}

// OutputFormatter 把结果格式化成最终要打印的文本
type OutputFormatter interface {
	Format(r Result) (string, error)
}

var formatters = map[string]OutputFormatter{
	"text": TextFormatter{},
	"json": JSONFormatter{},
	"bash": BashFormatter{},
}

// Names 列出所有支持的格式名
func Names() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup 按名字找格式化器
func Lookup(name string) (OutputFormatter, error) {
	f, ok := formatters[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("无效的输出格式: %s (可选 %s)", name, strings.Join(Names(), "/"))
	}
	return f, nil
}

// 浮点数固定保留 10 位小数，NaN 原样显示
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.10f", v)
}

// TextFormatter 输出对齐的键值对
type TextFormatter struct{}

func (TextFormatter) Format(r Result) (string, error) {
	rows := [][2]string{
		{"grid size", fmt.Sprintf("%d x %d (%s sites)", r.GridSize, r.GridSize, humanize.Comma(int64(r.GridSize)*int64(r.GridSize)))},
		{"trials", humanize.Comma(int64(r.Trials))},
		{"seed", fmt.Sprintf("%d", r.Seed)},
		{"mean", formatFloat(r.Mean)},
		{"stddev", formatFloat(r.StdDev)},
		{"95% confidence interval", fmt.Sprintf("[%s, %s]", formatFloat(r.ConfidenceLow), formatFloat(r.ConfidenceHigh))},
		{"min / median / max", fmt.Sprintf("%s / %s / %s", formatFloat(r.Min), formatFloat(r.Median), formatFloat(r.Max))},
		{"elapsed", r.Elapsed.Round(time.Microsecond).String()},
	}

	// 按显示宽度对齐，键里以后出现中文也不会错位
	keyWidth := 0
	for _, row := range rows {
		if w := runewidth.StringWidth(row[0]); w > keyWidth {
			keyWidth = w
		}
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(runewidth.FillRight(row[0], keyWidth))
		b.WriteString(" = ")
		b.WriteString(row[1])
		b.WriteByte('\n')
	}

	if len(r.Histogram) > 0 {
		b.WriteString("\nhistogram:\n")
		b.WriteString(renderHistogram(r.Histogram, r.Trials))
	}
	return b.String(), nil
}

// 每个桶一行，条形长度按最多的桶归一到 40 个字符
func renderHistogram(buckets []stats.Bucket, total int) string {
	const barWidth = 40
	peak := 0
	for _, bk := range buckets {
		if bk.Count > peak {
			peak = bk.Count
		}
	}

	var b strings.Builder
	for _, bk := range buckets {
		bar := 0
		if peak > 0 {
			bar = int(math.Round(float64(bk.Count) * barWidth / float64(peak)))
		}
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(bk.Count) / float64(total)
		}
		fmt.Fprintf(&b, "  [%.3f, %.3f) %-*s %s (%s%%)\n",
			bk.Low, bk.High, barWidth, strings.Repeat("#", bar),
			humanize.Comma(int64(bk.Count)), humanize.FtoaWithDigits(pct, 1))
	}
	return b.String()
}

// JSONFormatter 输出缩进后的 JSON，NaN 写成 null
type JSONFormatter struct{}

func (JSONFormatter) Format(r Result) (string, error) {
	fields := []struct {
		path  string
		value any
	}{
		{"grid_size", r.GridSize},
		{"trials", r.Trials},
		{"seed", r.Seed},
		{"mean", jsonFloat(r.Mean)},
		{"stddev", jsonFloat(r.StdDev)},
		{"confidence_interval.low", jsonFloat(r.ConfidenceLow)},
		{"confidence_interval.high", jsonFloat(r.ConfidenceHigh)},
		{"summary.min", jsonFloat(r.Min)},
		{"summary.median", jsonFloat(r.Median)},
		{"summary.max", jsonFloat(r.Max)},
		{"elapsed_ms", float64(r.Elapsed.Microseconds()) / 1000},
	}

	out := "{}"
	var err error
	for _, f := range fields {
		if out, err = sjson.Set(out, f.path, f.value); err != nil {
			return "", fmt.Errorf("写入字段 %s 失败: %w", f.path, err)
		}
	}

	for i, bk := range r.Histogram {
		prefix := fmt.Sprintf("histogram.%d.", i)
		for _, kv := range []struct {
			key   string
			value any
		}{{"low", bk.Low}, {"high", bk.High}, {"count", bk.Count}} {
			if out, err = sjson.Set(out, prefix+kv.key, kv.value); err != nil {
				return "", fmt.Errorf("写入直方图失败: %w", err)
			}
		}
	}

	return string(pretty.Pretty([]byte(out))), nil
}

// sjson 不能序列化 NaN，统一换成 nil
func jsonFloat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// BashFormatter 输出可以直接 eval 的变量赋值
//
//	eval -- "$(percolate stats 200 100 -f bash)"
//	echo "$PERC_MEAN"
type BashFormatter struct{}

func (BashFormatter) Format(r Result) (string, error) {
	vars := [][2]string{
		{"PERC_GRID_SIZE", fmt.Sprintf("%d", r.GridSize)},
		{"PERC_TRIALS", fmt.Sprintf("%d", r.Trials)},
		{"PERC_SEED", fmt.Sprintf("%d", r.Seed)},
		{"PERC_MEAN", formatFloat(r.Mean)},
		{"PERC_STDDEV", formatFloat(r.StdDev)},
		{"PERC_CONFIDENCE_LOW", formatFloat(r.ConfidenceLow)},
		{"PERC_CONFIDENCE_HIGH", formatFloat(r.ConfidenceHigh)},
	}

	var b strings.Builder
	for _, kv := range vars {
		line, err := sh.Declare(kv[0], kv[1])
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
