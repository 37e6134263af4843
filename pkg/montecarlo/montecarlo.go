package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"percolation_tool/pkg/logutil"
	"percolation_tool/pkg/percolation"
	"percolation_tool/pkg/randutil"
	"percolation_tool/pkg/stats"

	"golang.org/x/sync/errgroup"
)

// 95% 置信区间对应的正态分位数
const confidence95 = 1.96

// ErrInvalidArgument 网格边长或试验次数不是正数
var ErrInvalidArgument = errors.New("montecarlo: 参数非法")

// SourceFactory 为第 trial 次试验创建独立的随机源
type SourceFactory func(trial int) randutil.Source

// Option 用于定制估计过程
type Option func(*config)

type config struct {
	seed       uint64
	seeded     bool
	workers    int
	newSource  SourceFactory
	modelOpts  []percolation.Option
	onProgress func(done, total int)
}

// WithSeed 固定随机种子，同一种子得到同样的结果，和并发数无关
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
		c.seeded = true
	}
}

// WithWorkers 并发执行试验，n <= 1 时顺序执行
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithSourceFactory 替换每次试验的随机源，主要给测试用
func WithSourceFactory(f SourceFactory) Option {
	return func(c *config) {
		c.newSource = f
	}
}

// WithModelOptions 透传给每次试验创建的渗透模型
func WithModelOptions(opts ...percolation.Option) Option {
	return func(c *config) {
		c.modelOpts = append(c.modelOpts, opts...)
	}
}

// WithProgress 每完成一次试验回调一次，并发执行时回调可能来自不同的 goroutine
func WithProgress(f func(done, total int)) Option {
	return func(c *config) {
		c.onProgress = f
	}
}

// Estimator 保存 T 次试验的渗透阈值以及由此得到的统计量
type Estimator struct {
	n          int
	trials     int
	seed       uint64
	thresholds []float64
	elapsed    time.Duration

	mean   float64
	stddev float64
}

// New 在 N×N 网格上执行 trials 次独立试验，全部完成后返回
func New(n, trials int, opts ...Option) (*Estimator, error) {
	return Run(context.Background(), n, trials, opts...)
}

// Run 和 New 相同，ctx 取消时尽快停止并返回错误
func Run(ctx context.Context, n, trials int, opts ...Option) (*Estimator, error) {
	if n <= 0 || trials <= 0 {
		return nil, fmt.Errorf("%w: 网格边长和试验次数必须为正数, N=%d T=%d", ErrInvalidArgument, n, trials)
	}

	c := config{workers: 1}
	for _, opt := range opts {
		opt(&c)
	}
	if !c.seeded {
		c.seed = randutil.NewSeed()
	}
	if c.newSource == nil {
		seed := c.seed
		c.newSource = func(trial int) randutil.Source {
			return randutil.NewUniform(seed, uint64(trial))
		}
	}

	e := &Estimator{
		n:          n,
		trials:     trials,
		seed:       c.seed,
		thresholds: make([]float64, trials),
	}

	logutil.Info("开始试验: N=%d T=%d workers=%d seed=%d", n, trials, c.workers, c.seed)
	start := time.Now()

	var err error
	if c.workers <= 1 {
		err = e.runSequential(ctx, &c)
	} else {
		err = e.runParallel(ctx, &c)
	}
	if err != nil {
		return nil, err
	}

	e.elapsed = time.Since(start)
	e.mean = stats.Mean(e.thresholds)
	e.stddev = stats.SampleStdDev(e.thresholds)

	logutil.Info("试验完成: mean=%.6f stddev=%.6f 耗时 %s", e.mean, e.stddev, e.elapsed)
	return e, nil
}

func (e *Estimator) runSequential(ctx context.Context, c *config) error {
	for i := 0; i < e.trials; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("第 %d 次试验前被取消: %w", i, err)
		}
		if err := e.runTrial(i, c); err != nil {
			return err
		}
		if c.onProgress != nil {
			c.onProgress(i+1, e.trials)
		}
	}
	return nil
}

// 每次试验只写 thresholds 中自己的下标，不需要额外加锁
func (e *Estimator) runParallel(ctx context.Context, c *config) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	done := make(chan struct{}, e.trials)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		finished := 0
		for range done {
			finished++
			if c.onProgress != nil {
				c.onProgress(finished, e.trials)
			}
		}
	}()

	for trial := 0; trial < e.trials; trial++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("第 %d 次试验前被取消: %w", trial, err)
			}
			if err := e.runTrial(trial, c); err != nil {
				return err
			}
			done <- struct{}{}
			return nil
		})
	}

	err := g.Wait()
	close(done)
	<-progressDone
	return err
}

// runTrial 在新的模型上跑一次试验，记录打开比例
func (e *Estimator) runTrial(trial int, c *config) error {
	model, err := percolation.New(e.n, c.modelOpts...)
	if err != nil {
		return fmt.Errorf("第 %d 次试验创建模型失败: %w", trial, err)
	}

	draws, err := Percolate(model, c.newSource(trial))
	if err != nil {
		return fmt.Errorf("第 %d 次试验失败: %w", trial, err)
	}

	e.thresholds[trial] = float64(model.NumberOfOpenSites()) / float64(e.n*e.n)
	logutil.Debug("试验 %d: 打开 %d 个格点, 抽样 %d 次, 阈值 %.6f",
		trial, model.NumberOfOpenSites(), draws, e.thresholds[trial])
	return nil
}

// Percolate 不断随机抽取坐标，打开其中封闭的格点，直到模型渗透
// 抽到已经打开的格点就重新抽，返回总抽样次数
func Percolate(model *percolation.Model, src randutil.Source) (int, error) {
	n := model.Size()
	draws := 0
	for !model.Percolates() {
		row := src.IntN(0, n)
		col := src.IntN(0, n)
		draws++

		open, err := model.IsOpen(row, col)
		if err != nil {
			return draws, fmt.Errorf("随机坐标非法: %w", err)
		}
		if open {
			continue
		}
		if err := model.Open(row, col); err != nil {
			return draws, err
		}
	}
	return draws, nil
}

// Mean 渗透阈值的样本均值
func (e *Estimator) Mean() float64 {
	return e.mean
}

// StdDev 渗透阈值的样本标准差，只有一次试验时为 NaN
func (e *Estimator) StdDev() float64 {
	return e.stddev
}

func (e *Estimator) halfWidth() float64 {
	return confidence95 * e.stddev / math.Sqrt(float64(e.trials))
}

// ConfidenceLow 95% 置信区间下界
func (e *Estimator) ConfidenceLow() float64 {
	return e.mean - e.halfWidth()
}

// ConfidenceHigh 95% 置信区间上界
func (e *Estimator) ConfidenceHigh() float64 {
	return e.mean + e.halfWidth()
}

// Thresholds 返回每次试验的阈值副本
func (e *Estimator) Thresholds() []float64 {
	out := make([]float64, len(e.thresholds))
	copy(out, e.thresholds)
	return out
}

func (e *Estimator) GridSize() int          { return e.n }
func (e *Estimator) Trials() int            { return e.trials }
func (e *Estimator) Seed() uint64           { return e.seed }
func (e *Estimator) Elapsed() time.Duration { return e.elapsed }

// Summary 是阈值样本的顺序统计量
type Summary struct {
	Min    float64
	Median float64
	Max    float64
}

// Summary 计算最小值、中位数、最大值
func (e *Estimator) Summary() Summary {
	o := stats.NewOrdered(e.thresholds)
	return Summary{Min: o.Min(), Median: o.Median(), Max: o.Max()}
}

// Histogram 把阈值按 buckets 个等宽桶分组
func (e *Estimator) Histogram(buckets int) (*stats.Histogram, error) {
	h, err := stats.NewHistogram(buckets)
	if err != nil {
		return nil, err
	}
	for _, v := range e.thresholds {
		h.Add(v)
	}
	return h, nil
}
