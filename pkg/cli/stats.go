package cli

import (
	"fmt"

	"percolation_tool/pkg/logutil"
	"percolation_tool/pkg/montecarlo"
	"percolation_tool/pkg/report"

	"github.com/spf13/cobra"
)

type statsOptions struct {
	seed      uint64
	workers   int
	format    string
	histogram int
}

func (a *app) statsCmd() *cobra.Command {
	opts := &statsOptions{}

	cmd := &cobra.Command{
		Use:   "stats [N] [T]",
		Short: "执行 T 次 N×N 网格的渗透试验并输出统计量",
		Long: `执行 T 次 N×N 网格的渗透试验并输出统计量

N 和 T 可以省略，省略时使用配置文件或默认值(N=200, T=100)。
输出包括样本均值、样本标准差和 95% 置信区间 [low, high]。
T=1 时标准差和置信区间没有定义，输出 NaN。

同一个 --seed 总是得到同样的结果，和 --workers 的取值无关。`,
		Args: maxArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if len(args) > 0 {
				n, err := parseIntArg("N", args[0])
				if err != nil {
					return err
				}
				cfg.GridSize = n
			}
			if len(args) > 1 {
				t, err := parseIntArg("T", args[1])
				if err != nil {
					return err
				}
				cfg.Trials = t
			}

			flags := cmd.Flags()
			if flags.Changed("seed") {
				cfg.Seed = opts.seed
			}
			if flags.Changed("workers") {
				cfg.Workers = opts.workers
			}
			if flags.Changed("format") {
				cfg.Format = opts.format
			}
			if flags.Changed("histogram") {
				cfg.Histogram = opts.histogram
			}

			formatter, err := report.Lookup(cfg.Format)
			if err != nil {
				return usageError(err)
			}
			if cfg.Histogram < 0 {
				return usageError(fmt.Errorf("histogram 不能为负数: %d", cfg.Histogram))
			}

			estOpts := []montecarlo.Option{montecarlo.WithWorkers(cfg.Workers)}
			if cfg.Seed != 0 {
				estOpts = append(estOpts, montecarlo.WithSeed(cfg.Seed))
			}
			if logutil.Enabled(logutil.INFO) {
				step := max(cfg.Trials/10, 1)
				estOpts = append(estOpts, montecarlo.WithProgress(func(done, total int) {
					if done%step == 0 || done == total {
						logutil.Info("进度 %d/%d", done, total)
					}
				}))
			}

			est, err := montecarlo.Run(cmd.Context(), cfg.GridSize, cfg.Trials, estOpts...)
			if err != nil {
				return err
			}

			res, err := buildResult(est, cfg.Histogram)
			if err != nil {
				return err
			}
			out, err := formatter.Format(res)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().Uint64VarP(&opts.seed, "seed", "s", 0, "随机种子(0 表示随机生成)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 1, "并发试验数")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "输出格式(text/json/bash)")
	cmd.Flags().IntVarP(&opts.histogram, "histogram", "b", 0, "输出阈值直方图的桶数(0 表示不输出)")
	return cmd
}

func buildResult(est *montecarlo.Estimator, buckets int) (report.Result, error) {
	summary := est.Summary()
	res := report.Result{
		GridSize:       est.GridSize(),
		Trials:         est.Trials(),
		Seed:           est.Seed(),
		Mean:           est.Mean(),
		StdDev:         est.StdDev(),
		ConfidenceLow:  est.ConfidenceLow(),
		ConfidenceHigh: est.ConfidenceHigh(),
		Min:            summary.Min,
		Median:         summary.Median,
		Max:            summary.Max,
		Elapsed:        est.Elapsed(),
	}
	if buckets > 0 {
		h, err := est.Histogram(buckets)
		if err != nil {
			return res, err
		}
		res.Histogram = h.Buckets()
	}
	return res, nil
}
