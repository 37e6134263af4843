package cli

import (
	"fmt"

	"percolation_tool/pkg/errorutil"
	"percolation_tool/pkg/gridview"
	"percolation_tool/pkg/montecarlo"
	"percolation_tool/pkg/percolation"
	"percolation_tool/pkg/randutil"

	"github.com/spf13/cobra"
)

func usageError(err error) error {
	return errorutil.NewExitError(errorutil.CodeInvalidUsage, err)
}

func (a *app) showCmd() *cobra.Command {
	var (
		seed  uint64
		style string
		dot   bool
	)

	cmd := &cobra.Command{
		Use:   "show [N]",
		Short: "跑一次试验并画出渗透时的网格",
		Long: `跑一次试验并画出渗透时的网格

ascii 风格下 # 表示封闭，. 表示打开但没有连到顶部，~ 表示连到顶部(full)。
--dot 输出 Graphviz 格式的打开格点邻接图，可以交给 dot 渲染。`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := a.cfg.GridSize
			if len(args) > 0 {
				v, err := parseIntArg("N", args[0])
				if err != nil {
					return err
				}
				n = v
			}
			if !cmd.Flags().Changed("seed") {
				seed = a.cfg.Seed
			}
			if seed == 0 {
				seed = randutil.NewSeed()
			}

			st, err := gridview.ParseStyle(style)
			if err != nil {
				return usageError(err)
			}

			model, err := percolation.New(n)
			if err != nil {
				return err
			}
			draws, err := montecarlo.Percolate(model, randutil.NewUniform(seed, 0))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dot {
				s, err := gridview.ToDOT(model)
				if err != nil {
					return err
				}
				fmt.Fprint(out, s)
				return nil
			}

			fmt.Fprint(out, gridview.Render(model.Snapshot(), st))
			fmt.Fprintf(out, "\nseed=%d open=%d/%d threshold=%.6f draws=%d clusters=%d\n",
				seed, model.NumberOfOpenSites(), n*n,
				float64(model.NumberOfOpenSites())/float64(n*n), draws, gridview.Clusters(model))
			return nil
		},
	}

	cmd.Flags().Uint64VarP(&seed, "seed", "s", 0, "随机种子(0 表示随机生成)")
	cmd.Flags().StringVar(&style, "style", "ascii", "显示风格(ascii/unicode)")
	cmd.Flags().BoolVar(&dot, "dot", false, "输出 Graphviz DOT 格式")
	return cmd
}
