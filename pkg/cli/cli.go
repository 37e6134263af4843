package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"percolation_tool/pkg/errorutil"
	"percolation_tool/pkg/initutil"
	"percolation_tool/pkg/logutil"
	"percolation_tool/pkg/montecarlo"
	"percolation_tool/pkg/percolation"

	"github.com/spf13/cobra"
)

const TOOL_VERSION = "1.0.0+20261019"

// app 保存所有子命令共享的状态，flag 解析完之后在 PersistentPreRunE 里填充
type app struct {
	configPath string
	logFile    string
	logLevel   logutil.Level
	cfg        initutil.Config
}

// NewRootCmd 构造根命令，测试里每次都新建一个，避免 flag 状态互相影响
func NewRootCmd() *cobra.Command {
	a := &app{logLevel: logutil.WARN, cfg: initutil.Default()}

	rootCmd := &cobra.Command{
		Use:   "percolate",
		Short: fmt.Sprintf("percolate v%s 用蒙特卡洛模拟估计 N×N 网格的渗透阈值", TOOL_VERSION),
		Long: fmt.Sprintf(`percolate v%s 用蒙特卡洛模拟估计 N×N 网格的渗透阈值

每次试验从全封闭的网格开始，随机打开格点直到顶行和底行连通，
记录此时打开格点的比例。多次试验后输出均值、标准差和 95%% 置信区间。

Examples:
  percolate stats 200 100
  percolate stats 200 100 -w 8 -f json
  percolate show 20 --seed 7 --style unicode
  percolate show 10 --dot | dot -Tpng > grid.png`, TOOL_VERSION),
		// 阻止 Cobra 在命令参数错误时输出帮助
		SilenceUsage: true,
		// 阻止Cobra自动打印RunEs返回的错误内容，由 main 统一处理
		SilenceErrors: true,
	}

	// 定义全局flag(屁股后面带P的函数才支持短选项)
	rootCmd.PersistentFlags().VarP(&a.logLevel, "log-level", "e", "日志等级(DEBUG/INFO/WARN/ERROR)")
	rootCmd.PersistentFlags().StringVarP(&a.logFile, "log-file", "l", "stderr", "日志文件名(stdout/stderr 表示标准输出/标准错误)")
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "配置文件路径(.json 或 key=value; 格式)")

	// flag 解析失败属于用法错误
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errorutil.NewExitError(errorutil.CodeInvalidUsage, err)
	})

	// PersistentPreRunE 回调，这个钩子会在用户的命令解析完成、flag 值填充后执行
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd)
	}

	rootCmd.AddCommand(a.statsCmd())
	rootCmd.AddCommand(a.showCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// Execute 执行命令行并返回进程退出码，错误信息写到 stderr
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	code := errorutil.ExitCodeFromError(err, ClassifyError)
	if err != nil {
		logutil.Debug("命令执行失败: %v", err)
		fmt.Fprintf(stderr, "错误: %v\n", err)
	}

	// 不要用defer，因为defer是在函数返回前执行的，而调用方紧接着就会 os.Exit()
	if cerr := logutil.CloseLogger(); cerr != nil {
		fmt.Fprintf(stderr, "关闭日志失败: %v\n", cerr)
	}
	return code
}

// setup 合并配置文件和命令行，然后初始化日志
// 优先级：命令行显式设置 > 配置文件 > 默认值
func (a *app) setup(cmd *cobra.Command) error {
	if a.configPath != "" {
		cfg, err := initutil.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") || a.configPath == "" {
		a.cfg.LogLevel = a.logLevel.String()
	}
	if flags.Changed("log-file") || a.configPath == "" {
		a.cfg.LogFile = a.logFile
	}

	level, err := logutil.ParseLogLevel(a.cfg.LogLevel)
	if err != nil {
		return errorutil.NewExitError(errorutil.CodeConfigError, err)
	}
	if err := logutil.InitLogger(a.cfg.LogFile, level); err != nil {
		return errorutil.NewExitError(errorutil.CodeConfigError, err)
	}
	logutil.Debug("生效配置: %+v", a.cfg)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "打印版本号",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "percolate", TOOL_VERSION)
			return nil
		},
	}
}

// maxArgs 参数个数不对时返回用法错误
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return errorutil.NewExitError(errorutil.CodeInvalidUsage,
				fmt.Errorf("%s 最多接受 %d 个参数, 实际收到 %d 个", cmd.Name(), n, len(args)))
		}
		return nil
	}
}

// parseIntArg 解析位置参数里的整数，只检查格式，正负由领域代码判断
func parseIntArg(name, val string) (int, error) {
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, errorutil.NewExitErrorWithMessage(errorutil.CodeInvalidUsage,
			fmt.Sprintf("%s 必须是整数: %q", name, val), err)
	}
	return n, nil
}

// ClassifyError 把领域错误映射成退出码
func ClassifyError(err error) (int, bool) {
	switch {
	case errors.Is(err, percolation.ErrInvalidArgument),
		errors.Is(err, percolation.ErrOutOfRange),
		errors.Is(err, montecarlo.ErrInvalidArgument):
		return errorutil.CodeInvalidData, true
	default:
		return 0, false
	}
}
