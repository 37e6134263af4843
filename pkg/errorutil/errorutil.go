package errorutil

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/sjson"
)

const (
	CodeSuccess = 0 // 成功执行

	// 60–69: 用户输入或调用错误
	CodeInvalidUsage = 64 // 命令行用法错误（参数个数不对、flag 不合法等）
	CodeInvalidData  = 66 // 参数值非法（网格边长、试验次数不是正数，坐标越界）

	// 70–79: 程序自身错误
	CodeInternalErr = 74 // 内部 bug、panic、未捕捉异常

	// 80–89: 运行环境相关错误
	CodeConfigError = 80 // 配置文件有误或缺失
	CodeCanceled    = 81 // 被信号或超时中断
)

// ExitErrorWithCode 携带进程退出码的错误
type ExitErrorWithCode struct {
	Code    int    // 退出码
	Message string // 给用户看的可读消息，可以为空
	Err     error  // 原始错误
}

func (e *ExitErrorWithCode) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Message != "":
		return e.Message
	default:
		return fmt.Sprintf("Exit with code: %d", e.Code)
	}
}

func (e *ExitErrorWithCode) Unwrap() error {
	return e.Err
}

// NewExitError 给错误附加退出码，err 为 nil 时返回 nil
func NewExitError(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitErrorWithCode{Code: code, Err: err}
}

// NewExitErrorWithMessage 带错误消息的错误
func NewExitErrorWithMessage(code int, message string, err error) error {
	return &ExitErrorWithCode{Code: code, Message: message, Err: err}
}

// Classifier 把领域错误映射成退出码，返回 false 表示不认识
type Classifier func(err error) (int, bool)

// ExitCodeFromError 计算进程退出码
// 优先使用错误链上显式附带的退出码，其次交给 classifiers，都不认识就算内部错误
// os.Exit(errorutil.ExitCodeFromError(err))
func ExitCodeFromError(err error, classifiers ...Classifier) int {
	if err == nil {
		return CodeSuccess
	}
	var exitErr *ExitErrorWithCode
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCanceled
	}
	for _, classify := range classifiers {
		if code, ok := classify(err); ok {
			return code
		}
	}
	return CodeInternalErr
}

// HasExitCode 判断当前的错误是否是带退出码的错误
func HasExitCode(err error) bool {
	var exitErr *ExitErrorWithCode
	return errors.As(err, &exitErr)
}

// RootError 提取原始错误
func RootError(err error) error {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
}

// JSON 把错误序列化成一行 JSON，空字段不出现
func (e *ExitErrorWithCode) JSON() string {
	out, _ := sjson.Set("", "code", e.Code)
	if e.Message != "" {
		out, _ = sjson.Set(out, "message", e.Message)
	}
	if e.Err != nil {
		out, _ = sjson.Set(out, "error", e.Err.Error())
	}
	return out
}

// FormatErrorAndCode 返回错误的 JSON 描述和退出码
func FormatErrorAndCode(err error, classifiers ...Classifier) (string, int) {
	code := ExitCodeFromError(err, classifiers...)
	var exitErr *ExitErrorWithCode
	if errors.As(err, &exitErr) {
		return exitErr.JSON(), code
	}
	return (&ExitErrorWithCode{Code: code, Err: err}).JSON(), code
}
