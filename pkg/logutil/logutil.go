package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

// Level 是日志级别，实现了 pflag.Value，可以直接绑定到 cobra 的 flag 上
type Level int

// 定义日志级别
const (
	DEBUG Level = iota // 0
	INFO               // 1
	WARN               // 2
	ERROR              // 3
)

var _ pflag.Value = (*Level)(nil)

// 定义日志级别映射字符串
var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

func (l *Level) String() string {
	if name, ok := levelNames[*l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(*l))
}

func (l *Level) Set(val string) error {
	level, err := ParseLogLevel(val)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

func (l *Level) Type() string {
	return "level"
}

// ParseLogLevel 解析字符串形式的日志级别，大小写不敏感
func ParseLogLevel(val string) (Level, error) {
	upper := strings.ToUpper(strings.TrimSpace(val))
	for level, name := range levelNames {
		if name == upper {
			return level, nil
		}
	}
	return WARN, fmt.Errorf("无效的日志级别: %q (可选 DEBUG/INFO/WARN/ERROR)", val)
}

var (
	mu           sync.Mutex
	logger       *log.Logger
	logFile      *os.File
	currentLevel = INFO // 默认日志级别
)

// InitLogger 初始化日志，output 可以是 stdout、stderr 或者文件路径
// 重复调用会关闭之前打开的文件并切换到新的输出
func InitLogger(output string, level Level) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()

	switch output {
	case "", "stderr":
		logFile = os.Stderr
	case "stdout":
		logFile = os.Stdout
	default:
		// 以追加模式打开日志文件，不会覆盖已有内容
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logFile = os.Stderr
			logger = log.New(logFile, "", log.LstdFlags)
			return fmt.Errorf("无法创建日志文件 %s: %w", output, err)
		}
		logFile = f
	}
	logger = log.New(logFile, "", log.LstdFlags)
	currentLevel = level
	return nil
}

// SetOutput 把日志写到任意 writer，测试里用来捕获输出
func SetOutput(w io.Writer, level Level) {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	logger = log.New(w, "", 0)
	currentLevel = level
}

// SetLogLevel 设置日志级别
func SetLogLevel(level Level) {
	mu.Lock()
	currentLevel = level
	mu.Unlock()
}

// Enabled 判断某个级别当前是否会输出，用来跳过代价较高的参数构造
func Enabled(level Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return level >= currentLevel
}

// logMessage 记录日志，仅输出符合当前级别的日志
func logMessage(level Level, tag string, msg string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if logger == nil {
		logFile = os.Stderr
		logger = log.New(logFile, "", log.LstdFlags)
	}
	if level < currentLevel { // 值越小打印得越多
		return
	}

	_, file, line, ok := runtime.Caller(2) // 获取真正调用的文件+行号
	if !ok {
		file = "???"
	}
	logger.Printf("[%s:%d] %s %s", filepath.Base(file), line, tag, fmt.Sprintf(msg, args...))
}

// Debug 记录 DEBUG 日志
func Debug(msg string, args ...any) {
	logMessage(DEBUG, "[DBG]", msg, args...)
}

// Info 记录 INFO 日志
func Info(msg string, args ...any) {
	logMessage(INFO, "[INFO]", msg, args...)
}

// Warn 记录 WARN 日志
func Warn(msg string, args ...any) {
	logMessage(WARN, "[WARN]", msg, args...)
}

// Error 记录 ERROR 日志，DEBUG 级别下额外附带调用堆栈
func Error(msg string, args ...any) {
	if Enabled(DEBUG) {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		logMessage(ERROR, "[ERR]", msg+"\n调用堆栈:\n%s", append(args, buf[:n])...)
		return
	}
	logMessage(ERROR, "[ERR]", msg, args...)
}

func closeLocked() error {
	var err error
	if logFile != nil && logFile != os.Stdout && logFile != os.Stderr {
		err = logFile.Close()
	}
	logFile = nil
	return err
}

// CloseLogger 关闭日志文件（如果有的话），之后的日志回到标准错误
func CloseLogger() error {
	mu.Lock()
	defer mu.Unlock()
	err := closeLocked()
	logger = nil
	return err
}
