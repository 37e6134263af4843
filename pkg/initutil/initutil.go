package initutil

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"percolation_tool/pkg/errorutil"
	"percolation_tool/pkg/logutil"

	"github.com/tidwall/gjson"
)

// Config 是一次运行的全部参数，来源依次是默认值、配置文件、命令行
type Config struct {
	GridSize  int    // 网格边长 N
	Trials    int    // 试验次数 T
	Seed      uint64 // 随机种子，0 表示每次运行随机生成
	Workers   int    // 并发试验数，<=1 时顺序执行
	Format    string // 输出格式 text/json/bash
	Histogram int    // 直方图桶数，0 表示不输出
	LogLevel  string
	LogFile   string
}

// 配置文件里的键名，ini 和 json 共用
const (
	keyGridSize  = "grid"
	keyTrials    = "trials"
	keySeed      = "seed"
	keyWorkers   = "workers"
	keyFormat    = "format"
	keyHistogram = "histogram"
	keyLogLevel  = "log_level"
	keyLogFile   = "log_file"
)

// Default 返回内置默认配置
func Default() Config {
	return Config{
		GridSize: 200,
		Trials:   100,
		Workers:  1,
		Format:   "text",
		LogLevel: "WARN",
		LogFile:  "stderr",
	}
}

// Load 读取配置文件，.json 按 JSON 解析，其它后缀按 key=value; 的 ini 风格解析
// 文件里没有出现的键保留默认值
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errorutil.NewExitErrorWithMessage(
			errorutil.CodeConfigError, fmt.Sprintf("无法读取配置文件 %s", path), err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = parseJSONConfig(string(data), &cfg)
	} else {
		parseIniConfig(string(data), &cfg)
	}
	if err != nil {
		return cfg, errorutil.NewExitErrorWithMessage(
			errorutil.CodeConfigError, fmt.Sprintf("配置文件 %s 格式错误", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errorutil.NewExitErrorWithMessage(
			errorutil.CodeConfigError, fmt.Sprintf("配置文件 %s 取值非法", path), err)
	}

	logutil.Debug("加载配置 %s: %+v", path, cfg)
	return cfg, nil
}

// Validate 只检查和运行环境有关的字段，N 和 T 交给估计器自己校验
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers 不能为负数: %d", c.Workers)
	}
	if c.Histogram < 0 {
		return fmt.Errorf("histogram 不能为负数: %d", c.Histogram)
	}
	if _, err := logutil.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func parseJSONConfig(content string, cfg *Config) error {
	if !gjson.Valid(content) {
		return fmt.Errorf("不是合法的 JSON")
	}
	root := gjson.Parse(content)
	if !root.IsObject() {
		return fmt.Errorf("顶层必须是对象")
	}

	intFields := map[string]*int{
		keyGridSize:  &cfg.GridSize,
		keyTrials:    &cfg.Trials,
		keyWorkers:   &cfg.Workers,
		keyHistogram: &cfg.Histogram,
	}
	for key, dst := range intFields {
		res := root.Get(key)
		if !res.Exists() {
			continue
		}
		if res.Type != gjson.Number {
			return fmt.Errorf("%s 必须是数字, 实际为 %s", key, res.Raw)
		}
		*dst = int(res.Int())
	}

	if res := root.Get(keySeed); res.Exists() {
		if res.Type != gjson.Number {
			return fmt.Errorf("%s 必须是数字, 实际为 %s", keySeed, res.Raw)
		}
		cfg.Seed = res.Uint()
	}

	strFields := map[string]*string{
		keyFormat:   &cfg.Format,
		keyLogLevel: &cfg.LogLevel,
		keyLogFile:  &cfg.LogFile,
	}
	for key, dst := range strFields {
		if res := root.Get(key); res.Exists() {
			*dst = res.String()
		}
	}
	return nil
}

func parseIniConfig(content string, cfg *Config) {
	cfg.GridSize = extractIntConfig(content, keyGridSize, cfg.GridSize)
	cfg.Trials = extractIntConfig(content, keyTrials, cfg.Trials)
	cfg.Workers = extractIntConfig(content, keyWorkers, cfg.Workers)
	cfg.Histogram = extractIntConfig(content, keyHistogram, cfg.Histogram)
	if v, ok := extractValue(content, keySeed); ok {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Seed = seed
		} else {
			logutil.Warn("seed=%s 不是合法的无符号整数，忽略", v)
		}
	}
	cfg.Format = extractStringConfig(content, keyFormat, cfg.Format)
	cfg.LogLevel = extractStringConfig(content, keyLogLevel, cfg.LogLevel)
	cfg.LogFile = extractStringConfig(content, keyLogFile, cfg.LogFile)
}

// extractValue 取 key=value; 中的 value，键必须在行首（允许前导空白），# 开头的行被忽略
// 同一个键出现多次时以第一次为准
func extractValue(content, key string) (string, bool) {
	re := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(key) + `[ \t]*=[ \t]*([^;\r\n]*)`)
	match := re.FindStringSubmatch(content)
	if len(match) < 2 {
		return "", false
	}
	return strings.TrimSpace(match[1]), true
}

// extractIntConfig 取整数配置，缺失或者不是整数时返回默认值
func extractIntConfig(content, key string, defaultVal int) int {
	v, ok := extractValue(content, key)
	if !ok {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logutil.Warn("%s=%s 不是合法的整数，使用默认值 %d", key, v, defaultVal)
		return defaultVal
	}
	return n
}

// extractStringConfig 取字符串配置，缺失或者为空时返回默认值
func extractStringConfig(content, key, defaultVal string) string {
	v, ok := extractValue(content, key)
	if !ok || v == "" {
		return defaultVal
	}
	return v
}
