package sh

import (
	"fmt"
	"regexp"
	"strings"
)

// 合法的 bash 变量名
var varNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidVarName 判断是否可以直接用作 bash 变量名
func ValidVarName(name string) bool {
	return varNameRe.MatchString(name)
}

// BashANSIQuote 将任意字符串转为 $'...' 形式的 ANSI-C 样式安全字符串
// $'\a\b\t\n\v\f\r\E\\\'\000\001ABC中文'
func BashANSIQuote(s string) string {
	var b strings.Builder
	b.WriteString("$'")

	for _, r := range s {
		switch r {
		case 27: // Escape (ASCII 27)
			b.WriteString(`\E`)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\v':
			b.WriteString(`\v`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		default:
			if r < 32 || r == 127 {
				// 对不可打印字符使用 \ooo 八进制转义
				fmt.Fprintf(&b, `\%03o`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}

	b.WriteString("'")
	return b.String()
}

// Declare 生成一条 declare 语句，配合 eval 使用
// 变量名不合法时返回错误，避免 eval 时执行意外的内容
func Declare(name, value string) (string, error) {
	if !ValidVarName(name) {
		return "", fmt.Errorf("无效的 bash 变量名: %q", name)
	}
	return fmt.Sprintf("declare %s=%s", name, BashANSIQuote(value)), nil
}
