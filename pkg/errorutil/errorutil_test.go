package errorutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

var errDomain = errors.New("domain failure")

func classifyDomain(err error) (int, bool) {
	if errors.Is(err, errDomain) {
		return CodeInvalidData, true
	}
	return 0, false
}

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, CodeSuccess},
		{"explicit", NewExitError(CodeConfigError, errors.New("bad config")), CodeConfigError},
		{"wrapped explicit", fmt.Errorf("outer: %w", NewExitError(CodeInvalidUsage, errors.New("x"))), CodeInvalidUsage},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), CodeCanceled},
		{"classified", fmt.Errorf("wrap: %w", errDomain), CodeInvalidData},
		{"unknown", errors.New("boom"), CodeInternalErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFromError(tt.err, classifyDomain))
		})
	}
}

func TestNewExitErrorNil(t *testing.T) {
	assert.Nil(t, NewExitError(CodeInternalErr, nil))
}

func TestErrorMessage(t *testing.T) {
	err := NewExitErrorWithMessage(CodeInvalidData, "参数非法", errDomain)
	assert.Equal(t, "参数非法: domain failure", err.Error())
	assert.True(t, errors.Is(err, errDomain))
	assert.True(t, HasExitCode(err))
	assert.Equal(t, errDomain, RootError(fmt.Errorf("a: %w", err)))

	assert.Equal(t, "Exit with code: 3", (&ExitErrorWithCode{Code: 3}).Error())
}

func TestFormatErrorAndCode(t *testing.T) {
	msg, code := FormatErrorAndCode(NewExitErrorWithMessage(CodeConfigError, "读取配置失败", errors.New("no such file")))
	assert.Equal(t, CodeConfigError, code)
	assert.Equal(t, int64(CodeConfigError), gjson.Get(msg, "code").Int())
	assert.Equal(t, "读取配置失败", gjson.Get(msg, "message").String())
	assert.Equal(t, "no such file", gjson.Get(msg, "error").String())

	msg, code = FormatErrorAndCode(errors.New("boom"))
	assert.Equal(t, CodeInternalErr, code)
	assert.False(t, gjson.Get(msg, "message").Exists())
}
