package sh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBashANSIQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.5929", `$'0.5929'`},
		{"NaN", `$'NaN'`},
		{"a'b", `$'a\'b'`},
		{"line\nbreak\t", `$'line\nbreak\t'`},
		{"\x01中文", `$'\001中文'`},
		{`back\slash`, `$'back\\slash'`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, BashANSIQuote(tt.in))
		})
	}
}

func TestDeclare(t *testing.T) {
	got, err := Declare("PERC_MEAN", "0.59")
	require.NoError(t, err)
	assert.Equal(t, `declare PERC_MEAN=$'0.59'`, got)

	for _, bad := range []string{"", "1ABC", "A-B", "A;rm"} {
		_, err := Declare(bad, "x")
		assert.Error(t, err, bad)
	}
}
