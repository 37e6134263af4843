package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name  string
		input []float64
		want  float64
	}{
		{"single", []float64{0.5}, 0.5},
		{"several", []float64{1, 2, 3, 4}, 2.5},
		{"negative", []float64{-1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Mean(tt.input), 1e-12)
		})
	}

	assert.True(t, math.IsNaN(Mean([]float64{})))
	assert.InDelta(t, 2.0, Mean([]int{1, 2, 3}), 1e-12)
}

func TestSampleStdDev(t *testing.T) {
	sample := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, math.Sqrt(32.0/7.0), SampleStdDev(sample), 1e-12)

	// 样本数不足时没有定义
	assert.True(t, math.IsNaN(SampleStdDev([]float64{0.6})))
	assert.True(t, math.IsNaN(SampleStdDev([]float64{})))

	// 相同样本标准差为 0
	assert.InDelta(t, 0.0, SampleStdDev([]float64{0.3, 0.3, 0.3}), 1e-12)
}

func TestOrdered(t *testing.T) {
	o := NewOrdered([]float64{0.7, 0.5, 0.5, 0.9, 0.6})

	require.Equal(t, 5, o.Len())
	assert.Equal(t, 0.5, o.Min())
	assert.Equal(t, 0.9, o.Max())
	assert.Equal(t, 0.6, o.Median())
	assert.Equal(t, 0.5, o.Quantile(0))
	assert.Equal(t, 0.5, o.Quantile(0.25))
	assert.Equal(t, 0.9, o.Quantile(1))
	assert.True(t, math.IsNaN(o.Quantile(1.5)))
}

func TestOrderedEmpty(t *testing.T) {
	o := NewOrdered(nil)
	assert.True(t, math.IsNaN(o.Min()))
	assert.True(t, math.IsNaN(o.Max()))
	assert.True(t, math.IsNaN(o.Median()))
}

func TestHistogram(t *testing.T) {
	h, err := NewHistogram(4)
	require.NoError(t, err)

	for _, v := range []float64{0.1, 0.2, 0.55, 0.6, 0.6, 1.0, 1.2, math.NaN()} {
		h.Add(v)
	}

	assert.Equal(t, 6, h.Total())
	assert.Equal(t, 2, h.Dropped())

	want := []Bucket{
		{Low: 0, High: 0.25, Count: 2},
		{Low: 0.5, High: 0.75, Count: 3},
		{Low: 0.75, High: 1, Count: 1},
	}
	assert.Equal(t, want, h.Buckets())

	_, err = NewHistogram(0)
	assert.Error(t, err)
}
