package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name      string
		waypoints []Point
		steps     int
		expected  []Point
	}{
		{
			name:      "两点两步=中点插值",
			waypoints: []Point{{0, 0}, {10, 0}},
			steps:     2,
			expected:  []Point{{0, 0}, {5, 0}, {10, 0}},
		},
		{
			name:      "单步=原样保留路径点",
			waypoints: []Point{{0, 0}, {10, 0}, {10, 10}},
			steps:     1,
			expected:  []Point{{0, 0}, {10, 0}, {10, 10}},
		},
		{
			name:      "单点=只有该点",
			waypoints: []Point{{3, 4}},
			steps:     5,
			expected:  []Point{{3, 4}},
		},
		{
			name:      "空输入=空轨迹",
			waypoints: nil,
			steps:     2,
			expected:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpolate(tt.waypoints, tt.steps)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestInterpolateLength(t *testing.T) {
	// 轨迹长度 = (n-1)*steps + 1
	wps := DefaultWaypoints()
	path := Interpolate(wps, 2)
	assert.Len(t, path, (len(wps)-1)*2+1)

	// 首尾路径点各出现一次
	assert.Equal(t, wps[0], path[0])
	assert.Equal(t, wps[len(wps)-1], path[len(path)-1])
}

func TestInterpolateIdempotent(t *testing.T) {
	wps := DefaultWaypoints()
	assert.Equal(t, Interpolate(wps, 3), Interpolate(wps, 3), "纯函数，两次调用结果一致")
}

func TestLoopSequence(t *testing.T) {
	t.Run("超过两点=往返去掉首尾", func(t *testing.T) {
		path := []Point{{0, 0}, {1, 0}, {2, 0}}
		seq := LoopSequence(path)
		require.Len(t, seq, len(path)+len(path)-2)
		assert.Equal(t, []Point{{0, 0}, {1, 0}, {2, 0}, {1, 0}}, seq)
	})

	t.Run("两点=无逆向部分", func(t *testing.T) {
		path := []Point{{0, 0}, {1, 0}}
		assert.Equal(t, path, LoopSequence(path))
	})

	t.Run("单点", func(t *testing.T) {
		path := []Point{{0, 0}}
		assert.Equal(t, path, LoopSequence(path))
	})
}

func TestStepWraparound(t *testing.T) {
	seq := LoopSequence(Interpolate(DefaultWaypoints(), 2))
	l := len(seq)
	assert.Equal(t, seq[0], seq[l%l], "第 L 步回到第 0 步的位置")
	assert.Equal(t, seq[1], seq[(l+1)%l])
}
