package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vosui/vps-go/utils/config"
)

func TestClockTick(t *testing.T) {
	c := New(config.ControlStep{Interval: 0.1, Total: 3})

	assert.Equal(t, int32(0), c.InternalStep)
	assert.Equal(t, 0.0, c.T)
	assert.False(t, c.Done())

	c.Tick()
	c.Tick()
	assert.Equal(t, int32(2), c.InternalStep)
	// 时间由步数乘步长计算，避免浮点累加漂移
	assert.InDelta(t, 0.2, c.T, 1e-12)
	assert.Equal(t, uint32(200), c.Millis())
	assert.False(t, c.Done())

	c.Tick()
	assert.True(t, c.Done())

	c.Init()
	assert.Equal(t, int32(0), c.InternalStep)
	assert.False(t, c.Done())
}

func TestClockUnbounded(t *testing.T) {
	c := New(config.ControlStep{Interval: 1})
	for i := 0; i < 100; i++ {
		c.Tick()
	}
	assert.False(t, c.Done())
}

func TestClockString(t *testing.T) {
	c := New(config.ControlStep{Interval: 1})
	assert.Equal(t, "00:00:00", c.String())
	for i := 0; i < 3725; i++ {
		c.Tick()
	}
	assert.Equal(t, "01:02:05", c.String())
}
