package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundedListAdd(t *testing.T) {
	l := NewBoundedList[int32](3)

	assert.True(t, l.Add(1))
	assert.True(t, l.Add(2))
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 3, l.Cap())

	// 重复添加是无操作
	assert.False(t, l.Add(1))
	assert.Equal(t, 2, l.Len())

	// 超容插入被拒绝
	assert.True(t, l.Add(3))
	assert.False(t, l.Add(4))
	assert.Equal(t, []int32{1, 2, 3}, l.Values())
}

func TestBoundedListRemove(t *testing.T) {
	l := NewBoundedList[int32](4)
	for _, v := range []int32{1, 2, 3, 4} {
		l.Add(v)
	}

	// 移除后保持相对顺序
	assert.True(t, l.Remove(2))
	assert.Equal(t, []int32{1, 3, 4}, l.Values())
	assert.False(t, l.Remove(2))
	assert.False(t, l.Contains(2))

	// 腾出的容量可复用
	assert.True(t, l.Add(5))
	assert.Equal(t, []int32{1, 3, 4, 5}, l.Values())
}

func TestBoundedListSortDesc(t *testing.T) {
	l := NewBoundedList[int32](8)
	ratios := map[int32]float64{10: 0.3, 11: 0.8, 12: 0.1, 13: 0.5}
	for id := range ratios {
		l.Add(id)
	}

	l.SortDesc(func(id int32) float64 { return ratios[id] })
	assert.Equal(t, []int32{11, 13, 10, 12}, l.Values())

	// 键值变化后重排
	ratios[12] = 0.9
	l.SortDesc(func(id int32) float64 { return ratios[id] })
	assert.Equal(t, []int32{12, 11, 13, 10}, l.Values())
}

func TestBoundedListClear(t *testing.T) {
	l := NewBoundedList[int32](2)
	l.Add(1)
	l.Add(2)
	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Contains(1))
	assert.True(t, l.Add(1))
}
