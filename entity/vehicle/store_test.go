package vehicle

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vosui/vps-go/entity"
	"github.com/vosui/vps-go/utils/input"
)

func TestStoreLayout(t *testing.T) {
	// 记录布局是对外稳定契约
	assert.Equal(t, 26, Stride)
	assert.Equal(t, 0, FieldPosX)
	assert.Equal(t, 9, FieldCurrentEdge)
	assert.Equal(t, 10, FieldNextEdge0)
	assert.Equal(t, 21, FieldCPEdge)
	assert.Equal(t, 25, FieldCPHead)
}

func TestStoreRecordIsolation(t *testing.T) {
	s := NewStore(2)
	a := s.At(0)
	b := s.At(1)

	a.SetXYZ(geometry.Point{X: 1, Y: 2, Z: 3})
	a.SetV(2.5)
	a.SetCurrentEdge(7)
	a.SetMovingStatus(entity.MovingStatusMoving)

	assert.Equal(t, geometry.Point{X: 1, Y: 2, Z: 3}, a.XYZ())
	assert.Equal(t, 2.5, a.V())
	assert.Equal(t, int32(7), a.CurrentEdge())

	// 相邻记录不受影响
	assert.Equal(t, geometry.Point{}, b.XYZ())
	assert.Equal(t, int32(0), b.CurrentEdge())
	assert.Equal(t, entity.MovingStatusStopped, b.MovingStatus())

	a.Clear()
	assert.Equal(t, geometry.Point{}, a.XYZ())
	assert.Equal(t, 0.0, a.V())
	assert.Equal(t, int32(0), a.CurrentEdge())
}

func TestVehicleNextEdgeWindow(t *testing.T) {
	s := NewStore(1)
	v := s.At(0)

	for i, id := range []int32{6, 7, 8, 0, 0} {
		v.SetNextEdge(i, id)
	}
	assert.Equal(t, [entity.NextEdgeCount]int32{6, 7, 8, 0, 0}, v.NextEdges())
	assert.True(t, v.HasNextEdge(7))
	assert.False(t, v.HasNextEdge(9))
	// 0为无效哨兵值，永不命中
	assert.False(t, v.HasNextEdge(0))
}

func TestVehicleCPCursor(t *testing.T) {
	s := NewStore(1)
	v := s.At(0)

	v.SetCPCursor(5, 0.9, 8, 6)
	v.SetCPHead(2)
	assert.Equal(t, int32(5), v.CPEdge())
	assert.Equal(t, 0.9, v.CPRatio())
	assert.Equal(t, uint32(8), v.CPFlags())
	assert.Equal(t, int32(6), v.CPTarget())

	// 清空游标保留头索引
	v.ClearCPCursor()
	assert.Equal(t, int32(0), v.CPEdge())
	assert.Equal(t, 2, v.CPHead())
}

func TestCheckpointStore(t *testing.T) {
	cs := NewCheckpointStore(2, 2)

	require.NoError(t, cs.SetSequence(1, []input.Checkpoint{
		{Edge: 5, Ratio: 0.9, Flags: 8, Target: 6},
		{Edge: 6, Ratio: 0.5, Flags: 4},
	}))
	assert.Equal(t, 2, cs.Count(1))
	assert.Equal(t, Checkpoint{Edge: 5, Ratio: 0.9, Flags: 8, Target: 6}, cs.At(1, 0))
	// 相邻槽位不受影响
	assert.Equal(t, 0, cs.Count(0))

	// 超出单车容量
	assert.Error(t, cs.SetSequence(0, make([]input.Checkpoint, 3)))

	cs.ClearSequence(1)
	assert.Equal(t, 0, cs.Count(1))
}
