package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vosui/vps-go/clock"
	"github.com/vosui/vps-go/devlog"
	"github.com/vosui/vps-go/entity"
	"github.com/vosui/vps-go/utils/config"
	"github.com/vosui/vps-go/utils/input"
)

type fakeVehicleManager struct {
	ratios map[int32]float64
}

func (m *fakeVehicleManager) Contains(id int32) bool    { _, ok := m.ratios[id]; return ok }
func (m *fakeVehicleManager) EdgeOf(id int32) int32     { return 0 }
func (m *fakeVehicleManager) RatioOf(id int32) float64  { return m.ratios[id] }
func (m *fakeVehicleManager) ActiveCount() int          { return len(m.ratios) }

type fakeContext struct {
	vm *fakeVehicleManager
	rc *config.RuntimeConfig
}

func newFakeContext(occupancyCap int) *fakeContext {
	return &fakeContext{
		vm: &fakeVehicleManager{ratios: make(map[int32]float64)},
		rc: config.NewRuntimeConfig(config.Config{Control: config.Control{
			OccupancyCapacity: occupancyCap,
		}}),
	}
}

func (c *fakeContext) Name() string                           { return "fab-test" }
func (c *fakeContext) FabID() uint8                           { return 0 }
func (c *fakeContext) WorkerID() uint8                        { return 0 }
func (c *fakeContext) Clock() *clock.Clock                    { return nil }
func (c *fakeContext) VehicleManager() entity.IVehicleManager { return c.vm }
func (c *fakeContext) EdgeManager() entity.IEdgeManager       { return nil }
func (c *fakeContext) NodeManager() entity.INodeManager       { return nil }
func (c *fakeContext) LockManager() entity.ILockManager       { return nil }
func (c *fakeContext) RuntimeConfig() *config.RuntimeConfig   { return c.rc }
func (c *fakeContext) DevLog() devlog.Sink                    { return devlog.NopSink{} }

func testEdges() []input.Edge {
	return []input.Edge{
		{ID: 1, From: "N0", To: "N1", Length: 10, Type: 0,
			Start: []float64{0, 0}, End: []float64{10, 0}},
		{ID: 2, From: "N9", To: "N1", Length: 8, Type: 1},
	}
}

func TestEdgeManagerInit(t *testing.T) {
	m := NewManager(newFakeContext(4))
	m.Init(testEdges())

	e := m.Get(1)
	assert.Equal(t, int32(1), e.ID())
	assert.Equal(t, "E1", e.Name())
	assert.Equal(t, "N0", e.FromNode())
	assert.Equal(t, "N1", e.ToNode())
	assert.Equal(t, 10.0, e.Length())
	assert.Equal(t, devlog.EdgeLinear, e.Type())
	assert.Len(t, m.Edges(), 2)

	_, err := m.GetOrError(3)
	assert.Error(t, err)
	got, err := m.GetOrError(2)
	require.NoError(t, err)
	assert.Equal(t, devlog.EdgeCurve90, got.Type())
}

func TestEdgePositionAt(t *testing.T) {
	m := NewManager(newFakeContext(4))
	m.Init(testEdges())

	e := m.Get(1)
	p := e.PositionAt(0.5)
	assert.InDelta(t, 5.0, p.X, 1e-9)
	assert.InDelta(t, 0.0, p.Y, 1e-9)
	assert.InDelta(t, 0.0, e.Heading(), 1e-9)

	// 无端点数据时位置为原点
	p = m.Get(2).PositionAt(0.5)
	assert.Equal(t, 0.0, p.X)
	assert.Equal(t, 0.0, p.Y)
}

func TestEdgeOccupancy(t *testing.T) {
	ctx := newFakeContext(2)
	m := NewManager(ctx)
	m.Init(testEdges())
	e := m.Get(1)

	e.AddVehicle(10)
	e.AddVehicle(11)
	// 重复添加是无操作
	e.AddVehicle(10)
	assert.Equal(t, 2, e.OccupancyLen())
	// 超容插入被静默拒绝
	e.AddVehicle(12)
	assert.Equal(t, 2, e.OccupancyLen())

	e.RemoveVehicle(10)
	assert.Equal(t, []int32{11}, e.Vehicles())
}

func TestEdgeSortOccupancies(t *testing.T) {
	ctx := newFakeContext(8)
	m := NewManager(ctx)
	m.Init(testEdges())
	e := m.Get(1)

	ctx.vm.ratios[10] = 0.3
	ctx.vm.ratios[11] = 0.8
	ctx.vm.ratios[12] = 0.5
	e.AddVehicle(10)
	e.AddVehicle(11)
	e.AddVehicle(12)

	m.SortOccupancies()
	// 按实时比例位置降序：最靠前的车辆在首位
	assert.Equal(t, []int32{11, 12, 10}, e.Vehicles())
}
