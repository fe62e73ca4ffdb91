package lock

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vosui/vps-go/clock"
	"github.com/vosui/vps-go/devlog"
	"github.com/vosui/vps-go/entity"
	"github.com/vosui/vps-go/utils/config"
	"github.com/vosui/vps-go/utils/input"
)

type fakeEdge struct {
	id       int32
	from, to string
}

func (e *fakeEdge) ID() int32              { return e.id }
func (e *fakeEdge) Name() string           { return devlog.EdgeName(e.id) }
func (e *fakeEdge) FromNode() string       { return e.from }
func (e *fakeEdge) ToNode() string         { return e.to }
func (e *fakeEdge) Length() float64        { return 10 }
func (e *fakeEdge) Type() devlog.EdgeType  { return devlog.EdgeLinear }
func (e *fakeEdge) AddVehicle(id int32)    {}
func (e *fakeEdge) RemoveVehicle(id int32) {}
func (e *fakeEdge) Vehicles() []int32      { return nil }
func (e *fakeEdge) OccupancyLen() int      { return 0 }
func (e *fakeEdge) PositionAt(ratio float64) geometry.Point {
	return geometry.Point{X: ratio * 10}
}
func (e *fakeEdge) Heading() float64 { return 0 }

type fakeEdgeManager struct {
	data map[int32]*fakeEdge
}

func (m *fakeEdgeManager) Init(edges []input.Edge) {}
func (m *fakeEdgeManager) Get(id int32) entity.IEdge {
	return m.data[id]
}
func (m *fakeEdgeManager) GetOrError(id int32) (entity.IEdge, error) {
	if e, ok := m.data[id]; ok {
		return e, nil
	}
	return nil, assert.AnError
}
func (m *fakeEdgeManager) Edges() []entity.IEdge { return nil }
func (m *fakeEdgeManager) SortOccupancies()      {}

type fakeVehicleManager struct {
	edges  map[int32]int32
	ratios map[int32]float64
}

func (m *fakeVehicleManager) Contains(id int32) bool {
	_, ok := m.edges[id]
	return ok
}
func (m *fakeVehicleManager) EdgeOf(id int32) int32    { return m.edges[id] }
func (m *fakeVehicleManager) RatioOf(id int32) float64 { return m.ratios[id] }
func (m *fakeVehicleManager) ActiveCount() int         { return len(m.edges) }

type recordSink struct {
	events []devlog.LockEvent
}

func (s *recordSink) Emit(ev devlog.Event) {
	if le, ok := ev.(devlog.LockEvent); ok {
		s.events = append(s.events, le)
	}
}

func (s *recordSink) types() []string {
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.EventType)
	}
	return out
}

type fakeContext struct {
	clk  *clock.Clock
	vm   *fakeVehicleManager
	em   *fakeEdgeManager
	rc   *config.RuntimeConfig
	sink *recordSink
}

func (c *fakeContext) Name() string                          { return "fab-test" }
func (c *fakeContext) FabID() uint8                          { return 0 }
func (c *fakeContext) WorkerID() uint8                       { return 0 }
func (c *fakeContext) Clock() *clock.Clock                   { return c.clk }
func (c *fakeContext) VehicleManager() entity.IVehicleManager { return c.vm }
func (c *fakeContext) EdgeManager() entity.IEdgeManager       { return c.em }
func (c *fakeContext) NodeManager() entity.INodeManager       { return nil }
func (c *fakeContext) LockManager() entity.ILockManager       { return nil }
func (c *fakeContext) RuntimeConfig() *config.RuntimeConfig   { return c.rc }
func (c *fakeContext) DevLog() devlog.Sink                    { return c.sink }

// 拓扑：E1、E2汇入N1，E3从N1流出
func newTestContext(control config.Control) *fakeContext {
	return &fakeContext{
		clk: clock.New(config.ControlStep{Interval: 0.1}),
		vm: &fakeVehicleManager{
			edges:  make(map[int32]int32),
			ratios: make(map[int32]float64),
		},
		em: &fakeEdgeManager{data: map[int32]*fakeEdge{
			1: {id: 1, from: "N0", to: "N1"},
			2: {id: 2, from: "N9", to: "N1"},
			3: {id: 3, from: "N1", to: "N2"},
			4: {id: 4, from: "N7", to: "N8"},
		}},
		rc:   config.NewRuntimeConfig(config.Config{Control: control}),
		sink: &recordSink{},
	}
}

func newTestManager(control config.Control) (*LockManager, *fakeContext) {
	ctx := newTestContext(control)
	m := NewManager(ctx)
	m.Init([]string{"N1"})
	return m, ctx
}

func TestLockGrantAndQueue(t *testing.T) {
	m, _ := newTestManager(config.Control{})

	// 空闲时立即授予
	assert.True(t, m.Request("N1", 100, 1))
	assert.True(t, m.IsHolder("N1", 100))

	// 被占用时入队
	assert.False(t, m.Request("N1", 101, 2))
	assert.False(t, m.IsHolder("N1", 101))
	assert.Equal(t, 1, m.WaitingCount())

	// 重复请求不重复入队
	assert.False(t, m.Request("N1", 101, 2))
	assert.Equal(t, 1, m.WaitingCount())

	// 释放后队首晋升
	assert.True(t, m.Release("N1", 100))
	assert.True(t, m.IsHolder("N1", 101))
	assert.Equal(t, 0, m.WaitingCount())
}

func TestLockFIFOOrder(t *testing.T) {
	m, _ := newTestManager(config.Control{})

	require.True(t, m.Request("N1", 1, 1))
	for _, veh := range []int32{2, 3, 4} {
		require.False(t, m.Request("N1", veh, 2))
	}

	// 按到达顺序逐个授予
	for _, expect := range []int32{2, 3, 4} {
		m.Release("N1", m.Snapshot()[0].Holder)
		assert.True(t, m.IsHolder("N1", expect))
	}
}

func TestLockReleaseIdempotent(t *testing.T) {
	m, _ := newTestManager(config.Control{})

	require.True(t, m.Request("N1", 1, 1))
	require.False(t, m.Request("N1", 2, 2))

	// 非持有者释放是无操作
	assert.False(t, m.Release("N1", 2))
	assert.True(t, m.IsHolder("N1", 1))
	assert.Equal(t, 1, m.WaitingCount())

	assert.True(t, m.Release("N1", 1))
	// 重复释放是无操作
	assert.False(t, m.Release("N1", 1))
	assert.True(t, m.IsHolder("N1", 2))
}

func TestLockUnknownNode(t *testing.T) {
	m, _ := newTestManager(config.Control{})

	// 非合流点无需互斥
	assert.True(t, m.Request("N8", 1, 4))
	assert.True(t, m.IsHolder("N8", 1))
	assert.False(t, m.Release("N8", 1))
	assert.Equal(t, 0, m.WaitingCount())
}

func TestLockBatchPromotion(t *testing.T) {
	m, _ := newTestManager(config.Control{
		LockStrategy:  config.LockStrategyBatch,
		BatchCapacity: 2,
	})

	require.True(t, m.Request("N1", 1, 1))
	for _, veh := range []int32{2, 3, 4} {
		require.False(t, m.Request("N1", veh, 2))
	}

	// 释放后整组放行，组大小受容量限制
	m.Release("N1", 1)
	assert.True(t, m.IsHolder("N1", 2))
	assert.True(t, m.IsHolder("N1", 3))
	assert.False(t, m.IsHolder("N1", 4))
	assert.Equal(t, 1, m.WaitingCount())

	// 放行期间新到达的请求者排入下一组
	require.False(t, m.Request("N1", 5, 1))

	// 组内全部释放后才晋升下一组
	m.Release("N1", 2)
	assert.False(t, m.IsHolder("N1", 4))
	m.Release("N1", 3)
	assert.True(t, m.IsHolder("N1", 4))
	assert.True(t, m.IsHolder("N1", 5))
}

func TestLockDiscard(t *testing.T) {
	m, _ := newTestManager(config.Control{})

	require.True(t, m.Request("N1", 1, 1))
	require.False(t, m.Request("N1", 2, 2))
	require.False(t, m.Request("N1", 3, 1))

	// 丢弃等待者将其移出队列
	m.Discard(2)
	assert.Equal(t, 1, m.WaitingCount())

	// 丢弃持有者触发晋升
	m.Discard(1)
	assert.True(t, m.IsHolder("N1", 3))
}

func TestLockAutoRelease(t *testing.T) {
	m, ctx := newTestManager(config.Control{AutoReleaseRatio: 0.25})

	// 车1持锁，车2等待
	ctx.vm.edges[1] = 1
	ctx.vm.ratios[1] = 0.9
	ctx.vm.edges[2] = 2
	ctx.vm.ratios[2] = 0.8
	require.True(t, m.Request("N1", 1, 1))
	require.False(t, m.Request("N1", 2, 2))

	// 仍在驶向合流点（E1终点为N1），不释放
	m.AutoRelease()
	assert.True(t, m.IsHolder("N1", 1))

	// 已驶出合流点但未过阈值，不释放
	ctx.vm.edges[1] = 3
	ctx.vm.ratios[1] = 0.1
	m.AutoRelease()
	assert.True(t, m.IsHolder("N1", 1))

	// 越过阈值，强制释放并晋升等待者
	ctx.vm.ratios[1] = 0.3
	m.AutoRelease()
	assert.False(t, m.IsHolder("N1", 1))
	assert.True(t, m.IsHolder("N1", 2))
}

func TestLockAutoReleaseUnrelatedEdge(t *testing.T) {
	m, ctx := newTestManager(config.Control{AutoReleaseRatio: 0.25})

	ctx.vm.edges[1] = 4 // 与N1完全无关的Edge
	ctx.vm.ratios[1] = 0.0
	require.True(t, m.Request("N1", 1, 4))

	m.AutoRelease()
	assert.False(t, m.IsHolder("N1", 1))
}

func TestLockAutoReleaseVanishedVehicle(t *testing.T) {
	m, ctx := newTestManager(config.Control{})

	ctx.vm.edges[1] = 1
	require.True(t, m.Request("N1", 1, 1))
	delete(ctx.vm.edges, 1)

	m.AutoRelease()
	snapshot := m.Snapshot()
	assert.Empty(t, snapshot)
}

func TestLockEventTrail(t *testing.T) {
	m, ctx := newTestManager(config.Control{AutoReleaseRatio: 0.25})

	// 立即授予：request后紧跟grant
	ctx.vm.edges[1] = 1
	require.True(t, m.Request("N1", 1, 1))
	assert.Equal(t, []string{"request", "grant"}, ctx.sink.types())

	// 入队等待：request后跟wait，每tick重试不重复记录
	require.False(t, m.Request("N1", 2, 2))
	require.False(t, m.Request("N1", 2, 2))
	assert.Equal(t, []string{"request", "grant", "request", "wait"}, ctx.sink.types())

	// 显式释放晋升等待者
	require.True(t, m.Release("N1", 1))
	assert.Equal(t,
		[]string{"request", "grant", "request", "wait", "release", "grant"},
		ctx.sink.types())

	// 持有者越过阈值被强制释放，事件按warn级别输出
	ctx.vm.edges[2] = 3
	ctx.vm.ratios[2] = 0.5
	m.AutoRelease()
	last := ctx.sink.events[len(ctx.sink.events)-1]
	assert.Equal(t, "auto_release", last.EventType)
	assert.Equal(t, int32(2), last.VehID)
	assert.Equal(t, devlog.LevelWarn, last.EventLevel())
}

func TestLockSnapshotAndReset(t *testing.T) {
	m, _ := newTestManager(config.Control{})

	require.True(t, m.Request("N1", 1, 1))
	require.False(t, m.Request("N1", 2, 2))

	snapshot := m.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "N1", snapshot[0].Node)
	assert.Equal(t, int32(1), snapshot[0].Holder)
	assert.Equal(t, []int32{1}, snapshot[0].Holders)
	require.Len(t, snapshot[0].Waiters, 1)
	assert.Equal(t, int32(2), snapshot[0].Waiters[0].VehID)
	assert.Equal(t, int32(2), snapshot[0].Waiters[0].Edge)

	m.Reset()
	assert.Empty(t, m.Snapshot())
	assert.Equal(t, 0, m.WaitingCount())
	assert.True(t, m.Request("N1", 3, 1))
}
