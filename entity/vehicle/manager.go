package vehicle

import (
	"fmt"

	"github.com/vosui/vps-go/entity"
	"github.com/vosui/vps-go/utils/container"
	"github.com/vosui/vps-go/utils/input"
)

// slotRef 活跃车辆集合中的一项
// 说明：嵌入IncrementalItemBase以支持增量数组的原地补位删除
type slotRef struct {
	container.IncrementalItemBase
	id   int32 // 车辆ID
	slot int   // 记录槽位
}

// Manager 车辆管理器
// 功能：管理一个Fab的全部车辆，提供槽位分配、路径缓冲、
// 检查点处理与活跃集合维护
// 说明：管理器私有于其所属Fab的工作线程，内部不加锁
type Manager struct {
	ctx entity.IFabContext

	store       *Store           // 车辆状态存储
	checkpoints *CheckpointStore // 检查点序列存储，挂载前处理被跳过

	data   map[int32]*slotRef                  // 车辆ID映射表
	active *container.IncrementalArray[*slotRef] // 活跃车辆集合（tick边界生效）

	freeSlots []int     // 可复用槽位栈
	routes    [][]int32 // 每槽位的预计算路径缓冲
	routeCur  []int     // 每槽位的路径游标（当前Edge在路径中的下标）
}

// NewManager 创建车辆管理器实例
// 功能：按容量一次性分配所有缓冲区，热路径上不再分配
// 参数：ctx-Fab上下文，capacity-槽位容量（预期车辆数+余量）
// 返回：新创建的车辆管理器实例
func NewManager(ctx entity.IFabContext, capacity int) *Manager {
	m := &Manager{
		ctx:       ctx,
		store:     NewStore(capacity),
		data:      make(map[int32]*slotRef, capacity),
		active:    container.NewIncrementalArray[*slotRef](),
		freeSlots: make([]int, 0, capacity),
		routes:    make([][]int32, capacity),
		routeCur:  make([]int, capacity),
	}
	for slot := capacity - 1; slot >= 0; slot-- {
		m.freeSlots = append(m.freeSlots, slot)
	}
	return m
}

// AttachCheckpoints 挂载检查点序列存储
// 说明：挂载前StepCheckpoint对所有车辆返回Idle（跳过，不报错）
func (m *Manager) AttachCheckpoints(cs *CheckpointStore) {
	m.checkpoints = cs
}

// Checkpoints 获取检查点序列存储
func (m *Manager) Checkpoints() *CheckpointStore {
	return m.checkpoints
}

// Store 获取车辆状态存储
func (m *Manager) Store() *Store {
	return m.store
}

// Add 向仿真中加入一辆车
// 功能：分配槽位、初始化记录、写入路径与检查点序列、登记占用列表
// 参数：id-车辆ID（需唯一），plan-路径与检查点序列
// 返回：错误信息（ID冲突、容量耗尽、路径为空、序列超长）
// 说明：加入在下个tick边界生效（增量数组延迟应用）
func (m *Manager) Add(id int32, plan input.VehiclePlan) error {
	if _, ok := m.data[id]; ok {
		return fmt.Errorf("vehicle %d already in simulation", id)
	}
	if len(m.freeSlots) == 0 {
		return fmt.Errorf("vehicle capacity %d exhausted", m.store.Capacity())
	}
	if len(plan.Route) == 0 {
		return fmt.Errorf("vehicle %d has empty route", id)
	}
	first, err := m.ctx.EdgeManager().GetOrError(plan.Route[0])
	if err != nil {
		return fmt.Errorf("vehicle %d route head: %w", id, err)
	}

	slot := m.freeSlots[len(m.freeSlots)-1]
	v := m.store.At(slot)
	v.Clear()
	v.SetCurrentEdge(plan.Route[0])
	v.SetMovingStatus(entity.MovingStatusMoving)
	m.routes[slot] = plan.Route
	m.routeCur[slot] = 0
	m.fillNextEdges(v, slot)
	if m.checkpoints != nil {
		if err := m.checkpoints.SetSequence(slot, plan.Checkpoints); err != nil {
			return fmt.Errorf("vehicle %d: %w", id, err)
		}
	}

	m.freeSlots = m.freeSlots[:len(m.freeSlots)-1]
	ref := &slotRef{id: id, slot: slot}
	m.data[id] = ref
	m.active.Add(ref)
	first.AddVehicle(id)
	return nil
}

// Remove 从仿真中移除一辆车
// 功能：丢弃锁状态、退出占用列表、清零记录并回收槽位
// 说明：记录清零后槽位可复用，不会销毁
func (m *Manager) Remove(id int32) error {
	ref, ok := m.data[id]
	if !ok {
		return fmt.Errorf("no id %d in vehicle data", id)
	}
	v := m.store.At(ref.slot)
	m.ctx.LockManager().Discard(id)
	if cur := v.CurrentEdge(); cur != 0 {
		if e, err := m.ctx.EdgeManager().GetOrError(cur); err == nil {
			e.RemoveVehicle(id)
		}
	}
	if m.checkpoints != nil {
		m.checkpoints.ClearSequence(ref.slot)
	}
	v.Clear()
	m.routes[ref.slot] = nil
	m.routeCur[ref.slot] = 0
	m.freeSlots = append(m.freeSlots, ref.slot)
	delete(m.data, id)
	m.active.Remove(ref)
	return nil
}

// Get 根据ID获取车辆记录句柄，如果不存在则panic
func (m *Manager) Get(id int32) Vehicle {
	if ref, ok := m.data[id]; !ok {
		log.Panicf("no id %d in vehicle data", id)
		return Vehicle{}
	} else {
		return m.store.At(ref.slot)
	}
}

// GetOrError 根据ID获取车辆记录句柄，如果不存在则返回error
func (m *Manager) GetOrError(id int32) (Vehicle, error) {
	if ref, ok := m.data[id]; !ok {
		return Vehicle{}, fmt.Errorf("no id %d in vehicle data", id)
	} else {
		return m.store.At(ref.slot), nil
	}
}

// Prepare 准备阶段，应用活跃集合的增量操作
func (m *Manager) Prepare() {
	m.active.Prepare()
}

// ForEachActive 按槽位登记顺序遍历活跃车辆
// 说明：遍历顺序即锁请求的公平顺序，调用方不得在回调中增删车辆记录
func (m *Manager) ForEachActive(f func(id int32, v Vehicle)) {
	for _, ref := range m.active.Data() {
		f(ref.id, m.store.At(ref.slot))
	}
}

// AdvanceRoute 将车辆的路径游标推进到下一条Edge
// 功能：Edge切换时刷新前瞻窗口
// 返回：剩余路径长度（含当前Edge）
func (m *Manager) AdvanceRoute(v Vehicle) int {
	slot := v.Slot()
	if m.routeCur[slot]+1 < len(m.routes[slot]) {
		m.routeCur[slot]++
	}
	m.fillNextEdges(v, slot)
	return len(m.routes[slot]) - m.routeCur[slot]
}

// PathRemaining 获取剩余路径长度（含当前Edge）
func (m *Manager) PathRemaining(v Vehicle) int {
	slot := v.Slot()
	if m.routes[slot] == nil {
		return 0
	}
	return len(m.routes[slot]) - m.routeCur[slot]
}

// fillNextEdges 按路径游标填充前瞻窗口，不足处补0
func (m *Manager) fillNextEdges(v Vehicle, slot int) {
	route := m.routes[slot]
	cur := m.routeCur[slot]
	for i := 0; i < entity.NextEdgeCount; i++ {
		next := cur + 1 + i
		if next < len(route) {
			v.SetNextEdge(i, route[next])
		} else {
			v.SetNextEdge(i, 0)
		}
	}
}

// Contains 判断车辆是否在仿真中
func (m *Manager) Contains(id int32) bool {
	_, ok := m.data[id]
	return ok
}

// EdgeOf 获取车辆当前Edge ID，不存在返回0
func (m *Manager) EdgeOf(id int32) int32 {
	if ref, ok := m.data[id]; ok {
		return m.store.At(ref.slot).CurrentEdge()
	}
	return 0
}

// RatioOf 获取车辆当前Edge比例位置
func (m *Manager) RatioOf(id int32) float64 {
	if ref, ok := m.data[id]; ok {
		return m.store.At(ref.slot).EdgeRatio()
	}
	return 0
}

// ActiveCount 获取活跃车辆数
func (m *Manager) ActiveCount() int {
	return m.active.Len()
}
