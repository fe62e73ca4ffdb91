package lock

import (
	"fmt"

	"github.com/vosui/vps-go/devlog"
	"github.com/vosui/vps-go/entity"
	"github.com/vosui/vps-go/utils/config"
)

// Strategy 锁授予策略
type Strategy int

const (
	StrategyFIFO  Strategy = iota // 严格按到达顺序逐个授予
	StrategyBatch                 // 按组整体放行，高争用下以吞吐换单次授予延迟
)

// ParseStrategy 解析配置中的策略名
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case config.LockStrategyFIFO, "":
		return StrategyFIFO, nil
	case config.LockStrategyBatch:
		return StrategyBatch, nil
	default:
		return StrategyFIFO, fmt.Errorf("unknown lock strategy %q", s)
	}
}

// waiter 等待队列中的一项
type waiter struct {
	veh   int32   // 车辆ID
	edge  int32   // 入队时车辆所在Edge ID
	since float64 // 入队时刻（仿真秒）
}

// nodeLock 单个合流点的锁状态
// 说明：一个合流点同一时刻至多一个持有者；batch策略下
// 同组放行成员共享一次放行，组内全部释放后才晋升下一组
type nodeLock struct {
	name   string   // 合流点名
	holder int32    // 持有者车辆ID，-1表示空闲
	group  []int32  // 当前放行组成员（含持有者），FIFO下长度至多1
	queue  []waiter // 有序等待队列
}

// LockManager 合流点锁管理器
// 功能：对合流点的独占访问进行授予、持有与释放管理
// 说明：锁表私有于其所属Fab的工作线程，内部不加锁；
// 锁表在地图加载时创建，仿真重置时清空
type LockManager struct {
	ctx entity.IFabContext

	strategy      Strategy
	batchCapacity int

	data  map[string]*nodeLock
	names []string // 初始化顺序的合流点名，用于稳定快照输出

	// 车辆到其在途锁节点的映射（单车同一时刻至多一个在途锁请求）
	byVeh map[int32]string
}

// NewManager 创建锁管理器实例
// 参数：ctx-Fab上下文
func NewManager(ctx entity.IFabContext) *LockManager {
	strategy, err := ParseStrategy(ctx.RuntimeConfig().C.LockStrategy)
	if err != nil {
		log.Panicf("lock manager: %v", err)
	}
	return &LockManager{
		ctx:           ctx,
		strategy:      strategy,
		batchCapacity: ctx.RuntimeConfig().C.BatchCapacity,
		data:          make(map[string]*nodeLock),
		names:         make([]string, 0),
		byVeh:         make(map[int32]string),
	}
}

// Init 由合流点集合初始化锁表
// 参数：nodes-合流点名列表（由Node管理器按拓扑推导）
func (m *LockManager) Init(nodes []string) {
	for _, name := range nodes {
		m.data[name] = &nodeLock{name: name, holder: -1}
		m.names = append(m.names, name)
	}
}

// Request 请求合流点锁
// 功能：空闲时立即授予；被占用时按策略入队或并入批次组
// 参数：node-合流点名，veh-车辆ID，edge-车辆当前Edge ID
// 返回：true表示veh已是持有者（立即授予或先前已授予）
// 说明：未授予时请求保持挂起，车辆每tick重试，重复请求不会重复入队
func (m *LockManager) Request(node string, veh int32, edge int32) bool {
	nl, ok := m.data[node]
	if !ok {
		// 非合流点无需互斥，视作直接放行
		log.Debugf("lock request for non-merge node %s by vehicle %d", node, veh)
		return true
	}
	if m.isMember(nl, veh) {
		return true
	}
	for _, w := range nl.queue {
		// 挂起请求的每tick重试，不重复入队也不重复记录
		if w.veh == veh {
			return false
		}
	}
	if prev, ok := m.byVeh[veh]; ok && prev != node {
		// 设计上单车同一时刻至多一个在途锁请求
		log.Warnf("vehicle %d requests lock %s while pending on %s", veh, node, prev)
	}
	m.ctx.DevLog().Emit(devlog.LockEvent{
		VehID: veh, LockID: node, EventType: "request", EdgeID: edge,
	})

	if nl.holder == -1 && len(nl.queue) == 0 {
		m.grant(nl, veh, edge, 0)
		return true
	}
	nl.queue = append(nl.queue, waiter{veh: veh, edge: edge, since: m.ctx.Clock().T})
	m.byVeh[veh] = node
	m.ctx.DevLog().Emit(devlog.LockEvent{
		VehID: veh, LockID: node, EventType: "wait", EdgeID: edge,
	})
	return false
}

// IsHolder 判断veh是否为node的持有者
// 说明：batch策略下同组放行成员均视作持有者
func (m *LockManager) IsHolder(node string, veh int32) bool {
	nl, ok := m.data[node]
	if !ok {
		return true
	}
	return m.isMember(nl, veh)
}

// Release 释放veh持有的node锁
// 功能：持有者退出放行组，组清空后晋升后继（FIFO单车/batch整组）
// 返回：true表示实际发生了释放
// 说明：非持有者调用是无操作（幂等，防御路径遗漏显式释放的情况）
func (m *LockManager) Release(node string, veh int32) bool {
	nl, ok := m.data[node]
	if !ok || !m.isMember(nl, veh) {
		return false
	}
	m.releaseMember(nl, veh, "release")
	return true
}

// Discard 丢弃veh的全部锁状态
// 功能：车辆移除时清理其持有与等待状态
func (m *LockManager) Discard(veh int32) {
	node, ok := m.byVeh[veh]
	if !ok {
		return
	}
	nl := m.data[node]
	if m.isMember(nl, veh) {
		m.releaseMember(nl, veh, "discard")
		return
	}
	for i, w := range nl.queue {
		if w.veh == veh {
			nl.queue = append(nl.queue[:i], nl.queue[i+1:]...)
			break
		}
	}
	delete(m.byVeh, veh)
}

// AutoRelease 自动释放扫描
// 功能：强制释放已越过合流点而未执行显式释放检查点的持有者
// 说明：每tick在检查点处理之前调用，因此本tick释放的锁对本tick的
// 请求者可见；以行驶位置而非墙钟时间为界，变帧率下行为确定。
// 判定规则：持有者位于以该合流点为起点的Edge上且比例位置超过阈值，
// 或其当前Edge与该合流点完全无关（已远离），均视为越过
func (m *LockManager) AutoRelease() {
	vm := m.ctx.VehicleManager()
	em := m.ctx.EdgeManager()
	threshold := m.ctx.RuntimeConfig().C.AutoReleaseRatio
	for _, name := range m.names {
		nl := m.data[name]
		if nl.holder == -1 {
			continue
		}
		// 放行组在释放中被修改，先复制成员
		members := append([]int32(nil), nl.group...)
		for _, veh := range members {
			if !vm.Contains(veh) {
				m.forceRelease(nl, veh)
				continue
			}
			cur := vm.EdgeOf(veh)
			e, err := em.GetOrError(cur)
			if err != nil {
				continue
			}
			switch {
			case e.ToNode() == nl.name:
				// 仍在驶向合流点
			case e.FromNode() == nl.name:
				if vm.RatioOf(veh) >= threshold {
					m.forceRelease(nl, veh)
				}
			default:
				m.forceRelease(nl, veh)
			}
		}
	}
}

// Snapshot 获取全部活跃合流点的锁状态快照
// 功能：对外检查面板的查询接口，包含持有者与有序等待队列
func (m *LockManager) Snapshot() []entity.LockSnapshot {
	out := make([]entity.LockSnapshot, 0)
	for _, name := range m.names {
		nl := m.data[name]
		if nl.holder == -1 && len(nl.queue) == 0 {
			continue
		}
		s := entity.LockSnapshot{
			Node:    name,
			Holder:  nl.holder,
			Holders: append([]int32(nil), nl.group...),
			Waiters: make([]entity.LockWaiter, 0, len(nl.queue)),
		}
		for _, w := range nl.queue {
			s.Waiters = append(s.Waiters, entity.LockWaiter{VehID: w.veh, Edge: w.edge})
		}
		out = append(out, s)
	}
	return out
}

// WaitingCount 获取等待队列总长度
func (m *LockManager) WaitingCount() int {
	n := 0
	for _, nl := range m.data {
		n += len(nl.queue)
	}
	return n
}

// Reset 清空所有锁状态
// 说明：仿真重置时调用，合流点集合本身保持不变
func (m *LockManager) Reset() {
	for _, nl := range m.data {
		nl.holder = -1
		nl.group = nl.group[:0]
		nl.queue = nl.queue[:0]
	}
	m.byVeh = make(map[int32]string)
}

// isMember 判断veh是否在当前放行组中
func (m *LockManager) isMember(nl *nodeLock, veh int32) bool {
	for _, g := range nl.group {
		if g == veh {
			return true
		}
	}
	return false
}

// grant 授予veh该合流点的锁
func (m *LockManager) grant(nl *nodeLock, veh int32, edge int32, waitedMs float64) {
	if nl.holder == -1 {
		nl.holder = veh
	}
	nl.group = append(nl.group, veh)
	m.byVeh[veh] = nl.name
	m.ctx.DevLog().Emit(devlog.LockEvent{
		VehID: veh, LockID: nl.name, EventType: "grant", EdgeID: edge, WaitTimeMs: waitedMs,
	})
}

// releaseMember 将veh移出放行组并在组清空时晋升后继
func (m *LockManager) releaseMember(nl *nodeLock, veh int32, eventType string) {
	for i, g := range nl.group {
		if g == veh {
			nl.group = append(nl.group[:i], nl.group[i+1:]...)
			break
		}
	}
	delete(m.byVeh, veh)
	if nl.holder == veh {
		if len(nl.group) > 0 {
			nl.holder = nl.group[0]
		} else {
			nl.holder = -1
		}
	}
	m.ctx.DevLog().Emit(devlog.LockEvent{
		VehID: veh, LockID: nl.name, EventType: eventType,
		EdgeID: m.ctx.VehicleManager().EdgeOf(veh),
	})
	if len(nl.group) == 0 {
		m.promote(nl)
	}
}

// forceRelease 自动释放一个越过合流点的持有者
// 说明：走到这里说明车辆计划遗漏了显式释放检查点，按warn输出
func (m *LockManager) forceRelease(nl *nodeLock, veh int32) {
	log.Warnf("auto release lock %s held by vehicle %d", nl.name, veh)
	m.releaseMember(nl, veh, "auto_release")
}

// promote 晋升等待队列的后继
// 功能：FIFO策略晋升队首一辆车；batch策略将当前排队的车辆整组放行，
// 组大小不超过配置容量——组在锁空闲的时刻形成，放行期间新到达的
// 请求者排入下一组
func (m *LockManager) promote(nl *nodeLock) {
	if len(nl.queue) == 0 {
		return
	}
	now := m.ctx.Clock().T
	n := 1
	if m.strategy == StrategyBatch {
		n = len(nl.queue)
		if n > m.batchCapacity {
			n = m.batchCapacity
		}
	}
	admitted := nl.queue[:n]
	for _, w := range admitted {
		m.grant(nl, w.veh, w.edge, (now-w.since)*1000)
	}
	nl.queue = append(nl.queue[:0], nl.queue[n:]...)
}
