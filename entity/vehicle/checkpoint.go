package vehicle

import (
	"fmt"

	"github.com/vosui/vps-go/devlog"
	"github.com/vosui/vps-go/entity"
	"github.com/vosui/vps-go/utils/input"
)

// 检查点数组布局：每个槽位一段连续窗口
// [count, count×(edge, ratio, flags, target)]
const checkpointFieldCount = 4

// Checkpoint 单个检查点
type Checkpoint struct {
	Edge   int32   // 检查点所在Edge ID
	Ratio  float64 // 比例位置
	Flags  uint32  // 动作标志位
	Target int32   // 目标Edge ID
}

// CheckpointStore 检查点序列存储
// 功能：以连续数值数组保存所有车辆的预计算检查点序列
// 说明：序列对本核心只读（由规划器写入），按槽位定长窗口排列，
// 初始化时一次性分配
type CheckpointStore struct {
	data          []float64 // 连续数组，每槽位窗口长度为1+4*maxPerVehicle
	maxPerVehicle int       // 单车检查点容量
	window        int       // 单槽位窗口长度
}

// NewCheckpointStore 创建检查点序列存储
// 参数：capacity-车辆槽位容量，maxPerVehicle-单车检查点容量
func NewCheckpointStore(capacity, maxPerVehicle int) *CheckpointStore {
	window := 1 + checkpointFieldCount*maxPerVehicle
	return &CheckpointStore{
		data:          make([]float64, capacity*window),
		maxPerVehicle: maxPerVehicle,
		window:        window,
	}
}

// SetSequence 写入一个槽位的检查点序列
// 参数：slot-车辆槽位，cps-检查点序列
// 返回：序列超出单车容量时返回error
func (cs *CheckpointStore) SetSequence(slot int, cps []input.Checkpoint) error {
	if len(cps) > cs.maxPerVehicle {
		return fmt.Errorf("checkpoint sequence too long: %d > %d", len(cps), cs.maxPerVehicle)
	}
	base := slot * cs.window
	cs.data[base] = float64(len(cps))
	for i, cp := range cps {
		off := base + 1 + i*checkpointFieldCount
		cs.data[off] = float64(cp.Edge)
		cs.data[off+1] = cp.Ratio
		cs.data[off+2] = float64(cp.Flags)
		cs.data[off+3] = float64(cp.Target)
	}
	return nil
}

// ClearSequence 清空一个槽位的检查点序列
func (cs *CheckpointStore) ClearSequence(slot int) {
	base := slot * cs.window
	for i := 0; i < cs.window; i++ {
		cs.data[base+i] = 0
	}
}

// Count 获取槽位的检查点总数
func (cs *CheckpointStore) Count(slot int) int {
	return int(cs.data[slot*cs.window])
}

// At 获取槽位的第i个检查点
func (cs *CheckpointStore) At(slot, i int) Checkpoint {
	off := slot*cs.window + 1 + i*checkpointFieldCount
	return Checkpoint{
		Edge:   int32(cs.data[off]),
		Ratio:  cs.data[off+1],
		Flags:  uint32(cs.data[off+2]),
		Target: int32(cs.data[off+3]),
	}
}

// CheckpointStatus 检查点状态机单步判定结果
type CheckpointStatus int

const (
	CheckpointIdle          CheckpointStatus = iota // 序列未挂载，本tick跳过
	CheckpointWaiting                               // 检查点仍在前方，无动作
	CheckpointHit                                   // 已到达检查点，执行其动作
	CheckpointMissed                                // 已越过检查点，追赶推进
	CheckpointRouteComplete                         // 已无后续检查点（终态，非错误）
)

// StepCheckpoint 推进一辆车的检查点状态机（每tick调用一次）
// 功能：对比实时位置与当前检查点，执行到达动作并推进头索引
// 参数：id-车辆ID，v-车辆记录句柄
// 返回：本tick的判定结果
// 算法说明：
// 1. 游标为空时从序列头索引加载下一检查点；头索引越界则清空游标，
//    报告路径完成（终态）
// 2. 当前Edge等于检查点Edge且比例位置已达标→HIT：执行标志位动作，
//    全部标志位清零后头索引+1并立即加载下一检查点
// 3. 当前Edge不同：检查点Edge仍在前瞻窗口内→WAITING；
//    不在窗口内→MISSED：实际位置已越过同步点（如大步长跳跃），
//    视作已满足并推进头索引但不执行其标志位，靠下一检查点重新对齐
// 4. 同Edge但比例位置未达标→WAITING
// 说明：用固定小前瞻窗口做O(1)错过判定，避免按路径长度扫描的无界开销
func (m *Manager) StepCheckpoint(id int32, v Vehicle) CheckpointStatus {
	if m.checkpoints == nil {
		// 缓冲区未挂载，本tick跳过，挂载后恢复处理
		return CheckpointIdle
	}

	if v.CPEdge() == 0 {
		if !m.loadCheckpoint(v) {
			return CheckpointRouteComplete
		}
	}

	cpEdge := v.CPEdge()
	cur := v.CurrentEdge()
	switch {
	case cur == cpEdge:
		if v.EdgeRatio() < v.CPRatio() {
			return CheckpointWaiting
		}
		m.executeFlags(id, v)
		if v.CPFlags() == uint32(devlog.FlagCompleted) {
			m.advanceCheckpoint(id, v, "hit")
		}
		return CheckpointHit
	case v.HasNextEdge(cpEdge):
		return CheckpointWaiting
	default:
		// 错过：位置已越过同步点，推进但不执行标志位
		m.ctx.DevLog().Emit(devlog.CheckpointEvent{
			VehID:   id,
			CpIndex: int32(v.CPHead()),
			EdgeID:  cpEdge,
			Ratio:   v.CPRatio(),
			Flags:   devlog.Flags(v.CPFlags()),
			Action:  "missed",
			Details: fmt.Sprintf("current=%s", devlog.EdgeName(cur)),
			Level:   devlog.LevelWarn,
		})
		m.advanceCheckpoint(id, v, "missed")
		return CheckpointMissed
	}
}

// loadCheckpoint 从序列头索引加载检查点到游标
// 返回：false表示序列已耗尽（游标被清空）
func (m *Manager) loadCheckpoint(v Vehicle) bool {
	slot := v.Slot()
	head := v.CPHead()
	if head >= m.checkpoints.Count(slot) {
		v.ClearCPCursor()
		return false
	}
	cp := m.checkpoints.At(slot, head)
	v.SetCPCursor(cp.Edge, cp.Ratio, cp.Flags, cp.Target)
	return true
}

// advanceCheckpoint 推进头索引并加载下一检查点
// 说明：头索引单调递增，永不超过序列长度
func (m *Manager) advanceCheckpoint(id int32, v Vehicle, action string) {
	v.SetCPHead(v.CPHead() + 1)
	if m.loadCheckpoint(v) {
		m.ctx.DevLog().Emit(devlog.CheckpointEvent{
			VehID:   id,
			CpIndex: int32(v.CPHead()),
			EdgeID:  v.CPEdge(),
			Ratio:   v.CPRatio(),
			Flags:   devlog.Flags(v.CPFlags()),
			Action:  "load",
			Details: "after " + action,
			Level:   devlog.LevelDebug,
		})
	}
}

// executeFlags 执行检查点标志位动作
// 功能：按位执行request/wait/release/prepare，成功的位逐个清零
// 说明：LOCK_REQUEST未获授予时保持置位，下个tick重试（重复请求不重复入队）；
// LOCK_WAIT仅在成为持有者后清零；LOCK_RELEASE对非持有者是无操作
func (m *Manager) executeFlags(id int32, v Vehicle) {
	flags := devlog.Flags(v.CPFlags())
	lockMgr := m.ctx.LockManager()

	if flags.Has(devlog.FlagLockRequest) {
		if node, ok := m.lockNode(v); ok {
			if lockMgr.Request(node, id, v.CurrentEdge()) {
				flags = flags.Clear(devlog.FlagLockRequest)
			}
		} else {
			// 拓扑缺失，防御性清位避免卡死
			flags = flags.Clear(devlog.FlagLockRequest)
		}
	}
	if flags.Has(devlog.FlagLockWait) {
		node, ok := m.lockNode(v)
		if ok && !lockMgr.IsHolder(node, id) {
			v.SetMovingStatus(entity.MovingStatusStopped)
			v.SetTrafficState(entity.TrafficStateBlocked)
			v.SetStopReason(entity.StopReasonLockWait)
		} else {
			flags = flags.Clear(devlog.FlagLockWait)
			if v.StopReason() == entity.StopReasonLockWait {
				v.SetMovingStatus(entity.MovingStatusMoving)
				v.SetTrafficState(entity.TrafficStateNormal)
				v.SetStopReason(entity.StopReasonNone)
			}
		}
	}
	if flags.Has(devlog.FlagLockRelease) {
		if node, ok := m.lockNode(v); ok {
			lockMgr.Release(node, id)
		}
		flags = flags.Clear(devlog.FlagLockRelease)
	}
	if flags.Has(devlog.FlagMovePrepare) {
		if v.MovingStatus() == entity.MovingStatusStopped {
			v.SetMovingStatus(entity.MovingStatusPrepare)
		}
		flags = flags.Clear(devlog.FlagMovePrepare)
	}

	v.SetCPFlags(uint32(flags))
}

// lockNode 解析检查点对应的合流点名
// 说明：目标Edge存在时取其起点Node（合流点即目标Edge的入口），
// 否则取检查点Edge的终点Node
func (m *Manager) lockNode(v Vehicle) (string, bool) {
	edgeManager := m.ctx.EdgeManager()
	if target := v.CPTarget(); target != 0 {
		if e, err := edgeManager.GetOrError(target); err == nil {
			return e.FromNode(), true
		}
		return "", false
	}
	if e, err := edgeManager.GetOrError(v.CPEdge()); err == nil {
		return e.ToNode(), true
	}
	return "", false
}
