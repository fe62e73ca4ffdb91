package fab

import (
	"fmt"
	"runtime"
	"time"

	"github.com/vosui/vps-go/devlog"
	"github.com/vosui/vps-go/entity"
	"github.com/vosui/vps-go/entity/vehicle"
)

// perfInterval 性能事件的输出间隔（tick数）
const perfInterval = 100

// Tick 推进一个仿真步
// 功能：指令执行→准备阶段→更新阶段→渲染发布的固定顺序
// 算法说明：
// 1. 指令：取出并执行全部排队的外部指令
// 2. 准备：推进时钟，应用活跃集合增量，自动释放扫描——
//    本tick释放的锁对本tick的请求者可见
// 3. 更新：按登记顺序逐车推进检查点状态机与运动积分，
//    顺序处理保证同一锁的请求顺序在tick之间稳定
// 4. 收尾：重排占用列表，重写渲染缓冲，周期性输出性能事件
func (f *Fab) Tick() {
	if f.Status() != StatusRunning {
		return
	}

	f.drainCommands()

	f.clk.Tick()
	f.vehicles.Prepare()
	f.locks.AutoRelease()

	f.vehicles.ForEachActive(func(id int32, v vehicle.Vehicle) {
		if f.Status() != StatusRunning {
			return
		}
		f.vehicles.StepCheckpoint(id, v)
		f.stepMotion(id, v)
	})

	f.edges.SortOccupancies()
	f.fillRender()
	f.emitPerf()

	if f.clk.Done() && f.Status() == StatusRunning {
		log.Infof("fab %s finished at step %d", f.name, f.clk.InternalStep)
		f.setStatus(StatusStopped)
	}
}

// stepMotion 推进一辆车的运动积分
// 功能：更新速度与比例位置，越过Edge末端时执行切换
// 算法说明：
// 1. 静止车辆速度归零；移动准备态经过一个tick后转入移动态
// 2. 速度按加速度上升，封顶于全局最大速度
// 3. 比例位置按速度推进；大步长下可能一步越过多条Edge，
//    余量逐条结转直到落在某条Edge内
// 4. 切换前校验拓扑连续性：当前Edge终点与下一Edge起点不一致
//    即为异常移动，上报致命事件并停机
func (f *Fab) stepMotion(id int32, v vehicle.Vehicle) {
	switch v.MovingStatus() {
	case entity.MovingStatusStopped:
		v.SetV(0)
		return
	case entity.MovingStatusPrepare:
		v.SetMovingStatus(entity.MovingStatusMoving)
		return
	}

	speed := v.V() + v.Acceleration()*f.clk.DT
	if maxSpeed := f.cfg.C.MaxSpeed; speed > maxSpeed {
		speed = maxSpeed
	}
	v.SetV(speed)

	cur, err := f.edges.GetOrError(v.CurrentEdge())
	if err != nil {
		f.fail(id, v, v.CurrentEdge(), 0, fmt.Sprintf("current edge missing: %v", err))
		return
	}
	ratio := v.EdgeRatio() + speed*f.clk.DT/cur.Length()

	for ratio >= 1.0 {
		next := v.NextEdge(0)
		if next == 0 {
			// 已知路径耗尽，停在Edge末端等待新计划
			ratio = 1.0
			v.SetV(0)
			v.SetMovingStatus(entity.MovingStatusStopped)
			v.SetStopReason(entity.StopReasonRouteEnd)
			break
		}
		nextEdge, err := f.edges.GetOrError(next)
		if err != nil {
			f.fail(id, v, cur.ID(), next, fmt.Sprintf("next edge missing: %v", err))
			return
		}
		if cur.ToNode() != nextEdge.FromNode() {
			f.fail(id, v, cur.ID(), next, fmt.Sprintf(
				"unusual move: %s ends at %s but %s starts at %s",
				cur.Name(), cur.ToNode(), nextEdge.Name(), nextEdge.FromNode()))
			return
		}
		leftover := (ratio - 1.0) * cur.Length()
		f.transition(id, v, cur, nextEdge)
		cur = nextEdge
		ratio = leftover / cur.Length()
	}

	v.SetEdgeRatio(ratio)
	v.SetXYZ(cur.PositionAt(ratio))
	v.SetRotation(cur.Heading())
}

// transition 执行一次Edge切换
// 功能：迁移占用列表、写出通行记录、推进路径游标并记录切换事件
func (f *Fab) transition(id int32, v vehicle.Vehicle, from, to entity.IEdge) {
	from.RemoveVehicle(id)
	to.AddVehicle(id)

	slot := v.Slot()
	if f.transit != nil {
		rec := devlog.EdgeTransitRecord{
			Timestamp:  f.clk.Millis(),
			WorkerID:   f.workerID,
			FabID:      f.fabID,
			EdgeID:     uint16(from.ID()),
			VehID:      uint32(id),
			EnterTime:  uint32(f.enterTime[slot] * 1000),
			ExitTime:   f.clk.Millis(),
			EdgeLength: float32(from.Length()),
			EdgeType:   from.Type(),
		}
		if err := f.transit.Write(rec); err != nil {
			log.Warnf("fab %s transit log write failed, disabled: %v", f.name, err)
			f.transit = nil
		}
	}
	f.enterTime[slot] = f.clk.T

	v.SetCurrentEdge(to.ID())
	remaining := f.vehicles.AdvanceRoute(v)
	f.devLog.Emit(devlog.EdgeTransitionEvent{
		VehID:      id,
		FromEdge:   from.ID(),
		ToEdge:     to.ID(),
		NextEdges:  v.NextEdges(),
		PathBufLen: int32(remaining),
	})
}

// fail 上报致命事件并停机
// 说明：停机后本tick剩余车辆不再处理，Fab等待操作员确认，
// 事件通道满时只能丢弃（协调器缓冲应按Fab数配置）
func (f *Fab) fail(id int32, v vehicle.Vehicle, prev, next int32, msg string) {
	f.setStatus(StatusFailed)
	ev := entity.FatalEvent{
		Fab:      f.name,
		VehID:    id,
		Position: v.XYZ(),
		PrevEdge: prev,
		NextEdge: next,
		Message:  msg,
	}
	log.Errorf("%s", ev)
	f.devLog.Emit(devlog.ErrorEvent{VehID: id, ErrorCode: "FATAL", Message: ev.String()})
	if f.fatals != nil {
		select {
		case f.fatals <- ev:
		default:
			log.Warnf("fab %s fatal event channel full, event dropped", f.name)
		}
	}
}

// fillRender 重写渲染缓冲
// 功能：将活跃车辆的位置与朝向紧凑打包为平坦数组，叠加分区坐标偏移
// 说明：车辆缓冲区是带空洞的（空闲槽位），渲染缓冲不是——
// 活跃车辆按登记顺序连续排列，行到车辆槽位的映射记录在renderSlots中
func (f *Fab) fillRender() {
	n := 0
	f.vehicles.ForEachActive(func(id int32, v vehicle.Vehicle) {
		p := v.XYZ()
		base := n * entity.RenderStride
		f.renderBuf[base] = p.X + f.offset.X
		f.renderBuf[base+1] = p.Y + f.offset.Y
		f.renderBuf[base+2] = p.Z + f.offset.Z
		f.renderBuf[base+3] = v.Rotation()
		f.renderSlots[n] = int32(v.Slot())
		n++
	})
	f.renderLen = n
}

// emitPerf 周期性输出性能事件
func (f *Fab) emitPerf() {
	if f.clk.InternalStep%perfInterval != 0 {
		return
	}
	elapsed := time.Since(f.perfMark).Seconds()
	f.perfMark = time.Now()
	fps := 0.0
	if elapsed > 0 {
		fps = perfInterval / elapsed
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	f.devLog.Emit(devlog.PerfEvent{
		FPS:            fps,
		MemoryMB:       float64(ms.Alloc) / 1024 / 1024,
		ActiveVehicles: int32(f.vehicles.ActiveCount()),
		LockQueueSize:  int32(f.locks.WaitingCount()),
	})
}
