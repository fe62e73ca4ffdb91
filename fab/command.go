package fab

import (
	"fmt"

	"github.com/sugawarayuuta/sonnet"

	"github.com/vosui/vps-go/devlog"
	"github.com/vosui/vps-go/entity"
	"github.com/vosui/vps-go/utils/input"
)

// 外部指令操作名
const (
	OpSpawn         = "spawn"          // 加入车辆
	OpStopVehicle   = "stop_vehicle"   // 指令停车
	OpResumeVehicle = "resume_vehicle" // 解除指令停车
	OpRemoveVehicle = "remove_vehicle" // 移除车辆
)

// Command 外部指令
// 功能：定义上层调度系统下发给单个Fab的控制指令负载（JSON）
type Command struct {
	Op          string             `json:"op"`                    // 操作名
	VehID       int32              `json:"veh_id"`                // 目标车辆ID
	Route       []int32            `json:"route,omitempty"`       // spawn：预计算路径
	Checkpoints []input.Checkpoint `json:"checkpoints,omitempty"` // spawn：预计算检查点序列
}

// Enqueue 向Fab投递一条指令
// 功能：非阻塞入队，指令在Fab的下一个tick开头统一执行
// 参数：payload-JSON编码的指令负载
// 返回：队列已满时返回error，调用方决定重试或丢弃
// 说明：指令通道是其它goroutine与Fab工作线程之间唯一的写入通道
func (f *Fab) Enqueue(payload []byte) error {
	select {
	case f.commands <- payload:
		return nil
	default:
		return fmt.Errorf("fab %s command queue full", f.name)
	}
}

// drainCommands 取出并执行全部排队指令
// 说明：在tick开头调用，执行顺序即投递顺序
func (f *Fab) drainCommands() {
	for {
		select {
		case payload := <-f.commands:
			var cmd Command
			if err := sonnet.Unmarshal(payload, &cmd); err != nil {
				f.devLog.Emit(devlog.ErrorEvent{
					ErrorCode: "BAD_COMMAND",
					Message:   fmt.Sprintf("unmarshal: %v", err),
				})
				continue
			}
			f.apply(cmd)
		default:
			return
		}
	}
}

// apply 执行一条指令
// 说明：指令失败不中断仿真，以错误事件上报后继续
func (f *Fab) apply(cmd Command) {
	switch cmd.Op {
	case OpSpawn:
		f.spawn(cmd.VehID, input.VehiclePlan{Route: cmd.Route, Checkpoints: cmd.Checkpoints})
	case OpStopVehicle:
		v, err := f.vehicles.GetOrError(cmd.VehID)
		if err != nil {
			f.commandError(cmd, err)
			return
		}
		v.SetMovingStatus(entity.MovingStatusStopped)
		v.SetStopReason(entity.StopReasonCommand)
		v.SetV(0)
	case OpResumeVehicle:
		v, err := f.vehicles.GetOrError(cmd.VehID)
		if err != nil {
			f.commandError(cmd, err)
			return
		}
		// 仅解除指令停车，锁等待等内部停车原因不受指令干预
		if v.StopReason() == entity.StopReasonCommand {
			v.SetMovingStatus(entity.MovingStatusMoving)
			v.SetStopReason(entity.StopReasonNone)
		}
	case OpRemoveVehicle:
		if err := f.vehicles.Remove(cmd.VehID); err != nil {
			f.commandError(cmd, err)
		}
	default:
		f.devLog.Emit(devlog.ErrorEvent{
			VehID:     cmd.VehID,
			ErrorCode: "BAD_COMMAND",
			Message:   fmt.Sprintf("unknown op %q", cmd.Op),
		})
	}
}

// spawn 加入一辆车并初始化其动力学参数
func (f *Fab) spawn(id int32, plan input.VehiclePlan) {
	if err := f.vehicles.Add(id, plan); err != nil {
		f.devLog.Emit(devlog.ErrorEvent{
			VehID:     id,
			ErrorCode: "SPAWN_FAILED",
			Message:   err.Error(),
		})
		return
	}
	v := f.vehicles.Get(id)
	v.SetAcceleration(f.rnd.Between(0.8, 1.2))
	v.SetDeceleration(f.rnd.Between(1.6, 2.4))
	f.enterTime[v.Slot()] = f.clk.T
}

func (f *Fab) commandError(cmd Command, err error) {
	f.devLog.Emit(devlog.ErrorEvent{
		VehID:     cmd.VehID,
		ErrorCode: "COMMAND_FAILED",
		Message:   fmt.Sprintf("%s: %v", cmd.Op, err),
	})
}
