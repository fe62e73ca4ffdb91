package entity

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
)

// MovingStatus 车辆移动状态
type MovingStatus int32

const (
	MovingStatusStopped MovingStatus = iota // 静止
	MovingStatusPrepare                     // 移动准备
	MovingStatusMoving                      // 移动中
)

// TrafficState 车辆交通状态
type TrafficState int32

const (
	TrafficStateNormal  TrafficState = iota // 正常通行
	TrafficStateBlocked                     // 被前方占用或锁阻塞
)

// StopReason 车辆停止原因
type StopReason int32

const (
	StopReasonNone     StopReason = iota // 无
	StopReasonLockWait                   // 等待合流点锁
	StopReasonRouteEnd                   // 已到达已知路径终点
	StopReasonCommand                    // 外部指令停车
)

// JobState 车辆作业状态
type JobState int32

const (
	JobStateIdle     JobState = iota // 空闲
	JobStateAssigned                 // 已分配作业
	JobStateWorking                  // 作业中
)

// NextEdgeCount 车辆记录中前瞻Edge槽位数
// 说明：固定小窗口使检查点错过判定为O(1)，与路径长度无关
const NextEdgeCount = 5

// RenderStride 渲染视图中单条记录的字段数（x, y, z, rotation）
const RenderStride = 4

// FatalEvent 致命事件
// 功能：描述一次使Fab停机、需要操作员确认的拓扑异常
// 说明：以结构化事件跨越goroutine边界上报，不使用panic
type FatalEvent struct {
	Fab      string         // 事件所属Fab名
	VehID    int32          // 车辆ID
	Position geometry.Point // 车辆位置
	PrevEdge int32          // 前一Edge ID
	NextEdge int32          // 下一Edge ID
	Message  string         // 事件描述
}

func (e FatalEvent) String() string {
	return fmt.Sprintf("FatalEvent{Fab=%s, Veh=%d, Prev=E%d, Next=E%d: %s}",
		e.Fab, e.VehID, e.PrevEdge, e.NextEdge, e.Message)
}

// LockWaiter 锁等待队列中的一项
type LockWaiter struct {
	VehID int32 // 车辆ID
	Edge  int32 // 入队时车辆所在Edge ID
}

// LockSnapshot 单个合流点的锁状态快照
// 功能：对外检查面板的查询契约
type LockSnapshot struct {
	Node    string       // 合流点名
	Holder  int32        // 持有者车辆ID，-1表示空闲
	Holders []int32      // batch策略下的同组放行成员（含Holder）
	Waiters []LockWaiter // 有序等待队列
}
