package devlog

import "fmt"

// EdgeName 获取Edge ID对应的显示名
// 功能：将Edge ID格式化为外部工具使用的名称，0为无效哨兵值
func EdgeName(id int32) string {
	if id > 0 {
		return fmt.Sprintf("E%d", id)
	}
	return "E0(none)"
}

// Level 日志级别
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String 获取日志级别的字符串表示
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL%d", int(l))
	}
}

// Event 开发日志事件
// 功能：定义所有结构化日志事件的公共接口
// 说明：事件内容是对外稳定契约，由外部日志工具消费
type Event interface {
	EventLevel() Level // 事件级别
	Veh() int32        // 事件所属车辆ID，0表示global作用域
	Line() string      // 事件的单行文本表示
}

// DebugEvent 调试事件
type DebugEvent struct {
	VehID   int32  // 车辆ID，0表示global
	Tag     string // 标签
	Message string // 消息内容
}

func (e DebugEvent) EventLevel() Level { return LevelDebug }

func (e DebugEvent) Veh() int32 { return e.VehID }

func (e DebugEvent) Line() string {
	return fmt.Sprintf("[%s] %s", e.Tag, e.Message)
}

// CheckpointEvent 检查点事件
// 功能：记录检查点状态机的一次判定结果（hit/waiting/missed/load等）
type CheckpointEvent struct {
	VehID   int32   // 车辆ID
	CpIndex int32   // 检查点头索引
	EdgeID  int32   // 检查点Edge ID
	Ratio   float64 // 检查点比例位置
	Flags   Flags   // 检查点标志位
	Action  string  // 判定动作
	Details string  // 附加信息
	Level   Level   // 事件级别
}

func (e CheckpointEvent) EventLevel() Level { return e.Level }

func (e CheckpointEvent) Veh() int32 { return e.VehID }

func (e CheckpointEvent) Line() string {
	s := fmt.Sprintf("CP#%d %s@%.3f flags=%d(%s) %s",
		e.CpIndex, EdgeName(e.EdgeID), e.Ratio, uint32(e.Flags), e.Flags, e.Action)
	if e.Details != "" {
		s += " | " + e.Details
	}
	return s
}

// EdgeTransitionEvent Edge切换事件
// 功能：记录车辆从一条Edge进入下一条Edge
type EdgeTransitionEvent struct {
	VehID      int32    // 车辆ID
	FromEdge   int32    // 来源Edge ID
	ToEdge     int32    // 目标Edge ID
	NextEdges  [5]int32 // 前瞻Edge窗口
	PathBufLen int32    // 剩余路径长度
}

func (e EdgeTransitionEvent) EventLevel() Level { return LevelDebug }

func (e EdgeTransitionEvent) Veh() int32 { return e.VehID }

func (e EdgeTransitionEvent) Line() string {
	next := ""
	for i, id := range e.NextEdges {
		if i > 0 {
			next += ","
		}
		next += EdgeName(id)
	}
	return fmt.Sprintf("%s->%s next=[%s] pathLen=%d",
		EdgeName(e.FromEdge), EdgeName(e.ToEdge), next, e.PathBufLen)
}

// LockEvent 锁事件
// 功能：记录合流点锁的request/grant/wait/release/auto_release动作
type LockEvent struct {
	VehID      int32   // 车辆ID
	LockID     string  // 合流点名
	EventType  string  // 事件类型
	EdgeID     int32   // 车辆当前Edge ID
	WaitTimeMs float64 // 等待时长（仿真毫秒）
}

// EventLevel 获取事件级别
// 说明：自动释放意味着有车辆越过合流点而未执行显式释放检查点，
// 属于需要关注的计划缺陷，按warn输出；其余锁动作是正常流程
func (e LockEvent) EventLevel() Level {
	if e.EventType == "auto_release" {
		return LevelWarn
	}
	return LevelDebug
}

func (e LockEvent) Veh() int32 { return e.VehID }

func (e LockEvent) Line() string {
	return fmt.Sprintf("Lock#%s %s %s wait=%.0fms",
		e.LockID, e.EventType, EdgeName(e.EdgeID), e.WaitTimeMs)
}

// ErrorEvent 错误事件
// 功能：记录不可自动恢复、需要操作员确认的异常
type ErrorEvent struct {
	VehID     int32  // 车辆ID
	ErrorCode string // 错误码
	Message   string // 错误信息
}

func (e ErrorEvent) EventLevel() Level { return LevelError }

func (e ErrorEvent) Veh() int32 { return e.VehID }

func (e ErrorEvent) Line() string {
	return fmt.Sprintf("[%s] %s", e.ErrorCode, e.Message)
}

// PerfEvent 性能事件
type PerfEvent struct {
	FPS            float64 // 帧率
	MemoryMB       float64 // 内存占用
	ActiveVehicles int32   // 活跃车辆数
	LockQueueSize  int32   // 锁等待队列总长度
}

func (e PerfEvent) EventLevel() Level { return LevelInfo }

// Veh 性能事件始终是global作用域
func (e PerfEvent) Veh() int32 { return 0 }

func (e PerfEvent) Line() string {
	return fmt.Sprintf("FPS=%.1f MEM=%.1fMB VEH=%d LOCK=%d",
		e.FPS, e.MemoryMB, e.ActiveVehicles, e.LockQueueSize)
}
