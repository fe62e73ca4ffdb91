package fab

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/sirupsen/logrus"

	"github.com/vosui/vps-go/clock"
	"github.com/vosui/vps-go/devlog"
	"github.com/vosui/vps-go/entity"
	"github.com/vosui/vps-go/entity/edge"
	"github.com/vosui/vps-go/entity/lock"
	"github.com/vosui/vps-go/entity/node"
	"github.com/vosui/vps-go/entity/vehicle"
	"github.com/vosui/vps-go/utils/config"
	"github.com/vosui/vps-go/utils/input"
	"github.com/vosui/vps-go/utils/randengine"
)

// commandQueueCap 指令通道容量
const commandQueueCap = 256

// Status Fab运行状态
type Status int32

const (
	StatusCreated Status = iota // 已创建未启动
	StatusRunning               // 运行中
	StatusPaused                // 已暂停
	StatusStopped               // 已到达结束步或被停止
	StatusFailed                // 因致命事件停机，等待操作员确认
)

// String 获取状态的字符串表示
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusStopped:
		return "stopped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// Fab 单个仿真分区
// 功能：持有一个分区的全部实体与管理器，实现entity.IFabContext
// 说明：分区内所有可变状态仅由其所属的工作线程访问，内部不加锁；
// 跨线程交互仅通过指令通道（入）、致命事件通道（出）与状态字段（原子）
type Fab struct {
	name     string
	fabID    uint8
	workerID uint8
	offset   geometry.Point // 合成世界坐标系中的位置偏移

	clk      *clock.Clock
	cfg      *config.RuntimeConfig
	vehicles *vehicle.Manager
	edges    *edge.EdgeManager
	nodes    *node.NodeManager
	locks    *lock.LockManager
	devLog   devlog.Sink
	rnd      *randengine.Engine

	status   atomic.Int32
	commands chan []byte
	fatals   chan<- entity.FatalEvent

	// 每槽位的Edge进入时刻（仿真秒），通行记录用；
	// 不属于车辆记录布局，避免扰动对外稳定的字段契约
	enterTime []float64

	transit     *devlog.TransitWriter
	transitFile io.WriteCloser

	// 渲染缓冲（RenderStride字段/行），每tick整体重写；
	// 活跃车辆紧凑排列（无空行），renderSlots记录每行对应的车辆槽位，
	// 仅工作线程写入，协调器在tick之间复制到共享视图
	renderBuf   []float64
	renderSlots []int32
	renderLen   int

	perfMark time.Time
}

// New 创建并初始化一个Fab分区
// 功能：构建全部管理器、加载初始车辆并分配渲染缓冲
// 参数：fabID-分区ID，fabConfig-分区配置，rc-运行时配置，
// mapData-地图数据，plan-初始车辆计划，fatals-致命事件上报通道
// 返回：初始化完成的Fab与错误信息
func New(fabID uint8, fabConfig config.FabConfig, rc *config.RuntimeConfig,
	mapData *input.MapData, plan *input.Plan, fatals chan<- entity.FatalEvent) (*Fab, error) {
	f := &Fab{
		name:  fabConfig.Name,
		fabID: fabID,
		offset: geometry.Point{
			X: fabConfig.Offset.X,
			Y: fabConfig.Offset.Y,
			Z: fabConfig.Offset.Z,
		},
		cfg:      rc,
		clk:      clock.New(rc.C.Step),
		devLog:   devlog.NewLogrusSink(logrus.WithField("module", "fab."+fabConfig.Name)),
		rnd:      randengine.New(uint64(fabID) + 1),
		commands: make(chan []byte, commandQueueCap),
		fatals:   fatals,
		perfMark: time.Now(),
	}

	f.edges = edge.NewManager(f)
	f.edges.Init(mapData.Edges)
	f.nodes = node.NewManager()
	f.nodes.Init(mapData.Edges)
	f.locks = lock.NewManager(f)
	f.locks.Init(f.nodes.MergeNodes())

	capacity := rc.VehicleCapacity(fabConfig.VehicleCount)
	f.vehicles = vehicle.NewManager(f, capacity)
	f.vehicles.AttachCheckpoints(vehicle.NewCheckpointStore(capacity, rc.C.MaxCheckpoints))
	f.enterTime = make([]float64, capacity)
	f.renderBuf = make([]float64, capacity*entity.RenderStride)
	f.renderSlots = make([]int32, capacity)

	if fabConfig.TransitLog != "" {
		file, err := os.Create(fabConfig.TransitLog)
		if err != nil {
			return nil, fmt.Errorf("fab %s transit log: %w", f.name, err)
		}
		f.transitFile = file
		f.transit = devlog.NewTransitWriter(file)
	}

	for i, vp := range plan.Vehicles {
		id := fabConfig.IDOffset + int32(i) + 1
		if err := f.vehicles.Add(id, vp); err != nil {
			return nil, fmt.Errorf("fab %s initial plan: %w", f.name, err)
		}
		v := f.vehicles.Get(id)
		v.SetAcceleration(f.rnd.Between(0.8, 1.2))
		v.SetDeceleration(f.rnd.Between(1.6, 2.4))
	}
	f.vehicles.Prepare()

	log.Infof("fab %s: %d edges, %d merge nodes, %d vehicles (capacity %d)",
		f.name, len(mapData.Edges), len(f.nodes.MergeNodes()), len(plan.Vehicles), capacity)
	return f, nil
}

// Name 获取Fab名
func (f *Fab) Name() string { return f.name }

// FabID 获取Fab ID
func (f *Fab) FabID() uint8 { return f.fabID }

// WorkerID 获取所属工作线程ID
func (f *Fab) WorkerID() uint8 { return f.workerID }

// SetWorkerID 设置所属工作线程ID（调度分配时一次性调用）
func (f *Fab) SetWorkerID(id uint8) { f.workerID = id }

// Clock 获取时钟
func (f *Fab) Clock() *clock.Clock { return f.clk }

// VehicleManager 获取车辆管理器
func (f *Fab) VehicleManager() entity.IVehicleManager { return f.vehicles }

// EdgeManager 获取Edge管理器
func (f *Fab) EdgeManager() entity.IEdgeManager { return f.edges }

// NodeManager 获取Node管理器
func (f *Fab) NodeManager() entity.INodeManager { return f.nodes }

// LockManager 获取锁管理器
func (f *Fab) LockManager() entity.ILockManager { return f.locks }

// RuntimeConfig 获取运行时配置
func (f *Fab) RuntimeConfig() *config.RuntimeConfig { return f.cfg }

// DevLog 获取开发日志事件接收器
func (f *Fab) DevLog() devlog.Sink { return f.devLog }

// Vehicles 获取车辆管理器（分区内部访问）
func (f *Fab) Vehicles() *vehicle.Manager { return f.vehicles }

// Status 获取运行状态
func (f *Fab) Status() Status { return Status(f.status.Load()) }

func (f *Fab) setStatus(s Status) { f.status.Store(int32(s)) }

// Start 启动或恢复运行
// 返回：从stopped/failed状态启动时返回error
func (f *Fab) Start() error {
	switch f.Status() {
	case StatusCreated, StatusPaused:
		f.setStatus(StatusRunning)
		return nil
	case StatusRunning:
		return nil
	default:
		return fmt.Errorf("fab %s cannot start from %s", f.name, f.Status())
	}
}

// Pause 暂停运行
// 说明：暂停期间指令继续排队，在恢复后的第一个tick执行
func (f *Fab) Pause() {
	if f.Status() == StatusRunning {
		f.setStatus(StatusPaused)
	}
}

// Close 停止运行并释放资源
func (f *Fab) Close() error {
	if s := f.Status(); s != StatusFailed {
		f.setStatus(StatusStopped)
	}
	if f.transitFile != nil {
		return f.transitFile.Close()
	}
	return nil
}

// Render 获取渲染缓冲的活跃窗口
// 说明：紧凑排列，行i对应RenderSlots()[i]给出的车辆槽位；
// 仅在该Fab的tick之间访问（由协调器的发布点保证）
func (f *Fab) Render() []float64 {
	return f.renderBuf[:f.renderLen*entity.RenderStride]
}

// RenderSlots 获取渲染缓冲各行对应的车辆槽位表
func (f *Fab) RenderSlots() []int32 {
	return f.renderSlots[:f.renderLen]
}

// RenderCapacity 获取渲染缓冲的行数上限（等于车辆缓冲区容量）
func (f *Fab) RenderCapacity() int {
	return cap(f.renderSlots)
}
