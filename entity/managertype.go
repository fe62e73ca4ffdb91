package entity

import (
	"git.fiblab.net/general/common/v2/geometry"

	"github.com/vosui/vps-go/devlog"
	"github.com/vosui/vps-go/utils/input"
)

// Manager依赖倒置

// entity/edge/edge.go的依赖倒置
type IEdge interface {
	ID() int32               // 获取Edge ID
	Name() string            // 获取Edge显示名（E%d）
	FromNode() string        // 获取起点Node名
	ToNode() string          // 获取终点Node名
	Length() float64         // 获取长度（米）
	Type() devlog.EdgeType   // 获取几何类型
	AddVehicle(id int32)     // 向占用列表添加车辆（重复为无操作，超容记录日志后拒绝）
	RemoveVehicle(id int32)  // 从占用列表移除车辆
	Vehicles() []int32       // 获取占用列表当前内容（按比例位置降序，排序后有效）
	OccupancyLen() int       // 获取占用列表长度

	// 获取比例位置对应的渲染坐标（端点间线性插值，无端点数据时为原点）
	PositionAt(ratio float64) geometry.Point
	Heading() float64 // 获取行驶朝向（弧度）
}

// entity/edge/manager.go的依赖倒置
type IEdgeManager interface {
	Init(edges []input.Edge) // 初始化

	// 输入Edge ID，查找Edge，如果不存在则panic
	Get(id int32) IEdge
	// 输入Edge ID，查找Edge，如果不存在则返回error
	GetOrError(id int32) (IEdge, error)

	Edges() []IEdge    // 获取所有Edge
	SortOccupancies()  // 按车辆实时比例位置降序重排所有占用列表
}

// entity/node/manager.go的依赖倒置
type INodeManager interface {
	Init(edges []input.Edge) // 由Edge拓扑初始化

	MergeNodes() []string       // 获取所有合流点名（入边数>=2），地图生命周期内不变
	IsMergeNode(name string) bool // 判断是否为合流点
	IncomingCount(name string) int // 获取入边数
}

// entity/lock/manager.go的依赖倒置
type ILockManager interface {
	Init(nodes []string) // 由合流点集合初始化

	// 请求node的锁，返回是否立即/已经成为持有者；
	// 未获授予时车辆进入等待队列，重复请求不会重复入队
	Request(node string, veh int32, edge int32) bool
	// 判断veh是否为node的持有者（batch策略下含同组放行成员）
	IsHolder(node string, veh int32) bool
	// 释放veh持有的node锁并晋升后继，非持有者调用是无操作，返回是否实际释放
	Release(node string, veh int32) bool
	// 丢弃veh的全部锁状态（车辆移除时调用）
	Discard(veh int32)

	AutoRelease() // 扫描并强制释放已越过合流点的持有者，每tick在检查点处理前调用

	Snapshot() []LockSnapshot // 获取全部活跃合流点的锁状态快照
	WaitingCount() int        // 获取等待队列总长度
	Reset()                   // 清空所有锁状态
}

// entity/vehicle/manager.go的依赖倒置
type IVehicleManager interface {
	// 输入车辆ID，判断车辆是否在仿真中
	Contains(id int32) bool
	// 获取车辆当前Edge ID，不存在返回0
	EdgeOf(id int32) int32
	// 获取车辆当前Edge比例位置
	RatioOf(id int32) float64

	ActiveCount() int // 获取活跃车辆数
}
