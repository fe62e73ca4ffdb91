package edge

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"

	"github.com/vosui/vps-go/devlog"
	"github.com/vosui/vps-go/entity"
	"github.com/vosui/vps-go/utils/container"
	"github.com/vosui/vps-go/utils/input"
)

// Edge 有向边实体
// 功能：表示运输网络中的一条有向边，持有拓扑信息与车辆占用列表
type Edge struct {
	ctx entity.IFabContext

	id     int32            // Edge ID，1起始，0为无效哨兵值
	from   string           // 起点Node名
	to     string           // 终点Node名
	length float64          // 长度（米）
	typ    devlog.EdgeType  // 几何类型

	start   geometry.Point // 渲染用起点坐标
	end     geometry.Point // 渲染用终点坐标
	heading float64        // 行驶朝向（弧度）

	// 占用列表：排序后按比例位置降序（最靠前的车辆在首位），
	// 用于间距检查与锁的自动释放扫描
	occupancy *container.BoundedList[int32]
}

// newEdge 创建并初始化一个新的Edge实例
// 参数：ctx-Fab上下文，base-Edge输入数据
func newEdge(ctx entity.IFabContext, base input.Edge) *Edge {
	e := &Edge{
		ctx:       ctx,
		id:        base.ID,
		from:      base.From,
		to:        base.To,
		length:    base.Length,
		typ:       devlog.EdgeType(base.Type),
		start:     toPoint(base.Start),
		end:       toPoint(base.End),
		occupancy: container.NewBoundedList[int32](ctx.RuntimeConfig().C.OccupancyCapacity),
	}
	e.heading = math.Atan2(e.end.Y-e.start.Y, e.end.X-e.start.X)
	return e
}

// toPoint 将输入坐标数组转换为点，容忍二维输入
func toPoint(coords []float64) geometry.Point {
	var p geometry.Point
	if len(coords) >= 2 {
		p.X, p.Y = coords[0], coords[1]
	}
	if len(coords) >= 3 {
		p.Z = coords[2]
	}
	return p
}

// ID 获取Edge ID
func (e *Edge) ID() int32 {
	return e.id
}

// Name 获取Edge显示名
func (e *Edge) Name() string {
	return devlog.EdgeName(e.id)
}

// FromNode 获取起点Node名
func (e *Edge) FromNode() string {
	return e.from
}

// ToNode 获取终点Node名
func (e *Edge) ToNode() string {
	return e.to
}

// Length 获取长度（米）
func (e *Edge) Length() float64 {
	return e.length
}

// Type 获取几何类型
func (e *Edge) Type() devlog.EdgeType {
	return e.typ
}

// AddVehicle 向占用列表添加车辆
// 说明：重复添加是无操作；列表已满时插入被静默拒绝并记录容量事件，
// 车辆继续运行但在空位出现前不参与排序保证
func (e *Edge) AddVehicle(id int32) {
	if e.occupancy.Contains(id) {
		return
	}
	if !e.occupancy.Add(id) {
		log.Debugf("edge %s occupancy full (cap %d), vehicle %d not tracked",
			e.Name(), e.occupancy.Cap(), id)
	}
}

// RemoveVehicle 从占用列表移除车辆
func (e *Edge) RemoveVehicle(id int32) {
	e.occupancy.Remove(id)
}

// Vehicles 获取占用列表当前内容
func (e *Edge) Vehicles() []int32 {
	return e.occupancy.Values()
}

// OccupancyLen 获取占用列表长度
func (e *Edge) OccupancyLen() int {
	return e.occupancy.Len()
}

// PositionAt 获取比例位置对应的渲染坐标
// 说明：端点间线性插值；曲线段的真实几何由渲染端还原，
// 本核心只提供沿边推进的插值位置
func (e *Edge) PositionAt(ratio float64) geometry.Point {
	return geometry.Point{
		X: e.start.X + (e.end.X-e.start.X)*ratio,
		Y: e.start.Y + (e.end.Y-e.start.Y)*ratio,
		Z: e.start.Z + (e.end.Z-e.start.Z)*ratio,
	}
}

// Heading 获取行驶朝向（弧度）
func (e *Edge) Heading() float64 {
	return e.heading
}

// sortOccupancy 按车辆实时比例位置降序重排占用列表
// 说明：批量位置更新后调用，恢复间距检查与自动释放扫描所需的顺序保证
func (e *Edge) sortOccupancy() {
	vm := e.ctx.VehicleManager()
	e.occupancy.SortDesc(func(id int32) float64 {
		return vm.RatioOf(id)
	})
}
