package vehicle

import (
	"git.fiblab.net/general/common/v2/geometry"

	"github.com/vosui/vps-go/entity"
)

// 车辆记录字段偏移
// 说明：固定步长数值记录的字段布局是对外稳定契约，
// 如需与既有日志/工具互操作必须逐位复现，不可调整顺序
const (
	// 移动
	FieldPosX = iota
	FieldPosY
	FieldPosZ
	FieldRotation
	FieldVelocity
	FieldAcceleration
	FieldDeceleration
	FieldEdgeRatio
	FieldMovingStatus
	FieldCurrentEdge
	FieldNextEdge0
	FieldNextEdge1
	FieldNextEdge2
	FieldNextEdge3
	FieldNextEdge4
	// 传感
	FieldSensorPreset
	FieldHitZone
	FieldCollisionTarget
	// 逻辑
	FieldTrafficState
	FieldStopReason
	FieldJobState
	// 检查点游标
	FieldCPEdge
	FieldCPRatio
	FieldCPFlags
	FieldCPTarget
	FieldCPHead

	// Stride 单条车辆记录的字段数
	Stride
)

// Store 车辆状态存储
// 功能：以固定步长的连续数值数组保存所有车辆记录
// 说明：初始化时按容量（预期车辆数+余量）一次性分配，热路径上不再分配内存；
// 记录随车辆移除清零后复用，不会销毁
type Store struct {
	data     []float64 // 连续记录数组，长度=capacity*Stride
	capacity int       // 车辆槽位容量
}

// NewStore 创建车辆状态存储
// 参数：capacity-车辆槽位容量（含余量）
func NewStore(capacity int) *Store {
	return &Store{
		data:     make([]float64, capacity*Stride),
		capacity: capacity,
	}
}

// Capacity 获取槽位容量
func (s *Store) Capacity() int {
	return s.capacity
}

// At 获取指定槽位的车辆记录访问句柄
// 说明：句柄为值类型，不产生堆分配
func (s *Store) At(slot int) Vehicle {
	return Vehicle{store: s, slot: slot}
}

// Vehicle 车辆记录访问句柄
// 功能：对平坦数组中一条记录的带名访问器，替代原始的字段偏移访问
type Vehicle struct {
	store *Store
	slot  int
}

// Slot 获取记录所在槽位
func (v Vehicle) Slot() int {
	return v.slot
}

func (v Vehicle) get(field int) float64 {
	return v.store.data[v.slot*Stride+field]
}

func (v Vehicle) set(field int, value float64) {
	v.store.data[v.slot*Stride+field] = value
}

// XYZ 获取车辆位置坐标
func (v Vehicle) XYZ() geometry.Point {
	return geometry.Point{X: v.get(FieldPosX), Y: v.get(FieldPosY), Z: v.get(FieldPosZ)}
}

// SetXYZ 设置车辆位置坐标
func (v Vehicle) SetXYZ(p geometry.Point) {
	v.set(FieldPosX, p.X)
	v.set(FieldPosY, p.Y)
	v.set(FieldPosZ, p.Z)
}

// Rotation 获取车辆朝向（弧度）
func (v Vehicle) Rotation() float64 { return v.get(FieldRotation) }

// SetRotation 设置车辆朝向
func (v Vehicle) SetRotation(r float64) { v.set(FieldRotation, r) }

// V 获取车辆速度（米/秒）
func (v Vehicle) V() float64 { return v.get(FieldVelocity) }

// SetV 设置车辆速度
func (v Vehicle) SetV(value float64) { v.set(FieldVelocity, value) }

// Acceleration 获取加速度（米/秒²）
func (v Vehicle) Acceleration() float64 { return v.get(FieldAcceleration) }

// SetAcceleration 设置加速度
func (v Vehicle) SetAcceleration(a float64) { v.set(FieldAcceleration, a) }

// Deceleration 获取减速度（米/秒²）
func (v Vehicle) Deceleration() float64 { return v.get(FieldDeceleration) }

// SetDeceleration 设置减速度
func (v Vehicle) SetDeceleration(d float64) { v.set(FieldDeceleration, d) }

// EdgeRatio 获取车辆在当前Edge上的比例位置（0.0-1.0）
func (v Vehicle) EdgeRatio() float64 { return v.get(FieldEdgeRatio) }

// SetEdgeRatio 设置比例位置
func (v Vehicle) SetEdgeRatio(r float64) { v.set(FieldEdgeRatio, r) }

// MovingStatus 获取移动状态
func (v Vehicle) MovingStatus() entity.MovingStatus {
	return entity.MovingStatus(v.get(FieldMovingStatus))
}

// SetMovingStatus 设置移动状态
func (v Vehicle) SetMovingStatus(s entity.MovingStatus) {
	v.set(FieldMovingStatus, float64(s))
}

// CurrentEdge 获取当前Edge ID（1起始，0表示无）
func (v Vehicle) CurrentEdge() int32 { return int32(v.get(FieldCurrentEdge)) }

// SetCurrentEdge 设置当前Edge ID
func (v Vehicle) SetCurrentEdge(id int32) { v.set(FieldCurrentEdge, float64(id)) }

// NextEdge 获取前瞻窗口中第i个Edge ID
func (v Vehicle) NextEdge(i int) int32 { return int32(v.get(FieldNextEdge0 + i)) }

// SetNextEdge 设置前瞻窗口中第i个Edge ID
func (v Vehicle) SetNextEdge(i int, id int32) { v.set(FieldNextEdge0+i, float64(id)) }

// NextEdges 获取完整前瞻窗口
func (v Vehicle) NextEdges() [entity.NextEdgeCount]int32 {
	var out [entity.NextEdgeCount]int32
	for i := range out {
		out[i] = v.NextEdge(i)
	}
	return out
}

// HasNextEdge 判断Edge是否出现在前瞻窗口中
func (v Vehicle) HasNextEdge(id int32) bool {
	if id == 0 {
		return false
	}
	for i := 0; i < entity.NextEdgeCount; i++ {
		if v.NextEdge(i) == id {
			return true
		}
	}
	return false
}

// SensorPreset 获取传感器预设ID
func (v Vehicle) SensorPreset() int32 { return int32(v.get(FieldSensorPreset)) }

// SetSensorPreset 设置传感器预设ID
func (v Vehicle) SetSensorPreset(id int32) { v.set(FieldSensorPreset, float64(id)) }

// HitZone 获取传感命中区域编码
func (v Vehicle) HitZone() int32 { return int32(v.get(FieldHitZone)) }

// SetHitZone 设置传感命中区域编码
func (v Vehicle) SetHitZone(z int32) { v.set(FieldHitZone, float64(z)) }

// CollisionTarget 获取碰撞目标车辆ID
func (v Vehicle) CollisionTarget() int32 { return int32(v.get(FieldCollisionTarget)) }

// SetCollisionTarget 设置碰撞目标车辆ID
func (v Vehicle) SetCollisionTarget(id int32) { v.set(FieldCollisionTarget, float64(id)) }

// TrafficState 获取交通状态
func (v Vehicle) TrafficState() entity.TrafficState {
	return entity.TrafficState(v.get(FieldTrafficState))
}

// SetTrafficState 设置交通状态
func (v Vehicle) SetTrafficState(s entity.TrafficState) {
	v.set(FieldTrafficState, float64(s))
}

// StopReason 获取停止原因
func (v Vehicle) StopReason() entity.StopReason {
	return entity.StopReason(v.get(FieldStopReason))
}

// SetStopReason 设置停止原因
func (v Vehicle) SetStopReason(r entity.StopReason) {
	v.set(FieldStopReason, float64(r))
}

// JobState 获取作业状态
func (v Vehicle) JobState() entity.JobState {
	return entity.JobState(v.get(FieldJobState))
}

// SetJobState 设置作业状态
func (v Vehicle) SetJobState(s entity.JobState) {
	v.set(FieldJobState, float64(s))
}

// CPEdge 获取当前检查点Edge ID（0表示未加载）
func (v Vehicle) CPEdge() int32 { return int32(v.get(FieldCPEdge)) }

// CPRatio 获取当前检查点比例位置
func (v Vehicle) CPRatio() float64 { return v.get(FieldCPRatio) }

// CPFlags 获取当前检查点标志位
func (v Vehicle) CPFlags() uint32 { return uint32(v.get(FieldCPFlags)) }

// SetCPFlags 设置当前检查点标志位
func (v Vehicle) SetCPFlags(f uint32) { v.set(FieldCPFlags, float64(f)) }

// CPTarget 获取当前检查点目标Edge ID
func (v Vehicle) CPTarget() int32 { return int32(v.get(FieldCPTarget)) }

// CPHead 获取检查点头索引（单调递增，不超过序列长度）
func (v Vehicle) CPHead() int { return int(v.get(FieldCPHead)) }

// SetCPHead 设置检查点头索引
func (v Vehicle) SetCPHead(h int) { v.set(FieldCPHead, float64(h)) }

// SetCPCursor 设置完整检查点游标
func (v Vehicle) SetCPCursor(edge int32, ratio float64, flags uint32, target int32) {
	v.set(FieldCPEdge, float64(edge))
	v.set(FieldCPRatio, ratio)
	v.set(FieldCPFlags, float64(flags))
	v.set(FieldCPTarget, float64(target))
}

// ClearCPCursor 清空检查点游标（保留头索引）
func (v Vehicle) ClearCPCursor() {
	v.SetCPCursor(0, 0, 0, 0)
}

// Clear 将整条记录清零
// 说明：车辆移除时调用，槽位随后可复用
func (v Vehicle) Clear() {
	base := v.slot * Stride
	for i := 0; i < Stride; i++ {
		v.store.data[base+i] = 0
	}
}
