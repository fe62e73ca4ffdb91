package task

import (
	"fmt"
	"sync"

	"git.fiblab.net/general/common/v2/geometry"

	"github.com/vosui/vps-go/entity"
)

// Segment 渲染视图中一个Fab的连续区段
type Segment struct {
	Fab      string // Fab名
	Offset   int    // 区段起始行（全局，固定）
	Capacity int    // 行数上限（等于该Fab的车辆缓冲区容量）
	Length   int    // 当前活跃行数，随每次发布更新
}

// RenderView 合成渲染视图
// 功能：将所有Fab的渲染缓冲拼接为一个平坦数组，
// 供渲染端以单块共享内存的方式消费
// 说明：各Fab区段按配置顺序排列，区段起始位置固定（按容量上限分配，
// 工作线程之间写入互不重叠）；区段内活跃车辆紧凑排列（无空行），
// 活跃行数由区段的Length给出。渲染缓冲是紧凑的而车辆缓冲区带空洞，
// 行与车辆槽位的互译经由每次发布附带的槽位表完成。
// 写入只发生在各工作线程的发布点，读取加读锁
type RenderView struct {
	mu       sync.RWMutex
	data     []float64
	slots    [][]int32 // 区段各行对应的车辆槽位表
	segments []Segment
}

// newRenderView 按Fab容量表构建渲染视图
// 参数：names-Fab名列表，capacities-对应的行数上限
func newRenderView(names []string, capacities []int) *RenderView {
	v := &RenderView{
		segments: make([]Segment, 0, len(names)),
		slots:    make([][]int32, len(names)),
	}
	offset := 0
	for i, name := range names {
		v.segments = append(v.segments, Segment{
			Fab:      name,
			Offset:   offset,
			Capacity: capacities[i],
		})
		offset += capacities[i]
	}
	v.data = make([]float64, offset*entity.RenderStride)
	return v
}

// publish 发布一个Fab的渲染缓冲
// 功能：复制活跃窗口并清除上一帧遗留的多余行
// 参数：segIdx-区段下标（与构建顺序一致），buf-紧凑渲染缓冲，
// slots-buf各行对应的车辆槽位
func (v *RenderView) publish(segIdx int, buf []float64, slots []int32) {
	seg := &v.segments[segIdx]
	base := seg.Offset * entity.RenderStride
	v.mu.Lock()
	copy(v.data[base:], buf)
	for i := base + len(buf); i < base+seg.Length*entity.RenderStride; i++ {
		v.data[i] = 0
	}
	seg.Length = len(slots)
	v.slots[segIdx] = append(v.slots[segIdx][:0], slots...)
	v.mu.Unlock()
}

// Slots 获取总行数上限
func (v *RenderView) Slots() int {
	return len(v.data) / entity.RenderStride
}

// LiveCount 获取当前活跃行总数
func (v *RenderView) LiveCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	n := 0
	for _, seg := range v.segments {
		n += seg.Length
	}
	return n
}

// Segments 获取区段表副本
func (v *RenderView) Segments() []Segment {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]Segment, len(v.segments))
	copy(out, v.segments)
	return out
}

// Position 获取一个渲染行的位置与朝向
// 参数：slot-全局渲染行
func (v *RenderView) Position(slot int) (geometry.Point, float64) {
	base := slot * entity.RenderStride
	v.mu.RLock()
	defer v.mu.RUnlock()
	return geometry.Point{
		X: v.data[base],
		Y: v.data[base+1],
		Z: v.data[base+2],
	}, v.data[base+3]
}

// CopyTo 复制完整视图到目标缓冲区
// 功能：渲染端每帧整体取走视图，容量不足时重新分配
// 返回：持有数据的切片（可能是重新分配的）
func (v *RenderView) CopyTo(dst []float64) []float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if cap(dst) < len(v.data) {
		dst = make([]float64, len(v.data))
	}
	dst = dst[:len(v.data)]
	copy(dst, v.data)
	return dst
}

// Resolve 将全局渲染行翻译为所属Fab与其车辆缓冲区槽位
// 功能：紧凑渲染行到带空洞的车辆槽位的两步翻译——
// 先按区段表定位Fab与区段内行号，再查槽位表得到车辆槽位
// 说明：区段数等于Fab数（个位数量级），线性扫描即可
func (v *RenderView) Resolve(slot int) (Segment, int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for i, seg := range v.segments {
		if slot >= seg.Offset && slot < seg.Offset+seg.Length {
			return seg, int(v.slots[i][slot-seg.Offset]), nil
		}
	}
	return Segment{}, 0, fmt.Errorf("render slot %d not live", slot)
}

// GlobalSlot 将Fab内车辆槽位翻译为全局渲染行
// 返回：该车辆当前所在的渲染行；车辆不在活跃窗口中时返回error
func (v *RenderView) GlobalSlot(fabName string, vehSlot int) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for i, seg := range v.segments {
		if seg.Fab != fabName {
			continue
		}
		for row, s := range v.slots[i] {
			if int(s) == vehSlot {
				return seg.Offset + row, nil
			}
		}
		return 0, fmt.Errorf("slot %d of fab %s not in live window", vehSlot, fabName)
	}
	return 0, fmt.Errorf("no fab %s in render view", fabName)
}
