// 文件输入加载。地图与车辆计划以YAML文件提供，
// 路径规划与地图格式语义不在本仓库范围内，这里只做装载。
package input

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/vosui/vps-go/utils/config"
)

// Edge 地图中一条有向边的输入数据
type Edge struct {
	ID     int32   `yaml:"id"`             // Edge ID，1起始，0为无效哨兵值
	From   string  `yaml:"from"`           // 起点Node名
	To     string  `yaml:"to"`             // 终点Node名
	Length float64 `yaml:"length"`         // 长度（米）
	Type   uint8   `yaml:"type,omitempty"` // 几何类型编码

	// 渲染用端点坐标（[x, y]或[x, y, z]），缺省时位置输出为原点
	Start []float64 `yaml:"start,omitempty,flow"`
	End   []float64 `yaml:"end,omitempty,flow"`
}

// MapData 一个Fab的地图输入
type MapData struct {
	Edges []Edge `yaml:"edges"`
}

// Checkpoint 单个检查点的输入数据
// 说明：同时作为外部指令spawn负载的一部分，因此带JSON标签
type Checkpoint struct {
	Edge   int32   `yaml:"edge" json:"edge"`                           // 检查点所在Edge ID
	Ratio  float64 `yaml:"ratio" json:"ratio"`                         // 比例位置
	Flags  uint32  `yaml:"flags" json:"flags"`                         // 动作标志位
	Target int32   `yaml:"target,omitempty" json:"target,omitempty"`   // 目标Edge ID
}

// VehiclePlan 单车的路径与检查点序列
type VehiclePlan struct {
	Route       []int32      `yaml:"route"`       // 预计算路径（Edge ID序列）
	Checkpoints []Checkpoint `yaml:"checkpoints"` // 预计算检查点序列
}

// Plan 一个Fab的车辆计划输入
type Plan struct {
	Vehicles []VehiclePlan `yaml:"vehicles"`
}

// LoadMapData 从文件加载地图数据
// 参数：path-输入路径配置
// 返回：地图数据与错误信息
func LoadMapData(path config.InputPath) (*MapData, error) {
	file, err := os.ReadFile(path.File)
	if err != nil {
		return nil, fmt.Errorf("map data load err: %w", err)
	}
	var m MapData
	if err := yaml.UnmarshalStrict(file, &m); err != nil {
		return nil, fmt.Errorf("map data parse err: %w", err)
	}
	for _, e := range m.Edges {
		if e.ID <= 0 {
			return nil, fmt.Errorf("bad edge id %d (must be 1-based)", e.ID)
		}
		if e.Length <= 0 {
			return nil, fmt.Errorf("edge %d has non-positive length %f", e.ID, e.Length)
		}
	}
	return &m, nil
}

// LoadPlan 从文件加载车辆计划
// 参数：path-输入路径配置
// 返回：车辆计划与错误信息
func LoadPlan(path config.InputPath) (*Plan, error) {
	file, err := os.ReadFile(path.File)
	if err != nil {
		return nil, fmt.Errorf("plan load err: %w", err)
	}
	var p Plan
	if err := yaml.UnmarshalStrict(file, &p); err != nil {
		return nil, fmt.Errorf("plan parse err: %w", err)
	}
	return &p, nil
}
