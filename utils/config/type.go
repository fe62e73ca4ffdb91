package config

// InputPath 指定输入数据来源的配置（文件系统）
// 功能：定义数据输入路径的配置结构
type InputPath struct {
	File string `yaml:"file"` // 文件路径
}

// OffsetConfig Fab在合成世界坐标系中的位置偏移
type OffsetConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z,omitempty"`
}

// FabConfig 单个Fab分区的配置
// 功能：定义一个独立仿真分区的名称、ID空间、坐标偏移与输入数据
type FabConfig struct {
	Name         string       `yaml:"name"`              // Fab名，需全局唯一
	IDOffset     int32        `yaml:"id_offset"`         // 车辆ID偏移量，用于多Fab合成时的全局ID空间
	Offset       OffsetConfig `yaml:"offset,omitempty"`  // 坐标偏移
	Map          *InputPath   `yaml:"map,omitempty"`     // 地图数据，为空则使用共享地图
	Plan         InputPath    `yaml:"plan"`              // 车辆路径与检查点序列
	VehicleCount int          `yaml:"vehicle_count"`     // 预期车辆数（缓冲区按此加上容量余量分配）
	TransitLog   string       `yaml:"transit_log,omitempty"` // Edge通行二进制日志输出路径，为空则不输出
}

// ControlStep 指定模拟器时间步进的配置项
type ControlStep struct {
	Interval float64 `yaml:"interval"`        // 每步的时间间隔（秒）
	Total    int32   `yaml:"total,omitempty"` // 总步数，0表示持续运行直到dispose
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
type Control struct {
	Step              ControlStep `yaml:"step"`
	LockStrategy      string      `yaml:"lock_strategy,omitempty"`      // 锁授予策略：fifo（默认）或batch
	BatchCapacity     int         `yaml:"batch_capacity,omitempty"`     // batch策略下单组最大车辆数
	AutoReleaseRatio  float64     `yaml:"auto_release_ratio,omitempty"` // 超过合流点该比例位置仍未释放则强制释放
	OccupancyCapacity int         `yaml:"occupancy_capacity,omitempty"` // 每条Edge占用列表容量
	CapacityMargin    float64     `yaml:"capacity_margin,omitempty"`    // 车辆缓冲区容量余量比例
	MaxCheckpoints    int         `yaml:"max_checkpoints,omitempty"`    // 单车检查点序列容量
	MaxSpeed          float64     `yaml:"max_speed,omitempty"`          // 车辆最大速度（米/秒）
	Workers           int         `yaml:"workers,omitempty"`            // 工作线程数，0表示按硬件并发度解析
}

// Config YAML配置文件的根结构
type Config struct {
	Map   *InputPath  `yaml:"map,omitempty"` // 各Fab共享的地图数据
	Fabs  []FabConfig `yaml:"fabs"`          // Fab分区列表
	Control Control   `yaml:"control"`       // 模拟过程控制
}
