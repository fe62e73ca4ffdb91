package config

const (
	defaultBatchCapacity     = 4
	defaultAutoReleaseRatio  = 0.25
	defaultOccupancyCapacity = 64
	defaultCapacityMargin    = 0.1
	defaultMaxCheckpoints    = 256
	defaultMaxSpeed          = 3.0
)

// 锁授予策略名
const (
	LockStrategyFIFO  = "fifo"
	LockStrategyBatch = "batch"
)

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息，包含补全默认值后的控制参数
// 说明：将YAML配置转换为运行时可用的配置对象
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，补全缺省控制参数
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control
	if rc.C.LockStrategy == "" {
		rc.C.LockStrategy = LockStrategyFIFO
	}
	if rc.C.BatchCapacity <= 0 {
		rc.C.BatchCapacity = defaultBatchCapacity
	}
	if rc.C.AutoReleaseRatio <= 0 {
		rc.C.AutoReleaseRatio = defaultAutoReleaseRatio
	}
	if rc.C.OccupancyCapacity <= 0 {
		rc.C.OccupancyCapacity = defaultOccupancyCapacity
	}
	if rc.C.CapacityMargin <= 0 {
		rc.C.CapacityMargin = defaultCapacityMargin
	}
	if rc.C.MaxCheckpoints <= 0 {
		rc.C.MaxCheckpoints = defaultMaxCheckpoints
	}
	if rc.C.MaxSpeed <= 0 {
		rc.C.MaxSpeed = defaultMaxSpeed
	}

	return rc
}

// VehicleCapacity 计算车辆缓冲区分配容量
// 功能：在预期车辆数之上增加固定比例余量，吸收取整误差避免溢出
// 参数：expected-预期车辆数
// 返回：分配容量（至少为expected+1）
func (rc *RuntimeConfig) VehicleCapacity(expected int) int {
	margin := int(float64(expected) * rc.C.CapacityMargin)
	if margin < 1 {
		margin = 1
	}
	return expected + margin
}
