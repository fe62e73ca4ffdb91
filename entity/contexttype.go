package entity

import (
	"github.com/vosui/vps-go/clock"
	"github.com/vosui/vps-go/devlog"
	"github.com/vosui/vps-go/utils/config"
)

// IFabContext Fab上下文接口
// 功能：包含一个Fab分区的所有组件，替代全局变量，
// 使多个独立Fab能够在同一进程内共存而没有隐藏共享状态
type IFabContext interface {
	Name() string    // Fab名
	FabID() uint8    // Fab ID
	WorkerID() uint8 // 所属工作线程ID

	Clock() *clock.Clock                  // 时钟
	VehicleManager() IVehicleManager      // 车辆管理器
	EdgeManager() IEdgeManager            // Edge管理器
	NodeManager() INodeManager            // Node管理器
	LockManager() ILockManager            // 锁管理器
	RuntimeConfig() *config.RuntimeConfig // 运行时配置
	DevLog() devlog.Sink                  // 开发日志事件接收器
}
