package clock

import (
	"fmt"

	"github.com/vosui/vps-go/utils/config"
)

// Clock 仿真时钟
// 功能：管理单个Fab的固定步长时间推进
// 说明：每个Fab持有独立时钟，由其所属的工作线程独占推进
type Clock struct {
	DT       float64 // 每个模拟步时间间隔（秒）
	END_STEP int32   // 结束步，0表示无界运行

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前步数
}

// New 根据配置创建新的时钟实例
// 参数：stepConfig-控制步配置，包含时间间隔与总步数
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		DT:       stepConfig.Interval,
		END_STEP: stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 初始化时钟状态
// 说明：重置步数为0，重新计算当前时间
func (c *Clock) Init() {
	c.InternalStep = 0
	c.T = 0
}

// Tick 推进一个模拟步
func (c *Clock) Tick() {
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
}

// Done 判断时钟是否已越过结束步
// 说明：END_STEP为0时永远返回false
func (c *Clock) Done() bool {
	return c.END_STEP > 0 && c.InternalStep >= c.END_STEP
}

// Millis 获取当前时间（毫秒），供通行记录与锁事件使用
func (c *Clock) Millis() uint32 {
	return uint32(c.T * 1000)
}

// String 获取时钟的字符串表示
// 返回：格式化的时间字符串（HH:MM:SS）
func (c *Clock) String() string {
	t := c.T
	h := int(t / 3600)
	t -= float64(h * 3600)
	m := int(t / 60)
	t -= float64(m * 60)
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
