package devlog

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Sink 开发日志事件接收器
// 功能：接收结构化日志事件，由具体实现决定输出方式
// 说明：二进制批量写出器不在本仓库范围内，这里只约定事件契约
type Sink interface {
	Emit(ev Event)
}

// LogrusSink 基于logrus的事件接收器
// 功能：将结构化事件渲染为文本日志行
// 说明：输出格式与外部文本日志解析工具的行格式保持一致
type LogrusSink struct {
	entry *logrus.Entry
}

// NewLogrusSink 创建logrus事件接收器
// 参数：entry-带module字段的logrus入口
func NewLogrusSink(entry *logrus.Entry) *LogrusSink {
	return &LogrusSink{entry: entry}
}

// Emit 输出一条事件
// 说明：行首带作用域前缀（[veh:N]或[global]），与外部文本日志
// 解析工具的行格式一致
func (s *LogrusSink) Emit(ev Event) {
	line := Scope(ev.Veh()) + " " + ev.Line()
	switch ev.EventLevel() {
	case LevelDebug:
		s.entry.Debug(line)
	case LevelInfo:
		s.entry.Info(line)
	case LevelWarn:
		s.entry.Warn(line)
	default:
		s.entry.Error(line)
	}
}

// Scope 获取车辆ID对应的日志作用域标记
func Scope(veh int32) string {
	if veh > 0 {
		return fmt.Sprintf("[veh:%d]", veh)
	}
	return "[global]"
}

// NopSink 丢弃所有事件的接收器
type NopSink struct{}

// Emit 丢弃事件
func (NopSink) Emit(Event) {}
