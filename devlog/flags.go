package devlog

import "strings"

// Flags 检查点动作标志位
// 功能：编码检查点到达后必须执行的动作集合
// 说明：标志位编码是对外稳定契约，外部日志解析工具按位解码，不可变更
type Flags uint32

const (
	FlagCompleted   Flags = 0 // 所有标志位均已处理完毕，可加载下一检查点
	FlagLockRequest Flags = 1 // 请求合流点锁
	FlagLockWait    Flags = 2 // 等待成为合流点锁持有者
	FlagLockRelease Flags = 4 // 释放合流点锁
	FlagMovePrepare Flags = 8 // 移动准备
)

// Has 判断是否包含指定标志位
func (f Flags) Has(bit Flags) bool {
	return f&bit != 0
}

// Clear 清除指定标志位并返回结果
func (f Flags) Clear(bit Flags) Flags {
	return f &^ bit
}

// String 获取标志位的字符串表示
// 功能：将标志位解码为可读格式，与外部解析工具的解码规则一致
// 返回：0返回COMPLETED，否则返回以|连接的标志名
func (f Flags) String() string {
	if f == FlagCompleted {
		return "COMPLETED"
	}
	names := make([]string, 0, 4)
	if f.Has(FlagLockRequest) {
		names = append(names, "LOCK_REQUEST")
	}
	if f.Has(FlagLockWait) {
		names = append(names, "LOCK_WAIT")
	}
	if f.Has(FlagLockRelease) {
		names = append(names, "LOCK_RELEASE")
	}
	if f.Has(FlagMovePrepare) {
		names = append(names, "MOVE_PREPARE")
	}
	if len(names) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(names, "|")
}
