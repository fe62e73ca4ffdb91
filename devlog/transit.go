package devlog

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// EdgeType Edge几何类型
// 功能：标识Edge的几何形状，用于通行时间统计
type EdgeType uint8

const (
	EdgeLinear EdgeType = iota
	EdgeCurve90
	EdgeCurve180
	EdgeCurveCSC
	EdgeSCurve
	EdgeLeftCurve
	EdgeRightCurve
)

// String 获取Edge类型的字符串表示
func (t EdgeType) String() string {
	switch t {
	case EdgeLinear:
		return "LINEAR"
	case EdgeCurve90:
		return "CURVE_90"
	case EdgeCurve180:
		return "CURVE_180"
	case EdgeCurveCSC:
		return "CURVE_CSC"
	case EdgeSCurve:
		return "S_CURVE"
	case EdgeLeftCurve:
		return "LEFT_CURVE"
	case EdgeRightCurve:
		return "RIGHT_CURVE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
	}
}

// TransitRecordSize Edge通行记录的固定字节数
const TransitRecordSize = 28

// EdgeTransitRecord Edge通行记录
// 功能：记录一辆车完整通过一条Edge的过程，供离线统计工具分析
// 说明：二进制布局为对外稳定契约（28字节、小端），必须逐位复现：
//
//	timestamp  u32 @0
//	workerId   u8  @4
//	fabId      u8  @5
//	edgeId     u16 @6
//	vehId      u32 @8
//	enterTime  u32 @12
//	exitTime   u32 @16
//	edgeLength f32 @20
//	edgeType   u8  @24
//	padding    3B  @25
type EdgeTransitRecord struct {
	Timestamp  uint32   // 记录写出时刻（毫秒）
	WorkerID   uint8    // 工作线程ID
	FabID      uint8    // Fab ID
	EdgeID     uint16   // Edge ID
	VehID      uint32   // 车辆ID
	EnterTime  uint32   // 进入时刻（毫秒）
	ExitTime   uint32   // 离开时刻（毫秒）
	EdgeLength float32  // Edge长度（米）
	EdgeType   EdgeType // Edge几何类型
}

// TransitTime 获取Edge通行耗时（毫秒）
func (r EdgeTransitRecord) TransitTime() uint32 {
	if r.ExitTime < r.EnterTime {
		return 0
	}
	return r.ExitTime - r.EnterTime
}

// Speed 获取平均通行速度（米/秒）
func (r EdgeTransitRecord) Speed() float64 {
	dt := r.TransitTime()
	if dt == 0 {
		return 0
	}
	return float64(r.EdgeLength) / (float64(dt) / 1000.0)
}

// AppendTo 将记录编码到字节数组
// 参数：buf-长度至少为TransitRecordSize的目标缓冲区
func (r EdgeTransitRecord) AppendTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], r.Timestamp)
	buf[4] = r.WorkerID
	buf[5] = r.FabID
	binary.LittleEndian.PutUint16(buf[6:], r.EdgeID)
	binary.LittleEndian.PutUint32(buf[8:], r.VehID)
	binary.LittleEndian.PutUint32(buf[12:], r.EnterTime)
	binary.LittleEndian.PutUint32(buf[16:], r.ExitTime)
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(r.EdgeLength))
	buf[24] = uint8(r.EdgeType)
	buf[25], buf[26], buf[27] = 0, 0, 0
}

// DecodeTransitRecord 从字节数组解码记录
// 参数：buf-长度至少为TransitRecordSize的源缓冲区
func DecodeTransitRecord(buf []byte) EdgeTransitRecord {
	return EdgeTransitRecord{
		Timestamp:  binary.LittleEndian.Uint32(buf[0:]),
		WorkerID:   buf[4],
		FabID:      buf[5],
		EdgeID:     binary.LittleEndian.Uint16(buf[6:]),
		VehID:      binary.LittleEndian.Uint32(buf[8:]),
		EnterTime:  binary.LittleEndian.Uint32(buf[12:]),
		ExitTime:   binary.LittleEndian.Uint32(buf[16:]),
		EdgeLength: math.Float32frombits(binary.LittleEndian.Uint32(buf[20:])),
		EdgeType:   EdgeType(buf[24]),
	}
}

// TransitWriter Edge通行记录写出器
// 功能：将通行记录以固定28字节格式流式写出
type TransitWriter struct {
	w   io.Writer
	buf [TransitRecordSize]byte
}

// NewTransitWriter 创建通行记录写出器
func NewTransitWriter(w io.Writer) *TransitWriter {
	return &TransitWriter{w: w}
}

// Write 写出一条记录
func (tw *TransitWriter) Write(r EdgeTransitRecord) error {
	r.AppendTo(tw.buf[:])
	_, err := tw.w.Write(tw.buf[:])
	return err
}

// TransitReader Edge通行记录读取器
// 功能：从二进制流中逐条读取通行记录
type TransitReader struct {
	r   io.Reader
	buf [TransitRecordSize]byte
}

// NewTransitReader 创建通行记录读取器
func NewTransitReader(r io.Reader) *TransitReader {
	return &TransitReader{r: r}
}

// Read 读取下一条记录
// 返回：记录与错误，流结束时返回io.EOF
func (tr *TransitReader) Read() (EdgeTransitRecord, error) {
	if _, err := io.ReadFull(tr.r, tr.buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return EdgeTransitRecord{}, err
	}
	return DecodeTransitRecord(tr.buf[:]), nil
}
