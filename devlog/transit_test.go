package devlog

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitRecordLayout(t *testing.T) {
	rec := EdgeTransitRecord{
		Timestamp:  1000,
		WorkerID:   2,
		FabID:      1,
		EdgeID:     42,
		VehID:      7,
		EnterTime:  900,
		ExitTime:   1000,
		EdgeLength: 2.5,
		EdgeType:   EdgeCurve90,
	}

	var buf [TransitRecordSize]byte
	rec.AppendTo(buf[:])

	// 小端布局与字段偏移是对外稳定契约
	assert.Equal(t, []byte{0xe8, 0x03, 0x00, 0x00}, buf[0:4]) // timestamp=1000
	assert.Equal(t, byte(2), buf[4])                          // workerId
	assert.Equal(t, byte(1), buf[5])                          // fabId
	assert.Equal(t, []byte{42, 0}, buf[6:8])                  // edgeId
	assert.Equal(t, []byte{7, 0, 0, 0}, buf[8:12])            // vehId
	assert.Equal(t, byte(EdgeCurve90), buf[24])               // edgeType
	assert.Equal(t, []byte{0, 0, 0}, buf[25:28])              // padding

	decoded := DecodeTransitRecord(buf[:])
	assert.Equal(t, rec, decoded)
}

func TestTransitRecordDerived(t *testing.T) {
	rec := EdgeTransitRecord{EnterTime: 1000, ExitTime: 2000, EdgeLength: 3.0}
	assert.Equal(t, uint32(1000), rec.TransitTime())
	assert.InDelta(t, 3.0, rec.Speed(), 1e-9)

	// 时钟回绕防御
	rec = EdgeTransitRecord{EnterTime: 2000, ExitTime: 1000}
	assert.Equal(t, uint32(0), rec.TransitTime())
	assert.Equal(t, 0.0, rec.Speed())
}

func TestTransitWriterReader(t *testing.T) {
	var buf bytes.Buffer
	w := NewTransitWriter(&buf)
	records := []EdgeTransitRecord{
		{Timestamp: 10, EdgeID: 1, VehID: 1, EnterTime: 0, ExitTime: 10, EdgeLength: 1, EdgeType: EdgeLinear},
		{Timestamp: 20, EdgeID: 2, VehID: 2, EnterTime: 5, ExitTime: 20, EdgeLength: 2, EdgeType: EdgeSCurve},
	}
	for _, rec := range records {
		require.NoError(t, w.Write(rec))
	}
	assert.Equal(t, len(records)*TransitRecordSize, buf.Len())

	r := NewTransitReader(&buf)
	for _, want := range records {
		got, err := r.Read()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestTransitReaderTruncated(t *testing.T) {
	r := NewTransitReader(bytes.NewReader(make([]byte, TransitRecordSize+5)))
	_, err := r.Read()
	require.NoError(t, err)
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestEdgeName(t *testing.T) {
	assert.Equal(t, "E12", EdgeName(12))
	assert.Equal(t, "E0(none)", EdgeName(0))
	assert.Equal(t, "E0(none)", EdgeName(-1))
}
