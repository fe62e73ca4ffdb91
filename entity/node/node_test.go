package node

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vosui/vps-go/utils/input"
)

func TestNodeManagerMergeDetection(t *testing.T) {
	m := NewManager()
	// N1有两条入边（合流点），N2只有一条
	m.Init([]input.Edge{
		{ID: 1, From: "N0", To: "N1"},
		{ID: 2, From: "N9", To: "N1"},
		{ID: 3, From: "N1", To: "N2"},
	})

	assert.Equal(t, []string{"N1"}, m.MergeNodes())
	assert.True(t, m.IsMergeNode("N1"))
	assert.False(t, m.IsMergeNode("N2"))
	assert.False(t, m.IsMergeNode("N404"))

	assert.Equal(t, 2, m.IncomingCount("N1"))
	assert.Equal(t, 1, m.IncomingCount("N2"))
	assert.Equal(t, 0, m.IncomingCount("N0"))
}

func TestNodeManagerMergeOrderStable(t *testing.T) {
	m := NewManager()
	m.Init([]input.Edge{
		{ID: 1, From: "A", To: "Z"},
		{ID: 2, From: "B", To: "Z"},
		{ID: 3, From: "C", To: "M"},
		{ID: 4, From: "D", To: "M"},
		{ID: 5, From: "E", To: "K"},
		{ID: 6, From: "F", To: "K"},
	})

	// 合流点列表有序，锁表构建与快照输出可复现
	assert.Equal(t, []string{"K", "M", "Z"}, m.MergeNodes())
}
