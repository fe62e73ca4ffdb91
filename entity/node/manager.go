package node

import (
	"sort"

	"github.com/vosui/vps-go/utils/input"
)

// NodeManager Node管理器
// 功能：由Edge拓扑推导Node集合与合流点集合
// 说明：合流点集合在初始化时计算一次，地图生命周期内不可变
type NodeManager struct {
	data       map[string]*Node
	mergeNodes []string
}

// NewManager 创建Node管理器实例
func NewManager() *NodeManager {
	return &NodeManager{
		data:       make(map[string]*Node),
		mergeNodes: make([]string, 0),
	}
}

// Init 由Edge拓扑初始化
// 功能：统计每个Node的出入边数并固化合流点集合
// 参数：edges-Edge输入数据列表
func (m *NodeManager) Init(edges []input.Edge) {
	for _, e := range edges {
		from, ok := m.data[e.From]
		if !ok {
			from = &Node{name: e.From}
			m.data[e.From] = from
		}
		from.outgoing++
		to, ok := m.data[e.To]
		if !ok {
			to = &Node{name: e.To}
			m.data[e.To] = to
		}
		to.incoming++
	}
	m.mergeNodes = m.mergeNodes[:0]
	for name, n := range m.data {
		if n.IsMerge() {
			m.mergeNodes = append(m.mergeNodes, name)
		}
	}
	// map遍历顺序不稳定，固定合流点顺序便于锁表构建与快照输出
	sort.Strings(m.mergeNodes)
}

// MergeNodes 获取所有合流点名
func (m *NodeManager) MergeNodes() []string {
	return m.mergeNodes
}

// IsMergeNode 判断是否为合流点
func (m *NodeManager) IsMergeNode(name string) bool {
	if n, ok := m.data[name]; ok {
		return n.IsMerge()
	}
	return false
}

// IncomingCount 获取入边数
func (m *NodeManager) IncomingCount(name string) int {
	if n, ok := m.data[name]; ok {
		return n.incoming
	}
	return 0
}
