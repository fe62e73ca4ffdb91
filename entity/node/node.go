package node

// Node 网络节点实体
// 功能：表示有向边汇聚的图节点
type Node struct {
	name     string // Node名
	incoming int    // 入边数
	outgoing int    // 出边数
}

// Name 获取Node名
func (n *Node) Name() string {
	return n.name
}

// Incoming 获取入边数
func (n *Node) Incoming() int {
	return n.incoming
}

// Outgoing 获取出边数
func (n *Node) Outgoing() int {
	return n.outgoing
}

// IsMerge 判断是否为合流点（入边数>=2，需要互斥访问）
func (n *Node) IsMerge() bool {
	return n.incoming >= 2
}
