package edge

import (
	"fmt"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"

	"github.com/vosui/vps-go/entity"
	"github.com/vosui/vps-go/utils/input"
)

// EdgeManager Edge管理器
// 功能：管理一个Fab的所有Edge实体，提供创建、查找与占用列表维护
type EdgeManager struct {
	ctx entity.IFabContext

	data  map[int32]*Edge
	edges []*Edge
}

// NewManager 创建Edge管理器实例
// 参数：ctx-Fab上下文
// 返回：新创建的Edge管理器实例
func NewManager(ctx entity.IFabContext) *EdgeManager {
	return &EdgeManager{
		ctx:   ctx,
		data:  make(map[int32]*Edge),
		edges: make([]*Edge, 0),
	}
}

// Init 初始化所有Edge
// 功能：根据输入数据初始化所有Edge对象，建立ID映射关系
// 参数：edges-Edge输入数据列表
// 说明：使用并行处理提高初始化效率
func (m *EdgeManager) Init(edges []input.Edge) {
	m.edges = parallel.GoMap(edges, func(e input.Edge) *Edge {
		return newEdge(m.ctx, e)
	})
	m.data = lo.SliceToMap(m.edges, func(e *Edge) (int32, *Edge) {
		return e.id, e
	})
}

// Get 根据ID获取Edge实例
// 功能：通过Edge ID查找对应的Edge对象，如果不存在则panic
// 参数：id-Edge的唯一标识符（0为无效哨兵值）
func (m *EdgeManager) Get(id int32) entity.IEdge {
	if edge, ok := m.data[id]; !ok {
		log.Panicf("no id %d in edge data", id)
		return nil
	} else {
		return edge
	}
}

// GetOrError 根据ID获取Edge实例（带错误处理）
// 参数：id-Edge的唯一标识符
// 返回：Edge实例和错误信息，如果不存在则返回nil和错误
func (m *EdgeManager) GetOrError(id int32) (entity.IEdge, error) {
	if edge, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in edge data", id)
	} else {
		return edge, nil
	}
}

// Edges 获取所有Edge
func (m *EdgeManager) Edges() []entity.IEdge {
	return lo.Map(m.edges, func(e *Edge, _ int) entity.IEdge { return e })
}

// SortOccupancies 重排所有Edge的占用列表
// 功能：批量位置更新后按车辆实时比例位置降序恢复顺序
// 说明：各Edge互不相关，使用并行处理
func (m *EdgeManager) SortOccupancies() {
	parallel.GoFor(m.edges, func(e *Edge) { e.sortOccupancy() })
}
