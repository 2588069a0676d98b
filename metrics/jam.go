package metrics

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/traffic-complexity/gridca-sim/entity"
)

// jamClusters 统计停驶车辆构成的连通团簇
// 算法说明：
//
//	把被速度为0的车辆占据的元胞作为图的节点，
//	四邻接（不跨网格边界回绕）的停驶元胞之间连边，
//	连通分量数即团簇数，最大分量的节点数即最大团簇规模。
func jamClusters(snap entity.GridSnapshot) (clusters int32, largest int32) {
	speeds := make(map[int32]int32, len(snap.Vehicles))
	for _, v := range snap.Vehicles {
		speeds[v.ID] = v.Speed
	}
	jammed := make(map[int64]bool)
	for i, id := range snap.Occupants {
		if id != entity.NoVehicle && speeds[id] == 0 {
			jammed[int64(i)] = true
		}
	}
	if len(jammed) == 0 {
		return 0, 0
	}

	g := simple.NewUndirectedGraph()
	for i := range jammed {
		g.AddNode(simple.Node(i))
	}
	size := int64(snap.Size)
	for i := range jammed {
		row, col := i/size, i%size
		// 只连右侧与下方的邻居，避免重复建边
		if col+1 < size && jammed[i+1] {
			g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(i+1)))
		}
		if row+1 < size && jammed[i+size] {
			g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(i+size)))
		}
	}

	components := topo.ConnectedComponents(g)
	for _, comp := range components {
		if n := int32(len(comp)); n > largest {
			largest = n
		}
	}
	return int32(len(components)), largest
}
