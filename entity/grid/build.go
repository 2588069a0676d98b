package grid

import (
	"github.com/traffic-complexity/gridca-sim/entity"
)

// build 构造道路与环岛拓扑
// 算法说明：
// 1. 全部元胞初始化为街区
// 2. 以blockSize为间隔铺设纵向、横向道路，每条道路按宽度一分为二，
//    两半通行方向相反（右侧通行）
// 3. 道路交汇处改写为laneWidth x laneWidth的环岛，环元胞顺时针编号
func (g *Grid) build() {
	g.createVerticalLanes()
	g.createHorizontalLanes()
	g.createRotaries()
	g.collectRoadCells()
}

// createVerticalLanes 以blockSize为间隔铺设纵向道路
// 说明：道路左半列南向通行，右半列北向通行
func (g *Grid) createVerticalLanes() {
	half := g.blockSize / 2
	divider := g.laneWidth / 2
	for col0 := half; col0 < g.size; col0 += g.blockSize {
		right := min(col0+g.laneWidth, g.size)
		for row := int32(0); row < g.size; row++ {
			for col := col0; col < right; col++ {
				i := row*g.size + col
				if g.kinds[i] != entity.CellBlock {
					continue
				}
				g.kinds[i] = entity.CellRoad
				if col-col0 < divider {
					g.dirs[i] = entity.DirectionSouth
				} else {
					g.dirs[i] = entity.DirectionNorth
				}
			}
		}
	}
}

// createHorizontalLanes 以blockSize为间隔铺设横向道路
// 说明：道路上半行西向通行，下半行东向通行
func (g *Grid) createHorizontalLanes() {
	half := g.blockSize / 2
	divider := g.laneWidth / 2
	for row0 := half; row0 < g.size; row0 += g.blockSize {
		bottom := min(row0+g.laneWidth, g.size)
		for row := row0; row < bottom; row++ {
			for col := int32(0); col < g.size; col++ {
				i := row*g.size + col
				if g.kinds[i] != entity.CellBlock {
					continue
				}
				g.kinds[i] = entity.CellRoad
				if row-row0 < divider {
					g.dirs[i] = entity.DirectionWest
				} else {
					g.dirs[i] = entity.DirectionEast
				}
			}
		}
	}
}

// createRotaries 在道路交汇处构造环岛
// 说明：每个交汇处为laneWidth x laneWidth的环岛，环为该方块的外圈，
// 顺时针编号；不完整落在栅格内的交汇处保持为普通道路，不成环
func (g *Grid) createRotaries() {
	half := g.blockSize / 2
	for row0 := half; row0 < g.size; row0 += g.blockSize {
		for col0 := half; col0 < g.size; col0 += g.blockSize {
			if row0+g.laneWidth > g.size || col0+g.laneWidth > g.size {
				continue
			}
			for r := row0; r < row0+g.laneWidth; r++ {
				for c := col0; c < col0+g.laneWidth; c++ {
					g.kinds[r*g.size+c] = entity.CellRotary
					g.rotaryCellCount++
				}
			}
			ring := ringPerimeter(row0, col0, g.laneWidth)
			ringID := int32(len(g.rings))
			g.rings = append(g.rings, ring)
			for idx, p := range ring {
				g.ringIndex[p] = ringRef{ring: ringID, idx: int32(idx)}
			}
		}
	}
}

// ringPerimeter 计算环岛外圈元胞的顺时针序列
// 说明：从左上角开始：上边左→右，右边上→下，下边右→左，左边下→上；
// laneWidth=2时恰为原始的2x2四元胞环
func ringPerimeter(row0, col0, w int32) []entity.Position {
	ring := make([]entity.Position, 0, 4*(w-1))
	for c := col0; c < col0+w; c++ {
		ring = append(ring, entity.Position{Row: row0, Col: c})
	}
	for r := row0 + 1; r < row0+w; r++ {
		ring = append(ring, entity.Position{Row: r, Col: col0 + w - 1})
	}
	for c := col0 + w - 2; c >= col0; c-- {
		ring = append(ring, entity.Position{Row: row0 + w - 1, Col: c})
	}
	for r := row0 + w - 2; r >= row0+1; r-- {
		ring = append(ring, entity.Position{Row: r, Col: col0})
	}
	return ring
}

// collectRoadCells 收集所有道路元胞（不含环岛），行优先序
// 说明：固定的遍历顺序保证初始车辆投放在同一种子下可复现
func (g *Grid) collectRoadCells() {
	for r := int32(0); r < g.size; r++ {
		for c := int32(0); c < g.size; c++ {
			if g.kinds[r*g.size+c] == entity.CellRoad {
				g.roadCells = append(g.roadCells, entity.Position{Row: r, Col: c})
			}
		}
	}
}
