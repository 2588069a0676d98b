package vehicle

import (
	"github.com/traffic-complexity/gridca-sim/entity"
	"github.com/traffic-complexity/gridca-sim/entity/grid"
	"github.com/traffic-complexity/gridca-sim/utils/randengine"
)

// proposeMove 提案阶段：根据快照状态计算本tick的期望移动
// 参数：
//   - g: 路网（占用数据在提交阶段才更新，提案阶段读到的即为tick开始时的快照）
//   - e: 随机引擎（管理器保证按车辆ID顺序消耗随机数）
//   - slowdownP: 随机慢化概率
//   - method: 环岛通行规则
//
// 算法说明：
//
//	道路上执行NaSch四步规则的前三步（加速、安全距离、随机慢化），
//	并在接近环岛时将速度压到入口前一格，入环只能以速度1进行；
//	环岛内每tick固定移动一格，沿行驶方向有出口且出口空闲时离开环岛，
//	否则继续顺时针绕行。实际位移由裁决器统一裁决后才提交。
func (v *Vehicle) proposeMove(g *grid.Grid, e *randengine.Engine, slowdownP float64, method entity.RotaryMethod) entity.ProposedMove {
	if v.snapshot.InRotary {
		return v.proposeInRotary(g, e, method)
	}
	return v.proposeOnRoad(g, e, slowdownP)
}

// proposeOnRoad 道路上的NaSch提案
func (v *Vehicle) proposeOnRoad(g *grid.Grid, e *randengine.Engine, slowdownP float64) entity.ProposedMove {
	pos, dir := v.snapshot.Pos, v.snapshot.Dir
	limit := v.cap(g.MaxSpeed())

	// 加速
	speed := v.snapshot.Speed + 1
	if speed > limit {
		speed = limit
	}
	// 安全距离：不超过前方空闲格数
	gap := g.GapAhead(pos, dir, limit+1)
	if gap < 0 {
		log.Panicf("vehicle %d: negative gap %d at %v", v.id, gap, pos)
	}
	if speed > gap {
		speed = gap
	}
	// 环岛入口约束：入环只能停在入口前一格或以速度1入环
	if speed > 0 {
		if dRot := g.DistanceToRotary(pos, dir, speed); dRot <= speed {
			if dRot == 1 {
				speed = 1
			} else {
				speed = dRot - 1
			}
		}
	}
	// 随机慢化
	if speed > 0 && slowdownP > 0 && e.PTrue(slowdownP) {
		speed--
	}

	to := g.Advance(pos, dir, speed)
	enter := speed > 0 && g.Kind(to) == entity.CellRotary
	return entity.ProposedMove{
		ID:        v.id,
		From:      pos,
		To:        to,
		Speed:     speed,
		Direction: dir,
		InRotary:  enter,
	}
}

// proposeInRotary 环岛内的提案：出环或继续绕行
func (v *Vehicle) proposeInRotary(g *grid.Grid, e *randengine.Engine, method entity.RotaryMethod) entity.ProposedMove {
	pos := v.snapshot.Pos

	exits := g.Neighbors(pos)
	if method == entity.RotaryYield {
		// 直行优先：只走与当前朝向一致的出口，且出口须空闲
		for _, n := range exits {
			if g.RoadDirection(n) == v.snapshot.Dir && g.OccupantAt(n) == entity.NoVehicle {
				return entity.ProposedMove{
					ID:         v.id,
					From:       pos,
					To:         n,
					Speed:      1,
					Direction:  v.snapshot.Dir,
					InRotary:   false,
					FromRotary: true,
				}
			}
		}
	} else {
		// 自由模式：在所有出口与继续绕行之间等概率随机选择
		weights := make([]float64, len(exits)+1)
		for i := range weights {
			weights[i] = 1
		}
		choice := int(e.DiscreteDistribution(weights))
		if choice < len(exits) {
			n := exits[choice]
			return entity.ProposedMove{
				ID:         v.id,
				From:       pos,
				To:         n,
				Speed:      1,
				Direction:  g.RoadDirection(n), // 出环后采用出口道路的方向
				InRotary:   false,
				FromRotary: true,
			}
		}
	}

	// 继续顺时针绕行
	next, ok := g.RotaryNext(pos)
	if !ok {
		log.Errorf("vehicle %d marked in rotary but cell %v is not a rotary cell", v.id, pos)
		return entity.ProposedMove{
			ID: v.id, From: pos, To: pos, Speed: 0, Direction: v.snapshot.Dir, InRotary: true,
		}
	}
	return entity.ProposedMove{
		ID:         v.id,
		From:       pos,
		To:         next,
		Speed:      1,
		Direction:  v.snapshot.Dir,
		InRotary:   true,
		FromRotary: true,
	}
}
