package junction

import (
	"github.com/samber/lo"

	"github.com/traffic-complexity/gridca-sim/entity"
	"github.com/traffic-complexity/gridca-sim/entity/grid"
	"github.com/traffic-complexity/gridca-sim/utils/container"
)

// feederPenalty 非环岛内车辆的优先级偏移，保证环岛内车辆总是先被弹出
const feederPenalty = 1 << 31

// Result 单tick的裁决结果
type Result struct {
	Granted map[int32]bool // 获准执行提案的车辆ID集合
	Denied  []int32        // 被否决的车辆ID（按否决顺序）
}

// Resolve 对一个tick的全部提案做冲突裁决
// 参数：
//   - g: 路网（只读，用于查询元胞类型与快照占用）
//   - proposals: 全部车辆的提案
//   - method: 环岛通行规则
//
// 算法说明：
//
//	按目标元胞分组，唯一申请者直接获准；多个申请者按优先级仲裁：
//	环岛内车辆优先于进入环岛的车辆，同级按车辆ID升序。
//	让行规则下被争用的环岛元胞只允许环岛内车辆进入，外部车辆一律等待。
//	仲裁后做可行性传播：获准移动的目标元胞若仍被未腾出的车辆占据，
//	该移动也被否决，直到不动点为止，保证提交后无重叠。
func Resolve(g *grid.Grid, proposals []entity.ProposedMove, method entity.RotaryMethod) Result {
	res := Result{Granted: make(map[int32]bool, len(proposals))}
	byID := make(map[int32]entity.ProposedMove, len(proposals))
	for _, p := range proposals {
		byID[p.ID] = p
		if p.From == p.To {
			// 原地停留不参与仲裁
			res.Granted[p.ID] = true
		}
	}

	claims := lo.GroupBy(
		lo.Filter(proposals, func(p entity.ProposedMove, _ int) bool { return p.From != p.To }),
		func(p entity.ProposedMove) entity.Position { return p.To },
	)
	for target, group := range claims {
		if len(group) == 1 {
			res.Granted[group[0].ID] = true
			continue
		}
		res.arbitrate(g, target, group, method)
	}

	res.propagate(g, byID)
	if len(res.Denied) > 0 {
		log.Debugf("junction: denied %d of %d proposals", len(res.Denied), len(proposals))
	}
	return res
}

// arbitrate 对同一元胞的多个申请者仲裁
func (r *Result) arbitrate(g *grid.Grid, target entity.Position, group []entity.ProposedMove, method entity.RotaryMethod) {
	if g.Kind(target) == entity.CellRotary && method == entity.RotaryYield {
		// 让行规则：争用中的环岛元胞只让环岛内车辆通过
		granted := false
		for _, p := range group {
			if p.FromRotary && !granted {
				r.Granted[p.ID] = true
				granted = true
			} else {
				r.deny(p.ID)
			}
		}
		return
	}

	pq := container.NewPriorityQueue[int32]()
	for _, p := range group {
		priority := float64(p.ID)
		if !p.FromRotary {
			priority += feederPenalty
		}
		pq.HeapPush(p.ID, priority)
	}
	winner, _ := pq.HeapPop()
	r.Granted[winner] = true
	for pq.Len() > 0 {
		id, _ := pq.HeapPop()
		r.deny(id)
	}
}

// propagate 可行性传播：目标元胞未被腾出的获准移动逐轮否决
func (r *Result) propagate(g *grid.Grid, byID map[int32]entity.ProposedMove) {
	for {
		changed := false
		for id, ok := range r.Granted {
			if !ok {
				continue
			}
			p := byID[id]
			if p.From == p.To {
				continue
			}
			occ := g.OccupantAt(p.To)
			if occ != entity.NoVehicle && occ != id && !r.vacates(occ, byID) {
				r.Granted[id] = false
				r.deny(id)
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

// vacates 判断车辆本tick是否会腾出当前元胞
func (r *Result) vacates(id int32, byID map[int32]entity.ProposedMove) bool {
	p, ok := byID[id]
	if !ok {
		return false
	}
	return r.Granted[id] && p.From != p.To
}

func (r *Result) deny(id int32) {
	r.Denied = append(r.Denied, id)
}
