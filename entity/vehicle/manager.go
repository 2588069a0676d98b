package vehicle

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/traffic-complexity/gridca-sim/entity"
	"github.com/traffic-complexity/gridca-sim/entity/grid"
	"github.com/traffic-complexity/gridca-sim/utils"
	"github.com/traffic-complexity/gridca-sim/utils/config"
	"github.com/traffic-complexity/gridca-sim/utils/randengine"
)

// Manager 车辆管理器
// 功能：负责车辆的初始化、准备、提案与提交
type Manager struct {
	data     map[int32]*Vehicle
	vehicles []*Vehicle // 按ID升序，保证随机数消耗顺序确定

	grid      *grid.Grid
	engine    *randengine.Engine
	slowdownP float64
	method    entity.RotaryMethod
}

// Init 初始化车辆管理器
// 算法说明：
//
//	在全部道路元胞中无放回抽取count个位置放置车辆（环岛元胞不参与初始放置），
//	车辆朝向取所在道路元胞的通行方向，初始速度为0；
//	每辆车再按ID顺序抽取一次随机数决定是否遵守限速。
func (m *Manager) Init(g *grid.Grid, e *randengine.Engine, rc *config.RuntimeConfig) error {
	m.grid = g
	m.engine = e
	m.slowdownP = rc.All.Vehicle.SlowdownP
	m.method = rc.Rotary
	m.data = make(map[int32]*Vehicle)

	cells := g.RoadCells()
	count := int(rc.All.Vehicle.Count)
	if count > len(cells) {
		return entity.NewConfigErrorf("vehicle.count",
			"%d vehicles do not fit on %d road cells", count, len(cells))
	}
	if count < 1 {
		return entity.NewConfigErrorf("vehicle.count", "there is at least 1 car")
	}
	m.vehicles = make([]*Vehicle, 0, count)
	for id, ci := range e.Sample(len(cells), count) {
		pos := cells[ci]
		v := newVehicle(int32(id), pos, g.RoadDirection(pos), true)
		if err := g.PlaceVehicle(v.id, pos); err != nil {
			return err
		}
		m.data[v.id] = v
		m.vehicles = append(m.vehicles, v)
	}
	for _, v := range m.vehicles {
		v.obeys = e.PTrue(rc.All.Vehicle.ObeyRatio)
	}
	log.Debugf("vehicle: placed %d vehicles on %d road cells", count, len(cells))
	return nil
}

// Get 获取指定ID的车辆
func (m *Manager) Get(id int32) (*Vehicle, bool) {
	v, ok := m.data[id]
	return v, ok
}

// GetOrError 获取指定ID的车辆，不存在时返回错误
func (m *Manager) GetOrError(id int32) (*Vehicle, error) {
	if v, ok := m.data[id]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("no vehicle with id %d", id)
}

// Len 车辆总数
func (m *Manager) Len() int {
	return len(m.vehicles)
}

// Find 按ID列表查找车辆，ids为空时返回全部
func (m *Manager) Find(ids []int32) ([]*Vehicle, []int32) {
	return utils.Find(m.data, m.vehicles, ids)
}

// Prepare 准备阶段：所有车辆将运行时数据复制到快照
func (m *Manager) Prepare() {
	for _, v := range m.vehicles {
		v.prepare()
	}
}

// ProposeAll 提案阶段：按ID顺序为每辆车计算期望移动
func (m *Manager) ProposeAll() []entity.ProposedMove {
	proposals := make([]entity.ProposedMove, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		proposals = append(proposals, v.proposeMove(m.grid, m.engine, m.slowdownP, m.method))
	}
	return proposals
}

// Commit 提交阶段：将裁决结果写入车辆运行时数据
// 参数：
//   - step: 当前tick（用于诊断）
//   - proposals: 本tick的全部提案（按ID顺序）
//   - granted: 获准执行的提案ID集合
//
// 返回：实际发生位移的移动列表（交给路网更新占用）
// 说明：被否决的车辆留在原地且速度归零
func (m *Manager) Commit(step int32, proposals []entity.ProposedMove, granted map[int32]bool) ([]entity.CommittedMove, error) {
	moves := make([]entity.CommittedMove, 0, len(proposals))
	maxV := m.grid.MaxSpeed() + 1
	for _, p := range proposals {
		v, err := m.GetOrError(p.ID)
		if err != nil {
			return nil, err
		}
		if !granted[p.ID] {
			v.runtime.Speed = 0
			continue
		}
		if p.Speed < 0 || p.Speed > maxV {
			return nil, entity.NewInvariantViolationf(step, p.ID,
				"speed %d out of range [0, %d]", p.Speed, maxV)
		}
		v.runtime.Pos = p.To
		v.runtime.Dir = p.Direction
		v.runtime.Speed = p.Speed
		v.runtime.InRotary = p.InRotary
		if p.From != p.To {
			moves = append(moves, entity.CommittedMove{ID: p.ID, From: p.From, To: p.To})
		}
	}
	return moves, nil
}

// States 产生全部车辆状态的快照（按ID升序）
func (m *Manager) States() []entity.VehicleState {
	return lo.Map(m.vehicles, func(v *Vehicle, _ int) entity.VehicleState {
		return v.State()
	})
}
