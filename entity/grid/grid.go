package grid

import (
	"github.com/samber/lo"
	"github.com/traffic-complexity/gridca-sim/entity"
)

// ringRef 环岛元胞在环中的定位
type ringRef struct {
	ring int32 // 所属环岛下标
	idx  int32 // 在环中的序号（顺时针）
}

// Grid 二维曼哈顿路网栅格
// 功能：持有静态拓扑（元胞类型、通行方向、环岛环）与动态占据表，
// 构造后拓扑不可变，占据表只通过CommitMoves在提交阶段变更
type Grid struct {
	size      int32 // 栅格边长
	blockSize int32 // 街区尺寸
	laneWidth int32 // 道路宽度
	maxSpeed  int32 // 道路限速

	kinds []entity.CellKind  // 元胞类型，行优先
	dirs  []entity.Direction // 道路元胞通行方向，行优先
	occ   []int32            // 占据表，空元胞为NoVehicle

	rings     [][]entity.Position      // 各环岛的环元胞（顺时针）
	ringIndex map[entity.Position]ringRef // 环岛元胞→环定位

	roadCells       []entity.Position // 所有道路元胞（不含环岛），行优先序
	rotaryCellCount int32
}

// New 根据配置构造路网拓扑
// 功能：校验尺寸参数并一次性建好道路与环岛，之后拓扑不再变化
// 参数：size-栅格边长，blockSize-街区尺寸，laneWidth-道路宽度，maxSpeed-限速
// 返回：栅格实例，参数非法时返回ConfigError
func New(size, blockSize, laneWidth, maxSpeed int32) (*Grid, error) {
	if size <= 0 {
		return nil, entity.NewConfigErrorf("grid.size", "must be positive, got %d", size)
	}
	if blockSize <= 0 {
		return nil, entity.NewConfigErrorf("grid.block_size", "must be positive, got %d", blockSize)
	}
	if laneWidth < 2 || laneWidth%2 != 0 {
		return nil, entity.NewConfigErrorf("grid.lane_width", "must be a positive even number, got %d", laneWidth)
	}
	if laneWidth > blockSize {
		return nil, entity.NewConfigErrorf("grid.lane_width", "lane width %d cannot tile blocks of size %d", laneWidth, blockSize)
	}
	if size < blockSize/2+laneWidth {
		return nil, entity.NewConfigErrorf("grid.size", "size %d leaves no room for a road (block_size=%d, lane_width=%d)", size, blockSize, laneWidth)
	}
	if maxSpeed < 1 {
		return nil, entity.NewConfigErrorf("grid.max_speed", "must be at least 1, got %d", maxSpeed)
	}

	g := &Grid{
		size:      size,
		blockSize: blockSize,
		laneWidth: laneWidth,
		maxSpeed:  maxSpeed,
		kinds:     make([]entity.CellKind, size*size),
		dirs:      make([]entity.Direction, size*size),
		occ:       make([]int32, size*size),
		ringIndex: make(map[entity.Position]ringRef),
	}
	for i := range g.occ {
		g.occ[i] = entity.NoVehicle
	}
	g.build()
	log.Debugf("grid built: size=%d road=%d rotary=%d rings=%d",
		size, len(g.roadCells), g.rotaryCellCount, len(g.rings))
	return g, nil
}

// Size 获取栅格边长
func (g *Grid) Size() int32 {
	return g.size
}

// MaxSpeed 获取道路限速
func (g *Grid) MaxSpeed() int32 {
	return g.maxSpeed
}

// Index 行列坐标转行优先线性下标
func (g *Grid) Index(p entity.Position) int32 {
	return p.Row*g.size + p.Col
}

// Wrap 周期边界处理，将任意坐标折回栅格内
func (g *Grid) Wrap(p entity.Position) entity.Position {
	return entity.Position{
		Row: (p.Row%g.size + g.size) % g.size,
		Col: (p.Col%g.size + g.size) % g.size,
	}
}

// Kind 获取元胞类型
func (g *Grid) Kind(p entity.Position) entity.CellKind {
	return g.kinds[g.Index(p)]
}

// RoadDirection 获取道路元胞的通行方向
// 说明：仅对道路元胞有意义
func (g *Grid) RoadDirection(p entity.Position) entity.Direction {
	return g.dirs[g.Index(p)]
}

// OccupantAt 查询元胞的占据车辆，空元胞返回NoVehicle
func (g *Grid) OccupantAt(p entity.Position) int32 {
	return g.occ[g.Index(p)]
}

// Next 沿方向前进一格（周期边界）
func (g *Grid) Next(p entity.Position, d entity.Direction) entity.Position {
	dr, dc := d.Delta()
	return g.Wrap(entity.Position{Row: p.Row + dr, Col: p.Col + dc})
}

// Drivable 判断元胞是否允许沿该方向行驶
// 说明：道路元胞要求通行方向一致，环岛元胞任何方向都可进入
func (g *Grid) Drivable(p entity.Position, d entity.Direction) bool {
	switch g.Kind(p) {
	case entity.CellRoad:
		return g.RoadDirection(p) == d
	case entity.CellRotary:
		return true
	}
	return false
}

// GapAhead 计算沿方向到下一辆车（或道路尽头）之间的空闲元胞数
// 参数：p-起点，d-方向，limit-最大探测距离
// 返回：空闲元胞数，上限为limit
// 说明：遇到不可通行元胞视为道路尽头；环岛元胞计入路径
func (g *Grid) GapAhead(p entity.Position, d entity.Direction, limit int32) int32 {
	q := p
	for k := int32(1); k <= limit; k++ {
		q = g.Next(q, d)
		if !g.Drivable(q, d) {
			return k - 1
		}
		if g.occ[g.Index(q)] != entity.NoVehicle {
			return k - 1
		}
	}
	return limit
}

// DistanceToRotary 沿方向到第一个环岛元胞的距离
// 参数：limit-最大探测距离
// 返回：距离（格数），探测范围内没有环岛时返回limit+1
// 说明：用于限制经过路口的单tick位移
func (g *Grid) DistanceToRotary(p entity.Position, d entity.Direction, limit int32) int32 {
	q := p
	for k := int32(1); k <= limit; k++ {
		q = g.Next(q, d)
		if g.Kind(q) == entity.CellRotary {
			return k
		}
	}
	return limit + 1
}

// Advance 沿方向前进steps格
func (g *Grid) Advance(p entity.Position, d entity.Direction, steps int32) entity.Position {
	q := p
	for k := int32(0); k < steps; k++ {
		q = g.Next(q, d)
	}
	return q
}

// RotaryNext 获取环岛内顺时针方向的下一个环元胞
// 返回：下一个环元胞；p不是环岛元胞时ok为false
func (g *Grid) RotaryNext(p entity.Position) (entity.Position, bool) {
	ref, ok := g.ringIndex[p]
	if !ok {
		return entity.Position{}, false
	}
	ring := g.rings[ref.ring]
	return ring[(ref.idx+1)%int32(len(ring))], true
}

// RotaryRingAt 获取元胞所在环岛的整环（顺时针序）
func (g *Grid) RotaryRingAt(p entity.Position) ([]entity.Position, bool) {
	ref, ok := g.ringIndex[p]
	if !ok {
		return nil, false
	}
	return g.rings[ref.ring], true
}

// Neighbors 获取环岛元胞四邻域中的道路出口元胞
// 返回：从环岛可驶出的道路元胞（该道路的通行方向背离环岛）
func (g *Grid) Neighbors(p entity.Position) []entity.Position {
	out := make([]entity.Position, 0, 4)
	for _, d := range []entity.Direction{entity.DirectionNorth, entity.DirectionEast, entity.DirectionSouth, entity.DirectionWest} {
		q := g.Next(p, d)
		if g.Kind(q) == entity.CellRoad && g.RoadDirection(q) == d {
			out = append(out, q)
		}
	}
	return out
}

// RoadCells 获取所有道路元胞（不含环岛），行优先序
func (g *Grid) RoadCells() []entity.Position {
	return g.roadCells
}

// RoadCellCount 道路元胞数（不含环岛）
func (g *Grid) RoadCellCount() int32 {
	return int32(len(g.roadCells))
}

// RotaryCellCount 环岛元胞数
func (g *Grid) RotaryCellCount() int32 {
	return g.rotaryCellCount
}

// PlaceVehicle 初始化时向元胞放置车辆
// 说明：仅用于构造期投放；元胞已被占据时返回ConfigError
func (g *Grid) PlaceVehicle(id int32, p entity.Position) error {
	i := g.Index(p)
	if g.occ[i] != entity.NoVehicle {
		return entity.NewConfigErrorf("vehicle.count", "cell %v already occupied by vehicle %d", p, g.occ[i])
	}
	g.occ[i] = id
	return nil
}

// CommitMoves 原子提交一个tick的已仲裁移动集合
// 功能：先整体清除起点占据，再整体写入终点占据，保证同tick内所有
// 移动基于同一个快照语义生效
// 参数：moves-旧位置→新位置的无冲突映射，step-当前tick（用于诊断）
// 返回：提交后出现重复占据等破坏时返回InvariantViolation
func (g *Grid) CommitMoves(moves []entity.CommittedMove, step int32) error {
	for _, m := range moves {
		i := g.Index(m.From)
		if g.occ[i] != m.ID {
			return entity.NewInvariantViolationf(step, m.ID, "commit from cell %v occupied by %d, not the mover", m.From, g.occ[i])
		}
		g.occ[i] = entity.NoVehicle
	}
	for _, m := range moves {
		i := g.Index(m.To)
		if g.occ[i] != entity.NoVehicle {
			return entity.NewInvariantViolationf(step, m.ID, "duplicate occupancy at %v: vehicle %d already there", m.To, g.occ[i])
		}
		g.occ[i] = m.ID
	}
	return nil
}

// Snapshot 产生当前占据状态的只读快照
// 参数：step-当前tick，vehicles-按ID升序的车辆状态
func (g *Grid) Snapshot(step int32, vehicles []entity.VehicleState) *entity.GridSnapshot {
	return &entity.GridSnapshot{
		Step:       step,
		Size:       g.size,
		Kinds:      lo.Map(g.kinds, func(k entity.CellKind, _ int) entity.CellKind { return k }),
		Directions: lo.Map(g.dirs, func(d entity.Direction, _ int) entity.Direction { return d }),
		Occupants:  lo.Map(g.occ, func(id int32, _ int) int32 { return id }),
		Vehicles:   vehicles,
	}
}
