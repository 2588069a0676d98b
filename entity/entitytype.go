package entity

import (
	"fmt"
	"strings"
)

// NoVehicle 表示元胞上没有车辆占据
const NoVehicle int32 = -1

// Direction 车辆朝向/道路通行方向
// 说明：北对应行号减小，东对应列号增大（行优先栅格坐标系）
type Direction int32

const (
	DirectionNorth Direction = iota // 北
	DirectionEast                   // 东
	DirectionSouth                  // 南
	DirectionWest                   // 西
)

// Delta 获取沿该方向前进一格的行列增量
func (d Direction) Delta() (dr, dc int32) {
	switch d {
	case DirectionNorth:
		return -1, 0
	case DirectionEast:
		return 0, 1
	case DirectionSouth:
		return 1, 0
	case DirectionWest:
		return 0, -1
	}
	return 0, 0
}

// IsVertical 判断是否为纵向（南北向）
func (d Direction) IsVertical() bool {
	return d == DirectionNorth || d == DirectionSouth
}

func (d Direction) String() string {
	switch d {
	case DirectionNorth:
		return "N"
	case DirectionEast:
		return "E"
	case DirectionSouth:
		return "S"
	case DirectionWest:
		return "W"
	}
	return fmt.Sprintf("Direction(%d)", int32(d))
}

// CellKind 元胞类型
type CellKind int32

const (
	CellBlock  CellKind = iota // 街区（不可通行）
	CellRoad                   // 道路元胞，带固定通行方向
	CellRotary                 // 环岛元胞，位于道路交汇处
)

func (k CellKind) String() string {
	switch k {
	case CellBlock:
		return "block"
	case CellRoad:
		return "road"
	case CellRotary:
		return "rotary"
	}
	return fmt.Sprintf("CellKind(%d)", int32(k))
}

// Position 栅格坐标（行、列）
type Position struct {
	Row int32
	Col int32
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// ProposedMove 车辆在一个tick内产生的移动提案
// 说明：提案基于本tick开始时的快照状态计算，由resolver仲裁后才能提交，
// 车辆自身不直接修改栅格状态
type ProposedMove struct {
	ID         int32     // 车辆ID
	From       Position  // 起点（快照位置）
	To         Position  // 目标元胞
	Speed      int32     // 提案速度（格/tick），To==From时为0
	Direction  Direction // 提案后的朝向
	InRotary   bool      // 提交后是否处于环岛内
	FromRotary bool      // 提案时是否已处于环岛内（环岛内车辆具有通行优先权）
}

func (m ProposedMove) String() string {
	return fmt.Sprintf("ProposedMove{ID=%d, %v->%v, v=%d, dir=%v}", m.ID, m.From, m.To, m.Speed, m.Direction)
}

// CommittedMove 仲裁后的最终移动，由调度器原子提交到栅格
type CommittedMove struct {
	ID   int32
	From Position
	To   Position
}

// VehicleState 车辆状态的只读快照，用于可视化与指标采样
type VehicleState struct {
	ID        int32
	Pos       Position
	Direction Direction
	Speed     int32
	InRotary  bool
}

// GridSnapshot 某个tick提交后的全局只读快照
// 说明：可视化与指标采集只消费快照，不触碰调度器持有的可变状态
type GridSnapshot struct {
	Step       int32
	Size       int32
	Kinds      []CellKind     // 行优先
	Directions []Direction    // 道路元胞的通行方向（其余元胞无意义）
	Occupants  []int32        // 行优先，空元胞为NoVehicle
	Vehicles   []VehicleState // 按ID升序
}

// Index 行列坐标转行优先线性下标
func (s *GridSnapshot) Index(row, col int32) int32 {
	return row*s.Size + col
}

// OccupantAt 查询快照中某元胞的占据车辆
func (s *GridSnapshot) OccupantAt(p Position) int32 {
	return s.Occupants[s.Index(p.Row, p.Col)]
}

// String 渲染文本栅格图
// 图例：'#'街区 '.'道路 'o'环岛 数字为车辆ID个位
func (s *GridSnapshot) String() string {
	var b strings.Builder
	b.Grow(int((s.Size + 1) * s.Size))
	for r := int32(0); r < s.Size; r++ {
		for c := int32(0); c < s.Size; c++ {
			i := s.Index(r, c)
			if id := s.Occupants[i]; id != NoVehicle {
				b.WriteByte(byte('0' + id%10))
				continue
			}
			switch s.Kinds[i] {
			case CellBlock:
				b.WriteByte('#')
			case CellRoad:
				b.WriteByte('.')
			case CellRotary:
				b.WriteByte('o')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RotaryMethod 环岛通行策略
// 说明：原始参数为整数选择器且语义未定义，这里显式定义为可插拔策略枚举
// 而非按数字编码猜测行为
type RotaryMethod int32

const (
	// RotaryYield 让行策略：环岛内车辆优先，入环仅允许进入快照中空闲且无争用的环岛元胞
	RotaryYield RotaryMethod = iota
	// RotaryFree 自由策略：目标环岛元胞在本tick被让出时也允许入环
	RotaryFree
)

func (m RotaryMethod) String() string {
	switch m {
	case RotaryYield:
		return "yield"
	case RotaryFree:
		return "free"
	}
	return fmt.Sprintf("RotaryMethod(%d)", int32(m))
}
