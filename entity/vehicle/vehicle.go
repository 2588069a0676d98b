package vehicle

import (
	"fmt"

	"github.com/traffic-complexity/gridca-sim/entity"
)

// runtime 车辆运行时基本数据，记录位置、朝向、速度与环岛状态
type runtime struct {
	Pos      entity.Position  // 当前元胞
	Dir      entity.Direction // 朝向
	Speed    int32            // 当前速度（格/tick）
	InRotary bool             // 是否处于环岛内
}

// Vehicle 车辆实体
// 功能：持有单辆车的状态与NaSch决策逻辑
// 说明：运行时数据只在调度器的提交阶段改写；提案阶段只读快照，
// 保证同一tick内所有车辆看到一致的全局状态
type Vehicle struct {
	id    int32
	obeys bool // 是否遵守限速，超速车辆的个人速度上限为限速+1

	runtime  runtime // 运行时数据
	snapshot runtime // 快照（tick开始时的运行时数据副本）
}

func newVehicle(id int32, pos entity.Position, dir entity.Direction, obeys bool) *Vehicle {
	r := runtime{Pos: pos, Dir: dir, Speed: 0}
	return &Vehicle{id: id, obeys: obeys, runtime: r, snapshot: r}
}

// ID 获取车辆ID
func (v *Vehicle) ID() int32 {
	return v.id
}

// Pos 获取车辆当前元胞
func (v *Vehicle) Pos() entity.Position {
	return v.runtime.Pos
}

// Direction 获取车辆朝向
func (v *Vehicle) Direction() entity.Direction {
	return v.runtime.Dir
}

// V 获取车辆当前速度
func (v *Vehicle) V() int32 {
	return v.runtime.Speed
}

// InRotary 判断车辆是否处于环岛内
func (v *Vehicle) InRotary() bool {
	return v.runtime.InRotary
}

// ObeysLimit 判断车辆是否遵守限速
func (v *Vehicle) ObeysLimit() bool {
	return v.obeys
}

// cap 车辆的个人速度上限
func (v *Vehicle) cap(maxSpeed int32) int32 {
	if v.obeys {
		return maxSpeed
	}
	return maxSpeed + 1
}

// prepare 准备阶段：将运行时数据复制到快照
func (v *Vehicle) prepare() {
	v.snapshot = v.runtime
}

// State 产生车辆状态的只读快照（基于运行时数据）
func (v *Vehicle) State() entity.VehicleState {
	return entity.VehicleState{
		ID:        v.id,
		Pos:       v.runtime.Pos,
		Direction: v.runtime.Dir,
		Speed:     v.runtime.Speed,
		InRotary:  v.runtime.InRotary,
	}
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle{ID=%d, pos=%v, dir=%v, v=%d, rotary=%v}",
		v.id, v.runtime.Pos, v.runtime.Dir, v.runtime.Speed, v.runtime.InRotary)
}
