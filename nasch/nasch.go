// Package nasch 实现环形单车道上的Nagel-Schreckenberg元胞自动机。
//
// 道路是长度为L的一维环形格点，每个元胞至多容纳一辆车。
// 每个tick对所有车辆同步执行四步规则：
// 加速、安全距离减速、随机慢化、移动。
package nasch

import (
	"sort"
	"strings"

	"github.com/traffic-complexity/gridca-sim/entity"
	"github.com/traffic-complexity/gridca-sim/utils/config"
	"github.com/traffic-complexity/gridca-sim/utils/container"
	"github.com/traffic-complexity/gridca-sim/utils/randengine"
)

// car 环形道路上的单辆车
type car struct {
	id    int32
	speed int32
}

// V 获取车辆速度
func (c *car) V() int32 {
	return c.speed
}

// Model 一维NaSch模型
// 说明：车辆保存在按元胞下标升序的双向链表中，
// 环形道路上车辆不会互相超越，每tick后只需修复跨越回绕点的节点
type Model struct {
	length    int32
	count     int32
	maxSpeed  int32
	slowdownP float64

	engine *randengine.Engine
	cars   *container.List[*car]

	totalSpeed int32 // 上一tick所有车辆速度之和
	flow       int32 // 上一tick发生移动的车辆数
}

// New 创建一维NaSch模型
// 返回：模型实例；参数非法时返回ConfigError
func New(rc *config.RuntimeConfig, e *randengine.Engine) (*Model, error) {
	road := rc.All.Road
	count := rc.All.Vehicle.Count
	if count > road.Length {
		return nil, entity.NewConfigErrorf("vehicle.count",
			"number of cars cannot be greater than the length of the road")
	}
	if count < 1 {
		return nil, entity.NewConfigErrorf("vehicle.count", "number of cars must be at least 1")
	}
	if road.MaxSpeed < 1 {
		return nil, entity.NewConfigErrorf("road.max_speed", "max speed must be at least 1")
	}
	if road.MaxSpeed > 5 {
		return nil, entity.NewConfigErrorf("road.max_speed", "max speed cannot be greater than 5")
	}
	m := &Model{
		length:    road.Length,
		count:     count,
		maxSpeed:  road.MaxSpeed,
		slowdownP: rc.All.Vehicle.SlowdownP,
		engine:    e,
		cars:      &container.List[*car]{ID: "ring"},
	}
	m.init()
	return m, nil
}

// init 在随机位置放置车辆，初始速度为0
// 说明：车辆ID按元胞下标升序分配，保证随机数消耗顺序确定
func (m *Model) init() {
	positions := m.engine.Sample(int(m.length), int(m.count))
	sort.Ints(positions)
	for i, pos := range positions {
		m.cars.PushBack(&container.ListNode[*car]{
			S:     int32(pos),
			Value: &car{id: int32(i)},
		})
	}
	log.Debugf("nasch: placed %d cars on ring of length %d", m.count, m.length)
}

// Update 推进一个tick
// 算法说明：
//
//	先基于tick开始时的位置为所有车辆同步计算新速度
//	（加速到上限、压到与前车的空闲格数、以概率p随机慢化），
//	再统一移动并修复链表中跨越回绕点的节点顺序。
func (m *Model) Update() {
	// 两阶段：速度全部确定后再移动，保证同步更新语义
	for node := m.cars.First(); node != nil; node = node.Next() {
		c := node.Value
		speed := c.speed
		if speed < m.maxSpeed {
			speed++
		}
		if gap := m.gapAhead(node); speed > gap {
			speed = gap
		}
		if speed > 0 && m.slowdownP > 0 && m.engine.PTrue(m.slowdownP) {
			speed--
		}
		c.speed = speed
	}

	m.totalSpeed = 0
	m.flow = 0
	for node := m.cars.First(); node != nil; node = node.Next() {
		speed := node.Value.speed
		node.S = (node.S + speed) % m.length
		m.totalSpeed += speed
		if speed > 0 {
			m.flow++
		}
	}
	m.cars.Merge(m.cars.PopUnsorted())
}

// gapAhead 与前车之间的空闲格数
// 说明：单车时前车为自身，空闲格数为length-1
func (m *Model) gapAhead(node *container.ListNode[*car]) int32 {
	next := m.cars.NextRing(node)
	return (next.S - node.S - 1 + m.length) % m.length
}

// Length 获取道路长度
func (m *Model) Length() int32 {
	return m.length
}

// Count 获取车辆数
func (m *Model) Count() int32 {
	return m.count
}

// TotalSpeed 获取上一tick所有车辆速度之和
func (m *Model) TotalSpeed() int32 {
	return m.totalSpeed
}

// Flow 获取上一tick发生移动的车辆数
func (m *Model) Flow() int32 {
	return m.flow
}

// Occupied 获取按元胞下标升序的占用位置
func (m *Model) Occupied() []int32 {
	return m.cars.Keys()
}

// Speeds 获取与Occupied同序的车辆速度
func (m *Model) Speeds() []int32 {
	speeds := make([]int32, 0, m.cars.Len())
	for _, c := range m.cars.Values() {
		speeds = append(speeds, c.speed)
	}
	return speeds
}

// Visualize 渲染道路的单行文本表示，实心块为车辆
func (m *Model) Visualize() string {
	occupied := make(map[int32]bool, m.cars.Len())
	for _, s := range m.cars.Keys() {
		occupied[s] = true
	}
	var b strings.Builder
	for i := int32(0); i < m.length; i++ {
		if occupied[i] {
			b.WriteString("██")
		} else {
			b.WriteString("  ")
		}
	}
	return b.String()
}
