package junction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/traffic-complexity/gridca-sim/entity"
	"github.com/traffic-complexity/gridca-sim/entity/grid"
)

func newTestGrid(t *testing.T) *grid.Grid {
	g, err := grid.New(15, 10, 2, 2)
	assert.Nil(t, err)
	return g
}

func TestSingleClaimantGranted(t *testing.T) {
	g := newTestGrid(t)
	a := entity.Position{Row: 6, Col: 0}
	assert.Nil(t, g.PlaceVehicle(0, a))
	res := Resolve(g, []entity.ProposedMove{
		{ID: 0, From: a, To: entity.Position{Row: 6, Col: 1}, Speed: 1, Direction: entity.DirectionEast},
	}, entity.RotaryYield)
	assert.True(t, res.Granted[0])
	assert.Empty(t, res.Denied)
}

// 环岛内的车对进入环岛的车有路权
func TestRotaryPriority(t *testing.T) {
	g := newTestGrid(t)
	circulating := entity.Position{Row: 6, Col: 6}
	feeder := entity.Position{Row: 6, Col: 4}
	target := entity.Position{Row: 6, Col: 5}
	assert.Nil(t, g.PlaceVehicle(0, circulating))
	assert.Nil(t, g.PlaceVehicle(1, feeder))

	proposals := []entity.ProposedMove{
		{ID: 0, From: circulating, To: target, Speed: 1, Direction: entity.DirectionEast, InRotary: true, FromRotary: true},
		{ID: 1, From: feeder, To: target, Speed: 1, Direction: entity.DirectionEast, InRotary: true},
	}
	for _, method := range []entity.RotaryMethod{entity.RotaryYield, entity.RotaryFree} {
		res := Resolve(g, proposals, method)
		assert.True(t, res.Granted[0], "circulating vehicle proceeds")
		assert.False(t, res.Granted[1], "feeder waits")
		assert.Equal(t, []int32{1}, res.Denied)
	}
}

// 让行规则下被争用的环岛元胞不放行任何外部车辆
func TestRotaryContestedEntry(t *testing.T) {
	g := newTestGrid(t)
	target := entity.Position{Row: 6, Col: 5}
	a := entity.Position{Row: 6, Col: 4}
	b := entity.Position{Row: 7, Col: 5}
	assert.Nil(t, g.PlaceVehicle(0, a))
	assert.Nil(t, g.PlaceVehicle(1, b))

	proposals := []entity.ProposedMove{
		{ID: 0, From: a, To: target, Speed: 1, Direction: entity.DirectionEast, InRotary: true},
		{ID: 1, From: b, To: target, Speed: 1, Direction: entity.DirectionNorth, InRotary: true},
	}
	res := Resolve(g, proposals, entity.RotaryYield)
	assert.False(t, res.Granted[0])
	assert.False(t, res.Granted[1])

	// 自由模式退回普通的ID仲裁
	res = Resolve(g, proposals, entity.RotaryFree)
	assert.True(t, res.Granted[0])
	assert.False(t, res.Granted[1])
}

// 普通道路元胞的争用按车辆ID稳定仲裁
func TestTieBreakByID(t *testing.T) {
	g := newTestGrid(t)
	a := entity.Position{Row: 6, Col: 2}
	b := entity.Position{Row: 6, Col: 1}
	target := entity.Position{Row: 6, Col: 3}
	assert.Nil(t, g.PlaceVehicle(3, a))
	assert.Nil(t, g.PlaceVehicle(7, b))

	proposals := []entity.ProposedMove{
		{ID: 7, From: b, To: target, Speed: 2, Direction: entity.DirectionEast},
		{ID: 3, From: a, To: target, Speed: 1, Direction: entity.DirectionEast},
	}
	res := Resolve(g, proposals, entity.RotaryYield)
	assert.True(t, res.Granted[3])
	assert.False(t, res.Granted[7])
}

// 目标元胞未被腾出时，否决沿占据链逐级传播
func TestDenialCascade(t *testing.T) {
	g := newTestGrid(t)
	x := entity.Position{Row: 6, Col: 3}
	y := entity.Position{Row: 6, Col: 2}
	z := entity.Position{Row: 6, Col: 1}
	assert.Nil(t, g.PlaceVehicle(0, x))
	assert.Nil(t, g.PlaceVehicle(1, y))
	assert.Nil(t, g.PlaceVehicle(2, z))

	proposals := []entity.ProposedMove{
		{ID: 0, From: x, To: x, Speed: 0, Direction: entity.DirectionEast},
		{ID: 1, From: y, To: x, Speed: 1, Direction: entity.DirectionEast},
		{ID: 2, From: z, To: y, Speed: 1, Direction: entity.DirectionEast},
	}
	res := Resolve(g, proposals, entity.RotaryYield)
	assert.True(t, res.Granted[0])
	assert.False(t, res.Granted[1])
	assert.False(t, res.Granted[2])
}

// 前车腾出元胞时后车可以跟进
func TestVacatedCellGranted(t *testing.T) {
	g := newTestGrid(t)
	x := entity.Position{Row: 6, Col: 3}
	y := entity.Position{Row: 6, Col: 2}
	assert.Nil(t, g.PlaceVehicle(0, x))
	assert.Nil(t, g.PlaceVehicle(1, y))

	proposals := []entity.ProposedMove{
		{ID: 0, From: x, To: entity.Position{Row: 6, Col: 4}, Speed: 1, Direction: entity.DirectionEast},
		{ID: 1, From: y, To: x, Speed: 1, Direction: entity.DirectionEast},
	}
	res := Resolve(g, proposals, entity.RotaryYield)
	assert.True(t, res.Granted[0])
	assert.True(t, res.Granted[1])
	assert.Empty(t, res.Denied)
}
