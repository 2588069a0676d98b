package nasch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/traffic-complexity/gridca-sim/entity"
	"github.com/traffic-complexity/gridca-sim/utils/config"
	"github.com/traffic-complexity/gridca-sim/utils/container"
	"github.com/traffic-complexity/gridca-sim/utils/randengine"
)

func ringConfig(length, count, maxSpeed int32, p float64) *config.RuntimeConfig {
	return &config.RuntimeConfig{All: config.Config{
		Road:    config.Road{Length: length, MaxSpeed: maxSpeed},
		Vehicle: config.Vehicle{Count: count, SlowdownP: p},
	}}
}

// newRingAt 在指定位置直接构造模型，用于确定性的规则测试
func newRingAt(length, maxSpeed int32, positions []int32) *Model {
	m := &Model{
		length:   length,
		count:    int32(len(positions)),
		maxSpeed: maxSpeed,
		engine:   randengine.New(1),
		cars:     &container.List[*car]{ID: "ring"},
	}
	for i, pos := range positions {
		m.cars.PushBack(&container.ListNode[*car]{S: pos, Value: &car{id: int32(i)}})
	}
	return m
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name string
		rc   *config.RuntimeConfig
	}{
		{"too many cars", ringConfig(5, 6, 3, 0)},
		{"no cars", ringConfig(5, 0, 3, 0)},
		{"max speed too low", ringConfig(5, 2, 0, 0)},
		{"max speed too high", ringConfig(5, 2, 6, 0)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(c.rc, randengine.New(1))
			var ce *entity.ConfigError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

// 单车无随机慢化，每tick加速1直到限速后保持
func TestFreeFlowAcceleration(t *testing.T) {
	m, err := New(ringConfig(100, 1, 5, 0), randengine.New(42))
	assert.Nil(t, err)
	for tick := int32(1); tick <= 8; tick++ {
		m.Update()
		want := tick
		if want > 5 {
			want = 5
		}
		assert.Equal(t, want, m.Speeds()[0], "tick %d", tick)
	}
}

// 前车近在咫尺时，后车速度被安全距离压住，不发生重叠
func TestSafetyDistance(t *testing.T) {
	m := newRingAt(10, 2, []int32{0, 2})
	m.Update()
	occupied := m.Occupied()
	speeds := m.Speeds()
	assert.Equal(t, []int32{1, 3}, occupied)
	assert.Equal(t, int32(1), speeds[0], "trailing car capped by gap")
	assert.Equal(t, int32(1), speeds[1])
	// 持续跟车：后车始终被1格间距限制
	m.Update()
	assert.Equal(t, int32(1), m.Speeds()[0])
}

// 完全占满的道路上没有任何移动
func TestFullyJammed(t *testing.T) {
	m, err := New(ringConfig(6, 6, 5, 0), randengine.New(7))
	assert.Nil(t, err)
	before := m.Occupied()
	m.Update()
	assert.Equal(t, before, m.Occupied())
	assert.Equal(t, int32(0), m.Flow())
	assert.Equal(t, int32(0), m.TotalSpeed())
}

// 元胞至多一辆车，且移动后链表保持升序
func TestNoOverlap(t *testing.T) {
	m, err := New(ringConfig(30, 12, 5, 0.3), randengine.New(3))
	assert.Nil(t, err)
	for tick := 0; tick < 200; tick++ {
		m.Update()
		occupied := m.Occupied()
		assert.Equal(t, 12, len(occupied))
		for i := 1; i < len(occupied); i++ {
			assert.Less(t, occupied[i-1], occupied[i], "tick %d", tick)
		}
	}
}

// 相同种子产生逐tick一致的轨迹
func TestDeterminism(t *testing.T) {
	a, err := New(ringConfig(50, 20, 5, 0.3), randengine.New(99))
	assert.Nil(t, err)
	b, err := New(ringConfig(50, 20, 5, 0.3), randengine.New(99))
	assert.Nil(t, err)
	for tick := 0; tick < 100; tick++ {
		a.Update()
		b.Update()
		assert.Equal(t, a.Occupied(), b.Occupied(), "tick %d", tick)
		assert.Equal(t, a.Speeds(), b.Speeds(), "tick %d", tick)
	}
}

func TestVisualize(t *testing.T) {
	m := newRingAt(3, 2, []int32{1})
	assert.Equal(t, "  ██  ", m.Visualize())
}
