package config

import (
	"github.com/traffic-complexity/gridca-sim/entity"
)

// NaSch模型允许的最大限速，超过后离散模型失真
const maxNaSchSpeed = 5

// RuntimeConfig 运行时配置
// 功能：存储配置校验后的运行时信息，包括解析完成的环岛策略
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置

	Rotary entity.RotaryMethod // 解析后的环岛策略
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：校验配置并转换为运行时可用的配置对象
// 参数：config-原始配置对象
// 返回：运行时配置指针，配置非法时返回ConfigError
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	if err := Validate(config); err != nil {
		return nil, err
	}
	rc := &RuntimeConfig{
		All: config,
		C:   config.Control,
	}
	rc.Rotary, _ = ParseRotaryMethod(config.Grid.RotaryMethod)
	return rc, nil
}

// ParseRotaryMethod 解析环岛策略配置项
// 说明：空字符串按默认的让行策略处理
func ParseRotaryMethod(s string) (entity.RotaryMethod, error) {
	switch s {
	case "", "yield":
		return entity.RotaryYield, nil
	case "free":
		return entity.RotaryFree, nil
	}
	return entity.RotaryYield, entity.NewConfigErrorf("grid.rotary_method", "unknown method %q (expect yield or free)", s)
}

// Validate 校验配置
// 功能：在任何tick运行前做一次性范围检查，非法配置立即失败
// 返回：第一个发现的ConfigError，全部合法时为nil
func Validate(c Config) error {
	if c.Control.Step.Start < 0 {
		return entity.NewConfigErrorf("control.step.start", "must be non-negative, got %d", c.Control.Step.Start)
	}
	if c.Control.Step.Total <= 0 {
		return entity.NewConfigErrorf("control.step.total", "must be positive, got %d", c.Control.Step.Total)
	}
	if c.Vehicle.Count < 1 {
		return entity.NewConfigErrorf("vehicle.count", "must be at least 1, got %d", c.Vehicle.Count)
	}
	if c.Vehicle.ObeyRatio < 0 || c.Vehicle.ObeyRatio > 1 {
		return entity.NewConfigErrorf("vehicle.obey_ratio", "must be in [0,1], got %v", c.Vehicle.ObeyRatio)
	}
	if c.Vehicle.SlowdownP < 0 || c.Vehicle.SlowdownP > 1 {
		return entity.NewConfigErrorf("vehicle.slowdown_p", "must be in [0,1], got %v", c.Vehicle.SlowdownP)
	}
	switch c.Control.Mode {
	case ModeGrid:
		return validateGrid(c)
	case ModeNaSch:
		return validateRoad(c)
	}
	return entity.NewConfigErrorf("control.mode", "unknown mode %q (expect %s or %s)", c.Control.Mode, ModeGrid, ModeNaSch)
}

func validateGrid(c Config) error {
	g := c.Grid
	if g.Size <= 0 {
		return entity.NewConfigErrorf("grid.size", "must be positive, got %d", g.Size)
	}
	if g.BlockSize <= 0 {
		return entity.NewConfigErrorf("grid.block_size", "must be positive, got %d", g.BlockSize)
	}
	laneWidth := g.LaneWidth
	if laneWidth == 0 {
		laneWidth = 2
	}
	if laneWidth < 2 || laneWidth%2 != 0 {
		return entity.NewConfigErrorf("grid.lane_width", "must be a positive even number, got %d", g.LaneWidth)
	}
	if laneWidth > g.BlockSize {
		return entity.NewConfigErrorf("grid.lane_width", "lane width %d cannot tile blocks of size %d", laneWidth, g.BlockSize)
	}
	if g.Size < g.BlockSize/2+laneWidth {
		return entity.NewConfigErrorf("grid.size", "size %d leaves no room for a road (block_size=%d, lane_width=%d)", g.Size, g.BlockSize, laneWidth)
	}
	if g.MaxSpeed < 1 {
		return entity.NewConfigErrorf("grid.max_speed", "must be at least 1, got %d", g.MaxSpeed)
	}
	if _, err := ParseRotaryMethod(g.RotaryMethod); err != nil {
		return err
	}
	return nil
}

func validateRoad(c Config) error {
	r := c.Road
	if r.Length <= 0 {
		return entity.NewConfigErrorf("road.length", "must be positive, got %d", r.Length)
	}
	if c.Vehicle.Count > r.Length {
		return entity.NewConfigErrorf("vehicle.count", "number of cars %d cannot be greater than the length of the road %d", c.Vehicle.Count, r.Length)
	}
	if r.MaxSpeed < 1 {
		return entity.NewConfigErrorf("road.max_speed", "must be at least 1, got %d", r.MaxSpeed)
	}
	if r.MaxSpeed > maxNaSchSpeed {
		return entity.NewConfigErrorf("road.max_speed", "cannot be greater than %d, got %d", maxNaSchSpeed, r.MaxSpeed)
	}
	return nil
}

// LaneWidth 获取带默认值的道路宽度
func (rc *RuntimeConfig) LaneWidth() int32 {
	if rc.All.Grid.LaneWidth == 0 {
		return 2
	}
	return rc.All.Grid.LaneWidth
}
