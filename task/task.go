package task

import (
	"github.com/traffic-complexity/gridca-sim/clock"
	"github.com/traffic-complexity/gridca-sim/entity"
	"github.com/traffic-complexity/gridca-sim/entity/grid"
	"github.com/traffic-complexity/gridca-sim/entity/vehicle"
	"github.com/traffic-complexity/gridca-sim/metrics"
	"github.com/traffic-complexity/gridca-sim/nasch"
	"github.com/traffic-complexity/gridca-sim/utils/config"
	"github.com/traffic-complexity/gridca-sim/utils/randengine"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态，替代全局变量
// 说明：管理仿真系统的所有组件，包括时钟、路网、车辆管理器、
// 随机引擎与指标收集器；所有组件在单线程内以锁步方式推进
type Context struct {
	// 模拟模式（grid或nasch）
	mode string

	// 时钟
	clock *clock.Clock
	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
	// 随机引擎，全局唯一，按固定顺序消耗保证可复现
	engine *randengine.Engine

	// 二维路网（仅grid模式）
	grid *grid.Grid
	// 车辆管理器（仅grid模式）
	vehicleManager *vehicle.Manager
	// 一维NaSch模型（仅nasch模式）
	ring *nasch.Model

	// 指标收集器
	collector *metrics.Collector
}

// NewContext 创建新的仿真任务上下文
// 功能：校验配置并初始化时钟和随机引擎
// 参数：c-配置对象
// 返回：Context实例；配置非法时返回ConfigError
func NewContext(c config.Config) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		mode:          c.Control.Mode,
		runtimeConfig: rc,
		engine:        randengine.New(c.Random.Seed),
	}
	ctx.clock = clock.New(c.Control.Step)
	return ctx, nil
}

// Init 初始化仿真实体
// 算法说明：
//
//	grid模式：构建路网拓扑，在道路元胞上随机投放车辆；
//	nasch模式：构建一维环形道路模型。
//	指标收集器以可行驶元胞总数为密度基数。
func (ctx *Context) Init() error {
	ctx.clock.Init()
	rc := ctx.runtimeConfig

	switch ctx.mode {
	case config.ModeGrid:
		g, err := grid.New(rc.All.Grid.Size, rc.All.Grid.BlockSize, rc.LaneWidth(), rc.All.Grid.MaxSpeed)
		if err != nil {
			return err
		}
		ctx.grid = g
		ctx.vehicleManager = &vehicle.Manager{}
		if err := ctx.vehicleManager.Init(g, ctx.engine, rc); err != nil {
			return err
		}
		ctx.collector = metrics.NewCollector(g.RoadCellCount() + g.RotaryCellCount())
		log.Infof("Grid: %dx%d", g.Size(), g.Size())
		log.Infof("Road cell: %v", g.RoadCellCount())
		log.Infof("Rotary cell: %v", g.RotaryCellCount())
		log.Infof("Vehicle: %v", ctx.vehicleManager.Len())
	case config.ModeNaSch:
		m, err := nasch.New(rc, ctx.engine)
		if err != nil {
			return err
		}
		ctx.ring = m
		ctx.collector = metrics.NewCollector(m.Length())
		log.Infof("Ring: %v", m.Length())
		log.Infof("Vehicle: %v", m.Count())
	default:
		return entity.NewConfigErrorf("control.mode", "unknown mode %q", ctx.mode)
	}
	return nil
}

// Clock 获取时钟
func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

// RuntimeConfig 获取运行时配置
func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Grid 获取二维路网，nasch模式下为nil
func (ctx *Context) Grid() *grid.Grid {
	return ctx.grid
}

// VehicleManager 获取车辆管理器，nasch模式下为nil
func (ctx *Context) VehicleManager() *vehicle.Manager {
	return ctx.vehicleManager
}

// Ring 获取一维NaSch模型，grid模式下为nil
func (ctx *Context) Ring() *nasch.Model {
	return ctx.ring
}

// Collector 获取指标收集器
func (ctx *Context) Collector() *metrics.Collector {
	return ctx.collector
}

// Snapshot 产生当前提交状态的只读快照（仅grid模式）
func (ctx *Context) Snapshot() *entity.GridSnapshot {
	return ctx.grid.Snapshot(ctx.clock.Step, ctx.vehicleManager.States())
}

// VehicleStates 按ID列表获取车辆状态，ids为空时返回全部
// 返回：命中的车辆状态与查找失败的ID列表
func (ctx *Context) VehicleStates(ids []int32) ([]entity.VehicleState, []int32) {
	vehicles, failed := ctx.vehicleManager.Find(ids)
	states := make([]entity.VehicleState, 0, len(vehicles))
	for _, v := range vehicles {
		states = append(states, v.State())
	}
	return states, failed
}
