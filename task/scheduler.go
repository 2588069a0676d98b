package task

import (
	"flag"

	"github.com/traffic-complexity/gridca-sim/entity/junction"
	"github.com/traffic-complexity/gridca-sim/metrics"
	"github.com/traffic-complexity/gridca-sim/utils/config"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// step 推进一个tick
// 功能：执行提案→裁决→提交→采样的完整tick事务
// 算法说明：
// 1. 准备阶段：所有车辆把运行时状态复制为快照
// 2. 提案阶段：按ID顺序读取快照状态产生期望移动
// 3. 裁决阶段：对全部提案做一次冲突仲裁
// 4. 提交阶段：先写车辆状态再写路网占据，整个tick原子生效
// 5. 采样阶段：时钟推进后对提交状态做一次只读采样
//
// 说明：提案与裁决期间产生的InvariantViolation直接向上返回并中止运行
func (ctx *Context) step() error {
	if ctx.mode == config.ModeNaSch {
		ctx.ring.Update()
		ctx.clock.Step++
		ctx.collector.CollectRing(metrics.SampleRing(ctx.clock.Step, ctx.ring.Length(), ctx.ring.Speeds()))
		return nil
	}

	ctx.vehicleManager.Prepare()
	proposals := ctx.vehicleManager.ProposeAll()
	result := junction.Resolve(ctx.grid, proposals, ctx.runtimeConfig.Rotary)
	moves, err := ctx.vehicleManager.Commit(ctx.clock.Step, proposals, result.Granted)
	if err != nil {
		return err
	}
	if err := ctx.grid.CommitMoves(moves, ctx.clock.Step); err != nil {
		return err
	}
	ctx.clock.Step++
	ctx.collector.Collect(*ctx.Snapshot())
	return nil
}

// Run 运行
// 功能：从起始步推进到结束步，每tick产出一条指标记录
// 返回：第一个致命错误；正常走完模拟区间时为nil
func (ctx *Context) Run() error {
	for !ctx.clock.Done() {
		if (ctx.clock.Step-ctx.clock.START_STEP)%int32(*heartBeatInterval) == 0 {
			log.Infof("STEP: %v", ctx.clock)
		}
		if err := ctx.step(); err != nil {
			log.Errorf("simulation aborted at %v: %v", ctx.clock, err)
			return err
		}
	}
	log.Infof("engine complete: %d steps", ctx.clock.Total())
	return nil
}
