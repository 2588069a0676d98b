package clock

import (
	"fmt"

	"github.com/traffic-complexity/gridca-sim/utils/config"
)

// Clock 仿真时钟管理器
// 功能：管理仿真系统的离散时间推进
// 说明：维护当前tick与模拟区间[START, END)，tick为无量纲的同步更新步
type Clock struct {
	START_STEP int32 // 起始步
	END_STEP   int32 // 结束步，模拟区间[START, END)

	Step int32 // 当前步数
}

// New 根据配置创建新的时钟实例
// 参数：stepConfig-控制步配置
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start + stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置时钟状态到起始步
func (c *Clock) Init() {
	c.Step = c.START_STEP
}

// Done 判断模拟区间是否已经走完
func (c *Clock) Done() bool {
	return c.Step >= c.END_STEP
}

// Total 获取模拟总步数
func (c *Clock) Total() int32 {
	return c.END_STEP - c.START_STEP
}

// String 获取时钟的字符串表示
func (c *Clock) String() string {
	return fmt.Sprintf("step %d/[%d,%d)", c.Step, c.START_STEP, c.END_STEP)
}
