// Package metrics 对提交后的仿真状态做只读采样。
//
// 每个tick产出一条指标记录（密度、流量、平均速度、排队长度、拥堵团簇），
// 采样不改变任何仿真状态，对同一状态重复采样结果相同。
package metrics

import (
	"fmt"
	"io"

	"github.com/montanaflynn/stats"

	"github.com/traffic-complexity/gridca-sim/entity"
)

// Record 单个tick的指标记录
type Record struct {
	Step            int32   // tick编号
	TotalCars       int32   // 车辆总数
	MovingCars      int32   // 本tick速度大于0的车辆数
	RoadDensity     float64 // 道路元胞上的车辆数 / 可行驶元胞总数
	RotaryDensity   float64 // 环岛元胞上的车辆数 / 可行驶元胞总数
	GlobalDensity   float64 // 车辆总数 / 可行驶元胞总数
	AverageVelocity float64 // 移动车辆占比
	TrafficFlow     float64 // J = ρ·⟨v⟩
	QueueLength     int32   // 停驶车辆数
	MeanSpeed       float64 // 速度算术平均（格/tick）
	JamClusters     int32   // 停驶车辆构成的连通团簇数
	LargestJam      int32   // 最大团簇的元胞数
}

func (r Record) String() string {
	return fmt.Sprintf(
		"step=%d cars=%d moving=%d density=%.4f flow=%.4f v_mean=%.4f queue=%d jams=%d/%d",
		r.Step, r.TotalCars, r.MovingCars, r.GlobalDensity, r.TrafficFlow,
		r.MeanSpeed, r.QueueLength, r.JamClusters, r.LargestJam)
}

// WaitSummary 车辆当前等待时长的统计摘要
type WaitSummary struct {
	Mean float64 // 平均等待tick数
	Max  float64 // 最长等待tick数
	P95  float64 // 95分位等待tick数
}

// Collector 指标收集器
// 功能：逐tick采样并累积历史记录与每辆车的连续等待时长
type Collector struct {
	drivableCells int32 // 可行驶元胞总数（道路+环岛）

	history []Record
	waits   map[int32]int32 // 车辆ID -> 连续未移动tick数
}

// NewCollector 创建指标收集器
func NewCollector(drivableCells int32) *Collector {
	return &Collector{
		drivableCells: drivableCells,
		waits:         make(map[int32]int32),
	}
}

// Sample 对路网快照做一次纯采样
// 说明：不改写收集器状态，对同一快照幂等
func (c *Collector) Sample(snap entity.GridSnapshot) Record {
	r := Record{Step: snap.Step, TotalCars: int32(len(snap.Vehicles))}
	var onRoad, onRotary, totalSpeed int32
	for _, v := range snap.Vehicles {
		if v.InRotary {
			onRotary++
		} else {
			onRoad++
		}
		totalSpeed += v.Speed
		if v.Speed > 0 {
			r.MovingCars++
		}
	}
	if c.drivableCells > 0 {
		r.RoadDensity = float64(onRoad) / float64(c.drivableCells)
		r.RotaryDensity = float64(onRotary) / float64(c.drivableCells)
		r.GlobalDensity = float64(r.TotalCars) / float64(c.drivableCells)
	}
	if r.TotalCars > 0 {
		r.AverageVelocity = float64(r.MovingCars) / float64(r.TotalCars)
		r.MeanSpeed = float64(totalSpeed) / float64(r.TotalCars)
	}
	r.TrafficFlow = r.GlobalDensity * r.AverageVelocity
	r.QueueLength = r.TotalCars - r.MovingCars
	r.JamClusters, r.LargestJam = jamClusters(snap)
	return r
}

// Collect 采样并写入历史，同时更新每辆车的等待时长
func (c *Collector) Collect(snap entity.GridSnapshot) Record {
	r := c.Sample(snap)
	for _, v := range snap.Vehicles {
		if v.Speed > 0 {
			c.waits[v.ID] = 0
		} else {
			c.waits[v.ID]++
		}
	}
	c.history = append(c.history, r)
	return r
}

// CollectRing 将一维模型的一条采样记录写入历史
func (c *Collector) CollectRing(r Record) {
	c.history = append(c.history, r)
}

// History 获取全部历史记录
func (c *Collector) History() []Record {
	return c.history
}

// Waits 车辆当前等待时长的统计摘要
func (c *Collector) Waits() WaitSummary {
	if len(c.waits) == 0 {
		return WaitSummary{}
	}
	data := make(stats.Float64Data, 0, len(c.waits))
	for _, w := range c.waits {
		data = append(data, float64(w))
	}
	mean, err := data.Mean()
	if err != nil {
		log.Errorf("metrics: wait mean: %v", err)
	}
	max, err := data.Max()
	if err != nil {
		log.Errorf("metrics: wait max: %v", err)
	}
	p95, err := data.Percentile(95)
	if err != nil {
		// 样本过少时以最大值代替分位数
		p95 = max
	}
	return WaitSummary{Mean: mean, Max: max, P95: p95}
}

// WriteResults 将历史记录逐行写出
func (c *Collector) WriteResults(w io.Writer) error {
	for _, r := range c.history {
		if _, err := fmt.Fprintln(w, r); err != nil {
			return err
		}
	}
	return nil
}

// SampleRing 对一维环形道路做一次纯采样
// 参数：
//   - step: tick编号
//   - length: 道路长度
//   - speeds: 全部车辆的速度
func SampleRing(step int32, length int32, speeds []int32) Record {
	r := Record{Step: step, TotalCars: int32(len(speeds))}
	var totalSpeed int32
	for _, s := range speeds {
		totalSpeed += s
		if s > 0 {
			r.MovingCars++
		}
	}
	if length > 0 {
		r.GlobalDensity = float64(r.TotalCars) / float64(length)
		r.RoadDensity = r.GlobalDensity
	}
	if r.TotalCars > 0 {
		r.AverageVelocity = float64(r.MovingCars) / float64(r.TotalCars)
		r.MeanSpeed = float64(totalSpeed) / float64(r.TotalCars)
	}
	r.TrafficFlow = r.GlobalDensity * r.AverageVelocity
	r.QueueLength = r.TotalCars - r.MovingCars
	return r
}
