// 随机数引擎，包装了golang.org/x/exp/rand，提供模拟所需的常用随机数生成方法
package randengine

import (
	"flag"
	"log"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数序列
)

// Engine 随机数引擎
// 说明：整个模拟只持有一个引擎实例，由调度器按固定顺序（车辆ID升序）消费，
// 固定种子下逐tick轨迹完全可复现；模拟为单线程锁步模型，不提供加锁版本
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 参数：seed-随机数种子（实际种子为seed+偏移量flag）
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// PTrue 以指定概率返回true
// 参数：p-返回true的概率（[0,1]）
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// DiscreteDistribution 按给定权重分布生成随机下标
// 参数：weight-权重数组
// 返回：[0, len(weight))内的随机下标
// 算法说明：累积分布函数法；权重异常时panic
func (e *Engine) DiscreteDistribution(weight []float64) int32 {
	random := .0
	for _, w := range weight {
		random += w
	}
	random *= e.Float64()
	sum := 0.
	for i, w := range weight {
		sum += w
		if sum > random {
			return int32(i)
		}
	}
	log.Panicf("randengine: DiscreteDistribution: sum: %f random: %f", sum, random)
	return -1
}

// Sample 从[0,n)中不重复地抽取k个下标
// 参数：n-总数，k-抽取数（k<=n）
// 返回：抽取结果，顺序随机
// 说明：用于初始车辆投放，保证任意两辆车不落在同一元胞
func (e *Engine) Sample(n, k int) []int {
	if k > n {
		log.Panicf("randengine: Sample: k %d > n %d", k, n)
	}
	return e.Perm(n)[:k]
}
