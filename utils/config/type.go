package config

// Mode 模拟模式
const (
	ModeGrid  = "grid"  // 二维曼哈顿路网模拟
	ModeNaSch = "nasch" // 一维Nagel-Schreckenberg环形道路模拟
)

// ControlStep 指定模拟时间范围的配置项
type ControlStep struct {
	Start int32 `yaml:"start"` // 开始步数
	Total int32 `yaml:"total"` // 总步数
}

// Control 模拟器控制配置
type Control struct {
	Step ControlStep `yaml:"step"`
	Mode string      `yaml:"mode"` // 模拟模式（grid/nasch）
}

// Grid 二维路网配置
type Grid struct {
	Size         int32  `yaml:"size"`                 // 栅格边长（NxN）
	BlockSize    int32  `yaml:"block_size"`           // 街区尺寸（道路间隔）
	LaneWidth    int32  `yaml:"lane_width,omitempty"` // 道路宽度（双向各半），默认2
	RotaryMethod string `yaml:"rotary_method"`        // 环岛策略（yield/free）
	MaxSpeed     int32  `yaml:"max_speed"`            // 道路限速（格/tick）
}

// Road 一维环形道路配置
type Road struct {
	Length   int32 `yaml:"length"`    // 道路长度（元胞数）
	MaxSpeed int32 `yaml:"max_speed"` // 最大速度（格/tick）
}

// Vehicle 车辆配置
type Vehicle struct {
	Count     int32   `yaml:"count"`      // 车辆数
	ObeyRatio float64 `yaml:"obey_ratio"` // 遵守限速的车辆比例（[0,1]）
	SlowdownP float64 `yaml:"slowdown_p"` // NaSch随机慢化概率p（[0,1]）
}

// Random 随机数配置
type Random struct {
	Seed uint64 `yaml:"seed"` // 随机种子，固定种子保证逐tick状态可复现
}

// Config YAML配置文件的根结构
type Config struct {
	Control Control `yaml:"control"` // 模拟过程控制
	Grid    Grid    `yaml:"grid"`    // 二维路网
	Road    Road    `yaml:"road"`    // 一维道路
	Vehicle Vehicle `yaml:"vehicle"` // 车辆
	Random  Random  `yaml:"random"`  // 随机数
}
