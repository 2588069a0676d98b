package entity

import "fmt"

// ConfigError 配置错误
// 说明：构造阶段的参数校验失败，启动时立即暴露，不重试
type ConfigError struct {
	Field  string // 出错的配置项
	Reason string // 原因
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Reason)
}

// NewConfigErrorf 创建配置错误
func NewConfigErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvariantViolation 内部不变量被破坏
// 说明：负间距、提交后重复占据、速度越界等，属于逻辑缺陷，
// 致命错误，携带tick与实体ID便于定位，绝不静默恢复
type InvariantViolation struct {
	Step      int32  // 发生时的tick
	VehicleID int32  // 相关车辆ID，无车辆时为NoVehicle
	Reason    string // 原因
}

func (e *InvariantViolation) Error() string {
	if e.VehicleID == NoVehicle {
		return fmt.Sprintf("invariant violation at step %d: %s", e.Step, e.Reason)
	}
	return fmt.Sprintf("invariant violation at step %d (vehicle %d): %s", e.Step, e.VehicleID, e.Reason)
}

// NewInvariantViolationf 创建不变量错误
func NewInvariantViolationf(step, vehicleID int32, format string, args ...any) *InvariantViolation {
	return &InvariantViolation{Step: step, VehicleID: vehicleID, Reason: fmt.Sprintf(format, args...)}
}
