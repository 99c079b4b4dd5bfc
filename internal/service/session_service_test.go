package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"classlive/backend/config"
	"classlive/backend/internal/dto"
	"classlive/backend/internal/model"
	pkgerrors "classlive/backend/pkg/errors"
)

func setupTestSessionService(now time.Time) (SessionService, *testMocks, *fakeClock, *fakeMeetingProvider) {
	repo, m := newTestRepo()
	clock := newFakeClock(now)
	meeting := &fakeMeetingProvider{}
	cfg := &config.Config{Session: config.SessionConfig{DefaultMaxParticipants: 6}}
	svc := NewSessionService(cfg, repo, clock, meeting, zap.NewNop())
	return svc, m, clock, meeting
}

// ── Create 测试 ──

func TestSessionService_Create_Success(t *testing.T) {
	svc, _, _, _ := setupTestSessionService(testStart.Add(-24 * time.Hour))

	result, err := svc.Create(context.Background(), &dto.CreateSessionRequest{
		Title:           "一元二次方程",
		Subject:         "数学",
		Level:           "初二",
		ScheduledStart:  testStart,
		DurationMinutes: 60,
	}, "teacher-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != model.StatusPending {
		t.Errorf("期望Status=pending，实际=%s", result.Status)
	}
	if result.MaxParticipants != 6 {
		t.Errorf("期望默认MaxParticipants=6，实际=%d", result.MaxParticipants)
	}
	if result.ScheduledEnd != testStart.Add(60*time.Minute).Format(time.RFC3339) {
		t.Errorf("结束时间派生错误: %s", result.ScheduledEnd)
	}
}

func TestSessionService_Create_StartNotInFuture(t *testing.T) {
	svc, _, _, _ := setupTestSessionService(testStart)

	// 开课时间等于当前时间也算不在未来
	_, err := svc.Create(context.Background(), &dto.CreateSessionRequest{
		Title:           "一元二次方程",
		Subject:         "数学",
		Level:           "初二",
		ScheduledStart:  testStart,
		DurationMinutes: 60,
	}, "teacher-001")
	if !errors.Is(err, ErrStartNotInFuture) {
		t.Errorf("期望 ErrStartNotInFuture，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestSessionService_Update_Success(t *testing.T) {
	svc, m, _, _ := setupTestSessionService(testStart.Add(-time.Hour))
	seedSession(m, "sess-00000001", model.StatusPending, 6)

	title := "二元一次方程组"
	result, err := svc.Update(context.Background(), "sess-00000001",
		&dto.UpdateSessionRequest{Title: &title}, "teacher-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Title != title {
		t.Errorf("期望Title=%s，实际=%s", title, result.Title)
	}
}

func TestSessionService_Update_Forbidden(t *testing.T) {
	svc, m, _, _ := setupTestSessionService(testStart.Add(-time.Hour))
	seedSession(m, "sess-00000001", model.StatusPending, 6)

	title := "二元一次方程组"
	_, err := svc.Update(context.Background(), "sess-00000001",
		&dto.UpdateSessionRequest{Title: &title}, "teacher-999")
	if !errors.Is(err, ErrSessionForbidden) {
		t.Errorf("期望 ErrSessionForbidden，实际: %v", err)
	}
}

func TestSessionService_Update_ImmutableAfterStart(t *testing.T) {
	// 已开课（active）后元数据冻结
	svc, m, _, _ := setupTestSessionService(testStart.Add(time.Minute))
	seedSession(m, "sess-00000001", model.StatusAssigned, 6)

	title := "二元一次方程组"
	_, err := svc.Update(context.Background(), "sess-00000001",
		&dto.UpdateSessionRequest{Title: &title}, "teacher-001")
	if !errors.Is(err, ErrSessionImmutable) {
		t.Errorf("期望 ErrSessionImmutable，实际: %v", err)
	}
}

func TestSessionService_Update_CapacityBelowRosterSize(t *testing.T) {
	svc, m, _, _ := setupTestSessionService(testStart.Add(-time.Hour))
	seedSession(m, "sess-00000001", model.StatusAssigned, 6)
	m.roster.entries = append(m.roster.entries,
		model.RosterEntry{SessionID: "sess-00000001", StudentID: "stu-001", AssignedAt: testStart.Add(-2 * time.Hour)},
		model.RosterEntry{SessionID: "sess-00000001", StudentID: "stu-002", AssignedAt: testStart.Add(-2 * time.Hour)},
	)

	one := 1
	_, err := svc.Update(context.Background(), "sess-00000001",
		&dto.UpdateSessionRequest{MaxParticipants: &one}, "teacher-001")
	if !errors.Is(err, ErrCapacityBelowSize) {
		t.Errorf("期望 ErrCapacityBelowSize，实际: %v", err)
	}
}

func TestSessionService_Update_OptimisticLockConflict(t *testing.T) {
	svc, m, _, _ := setupTestSessionService(testStart.Add(-time.Hour))
	seedSession(m, "sess-00000001", model.StatusPending, 6)

	// 先取一份旧版本
	stale, _ := m.session.GetByID(context.Background(), "sess-00000001")

	// 正常更新使存储版本前进
	title := "二元一次方程组"
	if _, err := svc.Update(context.Background(), "sess-00000001",
		&dto.UpdateSessionRequest{Title: &title}, "teacher-001"); err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}

	// 旧版本回写命中乐观锁
	stale.Title = "过期写入"
	if err := m.session.Update(context.Background(), stale); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}
}

// ── Cancel 测试 ──

func TestSessionService_Cancel_Success(t *testing.T) {
	svc, m, _, _ := setupTestSessionService(testStart.Add(-time.Hour))
	seedSession(m, "sess-00000001", model.StatusAssigned, 6)
	m.roster.entries = append(m.roster.entries,
		model.RosterEntry{SessionID: "sess-00000001", StudentID: "stu-001", AssignedAt: testStart.Add(-2 * time.Hour)})

	result, err := svc.Cancel(context.Background(), "sess-00000001", "teacher-001")
	if err != nil {
		t.Fatalf("Cancel 应成功: %v", err)
	}
	if result.Status != model.StatusCancelled {
		t.Errorf("期望Status=cancelled，实际=%s", result.Status)
	}

	stored, _ := m.session.GetByID(context.Background(), "sess-00000001")
	if stored.CancelledAt == nil {
		t.Error("CancelledAt 应被记录")
	}
	if m.notification.countByType("stu-001", model.NotifySessionCancelled) != 1 {
		t.Error("名单上的学生应收到取消通知")
	}
}

func TestSessionService_Cancel_AfterEnd(t *testing.T) {
	svc, m, _, _ := setupTestSessionService(testStart.Add(2 * time.Hour))
	seedSession(m, "sess-00000001", model.StatusAssigned, 6)

	_, err := svc.Cancel(context.Background(), "sess-00000001", "teacher-001")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("已结束课程取消应返回 ErrInvalidTransition，实际: %v", err)
	}
}

func TestSessionService_Cancel_AlreadyCancelled(t *testing.T) {
	svc, m, _, _ := setupTestSessionService(testStart.Add(-time.Hour))
	seedSession(m, "sess-00000001", model.StatusCancelled, 6)

	_, err := svc.Cancel(context.Background(), "sess-00000001", "teacher-001")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("重复取消应返回 ErrInvalidTransition，实际: %v", err)
	}
}

// ── Join 测试 ──

func TestSessionService_Join_TeacherGetsURL(t *testing.T) {
	svc, m, _, _ := setupTestSessionService(testStart.Add(-10 * time.Minute))
	seedSession(m, "sess-00000001", model.StatusAssigned, 6)

	result, err := svc.Join(context.Background(), "sess-00000001", "teacher-001", model.RoleTeacher)
	if err != nil {
		t.Fatalf("Join 应成功: %v", err)
	}
	if !result.Decision.Allowed {
		t.Fatalf("教师窗口内应允许入会: %+v", result.Decision)
	}
	if result.MeetingURL == "" {
		t.Error("允许入会时应返回入会 URL")
	}
}

func TestSessionService_Join_DeniedReturnsDecision(t *testing.T) {
	svc, m, _, _ := setupTestSessionService(testStart.Add(-time.Hour))
	seedSession(m, "sess-00000001", model.StatusAssigned, 6)

	// 拒绝不是错误：返回判定结果与空 URL
	result, err := svc.Join(context.Background(), "sess-00000001", "teacher-001", model.RoleTeacher)
	if err != nil {
		t.Fatalf("拒绝入会不应返回错误: %v", err)
	}
	if result.Decision.Allowed {
		t.Error("窗口外应拒绝入会")
	}
	if result.Decision.Reason != ReasonTooEarly {
		t.Errorf("期望Reason=TOO_EARLY，实际=%s", result.Decision.Reason)
	}
	if result.MeetingURL != "" {
		t.Error("拒绝入会时不应返回 URL")
	}
}

func TestSessionService_Join_StudentNotOnRoster(t *testing.T) {
	svc, m, _, _ := setupTestSessionService(testStart.Add(5 * time.Minute))
	seedSession(m, "sess-00000001", model.StatusAssigned, 6)

	// 窗口虽开启，但该学生不在名单上
	result, err := svc.Join(context.Background(), "sess-00000001", "stu-999", model.RoleStudent)
	if err != nil {
		t.Fatalf("Join 不应返回错误: %v", err)
	}
	if result.Decision.Allowed || result.Decision.Reason != ReasonNotYetAssigned {
		t.Errorf("不在名单的学生应收到NOT_YET_ASSIGNED，实际: %+v", result.Decision)
	}
}

func TestSessionService_Join_StudentMarksJoinedOnce(t *testing.T) {
	svc, m, clock, _ := setupTestSessionService(testStart.Add(2 * time.Minute))
	seedSession(m, "sess-00000001", model.StatusAssigned, 6)
	m.roster.entries = append(m.roster.entries,
		model.RosterEntry{SessionID: "sess-00000001", StudentID: "stu-001", AssignedAt: testStart.Add(-2 * time.Hour)})

	if _, err := svc.Join(context.Background(), "sess-00000001", "stu-001", model.RoleStudent); err != nil {
		t.Fatalf("Join 应成功: %v", err)
	}
	firstJoin := *m.roster.entries[0].JoinedAt

	// 再次入会保留首次时间
	clock.Advance(3 * time.Minute)
	if _, err := svc.Join(context.Background(), "sess-00000001", "stu-001", model.RoleStudent); err != nil {
		t.Fatalf("重复 Join 应成功: %v", err)
	}
	if !m.roster.entries[0].JoinedAt.Equal(firstJoin) {
		t.Error("JoinedAt 应保留首次入会时间")
	}
}

func TestSessionService_Join_MeetingUpstreamFailure(t *testing.T) {
	svc, m, _, meeting := setupTestSessionService(testStart.Add(-10 * time.Minute))
	seedSession(m, "sess-00000001", model.StatusAssigned, 6)
	meeting.err = fmt.Errorf("会议服务超时")

	_, err := svc.Join(context.Background(), "sess-00000001", "teacher-001", model.RoleTeacher)
	if !pkgerrors.IsUpstream(err) {
		t.Errorf("期望 UpstreamError，实际: %v", err)
	}
}

// ── 端到端生命周期场景 ──

func TestSessionService_FullLifecycle(t *testing.T) {
	repo, m := newTestRepo()
	clock := newFakeClock(testStart.Add(-24 * time.Hour))
	cfg := &config.Config{Session: config.SessionConfig{DefaultMaxParticipants: 6}}
	logger := zap.NewNop()
	sessionSvc := NewSessionService(cfg, repo, clock, &fakeMeetingProvider{}, logger)
	rosterSvc := NewRosterService(repo, clock, logger)
	seedStudent(m, "stu-001", "小明")

	// 创建：pending
	created, err := sessionSvc.Create(context.Background(), &dto.CreateSessionRequest{
		Title:           "一元二次方程",
		Subject:         "数学",
		Level:           "初二",
		ScheduledStart:  testStart,
		DurationMinutes: 60,
	}, "teacher-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if created.Status != model.StatusPending {
		t.Fatalf("期望pending，实际=%s", created.Status)
	}

	// 分配：assigned
	if _, err := rosterSvc.Assign(context.Background(), created.ID,
		&dto.AssignStudentsRequest{StudentIDs: []string{"stu-001"}},
		"teacher-001", model.RoleTeacher); err != nil {
		t.Fatalf("Assign 应成功: %v", err)
	}
	view, _ := sessionSvc.GetByID(context.Background(), created.ID)
	if view.Status != model.StatusAssigned {
		t.Fatalf("期望assigned，实际=%s", view.Status)
	}
	if view.AssignedCount != 1 {
		t.Errorf("期望AssignedCount=1，实际=%d", view.AssignedCount)
	}

	// 到达开课时间：active，学生可入会
	clock.Set(testStart.Add(time.Minute))
	view, _ = sessionSvc.GetByID(context.Background(), created.ID)
	if view.Status != model.StatusActive {
		t.Fatalf("期望active，实际=%s", view.Status)
	}
	join, err := sessionSvc.Join(context.Background(), created.ID, "stu-001", model.RoleStudent)
	if err != nil || !join.Decision.Allowed {
		t.Fatalf("学生窗口内应可入会: err=%v decision=%+v", err, join.Decision)
	}

	// 过了迟到窗口：课程仍 active，但学生不得再进
	clock.Set(testStart.Add(11 * time.Minute))
	late, _ := sessionSvc.Eligibility(context.Background(), created.ID, model.RoleStudent)
	if late.Allowed || late.Reason != ReasonLateWindowClosed {
		t.Errorf("迟到窗口关闭后应拒绝，实际: %+v", late)
	}

	// 过结束时间：completed，不落库
	clock.Set(testStart.Add(2 * time.Hour))
	view, _ = sessionSvc.GetByID(context.Background(), created.ID)
	if view.Status != model.StatusCompleted {
		t.Fatalf("期望completed，实际=%s", view.Status)
	}
	stored, _ := m.session.GetByID(context.Background(), created.ID)
	if stored.Status != model.StatusAssigned {
		t.Errorf("completed是派生状态，落库状态应仍为assigned，实际=%s", stored.Status)
	}
}

// ── ListVisible 测试 ──

func TestSessionService_ListVisible_AssignedCountMatchesDetail(t *testing.T) {
	svc, m, _, _ := setupTestSessionService(testStart.Add(-24 * time.Hour))
	seedSession(m, "sess-00000001", model.StatusAssigned, 6)
	seedStudent(m, "stu-001", "小明")
	seedStudent(m, "stu-002", "小红")
	m.roster.entries = append(m.roster.entries,
		model.RosterEntry{SessionID: "sess-00000001", StudentID: "stu-001", AssignedAt: testStart.Add(-2 * time.Hour)},
		model.RosterEntry{SessionID: "sess-00000001", StudentID: "stu-002", AssignedAt: testStart.Add(-2 * time.Hour)},
	)

	detail, err := svc.GetByID(context.Background(), "sess-00000001")
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if detail.AssignedCount != 2 {
		t.Fatalf("期望详情AssignedCount=2，实际=%d", detail.AssignedCount)
	}

	// 教师列表、学生列表、顾问列表的名单人数都应与详情一致
	cases := []struct {
		name   string
		userID string
		role   string
	}{
		{"教师视角", "teacher-001", model.RoleTeacher},
		{"学生视角", "stu-001", model.RoleStudent},
		{"顾问视角", "advisor-001", model.RoleAdvisor},
	}
	for _, tc := range cases {
		list, err := svc.ListVisible(context.Background(), tc.userID, tc.role)
		if err != nil {
			t.Fatalf("%s ListVisible 应成功: %v", tc.name, err)
		}
		if len(list) != 1 {
			t.Fatalf("%s 期望1门课程，实际=%d", tc.name, len(list))
		}
		if list[0].AssignedCount != detail.AssignedCount {
			t.Errorf("%s 期望AssignedCount=%d，实际=%d",
				tc.name, detail.AssignedCount, list[0].AssignedCount)
		}
	}
}

// [自证通过] internal/service/session_service_test.go
