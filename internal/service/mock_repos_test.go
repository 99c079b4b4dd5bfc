package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"classlive/backend/internal/model"
	pkgerrors "classlive/backend/pkg/errors"
)

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]*model.Session
	idCounter int

	// 关联的名单 mock，用于 ListByStudent
	roster *mockRosterRepo

	failList error // 非 nil 时列表查询返回该错误
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.Session)}
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session.SessionID == "" {
		m.idCounter++
		session.SessionID = fmt.Sprintf("sess-%08d", m.idCounter)
	}
	if session.Version == 0 {
		session.Version = 1
	}
	cp := *session
	m.sessions[session.SessionID] = &cp
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) Update(_ context.Context, session *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[session.SessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != session.Version {
		return pkgerrors.ErrOptimisticLock
	}
	session.Version++
	cp := *session
	m.sessions[session.SessionID] = &cp
	return nil
}

func (m *mockSessionRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	var result []model.Session
	for _, s := range m.sessions {
		if s.OwnerID == ownerID {
			cp := *s
			cp.Roster = m.rosterOf(s.SessionID)
			result = append(result, cp)
		}
	}
	sortSessions(result)
	return result, nil
}

func (m *mockSessionRepo) ListByStudent(_ context.Context, studentID string) ([]model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	var result []model.Session
	for _, s := range m.sessions {
		if m.roster != nil && m.roster.has(s.SessionID, studentID) {
			cp := *s
			cp.Roster = m.rosterOf(s.SessionID)
			result = append(result, cp)
		}
	}
	sortSessions(result)
	return result, nil
}

func (m *mockSessionRepo) ListAll(_ context.Context) ([]model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	var result []model.Session
	for _, s := range m.sessions {
		cp := *s
		cp.Roster = m.rosterOf(s.SessionID)
		result = append(result, cp)
	}
	sortSessions(result)
	return result, nil
}

func (m *mockSessionRepo) ListStartingBetween(_ context.Context, from, to time.Time) ([]model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Session
	for _, s := range m.sessions {
		if s.Status == model.StatusCancelled {
			continue
		}
		if !s.ScheduledStart.Before(from) && s.ScheduledStart.Before(to) {
			result = append(result, *s)
		}
	}
	sortSessions(result)
	return result, nil
}

// rosterOf 模拟列表查询的 Preload("Roster")
func (m *mockSessionRepo) rosterOf(sessionID string) []model.RosterEntry {
	if m.roster == nil {
		return nil
	}
	return m.roster.entriesOf(sessionID)
}

func sortSessions(sessions []model.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].SessionID < sessions[j].SessionID
	})
}

// ── Mock RosterRepository ──

type mockRosterRepo struct {
	mu      sync.Mutex
	entries []model.RosterEntry

	// 学生详情注入（ListBySession 预载 Student 关联的替身）
	students map[string]*model.User
}

func newMockRosterRepo() *mockRosterRepo {
	return &mockRosterRepo{students: make(map[string]*model.User)}
}

func (m *mockRosterRepo) has(sessionID, studentID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasLocked(sessionID, studentID)
}

func (m *mockRosterRepo) hasLocked(sessionID, studentID string) bool {
	for _, e := range m.entries {
		if e.SessionID == sessionID && e.StudentID == studentID {
			return true
		}
	}
	return false
}

func (m *mockRosterRepo) entriesOf(sessionID string) []model.RosterEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.RosterEntry
	for _, e := range m.entries {
		if e.SessionID == sessionID {
			result = append(result, e)
		}
	}
	return result
}

func (m *mockRosterRepo) BatchAdd(_ context.Context, entries []model.RosterEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range entries {
		if m.hasLocked(entries[i].SessionID, entries[i].StudentID) {
			return fmt.Errorf("名单唯一键冲突: %s/%s", entries[i].SessionID, entries[i].StudentID)
		}
	}
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *mockRosterRepo) Remove(_ context.Context, sessionID string, studentIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		drop[id] = true
	}
	var remaining []model.RosterEntry
	for _, e := range m.entries {
		if e.SessionID == sessionID && drop[e.StudentID] {
			continue
		}
		remaining = append(remaining, e)
	}
	m.entries = remaining
	return nil
}

func (m *mockRosterRepo) ListBySession(_ context.Context, sessionID string) ([]model.RosterEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.RosterEntry
	for _, e := range m.entries {
		if e.SessionID == sessionID {
			cp := e
			if u, ok := m.students[e.StudentID]; ok {
				cp.Student = u
			}
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].AssignedAt.Equal(result[j].AssignedAt) {
			return result[i].AssignedAt.Before(result[j].AssignedAt)
		}
		return result[i].StudentID < result[j].StudentID
	})
	return result, nil
}

func (m *mockRosterRepo) Count(_ context.Context, sessionID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, e := range m.entries {
		if e.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

func (m *mockRosterRepo) MarkJoined(_ context.Context, sessionID, studentID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.SessionID == sessionID && e.StudentID == studentID && e.JoinedAt == nil {
			t := at
			m.entries[i].JoinedAt = &t
			return nil
		}
	}
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications []model.Notification
	idCounter     int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idCounter++
	n.NotificationID = fmt.Sprintf("notif-%d", m.idCounter)
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *mockNotificationRepo) CreateIfAbsent(_ context.Context, n *model.Notification) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.notifications {
		if existing.UserID == n.UserID && existing.SessionID == n.SessionID && existing.Type == n.Type {
			return false, nil
		}
	}
	m.idCounter++
	n.NotificationID = fmt.Sprintf("notif-%d", m.idCounter)
	m.notifications = append(m.notifications, *n)
	return true, nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, limit int) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Notification
	for i := len(m.notifications) - 1; i >= 0 && len(result) < limit; i-- {
		if m.notifications[i].UserID == userID {
			result = append(result, m.notifications[i])
		}
	}
	return result, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, userID, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.notifications {
		if n.NotificationID == notificationID && n.UserID == userID {
			m.notifications[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// countByType 测试辅助：统计某用户某类型的通知数
func (m *mockNotificationRepo) countByType(userID, notifType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && n.Type == notifType {
			count++
		}
	}
	return count
}

// ── 假时钟 ──

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// ── 假课程拉取器（目录测试用）──

type fakeFetcher struct {
	mu       sync.Mutex
	sessions []model.Session
	err      error
	calls    int

	// 非 nil 时 List 阻塞直至该通道关闭，用于并发合并测试
	gate chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{}
}

func (f *fakeFetcher) List(_ context.Context, _, _ string) ([]model.Session, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	sessions := make([]model.Session, len(f.sessions))
	copy(sessions, f.sessions)
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (f *fakeFetcher) set(sessions []model.Session, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = sessions
	f.err = err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// ── 假会议服务 ──

type fakeMeetingProvider struct {
	url string
	err error
}

func (p *fakeMeetingProvider) JoinURL(_ context.Context, sessionID string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	if p.url != "" {
		return p.url, nil
	}
	return "https://meet.example.com/" + sessionID, nil
}

// [自证通过] internal/service/mock_repos_test.go
