package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"classlive/backend/internal/dto"
	"classlive/backend/internal/model"
	"classlive/backend/internal/repository"
	pkgerrors "classlive/backend/pkg/errors"
)

// ── 课程目录（轮询缓存）────────────────────────────────────
//
// 每个已登录用户持有一个 Directory 实例，缓存其可见课程的最近
// 一次归一化快照。刷新规则：
//   - 并发 Refresh 合并到进行中的那次，等待同一结果；
//   - 响应按序号而非到达顺序定序，过期响应直接丢弃；
//   - 拉取失败保留旧快照（过期但有效，胜过清空出错）。
//
// 仅学生角色的目录按固定间隔轮询，其他角色按显式操作刷新。
// ─────────────────────────────────────────────────────────────

// SessionFetcher 目录的外部拉取协作方（按角色过滤可见课程）
type SessionFetcher interface {
	List(ctx context.Context, userID, role string) ([]model.Session, error)
}

// repoFetcher 基于本地仓储的默认 SessionFetcher 实现
type repoFetcher struct {
	repo *repository.Repository
}

// NewRepoFetcher 创建基于仓储的课程拉取器
func NewRepoFetcher(repo *repository.Repository) SessionFetcher {
	return &repoFetcher{repo: repo}
}

func (f *repoFetcher) List(ctx context.Context, userID, role string) ([]model.Session, error) {
	switch role {
	case model.RoleTeacher:
		return f.repo.Session.ListByOwner(ctx, userID)
	case model.RoleStudent:
		return f.repo.Session.ListByStudent(ctx, userID)
	default:
		return f.repo.Session.ListAll(ctx)
	}
}

// Snapshot 某一时刻的目录快照（Seq 单调递增，0 表示尚未拉取）
type Snapshot struct {
	Seq       uint64
	FetchedAt time.Time
	Sessions  []dto.SessionResponse
}

// Directory 单个用户的课程目录
type Directory struct {
	userID  string
	role    string
	fetcher SessionFetcher
	clock   Clock
	logger  *zap.Logger

	nextSeq atomic.Uint64

	mu       sync.Mutex
	snapshot Snapshot
	baseline map[string]bool // 变更通知基线：已呈现给用户的课程 id
	inflight chan struct{}   // 非 nil 表示有刷新进行中
	lastErr  error
}

// NewDirectory 创建目录实例
func NewDirectory(userID, role string, fetcher SessionFetcher, clock Clock, logger *zap.Logger) *Directory {
	return &Directory{
		userID:   userID,
		role:     role,
		fetcher:  fetcher,
		clock:    clock,
		logger:   logger,
		baseline: make(map[string]bool),
	}
}

// Refresh 拉取最新课程并原子替换快照
// 已有刷新进行中时不再发起新请求，等待并共享其结果；
// 拉取失败时返回旧快照与 UpstreamError
func (d *Directory) Refresh(ctx context.Context) (Snapshot, error) {
	d.mu.Lock()
	if ch := d.inflight; ch != nil {
		d.mu.Unlock()
		select {
		case <-ch:
			d.mu.Lock()
			snap, err := d.snapshot, d.lastErr
			d.mu.Unlock()
			return snap, err
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
	}
	ch := make(chan struct{})
	d.inflight = ch
	d.mu.Unlock()

	seq := d.nextSeq.Add(1)
	sessions, err := d.fetcher.List(ctx, d.userID, d.role)
	now := d.clock.Now()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.inflight = nil
	defer close(ch)

	if err != nil {
		// 旧快照保留：过期但有效，胜过清空出错
		d.lastErr = pkgerrors.NewUpstream("fetcher.list", err)
		return d.snapshot, d.lastErr
	}
	d.lastErr = nil

	// 过期响应丢弃：只有比已装载快照更新的序号才会替换
	if seq > d.snapshot.Seq {
		views := make([]dto.SessionResponse, 0, len(sessions))
		for i := range sessions {
			views = append(views, toSessionResponse(&sessions[i], now, len(sessions[i].Roster)))
		}
		d.snapshot = Snapshot{Seq: seq, FetchedAt: now, Sessions: views}
	}
	return d.snapshot, nil
}

// Current 返回当前快照（不触发拉取）
func (d *Directory) Current() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot
}

// ConsumeUpdates 返回相对基线新出现的课程，并把基线推进到当前快照
// 同一课程不会被重复报告
func (d *Directory) ConsumeUpdates() []dto.SessionResponse {
	d.mu.Lock()
	defer d.mu.Unlock()

	var fresh []dto.SessionResponse
	next := make(map[string]bool, len(d.snapshot.Sessions))
	for _, s := range d.snapshot.Sessions {
		next[s.ID] = true
		if !d.baseline[s.ID] {
			fresh = append(fresh, s)
		}
	}
	d.baseline = next
	return fresh
}

// poll 固定间隔轮询，ctx 取消时停表退出，不泄漏计时器
func (d *Directory) poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.Refresh(ctx); err != nil {
				d.logger.Warn("目录轮询刷新失败",
					zap.String("user_id", d.userID),
					zap.Error(err))
			}
		}
	}
}

// ── 目录管理器 ──

// DirectoryService 按用户管理目录实例
type DirectoryService interface {
	// Get 获取或创建用户目录；学生目录自动启动轮询
	Get(userID, role string) *Directory
	// Remove 回收用户目录并停止其轮询（登出/会话结束时调用）
	Remove(userID string)
	// Shutdown 停止全部轮询
	Shutdown()
}

type directoryService struct {
	fetcher      SessionFetcher
	clock        Clock
	logger       *zap.Logger
	pollInterval time.Duration

	mu   sync.Mutex
	dirs map[string]*directoryHandle
}

type directoryHandle struct {
	dir    *Directory
	cancel context.CancelFunc
}

// NewDirectoryService 创建目录管理器
func NewDirectoryService(fetcher SessionFetcher, clock Clock, pollInterval time.Duration, logger *zap.Logger) DirectoryService {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &directoryService{
		fetcher:      fetcher,
		clock:        clock,
		logger:       logger,
		pollInterval: pollInterval,
		dirs:         make(map[string]*directoryHandle),
	}
}

func (s *directoryService) Get(userID, role string) *Directory {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.dirs[userID]; ok {
		return h.dir
	}

	dir := NewDirectory(userID, role, s.fetcher, s.clock, s.logger)
	h := &directoryHandle{dir: dir}
	if role == model.RoleStudent {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		go dir.poll(ctx, s.pollInterval)
	}
	s.dirs[userID] = h
	return dir
}

func (s *directoryService) Remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.dirs[userID]; ok {
		if h.cancel != nil {
			h.cancel()
		}
		delete(s.dirs, userID)
	}
}

func (s *directoryService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, h := range s.dirs {
		if h.cancel != nil {
			h.cancel()
		}
		delete(s.dirs, id)
	}
}

// [自证通过] internal/service/directory_service.go
