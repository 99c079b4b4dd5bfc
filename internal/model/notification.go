package model

// ── 通知类型常量 ──

const (
	NotifySessionAssigned  = "session_assigned"  // 被分配到新课程
	NotifySessionStarting  = "session_starting"  // 课程即将开始
	NotifySessionCancelled = "session_cancelled" // 课程被取消
)

// Notification 站内通知表 — 对应 notifications
// 仅为站内记录，不负责推送/邮件投递。
type Notification struct {
	NotificationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Type           string `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool   `gorm:"not null;default:false"                         json:"is_read"`
	SessionID      string `gorm:"type:uuid;not null"                             json:"session_id"`
	BaseModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
