package service

import (
	"context"
	"student_dashboard_backend/internal/model"
	"time"
)

// 服务层通过这里的接口访问存储，repository 包提供 gorm 实现。
// 进度状态机的“完成态不可回退”由 ProgressStore 实现方保证为单次原子操作，
// 任何后端（关系库、内存实现）都必须满足同一契约。

type UserStore interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindStudentByID(id uint) (*model.User, error)
	Update(user *model.User) error
}

type SessionStore interface {
	Exists(id uint) (bool, error)
	FindByID(id uint) (*model.Session, error)
	List() ([]model.Session, error)
	Create(session *model.Session) error
}

type ProgressStore interface {
	// StartOrResume 原子 upsert：无记录则创建 in_progress，
	// 有记录则刷新 last_accessed，completed 状态保持不变
	StartOrResume(userID, sessionID uint) (*model.Progress, error)
	// Complete 原子 upsert：无条件置为 completed 终态
	Complete(userID, sessionID uint, reflection string) (*model.Progress, error)
}

type DashboardStore interface {
	LoadSnapshot() (*model.Snapshot, error)
	LoadUserSnapshot(userID uint) ([]model.Session, []model.Progress, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}
