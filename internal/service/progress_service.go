package service

import (
	"strings"
	"student_dashboard_backend/internal/model"
	"student_dashboard_backend/internal/util"
	"student_dashboard_backend/pkg/monitoring"
)

// ProgressService 进度状态机
// not_started（无记录）→ in_progress → completed，completed 为终态
type ProgressService struct {
	ProgressRepo ProgressStore
	SessionRepo  SessionStore
}

func NewProgressService(progressRepo ProgressStore, sessionRepo SessionStore) *ProgressService {
	return &ProgressService{
		ProgressRepo: progressRepo,
		SessionRepo:  sessionRepo,
	}
}

// StartOrResume 首次访问创建进度记录，再次访问只刷新 last_accessed
func (s *ProgressService) StartOrResume(userID, sessionID uint) (*model.Progress, error) {
	ok, err := s.SessionRepo.Exists(sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrSessionNotFound
	}

	row, err := s.ProgressRepo.StartOrResume(userID, sessionID)
	if err == nil {
		monitoring.SessionStarts.Inc()
	}
	return row, err
}

// Complete 提交反思并把进度置为 completed 终态，重复提交幂等
func (s *ProgressService) Complete(userID, sessionID uint, reflection string) (*model.Progress, error) {
	if strings.TrimSpace(reflection) == "" {
		return nil, util.ErrEmptyReflection
	}

	ok, err := s.SessionRepo.Exists(sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrSessionNotFound
	}

	row, err := s.ProgressRepo.Complete(userID, sessionID, reflection)
	if err == nil {
		monitoring.SessionCompletions.Inc()
	}
	return row, err
}
