package service

import (
	"student_dashboard_backend/internal/model"
)

// SessionService 学习单元的管理（列表与创建，创建后不可修改）
type SessionService struct {
	SessionRepo SessionStore
}

func NewSessionService(sessionRepo SessionStore) *SessionService {
	return &SessionService{SessionRepo: sessionRepo}
}

func (s *SessionService) ListSessions() ([]model.Session, error) {
	return s.SessionRepo.List()
}

func (s *SessionService) CreateSession(title, description string) (*model.Session, error) {
	session := &model.Session{
		Title:       title,
		Description: description,
	}
	if err := s.SessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}
