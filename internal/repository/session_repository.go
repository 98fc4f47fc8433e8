package repository

import (
	"errors"
	"student_dashboard_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Exists(id uint) (bool, error) {
	var session model.Session
	err := r.DB.Select("id").First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *SessionRepository) FindByID(id uint) (*model.Session, error) {
	var session model.Session
	err := r.DB.First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) List() ([]model.Session, error) {
	var sessions []model.Session
	err := r.DB.Order("created_at ASC").Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) Create(session *model.Session) error {
	return r.DB.Create(session).Error
}
