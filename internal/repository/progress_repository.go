package repository

import (
	"student_dashboard_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// StartOrResume 学生访问学习单元时的原子 upsert
// 不存在记录时创建 in_progress；已有记录时只刷新 last_accessed，
// completed 状态粘滞不回退。状态判断放在单条 SQL 里执行，
// 并发的开始/完成请求由 (user_id, session_id) 唯一索引和数据库原子性保证
func (r *ProgressRepository) StartOrResume(userID, sessionID uint) (*model.Progress, error) {
	now := time.Now()
	row := model.Progress{
		UserID:       userID,
		SessionID:    sessionID,
		Status:       model.StatusInProgress,
		LastAccessed: now,
	}

	err := r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "session_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":        gorm.Expr("IF(status = 'completed', 'completed', 'in_progress')"),
			"last_accessed": now,
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	return r.find(userID, sessionID)
}

// Complete 完成学习单元：无条件置为终态 completed，写入反思与完成时间
// 重复调用是幂等的（反思与时间戳以最后一次为准）
func (r *ProgressRepository) Complete(userID, sessionID uint, reflection string) (*model.Progress, error) {
	now := time.Now()
	row := model.Progress{
		UserID:         userID,
		SessionID:      sessionID,
		Status:         model.StatusCompleted,
		ReflectionText: &reflection,
		LastAccessed:   now,
		CompletedAt:    &now,
	}

	err := r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "session_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":          model.StatusCompleted,
			"reflection_text": reflection,
			"completed_at":    now,
			"last_accessed":   now,
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	return r.find(userID, sessionID)
}

// MySQL 不支持 RETURNING，upsert 后回读最新行
func (r *ProgressRepository) find(userID, sessionID uint) (*model.Progress, error) {
	var row model.Progress
	err := r.DB.Where("user_id = ? AND session_id = ?", userID, sessionID).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
