package repository

import (
	"database/sql"
	"student_dashboard_backend/internal/model"

	"gorm.io/gorm"
)

type DashboardRepository struct {
	DB *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{DB: db}
}

// LoadSnapshot 在一个只读事务里取出教师端聚合所需的全部数据
// 学生总数、完成率等指标都从同一份快照派生，避免计算过程中写入造成的不一致
func (r *DashboardRepository) LoadSnapshot() (*model.Snapshot, error) {
	var snap model.Snapshot
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role = ?", model.Student).
			Order("first_name ASC").
			Find(&snap.Students).Error; err != nil {
			return err
		}
		if err := tx.Order("id ASC").Find(&snap.Sessions).Error; err != nil {
			return err
		}
		return tx.Order("id ASC").Find(&snap.Progress).Error
	}, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// LoadUserSnapshot 取出全部学习单元和指定学生的进度记录（同一只读事务）
func (r *DashboardRepository) LoadUserSnapshot(userID uint) ([]model.Session, []model.Progress, error) {
	var sessions []model.Session
	var progress []model.Progress
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("created_at ASC").Find(&sessions).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Find(&progress).Error
	}, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, nil, err
	}
	return sessions, progress, nil
}
