package model

import "time"

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started" // 虚拟状态：无记录即未开始，不落库
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

// Progress 每个学生在每个学习单元上的进度记录
// 在学生首次访问该单元时创建；completed 为终态，不允许回退
// swagger:model
type Progress struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint           `gorm:"not null;uniqueIndex:idx_user_session" json:"userId"`
	SessionID      uint           `gorm:"not null;uniqueIndex:idx_user_session" json:"sessionId"`
	Status         ProgressStatus `gorm:"type:enum('in_progress','completed');default:'in_progress'" json:"status"`
	ReflectionText *string        `gorm:"type:text" json:"reflectionText"`
	LastAccessed   time.Time      `json:"lastAccessed"`
	CompletedAt    *time.Time     `json:"completedAt"`

	// 关联（Preload用）
	User    *User    `gorm:"foreignKey:UserID" json:"-"`
	Session *Session `gorm:"foreignKey:SessionID" json:"-"`
}

func (Progress) TableName() string {
	return "user_session_progress"
}
