package model

import "time"

// Session 学习单元，创建后不可变更
// swagger:model
type Session struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Session) TableName() string {
	return "sessions"
}
