package model

import "time"

// Snapshot 教师端聚合使用的单次一致性读取结果
// 所有聚合指标都从同一个只读事务里取出的数据派生，避免多次读取之间的数据漂移
type Snapshot struct {
	Students []User
	Sessions []Session
	Progress []Progress
}

// StudentSummary 教师端学生列表行
// swagger:model
type StudentSummary struct {
	ID             uint           `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	LastSeen       *time.Time     `json:"lastSeen"`
	HasSubmitted   bool           `json:"hasSubmitted"`
	CurrentSession string         `json:"currentSession"`
	Status         ProgressStatus `json:"status"`
}

// SessionStat 单个学习单元的完成率统计
// swagger:model
type SessionStat struct {
	ID             uint    `json:"id"`
	Title          string  `json:"title"`
	CompletionRate float64 `json:"completionRate"`
}

// TeacherDashboard 教师仪表盘数据
// swagger:model
type TeacherDashboard struct {
	Students          []StudentSummary `json:"students"`
	SessionStats      []SessionStat    `json:"sessionStats"`
	AvgJournalLength  int              `json:"avgJournalLength"`
	MostMissedSession string           `json:"mostMissedSession"`
	MissedCount       int              `json:"missedCount"`
	ActiveStudents    int              `json:"activeStudents"`
	TotalStudents     int              `json:"totalStudents"`
}

// SessionProgress 学习单元与某个学生进度的合并视图
// 没有进度记录的单元以 not_started 填充
// swagger:model
type SessionProgress struct {
	ID             uint           `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	CreatedAt      time.Time      `json:"createdAt"`
	Status         ProgressStatus `json:"status"`
	ReflectionText *string        `json:"reflectionText"`
	LastAccessed   *time.Time     `json:"lastAccessed"`
	CompletedAt    *time.Time     `json:"completedAt"`
}

// ReflectionEntry 学生已完成单元的反思记录
// swagger:model
type ReflectionEntry struct {
	Title            string     `json:"title"`
	ReflectionText   string     `json:"reflectionText"`
	CompletedAt      *time.Time `json:"completedAt"`
	ReflectionLength int        `json:"reflectionLength"`
}

// StudentDashboard 学生仪表盘数据
// swagger:model
type StudentDashboard struct {
	MissedSessions    []SessionProgress `json:"missedSessions"`
	CompletedSessions []SessionProgress `json:"completedSessions"`
	ReflectionHistory []ReflectionEntry `json:"reflectionHistory"`
	TotalSessions     int               `json:"totalSessions"`
	CompletedCount    int               `json:"completedCount"`
}

// StudentDetail 教师查看的单个学生明细
// swagger:model
type StudentDetail struct {
	ID         uint              `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	EnrolledAt time.Time         `json:"enrolledAt"`
	Sessions   []SessionProgress `json:"sessions"`
}
