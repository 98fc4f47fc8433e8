package service

import (
	"sort"
	"student_dashboard_backend/internal/model"
)

// DashboardService 学生仪表盘
type DashboardService struct {
	DashboardRepo DashboardStore
}

func NewDashboardService(dashboardRepo DashboardStore) *DashboardService {
	return &DashboardService{DashboardRepo: dashboardRepo}
}

func (s *DashboardService) GetStudentDashboard(userID uint) (*model.StudentDashboard, error) {
	sessions, progress, err := s.DashboardRepo.LoadUserSnapshot(userID)
	if err != nil {
		return nil, err
	}

	merged := mergeSessionProgress(sessions, progress)

	dashboard := &model.StudentDashboard{
		MissedSessions:    []model.SessionProgress{},
		CompletedSessions: []model.SessionProgress{},
		ReflectionHistory: []model.ReflectionEntry{},
		TotalSessions:     len(merged),
	}

	for _, sp := range merged {
		if sp.Status == model.StatusCompleted {
			dashboard.CompletedSessions = append(dashboard.CompletedSessions, sp)
		} else {
			dashboard.MissedSessions = append(dashboard.MissedSessions, sp)
		}
	}
	dashboard.CompletedCount = len(dashboard.CompletedSessions)

	for _, sp := range dashboard.CompletedSessions {
		entry := model.ReflectionEntry{
			Title:       sp.Title,
			CompletedAt: sp.CompletedAt,
		}
		if sp.ReflectionText != nil {
			entry.ReflectionText = *sp.ReflectionText
			entry.ReflectionLength = reflectionLength(*sp.ReflectionText)
		}
		dashboard.ReflectionHistory = append(dashboard.ReflectionHistory, entry)
	}

	// 反思历史按完成时间倒序
	sort.SliceStable(dashboard.ReflectionHistory, func(i, j int) bool {
		a, b := dashboard.ReflectionHistory[i].CompletedAt, dashboard.ReflectionHistory[j].CompletedAt
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})

	return dashboard, nil
}

// mergeSessionProgress 把学习单元列表和某个学生的进度记录合并为统一视图
// 没有进度记录的单元状态为 not_started（未开始不落库）
func mergeSessionProgress(sessions []model.Session, progress []model.Progress) []model.SessionProgress {
	bySession := make(map[uint]*model.Progress, len(progress))
	for i := range progress {
		bySession[progress[i].SessionID] = &progress[i]
	}

	merged := make([]model.SessionProgress, 0, len(sessions))
	for _, sess := range sessions {
		sp := model.SessionProgress{
			ID:          sess.ID,
			Title:       sess.Title,
			Description: sess.Description,
			CreatedAt:   sess.CreatedAt,
			Status:      model.StatusNotStarted,
		}
		if row, ok := bySession[sess.ID]; ok {
			sp.Status = row.Status
			sp.ReflectionText = row.ReflectionText
			la := row.LastAccessed
			sp.LastAccessed = &la
			sp.CompletedAt = row.CompletedAt
		}
		merged = append(merged, sp)
	}
	return merged
}
