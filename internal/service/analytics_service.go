package service

import (
	"fmt"
	"math"
	"strings"
	"student_dashboard_backend/internal/model"
	"student_dashboard_backend/internal/util"
	"student_dashboard_backend/pkg/logger"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// AnalyticsService 教师端聚合
// 所有指标都是当前快照的派生值，从不落库，每次请求重新计算
type AnalyticsService struct {
	DashboardRepo DashboardStore
	UserRepo      UserStore
}

func NewAnalyticsService(dashboardRepo DashboardStore, userRepo UserStore) *AnalyticsService {
	return &AnalyticsService{
		DashboardRepo: dashboardRepo,
		UserRepo:      userRepo,
	}
}

func (s *AnalyticsService) GetTeacherDashboard() (*model.TeacherDashboard, error) {
	snap, err := s.DashboardRepo.LoadSnapshot()
	if err != nil {
		return nil, err
	}
	return BuildTeacherDashboard(snap, time.Now()), nil
}

// BuildTeacherDashboard 从单次快照派生全部聚合指标
func BuildTeacherDashboard(snap *model.Snapshot, now time.Time) *model.TeacherDashboard {
	mostMissed, missedCount := mostMissedSession(snap)
	return &model.TeacherDashboard{
		Students:          summarizeStudents(snap),
		SessionStats:      sessionStats(snap),
		AvgJournalLength:  avgReflectionLength(snap.Progress),
		MostMissedSession: mostMissed,
		MissedCount:       missedCount,
		ActiveStudents:    activeStudents(snap.Progress, now),
		TotalStudents:     len(snap.Students),
	}
}

// summarizeStudents 每个学生折叠为一行：最近活动时间、是否提交过、当前单元、整体状态
func summarizeStudents(snap *model.Snapshot) []model.StudentSummary {
	titles := make(map[uint]string, len(snap.Sessions))
	for _, sess := range snap.Sessions {
		titles[sess.ID] = sess.Title
	}

	rowsByUser := make(map[uint][]model.Progress, len(snap.Students))
	for _, row := range snap.Progress {
		rowsByUser[row.UserID] = append(rowsByUser[row.UserID], row)
	}

	summaries := make([]model.StudentSummary, 0, len(snap.Students))
	for _, student := range snap.Students {
		summary := model.StudentSummary{
			ID:             student.ID,
			Name:           student.FullName(),
			Email:          student.Email,
			CurrentSession: "N/A",
			Status:         model.StatusNotStarted,
		}

		var current *model.Progress
		rows := rowsByUser[student.ID]
		for i, row := range rows {
			if summary.LastSeen == nil || row.LastAccessed.After(*summary.LastSeen) {
				la := row.LastAccessed
				summary.LastSeen = &la
			}
			switch row.Status {
			case model.StatusCompleted:
				summary.HasSubmitted = true
				if summary.Status == model.StatusNotStarted {
					summary.Status = model.StatusCompleted
				}
			case model.StatusInProgress:
				summary.Status = model.StatusInProgress
				// 并列时取 session id 较小的一条，保证结果确定
				if current == nil ||
					row.LastAccessed.After(current.LastAccessed) ||
					(row.LastAccessed.Equal(current.LastAccessed) && row.SessionID < current.SessionID) {
					current = &rows[i]
				}
			}
		}
		if current != nil {
			summary.CurrentSession = titles[current.SessionID]
		}

		summaries = append(summaries, summary)
	}
	return summaries
}

// sessionStats 每个单元的完成率：completed 数 / 有进度记录的学生数 × 100，保留1位小数
// 没有任何参与者时完成率为 0
func sessionStats(snap *model.Snapshot) []model.SessionStat {
	type counter struct {
		participants int
		completed    int
	}
	counts := make(map[uint]*counter, len(snap.Sessions))
	for _, sess := range snap.Sessions {
		counts[sess.ID] = &counter{}
	}
	for _, row := range snap.Progress {
		c, ok := counts[row.SessionID]
		if !ok {
			continue
		}
		c.participants++
		if row.Status == model.StatusCompleted {
			c.completed++
		}
	}

	stats := make([]model.SessionStat, 0, len(snap.Sessions))
	for _, sess := range snap.Sessions {
		c := counts[sess.ID]
		rate := 0.0
		if c.participants > 0 {
			rate = math.Round(float64(c.completed)/float64(c.participants)*1000) / 10
		}
		stats = append(stats, model.SessionStat{
			ID:             sess.ID,
			Title:          sess.Title,
			CompletionRate: rate,
		})
	}
	return stats
}

// avgReflectionLength 所有非空反思的平均字符长度，四舍五入；无反思时为 0
func avgReflectionLength(progress []model.Progress) int {
	total, count := 0, 0
	for _, row := range progress {
		if row.ReflectionText == nil {
			continue
		}
		total += reflectionLength(*row.ReflectionText)
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}

func reflectionLength(text string) int {
	return utf8.RuneCountInString(text)
}

// mostMissedSession 未完成（in_progress）记录数最多的单元
// 只统计已有进度记录的学生，从未访问过的学生不计入；并列时取 id 较小的单元
func mostMissedSession(snap *model.Snapshot) (string, int) {
	missed := make(map[uint]int, len(snap.Sessions))
	for _, row := range snap.Progress {
		if row.Status != model.StatusCompleted {
			missed[row.SessionID]++
		}
	}

	title, best := "N/A", 0
	for _, sess := range snap.Sessions {
		if missed[sess.ID] > best {
			title, best = sess.Title, missed[sess.ID]
		}
	}
	return title, best
}

// activeStudents 最近7天内有过进度更新的学生数
func activeStudents(progress []model.Progress, now time.Time) int {
	cutoff := now.Add(-util.ActiveWindow)
	seen := make(map[uint]bool)
	for _, row := range progress {
		if !row.LastAccessed.Before(cutoff) {
			seen[row.UserID] = true
		}
	}
	return len(seen)
}

// ExportCSV 导出学生进度表，返回文件名和 CSV 内容
func (s *AnalyticsService) ExportCSV(now time.Time) (string, string, error) {
	snap, err := s.DashboardRepo.LoadSnapshot()
	if err != nil {
		return "", "", err
	}

	filename := fmt.Sprintf("student-progress-%s.csv", now.Format(util.DateFormat))
	return filename, RenderProgressCSV(summarizeStudents(snap)), nil
}

// RenderProgressCSV 学生列表渲染为 CSV
// 姓名和当前单元带引号，其余列裸值，与既有前端下载格式保持一致
func RenderProgressCSV(students []model.StudentSummary) string {
	var b strings.Builder
	b.WriteString("ID,Name,Email,Current Session,Status,Submitted?,Last Seen")

	for _, s := range students {
		submitted := "No"
		if s.HasSubmitted {
			submitted = "Yes"
		}
		lastSeen := "Never"
		if s.LastSeen != nil {
			lastSeen = s.LastSeen.UTC().Format(time.RFC3339)
		}
		b.WriteString(fmt.Sprintf("\n%d,%q,%s,%q,%s,%s,%s",
			s.ID, s.Name, s.Email, s.CurrentSession, s.Status, submitted, lastSeen))
	}
	return b.String()
}

// SendReminders 提醒目前只做确认与记录，不发送任何通知
func (s *AnalyticsService) SendReminders(teacherID uint, studentIDs []uint) {
	logger.Log.Info("sending reminders",
		zap.Uint("teacherId", teacherID),
		zap.Uints("studentIds", studentIDs),
	)
}

// GetStudentDetail 教师查看单个学生：档案 + 全部单元的进度视图
func (s *AnalyticsService) GetStudentDetail(studentID uint) (*model.StudentDetail, error) {
	student, err := s.UserRepo.FindStudentByID(studentID)
	if err != nil {
		return nil, util.ErrStudentNotFound
	}

	sessions, progress, err := s.DashboardRepo.LoadUserSnapshot(studentID)
	if err != nil {
		return nil, err
	}

	return &model.StudentDetail{
		ID:         student.ID,
		Name:       student.FullName(),
		Email:      student.Email,
		EnrolledAt: student.CreatedAt,
		Sessions:   mergeSessionProgress(sessions, progress),
	}, nil
}
