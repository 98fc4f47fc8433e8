package service_test

import (
	"strings"
	"testing"
	"time"

	"student_dashboard_backend/internal/model"
	"student_dashboard_backend/internal/repository/inmem"
	"student_dashboard_backend/internal/service"
	"student_dashboard_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var aggNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func studentRow(id uint, first, last, email string) model.User {
	u := model.User{
		Email:     email,
		Role:      model.Student,
		FirstName: first,
		LastName:  last,
	}
	u.ID = id
	return u
}

func TestBuildTeacherDashboardEmpty(t *testing.T) {
	dash := service.BuildTeacherDashboard(&model.Snapshot{}, aggNow)

	assert.Empty(t, dash.Students)
	assert.Empty(t, dash.SessionStats)
	assert.Equal(t, 0, dash.AvgJournalLength)
	assert.Equal(t, "N/A", dash.MostMissedSession)
	assert.Equal(t, 0, dash.MissedCount)
	assert.Equal(t, 0, dash.ActiveStudents)
	assert.Equal(t, 0, dash.TotalStudents)
}

func TestSessionCompletionRate(t *testing.T) {
	snap := &model.Snapshot{
		Sessions: []model.Session{
			{ID: 1, Title: "Session 1"},
			{ID: 2, Title: "Session 2"},
		},
		Progress: []model.Progress{
			{UserID: 1, SessionID: 1, Status: model.StatusCompleted, LastAccessed: aggNow},
			{UserID: 2, SessionID: 1, Status: model.StatusInProgress, LastAccessed: aggNow},
			{UserID: 3, SessionID: 1, Status: model.StatusInProgress, LastAccessed: aggNow},
		},
	}

	dash := service.BuildTeacherDashboard(snap, aggNow)
	require.Len(t, dash.SessionStats, 2)

	// 1/3 完成，保留1位小数
	assert.Equal(t, "Session 1", dash.SessionStats[0].Title)
	assert.InDelta(t, 33.3, dash.SessionStats[0].CompletionRate, 0.001)

	// 无人参与的单元完成率为 0，不是 NaN
	assert.Equal(t, 0.0, dash.SessionStats[1].CompletionRate)
}

func TestAvgJournalLength(t *testing.T) {
	snap := &model.Snapshot{
		Progress: []model.Progress{
			{UserID: 1, SessionID: 1, Status: model.StatusCompleted, ReflectionText: strPtr("Learned a lot today"), LastAccessed: aggNow},
		},
	}
	dash := service.BuildTeacherDashboard(snap, aggNow)
	assert.Equal(t, 19, dash.AvgJournalLength)

	// 平均值四舍五入：长度 3 和 4 → 4
	snap.Progress = append(snap.Progress,
		model.Progress{UserID: 2, SessionID: 1, Status: model.StatusCompleted, ReflectionText: strPtr("abc"), LastAccessed: aggNow})
	snap.Progress[0].ReflectionText = strPtr("abcd")
	dash = service.BuildTeacherDashboard(snap, aggNow)
	assert.Equal(t, 4, dash.AvgJournalLength)
}

func TestAvgJournalLengthCountsRunes(t *testing.T) {
	snap := &model.Snapshot{
		Progress: []model.Progress{
			{UserID: 1, SessionID: 1, Status: model.StatusCompleted, ReflectionText: strPtr("今天学到了很多"), LastAccessed: aggNow},
		},
	}
	dash := service.BuildTeacherDashboard(snap, aggNow)
	assert.Equal(t, 7, dash.AvgJournalLength, "按字符数而非字节数统计")
}

func TestMostMissedSession(t *testing.T) {
	snap := &model.Snapshot{
		Sessions: []model.Session{
			{ID: 1, Title: "Session 1"},
			{ID: 2, Title: "Session 2"},
		},
		Progress: []model.Progress{
			{UserID: 1, SessionID: 2, Status: model.StatusInProgress, LastAccessed: aggNow},
			{UserID: 2, SessionID: 2, Status: model.StatusInProgress, LastAccessed: aggNow},
			{UserID: 1, SessionID: 1, Status: model.StatusCompleted, LastAccessed: aggNow},
		},
	}

	dash := service.BuildTeacherDashboard(snap, aggNow)
	assert.Equal(t, "Session 2", dash.MostMissedSession)
	assert.Equal(t, 2, dash.MissedCount)
}

func TestMostMissedTieTakesLowerID(t *testing.T) {
	snap := &model.Snapshot{
		Sessions: []model.Session{
			{ID: 1, Title: "Session 1"},
			{ID: 2, Title: "Session 2"},
		},
		Progress: []model.Progress{
			{UserID: 1, SessionID: 1, Status: model.StatusInProgress, LastAccessed: aggNow},
			{UserID: 1, SessionID: 2, Status: model.StatusInProgress, LastAccessed: aggNow},
		},
	}

	dash := service.BuildTeacherDashboard(snap, aggNow)
	assert.Equal(t, "Session 1", dash.MostMissedSession)
	assert.Equal(t, 1, dash.MissedCount)
}

func TestActiveStudentsWindow(t *testing.T) {
	snap := &model.Snapshot{
		Progress: []model.Progress{
			{UserID: 1, SessionID: 1, Status: model.StatusInProgress, LastAccessed: aggNow.Add(-time.Hour)},
			{UserID: 1, SessionID: 2, Status: model.StatusInProgress, LastAccessed: aggNow.Add(-2 * time.Hour)},
			{UserID: 2, SessionID: 1, Status: model.StatusInProgress, LastAccessed: aggNow.Add(-6 * 24 * time.Hour)},
			{UserID: 3, SessionID: 1, Status: model.StatusInProgress, LastAccessed: aggNow.Add(-8 * 24 * time.Hour)},
		},
	}

	dash := service.BuildTeacherDashboard(snap, aggNow)
	assert.Equal(t, 2, dash.ActiveStudents, "7天窗口外的学生不计为活跃，同一学生只计一次")
}

func TestStudentSummaryStatusAndCurrentSession(t *testing.T) {
	snap := &model.Snapshot{
		Students: []model.User{
			studentRow(1, "Alex", "Johnson", "alex@demo.edu"),
			studentRow(2, "Sam", "Lee", "sam@demo.edu"),
			studentRow(3, "Maria", "Garcia", "maria@demo.edu"),
		},
		Sessions: []model.Session{
			{ID: 1, Title: "Session 1"},
			{ID: 2, Title: "Session 2"},
		},
		Progress: []model.Progress{
			// Alex：完成1，进行中2 → 整体 in_progress，当前单元 Session 2
			{UserID: 1, SessionID: 1, Status: model.StatusCompleted, ReflectionText: strPtr("ok"), LastAccessed: aggNow.Add(-time.Hour), CompletedAt: timePtr(aggNow.Add(-time.Hour))},
			{UserID: 1, SessionID: 2, Status: model.StatusInProgress, LastAccessed: aggNow},
			// Sam：只有完成记录 → completed，已提交
			{UserID: 2, SessionID: 1, Status: model.StatusCompleted, ReflectionText: strPtr("done"), LastAccessed: aggNow.Add(-2 * time.Hour), CompletedAt: timePtr(aggNow.Add(-2 * time.Hour))},
		},
	}

	dash := service.BuildTeacherDashboard(snap, aggNow)
	require.Len(t, dash.Students, 3)

	alex := dash.Students[0]
	assert.Equal(t, "Alex Johnson", alex.Name)
	assert.Equal(t, model.StatusInProgress, alex.Status)
	assert.Equal(t, "Session 2", alex.CurrentSession)
	assert.True(t, alex.HasSubmitted)
	require.NotNil(t, alex.LastSeen)
	assert.True(t, alex.LastSeen.Equal(aggNow))

	sam := dash.Students[1]
	assert.Equal(t, model.StatusCompleted, sam.Status)
	assert.Equal(t, "N/A", sam.CurrentSession)
	assert.True(t, sam.HasSubmitted)

	// Maria 无任何记录 → 虚拟 not_started
	maria := dash.Students[2]
	assert.Equal(t, model.StatusNotStarted, maria.Status)
	assert.Equal(t, "N/A", maria.CurrentSession)
	assert.False(t, maria.HasSubmitted)
	assert.Nil(t, maria.LastSeen)
}

func TestCurrentSessionTieBreak(t *testing.T) {
	snap := &model.Snapshot{
		Students: []model.User{studentRow(1, "Alex", "Johnson", "alex@demo.edu")},
		Sessions: []model.Session{
			{ID: 1, Title: "Session 1"},
			{ID: 2, Title: "Session 2"},
		},
		Progress: []model.Progress{
			{UserID: 1, SessionID: 2, Status: model.StatusInProgress, LastAccessed: aggNow},
			{UserID: 1, SessionID: 1, Status: model.StatusInProgress, LastAccessed: aggNow},
		},
	}

	dash := service.BuildTeacherDashboard(snap, aggNow)
	require.Len(t, dash.Students, 1)
	assert.Equal(t, "Session 1", dash.Students[0].CurrentSession, "last_accessed 相同时取 id 较小的单元")
}

func TestRenderProgressCSVHeaderOnly(t *testing.T) {
	out := service.RenderProgressCSV(nil)
	assert.Equal(t, "ID,Name,Email,Current Session,Status,Submitted?,Last Seen", out)
}

func TestRenderProgressCSVRows(t *testing.T) {
	lastSeen := time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC)
	students := []model.StudentSummary{
		{
			ID:             1,
			Name:           "Alex Johnson",
			Email:          "alex@demo.edu",
			LastSeen:       &lastSeen,
			HasSubmitted:   true,
			CurrentSession: "Session 2",
			Status:         model.StatusInProgress,
		},
		{
			ID:             2,
			Name:           "Sam Lee",
			Email:          "sam@demo.edu",
			CurrentSession: "N/A",
			Status:         model.StatusNotStarted,
		},
	}

	out := service.RenderProgressCSV(students)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Name,Email,Current Session,Status,Submitted?,Last Seen", lines[0])
	assert.Equal(t, `1,"Alex Johnson",alex@demo.edu,"Session 2",in_progress,Yes,2026-03-09T08:30:00Z`, lines[1])
	assert.Equal(t, `2,"Sam Lee",sam@demo.edu,"N/A",not_started,No,Never`, lines[2])
}

func TestExportCSVFilename(t *testing.T) {
	store := inmem.NewStore()
	svc := service.NewAnalyticsService(store.Dashboard(), store.Users())

	filename, csv, err := svc.ExportCSV(time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "student-progress-2026-03-10.csv", filename)
	assert.Equal(t, "ID,Name,Email,Current Session,Status,Submitted?,Last Seen", csv)
}

func TestGetStudentDetail(t *testing.T) {
	store := inmem.NewStore()
	svc := service.NewAnalyticsService(store.Dashboard(), store.Users())

	student := &model.User{Email: "alex@demo.edu", Role: model.Student, FirstName: "Alex", LastName: "Johnson"}
	require.NoError(t, store.Users().Create(student))
	require.NoError(t, store.Sessions().Create(&model.Session{Title: "Session 1"}))
	require.NoError(t, store.Sessions().Create(&model.Session{Title: "Session 2"}))
	_, err := store.Progress().Complete(student.ID, 1, "reflection")
	require.NoError(t, err)

	detail, err := svc.GetStudentDetail(student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alex Johnson", detail.Name)
	require.Len(t, detail.Sessions, 2)
	assert.Equal(t, model.StatusCompleted, detail.Sessions[0].Status)
	assert.Equal(t, model.StatusNotStarted, detail.Sessions[1].Status)
}

func TestGetStudentDetailNotFound(t *testing.T) {
	store := inmem.NewStore()
	svc := service.NewAnalyticsService(store.Dashboard(), store.Users())

	_, err := svc.GetStudentDetail(404)
	assert.ErrorIs(t, err, util.ErrStudentNotFound)

	// 教师账号不算学生
	teacher := &model.User{Email: "t@demo.edu", Role: model.Teacher, FirstName: "Pat", LastName: "Kim"}
	require.NoError(t, store.Users().Create(teacher))
	_, err = svc.GetStudentDetail(teacher.ID)
	assert.ErrorIs(t, err, util.ErrStudentNotFound)
}

func TestTeacherDashboardEndToEnd(t *testing.T) {
	store := inmem.NewStore()
	store.Now = func() time.Time { return aggNow }
	progressSvc := service.NewProgressService(store.Progress(), store.Sessions())
	analyticsSvc := service.NewAnalyticsService(store.Dashboard(), store.Users())

	alex := &model.User{Email: "alex@demo.edu", Role: model.Student, FirstName: "Alex", LastName: "Johnson"}
	sam := &model.User{Email: "sam@demo.edu", Role: model.Student, FirstName: "Sam", LastName: "Lee"}
	require.NoError(t, store.Users().Create(alex))
	require.NoError(t, store.Users().Create(sam))
	require.NoError(t, store.Sessions().Create(&model.Session{Title: "Session 1"}))
	require.NoError(t, store.Sessions().Create(&model.Session{Title: "Session 2"}))

	_, err := progressSvc.StartOrResume(alex.ID, 1)
	require.NoError(t, err)
	_, err = progressSvc.Complete(alex.ID, 1, "Learned a lot today")
	require.NoError(t, err)
	_, err = progressSvc.StartOrResume(sam.ID, 1)
	require.NoError(t, err)

	dash, err := analyticsSvc.GetTeacherDashboard()
	require.NoError(t, err)

	assert.Equal(t, 2, dash.TotalStudents)
	assert.Equal(t, 19, dash.AvgJournalLength)
	assert.Equal(t, "Session 1", dash.MostMissedSession)
	assert.Equal(t, 1, dash.MissedCount)
	require.Len(t, dash.SessionStats, 2)
	assert.InDelta(t, 50.0, dash.SessionStats[0].CompletionRate, 0.001)
	assert.Equal(t, 0.0, dash.SessionStats[1].CompletionRate)
}
