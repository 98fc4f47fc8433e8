package controller

import (
	"errors"
	"fmt"
	"net/http"
	"student_dashboard_backend/internal/service"
	"student_dashboard_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type TeacherController struct {
	AnalyticsService *service.AnalyticsService
	SessionService   *service.SessionService
}

func NewTeacherController(analyticsService *service.AnalyticsService, sessionService *service.SessionService) *TeacherController {
	return &TeacherController{
		AnalyticsService: analyticsService,
		SessionService:   sessionService,
	}
}

// GetDashboard godoc
// @Summary 教师仪表盘
// @Description 学生列表、各单元完成率、平均反思长度、缺课最多的单元、活跃学生数
// @Tags 教师
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.TeacherDashboard} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Failure 403 {object} util.Response "角色不符"
// @Router /api/teacher/dashboard [get]
func (c *TeacherController) GetDashboard(ctx *gin.Context) {
	dashboard, err := c.AnalyticsService.GetTeacherDashboard()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}

// ExportCSV godoc
// @Summary 导出学生进度 CSV
// @Tags 教师
// @Produce  text/csv
// @Security ApiKeyAuth
// @Success 200 {string} string "CSV 内容"
// @Router /api/teacher/export/csv [get]
func (c *TeacherController) ExportCSV(ctx *gin.Context) {
	filename, csv, err := c.AnalyticsService.ExportCSV(time.Now())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Data(http.StatusOK, "text/csv", []byte(csv))
}

type ReminderRequest struct {
	StudentIDs []uint `json:"studentIds"`
}

// SendReminder godoc
// @Summary 给学生发送提醒
// @Description 目前只记录并确认，不实际投递通知
// @Tags 教师
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ReminderRequest true "学生ID列表"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "未选择学生"
// @Router /api/teacher/reminder [post]
func (c *TeacherController) SendReminder(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ReminderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || len(req.StudentIDs) == 0 {
		util.BadRequest(ctx, "No students selected")
		return
	}

	c.AnalyticsService.SendReminders(user.UserID, req.StudentIDs)
	util.Success(ctx, gin.H{"message": "Reminder sent successfully"})
}

// GetStudent godoc
// @Summary 查看单个学生
// @Description 学生档案与全部学习单元的进度
// @Tags 教师
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "学生ID"
// @Success 200 {object} util.Response{data=model.StudentDetail} "成功"
// @Failure 404 {object} util.Response "学生不存在"
// @Router /api/teacher/student/{id} [get]
func (c *TeacherController) GetStudent(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "无效的学生ID")
		return
	}

	detail, err := c.AnalyticsService.GetStudentDetail(id)
	if err != nil {
		if errors.Is(err, util.ErrStudentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, detail)
}

// ListSessions godoc
// @Summary 学习单元列表
// @Tags 教师
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Session} "成功"
// @Router /api/teacher/sessions [get]
func (c *TeacherController) ListSessions(ctx *gin.Context) {
	sessions, err := c.SessionService.ListSessions()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, sessions)
}

type CreateSessionRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// CreateSession godoc
// @Summary 创建学习单元
// @Description 学习单元创建后不可修改
// @Tags 教师
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CreateSessionRequest true "单元信息"
// @Success 201 {object} util.Response{data=model.Session} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/teacher/sessions [post]
func (c *TeacherController) CreateSession(ctx *gin.Context) {
	var req CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.SessionService.CreateSession(req.Title, req.Description)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, session)
}
