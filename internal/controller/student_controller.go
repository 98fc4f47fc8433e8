package controller

import (
	"errors"
	"student_dashboard_backend/internal/service"
	"student_dashboard_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	DashboardService *service.DashboardService
	ProgressService  *service.ProgressService
}

func NewStudentController(dashboardService *service.DashboardService, progressService *service.ProgressService) *StudentController {
	return &StudentController{
		DashboardService: dashboardService,
		ProgressService:  progressService,
	}
}

// GetDashboard godoc
// @Summary 学生仪表盘
// @Description 返回未完成/已完成单元、反思历史与完成统计
// @Tags 学生
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.StudentDashboard} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Failure 403 {object} util.Response "角色不符"
// @Router /api/student/dashboard [get]
func (c *StudentController) GetDashboard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.DashboardService.GetStudentDashboard(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}

type StartSessionRequest struct {
	SessionID uint `json:"sessionId" binding:"required"`
}

// StartSession godoc
// @Summary 开始或继续学习单元
// @Description 首次访问创建进度记录，重复访问刷新活动时间，已完成的单元保持完成态
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body StartSessionRequest true "学习单元ID"
// @Success 200 {object} util.Response{data=model.Progress} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "学习单元不存在"
// @Router /api/student/session [post]
func (c *StudentController) StartSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Session ID is required")
		return
	}

	progress, err := c.ProgressService.StartOrResume(user.UserID, req.SessionID)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, progress)
}

type CompleteSessionRequest struct {
	SessionID  uint   `json:"sessionId" binding:"required"`
	Reflection string `json:"reflection"`
}

// CompleteSession godoc
// @Summary 完成学习单元
// @Description 提交反思并把进度置为 completed 终态，重复提交幂等
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CompleteSessionRequest true "学习单元ID与反思内容"
// @Success 200 {object} util.Response{data=model.Progress} "成功"
// @Failure 400 {object} util.Response "反思内容为空"
// @Failure 404 {object} util.Response "学习单元不存在"
// @Router /api/student/session/complete [post]
func (c *StudentController) CompleteSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CompleteSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Session ID is required")
		return
	}

	progress, err := c.ProgressService.Complete(user.UserID, req.SessionID, req.Reflection)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrEmptyReflection):
			util.BadRequest(ctx, "Reflection text is required")
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, progress)
}
