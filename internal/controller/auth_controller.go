package controller

import (
	"errors"
	"net/http"
	"student_dashboard_backend/internal/model"
	"student_dashboard_backend/internal/service"
	"student_dashboard_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	IsRelease   bool // 是否为生产环境
}

func NewAuthController(authService *service.AuthService, isRelease bool) *AuthController {
	return &AuthController{
		AuthService: authService,
		IsRelease:   isRelease,
	}
}

// RegisterRequest defines model for registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required,oneof=student teacher"`
}

// Register godoc
// @Summary 注册新用户
// @Description 使用提供的信息注册新用户
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := &model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      model.UserRole(req.Role),
	}

	if err := c.AuthService.Register(user); err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.Error(ctx, http.StatusConflict, "该邮箱已被注册")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"id": user.ID})
}

// swagger:model LoginRequest
type LoginRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	IsTeacher bool   `json:"isTeacher"`
}

// Login godoc
// @Summary 用户登录
// @Description 验证凭据与登录入口角色，签发令牌并写入 HttpOnly Cookie
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "用户登录凭据"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "凭据或角色不匹配"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Email and password are required")
		return
	}

	user, token, err := c.AuthService.Login(req.Email, req.Password, req.IsTeacher)
	if err != nil {
		util.Error(ctx, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(util.TokenCookieName, token, util.TokenCookieMaxAge, "/", "", c.IsRelease, true)

	util.Success(ctx, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"role":      user.Role,
	})
}

// Logout godoc
// @Summary 用户登出
// @Description 无条件清除令牌 Cookie，并将令牌加入拒绝名单
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response "成功"
// @Router /api/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if token, err := ctx.Cookie(util.TokenCookieName); err == nil {
		c.AuthService.Logout(ctx.Request.Context(), token)
	}

	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(util.TokenCookieName, "", -1, "/", "", c.IsRelease, true)

	util.Success(ctx, gin.H{"message": "Logout successful"})
}

// GetProfile godoc
// @Summary 获取当前用户资料
// @Description 获取当前已认证用户的个人资料
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"role":      user.Role,
		"avatar":    user.Avatar,
		"createdAt": user.CreatedAt,
	})
}
