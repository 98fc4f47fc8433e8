package service

import (
	"context"
	"errors"
	"student_dashboard_backend/internal/config"
	"student_dashboard_backend/internal/model"
	"student_dashboard_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo UserStore
	Denylist TokenRevoker
	Cfg      *config.Config
}

func NewAuthService(userRepo UserStore, denylist TokenRevoker, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Denylist: denylist,
		Cfg:      cfg,
	}
}

func (s *AuthService) Register(user *model.User) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	return s.UserRepo.Create(user)
}

// Login 校验凭据并签发令牌
// 角色必须与登录入口一致（isTeacher 对应 teacher），不一致视同凭据错误
func (s *AuthService) Login(email, password string, isTeacher bool) (*model.User, string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return nil, "", util.ErrInvalidCredentials
	}

	expectedRole := model.Student
	if isTeacher {
		expectedRole = model.Teacher
	}
	if user.Role != expectedRole {
		return nil, "", util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout 将当前令牌加入拒绝名单，TTL 为令牌剩余有效期
// 令牌无效或名单不可用时静默处理：Cookie 总是会被清除
func (s *AuthService) Logout(ctx context.Context, tokenString string) {
	if tokenString == "" || s.Denylist == nil {
		return
	}
	claims, err := util.ParseJWT(tokenString, s.Cfg.JWT.Secret)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	s.Denylist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, _ := s.UserRepo.FindByID(claims.UserID)
	return user
}
