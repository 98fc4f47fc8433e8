package controller_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"student_dashboard_backend/internal/config"
	"student_dashboard_backend/internal/controller"
	"student_dashboard_backend/internal/model"
	"student_dashboard_backend/internal/repository/inmem"
	"student_dashboard_backend/internal/service"
	"student_dashboard_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := inmem.NewStore()
	cfg := &config.Config{}
	cfg.JWT.Secret = "controller-test-secret"
	cfg.JWT.ExpireTime = time.Hour

	authSvc := service.NewAuthService(store.Users(), inmem.NewDenylist(), cfg)
	authCtrl := controller.NewAuthController(authSvc, false)

	r := gin.New()
	r.POST("/api/register", authCtrl.Register)
	r.POST("/api/login", authCtrl.Login)
	r.POST("/api/logout", authCtrl.Logout)
	return r, authSvc
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedStudent(t *testing.T, svc *service.AuthService) {
	t.Helper()
	require.NoError(t, svc.Register(&model.User{
		Email:     "alex@demo.edu",
		Password:  "password123",
		Role:      model.Student,
		FirstName: "Alex",
		LastName:  "Johnson",
	}))
}

func TestRegisterEndpoint(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postJSON(r, "/api/register",
		`{"firstName":"Alex","lastName":"Johnson","email":"alex@demo.edu","password":"password123","role":"student"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	// 同邮箱再次注册
	w = postJSON(r, "/api/register",
		`{"firstName":"Alex","lastName":"Johnson","email":"alex@demo.edu","password":"password123","role":"student"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newAuthRouter(t)

	// 密码太短
	w := postJSON(r, "/api/register",
		`{"firstName":"Alex","lastName":"Johnson","email":"alex@demo.edu","password":"short","role":"student"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 非法角色
	w = postJSON(r, "/api/register",
		`{"firstName":"Alex","lastName":"Johnson","email":"alex@demo.edu","password":"password123","role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginSetsHttpOnlyCookie(t *testing.T) {
	r, svc := newAuthRouter(t)
	seedStudent(t, svc)

	w := postJSON(r, "/api/login", `{"email":"alex@demo.edu","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	var tokenCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == util.TokenCookieName {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie)
	assert.NotEmpty(t, tokenCookie.Value)
	assert.True(t, tokenCookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, tokenCookie.SameSite)
}

func TestLoginInvalidCredentials(t *testing.T) {
	r, svc := newAuthRouter(t)
	seedStudent(t, svc)

	w := postJSON(r, "/api/login", `{"email":"alex@demo.edu","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

// 学生账号从教师入口登录返回 401，与密码错误不可区分
func TestLoginRoleMismatch(t *testing.T) {
	r, svc := newAuthRouter(t)
	seedStudent(t, svc)

	w := postJSON(r, "/api/login", `{"email":"alex@demo.edu","password":"password123","isTeacher":true}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestLoginMissingFields(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postJSON(r, "/api/login", `{"email":"alex@demo.edu"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email and password are required")
}

// 登出总是返回 200 并清除 Cookie，无论是否携带有效令牌
func TestLogoutAlwaysClearsCookie(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postJSON(r, "/api/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, util.TokenCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}
