package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"student_dashboard_backend/internal/config"
	"student_dashboard_backend/internal/middleware"
	"student_dashboard_backend/internal/model"
	"student_dashboard_backend/internal/repository/inmem"
	"student_dashboard_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	cfg.JWT.ExpireTime = time.Hour
	return cfg
}

func newRouter(denylist middleware.TokenChecker, roles ...model.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{middleware.AuthMiddleware(testConfig(), denylist)}
	if len(roles) > 0 {
		handlers = append(handlers, middleware.RoleMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": claims.UserID})
	})
	r.GET("/protected", handlers...)
	return r
}

func signToken(t *testing.T, role model.UserRole) string {
	t.Helper()
	user := &model.User{Email: "alex@demo.edu", Role: role, FirstName: "Alex", LastName: "Johnson"}
	user.ID = 7
	token, err := util.GenerateJWT(user, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func doRequest(r *gin.Engine, setup func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if setup != nil {
		setup(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMissingToken(t *testing.T) {
	w := doRequest(newRouter(nil), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMalformedToken(t *testing.T) {
	w := doRequest(newRouter(nil), func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: util.TokenCookieName, Value: "not-a-jwt"})
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthCookie(t *testing.T) {
	token := signToken(t, model.Student)
	w := doRequest(newRouter(nil), func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: util.TokenCookieName, Value: token})
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthBearerFallback(t *testing.T) {
	token := signToken(t, model.Student)
	w := doRequest(newRouter(nil), func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthExpiredToken(t *testing.T) {
	user := &model.User{Email: "alex@demo.edu", Role: model.Student, FirstName: "Alex", LastName: "Johnson"}
	user.ID = 7
	token, err := util.GenerateJWT(user, testSecret, -time.Minute)
	require.NoError(t, err)

	w := doRequest(newRouter(nil), func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: util.TokenCookieName, Value: token})
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// 登出后的令牌即使未过期也会被拒绝
func TestAuthRevokedToken(t *testing.T) {
	denylist := inmem.NewDenylist()
	token := signToken(t, model.Student)

	claims, err := util.ParseJWT(token, testSecret)
	require.NoError(t, err)
	require.NoError(t, denylist.Revoke(context.Background(), claims.ID, time.Hour))

	w := doRequest(newRouter(denylist), func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: util.TokenCookieName, Value: token})
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleAllowed(t *testing.T) {
	token := signToken(t, model.Teacher)
	w := doRequest(newRouter(nil, model.Teacher), func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: util.TokenCookieName, Value: token})
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

// 学生令牌访问教师路由返回 403 而不是 401：已认证，但角色不符
func TestRoleForbidden(t *testing.T) {
	token := signToken(t, model.Student)
	w := doRequest(newRouter(nil, model.Teacher), func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: util.TokenCookieName, Value: token})
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
