package middleware

import (
	"context"
	"strings"
	"student_dashboard_backend/internal/config"
	"student_dashboard_backend/internal/model"
	"student_dashboard_backend/internal/util"
	"student_dashboard_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenChecker 判断令牌是否已被注销（登出后的拒绝名单）
type TokenChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware 认证中间件：优先读取 HttpOnly Cookie，兼容 Bearer 头
// 校验通过后把解析出的 Claims 放入请求上下文，后续处理不再依赖任何全局状态
func AuthMiddleware(cfg *config.Config, denylist TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(util.TokenCookieName)
		if err != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" {
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if denylist != nil && claims.ID != "" {
			revoked, err := denylist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// 拒绝名单不可用时放行，令牌本身仍然有效
				logger.Log.Warn("token denylist check failed", zap.Error(err))
			} else if revoked {
				util.Unauthorized(c)
				c.Abort()
				return
			}
		}

		c.Set("user", claims)
		c.Next()
	}
}

// RoleMiddleware 角色检查：声明式地限定路由组所需角色
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
