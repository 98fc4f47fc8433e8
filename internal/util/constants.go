package util

import "time"

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	// TokenCookieName 携带身份令牌的 HttpOnly Cookie 名
	TokenCookieName = "token"
	// TokenCookieMaxAge 与令牌有效期保持一致
	TokenCookieMaxAge = 24 * 3600
)

// ActiveWindow 活跃学生的统计窗口
const ActiveWindow = 7 * 24 * time.Hour

// 头像上传相关常量
const (
	MimeImage    = "image/"
	MaxAvatarMB  = 5
	MaxAvatarLen = MaxAvatarMB << 20
)
