package util_test

import (
	"testing"
	"time"

	"student_dashboard_backend/internal/model"
	"student_dashboard_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "jwt-test-secret"

func testUser() *model.User {
	u := &model.User{
		Email:     "alex@demo.edu",
		Role:      model.Student,
		FirstName: "Alex",
		LastName:  "Johnson",
	}
	u.ID = 7
	return u
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := util.GenerateJWT(testUser(), testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := util.ParseJWT(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.Student, claims.Role)
	assert.Equal(t, "alex@demo.edu", claims.Email)
	assert.Equal(t, "Alex", claims.FirstName)
	assert.NotEmpty(t, claims.ID, "每个令牌都携带唯一 jti，登出时写入拒绝名单")
	require.NotNil(t, claims.ExpiresAt)
}

func TestJWTUniqueID(t *testing.T) {
	first, err := util.GenerateJWT(testUser(), testSecret, time.Hour)
	require.NoError(t, err)
	second, err := util.GenerateJWT(testUser(), testSecret, time.Hour)
	require.NoError(t, err)

	a, err := util.ParseJWT(first, testSecret)
	require.NoError(t, err)
	b, err := util.ParseJWT(second, testSecret)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestJWTExpired(t *testing.T) {
	token, err := util.GenerateJWT(testUser(), testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = util.ParseJWT(token, testSecret)
	assert.Error(t, err)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := util.GenerateJWT(testUser(), testSecret, time.Hour)
	require.NoError(t, err)

	_, err = util.ParseJWT(token, "another-secret")
	assert.Error(t, err)
}
