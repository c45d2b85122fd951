package services

import (
	"or_flow_app_go/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Session{}))
	return db
}

func createAuthTestUser(t *testing.T, db *gorm.DB, email, password string, active bool) *models.User {
	hash, err := HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Name:     "Test Nurse",
		Email:    email,
		Password: hash,
		Role:     models.RoleNurse,
		IsActive: active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPassword("correct horse battery staple", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestGenerateSessionToken(t *testing.T) {
	a, err := GenerateSessionToken()
	require.NoError(t, err)
	b, err := GenerateSessionToken()
	require.NoError(t, err)

	assert.Len(t, a, SessionTokenLength*2) // hex encoding
	assert.NotEqual(t, a, b)
}

func TestSignedSessionTokens(t *testing.T) {
	token, err := GenerateSessionToken()
	require.NoError(t, err)

	signed := SignSessionToken("session-secret-a", token)
	assert.NotEqual(t, token, signed)

	t.Run("Round Trip", func(t *testing.T) {
		got, ok := VerifySignedSessionToken("session-secret-a", signed)
		assert.True(t, ok)
		assert.Equal(t, token, got)
	})

	t.Run("Wrong Secret Rejected", func(t *testing.T) {
		_, ok := VerifySignedSessionToken("session-secret-b", signed)
		assert.False(t, ok)
	})

	t.Run("Tampered Token Rejected", func(t *testing.T) {
		other, err := GenerateSessionToken()
		require.NoError(t, err)

		forged := other + signed[len(token):] // someone else's token, original signature
		_, ok := VerifySignedSessionToken("session-secret-a", forged)
		assert.False(t, ok)
	})

	t.Run("Unsigned Value Rejected", func(t *testing.T) {
		_, ok := VerifySignedSessionToken("session-secret-a", token)
		assert.False(t, ok)
	})

	t.Run("No Secret Passes Through", func(t *testing.T) {
		assert.Equal(t, token, SignSessionToken("", token))
		got, ok := VerifySignedSessionToken("", token)
		assert.True(t, ok)
		assert.Equal(t, token, got)
	})
}

func TestAuthenticate(t *testing.T) {
	db := setupAuthTestDB(t)
	createAuthTestUser(t, db, "nurse@hospital.test", "password123", true)
	createAuthTestUser(t, db, "inactive@hospital.test", "password123", false)

	t.Run("Valid Credentials", func(t *testing.T) {
		user, err := Authenticate(db, "nurse@hospital.test", "password123")
		require.NoError(t, err)
		assert.Equal(t, "nurse@hospital.test", user.Email)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		_, err := Authenticate(db, "nurse@hospital.test", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		_, err := Authenticate(db, "ghost@hospital.test", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Inactive Account", func(t *testing.T) {
		_, err := Authenticate(db, "inactive@hospital.test", "password123")
		assert.ErrorIs(t, err, ErrUserInactive)
	})
}

func TestSessions(t *testing.T) {
	db := setupAuthTestDB(t)
	user := createAuthTestUser(t, db, "nurse@hospital.test", "password123", true)

	t.Run("Create And Validate", func(t *testing.T) {
		session, err := CreateSession(db, user.ID, "10.0.0.1", "tracker-tablet")
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)

		validated, err := ValidateSession(db, session.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, validated.UserID)
		assert.Equal(t, user.Email, validated.User.Email)
	})

	t.Run("Expired Session Is Deleted", func(t *testing.T) {
		session, err := CreateSession(db, user.ID, "10.0.0.1", "tracker-tablet")
		require.NoError(t, err)

		db.Model(&models.Session{}).Where("token = ?", session.Token).
			Update("expires_at", time.Now().Add(-time.Minute))

		_, err = ValidateSession(db, session.Token)
		assert.Error(t, err)

		var count int64
		db.Model(&models.Session{}).Where("token = ?", session.Token).Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Logout Deletes", func(t *testing.T) {
		session, err := CreateSession(db, user.ID, "10.0.0.1", "tracker-tablet")
		require.NoError(t, err)
		require.NoError(t, DeleteSession(db, session.Token))

		_, err = ValidateSession(db, session.Token)
		assert.Error(t, err)
	})

	t.Run("Cleanup Removes Only Expired", func(t *testing.T) {
		fresh, err := CreateSession(db, user.ID, "10.0.0.1", "tracker-tablet")
		require.NoError(t, err)
		stale, err := CreateSession(db, user.ID, "10.0.0.1", "tracker-tablet")
		require.NoError(t, err)
		db.Model(&models.Session{}).Where("token = ?", stale.Token).
			Update("expires_at", time.Now().Add(-time.Minute))

		require.NoError(t, CleanupExpiredSessions(db))

		_, err = ValidateSession(db, fresh.Token)
		assert.NoError(t, err)
		var count int64
		db.Model(&models.Session{}).Where("token = ?", stale.Token).Count(&count)
		assert.Equal(t, int64(0), count)
	})
}
