package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suimail/backend/internal/auth/jwt"
	"suimail/backend/internal/domain"
	"suimail/backend/internal/storage/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	manager := jwt.NewManager("test-secret-key-32-chars-long-minimum!!", "suimail", time.Hour)
	return NewService(store, manager), store
}

func seedUser(t *testing.T, store *memory.Store, wallet, passwordHash string) {
	t.Helper()
	require.NoError(t, store.CreateUser(&domain.User{
		WalletAddress: wallet,
		Username:      "alice",
		PasswordHash:  passwordHash,
		CreatedAt:     time.Now().UTC(),
	}))
}

func TestIssueToken(t *testing.T) {
	t.Run("无密码账户直接签发", func(t *testing.T) {
		svc, store := newTestService(t)
		seedUser(t, store, "0xabc123", "")

		token, err := svc.IssueToken("0xabc123", "")

		require.NoError(t, err)
		assert.NotEmpty(t, token.AccessToken)
		assert.Equal(t, "bearer", token.TokenType)
	})

	t.Run("密码账户校验通过后签发", func(t *testing.T) {
		svc, store := newTestService(t)
		hash, err := HashPassword("correct-password")
		require.NoError(t, err)
		seedUser(t, store, "0xabc123", hash)

		token, err := svc.IssueToken("0xabc123", "correct-password")

		require.NoError(t, err)
		assert.NotEmpty(t, token.AccessToken)
	})

	t.Run("密码错误拒绝签发", func(t *testing.T) {
		svc, store := newTestService(t)
		hash, err := HashPassword("correct-password")
		require.NoError(t, err)
		seedUser(t, store, "0xabc123", hash)

		_, err = svc.IssueToken("0xabc123", "wrong-password")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("未注册钱包拒绝签发", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.IssueToken("0xabc123", "")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("无效钱包地址拒绝签发", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.IssueToken("not-a-wallet", "")

		assert.ErrorIs(t, err, ErrInvalidWallet)
	})
}

func TestValidateWallet(t *testing.T) {
	assert.True(t, ValidateWallet("0xabc123"))
	assert.True(t, ValidateWallet("0xABCDEF0123456789abcdef0123456789abcdef0123456789abcdef0123456789"))
	assert.False(t, ValidateWallet("abc123"))
	assert.False(t, ValidateWallet("0x"))
	assert.False(t, ValidateWallet("0xzz"))
	assert.False(t, ValidateWallet(""))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("12345678"))
	assert.Error(t, ValidatePassword("short"))
}
