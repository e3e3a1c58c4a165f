package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-32-chars-long-minimum!!"

func TestGenerate(t *testing.T) {
	manager := NewManager(testSecret, "suimail", time.Hour)

	t.Run("签发令牌成功", func(t *testing.T) {
		token, err := manager.Generate("0xabc123")

		require.NoError(t, err)
		assert.NotEmpty(t, token.AccessToken)
		assert.Equal(t, "bearer", token.TokenType)
		assert.Equal(t, int64(3600), token.ExpiresIn)
	})

	t.Run("每次签发的JTI不同", func(t *testing.T) {
		token1, err := manager.Generate("0xabc123")
		require.NoError(t, err)
		token2, err := manager.Generate("0xabc123")
		require.NoError(t, err)

		claims1, err := manager.ValidateToken(token1.AccessToken)
		require.NoError(t, err)
		claims2, err := manager.ValidateToken(token2.AccessToken)
		require.NoError(t, err)

		assert.NotEqual(t, claims1.ID, claims2.ID)
	})
}

func TestValidateToken(t *testing.T) {
	manager := NewManager(testSecret, "suimail", time.Hour)

	t.Run("验证有效令牌成功", func(t *testing.T) {
		token, err := manager.Generate("0xabc123")
		require.NoError(t, err)

		claims, err := manager.ValidateToken(token.AccessToken)

		require.NoError(t, err)
		assert.Equal(t, "0xabc123", claims.WalletAddress)
		assert.Equal(t, "0xabc123", claims.Subject)
		assert.Equal(t, "suimail", claims.Issuer)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("过期令牌返回ErrExpiredToken", func(t *testing.T) {
		expired := NewManager(testSecret, "suimail", -time.Minute)
		token, err := expired.Generate("0xabc123")
		require.NoError(t, err)

		_, err = manager.ValidateToken(token.AccessToken)

		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("错误密钥签名的令牌无效", func(t *testing.T) {
		other := NewManager("another-secret-key-32-chars-long-min!!!", "suimail", time.Hour)
		token, err := other.Generate("0xabc123")
		require.NoError(t, err)

		_, err = manager.ValidateToken(token.AccessToken)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("畸形令牌无效", func(t *testing.T) {
		_, err := manager.ValidateToken("not-a-jwt")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractWallet(t *testing.T) {
	manager := NewManager(testSecret, "suimail", time.Hour)

	t.Run("不验证有效性也能提取钱包", func(t *testing.T) {
		expired := NewManager(testSecret, "suimail", -time.Minute)
		token, err := expired.Generate("0xdef456")
		require.NoError(t, err)

		wallet, err := manager.ExtractWallet(token.AccessToken)

		require.NoError(t, err)
		assert.Equal(t, "0xdef456", wallet)
	})
}
