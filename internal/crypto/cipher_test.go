package crypto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipher_RoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	c, err := New(key)
	require.NoError(t, err)

	t.Run("加密解密往返一致", func(t *testing.T) {
		for _, body := range []string{"hello", "你好，链上世界", "a", string(make([]byte, 4096))} {
			ciphertext, err := c.Encrypt(body)
			assert.NoError(t, err)
			assert.NotEqual(t, body, ciphertext)

			plaintext, err := c.Decrypt(ciphertext)
			assert.NoError(t, err)
			assert.Equal(t, body, plaintext)
		}
	})

	t.Run("空正文返回无内容标记", func(t *testing.T) {
		ciphertext, err := c.Encrypt("")
		assert.NoError(t, err)
		assert.Empty(t, ciphertext)

		plaintext, err := c.Decrypt("")
		assert.NoError(t, err)
		assert.Empty(t, plaintext)
	})

	t.Run("相同明文产生不同密文", func(t *testing.T) {
		c1, err := c.Encrypt("same body")
		require.NoError(t, err)
		c2, err := c.Encrypt("same body")
		require.NoError(t, err)
		assert.NotEqual(t, c1, c2) // 随机 nonce
	})
}

func TestCipher_WrongKey(t *testing.T) {
	key1, err := GenerateKey()
	require.NoError(t, err)
	key2, err := GenerateKey()
	require.NoError(t, err)

	c1, err := New(key1)
	require.NoError(t, err)
	c2, err := New(key2)
	require.NoError(t, err)

	ciphertext, err := c1.Encrypt("secret")
	require.NoError(t, err)

	_, err = c2.Decrypt(ciphertext)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestCipher_CorruptedCiphertext(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	c, err := New(key)
	require.NoError(t, err)

	t.Run("非base64输入", func(t *testing.T) {
		_, err := c.Decrypt("not-base64!!!")
		assert.ErrorIs(t, err, ErrDecryptFailed)
	})

	t.Run("密文过短", func(t *testing.T) {
		_, err := c.Decrypt("YWJj") // "abc"
		assert.ErrorIs(t, err, ErrDecryptFailed)
	})

	t.Run("密文被篡改", func(t *testing.T) {
		ciphertext, err := c.Encrypt("tamper me")
		require.NoError(t, err)

		corrupted := []byte(ciphertext)
		corrupted[len(corrupted)-5] ^= 'x'
		_, err = c.Decrypt(string(corrupted))
		assert.ErrorIs(t, err, ErrDecryptFailed)
	})
}

func TestNew_InvalidKey(t *testing.T) {
	_, err := New([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLoadOrCreateKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cipher.key")

	key1, err := LoadOrCreateKeyFile(path)
	require.NoError(t, err)
	assert.Len(t, key1, KeySize)

	// 第二次加载得到同一密钥（重启后历史密文仍可解密）
	key2, err := LoadOrCreateKeyFile(path)
	require.NoError(t, err)
	assert.Equal(t, key1, key2)

	t.Run("损坏的密钥文件", func(t *testing.T) {
		badPath := filepath.Join(t.TempDir(), "bad.key")
		require.NoError(t, os.WriteFile(badPath, []byte("garbage"), 0600))

		_, err := LoadOrCreateKeyFile(badPath)
		assert.Error(t, err)
	})
}
