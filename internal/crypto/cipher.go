package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// KeySize AES-256 密钥长度（字节）
	KeySize = 32
)

var (
	// ErrDecryptFailed 密文无法解密（密钥不匹配或数据损坏）
	ErrDecryptFailed = errors.New("decrypt failed")
	// ErrInvalidKey 密钥长度不合法
	ErrInvalidKey = errors.New("cipher key must be 32 bytes")
)

// Cipher 消息正文的静态加密服务（AES-256-GCM）。
//
// 密钥在初始化时注入，之后只读；密文编码为 base64(nonce || sealed)，
// 可直接存入 TEXT 列。
type Cipher struct {
	aead cipher.AEAD
}

// New 使用给定密钥创建加密服务。
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt 加密消息正文。
//
// 空正文返回空字符串（显式的"无内容"标记），而不是空密文。
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt 解密存储的密文。
//
// 密文由不同密钥生成或已损坏时返回 ErrDecryptFailed；
// 空密文对应"无内容"，解密为空字符串。
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecryptFailed
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrDecryptFailed
	}

	plaintext, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

// GenerateKey 生成随机的 AES-256 密钥。
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// LoadOrCreateKeyFile 从文件加载密钥；文件不存在时生成并持久化。
//
// 密钥必须有显式的生命周期：进程重启后仍能解密历史密文，
// 因此绝不允许"生成后即丢弃"的临时密钥。
func LoadOrCreateKeyFile(path string) ([]byte, error) {
	if data, err := os.ReadFile(path); err == nil {
		key, err := base64.StdEncoding.DecodeString(string(data))
		if err != nil || len(key) != KeySize {
			return nil, fmt.Errorf("invalid key file %s", path)
		}
		return key, nil
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(key)
	if err := os.WriteFile(path, []byte(encoded), 0600); err != nil {
		return nil, fmt.Errorf("persist key file: %w", err)
	}

	return key, nil
}
