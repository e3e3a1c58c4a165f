package auth

import (
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"suimail/backend/internal/auth/jwt"
	"suimail/backend/internal/domain"
	"suimail/backend/internal/storage"
)

var (
	// ErrInvalidWallet 无效的钱包地址格式
	ErrInvalidWallet = errors.New("invalid wallet address")
	// ErrInvalidCredentials 凭证无效
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
)

// Sui 地址为 0x 前缀的十六进制串，规范形式 32 字节
var walletRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{1,64}$`)

// Service 认证服务
//
// 身份即钱包地址：令牌只证明调用方声明了某个钱包。
// 密码是可选的二级凭证，设置后登录必须提供。
type Service struct {
	userRepo storage.UserRepository
	tokens   *jwt.Manager
}

// NewService 创建认证服务
func NewService(userRepo storage.UserRepository, tokens *jwt.Manager) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// IssueToken 验证钱包凭证并签发访问令牌
func (s *Service) IssueToken(walletAddress, password string) (*jwt.Token, error) {
	if !ValidateWallet(walletAddress) {
		return nil, ErrInvalidWallet
	}

	user, err := s.userRepo.GetUser(walletAddress)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 设置过密码的账户必须校验密码
	if user.PasswordHash != "" && !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.tokens.Generate(user.WalletAddress)
}

// GetUser 根据钱包地址获取用户
func (s *Service) GetUser(walletAddress string) (*domain.User, error) {
	user, err := s.userRepo.GetUser(walletAddress)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ValidateWallet 验证钱包地址格式
func ValidateWallet(walletAddress string) bool {
	return walletRegex.MatchString(walletAddress)
}

// ValidatePassword 验证密码强度
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > 72 {
		return errors.New("password must be at most 72 characters")
	}
	return nil
}

// HashPassword 哈希密码
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword 检查密码是否匹配
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
