package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"suimail/backend/internal/auth"
	"suimail/backend/internal/chain"
	"suimail/backend/internal/domain"
	"suimail/backend/internal/storage"
	"suimail/backend/internal/storage/redis"
)

var (
	// ErrWalletTaken 钱包地址已注册
	ErrWalletTaken = errors.New("wallet already registered")
	// ErrProfileNotFound 档案不存在
	ErrProfileNotFound = errors.New("profile not found")
	// ErrUsernameRequired 用户名不能为空
	ErrUsernameRequired = errors.New("username is required")
)

// 档案缓存有效期
const profileCacheTTL = 5 * time.Minute

// IdentityService 封装用户档案相关业务操作。
//
// 写路径先上链后落库：链上调用失败时镜像保持原状。
type IdentityService struct {
	users  storage.UserRepository
	caller *chain.Caller
	cache  *redis.Cache // 可选，nil 时直接读库
	log    *zap.Logger
}

// NewIdentityService 创建档案业务服务。
func NewIdentityService(users storage.UserRepository, caller *chain.Caller, cache *redis.Cache, log *zap.Logger) *IdentityService {
	if log == nil {
		log = zap.NewNop()
	}
	return &IdentityService{
		users:  users,
		caller: caller,
		cache:  cache,
		log:    log,
	}
}

// RegisterInput 定义注册档案所需的输入。
type RegisterInput struct {
	WalletAddress string
	Username      string
	DisplayName   string
	Bio           string
	AvatarCID     string
	Password      string // 可选的二级凭证
}

// Register 注册新用户档案。
//
// 链上同一个交易块内创建档案并初始化邮箱，成功后写入镜像。
func (s *IdentityService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if !auth.ValidateWallet(input.WalletAddress) {
		return nil, auth.ErrInvalidWallet
	}
	if input.Username == "" {
		return nil, ErrUsernameRequired
	}

	var passwordHash string
	if input.Password != "" {
		if err := auth.ValidatePassword(input.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = hash
	}

	if _, err := s.caller.RegisterProfile(ctx,
		input.WalletAddress, input.Username, input.DisplayName, input.Bio, input.AvatarCID,
	); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		WalletAddress: input.WalletAddress,
		Username:      input.Username,
		DisplayName:   input.DisplayName,
		Bio:           input.Bio,
		AvatarCID:     input.AvatarCID,
		PasswordHash:  passwordHash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.users.CreateUser(user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, ErrWalletTaken
		}
		return nil, err
	}

	s.log.Info("profile registered",
		zap.String("wallet", user.WalletAddress),
		zap.String("username", user.Username),
	)

	return user, nil
}

// UpdateProfileInput 定义更新档案所需的输入。
//
// nil 字段表示保持原值。
type UpdateProfileInput struct {
	Username    *string
	DisplayName *string
	Bio         *string
	AvatarCID   *string
}

// UpdateProfile 更新用户档案并失效缓存。
func (s *IdentityService) UpdateProfile(ctx context.Context, walletAddress string, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.GetUser(walletAddress)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if input.Username != nil {
		if *input.Username == "" {
			return nil, ErrUsernameRequired
		}
		user.Username = *input.Username
	}
	if input.DisplayName != nil {
		user.DisplayName = *input.DisplayName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.AvatarCID != nil {
		user.AvatarCID = *input.AvatarCID
	}

	if _, err := s.caller.UpdateProfile(ctx,
		user.WalletAddress, user.DisplayName, user.Bio, user.AvatarCID,
	); err != nil {
		return nil, err
	}

	if err := s.users.UpdateUser(user); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateProfile(ctx, user.WalletAddress); err != nil {
			s.log.Warn("failed to invalidate profile cache",
				zap.String("wallet", user.WalletAddress),
				zap.Error(err),
			)
		}
	}

	return user, nil
}

// GetProfile 获取用户档案（缓存优先）。
func (s *IdentityService) GetProfile(ctx context.Context, walletAddress string) (*domain.User, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCachedProfile(ctx, walletAddress); err == nil {
			return cached, nil
		}
	}

	user, err := s.users.GetUser(walletAddress)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheProfile(ctx, user, profileCacheTTL); err != nil {
			s.log.Warn("failed to cache profile", zap.Error(err))
		}
	}

	return user, nil
}
