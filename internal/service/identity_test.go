package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suimail/backend/internal/auth"
	"suimail/backend/internal/chain"
	"suimail/backend/internal/storage/memory"
)

func newTestIdentityService(t *testing.T) (*IdentityService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewIdentityService(store, chain.NewCaller(chain.NopRelay{}), nil, nil)
	return svc, store
}

func TestIdentityServiceRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("注册成功", func(t *testing.T) {
		svc, _ := newTestIdentityService(t)

		user, err := svc.Register(ctx, RegisterInput{
			WalletAddress: "0xabc123",
			Username:      "alice",
			DisplayName:   "Alice",
			Bio:           "hello",
			AvatarCID:     "QmAvatar",
		})

		require.NoError(t, err)
		assert.Equal(t, "0xabc123", user.WalletAddress)
		assert.Equal(t, "alice", user.Username)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("重复注册被拒绝", func(t *testing.T) {
		svc, _ := newTestIdentityService(t)

		_, err := svc.Register(ctx, RegisterInput{
			WalletAddress: "0xabc123",
			Username:      "alice",
		})
		require.NoError(t, err)

		_, err = svc.Register(ctx, RegisterInput{
			WalletAddress: "0xabc123",
			Username:      "alice2",
		})
		assert.ErrorIs(t, err, ErrWalletTaken)
	})

	t.Run("无效钱包地址被拒绝", func(t *testing.T) {
		svc, _ := newTestIdentityService(t)

		_, err := svc.Register(ctx, RegisterInput{
			WalletAddress: "abc123",
			Username:      "alice",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidWallet)
	})

	t.Run("空用户名被拒绝", func(t *testing.T) {
		svc, _ := newTestIdentityService(t)

		_, err := svc.Register(ctx, RegisterInput{
			WalletAddress: "0xabc123",
			Username:      "",
		})
		assert.ErrorIs(t, err, ErrUsernameRequired)
	})

	t.Run("设置密码后哈希落库", func(t *testing.T) {
		svc, store := newTestIdentityService(t)

		_, err := svc.Register(ctx, RegisterInput{
			WalletAddress: "0xabc123",
			Username:      "alice",
			Password:      "super-secret-pw",
		})
		require.NoError(t, err)

		stored, err := store.GetUser("0xabc123")
		require.NoError(t, err)
		assert.NotEmpty(t, stored.PasswordHash)
		assert.NotEqual(t, "super-secret-pw", stored.PasswordHash)
		assert.True(t, auth.CheckPassword("super-secret-pw", stored.PasswordHash))
	})

	t.Run("弱密码被拒绝", func(t *testing.T) {
		svc, _ := newTestIdentityService(t)

		_, err := svc.Register(ctx, RegisterInput{
			WalletAddress: "0xabc123",
			Username:      "alice",
			Password:      "short",
		})
		assert.Error(t, err)
	})

	t.Run("链上注册失败时不落库", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewIdentityService(store, chain.NewCaller(failingRelay{}), nil, nil)

		_, err := svc.Register(ctx, RegisterInput{
			WalletAddress: "0xabc123",
			Username:      "alice",
		})
		assert.ErrorIs(t, err, chain.ErrRelayFailed)

		_, err = store.GetUser("0xabc123")
		assert.Error(t, err)
	})
}

func TestIdentityServiceUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("部分更新保持未指定字段", func(t *testing.T) {
		svc, _ := newTestIdentityService(t)

		_, err := svc.Register(ctx, RegisterInput{
			WalletAddress: "0xabc123",
			Username:      "alice",
			DisplayName:   "Alice",
			Bio:           "old bio",
		})
		require.NoError(t, err)

		newBio := "new bio"
		user, err := svc.UpdateProfile(ctx, "0xabc123", UpdateProfileInput{Bio: &newBio})

		require.NoError(t, err)
		assert.Equal(t, "new bio", user.Bio)
		assert.Equal(t, "Alice", user.DisplayName)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("钱包地址不可变", func(t *testing.T) {
		svc, _ := newTestIdentityService(t)

		_, err := svc.Register(ctx, RegisterInput{
			WalletAddress: "0xabc123",
			Username:      "alice",
		})
		require.NoError(t, err)

		newName := "alice-renamed"
		user, err := svc.UpdateProfile(ctx, "0xabc123", UpdateProfileInput{Username: &newName})

		require.NoError(t, err)
		assert.Equal(t, "0xabc123", user.WalletAddress)
		assert.Equal(t, "alice-renamed", user.Username)
	})

	t.Run("档案不存在返回ErrProfileNotFound", func(t *testing.T) {
		svc, _ := newTestIdentityService(t)

		bio := "x"
		_, err := svc.UpdateProfile(ctx, "0xnobody", UpdateProfileInput{Bio: &bio})
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})

	t.Run("链上更新失败时镜像保持原状", func(t *testing.T) {
		store := memory.NewStore()
		okSvc := NewIdentityService(store, chain.NewCaller(chain.NopRelay{}), nil, nil)
		_, err := okSvc.Register(ctx, RegisterInput{
			WalletAddress: "0xabc123",
			Username:      "alice",
			Bio:           "original",
		})
		require.NoError(t, err)

		svc := NewIdentityService(store, chain.NewCaller(failingRelay{}), nil, nil)
		bio := "changed"
		_, err = svc.UpdateProfile(ctx, "0xabc123", UpdateProfileInput{Bio: &bio})
		assert.ErrorIs(t, err, chain.ErrRelayFailed)

		stored, err := store.GetUser("0xabc123")
		require.NoError(t, err)
		assert.Equal(t, "original", stored.Bio)
	})
}

func TestIdentityServiceGetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("获取已注册档案", func(t *testing.T) {
		svc, _ := newTestIdentityService(t)

		_, err := svc.Register(ctx, RegisterInput{
			WalletAddress: "0xabc123",
			Username:      "alice",
		})
		require.NoError(t, err)

		user, err := svc.GetProfile(ctx, "0xabc123")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("档案不存在返回ErrProfileNotFound", func(t *testing.T) {
		svc, _ := newTestIdentityService(t)

		_, err := svc.GetProfile(ctx, "0xnobody")
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}
