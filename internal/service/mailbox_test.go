package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suimail/backend/internal/chain"
	"suimail/backend/internal/storage/memory"
)

func newTestMailboxService(t *testing.T) (*MailboxService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewMailboxService(store, store, chain.NewCaller(chain.NopRelay{}), nil, nil)
	return svc, store
}

func TestMailboxServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("登记成功后注册表可解析", func(t *testing.T) {
		svc, _ := newTestMailboxService(t)

		mailbox, err := svc.Create(ctx, "0xaaa", "mb-1")
		require.NoError(t, err)
		assert.Equal(t, "mb-1", mailbox.MailboxID)
		assert.Equal(t, "0xaaa", mailbox.OwnerWallet)

		resolved, err := svc.ResolveMailboxID(ctx, "0xaaa")
		require.NoError(t, err)
		assert.Equal(t, "mb-1", resolved)
	})

	t.Run("同一钱包重复登记被拒绝", func(t *testing.T) {
		svc, _ := newTestMailboxService(t)

		_, err := svc.Create(ctx, "0xaaa", "mb-1")
		require.NoError(t, err)

		_, err = svc.Create(ctx, "0xaaa", "mb-2")
		assert.ErrorIs(t, err, ErrMailboxTaken)
	})

	t.Run("同一邮箱ID重复登记被拒绝", func(t *testing.T) {
		svc, _ := newTestMailboxService(t)

		_, err := svc.Create(ctx, "0xaaa", "mb-1")
		require.NoError(t, err)

		_, err = svc.Create(ctx, "0xbbb", "mb-1")
		assert.ErrorIs(t, err, ErrMailboxTaken)
	})

	t.Run("无效钱包地址被拒绝", func(t *testing.T) {
		svc, _ := newTestMailboxService(t)

		_, err := svc.Create(ctx, "not-a-wallet", "mb-1")
		assert.Error(t, err)
	})

	t.Run("空邮箱ID被拒绝", func(t *testing.T) {
		svc, _ := newTestMailboxService(t)

		_, err := svc.Create(ctx, "0xaaa", "")
		assert.ErrorIs(t, err, ErrMailboxIDRequired)
	})
}

func TestMailboxServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("删除级联清理消息并移除注册表", func(t *testing.T) {
		svc, store := newTestMailboxService(t)
		cipher := newTestCipher(t)
		msgSvc := NewMessageService(store, store, cipher, chain.NewCaller(chain.NopRelay{}), nil)

		_, err := svc.Create(ctx, "0xaaa", "mb-1")
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err := msgSvc.Store(ctx, StoreMessageInput{
				Sender:    "0xbbb",
				Receiver:  "0xaaa",
				CID:       "Qm123",
				Content:   "m",
				MailboxID: "mb-1",
			})
			require.NoError(t, err)
		}

		deleted, err := svc.Delete(ctx, "mb-1", "0xaaa")
		require.NoError(t, err)
		assert.Equal(t, 3, deleted)

		_, err = svc.GetByOwner(ctx, "0xaaa")
		assert.ErrorIs(t, err, ErrMailboxNotFound)

		_, err = svc.ResolveMailboxID(ctx, "0xaaa")
		assert.ErrorIs(t, err, ErrMailboxNotFound)

		views, err := msgSvc.ListForParticipant(ctx, "0xaaa")
		require.NoError(t, err)
		assert.Empty(t, views)
	})

	t.Run("非所有者删除被拒绝", func(t *testing.T) {
		svc, _ := newTestMailboxService(t)

		_, err := svc.Create(ctx, "0xaaa", "mb-1")
		require.NoError(t, err)

		_, err = svc.Delete(ctx, "mb-1", "0xbbb")
		assert.ErrorIs(t, err, ErrNotMailboxOwner)

		// 邮箱仍然存在
		_, err = svc.GetByOwner(ctx, "0xaaa")
		assert.NoError(t, err)
	})

	t.Run("邮箱不存在返回ErrMailboxNotFound", func(t *testing.T) {
		svc, _ := newTestMailboxService(t)

		_, err := svc.Delete(ctx, "no-such", "0xaaa")
		assert.ErrorIs(t, err, ErrMailboxNotFound)
	})

	t.Run("链上删除失败时镜像保持原状", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewMailboxService(store, store, chain.NewCaller(failingRelay{}), nil, nil)

		createSvc := NewMailboxService(store, store, chain.NewCaller(chain.NopRelay{}), nil, nil)
		_, err := createSvc.Create(ctx, "0xaaa", "mb-1")
		require.NoError(t, err)

		_, err = svc.Delete(ctx, "mb-1", "0xaaa")
		assert.ErrorIs(t, err, chain.ErrRelayFailed)

		_, err = svc.GetByOwner(ctx, "0xaaa")
		assert.NoError(t, err)
	})
}
