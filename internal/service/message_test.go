package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suimail/backend/internal/chain"
	"suimail/backend/internal/crypto"
	"suimail/backend/internal/domain"
	"suimail/backend/internal/storage/memory"
)

// failingRelay 模拟链上调用失败
type failingRelay struct{}

func (failingRelay) Submit(_ context.Context, _ ...chain.MoveCall) (*chain.Receipt, error) {
	return nil, chain.ErrRelayFailed
}

func newTestCipher(t *testing.T) *crypto.Cipher {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	cipher, err := crypto.New(key)
	require.NoError(t, err)
	return cipher
}

func newTestMessageService(t *testing.T) (*MessageService, *memory.Store, *crypto.Cipher) {
	t.Helper()
	store := memory.NewStore()
	cipher := newTestCipher(t)
	caller := chain.NewCaller(chain.NopRelay{})
	svc := NewMessageService(store, store, cipher, caller, nil)
	return svc, store, cipher
}

func seedMailbox(t *testing.T, store *memory.Store, mailboxID, owner string) {
	t.Helper()
	require.NoError(t, store.SaveMailbox(&domain.Mailbox{
		MailboxID:   mailboxID,
		OwnerWallet: owner,
		CreatedAt:   time.Now().UTC(),
	}))
}

func TestMessageServiceStore(t *testing.T) {
	ctx := context.Background()

	t.Run("写入成功返回解密视图", func(t *testing.T) {
		svc, store, _ := newTestMessageService(t)
		seedMailbox(t, store, "mb-1", "0xaaa")

		view, err := svc.Store(ctx, StoreMessageInput{
			Sender:    "0xbbb",
			Receiver:  "0xaaa",
			CID:       "Qm123",
			Content:   "hello alice",
			Timestamp: 1000,
			MailboxID: "mb-1",
		})

		require.NoError(t, err)
		assert.NotZero(t, view.ID)
		assert.Equal(t, "Qm123", view.CID)
		assert.Equal(t, "hello alice", view.Content)
		assert.False(t, view.DecryptError)
	})

	t.Run("落库内容必须是密文", func(t *testing.T) {
		svc, store, cipher := newTestMessageService(t)
		seedMailbox(t, store, "mb-1", "0xaaa")

		view, err := svc.Store(ctx, StoreMessageInput{
			Sender:    "0xbbb",
			Receiver:  "0xaaa",
			CID:       "Qm123",
			Content:   "top secret",
			MailboxID: "mb-1",
		})
		require.NoError(t, err)

		// 直接读存储层，验证明文没有落库
		stored, err := store.GetMessage("mb-1", view.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "top secret", stored.Content)
		assert.NotEmpty(t, stored.Content)

		plaintext, err := cipher.Decrypt(stored.Content)
		require.NoError(t, err)
		assert.Equal(t, "top secret", plaintext)
	})

	t.Run("空CID被拒绝", func(t *testing.T) {
		svc, store, _ := newTestMessageService(t)
		seedMailbox(t, store, "mb-1", "0xaaa")

		_, err := svc.Store(ctx, StoreMessageInput{
			Sender:    "0xbbb",
			Receiver:  "0xaaa",
			CID:       "",
			MailboxID: "mb-1",
		})

		assert.ErrorIs(t, err, ErrEmptyCID)
	})

	t.Run("NFT字段必须成对出现", func(t *testing.T) {
		svc, store, _ := newTestMessageService(t)
		seedMailbox(t, store, "mb-1", "0xaaa")

		nftID := "0xnft"
		_, err := svc.Store(ctx, StoreMessageInput{
			Sender:      "0xbbb",
			Receiver:    "0xaaa",
			CID:         "Qm123",
			NFTObjectID: &nftID,
			MailboxID:   "mb-1",
		})
		assert.ErrorIs(t, err, ErrNFTFieldsMismatch)

		price := uint64(100)
		_, err = svc.Store(ctx, StoreMessageInput{
			Sender:     "0xbbb",
			Receiver:   "0xaaa",
			CID:        "Qm123",
			ClaimPrice: &price,
			MailboxID:  "mb-1",
		})
		assert.ErrorIs(t, err, ErrNFTFieldsMismatch)

		// 成对时通过
		view, err := svc.Store(ctx, StoreMessageInput{
			Sender:      "0xbbb",
			Receiver:    "0xaaa",
			CID:         "Qm123",
			NFTObjectID: &nftID,
			ClaimPrice:  &price,
			MailboxID:   "mb-1",
		})
		require.NoError(t, err)
		assert.Equal(t, &nftID, view.NFTObjectID)
		assert.Equal(t, &price, view.ClaimPrice)
	})

	t.Run("目标邮箱不存在被拒绝", func(t *testing.T) {
		svc, _, _ := newTestMessageService(t)

		_, err := svc.Store(ctx, StoreMessageInput{
			Sender:    "0xbbb",
			Receiver:  "0xaaa",
			CID:       "Qm123",
			MailboxID: "no-such-mailbox",
		})

		assert.ErrorIs(t, err, ErrMailboxNotFound)
	})

	t.Run("空内容消息合法", func(t *testing.T) {
		svc, store, _ := newTestMessageService(t)
		seedMailbox(t, store, "mb-1", "0xaaa")

		view, err := svc.Store(ctx, StoreMessageInput{
			Sender:    "0xbbb",
			Receiver:  "0xaaa",
			CID:       "Qm123",
			Content:   "",
			MailboxID: "mb-1",
		})

		require.NoError(t, err)
		assert.Empty(t, view.Content)
		assert.False(t, view.DecryptError)
	})
}

func TestMessageServiceListForParticipant(t *testing.T) {
	ctx := context.Background()

	t.Run("按时间与序号稳定排序", func(t *testing.T) {
		svc, store, _ := newTestMessageService(t)
		seedMailbox(t, store, "mb-1", "0xaaa")

		for _, ts := range []int64{3000, 1000, 2000} {
			_, err := svc.Store(ctx, StoreMessageInput{
				Sender:    "0xbbb",
				Receiver:  "0xaaa",
				CID:       "Qm123",
				Content:   "m",
				Timestamp: ts,
				MailboxID: "mb-1",
			})
			require.NoError(t, err)
		}

		views, err := svc.ListForParticipant(ctx, "0xaaa")
		require.NoError(t, err)
		require.Len(t, views, 3)
		assert.Equal(t, int64(1000), views[0].Timestamp)
		assert.Equal(t, int64(2000), views[1].Timestamp)
		assert.Equal(t, int64(3000), views[2].Timestamp)
	})

	t.Run("发送方与接收方都能看到消息", func(t *testing.T) {
		svc, store, _ := newTestMessageService(t)
		seedMailbox(t, store, "mb-1", "0xaaa")

		_, err := svc.Store(ctx, StoreMessageInput{
			Sender:    "0xbbb",
			Receiver:  "0xaaa",
			CID:       "Qm123",
			Content:   "hi",
			MailboxID: "mb-1",
		})
		require.NoError(t, err)

		senderView, err := svc.ListForParticipant(ctx, "0xbbb")
		require.NoError(t, err)
		assert.Len(t, senderView, 1)

		receiverView, err := svc.ListForParticipant(ctx, "0xaaa")
		require.NoError(t, err)
		assert.Len(t, receiverView, 1)

		outsider, err := svc.ListForParticipant(ctx, "0xccc")
		require.NoError(t, err)
		assert.Empty(t, outsider)
	})

	t.Run("单条解密失败不影响列表", func(t *testing.T) {
		svc, store, _ := newTestMessageService(t)
		seedMailbox(t, store, "mb-1", "0xaaa")

		_, err := svc.Store(ctx, StoreMessageInput{
			Sender:    "0xbbb",
			Receiver:  "0xaaa",
			CID:       "Qm-good",
			Content:   "readable",
			Timestamp: 1000,
			MailboxID: "mb-1",
		})
		require.NoError(t, err)

		// 直接塞入一条用其他密钥加密的记录
		otherCipher := newTestCipher(t)
		corrupted, err := otherCipher.Encrypt("unreadable")
		require.NoError(t, err)
		require.NoError(t, store.SaveMessage(&domain.Message{
			Sender:    "0xbbb",
			Receiver:  "0xaaa",
			CID:       "Qm-bad",
			Content:   corrupted,
			Timestamp: 2000,
			MailboxID: "mb-1",
		}))

		views, err := svc.ListForParticipant(ctx, "0xaaa")
		require.NoError(t, err)
		require.Len(t, views, 2)

		assert.Equal(t, "readable", views[0].Content)
		assert.False(t, views[0].DecryptError)

		assert.Empty(t, views[1].Content)
		assert.True(t, views[1].DecryptError)
		assert.Equal(t, "Qm-bad", views[1].CID)
	})
}

func TestMessageServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("所有者删除成功", func(t *testing.T) {
		svc, store, _ := newTestMessageService(t)
		seedMailbox(t, store, "mb-1", "0xaaa")

		view, err := svc.Store(ctx, StoreMessageInput{
			Sender:    "0xbbb",
			Receiver:  "0xaaa",
			CID:       "Qm123",
			Content:   "bye",
			MailboxID: "mb-1",
		})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, "mb-1", view.ID, "0xaaa"))

		views, err := svc.ListForParticipant(ctx, "0xaaa")
		require.NoError(t, err)
		assert.Empty(t, views)
	})

	t.Run("非所有者删除被拒绝", func(t *testing.T) {
		svc, store, _ := newTestMessageService(t)
		seedMailbox(t, store, "mb-1", "0xaaa")

		view, err := svc.Store(ctx, StoreMessageInput{
			Sender:    "0xbbb",
			Receiver:  "0xaaa",
			CID:       "Qm123",
			Content:   "keep",
			MailboxID: "mb-1",
		})
		require.NoError(t, err)

		err = svc.Delete(ctx, "mb-1", view.ID, "0xbbb")
		assert.ErrorIs(t, err, ErrNotMailboxOwner)

		// 消息仍然存在
		views, err := svc.ListForParticipant(ctx, "0xaaa")
		require.NoError(t, err)
		assert.Len(t, views, 1)
	})

	t.Run("消息不存在返回ErrMessageNotFound", func(t *testing.T) {
		svc, store, _ := newTestMessageService(t)
		seedMailbox(t, store, "mb-1", "0xaaa")

		err := svc.Delete(ctx, "mb-1", 42, "0xaaa")
		assert.ErrorIs(t, err, ErrMessageNotFound)
	})

	t.Run("链上删除失败时镜像保持原状", func(t *testing.T) {
		store := memory.NewStore()
		cipher := newTestCipher(t)
		svc := NewMessageService(store, store, cipher, chain.NewCaller(failingRelay{}), nil)
		seedMailbox(t, store, "mb-1", "0xaaa")

		encrypted, err := cipher.Encrypt("still here")
		require.NoError(t, err)
		require.NoError(t, store.SaveMessage(&domain.Message{
			Sender:    "0xbbb",
			Receiver:  "0xaaa",
			CID:       "Qm123",
			Content:   encrypted,
			MailboxID: "mb-1",
		}))

		err = svc.Delete(ctx, "mb-1", 1, "0xaaa")
		assert.ErrorIs(t, err, chain.ErrRelayFailed)

		_, err = store.GetMessage("mb-1", 1)
		assert.NoError(t, err)
	})
}
