package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suimail/backend/internal/domain"
	"suimail/backend/internal/storage"
)

func TestStore_UserUniqueness(t *testing.T) {
	store := NewStore()

	user := &domain.User{WalletAddress: "0xA", Username: "alice", Bio: "first"}
	require.NoError(t, store.CreateUser(user))

	t.Run("重复注册失败且首次档案不变", func(t *testing.T) {
		err := store.CreateUser(&domain.User{WalletAddress: "0xA", Username: "mallory", Bio: "second"})
		assert.ErrorIs(t, err, storage.ErrUserExists)

		got, err := store.GetUser("0xA")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, "first", got.Bio)
	})
}

func TestStore_MailboxRegistryPairing(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.SaveMailbox(&domain.Mailbox{MailboxID: "mbx1", OwnerWallet: "0xA"}))

	t.Run("创建邮箱同时写入注册表", func(t *testing.T) {
		entry, err := store.GetRegistryEntry("0xA")
		require.NoError(t, err)
		assert.Equal(t, "mbx1", entry.MailboxID)
	})

	t.Run("邮箱ID被任何所有者占用后创建失败", func(t *testing.T) {
		err := store.SaveMailbox(&domain.Mailbox{MailboxID: "mbx1", OwnerWallet: "0xB"})
		assert.ErrorIs(t, err, storage.ErrMailboxExists)

		// 所有者仍是原始所有者
		mb, err := store.GetMailbox("mbx1")
		require.NoError(t, err)
		assert.Equal(t, "0xA", mb.OwnerWallet)
	})

	t.Run("同一所有者不允许第二个邮箱", func(t *testing.T) {
		err := store.SaveMailbox(&domain.Mailbox{MailboxID: "mbx2", OwnerWallet: "0xA"})
		assert.ErrorIs(t, err, storage.ErrMailboxExists)
	})

	t.Run("删除邮箱同时移除注册表条目", func(t *testing.T) {
		require.NoError(t, store.DeleteMailbox("mbx1"))

		_, err := store.GetMailbox("mbx1")
		assert.ErrorIs(t, err, storage.ErrMailboxNotFound)
		_, err = store.GetRegistryEntry("0xA")
		assert.ErrorIs(t, err, storage.ErrRegistryNotFound)
	})
}

func TestStore_MessageIDNeverReused(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.SaveMailbox(&domain.Mailbox{MailboxID: "mbx1", OwnerWallet: "0xA"}))

	// 外部提供链上序号
	m1 := &domain.Message{ID: 7, Sender: "0xA", Receiver: "0xB", CID: "Qm1", MailboxID: "mbx1"}
	require.NoError(t, store.SaveMessage(m1))

	// 本地分配的 ID 必须越过外部序号
	m2 := &domain.Message{Sender: "0xB", Receiver: "0xA", CID: "Qm2", MailboxID: "mbx1"}
	require.NoError(t, store.SaveMessage(m2))
	assert.Equal(t, uint64(8), m2.ID)

	// 删除后 ID 不复用
	require.NoError(t, store.DeleteMessage("mbx1", 8))
	m3 := &domain.Message{Sender: "0xA", Receiver: "0xC", CID: "Qm3", MailboxID: "mbx1"}
	require.NoError(t, store.SaveMessage(m3))
	assert.Equal(t, uint64(9), m3.ID)
}

func TestStore_ListMessagesByParticipant(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.SaveMailbox(&domain.Mailbox{MailboxID: "mbx1", OwnerWallet: "0xA"}))

	msgs := []*domain.Message{
		{Sender: "0xA", Receiver: "0xB", CID: "Qm1", Timestamp: 300, MailboxID: "mbx1"},
		{Sender: "0xC", Receiver: "0xA", CID: "Qm2", Timestamp: 100, MailboxID: "mbx1"},
		{Sender: "0xB", Receiver: "0xC", CID: "Qm3", Timestamp: 200, MailboxID: "mbx1"},
	}
	for _, m := range msgs {
		require.NoError(t, store.SaveMessage(m))
	}

	out, err := store.ListMessagesByParticipant("0xA")
	require.NoError(t, err)
	require.Len(t, out, 2)

	// 按时间戳排序，且不包含无关消息
	assert.Equal(t, "Qm2", out[0].CID)
	assert.Equal(t, "Qm1", out[1].CID)

	t.Run("重复调用结果稳定", func(t *testing.T) {
		again, err := store.ListMessagesByParticipant("0xA")
		require.NoError(t, err)
		assert.Equal(t, out, again)
	})
}

func TestStore_KioskCascade(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.SaveKiosk(&domain.Kiosk{KioskID: "k1", OwnerWallet: "0xA"}))
	require.NoError(t, store.SaveKioskItem(&domain.KioskItem{ItemID: "i1", KioskID: "k1", Price: 100}))
	require.NoError(t, store.SaveKioskItem(&domain.KioskItem{ItemID: "i2", KioskID: "k1", Price: 200}))

	t.Run("商品必须引用存在的售货亭", func(t *testing.T) {
		err := store.SaveKioskItem(&domain.KioskItem{ItemID: "i3", KioskID: "nope"})
		assert.ErrorIs(t, err, storage.ErrKioskNotFound)
	})

	t.Run("删除售货亭级联删除商品", func(t *testing.T) {
		require.NoError(t, store.DeleteKiosk("k1"))

		_, err := store.GetKioskItem("i1")
		assert.ErrorIs(t, err, storage.ErrItemNotFound)
		_, err = store.GetKioskItem("i2")
		assert.ErrorIs(t, err, storage.ErrItemNotFound)
	})
}
