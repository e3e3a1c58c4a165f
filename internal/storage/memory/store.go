package memory

import (
	"sort"
	"sync"
	"time"

	"suimail/backend/internal/domain"
	"suimail/backend/internal/storage"
)

// Store 内存存储实现，用于开发环境和单元测试。
//
// 所有操作在同一把互斥锁下执行，天然满足"邮箱与注册表
// 同一工作单元写入"的一致性要求。
type Store struct {
	mu sync.RWMutex

	users     map[string]*domain.User            // wallet -> user
	mailboxes map[string]*domain.Mailbox         // mailboxID -> mailbox
	registry  map[string]*domain.MailboxRegistry // ownerWallet -> entry
	messages  map[uint64]*domain.Message         // messageID -> message
	kiosks    map[string]*domain.Kiosk           // kioskID -> kiosk
	items     map[string]*domain.KioskItem       // itemID -> item
	banks     map[string]*domain.Bank            // bankID -> bank

	nextMessageID uint64 // 高水位，保证本地分配的消息 ID 永不复用
}

// NewStore 创建内存存储。
func NewStore() *Store {
	return &Store{
		users:         make(map[string]*domain.User),
		mailboxes:     make(map[string]*domain.Mailbox),
		registry:      make(map[string]*domain.MailboxRegistry),
		messages:      make(map[uint64]*domain.Message),
		kiosks:        make(map[string]*domain.Kiosk),
		items:         make(map[string]*domain.KioskItem),
		banks:         make(map[string]*domain.Bank),
		nextMessageID: 1,
	}
}

// ========== User Repository ==========

// CreateUser 创建用户；钱包地址已存在时返回 ErrUserExists。
func (s *Store) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.WalletAddress]; ok {
		return storage.ErrUserExists
	}

	clone := *user
	s.users[user.WalletAddress] = &clone
	return nil
}

// GetUser 根据钱包地址获取用户。
func (s *Store) GetUser(walletAddress string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[walletAddress]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// UpdateUser 更新用户档案。
func (s *Store) UpdateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.WalletAddress]; !ok {
		return storage.ErrUserNotFound
	}

	clone := *user
	s.users[user.WalletAddress] = &clone
	return nil
}

// ========== Mailbox Repository ==========

// SaveMailbox 创建邮箱并在同一锁内写入注册表条目。
//
// 邮箱 ID 或所有者任一已被占用时返回 ErrMailboxExists，且不产生任何写入。
func (s *Store) SaveMailbox(mailbox *domain.Mailbox) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mailboxes[mailbox.MailboxID]; ok {
		return storage.ErrMailboxExists
	}
	for _, mb := range s.mailboxes {
		if mb.OwnerWallet == mailbox.OwnerWallet {
			return storage.ErrMailboxExists
		}
	}

	clone := *mailbox
	s.mailboxes[mailbox.MailboxID] = &clone
	s.registry[mailbox.OwnerWallet] = &domain.MailboxRegistry{
		OwnerWallet: mailbox.OwnerWallet,
		MailboxID:   mailbox.MailboxID,
		CreatedAt:   time.Now().UTC(),
	}
	return nil
}

// GetMailbox 根据邮箱 ID 获取邮箱。
func (s *Store) GetMailbox(mailboxID string) (*domain.Mailbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mailbox, ok := s.mailboxes[mailboxID]
	if !ok {
		return nil, storage.ErrMailboxNotFound
	}

	clone := *mailbox
	return &clone, nil
}

// GetMailboxByOwner 根据所有者钱包获取邮箱。
func (s *Store) GetMailboxByOwner(ownerWallet string) (*domain.Mailbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, mb := range s.mailboxes {
		if mb.OwnerWallet == ownerWallet {
			clone := *mb
			return &clone, nil
		}
	}
	return nil, storage.ErrMailboxNotFound
}

// GetRegistryEntry 获取所有者的注册表条目。
func (s *Store) GetRegistryEntry(ownerWallet string) (*domain.MailboxRegistry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.registry[ownerWallet]
	if !ok {
		return nil, storage.ErrRegistryNotFound
	}

	clone := *entry
	return &clone, nil
}

// DeleteMailbox 删除邮箱并在同一锁内移除注册表条目。
func (s *Store) DeleteMailbox(mailboxID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mailbox, ok := s.mailboxes[mailboxID]
	if !ok {
		return storage.ErrMailboxNotFound
	}

	delete(s.mailboxes, mailboxID)
	delete(s.registry, mailbox.OwnerWallet)
	return nil
}

// ========== Message Repository ==========

// SaveMessage 持久化消息记录。
//
// ID 为零时由存储分配下一个序号；外部提供的 ID（链上序号）
// 同步推进高水位，保证之后本地分配的 ID 不会与之冲突。
func (s *Store) SaveMessage(message *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message.ID == 0 {
		message.ID = s.nextMessageID
	}
	if message.ID >= s.nextMessageID {
		s.nextMessageID = message.ID + 1
	}

	clone := *message
	s.messages[message.ID] = &clone
	return nil
}

// GetMessage 获取指定邮箱下的消息。
func (s *Store) GetMessage(mailboxID string, messageID uint64) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	message, ok := s.messages[messageID]
	if !ok || message.MailboxID != mailboxID {
		return nil, storage.ErrMessageNotFound
	}

	clone := *message
	return &clone, nil
}

// ListMessagesByParticipant 返回钱包作为发送方或接收方的全部消息。
//
// 按 (timestamp, id) 排序：无变更时重复调用结果稳定。
func (s *Store) ListMessagesByParticipant(walletAddress string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Message
	for _, m := range s.messages {
		if m.Sender == walletAddress || m.Receiver == walletAddress {
			out = append(out, *m)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteMessage 删除指定邮箱下的消息。
func (s *Store) DeleteMessage(mailboxID string, messageID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	message, ok := s.messages[messageID]
	if !ok || message.MailboxID != mailboxID {
		return storage.ErrMessageNotFound
	}

	delete(s.messages, messageID)
	return nil
}

// DeleteMessagesByMailbox 删除邮箱的全部消息，返回删除数量。
func (s *Store) DeleteMessagesByMailbox(mailboxID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, m := range s.messages {
		if m.MailboxID == mailboxID {
			delete(s.messages, id)
			count++
		}
	}
	return count, nil
}

// ========== Kiosk Repository ==========

// SaveKiosk 创建售货亭；ID 已占用时返回 ErrKioskExists。
func (s *Store) SaveKiosk(kiosk *domain.Kiosk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.kiosks[kiosk.KioskID]; ok {
		return storage.ErrKioskExists
	}

	clone := *kiosk
	s.kiosks[kiosk.KioskID] = &clone
	return nil
}

// GetKiosk 根据 ID 获取售货亭。
func (s *Store) GetKiosk(kioskID string) (*domain.Kiosk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kiosk, ok := s.kiosks[kioskID]
	if !ok {
		return nil, storage.ErrKioskNotFound
	}

	clone := *kiosk
	return &clone, nil
}

// ListKiosks 返回全部售货亭。
func (s *Store) ListKiosks() ([]domain.Kiosk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Kiosk, 0, len(s.kiosks))
	for _, k := range s.kiosks {
		out = append(out, *k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KioskID < out[j].KioskID })
	return out, nil
}

// DeleteKiosk 删除售货亭及其全部商品。
func (s *Store) DeleteKiosk(kioskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.kiosks[kioskID]; !ok {
		return storage.ErrKioskNotFound
	}

	delete(s.kiosks, kioskID)
	for id, item := range s.items {
		if item.KioskID == kioskID {
			delete(s.items, id)
		}
	}
	return nil
}

// SaveKioskItem 上架商品；商品 ID 已占用时返回 ErrItemExists。
func (s *Store) SaveKioskItem(item *domain.KioskItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ItemID]; ok {
		return storage.ErrItemExists
	}
	if _, ok := s.kiosks[item.KioskID]; !ok {
		return storage.ErrKioskNotFound
	}

	clone := *item
	s.items[item.ItemID] = &clone
	return nil
}

// GetKioskItem 根据 ID 获取商品。
func (s *Store) GetKioskItem(itemID string) (*domain.KioskItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, storage.ErrItemNotFound
	}

	clone := *item
	return &clone, nil
}

// ListKioskItems 返回售货亭内的全部商品。
func (s *Store) ListKioskItems(kioskID string) ([]domain.KioskItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.kiosks[kioskID]; !ok {
		return nil, storage.ErrKioskNotFound
	}

	var out []domain.KioskItem
	for _, item := range s.items {
		if item.KioskID == kioskID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

// DeleteKioskItem 下架商品。
func (s *Store) DeleteKioskItem(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[itemID]; !ok {
		return storage.ErrItemNotFound
	}

	delete(s.items, itemID)
	return nil
}

// ========== Bank Repository ==========

// SaveBank 保存资金池镜像。
func (s *Store) SaveBank(bank *domain.Bank) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *bank
	s.banks[bank.BankID] = &clone
	return nil
}

// GetBank 根据 ID 获取资金池。
func (s *Store) GetBank(bankID string) (*domain.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bank, ok := s.banks[bankID]
	if !ok {
		return nil, storage.ErrBankNotFound
	}

	clone := *bank
	return &clone, nil
}

// Close 关闭存储（内存实现为空操作）。
func (s *Store) Close() error {
	return nil
}

// Health 检查存储健康状态。
func (s *Store) Health() error {
	return nil
}
