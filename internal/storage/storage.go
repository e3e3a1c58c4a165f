package storage

import (
	"errors"

	"suimail/backend/internal/domain"
)

var (
	// ErrUserExists 钱包地址已注册
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrMailboxExists 邮箱已存在（邮箱 ID 或所有者已被占用）
	ErrMailboxExists = errors.New("mailbox already exists")
	// ErrMailboxNotFound 邮箱不存在
	ErrMailboxNotFound = errors.New("mailbox not found")
	// ErrRegistryNotFound 注册表条目不存在
	ErrRegistryNotFound = errors.New("mailbox registry entry not found")
	// ErrMessageNotFound 消息不存在
	ErrMessageNotFound = errors.New("message not found")
	// ErrKioskExists 售货亭已存在
	ErrKioskExists = errors.New("kiosk already exists")
	// ErrKioskNotFound 售货亭不存在
	ErrKioskNotFound = errors.New("kiosk not found")
	// ErrItemExists 商品已存在
	ErrItemExists = errors.New("kiosk item already exists")
	// ErrItemNotFound 商品不存在
	ErrItemNotFound = errors.New("kiosk item not found")
	// ErrBankNotFound 资金池不存在
	ErrBankNotFound = errors.New("bank not found")
)

// UserRepository 定义用户档案镜像的存取操作。
type UserRepository interface {
	CreateUser(user *domain.User) error
	GetUser(walletAddress string) (*domain.User, error)
	UpdateUser(user *domain.User) error
}

// MailboxRepository 定义邮箱镜像的存取操作。
//
// SaveMailbox/DeleteMailbox 必须在同一工作单元内维护 MailboxRegistry：
// 任何时刻不允许出现缺少注册表条目的邮箱，反之亦然。
type MailboxRepository interface {
	SaveMailbox(mailbox *domain.Mailbox) error
	GetMailbox(mailboxID string) (*domain.Mailbox, error)
	GetMailboxByOwner(ownerWallet string) (*domain.Mailbox, error)
	GetRegistryEntry(ownerWallet string) (*domain.MailboxRegistry, error)
	DeleteMailbox(mailboxID string) error
}

// MessageRepository 定义消息镜像的存取操作。
type MessageRepository interface {
	SaveMessage(message *domain.Message) error
	GetMessage(mailboxID string, messageID uint64) (*domain.Message, error)
	ListMessagesByParticipant(walletAddress string) ([]domain.Message, error)
	DeleteMessage(mailboxID string, messageID uint64) error
	DeleteMessagesByMailbox(mailboxID string) (int, error)
}

// KioskRepository 定义售货亭及商品镜像的存取操作。
type KioskRepository interface {
	SaveKiosk(kiosk *domain.Kiosk) error
	GetKiosk(kioskID string) (*domain.Kiosk, error)
	ListKiosks() ([]domain.Kiosk, error)
	DeleteKiosk(kioskID string) error

	SaveKioskItem(item *domain.KioskItem) error
	GetKioskItem(itemID string) (*domain.KioskItem, error)
	ListKioskItems(kioskID string) ([]domain.KioskItem, error)
	DeleteKioskItem(itemID string) error
}

// BankRepository 定义资金池镜像的存取操作。
type BankRepository interface {
	SaveBank(bank *domain.Bank) error
	GetBank(bankID string) (*domain.Bank, error)
}

// Store 定义完整的存储接口。
type Store interface {
	UserRepository
	MailboxRepository
	MessageRepository
	KioskRepository
	BankRepository

	Close() error
	Health() error
}
