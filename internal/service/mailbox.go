package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"suimail/backend/internal/auth"
	"suimail/backend/internal/chain"
	"suimail/backend/internal/domain"
	"suimail/backend/internal/storage"
	"suimail/backend/internal/storage/redis"
)

var (
	// ErrMailboxIDRequired 邮箱 ID 不能为空
	ErrMailboxIDRequired = errors.New("mailbox id is required")
	// ErrMailboxTaken 邮箱已存在或所有者已有邮箱
	ErrMailboxTaken = errors.New("mailbox already exists")
	// ErrMailboxNotFound 邮箱不存在
	ErrMailboxNotFound = errors.New("mailbox not found")
	// ErrNotMailboxOwner 调用方不是邮箱所有者
	ErrNotMailboxOwner = errors.New("not the mailbox owner")
)

// 注册表缓存有效期
const registryCacheTTL = 10 * time.Minute

// MailboxService 封装邮箱镜像相关业务操作。
//
// 邮箱行与注册表条目由存储层在同一事务内维护，
// 服务层只负责所有权与链上中继。
type MailboxService struct {
	mailboxes storage.MailboxRepository
	messages  storage.MessageRepository
	caller    *chain.Caller
	cache     *redis.Cache // 可选
	log       *zap.Logger
}

// NewMailboxService 创建邮箱业务服务。
func NewMailboxService(
	mailboxes storage.MailboxRepository,
	messages storage.MessageRepository,
	caller *chain.Caller,
	cache *redis.Cache,
	log *zap.Logger,
) *MailboxService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MailboxService{
		mailboxes: mailboxes,
		messages:  messages,
		caller:    caller,
		cache:     cache,
		log:       log,
	}
}

// Create 把链上已创建的邮箱登记到镜像。
//
// 每个钱包至多一个邮箱，重复登记返回 ErrMailboxTaken。
func (s *MailboxService) Create(ctx context.Context, ownerWallet, mailboxID string) (*domain.Mailbox, error) {
	if !auth.ValidateWallet(ownerWallet) {
		return nil, auth.ErrInvalidWallet
	}
	if mailboxID == "" {
		return nil, ErrMailboxIDRequired
	}

	mailbox := &domain.Mailbox{
		MailboxID:   mailboxID,
		OwnerWallet: ownerWallet,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.mailboxes.SaveMailbox(mailbox); err != nil {
		if errors.Is(err, storage.ErrMailboxExists) {
			return nil, ErrMailboxTaken
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheRegistryEntry(ctx, ownerWallet, mailboxID, registryCacheTTL); err != nil {
			s.log.Warn("failed to cache registry entry", zap.Error(err))
		}
	}

	s.log.Info("mailbox registered",
		zap.String("mailbox_id", mailboxID),
		zap.String("owner", ownerWallet),
	)

	return mailbox, nil
}

// GetByOwner 根据所有者钱包获取邮箱。
func (s *MailboxService) GetByOwner(ctx context.Context, ownerWallet string) (*domain.Mailbox, error) {
	mailbox, err := s.mailboxes.GetMailboxByOwner(ownerWallet)
	if err != nil {
		if errors.Is(err, storage.ErrMailboxNotFound) {
			return nil, ErrMailboxNotFound
		}
		return nil, err
	}
	return mailbox, nil
}

// ResolveMailboxID 通过注册表把钱包解析为邮箱 ID（缓存优先）。
func (s *MailboxService) ResolveMailboxID(ctx context.Context, ownerWallet string) (string, error) {
	if s.cache != nil {
		if mailboxID, err := s.cache.GetCachedRegistryEntry(ctx, ownerWallet); err == nil {
			return mailboxID, nil
		}
	}

	entry, err := s.mailboxes.GetRegistryEntry(ownerWallet)
	if err != nil {
		if errors.Is(err, storage.ErrRegistryNotFound) {
			return "", ErrMailboxNotFound
		}
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.CacheRegistryEntry(ctx, ownerWallet, entry.MailboxID, registryCacheTTL); err != nil {
			s.log.Warn("failed to cache registry entry", zap.Error(err))
		}
	}

	return entry.MailboxID, nil
}

// Delete 删除邮箱镜像与其全部消息。
//
// 只有所有者可以删除。链上删除成功后，镜像删除邮箱行、
// 注册表条目与邮箱内全部消息，返回删除的消息数。
func (s *MailboxService) Delete(ctx context.Context, mailboxID, requesterWallet string) (int, error) {
	mailbox, err := s.mailboxes.GetMailbox(mailboxID)
	if err != nil {
		if errors.Is(err, storage.ErrMailboxNotFound) {
			return 0, ErrMailboxNotFound
		}
		return 0, err
	}

	if mailbox.OwnerWallet != requesterWallet {
		return 0, ErrNotMailboxOwner
	}

	if _, err := s.caller.DeleteMailbox(ctx, mailboxID); err != nil {
		return 0, err
	}

	if err := s.mailboxes.DeleteMailbox(mailboxID); err != nil {
		if errors.Is(err, storage.ErrMailboxNotFound) {
			return 0, ErrMailboxNotFound
		}
		return 0, err
	}

	deleted, err := s.messages.DeleteMessagesByMailbox(mailboxID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateRegistryEntry(ctx, mailbox.OwnerWallet); err != nil {
			s.log.Warn("failed to invalidate registry cache", zap.Error(err))
		}
	}

	s.log.Info("mailbox deleted",
		zap.String("mailbox_id", mailboxID),
		zap.String("owner", mailbox.OwnerWallet),
		zap.Int("messages_deleted", deleted),
	)

	return deleted, nil
}
