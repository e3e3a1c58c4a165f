package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"suimail/backend/internal/chain"
	"suimail/backend/internal/crypto"
	"suimail/backend/internal/domain"
	"suimail/backend/internal/objectstorage"
	"suimail/backend/internal/storage"
)

var (
	// ErrEmptyCID CID 不能为空
	ErrEmptyCID = errors.New("cid is required")
	// ErrNFTFieldsMismatch NFT 对象与认领价格必须成对出现
	ErrNFTFieldsMismatch = errors.New("nft object id and claim price must be set together")
	// ErrMessageNotFound 消息不存在
	ErrMessageNotFound = errors.New("message not found")
)

// Notifier 把新消息推送给在线订阅者。
type Notifier interface {
	NotifyNewMessage(receiverWallet string, view *domain.MessageView)
}

// MessageService 封装消息台账相关业务操作。
//
// 所有写入强制静态加密：Content 在落库前加密，读取时解密。
// CID 是消息内容的权威引用，台账永远原样保存。
type MessageService struct {
	messages  storage.MessageRepository
	mailboxes storage.MailboxRepository
	cipher    *crypto.Cipher
	caller    *chain.Caller
	blobs     *objectstorage.BlobStore // 可选的密文归档
	notifier  Notifier                 // 可选
	log       *zap.Logger
}

// NewMessageService 创建消息业务服务。
func NewMessageService(
	messages storage.MessageRepository,
	mailboxes storage.MailboxRepository,
	cipher *crypto.Cipher,
	caller *chain.Caller,
	log *zap.Logger,
) *MessageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageService{
		messages:  messages,
		mailboxes: mailboxes,
		cipher:    cipher,
		caller:    caller,
		log:       log,
	}
}

// SetBlobStore 设置密文归档存储（可选）。
func (s *MessageService) SetBlobStore(blobs *objectstorage.BlobStore) {
	s.blobs = blobs
}

// SetNotifier 设置新消息推送器（可选）。
func (s *MessageService) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// StoreMessageInput 定义写入消息所需的输入。
type StoreMessageInput struct {
	ID          uint64 // 链上序号，0 表示由存储层分配
	Sender      string
	Receiver    string
	CID         string
	Content     string // 明文，落库前加密
	Timestamp   int64
	NFTObjectID *string
	ClaimPrice  *uint64
	MailboxID   string
}

// Store 把消息写入台账。
//
// 校验顺序：CID 非空、NFT 字段成对、目标邮箱存在。
// Content 加密后落库，归档与推送失败不影响写入结果。
func (s *MessageService) Store(ctx context.Context, input StoreMessageInput) (*domain.MessageView, error) {
	if input.CID == "" {
		return nil, ErrEmptyCID
	}
	if (input.NFTObjectID == nil) != (input.ClaimPrice == nil) {
		return nil, ErrNFTFieldsMismatch
	}

	if _, err := s.mailboxes.GetMailbox(input.MailboxID); err != nil {
		if errors.Is(err, storage.ErrMailboxNotFound) {
			return nil, ErrMailboxNotFound
		}
		return nil, err
	}

	encrypted, err := s.cipher.Encrypt(input.Content)
	if err != nil {
		return nil, err
	}

	timestamp := input.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UTC().UnixMilli()
	}

	message := &domain.Message{
		ID:          input.ID,
		Sender:      input.Sender,
		Receiver:    input.Receiver,
		CID:         input.CID,
		Content:     encrypted,
		Timestamp:   timestamp,
		NFTObjectID: input.NFTObjectID,
		ClaimPrice:  input.ClaimPrice,
		MailboxID:   input.MailboxID,
	}

	if err := s.messages.SaveMessage(message); err != nil {
		return nil, err
	}

	// 归档密文副本，失败只记日志
	if s.blobs != nil && encrypted != "" {
		if err := s.blobs.Put(message.CID, []byte(encrypted)); err != nil {
			s.log.Warn("failed to archive message blob",
				zap.String("cid", message.CID),
				zap.Error(err),
			)
		}
	}

	view := &domain.MessageView{
		ID:          message.ID,
		Sender:      message.Sender,
		Receiver:    message.Receiver,
		CID:         message.CID,
		Content:     input.Content,
		Timestamp:   message.Timestamp,
		NFTObjectID: message.NFTObjectID,
		ClaimPrice:  message.ClaimPrice,
		MailboxID:   message.MailboxID,
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(message.Receiver, view)
	}

	s.log.Info("message stored",
		zap.Uint64("message_id", message.ID),
		zap.String("mailbox_id", message.MailboxID),
		zap.Bool("has_nft", message.HasNFT()),
	)

	return view, nil
}

// ListForParticipant 返回钱包参与的全部消息（解密后）。
//
// 单条解密失败不影响整个列表：该条 Content 置空并标记
// DecryptError，调用方仍能看到消息存在。
func (s *MessageService) ListForParticipant(ctx context.Context, walletAddress string) ([]domain.MessageView, error) {
	messages, err := s.messages.ListMessagesByParticipant(walletAddress)
	if err != nil {
		return nil, err
	}

	views := make([]domain.MessageView, 0, len(messages))
	for _, m := range messages {
		view := domain.MessageView{
			ID:          m.ID,
			Sender:      m.Sender,
			Receiver:    m.Receiver,
			CID:         m.CID,
			Timestamp:   m.Timestamp,
			NFTObjectID: m.NFTObjectID,
			ClaimPrice:  m.ClaimPrice,
			MailboxID:   m.MailboxID,
		}

		plaintext, err := s.cipher.Decrypt(m.Content)
		if err != nil {
			view.DecryptError = true
			s.log.Warn("failed to decrypt message content",
				zap.Uint64("message_id", m.ID),
				zap.Error(err),
			)
		} else {
			view.Content = plaintext
		}

		views = append(views, view)
	}

	return views, nil
}

// Delete 删除邮箱中的一条消息。
//
// 只有邮箱所有者可以删除。链上删除成功后移除镜像记录。
func (s *MessageService) Delete(ctx context.Context, mailboxID string, messageID uint64, requesterWallet string) error {
	mailbox, err := s.mailboxes.GetMailbox(mailboxID)
	if err != nil {
		if errors.Is(err, storage.ErrMailboxNotFound) {
			return ErrMailboxNotFound
		}
		return err
	}

	if mailbox.OwnerWallet != requesterWallet {
		return ErrNotMailboxOwner
	}

	message, err := s.messages.GetMessage(mailboxID, messageID)
	if err != nil {
		if errors.Is(err, storage.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	if _, err := s.caller.DeleteMessage(ctx, mailboxID, messageID); err != nil {
		return err
	}

	if err := s.messages.DeleteMessage(mailboxID, messageID); err != nil {
		if errors.Is(err, storage.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	// 归档副本一并清理，失败只记日志
	if s.blobs != nil {
		if err := s.blobs.Delete(message.CID); err != nil {
			s.log.Warn("failed to delete message blob",
				zap.String("cid", message.CID),
				zap.Error(err),
			)
		}
	}

	s.log.Info("message deleted",
		zap.Uint64("message_id", messageID),
		zap.String("mailbox_id", mailboxID),
	)

	return nil
}
