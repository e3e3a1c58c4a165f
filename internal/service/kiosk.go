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
)

var (
	// ErrKioskIDRequired 售货亭 ID 不能为空
	ErrKioskIDRequired = errors.New("kiosk id is required")
	// ErrKioskTaken 售货亭已存在
	ErrKioskTaken = errors.New("kiosk already exists")
	// ErrKioskNotFound 售货亭不存在
	ErrKioskNotFound = errors.New("kiosk not found")
	// ErrNotKioskOwner 调用方不是售货亭所有者
	ErrNotKioskOwner = errors.New("not the kiosk owner")
	// ErrItemTaken 商品 ID 已占用
	ErrItemTaken = errors.New("item already exists")
	// ErrItemNotFound 商品不存在
	ErrItemNotFound = errors.New("item not found")
	// ErrBankNotFound 资金池不存在
	ErrBankNotFound = errors.New("bank not found")
	// ErrNotBankAdmin 调用方不是资金池管理员
	ErrNotBankAdmin = errors.New("not the bank admin")
	// ErrInvalidPrice 价格必须为正
	ErrInvalidPrice = errors.New("price must be positive")
)

// KioskService 封装售货亭与资金池相关业务操作。
//
// 与其他写路径一致：先上链后落库。余额只是链上资金池的
// 镜像计数，真实资金始终由链上合约托管。
type KioskService struct {
	kiosks storage.KioskRepository
	banks  storage.BankRepository
	caller *chain.Caller
	log    *zap.Logger
}

// NewKioskService 创建售货亭业务服务。
func NewKioskService(
	kiosks storage.KioskRepository,
	banks storage.BankRepository,
	caller *chain.Caller,
	log *zap.Logger,
) *KioskService {
	if log == nil {
		log = zap.NewNop()
	}
	return &KioskService{
		kiosks: kiosks,
		banks:  banks,
		caller: caller,
		log:    log,
	}
}

// Create 初始化售货亭并关联到档案。
func (s *KioskService) Create(ctx context.Context, ownerWallet, kioskID string) (*domain.Kiosk, error) {
	if !auth.ValidateWallet(ownerWallet) {
		return nil, auth.ErrInvalidWallet
	}
	if kioskID == "" {
		return nil, ErrKioskIDRequired
	}

	if _, err := s.caller.InitKiosk(ctx); err != nil {
		return nil, err
	}
	if _, err := s.caller.LinkKiosk(ctx, ownerWallet, kioskID); err != nil {
		return nil, err
	}

	kiosk := &domain.Kiosk{
		KioskID:     kioskID,
		OwnerWallet: ownerWallet,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.kiosks.SaveKiosk(kiosk); err != nil {
		if errors.Is(err, storage.ErrKioskExists) {
			return nil, ErrKioskTaken
		}
		return nil, err
	}

	s.log.Info("kiosk created",
		zap.String("kiosk_id", kioskID),
		zap.String("owner", ownerWallet),
	)

	return kiosk, nil
}

// Get 根据 ID 获取售货亭。
func (s *KioskService) Get(ctx context.Context, kioskID string) (*domain.Kiosk, error) {
	kiosk, err := s.kiosks.GetKiosk(kioskID)
	if err != nil {
		if errors.Is(err, storage.ErrKioskNotFound) {
			return nil, ErrKioskNotFound
		}
		return nil, err
	}
	return kiosk, nil
}

// List 返回全部售货亭。
func (s *KioskService) List(ctx context.Context) ([]domain.Kiosk, error) {
	return s.kiosks.ListKiosks()
}

// Delete 删除售货亭及其全部商品。只有所有者可以删除。
//
// 链上 delete_kiosk 需要发布者的 AdminCap 权限对象，服务不托管
// 该对象，因此这里只删除镜像。
func (s *KioskService) Delete(ctx context.Context, requesterWallet, kioskID string) error {
	kiosk, err := s.kiosks.GetKiosk(kioskID)
	if err != nil {
		if errors.Is(err, storage.ErrKioskNotFound) {
			return ErrKioskNotFound
		}
		return err
	}
	if kiosk.OwnerWallet != requesterWallet {
		return ErrNotKioskOwner
	}

	if err := s.kiosks.DeleteKiosk(kioskID); err != nil {
		if errors.Is(err, storage.ErrKioskNotFound) {
			return ErrKioskNotFound
		}
		return err
	}

	s.log.Info("kiosk deleted",
		zap.String("kiosk_id", kioskID),
		zap.String("owner", kiosk.OwnerWallet),
	)

	return nil
}

// PublishItemInput 定义上架商品所需的输入。
type PublishItemInput struct {
	ItemID     string
	KioskID    string
	Title      string
	ContentCID string
	Price      uint64
}

// PublishItem 上架商品。只有售货亭所有者可以上架。
func (s *KioskService) PublishItem(ctx context.Context, requesterWallet string, input PublishItemInput) (*domain.KioskItem, error) {
	if input.ContentCID == "" {
		return nil, ErrEmptyCID
	}
	if input.Price == 0 {
		return nil, ErrInvalidPrice
	}

	kiosk, err := s.kiosks.GetKiosk(input.KioskID)
	if err != nil {
		if errors.Is(err, storage.ErrKioskNotFound) {
			return nil, ErrKioskNotFound
		}
		return nil, err
	}
	if kiosk.OwnerWallet != requesterWallet {
		return nil, ErrNotKioskOwner
	}

	if _, err := s.caller.PublishItem(ctx, input.KioskID, input.Title, input.ContentCID, input.Price); err != nil {
		return nil, err
	}

	item := &domain.KioskItem{
		ItemID:     input.ItemID,
		KioskID:    input.KioskID,
		Title:      input.Title,
		ContentCID: input.ContentCID,
		Price:      input.Price,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.kiosks.SaveKioskItem(item); err != nil {
		if errors.Is(err, storage.ErrItemExists) {
			return nil, ErrItemTaken
		}
		return nil, err
	}

	return item, nil
}

// GetItem 根据 ID 获取商品。
func (s *KioskService) GetItem(ctx context.Context, itemID string) (*domain.KioskItem, error) {
	item, err := s.kiosks.GetKioskItem(itemID)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// ListItems 返回售货亭内的全部商品。
func (s *KioskService) ListItems(ctx context.Context, kioskID string) ([]domain.KioskItem, error) {
	if _, err := s.kiosks.GetKiosk(kioskID); err != nil {
		if errors.Is(err, storage.ErrKioskNotFound) {
			return nil, ErrKioskNotFound
		}
		return nil, err
	}
	return s.kiosks.ListKioskItems(kioskID)
}

// DeleteItem 下架商品。只有所在售货亭的所有者可以下架。
func (s *KioskService) DeleteItem(ctx context.Context, requesterWallet, itemID string) error {
	item, err := s.kiosks.GetKioskItem(itemID)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return ErrItemNotFound
		}
		return err
	}

	kiosk, err := s.kiosks.GetKiosk(item.KioskID)
	if err != nil {
		return err
	}
	if kiosk.OwnerWallet != requesterWallet {
		return ErrNotKioskOwner
	}

	if _, err := s.caller.DeleteItem(ctx, item.KioskID, itemID); err != nil {
		return err
	}

	if err := s.kiosks.DeleteKioskItem(itemID); err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return ErrItemNotFound
		}
		return err
	}

	return nil
}

// BuyItem 购买商品。
//
// 支付对象由链上合约校验并存入资金池；链上成功后商品下架，
// 镜像累加资金池余额计数。
func (s *KioskService) BuyItem(ctx context.Context, itemID, paymentObject, bankID string) (*domain.KioskItem, error) {
	item, err := s.kiosks.GetKioskItem(itemID)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if _, err := s.caller.BuyItem(ctx, item.KioskID, itemID, paymentObject); err != nil {
		return nil, err
	}

	// 售出即下架
	if err := s.kiosks.DeleteKioskItem(itemID); err != nil && !errors.Is(err, storage.ErrItemNotFound) {
		return nil, err
	}

	bank, err := s.banks.GetBank(bankID)
	if err != nil {
		if errors.Is(err, storage.ErrBankNotFound) {
			// 首笔交易时惰性建立资金池镜像
			kiosk, kerr := s.kiosks.GetKiosk(item.KioskID)
			if kerr != nil {
				return nil, kerr
			}
			bank = &domain.Bank{
				BankID:      bankID,
				AdminWallet: kiosk.OwnerWallet,
				CreatedAt:   time.Now().UTC(),
			}
		} else {
			return nil, err
		}
	}

	bank.Balance += item.Price
	if err := s.banks.SaveBank(bank); err != nil {
		return nil, err
	}

	s.log.Info("item purchased",
		zap.String("kiosk_id", item.KioskID),
		zap.String("item_id", itemID),
		zap.Uint64("price", item.Price),
	)

	return item, nil
}

// Withdraw 提取资金池全部余额。只有管理员可以提取。
//
// 返回提取的金额；链上成功后镜像余额清零。
func (s *KioskService) Withdraw(ctx context.Context, requesterWallet, bankID string) (uint64, error) {
	bank, err := s.banks.GetBank(bankID)
	if err != nil {
		if errors.Is(err, storage.ErrBankNotFound) {
			return 0, ErrBankNotFound
		}
		return 0, err
	}

	if bank.AdminWallet != requesterWallet {
		return 0, ErrNotBankAdmin
	}

	if _, err := s.caller.WithdrawFunds(ctx, bankID); err != nil {
		return 0, err
	}

	amount := bank.Balance
	bank.Balance = 0
	if err := s.banks.SaveBank(bank); err != nil {
		return 0, err
	}

	s.log.Info("funds withdrawn",
		zap.String("bank_id", bankID),
		zap.Uint64("amount", amount),
	)

	return amount, nil
}
