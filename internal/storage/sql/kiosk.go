package sql

import (
	"database/sql"
	"errors"
	"fmt"

	"suimail/backend/internal/domain"
	"suimail/backend/internal/storage"
)

// ========== Kiosk Repository ==========

// SaveKiosk 创建售货亭；ID 已占用时返回 ErrKioskExists。
func (s *Store) SaveKiosk(kiosk *domain.Kiosk) error {
	query := s.rebind(`
		INSERT INTO kiosks (kiosk_id, owner_wallet, created_at)
		VALUES (?, ?, ?)
	`)
	_, err := s.db.Exec(query, kiosk.KioskID, kiosk.OwnerWallet, kiosk.CreatedAt)
	if isDuplicate(err) {
		return storage.ErrKioskExists
	}
	return err
}

// GetKiosk 根据 ID 获取售货亭。
func (s *Store) GetKiosk(kioskID string) (*domain.Kiosk, error) {
	query := s.rebind(`
		SELECT id, kiosk_id, owner_wallet, created_at
		FROM kiosks
		WHERE kiosk_id = ?
	`)

	var kiosk domain.Kiosk
	err := s.db.QueryRow(query, kioskID).Scan(
		&kiosk.ID,
		&kiosk.KioskID,
		&kiosk.OwnerWallet,
		&kiosk.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrKioskNotFound
	}
	if err != nil {
		return nil, err
	}

	return &kiosk, nil
}

// ListKiosks 返回全部售货亭。
func (s *Store) ListKiosks() ([]domain.Kiosk, error) {
	query := `
		SELECT id, kiosk_id, owner_wallet, created_at
		FROM kiosks
		ORDER BY kiosk_id
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kiosks []domain.Kiosk
	for rows.Next() {
		var k domain.Kiosk
		if err := rows.Scan(&k.ID, &k.KioskID, &k.OwnerWallet, &k.CreatedAt); err != nil {
			return nil, err
		}
		kiosks = append(kiosks, k)
	}

	return kiosks, rows.Err()
}

// DeleteKiosk 在同一事务内删除售货亭及其全部商品。
func (s *Store) DeleteKiosk(kioskID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleteKiosk := s.rebind(`DELETE FROM kiosks WHERE kiosk_id = ?`)
	result, err := tx.Exec(deleteKiosk, kioskID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrKioskNotFound
	}

	deleteItems := s.rebind(`DELETE FROM kiosk_items WHERE kiosk_id = ?`)
	if _, err := tx.Exec(deleteItems, kioskID); err != nil {
		return err
	}

	return tx.Commit()
}

// SaveKioskItem 上架商品；商品 ID 已占用时返回 ErrItemExists。
func (s *Store) SaveKioskItem(item *domain.KioskItem) error {
	query := s.rebind(`
		INSERT INTO kiosk_items (item_id, kiosk_id, title, content_cid, price, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		item.ItemID,
		item.KioskID,
		item.Title,
		item.ContentCID,
		item.Price,
		item.CreatedAt,
	)
	if isDuplicate(err) {
		return storage.ErrItemExists
	}
	return err
}

// GetKioskItem 根据 ID 获取商品。
func (s *Store) GetKioskItem(itemID string) (*domain.KioskItem, error) {
	query := s.rebind(`
		SELECT id, item_id, kiosk_id, title, content_cid, price, created_at
		FROM kiosk_items
		WHERE item_id = ?
	`)

	var item domain.KioskItem
	err := s.db.QueryRow(query, itemID).Scan(
		&item.ID,
		&item.ItemID,
		&item.KioskID,
		&item.Title,
		&item.ContentCID,
		&item.Price,
		&item.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// ListKioskItems 返回售货亭内的全部商品。
func (s *Store) ListKioskItems(kioskID string) ([]domain.KioskItem, error) {
	query := s.rebind(`
		SELECT id, item_id, kiosk_id, title, content_cid, price, created_at
		FROM kiosk_items
		WHERE kiosk_id = ?
		ORDER BY item_id
	`)

	rows, err := s.db.Query(query, kioskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.KioskItem
	for rows.Next() {
		var item domain.KioskItem
		err := rows.Scan(
			&item.ID,
			&item.ItemID,
			&item.KioskID,
			&item.Title,
			&item.ContentCID,
			&item.Price,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// DeleteKioskItem 下架商品。
func (s *Store) DeleteKioskItem(itemID string) error {
	query := s.rebind(`DELETE FROM kiosk_items WHERE item_id = ?`)
	result, err := s.db.Exec(query, itemID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrItemNotFound
	}
	return nil
}

// ========== Bank Repository ==========

// SaveBank 保存或更新资金池镜像。
func (s *Store) SaveBank(bank *domain.Bank) error {
	update := s.rebind(`UPDATE banks SET admin_wallet = ?, balance = ? WHERE bank_id = ?`)
	result, err := s.db.Exec(update, bank.AdminWallet, bank.Balance, bank.BankID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	insert := s.rebind(`
		INSERT INTO banks (bank_id, admin_wallet, balance, created_at)
		VALUES (?, ?, ?, ?)
	`)
	_, err = s.db.Exec(insert, bank.BankID, bank.AdminWallet, bank.Balance, bank.CreatedAt)
	return err
}

// GetBank 根据 ID 获取资金池。
func (s *Store) GetBank(bankID string) (*domain.Bank, error) {
	query := s.rebind(`
		SELECT id, bank_id, admin_wallet, balance, created_at
		FROM banks
		WHERE bank_id = ?
	`)

	var bank domain.Bank
	err := s.db.QueryRow(query, bankID).Scan(
		&bank.ID,
		&bank.BankID,
		&bank.AdminWallet,
		&bank.Balance,
		&bank.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrBankNotFound
	}
	if err != nil {
		return nil, err
	}

	return &bank, nil
}
