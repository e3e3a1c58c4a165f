package sql

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"suimail/backend/internal/domain"
	"suimail/backend/internal/storage"
)

// ========== Mailbox Repository ==========

// SaveMailbox 在同一事务内写入邮箱行与注册表条目。
//
// 两行要么一起提交要么一起回滚，注册表永远不会与邮箱分叉。
func (s *Store) SaveMailbox(mailbox *domain.Mailbox) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertMailbox := s.rebind(`
		INSERT INTO mailboxes (mailbox_id, owner_wallet, created_at)
		VALUES (?, ?, ?)
	`)
	if _, err := tx.Exec(insertMailbox, mailbox.MailboxID, mailbox.OwnerWallet, mailbox.CreatedAt); err != nil {
		if isDuplicate(err) {
			return storage.ErrMailboxExists
		}
		return err
	}

	insertRegistry := s.rebind(`
		INSERT INTO mailbox_registries (owner_wallet, mailbox_id, created_at)
		VALUES (?, ?, ?)
	`)
	if _, err := tx.Exec(insertRegistry, mailbox.OwnerWallet, mailbox.MailboxID, time.Now().UTC()); err != nil {
		if isDuplicate(err) {
			return storage.ErrMailboxExists
		}
		return err
	}

	return tx.Commit()
}

// GetMailbox 根据邮箱 ID 获取邮箱。
func (s *Store) GetMailbox(mailboxID string) (*domain.Mailbox, error) {
	query := s.rebind(`
		SELECT id, mailbox_id, owner_wallet, created_at
		FROM mailboxes
		WHERE mailbox_id = ?
	`)
	return s.scanMailbox(s.db.QueryRow(query, mailboxID))
}

// GetMailboxByOwner 根据所有者钱包获取邮箱。
func (s *Store) GetMailboxByOwner(ownerWallet string) (*domain.Mailbox, error) {
	query := s.rebind(`
		SELECT id, mailbox_id, owner_wallet, created_at
		FROM mailboxes
		WHERE owner_wallet = ?
	`)
	return s.scanMailbox(s.db.QueryRow(query, ownerWallet))
}

// GetRegistryEntry 获取所有者的注册表条目。
func (s *Store) GetRegistryEntry(ownerWallet string) (*domain.MailboxRegistry, error) {
	query := s.rebind(`
		SELECT owner_wallet, mailbox_id, created_at
		FROM mailbox_registries
		WHERE owner_wallet = ?
	`)

	var entry domain.MailboxRegistry
	err := s.db.QueryRow(query, ownerWallet).Scan(
		&entry.OwnerWallet,
		&entry.MailboxID,
		&entry.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrRegistryNotFound
	}
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// DeleteMailbox 在同一事务内删除邮箱行与注册表条目。
func (s *Store) DeleteMailbox(mailboxID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerWallet string
	selectOwner := s.rebind(`SELECT owner_wallet FROM mailboxes WHERE mailbox_id = ?`)
	if err := tx.QueryRow(selectOwner, mailboxID).Scan(&ownerWallet); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrMailboxNotFound
		}
		return err
	}

	deleteMailbox := s.rebind(`DELETE FROM mailboxes WHERE mailbox_id = ?`)
	if _, err := tx.Exec(deleteMailbox, mailboxID); err != nil {
		return err
	}

	deleteRegistry := s.rebind(`DELETE FROM mailbox_registries WHERE owner_wallet = ?`)
	if _, err := tx.Exec(deleteRegistry, ownerWallet); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) scanMailbox(row *sql.Row) (*domain.Mailbox, error) {
	var mailbox domain.Mailbox
	err := row.Scan(
		&mailbox.ID,
		&mailbox.MailboxID,
		&mailbox.OwnerWallet,
		&mailbox.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrMailboxNotFound
	}
	if err != nil {
		return nil, err
	}

	return &mailbox, nil
}
