package sql

import (
	"database/sql"
	"errors"
	"time"

	"suimail/backend/internal/domain"
	"suimail/backend/internal/storage"
)

// ========== User Repository ==========

// CreateUser 创建新用户；钱包地址已注册时返回 ErrUserExists。
func (s *Store) CreateUser(user *domain.User) error {
	query := s.rebind(`
		INSERT INTO users (wallet_address, username, display_name, bio, avatar_cid, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		user.WalletAddress,
		user.Username,
		user.DisplayName,
		user.Bio,
		user.AvatarCID,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isDuplicate(err) {
		return storage.ErrUserExists
	}
	return err
}

// GetUser 根据钱包地址获取用户。
func (s *Store) GetUser(walletAddress string) (*domain.User, error) {
	query := s.rebind(`
		SELECT wallet_address, username, display_name, bio, avatar_cid, password_hash, created_at, updated_at
		FROM users
		WHERE wallet_address = ?
	`)

	var user domain.User
	err := s.db.QueryRow(query, walletAddress).Scan(
		&user.WalletAddress,
		&user.Username,
		&user.DisplayName,
		&user.Bio,
		&user.AvatarCID,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateUser 更新用户档案（bio、展示名、头像）。
//
// 钱包地址是不可变主键，永远不出现在 SET 子句中。
func (s *Store) UpdateUser(user *domain.User) error {
	query := s.rebind(`
		UPDATE users
		SET username = ?, display_name = ?, bio = ?, avatar_cid = ?, updated_at = ?
		WHERE wallet_address = ?
	`)
	result, err := s.db.Exec(query,
		user.Username,
		user.DisplayName,
		user.Bio,
		user.AvatarCID,
		time.Now().UTC(),
		user.WalletAddress,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}
