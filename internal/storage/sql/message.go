package sql

import (
	"database/sql"
	"errors"

	"suimail/backend/internal/domain"
	"suimail/backend/internal/storage"
)

// ========== Message Repository ==========

// SaveMessage 持久化消息记录。
//
// ID 非零时写入外部提供的链上序号；为零时由数据库自增分配。
// 两种情况下自增序列都不会回退，ID 永不复用。
func (s *Store) SaveMessage(message *domain.Message) error {
	if message.ID != 0 {
		query := s.rebind(`
			INSERT INTO messages (id, sender, receiver, cid, content, timestamp, nft_object_id, claim_price, mailbox_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		_, err := s.db.Exec(query,
			message.ID,
			message.Sender,
			message.Receiver,
			message.CID,
			message.Content,
			message.Timestamp,
			message.NFTObjectID,
			message.ClaimPrice,
			message.MailboxID,
		)
		return err
	}

	if s.driverName == "postgres" {
		query := s.rebind(`
			INSERT INTO messages (sender, receiver, cid, content, timestamp, nft_object_id, claim_price, mailbox_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`)
		return s.db.QueryRow(query,
			message.Sender,
			message.Receiver,
			message.CID,
			message.Content,
			message.Timestamp,
			message.NFTObjectID,
			message.ClaimPrice,
			message.MailboxID,
		).Scan(&message.ID)
	}

	query := s.rebind(`
		INSERT INTO messages (sender, receiver, cid, content, timestamp, nft_object_id, claim_price, mailbox_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	result, err := s.db.Exec(query,
		message.Sender,
		message.Receiver,
		message.CID,
		message.Content,
		message.Timestamp,
		message.NFTObjectID,
		message.ClaimPrice,
		message.MailboxID,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	message.ID = uint64(id)
	return nil
}

// GetMessage 获取指定邮箱下的消息。
func (s *Store) GetMessage(mailboxID string, messageID uint64) (*domain.Message, error) {
	query := s.rebind(`
		SELECT id, sender, receiver, cid, content, timestamp, nft_object_id, claim_price, mailbox_id
		FROM messages
		WHERE mailbox_id = ? AND id = ?
	`)

	message, err := scanMessage(s.db.QueryRow(query, mailboxID, messageID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrMessageNotFound
	}
	return message, err
}

// ListMessagesByParticipant 返回钱包作为发送方或接收方的全部消息。
//
// 按 (timestamp, id) 排序：无变更时重复调用结果稳定。
func (s *Store) ListMessagesByParticipant(walletAddress string) ([]domain.Message, error) {
	query := s.rebind(`
		SELECT id, sender, receiver, cid, content, timestamp, nft_object_id, claim_price, mailbox_id
		FROM messages
		WHERE sender = ? OR receiver = ?
		ORDER BY timestamp, id
	`)

	rows, err := s.db.Query(query, walletAddress, walletAddress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var content sql.NullString
		var nftObjectID sql.NullString
		var claimPrice sql.NullInt64

		err := rows.Scan(
			&m.ID,
			&m.Sender,
			&m.Receiver,
			&m.CID,
			&content,
			&m.Timestamp,
			&nftObjectID,
			&claimPrice,
			&m.MailboxID,
		)
		if err != nil {
			return nil, err
		}

		if content.Valid {
			m.Content = content.String
		}
		if nftObjectID.Valid {
			m.NFTObjectID = &nftObjectID.String
		}
		if claimPrice.Valid {
			price := uint64(claimPrice.Int64)
			m.ClaimPrice = &price
		}

		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// DeleteMessage 删除指定邮箱下的消息。
func (s *Store) DeleteMessage(mailboxID string, messageID uint64) error {
	query := s.rebind(`DELETE FROM messages WHERE mailbox_id = ? AND id = ?`)
	result, err := s.db.Exec(query, mailboxID, messageID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrMessageNotFound
	}
	return nil
}

// DeleteMessagesByMailbox 删除邮箱的全部消息，返回删除数量。
func (s *Store) DeleteMessagesByMailbox(mailboxID string) (int, error) {
	query := s.rebind(`DELETE FROM messages WHERE mailbox_id = ?`)
	result, err := s.db.Exec(query, mailboxID)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func scanMessage(row *sql.Row) (*domain.Message, error) {
	var m domain.Message
	var content sql.NullString
	var nftObjectID sql.NullString
	var claimPrice sql.NullInt64

	err := row.Scan(
		&m.ID,
		&m.Sender,
		&m.Receiver,
		&m.CID,
		&content,
		&m.Timestamp,
		&nftObjectID,
		&claimPrice,
		&m.MailboxID,
	)
	if err != nil {
		return nil, err
	}

	if content.Valid {
		m.Content = content.String
	}
	if nftObjectID.Valid {
		m.NFTObjectID = &nftObjectID.String
	}
	if claimPrice.Valid {
		price := uint64(claimPrice.Int64)
		m.ClaimPrice = &price
	}

	return &m, nil
}
