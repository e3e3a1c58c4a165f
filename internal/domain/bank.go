package domain

import "time"

// Bank 表示链上资金池对象的链下镜像。
//
// 每个 Bank 行至多有一个管理员钱包。
type Bank struct {
	ID          uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	BankID      string    `json:"bankId" gorm:"type:varchar(120);uniqueIndex"`
	AdminWallet string    `json:"adminWallet" gorm:"type:varchar(200);uniqueIndex"`
	Balance     uint64    `json:"balance" gorm:"type:bigint"`
	CreatedAt   time.Time `json:"createdAt"`
}
