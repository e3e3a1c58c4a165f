package domain

import "time"

// Kiosk 表示链上售货亭对象的链下镜像。
type Kiosk struct {
	ID          uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	KioskID     string    `json:"kioskId" gorm:"type:varchar(120);uniqueIndex"`
	OwnerWallet string    `json:"ownerWallet" gorm:"type:varchar(200);index"`
	CreatedAt   time.Time `json:"createdAt"`
}

// KioskItem 表示售货亭内上架的商品。
//
// 商品必须引用存在的售货亭；只有售货亭所有者可以上架/下架。
// Price 对应链上的 u64。
type KioskItem struct {
	ID         uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	ItemID     string    `json:"itemId" gorm:"type:varchar(120);uniqueIndex"`
	KioskID    string    `json:"kioskId" gorm:"type:varchar(120);index;not null"`
	Title      string    `json:"title" gorm:"type:varchar(200)"`
	ContentCID string    `json:"contentCid" gorm:"type:varchar(200)"`
	Price      uint64    `json:"price" gorm:"type:bigint"`
	CreatedAt  time.Time `json:"createdAt"`
}
