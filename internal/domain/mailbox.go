package domain

import "time"

// Mailbox 表示链上邮箱对象的链下镜像。
//
// 每个用户至多拥有一个邮箱；MailboxID 绑定所有者后不可变更。
type Mailbox struct {
	ID          uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	MailboxID   string    `json:"mailboxId" gorm:"type:varchar(120);uniqueIndex"`
	OwnerWallet string    `json:"ownerWallet" gorm:"type:varchar(200);uniqueIndex"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MailboxRegistry 是所有者钱包到邮箱 ID 的冗余映射（链上注册表的镜像）。
//
// 注册表条目必须与同一所有者的 Mailbox 行引用相同的邮箱 ID；
// 邮箱创建/删除时两者在同一工作单元内写入，任何时刻不得分叉。
type MailboxRegistry struct {
	OwnerWallet string    `json:"ownerWallet" gorm:"primaryKey;type:varchar(200)"`
	MailboxID   string    `json:"mailboxId" gorm:"type:varchar(120);uniqueIndex"`
	CreatedAt   time.Time `json:"createdAt"`
}
