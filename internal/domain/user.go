package domain

import "time"

// User 表示链上用户档案的链下镜像。
//
// WalletAddress 是全局唯一的主身份键，创建后不可变更；
// 除 Bio/DisplayName/AvatarCID 外其余字段创建后只读。
type User struct {
	WalletAddress string    `json:"walletAddress" gorm:"primaryKey;type:varchar(200)"`
	Username      string    `json:"username" gorm:"type:varchar(60)"`
	DisplayName   string    `json:"displayName" gorm:"type:varchar(60)"`
	Bio           string    `json:"bio" gorm:"type:varchar(200)"`
	AvatarCID     string    `json:"avatarCid" gorm:"type:varchar(200)"` // 头像内容引用（IPFS 风格 CID）
	PasswordHash  string    `json:"-" gorm:"type:varchar(255)"`         // 不返回给前端
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
