package domain

// Message 表示邮箱内的一条消息记录（链上消息的链下镜像）。
//
// ID 对应链上的 u64 序号，分配后稳定且永不复用。
// CID 是消息内容的规范引用（链下/IPFS 风格存储），永远原样保存；
// Content 是可选的本地密文副本，仅作为加速缓存，CID 才是事实来源。
// Content 非空时必须是密文，明文永远不落库。
type Message struct {
	ID          uint64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Sender      string  `json:"sender" gorm:"type:varchar(200);index"`
	Receiver    string  `json:"receiver" gorm:"type:varchar(200);index"`
	CID         string  `json:"cid" gorm:"type:text;not null"`
	Content     string  `json:"content,omitempty" gorm:"type:text"`
	Timestamp   int64   `json:"timestamp" gorm:"type:bigint"`
	NFTObjectID *string `json:"nftObjectId,omitempty" gorm:"type:varchar(200)"` // 关联的链上 NFT 对象（可选）
	ClaimPrice  *uint64 `json:"claimPrice,omitempty" gorm:"type:bigint"`        // 认领价格，与 NFTObjectID 成对出现
	MailboxID   string  `json:"mailboxId" gorm:"type:varchar(120);index;not null"`
}

// HasNFT 判断消息是否携带 NFT 认领。
func (m *Message) HasNFT() bool {
	return m.NFTObjectID != nil && m.ClaimPrice != nil
}

// MessageView 是返回给调用方的消息视图：Content 已解密。
//
// DecryptError 为 true 时表示该条记录的密文无法用当前密钥解密
// （密钥更换或数据损坏），记录仍然返回但 Content 为空。
type MessageView struct {
	ID           uint64  `json:"id"`
	Sender       string  `json:"sender"`
	Receiver     string  `json:"receiver"`
	CID          string  `json:"cid"`
	Content      string  `json:"content,omitempty"`
	Timestamp    int64   `json:"timestamp"`
	NFTObjectID  *string `json:"nftObjectId,omitempty"`
	ClaimPrice   *uint64 `json:"claimPrice,omitempty"`
	MailboxID    string  `json:"mailboxId"`
	DecryptError bool    `json:"decryptError,omitempty"`
}
